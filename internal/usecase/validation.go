package usecase

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateSubmitLeadInput reports every missing required field, in form order.
func ValidateSubmitLeadInput(input SubmitLeadInput) []ValidationError {
	var errors []ValidationError

	required := []struct {
		field string
		value string
	}{
		{"firstName", input.FirstName},
		{"lastName", input.LastName},
		{"email", input.Email},
		{"countryOfCitizenship", input.CountryOfCitizenship},
		{"linkedin", input.LinkedIn},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errors = append(errors, ValidationError{r.field, "is required"})
		}
	}

	if len(input.VisasInterested) == 0 {
		errors = append(errors, ValidationError{"visasInterested", "must have at least one entry"})
	}
	if strings.TrimSpace(input.ResumeFileName) == "" {
		errors = append(errors, ValidationError{"resume", "is required"})
	}
	if strings.TrimSpace(input.OpenInput) == "" {
		errors = append(errors, ValidationError{"openInput", "is required"})
	}

	return errors
}

func missingFieldsMessage(errs []ValidationError) string {
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	return "Missing required fields: " + strings.Join(fields, ", ")
}
