package usecase

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/entity"
)

const DefaultResumeBaseURL = "https://example.com/resumes"

type SubmitLeadUseCase struct {
	Repo          entity.LeadRepository
	Publisher     LeadEventPublisher
	Metrics       LeadMetrics
	ResumeBaseURL string
	Log           zerolog.Logger
}

func NewSubmitLeadUseCase(
	repo entity.LeadRepository,
	publisher LeadEventPublisher,
	metrics LeadMetrics,
	resumeBaseURL string,
	log zerolog.Logger,
) *SubmitLeadUseCase {
	if resumeBaseURL == "" {
		resumeBaseURL = DefaultResumeBaseURL
	}
	return &SubmitLeadUseCase{
		Repo:          repo,
		Publisher:     publisher,
		Metrics:       metrics,
		ResumeBaseURL: strings.TrimRight(resumeBaseURL, "/"),
		Log:           log,
	}
}

func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*SubmitLeadOutput, error) {
	input = normalizeSubmitLeadInput(input)

	if validationErrors := ValidateSubmitLeadInput(input); len(validationErrors) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: missingFieldsMessage(validationErrors),
		}
	}

	lead, err := entity.NewLead(
		input.FirstName,
		input.LastName,
		input.Email,
		input.CountryOfCitizenship,
		input.LinkedIn,
		input.VisasInterested,
		uc.resumeURL(input.ResumeFileName),
		input.OpenInput,
	)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}

	if err := uc.Repo.Append(ctx, lead); err != nil {
		return nil, storageError(err)
	}

	uc.Log.Info().Str("lead_id", lead.ID).Strs("visas", lead.VisasInterested).Msg("lead submitted")
	if uc.Metrics != nil {
		uc.Metrics.LeadSubmitted()
	}

	// The lead is already stored; a broker outage must not fail the submission.
	if uc.Publisher != nil {
		if err := uc.Publisher.PublishLeadSubmitted(ctx, lead); err != nil {
			uc.Log.Warn().Err(err).Str("lead_id", lead.ID).Msg("failed to publish lead event")
			if uc.Metrics != nil {
				uc.Metrics.LeadEventFailed()
			}
		}
	}

	return &SubmitLeadOutput{
		Message: "Lead submitted successfully",
		Lead:    lead,
	}, nil
}

// resumeURL derives a reference from the uploaded file name. No bytes are stored.
func (uc *SubmitLeadUseCase) resumeURL(fileName string) string {
	return uc.ResumeBaseURL + "/" + url.PathEscape(fileName)
}

func normalizeSubmitLeadInput(in SubmitLeadInput) SubmitLeadInput {
	out := SubmitLeadInput{
		FirstName:            strings.TrimSpace(in.FirstName),
		LastName:             strings.TrimSpace(in.LastName),
		Email:                strings.TrimSpace(in.Email),
		CountryOfCitizenship: strings.TrimSpace(in.CountryOfCitizenship),
		LinkedIn:             strings.TrimSpace(in.LinkedIn),
		OpenInput:            strings.TrimSpace(in.OpenInput),
		ResumeFileName:       strings.TrimSpace(in.ResumeFileName),
	}

	seen := make(map[string]bool, len(in.VisasInterested))
	for _, v := range in.VisasInterested {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out.VisasInterested = append(out.VisasInterested, v)
	}
	return out
}
