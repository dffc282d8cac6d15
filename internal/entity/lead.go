package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusPending    LeadStatus = "PENDING"
	LeadStatusReachedOut LeadStatus = "REACHED_OUT"
)

func (s LeadStatus) IsValid() bool {
	return s == LeadStatusPending || s == LeadStatusReachedOut
}

// VisaCategories is the reference list shown on the public form. The server
// accepts any non-empty label.
var VisaCategories = []string{"O-1", "EB-1A", "EB-2 NIW", "I don't know"}

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrDuplicateLead = errors.New("lead already exists")
)

type Lead struct {
	ID                   string     `json:"id"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	Email                string     `json:"email"`
	CountryOfCitizenship string     `json:"countryOfCitizenship"`
	LinkedIn             string     `json:"linkedin"`
	VisasInterested      []string   `json:"visasInterested"`
	ResumeURL            string     `json:"resumeUrl"`
	OpenInput            string     `json:"openInput"`
	Status               LeadStatus `json:"status"` // PENDING, REACHED_OUT
	CreatedAt            time.Time  `json:"createdAt"`
}

// Factory
func NewLead(firstName, lastName, email, country, linkedin string, visas []string, resumeURL, openInput string) (*Lead, error) {
	lead := &Lead{
		ID:                   uuid.New().String(),
		FirstName:            firstName,
		LastName:             lastName,
		Email:                email,
		CountryOfCitizenship: country,
		LinkedIn:             linkedin,
		VisasInterested:      visas,
		ResumeURL:            resumeURL,
		OpenInput:            openInput,
		Status:               LeadStatusPending,
		CreatedAt:            time.Now().UTC(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.ID == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(l.FirstName) == "" {
		return errors.New("firstName is required")
	}
	if strings.TrimSpace(l.LastName) == "" {
		return errors.New("lastName is required")
	}
	if strings.TrimSpace(l.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(l.CountryOfCitizenship) == "" {
		return errors.New("countryOfCitizenship is required")
	}
	if strings.TrimSpace(l.LinkedIn) == "" {
		return errors.New("linkedin is required")
	}
	if len(l.VisasInterested) == 0 {
		return errors.New("visasInterested must have at least one entry")
	}
	if l.ResumeURL == "" {
		return errors.New("resumeUrl is required")
	}
	if strings.TrimSpace(l.OpenInput) == "" {
		return errors.New("openInput is required")
	}
	if !l.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Clone returns a deep copy so callers never share the stored slice.
func (l *Lead) Clone() *Lead {
	c := *l
	c.VisasInterested = append([]string(nil), l.VisasInterested...)
	return &c
}

type LeadRepository interface {
	Append(ctx context.Context, lead *Lead) error
	List(ctx context.Context) ([]*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	UpdateStatus(ctx context.Context, id string, status LeadStatus) (*Lead, error)
}
