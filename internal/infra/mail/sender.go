package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/visa-leads/internal/infra/queue"
)

//go:embed templates/*.html
var templateFS embed.FS

var newLeadTemplate = template.Must(
	template.New("new_lead.html").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/new_lead.html"),
)

func NewEmailSender(host string, port int, user, password, from string, to []string, adminURL string) *EmailSender {
	return &EmailSender{
		Dialer:   gomail.NewDialer(host, port, user, password),
		From:     from,
		To:       to,
		AdminURL: adminURL,
	}
}

func (s *EmailSender) Name() string {
	return "mail"
}

// NotifyLeadSubmitted alerts the admin inbox about a new lead. gomail has no
// context support, so cancellation is only honoured before the dial.
func (s *EmailSender) NotifyLeadSubmitted(ctx context.Context, event queue.LeadSubmittedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.newLeadMessage(event)
	if err != nil {
		return err
	}

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}
	return nil
}

func (s *EmailSender) newLeadMessage(event queue.LeadSubmittedEvent) (*gomail.Message, error) {
	if len(s.To) == 0 {
		return nil, errors.New("no admin recipients configured")
	}

	body, err := s.renderNewLead(event)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To...)
	m.SetHeader("Reply-To", event.Email)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %s %s (%s)",
		event.FirstName, event.LastName, strings.Join(event.VisasInterested, ", ")))
	m.SetBody("text/html", body)
	return m, nil
}

func (s *EmailSender) renderNewLead(event queue.LeadSubmittedEvent) (string, error) {
	data := NewLeadEmailData{
		LeadID:               event.LeadID,
		FirstName:            event.FirstName,
		LastName:             event.LastName,
		Email:                event.Email,
		CountryOfCitizenship: event.CountryOfCitizenship,
		LinkedIn:             event.LinkedIn,
		VisasInterested:      event.VisasInterested,
		ResumeURL:            event.ResumeURL,
		OpenInput:            event.OpenInput,
		CreatedAt:            event.CreatedAt,
		AdminURL:             s.AdminURL,
	}

	var body bytes.Buffer
	if err := newLeadTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return body.String(), nil
}
