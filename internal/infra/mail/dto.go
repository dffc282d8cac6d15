package mail

import (
	"time"

	"gopkg.in/gomail.v2"
)

type NewLeadEmailData struct {
	LeadID               string
	FirstName            string
	LastName             string
	Email                string
	CountryOfCitizenship string
	LinkedIn             string
	VisasInterested      []string
	ResumeURL            string
	OpenInput            string
	CreatedAt            time.Time
	AdminURL             string
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	Dialer   Dialer
	From     string
	To       []string
	AdminURL string
}
