package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/visa-leads/internal/entity"
)

// LeadSubmittedEvent is the message body published after a lead is stored.
type LeadSubmittedEvent struct {
	LeadID               string    `json:"lead_id"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Email                string    `json:"email"`
	CountryOfCitizenship string    `json:"country_of_citizenship"`
	LinkedIn             string    `json:"linkedin"`
	VisasInterested      []string  `json:"visas_interested"`
	ResumeURL            string    `json:"resume_url"`
	OpenInput            string    `json:"open_input"`
	CreatedAt            time.Time `json:"created_at"`
}

func NewLeadSubmittedEvent(lead *entity.Lead) LeadSubmittedEvent {
	return LeadSubmittedEvent{
		LeadID:               lead.ID,
		FirstName:            lead.FirstName,
		LastName:             lead.LastName,
		Email:                lead.Email,
		CountryOfCitizenship: lead.CountryOfCitizenship,
		LinkedIn:             lead.LinkedIn,
		VisasInterested:      lead.VisasInterested,
		ResumeURL:            lead.ResumeURL,
		OpenInput:            lead.OpenInput,
		CreatedAt:            lead.CreatedAt,
	}
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadSubmitted(ctx context.Context, lead *entity.Lead) error {
	body, err := json.Marshal(NewLeadSubmittedEvent(lead))
	if err != nil {
		return fmt.Errorf("failed to encode lead event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    lead.ID,
			Timestamp:    time.Now(),
			Type:         "lead.submitted",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}

	return nil
}
