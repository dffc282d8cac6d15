package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// LeadNotifier is one downstream action taken for every submitted lead
// (admin email, CRM sync).
type LeadNotifier interface {
	Name() string
	NotifyLeadSubmitted(ctx context.Context, event LeadSubmittedEvent) error
}

type Worker struct {
	Channel   *amqp.Channel
	Notifiers []LeadNotifier
	Log       zerolog.Logger
}

func NewWorker(ch *amqp.Channel, log zerolog.Logger, notifiers ...LeadNotifier) *Worker {
	return &Worker{
		Channel:   ch,
		Notifiers: notifiers,
		Log:       log,
	}
}

// Start consumes until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register RabbitMQ consumer: %w", err)
	}

	w.Log.Info().Str("queue", queueName).Msg("worker waiting for lead events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event LeadSubmittedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// Malformed message: dead-letter it so it cannot block the queue.
		w.Log.Error().Err(err).Msg("invalid lead event payload")
		d.Nack(false, false)
		return
	}

	if err := w.processEvent(ctx, event); err != nil {
		w.Log.Error().Err(err).Str("lead_id", event.LeadID).Msg("lead notification failed")
		d.Nack(false, false)
		return
	}

	w.Log.Info().Str("lead_id", event.LeadID).Msg("lead notifications delivered")
	d.Ack(false)
}

// processEvent runs every notifier and reports all failures together.
func (w *Worker) processEvent(ctx context.Context, event LeadSubmittedEvent) error {
	var errs []error
	for _, n := range w.Notifiers {
		if err := n.NotifyLeadSubmitted(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
