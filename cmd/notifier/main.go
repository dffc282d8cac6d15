// Notifier consumes lead events from RabbitMQ and fans each one out to the
// admin inbox and the CRM. Set RABBITMQ_URL plus the MAIL_* and KOMMO_*
// variables for the channels you want.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/config"
	"github.com/xavierca1/visa-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/visa-leads/internal/infra/logger"
	"github.com/xavierca1/visa-leads/internal/infra/mail"
	"github.com/xavierca1/visa-leads/internal/infra/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		startup := zerolog.New(os.Stderr)
		startup.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.Env, cfg.LogLevel, "visa-leads-notifier")

	if cfg.RabbitMQURL == "" {
		log.Fatal().Msg("RABBITMQ_URL is required")
	}

	var notifiers []queue.LeadNotifier
	if cfg.MailHost != "" && len(cfg.AdminEmails()) > 0 {
		notifiers = append(notifiers, mail.NewEmailSender(
			cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass,
			cfg.MailFrom, cfg.AdminEmails(), cfg.AdminURL,
		))
	}
	if cfg.KommoAPIToken != "" {
		notifiers = append(notifiers, kommo.NewClient(cfg.KommoAPIToken, cfg.KommoBaseURL, log))
	}
	if len(notifiers) == 0 {
		log.Fatal().Msg("no notifier configured: set MAIL_HOST with ADMIN_NOTIFY_EMAILS or KOMMO_API_TOKEN")
	}

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rabbit.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, n := range notifiers {
		log.Info().Str("notifier", n.Name()).Msg("notifier enabled")
	}

	worker := queue.NewWorker(rabbit.Ch, log, notifiers...)
	if err := worker.Start(ctx, queue.QueueName); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
	log.Info().Msg("notifier stopped")
}
