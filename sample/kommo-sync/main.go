// kommo-sync pushes one sample lead into the configured Kommo account so the
// pipeline mapping can be checked by hand.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/config"
	"github.com/xavierca1/visa-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/visa-leads/internal/infra/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		startup := zerolog.New(os.Stderr)
		startup.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New("development", "debug", "kommo-sync")

	if cfg.KommoAPIToken == "" {
		log.Fatal().Msg("KOMMO_API_TOKEN must be set")
	}

	client := kommo.NewClient(cfg.KommoAPIToken, cfg.KommoBaseURL, log)

	input := kommo.CreateLeadInput{
		FirstName:       "Test",
		LastName:        "Applicant",
		Email:           "test.applicant@example.com",
		Country:         "Canada",
		LinkedIn:        "https://linkedin.com/in/test-applicant",
		VisasInterested: []string{"O-1", "EB-2 NIW"},
		ResumeURL:       "https://example.com/resumes/test.pdf",
		OpenInput:       "Sample lead from kommo-sync",
		ExternalID:      "sample",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	leadID, err := client.CreateLead(ctx, input)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create lead in Kommo")
	}

	fmt.Printf("Created Kommo lead #%d for %s %s\n", leadID, input.FirstName, input.LastName)
}
