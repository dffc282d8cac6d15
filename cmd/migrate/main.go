// Migrate applies the Postgres lead schema. Usage: migrate [-direction up|down]
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/config"
	"github.com/xavierca1/visa-leads/internal/infra/database/migrate"
	"github.com/xavierca1/visa-leads/internal/infra/logger"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		startup := zerolog.New(os.Stderr)
		startup.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel, "visa-leads-migrate")

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		log.Fatal().Err(err).Str("direction", *direction).Msg("migration failed")
	}
	log.Info().Str("direction", *direction).Msg("migrations applied")
}
