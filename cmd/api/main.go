package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/config"
	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/infra/database"
	"github.com/xavierca1/visa-leads/internal/infra/http/handlers"
	"github.com/xavierca1/visa-leads/internal/infra/http/middleware"
	"github.com/xavierca1/visa-leads/internal/infra/http/router"
	"github.com/xavierca1/visa-leads/internal/infra/logger"
	"github.com/xavierca1/visa-leads/internal/infra/queue"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		startup := zerolog.New(os.Stderr)
		startup.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.Env, cfg.LogLevel, "visa-leads-api")
	if cfg.AdminToken == config.DevAdminToken {
		log.Warn().Msg("ADMIN_TOKEN not set, using the development token")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Store
	var db *sql.DB
	var repo entity.LeadRepository
	switch cfg.StoreBackend {
	case config.StoreMemory:
		repo = database.NewMemoryLeadRepository()
	case config.StoreFile:
		repo = database.NewFileLeadRepository(cfg.DataFile)
	case config.StorePostgres:
		db, err = database.NewDBConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		repo = database.NewLeadRepository(db)
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("lead store ready")

	// 2. Optional broker and shared rate limit
	var publisher usecase.LeadEventPublisher
	var rabbitConn *amqp.Connection
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, lead events disabled")
		} else {
			defer rabbit.Close()
			rabbitConn = rabbit.Conn
			publisher = queue.NewProducer(rabbit.Ch)
		}
	}

	var redisClient *redis.Client
	var limiter middleware.Limiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid REDIS_URL")
			}
			redisClient = redis.NewClient(opts)
			defer redisClient.Close()
			limiter = middleware.NewRedisRateLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute, log)
		}
	}

	// 3. Use cases
	metrics := middleware.NewLeadMetrics()
	submitUC := usecase.NewSubmitLeadUseCase(repo, publisher, metrics, cfg.ResumeBaseURL, log)
	listUC := usecase.NewListLeadsUseCase(repo)
	getUC := usecase.NewGetLeadUseCase(repo)
	updateUC := usecase.NewUpdateLeadStatusUseCase(repo, metrics, log)

	// 4. HTTP
	leadHandler := handlers.NewLeadHandler(submitUC, listUC, getUC, updateUC, cfg.MaxUploadBytes, log)
	healthHandler := handlers.NewHealthHandler(cfg.StoreBackend, db, rabbitConn, redisClient)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: router.New(leadHandler, healthHandler, router.Options{
			AdminToken:     cfg.AdminToken,
			AllowedOrigins: cfg.AllowedOrigins(),
			SubmitLimiter:  limiter,
			TrustProxy:     cfg.TrustProxy,
			Log:            log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("lead API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
