// Package router assembles the chi routes for the public form, the admin
// API and the operational endpoints.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/infra/http/handlers"
	"github.com/xavierca1/visa-leads/internal/infra/http/middleware"
)

type Options struct {
	AdminToken     string
	AllowedOrigins []string
	SubmitLimiter  middleware.Limiter
	// TrustProxy honours X-Forwarded-For / X-Real-IP. Enable only behind a
	// proxy that overwrites them.
	TrustProxy bool
	Log        zerolog.Logger
}

func New(leads *handlers.LeadHandler, health *handlers.HealthHandler, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Log))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(chimw.Timeout(30 * time.Second))

	if health != nil {
		r.Get("/health", health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/leads", func(r chi.Router) {
		// Submission stays public.
		r.With(submitMiddlewares(opts.SubmitLimiter)...).Post("/", leads.Submit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(opts.AdminToken))
			r.Get("/", leads.List)
			r.Get("/{id}", leads.Get)
			r.Patch("/{id}", leads.UpdateStatus)
			r.Put("/{id}", leads.UpdateStatus)
		})
	})

	return r
}

func submitMiddlewares(limiter middleware.Limiter) []func(http.Handler) http.Handler {
	if limiter == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{middleware.RateLimit(limiter)}
}
