// Package api assembles the HTTP surface: middleware chain, routes and
// handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/api/handler"
	"github.com/ecosentry/ecosentry/internal/api/middleware"
	"github.com/ecosentry/ecosentry/internal/api/response"
	"github.com/ecosentry/ecosentry/internal/assessment"
	"github.com/ecosentry/ecosentry/internal/upstream"
)

// RouterConfig carries the dependencies the HTTP surface needs.
type RouterConfig struct {
	Assessment *assessment.Service
	Health     *upstream.HealthRegistry
	Version    string
	Logger     zerolog.Logger
}

// NewRouter builds the chi router with the full middleware chain.
// Middleware order matters: request ID first so everything downstream
// can correlate, recovery after logging so panics are still logged.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	if metrics, err := middleware.NewHTTPMetrics(); err == nil {
		r.Use(metrics.Middleware)
	} else {
		cfg.Logger.Warn().Err(err).Msg("http metrics disabled")
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.ContentTypeJSON)

	assessments := handler.NewAssessmentHandler(cfg.Assessment, cfg.Logger)
	ops := handler.NewOpsHandler(cfg.Health, cfg.Version)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(middleware.Expensive()))

			r.Get("/assessments/{coords}", assessments.Get)
			r.Get("/analysis/{coords}", assessments.Analysis)
			r.Get("/forecast/{coords}", assessments.Forecast)
			r.Get("/anomaly/{coords}", assessments.Anomaly)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(middleware.Standard()))

			r.Get("/ops/health", ops.Health)
			r.Get("/ops/ready", ops.Ready)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "no such route")
	})

	return r
}
