// Package http assembles the REST API server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/complyhq/compliance-engine/internal/application/compliance"
	"github.com/complyhq/compliance-engine/internal/config"
	"github.com/complyhq/compliance-engine/internal/domain/entity"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/internal/interfaces/http/handlers"
	"github.com/complyhq/compliance-engine/internal/interfaces/http/middleware"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Service  *compliance.Service
	Entities entity.Repository
	DB       handlers.Pinger
	Metrics  middleware.HTTPMetricsRecorder
	// MetricsHandler serves the exposition endpoint; nil disables it.
	MetricsHandler http.Handler
	Config         *config.Config
	Version        string
	Logger         logging.Logger
}

// NewRouter builds the chi route tree: request ID, real IP and panic
// recovery globally, then request logging and metrics, then the probe
// endpoints and the versioned API resources.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	handlers.NewSystemHandler(deps.DB, deps.Version).Register(r)

	if deps.MetricsHandler != nil && deps.Config.Metrics.Enabled {
		r.Handle(deps.Config.Metrics.Path, deps.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		handlers.NewEntityHandler(deps.Entities, logger).Register(api)
		handlers.NewObligationHandler(deps.Service, deps.Config.Engine.UpcomingWindowDays, logger).Register(api)
		handlers.NewHealthScoreHandler(deps.Service, logger).Register(api)
	})

	return r
}

// NewServer builds an http.Server with the configured timeouts.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
