// Package core is the HTTP chassis: router, middleware chain, response
// envelopes, request validation, health checks, metrics collectors and the
// Lambda adapter. Domain handlers register themselves through the
// RouteRegistrar slices so core never imports them.
package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"croppredict/internal/config"
	"croppredict/internal/types"
)

// MetricsCollector records request and prediction telemetry. It also
// satisfies predictor.OutcomeRecorder.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
	RecordOutcome(kind types.OutcomeKind, duration time.Duration)
}

// RouteRegistrar mounts routes on a router.
type RouteRegistrar func(r chi.Router)

// Server holds the shared dependencies of the HTTP surface.
type Server struct {
	Config       *config.Config
	Logger       *slog.Logger
	Validator    *Validator
	Metrics      MetricsCollector
	HealthProbes []HealthProbe

	// MetricsHandler, when set, is served at GET /metrics.
	MetricsHandler http.Handler

	// RootRouteRegistrars mount at "/" (HTML pages, static assets);
	// V1RouteRegistrars mount under "/v1".
	RootRouteRegistrars []RouteRegistrar
	V1RouteRegistrars   []RouteRegistrar

	router *chi.Mux
}

// NewServer validates the required dependencies and prepares an empty
// router. Call MountRoutes after registering handlers.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the root handler for net/http or the Lambda adapter.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the chi mux for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server-owned resources. A metrics collector that buffers
// data points is flushed here.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	if closer, ok := s.Metrics.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.Logger.Error("error flushing metrics", "error", err)
			return fmt.Errorf("flushing metrics: %w", err)
		}
	}

	s.Logger.Info("server shutdown complete")
	return nil
}
