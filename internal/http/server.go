package http

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"

	"go-wetta-dashboard/internal/charts"
	"go-wetta-dashboard/internal/config"
	"go-wetta-dashboard/internal/history"
	"go-wetta-dashboard/internal/registry"
	"go-wetta-dashboard/internal/view"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Registry   *registry.Registry
	Source     Source
	Controller *history.Controller
	// Metrics defaults to a fresh NewMetrics().
	Metrics *Metrics
	Logger  *slog.Logger
}

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer *nethttp.Server
}

// NewServer creates a configured HTTP server with the dashboard page and
// v1 endpoints.
func NewServer(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Registry == nil || deps.Source == nil || deps.Controller == nil {
		return nil, errors.New("http: registry, source and controller are required")
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	page, err := parseDashboardTemplate()
	if err != nil {
		return nil, err
	}
	layout := view.BuildLayout(deps.Registry)

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/", dashboardHandler(page, layout, cfg.StationName, cfg.PollIntervalMS, deps.Controller))
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", deps.Metrics.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(deps.Source))
	mux.HandleFunc("/api/v1/layout", layoutHandler(layout, cfg.StationName))
	mux.HandleFunc("/api/v1/current", currentHandler(deps.Registry, deps.Source, deps.Metrics, deps.Logger))
	mux.HandleFunc("/api/v1/range", rangeHandler(deps.Controller))
	mux.HandleFunc("/api/v1/history", historyHandler(deps.Controller, deps.Source, deps.Logger))
	mux.HandleFunc("/charts/temperature.svg", chartHandler(charts.RenderTemperature, deps.Controller, deps.Source, deps.Logger))
	mux.HandleFunc("/charts/rain.svg", chartHandler(charts.RenderRain, deps.Controller, deps.Source, deps.Logger))
	mux.HandleFunc("/api/v1/status/services", servicesStatusHandler(deps.Source))

	httpServer := &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      loggingMiddleware(deps.Logger, deps.Metrics.observabilityMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{httpServer: httpServer}, nil
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() nethttp.Handler {
	return s.httpServer.Handler
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
