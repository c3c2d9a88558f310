package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go-wetta-dashboard/internal/config"
	"go-wetta-dashboard/internal/connectors/weatherdb"
	"go-wetta-dashboard/internal/history"
	httpapi "go-wetta-dashboard/internal/http"
	"go-wetta-dashboard/internal/registry"
	"go-wetta-dashboard/internal/view"
)

// Components are the long-lived collaborators shared by the web server and
// the terminal commands.
type Components struct {
	Config     config.Config
	Registry   *registry.Registry
	Store      *weatherdb.Store
	Controller *history.Controller
	Metrics    *httpapi.Metrics
}

// Build wires the registry, the weather database and the range controller
// from configuration. Callers must Close the result.
func Build(cfg config.Config) (*Components, error) {
	policy, err := cfg.EmptyCategoryPolicy()
	if err != nil {
		return nil, err
	}
	reg, err := registry.Wetta(registry.WithEmptyCategories(policy))
	if err != nil {
		return nil, fmt.Errorf("metric registry: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	earliest, err := cfg.Earliest()
	if err != nil {
		return nil, err
	}

	metrics := httpapi.NewMetrics()
	store, err := weatherdb.NewStore(cfg, reg, metrics.ObserveQuery)
	if err != nil {
		return nil, err
	}

	return &Components{
		Config:     cfg,
		Registry:   reg,
		Store:      store,
		Controller: history.NewController(earliest, loc),
		Metrics:    metrics,
	}, nil
}

func (c *Components) Close() error {
	return c.Store.Close()
}

// Probe fetches the newest row once and dispatches it. A row that does not
// line up with the registry is fatal; an empty table is not.
func (c *Components) Probe(ctx context.Context, logger *slog.Logger) error {
	reading, err := c.Store.FetchLatestReading(ctx)
	if errors.Is(err, weatherdb.ErrNoReading) {
		logger.Warn("weather table is empty; tiles stay on placeholder until the first reading")
		return nil
	}
	if err != nil {
		logger.Warn("startup probe failed", "error", err)
		return nil
	}
	if _, err := view.Dispatch(c.Registry, reading.Values); err != nil {
		return err
	}
	logger.Info("startup probe ok", "metrics", c.Registry.Len())
	return nil
}
