package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go-wetta-dashboard/internal/config"
	httpapi "go-wetta-dashboard/internal/http"
)

// Run serves the dashboard until ctx is cancelled, then shuts the server
// down within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"env", cfg.Env,
		"listen_addr", cfg.ListenAddr,
		"station", cfg.StationName,
		"db_driver", cfg.DBDriver,
		"timezone", cfg.Timezone,
		"earliest_date", cfg.EarliestDate,
		"poll_interval_ms", cfg.PollIntervalMS,
	)

	comps, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := comps.Close(); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := comps.Probe(ctx, logger); err != nil {
		return err
	}

	srv, err := httpapi.NewServer(cfg, httpapi.Deps{
		Registry:   comps.Registry,
		Source:     comps.Store,
		Controller: comps.Controller,
		Metrics:    comps.Metrics,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", srv.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
