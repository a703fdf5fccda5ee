package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ahrav/namesmith/internal/api"
	"github.com/ahrav/namesmith/internal/config"
	"github.com/ahrav/namesmith/internal/logging"
	"github.com/ahrav/namesmith/internal/worker"
)

func serveCommand(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	runner := worker.NewRunner(a.executor, cfg.Server.MaxConcurrentJobs, logger)
	srv := api.NewServer(a.store, runner,
		api.WithMetrics(a.metrics),
		api.WithLogger(logger),
		api.WithCORSOrigins(cfg.Server.CORSOrigins),
	)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var errs []error
	select {
	case err := <-errCh:
		if err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	// The runner drains before the deferred close releases the store.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := runner.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("runner shutdown: %w", err))
	}
	return errors.Join(errs...)
}
