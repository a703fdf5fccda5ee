package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/namesmith/internal/config"
	"github.com/ahrav/namesmith/internal/metrics"
	"github.com/ahrav/namesmith/internal/store"
	"github.com/ahrav/namesmith/internal/worker"
	"github.com/ahrav/namesmith/internal/workflow"
	"github.com/ahrav/namesmith/pkg/events"
)

// app is the wired dependency graph shared by both commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Collector
	store    *store.Store
	redis    *redis.Client
	registry *worker.Registry
	executor *workflow.Executor
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.NewCollector("namesmith")}

	st, err := store.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.store = st

	if a.redis, err = worker.InitializeRedis(ctx, cfg.Redis); err != nil {
		a.close()
		return nil, err
	}

	opts := []worker.RegistryOption{worker.WithMetrics(a.metrics), worker.WithLogger(logger)}
	if a.redis != nil {
		opts = append(opts, worker.WithRedis(a.redis))
	}
	if a.registry, err = worker.NewRegistry(cfg, opts...); err != nil {
		a.close()
		return nil, fmt.Errorf("provider registry: %w", err)
	}

	a.executor, err = workflow.NewExecutor(a.registry, st, st, a.registry.Settings(),
		workflow.WithMetrics(a.metrics),
		workflow.WithEventSink(events.NewSlogSink(logger, slog.LevelInfo)),
		workflow.WithLogger(logger),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	logger.Info("namesmith initialized",
		"generation", cfg.Providers.Generation,
		"scoring", cfg.Providers.Scoring,
		"availability", a.registry.AvailabilityName(),
		"redis_cache", a.redis != nil,
	)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", "error", err)
		}
	}
}
