// Package worker turns configuration into running infrastructure: the
// provider registry that backs each pipeline run and the Runner that executes
// jobs in the background.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/namesmith/internal/config"
	"github.com/ahrav/namesmith/internal/llm"
)

// InitializeLLMClient creates the LLM client with its middleware chain for the
// vendors that have a key. obs may be nil.
func InitializeLLMClient(cfg config.Config, obs llm.CallObserver, logger *slog.Logger) (llm.Client, error) {
	opts := []llm.Option{llm.WithLogger(logger)}
	if obs != nil {
		opts = append(opts, llm.WithObserver(obs))
	}
	client, err := llm.NewClient(cfg.LLMConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	return client, nil
}

// InitializeRedis connects to Redis when an address is configured. It returns
// nil without error when Redis is disabled.
func InitializeRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
