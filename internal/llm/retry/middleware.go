// Package retry provides the exponential-backoff retry middleware for LLM calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ahrav/namesmith/internal/llm/configuration"
	llmerrors "github.com/ahrav/namesmith/internal/llm/errors"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

var (
	// Configuration validation errors.
	errMaxAttemptsInvalid     = errors.New("maxAttempts must be greater than 0")
	errInitialIntervalInvalid = errors.New("initialInterval must be greater than 0")
	errMaxIntervalInvalid     = errors.New("maxInterval must be >= initialInterval")
	errMultiplierInvalid      = errors.New("multiplier must be >= 1.0")
	errMaxElapsedTimeInvalid  = errors.New("maxElapsedTime must be >= 0")

	// ErrRetriesExhausted wraps the last error once every attempt failed.
	ErrRetriesExhausted = errors.New("all retries exhausted")
)

// RetryAfterProvider is implemented by errors that carry server backpressure guidance.
type RetryAfterProvider interface {
	GetRetryAfter() time.Duration
}

// Stats counts retry outcomes. Safe for concurrent use.
type Stats struct {
	TotalAttempts     atomic.Int64
	SuccessfulRetries atomic.Int64
	FailedRetries     atomic.Int64
}

type retryMiddleware struct {
	config configuration.RetryConfig
	logger *slog.Logger
	stats  *Stats
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryMiddlewareWithConfig validates cfg and returns the retry middleware.
func NewRetryMiddlewareWithConfig(cfg configuration.RetryConfig) (transport.Middleware, error) {
	mw, _, err := NewRetryMiddlewareWithStats(cfg)
	return mw, err
}

// NewRetryMiddlewareWithStats is NewRetryMiddlewareWithConfig that also exposes counters.
func NewRetryMiddlewareWithStats(cfg configuration.RetryConfig) (transport.Middleware, *Stats, error) {
	if cfg.MaxAttempts <= 0 {
		return nil, nil, fmt.Errorf("%w, got %d", errMaxAttemptsInvalid, cfg.MaxAttempts)
	}
	if cfg.InitialInterval <= 0 {
		return nil, nil, fmt.Errorf("%w, got %v", errInitialIntervalInvalid, cfg.InitialInterval)
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		return nil, nil, fmt.Errorf("%w, MaxInterval: %v, InitialInterval: %v", errMaxIntervalInvalid, cfg.MaxInterval, cfg.InitialInterval)
	}
	if cfg.Multiplier < 1.0 {
		return nil, nil, fmt.Errorf("%w, got %f", errMultiplierInvalid, cfg.Multiplier)
	}
	if cfg.MaxElapsedTime < 0 {
		return nil, nil, fmt.Errorf("%w, got %v", errMaxElapsedTimeInvalid, cfg.MaxElapsedTime)
	}

	rm := &retryMiddleware{
		config: cfg,
		logger: slog.Default().With("component", "retry"),
		stats:  &Stats{},
		sleep:  sleepContext,
	}
	return rm.middleware, rm.stats, nil
}

func (r *retryMiddleware) middleware(next transport.Handler) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		var lastErr error

		for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
			resp, err := next.Handle(ctx, req)
			r.stats.TotalAttempts.Add(1)
			if err == nil {
				if attempt > 1 {
					r.stats.SuccessfulRetries.Add(1)
					r.logger.Info("request succeeded after retry",
						"attempt", attempt, "provider", req.Provider, "model", req.Model)
				}
				return resp, nil
			}

			if !llmerrors.IsRetryableError(err) {
				r.logger.Debug("non-retryable error", "error", err, "attempt", attempt, "provider", req.Provider)
				return nil, err
			}
			lastErr = err

			if attempt == r.config.MaxAttempts {
				break
			}

			backoff := r.calculateBackoff(attempt, err)
			if r.config.MaxElapsedTime > 0 && time.Since(start)+backoff > r.config.MaxElapsedTime {
				r.logger.Warn("max elapsed time exceeded",
					"elapsed", time.Since(start), "attempts", attempt, "last_error", err)
				break
			}

			r.logger.Debug("retrying after backoff",
				"attempt", attempt, "backoff", backoff, "error", err, "provider", req.Provider)

			if err := r.sleep(ctx, backoff); err != nil {
				return nil, fmt.Errorf("context cancelled during retry: %w", err)
			}
		}

		r.stats.FailedRetries.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
