// Package circuitbreaker guards LLM providers with one gobreaker instance per
// provider/model pair.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/ahrav/namesmith/internal/llm/configuration"
	llmerrors "github.com/ahrav/namesmith/internal/llm/errors"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

type breakerMiddleware struct {
	cfg      configuration.CircuitBreakerConfig
	logger   *slog.Logger
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewCircuitBreakerMiddleware returns a middleware that fails fast with a
// CircuitBreakerError while the breaker for a provider/model is open.
// Only transient failures count against the breaker.
func NewCircuitBreakerMiddleware(cfg configuration.CircuitBreakerConfig) transport.Middleware {
	if !cfg.Enabled {
		return func(next transport.Handler) transport.Handler { return next }
	}
	m := &breakerMiddleware{
		cfg:      cfg,
		logger:   slog.Default().With("component", "circuit_breaker"),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
	return m.middleware
}

func (m *breakerMiddleware) middleware(next transport.Handler) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		cb := m.breaker(req.Provider + "/" + req.Model)

		out, err := cb.Execute(func() (interface{}, error) {
			return next.Handle(ctx, req)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &llmerrors.CircuitBreakerError{
				Provider: req.Provider,
				Model:    req.Model,
				State:    cb.State().String(),
			}
		}
		if err != nil {
			return nil, err
		}
		resp, _ := out.(*transport.Response)
		return resp, nil
	})
}

func (m *breakerMiddleware) breaker(name string) *gobreaker.CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, ok := m.breakers[name]; ok {
		return cb
	}

	cfg := m.cfg
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// Caller mistakes and cancellations say nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || !llmerrors.IsRetryableError(err)
		},
	})
	m.breakers[name] = cb
	return cb
}
