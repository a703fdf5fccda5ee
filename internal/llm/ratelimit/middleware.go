// Package ratelimit throttles outbound LLM calls with in-memory token buckets
// keyed by operation, provider and model.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ahrav/namesmith/internal/llm/configuration"
	llmerrors "github.com/ahrav/namesmith/internal/llm/errors"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

var (
	errTokensPerSecondInvalid = errors.New("tokens_per_second must be greater than 0")
	errBurstSizeInvalid       = errors.New("burst_size must be greater than 0")
)

type rateLimitMiddleware struct {
	cfg      configuration.RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimitMiddleware returns a middleware that rejects calls over the
// configured rate with a RateLimitError. The retry middleware, placed
// outside this one, waits out the advertised delay.
func NewRateLimitMiddleware(cfg configuration.RateLimitConfig) (transport.Middleware, error) {
	if !cfg.Enabled {
		return func(next transport.Handler) transport.Handler { return next }, nil
	}
	if cfg.TokensPerSecond <= 0 {
		return nil, fmt.Errorf("%w, got %f", errTokensPerSecondInvalid, cfg.TokensPerSecond)
	}
	if cfg.BurstSize <= 0 {
		return nil, fmt.Errorf("%w, got %d", errBurstSizeInvalid, cfg.BurstSize)
	}

	rl := &rateLimitMiddleware{cfg: cfg, limiters: make(map[string]*rate.Limiter)}
	return rl.middleware, nil
}

func (r *rateLimitMiddleware) middleware(next transport.Handler) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		if err := r.check(key(req)); err != nil {
			return nil, err
		}
		return next.Handle(ctx, req)
	})
}

// check consumes a token or reports how long the caller should wait.
// A rejected request never consumes a token.
func (r *rateLimitMiddleware) check(k string) error {
	limiter := r.limiter(k)
	if limiter.Allow() {
		return nil
	}

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()

	retryAfter := max(int(math.Ceil(delay.Seconds())), 1)
	return &llmerrors.RateLimitError{
		Provider:   k,
		Limit:      int(r.cfg.TokensPerSecond),
		RetryAfter: retryAfter,
	}
}

func (r *rateLimitMiddleware) limiter(k string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[k]
	if !ok {
		l = rate.NewLimiter(rate.Limit(r.cfg.TokensPerSecond), r.cfg.BurstSize)
		r.limiters[k] = l
	}
	return l
}

func key(req *transport.Request) string {
	return fmt.Sprintf("%s:%s:%s", req.Operation, req.Provider, req.Model)
}
