// Package llm provides the resilient HTTP client that LLM-backed generation
// and scoring providers use to reach OpenAI, Anthropic and Google models.
//
// Every call flows through a middleware chain: logging, circuit breaking,
// retry with backoff, then local rate limiting, before the provider adapter
// builds the HTTP request.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/llm/circuitbreaker"
	"github.com/ahrav/namesmith/internal/llm/configuration"
	"github.com/ahrav/namesmith/internal/llm/providers"
	"github.com/ahrav/namesmith/internal/llm/ratelimit"
	"github.com/ahrav/namesmith/internal/llm/retry"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

var errNilRequest = errors.New("nil completion request")

// Client sends one completion request and returns the normalized response.
type Client interface {
	Complete(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

type client struct {
	handler transport.Handler
}

// Option customizes client construction.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer CallObserver
}

// WithLogger sets the logger used by the request logging middleware.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithObserver reports every call outcome, typically to Prometheus.
func WithObserver(obs CallObserver) Option { return func(o *options) { o.observer = obs } }

// NewClient assembles the provider router and middleware chain from cfg.
func NewClient(cfg *configuration.Config, opts ...Option) (Client, error) {
	if cfg == nil {
		cfg = configuration.DefaultConfig()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.HTTPTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        configuration.DefaultMaxIdleConns,
				IdleConnTimeout:     configuration.DefaultIdleTimeoutSeconds * time.Second,
				TLSHandshakeTimeout: configuration.DefaultTLSTimeoutSeconds * time.Second,
			},
		}
	}

	router, err := providers.NewRouter(cfg.Providers)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider router: %w", err)
	}

	rateLimitMW, err := ratelimit.NewRateLimitMiddleware(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit middleware: %w", err)
	}

	retryMW, err := retry.NewRetryMiddlewareWithConfig(cfg.Retry)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry middleware: %w", err)
	}

	core := transport.NewHTTPHandler(httpClient, router)
	handler := transport.Chain(core,
		NewLoggingMiddleware(cfg.Observability, o.logger, o.observer),
		circuitbreaker.NewCircuitBreakerMiddleware(cfg.CircuitBreaker),
		retryMW,
		rateLimitMW,
	)

	return &client{handler: handler}, nil
}

// NewClientWithHandler wraps an existing handler, bypassing the HTTP stack.
func NewClientWithHandler(h transport.Handler) Client {
	return &client{handler: h}
}

// Complete stamps trace and idempotency identifiers and runs the chain.
func (c *client) Complete(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if req == nil {
		return nil, errNilRequest
	}
	r := *req
	if r.TraceID == "" {
		r.TraceID = uuid.NewString()
	}
	if r.IdempotencyKey == "" {
		key, err := transport.GenerateIdemKey(&r)
		if err != nil {
			return nil, fmt.Errorf("failed to generate idempotency key: %w", err)
		}
		r.IdempotencyKey = key.String()
	}
	return c.handler.Handle(ctx, &r)
}
