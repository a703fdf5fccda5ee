package configuration

import (
	"time"
)

// HTTP and connection constants.
const (
	DefaultMaxIdleConns       = 100
	DefaultIdleTimeoutSeconds = 90
	DefaultTLSTimeoutSeconds  = 10
	DefaultHTTPTimeoutSeconds = 30
)

// Retry and circuit breaker constants.
const (
	DefaultMaxAttempts       = 3
	DefaultMaxElapsedTime    = 45 * time.Second
	DefaultInitialInterval   = 250 * time.Millisecond
	DefaultMaxInterval       = 5 * time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultHalfOpenProbes    = 1
	DefaultBreakerInterval   = 60 * time.Second
	DefaultOpenTimeout       = 30 * time.Second
	DefaultMinRequests       = 5
	DefaultFailureRatio      = 0.6
)

// Rate limiting constants.
const (
	DefaultTokensPerSecond = 10
	DefaultBurstSize       = 20
)

// DefaultConfig returns production defaults for the LLM transport.
func DefaultConfig() *Config {
	return &Config{
		HTTPTimeout: DefaultHTTPTimeoutSeconds * time.Second,
		Providers: map[string]ProviderConfig{
			"openai": {APIKeyEnv: "OPENAI_API_KEY"},
		},
		Retry: RetryConfig{
			MaxAttempts:     DefaultMaxAttempts,
			MaxElapsedTime:  DefaultMaxElapsedTime,
			InitialInterval: DefaultInitialInterval,
			MaxInterval:     DefaultMaxInterval,
			Multiplier:      DefaultBackoffMultiplier,
			UseJitter:       true,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:      true,
			MaxRequests:  DefaultHalfOpenProbes,
			Interval:     DefaultBreakerInterval,
			OpenTimeout:  DefaultOpenTimeout,
			MinRequests:  DefaultMinRequests,
			FailureRatio: DefaultFailureRatio,
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			TokensPerSecond: DefaultTokensPerSecond,
			BurstSize:       DefaultBurstSize,
		},
		Observability: ObservabilityConfig{
			LogRequests:   true,
			RedactPrompts: true,
		},
	}
}
