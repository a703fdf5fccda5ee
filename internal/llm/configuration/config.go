// Package configuration holds the settings of the LLM transport: provider
// endpoints and credentials plus the resilience middleware parameters.
package configuration

import (
	"net/http"
	"time"
)

// Config holds configuration for the LLM client.
type Config struct {
	// HTTP client configuration.
	HTTPTimeout time.Duration `yaml:"http_timeout" json:"http_timeout"`
	HTTPClient  *http.Client  `yaml:"-"            json:"-"`

	// Provider configurations keyed by provider id ("openai", "anthropic", "google").
	Providers map[string]ProviderConfig `yaml:"providers" json:"providers"`

	Retry          RetryConfig          `yaml:"retry"           json:"retry"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker" json:"circuit_breaker"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"      json:"rate_limit"`
	Observability  ObservabilityConfig  `yaml:"observability"   json:"observability"`
}

// ProviderConfig holds provider-specific endpoints and authentication.
type ProviderConfig struct {
	Endpoint  string            `yaml:"endpoint"    json:"endpoint"`
	APIKey    string            `yaml:"-"           json:"-"` // Sensitive, not serialized
	APIKeyEnv string            `yaml:"api_key_env" json:"api_key_env"`
	Timeout   time.Duration     `yaml:"timeout"     json:"timeout"`
	Headers   map[string]string `yaml:"headers"     json:"headers"`
}

// RetryConfig controls exponential backoff for failed LLM calls.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"     json:"max_attempts"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time" json:"max_elapsed_time"` // Total time budget for all attempts
	InitialInterval time.Duration `yaml:"initial_interval" json:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"     json:"max_interval"`
	Multiplier      float64       `yaml:"multiplier"       json:"multiplier"`
	UseJitter       bool          `yaml:"use_jitter"       json:"use_jitter"`
}

// CircuitBreakerConfig controls the per provider/model breaker.
type CircuitBreakerConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `yaml:"max_requests" json:"max_requests"`
	// Interval clears closed-state counts; zero never clears.
	Interval    time.Duration `yaml:"interval"     json:"interval"`
	OpenTimeout time.Duration `yaml:"open_timeout" json:"open_timeout"`
	// The breaker trips once MinRequests were seen and FailureRatio is reached.
	MinRequests  uint32  `yaml:"min_requests"  json:"min_requests"`
	FailureRatio float64 `yaml:"failure_ratio" json:"failure_ratio"`
}

// RateLimitConfig configures the in-memory token bucket per provider/model.
type RateLimitConfig struct {
	Enabled         bool    `yaml:"enabled"           json:"enabled"`
	TokensPerSecond float64 `yaml:"tokens_per_second" json:"tokens_per_second"`
	BurstSize       int     `yaml:"burst_size"        json:"burst_size"`
}

// ObservabilityConfig controls request logging.
type ObservabilityConfig struct {
	LogRequests   bool `yaml:"log_requests"   json:"log_requests"`
	RedactPrompts bool `yaml:"redact_prompts" json:"redact_prompts"`
}
