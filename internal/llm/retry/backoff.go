package retry

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/ahrav/namesmith/internal/llm/configuration"
)

// calculateBackoff prefers provider Retry-After guidance and otherwise falls
// back to exponential backoff.
func (r *retryMiddleware) calculateBackoff(attempt int, err error) time.Duration {
	var provider RetryAfterProvider
	if errors.As(err, &provider) {
		if d := provider.GetRetryAfter(); d > 0 {
			return min(d, r.config.MaxInterval)
		}
	}
	return ExponentialBackoff(attempt, r.config)
}

// ExponentialBackoff returns the delay before retry number attempt (1-based).
// With jitter enabled the delay is drawn uniformly from [0, backoff].
// Returns zero for non-positive attempts.
func ExponentialBackoff(attempt int, config configuration.RetryConfig) time.Duration {
	if attempt <= 0 {
		return 0
	}

	backoff := max(config.InitialInterval, time.Millisecond)
	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * max(config.Multiplier, 1.0))
		if backoff >= config.MaxInterval {
			backoff = config.MaxInterval
			break
		}
	}

	if config.UseJitter {
		return time.Duration(rand.Int64N(int64(backoff) + 1)) // #nosec G404 -- non-cryptographic jitter
	}
	return backoff
}
