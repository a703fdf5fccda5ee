package errors

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Classify maps an arbitrary transport error onto an ErrorType.
func Classify(err error) ErrorType {
	if err == nil {
		return ""
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type
	}

	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return ErrorTypeRateLimit
	}

	var cbErr *CircuitBreakerError
	if errors.As(err, &cbErr) {
		return ErrorTypeCircuitBreaker
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorTypeTimeout
		}
		return ErrorTypeNetwork
	}

	lowered := strings.ToLower(err.Error())
	for _, indicator := range networkErrorIndicators {
		if strings.Contains(lowered, indicator) {
			return ErrorTypeNetwork
		}
	}

	return ErrorTypeUnknown
}

// IsRetryableError reports whether an error warrants another attempt.
// Circuit breaker rejections are not retried; the breaker owns recovery.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.IsRetryable()
	}

	switch Classify(err) {
	case ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeNetwork, ErrorTypeProvider:
		return true
	default:
		return false
	}
}

var networkErrorIndicators = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"i/o timeout",
}
