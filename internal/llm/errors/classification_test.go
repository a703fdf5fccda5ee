package errors_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	llmerrors "github.com/ahrav/namesmith/internal/llm/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want llmerrors.ErrorType
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "provider_error",
			err:  &llmerrors.ProviderError{Provider: "openai", StatusCode: http.StatusUnauthorized, Type: llmerrors.ErrorTypeAuth},
			want: llmerrors.ErrorTypeAuth,
		},
		{name: "rate_limit", err: &llmerrors.RateLimitError{Provider: "local", RetryAfter: 1}, want: llmerrors.ErrorTypeRateLimit},
		{name: "breaker", err: &llmerrors.CircuitBreakerError{Provider: "openai", State: "open"}, want: llmerrors.ErrorTypeCircuitBreaker},
		{name: "deadline", err: fmt.Errorf("wrapped: %w", context.DeadlineExceeded), want: llmerrors.ErrorTypeTimeout},
		{name: "refused", err: errors.New("dial tcp: connection refused"), want: llmerrors.ErrorTypeNetwork},
		{name: "other", err: errors.New("boom"), want: llmerrors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llmerrors.Classify(tt.err))
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, llmerrors.IsRetryableError(nil))
	assert.False(t, llmerrors.IsRetryableError(context.Canceled))
	assert.True(t, llmerrors.IsRetryableError(context.DeadlineExceeded))
	assert.True(t, llmerrors.IsRetryableError(&llmerrors.ProviderError{Type: llmerrors.ErrorTypeProvider}))
	assert.False(t, llmerrors.IsRetryableError(&llmerrors.ProviderError{Type: llmerrors.ErrorTypeValidation}))
	assert.True(t, llmerrors.IsRetryableError(&llmerrors.RateLimitError{Provider: "local"}))
	assert.False(t, llmerrors.IsRetryableError(&llmerrors.CircuitBreakerError{Provider: "openai"}))
}

func TestSentinelUnwrap(t *testing.T) {
	assert.ErrorIs(t, &llmerrors.RateLimitError{Provider: "local"}, llmerrors.ErrRateLimitExceeded)
	assert.ErrorIs(t, &llmerrors.CircuitBreakerError{Provider: "openai"}, llmerrors.ErrCircuitBreakerOpen)
}
