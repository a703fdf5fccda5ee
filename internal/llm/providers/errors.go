package providers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	llmerrors "github.com/ahrav/namesmith/internal/llm/errors"
)

// ErrUnsupportedOperation is returned when an adapter cannot serve an operation.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// serverErrorStatusThreshold is the first HTTP status treated as a provider outage.
const serverErrorStatusThreshold = 500

// defaultMaxTokens is used when a request leaves MaxTokens unset and the
// provider requires one.
const defaultMaxTokens = 2048

// classifyErrorType determines ErrorType from HTTP status and provider error codes.
// Provider codes win over the status when they are specific.
func classifyErrorType(statusCode int, errorCode string) llmerrors.ErrorType {
	lowerCode := strings.ToLower(errorCode)
	switch {
	case strings.Contains(lowerCode, "rate") || strings.Contains(lowerCode, "limit"):
		return llmerrors.ErrorTypeRateLimit
	case strings.Contains(lowerCode, "timeout"):
		return llmerrors.ErrorTypeTimeout
	case strings.Contains(lowerCode, "auth") || strings.Contains(lowerCode, "unauthorized"):
		return llmerrors.ErrorTypeAuth
	case strings.Contains(lowerCode, "permission") || strings.Contains(lowerCode, "forbidden"):
		return llmerrors.ErrorTypePermission
	case strings.Contains(lowerCode, "quota"):
		return llmerrors.ErrorTypeQuota
	case strings.Contains(lowerCode, "overloaded"):
		return llmerrors.ErrorTypeProvider
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return llmerrors.ErrorTypeRateLimit
	case http.StatusUnauthorized:
		return llmerrors.ErrorTypeAuth
	case http.StatusForbidden:
		return llmerrors.ErrorTypePermission
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return llmerrors.ErrorTypeTimeout
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return llmerrors.ErrorTypeValidation
	default:
		if statusCode >= serverErrorStatusThreshold {
			return llmerrors.ErrorTypeProvider
		}
		return llmerrors.ErrorTypeUnknown
	}
}

// retryAfterSeconds reads a Retry-After header in either delta-seconds or
// HTTP-date form. Unparseable or past values yield zero.
func retryAfterSeconds(h http.Header) int {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return secs
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return int(d.Round(time.Second) / time.Second)
		}
	}
	return 0
}

// newProviderError builds a ProviderError, preferring the provider's own message.
func newProviderError(provider string, httpResp *http.Response, body []byte, message, code string) *llmerrors.ProviderError {
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	return &llmerrors.ProviderError{
		Provider:   provider,
		StatusCode: httpResp.StatusCode,
		Message:    message,
		Code:       code,
		Type:       classifyErrorType(httpResp.StatusCode, code),
		RetryAfter: retryAfterSeconds(httpResp.Header),
	}
}

func firstHeader(h http.Header, keys ...string) []string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return []string{v}
		}
	}
	return nil
}
