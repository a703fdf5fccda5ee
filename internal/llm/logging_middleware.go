package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ahrav/namesmith/internal/llm/configuration"
	llmerrors "github.com/ahrav/namesmith/internal/llm/errors"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

// CallObserver receives one notification per LLM call.
type CallObserver interface {
	ObserveLLMCall(provider, model, operation, outcome string, elapsed time.Duration)
}

type loggingMiddleware struct {
	logger   *slog.Logger
	observer CallObserver
	config   configuration.ObservabilityConfig
}

// NewLoggingMiddleware logs request start and completion with prompt
// redaction, and forwards outcomes to observer when one is set.
func NewLoggingMiddleware(cfg configuration.ObservabilityConfig, logger *slog.Logger, observer CallObserver) transport.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	lm := &loggingMiddleware{
		logger:   logger.With("component", "llm"),
		observer: observer,
		config:   cfg,
	}
	return lm.middleware
}

func (m *loggingMiddleware) middleware(next transport.Handler) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		if m.config.LogRequests {
			m.logRequest(ctx, req)
		}

		start := time.Now()
		resp, err := next.Handle(ctx, req)
		elapsed := time.Since(start)

		outcome := "success"
		if err != nil {
			outcome = string(llmerrors.Classify(err))
			m.logger.ErrorContext(ctx, "LLM request failed",
				"trace_id", req.TraceID,
				"provider", req.Provider,
				"model", req.Model,
				"operation", req.Operation,
				"duration_ms", elapsed.Milliseconds(),
				"error_type", outcome,
				"error", err)
		} else if m.config.LogRequests {
			m.logSuccess(ctx, req, resp, elapsed)
		}

		if m.observer != nil {
			m.observer.ObserveLLMCall(req.Provider, req.Model, string(req.Operation), outcome, elapsed)
		}
		return resp, err
	})
}

func (m *loggingMiddleware) logRequest(ctx context.Context, req *transport.Request) {
	fields := []any{
		"trace_id", req.TraceID,
		"provider", req.Provider,
		"model", req.Model,
		"operation", req.Operation,
		"temperature", req.Temperature,
	}
	if m.config.RedactPrompts {
		fields = append(fields, "system_prompt_length", len(req.SystemPrompt), "user_prompt_length", len(req.UserPrompt))
	} else {
		fields = append(fields, "system_prompt", req.SystemPrompt, "user_prompt", req.UserPrompt)
	}
	m.logger.DebugContext(ctx, "LLM request started", fields...)
}

func (m *loggingMiddleware) logSuccess(ctx context.Context, req *transport.Request, resp *transport.Response, elapsed time.Duration) {
	fields := []any{
		"trace_id", req.TraceID,
		"provider", req.Provider,
		"model", req.Model,
		"operation", req.Operation,
		"duration_ms", elapsed.Milliseconds(),
		"finish_reason", resp.FinishReason,
		"total_tokens", resp.Usage.TotalTokens,
		"provider_request_ids", strings.Join(resp.ProviderRequestIDs, ","),
	}
	if m.config.RedactPrompts {
		fields = append(fields, "response_length", len(resp.Content))
	} else {
		preview := resp.Content
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		fields = append(fields, "response_preview", preview)
	}
	m.logger.InfoContext(ctx, "LLM request completed", fields...)
}
