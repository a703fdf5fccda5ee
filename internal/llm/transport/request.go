// Package transport defines the normalized LLM request/response and the
// composable handler pipeline that carries it to a provider over HTTP.
package transport

import (
	"net/http"
	"time"
)

// OperationType differentiates generation and scoring calls.
// It affects rate-limit keys, metrics labels and idempotency keys.
type OperationType string

const (
	// OpGeneration asks a model to propose domain-name candidates.
	OpGeneration OperationType = "generation"

	// OpScoring asks a model to grade candidates against the rubric.
	OpScoring OperationType = "scoring"
)

// Request is a provider-neutral chat completion request: one system
// instruction block and one user prompt.
type Request struct {
	Operation OperationType `json:"operation"`
	Provider  string        `json:"provider"` // "openai"|"anthropic"|"google"
	Model     string        `json:"model"`

	SystemPrompt string `json:"system_prompt,omitempty"`
	UserPrompt   string `json:"user_prompt"`

	MaxTokens   int64   `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Seed        *int64  `json:"seed,omitempty"`

	Timeout        time.Duration     `json:"timeout"`
	IdempotencyKey string            `json:"idempotency_key"`
	TraceID        string            `json:"trace_id"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// FinishReason normalizes why a provider stopped producing tokens.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolUse       FinishReason = "tool_use"
)

// Response is the normalized output from any provider.
type Response struct {
	Content            string          `json:"content"`
	FinishReason       FinishReason    `json:"finish_reason"`
	ProviderRequestIDs []string        `json:"provider_request_ids"`
	Usage              NormalizedUsage `json:"usage"`
	Headers            http.Header     `json:"-"`
	RawBody            []byte          `json:"-"`
}

// NormalizedUsage provides consistent usage metrics across providers.
type NormalizedUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
	LatencyMs        int64 `json:"latency_ms"`
}
