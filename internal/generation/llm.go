package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/llm"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

// Sampling defaults for generation calls.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// LLMProvider asks a language model for candidates through the resilient
// llm.Client. Vendor selects the adapter ("openai", "anthropic", "google").
type LLMProvider struct {
	client      llm.Client
	vendor      string
	model       string
	temperature float64
	maxTokens   int64
	logger      *slog.Logger
}

// LLMOption customizes an LLMProvider.
type LLMOption func(*LLMProvider)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) LLMOption { return func(p *LLMProvider) { p.temperature = t } }

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int64) LLMOption { return func(p *LLMProvider) { p.maxTokens = n } }

// WithLogger sets the provider logger.
func WithLogger(l *slog.Logger) LLMOption { return func(p *LLMProvider) { p.logger = l } }

// NewLLMProvider creates a generation provider bound to one vendor and model.
func NewLLMProvider(client llm.Client, vendor, model string, opts ...LLMOption) *LLMProvider {
	p := &LLMProvider{
		client:      client,
		vendor:      vendor,
		model:       model,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "generation", "provider", vendor, "model", model)
	return p
}

// Model returns the model name the provider calls.
func (p *LLMProvider) Model() string { return p.model }

// Generate implements Provider. Content that is not a JSON array of objects
// fails with domain.ErrInvalidContent.
func (p *LLMProvider) Generate(
	ctx context.Context,
	inputs domain.GenerationInputs,
	trends []domain.Trend,
	examples []domain.CompanyExample,
) ([]domain.Candidate, error) {
	system, user := BuildPrompts(inputs, trends, examples)

	resp, err := p.client.Complete(ctx, &transport.Request{
		Operation:    transport.OpGeneration,
		Provider:     p.vendor,
		Model:        p.model,
		SystemPrompt: system,
		UserPrompt:   user,
		MaxTokens:    p.maxTokens,
		Temperature:  p.temperature,
		Metadata:     map[string]string{"job_id": inputs.JobID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	items, err := llm.DecodeItems(resp.Content)
	if err != nil {
		return nil, err
	}

	tlds := inputs.NormalizedTLDs()
	out := make([]domain.Candidate, 0, len(items))
	skipped := 0
	for _, item := range items {
		label := domain.NormalizeLabel(llm.StringField(item, "label"))
		tld := domain.NormalizeTLD(llm.StringField(item, "tld"))
		if tld == "" && len(tlds) > 0 {
			tld = tlds[0]
		}
		if label == "" || tld == "" {
			skipped++
			continue
		}
		display := llm.StringField(item, "display_name")
		if display == "" {
			display = DisplayName(label)
		}
		out = append(out, domain.Candidate{
			Label:       label,
			TLD:         tld,
			DisplayName: display,
			Reasoning:   llm.StringField(item, "reasoning"),
		})
	}

	if skipped > 0 {
		p.logger.WarnContext(ctx, "skipped generation items without label or tld",
			"job_id", inputs.JobID, "skipped", skipped)
	}
	return out, nil
}
