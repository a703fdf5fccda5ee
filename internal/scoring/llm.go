package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/llm"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

// Sampling defaults for scoring calls.
const (
	DefaultTemperature = 0.4
	DefaultMaxTokens   = 2048
)

// LLMProvider asks a language model to score candidates.
type LLMProvider struct {
	client      llm.Client
	vendor      string
	model       string
	rubric      Rubric
	temperature float64
	logger      *slog.Logger
}

// LLMOption customizes an LLMProvider.
type LLMOption func(*LLMProvider)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) LLMOption { return func(p *LLMProvider) { p.temperature = t } }

// WithLogger sets the provider logger.
func WithLogger(l *slog.Logger) LLMOption { return func(p *LLMProvider) { p.logger = l } }

// NewLLMProvider creates a scoring provider bound to one vendor and model.
func NewLLMProvider(client llm.Client, vendor, model string, rubric Rubric, opts ...LLMOption) *LLMProvider {
	p := &LLMProvider{
		client:      client,
		vendor:      vendor,
		model:       model,
		rubric:      rubric,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "scoring", "provider", vendor, "model", model)
	return p
}

// Model returns the model name the provider calls.
func (p *LLMProvider) Model() string { return p.model }

// Score implements Provider.
//
// Returned items are joined to the inputs by full domain. An item whose tld
// is missing is matched on label alone. Items naming a domain that was not
// submitted are dropped, as are duplicate answers for one domain.
func (p *LLMProvider) Score(ctx context.Context, candidates []domain.Candidate) ([]domain.ScoredCandidate, error) {
	if len(candidates) == 0 {
		return []domain.ScoredCandidate{}, nil
	}

	system, user, err := BuildPrompts(candidates)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Complete(ctx, &transport.Request{
		Operation:    transport.OpScoring,
		Provider:     p.vendor,
		Model:        p.model,
		SystemPrompt: system,
		UserPrompt:   user,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  p.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("scoring call failed: %w", err)
	}

	items, err := llm.DecodeItems(resp.Content)
	if err != nil {
		return nil, err
	}

	byDomain := make(map[string]domain.Candidate, len(candidates))
	byLabel := make(map[string]domain.Candidate, len(candidates))
	for _, c := range candidates {
		c = c.Normalized()
		byDomain[c.FullDomain()] = c
		if _, ok := byLabel[c.Label]; !ok {
			byLabel[c.Label] = c
		}
	}

	out := make([]domain.ScoredCandidate, 0, len(items))
	scored := make(map[string]struct{}, len(items))
	unmatched := 0
	for _, item := range items {
		label := domain.NormalizeLabel(llm.StringField(item, "label"))
		tld := domain.NormalizeTLD(llm.StringField(item, "tld"))

		var (
			c  domain.Candidate
			ok bool
		)
		if tld != "" {
			c, ok = byDomain[domain.FullDomain(label, tld)]
		} else {
			c, ok = byLabel[label]
		}
		if !ok {
			unmatched++
			continue
		}
		if _, dup := scored[c.FullDomain()]; dup {
			continue
		}
		scored[c.FullDomain()] = struct{}{}

		if c.DisplayName == "" {
			c.DisplayName = llm.StringField(item, "display_name")
		}
		out = append(out, p.rubric.Coerce(c, item, llm.StringField(item, "rationale")))
	}

	if unmatched > 0 || len(out) < len(candidates) {
		p.logger.WarnContext(ctx, "scoring response did not cover every candidate",
			"submitted", len(candidates), "scored", len(out), "unmatched", unmatched)
	}
	return out, nil
}
