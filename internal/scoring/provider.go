// Package scoring rates candidate domain names on a four-dimension rubric:
// memorability, pronounceability, brandability and overall.
//
// Providers return results in any order; callers join them back to their
// inputs by full domain, never by index. Every score a provider emits has
// been coerced into [domain.MinScore, domain.MaxScore].
package scoring

import (
	"context"

	"github.com/ahrav/namesmith/internal/domain"
)

// Provider scores candidates. Empty input yields empty output without any
// backing call.
type Provider interface {
	Score(ctx context.Context, candidates []domain.Candidate) ([]domain.ScoredCandidate, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(context.Context, []domain.Candidate) ([]domain.ScoredCandidate, error)

// Score calls f.
func (f ProviderFunc) Score(ctx context.Context, candidates []domain.Candidate) ([]domain.ScoredCandidate, error) {
	return f(ctx, candidates)
}
