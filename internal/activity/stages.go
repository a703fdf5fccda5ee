package activity

import (
	"context"
	"unicode/utf8"

	"github.com/ahrav/namesmith/internal/domain"
)

// Allowed label lengths, inclusive.
const (
	MinLabelLength = 4
	MaxLabelLength = 12
)

// Generate invokes the generation provider under the generate budget.
func (a *Activities) Generate(
	ctx context.Context,
	inputs domain.GenerationInputs,
	trends []domain.Trend,
	examples []domain.CompanyExample,
) ([]domain.Candidate, error) {
	start := a.now()
	out, err := WithBudget(ctx, StageGenerate, a.budgets.Generate,
		func(ctx context.Context) ([]domain.Candidate, error) {
			return a.providers.Generation.Generate(ctx, inputs, trends, examples)
		})
	if err != nil {
		err = Classify(StageGenerate, err)
		a.observe(StageGenerate, start, 0, err)
		return nil, err
	}
	a.observe(StageGenerate, start, len(out), nil)
	return out, nil
}

// DedupeAndFilter records the dedupe_and_filter stage around FilterCandidates.
func (a *Activities) DedupeAndFilter(inputs domain.GenerationInputs, candidates []domain.Candidate) []domain.Candidate {
	start := a.now()
	out := FilterCandidates(candidates, inputs.Count)
	a.observe(StageDedupe, start, len(out), nil)
	return out
}

// FilterCandidates lower-cases labels, drops case-insensitive duplicates
// (first seen wins) and labels outside [MinLabelLength, MaxLabelLength],
// and stops once limit survivors are collected. Order is preserved.
func FilterCandidates(candidates []domain.Candidate, limit int) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]domain.Candidate, 0, min(len(candidates), max(limit, 0)))
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		c = c.Normalized()
		if _, dup := seen[c.Label]; dup {
			continue
		}
		if n := utf8.RuneCountInString(c.Label); n < MinLabelLength || n > MaxLabelLength {
			continue
		}
		seen[c.Label] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Score invokes the scoring provider under the score budget.
func (a *Activities) Score(ctx context.Context, candidates []domain.Candidate) ([]domain.ScoredCandidate, error) {
	start := a.now()
	out, err := WithBudget(ctx, StageScore, a.budgets.Score,
		func(ctx context.Context) ([]domain.ScoredCandidate, error) {
			return a.providers.Scoring.Score(ctx, candidates)
		})
	if err != nil {
		err = Classify(StageScore, err)
		a.observe(StageScore, start, 0, err)
		return nil, err
	}
	a.observe(StageScore, start, len(out), nil)
	return out, nil
}

// CheckAvailability invokes the availability provider under the availability
// budget. Per-item failures arrive as status=error results, not as errors.
func (a *Activities) CheckAvailability(ctx context.Context, candidates []domain.Candidate) ([]domain.AvailabilityResult, error) {
	start := a.now()
	out, err := WithBudget(ctx, StageAvailability, a.budgets.Availability,
		func(ctx context.Context) ([]domain.AvailabilityResult, error) {
			return a.providers.Availability.Check(ctx, candidates)
		})
	if err != nil {
		err = Classify(StageAvailability, err)
		a.observe(StageAvailability, start, 0, err)
		return nil, err
	}
	a.observe(StageAvailability, start, len(out), nil)
	return out, nil
}
