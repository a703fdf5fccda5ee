// Package generation produces candidate domain names. A Provider turns
// generation inputs plus gathered context into unscored candidates; the
// pipeline's dedupe stage enforces the requested count, so providers may
// return more or fewer candidates than asked for.
package generation

import (
	"context"
	"strings"
	"unicode"

	"github.com/ahrav/namesmith/internal/domain"
)

// Provider generates domain-name candidates.
type Provider interface {
	Generate(
		ctx context.Context,
		inputs domain.GenerationInputs,
		trends []domain.Trend,
		examples []domain.CompanyExample,
	) ([]domain.Candidate, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(context.Context, domain.GenerationInputs, []domain.Trend, []domain.CompanyExample) ([]domain.Candidate, error)

// Generate calls f.
func (f ProviderFunc) Generate(
	ctx context.Context,
	inputs domain.GenerationInputs,
	trends []domain.Trend,
	examples []domain.CompanyExample,
) ([]domain.Candidate, error) {
	return f(ctx, inputs, trends, examples)
}

// DisplayName capitalizes the first letter of a label.
func DisplayName(label string) string {
	if label == "" {
		return ""
	}
	r := []rune(label)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// letterTokens splits text into lowercase ASCII-letter runs of at least minLen.
func letterTokens(text string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= minLen {
			out = append(out, f)
		}
	}
	return out
}
