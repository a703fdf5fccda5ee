package scoring

import (
	"context"
	"fmt"

	"github.com/ahrav/namesmith/internal/domain"
)

// HeuristicProvider scores labels from their shape alone. It is
// deterministic and free, which makes it the default scorer.
type HeuristicProvider struct {
	rubric Rubric
}

// NewHeuristicProvider returns a HeuristicProvider using rubric.
func NewHeuristicProvider(rubric Rubric) *HeuristicProvider {
	return &HeuristicProvider{rubric: rubric}
}

// Score implements Provider.
func (p *HeuristicProvider) Score(ctx context.Context, candidates []domain.Candidate) ([]domain.ScoredCandidate, error) {
	if len(candidates) == 0 {
		return []domain.ScoredCandidate{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		c = c.Normalized()
		m := memorability(c.Label)
		pr := pronounceability(c.Label)
		b := brandability(c.Label)
		raw := map[string]any{
			"memorability":     m,
			"pronounceability": pr,
			"brandability":     b,
		}
		rationale := fmt.Sprintf("%d letters, %.0f%% vowel-consonant alternation, %d distinct letters.",
			len(c.Label), alternation(c.Label)*100, distinctLetters(c.Label))
		sc := p.rubric.Coerce(c, raw, rationale)
		sc.Overall = roundTenth(sc.Overall)
		out = append(out, sc)
	}
	return out, nil
}

// memorability peaks for five to eight letters.
func memorability(label string) float64 {
	switch n := len(label); {
	case n >= 5 && n <= 8:
		return 9
	case n == 4:
		return 8
	case n <= 10 && n > 8:
		return 7
	case n <= 12 && n > 10:
		return 5
	default:
		return 3
	}
}

// pronounceability rewards vowel/consonant alternation and penalizes
// consonant clusters of three or more.
func pronounceability(label string) float64 {
	score := domain.MinScore + 9*alternation(label)
	run := 0
	for _, r := range label {
		if isVowel(r) {
			run = 0
			continue
		}
		run++
		if run == 3 {
			score--
		}
	}
	return roundTenth(domain.ClampScore(score))
}

// brandability rewards letter variety.
func brandability(label string) float64 {
	if label == "" {
		return domain.MinScore
	}
	variety := float64(distinctLetters(label)) / float64(len(label))
	return roundTenth(domain.ClampScore(2 + 8*variety))
}

func alternation(label string) float64 {
	if len(label) < 2 {
		return 0
	}
	switches := 0
	for i := 1; i < len(label); i++ {
		if isVowel(rune(label[i])) != isVowel(rune(label[i-1])) {
			switches++
		}
	}
	return float64(switches) / float64(len(label)-1)
}

func distinctLetters(label string) int {
	seen := make(map[rune]struct{}, len(label))
	for _, r := range label {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
