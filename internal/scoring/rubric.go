package scoring

import (
	"math"

	"github.com/ahrav/namesmith/internal/domain"
)

// Weights weight the three sub-scores when deriving an overall score.
type Weights struct {
	Memorability     float64
	Pronounceability float64
	Brandability     float64
}

// Rubric versions the scoring scheme and carries its weights.
type Rubric struct {
	Version string
	Weights Weights
}

// DefaultRubric is version v1 with equal weights.
func DefaultRubric() Rubric {
	return Rubric{Version: "v1", Weights: Weights{Memorability: 1, Pronounceability: 1, Brandability: 1}}
}

// Overall returns the weighted mean of the sub-scores, clamped to the rubric
// range. Non-positive total weight falls back to equal weights.
func (r Rubric) Overall(memorability, pronounceability, brandability float64) float64 {
	w := r.Weights
	total := w.Memorability + w.Pronounceability + w.Brandability
	if total <= 0 {
		return domain.ClampScore((memorability + pronounceability + brandability) / 3)
	}
	sum := memorability*w.Memorability + pronounceability*w.Pronounceability + brandability*w.Brandability
	return domain.ClampScore(sum / total)
}

// Coerce builds a ScoredCandidate from raw provider values.
// Missing or non-numeric sub-scores become domain.MinScore; a missing
// overall is derived from the sub-scores; all four are clamped.
func (r Rubric) Coerce(c domain.Candidate, raw map[string]any, rationale string) domain.ScoredCandidate {
	sub := func(key string) float64 {
		v, ok := domain.CoerceScore(raw[key])
		if !ok {
			return domain.MinScore
		}
		return domain.ClampScore(v)
	}

	m := sub("memorability")
	p := sub("pronounceability")
	b := sub("brandability")

	overall, ok := domain.CoerceScore(raw["overall"])
	if !ok {
		overall = r.Overall(m, p, b)
	}

	return domain.ScoredCandidate{
		Candidate:        c,
		Memorability:     m,
		Pronounceability: p,
		Brandability:     b,
		Overall:          domain.ClampScore(overall),
		RubricVersion:    r.Version,
		Rationale:        domain.TruncateRationale(rationale),
	}
}

func roundTenth(v float64) float64 { return math.Round(v*10) / 10 }
