package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EntryPath identifies the product flow that seeded a generation request.
type EntryPath string

const (
	EntryPathInvestor EntryPath = "investor"
	EntryPathBusiness EntryPath = "business"
)

// Candidate count bounds for a single generation request.
const (
	MinCandidateCount = 1
	MaxCandidateCount = 200
)

// GenerationInputs carries everything a pipeline run needs from its caller.
// Values are treated as immutable; use WithModels to derive a copy.
type GenerationInputs struct {
	JobID      uuid.UUID  `json:"job_id"                validate:"required"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	EntryPath  EntryPath  `json:"entry_path"            validate:"required,oneof=investor business"`
	Topic      string     `json:"topic,omitempty"       validate:"max=500"`
	Prompt     string     `json:"prompt,omitempty"      validate:"max=2000"`
	Categories []string   `json:"categories,omitempty"  validate:"max=20,dive,max=100"`
	TLDs       []string   `json:"tlds"                  validate:"required,min=1,max=20,dive,required,max=24"`
	Count      int        `json:"count"                 validate:"min=1,max=200"`

	GenerationModel string `json:"generation_model,omitempty" validate:"max=200"`
	ScoringModel    string `json:"scoring_model,omitempty"    validate:"max=200"`
}

// Validate checks the inputs against their struct constraints.
func (in GenerationInputs) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInputs, err)
	}
	return nil
}

// WithModels returns a copy of the inputs with the given model names set.
// Slices are cloned so the copy never aliases the original.
func (in GenerationInputs) WithModels(sel ModelSelection) GenerationInputs {
	out := in
	out.Categories = cloneStrings(in.Categories)
	out.TLDs = cloneStrings(in.TLDs)
	if in.UserID != nil {
		id := *in.UserID
		out.UserID = &id
	}
	out.GenerationModel = sel.Generation
	out.ScoringModel = sel.Scoring
	return out
}

// NormalizedTLDs returns the requested TLDs lower-cased, without leading dots
// and without duplicates, preserving order.
func (in GenerationInputs) NormalizedTLDs() []string {
	seen := make(map[string]struct{}, len(in.TLDs))
	out := make([]string, 0, len(in.TLDs))
	for _, t := range in.TLDs {
		n := NormalizeTLD(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ModelSelection names the effective models for a pipeline run.
type ModelSelection struct {
	Generation string `json:"generation_model"`
	Scoring    string `json:"scoring_model"`
}
