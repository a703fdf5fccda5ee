package workflow

import (
	"maps"

	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/domain"
)

// Field identifies a clearable State field.
type Field uint8

// Clearable fields.
const (
	FieldCandidates Field = 1 << iota
	FieldFiltered
	FieldScored
	FieldAvailability
)

// Has reports whether f includes other.
func (f Field) Has(other Field) bool { return f&other != 0 }

// State is the accumulated result of the stages run so far. A State is never
// mutated in place; Merge returns a new value.
type State struct {
	Inputs       domain.GenerationInputs     `json:"inputs"`
	Trends       []domain.Trend              `json:"trends"`
	Examples     []domain.CompanyExample     `json:"company_examples"`
	Candidates   []domain.Candidate          `json:"candidates"`
	Filtered     []domain.Candidate          `json:"filtered"`
	Scored       []domain.ScoredCandidate    `json:"scored"`
	Availability []domain.AvailabilityResult `json:"availability"`
	PersistedIDs []uuid.UUID                 `json:"persisted_domain_ids"`
	Progress     map[string]int              `json:"progress"`
}

// NewState starts a run from resolved inputs.
func NewState(inputs domain.GenerationInputs) State {
	return State{Inputs: inputs, Progress: map[string]int{}}
}

// Delta is one stage's contribution. Nil slices leave the State field as is.
type Delta struct {
	Trends       []domain.Trend
	Examples     []domain.CompanyExample
	Candidates   []domain.Candidate
	Filtered     []domain.Candidate
	Scored       []domain.ScoredCandidate
	Availability []domain.AvailabilityResult
	PersistedIDs []uuid.UUID
	Progress     map[string]int

	// Consumed lists fields the stage read and that must be cleared.
	Consumed Field
}

// Merge applies d to s: consumed fields are cleared first, then every
// non-nil delta field replaces its State counterpart and progress counters
// are merged key by key.
func (s State) Merge(d Delta) State {
	out := s
	out.Progress = maps.Clone(s.Progress)
	if out.Progress == nil {
		out.Progress = map[string]int{}
	}

	if d.Consumed.Has(FieldCandidates) {
		out.Candidates = nil
	}
	if d.Consumed.Has(FieldFiltered) {
		out.Filtered = nil
	}
	if d.Consumed.Has(FieldScored) {
		out.Scored = nil
	}
	if d.Consumed.Has(FieldAvailability) {
		out.Availability = nil
	}

	if d.Trends != nil {
		out.Trends = d.Trends
	}
	if d.Examples != nil {
		out.Examples = d.Examples
	}
	if d.Candidates != nil {
		out.Candidates = d.Candidates
	}
	if d.Filtered != nil {
		out.Filtered = d.Filtered
	}
	if d.Scored != nil {
		out.Scored = d.Scored
	}
	if d.Availability != nil {
		out.Availability = d.Availability
	}
	if d.PersistedIDs != nil {
		out.PersistedIDs = d.PersistedIDs
	}
	maps.Copy(out.Progress, d.Progress)
	return out
}

// ToScore is the scoring stage input: the filtered set, falling back to raw
// candidates.
func (s State) ToScore() []domain.Candidate {
	if len(s.Filtered) > 0 {
		return s.Filtered
	}
	return s.Candidates
}

// ToCheck is the availability stage input: scored, then filtered, then raw
// candidates.
func (s State) ToCheck() []domain.Candidate {
	if len(s.Scored) > 0 {
		out := make([]domain.Candidate, len(s.Scored))
		for i, sc := range s.Scored {
			out[i] = sc.Candidate
		}
		return out
	}
	if len(s.Filtered) > 0 {
		return s.Filtered
	}
	return s.Candidates
}
