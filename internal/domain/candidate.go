// Package domain defines the value types and sentinel errors shared by every
// stage of the naming pipeline.
package domain

import (
	"strings"
	"time"
)

// Candidate is an unscored, unchecked domain-name proposal.
type Candidate struct {
	Label       string `json:"label"`
	TLD         string `json:"tld"`
	DisplayName string `json:"display_name,omitempty"`
	Reasoning   string `json:"reasoning,omitempty"`
}

// FullDomain returns the lower-cased "label.tld" identity of the candidate.
func (c Candidate) FullDomain() string {
	return FullDomain(c.Label, c.TLD)
}

// Normalized returns a copy with label and tld lower-cased and trimmed.
func (c Candidate) Normalized() Candidate {
	c.Label = NormalizeLabel(c.Label)
	c.TLD = NormalizeTLD(c.TLD)
	return c
}

// FullDomain joins a label and tld into the canonical domain identity.
func FullDomain(label, tld string) string {
	return NormalizeLabel(label) + "." + NormalizeTLD(tld)
}

// NormalizeLabel lower-cases and trims a label.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// NormalizeTLD lower-cases a tld and strips surrounding whitespace and a leading dot.
func NormalizeTLD(tld string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tld)), ".")
}

// ScoredCandidate is a Candidate annotated with rubric scores.
// Scores always lie in [MinScore, MaxScore] once produced by a scoring provider.
type ScoredCandidate struct {
	Candidate

	Memorability     float64 `json:"memorability"`
	Pronounceability float64 `json:"pronounceability"`
	Brandability     float64 `json:"brandability"`
	Overall          float64 `json:"overall"`
	RubricVersion    string  `json:"rubric_version"`
	Rationale        string  `json:"rationale,omitempty"`
}

// AvailabilityStatus is the four-way outcome of a registrar lookup.
type AvailabilityStatus string

const (
	AvailabilityAvailable  AvailabilityStatus = "available"
	AvailabilityRegistered AvailabilityStatus = "registered"
	AvailabilityUnknown    AvailabilityStatus = "unknown"
	AvailabilityError      AvailabilityStatus = "error"
)

// Valid reports whether s is one of the known statuses.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityRegistered, AvailabilityUnknown, AvailabilityError:
		return true
	}
	return false
}

// Definitive reports whether the status is a settled registrar answer worth caching.
func (s AvailabilityStatus) Definitive() bool {
	return s == AvailabilityAvailable || s == AvailabilityRegistered
}

// AvailabilityResult is the outcome of checking a single domain.
type AvailabilityResult struct {
	FullDomain string             `json:"full_domain"`
	Status     AvailabilityStatus `json:"status"`
	Registrar  string             `json:"registrar,omitempty"`
	CheckedAt  time.Time          `json:"checked_at"`
	// Raw holds the vendor payload or error detail for audit.
	Raw map[string]any `json:"raw,omitempty"`
	// Cached marks a result served from the result cache; CheckedAt is then
	// the time of the original lookup.
	Cached bool `json:"cached,omitempty"`
}

// Trend is a lightweight market signal used to seed generation prompts.
type Trend struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags,omitempty"`
}

// CompanyExample is a reference company used to seed generation prompts.
type CompanyExample struct {
	Name        string   `json:"name"`
	Domain      string   `json:"domain"`
	Description string   `json:"description"`
	Categories  []string `json:"categories,omitempty"`
	Source      string   `json:"source,omitempty"`
}
