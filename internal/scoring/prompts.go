package scoring

import (
	"encoding/json"
	"fmt"

	"github.com/ahrav/namesmith/internal/domain"
)

const scoringSystemPrompt = `You are evaluating candidate brand names. Score each according to the rubric below.
Return a JSON array where every object includes:
- label (lowercase)
- tld
- display_name (optional)
- memorability (integer 1-10)
- pronounceability (integer 1-10)
- brandability (integer 1-10)
- overall (integer 1-10)
- rationale (max 25 words)
Output JSON only, use integer scores, no commentary or code fences.`

type promptCandidate struct {
	Label       string `json:"label"`
	TLD         string `json:"tld"`
	DisplayName string `json:"display_name,omitempty"`
}

// BuildPrompts renders the system instructions and user prompt for scoring candidates.
func BuildPrompts(candidates []domain.Candidate) (system, user string, err error) {
	payload := make([]promptCandidate, 0, len(candidates))
	for _, c := range candidates {
		c = c.Normalized()
		payload = append(payload, promptCandidate{Label: c.Label, TLD: c.TLD, DisplayName: c.DisplayName})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode candidates: %w", err)
	}
	return scoringSystemPrompt, "Candidates to score:\n" + string(raw), nil
}
