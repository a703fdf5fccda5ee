package generation

import (
	"context"
	"fmt"

	"github.com/ahrav/namesmith/internal/domain"
)

const (
	// heuristicOversample asks for more names than requested so the dedupe
	// stage has room to drop collisions and out-of-range labels.
	heuristicOversample = 2
	maxHeuristicNames   = 400
	maxStemLength       = 7
)

var (
	brandPrefixes = []string{"nova", "astra", "lumi", "vela", "zen", "orbi"}
	brandSuffixes = []string{"ly", "ify", "hub", "flux", "nest", "wise", "forge", "loop"}
	seedWords     = []string{"lumen", "quanta", "vertex", "orbit", "cadence", "beacon"}
)

// HeuristicProvider combines topic and category tokens with brandable
// prefixes and suffixes. Output is deterministic for a given input and costs
// nothing, which makes it the default generator.
type HeuristicProvider struct{}

// NewHeuristicProvider returns a HeuristicProvider.
func NewHeuristicProvider() *HeuristicProvider { return &HeuristicProvider{} }

// Generate implements Provider.
func (p *HeuristicProvider) Generate(
	ctx context.Context,
	inputs domain.GenerationInputs,
	_ []domain.Trend,
	_ []domain.CompanyExample,
) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tlds := inputs.NormalizedTLDs()
	if len(tlds) == 0 {
		return nil, fmt.Errorf("%w: no usable tlds", domain.ErrInvalidInputs)
	}

	stems := heuristicStems(inputs)
	want := min(max(inputs.Count, 1)*heuristicOversample, maxHeuristicNames)

	out := make([]domain.Candidate, 0, want)
	seen := make(map[string]struct{}, want)
	add := func(label, reasoning string) bool {
		if _, ok := seen[label]; ok {
			return false
		}
		seen[label] = struct{}{}
		out = append(out, domain.Candidate{
			Label:       label,
			TLD:         tlds[len(out)%len(tlds)],
			DisplayName: DisplayName(label),
			Reasoning:   reasoning,
		})
		return len(out) >= want
	}

	for _, stem := range stems {
		for i, suffix := range brandSuffixes {
			if add(stem+suffix, fmt.Sprintf("Pairs %q with the %q suffix.", stem, suffix)) {
				return out, nil
			}
			prefix := brandPrefixes[i%len(brandPrefixes)]
			if add(prefix+stem, fmt.Sprintf("Leads %q with the %q prefix.", stem, prefix)) {
				return out, nil
			}
		}
	}
	return out, nil
}

// heuristicStems returns the topic, prompt and category tokens trimmed to
// stem length, falling back to seed words when the inputs carry none.
func heuristicStems(inputs domain.GenerationInputs) []string {
	var raw []string
	raw = append(raw, letterTokens(inputs.Topic, 3)...)
	raw = append(raw, letterTokens(inputs.Prompt, 3)...)
	for _, c := range inputs.Categories {
		raw = append(raw, letterTokens(c, 3)...)
	}
	if len(raw) == 0 {
		raw = seedWords
	}

	seen := make(map[string]struct{}, len(raw))
	stems := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) > maxStemLength {
			tok = tok[:maxStemLength]
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		stems = append(stems, tok)
	}
	return stems
}
