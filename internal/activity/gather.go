package activity

import (
	"context"
	"strings"

	"github.com/ahrav/namesmith/internal/domain"
)

const maxContextItems = 5

// GatherFunc derives prompt context from the inputs. It performs no I/O.
type GatherFunc func(inputs domain.GenerationInputs) ([]domain.Trend, []domain.CompanyExample)

// GatherResult is the output of the gather_context stage.
type GatherResult struct {
	Trends   []domain.Trend
	Examples []domain.CompanyExample
}

// GatherContext runs the configured gather function.
func (a *Activities) GatherContext(ctx context.Context, inputs domain.GenerationInputs) (GatherResult, error) {
	start := a.now()
	if err := ctx.Err(); err != nil {
		a.observe(StageGather, start, 0, err)
		return GatherResult{}, Classify(StageGather, err)
	}
	trends, examples := a.gather(inputs)
	a.observe(StageGather, start, len(trends)+len(examples), nil)
	return GatherResult{Trends: trends, Examples: examples}, nil
}

// HeuristicGather builds placeholder trends from topic tokens and company
// examples from topic then prompt tokens.
func HeuristicGather(inputs domain.GenerationInputs) ([]domain.Trend, []domain.CompanyExample) {
	topic := Tokenize(inputs.Topic)
	prompt := Tokenize(inputs.Prompt)

	trends := make([]domain.Trend, 0, min(len(topic), maxContextItems))
	for _, tok := range topic[:min(len(topic), maxContextItems)] {
		trends = append(trends, domain.Trend{
			Title:   capitalize(tok),
			Summary: "Emerging interest around " + tok,
		})
	}

	all := append(append([]string{}, topic...), prompt...)
	all = all[:min(len(all), maxContextItems)]
	examples := make([]domain.CompanyExample, 0, len(all))
	for _, tok := range all {
		examples = append(examples, domain.CompanyExample{
			Name:        capitalize(tok) + " Labs",
			Domain:      tok + "labs.com",
			Description: "Example company operating in " + tok + " space.",
			Categories:  []string{tok},
			Source:      "heuristic",
		})
	}
	return trends, examples
}

// NoopGather returns no context.
func NoopGather(domain.GenerationInputs) ([]domain.Trend, []domain.CompanyExample) {
	return []domain.Trend{}, []domain.CompanyExample{}
}

// Tokenize splits text on whitespace, "/" and "-" into lowercase tokens of at
// least three characters, deduplicated in first-seen order.
func Tokenize(text string) []string {
	cleaned := strings.NewReplacer("/", " ", "-", " ").Replace(text)
	seen := make(map[string]struct{})
	out := []string{}
	for _, f := range strings.Fields(cleaned) {
		tok := strings.ToLower(f)
		if len([]rune(tok)) < 3 {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
