package generation

import (
	"fmt"
	"strings"

	"github.com/ahrav/namesmith/internal/domain"
)

const maxPromptContextItems = 5

const generationSystemPrompt = `You are an expert brand strategist who crafts inventive, pronounceable domain names.
Generate concise, original domain labels without numbers or hyphens.
Each idea must include:
- label: lowercase letters only, 4 to 12 characters
- tld: one of the requested TLDs
- display_name: human-friendly capitalization of the label
- reasoning: short phrase (under 20 words) explaining the name
Reply with a pure JSON array containing between 10 and 25 objects. No prose, no code fences.`

// BuildPrompts renders the system instructions and user prompt for one
// generation call.
func BuildPrompts(inputs domain.GenerationInputs, trends []domain.Trend, examples []domain.CompanyExample) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Entry path: %s\n", inputs.EntryPath)
	if t := strings.TrimSpace(inputs.Topic); t != "" {
		fmt.Fprintf(&b, "Topic focus: %s\n", t)
	}
	if p := strings.TrimSpace(inputs.Prompt); p != "" {
		fmt.Fprintf(&b, "Business prompt: %s\n", p)
	}
	if len(inputs.Categories) > 0 {
		fmt.Fprintf(&b, "Target categories: %s\n", strings.Join(inputs.Categories, ", "))
	}
	fmt.Fprintf(&b, "Preferred TLDs: %s\n", strings.Join(inputs.NormalizedTLDs(), ", "))
	fmt.Fprintf(&b, "Requested count: %d\n", inputs.Count)

	if len(trends) > 0 {
		b.WriteString("\nRelevant trends:\n")
		for _, t := range trends[:min(len(trends), maxPromptContextItems)] {
			b.WriteString("- " + t.Title)
			if t.Summary != "" {
				b.WriteString(": " + t.Summary)
			}
			b.WriteByte('\n')
		}
	}

	if len(examples) > 0 {
		b.WriteString("\nReference companies:\n")
		for _, ex := range examples[:min(len(examples), maxPromptContextItems)] {
			b.WriteString("- " + ex.Name)
			if ex.Domain != "" {
				b.WriteString(" (" + ex.Domain + ")")
			}
			if ex.Description != "" {
				b.WriteString(": " + ex.Description)
			}
			b.WriteByte('\n')
		}
	}

	return generationSystemPrompt, strings.TrimRight(b.String(), "\n")
}
