package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ahrav/namesmith/internal/domain"
)

var errTrailingData = errors.New("trailing data after JSON value")

var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

// DecodeItems extracts the list of JSON objects a model was asked to return.
// It accepts a bare array or an object wrapping the array under "items",
// optionally fenced in ``` markers. Anything else wraps domain.ErrInvalidContent.
func DecodeItems(content string) ([]map[string]any, error) {
	text := stripFences(content)

	raw, err := decodeJSON(text)
	if err != nil {
		repaired := repairJSON(text)
		if repaired == text {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidContent, snippet(content))
		}
		if raw, err = decodeJSON(repaired); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidContent, snippet(content))
		}
	}

	var list []any
	switch v := raw.(type) {
	case []any:
		list = v
	case map[string]any:
		items, ok := v["items"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a JSON array of objects", domain.ErrInvalidContent)
		}
		list = items
	default:
		return nil, fmt.Errorf("%w: expected a JSON array of objects", domain.ErrInvalidContent)
	}

	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", domain.ErrInvalidContent, i)
		}
		out = append(out, obj)
	}
	return out, nil
}

// StringField returns a trimmed string value or "" when absent or not a string.
func StringField(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return strings.TrimSpace(s)
}

func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errTrailingData
	}
	return v, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// repairJSON makes one attempt at common model formatting slips: prose
// around the payload and trailing commas.
func repairJSON(s string) string {
	repaired := s
	if start := strings.IndexAny(repaired, "[{"); start > 0 {
		repaired = repaired[start:]
	}
	if end := strings.LastIndexAny(repaired, "]}"); end >= 0 && end < len(repaired)-1 {
		repaired = repaired[:end+1]
	}
	repaired = trailingComma.ReplaceAllString(repaired, "$1")
	return strings.TrimSpace(repaired)
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
