package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Rubric bounds shared by every scoring provider.
const (
	MinScore           = 1.0
	MaxScore           = 10.0
	MaxRationaleLength = 200
)

// ClampScore bounds v to [MinScore, MaxScore]. NaN maps to MinScore.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// CoerceScore converts a raw decoded JSON value into a number.
// The boolean is false when the value is missing or not numeric.
func CoerceScore(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return CoerceScore(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return CoerceScore(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return CoerceScore(f)
	default:
		return 0, false
	}
}

// TruncateRationale caps s at MaxRationaleLength runes.
func TruncateRationale(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxRationaleLength {
		return s
	}
	return string([]rune(s)[:MaxRationaleLength])
}
