package transport

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// CurrentCanonicalVersion defines the canonicalization format version.
// Increment when canonicalization logic changes.
const CurrentCanonicalVersion = "v1"

// CanonicalPayload is the normalized form of a logical LLM request and the
// sole input to idempotency key hashing.
type CanonicalPayload struct {
	Operation OperationType  `json:"operation"`
	Provider  string         `json:"provider"`
	Model     string         `json:"model"`
	System    string         `json:"system,omitempty"`
	User      string         `json:"user"`
	Params    map[string]any `json:"params,omitempty"`
	Seed      *int64         `json:"seed,omitempty"`
	Version   string         `json:"version"`
}

// IdemKey is a SHA-256 hex digest of a canonical payload.
type IdemKey string

// String returns the string representation of the idempotency key.
func (k IdemKey) String() string { return string(k) }

// BuildCanonicalPayload normalizes a request so equivalent requests hash alike.
func BuildCanonicalPayload(req *Request) *CanonicalPayload {
	payload := &CanonicalPayload{
		Operation: req.Operation,
		Provider:  strings.ToLower(strings.TrimSpace(req.Provider)),
		Model:     strings.TrimSpace(req.Model),
		System:    normalizeText(req.SystemPrompt),
		User:      normalizeText(req.UserPrompt),
		Seed:      req.Seed,
		Version:   CurrentCanonicalVersion,
	}

	params := make(map[string]any)
	if req.MaxTokens > 0 {
		params["max_tokens"] = req.MaxTokens
	}
	if req.Temperature != 0 {
		params["temperature"] = req.Temperature
	}
	if len(params) > 0 {
		payload.Params = params
	}

	return payload
}

// GenerateIdemKey builds the canonical payload and hashes it.
// encoding/json sorts map keys, so the serialization is stable.
func GenerateIdemKey(req *Request) (IdemKey, error) {
	raw, err := json.Marshal(BuildCanonicalPayload(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal canonical payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	return IdemKey(hex.EncodeToString(sum[:])), nil
}

// normalizeText trims, converts CRLF to LF and collapses runs of whitespace.
func normalizeText(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	return strings.Join(strings.Fields(text), " ")
}
