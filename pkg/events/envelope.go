// Package events provides the event infrastructure for job and stage lifecycle
// notifications. It defines the Envelope type wrapping an event payload with
// consistent metadata and the EventSink interface for delivery.
package events

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the pipeline executor.
const (
	TypeJobStarted     = "job.started"
	TypeStageCompleted = "stage.completed"
	TypeJobSucceeded   = "job.succeeded"
	TypeJobFailed      = "job.failed"
)

// CurrentVersion is the envelope schema version.
const CurrentVersion = "1.0.0"

// Envelope wraps an event payload with routing and deduplication metadata.
type Envelope struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type identifies the event for routing, e.g. "stage.completed".
	Type string `json:"type"`

	// Source identifies the emitting component.
	Source string `json:"source"`

	// Version enables schema evolution.
	Version string `json:"version"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey is derived from the job, type and subject so sinks can
	// drop duplicates.
	IdempotencyKey string `json:"idempotency_key"`

	// JobID correlates the event with a job; empty for ad hoc runs.
	JobID string `json:"job_id"`

	// Subject narrows the event within a job, e.g. the stage name.
	Subject string `json:"subject,omitempty"`

	// Payload contains the event data as JSON.
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload and stamps the envelope metadata.
func NewEnvelope(typ, source string, jobID uuid.UUID, subject string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	job := ""
	if jobID != uuid.Nil {
		job = jobID.String()
	}
	return Envelope{
		ID:             uuid.NewString(),
		Type:           typ,
		Source:         source,
		Version:        CurrentVersion,
		Timestamp:      time.Now().UTC(),
		IdempotencyKey: IdempotencyKey(job, typ, subject),
		JobID:          job,
		Subject:        subject,
		Payload:        raw,
	}, nil
}

// IdempotencyKey hashes the identifying parts of an event.
func IdempotencyKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// EventSink defines the interface for emitting events to downstream consumers.
// Callers must not fail their primary operation because of a sink error.
type EventSink interface {
	// Append adds an event to the sink with best-effort delivery.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink discards every event.
type NoOpEventSink struct{}

// Append implements EventSink.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error { return nil }

// NewNoOpEventSink creates a new no-op event sink.
func NewNoOpEventSink() EventSink { return &NoOpEventSink{} }
