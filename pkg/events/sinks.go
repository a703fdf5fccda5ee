package events

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// SlogSink writes each event as a structured log line.
type SlogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogSink logs events at level. A nil logger uses slog.Default.
func NewSlogSink(logger *slog.Logger, level slog.Level) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger.With("component", "events"), level: level}
}

// Append implements EventSink.
func (s *SlogSink) Append(ctx context.Context, e Envelope) error {
	s.logger.Log(ctx, s.level, "event",
		"type", e.Type,
		"job_id", e.JobID,
		"subject", e.Subject,
		"event_id", e.ID,
		"payload", string(e.Payload),
	)
	return nil
}

// MemorySink keeps events in memory, dropping repeated idempotency keys.
type MemorySink struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	events []Envelope
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{seen: make(map[string]struct{})}
}

// Append implements EventSink.
func (m *MemorySink) Append(_ context.Context, e Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.seen[e.IdempotencyKey]; dup {
		return nil
	}
	m.seen[e.IdempotencyKey] = struct{}{}
	m.events = append(m.events, e)
	return nil
}

// Events returns a copy of the stored events in append order.
func (m *MemorySink) Events() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// Types returns the stored event types in append order.
func (m *MemorySink) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []EventSink

// Append implements EventSink.
func (ms MultiSink) Append(ctx context.Context, e Envelope) error {
	var errs []error
	for _, s := range ms {
		if s == nil {
			continue
		}
		if err := s.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
