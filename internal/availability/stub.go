package availability

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/ahrav/namesmith/internal/domain"
)

// StubRegistrar is the registrar name recorded by StubProvider.
const StubRegistrar = "stub"

const stubProbabilityAvailable = 0.8

// StubProvider fabricates results without network calls. By default each
// domain is available with probability 0.8; a fixed status overrides that.
type StubProvider struct {
	fixed domain.AvailabilityStatus
	rand  func() float64
	now   func() time.Time
}

// StubOption customizes a StubProvider.
type StubOption func(*StubProvider)

// WithFixedStatus makes every result carry status.
func WithFixedStatus(status domain.AvailabilityStatus) StubOption {
	return func(p *StubProvider) { p.fixed = status }
}

// WithRand replaces the random source; it must return values in [0, 1).
func WithRand(fn func() float64) StubOption {
	return func(p *StubProvider) { p.rand = fn }
}

// NewStubProvider creates a StubProvider.
func NewStubProvider(opts ...StubOption) *StubProvider {
	p := &StubProvider{rand: rand.Float64, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check implements Provider.
func (p *StubProvider) Check(ctx context.Context, candidates []domain.Candidate) ([]domain.AvailabilityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.AvailabilityResult, 0, len(candidates))
	for _, c := range candidates {
		status := p.fixed
		if status == "" {
			status = domain.AvailabilityRegistered
			if p.rand() < stubProbabilityAvailable {
				status = domain.AvailabilityAvailable
			}
		}
		out = append(out, domain.AvailabilityResult{
			FullDomain: c.FullDomain(),
			Status:     status,
			Registrar:  StubRegistrar,
			CheckedAt:  p.now().UTC(),
			Raw:        map[string]any{"source": StubRegistrar, "probability_available": stubProbabilityAvailable},
		})
	}
	return out, nil
}
