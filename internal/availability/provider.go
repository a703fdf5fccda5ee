// Package availability determines whether candidate domains are registered.
//
// A Provider returns one result per input candidate, in any order. A failed
// lookup for a single domain is reported as domain.AvailabilityError in its
// result; only batch-wide failures such as context cancellation are returned
// as errors.
package availability

import (
	"context"

	"github.com/ahrav/namesmith/internal/domain"
)

// Provider checks the registration status of candidates.
type Provider interface {
	Check(ctx context.Context, candidates []domain.Candidate) ([]domain.AvailabilityResult, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(context.Context, []domain.Candidate) ([]domain.AvailabilityResult, error)

// Check calls f.
func (f ProviderFunc) Check(ctx context.Context, candidates []domain.Candidate) ([]domain.AvailabilityResult, error) {
	return f(ctx, candidates)
}
