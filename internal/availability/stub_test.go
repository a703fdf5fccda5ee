package availability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/availability"
	"github.com/ahrav/namesmith/internal/domain"
)

func testCandidates() []domain.Candidate {
	return []domain.Candidate{
		{Label: "novastra", TLD: "com"},
		{Label: "QuantFlux", TLD: "AI"},
	}
}

func TestStubProvider_Random(t *testing.T) {
	draws := []float64{0.1, 0.95}
	i := 0
	p := availability.NewStubProvider(availability.WithRand(func() float64 {
		v := draws[i]
		i++
		return v
	}))

	got, err := p.Check(context.Background(), testCandidates())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "novastra.com", got[0].FullDomain)
	assert.Equal(t, domain.AvailabilityAvailable, got[0].Status)
	assert.Equal(t, "quantflux.ai", got[1].FullDomain)
	assert.Equal(t, domain.AvailabilityRegistered, got[1].Status)
	assert.Equal(t, availability.StubRegistrar, got[0].Registrar)
	assert.False(t, got[0].CheckedAt.IsZero())
	assert.Equal(t, "stub", got[0].Raw["source"])
}

func TestStubProvider_Fixed(t *testing.T) {
	p := availability.NewStubProvider(availability.WithFixedStatus(domain.AvailabilityUnknown))
	got, err := p.Check(context.Background(), testCandidates())
	require.NoError(t, err)
	for _, r := range got {
		assert.Equal(t, domain.AvailabilityUnknown, r.Status)
	}
}

func TestStubProvider_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := availability.NewStubProvider().Check(ctx, testCandidates())
	assert.ErrorIs(t, err, context.Canceled)
}
