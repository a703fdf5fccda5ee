package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/store"
)

func scoredFixture() []domain.ScoredCandidate {
	return []domain.ScoredCandidate{
		{
			Candidate:        domain.Candidate{Label: "novastra", TLD: "com", DisplayName: "NovaStra"},
			Memorability:     8.4,
			Pronounceability: 7.6,
			Brandability:     8,
			Overall:          8,
			RubricVersion:    "v1",
			Rationale:        "Short and bright.",
		},
		{
			Candidate:        domain.Candidate{Label: "quantflux", TLD: "ai"},
			Memorability:     7,
			Pronounceability: 6,
			Brandability:     9,
			Overall:          8,
			RubricVersion:    "v1",
		},
	}
}

func availabilityFixture() []domain.AvailabilityResult {
	now := time.Now().UTC()
	return []domain.AvailabilityResult{
		{FullDomain: "novastra.com", Status: domain.AvailabilityAvailable, Registrar: "stub", CheckedAt: now, Raw: map[string]any{"source": "stub"}},
		{FullDomain: "quantflux.ai", Status: domain.AvailabilityRegistered, Registrar: "stub", CheckedAt: now},
	}
}

func TestPersist_WithJob(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	inputs := testInputs()
	require.NoError(t, s.CreateJob(ctx, &store.Job{ID: inputs.JobID, EntryPath: inputs.EntryPath}))

	a, err := activity.NewActivities(testProviders(), s, activity.WithAvailabilityTTL(time.Hour))
	require.NoError(t, err)

	res, err := a.Persist(ctx, activity.PersistInput{
		Inputs:       inputs,
		Scored:       scoredFixture(),
		Availability: availabilityFixture(),
	})
	require.NoError(t, err)
	require.Len(t, res.DomainIDs, 2)

	linked, err := s.ListJobDomains(ctx, inputs.JobID)
	require.NoError(t, err)
	require.Len(t, linked, 2)

	d, err := s.GetDomain(ctx, res.DomainIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "novastra.com", d.FullDomain())
	require.NotNil(t, d.DisplayName)
	assert.Equal(t, "NovaStra", *d.DisplayName)
	require.NotNil(t, d.ProcessedByAgent)
	assert.Equal(t, "namesmith.generate", *d.ProcessedByAgent)

	require.NotNil(t, d.Availability)
	assert.Equal(t, "available", d.Availability.Status)
	require.Len(t, d.AvailabilityChecks, 1)
	assert.Equal(t, "stub", d.AvailabilityChecks[0].Method)
	require.NotNil(t, d.AvailabilityChecks[0].TTLSec)
	assert.Equal(t, 3600, *d.AvailabilityChecks[0].TTLSec)

	require.NotNil(t, d.Evaluation)
	assert.Equal(t, 8, d.Evaluation.MemorabilityScore)
	assert.Equal(t, 8, d.Evaluation.PronounceabilityScore)
	assert.Equal(t, 8, d.Evaluation.OverallScore)
	assert.Equal(t, "Short and bright.", d.Evaluation.Description)
	assert.Equal(t, []string{"saas"}, d.Evaluation.PossibleCategories)
	assert.Equal(t, []string{"analytics"}, d.Evaluation.PossibleKeywords)

	q, err := s.GetDomain(ctx, res.DomainIDs[1])
	require.NoError(t, err)
	assert.Equal(t, activity.DefaultEvaluationDescription, q.Evaluation.Description)
	require.NotNil(t, q.AvailabilityChecks[0].TTLSec, "registered is definitive and carries the cache TTL")
	assert.Equal(t, 3600, *q.AvailabilityChecks[0].TTLSec)

	runs, err := s.AgentRuns(ctx, inputs.JobID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, activity.PipelineAgentName, runs[0].AgentName)
	assert.EqualValues(t, 2, runs[0].Output["count"])
	assert.Equal(t, "ai analytics", runs[0].Input["topic"])
}

func TestPersist_AdHocRunSkipsJobRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	inputs := testInputs()

	a, err := activity.NewActivities(testProviders(), s)
	require.NoError(t, err)

	res, err := a.Persist(ctx, activity.PersistInput{Inputs: inputs, Scored: scoredFixture()})
	require.NoError(t, err)
	assert.Len(t, res.DomainIDs, 2)

	linked, err := s.ListJobDomains(ctx, inputs.JobID)
	require.NoError(t, err)
	assert.Empty(t, linked)

	runs, err := s.AgentRuns(ctx, inputs.JobID)
	require.NoError(t, err)
	assert.Empty(t, runs)

	d, err := s.GetDomain(ctx, res.DomainIDs[0])
	require.NoError(t, err)
	assert.Nil(t, d.Availability)
}

func TestPersist_IsIdempotentAcrossRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a, err := activity.NewActivities(testProviders(), s)
	require.NoError(t, err)

	in := activity.PersistInput{Inputs: testInputs(), Scored: scoredFixture(), Availability: availabilityFixture()}
	first, err := a.Persist(ctx, in)
	require.NoError(t, err)

	in.Inputs = testInputs()
	in.Scored[0].DisplayName = ""
	second, err := a.Persist(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.DomainIDs, second.DomainIDs)

	d, err := s.GetDomain(ctx, first.DomainIDs[0])
	require.NoError(t, err)
	require.NotNil(t, d.DisplayName)
	assert.Equal(t, "NovaStra", *d.DisplayName)
	assert.Len(t, d.AvailabilityChecks, 2)
}

func TestPersist_WithoutSink(t *testing.T) {
	a, err := activity.NewActivities(testProviders(), nil)
	require.NoError(t, err)
	_, err = a.Persist(context.Background(), activity.PersistInput{Inputs: testInputs()})
	assert.Equal(t, activity.ErrorConfiguration, activity.TypeOf(err))
}

func TestPersist_CachedResultRecordsCacheMethod(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a, err := activity.NewActivities(testProviders(), s)
	require.NoError(t, err)

	original := time.Now().UTC().Add(-30 * time.Minute).Truncate(time.Second)
	avail := []domain.AvailabilityResult{
		{FullDomain: "novastra.com", Status: domain.AvailabilityAvailable, Registrar: "whoapi", CheckedAt: original, Cached: true},
	}
	res, err := a.Persist(ctx, activity.PersistInput{Inputs: testInputs(), Scored: scoredFixture()[:1], Availability: avail})
	require.NoError(t, err)

	d, err := s.GetDomain(ctx, res.DomainIDs[0])
	require.NoError(t, err)
	require.Len(t, d.AvailabilityChecks, 1)
	check := d.AvailabilityChecks[0]
	assert.Equal(t, activity.MethodCache, check.Method)
	require.NotNil(t, check.Registrar)
	assert.Equal(t, "whoapi", *check.Registrar)
	assert.True(t, check.CheckedAt.Equal(original), "history keeps the original lookup time")
}
