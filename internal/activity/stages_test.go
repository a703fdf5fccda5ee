package activity_test

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/availability"
	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/generation"
	"github.com/ahrav/namesmith/internal/scoring"
)

func TestFilterCandidates(t *testing.T) {
	in := []domain.Candidate{
		{Label: "Novastra", TLD: "COM"},
		{Label: "novastra", TLD: "ai"},
		{Label: "abc", TLD: "com"},
		{Label: "waytoolonglabel", TLD: "com"},
		{Label: "quantflux", TLD: "ai"},
		{Label: "zenlytic", TLD: "com"},
	}

	got := activity.FilterCandidates(in, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "novastra.com", got[0].FullDomain())
	assert.Equal(t, "novastra", got[0].Label)
	assert.Equal(t, "quantflux.ai", got[1].FullDomain())

	assert.Empty(t, activity.FilterCandidates(in, 0))
	assert.Len(t, activity.FilterCandidates(in, 50), 3)
}

func TestFilterCandidates_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	letters := "abcdeABCDE"
	for i := range 200 {
		n := rng.Intn(40)
		cands := make([]domain.Candidate, n)
		for j := range cands {
			var b strings.Builder
			for range rng.Intn(16) {
				b.WriteByte(letters[rng.Intn(len(letters))])
			}
			cands[j] = domain.Candidate{Label: b.String(), TLD: "com"}
		}
		limit := rng.Intn(20)

		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			got := activity.FilterCandidates(cands, limit)
			assert.LessOrEqual(t, len(got), limit)
			seen := map[string]bool{}
			for _, c := range got {
				assert.False(t, seen[c.Label], "duplicate label %q", c.Label)
				seen[c.Label] = true
				n := utf8.RuneCountInString(c.Label)
				assert.GreaterOrEqual(t, n, activity.MinLabelLength)
				assert.LessOrEqual(t, n, activity.MaxLabelLength)
				assert.Equal(t, strings.ToLower(c.Label), c.Label)
			}
		})
	}
}

func TestGenerate_TimeBudget(t *testing.T) {
	slow := generation.ProviderFunc(func(context.Context, domain.GenerationInputs, []domain.Trend, []domain.CompanyExample) ([]domain.Candidate, error) {
		time.Sleep(time.Second)
		return []domain.Candidate{{Label: "late", TLD: "com"}}, nil
	})
	p := testProviders()
	p.Generation = slow
	obs := &recordingObserver{}
	a, err := activity.NewActivities(p, nil,
		activity.WithBudgets(activity.Budgets{Generate: 10 * time.Millisecond}),
		activity.WithObserver(obs))
	require.NoError(t, err)

	_, err = a.Generate(context.Background(), testInputs(), nil, nil)
	require.ErrorIs(t, err, domain.ErrTimeBudgetExceeded)
	assert.Equal(t, activity.ErrorTimeout, activity.TypeOf(err))
	require.Len(t, obs.records, 1)
	assert.Equal(t, "timeout", obs.records[0].errType)
}

func TestGenerate_ParseError(t *testing.T) {
	p := testProviders()
	p.Generation = generation.ProviderFunc(func(context.Context, domain.GenerationInputs, []domain.Trend, []domain.CompanyExample) ([]domain.Candidate, error) {
		return nil, fmt.Errorf("%w: not json", domain.ErrInvalidContent)
	})
	a, err := activity.NewActivities(p, nil)
	require.NoError(t, err)

	_, err = a.Generate(context.Background(), testInputs(), nil, nil)
	require.ErrorIs(t, err, domain.ErrInvalidContent)
	assert.Equal(t, activity.ErrorParse, activity.TypeOf(err))
}

func TestScoreAndAvailability(t *testing.T) {
	a, err := activity.NewActivities(testProviders(), nil)
	require.NoError(t, err)
	ctx := context.Background()
	cands := []domain.Candidate{{Label: "novastra", TLD: "com"}, {Label: "quantflux", TLD: "ai"}}

	scored, err := a.Score(ctx, cands)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	for _, s := range scored {
		assert.GreaterOrEqual(t, s.Overall, domain.MinScore)
		assert.LessOrEqual(t, s.Overall, domain.MaxScore)
	}

	results, err := a.CheckAvailability(ctx, cands)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.AvailabilityAvailable, results[0].Status)
}

func TestScore_ProviderError(t *testing.T) {
	p := testProviders()
	p.Scoring = scoring.ProviderFunc(func(context.Context, []domain.Candidate) ([]domain.ScoredCandidate, error) {
		return nil, fmt.Errorf("scoring call failed: %w", context.Canceled)
	})
	a, err := activity.NewActivities(p, nil)
	require.NoError(t, err)

	_, err = a.Score(context.Background(), []domain.Candidate{{Label: "novastra", TLD: "com"}})
	var se *activity.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, activity.StageScore, se.Stage)
	assert.Equal(t, activity.ErrorProvider, se.Type)
}

func TestCheckAvailability_BatchBudget(t *testing.T) {
	p := testProviders()
	p.Availability = availability.ProviderFunc(func(ctx context.Context, _ []domain.Candidate) ([]domain.AvailabilityResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	a, err := activity.NewActivities(p, nil,
		activity.WithBudgets(activity.Budgets{Availability: 10 * time.Millisecond}))
	require.NoError(t, err)

	_, err = a.CheckAvailability(context.Background(), []domain.Candidate{{Label: "novastra", TLD: "com"}})
	require.ErrorIs(t, err, domain.ErrTimeBudgetExceeded)
}
