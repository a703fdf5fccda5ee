package activity_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/availability"
	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/generation"
	"github.com/ahrav/namesmith/internal/scoring"
	"github.com/ahrav/namesmith/internal/store"
)

func testInputs() domain.GenerationInputs {
	return domain.GenerationInputs{
		JobID:           uuid.New(),
		EntryPath:       domain.EntryPathBusiness,
		Topic:           "ai analytics",
		Categories:      []string{"SaaS"},
		TLDs:            []string{"com", "ai"},
		Count:           2,
		GenerationModel: "gpt-4o-mini",
		ScoringModel:    "gpt-4o-mini",
	}
}

func fixedGeneration(cands ...domain.Candidate) generation.Provider {
	return generation.ProviderFunc(func(context.Context, domain.GenerationInputs, []domain.Trend, []domain.CompanyExample) ([]domain.Candidate, error) {
		return cands, nil
	})
}

func testProviders() activity.Providers {
	return activity.Providers{
		Generation: fixedGeneration(
			domain.Candidate{Label: "novastra", TLD: "com"},
			domain.Candidate{Label: "quantflux", TLD: "ai"},
		),
		Scoring:      scoring.NewHeuristicProvider(scoring.DefaultRubric()),
		Availability: availability.NewStubProvider(availability.WithFixedStatus(domain.AvailabilityAvailable)),
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(context.Background(),
		fmt.Sprintf("file:activity_%s?mode=memory&cache=shared", name),
		store.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type stageRecord struct {
	stage   string
	items   int
	errType string
}

type recordingObserver struct {
	mu      sync.Mutex
	records []stageRecord
}

func (r *recordingObserver) ObserveStage(stage string, _ time.Duration, items int, errType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, stageRecord{stage: stage, items: items, errType: errType})
}
