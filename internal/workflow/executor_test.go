package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/availability"
	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/generation"
	"github.com/ahrav/namesmith/internal/llm/transport"
	"github.com/ahrav/namesmith/internal/scoring"
	"github.com/ahrav/namesmith/internal/store"
	"github.com/ahrav/namesmith/internal/workflow"
	"github.com/ahrav/namesmith/pkg/events"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(context.Background(),
		fmt.Sprintf("file:workflow_%s?mode=memory&cache=shared", name),
		store.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func scenarioInputs(jobID uuid.UUID) domain.GenerationInputs {
	return domain.GenerationInputs{
		JobID:     jobID,
		EntryPath: domain.EntryPathBusiness,
		Topic:     "ai analytics",
		TLDs:      []string{"com", "ai"},
		Count:     2,
	}
}

func scenarioProviders() activity.Providers {
	return activity.Providers{
		Generation: generation.ProviderFunc(func(context.Context, domain.GenerationInputs, []domain.Trend, []domain.CompanyExample) ([]domain.Candidate, error) {
			return []domain.Candidate{
				{Label: "novastra", TLD: "com"},
				{Label: "quantflux", TLD: "ai"},
			}, nil
		}),
		Scoring: scoring.ProviderFunc(func(_ context.Context, cands []domain.Candidate) ([]domain.ScoredCandidate, error) {
			out := make([]domain.ScoredCandidate, 0, len(cands))
			for i := len(cands) - 1; i >= 0; i-- {
				out = append(out, domain.ScoredCandidate{
					Candidate:        cands[i],
					Memorability:     8,
					Pronounceability: 8,
					Brandability:     8,
					Overall:          8,
					RubricVersion:    "v1",
				})
			}
			return out, nil
		}),
		Availability: availability.ProviderFunc(func(_ context.Context, cands []domain.Candidate) ([]domain.AvailabilityResult, error) {
			status := map[string]domain.AvailabilityStatus{
				"novastra.com": domain.AvailabilityAvailable,
				"quantflux.ai": domain.AvailabilityRegistered,
			}
			out := make([]domain.AvailabilityResult, 0, len(cands))
			for _, c := range cands {
				out = append(out, domain.AvailabilityResult{
					FullDomain: c.FullDomain(),
					Status:     status[c.FullDomain()],
					Registrar:  "stub",
					CheckedAt:  time.Now().UTC(),
				})
			}
			return out, nil
		}),
	}
}

func staticFactory(p activity.Providers) workflow.ProviderFactory {
	return workflow.ProviderFactoryFunc(func(context.Context, domain.ModelSelection) (activity.Providers, error) {
		return p, nil
	})
}

func defaultSettings() workflow.Settings {
	return workflow.Settings{
		Models: domain.ModelSelection{Generation: "gpt-4o-mini", Scoring: "gpt-4o-mini"},
	}
}

type jobMetrics struct {
	mu       sync.Mutex
	started  int
	outcomes []string
	stages   []string
}

func (m *jobMetrics) ObserveStage(stage string, _ time.Duration, _ int, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

func (m *jobMetrics) JobStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *jobMetrics) JobFinished(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func createJob(t *testing.T, s *store.Store) uuid.UUID {
	t.Helper()
	job := &store.Job{EntryPath: domain.EntryPathBusiness}
	require.NoError(t, s.CreateJob(context.Background(), job))
	return job.ID
}

func TestExecutor_EndToEnd(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	jobID := createJob(t, s)
	sink := events.NewMemorySink()
	m := &jobMetrics{}

	exec, err := workflow.NewExecutor(staticFactory(scenarioProviders()), s, s, defaultSettings(),
		workflow.WithEventSink(sink), workflow.WithMetrics(m))
	require.NoError(t, err)

	state, err := exec.Run(ctx, scenarioInputs(jobID))
	require.NoError(t, err)

	wantProgress := map[string]int{
		domain.ProgressGenerated:           2,
		domain.ProgressFiltered:            2,
		domain.ProgressScored:              2,
		domain.ProgressAvailabilityChecked: 2,
		domain.ProgressPersisted:           2,
	}
	assert.Equal(t, wantProgress, state.Progress)
	assert.Nil(t, state.Candidates)
	assert.Nil(t, state.Filtered)
	assert.Len(t, state.Scored, 2)
	assert.Len(t, state.PersistedIDs, 2)
	assert.Equal(t, "gpt-4o-mini", state.Inputs.GenerationModel)

	job, err := s.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusSucceeded, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.FinishedAt)
	assert.Nil(t, job.Error)
	assert.Equal(t, "gpt-4o-mini", job.Params["generation_model"])
	progress, ok := job.Params["progress"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, progress[domain.ProgressPersisted])

	linked, err := s.ListJobDomains(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, linked, 2)
	byName := map[string]store.DomainName{}
	for _, d := range linked {
		byName[d.FullDomain()] = d
	}
	require.Contains(t, byName, "novastra.com")
	require.Contains(t, byName, "quantflux.ai")
	assert.Equal(t, "available", byName["novastra.com"].Availability.Status)
	assert.Equal(t, "registered", byName["quantflux.ai"].Availability.Status)
	assert.Equal(t, 8, byName["quantflux.ai"].Evaluation.OverallScore)

	assert.Equal(t, []string{
		events.TypeJobStarted,
		events.TypeStageCompleted, events.TypeStageCompleted, events.TypeStageCompleted,
		events.TypeStageCompleted, events.TypeStageCompleted, events.TypeStageCompleted,
		events.TypeJobSucceeded,
	}, sink.Types())

	assert.Equal(t, 1, m.started)
	assert.Equal(t, []string{"succeeded"}, m.outcomes)
	assert.Equal(t, []string{
		activity.StageGather, activity.StageGenerate, activity.StageDedupe,
		activity.StageScore, activity.StageAvailability, activity.StagePersist,
	}, m.stages)
}

func TestExecutor_GenerationTimeout(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	jobID := createJob(t, s)

	p := scenarioProviders()
	p.Generation = generation.ProviderFunc(func(context.Context, domain.GenerationInputs, []domain.Trend, []domain.CompanyExample) ([]domain.Candidate, error) {
		time.Sleep(time.Second)
		return []domain.Candidate{{Label: "novastra", TLD: "com"}}, nil
	})
	settings := defaultSettings()
	settings.Budgets.Generate = 10 * time.Millisecond

	exec, err := workflow.NewExecutor(staticFactory(p), s, s, settings)
	require.NoError(t, err)

	start := time.Now()
	_, err = exec.Run(ctx, scenarioInputs(jobID))
	require.ErrorIs(t, err, domain.ErrTimeBudgetExceeded)
	assert.Less(t, time.Since(start), 900*time.Millisecond)

	job, err := s.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	require.NotNil(t, job.Error)
	assert.Contains(t, *job.Error, "time budget exceeded")
	assert.NotNil(t, job.FinishedAt)

	domains, err := s.ListDomains(ctx, store.DomainFilter{})
	require.NoError(t, err)
	assert.Empty(t, domains)
}

type cannedLLM struct{ content string }

func (c cannedLLM) Complete(context.Context, *transport.Request) (*transport.Response, error) {
	return &transport.Response{Content: c.content}, nil
}

func TestExecutor_MalformedLLMResponse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	jobID := createJob(t, s)
	sink := events.NewMemorySink()

	p := scenarioProviders()
	p.Generation = generation.NewLLMProvider(cannedLLM{content: "not json"}, "openai", "gpt-4o-mini")

	exec, err := workflow.NewExecutor(staticFactory(p), s, s, defaultSettings(), workflow.WithEventSink(sink))
	require.NoError(t, err)

	_, err = exec.Run(ctx, scenarioInputs(jobID))
	require.ErrorIs(t, err, domain.ErrInvalidContent)
	assert.Equal(t, activity.ErrorParse, activity.TypeOf(err))

	job, err := s.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	require.NotNil(t, job.Error)
	assert.Contains(t, *job.Error, "not valid JSON")

	types := sink.Types()
	assert.Equal(t, events.TypeJobFailed, types[len(types)-1])
}

func TestExecutor_ModelAllowlist(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	jobID := createJob(t, s)

	called := false
	factory := workflow.ProviderFactoryFunc(func(context.Context, domain.ModelSelection) (activity.Providers, error) {
		called = true
		return scenarioProviders(), nil
	})
	settings := defaultSettings()
	settings.Allowlist = []string{"gpt-4o-mini"}

	exec, err := workflow.NewExecutor(factory, s, s, settings)
	require.NoError(t, err)

	inputs := scenarioInputs(jobID)
	inputs.ScoringModel = "gpt-4-turbo"
	_, err = exec.Run(ctx, inputs)
	require.ErrorIs(t, err, domain.ErrModelNotAllowed)
	assert.Equal(t, activity.ErrorConfiguration, activity.TypeOf(err))
	assert.False(t, called, "providers must not be built for a disallowed model")

	job, err := s.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Contains(t, *job.Error, "gpt-4-turbo")
}

func TestExecutor_ResolveModels(t *testing.T) {
	exec, err := workflow.NewExecutor(staticFactory(scenarioProviders()), nil, nil, defaultSettings())
	require.NoError(t, err)

	sel, err := exec.ResolveModels(domain.GenerationInputs{GenerationModel: " claude-3-haiku "})
	require.NoError(t, err)
	assert.Equal(t, domain.ModelSelection{Generation: "claude-3-haiku", Scoring: "gpt-4o-mini"}, sel)

	empty, err := workflow.NewExecutor(staticFactory(scenarioProviders()), nil, nil, workflow.Settings{})
	require.NoError(t, err)
	_, err = empty.ResolveModels(domain.GenerationInputs{})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestExecutor_AdHocRunWithoutJob(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exec, err := workflow.NewExecutor(staticFactory(scenarioProviders()), s, s, defaultSettings())
	require.NoError(t, err)

	state, err := exec.Run(ctx, scenarioInputs(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, 2, state.Progress[domain.ProgressPersisted])

	jobs, err := s.ListJobs(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestExecutor_FactoryError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	jobID := createJob(t, s)

	factory := workflow.ProviderFactoryFunc(func(context.Context, domain.ModelSelection) (activity.Providers, error) {
		return activity.Providers{}, fmt.Errorf("%w: whoapi", domain.ErrMissingCredential)
	})
	exec, err := workflow.NewExecutor(factory, s, s, defaultSettings())
	require.NoError(t, err)

	_, err = exec.Run(ctx, scenarioInputs(jobID))
	require.ErrorIs(t, err, domain.ErrMissingCredential)

	var se *activity.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, workflow.StageSetup, se.Stage)

	job, err := s.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
}

type flakyJobs struct {
	workflow.JobStore
}

func (flakyJobs) GetJob(context.Context, uuid.UUID) (*store.Job, error) {
	return nil, errors.New("db down")
}

func TestExecutor_JobLookupError(t *testing.T) {
	exec, err := workflow.NewExecutor(staticFactory(scenarioProviders()), flakyJobs{}, nil, defaultSettings())
	require.NoError(t, err)
	_, err = exec.Run(context.Background(), scenarioInputs(uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

// completionFailingJobs rejects the succeeded status write and passes every
// other write through to the real store.
type completionFailingJobs struct {
	*store.Store
}

func (j completionFailingJobs) UpdateJobStatus(ctx context.Context, id uuid.UUID, u store.JobUpdate) (*store.Job, error) {
	if u.Status == domain.JobStatusSucceeded {
		return nil, errors.New("disk full")
	}
	return j.Store.UpdateJobStatus(ctx, id, u)
}

func TestExecutor_CompletionWriteFailureMarksJobFailed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	jobID := createJob(t, s)
	sink := events.NewMemorySink()
	m := &jobMetrics{}

	exec, err := workflow.NewExecutor(staticFactory(scenarioProviders()), completionFailingJobs{s}, s, defaultSettings(),
		workflow.WithEventSink(sink), workflow.WithMetrics(m))
	require.NoError(t, err)

	_, err = exec.Run(ctx, scenarioInputs(jobID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	job, err := s.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	require.NotNil(t, job.Error)
	assert.Contains(t, *job.Error, "disk full")
	assert.NotNil(t, job.FinishedAt)
	assert.Equal(t, []string{"failed"}, m.outcomes)
	assert.Contains(t, sink.Types(), events.TypeJobFailed)
	assert.NotContains(t, sink.Types(), events.TypeJobSucceeded)
}

func TestNewExecutor_RequiresFactory(t *testing.T) {
	_, err := workflow.NewExecutor(nil, nil, nil, defaultSettings())
	require.Error(t, err)
}
