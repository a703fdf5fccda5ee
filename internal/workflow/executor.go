package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/store"
	"github.com/ahrav/namesmith/pkg/events"
)

// StageSetup labels failures that happen before the first stage runs.
const StageSetup = "setup"

const eventSource = "namesmith.workflow"

// JobStore is the job status sink.
type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*store.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, u store.JobUpdate) (*store.Job, error)
}

// ProviderFactory builds the provider set for a resolved model selection.
type ProviderFactory interface {
	Providers(ctx context.Context, models domain.ModelSelection) (activity.Providers, error)
}

// ProviderFactoryFunc adapts a function to ProviderFactory.
type ProviderFactoryFunc func(context.Context, domain.ModelSelection) (activity.Providers, error)

// Providers implements ProviderFactory.
func (f ProviderFactoryFunc) Providers(ctx context.Context, models domain.ModelSelection) (activity.Providers, error) {
	return f(ctx, models)
}

// Metrics receives job and stage measurements.
type Metrics interface {
	activity.StageObserver
	JobStarted()
	JobFinished(outcome string)
}

// Settings are the read-only pipeline settings shared by every run.
type Settings struct {
	// Models are the defaults used when inputs carry no override.
	Models domain.ModelSelection
	// Allowlist restricts resolved models; empty allows any.
	Allowlist       []string
	Budgets         activity.Budgets
	Gather          activity.GatherFunc
	AvailabilityTTL time.Duration
}

// Executor runs the pipeline for one GenerationInputs at a time and keeps the
// job record in step. It is safe for concurrent use.
type Executor struct {
	factory  ProviderFactory
	jobs     JobStore
	uow      store.UnitOfWork
	settings Settings
	metrics  Metrics
	sink     events.EventSink
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithMetrics attaches a metrics receiver.
func WithMetrics(m Metrics) Option { return func(e *Executor) { e.metrics = m } }

// WithEventSink attaches a lifecycle event sink.
func WithEventSink(s events.EventSink) Option { return func(e *Executor) { e.sink = s } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(e *Executor) { e.logger = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(e *Executor) { e.now = now } }

// NewExecutor wires an Executor. jobs may be nil for runs that never track jobs.
func NewExecutor(factory ProviderFactory, jobs JobStore, uow store.UnitOfWork, settings Settings, opts ...Option) (*Executor, error) {
	if factory == nil {
		return nil, errors.New("provider factory is required")
	}
	e := &Executor{
		factory:  factory,
		jobs:     jobs,
		uow:      uow,
		settings: settings,
		sink:     events.NewNoOpEventSink(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.sink == nil {
		e.sink = events.NewNoOpEventSink()
	}
	e.logger = e.logger.With("component", "workflow")
	if e.settings.Gather == nil {
		e.settings.Gather = activity.HeuristicGather
	}
	return e, nil
}

// ResolveModels picks each model from the inputs override or the configured
// default and checks both against the allowlist.
func (e *Executor) ResolveModels(inputs domain.GenerationInputs) (domain.ModelSelection, error) {
	sel := domain.ModelSelection{
		Generation: firstNonEmpty(inputs.GenerationModel, e.settings.Models.Generation),
		Scoring:    firstNonEmpty(inputs.ScoringModel, e.settings.Models.Scoring),
	}
	if sel.Generation == "" || sel.Scoring == "" {
		return sel, fmt.Errorf("%w: no generation or scoring model configured", domain.ErrConfiguration)
	}
	if len(e.settings.Allowlist) > 0 {
		if !slices.Contains(e.settings.Allowlist, sel.Generation) {
			return sel, fmt.Errorf("%w: generation model %q is not permitted", domain.ErrModelNotAllowed, sel.Generation)
		}
		if !slices.Contains(e.settings.Allowlist, sel.Scoring) {
			return sel, fmt.Errorf("%w: scoring model %q is not permitted", domain.ErrModelNotAllowed, sel.Scoring)
		}
	}
	return sel, nil
}

// Run executes the pipeline. When a job record exists for inputs.JobID it is
// marked running, then failed or succeeded; bookkeeping writes are not
// cancelled with ctx. The returned State holds everything reached so far,
// also on error.
func (e *Executor) Run(ctx context.Context, inputs domain.GenerationInputs) (State, error) {
	logger := e.logger.With("job_id", inputs.JobID)
	bookCtx := context.WithoutCancel(ctx)

	tracked, err := e.isTracked(bookCtx, inputs.JobID)
	if err != nil {
		return NewState(inputs), err
	}

	if tracked {
		started := e.now().UTC()
		if _, err := e.jobs.UpdateJobStatus(bookCtx, inputs.JobID, store.JobUpdate{
			Status:    domain.JobStatusRunning,
			StartedAt: &started,
		}); err != nil {
			return NewState(inputs), fmt.Errorf("mark job running: %w", err)
		}
	}
	if e.metrics != nil {
		e.metrics.JobStarted()
	}
	e.emit(bookCtx, events.TypeJobStarted, inputs.JobID, "", map[string]any{"entry_path": inputs.EntryPath})
	logger.Info("pipeline started", "tracked", tracked, "count", inputs.Count)

	state, runErr := e.execute(ctx, inputs)
	if runErr != nil {
		e.finishFailed(bookCtx, logger, tracked, state, runErr)
		return state, runErr
	}
	if err := e.finishSucceeded(bookCtx, logger, tracked, state); err != nil {
		return state, err
	}
	return state, nil
}

func (e *Executor) execute(ctx context.Context, inputs domain.GenerationInputs) (State, error) {
	sel, err := e.ResolveModels(inputs)
	if err != nil {
		return NewState(inputs), activity.Classify(StageSetup, err)
	}
	resolved := inputs.WithModels(sel)
	initial := NewState(resolved)

	if err := resolved.Validate(); err != nil {
		return initial, activity.Classify(StageSetup, err)
	}

	providers, err := e.factory.Providers(ctx, sel)
	if err != nil {
		return initial, activity.Classify(StageSetup, err)
	}

	opts := []activity.Option{
		activity.WithBudgets(e.settings.Budgets),
		activity.WithGather(e.settings.Gather),
		activity.WithAvailabilityTTL(e.settings.AvailabilityTTL),
		activity.WithLogger(e.logger.With("job_id", inputs.JobID)),
		activity.WithClock(e.now),
	}
	if e.metrics != nil {
		opts = append(opts, activity.WithObserver(e.metrics))
	}
	acts, err := activity.NewActivities(providers, e.uow, opts...)
	if err != nil {
		return initial, &activity.Error{
			Type:    activity.ErrorConfiguration,
			Stage:   StageSetup,
			Message: "incomplete provider set",
			Cause:   errors.Join(domain.ErrConfiguration, err),
		}
	}

	return NewGraph(acts).Run(ctx, initial, e.afterStage)
}

func (e *Executor) afterStage(ctx context.Context, stage string, s State) {
	payload := map[string]any{"stage": stage, "progress": s.Progress}
	e.emit(context.WithoutCancel(ctx), events.TypeStageCompleted, s.Inputs.JobID, stage, payload)
}

func (e *Executor) finishFailed(ctx context.Context, logger *slog.Logger, tracked bool, s State, runErr error) {
	logger.Error("pipeline failed", "error", runErr, "error_type", activity.TypeOf(runErr))
	if e.metrics != nil {
		e.metrics.JobFinished(string(domain.JobStatusFailed))
	}
	e.emit(ctx, events.TypeJobFailed, s.Inputs.JobID, "", map[string]any{
		"error":      runErr.Error(),
		"error_type": activity.TypeOf(runErr),
		"progress":   s.Progress,
	})
	if !tracked {
		return
	}

	msg := runErr.Error()
	finished := e.now().UTC()
	if _, err := e.jobs.UpdateJobStatus(ctx, s.Inputs.JobID, store.JobUpdate{
		Status:     domain.JobStatusFailed,
		Error:      &msg,
		FinishedAt: &finished,
		Params:     map[string]any{"progress": s.Progress},
	}); err != nil {
		logger.Error("recording job failure", "error", err)
	}
}

func (e *Executor) finishSucceeded(ctx context.Context, logger *slog.Logger, tracked bool, s State) error {
	if tracked {
		finished := e.now().UTC()
		if _, err := e.jobs.UpdateJobStatus(ctx, s.Inputs.JobID, store.JobUpdate{
			Status:     domain.JobStatusSucceeded,
			FinishedAt: &finished,
			Params: map[string]any{
				"generation_model": s.Inputs.GenerationModel,
				"scoring_model":    s.Inputs.ScoringModel,
				"progress":         s.Progress,
			},
		}); err != nil {
			// Best effort: leave the job failed rather than running.
			err = fmt.Errorf("record job completion: %w", err)
			e.finishFailed(ctx, logger, tracked, s, err)
			return err
		}
	}
	if e.metrics != nil {
		e.metrics.JobFinished(string(domain.JobStatusSucceeded))
	}
	e.emit(ctx, events.TypeJobSucceeded, s.Inputs.JobID, "", map[string]any{"progress": s.Progress})
	logger.Info("pipeline succeeded", "count", s.Progress[domain.ProgressPersisted])
	return nil
}

func (e *Executor) isTracked(ctx context.Context, id uuid.UUID) (bool, error) {
	if e.jobs == nil || id == uuid.Nil {
		return false, nil
	}
	if _, err := e.jobs.GetJob(ctx, id); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load job: %w", err)
	}
	return true, nil
}

// emit never fails the run; sink errors are logged.
func (e *Executor) emit(ctx context.Context, typ string, jobID uuid.UUID, subject string, payload any) {
	env, err := events.NewEnvelope(typ, eventSource, jobID, subject, payload)
	if err == nil {
		err = e.sink.Append(ctx, env)
	}
	if err != nil {
		e.logger.Warn("event emission failed", "type", typ, "job_id", jobID, "error", err)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
