// Package activity implements the stages of the name generation pipeline.
// Each stage is a method on Activities; provider-backed stages run under a
// per-stage time budget and every stage failure is returned as an *Error.
package activity

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ahrav/namesmith/internal/availability"
	"github.com/ahrav/namesmith/internal/generation"
	"github.com/ahrav/namesmith/internal/scoring"
	"github.com/ahrav/namesmith/internal/store"
)

// Stage names, also used as metric and event labels.
const (
	StageGather       = "gather_context"
	StageGenerate     = "generate"
	StageDedupe       = "dedupe_and_filter"
	StageScore        = "score"
	StageAvailability = "availability"
	StagePersist      = "persist"
)

// Providers is the resolved provider set for one pipeline run.
type Providers struct {
	Generation   generation.Provider
	Scoring      scoring.Provider
	Availability availability.Provider
}

// Validate reports a missing provider.
func (p Providers) Validate() error {
	var errs []error
	if p.Generation == nil {
		errs = append(errs, errors.New("generation provider is required"))
	}
	if p.Scoring == nil {
		errs = append(errs, errors.New("scoring provider is required"))
	}
	if p.Availability == nil {
		errs = append(errs, errors.New("availability provider is required"))
	}
	return errors.Join(errs...)
}

// Budgets are the per-stage wall-clock limits. Zero or negative disables a budget.
type Budgets struct {
	Generate     time.Duration
	Score        time.Duration
	Availability time.Duration
}

// StageObserver receives per-stage measurements.
type StageObserver interface {
	ObserveStage(stage string, elapsed time.Duration, items int, errType string)
}

// Activities holds the dependencies shared by all stages of a run.
type Activities struct {
	providers Providers
	budgets   Budgets
	gather    GatherFunc
	uow       store.UnitOfWork
	observer  StageObserver
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time
}

// Option configures Activities.
type Option func(*Activities)

// WithBudgets sets the stage time budgets.
func WithBudgets(b Budgets) Option { return func(a *Activities) { a.budgets = b } }

// WithGather replaces the context-gathering function.
func WithGather(fn GatherFunc) Option { return func(a *Activities) { a.gather = fn } }

// WithObserver attaches a stage observer.
func WithObserver(o StageObserver) Option { return func(a *Activities) { a.observer = o } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(a *Activities) { a.logger = l } }

// WithAvailabilityTTL records how long persisted availability is considered fresh.
func WithAvailabilityTTL(d time.Duration) Option { return func(a *Activities) { a.ttl = d } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(a *Activities) { a.now = now } }

// NewActivities wires the stages to their providers and persistence sink.
// uow may be nil for runs that never reach the persist stage.
func NewActivities(providers Providers, uow store.UnitOfWork, opts ...Option) (*Activities, error) {
	if err := providers.Validate(); err != nil {
		return nil, err
	}
	a := &Activities{
		providers: providers,
		gather:    HeuristicGather,
		uow:       uow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("component", "activity")
	return a, nil
}

func (a *Activities) observe(stage string, start time.Time, items int, err error) {
	elapsed := a.now().Sub(start)
	if a.observer != nil {
		errType := ""
		if err != nil {
			errType = string(TypeOf(err))
		}
		a.observer.ObserveStage(stage, elapsed, items, errType)
	}
	if err != nil {
		a.logger.Warn("stage failed", "stage", stage, "elapsed", elapsed, "error", err)
		return
	}
	a.logger.Debug("stage completed", "stage", stage, "count", items, "elapsed", elapsed)
}
