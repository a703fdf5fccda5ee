package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/workflow"
)

// ErrRunnerClosed is returned by Submit after Shutdown has begun.
var ErrRunnerClosed = errors.New("job runner is shut down")

// DefaultShutdownGrace bounds how long Shutdown waits for cancelled jobs to
// record their final status after its own deadline has passed.
const DefaultShutdownGrace = 5 * time.Second

// Pipeline runs one job; *workflow.Executor satisfies it.
type Pipeline interface {
	Run(ctx context.Context, inputs domain.GenerationInputs) (workflow.State, error)
}

// Handle tracks one submitted job. Callers may Wait on it or drop it; the
// job runs to completion either way.
type Handle struct {
	JobID uuid.UUID

	done  chan struct{}
	state workflow.State
	err   error
}

// Done is closed when the job has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the job finishes or ctx is done. Giving up on ctx does
// not stop the job.
func (h *Handle) Wait(ctx context.Context) (workflow.State, error) {
	select {
	case <-h.done:
		return h.state, h.err
	case <-ctx.Done():
		return workflow.State{}, ctx.Err()
	}
}

// Runner executes jobs in the background with a bound on concurrent jobs.
type Runner struct {
	pipeline Pipeline
	sem      chan struct{}
	logger   *slog.Logger

	base   context.Context
	cancel context.CancelFunc

	grace time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithShutdownGrace overrides DefaultShutdownGrace. Zero disables the wait.
func WithShutdownGrace(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d >= 0 {
			r.grace = d
		}
	}
}

// NewRunner creates a Runner that runs at most maxConcurrent jobs at once.
func NewRunner(p Pipeline, maxConcurrent int, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	base, cancel := context.WithCancel(context.Background())
	r := &Runner{
		pipeline: p,
		sem:      make(chan struct{}, maxConcurrent),
		logger:   logger.With("component", "runner"),
		base:     base,
		cancel:   cancel,
		grace:    DefaultShutdownGrace,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit starts the job in the background. The job keeps ctx's values but
// not its cancellation, so it outlives the request that submitted it.
func (r *Runner) Submit(ctx context.Context, inputs domain.GenerationInputs) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRunnerClosed
	}

	h := &Handle{JobID: inputs.JobID, done: make(chan struct{})}
	r.wg.Add(1)
	go r.run(context.WithoutCancel(ctx), inputs, h)
	return h, nil
}

func (r *Runner) run(ctx context.Context, inputs domain.GenerationInputs, h *Handle) {
	defer r.wg.Done()
	defer close(h.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.base, cancel)
	defer stop()

	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		// Shutting down: the executor still runs so the job is marked failed.
	}

	h.state, h.err = r.pipeline.Run(ctx, inputs)
	if h.err != nil {
		r.logger.Warn("job failed", "job_id", inputs.JobID, "error", h.err)
		return
	}
	r.logger.Info("job finished", "job_id", inputs.JobID,
		"persisted", h.state.Progress[domain.ProgressPersisted])
}

// Shutdown stops accepting jobs and waits for running ones. If ctx ends
// first, running jobs are cancelled and given up to the grace period to
// record their failure before ctx's error is returned, so callers can close
// the job store afterwards.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
	}

	r.cancel()
	grace := time.NewTimer(r.grace)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
		r.logger.Warn("jobs still running after shutdown grace period", "grace", r.grace)
	}
	return ctx.Err()
}
