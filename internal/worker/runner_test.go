package worker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/worker"
	"github.com/ahrav/namesmith/internal/workflow"
)

type pipelineFunc func(ctx context.Context, in domain.GenerationInputs) (workflow.State, error)

func (f pipelineFunc) Run(ctx context.Context, in domain.GenerationInputs) (workflow.State, error) {
	return f(ctx, in)
}

func TestRunner_CompletesJob(t *testing.T) {
	r := worker.NewRunner(pipelineFunc(func(_ context.Context, in domain.GenerationInputs) (workflow.State, error) {
		st := workflow.NewState(in)
		st.Progress[domain.ProgressPersisted] = 3
		return st, nil
	}), 2, nil)

	in := testInputs()
	h, err := r.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.JobID, h.JobID)

	st, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.Progress[domain.ProgressPersisted])
	require.NoError(t, r.Shutdown(context.Background()))
}

func TestRunner_OutlivesSubmitContext(t *testing.T) {
	release := make(chan struct{})
	r := worker.NewRunner(pipelineFunc(func(ctx context.Context, in domain.GenerationInputs) (workflow.State, error) {
		select {
		case <-release:
			return workflow.NewState(in), nil
		case <-ctx.Done():
			return workflow.State{}, ctx.Err()
		}
	}), 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	h, err := r.Submit(ctx, testInputs())
	require.NoError(t, err)
	cancel()

	select {
	case <-h.Done():
		t.Fatal("job stopped when the submitting context was cancelled")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	_, err = h.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Shutdown(context.Background()))
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	const limit = 2
	var (
		running atomic.Int32
		peak    atomic.Int32
	)
	r := worker.NewRunner(pipelineFunc(func(_ context.Context, in domain.GenerationInputs) (workflow.State, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return workflow.NewState(in), nil
	}), limit, nil)

	var wg sync.WaitGroup
	for range 8 {
		h, err := r.Submit(context.Background(), testInputs())
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.Wait(context.Background())
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Positive(t, peak.Load())
	require.NoError(t, r.Shutdown(context.Background()))
}

func TestRunner_ShutdownRejectsNewJobs(t *testing.T) {
	r := worker.NewRunner(pipelineFunc(func(_ context.Context, in domain.GenerationInputs) (workflow.State, error) {
		return workflow.NewState(in), nil
	}), 1, nil)
	require.NoError(t, r.Shutdown(context.Background()))

	_, err := r.Submit(context.Background(), testInputs())
	assert.ErrorIs(t, err, worker.ErrRunnerClosed)
}

func TestRunner_ShutdownDeadlineCancelsJobs(t *testing.T) {
	started := make(chan struct{})
	r := worker.NewRunner(pipelineFunc(func(ctx context.Context, _ domain.GenerationInputs) (workflow.State, error) {
		close(started)
		<-ctx.Done()
		return workflow.State{}, ctx.Err()
	}), 1, nil)

	h, err := r.Submit(context.Background(), testInputs())
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)

	_, err = h.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_ShutdownWaitsForCancelledJobsToRecord(t *testing.T) {
	started := make(chan struct{})
	var recorded atomic.Bool
	r := worker.NewRunner(pipelineFunc(func(ctx context.Context, _ domain.GenerationInputs) (workflow.State, error) {
		close(started)
		<-ctx.Done()
		// Final status write after cancellation.
		time.Sleep(30 * time.Millisecond)
		recorded.Store(true)
		return workflow.State{}, ctx.Err()
	}), 1, nil)

	_, err := r.Submit(context.Background(), testInputs())
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)
	assert.True(t, recorded.Load(), "Shutdown returned before the cancelled job finished")
}

func TestRunner_ShutdownGraceIsBounded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	r := worker.NewRunner(pipelineFunc(func(_ context.Context, in domain.GenerationInputs) (workflow.State, error) {
		close(started)
		<-release
		return workflow.NewState(in), nil
	}), 1, nil, worker.WithShutdownGrace(20*time.Millisecond))

	_, err := r.Submit(context.Background(), testInputs())
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	begin := time.Now()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)
	assert.Less(t, time.Since(begin), time.Second)
}

func TestHandle_WaitRespectsContext(t *testing.T) {
	release := make(chan struct{})
	r := worker.NewRunner(pipelineFunc(func(_ context.Context, in domain.GenerationInputs) (workflow.State, error) {
		<-release
		return workflow.NewState(in), nil
	}), 1, nil)

	h, err := r.Submit(context.Background(), testInputs())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err = h.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, r.Shutdown(context.Background()))
}
