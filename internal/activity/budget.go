package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahrav/namesmith/internal/domain"
)

// WithBudget runs fn under a wall-clock budget. A budget <= 0 disables it.
// When the budget elapses WithBudget returns immediately, even if fn ignores
// its context; the abandoned call finishes in the background.
func WithBudget[T any](ctx context.Context, stage string, budget time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if budget <= 0 {
		return fn(ctx)
	}

	bctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(bctx)
		done <- result{v: v, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == nil && errors.Is(bctx.Err(), context.DeadlineExceeded) {
			return zero, budgetError(stage, budget)
		}
		return r.v, r.err
	case <-bctx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, budgetError(stage, budget)
	}
}

func budgetError(stage string, budget time.Duration) error {
	return &Error{
		Type:    ErrorTimeout,
		Stage:   stage,
		Message: fmt.Sprintf("exceeded budget of %s", budget),
		Cause:   domain.ErrTimeBudgetExceeded,
	}
}
