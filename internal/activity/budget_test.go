package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/domain"
)

func TestWithBudget(t *testing.T) {
	t.Run("disabled budget runs inline", func(t *testing.T) {
		for _, b := range []time.Duration{0, -time.Second} {
			v, err := activity.WithBudget(context.Background(), "s", b, func(ctx context.Context) (int, error) {
				_, hasDeadline := ctx.Deadline()
				assert.False(t, hasDeadline)
				return 7, nil
			})
			require.NoError(t, err)
			assert.Equal(t, 7, v)
		}
	})

	t.Run("fast call within budget", func(t *testing.T) {
		v, err := activity.WithBudget(context.Background(), "s", time.Second, func(context.Context) (string, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("call ignoring context is abandoned", func(t *testing.T) {
		start := time.Now()
		_, err := activity.WithBudget(context.Background(), activity.StageGenerate, 10*time.Millisecond,
			func(context.Context) (int, error) {
				time.Sleep(time.Second)
				return 1, nil
			})
		require.ErrorIs(t, err, domain.ErrTimeBudgetExceeded)
		assert.Less(t, time.Since(start), 500*time.Millisecond)

		var se *activity.Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, activity.ErrorTimeout, se.Type)
		assert.Equal(t, activity.StageGenerate, se.Stage)
	})

	t.Run("context-aware call reports budget", func(t *testing.T) {
		_, err := activity.WithBudget(context.Background(), "s", 10*time.Millisecond,
			func(ctx context.Context) (int, error) {
				<-ctx.Done()
				return 0, ctx.Err()
			})
		require.ErrorIs(t, err, domain.ErrTimeBudgetExceeded)
	})

	t.Run("parent cancellation is not a budget error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := activity.WithBudget(ctx, "s", time.Second, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		require.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, domain.ErrTimeBudgetExceeded)
	})

	t.Run("provider error passes through", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := activity.WithBudget(context.Background(), "s", time.Second, func(context.Context) (int, error) {
			return 0, boom
		})
		require.ErrorIs(t, err, boom)
	})
}
