package activity_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want activity.ErrorType
	}{
		{name: "invalid content", err: fmt.Errorf("decode: %w", domain.ErrInvalidContent), want: activity.ErrorParse},
		{name: "budget", err: domain.ErrTimeBudgetExceeded, want: activity.ErrorTimeout},
		{name: "deadline", err: context.DeadlineExceeded, want: activity.ErrorTimeout},
		{name: "inputs", err: domain.ErrInvalidInputs, want: activity.ErrorValidation},
		{name: "missing key", err: domain.ErrMissingCredential, want: activity.ErrorConfiguration},
		{name: "allowlist", err: domain.ErrModelNotAllowed, want: activity.ErrorConfiguration},
		{name: "transport", err: errors.New("connection refused"), want: activity.ErrorProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := activity.Classify(activity.StageGenerate, tt.err)
			var se *activity.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.want, se.Type)
			assert.Equal(t, activity.StageGenerate, se.Stage)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.want, activity.TypeOf(err))
		})
	}
}

func TestClassify_KeepsExistingStageError(t *testing.T) {
	orig := &activity.Error{Type: activity.ErrorPersistence, Stage: activity.StagePersist, Message: "x"}
	wrapped := fmt.Errorf("outer: %w", orig)
	assert.Same(t, wrapped, activity.Classify(activity.StageScore, wrapped))
	assert.Nil(t, activity.Classify(activity.StageScore, nil))
}

func TestErrorMessage(t *testing.T) {
	err := activity.Classify(activity.StageGenerate, fmt.Errorf("%w: not json", domain.ErrInvalidContent))
	assert.Contains(t, err.Error(), "generate stage failed [parse]")
	assert.Contains(t, err.Error(), "not valid JSON")
}
