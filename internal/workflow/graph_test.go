package workflow_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/activity"
	"github.com/ahrav/namesmith/internal/workflow"
)

func TestGraph_StageOrder(t *testing.T) {
	acts, err := activity.NewActivities(scenarioProviders(), nil)
	require.NoError(t, err)
	g := workflow.NewGraph(acts)
	assert.Equal(t, []string{
		"gather_context", "generate", "dedupe_and_filter", "score", "availability", "persist",
	}, g.Stages())
}

func TestGraph_StopsAtFirstError(t *testing.T) {
	// No persistence sink: everything up to persist succeeds.
	acts, err := activity.NewActivities(scenarioProviders(), nil)
	require.NoError(t, err)

	var seen []string
	state, err := workflow.NewGraph(acts).Run(context.Background(),
		workflow.NewState(scenarioInputs(uuid.New())),
		func(_ context.Context, stage string, _ workflow.State) { seen = append(seen, stage) })

	require.Error(t, err)
	assert.Equal(t, activity.ErrorConfiguration, activity.TypeOf(err))
	assert.Equal(t, []string{"gather_context", "generate", "dedupe_and_filter", "score", "availability"}, seen)
	assert.Len(t, state.Availability, 2)
}

func TestGraph_CancelledContext(t *testing.T) {
	acts, err := activity.NewActivities(scenarioProviders(), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = workflow.NewGraph(acts).Run(ctx, workflow.NewState(scenarioInputs(uuid.New())), nil)
	require.ErrorIs(t, err, context.Canceled)
}
