package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/config"
	"github.com/ahrav/namesmith/internal/domain"
)

func TestDispatch_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := dispatch(context.Background(), nil, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "usage: namesmith")

	stderr.Reset()
	err = dispatch(context.Background(), []string{"frobnicate"}, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), `unknown command "frobnicate"`)

	require.NoError(t, dispatch(context.Background(), []string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "serve")
}

func TestParseRunFlags(t *testing.T) {
	var stderr bytes.Buffer
	o, err := parseRunFlags([]string{
		"-topic", "ai analytics", "-tlds", "com, ai,,", "-count", "7",
		"-entry-path", "investor", "-categories", "fintech",
	}, &stderr)
	require.NoError(t, err)

	in := o.inputs()
	assert.Equal(t, "ai analytics", in.Topic)
	assert.Equal(t, []string{"com", "ai"}, in.TLDs)
	assert.Equal(t, []string{"fintech"}, in.Categories)
	assert.Equal(t, 7, in.Count)
	assert.Equal(t, domain.EntryPathInvestor, in.EntryPath)
	require.NoError(t, in.Validate())

	_, err = parseRunFlags([]string{"-count", "many"}, &stderr)
	assert.ErrorIs(t, err, errUsage)
}

func TestRunPipeline_PrintsScoredCandidates(t *testing.T) {
	cfg := config.Default()
	cfg.Database.DSN = "file:cmd_run?mode=memory&cache=shared&_foreign_keys=on"
	cfg.Logging.Level = "error"
	cfg.Registrar.StubStatus = string(domain.AvailabilityAvailable)

	var stdout bytes.Buffer
	o := runOptions{topic: "ocean logistics", tlds: "com,io", count: 5, entryPath: "business"}
	require.NoError(t, runPipeline(context.Background(), cfg, o, &stdout))

	var got []runResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 5)
	for _, r := range got {
		assert.NotEmpty(t, r.Domain)
		assert.Equal(t, domain.AvailabilityAvailable, r.Availability)
		assert.GreaterOrEqual(t, r.Overall, 0.0)
		assert.Len(t, r.Scores, 3)
	}
}

func TestRunPipeline_RejectsInvalidInputs(t *testing.T) {
	cfg := config.Default()
	cfg.Database.DSN = "file:cmd_run_invalid?mode=memory&cache=shared&_foreign_keys=on"
	cfg.Logging.Level = "error"

	var stdout bytes.Buffer
	err := runPipeline(context.Background(), cfg, runOptions{tlds: "", count: 3, entryPath: "business"}, &stdout)
	require.ErrorIs(t, err, domain.ErrInvalidInputs)
	assert.Empty(t, stdout.String())
}
