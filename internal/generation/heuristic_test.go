package generation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/generation"
)

func TestHeuristicProvider_Generate(t *testing.T) {
	p := generation.NewHeuristicProvider()
	in := testInputs()

	got, err := p.Generate(context.Background(), in, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, in.Count*2)

	seen := map[string]bool{}
	for _, c := range got {
		assert.Contains(t, []string{"com", "ai"}, c.TLD)
		assert.Regexp(t, "^[a-z]+$", c.Label)
		assert.LessOrEqual(t, len(c.Label), 12)
		assert.False(t, seen[c.Label], "duplicate label %s", c.Label)
		seen[c.Label] = true
		assert.Equal(t, generation.DisplayName(c.Label), c.DisplayName)
		assert.NotEmpty(t, c.Reasoning)
	}
	assert.Equal(t, "com", got[0].TLD)
	assert.Equal(t, "ai", got[1].TLD)
}

func TestHeuristicProvider_Deterministic(t *testing.T) {
	p := generation.NewHeuristicProvider()
	in := testInputs()

	a, err := p.Generate(context.Background(), in, nil, nil)
	require.NoError(t, err)
	b, err := p.Generate(context.Background(), in, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHeuristicProvider_SeedWordsWithoutTopic(t *testing.T) {
	in := testInputs()
	in.Topic = ""
	in.Categories = nil
	in.Count = 3

	got, err := generation.NewHeuristicProvider().Generate(context.Background(), in, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 6)
}

func TestHeuristicProvider_Errors(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := generation.NewHeuristicProvider().Generate(ctx, testInputs(), nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no_tlds", func(t *testing.T) {
		in := testInputs()
		in.TLDs = []string{" . "}
		_, err := generation.NewHeuristicProvider().Generate(context.Background(), in, nil, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInputs)
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Novastra", generation.DisplayName("novastra"))
	assert.Empty(t, generation.DisplayName(""))
}
