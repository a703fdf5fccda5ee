package generation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/generation"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

func TestLLMProvider_Generate(t *testing.T) {
	client := &fakeClient{content: "```json\n" + `[
		{"label":"NovaStra","tld":"COM","display_name":"NovaStra","reasoning":"star motif"},
		{"label":"quantflux","tld":"ai"},
		{"label":"notld"},
		{"tld":"com"}
	]` + "\n```"}
	p := generation.NewLLMProvider(client, "openai", "gpt-4o-mini")

	got, err := p.Generate(context.Background(), testInputs(), nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.Candidate{Label: "novastra", TLD: "com", DisplayName: "NovaStra", Reasoning: "star motif"}, got[0])
	assert.Equal(t, "quantflux.ai", got[1].FullDomain())
	assert.Equal(t, "Quantflux", got[1].DisplayName)
	assert.Equal(t, "notld.com", got[2].FullDomain(), "missing tld defaults to the first requested tld")

	req := client.last
	require.NotNil(t, req)
	assert.Equal(t, transport.OpGeneration, req.Operation)
	assert.Equal(t, "openai", req.Provider)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.InDelta(t, generation.DefaultTemperature, req.Temperature, 1e-9)
	assert.Contains(t, req.SystemPrompt, "pure JSON array")
	assert.Contains(t, req.UserPrompt, "Topic focus: ai analytics")
}

func TestLLMProvider_ItemsWrapper(t *testing.T) {
	client := &fakeClient{content: `{"items":[{"label":"lumora","tld":"io"}]}`}
	got, err := generation.NewLLMProvider(client, "anthropic", "claude-3-5-haiku").
		Generate(context.Background(), testInputs(), nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lumora.io", got[0].FullDomain())
}

func TestLLMProvider_InvalidContent(t *testing.T) {
	client := &fakeClient{content: "not json"}
	_, err := generation.NewLLMProvider(client, "openai", "gpt-4o-mini").
		Generate(context.Background(), testInputs(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidContent)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestLLMProvider_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	client := &fakeClient{err: boom}
	_, err := generation.NewLLMProvider(client, "openai", "gpt-4o-mini").
		Generate(context.Background(), testInputs(), nil, nil)
	assert.ErrorIs(t, err, boom)
}

func TestLLMProvider_WithTemperature(t *testing.T) {
	client := &fakeClient{content: "[]"}
	_, err := generation.NewLLMProvider(client, "openai", "m", generation.WithTemperature(0.2)).
		Generate(context.Background(), testInputs(), nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, client.last.Temperature, 1e-9)
}

func TestLLMProvider_MaxTokens(t *testing.T) {
	tests := []struct {
		name string
		opts []generation.LLMOption
		want int64
	}{
		{name: "default", want: generation.DefaultMaxTokens},
		{name: "override", opts: []generation.LLMOption{generation.WithMaxTokens(512)}, want: 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{content: `[{"label":"lumora","tld":"io"}]`}
			_, err := generation.NewLLMProvider(client, "openai", "gpt-4o-mini", tt.opts...).
				Generate(context.Background(), testInputs(), nil, nil)
			require.NoError(t, err)
			require.NotNil(t, client.last)
			assert.Equal(t, tt.want, client.last.MaxTokens)
		})
	}
}
