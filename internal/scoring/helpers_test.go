package scoring_test

import (
	"context"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

type fakeClient struct {
	content string
	err     error
	calls   int
	last    *transport.Request
}

func (f *fakeClient) Complete(_ context.Context, req *transport.Request) (*transport.Response, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Response{Content: f.content}, nil
}

func candidates() []domain.Candidate {
	return []domain.Candidate{
		{Label: "novastra", TLD: "com", DisplayName: "Novastra"},
		{Label: "quantflux", TLD: "ai"},
	}
}
