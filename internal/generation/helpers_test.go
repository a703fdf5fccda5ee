package generation_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/llm/transport"
)

// fakeClient returns a canned response and records the last request.
type fakeClient struct {
	content string
	err     error
	last    *transport.Request
}

func (f *fakeClient) Complete(_ context.Context, req *transport.Request) (*transport.Response, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Response{Content: f.content}, nil
}

func testInputs() domain.GenerationInputs {
	return domain.GenerationInputs{
		JobID:      uuid.New(),
		EntryPath:  domain.EntryPathBusiness,
		Topic:      "ai analytics",
		Categories: []string{"fintech"},
		TLDs:       []string{"com", ".AI"},
		Count:      10,
	}
}
