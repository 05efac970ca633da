package intelligence

import (
	"context"

	"github.com/alexanderramin/prdchat/internal/llm"
)

// mockClient returns canned replies in order and records every request.
type mockClient struct {
	replies  []string
	deltas   []string
	err      error
	requests []llm.GenerateRequest
	streamed int
}

func (m *mockClient) next() string {
	if len(m.replies) == 0 {
		return ""
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r
}

func (m *mockClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.next(), Model: "gpt-4o-mini"}, nil
}

func (m *mockClient) Stream(_ context.Context, req llm.GenerateRequest, onDelta llm.DeltaFunc) (*llm.GenerateResponse, error) {
	m.requests = append(m.requests, req)
	m.streamed++
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.deltas {
		onDelta(d)
	}
	return &llm.GenerateResponse{Text: m.next(), Model: "gpt-4o-2024-08-06"}, nil
}

func (m *mockClient) Available(_ context.Context) bool { return m.err == nil }
