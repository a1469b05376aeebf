package chatmodel

import (
	"context"
	"fmt"
	"sync"
)

// StubClient is a scriptable test double: each call to Complete pops
// the next response (or error) from a fixed queue, or replays the last
// entry once the queue is exhausted. Every call is recorded for
// assertion on prompt construction.
type StubClient struct {
	mu        sync.Mutex
	responses []StubResponse
	calls     [][]Message
}

// StubResponse is one scripted reply.
type StubResponse struct {
	Content string
	Err     error
}

var _ Client = (*StubClient)(nil)

// NewStubClient creates a StubClient that replays responses in order.
func NewStubClient(responses ...StubResponse) *StubClient {
	return &StubClient{responses: responses}
}

// Complete records messages and returns the next scripted response.
func (s *StubClient) Complete(ctx context.Context, messages []Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, messages)

	if len(s.responses) == 0 {
		return "", fmt.Errorf("stub client: no scripted response available")
	}

	idx := len(s.calls) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	return r.Content, r.Err
}

// Calls returns every message sequence passed to Complete, in order.
func (s *StubClient) Calls() [][]Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]Message(nil), s.calls...)
}
