package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/capitalize-ai/travelers-buddy/internal/model"
)

type mockStep struct {
	answer string
	err    error
}

// MockClient answers from a script and records every request it receives.
// When the script runs out it echoes the latest user turn.
type MockClient struct {
	mu       sync.Mutex
	script   []mockStep
	requests []CompletionRequest
}

// NewMockClient creates a mock client that replies with answers in order.
func NewMockClient(answers ...string) *MockClient {
	m := &MockClient{}
	for _, a := range answers {
		m.script = append(m.script, mockStep{answer: a})
	}
	return m
}

// Reply queues a successful answer.
func (m *MockClient) Reply(answer string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{answer: answer})
	return m
}

// Fail queues a failed call.
func (m *MockClient) Fail(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{err: err})
	return m
}

// Requests returns a copy of every request seen so far.
func (m *MockClient) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Name returns the provider name.
func (m *MockClient) Name() string {
	return string(ProviderMock)
}

// Models returns available models.
func (m *MockClient) Models() []string {
	return []string{"mock"}
}

// Complete pops the next scripted step.
func (m *MockClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	recorded := *req
	recorded.Turns = append(recorded.Turns[:0:0], req.Turns...)
	m.requests = append(m.requests, recorded)

	var step mockStep
	if len(m.script) > 0 {
		step = m.script[0]
		m.script = m.script[1:]
	} else {
		step.answer = echo(req)
	}
	m.mu.Unlock()

	if step.err != nil {
		return nil, step.err
	}
	return &CompletionResponse{
		Answer:    step.answer,
		Model:     "mock",
		TokensIn:  len(req.Turns),
		TokensOut: 1,
	}, nil
}

func echo(req *CompletionRequest) string {
	for i := len(req.Turns) - 1; i >= 0; i-- {
		if req.Turns[i].Role == model.RoleUser {
			return fmt.Sprintf("You asked: %q. Pack light and enjoy the trip!", req.Turns[i].Content)
		}
	}
	return "Where would you like to travel?"
}
