package llm

import (
	"context"
	"errors"
	"sync"
)

// Reply is one scripted answer for Scripted. A non-nil Err is returned
// as is; otherwise JSON goes through the prompt's schema like a real reply.
type Reply struct {
	JSON         string
	Err          error
	InputTokens  int
	OutputTokens int
}

// Scripted is an offline Provider that answers from a queue and records
// the prompts it saw. Used by tests and by the "mock" provider setting.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	prompts []Prompt
}

// NewScripted returns a Scripted provider that will give replies in order.
func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) Model() string { return ProviderMock }

func (s *Scripted) Complete(_ context.Context, p Prompt) (*Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, p)
	if len(s.replies) == 0 {
		return nil, &APIError{Provider: ProviderMock, Status: 503, Err: errors.New("no scripted reply left")}
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return finish(p, r.JSON, ProviderMock, r.InputTokens, r.OutputTokens)
}

// Prompts returns a copy of every prompt received so far.
func (s *Scripted) Prompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Prompt(nil), s.prompts...)
}
