// Package llm talks to hosted language models. Every call is a single-turn
// prompt whose reply must be a JSON document, optionally checked against a
// schema before it reaches the caller.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Purposes recorded with each request.
const (
	PurposeFeedback = "feedback"
)

// Provider completes prompts.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (*Completion, error)
	Model() string
}

// Prompt is one structured request.
type Prompt struct {
	// Purpose tags the request in the audit log.
	Purpose string
	System  string
	User    string
	// Schema, when set, is sent to the backend as its structured output
	// format and the reply is checked against it.
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Completion is a reply that passed the prompt's schema.
type Completion struct {
	JSON         json.RawMessage
	Model        string
	InputTokens  int
	OutputTokens int
}

// finish turns raw reply text into a Completion. Shared by every backend.
func finish(p Prompt, text, model string, in, out int) (*Completion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyReply
	}
	raw := json.RawMessage(text)
	if p.Schema != nil {
		if err := p.Schema.Check(raw); err != nil {
			return nil, err
		}
	}
	return &Completion{JSON: raw, Model: model, InputTokens: in, OutputTokens: out}, nil
}

// resolveModel maps a short alias to a vendor model ID. Unknown names are
// used as given.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
