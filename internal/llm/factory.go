package llm

import (
	"context"
	"time"

	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/store"
)

// NewProvider builds the configured backend and wraps it so that each
// call is bounded by cfg.Timeout, retried per cfg.Retry and every try is
// audited to events. events and log may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sel := cfg.Selected()
	var backend Provider
	switch cfg.Provider {
	case ProviderAnthropic:
		backend = newAnthropic(sel)
	case ProviderOpenAI:
		backend = newOpenAI(sel)
	case ProviderOpenRouter:
		backend = newOpenRouter(sel)
	case ProviderGemini:
		g, err := newGemini(ctx, sel)
		if err != nil {
			return nil, err
		}
		backend = g
	case ProviderMock:
		backend = NewScripted()
	}

	p := WithAudit(backend, cfg.Provider, events, log)
	p = WithRetry(p, cfg.Retry)
	if cfg.Timeout > 0 {
		p = &deadline{inner: p, d: cfg.Timeout}
	}
	return p, nil
}

type deadline struct {
	inner Provider
	d     time.Duration
}

func (t *deadline) Model() string { return t.inner.Model() }

func (t *deadline) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.Complete(ctx, p)
}
