package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/store"
)

type audited struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *logger.Logger
}

// WithAudit records each call as an LLM request event and a log line.
// A failure to store the event is logged and otherwise ignored.
func WithAudit(p Provider, provider string, events store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &audited{inner: p, provider: provider, events: events, log: log.With("provider", provider)}
}

func (a *audited) Model() string { return a.inner.Model() }

func (a *audited) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	began := time.Now()
	c, err := a.inner.Complete(ctx, p)

	ev := store.LLMRequestEventData{
		Provider:    a.provider,
		Model:       a.inner.Model(),
		Purpose:     p.Purpose,
		LatencyMs:   time.Since(began).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(p),
	}
	switch {
	case err != nil:
		ev.ErrorMessage = err.Error()
		var re *ReplyError
		if errors.As(err, &re) {
			ev.ResponseBody = string(re.Raw)
		}
		a.log.Warn("llm request failed", "purpose", p.Purpose, "error", err)
	default:
		ev.Model = c.Model
		ev.InputTokens, ev.OutputTokens = c.InputTokens, c.OutputTokens
		ev.ResponseBody = string(c.JSON)
		a.log.Debug("llm request", "purpose", p.Purpose, "model", c.Model,
			"latency_ms", ev.LatencyMs, "input_tokens", c.InputTokens, "output_tokens", c.OutputTokens)
	}

	if a.events != nil {
		if serr := a.events.AppendLLMRequest(ctx, ev); serr != nil {
			a.log.Warn("could not store llm request event", "error", serr)
		}
	}
	return c, err
}

// transcript renders a prompt for the audit log.
func transcript(p Prompt) string {
	var b strings.Builder
	if p.System != "" {
		b.WriteString("[system]\n" + p.System + "\n\n")
	}
	b.WriteString("[user]\n" + p.User + "\n")
	if p.Schema != nil {
		def, _ := json.Marshal(p.Schema.Definition)
		b.WriteString("\n[schema " + p.Schema.Name + "]\n" + string(def) + "\n")
	}
	return b.String()
}
