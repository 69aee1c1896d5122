package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type retrying struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry retries transient API failures with capped exponential
// backoff. A reply that fails its schema is retried once; truncation and
// context errors are returned immediately.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retrying{inner: p, cfg: cfg}
}

func (r *retrying) Model() string { return r.inner.Model() }

func (r *retrying) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	badReplies := 0
	for attempt := 1; ; attempt++ {
		c, err := r.inner.Complete(ctx, p)
		if err == nil {
			return c, nil
		}
		var re *ReplyError
		if errors.As(err, &re) {
			badReplies++
		}
		if attempt >= r.cfg.MaxAttempts || !retryable(err, badReplies) {
			return nil, err
		}

		t := time.NewTimer(r.cfg.wait(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func retryable(err error, badReplies int) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTruncated) {
		return false
	}
	var re *ReplyError
	if errors.As(err, &re) {
		return badReplies < 2
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Transient()
	}
	return errors.Is(err, ErrEmptyReply)
}

// wait returns the pause after the given 1-based attempt, with 20% jitter.
func (c RetryConfig) wait(attempt int) time.Duration {
	d := float64(c.InitialWait)
	for range attempt - 1 {
		d *= max(c.Multiplier, 1)
	}
	if c.MaxWait > 0 {
		d = min(d, float64(c.MaxWait))
	}
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
