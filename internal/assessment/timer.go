package assessment

import (
	"context"
	"time"
)

// RunTimer ticks the session every interval until the attempt ends or ctx
// is cancelled. When a tick times the attempt out, onExpire is called with
// the result from the timer goroutine. A submit from another goroutine
// stops the timer at its next tick without calling onExpire.
func (s *Session) RunTimer(ctx context.Context, interval time.Duration, onExpire func(Result)) {
	if s.test.TimeLimit <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				res, fired := s.Tick()
				if fired {
					if onExpire != nil {
						onExpire(res)
					}
					return
				}
				if s.Phase() != PhaseInProgress {
					return
				}
			}
		}
	}()
}
