package assessment

import "time"

// Ledger counts a student's attempts at one test lesson.
type Ledger struct {
	AttemptsUsed int

	// MaxAttempts nil or zero means unlimited.
	MaxAttempts *int

	BestScore     int
	LastAttemptAt time.Time
}

// Limited reports whether the ledger caps attempts.
func (l Ledger) Limited() bool {
	return l.MaxAttempts != nil && *l.MaxAttempts > 0
}

// Remaining returns the attempts left. ok is false when attempts are
// unlimited.
func (l Ledger) Remaining() (n int, ok bool) {
	if !l.Limited() {
		return 0, false
	}
	return max(*l.MaxAttempts-l.AttemptsUsed, 0), true
}

// CanStart reports whether another attempt may begin.
func CanStart(l Ledger) bool {
	if !l.Limited() {
		return true
	}
	return l.AttemptsUsed < *l.MaxAttempts
}

// recordAttempt returns the ledger after one completed attempt.
func (l Ledger) recordAttempt(score int, at time.Time) Ledger {
	l.AttemptsUsed++
	l.BestScore = max(l.BestScore, score)
	l.LastAttemptAt = at
	return l
}
