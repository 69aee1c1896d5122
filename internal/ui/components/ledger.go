package components

import (
	"fmt"

	"github.com/abhisek/courseflow/internal/assessment"
)

// LedgerSummary renders attempts and best score, e.g. "attempts 1/3 · best 60%".
func LedgerSummary(l assessment.Ledger) string {
	attempts := fmt.Sprintf("attempts %d", l.AttemptsUsed)
	if l.Limited() {
		attempts = fmt.Sprintf("attempts %d/%d", l.AttemptsUsed, *l.MaxAttempts)
	}
	if l.AttemptsUsed == 0 {
		return attempts
	}
	return fmt.Sprintf("%s · best %d%%", attempts, l.BestScore)
}
