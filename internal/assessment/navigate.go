package assessment

import (
	"maps"

	"github.com/abhisek/courseflow/internal/catalog"
)

// Next moves to the following question, stopping at the last one.
func (s *Session) Next() error { return s.move(func(i int) int { return i + 1 }, "next") }

// Prev moves to the preceding question, stopping at the first one.
func (s *Session) Prev() error { return s.move(func(i int) int { return i - 1 }, "prev") }

// GoTo jumps to question i, clamped to the valid range.
func (s *Session) GoTo(i int) error { return s.move(func(int) int { return i }, "goto") }

func (s *Session) move(to func(int) int, op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ip, ok := s.st.(*inProgress)
	if !ok {
		s.inconsistent(op)
		return ErrNotInProgress
	}
	ip.index = clamp(to(ip.index), 0, len(s.test.Questions)-1)
	return nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// View is a read-only snapshot of a session for rendering.
type View struct {
	Phase     Phase
	Index     int
	Question  catalog.Question
	Total     int
	Remaining int
	Answers   map[string]Answer
	Result    *Result
	Ledger    Ledger
}

// Answered counts questions with a non-empty answer.
func (v View) Answered() int {
	n := 0
	for _, a := range v.Answers {
		if !a.IsEmpty() {
			n++
		}
	}
	return n
}

// Snapshot copies the current state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{Phase: s.st.phase(), Total: len(s.test.Questions), Ledger: s.ledger}
	switch st := s.st.(type) {
	case *inProgress:
		v.Index = st.index
		v.Remaining = st.remaining
		v.Answers = maps.Clone(st.answers)
	case *submitted:
		v.Index = st.index
		v.Answers = maps.Clone(st.answers)
		res := st.result
		v.Result = &res
	}
	if v.Index < len(s.test.Questions) {
		v.Question = s.test.Questions[v.Index]
	}
	return v
}

// Phase returns the current lifecycle stage.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.phase()
}

// Remaining returns the seconds left on the countdown.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ip, ok := s.st.(*inProgress); ok {
		return ip.remaining
	}
	return 0
}
