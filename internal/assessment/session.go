// Package assessment runs a single timed attempt at a test.
//
// A Session moves NotStarted → InProgress → Submitted exactly once. The
// transition to Submitted is guarded by the session mutex, so a timer tick
// racing a user submit produces one result and one ledger increment.
package assessment

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/logger"
)

var (
	// ErrNoAttemptsRemaining is returned by Start when the ledger is exhausted.
	ErrNoAttemptsRemaining = errors.New("no attempts remaining")

	// ErrNotInProgress is returned by operations that need an active attempt.
	ErrNotInProgress = errors.New("attempt is not in progress")

	// ErrAlreadyStarted is returned by Start on a session that has left NotStarted.
	ErrAlreadyStarted = errors.New("attempt already started")

	// ErrUnknownQuestion is returned when a question ID is not part of the test.
	ErrUnknownQuestion = errors.New("unknown question")
)

// Phase is the lifecycle stage of a session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// EndReason records how an attempt reached Submitted.
type EndReason string

const (
	EndSubmit  EndReason = "submit"
	EndTimeout EndReason = "timeout"
)

// Result is the scored outcome of a submitted attempt.
type Result struct {
	SessionID string
	StudentID string
	LessonID  string
	TestID    string

	Earned    int
	Total     int
	Score     int
	PassScore int
	Passed    bool

	// PendingManual is set when manual questions still need grading. Passed
	// is false in that case.
	PendingManual bool

	Reason      EndReason
	Questions   []QuestionResult
	StartedAt   time.Time
	SubmittedAt time.Time
}

// Missed returns the results of automatically graded questions that earned
// nothing.
func (r Result) Missed() []QuestionResult {
	var out []QuestionResult
	for _, q := range r.Questions {
		if !q.Correct && !q.Manual && !q.Malformed {
			out = append(out, q)
		}
	}
	return out
}

// state is one of notStarted, inProgress or submitted.
type state interface {
	phase() Phase
}

type notStarted struct{}

type inProgress struct {
	answers   map[string]Answer
	index     int
	remaining int
	startedAt time.Time
}

type submitted struct {
	answers map[string]Answer
	index   int
	result  Result
}

func (notStarted) phase() Phase  { return PhaseNotStarted }
func (*inProgress) phase() Phase { return PhaseInProgress }
func (*submitted) phase() Phase  { return PhaseSubmitted }

// Config identifies a session and supplies its collaborators.
type Config struct {
	StudentID string
	LessonID  string
	Logger    *logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Session is one attempt at one test by one student.
type Session struct {
	id        string
	studentID string
	lessonID  string
	test      catalog.Test
	index     map[string]int
	log       *logger.Logger
	now       func() time.Time

	mu     sync.Mutex
	st     state
	ledger Ledger
}

// New creates a session in NotStarted. ledger is the student's attempt
// ledger for the lesson as loaded from storage.
func New(test catalog.Test, ledger Ledger, cfg Config) *Session {
	s := &Session{
		id:        uuid.New().String(),
		studentID: cfg.StudentID,
		lessonID:  cfg.LessonID,
		test:      test,
		index:     make(map[string]int, len(test.Questions)),
		log:       cfg.Logger,
		now:       cfg.Now,
		st:        notStarted{},
		ledger:    ledger,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	for i, q := range test.Questions {
		s.index[q.ID] = i
	}
	s.log = s.log.With("session_id", s.id, "student", cfg.StudentID, "lesson", cfg.LessonID, "test", test.ID)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Test returns the test being attempted.
func (s *Session) Test() catalog.Test { return s.test }

// CanStart reports whether the ledger allows a new attempt.
func (s *Session) CanStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CanStart(s.ledger)
}

// Ledger returns the session's copy of the attempt ledger.
func (s *Session) Ledger() Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger
}

// Start begins the attempt and arms the countdown. It does not consume an
// attempt; the ledger is charged on submission.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.(notStarted); !ok {
		s.inconsistent("start")
		return ErrAlreadyStarted
	}
	if !CanStart(s.ledger) {
		s.log.Info("start refused", "attempts_used", s.ledger.AttemptsUsed)
		return ErrNoAttemptsRemaining
	}

	s.st = &inProgress{
		answers:   make(map[string]Answer),
		remaining: s.test.TimeLimit * 60,
		startedAt: s.now(),
	}
	s.log.Debug("attempt started", "time_limit_min", s.test.TimeLimit)
	return nil
}

// RecordAnswer stores value for a question. For multiple-choice questions
// value is toggled in the selected set; for every other type it overwrites
// the previous answer.
func (s *Session) RecordAnswer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ip, ok := s.st.(*inProgress)
	if !ok {
		s.inconsistent("record_answer", "question", questionID)
		return ErrNotInProgress
	}
	i, ok := s.index[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	if s.test.Questions[i].Type == catalog.QuestionMultiple {
		ip.answers[questionID] = ip.answers[questionID].toggle(value)
	} else {
		ip.answers[questionID] = Answer{Value: value}
	}
	return nil
}

// SetOrder stores the ordered right-hand sides for a matching question.
func (s *Session) SetOrder(questionID string, order []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ip, ok := s.st.(*inProgress)
	if !ok {
		s.inconsistent("set_order", "question", questionID)
		return ErrNotInProgress
	}
	if _, ok := s.index[questionID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	ip.answers[questionID] = Answer{Order: append([]string(nil), order...)}
	return nil
}

// Tick advances the countdown by one second. When the countdown reaches
// zero the attempt is submitted with EndTimeout and fired is true. Ticks on
// an untimed test, or outside InProgress, do nothing.
func (s *Session) Tick() (res Result, fired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ip, ok := s.st.(*inProgress)
	if !ok || s.test.TimeLimit <= 0 {
		return Result{}, false
	}
	if ip.remaining > 1 {
		ip.remaining--
		return Result{}, false
	}
	ip.remaining = 0
	return s.submitLocked(ip, EndTimeout), true
}

// Submit ends the attempt and scores it. Only the first call transitions
// the session and charges the ledger; first reports whether this call did
// so. Later calls return the stored result unchanged.
func (s *Session) Submit() (res Result, first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch st := s.st.(type) {
	case *inProgress:
		return s.submitLocked(st, EndSubmit), true
	case *submitted:
		return st.result, false
	default:
		s.inconsistent("submit")
		return Result{}, false
	}
}

// Abandon discards an in-progress attempt without charging the ledger.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.(*inProgress); ok {
		s.log.Info("attempt abandoned")
		s.st = notStarted{}
	}
}

func (s *Session) submitLocked(ip *inProgress, reason EndReason) Result {
	res := s.score(ip.answers)
	res.Reason = reason
	res.StartedAt = ip.startedAt
	res.SubmittedAt = s.now()

	s.ledger = s.ledger.recordAttempt(res.Score, res.SubmittedAt)
	s.st = &submitted{answers: ip.answers, index: ip.index, result: res}

	s.log.Info("attempt submitted",
		"reason", string(reason),
		"score", res.Score,
		"passed", res.Passed,
		"pending_manual", res.PendingManual,
		"attempts_used", s.ledger.AttemptsUsed,
	)
	return res
}

func (s *Session) score(answers map[string]Answer) Result {
	res := Result{
		SessionID: s.id,
		StudentID: s.studentID,
		LessonID:  s.lessonID,
		TestID:    s.test.ID,
		PassScore: s.test.PassScore,
		Questions: make([]QuestionResult, 0, len(s.test.Questions)),
	}
	for _, q := range s.test.Questions {
		a, answered := answers[q.ID]
		answered = answered && !a.IsEmpty()
		qr := gradeQuestion(q, a, answered)
		if qr.Malformed {
			s.log.Warn("question has no usable answer key", "question", q.ID, "type", string(q.Type))
		}
		res.Total += qr.Points
		res.Earned += qr.Earned
		res.PendingManual = res.PendingManual || qr.Manual
		res.Questions = append(res.Questions, qr)
	}
	res.Score = Percent(res.Earned, res.Total)
	res.Passed = !res.PendingManual && res.Score >= res.PassScore
	return res
}

// Percent returns round(100*earned/total), or 0 when total is 0.
func Percent(earned, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(earned) / float64(total)))
}

func (s *Session) inconsistent(op string, kv ...any) {
	args := append([]any{"op", op, "phase", s.st.phase().String()}, kv...)
	s.log.Warn("ignored operation in wrong phase", args...)
}
