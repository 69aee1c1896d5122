package store

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrAttemptsExhausted is returned by RecordAttempt when the ledger already
// holds MaxAttempts attempts.
var ErrAttemptsExhausted = errors.New("attempt limit reached")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// CourseProgress is a student's standing in one course.
type CourseProgress struct {
	StudentID          string
	CourseID           string
	CompletedLessonIDs []string
	TestScore          *int
	Completed          bool
	LastAccessedLesson string
	StartedAt          time.Time
	UpdatedAt          time.Time
}

// IsCompleted reports whether lessonID is in the completed set.
func (p *CourseProgress) IsCompleted(lessonID string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.CompletedLessonIDs, lessonID)
}

// MarkCompleted adds lessonID to the completed set. It reports whether the
// set changed.
func (p *CourseProgress) MarkCompleted(lessonID string) bool {
	if p.IsCompleted(lessonID) {
		return false
	}
	p.CompletedLessonIDs = append(p.CompletedLessonIDs, lessonID)
	return true
}

// ProgressRepo persists course progress.
type ProgressRepo interface {
	// Get returns the progress record, or nil if the student has not started
	// the course.
	Get(ctx context.Context, studentID, courseID string) (*CourseProgress, error)

	// Save inserts or replaces the record for (StudentID, CourseID).
	Save(ctx context.Context, p *CourseProgress) error

	// Delete removes the record.
	Delete(ctx context.Context, studentID, courseID string) error

	// List returns every course the student has progress in.
	List(ctx context.Context, studentID string) ([]CourseProgress, error)
}

// LedgerRow is the stored attempt ledger for one test lesson.
type LedgerRow struct {
	StudentID     string
	CourseID      string
	LessonID      string
	AttemptsUsed  int
	MaxAttempts   *int
	BestScore     int
	LastAttemptAt *time.Time
}

// AttemptRecord describes one completed attempt to charge to a ledger.
type AttemptRecord struct {
	StudentID   string
	CourseID    string
	LessonID    string
	Score       int
	MaxAttempts *int
	At          time.Time
}

// LedgerRepo persists attempt ledgers.
type LedgerRepo interface {
	// Get returns the ledger, or nil if no attempt has been recorded.
	Get(ctx context.Context, studentID, lessonID string) (*LedgerRow, error)

	// RecordAttempt increments attempts_used, keeps the best score and
	// refreshes max_attempts from the catalog, creating the row if needed.
	// It refuses with ErrAttemptsExhausted once a positive cap is reached.
	RecordAttempt(ctx context.Context, rec AttemptRecord) (*LedgerRow, error)

	// List returns the ledgers of one course.
	List(ctx context.Context, studentID, courseID string) ([]LedgerRow, error)

	// DeleteCourse removes every ledger of a course.
	DeleteCourse(ctx context.Context, studentID, courseID string) error
}

// AttemptEventData captures a submitted test attempt.
type AttemptEventData struct {
	SessionID     string
	StudentID     string
	CourseID      string
	LessonID      string
	TestID        string
	Score         int
	EarnedPoints  int
	TotalPoints   int
	Passed        bool
	PendingManual bool
	EndReason     string
	DurationSecs  int
	Answers       map[string]any
}

// AttemptEvent is a stored attempt.
type AttemptEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AttemptEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls by a grouping key.
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendAttempt records a submitted attempt.
	AppendAttempt(ctx context.Context, data AttemptEventData) error

	// QueryAttempts returns attempts of a student in a course, newest first.
	// lessonID may be empty to include every lesson.
	QueryAttempts(ctx context.Context, studentID, courseID, lessonID string, opts QueryOpts) ([]AttemptEvent, error)

	// DeleteAttempts removes the attempt history of a course.
	DeleteAttempts(ctx context.Context, studentID, courseID string) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMRequests returns LLM events, newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMRequest returns one LLM event, or nil if not found.
	GetLLMRequest(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageBy aggregates LLM events by "purpose" or "model".
	LLMUsageBy(ctx context.Context, column string) ([]LLMUsage, error)
}
