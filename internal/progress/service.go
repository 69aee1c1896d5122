// Package progress folds lesson completions and test attempts into a
// student's stored course progress and attempt ledgers.
package progress

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/courseflow/internal/assessment"
	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/gate"
	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/store"
)

var (
	ErrUnknownCourse = errors.New("unknown course")
	ErrUnknownLesson = errors.New("unknown lesson")
	ErrNotATest      = errors.New("lesson is not a test")
	ErrIsTest        = errors.New("test lessons are completed by passing the test")
)

// Service is the progression layer between the catalog, the gate, test
// sessions and storage.
type Service struct {
	catalog  *catalog.Catalog
	progress store.ProgressRepo
	ledgers  store.LedgerRepo
	events   store.EventRepo
	log      *logger.Logger

	// Now is the clock. Tests replace it.
	Now func() time.Time
}

// NewService wires a Service. log may be nil.
func NewService(cat *catalog.Catalog, progress store.ProgressRepo, ledgers store.LedgerRepo, events store.EventRepo, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		catalog:  cat,
		progress: progress,
		ledgers:  ledgers,
		events:   events,
		log:      log,
		Now:      time.Now,
	}
}

// Catalog returns the catalog the service reads.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// LessonState is one row of a course overview.
type LessonState struct {
	Lesson    catalog.Lesson
	Status    gate.Status
	Completed bool

	// Ledger is set for test lessons.
	Ledger *assessment.Ledger
}

// Overview is a student's view of one course.
type Overview struct {
	Course   catalog.Course
	Progress *store.CourseProgress
	Lessons  []LessonState
}

// CompletedCount returns how many lessons of the course are completed.
func (o Overview) CompletedCount() int {
	n := 0
	for _, l := range o.Lessons {
		if l.Completed {
			n++
		}
	}
	return n
}

// Overview evaluates every lesson of a course for a student.
func (s *Service) Overview(ctx context.Context, studentID, courseID string) (*Overview, error) {
	course, ok := s.catalog.Course(courseID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCourse, courseID)
	}
	p, err := s.progress.Get(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	ov := &Overview{Course: course, Progress: p}
	for i, l := range course.Lessons {
		var prev *catalog.Lesson
		if i > 0 {
			prev = &course.Lessons[i-1]
		}
		st := LessonState{
			Lesson:    l,
			Status:    gate.Evaluate(l, course.Lessons, prev, p),
			Completed: p.IsCompleted(l.ID),
		}
		if l.IsTest() {
			ledger, err := s.Ledger(ctx, studentID, l)
			if err != nil {
				return nil, err
			}
			st.Ledger = &ledger
		}
		ov.Lessons = append(ov.Lessons, st)
	}
	return ov, nil
}

// Status returns the lock status of one lesson.
func (s *Service) Status(ctx context.Context, studentID, courseID, lessonID string) (gate.Status, error) {
	lesson, lessons, err := s.lookup(courseID, lessonID)
	if err != nil {
		return gate.Status{}, err
	}
	p, err := s.progress.Get(ctx, studentID, courseID)
	if err != nil {
		return gate.Status{}, err
	}
	prev, _ := gate.Neighbors(lessons, lessonID)
	return gate.Evaluate(lesson, lessons, prev, p), nil
}

// Visit records lessonID as the last lesson the student opened.
func (s *Service) Visit(ctx context.Context, studentID, courseID, lessonID string) error {
	if _, _, err := s.lookup(courseID, lessonID); err != nil {
		return err
	}
	p, err := s.load(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	p.LastAccessedLesson = lessonID
	p.UpdatedAt = s.Now()
	return s.progress.Save(ctx, p)
}

// CompleteLesson marks a text or video lesson as done. Completing an
// already completed lesson is a no-op.
func (s *Service) CompleteLesson(ctx context.Context, studentID, courseID, lessonID string) (*store.CourseProgress, error) {
	lesson, lessons, err := s.lookup(courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.IsTest() {
		return nil, ErrIsTest
	}
	if err := s.checkUnlocked(ctx, studentID, lesson, lessons); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	s.markCompleted(p, lessonID, lessons)
	if err := s.progress.Save(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("lesson completed", "student", studentID, "course", courseID, "lesson", lessonID, "course_completed", p.Completed)
	return p, nil
}

// NewSession prepares a test session for a lesson. The session is not
// started; callers confirm with the student and call Start.
func (s *Service) NewSession(ctx context.Context, studentID, courseID, lessonID string) (*assessment.Session, error) {
	lesson, lessons, err := s.lookup(courseID, lessonID)
	if err != nil {
		return nil, err
	}
	test, ok := s.catalog.TestFor(lesson)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotATest, lessonID)
	}
	if err := s.checkUnlocked(ctx, studentID, lesson, lessons); err != nil {
		return nil, err
	}

	ledger, err := s.Ledger(ctx, studentID, lesson)
	if err != nil {
		return nil, err
	}
	return assessment.New(test, ledger, assessment.Config{
		StudentID: studentID,
		LessonID:  lessonID,
		Logger:    s.log,
		Now:       s.Now,
	}), nil
}

// Ledger returns the attempt ledger of a test lesson, with the attempt cap
// taken from the catalog.
func (s *Service) Ledger(ctx context.Context, studentID string, lesson catalog.Lesson) (assessment.Ledger, error) {
	test, ok := s.catalog.TestFor(lesson)
	if !ok {
		return assessment.Ledger{}, fmt.Errorf("%w: %s", ErrNotATest, lesson.ID)
	}
	row, err := s.ledgers.Get(ctx, studentID, lesson.ID)
	if err != nil {
		return assessment.Ledger{}, err
	}
	l := assessment.Ledger{MaxAttempts: test.MaxAttempts}
	if row != nil {
		l.AttemptsUsed = row.AttemptsUsed
		l.BestScore = row.BestScore
		if row.LastAttemptAt != nil {
			l.LastAttemptAt = *row.LastAttemptAt
		}
	}
	return l, nil
}

// Outcome is the effect of folding a submitted attempt.
type Outcome struct {
	Result   assessment.Result
	Ledger   assessment.Ledger
	Progress *store.CourseProgress

	// Next is the lesson after the test, set when the attempt passed.
	Next *catalog.Lesson
}

// FinishTest charges the ledger, appends the attempt to the history, and on
// a pass marks the lesson completed. Call it once per session, with the
// result of the submission that reported first=true.
func (s *Service) FinishTest(ctx context.Context, sess *assessment.Session, res assessment.Result) (*Outcome, error) {
	lesson, ok := s.catalog.LessonByID(res.LessonID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLesson, res.LessonID)
	}
	lessons := s.catalog.Lessons(lesson.CourseID)
	log := s.log.With("student", res.StudentID, "lesson", lesson.ID, "session_id", res.SessionID)

	test, _ := s.catalog.TestFor(lesson)
	row, err := s.ledgers.RecordAttempt(ctx, store.AttemptRecord{
		StudentID:   res.StudentID,
		CourseID:    lesson.CourseID,
		LessonID:    lesson.ID,
		Score:       res.Score,
		MaxAttempts: test.MaxAttempts,
		At:          res.SubmittedAt,
	})
	if errors.Is(err, store.ErrAttemptsExhausted) {
		log.Warn("attempt refused, ledger is full", "max_attempts", *test.MaxAttempts)
		return nil, assessment.ErrNoAttemptsRemaining
	}
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	if err := s.events.AppendAttempt(ctx, store.AttemptEventData{
		SessionID:     res.SessionID,
		StudentID:     res.StudentID,
		CourseID:      lesson.CourseID,
		LessonID:      lesson.ID,
		TestID:        res.TestID,
		Score:         res.Score,
		EarnedPoints:  res.Earned,
		TotalPoints:   res.Total,
		Passed:        res.Passed,
		PendingManual: res.PendingManual,
		EndReason:     string(res.Reason),
		DurationSecs:  int(res.SubmittedAt.Sub(res.StartedAt).Seconds()),
		Answers:       answersForLog(sess),
	}); err != nil {
		// The ledger is already charged; a missing history row is not fatal.
		log.Warn("failed to append attempt event", "error", err)
	}

	out := &Outcome{
		Result: res,
		Ledger: assessment.Ledger{
			AttemptsUsed:  row.AttemptsUsed,
			MaxAttempts:   test.MaxAttempts,
			BestScore:     row.BestScore,
			LastAttemptAt: res.SubmittedAt,
		},
	}

	p, err := s.load(ctx, res.StudentID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	p.LastAccessedLesson = lesson.ID
	if res.Passed {
		score := res.Score
		p.TestScore = &score
		s.markCompleted(p, lesson.ID, lessons)
		_, out.Next = gate.Neighbors(lessons, lesson.ID)
	}
	p.UpdatedAt = s.Now()
	if err := s.progress.Save(ctx, p); err != nil {
		return nil, err
	}
	out.Progress = p

	log.Info("test finished",
		"score", res.Score,
		"passed", res.Passed,
		"pending_manual", res.PendingManual,
		"attempts_used", row.AttemptsUsed,
	)
	return out, nil
}

// Attempts returns the attempt history of a course, newest first. lessonID
// may be empty.
func (s *Service) Attempts(ctx context.Context, studentID, courseID, lessonID string, limit int) ([]store.AttemptEvent, error) {
	if _, ok := s.catalog.Course(courseID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCourse, courseID)
	}
	return s.events.QueryAttempts(ctx, studentID, courseID, lessonID, store.QueryOpts{Limit: limit})
}

// ResetMode selects what Reset clears.
type ResetMode string

const (
	// ResetAll removes progress, ledgers and attempt history.
	ResetAll ResetMode = "all"
	// ResetTests removes ledgers and history and un-completes test lessons.
	ResetTests ResetMode = "tests"
	// ResetKeep leaves everything in place.
	ResetKeep ResetMode = "keep"
)

// ParseResetMode validates a mode name.
func ParseResetMode(s string) (ResetMode, error) {
	switch m := ResetMode(s); m {
	case ResetAll, ResetTests, ResetKeep:
		return m, nil
	}
	return "", fmt.Errorf("unknown reset mode %q (want all, tests or keep)", s)
}

// Reset clears a student's state in one course.
func (s *Service) Reset(ctx context.Context, studentID, courseID string, mode ResetMode) error {
	if _, ok := s.catalog.Course(courseID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCourse, courseID)
	}
	if mode == ResetKeep {
		return nil
	}

	if err := s.ledgers.DeleteCourse(ctx, studentID, courseID); err != nil {
		return err
	}
	if err := s.events.DeleteAttempts(ctx, studentID, courseID); err != nil {
		return err
	}

	switch mode {
	case ResetAll:
		if err := s.progress.Delete(ctx, studentID, courseID); err != nil {
			return err
		}
	case ResetTests:
		p, err := s.progress.Get(ctx, studentID, courseID)
		if err != nil || p == nil {
			return err
		}
		lessons := s.catalog.Lessons(courseID)
		p.CompletedLessonIDs = slices.DeleteFunc(p.CompletedLessonIDs, func(id string) bool {
			l, ok := s.catalog.Lesson(courseID, id)
			return ok && l.IsTest()
		})
		p.TestScore = nil
		p.Completed = allCompleted(p, lessons)
		p.UpdatedAt = s.Now()
		if err := s.progress.Save(ctx, p); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown reset mode %q", mode)
	}

	s.log.Info("progress reset", "student", studentID, "course", courseID, "mode", string(mode))
	return nil
}

func (s *Service) lookup(courseID, lessonID string) (catalog.Lesson, []catalog.Lesson, error) {
	if _, ok := s.catalog.Course(courseID); !ok {
		return catalog.Lesson{}, nil, fmt.Errorf("%w: %s", ErrUnknownCourse, courseID)
	}
	lesson, ok := s.catalog.Lesson(courseID, lessonID)
	if !ok {
		return catalog.Lesson{}, nil, fmt.Errorf("%w: %s", ErrUnknownLesson, lessonID)
	}
	return lesson, s.catalog.Lessons(courseID), nil
}

func (s *Service) checkUnlocked(ctx context.Context, studentID string, lesson catalog.Lesson, lessons []catalog.Lesson) error {
	p, err := s.progress.Get(ctx, studentID, lesson.CourseID)
	if err != nil {
		return err
	}
	prev, _ := gate.Neighbors(lessons, lesson.ID)
	if st := gate.Evaluate(lesson, lessons, prev, p); st.Locked {
		return &gate.LockedError{LessonID: lesson.ID, Status: st}
	}
	return nil
}

// load returns the stored progress or a fresh record.
func (s *Service) load(ctx context.Context, studentID, courseID string) (*store.CourseProgress, error) {
	p, err := s.progress.Get(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		now := s.Now()
		p = &store.CourseProgress{StudentID: studentID, CourseID: courseID, StartedAt: now, UpdatedAt: now}
	}
	return p, nil
}

func (s *Service) markCompleted(p *store.CourseProgress, lessonID string, lessons []catalog.Lesson) {
	p.MarkCompleted(lessonID)
	p.LastAccessedLesson = lessonID
	p.UpdatedAt = s.Now()
	p.Completed = allCompleted(p, lessons)
}

func allCompleted(p *store.CourseProgress, lessons []catalog.Lesson) bool {
	return len(lessons) > 0 && !slices.ContainsFunc(lessons, func(l catalog.Lesson) bool {
		return !p.IsCompleted(l.ID)
	})
}

func answersForLog(sess *assessment.Session) map[string]any {
	if sess == nil {
		return nil
	}
	view := sess.Snapshot()
	out := make(map[string]any, len(view.Answers))
	for id, a := range view.Answers {
		switch {
		case len(a.Set) > 0:
			out[id] = a.Set
		case len(a.Order) > 0:
			out[id] = a.Order
		default:
			out[id] = a.Value
		}
	}
	return out
}
