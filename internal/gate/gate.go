// Package gate decides whether a student may enter a lesson.
//
// Evaluate is pure: it reads the lesson list and a progress snapshot and
// returns a Status. Rules run in a fixed order and the first rule that
// locks wins.
package gate

import (
	"fmt"

	"github.com/abhisek/courseflow/internal/catalog"
)

// Reason identifies which rule locked a lesson.
type Reason string

const (
	ReasonNone       Reason = "none"
	ReasonPrevious   Reason = "previous"
	ReasonAllLessons Reason = "allLessons"
	ReasonAllTests   Reason = "allTests"
)

// Status is the outcome of evaluating a lesson.
type Status struct {
	Locked  bool
	Reason  Reason
	Message string

	// Completed and Total count the lessons the locking rule looked at.
	// Only the allLessons and allTests rules set them.
	Completed int
	Total     int
}

// Unlocked is the status of an accessible lesson.
var Unlocked = Status{Reason: ReasonNone}

// Progress is the subset of course progress the gate reads.
type Progress interface {
	IsCompleted(lessonID string) bool
}

// CompletedSet is a Progress backed by a set of lesson IDs.
type CompletedSet map[string]bool

func (s CompletedSet) IsCompleted(id string) bool { return s[id] }

// Input bundles the arguments of a single evaluation.
type Input struct {
	Lesson   catalog.Lesson
	Lessons  []catalog.Lesson
	Previous *catalog.Lesson
	Progress Progress
}

// rule inspects an input and returns a locked Status, or ok=false to pass
// control to the next rule.
type rule func(in Input) (Status, bool)

// rules is the evaluation order.
var rules = []rule{
	requirePrevious,
	requireAllLessons,
	requireAllTests,
}

// Evaluate returns the lock status of lesson. previous is the lesson
// immediately before it by order, or nil for the first lesson. progress may
// be nil, meaning nothing has been completed.
func Evaluate(lesson catalog.Lesson, lessons []catalog.Lesson, previous *catalog.Lesson, progress Progress) Status {
	if progress == nil {
		progress = CompletedSet(nil)
	}
	in := Input{Lesson: lesson, Lessons: lessons, Previous: previous, Progress: progress}
	for _, r := range rules {
		if st, locked := r(in); locked {
			return st
		}
	}
	return Unlocked
}

func requirePrevious(in Input) (Status, bool) {
	if !in.Lesson.RequiresPrevious || in.Previous == nil {
		return Status{}, false
	}
	if in.Progress.IsCompleted(in.Previous.ID) {
		return Status{}, false
	}
	return Status{
		Locked:  true,
		Reason:  ReasonPrevious,
		Message: fmt.Sprintf("Complete the previous lesson %q first", in.Previous.Title),
	}, true
}

func requireAllLessons(in Input) (Status, bool) {
	if !in.Lesson.IsFinalTest || !in.Lesson.FinalTestRequiresAllLessons {
		return Status{}, false
	}
	done, total := count(in, func(l catalog.Lesson) bool { return !l.IsFinalTest })
	if done == total {
		return Status{}, false
	}
	return Status{
		Locked:    true,
		Reason:    ReasonAllLessons,
		Message:   fmt.Sprintf("Complete all lessons before the final test (%d/%d)", done, total),
		Completed: done,
		Total:     total,
	}, true
}

func requireAllTests(in Input) (Status, bool) {
	if !in.Lesson.IsFinalTest || !in.Lesson.FinalTestRequiresAllTests {
		return Status{}, false
	}
	done, total := count(in, func(l catalog.Lesson) bool { return l.IsTest() && !l.IsFinalTest })
	if done == total {
		return Status{}, false
	}
	return Status{
		Locked:    true,
		Reason:    ReasonAllTests,
		Message:   fmt.Sprintf("Pass all tests before the final test (%d/%d)", done, total),
		Completed: done,
		Total:     total,
	}, true
}

// count returns how many lessons matching keep are completed, and how many
// match in total.
func count(in Input, keep func(catalog.Lesson) bool) (done, total int) {
	for _, l := range in.Lessons {
		if !keep(l) {
			continue
		}
		total++
		if in.Progress.IsCompleted(l.ID) {
			done++
		}
	}
	return done, total
}

// Neighbors returns the lessons immediately before and after lessonID in
// lessons, which must be sorted by order. Either may be nil.
func Neighbors(lessons []catalog.Lesson, lessonID string) (prev, next *catalog.Lesson) {
	for i := range lessons {
		if lessons[i].ID != lessonID {
			continue
		}
		if i > 0 {
			p := lessons[i-1]
			prev = &p
		}
		if i+1 < len(lessons) {
			n := lessons[i+1]
			next = &n
		}
		return prev, next
	}
	return nil, nil
}

// LockedError reports an attempt to act on a locked lesson.
type LockedError struct {
	LessonID string
	Status   Status
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("lesson %s is locked (%s): %s", e.LessonID, e.Status.Reason, e.Status.Message)
}
