package assessment

import (
	"slices"
	"strings"

	"github.com/abhisek/courseflow/internal/catalog"
)

// Answer is a student's response to one question. Which field is read
// depends on the question type.
type Answer struct {
	Value string   // single, text
	Set   []string // multiple; sorted, no duplicates
	Order []string // matching; right-hand sides in left-hand order
}

// IsEmpty reports whether nothing has been recorded.
func (a Answer) IsEmpty() bool {
	return strings.TrimSpace(a.Value) == "" && len(a.Set) == 0 && len(a.Order) == 0
}

// toggle adds v to the set, or removes it if already present.
func (a Answer) toggle(v string) Answer {
	set := slices.Clone(a.Set)
	if i, found := slices.BinarySearch(set, v); found {
		set = slices.Delete(set, i, i+1)
	} else {
		set = slices.Insert(set, i, v)
	}
	return Answer{Set: set}
}

// comparator reports whether a matches the key of q. ok is false when the
// question carries no usable key.
type comparator func(q catalog.Question, a Answer) (correct, ok bool)

var comparators = map[catalog.QuestionType]comparator{
	catalog.QuestionSingle:   compareSingle,
	catalog.QuestionMultiple: compareMultiple,
	catalog.QuestionText:     compareText,
	catalog.QuestionMatching: compareMatching,
}

func compareSingle(q catalog.Question, a Answer) (bool, bool) {
	if q.CorrectAnswer == "" {
		return false, false
	}
	return a.Value == q.CorrectAnswer, true
}

func compareMultiple(q catalog.Question, a Answer) (bool, bool) {
	if len(q.CorrectAnswers) == 0 {
		return false, false
	}
	want := slices.Clone(q.CorrectAnswers)
	slices.Sort(want)
	want = slices.Compact(want)
	return slices.Equal(a.Set, want), true
}

// compareText matches trimmed input case-insensitively.
func compareText(q catalog.Question, a Answer) (bool, bool) {
	key := strings.TrimSpace(q.CorrectAnswer)
	if key == "" {
		return false, false
	}
	got := strings.TrimSpace(a.Value)
	if got == "" {
		return false, true
	}
	return strings.EqualFold(got, key), true
}

func compareMatching(q catalog.Question, a Answer) (bool, bool) {
	if len(q.Pairs) == 0 {
		return false, false
	}
	want := make([]string, len(q.Pairs))
	for i, p := range q.Pairs {
		want[i] = p.Right
	}
	return slices.Equal(a.Order, want), true
}

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	QuestionID string
	Points     int
	Earned     int
	Answered   bool
	Correct    bool

	// Manual is set for text questions awaiting a human grader.
	Manual bool
	// Malformed is set when the question has no usable answer key.
	Malformed bool
}

// gradeQuestion scores a single question. Manual and malformed questions
// earn nothing.
func gradeQuestion(q catalog.Question, a Answer, answered bool) QuestionResult {
	r := QuestionResult{QuestionID: q.ID, Points: q.Points, Answered: answered}

	if q.IsManual() {
		r.Manual = true
		return r
	}

	cmp, known := comparators[q.Type]
	if !known {
		r.Malformed = true
		return r
	}
	correct, ok := cmp(q, a)
	if !ok {
		r.Malformed = true
		return r
	}
	if answered && correct {
		r.Correct = true
		r.Earned = q.Points
	}
	return r
}
