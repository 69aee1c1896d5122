package results

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/courseflow/internal/assessment"
	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/feedback"
	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/router"
	"github.com/abhisek/courseflow/internal/screen"
)

func submitted(t *testing.T, answer string) (*assessment.Session, assessment.Result) {
	t.Helper()
	test := catalog.Test{
		ID: "t1", Title: "Quiz", PassScore: 100,
		Questions: []catalog.Question{
			{ID: "q1", Type: catalog.QuestionSingle, Prompt: "Pick B", Points: 1, Options: []string{"A", "B"}, CorrectAnswer: "B"},
		},
	}
	sess := assessment.New(test, assessment.Ledger{}, assessment.Config{StudentID: "s1", LessonID: "quiz"})
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	if err := sess.RecordAnswer("q1", answer); err != nil {
		t.Fatal(err)
	}
	res, _ := sess.Submit()
	return sess, res
}

var quizLesson = catalog.Lesson{ID: "quiz", CourseID: "c1", Title: "Quiz", Type: catalog.LessonTest, TestID: "t1"}

func TestResultsScreen_Passed(t *testing.T) {
	sess, res := submitted(t, "B")
	next := catalog.Lesson{ID: "wrap", Title: "Wrap-up"}
	out := &progress.Outcome{Result: res, Ledger: sess.Ledger(), Next: &next}

	s := New(screen.Env{Log: logger.Nop()}, quizLesson, sess, res, out, nil)
	if cmd := s.Init(); cmd != nil {
		t.Error("no feedback should be requested for a perfect score")
	}

	view := s.View(100, 30)
	for _, want := range []string{"Passed!", "Score: 100%", "Next up: Wrap-up"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResultsScreen_FailedWithoutFeedbackService(t *testing.T) {
	sess, res := submitted(t, "A")
	s := New(screen.Env{Log: logger.Nop()}, quizLesson, sess, res, &progress.Outcome{Result: res, Ledger: sess.Ledger()}, nil)

	if cmd := s.Init(); cmd != nil {
		t.Error("feedback disabled should not start a request")
	}
	if !strings.Contains(s.View(100, 30), "Not passed") {
		t.Error("expected the fail banner")
	}
}

func TestResultsScreen_SaveError(t *testing.T) {
	sess, res := submitted(t, "A")
	s := New(screen.Env{Log: logger.Nop()}, quizLesson, sess, res, nil, errors.New("disk full"))

	if !strings.Contains(s.View(100, 30), "disk full") {
		t.Error("expected the save error to be shown")
	}
}

func TestResultsScreen_FeedbackMessages(t *testing.T) {
	sess, res := submitted(t, "A")
	s := New(screen.Env{Log: logger.Nop()}, quizLesson, sess, res, nil, nil)
	s.feedbackPending = true

	if !strings.Contains(s.View(100, 30), "Preparing explanations") {
		t.Error("expected a pending notice")
	}

	s.Update(feedbackMsg{feedback: &feedback.Feedback{
		Summary: "Review the options.",
		Items:   []feedback.Item{{QuestionID: "q1", Explanation: "B is the only correct choice."}},
	}})
	view := s.View(100, 30)
	if !strings.Contains(view, "Review the options.") || !strings.Contains(view, "only correct choice") {
		t.Error("expected the explanation to be rendered")
	}

	s.Update(feedbackMsg{err: errors.New("timeout")})
	if !strings.Contains(s.View(100, 30), "unavailable") {
		t.Error("expected the unavailable notice after an error")
	}
}

func TestResultsScreen_EnterPops(t *testing.T) {
	sess, res := submitted(t, "B")
	s := New(screen.Env{Log: logger.Nop()}, quizLesson, sess, res, nil, nil)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
