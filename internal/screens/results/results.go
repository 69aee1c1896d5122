// Package results shows the outcome of a submitted attempt.
package results

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/courseflow/internal/assessment"
	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/feedback"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/router"
	"github.com/abhisek/courseflow/internal/screen"
	"github.com/abhisek/courseflow/internal/ui/components"
	"github.com/abhisek/courseflow/internal/ui/layout"
	"github.com/abhisek/courseflow/internal/ui/theme"
)

type feedbackMsg struct {
	feedback *feedback.Feedback
	err      error
}

// ResultsScreen displays a scored attempt.
type ResultsScreen struct {
	env     screen.Env
	lesson  catalog.Lesson
	test    catalog.Test
	answers map[string]assessment.Answer
	result  assessment.Result
	outcome *progress.Outcome
	saveErr error

	feedback        *feedback.Feedback
	feedbackErr     error
	feedbackPending bool
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates the results screen. outcome is nil when saving failed, in
// which case saveErr says why.
func New(env screen.Env, l catalog.Lesson, sess *assessment.Session, res assessment.Result, outcome *progress.Outcome, saveErr error) *ResultsScreen {
	return &ResultsScreen{
		env:     env,
		lesson:  l,
		test:    sess.Test(),
		answers: sess.Snapshot().Answers,
		result:  res,
		outcome: outcome,
		saveErr: saveErr,
	}
}

func (s *ResultsScreen) Init() tea.Cmd {
	if s.env.Feedback == nil || len(s.result.Missed()) == 0 {
		return nil
	}
	s.feedbackPending = true
	fb, test, res, answers := s.env.Feedback, s.test, s.result, s.answers
	return func() tea.Msg {
		out, err := fb.Explain(context.Background(), test, res, answers)
		return feedbackMsg{feedback: out, err: err}
	}
}

func (s *ResultsScreen) Title() string { return "Results" }

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Back to course"}}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case feedbackMsg:
		s.feedbackPending = false
		s.feedback, s.feedbackErr = msg.feedback, msg.err
		if msg.err != nil {
			s.env.Log.Warn("feedback generation failed", "lesson", s.lesson.ID, "error", msg.err)
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q":
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	res := s.result
	var b strings.Builder

	switch {
	case res.Passed:
		b.WriteString(theme.Correct.Render("Passed!"))
	case res.PendingManual:
		b.WriteString(theme.Warning.Render("Awaiting instructor review"))
	default:
		b.WriteString(theme.Incorrect.Render("Not passed"))
	}
	if res.Reason == assessment.EndTimeout {
		b.WriteString("  " + theme.Hint.Render("(time ran out)"))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s\n", theme.Body.Render(fmt.Sprintf("Score: %d%%  (%d/%d points, pass mark %d%%)",
		res.Score, res.Earned, res.Total, res.PassScore)))
	if s.outcome != nil {
		fmt.Fprintf(&b, "%s\n", theme.Subtitle.Render(components.LedgerSummary(s.outcome.Ledger)))
	}
	if res.PendingManual {
		b.WriteString(theme.Hint.Render("Some answers are graded by your instructor. Your score may change.") + "\n")
	}
	if s.saveErr != nil {
		b.WriteString(theme.Incorrect.Render("Could not save this attempt: "+s.saveErr.Error()) + "\n")
	}
	b.WriteString("\n")

	prompts := make(map[string]string, len(s.test.Questions))
	for _, q := range s.test.Questions {
		prompts[q.ID] = q.Prompt
	}
	for i, q := range res.Questions {
		b.WriteString(renderQuestionResult(i+1, q, prompts[q.QuestionID], width) + "\n")
	}

	if s.outcome != nil && s.outcome.Next != nil {
		b.WriteString("\n" + theme.Selected.Render("Next up: "+s.outcome.Next.Title) + "\n")
	} else if s.outcome != nil && s.outcome.Progress != nil && s.outcome.Progress.Completed {
		b.WriteString("\n" + theme.Correct.Render("You completed the course!") + "\n")
	}

	b.WriteString(s.renderFeedback(width))
	return lipgloss.NewStyle().Margin(1, 2).Render(b.String())
}

func renderQuestionResult(n int, q assessment.QuestionResult, prompt string, width int) string {
	icon, style := "✗", theme.Incorrect
	switch {
	case q.Manual:
		icon, style = "…", theme.Warning
	case q.Malformed:
		icon, style = "-", theme.Locked
	case q.Correct:
		icon, style = "✓", theme.Correct
	}
	line := fmt.Sprintf("%d. %s", n, prompt)
	if w := width - 20; w > 10 && lipgloss.Width(line) > w {
		line = string([]rune(line)[:w-1]) + "…"
	}
	return style.Render(icon) + " " + theme.Body.Render(line) + "  " +
		theme.Subtitle.Render(fmt.Sprintf("%d/%d", q.Earned, q.Points))
}

func (s *ResultsScreen) renderFeedback(width int) string {
	switch {
	case s.feedbackPending:
		return "\n" + theme.Hint.Render("Preparing explanations...") + "\n"
	case s.feedbackErr != nil:
		return "\n" + theme.Hint.Render("Explanations are unavailable right now.") + "\n"
	case s.feedback == nil:
		return ""
	}

	text := lipgloss.NewStyle().Width(min(width-10, 90))
	var b strings.Builder
	b.WriteString("\n" + theme.Title.Render("Review") + "\n")
	b.WriteString(text.Render(s.feedback.Summary) + "\n")
	for _, it := range s.feedback.Items {
		b.WriteString("\n" + theme.Selected.Render(it.QuestionID) + "  " + text.Render(it.Explanation) + "\n")
	}
	return b.String()
}
