package attempt

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/ui/components"
	"github.com/abhisek/courseflow/internal/ui/layout"
	"github.com/abhisek/courseflow/internal/ui/theme"
)

func (s *AttemptScreen) View(width, height int) string {
	var content string
	switch s.mode {
	case modeConfirm:
		content = s.renderConfirm()
	case modeSubmitConfirm:
		content = s.renderQuestion(width) + "\n" + s.renderSubmitConfirm()
	case modeAbandonConfirm:
		content = theme.Warning.Render("Leave this test?") + "\n\n" +
			theme.Body.Render("Your answers will be discarded. The attempt is not counted.") + "\n"
	case modeFinishing:
		content = theme.Hint.Render("Saving your attempt...")
	default:
		content = s.renderQuestion(width)
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(content)
}

func (s *AttemptScreen) renderConfirm() string {
	test := s.sess.Test()
	ledger := s.sess.Ledger()

	var b strings.Builder
	b.WriteString(theme.Title.Render(test.Title) + "\n\n")
	fmt.Fprintf(&b, "%s\n", theme.Body.Render(fmt.Sprintf("Questions: %d (%d points)", len(test.Questions), test.TotalPoints())))
	if test.TimeLimit > 0 {
		fmt.Fprintf(&b, "%s\n", theme.Body.Render(fmt.Sprintf("Time limit: %d min", test.TimeLimit)))
	} else {
		fmt.Fprintf(&b, "%s\n", theme.Body.Render("Time limit: none"))
	}
	fmt.Fprintf(&b, "%s\n", theme.Body.Render(fmt.Sprintf("Pass mark: %d%%", test.PassScore)))
	fmt.Fprintf(&b, "%s\n\n", theme.Subtitle.Render(components.LedgerSummary(ledger)))

	switch remaining, limited := ledger.Remaining(); {
	case !s.sess.CanStart():
		b.WriteString(theme.Incorrect.Render("No attempts left for this test.") + "\n")
	case limited:
		b.WriteString(theme.Warning.Render(fmt.Sprintf(
			"Submitting uses 1 of your %d remaining attempts. Start now?", remaining)) + "\n")
	default:
		b.WriteString(theme.Hint.Render("Press Enter to start.") + "\n")
	}
	if s.notice != "" {
		b.WriteString("\n" + theme.Warning.Render(s.notice) + "\n")
	}
	return b.String()
}

func (s *AttemptScreen) renderSubmitConfirm() string {
	view := s.sess.Snapshot()
	msg := "Submit your answers?"
	if unanswered := view.Total - view.Answered(); unanswered > 0 {
		msg = fmt.Sprintf("%d question(s) unanswered. Submit anyway?", unanswered)
	}
	return theme.Warning.Render(msg) + "\n"
}

func (s *AttemptScreen) renderQuestion(width int) string {
	view := s.sess.Snapshot()
	q := view.Question

	var b strings.Builder

	status := fmt.Sprintf("Question %d of %d · %d answered", view.Index+1, view.Total, view.Answered())
	if s.sess.Test().TimeLimit > 0 {
		clock := "⏱ " + layout.FormatClock(view.Remaining)
		style := theme.Body
		if view.Remaining <= 60 {
			style = theme.Incorrect
		}
		status += "   " + style.Render(clock)
	}
	b.WriteString(theme.Subtitle.Render(status) + "\n\n")

	prompt := lipgloss.NewStyle().Width(min(width-8, 90)).Bold(true).Foreground(theme.Text)
	b.WriteString(prompt.Render(q.Prompt) + "\n")
	b.WriteString(theme.Hint.Render(questionHint(q)) + "\n\n")

	switch q.Type {
	case catalog.QuestionSingle, catalog.QuestionMultiple:
		b.WriteString(s.choices.View())
	case catalog.QuestionText:
		b.WriteString(s.input.View() + "\n")
	case catalog.QuestionMatching:
		b.WriteString(s.renderMatching(q))
	}
	if s.notice != "" {
		b.WriteString("\n" + theme.Warning.Render(s.notice) + "\n")
	}
	return b.String()
}

func (s *AttemptScreen) renderMatching(q catalog.Question) string {
	var b strings.Builder
	for i, p := range q.Pairs {
		right := "?"
		if i < len(s.order) && s.order[i] != "" {
			right = s.order[i]
		}
		prefix := "  "
		style := theme.Unselected
		if i == s.matchRow {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s  →  ‹ %s ›", prefix, p.Left, right)) + "\n")
	}
	return b.String()
}

func questionHint(q catalog.Question) string {
	points := fmt.Sprintf("%d point", q.Points)
	if q.Points != 1 {
		points += "s"
	}
	switch q.Type {
	case catalog.QuestionMultiple:
		return points + " · select all that apply"
	case catalog.QuestionMatching:
		return points + " · match every item"
	case catalog.QuestionText:
		if q.IsManual() {
			return points + " · graded by your instructor"
		}
		return points
	default:
		return points
	}
}
