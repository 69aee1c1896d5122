// Package lesson renders a text or video lesson and lets the student mark
// it completed.
package lesson

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/gate"
	"github.com/abhisek/courseflow/internal/screen"
	"github.com/abhisek/courseflow/internal/ui/layout"
	"github.com/abhisek/courseflow/internal/ui/theme"
)

type completedMsg struct {
	courseDone bool
	err        error
}

// LessonScreen shows one lesson.
type LessonScreen struct {
	env        screen.Env
	lesson     catalog.Lesson
	next       *catalog.Lesson
	completed  bool
	courseDone bool
	notice     string
}

var _ screen.Screen = (*LessonScreen)(nil)

// New creates a screen for a text or video lesson.
func New(env screen.Env, l catalog.Lesson) *LessonScreen {
	_, next := gate.Neighbors(env.Progress.Catalog().Lessons(l.CourseID), l.ID)
	return &LessonScreen{env: env, lesson: l, next: next}
}

func (s *LessonScreen) Init() tea.Cmd {
	env, l := s.env, s.lesson
	return func() tea.Msg {
		if err := env.Progress.Visit(context.Background(), env.StudentID, l.CourseID, l.ID); err != nil {
			env.Log.Warn("failed to record lesson visit", "lesson", l.ID, "error", err)
		}
		return nil
	}
}

func (s *LessonScreen) Title() string { return s.lesson.Title }

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	if s.completed {
		return []layout.KeyHint{{Key: "Esc", Description: "Back to course"}}
	}
	return []layout.KeyHint{
		{Key: "C", Description: "Mark complete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case completedMsg:
		var locked *gate.LockedError
		switch {
		case errors.As(msg.err, &locked):
			s.notice = locked.Status.Message
		case msg.err != nil:
			s.notice = "Could not save progress: " + msg.err.Error()
		default:
			s.completed = true
			s.courseDone = msg.courseDone
			s.notice = ""
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "c", "C", "enter":
			if !s.completed {
				return s, s.complete()
			}
		}
	}
	return s, nil
}

func (s *LessonScreen) complete() tea.Cmd {
	env, l := s.env, s.lesson
	return func() tea.Msg {
		p, err := env.Progress.CompleteLesson(context.Background(), env.StudentID, l.CourseID, l.ID)
		if err != nil {
			return completedMsg{err: err}
		}
		return completedMsg{courseDone: p.Completed}
	}
}

func (s *LessonScreen) View(width, height int) string {
	body := lipgloss.NewStyle().Width(min(width-8, 90))

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.lesson.Title) + "\n\n")
	switch s.lesson.Type {
	case catalog.LessonVideo:
		b.WriteString(theme.Body.Render("Video: ") + theme.Selected.Render(s.lesson.VideoURL) + "\n")
		if s.lesson.Content != "" {
			b.WriteString("\n" + body.Render(s.lesson.Content) + "\n")
		}
	default:
		b.WriteString(body.Render(s.lesson.Content) + "\n")
	}

	b.WriteString("\n")
	switch {
	case s.completed && s.courseDone:
		b.WriteString(theme.Correct.Render("✓ Lesson completed. You finished the course!") + "\n")
	case s.completed:
		b.WriteString(theme.Correct.Render("✓ Lesson completed.") + "\n")
		if s.next != nil {
			b.WriteString(theme.Hint.Render("Next up: "+s.next.Title) + "\n")
		}
	case s.notice != "":
		b.WriteString(theme.Warning.Render(s.notice) + "\n")
	default:
		b.WriteString(theme.Hint.Render("Press C when you have finished this lesson.") + "\n")
	}

	return lipgloss.NewStyle().Margin(1, 2).Render(b.String())
}
