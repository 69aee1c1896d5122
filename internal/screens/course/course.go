// Package course shows the lessons of one course with their lock state.
package course

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/courseflow/internal/assessment"
	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/gate"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/router"
	"github.com/abhisek/courseflow/internal/screen"
	"github.com/abhisek/courseflow/internal/screens/attempt"
	"github.com/abhisek/courseflow/internal/screens/lesson"
	"github.com/abhisek/courseflow/internal/ui/components"
	"github.com/abhisek/courseflow/internal/ui/layout"
	"github.com/abhisek/courseflow/internal/ui/theme"
)

type loadedMsg struct {
	overview *progress.Overview
	err      error
}

type sessionMsg struct {
	lesson  catalog.Lesson
	session *assessment.Session
	err     error
}

// CourseScreen lists a course's lessons.
type CourseScreen struct {
	env      screen.Env
	courseID string
	overview *progress.Overview
	cursor   int
	notice   string
	err      error
}

var _ screen.Screen = (*CourseScreen)(nil)
var _ screen.Resumer = (*CourseScreen)(nil)

// New creates the lesson list of courseID.
func New(env screen.Env, courseID string) *CourseScreen {
	return &CourseScreen{env: env, courseID: courseID}
}

func (s *CourseScreen) Init() tea.Cmd { return s.load() }

func (s *CourseScreen) Resume() tea.Cmd {
	s.notice = ""
	return s.load()
}

func (s *CourseScreen) Title() string {
	if s.overview != nil {
		return s.overview.Course.Title
	}
	return "Course"
}

func (s *CourseScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CourseScreen) load() tea.Cmd {
	env, courseID := s.env, s.courseID
	return func() tea.Msg {
		ov, err := env.Progress.Overview(context.Background(), env.StudentID, courseID)
		return loadedMsg{overview: ov, err: err}
	}
}

func (s *CourseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.overview, s.err = msg.overview, msg.err
		if s.overview != nil {
			s.cursor = min(s.cursor, max(len(s.overview.Lessons)-1, 0))
		}
		return s, nil

	case sessionMsg:
		var locked *gate.LockedError
		switch {
		case errors.As(msg.err, &locked):
			s.notice = locked.Status.Message
		case msg.err != nil:
			s.notice = msg.err.Error()
		default:
			return s, router.Push(attempt.New(s.env, msg.lesson, msg.session))
		}
		return s, nil

	case tea.KeyMsg:
		if s.overview == nil {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
			s.notice = ""
		case "down", "j":
			if s.cursor < len(s.overview.Lessons)-1 {
				s.cursor++
			}
			s.notice = ""
		case "enter":
			return s, s.open()
		}
	}
	return s, nil
}

// open enters the selected lesson, or explains why it is locked.
func (s *CourseScreen) open() tea.Cmd {
	if s.cursor >= len(s.overview.Lessons) {
		return nil
	}
	st := s.overview.Lessons[s.cursor]
	if st.Status.Locked {
		s.notice = st.Status.Message
		return nil
	}
	if !st.Lesson.IsTest() {
		return router.Push(lesson.New(s.env, st.Lesson))
	}

	env, l := s.env, st.Lesson
	return func() tea.Msg {
		sess, err := env.Progress.NewSession(context.Background(), env.StudentID, l.CourseID, l.ID)
		return sessionMsg{lesson: l, session: sess, err: err}
	}
}

func (s *CourseScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	if s.err != nil {
		b.WriteString(theme.Incorrect.Render("  "+s.err.Error()) + "\n")
		return b.String()
	}
	if s.overview == nil {
		b.WriteString(theme.Hint.Render("  Loading...") + "\n")
		return b.String()
	}

	ov := s.overview
	b.WriteString("  " + components.NewProgressBar("Completed", ov.CompletedCount(), len(ov.Lessons), min(width-4, 64)).View())
	b.WriteString("\n\n")

	for i, st := range ov.Lessons {
		b.WriteString(renderRow(st, i == s.cursor))
		b.WriteString("\n")
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().MarginLeft(2).Render(theme.Warning.Render(s.notice)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(st progress.LessonState, selected bool) string {
	icon := "○"
	style := theme.Unselected
	switch {
	case st.Completed:
		icon = "✓"
	case st.Status.Locked:
		icon = "🔒"
		style = theme.Locked
	}
	prefix := "    "
	if selected {
		prefix = "  ▸ "
		style = theme.Selected
	}

	line := fmt.Sprintf("%s%s %d. %s", prefix, icon, st.Lesson.Order, st.Lesson.Title)
	detail := string(st.Lesson.Type)
	if st.Lesson.IsFinalTest {
		detail = "final test"
	}
	if st.Ledger != nil {
		detail += " · " + components.LedgerSummary(*st.Ledger)
	}
	return style.Render(line) + "  " + theme.Subtitle.Render(detail)
}
