// Package courses is the home screen: every course in the catalog with the
// student's completion.
package courses

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/router"
	"github.com/abhisek/courseflow/internal/screen"
	"github.com/abhisek/courseflow/internal/screens/course"
	"github.com/abhisek/courseflow/internal/ui/components"
	"github.com/abhisek/courseflow/internal/ui/layout"
	"github.com/abhisek/courseflow/internal/ui/theme"
)

type loadedMsg struct {
	overviews []*progress.Overview
	err       error
}

// CoursesScreen lists the catalog's courses.
type CoursesScreen struct {
	env       screen.Env
	overviews []*progress.Overview
	menu      components.Menu
	err       error
}

var _ screen.Screen = (*CoursesScreen)(nil)
var _ screen.Resumer = (*CoursesScreen)(nil)

// New creates the course list.
func New(env screen.Env) *CoursesScreen {
	return &CoursesScreen{env: env}
}

func (s *CoursesScreen) Init() tea.Cmd   { return s.load() }
func (s *CoursesScreen) Resume() tea.Cmd { return s.load() }

func (s *CoursesScreen) Title() string { return "Courses" }

func (s *CoursesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
	}
}

func (s *CoursesScreen) load() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		ctx := context.Background()
		var out []*progress.Overview
		for _, c := range env.Progress.Catalog().Courses() {
			ov, err := env.Progress.Overview(ctx, env.StudentID, c.ID)
			if err != nil {
				return loadedMsg{err: err}
			}
			out = append(out, ov)
		}
		return loadedMsg{overviews: out}
	}
}

func (s *CoursesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.err = msg.err
		s.overviews = msg.overviews
		selected := s.menu.Selected
		s.menu = components.NewMenu(s.items())
		s.menu.Select(selected)
		return s, nil
	case tea.KeyMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CoursesScreen) items() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(s.overviews))
	for _, ov := range s.overviews {
		detail := fmt.Sprintf("%d/%d lessons", ov.CompletedCount(), len(ov.Lessons))
		if ov.Progress != nil && ov.Progress.Completed {
			detail = "completed"
		}
		courseID := ov.Course.ID
		env := s.env
		items = append(items, components.MenuItem{
			Label:  ov.Course.Title,
			Detail: detail,
			Action: func() tea.Cmd { return router.Push(course.New(env, courseID)) },
		})
	}
	return items
}

func (s *CoursesScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	if s.err != nil {
		b.WriteString(theme.Incorrect.Render("  Could not load progress: "+s.err.Error()) + "\n")
		return b.String()
	}
	if s.overviews == nil {
		b.WriteString(theme.Hint.Render("  Loading...") + "\n")
		return b.String()
	}
	if len(s.overviews) == 0 {
		b.WriteString(theme.Hint.Render("  The catalog has no courses.") + "\n")
		return b.String()
	}

	b.WriteString(s.menu.View())

	if s.menu.Selected < len(s.overviews) {
		ov := s.overviews[s.menu.Selected]
		card := theme.Title.Render(ov.Course.Title) + "\n"
		if ov.Course.Description != "" {
			card += theme.Subtitle.Render(ov.Course.Description) + "\n"
		}
		card += "\n" + components.NewProgressBar("Progress", ov.CompletedCount(), len(ov.Lessons), min(width-12, 60)).View()
		if ov.Progress != nil && ov.Progress.TestScore != nil {
			card += "\n" + theme.Body.Render(fmt.Sprintf("Latest passing test score: %d%%", *ov.Progress.TestScore))
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().MarginLeft(2).Render(theme.Card.Render(card)))
	}
	return b.String()
}
