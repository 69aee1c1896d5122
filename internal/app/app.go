// Package app is the root Bubble Tea model of the course player. It owns
// the window size, the keys that work on every screen and the frame drawn
// around the active screen.
package app

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/router"
	"github.com/abhisek/courseflow/internal/screen"
	"github.com/abhisek/courseflow/internal/screens/courses"
	"github.com/abhisek/courseflow/internal/ui/layout"
)

type AppModel struct {
	env    screen.Env
	router *router.Router
	width  int
	height int
}

func newAppModel(env screen.Env) AppModel {
	return AppModel{env: env, router: router.New(courses.New(env))}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.globalKey(key.String()); handled {
			return m, cmd
		}
	}
	return m, m.router.Update(msg)
}

// globalKey handles Ctrl+C and Esc. Esc goes back one screen unless the
// active screen captures it.
func (m AppModel) globalKey(key string) (tea.Cmd, bool) {
	switch key {
	case "ctrl+c":
		return tea.Quit, true
	case "esc":
		if c, ok := m.router.Active().(screen.EscapeCapturer); ok && c.CapturesEscape() {
			return nil, false
		}
		if m.router.Depth() > 1 {
			return router.Pop, true
		}
		return nil, true
	}
	return nil, false
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	switch {
	case m.width == 0 || m.height == 0:
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	default:
		v.SetContent(m.frame())
	}
	return v
}

func (m AppModel) frame() string {
	header := layout.RenderHeader(breadcrumb(m.router.Trail()), m.env.StudentID, m.width)
	footer := layout.RenderFooter(m.footerHints(m.router.Active()), m.width)
	room := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return layout.RenderFrame(header, m.router.View(m.width, room), footer, m.width, m.height)
}

// breadcrumb joins the last two screen titles.
func breadcrumb(trail []string) string {
	if len(trail) > 2 {
		trail = trail[len(trail)-2:]
	}
	return strings.Join(trail, " › ")
}

var quitHint = layout.KeyHint{Key: "Ctrl+C", Description: "Quit"}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return append(slices.Clone(p.KeyHints()), quitHint)
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}, quitHint}
	}
	return []layout.KeyHint{{Key: "↑↓", Description: "Move"}, {Key: "Enter", Description: "Open"}, quitHint}
}

// Run starts the player and blocks until the student quits.
func Run(env screen.Env) error {
	if env.Log == nil {
		env.Log = logger.Nop()
	}
	if _, err := tea.NewProgram(newAppModel(env)).Run(); err != nil {
		return fmt.Errorf("run player: %w", err)
	}
	return nil
}
