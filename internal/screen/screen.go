// Package screen is the contract between the router and the player's
// screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/courseflow/internal/feedback"
	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/ui/layout"
)

// Screen is one page of the player. View draws only the area between the
// header and the footer; Title labels the page in the header.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer reloads state when the screen above it closes.
type Resumer interface {
	Resume() tea.Cmd
}

// EscapeCapturer keeps Esc from closing the screen while it returns true.
type EscapeCapturer interface {
	CapturesEscape() bool
}

// Env carries the services screens use.
type Env struct {
	StudentID string
	Progress  *progress.Service
	Feedback  *feedback.Service // nil when feedback is off
	Log       *logger.Logger
}
