// Package theme holds the colors and text styles shared by every screen.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#7C3AED") // violet
	Secondary = lipgloss.Color("#0EA5E9") // sky
	Accent    = lipgloss.Color("#EAB308")
	Success   = lipgloss.Color("#10B981")
	Error     = lipgloss.Color("#EF4444")
	Text      = lipgloss.Color("#F1F5F9")
	TextDim   = lipgloss.Color("#8B95A7")
	BgCard    = lipgloss.Color("#1F2433")
	Border    = lipgloss.Color("#3B4256")
)

func fg(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	Title    = fg(Primary).Bold(true)
	Subtitle = fg(TextDim)
	Body     = fg(Text)
	Hint     = fg(TextDim).Italic(true)
	Warning  = fg(Accent).Bold(true)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Locked     = fg(TextDim).Faint(true)
	Correct    = fg(Success).Bold(true)
	Incorrect  = fg(Error).Bold(true)

	// Card frames lesson bodies and dialogs.
	Card = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(1, 2)
)
