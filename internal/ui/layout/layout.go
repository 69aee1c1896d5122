// Package layout frames a screen between a header and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/courseflow/internal/ui/theme"
)

// Smallest terminal the frame is drawn in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	text := fmt.Sprintf("This window is %d×%d.\nCourseflow needs at least %d×%d.", width, height, MinWidth, MinHeight)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Body.Render(text))
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader puts the app name on the left, title in the middle and
// right (the student ID) against the right edge.
func RenderHeader(title, right string, width int) string {
	brand := theme.Title.Render(" Courseflow")
	who := lipgloss.NewStyle().Foreground(theme.Accent).Render(right + " ")
	room := max(width-4-lipgloss.Width(brand)-lipgloss.Width(who), 0) // border
	middle := lipgloss.PlaceHorizontal(room, lipgloss.Center, theme.Body.Render(title))
	return bar.Width(width).Render(brand + middle + who)
}

func RenderFooter(hints []KeyHint, width int) string {
	key := theme.Body.Bold(true)
	var b strings.Builder
	b.WriteString(" ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString("  ·  ")
		}
		b.WriteString(key.Render(h.Key) + " " + theme.Subtitle.Render(h.Description))
	}
	return bar.Width(width).Render(b.String())
}

// RenderFrame stacks header, content and footer, padding content to fill
// the height left between them.
func RenderFrame(header, content, footer string, width, height int) string {
	room := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(room).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// FormatClock renders seconds as m:ss.
func FormatClock(secs int) string {
	secs = max(secs, 0)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
