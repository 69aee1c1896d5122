package components

import (
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/courseflow/internal/ui/theme"
)

// MenuItem is one row of a Menu.
type MenuItem struct {
	Label string
	// Detail is shown dimmed after the label.
	Detail string
	Action func() tea.Cmd
	// Disabled rows can hold the cursor but Enter does nothing on them.
	Disabled bool
}

// Menu is a vertical list with a cursor.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu puts the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	if i := slices.IndexFunc(items, func(it MenuItem) bool { return !it.Disabled }); i > 0 {
		m.Selected = i
	}
	return m
}

// Select moves the cursor to i. Out of range values are ignored.
func (m *Menu) Select(i int) {
	if i >= 0 && i < len(m.Items) {
		m.Selected = i
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "up", "k":
		m.Select(m.Selected - 1)
	case "down", "j":
		m.Select(m.Selected + 1)
	case "home", "g":
		m.Select(0)
	case "end", "G":
		m.Select(len(m.Items) - 1)
	case "enter":
		if m.Selected < len(m.Items) {
			if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
				return m, it.Action()
			}
		}
	}
	return m, nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, it := range m.Items {
		cursor, style := "    ", theme.Unselected
		if it.Disabled {
			style = theme.Locked
		}
		if i == m.Selected {
			cursor, style = "  ▸ ", theme.Selected
		}
		b.WriteString(cursor + style.Render(it.Label))
		if it.Detail != "" {
			b.WriteString("  " + theme.Subtitle.Render(it.Detail))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
