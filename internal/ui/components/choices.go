package components

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/courseflow/internal/ui/theme"
)

// ChoiceList renders a question's options with a cursor. Checked marks the
// options the student has picked; the owner decides what Enter means.
type ChoiceList struct {
	Options []string
	Cursor  int
	Checked []string
	// Multi renders checkboxes instead of radio buttons.
	Multi bool
}

// NewChoiceList creates a list positioned on the first option.
func NewChoiceList(options []string, checked []string, multi bool) ChoiceList {
	return ChoiceList{Options: options, Checked: checked, Multi: multi}
}

// Update moves the cursor. Number keys jump to an option.
func (c ChoiceList) Update(msg tea.Msg) ChoiceList {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c
	}
	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Cursor = i
			}
		}
	}
	return c
}

// Current returns the option under the cursor.
func (c ChoiceList) Current() string {
	if c.Cursor < 0 || c.Cursor >= len(c.Options) {
		return ""
	}
	return c.Options[c.Cursor]
}

// View renders the options.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		mark := "( )"
		if c.Multi {
			mark = "[ ]"
		}
		if slices.Contains(c.Checked, opt) {
			mark = "(•)"
			if c.Multi {
				mark = "[x]"
			}
		}
		prefix := "  "
		style := theme.Unselected
		if i == c.Cursor {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%d. %s %s", prefix, i+1, mark, opt)))
		b.WriteString("\n")
	}
	return b.String()
}
