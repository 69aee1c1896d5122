package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/courseflow/internal/assessment"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

type opened string

func TestMenu(t *testing.T) {
	open := func(name string) func() tea.Cmd {
		return func() tea.Cmd { return func() tea.Msg { return opened(name) } }
	}
	m := NewMenu([]MenuItem{
		{Label: "Locked", Disabled: true, Action: open("locked")},
		{Label: "Intro", Action: open("intro")},
		{Label: "Quiz", Action: open("quiz")},
	})
	if m.Selected != 1 {
		t.Fatalf("cursor = %d, want first enabled item", m.Selected)
	}

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	if m.Selected != 2 {
		t.Errorf("cursor = %d, want clamped at 2", m.Selected)
	}
	_, cmd := m.Update(key("enter"))
	if cmd == nil || cmd() != opened("quiz") {
		t.Error("enter should run the selected action")
	}

	m, _ = m.Update(key("g"))
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("enter on a disabled item should do nothing")
	}

	m.Select(9)
	if m.Selected != 0 {
		t.Errorf("out of range Select moved the cursor to %d", m.Selected)
	}
	if !strings.Contains(m.View(), "▸ ") {
		t.Error("view should mark the cursor")
	}
}

func TestChoiceList(t *testing.T) {
	c := NewChoiceList([]string{"a", "b", "c"}, []string{"b"}, true)
	c = c.Update(key("3"))
	if c.Current() != "c" {
		t.Errorf("current = %q, want c", c.Current())
	}
	c = c.Update(key("up"))
	if c.Current() != "b" {
		t.Errorf("current = %q, want b", c.Current())
	}
	if !strings.Contains(c.View(), "[x] b") {
		t.Errorf("checked option not marked:\n%s", c.View())
	}
}

func TestLedgerSummary(t *testing.T) {
	three := 3
	tests := []struct {
		ledger assessment.Ledger
		want   string
	}{
		{assessment.Ledger{}, "attempts 0"},
		{assessment.Ledger{MaxAttempts: &three}, "attempts 0/3"},
		{assessment.Ledger{AttemptsUsed: 2, BestScore: 60, MaxAttempts: &three}, "attempts 2/3 · best 60%"},
	}
	for _, tt := range tests {
		if got := LedgerSummary(tt.ledger); got != tt.want {
			t.Errorf("LedgerSummary(%+v) = %q, want %q", tt.ledger, got, tt.want)
		}
	}
}

func TestProgressBarFraction(t *testing.T) {
	if f := NewProgressBar("", 3, 0, 40).Fraction(); f != 0 {
		t.Errorf("fraction with no lessons = %v", f)
	}
	if f := NewProgressBar("", 5, 4, 40).Fraction(); f != 1 {
		t.Errorf("fraction is not clamped: %v", f)
	}
}
