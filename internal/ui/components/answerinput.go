package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// AnswerInput is the single-line box for free-text answers.
type AnswerInput struct {
	textinput.Model
}

// NewAnswerInput returns a focused input prefilled with a saved answer.
// limit caps the answer length in runes; zero means no cap.
func NewAnswerInput(saved string, limit int) AnswerInput {
	m := textinput.New()
	m.Prompt = "› "
	m.Placeholder = "Type your answer..."
	m.CharLimit = limit
	m.SetValue(saved)
	m.Focus()
	return AnswerInput{Model: m}
}

func (a AnswerInput) Init() tea.Cmd { return a.Focus() }

func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}
