// Package attempt runs one test attempt: the attempts confirmation, the
// question view with its countdown, and submission.
package attempt

import (
	"context"
	"errors"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/courseflow/internal/assessment"
	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/router"
	"github.com/abhisek/courseflow/internal/screen"
	"github.com/abhisek/courseflow/internal/screens/results"
	"github.com/abhisek/courseflow/internal/ui/components"
	"github.com/abhisek/courseflow/internal/ui/layout"
)

type mode int

const (
	modeConfirm mode = iota
	modeAnswering
	modeSubmitConfirm
	modeAbandonConfirm
	modeFinishing
)

// tickMsg drives the countdown. It carries the session id so ticks from an
// abandoned screen are ignored.
type tickMsg struct{ sessionID string }

type finishedMsg struct {
	result  assessment.Result
	outcome *progress.Outcome
	err     error
}

// AttemptScreen hosts a test session.
type AttemptScreen struct {
	env    screen.Env
	lesson catalog.Lesson
	sess   *assessment.Session
	mode   mode
	notice string

	// Per-question widgets, rebuilt by loadQuestion.
	choices  components.ChoiceList
	input    components.AnswerInput
	rights   []string
	order    []string
	matchRow int
}

var _ screen.Screen = (*AttemptScreen)(nil)
var _ screen.KeyHintProvider = (*AttemptScreen)(nil)
var _ screen.EscapeCapturer = (*AttemptScreen)(nil)

// New creates the screen for a session that has not been started.
func New(env screen.Env, l catalog.Lesson, sess *assessment.Session) *AttemptScreen {
	return &AttemptScreen{env: env, lesson: l, sess: sess}
}

func (s *AttemptScreen) Init() tea.Cmd { return nil }

func (s *AttemptScreen) Title() string { return s.sess.Test().Title }

// CapturesEscape keeps Esc from popping the screen while an attempt is
// running.
func (s *AttemptScreen) CapturesEscape() bool { return s.mode != modeConfirm }

func (s *AttemptScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeConfirm:
		if !s.sess.CanStart() {
			return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case modeSubmitConfirm, modeAbandonConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Yes"},
			{Key: "N", Description: "No"},
		}
	case modeFinishing:
		return nil
	}

	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next"},
		{Key: "Shift+Tab", Description: "Prev"},
	}
	switch s.sess.Snapshot().Question.Type {
	case catalog.QuestionSingle:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Choose"})
	case catalog.QuestionMultiple:
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Toggle"})
	case catalog.QuestionMatching:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Match"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+S", Description: "Submit"},
		layout.KeyHint{Key: "Esc", Description: "Leave"},
	)
}

func (s *AttemptScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return s, s.handleTick(msg)
	case finishedMsg:
		return s, router.Replace(results.New(s.env, s.lesson, s.sess, msg.result, msg.outcome, msg.err))
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	if s.mode == modeAnswering && s.currentType() == catalog.QuestionText {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *AttemptScreen) handleTick(msg tickMsg) tea.Cmd {
	if msg.sessionID != s.sess.ID() || s.sess.Phase() != assessment.PhaseInProgress {
		return nil
	}
	if s.currentType() == catalog.QuestionText {
		s.saveText()
	}
	if res, fired := s.sess.Tick(); fired {
		return s.finish(res)
	}
	return s.tick()
}

func (s *AttemptScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	switch s.mode {
	case modeConfirm:
		switch key {
		case "enter", "y", "Y":
			return s.start()
		case "n", "N":
			return router.Pop
		}
		return nil

	case modeSubmitConfirm:
		switch key {
		case "y", "Y", "enter":
			res, first := s.sess.Submit()
			if !first {
				// The countdown won; its result is already being saved.
				return nil
			}
			return s.finish(res)
		case "n", "N", "esc":
			s.mode = modeAnswering
		}
		return nil

	case modeAbandonConfirm:
		switch key {
		case "y", "Y":
			s.sess.Abandon()
			return router.Pop
		case "n", "N", "esc":
			s.mode = modeAnswering
		}
		return nil

	case modeFinishing:
		return nil
	}

	switch key {
	case "esc":
		s.mode = modeAbandonConfirm
		return nil
	case "ctrl+s":
		s.saveText()
		s.mode = modeSubmitConfirm
		return nil
	case "tab", "ctrl+n":
		return s.navigate(s.sess.Next)
	case "shift+tab", "ctrl+p":
		return s.navigate(s.sess.Prev)
	}
	return s.answerKey(msg)
}

func (s *AttemptScreen) start() tea.Cmd {
	if err := s.sess.Start(); err != nil {
		if errors.Is(err, assessment.ErrNoAttemptsRemaining) {
			s.notice = "No attempts left for this test."
		} else {
			s.notice = err.Error()
		}
		return nil
	}
	s.notice = ""
	s.mode = modeAnswering
	return tea.Batch(s.loadQuestion(), s.tick())
}

func (s *AttemptScreen) tick() tea.Cmd {
	if s.sess.Test().TimeLimit <= 0 {
		return nil
	}
	id := s.sess.ID()
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{sessionID: id} })
}

// finish persists the attempt in the background.
func (s *AttemptScreen) finish(res assessment.Result) tea.Cmd {
	s.mode = modeFinishing
	env, sess := s.env, s.sess
	return func() tea.Msg {
		out, err := env.Progress.FinishTest(context.Background(), sess, res)
		return finishedMsg{result: res, outcome: out, err: err}
	}
}

func (s *AttemptScreen) navigate(move func() error) tea.Cmd {
	s.saveText()
	if err := move(); err != nil {
		return nil
	}
	return s.loadQuestion()
}

func (s *AttemptScreen) currentType() catalog.QuestionType {
	return s.sess.Snapshot().Question.Type
}

// loadQuestion rebuilds the widgets for the current question from the
// recorded answer.
func (s *AttemptScreen) loadQuestion() tea.Cmd {
	view := s.sess.Snapshot()
	q := view.Question
	a := view.Answers[q.ID]

	switch q.Type {
	case catalog.QuestionSingle:
		var checked []string
		if a.Value != "" {
			checked = []string{a.Value}
		}
		s.choices = components.NewChoiceList(q.Options, checked, false)
	case catalog.QuestionMultiple:
		s.choices = components.NewChoiceList(q.Options, a.Set, true)
	case catalog.QuestionText:
		s.input = components.NewAnswerInput(a.Value, 500)
		return s.input.Init()
	case catalog.QuestionMatching:
		s.rights = matchOptions(q)
		s.order = make([]string, len(q.Pairs))
		copy(s.order, a.Order)
		s.matchRow = 0
	}
	return nil
}

func (s *AttemptScreen) saveText() {
	view := s.sess.Snapshot()
	if view.Phase != assessment.PhaseInProgress || view.Question.Type != catalog.QuestionText {
		return
	}
	if view.Answers[view.Question.ID].Value == s.input.Value() {
		return
	}
	s.record(s.sess.RecordAnswer(view.Question.ID, s.input.Value()))
}

// record surfaces a refused answer in the notice line.
func (s *AttemptScreen) record(err error) bool {
	if err != nil {
		s.notice = "Answer not saved: " + err.Error()
		return false
	}
	s.notice = ""
	return true
}

func (s *AttemptScreen) answerKey(msg tea.KeyMsg) tea.Cmd {
	q := s.sess.Snapshot().Question
	key := msg.String()

	switch q.Type {
	case catalog.QuestionSingle:
		if key == "enter" || key == "space" {
			if v := s.choices.Current(); v != "" {
				if s.record(s.sess.RecordAnswer(q.ID, v)) {
					s.choices.Checked = []string{v}
				}
			}
			return nil
		}
		s.choices = s.choices.Update(msg)

	case catalog.QuestionMultiple:
		if key == "enter" || key == "space" {
			if v := s.choices.Current(); v != "" {
				if s.record(s.sess.RecordAnswer(q.ID, v)) {
					s.choices.Checked = s.sess.Snapshot().Answers[q.ID].Set
				}
			}
			return nil
		}
		s.choices = s.choices.Update(msg)

	case catalog.QuestionText:
		if key == "enter" {
			return s.navigate(s.sess.Next)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd

	case catalog.QuestionMatching:
		switch key {
		case "up", "k":
			s.matchRow = max(s.matchRow-1, 0)
		case "down", "j":
			s.matchRow = min(s.matchRow+1, len(s.order)-1)
		case "left", "h":
			s.cycleMatch(q.ID, -1)
		case "right", "l", "space", "enter":
			s.cycleMatch(q.ID, 1)
		}
	}
	return nil
}

// cycleMatch moves the current row's right-hand choice through the options.
func (s *AttemptScreen) cycleMatch(questionID string, delta int) {
	if len(s.rights) == 0 || s.matchRow >= len(s.order) {
		return
	}
	i := slices.Index(s.rights, s.order[s.matchRow])
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = len(s.rights) - 1
	default:
		i = (i + delta + len(s.rights)) % len(s.rights)
	}
	s.order[s.matchRow] = s.rights[i]
	s.record(s.sess.SetOrder(questionID, s.order))
}

// matchOptions returns the distinct right-hand sides in sorted order, so
// the display does not give away the key.
func matchOptions(q catalog.Question) []string {
	out := make([]string, 0, len(q.Pairs))
	for _, p := range q.Pairs {
		out = append(out, p.Right)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
