package assessment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/logger"
)

func intPtr(n int) *int { return &n }

func twoQuestionTest() catalog.Test {
	return catalog.Test{
		ID:        "t1",
		Title:     "Quiz",
		TimeLimit: 1,
		PassScore: 60,
		Questions: []catalog.Question{
			{ID: "q1", Type: catalog.QuestionSingle, Prompt: "Pick B", Points: 1, Options: []string{"A", "B"}, CorrectAnswer: "B"},
			{ID: "q2", Type: catalog.QuestionMultiple, Prompt: "Pick A and C", Points: 2, Options: []string{"A", "B", "C"}, CorrectAnswers: []string{"A", "C"}},
		},
	}
}

func startedSession(t *testing.T, test catalog.Test, ledger Ledger) *Session {
	t.Helper()
	s := New(test, ledger, Config{StudentID: "s1", LessonID: "l1"})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestFullMarks(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{})

	for _, step := range []struct{ q, v string }{{"q1", "B"}, {"q2", "A"}, {"q2", "C"}} {
		if err := s.RecordAnswer(step.q, step.v); err != nil {
			t.Fatalf("record %s=%s: %v", step.q, step.v, err)
		}
	}

	res, first := s.Submit()
	if !first {
		t.Fatal("first submit should report first=true")
	}
	if res.Earned != 3 || res.Total != 3 || res.Score != 100 {
		t.Errorf("earned/total/score = %d/%d/%d, want 3/3/100", res.Earned, res.Total, res.Score)
	}
	if !res.Passed {
		t.Error("expected pass")
	}
	if res.Reason != EndSubmit {
		t.Errorf("Reason = %q, want submit", res.Reason)
	}
}

func TestMultipleToggle(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{})

	for _, v := range []string{"A", "B", "C", "B"} {
		if err := s.RecordAnswer("q2", v); err != nil {
			t.Fatal(err)
		}
	}
	got := s.Snapshot().Answers["q2"].Set
	want := []string{"A", "C"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("set = %v, want %v", got, want)
	}
}

func TestPassThreshold(t *testing.T) {
	test := catalog.Test{
		ID:        "t",
		PassScore: 60,
		Questions: []catalog.Question{
			{ID: "a", Type: catalog.QuestionSingle, Points: 1, CorrectAnswer: "x"},
			{ID: "b", Type: catalog.QuestionSingle, Points: 1, CorrectAnswer: "x"},
			{ID: "c", Type: catalog.QuestionSingle, Points: 1, CorrectAnswer: "x"},
			{ID: "d", Type: catalog.QuestionSingle, Points: 1, CorrectAnswer: "x"},
			{ID: "e", Type: catalog.QuestionSingle, Points: 1, CorrectAnswer: "x"},
			{ID: "f", Type: catalog.QuestionSingle, Points: 5, CorrectAnswer: "x"},
		},
	}

	tests := []struct {
		name    string
		correct []string
		score   int
		passed  bool
	}{
		{"fifty", []string{"f"}, 50, false},
		{"sixty", []string{"f", "a"}, 60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startedSession(t, test, Ledger{})
			for _, id := range tt.correct {
				if err := s.RecordAnswer(id, "x"); err != nil {
					t.Fatal(err)
				}
			}
			res, _ := s.Submit()
			if res.Score != tt.score || res.Passed != tt.passed {
				t.Errorf("score=%d passed=%v, want %d %v", res.Score, res.Passed, tt.score, tt.passed)
			}
		})
	}
}

func TestSubmitIsOneShot(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{AttemptsUsed: 1, MaxAttempts: intPtr(3)})
	_ = s.RecordAnswer("q1", "B")

	first, ok := s.Submit()
	if !ok {
		t.Fatal("expected first submit")
	}
	second, ok := s.Submit()
	if ok {
		t.Error("second submit should not report first")
	}
	if second.Score != first.Score || second.Earned != first.Earned {
		t.Errorf("second result changed: %+v vs %+v", second, first)
	}
	if got := s.Ledger().AttemptsUsed; got != 2 {
		t.Errorf("AttemptsUsed = %d, want 2", got)
	}
	if _, fired := s.Tick(); fired {
		t.Error("tick after submit must be a no-op")
	}
}

func TestConcurrentSubmitAndTimeout(t *testing.T) {
	test := twoQuestionTest()
	s := startedSession(t, test, Ledger{})
	for s.Remaining() > 1 {
		s.Tick()
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		firsts int
	)
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, first := s.Submit(); first {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			if _, fired := s.Tick(); fired {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firsts != 1 {
		t.Errorf("transitions = %d, want exactly 1", firsts)
	}
	if got := s.Ledger().AttemptsUsed; got != 1 {
		t.Errorf("AttemptsUsed = %d, want 1", got)
	}
}

func TestCanStart(t *testing.T) {
	tests := []struct {
		name   string
		ledger Ledger
		want   bool
	}{
		{"exhausted", Ledger{AttemptsUsed: 1, MaxAttempts: intPtr(1)}, false},
		{"one left", Ledger{AttemptsUsed: 1, MaxAttempts: intPtr(2)}, true},
		{"unlimited nil", Ledger{AttemptsUsed: 99}, true},
		{"unlimited zero", Ledger{AttemptsUsed: 99, MaxAttempts: intPtr(0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanStart(tt.ledger); got != tt.want {
				t.Errorf("CanStart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartRefusedWhenExhausted(t *testing.T) {
	s := New(twoQuestionTest(), Ledger{AttemptsUsed: 1, MaxAttempts: intPtr(1)}, Config{})
	if s.CanStart() {
		t.Fatal("CanStart should be false")
	}
	if err := s.Start(); !errors.Is(err, ErrNoAttemptsRemaining) {
		t.Fatalf("Start error = %v, want ErrNoAttemptsRemaining", err)
	}
	if s.Phase() != PhaseNotStarted {
		t.Errorf("phase = %v, want not_started", s.Phase())
	}
}

func TestStartDoesNotChargeLedger(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{AttemptsUsed: 2})
	if got := s.Ledger().AttemptsUsed; got != 2 {
		t.Errorf("AttemptsUsed after start = %d, want 2", got)
	}
	if got := s.Remaining(); got != 60 {
		t.Errorf("Remaining = %d, want 60", got)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestTimeoutScoresUnanswered(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{})

	var (
		res   Result
		fired bool
		ticks int
	)
	for !fired {
		res, fired = s.Tick()
		ticks++
		if ticks > 60 {
			t.Fatal("timer did not expire after 60 ticks")
		}
	}

	if ticks != 60 {
		t.Errorf("ticks = %d, want 60", ticks)
	}
	if s.Phase() != PhaseSubmitted {
		t.Errorf("phase = %v, want submitted", s.Phase())
	}
	if res.Reason != EndTimeout {
		t.Errorf("Reason = %q, want timeout", res.Reason)
	}
	if res.Earned != 0 || res.Score != 0 {
		t.Errorf("earned=%d score=%d, want 0", res.Earned, res.Score)
	}
	for _, q := range res.Questions {
		if q.Answered || q.Earned != 0 {
			t.Errorf("question %s: %+v", q.QuestionID, q)
		}
	}
}

func TestUntimedNeverExpires(t *testing.T) {
	test := twoQuestionTest()
	test.TimeLimit = 0
	s := startedSession(t, test, Ledger{})
	for range 1000 {
		if _, fired := s.Tick(); fired {
			t.Fatal("untimed test expired")
		}
	}
	if s.Phase() != PhaseInProgress {
		t.Errorf("phase = %v", s.Phase())
	}
}

func TestOperationsAfterSubmitAreRejected(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	s := New(twoQuestionTest(), Ledger{}, Config{Logger: log})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	_ = s.RecordAnswer("q1", "A")
	s.Submit()

	if err := s.RecordAnswer("q1", "B"); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("RecordAnswer = %v, want ErrNotInProgress", err)
	}
	if err := s.Next(); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Next = %v, want ErrNotInProgress", err)
	}
	if got := s.Snapshot().Answers["q1"].Value; got != "A" {
		t.Errorf("answer changed to %q", got)
	}
	if logs.FilterMessage("ignored operation in wrong phase").Len() != 2 {
		t.Errorf("warnings = %d, want 2", logs.Len())
	}
}

func TestRecordAnswerUnknownQuestion(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{})
	if err := s.RecordAnswer("nope", "x"); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("err = %v, want ErrUnknownQuestion", err)
	}
}

func TestNavigationClamps(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{})

	steps := []struct {
		op   func() error
		want int
	}{
		{s.Prev, 0},
		{s.Next, 1},
		{s.Next, 1},
		{func() error { return s.GoTo(-5) }, 0},
		{func() error { return s.GoTo(99) }, 1},
	}
	for i, st := range steps {
		if err := st.op(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got := s.Snapshot().Index; got != st.want {
			t.Errorf("step %d: index = %d, want %d", i, got, st.want)
		}
	}
}

func TestAbandonKeepsLedger(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{AttemptsUsed: 1})
	s.Abandon()
	if s.Phase() != PhaseNotStarted {
		t.Errorf("phase = %v", s.Phase())
	}
	if s.Ledger().AttemptsUsed != 1 {
		t.Error("abandon charged the ledger")
	}
}

func TestManualQuestionsPendPass(t *testing.T) {
	test := catalog.Test{
		ID:        "t",
		PassScore: 0,
		Questions: []catalog.Question{
			{ID: "a", Type: catalog.QuestionSingle, Points: 1, CorrectAnswer: "x"},
			{ID: "essay", Type: catalog.QuestionText, Points: 1, TextCheck: catalog.TextCheckManual},
		},
	}
	s := startedSession(t, test, Ledger{})
	_ = s.RecordAnswer("a", "x")
	_ = s.RecordAnswer("essay", "goroutines are cheap threads")

	res, _ := s.Submit()
	if !res.PendingManual || res.Passed {
		t.Errorf("pending=%v passed=%v, want pending and not passed", res.PendingManual, res.Passed)
	}
	if res.Earned != 1 || res.Total != 2 || res.Score != 50 {
		t.Errorf("earned/total/score = %d/%d/%d", res.Earned, res.Total, res.Score)
	}
}

func TestZeroPointTest(t *testing.T) {
	test := catalog.Test{ID: "t", PassScore: 0, Questions: []catalog.Question{{ID: "a", Type: catalog.QuestionSingle, CorrectAnswer: "x"}}}
	s := startedSession(t, test, Ledger{})
	res, _ := s.Submit()
	if res.Score != 0 || !res.Passed {
		t.Errorf("score=%d passed=%v, want 0 true", res.Score, res.Passed)
	}
}

func TestRunTimerExpires(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{})

	done := make(chan Result, 1)
	s.RunTimer(context.Background(), time.Millisecond, func(r Result) { done <- r })

	select {
	case r := <-done:
		if r.Reason != EndTimeout {
			t.Errorf("Reason = %q", r.Reason)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timer never expired")
	}
}

func TestRunTimerStopsOnSubmit(t *testing.T) {
	s := startedSession(t, twoQuestionTest(), Ledger{})

	expired := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.RunTimer(ctx, 5*time.Millisecond, func(Result) { expired <- struct{}{} })

	res, first := s.Submit()
	if !first || res.Reason != EndSubmit {
		t.Fatalf("submit: first=%v reason=%q", first, res.Reason)
	}

	select {
	case <-expired:
		t.Fatal("timer fired after submit")
	case <-time.After(50 * time.Millisecond):
	}
}
