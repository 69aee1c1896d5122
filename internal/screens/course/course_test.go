package course

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/router"
	"github.com/abhisek/courseflow/internal/screen"
	"github.com/abhisek/courseflow/internal/screens/attempt"
	"github.com/abhisek/courseflow/internal/screens/lesson"
	"github.com/abhisek/courseflow/internal/store"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testEnv(t *testing.T) screen.Env {
	t.Helper()
	cat, err := catalog.Load("../../catalog/testdata/catalog.json")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	st, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := progress.NewService(cat, st.ProgressRepo(), st.LedgerRepo(), st.EventRepo(), nil)
	return screen.Env{StudentID: "s1", Progress: svc, Log: logger.Nop()}
}

// loaded returns a course screen with its overview already fetched.
func loaded(t *testing.T, env screen.Env) *CourseScreen {
	t.Helper()
	s := New(env, "go-basics")
	s.Update(s.Init()())
	if s.err != nil {
		t.Fatalf("load: %v", s.err)
	}
	return s
}

func TestCourseScreen_Load(t *testing.T) {
	s := loaded(t, testEnv(t))

	if s.Title() != "Go Basics" {
		t.Errorf("Title = %q, want %q", s.Title(), "Go Basics")
	}
	if len(s.overview.Lessons) != 4 {
		t.Fatalf("lessons = %d, want 4", len(s.overview.Lessons))
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "🔒") {
		t.Error("expected locked lessons to be marked")
	}
}

func TestCourseScreen_LockedLessonShowsReason(t *testing.T) {
	s := loaded(t, testEnv(t))

	s.Update(specialKey(tea.KeyDown))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("a locked lesson must not open")
	}
	if !strings.Contains(s.notice, "previous lesson") {
		t.Errorf("notice = %q, want the previous-lesson reason", s.notice)
	}

	// Moving the cursor clears the notice.
	s.Update(specialKey(tea.KeyUp))
	if s.notice != "" {
		t.Errorf("notice = %q, want cleared", s.notice)
	}
}

func TestCourseScreen_OpenReadingLesson(t *testing.T) {
	s := loaded(t, testEnv(t))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("got %T, want PushScreenMsg", cmd())
	}
	if _, ok := push.Screen.(*lesson.LessonScreen); !ok {
		t.Errorf("pushed %T, want *lesson.LessonScreen", push.Screen)
	}
}

func TestCourseScreen_OpenTestLesson(t *testing.T) {
	env := testEnv(t)
	ctx := context.Background()
	for _, id := range []string{"intro", "tour"} {
		if _, err := env.Progress.CompleteLesson(ctx, "s1", "go-basics", id); err != nil {
			t.Fatalf("complete %s: %v", id, err)
		}
	}
	s := loaded(t, env)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command creating the session")
	}

	msg := cmd()
	if _, ok := msg.(sessionMsg); !ok {
		t.Fatalf("got %T, want sessionMsg", msg)
	}
	_, cmd = s.Update(msg)
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*attempt.AttemptScreen); !ok {
		t.Errorf("pushed %T, want *attempt.AttemptScreen", push.Screen)
	}
}

func TestCourseScreen_ResumeReloads(t *testing.T) {
	env := testEnv(t)
	s := loaded(t, env)

	if _, err := env.Progress.CompleteLesson(context.Background(), "s1", "go-basics", "intro"); err != nil {
		t.Fatal(err)
	}
	s.Update(s.Resume()())

	if got := s.overview.CompletedCount(); got != 1 {
		t.Errorf("completed = %d, want 1", got)
	}
	if s.overview.Lessons[1].Status.Locked {
		t.Error("tour should unlock after intro")
	}
}
