package lesson

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/screen"
	"github.com/abhisek/courseflow/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func testEnv(t *testing.T) (screen.Env, *store.Store) {
	t.Helper()
	cat, err := catalog.Load("../../catalog/testdata/catalog.json")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := progress.NewService(cat, st.ProgressRepo(), st.LedgerRepo(), st.EventRepo(), nil)
	return screen.Env{StudentID: "s1", Progress: svc, Log: logger.Nop()}, st
}

func lessonByID(t *testing.T, env screen.Env, id string) catalog.Lesson {
	t.Helper()
	l, ok := env.Progress.Catalog().Lesson("go-basics", id)
	if !ok {
		t.Fatalf("lesson %s not in fixture", id)
	}
	return l
}

func TestLessonScreen_InitRecordsVisit(t *testing.T) {
	env, st := testEnv(t)
	s := New(env, lessonByID(t, env, "intro"))

	if msg := s.Init()(); msg != nil {
		t.Errorf("Init message = %v, want nil", msg)
	}
	p, err := st.ProgressRepo().Get(context.Background(), "s1", "go-basics")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.LastAccessedLesson != "intro" {
		t.Errorf("progress = %+v, want last accessed intro", p)
	}
}

func TestLessonScreen_Complete(t *testing.T) {
	env, _ := testEnv(t)
	s := New(env, lessonByID(t, env, "intro"))

	_, cmd := s.Update(keyPress('c'))
	if cmd == nil {
		t.Fatal("expected a completion command")
	}
	s.Update(cmd())

	if !s.completed {
		t.Fatal("expected the lesson to be completed")
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "Next up: ") {
		t.Error("expected a hint naming the next lesson")
	}

	// Completed lessons ignore further presses.
	if _, cmd := s.Update(keyPress('c')); cmd != nil {
		t.Error("expected no command once completed")
	}
}

func TestLessonScreen_LockedShowsReason(t *testing.T) {
	env, _ := testEnv(t)
	s := New(env, lessonByID(t, env, "tour"))

	_, cmd := s.Update(keyPress('c'))
	s.Update(cmd())

	if s.completed {
		t.Fatal("a locked lesson must not complete")
	}
	if !strings.Contains(s.notice, "previous lesson") {
		t.Errorf("notice = %q, want the previous-lesson reason", s.notice)
	}
}
