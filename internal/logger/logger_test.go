package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	tests := []struct {
		name string
		in   []any
		want []any
	}{
		{"empty", nil, nil},
		{"plain", []any{"lesson", "l1", "score", 80}, []any{"lesson", "l1", "score", 80}},
		{"api key", []any{"api_key", "sk-123"}, []any{"api_key", redacted}},
		{"mixed case", []any{"X-Auth-Token", "abc"}, []any{"X-Auth-Token", redacted}},
		{"odd tail", []any{"student", "s1", "dangling"}, []any{"student", "s1", "dangling"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeKVs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWithRedactsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("password", "hunter2").Warn("inconsistent state", "student", "s1")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["password"] != redacted {
		t.Errorf("password = %v, want redacted", ctx["password"])
	}
	if ctx["student"] != "s1" {
		t.Errorf("student = %v, want s1", ctx["student"])
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("ignored", "k", "v")
	l.Sync()
}
