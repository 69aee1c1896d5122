package catalog

import (
	"strings"
	"testing"
)

func loadFixture(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load("testdata/catalog.json")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return c
}

func TestLoadFixture(t *testing.T) {
	c := loadFixture(t)

	if got := len(c.Courses()); got != 1 {
		t.Fatalf("courses = %d, want 1", got)
	}

	lessons := c.Lessons("go-basics")
	want := []string{"intro", "tour", "quiz1", "final"}
	if len(lessons) != len(want) {
		t.Fatalf("lessons = %d, want %d", len(lessons), len(want))
	}
	for i, id := range want {
		if lessons[i].ID != id {
			t.Errorf("lessons[%d] = %q, want %q", i, lessons[i].ID, id)
		}
		if lessons[i].CourseID != "go-basics" {
			t.Errorf("lessons[%d].CourseID = %q", i, lessons[i].CourseID)
		}
	}
}

func TestLookups(t *testing.T) {
	c := loadFixture(t)

	l, ok := c.Lesson("go-basics", "quiz1")
	if !ok {
		t.Fatal("quiz1 not found")
	}
	test, ok := c.TestFor(l)
	if !ok {
		t.Fatal("test for quiz1 not found")
	}
	if test.TotalPoints() != 5 {
		t.Errorf("TotalPoints = %d, want 5", test.TotalPoints())
	}
	if test.MaxAttempts == nil || *test.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %v, want 3", test.MaxAttempts)
	}

	intro, _ := c.Lesson("go-basics", "intro")
	if _, ok := c.TestFor(intro); ok {
		t.Error("text lesson should not resolve a test")
	}
	if _, ok := c.Lesson("nope", "intro"); ok {
		t.Error("unknown course should not resolve lessons")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "not json",
			doc:     `{`,
			wantErr: "invalid JSON",
		},
		{
			name:    "schema violation",
			doc:     `{"version":"1.0.0","courses":[{"id":"c","title":"C","lessons":[{"id":"a","title":"A","order":0,"type":"audio"}]}]}`,
			wantErr: "schema validation failed",
		},
		{
			name:    "future major",
			doc:     `{"version":"2.0.0","courses":[]}`,
			wantErr: "unsupported catalog version",
		},
		{
			name:    "test lesson without test id",
			doc:     `{"version":"1.0","courses":[{"id":"c","title":"C","lessons":[{"id":"a","title":"A","order":0,"type":"test"}]}]}`,
			wantErr: "invalid catalog",
		},
		{
			name:    "dangling test id",
			doc:     `{"version":"1.0","courses":[{"id":"c","title":"C","lessons":[{"id":"a","title":"A","order":0,"type":"test","testId":"t"}]}]}`,
			wantErr: "nonexistent test",
		},
		{
			name:    "duplicate order",
			doc:     `{"version":"1.0","courses":[{"id":"c","title":"C","lessons":[{"id":"a","title":"A","order":1,"type":"text"},{"id":"b","title":"B","order":1,"type":"text"}]}]}`,
			wantErr: "share order 1",
		},
		{
			name:    "final lesson not a test",
			doc:     `{"version":"1.0","courses":[{"id":"c","title":"C","lessons":[{"id":"a","title":"A","order":1,"type":"text","isFinalTest":true}]}]}`,
			wantErr: "marked final",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionIssues(t *testing.T) {
	test := Test{
		ID: "t",
		Questions: []Question{
			{ID: "ok", Type: QuestionSingle, CorrectAnswer: "a"},
			{ID: "empty-multi", Type: QuestionMultiple},
			{ID: "manual", Type: QuestionText, TextCheck: TextCheckManual},
			{ID: "auto-empty", Type: QuestionText, CorrectAnswer: "  "},
			{ID: "no-pairs", Type: QuestionMatching},
			{ID: "essay", Type: "essay"},
		},
	}

	issues := QuestionIssues(test)
	if len(issues) != 4 {
		t.Fatalf("issues = %d, want 4: %v", len(issues), issues)
	}
	for _, id := range []string{"empty-multi", "auto-empty", "no-pairs", "essay"} {
		found := false
		for _, msg := range issues {
			if strings.Contains(msg, `"`+id+`"`) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing issue for %q", id)
		}
	}
}

func TestFixtureHasNoIssues(t *testing.T) {
	c := loadFixture(t)
	if issues := c.Issues(); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestMissingPointsAndPassScoreGetDefaults(t *testing.T) {
	doc := `{"version":"1.0","courses":[{"id":"c","title":"C","lessons":[{"id":"q","title":"Q","order":0,"type":"test","testId":"t"}]}],
	"tests":[{"id":"t","title":"T","questions":[
		{"id":"a","type":"single","prompt":"Pick","options":["A","B"],"correctAnswer":"B"},
		{"id":"b","type":"single","prompt":"Pick","options":["A","B"],"correctAnswer":"A","points":4}
	]}]}`
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}

	test, ok := c.Test("t")
	if !ok {
		t.Fatal("test t not found")
	}
	if test.PassScore != DefaultPassScore {
		t.Errorf("PassScore = %d, want %d", test.PassScore, DefaultPassScore)
	}
	if test.Questions[0].Points != DefaultPoints {
		t.Errorf("Points = %d, want %d", test.Questions[0].Points, DefaultPoints)
	}
	if test.Questions[1].Points != 4 {
		t.Errorf("explicit Points = %d, want 4", test.Questions[1].Points)
	}
	if test.TotalPoints() != 5 {
		t.Errorf("TotalPoints = %d, want 5", test.TotalPoints())
	}
}

func TestExplicitPassScoreKept(t *testing.T) {
	c := loadFixture(t)
	l, _ := c.Lesson("go-basics", "quiz1")
	test, _ := c.TestFor(l)
	if test.PassScore != 70 {
		t.Errorf("PassScore = %d, want 70", test.PassScore)
	}
}
