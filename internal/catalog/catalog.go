package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the catalog format major version this build reads.
const SupportedMajor = "v1"

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://courseflow/catalog.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Catalog is a read-only index over courses, lessons and tests.
type Catalog struct {
	courses  []Course
	byCourse map[string]int
	tests    map[string]Test
}

// Load reads and validates the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse validates raw catalog JSON against the document schema, decodes
// it, and builds the index.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := documentSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc)
}

// New validates doc and builds a Catalog from it.
func New(doc Document) (*Catalog, error) {
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if err := checkStructure(doc); err != nil {
		return nil, err
	}

	c := &Catalog{
		byCourse: make(map[string]int, len(doc.Courses)),
		tests:    make(map[string]Test, len(doc.Tests)),
	}
	for _, course := range doc.Courses {
		lessons := slices.Clone(course.Lessons)
		for i := range lessons {
			lessons[i].CourseID = course.ID
		}
		slices.SortFunc(lessons, func(a, b Lesson) int { return a.Order - b.Order })
		course.Lessons = lessons

		c.byCourse[course.ID] = len(c.courses)
		c.courses = append(c.courses, course)
	}
	for _, t := range doc.Tests {
		c.tests[t.ID] = withDefaults(t)
	}
	return c, nil
}

// Unset points and pass marks fall back to these.
const (
	DefaultPoints    = 1
	DefaultPassScore = 70
)

func withDefaults(t Test) Test {
	if t.PassScore == 0 {
		t.PassScore = DefaultPassScore
	}
	t.Questions = slices.Clone(t.Questions)
	for i := range t.Questions {
		if t.Questions[i].Points == 0 {
			t.Questions[i].Points = DefaultPoints
		}
	}
	return t
}

func checkVersion(v string) error {
	sv := "v" + v
	if !semver.IsValid(sv) {
		return fmt.Errorf("invalid catalog version %q", v)
	}
	if semver.Major(sv) != SupportedMajor {
		return fmt.Errorf("unsupported catalog version %q (want %s.x)", v, SupportedMajor)
	}
	return nil
}

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal(schemaJSON, &parsed); err != nil {
			compileErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		comp := jsonschema.NewCompiler()
		if err := comp.AddResource(schemaURL, parsed); err != nil {
			compileErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiled, compileErr = comp.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Courses returns all courses in file order.
func (c *Catalog) Courses() []Course {
	return c.courses
}

// Course looks up a course by ID.
func (c *Catalog) Course(id string) (Course, bool) {
	i, ok := c.byCourse[id]
	if !ok {
		return Course{}, false
	}
	return c.courses[i], true
}

// Lessons returns the lessons of a course sorted by order.
func (c *Catalog) Lessons(courseID string) []Lesson {
	course, ok := c.Course(courseID)
	if !ok {
		return nil
	}
	return course.Lessons
}

// Lesson looks up a lesson within a course.
func (c *Catalog) Lesson(courseID, lessonID string) (Lesson, bool) {
	for _, l := range c.Lessons(courseID) {
		if l.ID == lessonID {
			return l, true
		}
	}
	return Lesson{}, false
}

// Test looks up a test by ID.
func (c *Catalog) Test(id string) (Test, bool) {
	t, ok := c.tests[id]
	return t, ok
}

// TestFor returns the test hosted by a test lesson.
func (c *Catalog) TestFor(l Lesson) (Test, bool) {
	if !l.IsTest() {
		return Test{}, false
	}
	return c.Test(l.TestID)
}

// LessonByID finds a lesson in any course. Lesson IDs are unique across
// the catalog.
func (c *Catalog) LessonByID(lessonID string) (Lesson, bool) {
	for _, course := range c.courses {
		for _, l := range course.Lessons {
			if l.ID == lessonID {
				return l, true
			}
		}
	}
	return Lesson{}, false
}
