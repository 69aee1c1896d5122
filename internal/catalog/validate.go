package catalog

import (
	"fmt"
	"strings"
)

// checkStructure performs cross-reference checks the field validator cannot
// express. Returns a combined error describing all problems found, or nil.
func checkStructure(doc Document) error {
	var errs []string

	testIDs := make(map[string]bool, len(doc.Tests))
	for _, t := range doc.Tests {
		if testIDs[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate test ID: %q", t.ID))
		}
		testIDs[t.ID] = true

		qIDs := make(map[string]bool, len(t.Questions))
		for _, q := range t.Questions {
			if qIDs[q.ID] {
				errs = append(errs, fmt.Sprintf("test %q has duplicate question ID %q", t.ID, q.ID))
			}
			qIDs[q.ID] = true
		}
	}

	courseIDs := make(map[string]bool, len(doc.Courses))
	lessonIDs := make(map[string]string)
	for _, c := range doc.Courses {
		if courseIDs[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate course ID: %q", c.ID))
		}
		courseIDs[c.ID] = true

		orders := make(map[int]string, len(c.Lessons))
		for _, l := range c.Lessons {
			if owner, ok := lessonIDs[l.ID]; ok {
				errs = append(errs, fmt.Sprintf("lesson ID %q used in both %q and %q", l.ID, owner, c.ID))
			}
			lessonIDs[l.ID] = c.ID

			if other, ok := orders[l.Order]; ok {
				errs = append(errs, fmt.Sprintf("course %q: lessons %q and %q share order %d", c.ID, other, l.ID, l.Order))
			}
			orders[l.Order] = l.ID

			if l.IsTest() && !testIDs[l.TestID] {
				errs = append(errs, fmt.Sprintf("lesson %q references nonexistent test %q", l.ID, l.TestID))
			}
			if l.IsFinalTest && !l.IsTest() {
				errs = append(errs, fmt.Sprintf("lesson %q is marked final but is not a test", l.ID))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// QuestionIssues lists questions whose answer data cannot be graded.
// Such questions are accepted by the loader and always score zero.
func QuestionIssues(t Test) []string {
	var issues []string
	for _, q := range t.Questions {
		if msg := questionIssue(q); msg != "" {
			issues = append(issues, fmt.Sprintf("test %q question %q: %s", t.ID, q.ID, msg))
		}
	}
	return issues
}

func questionIssue(q Question) string {
	switch q.Type {
	case QuestionSingle:
		if q.CorrectAnswer == "" {
			return "single-choice question has no correct answer"
		}
	case QuestionMultiple:
		if len(q.CorrectAnswers) == 0 {
			return "multiple-choice question has no correct answers"
		}
	case QuestionText:
		if !q.IsManual() && strings.TrimSpace(q.CorrectAnswer) == "" {
			return "automatic text question has no correct answer"
		}
	case QuestionMatching:
		if len(q.Pairs) == 0 {
			return "matching question has no pairs"
		}
	default:
		return fmt.Sprintf("unknown question type %q", q.Type)
	}
	return ""
}

// Issues returns QuestionIssues for every test in the catalog.
func (c *Catalog) Issues() []string {
	var all []string
	for _, course := range c.courses {
		for _, l := range course.Lessons {
			if t, ok := c.TestFor(l); ok {
				all = append(all, QuestionIssues(t)...)
			}
		}
	}
	return all
}
