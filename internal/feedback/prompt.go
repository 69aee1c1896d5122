package feedback

import (
	"fmt"
	"strings"

	"github.com/abhisek/courseflow/internal/assessment"
	"github.com/abhisek/courseflow/internal/catalog"
)

const systemPrompt = `You are a patient course instructor reviewing a student's test attempt. For each missed question, explain briefly why the correct answer is right. Do not reveal answers to questions that are not listed. Keep the tone encouraging.`

func buildUserMessage(test catalog.Test, res assessment.Result, answers map[string]assessment.Answer, missed []catalog.Question) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Test: %s\n", test.Title)
	fmt.Fprintf(&b, "Score: %d%% (pass mark %d%%)\n\n", res.Score, res.PassScore)
	b.WriteString("Missed questions:\n")

	for _, q := range missed {
		fmt.Fprintf(&b, "\n[%s] (%s) %s\n", q.ID, q.Type, q.Prompt)
		if len(q.Options) > 0 {
			fmt.Fprintf(&b, "Options: %s\n", strings.Join(q.Options, " | "))
		}
		fmt.Fprintf(&b, "Student answered: %s\n", describeAnswer(q, answers[q.ID]))
		fmt.Fprintf(&b, "Correct answer: %s\n", correctAnswer(q))
	}
	return b.String()
}

func describeAnswer(q catalog.Question, a assessment.Answer) string {
	if a.IsEmpty() {
		return "(no answer)"
	}
	switch q.Type {
	case catalog.QuestionMultiple:
		return strings.Join(a.Set, ", ")
	case catalog.QuestionMatching:
		return pairs(q, a.Order)
	default:
		return a.Value
	}
}

func correctAnswer(q catalog.Question) string {
	switch q.Type {
	case catalog.QuestionMultiple:
		return strings.Join(q.CorrectAnswers, ", ")
	case catalog.QuestionMatching:
		rights := make([]string, len(q.Pairs))
		for i, p := range q.Pairs {
			rights[i] = p.Right
		}
		return pairs(q, rights)
	default:
		return q.CorrectAnswer
	}
}

func pairs(q catalog.Question, rights []string) string {
	parts := make([]string, 0, len(q.Pairs))
	for i, p := range q.Pairs {
		r := "?"
		if i < len(rights) {
			r = rights[i]
		}
		parts = append(parts, p.Left+" → "+r)
	}
	return strings.Join(parts, "; ")
}
