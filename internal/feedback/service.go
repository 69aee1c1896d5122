// Package feedback asks an LLM to explain the questions a student missed
// in a submitted test attempt.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/courseflow/internal/assessment"
	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/llm"
	"github.com/abhisek/courseflow/internal/logger"
)

// Item explains one missed question.
type Item struct {
	QuestionID  string `json:"questionId"`
	Explanation string `json:"explanation"`
}

// Feedback is the generated review of an attempt.
type Feedback struct {
	Summary string `json:"summary"`
	Items   []Item `json:"items"`
}

// Service generates feedback.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

// NewService creates a feedback service. log may be nil.
func NewService(provider llm.Provider, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

// Explain returns explanations for the automatically graded questions the
// attempt missed. It returns nil without calling the provider when nothing
// was missed.
func (s *Service) Explain(ctx context.Context, test catalog.Test, res assessment.Result, answers map[string]assessment.Answer) (*Feedback, error) {
	missed := missedQuestions(test, res)
	if len(missed) == 0 {
		return nil, nil
	}

	c, err := s.provider.Complete(ctx, llm.Prompt{
		Purpose:     llm.PurposeFeedback,
		System:      systemPrompt,
		User:        buildUserMessage(test, res, answers, missed),
		Schema:      Schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("feedback generation: %w", err)
	}

	var out Feedback
	if err := json.Unmarshal(c.JSON, &out); err != nil {
		return nil, fmt.Errorf("parse feedback response: %w", err)
	}

	// Drop items for questions that were not sent.
	known := make(map[string]bool, len(missed))
	for _, q := range missed {
		known[q.ID] = true
	}
	items := out.Items[:0]
	for _, it := range out.Items {
		if known[it.QuestionID] {
			items = append(items, it)
		} else {
			s.log.Warn("dropping feedback for unknown question", "question", it.QuestionID)
		}
	}
	out.Items = items
	return &out, nil
}

func missedQuestions(test catalog.Test, res assessment.Result) []catalog.Question {
	byID := make(map[string]catalog.Question, len(test.Questions))
	for _, q := range test.Questions {
		byID[q.ID] = q
	}
	var out []catalog.Question
	for _, r := range res.Missed() {
		if q, ok := byID[r.QuestionID]; ok {
			out = append(out, q)
		}
	}
	return out
}
