package feedback

import "github.com/abhisek/courseflow/internal/llm"

// Schema is the response shape for attempt feedback.
var Schema = &llm.Schema{
	Name:        "attempt-feedback",
	Description: "Short explanations of the questions a student missed in a test attempt",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "1-2 sentence overview of what to review",
			},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"questionId": map[string]any{
							"type":        "string",
							"description": "ID of the missed question, copied from the input",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct answer is correct (2-3 sentences)",
						},
					},
					"required":             []any{"questionId", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"summary", "items"},
		"additionalProperties": false,
	},
}
