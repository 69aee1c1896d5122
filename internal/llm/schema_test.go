package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var verdictSchema = &Schema{
	Name: "verdict",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ok":   map[string]any{"type": "boolean"},
			"tags": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"ok"},
		"additionalProperties": false,
	},
}

func TestSchemaCheck(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"valid", `{"ok": true, "tags": ["a"]}`, true},
		{"missing required", `{"tags": []}`, false},
		{"wrong type", `{"ok": "yes"}`, false},
		{"extra property", `{"ok": true, "note": "x"}`, false},
		{"not json", `ok: true`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verdictSchema.Check(json.RawMessage(tt.raw))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var re *ReplyError
			require.True(t, errors.As(err, &re), "got %v", err)
			assert.Equal(t, tt.raw, string(re.Raw))
		})
	}
}

func TestSchemaBrokenDefinition(t *testing.T) {
	s := &Schema{Name: "broken", Definition: map[string]any{"type": 12}}
	err := s.Check(json.RawMessage(`{}`))
	var re *ReplyError
	assert.True(t, errors.As(err, &re))
}

func TestFinish(t *testing.T) {
	_, err := finish(Prompt{}, "", "m", 0, 0)
	assert.ErrorIs(t, err, ErrEmptyReply)

	c, err := finish(Prompt{Schema: verdictSchema}, `{"ok":false}`, "m", 3, 4)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false}`, string(c.JSON))
	assert.Equal(t, 3, c.InputTokens)
	assert.Equal(t, 4, c.OutputTokens)
}
