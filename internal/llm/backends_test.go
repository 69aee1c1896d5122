package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func serve(t *testing.T, status int, body any, seen *map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

var feedbackPrompt = Prompt{
	Purpose:   PurposeFeedback,
	System:    "You are an instructor.",
	User:      "Explain q1.",
	Schema:    verdictSchema,
	MaxTokens: 128,
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id": "msg_1", "type": "message", "role": "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 40, "output_tokens": 9},
	}
}

func TestAnthropicComplete(t *testing.T) {
	var seen map[string]any
	url := serve(t, http.StatusOK, anthropicMessage(`{"ok":true}`, "end_turn"), &seen)
	b := newAnthropic(ProviderConfig{APIKey: "k", Model: "claude-haiku"}, option.WithBaseURL(url))

	c, err := b.Complete(t.Context(), feedbackPrompt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(c.JSON))
	assert.Equal(t, 40, c.InputTokens)
	assert.Equal(t, 9, c.OutputTokens)
	assert.Equal(t, "claude-haiku-4-5-20251001", b.Model())
	assert.Equal(t, "claude-haiku-4-5-20251001", seen["model"])
}

func TestAnthropicTruncated(t *testing.T) {
	url := serve(t, http.StatusOK, anthropicMessage(`{"ok":`, "max_tokens"), nil)
	b := newAnthropic(ProviderConfig{APIKey: "k", Model: "claude-haiku"}, option.WithBaseURL(url))

	_, err := b.Complete(t.Context(), feedbackPrompt)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestAnthropicStatusError(t *testing.T) {
	body := map[string]any{"type": "error", "error": map[string]any{"type": "invalid_request_error", "message": "bad"}}
	url := serve(t, http.StatusBadRequest, body, nil)
	b := newAnthropic(ProviderConfig{APIKey: "k", Model: "claude-haiku"}, option.WithBaseURL(url), option.WithMaxRetries(0))

	_, err := b.Complete(t.Context(), feedbackPrompt)
	var ae *APIError
	require.True(t, errors.As(err, &ae), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.False(t, ae.Transient())
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id": "c1", "object": "chat.completion", "model": "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 21, "completion_tokens": 5, "total_tokens": 26},
	}
}

func TestOpenAIComplete(t *testing.T) {
	var seen map[string]any
	url := serve(t, http.StatusOK, chatCompletion(`{"ok":false}`, "stop"), &seen)
	b := newOpenAI(ProviderConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url})

	c, err := b.Complete(t.Context(), feedbackPrompt)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.Model)
	assert.Equal(t, 21, c.InputTokens)

	msgs, _ := seen["messages"].([]any)
	require.Len(t, msgs, 2)
	format, _ := seen["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAIErrors(t *testing.T) {
	t.Run("length", func(t *testing.T) {
		url := serve(t, http.StatusOK, chatCompletion(`{"ok":`, "length"), nil)
		_, err := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: url}).Complete(t.Context(), feedbackPrompt)
		assert.ErrorIs(t, err, ErrTruncated)
	})
	t.Run("no choices", func(t *testing.T) {
		url := serve(t, http.StatusOK, map[string]any{"id": "c1", "choices": []any{}}, nil)
		_, err := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: url}).Complete(t.Context(), feedbackPrompt)
		assert.ErrorIs(t, err, ErrEmptyReply)
	})
	t.Run("rate limited", func(t *testing.T) {
		body := map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit"}}
		url := serve(t, http.StatusTooManyRequests, body, nil)
		_, err := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: url}).Complete(t.Context(), feedbackPrompt)
		var ae *APIError
		require.True(t, errors.As(err, &ae), "got %v", err)
		assert.Equal(t, ProviderOpenAI, ae.Provider)
		assert.True(t, ae.Transient())
	})
}

func TestOpenRouterDefaults(t *testing.T) {
	b := newOpenRouter(ProviderConfig{APIKey: "k", Model: "google/gemini-2.0-flash-exp"})
	assert.Equal(t, ProviderOpenRouter, b.name)
	assert.Equal(t, "google/gemini-2.0-flash-exp", b.Model())

	url := serve(t, http.StatusOK, chatCompletion(`{"ok":true}`, "stop"), nil)
	_, err := newOpenRouter(ProviderConfig{APIKey: "k", BaseURL: url}).Complete(t.Context(), feedbackPrompt)
	assert.NoError(t, err)
}

func TestGeminiSchema(t *testing.T) {
	got := geminiSchema(verdictSchema.Definition)
	assert.Equal(t, genai.TypeObject, got.Type)
	assert.Equal(t, []string{"ok"}, got.Required)
	require.Contains(t, got.Properties, "tags")
	assert.Equal(t, genai.TypeArray, got.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, got.Properties["tags"].Items.Type)
	assert.Equal(t, genai.TypeBoolean, got.Properties["ok"].Type)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiAliases))
	assert.Equal(t, "claude-opus-4", resolveModel("claude-opus-4", anthropicAliases))
}
