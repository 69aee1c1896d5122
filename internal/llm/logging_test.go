package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/courseflow/internal/store"
)

func openEventRepo(t *testing.T) store.EventRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func TestAuditRecordsEachCall(t *testing.T) {
	events := openEventRepo(t)
	fake := NewScripted(
		Reply{JSON: `{"ok":true}`, InputTokens: 12, OutputTokens: 4},
		Reply{JSON: `{"ok":"maybe"}`},
		Reply{Err: errors.New("boom")},
	)
	p := WithAudit(fake, ProviderMock, events, nil)

	_, err := p.Complete(t.Context(), feedbackPrompt)
	require.NoError(t, err)
	_, err = p.Complete(t.Context(), feedbackPrompt)
	require.Error(t, err)
	_, err = p.Complete(t.Context(), feedbackPrompt)
	require.Error(t, err)

	got, err := events.QueryLLMRequests(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	failed, invalid, ok := got[0], got[1], got[2]
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.ErrorMessage)

	assert.False(t, invalid.Success)
	assert.Equal(t, `{"ok":"maybe"}`, invalid.ResponseBody)

	assert.True(t, ok.Success)
	assert.Equal(t, PurposeFeedback, ok.Purpose)
	assert.Equal(t, 12, ok.InputTokens)
	assert.Contains(t, ok.RequestBody, "[system]\nYou are an instructor.")
	assert.Contains(t, ok.RequestBody, "[schema verdict]")
	assert.Equal(t, `{"ok":true}`, ok.ResponseBody)
}

func TestAuditWithoutStore(t *testing.T) {
	p := WithAudit(NewScripted(Reply{JSON: `{}`}), ProviderMock, nil, nil)
	_, err := p.Complete(t.Context(), Prompt{})
	assert.NoError(t, err)
}
