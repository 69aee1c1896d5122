package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorContains(t, cfg.Validate(), "COURSEFLOW_LLM_ANTHROPIC_API_KEY")

	cfg.Anthropic.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.Provider = "cohere"
	assert.ErrorContains(t, cfg.Validate(), "unknown LLM provider")

	cfg.Provider = ProviderMock
	assert.NoError(t, cfg.Validate())
}

func TestConfigDiscover(t *testing.T) {
	for _, env := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(env, "")
	}

	_, ok := DefaultConfig().Discover()
	assert.False(t, ok)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "ant-test")
	cfg, ok := DefaultConfig().Discover()
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.Selected().APIKey)
}

func TestNewProviderMock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	cfg.Retry.MaxAttempts = 1

	p, err := NewProvider(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, p.Model())

	_, err = p.Complete(t.Context(), Prompt{})
	var ae *APIError
	assert.ErrorAs(t, err, &ae)
}
