package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// openaiBackend also serves OpenRouter, which speaks the same protocol.
type openaiBackend struct {
	name   string
	client *openai.Client
	model  string
}

func newOpenAI(cfg ProviderConfig) *openaiBackend {
	return newOpenAICompatible(ProviderOpenAI, cfg)
}

// OpenRouter model IDs are vendor-prefixed and pass through unmapped.
func newOpenRouter(cfg ProviderConfig) *openaiBackend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterURL
	}
	return newOpenAICompatible(ProviderOpenRouter, cfg)
}

func newOpenAICompatible(name string, cfg ProviderConfig) *openaiBackend {
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	return &openaiBackend{name: name, client: openai.NewClientWithConfig(conf), model: cfg.Model}
}

func (b *openaiBackend) Model() string { return b.model }

func (b *openaiBackend) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:               b.model,
		MaxCompletionTokens: p.MaxTokens,
		Temperature:         float32(p.Temperature),
	}
	if p.System != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	if p.Schema != nil {
		def, err := json.Marshal(p.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("encode schema %s: %w", p.Schema.Name, err)
		}
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        p.Schema.Name,
				Description: p.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		status := 0
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.HTTPStatusCode
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			status = reqErr.HTTPStatusCode
		}
		return nil, &APIError{Provider: b.name, Status: status, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyReply
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, ErrTruncated
	}
	return finish(p, choice.Message.Content, resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
}
