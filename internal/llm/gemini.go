package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var geminiAliases = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

type geminiBackend struct {
	client *genai.Client
	model  string
}

func newGemini(ctx context.Context, cfg ProviderConfig) (*geminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiBackend{client: client, model: resolveModel(cfg.Model, geminiAliases)}, nil
}

func (b *geminiBackend) Model() string { return b.model }

func (b *geminiBackend) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	conf := &genai.GenerateContentConfig{MaxOutputTokens: int32(p.MaxTokens)}
	if p.Temperature > 0 {
		conf.Temperature = genai.Ptr(float32(p.Temperature))
	}
	if p.System != "" {
		conf.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	if p.Schema != nil {
		conf.ResponseMIMEType = "application/json"
		conf.ResponseSchema = geminiSchema(p.Schema.Definition)
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(p.User), conf)
	if err != nil {
		status := 0
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		return nil, &APIError{Provider: ProviderGemini, Status: status, Err: err}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return nil, ErrTruncated
	}

	var in, out int
	if u := resp.UsageMetadata; u != nil {
		in, out = int(u.PromptTokenCount), int(u.CandidatesTokenCount)
	}
	return finish(p, resp.Text(), b.model, in, out)
}

// geminiSchema converts the JSON Schema subset used by reply schemas.
// Gemini has no additionalProperties, so that keyword is dropped.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}
	for key, v := range def {
		switch key {
		case "type":
			if t, ok := v.(string); ok {
				s.Type = genai.Type(strings.ToUpper(t))
			}
		case "description":
			s.Description, _ = v.(string)
		case "properties":
			props, _ := v.(map[string]any)
			s.Properties = make(map[string]*genai.Schema, len(props))
			for name, sub := range props {
				if m, ok := sub.(map[string]any); ok {
					s.Properties[name] = geminiSchema(m)
				}
			}
		case "items":
			if m, ok := v.(map[string]any); ok {
				s.Items = geminiSchema(m)
			}
		case "required":
			s.Required = stringList(v)
		case "enum":
			s.Enum = stringList(v)
		}
	}
	return s
}

func stringList(v any) []string {
	switch v := v.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
