package provider

import (
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

// OpenAIConfig configures the OpenAI adapter.
type OpenAIConfig struct {
	DefaultModel string      `json:"default_model"`
	Models       []ModelInfo `json:"models"`
}

func (OpenAIConfig) ProviderID() string { return "openai" }

type OpenAIAdapter struct {
	cfg OpenAIConfig
}

func NewOpenAIAdapter() *OpenAIAdapter {
	return &OpenAIAdapter{cfg: OpenAIConfig{
		DefaultModel: "gpt-4o",
		Models: []ModelInfo{
			{Name: "gpt-4o", ContextWindow: 128000, MaxOutput: 16384},
			{Name: "gpt-4o-mini", ContextWindow: 128000, MaxOutput: 16384},
			{Name: "gpt-4-turbo", ContextWindow: 128000, MaxOutput: 4096},
			{Name: "gpt-3.5-turbo", ContextWindow: 16385, MaxOutput: 4096},
		},
	}}
}

func (a *OpenAIAdapter) ID() string { return "openai" }

func (a *OpenAIAdapter) Render(s *prompt.StructuredPrompt, opts RenderOptions) (*Payload, error) {
	if s == nil {
		return nil, prompt.Preconditionf("openai: nil structured prompt")
	}
	model := pickModel(opts.Model, a.cfg.DefaultModel)

	messages := make([]map[string]any, 0, 2)
	if sys := systemText(s); sys != "" {
		messages = append(messages, map[string]any{"role": "system", "content": sys})
	}
	messages = append(messages, map[string]any{"role": "user", "content": s.UserTemplate})

	content := map[string]any{
		"model":    model,
		"messages": messages,
	}
	if opts.MaxTokens > 0 {
		content["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		content["temperature"] = opts.Temperature
	}

	return &Payload{
		Provider: a.ID(),
		Model:    model,
		Content:  content,
	}, nil
}

func (a *OpenAIAdapter) Validate(p *Payload) prompt.ValidationResult {
	var errs []string
	if p == nil {
		return prompt.Invalid("payload is nil")
	}
	if !a.Supports(p.Model) {
		errs = append(errs, "model "+p.Model+" is not supported by openai")
	}
	msgs, ok := p.Content["messages"].([]map[string]any)
	if !ok || len(msgs) == 0 {
		errs = append(errs, "payload has no messages")
	} else {
		for _, m := range msgs {
			role, _ := m["role"].(string)
			content, _ := m["content"].(string)
			if role != "system" && role != "user" && role != "assistant" {
				errs = append(errs, "invalid message role "+role)
			}
			if strings.TrimSpace(content) == "" {
				errs = append(errs, "message with empty content")
			}
		}
	}
	return prompt.Invalid(errs...)
}

func (a *OpenAIAdapter) Supports(model string) bool {
	for _, m := range a.cfg.Models {
		if m.Name == model {
			return true
		}
	}
	return false
}

func (a *OpenAIAdapter) DefaultOptions() RenderOptions {
	return RenderOptions{Model: a.cfg.DefaultModel, MaxTokens: 4096, Temperature: 0.7}
}

func (a *OpenAIAdapter) ModelInfo(model string) (ModelInfo, bool) {
	for _, m := range a.cfg.Models {
		if m.Name == model {
			return m, true
		}
	}
	return ModelInfo{}, false
}

func (a *OpenAIAdapter) Configuration() Config { return a.cfg }
