package provider

import (
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

// AnthropicConfig configures the Anthropic adapter.
type AnthropicConfig struct {
	DefaultModel string      `json:"default_model"`
	Models       []ModelInfo `json:"models"`
	APIVersion   string      `json:"api_version"`
}

func (AnthropicConfig) ProviderID() string { return "anthropic" }

type AnthropicAdapter struct {
	cfg AnthropicConfig
}

func NewAnthropicAdapter() *AnthropicAdapter {
	return &AnthropicAdapter{cfg: AnthropicConfig{
		DefaultModel: "claude-sonnet-4-5-20250929",
		APIVersion:   "2023-06-01",
		Models: []ModelInfo{
			{Name: "claude-sonnet-4-5-20250929", ContextWindow: 200000, MaxOutput: 64000},
			{Name: "claude-opus-4-1-20250805", ContextWindow: 200000, MaxOutput: 32000},
			{Name: "claude-3-5-haiku-20241022", ContextWindow: 200000, MaxOutput: 8192},
		},
	}}
}

func (a *AnthropicAdapter) ID() string { return "anthropic" }

// Render produces the Messages API shape: top-level system string,
// user turn in messages.
func (a *AnthropicAdapter) Render(s *prompt.StructuredPrompt, opts RenderOptions) (*Payload, error) {
	if s == nil {
		return nil, prompt.Preconditionf("anthropic: nil structured prompt")
	}
	model := pickModel(opts.Model, a.cfg.DefaultModel)

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	content := map[string]any{
		"model":      model,
		"max_tokens": maxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": s.UserTemplate},
		},
	}
	if sys := systemText(s); sys != "" {
		content["system"] = sys
	}
	if opts.Temperature > 0 {
		content["temperature"] = opts.Temperature
	}

	return &Payload{
		Provider: a.ID(),
		Model:    model,
		Content:  content,
		Metadata: map[string]any{"api_version": a.cfg.APIVersion},
	}, nil
}

func (a *AnthropicAdapter) Validate(p *Payload) prompt.ValidationResult {
	var errs []string
	if p == nil {
		return prompt.Invalid("payload is nil")
	}
	if !a.Supports(p.Model) {
		errs = append(errs, "model "+p.Model+" is not supported by anthropic")
	}
	msgs, ok := p.Content["messages"].([]map[string]any)
	if !ok || len(msgs) == 0 {
		errs = append(errs, "payload has no messages")
	} else {
		for _, m := range msgs {
			content, _ := m["content"].(string)
			if strings.TrimSpace(content) == "" {
				errs = append(errs, "message with empty content")
			}
		}
	}
	if _, ok := p.Content["max_tokens"]; !ok {
		errs = append(errs, "payload is missing max_tokens")
	}
	return prompt.Invalid(errs...)
}

func (a *AnthropicAdapter) Supports(model string) bool {
	for _, m := range a.cfg.Models {
		if m.Name == model {
			return true
		}
	}
	return false
}

func (a *AnthropicAdapter) DefaultOptions() RenderOptions {
	return RenderOptions{Model: a.cfg.DefaultModel, MaxTokens: 4096, Temperature: 0.7}
}

func (a *AnthropicAdapter) ModelInfo(model string) (ModelInfo, bool) {
	for _, m := range a.cfg.Models {
		if m.Name == model {
			return m, true
		}
	}
	return ModelInfo{}, false
}

func (a *AnthropicAdapter) Configuration() Config { return a.cfg }
