package provider

import (
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

// MetaConfig configures the Meta (Llama) adapter.
type MetaConfig struct {
	DefaultModel string      `json:"default_model"`
	Models       []ModelInfo `json:"models"`
}

func (MetaConfig) ProviderID() string { return "meta" }

type MetaAdapter struct {
	cfg MetaConfig
}

func NewMetaAdapter() *MetaAdapter {
	return &MetaAdapter{cfg: MetaConfig{
		DefaultModel: "llama-3.3-70b-instruct",
		Models: []ModelInfo{
			{Name: "llama-3.3-70b-instruct", ContextWindow: 128000, MaxOutput: 4096},
			{Name: "llama-3.1-8b-instruct", ContextWindow: 128000, MaxOutput: 4096},
		},
	}}
}

func (a *MetaAdapter) ID() string { return "meta" }

func (a *MetaAdapter) Render(s *prompt.StructuredPrompt, opts RenderOptions) (*Payload, error) {
	if s == nil {
		return nil, prompt.Preconditionf("meta: nil structured prompt")
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
		content["max_gen_len"] = opts.MaxTokens
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

func (a *MetaAdapter) Validate(p *Payload) prompt.ValidationResult {
	var errs []string
	if p == nil {
		return prompt.Invalid("payload is nil")
	}
	if !a.Supports(p.Model) {
		errs = append(errs, "model "+p.Model+" is not supported by meta")
	}
	msgs, ok := p.Content["messages"].([]map[string]any)
	if !ok || len(msgs) == 0 {
		errs = append(errs, "payload has no messages")
	} else {
		hasUser := false
		for _, m := range msgs {
			role, _ := m["role"].(string)
			if role == "user" {
				hasUser = true
			}
			content, _ := m["content"].(string)
			if strings.TrimSpace(content) == "" {
				errs = append(errs, "message with empty content")
			}
		}
		if !hasUser {
			errs = append(errs, "payload has no user message")
		}
	}
	return prompt.Invalid(errs...)
}

func (a *MetaAdapter) Supports(model string) bool {
	for _, m := range a.cfg.Models {
		if m.Name == model {
			return true
		}
	}
	return false
}

func (a *MetaAdapter) DefaultOptions() RenderOptions {
	return RenderOptions{Model: a.cfg.DefaultModel, MaxTokens: 2048, Temperature: 0.7}
}

func (a *MetaAdapter) ModelInfo(model string) (ModelInfo, bool) {
	for _, m := range a.cfg.Models {
		if m.Name == model {
			return m, true
		}
	}
	return ModelInfo{}, false
}

func (a *MetaAdapter) Configuration() Config { return a.cfg }
