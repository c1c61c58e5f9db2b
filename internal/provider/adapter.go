package provider

import (
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

// Payload is a provider-native request body plus bookkeeping fields.
type Payload struct {
	Provider      string         `json:"provider"`
	Model         string         `json:"model"`
	Content       map[string]any `json:"content"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	VariablesUsed []string       `json:"variables_used,omitempty"`
}

// RenderOptions tune a single render call.
type RenderOptions struct {
	Model       string
	Variables   map[string]any
	MaxTokens   int
	Temperature float64
}

// ModelInfo describes a model an adapter supports.
type ModelInfo struct {
	Name          string `json:"name"`
	ContextWindow int    `json:"context_window"`
	MaxOutput     int    `json:"max_output"`
}

// Adapter shapes structured prompts into one provider's native
// payload format. Adapters do not talk to the network.
type Adapter interface {
	ID() string
	Render(s *prompt.StructuredPrompt, opts RenderOptions) (*Payload, error)
	Validate(p *Payload) prompt.ValidationResult
	Supports(model string) bool
	DefaultOptions() RenderOptions
	ModelInfo(model string) (ModelInfo, bool)
	Configuration() Config
}

// Config is the provider-specific configuration union, discriminated
// by ProviderID.
type Config interface {
	ProviderID() string
}

// Registry maps provider ids to adapters.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

func (r *Registry) Register(a Adapter) {
	if r == nil || a == nil {
		return
	}
	id := strings.ToLower(strings.TrimSpace(a.ID()))
	if id == "" {
		return
	}
	if r.adapters == nil {
		r.adapters = make(map[string]Adapter)
	}
	if _, ok := r.adapters[id]; !ok {
		r.order = append(r.order, id)
	}
	r.adapters[id] = a
}

func (r *Registry) Get(id string) (Adapter, bool) {
	if r == nil || r.adapters == nil {
		return nil, false
	}
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, false
	}
	a, ok := r.adapters[id]
	return a, ok
}

// IDs returns registered provider ids in registration order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// NewDefaultRegistry registers the built-in adapters.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewOpenAIAdapter())
	r.Register(NewAnthropicAdapter())
	r.Register(NewMetaAdapter())
	return r
}

// systemText flattens system instructions and rules into one system
// message body.
func systemText(s *prompt.StructuredPrompt) string {
	var b strings.Builder
	for i, line := range s.System {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(line)
	}
	if len(s.Rules) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Rules:")
		for _, rule := range s.Rules {
			b.WriteString("\n- ")
			b.WriteString(rule.Name)
			if rule.Description != "" {
				b.WriteString(": ")
				b.WriteString(rule.Description)
			}
		}
	}
	return b.String()
}

func pickModel(requested, fallback string) string {
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	return fallback
}
