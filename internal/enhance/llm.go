package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/promptvault/internal/llm"
	"github.com/stellarlinkco/promptvault/internal/prompt"
)

const enhanceSystem = `You are a prompt engineering expert. You turn free-form prompt specifications into structured, reusable prompt templates.`

const enhanceTemplate = `Convert the following prompt specification into a structured prompt template.

## Specification
Goal: {{GOAL}}
Audience: {{AUDIENCE}}
Steps:
{{STEPS}}
Expected output format: {{FORMAT}}
Expected output fields: {{FIELDS}}
{{CONTEXT_SECTION}}

## Your Task
1. Write a short list of system instructions capturing the persona and constraints.
2. Write a user_template string. Parameterize anything a caller would change per use as a {{name}} placeholder (lowercase snake_case names).
3. List rules (name + description) the output must follow.
4. List every placeholder name you used under "variables".

## Output Format
Return ONLY a JSON object:
{
  "schema_version": "1",
  "system": ["instruction 1", "instruction 2"],
  "capabilities": ["capability 1"],
  "user_template": "template with {{placeholders}}",
  "rules": [{"name": "rule-name", "description": "what it enforces"}],
  "variables": ["placeholder"],
  "rationale": "why you structured it this way",
  "confidence": 0.0,
  "changes_made": ["change 1"],
  "warnings": ["warning 1"],
  "questions": ["open question 1"]
}`

// LLMAgent implements Agent on top of a completion provider.
type LLMAgent struct {
	Provider llm.Provider
	Model    string
}

func NewLLMAgent(p llm.Provider, model string) *LLMAgent {
	return &LLMAgent{Provider: p, Model: model}
}

func (a *LLMAgent) Enhance(ctx context.Context, human *prompt.HumanPrompt, contextNote string) (*Result, error) {
	if a == nil || a.Provider == nil {
		return nil, errors.New("enhance: nil provider")
	}
	if human == nil || strings.TrimSpace(human.Goal) == "" {
		return nil, errors.New("enhance: empty goal")
	}

	user := buildEnhanceRequest(human, contextNote)
	resp, err := a.Provider.Complete(ctx, &llm.Request{
		System:    enhanceSystem,
		User:      user,
		Model:     a.Model,
		MaxTokens: 8192,
	})
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}

	var parsed struct {
		SchemaVersion string   `json:"schema_version"`
		System        []string `json:"system"`
		Capabilities  []string `json:"capabilities"`
		UserTemplate  string   `json:"user_template"`
		Rules         []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"rules"`
		Variables   []string `json:"variables"`
		Rationale   string   `json:"rationale"`
		Confidence  float64  `json:"confidence"`
		ChangesMade []string `json:"changes_made"`
		Warnings    []string `json:"warnings"`
		Questions   []string `json:"questions"`
	}
	if err := llm.ExtractJSON(resp.Text, &parsed); err != nil {
		return nil, fmt.Errorf("enhance: parse response: %w", err)
	}
	if strings.TrimSpace(parsed.UserTemplate) == "" {
		return nil, errors.New("enhance: response has empty user_template")
	}

	structured := &prompt.StructuredPrompt{
		SchemaVersion: parsed.SchemaVersion,
		System:        parsed.System,
		Capabilities:  parsed.Capabilities,
		UserTemplate:  parsed.UserTemplate,
		Variables:     parsed.Variables,
	}
	if structured.SchemaVersion == "" {
		structured.SchemaVersion = "1"
	}
	for _, r := range parsed.Rules {
		structured.Rules = append(structured.Rules, prompt.Rule{Name: r.Name, Description: r.Description})
	}

	return &Result{
		Structured:  structured,
		Questions:   parsed.Questions,
		Rationale:   parsed.Rationale,
		Confidence:  parsed.Confidence,
		ChangesMade: parsed.ChangesMade,
		Warnings:    parsed.Warnings,
	}, nil
}

func (a *LLMAgent) ExtractVariables(tmpl string) []prompt.Variable {
	return ExtractVariables(tmpl)
}

func (a *LLMAgent) ValidateStructured(s *prompt.StructuredPrompt) prompt.ValidationResult {
	return ValidateStructured(s)
}

func buildEnhanceRequest(human *prompt.HumanPrompt, contextNote string) string {
	steps := "- (none given)"
	if len(human.Steps) > 0 {
		var sb strings.Builder
		for i, s := range human.Steps {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%d. %s", i+1, s)
		}
		steps = sb.String()
	}

	out := strings.ReplaceAll(enhanceTemplate, "{{GOAL}}", human.Goal)
	out = strings.ReplaceAll(out, "{{AUDIENCE}}", orDefault(human.Audience, "general"))
	out = strings.ReplaceAll(out, "{{STEPS}}", steps)
	out = strings.ReplaceAll(out, "{{FORMAT}}", orDefault(human.Output.Format, "free text"))
	out = strings.ReplaceAll(out, "{{FIELDS}}", orDefault(strings.Join(human.Output.Fields, ", "), "(none)"))

	section := ""
	if note := strings.TrimSpace(contextNote); note != "" {
		section = "Additional context: " + note
	}
	return strings.ReplaceAll(out, "{{CONTEXT_SECTION}}", section)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
