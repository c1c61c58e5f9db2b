package enhance

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/template"
)

// Result is the outcome of enhancing a human prompt.
type Result struct {
	Structured  *prompt.StructuredPrompt `json:"structured_prompt"`
	Questions   []string                 `json:"questions,omitempty"`
	Rationale   string                   `json:"rationale"`
	Confidence  float64                  `json:"confidence"`
	ChangesMade []string                 `json:"changes_made,omitempty"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

// Agent turns a free-form human prompt into a structured,
// variable-parameterized one.
type Agent interface {
	Enhance(ctx context.Context, human *prompt.HumanPrompt, contextNote string) (*Result, error)
	ExtractVariables(tmpl string) []prompt.Variable
	ValidateStructured(s *prompt.StructuredPrompt) prompt.ValidationResult
}

// ExtractVariables derives variable definitions from a template's
// placeholders using the import-time inference heuristic.
func ExtractVariables(tmpl string) []prompt.Variable {
	names := template.ExtractNames(tmpl)
	if len(names) == 0 {
		return nil
	}
	out := make([]prompt.Variable, 0, len(names))
	for _, name := range names {
		out = append(out, template.InferVariable(name))
	}
	return out
}

// ValidateStructured checks a structured prompt for internal
// consistency.
func ValidateStructured(s *prompt.StructuredPrompt) prompt.ValidationResult {
	if s == nil {
		return prompt.Invalid("structured prompt is nil")
	}

	var errs []string
	if strings.TrimSpace(s.SchemaVersion) == "" {
		errs = append(errs, "schema_version must not be empty")
	}
	if strings.TrimSpace(s.UserTemplate) == "" {
		errs = append(errs, "user_template must not be empty")
	}

	declared := make(map[string]struct{}, len(s.Variables))
	for _, v := range s.Variables {
		declared[v] = struct{}{}
	}
	for _, name := range template.ExtractNames(s.UserTemplate) {
		if _, ok := declared[name]; !ok {
			errs = append(errs, fmt.Sprintf("template references variable %q not listed in variables", name))
		}
	}
	for _, rule := range s.Rules {
		if strings.TrimSpace(rule.Name) == "" {
			errs = append(errs, "rule with empty name")
		}
	}
	return prompt.Invalid(errs...)
}
