package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

// placeholderPattern matches {{ name }} with optional inner whitespace.
// Unbalanced delimiters are tolerated: the pattern simply stops
// matching past the malformed point.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// ExtractNames returns the unique variable names referenced by a
// template, in first-occurrence order. Case-sensitive.
func ExtractNames(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// MissingVariableError reports a placeholder with no value in strict
// substitution. It matches prompt.ErrValidation.
type MissingVariableError struct {
	Key string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template: missing variable %q", e.Key)
}

func (e *MissingVariableError) Unwrap() error { return prompt.ErrValidation }

// Options controls Substitute behavior.
type Options struct {
	// Strict fails on the first placeholder with neither a value nor
	// a default. When false, unresolved placeholders pass through
	// unchanged.
	Strict   bool
	Defaults map[string]string
}

// Substitute replaces each {{key}} placeholder with values[key],
// falling back to Options.Defaults.
func Substitute(template string, values map[string]any, opts Options) (string, error) {
	if opts.Strict {
		for _, name := range ExtractNames(template) {
			if _, ok := values[name]; ok {
				continue
			}
			if _, ok := opts.Defaults[name]; ok {
				continue
			}
			return "", &MissingVariableError{Key: name}
		}
	}

	out := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		sub := placeholderPattern.FindStringSubmatch(m)
		name := sub[1]
		if v, ok := values[name]; ok {
			return fmt.Sprintf("%v", v)
		}
		if v, ok := opts.Defaults[name]; ok {
			return v
		}
		return m
	})
	return out, nil
}

// ValidateSubstitution cross-checks a template against its variable
// definitions and a set of provided values. Every referenced variable
// needs a definition and every required variable needs a non-empty
// value or default. Findings are strings; callers decide fatality.
func ValidateSubstitution(template string, vars []prompt.Variable, provided map[string]any) prompt.ValidationResult {
	defs := make(map[string]*prompt.Variable, len(vars))
	for i := range vars {
		defs[vars[i].Key] = &vars[i]
	}

	var errs []string
	for _, name := range ExtractNames(template) {
		if _, ok := defs[name]; !ok {
			errs = append(errs, fmt.Sprintf("variable %q is referenced by the template but not defined", name))
		}
	}
	for i := range vars {
		v := &vars[i]
		if !v.Required {
			continue
		}
		if raw, ok := provided[v.Key]; ok {
			if strings.TrimSpace(fmt.Sprintf("%v", raw)) != "" {
				continue
			}
		}
		if strings.TrimSpace(v.Default) != "" {
			continue
		}
		errs = append(errs, fmt.Sprintf("required variable %q has no value", v.Key))
	}
	return prompt.Invalid(errs...)
}
