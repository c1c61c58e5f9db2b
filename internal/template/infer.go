package template

import (
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

var sensitiveMarkers = []string{"password", "key", "secret", "token", "credential"}

// InferVariable guesses a variable definition from its name. Used
// during import only; substitution never consults types. Select
// variables come back with no options, the caller must supply them.
func InferVariable(name string) prompt.Variable {
	v := prompt.Variable{
		Key:   name,
		Label: humanize(name),
		Type:  prompt.VarString,
	}

	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "count", "number", "amount"):
		v.Type = prompt.VarNumber
	case strings.Contains(lower, "enable") || strings.HasPrefix(lower, "is_") || strings.HasPrefix(lower, "has_"):
		v.Type = prompt.VarBoolean
	case containsAny(lower, "type", "category", "format"):
		v.Type = prompt.VarSelect
	}

	if containsAny(lower, sensitiveMarkers...) {
		v.Sensitive = true
	}
	return v
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func humanize(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
