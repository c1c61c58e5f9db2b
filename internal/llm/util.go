package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ExtractJSON parses the first JSON object found in model output into
// out, tolerating markdown fences around it.
func ExtractJSON(raw string, out any) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return errors.New("llm: empty output")
	}

	if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
		if strings.HasPrefix(s, "json") {
			s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < 0 || start >= end {
		return errors.New("llm: missing JSON object")
	}
	return json.Unmarshal([]byte(s[start:end+1]), out)
}
