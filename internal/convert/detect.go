package convert

import (
	"encoding/json"
	"strings"
)

// Format identifies a prompt payload's source format.
type Format string

const (
	FormatInternal  Format = "internal"
	FormatAnthropic Format = "anthropic"
	FormatOpenAI    Format = "openai"
	FormatMeta      Format = "meta"
	FormatUnknown   Format = ""
)

// Detection is a format guess with a confidence in [0, 1].
type Detection struct {
	Provider   Format  `json:"provider,omitempty"`
	Confidence float64 `json:"confidence"`
}

// DetectFormat inspects a JSON payload's shape. Rules are evaluated
// in precedence order; the first match wins.
func DetectFormat(raw []byte) Detection {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Detection{}
	}
	return detectDoc(doc)
}

func detectDoc(doc map[string]any) Detection {
	if doc == nil {
		return Detection{}
	}

	if _, ok := doc["prompt_human"]; ok {
		return Detection{Provider: FormatInternal, Confidence: 1.0}
	}
	if _, ok := doc["prompt_structured"]; ok {
		return Detection{Provider: FormatInternal, Confidence: 1.0}
	}

	messages, hasMessages := doc["messages"].([]any)

	if system, ok := doc["system"].(string); ok && system != "" && hasMessages {
		return Detection{Provider: FormatAnthropic, Confidence: 0.9}
	}

	if hasMessages && len(messages) > 0 && allChatMessages(messages) {
		return Detection{Provider: FormatOpenAI, Confidence: 0.9}
	}

	if hasMessages && hasSystemOrUserString(messages) {
		return Detection{Provider: FormatMeta, Confidence: 0.7}
	}

	return Detection{}
}

// allChatMessages reports whether every entry is a chat message with
// a known role and non-empty content.
func allChatMessages(messages []any) bool {
	for _, m := range messages {
		msg, ok := m.(map[string]any)
		if !ok {
			return false
		}
		role, _ := msg["role"].(string)
		switch role {
		case "system", "user", "assistant":
		default:
			return false
		}
		content, _ := msg["content"].(string)
		if strings.TrimSpace(content) == "" {
			return false
		}
	}
	return true
}

func hasSystemOrUserString(messages []any) bool {
	for _, m := range messages {
		msg, ok := m.(map[string]any)
		if !ok {
			continue
		}
		role, _ := msg["role"].(string)
		if role == "system" {
			return true
		}
		if role == "user" {
			if content, ok := msg["content"].(string); ok && strings.TrimSpace(content) != "" {
				return true
			}
		}
	}
	return false
}
