package convert

import (
	"regexp"
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

// providerModelTag matches tags like "openai-gpt-4o" or
// "anthropic-claude-sonnet".
var providerModelTag = regexp.MustCompile(`^(openai|anthropic|claude|meta|llama|gpt)[-_][a-z0-9][a-z0-9._-]*$`)

// titleVariantMarker matches titles ending in "(enhanced)" or a
// "(provider-model)" suffix.
var titleVariantMarker = regexp.MustCompile(`(?i)\((enhanced|(openai|anthropic|claude|meta|llama|gpt)[-_][a-z0-9._ -]+)\)\s*$`)

var variantMetaKeys = []string{"variant_of", "tuned_for_provider", "preferred_model"}

// VariantInfo is the result of the variant heuristic.
type VariantInfo struct {
	IsVariant  bool     `json:"is_variant"`
	Indicators []string `json:"indicators,omitempty"`
	Confidence float64  `json:"confidence"`
}

// DetectVariant flags content that looks like a provider/model-tuned
// copy of a base prompt. Confidence is min(indicators/3, 1).
func DetectVariant(title string, tags []string, meta map[string]any) VariantInfo {
	var indicators []string

	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "enhanced" {
			indicators = append(indicators, "tag:enhanced")
			continue
		}
		if providerModelTag.MatchString(t) {
			indicators = append(indicators, "tag:"+t)
		}
	}
	for _, key := range variantMetaKeys {
		if v, ok := meta[key]; ok && v != nil && strings.TrimSpace(toString(v)) != "" {
			indicators = append(indicators, "metadata:"+key)
		}
	}
	if titleVariantMarker.MatchString(strings.TrimSpace(title)) {
		indicators = append(indicators, "title")
	}

	confidence := float64(len(indicators)) / 3
	if confidence > 1 {
		confidence = 1
	}
	return VariantInfo{
		IsVariant:  len(indicators) > 0,
		Indicators: indicators,
		Confidence: confidence,
	}
}

// CleanVariant strips variant markers so the record can be imported
// as a base prompt. Adds base-prompt and imported tags.
func CleanVariant(r *prompt.Record) {
	if r == nil {
		return
	}

	kept := r.Metadata.Tags[:0]
	for _, tag := range r.Metadata.Tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "enhanced" || providerModelTag.MatchString(t) {
			continue
		}
		kept = append(kept, tag)
	}
	r.Metadata.Tags = kept
	for _, want := range []string{"base-prompt", "imported"} {
		if !hasTag(r.Metadata.Tags, want) {
			r.Metadata.Tags = append(r.Metadata.Tags, want)
		}
	}

	r.Metadata.Title = strings.TrimSpace(titleVariantMarker.ReplaceAllString(r.Metadata.Title, ""))
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
