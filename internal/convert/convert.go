package convert

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/template"
)

var (
	numberedStep    = regexp.MustCompile(`^\d+\.\s+(.*)`)
	markdownTitle   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	titleLine       = regexp.MustCompile(`(?m)^Title:\s*(.+)$`)
	underscoreRuns  = regexp.MustCompile(`_{2,}`)
)

// fallbackSteps is used when no numbered list can be extracted from
// the source content.
var fallbackSteps = []string{
	"Review the prompt requirements",
	"Produce the requested output",
	"Verify the output matches expectations",
}

// ToInternal converts a provider-native payload into a prompt record.
// The result carries no ID or slug; the importer assigns those.
func ToInternal(raw []byte, format Format) (*prompt.Record, error) {
	switch format {
	case FormatInternal:
		return internalRecord(raw)
	case FormatAnthropic, FormatOpenAI, FormatMeta:
		return providerRecord(raw, format)
	default:
		return nil, prompt.Validationf("cannot convert unrecognized format %q", format)
	}
}

func internalRecord(raw []byte) (*prompt.Record, error) {
	var r prompt.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, prompt.Validationf("invalid internal payload: %v", err)
	}
	if strings.TrimSpace(r.Metadata.Title) == "" {
		r.Metadata.Title = extractTitle(raw, r.Human.Goal)
	}
	r.ID = ""
	r.Slug = ""
	if r.Version < 1 {
		r.Version = 1
	}
	if !prompt.ValidStatus(r.Status) {
		r.Status = prompt.StatusDraft
	}
	return &r, nil
}

func providerRecord(raw []byte, format Format) (*prompt.Record, error) {
	var doc struct {
		System   string `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, prompt.Validationf("invalid %s payload: %v", format, err)
	}

	var system []string
	if s := strings.TrimSpace(doc.System); s != "" {
		system = append(system, s)
	}
	var userParts []string
	for _, m := range doc.Messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case "system":
			system = append(system, content)
		case "user":
			userParts = append(userParts, content)
		}
	}
	userTemplate := strings.Join(userParts, "\n\n")

	combined := strings.Join(append(append([]string{}, system...), userTemplate), "\n")
	title := extractTitle(raw, combined)

	structured := &prompt.StructuredPrompt{
		SchemaVersion: "1",
		System:        system,
		UserTemplate:  userTemplate,
		Variables:     template.ExtractNames(userTemplate),
	}

	vars := make([]prompt.Variable, 0, len(structured.Variables))
	for _, name := range structured.Variables {
		vars = append(vars, template.InferVariable(name))
	}

	return &prompt.Record{
		Version: 1,
		Status:  prompt.StatusDraft,
		Metadata: prompt.Metadata{
			Title: title,
			Tags:  []string{"imported"},
		},
		Human: prompt.HumanPrompt{
			Goal:     goalFrom(combined, title),
			Audience: "general",
			Steps:    stepsFrom(combined),
		},
		Structured: structured,
		Variables:  vars,
	}, nil
}

// extractTitle resolves a title in precedence order: explicit
// _metadata.promptTitle, markdown header, "Title: ..." line, first 50
// characters of content.
func extractTitle(raw []byte, content string) string {
	var meta struct {
		Metadata struct {
			PromptTitle string `json:"promptTitle"`
		} `json:"_metadata"`
	}
	if err := json.Unmarshal(raw, &meta); err == nil {
		if t := strings.TrimSpace(meta.Metadata.PromptTitle); t != "" {
			return t
		}
	}
	if m := markdownTitle.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := titleLine.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	content = strings.TrimSpace(content)
	if len(content) > 50 {
		content = content[:50]
	}
	if content == "" {
		return "Imported prompt"
	}
	return strings.TrimSpace(content)
}

func goalFrom(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(line) > 200 {
			line = line[:200]
		}
		return line
	}
	return fallback
}

// stepsFrom pulls a numbered list out of the content, falling back to
// three generic steps.
func stepsFrom(content string) []string {
	var steps []string
	for _, line := range strings.Split(content, "\n") {
		if m := numberedStep.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			steps = append(steps, strings.TrimSpace(m[1]))
		}
	}
	if len(steps) == 0 {
		return append([]string(nil), fallbackSteps...)
	}
	return steps
}

// rawMetadata returns the payload's _metadata object, if any.
func rawMetadata(raw []byte) map[string]any {
	var doc struct {
		Metadata map[string]any `json:"_metadata"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc.Metadata
}

// SanitizeFilenamePart replaces characters outside [a-zA-Z0-9_-] with
// underscores, collapses repeats, and trims leading/trailing
// underscores.
func SanitizeFilenamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := underscoreRuns.ReplaceAllString(b.String(), "_")
	return strings.Trim(out, "_")
}

// ExportFilename names an export file for a prompt render.
func ExportFilename(slug, providerID string, version int) string {
	return fmt.Sprintf("%s_%s_v%d.json", slug, SanitizeFilenamePart(providerID), version)
}
