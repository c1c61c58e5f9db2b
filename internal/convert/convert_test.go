package convert

import (
	"strings"
	"testing"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

func TestToInternal_OpenAI(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"model": "gpt-4",
		"messages": [
			{"role": "system", "content": "# Email assistant\nYou write emails.\n1. Ask for the recipient\n2. Draft the email"},
			{"role": "user", "content": "Write to {{recipient}} about {{topic}}"}
		]
	}`)

	r, err := ToInternal(raw, FormatOpenAI)
	if err != nil {
		t.Fatalf("ToInternal: %v", err)
	}
	if r.Metadata.Title != "Email assistant" {
		t.Fatalf("title: got %q", r.Metadata.Title)
	}
	if r.Status != prompt.StatusDraft || r.Version != 1 {
		t.Fatalf("record: got status=%q version=%d", r.Status, r.Version)
	}
	if len(r.Human.Steps) != 2 || r.Human.Steps[0] != "Ask for the recipient" {
		t.Fatalf("steps: got %v", r.Human.Steps)
	}
	if r.Structured == nil {
		t.Fatalf("structured: nil")
	}
	if len(r.Structured.System) != 1 || !strings.Contains(r.Structured.System[0], "You write emails.") {
		t.Fatalf("system: got %v", r.Structured.System)
	}
	if r.Structured.UserTemplate != "Write to {{recipient}} about {{topic}}" {
		t.Fatalf("template: got %q", r.Structured.UserTemplate)
	}
	if len(r.Variables) != 2 || r.Variables[0].Key != "recipient" || r.Variables[1].Key != "topic" {
		t.Fatalf("variables: got %+v", r.Variables)
	}
}

func TestToInternal_AnthropicSystemString(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"system": "Title: Support reply helper",
		"messages": [{"role": "user", "content": "Answer the customer"}]
	}`)

	r, err := ToInternal(raw, FormatAnthropic)
	if err != nil {
		t.Fatalf("ToInternal: %v", err)
	}
	if r.Metadata.Title != "Support reply helper" {
		t.Fatalf("title: got %q", r.Metadata.Title)
	}
	// No numbered list anywhere: fallback steps.
	if len(r.Human.Steps) != 3 {
		t.Fatalf("steps: got %v", r.Human.Steps)
	}
}

func TestToInternal_TitlePrecedence(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"_metadata": {"promptTitle": "Explicit title"},
		"messages": [{"role": "user", "content": "# Header title\nbody"}]
	}`)
	r, err := ToInternal(raw, FormatMeta)
	if err != nil {
		t.Fatalf("ToInternal: %v", err)
	}
	if r.Metadata.Title != "Explicit title" {
		t.Fatalf("title: got %q", r.Metadata.Title)
	}
}

func TestToInternal_TitleFromContentPrefix(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 80)
	raw := []byte(`{"messages": [{"role": "user", "content": "` + long + `"}]}`)
	r, err := ToInternal(raw, FormatMeta)
	if err != nil {
		t.Fatalf("ToInternal: %v", err)
	}
	if len(r.Metadata.Title) != 50 {
		t.Fatalf("title length: got %d (%q)", len(r.Metadata.Title), r.Metadata.Title)
	}
}

func TestToInternal_Internal(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"id": "should-be-cleared",
		"slug": "old-slug",
		"metadata": {"title": "Kept title", "owner": "alice"},
		"prompt_human": {"goal": "g", "steps": ["a"]}
	}`)
	r, err := ToInternal(raw, FormatInternal)
	if err != nil {
		t.Fatalf("ToInternal: %v", err)
	}
	if r.ID != "" || r.Slug != "" {
		t.Fatalf("identity not cleared: %q %q", r.ID, r.Slug)
	}
	if r.Metadata.Title != "Kept title" || r.Human.Goal != "g" {
		t.Fatalf("record: got %+v", r)
	}
}

func TestSanitizeFilenamePart(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"openai", "openai"},
		{"aws bedrock!", "aws_bedrock"},
		{"a///b", "a_b"},
		{"__x__", "x"},
		{"A-Z_0", "A-Z_0"},
	}
	for _, tc := range cases {
		if got := SanitizeFilenamePart(tc.in); got != tc.want {
			t.Fatalf("SanitizeFilenamePart(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	got := ExportFilename("welcome-email", "open ai", 3)
	if got != "welcome-email_open_ai_v3.json" {
		t.Fatalf("ExportFilename: got %q", got)
	}
}

func TestDetectVariant(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		title      string
		tags       []string
		meta       map[string]any
		variant    bool
		confidence float64
	}{
		{"clean", "Base prompt", []string{"email"}, nil, false, 0},
		{"enhanced tag", "Base prompt", []string{"enhanced"}, nil, true, 1.0 / 3},
		{"provider-model tag", "Base prompt", []string{"openai-gpt-4o"}, nil, true, 1.0 / 3},
		{"metadata key", "Base prompt", nil, map[string]any{"variant_of": "base-1"}, true, 1.0 / 3},
		{"title marker", "Base prompt (enhanced)", nil, nil, true, 1.0 / 3},
		{
			"all three capped",
			"Base prompt (openai-gpt-4o)",
			[]string{"enhanced", "openai-gpt-4o"},
			map[string]any{"tuned_for_provider": "openai", "preferred_model": "gpt-4o"},
			true, 1.0,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DetectVariant(tc.title, tc.tags, tc.meta)
			if got.IsVariant != tc.variant {
				t.Fatalf("IsVariant: got %v (%+v)", got.IsVariant, got)
			}
			if got.Confidence != tc.confidence {
				t.Fatalf("Confidence: got %v want %v", got.Confidence, tc.confidence)
			}
		})
	}
}

func TestCleanVariant(t *testing.T) {
	t.Parallel()

	r := &prompt.Record{
		Metadata: prompt.Metadata{
			Title: "Digest writer (openai-gpt-4o)",
			Tags:  []string{"email", "enhanced", "openai-gpt-4o"},
		},
	}
	CleanVariant(r)

	if r.Metadata.Title != "Digest writer" {
		t.Fatalf("title: got %q", r.Metadata.Title)
	}
	want := []string{"email", "base-prompt", "imported"}
	if len(r.Metadata.Tags) != len(want) {
		t.Fatalf("tags: got %v", r.Metadata.Tags)
	}
	for i, tag := range want {
		if r.Metadata.Tags[i] != tag {
			t.Fatalf("tags[%d]: got %q want %q", i, r.Metadata.Tags[i], tag)
		}
	}
}
