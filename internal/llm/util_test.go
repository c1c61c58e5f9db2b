package llm

import "testing"

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", `{"name":"a"}`, "a", false},
		{"fenced", "```json\n{\"name\":\"b\"}\n```", "b", false},
		{"surrounded", "Here you go:\n{\"name\":\"c\"}\nDone.", "c", false},
		{"empty", "", "", true},
		{"no object", "no json here", "", true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out payload
			err := ExtractJSON(tc.raw, &out)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ExtractJSON: expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON: %v", err)
			}
			if out.Name != tc.want {
				t.Fatalf("name: got %q want %q", out.Name, tc.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(NewOpenAIProvider("k", "", ""))
	r.Register(NewClaudeProvider("k", "", ""))

	if _, ok := r.Get(" OpenAI "); !ok {
		t.Fatalf("Get: expected case-insensitive hit")
	}
	if _, ok := r.Get("claude"); !ok {
		t.Fatalf("Get(claude): expected hit")
	}
	if _, ok := r.Get("meta"); ok {
		t.Fatalf("Get(meta): expected miss")
	}
}
