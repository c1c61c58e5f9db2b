package prompt

import "time"

// Status is the lifecycle state of a prompt record.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusActive, StatusArchived:
		return true
	}
	return false
}

// Record is a stored prompt with its human specification, optional
// structured form, variables, version history and render metadata.
type Record struct {
	ID        string            `yaml:"id" json:"id"`
	Slug      string            `yaml:"slug" json:"slug"`
	Version   int               `yaml:"version" json:"version"`
	Status    Status            `yaml:"status" json:"status"`
	Metadata  Metadata          `yaml:"metadata" json:"metadata"`
	Human     HumanPrompt       `yaml:"prompt_human" json:"prompt_human"`
	Structured *StructuredPrompt `yaml:"prompt_structured,omitempty" json:"prompt_structured,omitempty"`
	Variables []Variable        `yaml:"variables,omitempty" json:"variables,omitempty"`
	History   History           `yaml:"history" json:"history"`
	Renders   []RenderRef       `yaml:"renders,omitempty" json:"renders,omitempty"`
	CreatedAt time.Time         `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time         `yaml:"updated_at" json:"updated_at"`
}

// Metadata carries display fields for a prompt record.
type Metadata struct {
	Title   string   `yaml:"title" json:"title"`
	Summary string   `yaml:"summary,omitempty" json:"summary,omitempty"`
	Tags    []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Owner   string   `yaml:"owner" json:"owner"`
}

// HumanPrompt is the free-form prompt specification. Always present.
type HumanPrompt struct {
	Goal     string             `yaml:"goal" json:"goal"`
	Audience string             `yaml:"audience,omitempty" json:"audience,omitempty"`
	Steps    []string           `yaml:"steps,omitempty" json:"steps,omitempty"`
	Output   OutputExpectations `yaml:"output_expectations" json:"output_expectations"`
}

// OutputExpectations describes the expected shape of model output.
type OutputExpectations struct {
	Format string   `yaml:"format,omitempty" json:"format,omitempty"`
	Fields []string `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// StructuredPrompt is the enhanced, variable-parameterized form of a
// prompt. Present only after enhancement.
type StructuredPrompt struct {
	SchemaVersion string   `yaml:"schema_version" json:"schema_version"`
	System        []string `yaml:"system,omitempty" json:"system,omitempty"`
	Capabilities  []string `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	UserTemplate  string   `yaml:"user_template" json:"user_template"`
	Rules         []Rule   `yaml:"rules,omitempty" json:"rules,omitempty"`
	Variables     []string `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// Rule is a named constraint attached to a structured prompt.
type Rule struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// VarType is the declared type of a prompt variable.
type VarType string

const (
	VarString      VarType = "string"
	VarNumber      VarType = "number"
	VarSelect      VarType = "select"
	VarMultiselect VarType = "multiselect"
	VarBoolean     VarType = "boolean"
)

// ValidVarType reports whether t is a known variable type.
func ValidVarType(t VarType) bool {
	switch t {
	case VarString, VarNumber, VarSelect, VarMultiselect, VarBoolean:
		return true
	}
	return false
}

// Variable defines a template variable and its constraints.
type Variable struct {
	Key       string   `yaml:"key" json:"key"`
	Label     string   `yaml:"label,omitempty" json:"label,omitempty"`
	Type      VarType  `yaml:"type" json:"type"`
	Required  bool     `yaml:"required" json:"required"`
	Options   []string `yaml:"options,omitempty" json:"options,omitempty"`
	Sensitive bool     `yaml:"sensitive,omitempty" json:"sensitive,omitempty"`
	Default   string   `yaml:"default_value,omitempty" json:"default_value,omitempty"`
}

// Version is an immutable history entry. Number records the record's
// version at the time of the edit that produced the entry, not the
// post-update value.
type Version struct {
	Number    int       `yaml:"number" json:"number"`
	Message   string    `yaml:"message" json:"message"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	Author    string    `yaml:"author" json:"author"`
}

// Rating is a user score attached to a record, latest per user.
type Rating struct {
	User      string    `yaml:"user" json:"user"`
	Score     int       `yaml:"score" json:"score"`
	Note      string    `yaml:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// History holds version entries and ratings for a record. Ratings are
// not version-scoped.
type History struct {
	Versions []Version `yaml:"versions,omitempty" json:"versions,omitempty"`
	Ratings  []Rating  `yaml:"ratings,omitempty" json:"ratings,omitempty"`
}

// RenderRef points at a cached render artifact. At most one entry
// exists per (provider, version) pair.
type RenderRef struct {
	Provider        string    `yaml:"provider" json:"provider"`
	ModelHint       string    `yaml:"model_hint,omitempty" json:"model_hint,omitempty"`
	VersionOfPrompt int       `yaml:"version_of_prompt" json:"version_of_prompt"`
	CreatedAt       time.Time `yaml:"created_at" json:"created_at"`
	ContentRef      string    `yaml:"content_ref" json:"content_ref"`
}

// ValidationResult collects non-fatal validation findings. Callers
// decide whether a failed result is fatal.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Invalid builds a failed result from the given findings.
func Invalid(errs ...string) ValidationResult {
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
