package version

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

// ChangeType classifies a single field diff.
type ChangeType string

const (
	Added    ChangeType = "added"
	Modified ChangeType = "modified"
	Removed  ChangeType = "removed"
)

// Diff is one changed field between two record snapshots. Field is a
// dotted path.
type Diff struct {
	Field      string     `json:"field"`
	OldValue   any        `json:"old_value,omitempty"`
	NewValue   any        `json:"new_value,omitempty"`
	ChangeType ChangeType `json:"change_type"`
}

// Comparison is the structural diff between two record snapshots.
type Comparison struct {
	FromVersion int    `json:"from_version"`
	ToVersion   int    `json:"to_version"`
	Changes     []Diff `json:"changes"`
	Summary     string `json:"summary"`
}

// Compare computes a field-by-field diff between two snapshots in a
// fixed field order.
func Compare(oldR, newR *prompt.Record) Comparison {
	var changes []Diff

	changes = appendScalar(changes, "metadata.title", oldR.Metadata.Title, newR.Metadata.Title)
	changes = appendScalar(changes, "metadata.summary", oldR.Metadata.Summary, newR.Metadata.Summary)
	changes = appendScalar(changes, "metadata.owner", oldR.Metadata.Owner, newR.Metadata.Owner)
	if !sameTagSet(oldR.Metadata.Tags, newR.Metadata.Tags) {
		changes = append(changes, diffOf("metadata.tags", oldR.Metadata.Tags, newR.Metadata.Tags, len(oldR.Metadata.Tags) == 0, len(newR.Metadata.Tags) == 0))
	}

	changes = appendScalar(changes, "prompt_human.goal", oldR.Human.Goal, newR.Human.Goal)
	changes = appendScalar(changes, "prompt_human.audience", oldR.Human.Audience, newR.Human.Audience)
	if !sameStrings(oldR.Human.Steps, newR.Human.Steps) {
		changes = append(changes, diffOf("prompt_human.steps", oldR.Human.Steps, newR.Human.Steps, len(oldR.Human.Steps) == 0, len(newR.Human.Steps) == 0))
	}
	changes = appendScalar(changes, "prompt_human.output_expectations.format", oldR.Human.Output.Format, newR.Human.Output.Format)
	if !sameStrings(oldR.Human.Output.Fields, newR.Human.Output.Fields) {
		changes = append(changes, diffOf("prompt_human.output_expectations.fields", oldR.Human.Output.Fields, newR.Human.Output.Fields, len(oldR.Human.Output.Fields) == 0, len(newR.Human.Output.Fields) == 0))
	}

	changes = append(changes, diffStructured(oldR.Structured, newR.Structured)...)
	changes = append(changes, diffVariables(oldR.Variables, newR.Variables)...)

	return Comparison{
		FromVersion: oldR.Version,
		ToVersion:   newR.Version,
		Changes:     changes,
		Summary:     Summarize(changes),
	}
}

/// Summarize renders changes grouped by type, clause order fixed:
// Modified, Added, Removed. Empty groups are omitted.
func Summarize(changes []Diff) string {
	if len(changes) == 0 {
		return "No changes detected"
	}

	groups := map[ChangeType][]string{}
	for _, c := range changes {
		groups[c.ChangeType] = append(groups[c.ChangeType], c.Field)
	}

	var clauses []string
	for _, g := range []struct {
		label string
		ct    ChangeType
	}{
		{"Modified", Modified},
		{"Added", Added},
		{"Removed", Removed},
	} {
		if fields := groups[g.ct]; len(fields) > 0 {
			clauses = append(clauses, fmt.Sprintf("%s: %s", g.label, strings.Join(fields, ", ")))
		}
	}
	return strings.Join(clauses, "; ")
}

func appendScalar(changes []Diff, field, oldV, newV string) []Diff {
	if oldV == newV {
		return changes
	}
	return append(changes, diffOf(field, oldV, newV, oldV == "", newV == ""))
}

func diffOf(field string, oldV, newV any, oldEmpty, newEmpty bool) Diff {
	ct := Modified
	switch {
	case oldEmpty && !newEmpty:
		ct = Added
	case !oldEmpty && newEmpty:
		ct = Removed
	}
	return Diff{Field: field, OldValue: oldV, NewValue: newV, ChangeType: ct}
}

func diffStructured(oldS, newS *prompt.StructuredPrompt) []Diff {
	switch {
	case oldS == nil && newS == nil:
		return nil
	case oldS == nil:
		return []Diff{{Field: "prompt_structured", NewValue: newS, ChangeType: Added}}
	case newS == nil:
		return []Diff{{Field: "prompt_structured", OldValue: oldS, ChangeType: Removed}}
	}

	var changes []Diff
	changes = appendScalar(changes, "prompt_structured.schema_version", oldS.SchemaVersion, newS.SchemaVersion)
	if !sameStrings(oldS.System, newS.System) {
		changes = append(changes, diffOf("prompt_structured.system", oldS.System, newS.System, len(oldS.System) == 0, len(newS.System) == 0))
	}
	if !sameStrings(oldS.Capabilities, newS.Capabilities) {
		changes = append(changes, diffOf("prompt_structured.capabilities", oldS.Capabilities, newS.Capabilities, len(oldS.Capabilities) == 0, len(newS.Capabilities) == 0))
	}
	changes = appendScalar(changes, "prompt_structured.user_template", oldS.UserTemplate, newS.UserTemplate)
	if !sameStrings(oldS.Variables, newS.Variables) {
		changes = append(changes, diffOf("prompt_structured.variables", oldS.Variables, newS.Variables, len(oldS.Variables) == 0, len(newS.Variables) == 0))
	}
	if !sameRules(oldS.Rules, newS.Rules) {
		changes = append(changes, diffOf("prompt_structured.rules", oldS.Rules, newS.Rules, len(oldS.Rules) == 0, len(newS.Rules) == 0))
	}
	return changes
}

// diffVariables keys variables by Key. Removed and modified entries
// come out in old-slice order, added entries in new-slice order.
func diffVariables(oldV, newV []prompt.Variable) []Diff {
	newByKey := make(map[string]*prompt.Variable, len(newV))
	for i := range newV {
		newByKey[newV[i].Key] = &newV[i]
	}
	oldByKey := make(map[string]*prompt.Variable, len(oldV))
	for i := range oldV {
		oldByKey[oldV[i].Key] = &oldV[i]
	}

	var changes []Diff
	for i := range oldV {
		o := &oldV[i]
		n, ok := newByKey[o.Key]
		if !ok {
			changes = append(changes, Diff{Field: "variables." + o.Key, OldValue: *o, ChangeType: Removed})
			continue
		}
		if !sameVariable(o, n) {
			changes = append(changes, Diff{Field: "variables." + o.Key, OldValue: *o, NewValue: *n, ChangeType: Modified})
		}
	}
	for i := range newV {
		n := &newV[i]
		if _, ok := oldByKey[n.Key]; !ok {
			changes = append(changes, Diff{Field: "variables." + n.Key, NewValue: *n, ChangeType: Added})
		}
	}
	return changes
}

func sameVariable(a, b *prompt.Variable) bool {
	return a.Key == b.Key &&
		a.Label == b.Label &&
		a.Type == b.Type &&
		a.Required == b.Required &&
		a.Sensitive == b.Sensitive &&
		a.Default == b.Default &&
		sameStrings(a.Options, b.Options)
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sameTagSet compares tags order-insensitively.
func sameTagSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	return sameStrings(as, bs)
}

func sameRules(a, b []prompt.Rule) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Description != b[i].Description {
			return false
		}
	}
	return true
}
