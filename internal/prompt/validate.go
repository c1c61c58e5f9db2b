package prompt

import (
	"fmt"
	"strings"
)

// ValidateRecord checks a full record and returns every violation
// found, not just the first.
func ValidateRecord(r *Record) ValidationResult {
	if r == nil {
		return Invalid("record is nil")
	}

	var errs []string
	if strings.TrimSpace(r.Metadata.Title) == "" {
		errs = append(errs, "metadata.title must not be empty")
	}
	if strings.TrimSpace(r.Metadata.Owner) == "" {
		errs = append(errs, "metadata.owner must not be empty")
	}
	if !ValidStatus(r.Status) {
		errs = append(errs, fmt.Sprintf("status %q is not one of draft, active, archived", r.Status))
	}
	if r.Version < 1 {
		errs = append(errs, fmt.Sprintf("version must be a positive integer, got %d", r.Version))
	}
	errs = append(errs, validateHuman(&r.Human)...)
	for i := range r.Variables {
		errs = append(errs, ValidateVariable(&r.Variables[i])...)
	}
	for _, rt := range r.History.Ratings {
		if rt.Score < 1 || rt.Score > 5 {
			errs = append(errs, fmt.Sprintf("rating by %q: score %d out of range 1..5", rt.User, rt.Score))
		}
	}
	if r.Structured != nil {
		for _, rule := range r.Structured.Rules {
			if strings.TrimSpace(rule.Name) == "" {
				errs = append(errs, "structured rule with empty name")
			}
		}
	}
	return Invalid(errs...)
}

func validateHuman(h *HumanPrompt) []string {
	var errs []string
	if strings.TrimSpace(h.Goal) == "" {
		errs = append(errs, "prompt_human.goal must not be empty")
	}
	for i, step := range h.Steps {
		if strings.TrimSpace(step) == "" {
			errs = append(errs, fmt.Sprintf("prompt_human.steps[%d] is empty", i))
		}
	}
	return errs
}

// ValidateVariable checks a single variable definition.
func ValidateVariable(v *Variable) []string {
	var errs []string
	if strings.TrimSpace(v.Key) == "" {
		errs = append(errs, "variable with empty key")
		return errs
	}
	if !ValidVarType(v.Type) {
		errs = append(errs, fmt.Sprintf("variable %q: unknown type %q", v.Key, v.Type))
	}
	if (v.Type == VarSelect || v.Type == VarMultiselect) && len(v.Options) == 0 {
		errs = append(errs, fmt.Sprintf("variable %q: type %s requires non-empty options", v.Key, v.Type))
	}
	return errs
}

// ValidationError folds a failed result into a single validation
// error listing all findings.
func ValidationError(res ValidationResult) error {
	if res.Valid {
		return nil
	}
	return Validationf("%s", strings.Join(res.Errors, "; "))
}
