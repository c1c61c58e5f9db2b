package version

import (
	"sort"
	"strings"
	"time"

	"github.com/stellarlinkco/promptvault/internal/prompt"
)

// Create builds an immutable version entry for a record. The entry is
// tagged with the record's current (pre-increment) version number;
// bumping record.Version is the caller's responsibility and must
// happen alongside appending the entry.
func Create(r *prompt.Record, author, message string) (prompt.Version, error) {
	author = strings.TrimSpace(author)
	message = strings.TrimSpace(message)

	var errs []string
	if author == "" {
		errs = append(errs, "author must not be empty")
	}
	if message == "" {
		errs = append(errs, "message must not be empty")
	}
	if len(errs) > 0 {
		return prompt.Version{}, prompt.Validationf("%s", strings.Join(errs, "; "))
	}

	return prompt.Version{
		Number:    r.Version,
		Message:   message,
		CreatedAt: time.Now().UTC(),
		Author:    author,
	}, nil
}

// History returns the record's version entries, most recent first.
func History(r *prompt.Record) []prompt.Version {
	out := make([]prompt.Version, len(r.History.Versions))
	copy(out, r.History.Versions)
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out
}

// Details returns the entry with the given number, or nil.
func Details(r *prompt.Record, number int) *prompt.Version {
	for i := range r.History.Versions {
		if r.History.Versions[i].Number == number {
			v := r.History.Versions[i]
			return &v
		}
	}
	return nil
}

// Validate checks a single version entry.
func Validate(v *prompt.Version) prompt.ValidationResult {
	var errs []string
	if v.Number < 1 {
		errs = append(errs, "number must be a positive integer")
	}
	if strings.TrimSpace(v.Message) == "" {
		errs = append(errs, "message must not be empty")
	}
	if strings.TrimSpace(v.Author) == "" {
		errs = append(errs, "author must not be empty")
	}
	if v.CreatedAt.IsZero() {
		errs = append(errs, "created_at must be a valid date")
	}
	return prompt.Invalid(errs...)
}
