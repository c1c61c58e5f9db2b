package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/store"
	"github.com/stellarlinkco/promptvault/internal/version"
)

// ConflictResolution selects what to do when an imported prompt's
// slug collides with an existing record.
type ConflictResolution string

const (
	ConflictSkip      ConflictResolution = "skip"
	ConflictOverwrite ConflictResolution = "overwrite"
	ConflictCreateNew ConflictResolution = "create_new"
	// ConflictPrompt defers to create_new in non-interactive contexts.
	ConflictPrompt ConflictResolution = "prompt"
)

// Outcome tags an import result so callers cannot confuse a skip
// with a failure.
type Outcome string

const (
	OutcomeImported Outcome = "imported"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// Result is the tagged outcome of importing one payload.
type Result struct {
	Outcome Outcome        `json:"outcome"`
	Record  *prompt.Record `json:"record,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Err     error          `json:"-"`
	Path    string         `json:"path,omitempty"`
}

// Options control a single import.
type Options struct {
	Conflict ConflictResolution
	Author   string
	// AsVariant requests the variant-specific import path. Declared
	// but not implemented; detection still runs and the default path
	// imports a cleaned base prompt.
	AsVariant bool
}

// BatchResult aggregates a multi-file import. Partial success is the
// designed behavior: failures do not abort the batch.
type BatchResult struct {
	Imported []Result `json:"imported"`
	Skipped  []Result `json:"skipped"`
	Failed   []Result `json:"failed"`
}

// Importer converts provider payloads into stored prompt records.
type Importer struct {
	Store store.Store
	// Now is stubbed in tests for deterministic slug suffixes.
	Now func() time.Time
}

func NewImporter(st store.Store) *Importer {
	return &Importer{Store: st, Now: time.Now}
}

// ImportContent detects, converts, and persists one payload.
func (im *Importer) ImportContent(ctx context.Context, raw []byte, opts Options) Result {
	if im == nil || im.Store == nil {
		return failed(errors.New("convert: nil importer"))
	}

	detection := DetectFormat(raw)
	if detection.Confidence == 0 {
		return failed(prompt.Validationf("unrecognized prompt format"))
	}

	record, err := ToInternal(raw, detection.Provider)
	if err != nil {
		return failed(err)
	}

	variant := DetectVariant(record.Metadata.Title, record.Metadata.Tags, rawMetadata(raw))
	if variant.IsVariant {
		if opts.AsVariant {
			return failed(prompt.Validationf("variant import is not implemented; re-import without the variant option to import as a base prompt"))
		}
		CleanVariant(record)
	}

	author := strings.TrimSpace(opts.Author)
	if author == "" {
		author = "importer"
	}

	slug := prompt.Slugify(record.Metadata.Title)
	existing, err := im.Store.LoadPromptBySlug(ctx, slug)
	switch {
	case err == nil:
		return im.resolveConflict(ctx, record, existing, author, opts)
	case errors.Is(err, prompt.ErrNotFound):
		return im.create(ctx, record, author, detection.Provider)
	default:
		return failed(err)
	}
}

func (im *Importer) create(ctx context.Context, record *prompt.Record, author string, format Format) Result {
	slug, err := im.Store.GenerateSlug(ctx, record.Metadata.Title)
	if err != nil {
		return failed(err)
	}

	record.ID = uuid.NewString()
	record.Slug = slug
	record.Version = 1
	now := im.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	entry, err := version.Create(record, author, fmt.Sprintf("Imported from %s format", format))
	if err != nil {
		return failed(err)
	}
	record.History.Versions = append(record.History.Versions, entry)

	if err := im.Store.SavePrompt(ctx, record); err != nil {
		return failed(err)
	}
	return Result{Outcome: OutcomeImported, Record: record}
}

func (im *Importer) resolveConflict(ctx context.Context, record, existing *prompt.Record, author string, opts Options) Result {
	switch opts.Conflict {
	case ConflictSkip:
		return Result{
			Outcome: OutcomeSkipped,
			Reason:  fmt.Sprintf("prompt with slug %q already exists", existing.Slug),
		}

	case ConflictOverwrite:
		merged := mergeForOverwrite(existing, record)
		entry, err := version.Create(merged, author, "Imported update (overwrite)")
		if err != nil {
			return failed(err)
		}
		merged.History.Versions = append(merged.History.Versions, entry)
		merged.Version++
		merged.UpdatedAt = im.now()
		if err := im.Store.SavePrompt(ctx, merged); err != nil {
			return failed(err)
		}
		return Result{Outcome: OutcomeImported, Record: merged}

	case ConflictCreateNew, ConflictPrompt, "":
		record.Metadata.Title += " (Imported)"
		record.Slug = fmt.Sprintf("%s-imported-%d", existing.Slug, im.now().Unix())
		record.ID = uuid.NewString()
		record.Version = 1
		now := im.now()
		record.CreatedAt = now
		record.UpdatedAt = now
		entry, err := version.Create(record, author, "Imported as new prompt after slug conflict")
		if err != nil {
			return failed(err)
		}
		record.History.Versions = append(record.History.Versions, entry)
		if err := im.Store.SavePrompt(ctx, record); err != nil {
			return failed(err)
		}
		return Result{Outcome: OutcomeImported, Record: record}

	default:
		return failed(prompt.Validationf("unknown conflict resolution %q", opts.Conflict))
	}
}

// mergeForOverwrite keeps the existing record's identity and any
// metadata the incoming payload leaves blank.
func mergeForOverwrite(existing, incoming *prompt.Record) *prompt.Record {
	merged := *existing
	if strings.TrimSpace(incoming.Metadata.Title) != "" {
		merged.Metadata.Title = incoming.Metadata.Title
	}
	if strings.TrimSpace(incoming.Metadata.Summary) != "" {
		merged.Metadata.Summary = incoming.Metadata.Summary
	}
	if strings.TrimSpace(incoming.Metadata.Owner) != "" {
		merged.Metadata.Owner = incoming.Metadata.Owner
	}
	if len(incoming.Metadata.Tags) > 0 {
		merged.Metadata.Tags = incoming.Metadata.Tags
	}
	merged.Human = incoming.Human
	if incoming.Structured != nil {
		merged.Structured = incoming.Structured
	}
	if len(incoming.Variables) > 0 {
		merged.Variables = incoming.Variables
	}
	return &merged
}

// ImportFiles processes paths sequentially. A failure on one file is
// recorded and processing continues.
func (im *Importer) ImportFiles(ctx context.Context, paths []string, opts Options) *BatchResult {
	batch := &BatchResult{}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			res := failed(fmt.Errorf("convert: read %q: %w", path, err))
			res.Path = path
			batch.Failed = append(batch.Failed, res)
			continue
		}
		res := im.ImportContent(ctx, raw, opts)
		res.Path = path
		switch res.Outcome {
		case OutcomeImported:
			batch.Imported = append(batch.Imported, res)
		case OutcomeSkipped:
			batch.Skipped = append(batch.Skipped, res)
		default:
			batch.Failed = append(batch.Failed, res)
		}
	}
	return batch
}

// ImportDir imports every .json file in a directory, in name order.
func (im *Importer) ImportDir(ctx context.Context, dir string, opts Options) (*BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("convert: read dir %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return im.ImportFiles(ctx, paths, opts), nil
}

func (im *Importer) now() time.Time {
	if im.Now != nil {
		return im.Now()
	}
	return time.Now()
}

func failed(err error) Result {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return Result{Outcome: OutcomeFailed, Err: err, Reason: reason}
}
