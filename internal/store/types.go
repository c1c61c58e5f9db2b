package store

import (
	"context"
	"time"

	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/provider"
)

// PromptWriter defines persistence for prompt records.
type PromptWriter interface {
	// SavePrompt persists the record. Last write wins: there is no
	// compare-and-swap on version.
	SavePrompt(ctx context.Context, r *prompt.Record) error
	DeletePrompt(ctx context.Context, id string) error
}

// PromptReader defines read access to prompt records.
type PromptReader interface {
	LoadPrompt(ctx context.Context, id string) (*prompt.Record, error)
	LoadPromptBySlug(ctx context.Context, slug string) (*prompt.Record, error)
	ListPrompts(ctx context.Context, filter Filter) ([]*prompt.Record, error)
	SearchPrompts(ctx context.Context, filter Filter) ([]*prompt.Record, error)
	PromptExists(ctx context.Context, id string) (bool, error)
	// GenerateSlug derives a slug from title that is unique across
	// all stored prompts.
	GenerateSlug(ctx context.Context, title string) (string, error)
}

// RenderCache memoizes provider payloads keyed by
// (prompt id, provider, prompt version). One entry per combination.
type RenderCache interface {
	GetCachedRender(ctx context.Context, id, providerID string, version int) (*provider.Payload, error)
	CacheRender(ctx context.Context, id, providerID string, version int, p *provider.Payload) error
}

// RunLogWriter records render/usage outcomes.
type RunLogWriter interface {
	SaveRunLog(ctx context.Context, log *RunLog) error
	ListRunLogs(ctx context.Context, promptID string) ([]*RunLog, error)
}

// Store is the full persistence surface consumed by the manager.
type Store interface {
	PromptWriter
	PromptReader
	RenderCache
	RunLogWriter
	Close() error
}

// Filter narrows prompt listings and searches.
type Filter struct {
	Status prompt.Status
	Owner  string
	Tag    string
	Query  string // free text over title and summary
	Limit  int
}

// RunLog is one recorded prompt execution.
type RunLog struct {
	ID        string    `json:"id"`
	PromptID  string    `json:"prompt_id"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Success   bool      `json:"success"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}
