// Package history tracks who did what to a prompt: an in-process
// audit trail, per-user ratings, and run-log aggregation.
package history

import (
	"sync"
	"time"
)

// Action classifies an audit entry.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionEnhanced  Action = "enhanced"
	ActionRendered  Action = "rendered"
	ActionExported  Action = "exported"
	ActionImported  Action = "imported"
	ActionDeleted   Action = "deleted"
	ActionRated     Action = "rated"
	ActionVersioned Action = "versioned"
)

// Entry is one audit event for a prompt.
type Entry struct {
	PromptID string    `json:"prompt_id"`
	Action   Action    `json:"action"`
	Actor    string    `json:"actor"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Trail is an in-memory audit log. It lives for the process lifetime
// and is not persisted; callers inject it where auditing is wanted.
type Trail struct {
	mu      sync.Mutex
	entries map[string][]Entry

	// Now is stubbed in tests.
	Now func() time.Time
}

func NewTrail() *Trail {
	return &Trail{
		entries: make(map[string][]Entry),
		Now:     time.Now,
	}
}

// Record appends an audit entry for the prompt.
func (t *Trail) Record(promptID string, action Action, actor, detail string) {
	if t == nil || promptID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[promptID] = append(t.entries[promptID], Entry{
		PromptID: promptID,
		Action:   action,
		Actor:    actor,
		Detail:   detail,
		At:       t.Now().UTC(),
	})
}

// Entries returns a copy of the prompt's audit entries in insertion
// order.
func (t *Trail) Entries(promptID string) []Entry {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stored := t.entries[promptID]
	if len(stored) == 0 {
		return nil
	}
	out := make([]Entry, len(stored))
	copy(out, stored)
	return out
}

// Forget drops the prompt's audit entries, for use after deletion.
func (t *Trail) Forget(promptID string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, promptID)
}
