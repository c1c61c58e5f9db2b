// Package manager orchestrates storage, enhancement, substitution,
// versioning and provider adapters behind one facade.
package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stellarlinkco/promptvault/internal/convert"
	"github.com/stellarlinkco/promptvault/internal/enhance"
	"github.com/stellarlinkco/promptvault/internal/history"
	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/provider"
	"github.com/stellarlinkco/promptvault/internal/store"
	"github.com/stellarlinkco/promptvault/internal/template"
	"github.com/stellarlinkco/promptvault/internal/version"
)

// Manager is the orchestrator facade consumed by the HTTP layer and
// the CLI. All state lives in the injected collaborators.
type Manager struct {
	store     store.Store
	providers *provider.Registry
	agent     enhance.Agent
	trail     *history.Trail

	// Now is stubbed in tests.
	Now func() time.Time
}

// New wires a manager. agent and trail may be nil: enhancement then
// fails with a precondition error and auditing is skipped.
func New(st store.Store, providers *provider.Registry, agent enhance.Agent, trail *history.Trail) *Manager {
	return &Manager{
		store:     st,
		providers: providers,
		agent:     agent,
		trail:     trail,
		Now:       time.Now,
	}
}

func (m *Manager) audit(promptID string, action history.Action, actor, detail string) {
	if m.trail != nil {
		m.trail.Record(promptID, action, actor, detail)
	}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateInput is the caller-supplied shape for a new prompt.
type CreateInput struct {
	Title   string             `json:"title"`
	Summary string             `json:"summary,omitempty"`
	Tags    []string           `json:"tags,omitempty"`
	Owner   string             `json:"owner"`
	Human   prompt.HumanPrompt `json:"prompt_human"`
	Author  string             `json:"author,omitempty"`
}

// Create validates and persists a new draft record at version 1 with
// one initial version entry.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*prompt.Record, error) {
	r := &prompt.Record{
		Version: 1,
		Status:  prompt.StatusDraft,
		Metadata: prompt.Metadata{
			Title:   strings.TrimSpace(in.Title),
			Summary: in.Summary,
			Tags:    in.Tags,
			Owner:   strings.TrimSpace(in.Owner),
		},
		Human: in.Human,
	}
	if res := prompt.ValidateRecord(r); !res.Valid {
		return nil, prompt.ValidationError(res)
	}

	slug, err := m.store.GenerateSlug(ctx, r.Metadata.Title)
	if err != nil {
		return nil, err
	}
	r.ID = uuid.NewString()
	r.Slug = slug
	now := m.now()
	r.CreatedAt = now
	r.UpdatedAt = now

	author := authorOr(in.Author, r.Metadata.Owner)
	entry, err := version.Create(r, author, "Initial version")
	if err != nil {
		return nil, err
	}
	r.History.Versions = append(r.History.Versions, entry)

	if err := m.store.SavePrompt(ctx, r); err != nil {
		return nil, err
	}
	m.audit(r.ID, history.ActionCreated, author, r.Slug)
	return r, nil
}

// UpdateInput is a partial update. Nil pointer fields and nil slices
// leave the stored value unchanged.
type UpdateInput struct {
	Title     *string             `json:"title,omitempty"`
	Summary   *string             `json:"summary,omitempty"`
	Tags      []string            `json:"tags,omitempty"`
	Owner     *string             `json:"owner,omitempty"`
	Status    *prompt.Status      `json:"status,omitempty"`
	Human     *prompt.HumanPrompt `json:"prompt_human,omitempty"`
	Variables []prompt.Variable   `json:"variables,omitempty"`
	Message   string              `json:"message,omitempty"`
	Author    string              `json:"author,omitempty"`
}

// Update merges the patch, validates the result, and bumps the
// version only when the structural diff is non-empty. A no-op patch
// leaves version and history untouched.
func (m *Manager) Update(ctx context.Context, id string, in UpdateInput) (*prompt.Record, error) {
	existing, err := m.store.LoadPrompt(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if in.Title != nil {
		updated.Metadata.Title = strings.TrimSpace(*in.Title)
	}
	if in.Summary != nil {
		updated.Metadata.Summary = *in.Summary
	}
	if in.Tags != nil {
		updated.Metadata.Tags = in.Tags
	}
	if in.Owner != nil {
		updated.Metadata.Owner = strings.TrimSpace(*in.Owner)
	}
	if in.Status != nil {
		updated.Status = *in.Status
	}
	if in.Human != nil {
		updated.Human = *in.Human
	}
	if in.Variables != nil {
		updated.Variables = in.Variables
	}

	if res := prompt.ValidateRecord(&updated); !res.Valid {
		return nil, prompt.ValidationError(res)
	}

	cmp := version.Compare(existing, &updated)
	if len(cmp.Changes) == 0 {
		return existing, nil
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		message = cmp.Summary
	}
	author := authorOr(in.Author, updated.Metadata.Owner)
	entry, err := version.Create(&updated, author, message)
	if err != nil {
		return nil, err
	}
	updated.History.Versions = append(updated.History.Versions, entry)
	updated.Version++
	updated.UpdatedAt = m.now()

	if err := m.store.SavePrompt(ctx, &updated); err != nil {
		return nil, err
	}
	m.audit(updated.ID, history.ActionUpdated, author, cmp.Summary)
	return &updated, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*prompt.Record, error) {
	return m.store.LoadPrompt(ctx, id)
}

func (m *Manager) GetBySlug(ctx context.Context, slug string) (*prompt.Record, error) {
	return m.store.LoadPromptBySlug(ctx, slug)
}

func (m *Manager) List(ctx context.Context, filter store.Filter) ([]*prompt.Record, error) {
	return m.store.ListPrompts(ctx, filter)
}

func (m *Manager) Search(ctx context.Context, filter store.Filter) ([]*prompt.Record, error) {
	return m.store.SearchPrompts(ctx, filter)
}

// Delete removes the record and its cached renders.
func (m *Manager) Delete(ctx context.Context, id string, actor string) error {
	if err := m.store.DeletePrompt(ctx, id); err != nil {
		return err
	}
	m.audit(id, history.ActionDeleted, actor, "")
	return nil
}

// Enhance runs the enhancement agent and persists the structured
// prompt atomically: nothing is written unless the agent succeeds.
func (m *Manager) Enhance(ctx context.Context, id, contextNote, author string) (*prompt.Record, error) {
	if m.agent == nil {
		return nil, prompt.Preconditionf("no enhancement agent is configured")
	}
	existing, err := m.store.LoadPrompt(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := m.agent.Enhance(ctx, &existing.Human, contextNote)
	if err != nil {
		return nil, prompt.Externalf("Enhancement failed: %v", err)
	}
	if result == nil || result.Structured == nil {
		return nil, prompt.Externalf("Enhancement failed: agent returned no structured prompt")
	}
	if res := m.agent.ValidateStructured(result.Structured); !res.Valid {
		return nil, prompt.Externalf("Enhancement failed: %s", strings.Join(res.Errors, "; "))
	}

	updated := *existing
	updated.Structured = result.Structured
	updated.Variables = m.agent.ExtractVariables(result.Structured.UserTemplate)

	rationale := strings.TrimSpace(result.Rationale)
	if rationale == "" {
		rationale = "structured prompt generated"
	}
	author = authorOr(author, updated.Metadata.Owner)
	entry, err := version.Create(&updated, author, fmt.Sprintf("Enhanced prompt: %s", rationale))
	if err != nil {
		return nil, err
	}
	updated.History.Versions = append(updated.History.Versions, entry)
	updated.Version++
	updated.UpdatedAt = m.now()

	if err := m.store.SavePrompt(ctx, &updated); err != nil {
		return nil, err
	}
	m.audit(updated.ID, history.ActionEnhanced, author, rationale)
	return &updated, nil
}

// Render materializes the prompt into a provider-native payload. The
// cache is keyed by (id, provider, version); a hit is reused when the
// model matches, without calling the adapter.
func (m *Manager) Render(ctx context.Context, id, providerID string, opts provider.RenderOptions) (*provider.Payload, error) {
	record, err := m.store.LoadPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Structured == nil {
		return nil, prompt.Preconditionf("prompt %q must be enhanced before rendering", record.Slug)
	}

	adapter, ok := m.providers.Get(providerID)
	if !ok {
		return nil, prompt.NotFoundf("unknown provider %q", providerID)
	}
	model := opts.Model
	if strings.TrimSpace(model) == "" {
		model = adapter.DefaultOptions().Model
	}
	if !adapter.Supports(model) {
		return nil, prompt.Validationf("model %q is not supported by provider %q", model, adapter.ID())
	}

	cached, err := m.store.GetCachedRender(ctx, record.ID, adapter.ID(), record.Version)
	if err != nil {
		return nil, err
	}
	if cached != nil && cached.Model == model {
		return cached, nil
	}

	if res := template.ValidateSubstitution(record.Structured.UserTemplate, record.Variables, opts.Variables); !res.Valid {
		return nil, prompt.ValidationError(res)
	}

	defaults := make(map[string]string, len(record.Variables))
	for _, v := range record.Variables {
		if v.Default != "" {
			defaults[v.Key] = v.Default
		}
	}
	rendered, err := template.Substitute(record.Structured.UserTemplate, opts.Variables, template.Options{Defaults: defaults})
	if err != nil {
		return nil, err
	}

	structured := *record.Structured
	structured.UserTemplate = rendered
	renderOpts := opts
	renderOpts.Model = model

	start := m.now()
	payload, err := adapter.Render(&structured, renderOpts)
	if err != nil {
		m.logRun(ctx, record.ID, adapter.ID(), model, false, start)
		return nil, err
	}
	if res := adapter.Validate(payload); !res.Valid {
		m.logRun(ctx, record.ID, adapter.ID(), model, false, start)
		return nil, prompt.ValidationError(res)
	}
	payload.VariablesUsed = variablesUsed(record.Structured.UserTemplate, opts.Variables)

	if err := m.store.CacheRender(ctx, record.ID, adapter.ID(), record.Version, payload); err != nil {
		return nil, err
	}
	upsertRenderRef(record, prompt.RenderRef{
		Provider:        adapter.ID(),
		ModelHint:       model,
		VersionOfPrompt: record.Version,
		CreatedAt:       m.now(),
		ContentRef:      store.ContentRef(record.ID, adapter.ID(), record.Version),
	})
	record.UpdatedAt = m.now()
	if err := m.store.SavePrompt(ctx, record); err != nil {
		return nil, err
	}

	m.logRun(ctx, record.ID, adapter.ID(), model, true, start)
	m.audit(record.ID, history.ActionRendered, "", adapter.ID())
	return payload, nil
}

// variablesUsed intersects the template's variables with the provided
// value keys, in template order. With no values given, every template
// variable is reported.
func variablesUsed(tmpl string, values map[string]any) []string {
	names := template.ExtractNames(tmpl)
	if len(values) == 0 {
		return names
	}
	used := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := values[name]; ok {
			used = append(used, name)
		}
	}
	return used
}

// upsertRenderRef keeps at most one renders entry per
// (provider, version) pair.
func upsertRenderRef(r *prompt.Record, ref prompt.RenderRef) {
	for i, existing := range r.Renders {
		if existing.Provider == ref.Provider && existing.VersionOfPrompt == ref.VersionOfPrompt {
			r.Renders[i] = ref
			return
		}
	}
	r.Renders = append(r.Renders, ref)
}

func (m *Manager) logRun(ctx context.Context, promptID, providerID, model string, success bool, start time.Time) {
	// Run logs are best-effort bookkeeping; a logging failure never
	// fails the render.
	_ = m.store.SaveRunLog(ctx, &store.RunLog{
		ID:        uuid.NewString(),
		PromptID:  promptID,
		Provider:  providerID,
		Model:     model,
		Success:   success,
		LatencyMs: m.now().Sub(start).Milliseconds(),
		CreatedAt: m.now(),
	})
}

// Export is a rendered payload wrapped for file output.
type Export struct {
	Payload  *provider.Payload `json:"payload"`
	Document map[string]any    `json:"document"`
	Filename string            `json:"filename"`
}

// ExportPrompt renders and wraps the payload content with an
// _metadata envelope. filename overrides the derived name when set.
func (m *Manager) ExportPrompt(ctx context.Context, id, providerID string, opts provider.RenderOptions, filename string) (*Export, error) {
	record, err := m.store.LoadPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	payload, err := m.Render(ctx, id, providerID, opts)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]any, len(payload.Content)+1)
	for k, v := range payload.Content {
		doc[k] = v
	}
	doc["_metadata"] = map[string]any{
		"promptId":    record.ID,
		"promptTitle": record.Metadata.Title,
		"provider":    payload.Provider,
		"version":     record.Version,
		"exportedAt":  m.now().Format(time.RFC3339),
	}

	if strings.TrimSpace(filename) == "" {
		filename = convert.ExportFilename(record.Slug, payload.Provider, record.Version)
	}
	m.audit(record.ID, history.ActionExported, "", filename)
	return &Export{Payload: payload, Document: doc, Filename: filename}, nil
}

// HistoryView is the aggregate history surface for one prompt.
type HistoryView struct {
	Versions []prompt.Version      `json:"versions"`
	Ratings  []prompt.Rating       `json:"ratings,omitempty"`
	Summary  history.RatingSummary `json:"rating_summary"`
	Runs     history.RunStats      `json:"run_stats"`
	Audit    []history.Entry       `json:"audit,omitempty"`
}

// History returns version entries (most recent first), ratings with
// aggregation, run stats and the in-process audit trail.
func (m *Manager) History(ctx context.Context, id string) (*HistoryView, error) {
	record, err := m.store.LoadPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := m.store.ListRunLogs(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	view := &HistoryView{
		Versions: version.History(record),
		Ratings:  record.History.Ratings,
		Summary:  history.SummarizeRatings(record.History.Ratings),
		Runs:     history.SummarizeRuns(logs),
	}
	if m.trail != nil {
		view.Audit = m.trail.Entries(record.ID)
	}
	return view, nil
}

// CreateVersion appends a manual version entry and bumps the record.
func (m *Manager) CreateVersion(ctx context.Context, id, message, author string) (*prompt.Record, error) {
	record, err := m.store.LoadPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	entry, err := version.Create(record, author, message)
	if err != nil {
		return nil, err
	}
	record.History.Versions = append(record.History.Versions, entry)
	record.Version++
	record.UpdatedAt = m.now()
	if err := m.store.SavePrompt(ctx, record); err != nil {
		return nil, err
	}
	m.audit(record.ID, history.ActionVersioned, author, message)
	return record, nil
}

// Rate upserts a user's rating and persists the record.
func (m *Manager) Rate(ctx context.Context, id, user string, score int, note string) (*prompt.Record, error) {
	record, err := m.store.LoadPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := history.ApplyRating(record, user, score, note, m.now()); err != nil {
		return nil, err
	}
	record.UpdatedAt = m.now()
	if err := m.store.SavePrompt(ctx, record); err != nil {
		return nil, err
	}
	m.audit(record.ID, history.ActionRated, user, fmt.Sprintf("score %d", score))
	return record, nil
}

func authorOr(author, fallback string) string {
	if a := strings.TrimSpace(author); a != "" {
		return a
	}
	return strings.TrimSpace(fallback)
}
