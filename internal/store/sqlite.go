package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/provider"
)

const defaultListLimit = 100

// SQLiteStore implements Store using SQLite. Each prompt row carries
// the full record as a YAML document; columns exist for lookup only.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS prompts (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			owner TEXT NOT NULL,
			title TEXT NOT NULL,
			summary TEXT,
			tags TEXT,
			version INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prompts_status ON prompts(status)`,
		`CREATE INDEX IF NOT EXISTS idx_prompts_owner ON prompts(owner)`,
		`CREATE TABLE IF NOT EXISTS render_cache (
			prompt_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			version INTEGER NOT NULL,
			content_ref TEXT NOT NULL,
			payload BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY(prompt_id, provider, version)
		)`,
		`CREATE TABLE IF NOT EXISTS run_logs (
			id TEXT PRIMARY KEY,
			prompt_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT,
			success INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_logs_prompt ON run_logs(prompt_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) SavePrompt(ctx context.Context, r *prompt.Record) error {
	if r == nil {
		return errors.New("store: nil record")
	}
	doc, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: marshal prompt %q: %w", r.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prompts (id, slug, status, owner, title, summary, tags, version, updated_at, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug=excluded.slug, status=excluded.status, owner=excluded.owner,
			title=excluded.title, summary=excluded.summary, tags=excluded.tags,
			version=excluded.version, updated_at=excluded.updated_at, doc=excluded.doc
	`,
		r.ID, r.Slug, string(r.Status), r.Metadata.Owner, r.Metadata.Title,
		r.Metadata.Summary, tagColumn(r.Metadata.Tags), r.Version,
		time.Now().UTC().Unix(), string(doc),
	)
	if err != nil {
		return fmt.Errorf("store: save prompt %q: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) LoadPrompt(ctx context.Context, id string) (*prompt.Record, error) {
	return s.loadBy(ctx, "id", id)
}

func (s *SQLiteStore) LoadPromptBySlug(ctx context.Context, slug string) (*prompt.Record, error) {
	return s.loadBy(ctx, "slug", slug)
}

func (s *SQLiteStore) loadBy(ctx context.Context, column, key string) (*prompt.Record, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM prompts WHERE `+column+` = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, prompt.NotFoundf("prompt %q not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load prompt %q: %w", key, err)
	}

	var r prompt.Record
	if err := yaml.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("store: parse prompt %q: %w", key, err)
	}
	return &r, nil
}

func (s *SQLiteStore) ListPrompts(ctx context.Context, filter Filter) ([]*prompt.Record, error) {
	return s.SearchPrompts(ctx, filter)
}

func (s *SQLiteStore) SearchPrompts(ctx context.Context, filter Filter) ([]*prompt.Record, error) {
	query := `SELECT doc FROM prompts`
	var conds []string
	var args []any

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if owner := strings.TrimSpace(filter.Owner); owner != "" {
		conds = append(conds, "owner = ?")
		args = append(args, owner)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		conds = append(conds, "tags LIKE ?")
		args = append(args, "%,"+tag+",%")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		conds = append(conds, "(title LIKE ? OR summary LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC LIMIT ?"
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search prompts: %w", err)
	}
	defer rows.Close()

	var out []*prompt.Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("store: scan prompt: %w", err)
		}
		var r prompt.Record
		if err := yaml.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("store: parse prompt: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeletePrompt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete prompt %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete prompt %q: %w", id, err)
	}
	if n == 0 {
		return prompt.NotFoundf("prompt %q not found", id)
	}
	// Render artifacts go with the record.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM render_cache WHERE prompt_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete renders for %q: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) PromptExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM prompts WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: prompt exists %q: %w", id, err)
	}
	return true, nil
}

func (s *SQLiteStore) GenerateSlug(ctx context.Context, title string) (string, error) {
	base := prompt.Slugify(title)
	slug := base
	for i := 2; ; i++ {
		var one int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM prompts WHERE slug = ?`, slug).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("store: generate slug: %w", err)
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *SQLiteStore) GetCachedRender(ctx context.Context, id, providerID string, version int) (*provider.Payload, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM render_cache WHERE prompt_id = ? AND provider = ? AND version = ?
	`, id, providerID, version).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get cached render: %w", err)
	}

	var p provider.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("store: parse cached render: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) CacheRender(ctx context.Context, id, providerID string, version int, p *provider.Payload) error {
	if p == nil {
		return errors.New("store: nil payload")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: marshal render: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO render_cache (prompt_id, provider, version, content_ref, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, providerID, version, ContentRef(id, providerID, version), raw, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("store: cache render: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveRunLog(ctx context.Context, log *RunLog) error {
	if log == nil {
		return errors.New("store: nil run log")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_logs (id, prompt_id, provider, model, success, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.ID, log.PromptID, log.Provider, log.Model, boolToInt(log.Success), log.LatencyMs, log.CreatedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store: save run log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRunLogs(ctx context.Context, promptID string) ([]*RunLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt_id, provider, model, success, latency_ms, created_at
		FROM run_logs WHERE prompt_id = ? ORDER BY created_at DESC
	`, promptID)
	if err != nil {
		return nil, fmt.Errorf("store: list run logs: %w", err)
	}
	defer rows.Close()

	var out []*RunLog
	for rows.Next() {
		var (
			log     RunLog
			success int
			created int64
		)
		if err := rows.Scan(&log.ID, &log.PromptID, &log.Provider, &log.Model, &success, &log.LatencyMs, &created); err != nil {
			return nil, fmt.Errorf("store: scan run log: %w", err)
		}
		log.Success = success != 0
		log.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, &log)
	}
	return out, rows.Err()
}

// ContentRef is the opaque name of a cached render artifact.
func ContentRef(id, providerID string, version int) string {
	return fmt.Sprintf("%s_%s_v%d", id, providerID, version)
}

// tagColumn wraps tags in commas so a LIKE '%,tag,%' filter matches
// whole tags only.
func tagColumn(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
