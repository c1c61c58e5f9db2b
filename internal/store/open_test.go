package store

import (
	"path/filepath"
	"testing"

	"github.com/stellarlinkco/promptvault/internal/config"
)

func configWith(storageType, path string) *config.Config {
	cfg := config.Default()
	cfg.Storage.Type = storageType
	cfg.Storage.Path = path
	return cfg
}

func TestOpen_SQLiteCreatesDir(t *testing.T) {
	dir := t.TempDir()
	cfg := configWith("sqlite", filepath.Join(dir, "nested", "prompts.db"))

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_NilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Fatalf("Open: expected error")
	}
}
