package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
llm:
  providers:
    claude:
      api_key: test-key
      model: claude-3-5-haiku-20241022
    openai:
      api_key: other-key
enhancement:
  provider: openai
storage:
  type: sqlite
  path: data/prompts.db
server:
  addr: ":9090"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Providers["claude"].Model != "claude-3-5-haiku-20241022" {
		t.Fatalf("claude model: got %q", cfg.LLM.Providers["claude"].Model)
	}
	if cfg.Enhancement.Provider != "openai" {
		t.Fatalf("enhancement provider: got %q", cfg.Enhancement.Provider)
	}
	if cfg.Storage.Path != "data/prompts.db" {
		t.Fatalf("storage path: got %q", cfg.Storage.Path)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("server addr: got %q", cfg.Server.Addr)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("Load: expected error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Enhancement.Provider != "claude" {
		t.Fatalf("enhancement provider: got %q", cfg.Enhancement.Provider)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("server addr: got %q", cfg.Server.Addr)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  type: memory\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Providers["openai"].APIKey != "env-key" {
		t.Fatalf("openai api key: got %q", cfg.LLM.Providers["openai"].APIKey)
	}
}
