package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Match.HighThreshold != 0.60 {
		t.Errorf("expected HighThreshold=0.60, got %f", cfg.Match.HighThreshold)
	}
	if cfg.Match.LowThreshold != 0.40 {
		t.Errorf("expected LowThreshold=0.40, got %f", cfg.Match.LowThreshold)
	}
	if cfg.Match.Suggestions != 3 {
		t.Errorf("expected Suggestions=3, got %d", cfg.Match.Suggestions)
	}
	if cfg.Memory.MaxRecent != 3 {
		t.Errorf("expected MaxRecent=3, got %d", cfg.Memory.MaxRecent)
	}
	if len(cfg.Normalize.Replacements) != 6 {
		t.Errorf("expected 6 default replacements, got %d", len(cfg.Normalize.Replacements))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "faqbot.yaml")

	content := `
match:
  high_threshold: 0.7
  low_threshold: 0.3
memory:
  backend: redis
  session_ttl: 5m
embedding:
  provider: openai
  model: text-embedding-3-small
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Match.HighThreshold != 0.7 {
		t.Errorf("expected HighThreshold=0.7, got %f", cfg.Match.HighThreshold)
	}
	if cfg.Match.LowThreshold != 0.3 {
		t.Errorf("expected LowThreshold=0.3, got %f", cfg.Match.LowThreshold)
	}
	if cfg.Memory.Backend != "redis" {
		t.Errorf("expected backend=redis, got %s", cfg.Memory.Backend)
	}
	if cfg.Memory.SessionTTL != 5*time.Minute {
		t.Errorf("expected SessionTTL=5m, got %s", cfg.Memory.SessionTTL)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected provider=openai, got %s", cfg.Embedding.Provider)
	}
	// untouched sections keep defaults
	if cfg.Match.Suggestions != 3 {
		t.Errorf("expected Suggestions=3, got %d", cfg.Match.Suggestions)
	}
}

func TestLoad_InvalidThresholds(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "faqbot.yaml")

	content := `
match:
  high_threshold: 0.3
  low_threshold: 0.5
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for low threshold above high threshold")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"equal thresholds", func(c *Config) { c.Match.LowThreshold = 0.5; c.Match.HighThreshold = 0.5 }, false},
		{"negative low", func(c *Config) { c.Match.LowThreshold = -0.1 }, true},
		{"high above one", func(c *Config) { c.Match.HighThreshold = 1.5 }, true},
		{"no suggestions", func(c *Config) { c.Match.Suggestions = 0 }, true},
		{"no memory", func(c *Config) { c.Memory.MaxRecent = 0 }, true},
		{"unknown backend", func(c *Config) { c.Memory.Backend = "memcached" }, true},
		{"hashing without dimension", func(c *Config) { c.Embedding.Dimension = 0 }, true},
		{"missing column", func(c *Config) { c.Corpus.AnswerColumn = "" }, true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "faqbot.yaml")

	content := `
server:
  addr: ":9090"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected Addr=:9090, got %s", cfg.Server.Addr)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "faqbot.yaml")

	cfg := DefaultConfig()
	cfg.Match.CacheSize = 0
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Match.CacheSize != 0 {
		t.Errorf("expected CacheSize=0 after reload, got %d", loaded.Match.CacheSize)
	}
}

func TestIndexDBPath(t *testing.T) {
	path := IndexDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".faqbot", "index.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
