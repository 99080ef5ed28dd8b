package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Embedding.Provider != ProviderOllama {
		t.Errorf("expected default provider %q, got %q", ProviderOllama, cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("expected default model nomic-embed-text, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("expected default dimensions 768, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Pipeline.BatchSize != 10 {
		t.Errorf("expected default batch_size 10, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Search.TopK != 10 {
		t.Errorf("expected default top_k 10, got %d", cfg.Search.TopK)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reddit-analyzer.yaml")

	original := DefaultConfig()
	original.Database.Path = "custom/posts.db"
	original.Embedding.Provider = ProviderOpenAI
	original.Embedding.Model = "text-embedding-3-small"
	original.Embedding.Dimensions = 1536
	original.Reddit.ClientID = "abc123"
	original.Reddit.UserAgent = "test-agent/1.0"
	original.Pipeline.Workers = 4
	original.Research.Topics = []Topic{
		{Name: "pain-points", Queries: []string{"frustrating", "tedious"}},
	}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Database.Path != "custom/posts.db" {
		t.Errorf("database.path: got %q, want %q", loaded.Database.Path, "custom/posts.db")
	}
	if loaded.Embedding.Provider != ProviderOpenAI {
		t.Errorf("provider: got %q, want %q", loaded.Embedding.Provider, ProviderOpenAI)
	}
	if loaded.Embedding.Dimensions != 1536 {
		t.Errorf("dimensions: got %d, want 1536", loaded.Embedding.Dimensions)
	}
	if loaded.Reddit.ClientID != "abc123" {
		t.Errorf("client_id: got %q, want %q", loaded.Reddit.ClientID, "abc123")
	}
	if loaded.Pipeline.Workers != 4 {
		t.Errorf("workers: got %d, want 4", loaded.Pipeline.Workers)
	}
	if len(loaded.Research.Topics) != 1 {
		t.Fatalf("topics: got %d, want 1", len(loaded.Research.Topics))
	}
	if loaded.Research.Topics[0].Name != "pain-points" || len(loaded.Research.Topics[0].Queries) != 2 {
		t.Errorf("topics[0] = %+v, want pain-points with 2 queries", loaded.Research.Topics[0])
	}
}

func TestSavePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reddit-analyzer.yaml")

	cfg := DefaultConfig()
	cfg.Reddit.ClientSecret = "hush"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// The file can hold credentials; it must not be world-readable.
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yaml")

	// A missing file yields defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Embedding.Provider != ProviderOllama {
		t.Errorf("expected default provider, got %q", cfg.Embedding.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reddit-analyzer.yaml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("REDDIT_ANALYZER_EMBEDDING_MODEL", "mxbai-embed-large")
	os.Setenv("REDDIT_ANALYZER_SERVER_PORT", "9090")
	defer os.Unsetenv("REDDIT_ANALYZER_EMBEDDING_MODEL")
	defer os.Unsetenv("REDDIT_ANALYZER_SERVER_PORT")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Embedding.Model != "mxbai-embed-large" {
		t.Errorf("model: got %q, want env override", loaded.Embedding.Model)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("port: got %d, want 9090", loaded.Server.Port)
	}
}

func TestLoadLegacyEnvNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reddit-analyzer.yaml")

	// Unprefixed .env-style names are accepted alongside the prefixed ones.
	os.Setenv("REDDIT_CLIENT_ID", "legacy-id")
	os.Setenv("REDDIT_CLIENT_SECRET", "legacy-secret")
	os.Setenv("OLLAMA_BASE_URL", "http://10.0.0.5:11434")
	defer os.Unsetenv("REDDIT_CLIENT_ID")
	defer os.Unsetenv("REDDIT_CLIENT_SECRET")
	defer os.Unsetenv("OLLAMA_BASE_URL")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Reddit.ClientID != "legacy-id" {
		t.Errorf("client_id: got %q, want legacy-id", loaded.Reddit.ClientID)
	}
	if loaded.Reddit.ClientSecret != "legacy-secret" {
		t.Errorf("client_secret: got %q, want legacy-secret", loaded.Reddit.ClientSecret)
	}
	if loaded.Embedding.Ollama.BaseURL != "http://10.0.0.5:11434" {
		t.Errorf("ollama base url: got %q, want env override", loaded.Embedding.Ollama.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"missing model", func(c *Config) { c.Embedding.Model = "" }, "embedding.model"},
		{"zero batch size", func(c *Config) { c.Pipeline.BatchSize = 0 }, "batch_size"},
		{"negative batch size", func(c *Config) { c.Pipeline.BatchSize = -3 }, "batch_size"},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }, "workers"},
		{"zero top_k", func(c *Config) { c.Search.TopK = 0 }, "top_k"},
		{"bad sort", func(c *Config) { c.Research.Sort = "spicy" }, "research.sort"},
		{"bad time range", func(c *Config) { c.Research.TimeRange = "fortnight" }, "time_range"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateReddit(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ValidateReddit(); err == nil {
		t.Error("expected error with no credentials")
	}

	cfg.Reddit.ClientID = "id"
	cfg.Reddit.ClientSecret = "secret"
	if err := cfg.ValidateReddit(); err != nil {
		t.Errorf("ValidateReddit: %v", err)
	}
}
