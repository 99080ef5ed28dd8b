package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked for in the working directory.
const DefaultPath = "reddit-analyzer.yaml"

// envKeys maps recognized environment variables to config keys. Underscores
// appear both inside key segments (client_id) and between them, so a
// mechanical prefix-strip cannot place the dots; every supported variable is
// listed explicitly instead. The unprefixed names are common .env
// conventions accepted as aliases.
var envKeys = map[string]string{
	"REDDIT_ANALYZER_DATABASE_PATH":        "database.path",
	"REDDIT_ANALYZER_REDDIT_CLIENT_ID":     "reddit.client_id",
	"REDDIT_ANALYZER_REDDIT_CLIENT_SECRET": "reddit.client_secret",
	"REDDIT_ANALYZER_REDDIT_USER_AGENT":    "reddit.user_agent",
	"REDDIT_ANALYZER_EMBEDDING_PROVIDER":   "embedding.provider",
	"REDDIT_ANALYZER_EMBEDDING_MODEL":      "embedding.model",
	"REDDIT_ANALYZER_EMBEDDING_DIMENSIONS": "embedding.dimensions",
	"REDDIT_ANALYZER_OLLAMA_BASE_URL":      "embedding.ollama.base_url",
	"REDDIT_ANALYZER_OPENAI_API_KEY":       "embedding.openai.api_key",
	"REDDIT_ANALYZER_OPENAI_BASE_URL":      "embedding.openai.base_url",
	"REDDIT_ANALYZER_SERVER_HOST":          "server.host",
	"REDDIT_ANALYZER_SERVER_PORT":          "server.port",

	"REDDIT_CLIENT_ID":     "reddit.client_id",
	"REDDIT_CLIENT_SECRET": "reddit.client_secret",
	"REDDIT_USER_AGENT":    "reddit.user_agent",
	"OLLAMA_BASE_URL":      "embedding.ollama.base_url",
	"OLLAMA_MODEL":         "embedding.model",
	"OPENAI_API_KEY":       "embedding.openai.api_key",
	"DATABASE_PATH":        "database.path",
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file is not an error: defaults
// plus environment are enough to run against a local Ollama.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	path = resolvePath(path)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables. The callback returns "" for anything
	// not in envKeys, which tells koanf to skip the variable.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// resolvePath falls back to the user config directory when the default
// working-directory file is absent. An explicit path is used as-is.
func resolvePath(path string) string {
	if path != DefaultPath {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if dir, err := os.UserConfigDir(); err == nil {
		alt := filepath.Join(dir, "reddit-analyzer", "config.yaml")
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return path
}

// Save writes the configuration to the given YAML file path. The file may
// contain Reddit credentials, so it is not world-readable.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	header := []byte("# reddit-analyzer configuration.\n# Values can be overridden with REDDIT_ANALYZER_* environment variables.\n")
	if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validSorts and validTimeRanges are the listing parameters Reddit accepts.
var (
	validSorts      = map[string]bool{"relevance": true, "hot": true, "new": true, "top": true, "comments": true}
	validTimeRanges = map[string]bool{"hour": true, "day": true, "week": true, "month": true, "year": true, "all": true}
)

// Validate checks the settings every command needs. Reddit credentials are
// only required by commands that talk to Reddit; those call ValidateReddit
// as well.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Embedding.Provider {
	case ProviderOllama, ProviderOpenAI:
	case "":
		return fmt.Errorf("embedding.provider is required")
	default:
		return fmt.Errorf("invalid embedding.provider %q: must be ollama or openai", c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.TimeoutSeconds < 1 {
		return fmt.Errorf("embedding.timeout_seconds must be at least 1")
	}

	if c.Pipeline.BatchSize < 1 {
		return fmt.Errorf("pipeline.batch_size must be at least 1")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1")
	}

	if c.Search.TopK < 1 {
		return fmt.Errorf("search.top_k must be at least 1")
	}

	if c.Reddit.RequestsPerSecond <= 0 {
		return fmt.Errorf("reddit.requests_per_second must be positive")
	}

	if c.Research.Sort != "" && !validSorts[c.Research.Sort] {
		return fmt.Errorf("invalid research.sort %q", c.Research.Sort)
	}
	if c.Research.TimeRange != "" && !validTimeRanges[c.Research.TimeRange] {
		return fmt.Errorf("invalid research.time_range %q", c.Research.TimeRange)
	}

	return nil
}

// ValidateReddit checks that Reddit API credentials are present.
func (c *Config) ValidateReddit() error {
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return fmt.Errorf("reddit credentials missing: set reddit.client_id and reddit.client_secret (or REDDIT_CLIENT_ID / REDDIT_CLIENT_SECRET)")
	}
	if c.Reddit.UserAgent == "" {
		return fmt.Errorf("reddit.user_agent is required")
	}
	return nil
}
