package cmd

import (
	"fmt"

	"github.com/arisylafeta/reddit-analyzer/internal/config"
	"github.com/arisylafeta/reddit-analyzer/internal/embeddings"
	"github.com/arisylafeta/reddit-analyzer/internal/progress"
	"github.com/arisylafeta/reddit-analyzer/internal/reddit"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `reddit-analyzer init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openStore opens the SQLite store at the configured path, creating the
// database and schema on first use.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", cfg.Database.Path, err)
	}
	return st, nil
}

// newEmbedder creates the configured embedding provider.
func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	embedder, err := embeddings.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return embedder, nil
}

// newRedditClient validates credentials and creates an API client.
func newRedditClient(cfg *config.Config) (*reddit.Client, error) {
	if err := cfg.ValidateReddit(); err != nil {
		return nil, fmt.Errorf("%w\nSet reddit.client_id and reddit.client_secret in %s or the REDDIT_CLIENT_ID / REDDIT_CLIENT_SECRET environment variables", err, cfgFile)
	}
	return reddit.New(reddit.Config{
		ClientID:          cfg.Reddit.ClientID,
		ClientSecret:      cfg.Reddit.ClientSecret,
		UserAgent:         cfg.Reddit.UserAgent,
		RequestsPerSecond: cfg.Reddit.RequestsPerSecond,
		Burst:             cfg.Reddit.Burst,
		Exclude:           cfg.Fetch.Exclude,
	}), nil
}

// newReporter picks a progress reporter honoring the --quiet flag.
func newReporter() progress.Reporter {
	return progress.NewReporter(quiet)
}
