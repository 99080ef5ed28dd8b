package config

import "time"

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
)

// Config is the top-level reddit-analyzer configuration, corresponding to
// reddit-analyzer.yaml.
type Config struct {
	Database  Database  `yaml:"database" koanf:"database"`
	Reddit    Reddit    `yaml:"reddit" koanf:"reddit"`
	Embedding Embedding `yaml:"embedding" koanf:"embedding"`
	Pipeline  Pipeline  `yaml:"pipeline" koanf:"pipeline"`
	Search    Search    `yaml:"search" koanf:"search"`
	Fetch     Fetch     `yaml:"fetch" koanf:"fetch"`
	Research  Research  `yaml:"research" koanf:"research"`
	Server    Server    `yaml:"server" koanf:"server"`
}

// Database holds storage settings.
type Database struct {
	Path string `yaml:"path" koanf:"path"`
}

// Reddit holds API credentials and client throttling settings. Credentials
// come from an installed-app registration at reddit.com/prefs/apps.
type Reddit struct {
	ClientID          string  `yaml:"client_id" koanf:"client_id"`
	ClientSecret      string  `yaml:"client_secret" koanf:"client_secret"`
	UserAgent         string  `yaml:"user_agent" koanf:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second" koanf:"requests_per_second"`
	Burst             int     `yaml:"burst" koanf:"burst"`
}

// Embedding selects and configures the embedding provider.
type Embedding struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	Dimensions     int          `yaml:"dimensions" koanf:"dimensions"`
	TimeoutSeconds int          `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	Ollama         Ollama       `yaml:"ollama" koanf:"ollama"`
	OpenAI         OpenAI       `yaml:"openai" koanf:"openai"`
}

// Timeout returns the per-request embedding timeout.
func (e Embedding) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// Ollama holds settings for a local Ollama server.
type Ollama struct {
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}

// OpenAI holds settings for the OpenAI embeddings API.
type OpenAI struct {
	APIKey  string `yaml:"api_key" koanf:"api_key"`
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}

// Pipeline controls the embedding pipeline.
type Pipeline struct {
	BatchSize int `yaml:"batch_size" koanf:"batch_size"`
	Workers   int `yaml:"workers" koanf:"workers"`
}

// Search holds semantic search defaults.
type Search struct {
	TopK int `yaml:"top_k" koanf:"top_k"`
}

// Fetch holds defaults for the fetch command.
type Fetch struct {
	Limit        int      `yaml:"limit" koanf:"limit"`
	CommentLimit int      `yaml:"comment_limit" koanf:"comment_limit"`
	Exclude      []string `yaml:"exclude" koanf:"exclude"`
}

// Research describes the default automation plan: which subreddits to mine
// and which topics (each a set of search queries) to collect for.
type Research struct {
	Subreddits      []string `yaml:"subreddits" koanf:"subreddits"`
	Topics          []Topic  `yaml:"topics" koanf:"topics"`
	PostLimit       int      `yaml:"post_limit" koanf:"post_limit"`
	Sort            string   `yaml:"sort" koanf:"sort"`
	TimeRange       string   `yaml:"time_range" koanf:"time_range"`
	CollectComments bool     `yaml:"collect_comments" koanf:"collect_comments"`
	CommentLimit    int      `yaml:"comment_limit" koanf:"comment_limit"`
	ReportsDir      string   `yaml:"reports_dir" koanf:"reports_dir"`
}

// Topic groups related search queries under a research theme.
type Topic struct {
	Name    string   `yaml:"name" koanf:"name"`
	Queries []string `yaml:"queries" koanf:"queries"`
}

// Server holds HTTP API settings.
type Server struct {
	Host        string   `yaml:"host" koanf:"host"`
	Port        int      `yaml:"port" koanf:"port"`
	CORSOrigins []string `yaml:"cors_origins" koanf:"cors_origins"`
}
