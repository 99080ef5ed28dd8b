package config

// modelDimensions maps well-known embedding models to their vector sizes,
// used as wizard defaults. Anything else needs dimensions set explicitly.
var modelDimensions = map[string]int{
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// DefaultExcludes are URL globs for link posts that rarely carry searchable
// text. Patterns match against host/path of the post's target URL.
var DefaultExcludes = []string{
	"i.redd.it/**",
	"v.redd.it/**",
	"*.imgur.com/**",
	"imgur.com/**",
	"*.youtube.com/**",
	"youtu.be/**",
}

// DefaultConfig returns a Config with sensible defaults: a local Ollama
// server for embeddings and a starter research plan to adjust.
func DefaultConfig() *Config {
	return &Config{
		Database: Database{
			Path: "data/reddit-analyzer.db",
		},
		Reddit: Reddit{
			UserAgent:         "reddit-analyzer/0.1 by u/your_username",
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Embedding: Embedding{
			Provider:       ProviderOllama,
			Model:          "nomic-embed-text",
			Dimensions:     768,
			TimeoutSeconds: 30,
			Ollama: Ollama{
				BaseURL: "http://localhost:11434",
			},
		},
		Pipeline: Pipeline{
			BatchSize: 10,
			Workers:   1,
		},
		Search: Search{
			TopK: 10,
		},
		Fetch: Fetch{
			Limit:        100,
			CommentLimit: 20,
			Exclude:      DefaultExcludes,
		},
		Research: Research{
			Subreddits: []string{"sales", "SDRs"},
			Topics: []Topic{
				{Name: "crm-pain", Queries: []string{"CRM frustrating", "manual data entry"}},
				{Name: "tooling", Queries: []string{"sales tool alternatives", "workflow automation"}},
			},
			PostLimit:       200,
			Sort:            "relevance",
			TimeRange:       "month",
			CollectComments: true,
			CommentLimit:    2,
			ReportsDir:      "reports",
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// DimensionsFor returns the known vector size for a model, or 0 when the
// model is not recognized.
func DimensionsFor(model string) int {
	return modelDimensions[model]
}
