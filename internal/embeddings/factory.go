package embeddings

import (
	"fmt"

	"github.com/arisylafeta/reddit-analyzer/internal/config"
)

// New builds the configured embedding adapter. Unknown providers and missing
// API keys surface here, before any network work starts.
func New(cfg config.Embedding) (Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllamaEmbedder(cfg.Model, cfg.Dimensions, cfg.Ollama.BaseURL, cfg.Timeout()), nil
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("embedding.openai.api_key is required for the openai provider")
		}
		return NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Model, cfg.Dimensions, cfg.Timeout()), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
