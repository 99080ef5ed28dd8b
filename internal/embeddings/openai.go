package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// openaiModelDimensions maps known OpenAI embedding models to their output
// dimension counts.
var openaiModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedder generates embeddings through an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an embedder for an OpenAI-compatible endpoint.
// baseURL is optional and overrides the default api.openai.com endpoint;
// dimensions falls back to the known size for the model when zero.
func NewOpenAIEmbedder(apiKey, baseURL, model string, dimensions int, timeout time.Duration) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	if dimensions == 0 {
		dimensions = openaiModelDimensions[model]
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		dimensions: dimensions,
	}
}

func (e *OpenAIEmbedder) Name() string {
	return "openai/" + e.model
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &UnavailableError{Provider: e.Name(), Reason: ReasonStatus, Err: err}
		}
		return nil, &UnavailableError{Provider: e.Name(), Reason: ReasonConnection, Err: err}
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, &UnavailableError{
			Provider: e.Name(),
			Reason:   ReasonResponse,
			Err:      fmt.Errorf("no embedding in response"),
		}
	}

	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		return nil, &UnavailableError{
			Provider: e.Name(),
			Reason:   ReasonResponse,
			Err:      fmt.Errorf("got %d dimensions, expected %d", len(vec), e.dimensions),
		}
	}

	return vec, nil
}
