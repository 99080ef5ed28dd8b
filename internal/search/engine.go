package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/arisylafeta/reddit-analyzer/internal/embeddings"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
	"github.com/arisylafeta/reddit-analyzer/internal/vector"
)

var (
	// ErrEmptyQuery is returned for queries that are empty or whitespace.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrInvalidTopK is returned when the result limit is below 1.
	ErrInvalidTopK = errors.New("top_k must be at least 1")
)

// Hit pairs a post with its cosine similarity to the query, in [-1, 1].
type Hit struct {
	Post  store.Post `json:"post"`
	Score float64    `json:"score"`
}

// Options restrict and size a search.
type Options struct {
	// Subreddit limits candidates to one subreddit; empty means all.
	Subreddit string
	// TopK caps the number of hits returned.
	TopK int
}

// Engine ranks stored posts against a freshly embedded query.
type Engine struct {
	store    *store.Store
	embedder embeddings.Embedder
}

// New creates an Engine over the given store and embedding provider.
func New(st *store.Store, embedder embeddings.Embedder) *Engine {
	return &Engine{store: st, embedder: embedder}
}

// Search embeds the query, scores every embedded post by cosine similarity
// and returns up to TopK hits ordered by score descending, ties broken by
// post id ascending so a repeated query returns the same order. Posts
// without an embedding are never candidates. A provider failure fails the
// whole search, and so does a corrupt stored vector: that signals storage
// corruption, not a bad candidate.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if opts.TopK < 1 {
		return nil, ErrInvalidTopK
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := e.store.Embedded(ctx, opts.Subreddit)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		vec, err := vector.Decode(c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("stored embedding for post %s: %w", c.ID, err)
		}
		hits = append(hits, Hit{Post: c.Post, Score: vector.Cosine(queryVec, vec)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Post.ID < hits[j].Post.ID
	})

	if len(hits) > opts.TopK {
		hits = hits[:opts.TopK]
	}
	return hits, nil
}
