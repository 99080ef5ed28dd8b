package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/arisylafeta/reddit-analyzer/internal/embeddings"
	"github.com/arisylafeta/reddit-analyzer/internal/progress"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// ErrInvalidBatchSize is returned by Run for batch sizes below 1. No work is
// attempted.
var ErrInvalidBatchSize = errors.New("batch size must be at least 1")

// Failure records one post the embedding provider could not process.
type Failure struct {
	ID  string
	Err error
}

// Result summarizes one pipeline run.
type Result struct {
	Attempted int
	Succeeded int
	Failed    int
	Failures  []Failure
}

// RunOptions configure a single pipeline run.
type RunOptions struct {
	// Subreddit restricts the run to one subreddit; empty means all.
	Subreddit string
	// BatchSize is the number of posts selected from the store at a time.
	BatchSize int
	// Workers bounds concurrent provider calls within a batch. Values
	// below 1 mean serial processing.
	Workers int
}

// Pipeline embeds stored posts that do not have a vector yet.
type Pipeline struct {
	store    *store.Store
	embedder embeddings.Embedder
	reporter progress.Reporter
}

// New creates a Pipeline. A nil reporter disables progress output.
func New(st *store.Store, embedder embeddings.Embedder, reporter progress.Reporter) *Pipeline {
	if reporter == nil {
		reporter = progress.QuietReporter{}
	}
	return &Pipeline{store: st, embedder: embedder, reporter: reporter}
}

// EmbeddingInput is the text sent to the provider for a post: the title,
// plus the body when there is one. The format must stay stable; vectors
// embedded from differently formatted text are not comparable.
func EmbeddingInput(p store.Post) string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(p.Title)
	if p.Selftext != "" {
		b.WriteString("\n\nContent: ")
		b.WriteString(p.Selftext)
	}
	return b.String()
}

// Run embeds every stored post that still lacks a vector, in batches. Only
// posts without an embedding are selected, so re-running after a partial
// failure or an interruption picks up exactly the remainder. A provider
// failure skips that post and is reported in the Result; a store failure
// aborts the run. Cancelling the context stops the run between posts.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.BatchSize < 1 {
		return nil, ErrInvalidBatchSize
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	total, err := p.store.CountUnembedded(ctx, opts.Subreddit)
	if err != nil {
		return nil, fmt.Errorf("counting backlog: %w", err)
	}

	result := &Result{}
	if total == 0 {
		return result, nil
	}

	p.reporter.Start(total, "Embedding posts")
	defer p.reporter.Finish()

	// Failed posts stay unembedded and, because selection is ordered by id
	// and batches are taken from the front, they always sort before posts
	// not yet tried. Skipping one row per recorded failure therefore
	// re-selects exactly the untried remainder.
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := p.store.Unembedded(ctx, store.UnembeddedFilter{
			Subreddit: opts.Subreddit,
			Limit:     opts.BatchSize,
			Offset:    len(result.Failures),
		})
		if err != nil {
			return result, fmt.Errorf("selecting batch: %w", err)
		}
		if len(batch) == 0 {
			return result, nil
		}

		if err := p.processBatch(ctx, batch, workers, result); err != nil {
			return result, err
		}
	}
}

// processBatch embeds one batch with up to workers concurrent provider
// calls. Per-post provider failures are recorded in result; anything else
// cancels the remaining work and is returned.
func (p *Pipeline) processBatch(ctx context.Context, batch []store.Post, workers int, result *Result) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, workers)
	var (
		mu    sync.Mutex
		fatal error
		wg    sync.WaitGroup
	)

	trip := func(err error) {
		mu.Lock()
		if fatal == nil {
			fatal = err
			cancel()
		}
		mu.Unlock()
	}

	for _, post := range batch {
		select {
		case <-ctx.Done():
			wg.Wait()
			if fatal != nil {
				return fatal
			}
			return ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(doc store.Post) {
			defer wg.Done()
			defer func() { <-sem }()

			vec, err := p.embedder.Embed(ctx, EmbeddingInput(doc))
			if err != nil {
				var unavailable *embeddings.UnavailableError
				if !errors.As(err, &unavailable) {
					trip(fmt.Errorf("embedding post %s: %w", doc.ID, err))
					return
				}
				mu.Lock()
				result.Attempted++
				result.Failed++
				result.Failures = append(result.Failures, Failure{ID: doc.ID, Err: err})
				mu.Unlock()
				p.reporter.Increment()
				return
			}

			if err := p.store.SetEmbedding(ctx, doc.ID, vec); err != nil {
				trip(fmt.Errorf("saving embedding for post %s: %w", doc.ID, err))
				return
			}

			mu.Lock()
			result.Attempted++
			result.Succeeded++
			mu.Unlock()
			p.reporter.Increment()
		}(post)
	}

	wg.Wait()
	if fatal != nil {
		return fatal
	}
	// The derived context is only cancelled here when the caller's was;
	// a fatal error would have returned above.
	return ctx.Err()
}
