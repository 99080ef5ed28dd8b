package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arisylafeta/reddit-analyzer/internal/embeddings"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// fakeEmbedder records calls and delegates to an optional embed hook.
type fakeEmbedder struct {
	mu          sync.Mutex
	calls       []string
	inFlight    int
	maxInFlight int
	embed       func(text string) ([]float32, error)
}

func (f *fakeEmbedder) Name() string    { return "fake" }
func (f *fakeEmbedder) Dimensions() int { return 2 }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.embed != nil {
		return f.embed(text)
	}
	return []float32{1, 0}, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func unavailable(msg string) error {
	return &embeddings.UnavailableError{
		Provider: "fake",
		Reason:   embeddings.ReasonConnection,
		Err:      errors.New(msg),
	}
}

func setupStore(t *testing.T, posts ...store.Post) *store.Store {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if len(posts) > 0 {
		if _, err := s.SavePosts(context.Background(), posts); err != nil {
			t.Fatalf("SavePosts: %v", err)
		}
	}
	return s
}

func post(id, subreddit, title, body string) store.Post {
	return store.Post{ID: id, Subreddit: subreddit, Title: title, Selftext: body}
}

func TestEmbeddingInput(t *testing.T) {
	withBody := post("a", "golang", "A question", "Some detail.")
	if got := EmbeddingInput(withBody); got != "Title: A question\n\nContent: Some detail." {
		t.Errorf("EmbeddingInput = %q", got)
	}

	titleOnly := post("b", "golang", "Just a link", "")
	if got := EmbeddingInput(titleOnly); got != "Title: Just a link" {
		t.Errorf("EmbeddingInput = %q", got)
	}
}

func TestRunEmbedsBacklog(t *testing.T) {
	s := setupStore(t,
		post("a1", "golang", "first", "body one"),
		post("b2", "golang", "second", ""),
		post("c3", "rust", "third", "body three"),
	)
	emb := &fakeEmbedder{}
	p := New(s, emb, nil)

	result, err := p.Run(context.Background(), RunOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Attempted != 3 || result.Succeeded != 3 || result.Failed != 0 {
		t.Errorf("result = %+v, want 3/3/0", result)
	}

	count, err := s.CountUnembedded(context.Background(), "")
	if err != nil {
		t.Fatalf("CountUnembedded: %v", err)
	}
	if count != 0 {
		t.Errorf("%d posts still unembedded", count)
	}

	// The provider saw the title-and-body format.
	found := false
	for _, call := range emb.calls {
		if call == "Title: first\n\nContent: body one" {
			found = true
		}
	}
	if !found {
		t.Errorf("embed input format not used; calls = %q", emb.calls)
	}
}

func TestRunSecondInvocationDoesNothing(t *testing.T) {
	s := setupStore(t, post("a1", "golang", "first", ""))
	emb := &fakeEmbedder{}
	p := New(s, emb, nil)

	if _, err := p.Run(context.Background(), RunOptions{BatchSize: 10}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	result, err := p.Run(context.Background(), RunOptions{BatchSize: 10})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if result.Attempted != 0 {
		t.Errorf("second run attempted %d posts, want 0", result.Attempted)
	}
	if emb.callCount() != 1 {
		t.Errorf("provider called %d times total, want 1", emb.callCount())
	}
}

func TestRunEachPostEmbeddedOnce(t *testing.T) {
	var posts []store.Post
	for i := 0; i < 7; i++ {
		posts = append(posts, post(fmt.Sprintf("p%d", i), "golang", fmt.Sprintf("title %d", i), ""))
	}
	s := setupStore(t, posts...)
	emb := &fakeEmbedder{}
	p := New(s, emb, nil)

	result, err := p.Run(context.Background(), RunOptions{BatchSize: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Succeeded != 7 {
		t.Errorf("Succeeded = %d, want 7", result.Succeeded)
	}
	if emb.callCount() != 7 {
		t.Errorf("provider called %d times, want exactly 7", emb.callCount())
	}
}

func TestRunIsolatesProviderFailures(t *testing.T) {
	s := setupStore(t,
		post("a1", "golang", "good one", ""),
		post("b2", "golang", "bad apple", ""),
		post("c3", "golang", "good two", ""),
	)
	emb := &fakeEmbedder{
		embed: func(text string) ([]float32, error) {
			if strings.Contains(text, "bad apple") {
				return nil, unavailable("model not loaded")
			}
			return []float32{1, 0}, nil
		},
	}
	p := New(s, emb, nil)

	result, err := p.Run(context.Background(), RunOptions{BatchSize: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 2 succeeded, 1 failed", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].ID != "b2" {
		t.Fatalf("Failures = %+v, want just b2", result.Failures)
	}
	var uerr *embeddings.UnavailableError
	if !errors.As(result.Failures[0].Err, &uerr) {
		t.Errorf("failure error = %v, want UnavailableError", result.Failures[0].Err)
	}

	// The failed post was tried once, not retried within the run.
	tries := 0
	for _, call := range emb.calls {
		if strings.Contains(call, "bad apple") {
			tries++
		}
	}
	if tries != 1 {
		t.Errorf("failed post tried %d times in one run, want 1", tries)
	}

	// It stays unembedded and a later run with a healthy provider picks
	// it up.
	count, _ := s.CountUnembedded(context.Background(), "")
	if count != 1 {
		t.Fatalf("%d posts unembedded after run, want 1", count)
	}
	emb.embed = nil
	result, err = p.Run(context.Background(), RunOptions{BatchSize: 1})
	if err != nil {
		t.Fatalf("recovery Run: %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("recovery run succeeded %d, want 1", result.Succeeded)
	}
	count, _ = s.CountUnembedded(context.Background(), "")
	if count != 0 {
		t.Errorf("%d posts unembedded after recovery", count)
	}
}

func TestRunRejectsBadBatchSize(t *testing.T) {
	s := setupStore(t, post("a1", "golang", "first", ""))
	emb := &fakeEmbedder{}
	p := New(s, emb, nil)

	for _, size := range []int{0, -5} {
		_, err := p.Run(context.Background(), RunOptions{BatchSize: size})
		if !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("BatchSize %d: err = %v, want ErrInvalidBatchSize", size, err)
		}
	}
	if emb.callCount() != 0 {
		t.Errorf("provider called %d times, want 0", emb.callCount())
	}
}

func TestRunSubredditFilter(t *testing.T) {
	s := setupStore(t,
		post("a1", "golang", "go post", ""),
		post("b2", "rust", "rust post", ""),
	)
	emb := &fakeEmbedder{}
	p := New(s, emb, nil)

	result, err := p.Run(context.Background(), RunOptions{Subreddit: "rust", BatchSize: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", result.Succeeded)
	}
	count, _ := s.CountUnembedded(context.Background(), "golang")
	if count != 1 {
		t.Errorf("golang backlog = %d, want untouched 1", count)
	}
}

func TestRunWorkerPool(t *testing.T) {
	var posts []store.Post
	for i := 0; i < 12; i++ {
		posts = append(posts, post(fmt.Sprintf("p%02d", i), "golang", fmt.Sprintf("title %d", i), ""))
	}
	s := setupStore(t, posts...)
	emb := &fakeEmbedder{
		embed: func(string) ([]float32, error) {
			time.Sleep(5 * time.Millisecond)
			return []float32{1, 0}, nil
		},
	}
	p := New(s, emb, nil)

	result, err := p.Run(context.Background(), RunOptions{BatchSize: 6, Workers: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Succeeded != 12 {
		t.Errorf("Succeeded = %d, want 12", result.Succeeded)
	}
	if emb.maxInFlight > 4 {
		t.Errorf("max concurrent provider calls = %d, want at most 4", emb.maxInFlight)
	}
	count, _ := s.CountUnembedded(context.Background(), "")
	if count != 0 {
		t.Errorf("%d posts still unembedded", count)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := setupStore(t,
		post("a1", "golang", "first", ""),
		post("b2", "golang", "second", ""),
		post("c3", "golang", "third", ""),
	)
	ctx, cancel := context.WithCancel(context.Background())
	emb := &fakeEmbedder{
		embed: func(text string) ([]float32, error) {
			if strings.Contains(text, "second") {
				cancel()
				return nil, unavailable("interrupted")
			}
			return []float32{1, 0}, nil
		},
	}
	p := New(s, emb, nil)

	_, err := p.Run(ctx, RunOptions{BatchSize: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}
	// The third post was never tried and stays for the next run.
	if emb.callCount() != 2 {
		t.Errorf("provider called %d times, want 2", emb.callCount())
	}
	count, _ := s.CountUnembedded(context.Background(), "")
	if count != 2 {
		t.Errorf("backlog = %d, want 2", count)
	}
}

func TestRunPreCancelled(t *testing.T) {
	s := setupStore(t, post("a1", "golang", "first", ""))
	emb := &fakeEmbedder{}
	p := New(s, emb, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, RunOptions{BatchSize: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run err = %v, want context.Canceled", err)
	}
	if emb.callCount() != 0 {
		t.Errorf("provider called %d times, want 0", emb.callCount())
	}
}

func TestRunAbortsOnUnexpectedError(t *testing.T) {
	s := setupStore(t,
		post("a1", "golang", "first", ""),
		post("b2", "golang", "second", ""),
	)
	boom := errors.New("boom")
	emb := &fakeEmbedder{
		embed: func(text string) ([]float32, error) {
			if strings.Contains(text, "first") {
				return nil, boom
			}
			return []float32{1, 0}, nil
		},
	}
	p := New(s, emb, nil)

	_, err := p.Run(context.Background(), RunOptions{BatchSize: 10})
	if !errors.Is(err, boom) {
		t.Errorf("Run err = %v, want wrapped boom", err)
	}
}
