package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makePost(id, subreddit string) Post {
	return Post{
		ID:          id,
		Subreddit:   subreddit,
		Title:       "title " + id,
		Selftext:    "body " + id,
		Author:      "someone",
		Score:       42,
		NumComments: 3,
		CreatedUTC:  time.Unix(1700000000, 0).UTC(),
		URL:         "https://example.com/" + id,
		Permalink:   "https://reddit.com/r/" + subreddit + "/comments/" + id,
		IsSelf:      true,
		UpvoteRatio: 0.93,
	}
}

func TestSavePostsAndGet(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	inserted, err := s.SavePosts(ctx, []Post{makePost("abc", "golang"), makePost("def", "golang")})
	if err != nil {
		t.Fatalf("SavePosts: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}

	got, err := s.GetPost(ctx, "abc")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Title != "title abc" {
		t.Errorf("Title = %q, want %q", got.Title, "title abc")
	}
	if got.Subreddit != "golang" {
		t.Errorf("Subreddit = %q, want %q", got.Subreddit, "golang")
	}
	if !got.CreatedUTC.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("CreatedUTC = %v, want %v", got.CreatedUTC, time.Unix(1700000000, 0).UTC())
	}
	if got.UpvoteRatio != 0.93 {
		t.Errorf("UpvoteRatio = %v, want 0.93", got.UpvoteRatio)
	}
	if got.EmbeddedAt != nil {
		t.Errorf("EmbeddedAt = %v, want nil", got.EmbeddedAt)
	}
	if got.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetPost(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost error = %v, want ErrNotFound", err)
	}
}

func TestSavePostsIgnoresDuplicates(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if _, err := s.SavePosts(ctx, []Post{makePost("abc", "golang")}); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}
	if err := s.SetEmbedding(ctx, "abc", []float32{1, 0}); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}

	// A re-fetch of the same post must not duplicate the row or clear the
	// embedding it already has.
	changed := makePost("abc", "golang")
	changed.Title = "edited title"
	inserted, err := s.SavePosts(ctx, []Post{changed, makePost("xyz", "golang")})
	if err != nil {
		t.Fatalf("SavePosts again: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}

	got, err := s.GetPost(ctx, "abc")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Title != "title abc" {
		t.Errorf("Title = %q, want original kept", got.Title)
	}
	if got.EmbeddedAt == nil {
		t.Error("embedding cleared by duplicate save")
	}
}

func TestUnembeddedSelection(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	posts := []Post{
		makePost("c3", "golang"),
		makePost("a1", "golang"),
		makePost("b2", "rust"),
		makePost("d4", "golang"),
	}
	if _, err := s.SavePosts(ctx, posts); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}
	if err := s.SetEmbedding(ctx, "d4", []float32{1}); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}

	t.Run("ordered by id", func(t *testing.T) {
		got, err := s.Unembedded(ctx, UnembeddedFilter{})
		if err != nil {
			t.Fatalf("Unembedded: %v", err)
		}
		want := []string{"a1", "b2", "c3"}
		if len(got) != len(want) {
			t.Fatalf("got %d posts, want %d", len(got), len(want))
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
			}
		}
	})

	t.Run("subreddit filter", func(t *testing.T) {
		got, err := s.Unembedded(ctx, UnembeddedFilter{Subreddit: "rust"})
		if err != nil {
			t.Fatalf("Unembedded: %v", err)
		}
		if len(got) != 1 || got[0].ID != "b2" {
			t.Errorf("got %v, want just b2", got)
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := s.Unembedded(ctx, UnembeddedFilter{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("Unembedded: %v", err)
		}
		if len(got) != 1 || got[0].ID != "b2" {
			t.Errorf("got %v, want just b2", got)
		}
	})

	t.Run("offset without limit", func(t *testing.T) {
		got, err := s.Unembedded(ctx, UnembeddedFilter{Offset: 2})
		if err != nil {
			t.Fatalf("Unembedded: %v", err)
		}
		if len(got) != 1 || got[0].ID != "c3" {
			t.Errorf("got %v, want just c3", got)
		}
	})

	count, err := s.CountUnembedded(ctx, "")
	if err != nil {
		t.Fatalf("CountUnembedded: %v", err)
	}
	if count != 3 {
		t.Errorf("CountUnembedded = %d, want 3", count)
	}
	count, err = s.CountUnembedded(ctx, "golang")
	if err != nil {
		t.Fatalf("CountUnembedded golang: %v", err)
	}
	if count != 2 {
		t.Errorf("CountUnembedded golang = %d, want 2", count)
	}
}

func TestSetEmbedding(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if _, err := s.SavePosts(ctx, []Post{makePost("abc", "golang")}); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}

	vec := []float32{0.25, -1.5, 3}
	if err := s.SetEmbedding(ctx, "abc", vec); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}

	remaining, err := s.Unembedded(ctx, UnembeddedFilter{})
	if err != nil {
		t.Fatalf("Unembedded: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("still %d unembedded posts after SetEmbedding", len(remaining))
	}

	embedded, err := s.Embedded(ctx, "")
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	if len(embedded) != 1 {
		t.Fatalf("got %d embedded posts, want 1", len(embedded))
	}
	if embedded[0].ID != "abc" {
		t.Errorf("embedded[0].ID = %q, want abc", embedded[0].ID)
	}
	// 3 float32 values, 4 bytes each.
	if len(embedded[0].Embedding) != 12 {
		t.Errorf("blob length = %d, want 12", len(embedded[0].Embedding))
	}
	if embedded[0].EmbeddedAt == nil {
		t.Error("EmbeddedAt not stamped")
	}
}

func TestSetEmbeddingNotFound(t *testing.T) {
	s := setupStore(t)

	err := s.SetEmbedding(context.Background(), "missing", []float32{1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetEmbedding error = %v, want ErrNotFound", err)
	}
}

func TestEmbeddedSubredditFilter(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if _, err := s.SavePosts(ctx, []Post{makePost("a1", "golang"), makePost("b2", "rust")}); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}
	for _, id := range []string{"a1", "b2"} {
		if err := s.SetEmbedding(ctx, id, []float32{1, 2}); err != nil {
			t.Fatalf("SetEmbedding %s: %v", id, err)
		}
	}

	got, err := s.Embedded(ctx, "rust")
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b2" {
		t.Errorf("got %v, want just b2", got)
	}
}

func TestSaveCommentsAndQuery(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if _, err := s.SavePosts(ctx, []Post{makePost("abc", "golang")}); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}

	comments := []Comment{
		{ID: "c1", PostID: "abc", Author: "u1", Body: "meh", Score: 1, CreatedUTC: time.Unix(1700000100, 0).UTC()},
		{ID: "c2", PostID: "abc", Author: "u2", Body: "great point", Score: 50, ParentID: "t3_abc", IsSubmitter: true},
	}
	inserted, err := s.SaveComments(ctx, comments)
	if err != nil {
		t.Fatalf("SaveComments: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}

	// Duplicate ids are skipped.
	inserted, err = s.SaveComments(ctx, comments[:1])
	if err != nil {
		t.Fatalf("SaveComments again: %v", err)
	}
	if inserted != 0 {
		t.Errorf("inserted = %d, want 0", inserted)
	}

	got, err := s.CommentsForPost(ctx, "abc")
	if err != nil {
		t.Fatalf("CommentsForPost: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d comments, want 2", len(got))
	}
	// Highest score first.
	if got[0].ID != "c2" || got[1].ID != "c1" {
		t.Errorf("order = [%s %s], want [c2 c1]", got[0].ID, got[1].ID)
	}
	if !got[0].IsSubmitter {
		t.Error("IsSubmitter lost")
	}
}

func TestRecordAndListRuns(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []Run{
		{Kind: "fetch", StartedAt: base, FinishedAt: base.Add(time.Minute), Subreddits: []string{"golang"}, PostsNew: 10},
		{Kind: "research", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(2 * time.Hour), Subreddits: []string{"sales", "SDRs"}, PostsNew: 80, PostsSeen: 20, CommentsNew: 160, Failures: 1, Note: "2 topics"},
	}
	for _, r := range runs {
		if err := s.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	got, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d runs, want 2", len(got))
	}
	// Newest first.
	if got[0].Kind != "research" {
		t.Errorf("got[0].Kind = %q, want research", got[0].Kind)
	}
	if got[0].ID == "" {
		t.Error("expected generated run ID, got empty string")
	}
	if len(got[0].Subreddits) != 2 || got[0].Subreddits[0] != "sales" {
		t.Errorf("Subreddits = %v, want [sales SDRs]", got[0].Subreddits)
	}
	if !got[0].StartedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("StartedAt = %v, want %v", got[0].StartedAt, base.Add(time.Hour))
	}

	limited, err := s.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d runs with limit 1", len(limited))
	}
}

func TestGetStats(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	posts := []Post{
		makePost("a1", "golang"),
		makePost("a2", "golang"),
		makePost("a3", "golang"),
		makePost("b1", "rust"),
	}
	if _, err := s.SavePosts(ctx, posts); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}
	for _, id := range []string{"a1", "a2"} {
		if err := s.SetEmbedding(ctx, id, []float32{1}); err != nil {
			t.Fatalf("SetEmbedding %s: %v", id, err)
		}
	}
	if _, err := s.SaveComments(ctx, []Comment{{ID: "c1", PostID: "a1", Body: "hi"}}); err != nil {
		t.Fatalf("SaveComments: %v", err)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Posts != 4 {
		t.Errorf("Posts = %d, want 4", stats.Posts)
	}
	if stats.Embedded != 2 {
		t.Errorf("Embedded = %d, want 2", stats.Embedded)
	}
	if stats.Comments != 1 {
		t.Errorf("Comments = %d, want 1", stats.Comments)
	}
	if len(stats.Subreddits) != 2 {
		t.Fatalf("got %d subreddits, want 2", len(stats.Subreddits))
	}
	// Largest subreddit first.
	if stats.Subreddits[0].Subreddit != "golang" || stats.Subreddits[0].Posts != 3 || stats.Subreddits[0].Embedded != 2 {
		t.Errorf("subreddits[0] = %+v, want golang 3/2", stats.Subreddits[0])
	}
}
