package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup or update matches no row.
var ErrNotFound = errors.New("store: not found")

// Post is a document collected from Reddit. The identifier is the stable id
// assigned by Reddit, unique across the store.
type Post struct {
	ID          string     `json:"id"`
	Subreddit   string     `json:"subreddit"`
	Title       string     `json:"title"`
	Selftext    string     `json:"selftext,omitempty"`
	Author      string     `json:"author"`
	Score       int        `json:"score"`
	NumComments int        `json:"num_comments"`
	CreatedUTC  time.Time  `json:"created_utc"`
	URL         string     `json:"url"`
	Permalink   string     `json:"permalink"`
	IsSelf      bool       `json:"is_self"`
	UpvoteRatio float64    `json:"upvote_ratio"`
	SearchQuery string     `json:"search_query,omitempty"`
	EmbeddedAt  *time.Time `json:"embedded_at,omitempty"`
	FetchedAt   time.Time  `json:"fetched_at"`
}

// EmbeddedPost pairs a post with its stored embedding blob. The blob stays
// encoded; callers decode it with the vector codec so corruption surfaces
// where it matters.
type EmbeddedPost struct {
	Post
	Embedding []byte
}

// Comment is a single comment under a post.
type Comment struct {
	ID          string    `json:"id"`
	PostID      string    `json:"post_id"`
	Author      string    `json:"author"`
	Body        string    `json:"body"`
	Score       int       `json:"score"`
	CreatedUTC  time.Time `json:"created_utc"`
	ParentID    string    `json:"parent_id,omitempty"`
	IsSubmitter bool      `json:"is_submitter"`
}

// Run records one collection or embedding invocation.
type Run struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // fetch, research or embed
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Subreddits  []string  `json:"subreddits,omitempty"`
	PostsNew    int       `json:"posts_new"`
	PostsSeen   int       `json:"posts_seen"`
	CommentsNew int       `json:"comments_new"`
	Failures    int       `json:"failures"`
	Note        string    `json:"note,omitempty"`
}

// UnembeddedFilter restricts which unembedded posts are selected.
type UnembeddedFilter struct {
	Subreddit string
	Limit     int
	Offset    int
}

// SubredditStats is one row of the per-subreddit coverage breakdown.
type SubredditStats struct {
	Subreddit string `json:"subreddit"`
	Posts     int    `json:"posts"`
	Embedded  int    `json:"embedded"`
}

// Stats summarizes store contents and embedding coverage.
type Stats struct {
	Posts      int              `json:"posts"`
	Embedded   int              `json:"embedded"`
	Comments   int              `json:"comments"`
	Subreddits []SubredditStats `json:"subreddits"`
}
