package research

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/arisylafeta/reddit-analyzer/internal/reddit"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// Source is the slice of the Reddit client the runner needs.
type Source interface {
	SearchPosts(ctx context.Context, subreddit, query string, opts reddit.SearchOptions) ([]store.Post, error)
	Comments(ctx context.Context, subreddit, postID string, limit int) ([]store.Comment, error)
}

// QueryError records a single failed query; the run continues without it.
type QueryError struct {
	Subreddit string `json:"subreddit"`
	Topic     string `json:"topic"`
	Query     string `json:"query"`
	Err       error  `json:"-"`
}

func (e QueryError) Error() string {
	return fmt.Sprintf("r/%s %q (%s): %v", e.Subreddit, e.Query, e.Topic, e.Err)
}

func (e QueryError) Unwrap() error { return e.Err }

// SubredditCount tallies the haul from one subreddit.
type SubredditCount struct {
	Subreddit string `json:"subreddit"`
	Posts     int    `json:"posts"`
	Comments  int    `json:"comments"`
}

// TopicCount tallies new posts attributed to one topic.
type TopicCount struct {
	Topic string `json:"topic"`
	Posts int    `json:"posts"`
}

// Summary is the outcome of a research run.
type Summary struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	PostsNew    int              `json:"posts_new"`
	PostsSeen   int              `json:"posts_seen"`
	Comments    int              `json:"comments"`
	BySubreddit []SubredditCount `json:"by_subreddit"`
	ByTopic     []TopicCount     `json:"by_topic"`
	Errors      []QueryError     `json:"errors,omitempty"`
	TopPosts    []store.Post     `json:"top_posts,omitempty"`
	ReportPath  string           `json:"report_path,omitempty"`
}

// Runner executes research plans: for every subreddit and topic query it
// searches Reddit, stores the new posts (and optionally their comments)
// and writes a markdown report of the haul.
type Runner struct {
	store      *store.Store
	source     Source
	reportsDir string
}

// NewRunner creates a Runner. reportsDir may be empty to skip report files.
func NewRunner(st *store.Store, source Source, reportsDir string) *Runner {
	return &Runner{store: st, source: source, reportsDir: reportsDir}
}

// Run walks the plan's subreddit x query grid. A failed query is recorded
// in the summary and skipped; storage errors abort the run. Posts returned
// by several queries in the same run are stored once.
func (r *Runner) Run(ctx context.Context, plan Plan) (*Summary, error) {
	plan.Normalize()
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	sum := &Summary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	seen := make(map[string]bool)
	topicPosts := make(map[string]int)
	var newPosts []store.Post

	for _, subreddit := range plan.Subreddits {
		subCount := SubredditCount{Subreddit: subreddit}
		for _, topic := range plan.Topics {
			for _, query := range topic.Queries {
				if err := ctx.Err(); err != nil {
					return sum, err
				}
				posts, err := r.source.SearchPosts(ctx, subreddit, query, reddit.SearchOptions{
					Sort:      plan.Sort,
					TimeRange: plan.TimeRange,
					Limit:     plan.PostLimit,
				})
				if err != nil {
					sum.Errors = append(sum.Errors, QueryError{Subreddit: subreddit, Topic: topic.Name, Query: query, Err: err})
					continue
				}

				var fresh []store.Post
				for _, p := range posts {
					if seen[p.ID] {
						sum.PostsSeen++
						continue
					}
					seen[p.ID] = true
					fresh = append(fresh, p)
				}
				if len(fresh) == 0 {
					continue
				}

				inserted, err := r.store.SavePosts(ctx, fresh)
				if err != nil {
					return sum, fmt.Errorf("saving posts for r/%s %q: %w", subreddit, query, err)
				}
				sum.PostsNew += inserted
				sum.PostsSeen += len(fresh) - inserted
				subCount.Posts += inserted
				topicPosts[topic.Name] += inserted
				newPosts = append(newPosts, fresh...)

				if !plan.CollectComments {
					continue
				}
				for _, p := range fresh {
					comments, err := r.source.Comments(ctx, subreddit, p.ID, plan.CommentLimit)
					if err != nil {
						sum.Errors = append(sum.Errors, QueryError{
							Subreddit: subreddit,
							Topic:     topic.Name,
							Query:     query,
							Err:       fmt.Errorf("comments for %s: %w", p.ID, err),
						})
						continue
					}
					saved, err := r.store.SaveComments(ctx, comments)
					if err != nil {
						return sum, fmt.Errorf("saving comments for %s: %w", p.ID, err)
					}
					sum.Comments += saved
					subCount.Comments += saved
				}
			}
		}
		sum.BySubreddit = append(sum.BySubreddit, subCount)
	}

	for _, t := range plan.Topics {
		sum.ByTopic = append(sum.ByTopic, TopicCount{Topic: t.Name, Posts: topicPosts[t.Name]})
	}
	sum.TopPosts = topByScore(newPosts, 10)
	sum.FinishedAt = time.Now().UTC()

	run := store.Run{
		ID:          sum.RunID,
		Kind:        "research",
		StartedAt:   sum.StartedAt,
		FinishedAt:  sum.FinishedAt,
		Subreddits:  plan.Subreddits,
		PostsNew:    sum.PostsNew,
		PostsSeen:   sum.PostsSeen,
		CommentsNew: sum.Comments,
		Failures:    len(sum.Errors),
		Note:        fmt.Sprintf("%d topics, %d queries", len(plan.Topics), plan.QueryCount()),
	}
	if err := r.store.RecordRun(ctx, run); err != nil {
		return sum, fmt.Errorf("recording run: %w", err)
	}

	if r.reportsDir != "" {
		path, err := r.writeReport(sum)
		if err != nil {
			return sum, fmt.Errorf("writing report: %w", err)
		}
		sum.ReportPath = path
	}
	return sum, nil
}

func topByScore(posts []store.Post, n int) []store.Post {
	sorted := make([]store.Post, len(posts))
	copy(sorted, posts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
