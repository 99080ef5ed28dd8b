package store

import (
	"context"
	"fmt"
)

// GetStats summarizes store contents: totals plus a per-subreddit embedding
// coverage breakdown, largest subreddits first.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	err := s.QueryRowContext(ctx, `
		SELECT COUNT(*),
			   COUNT(embedding),
			   (SELECT COUNT(*) FROM comments)
		FROM posts`).Scan(&stats.Posts, &stats.Embedded, &stats.Comments)
	if err != nil {
		return nil, fmt.Errorf("querying totals: %w", err)
	}

	rows, err := s.QueryContext(ctx, `
		SELECT subreddit, COUNT(*), COUNT(embedding)
		FROM posts
		GROUP BY subreddit
		ORDER BY COUNT(*) DESC, subreddit ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying subreddit breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sub SubredditStats
		if err := rows.Scan(&sub.Subreddit, &sub.Posts, &sub.Embedded); err != nil {
			return nil, fmt.Errorf("scanning subreddit stats: %w", err)
		}
		stats.Subreddits = append(stats.Subreddits, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &stats, nil
}
