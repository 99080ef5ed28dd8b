package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordRun inserts a run record. If run.ID is empty a UUID is generated.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	subreddits, err := json.Marshal(run.Subreddits)
	if err != nil {
		return fmt.Errorf("marshalling run subreddits: %w", err)
	}

	_, err = s.ExecContext(ctx, `
		INSERT INTO runs (
			id, kind, started_at, finished_at, subreddits,
			posts_new, posts_seen, comments_new, failures, note
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.StartedAt.UTC().Format(time.DateTime),
		run.FinishedAt.UTC().Format(time.DateTime),
		string(subreddits),
		run.PostsNew,
		run.PostsSeen,
		run.CommentsNew,
		run.Failures,
		run.Note,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, subreddits,
			   posts_new, posts_seen, comments_new, failures, note
		FROM runs ORDER BY started_at DESC, id ASC`+fmt.Sprintf(" LIMIT %d", limit))
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			subredditsJSON    string
		)
		err := rows.Scan(&r.ID, &r.Kind, &started, &finished, &subredditsJSON,
			&r.PostsNew, &r.PostsSeen, &r.CommentsNew, &r.Failures, &r.Note)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, ok := parseStamp(started); ok {
			r.StartedAt = t
		}
		if t, ok := parseStamp(finished); ok {
			r.FinishedAt = t
		}
		if err := json.Unmarshal([]byte(subredditsJSON), &r.Subreddits); err != nil {
			r.Subreddits = nil
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
