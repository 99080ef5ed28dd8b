package store

import (
	"context"
	"fmt"
	"time"
)

// SaveComments inserts comments, skipping ids already present. Returns the
// number of newly inserted comments. Comments for unknown posts are rejected
// by the foreign key, so save the posts first.
func (s *Store) SaveComments(ctx context.Context, comments []Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO comments (
			id, post_id, author, body, score, created_utc, parent_id, is_submitter
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing comment insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range comments {
		res, err := stmt.ExecContext(ctx,
			c.ID,
			c.PostID,
			c.Author,
			c.Body,
			c.Score,
			unixOrZero(c.CreatedUTC),
			c.ParentID,
			c.IsSubmitter,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting comment %s: %w", c.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing comments: %w", err)
	}
	return inserted, nil
}

// CommentsForPost returns the stored comments for a post, highest scored
// first.
func (s *Store) CommentsForPost(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT id, post_id, author, body, score, created_utc, parent_id, is_submitter
		FROM comments WHERE post_id = ?
		ORDER BY score DESC, id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("querying comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var (
			c          Comment
			createdUTC int64
		)
		err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Body, &c.Score,
			&createdUTC, &c.ParentID, &c.IsSubmitter)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		if createdUTC > 0 {
			c.CreatedUTC = time.Unix(createdUTC, 0).UTC()
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
