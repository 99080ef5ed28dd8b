package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arisylafeta/reddit-analyzer/internal/vector"
)

const postColumns = "id, subreddit, title, selftext, author, score, num_comments, created_utc, url, permalink, is_self, upvote_ratio, search_query, embedded_at, fetched_at"

// SavePosts inserts posts, skipping ids already present so a re-fetch never
// duplicates a row or clears an existing embedding. Returns the number of
// newly inserted posts.
func (s *Store) SavePosts(ctx context.Context, posts []Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO posts (
			id, subreddit, title, selftext, author, score, num_comments,
			created_utc, url, permalink, is_self, upvote_ratio, search_query
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing post insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range posts {
		res, err := stmt.ExecContext(ctx,
			p.ID,
			p.Subreddit,
			p.Title,
			p.Selftext,
			p.Author,
			p.Score,
			p.NumComments,
			unixOrZero(p.CreatedUTC),
			p.URL,
			p.Permalink,
			p.IsSelf,
			p.UpvoteRatio,
			p.SearchQuery,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting post %s: %w", p.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing posts: %w", err)
	}
	return inserted, nil
}

// GetPost retrieves a single post by id.
func (s *Store) GetPost(ctx context.Context, id string) (*Post, error) {
	row := s.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = ?", id)

	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying post %s: %w", id, err)
	}
	return p, nil
}

// Unembedded returns posts that have no embedding yet, ordered by id so
// repeated selections walk the backlog in a stable order.
func (s *Store) Unembedded(ctx context.Context, filter UnembeddedFilter) ([]Post, error) {
	clauses := []string{"embedding IS NULL"}
	var args []any

	if filter.Subreddit != "" {
		clauses = append(clauses, "subreddit = ?")
		args = append(args, filter.Subreddit)
	}

	query := "SELECT " + postColumns + " FROM posts WHERE " + strings.Join(clauses, " AND ")
	query += " ORDER BY id ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET.
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying unembedded posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unembedded post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// CountUnembedded reports how many posts still need an embedding.
func (s *Store) CountUnembedded(ctx context.Context, subreddit string) (int, error) {
	query := "SELECT COUNT(*) FROM posts WHERE embedding IS NULL"
	var args []any
	if subreddit != "" {
		query += " AND subreddit = ?"
		args = append(args, subreddit)
	}

	var count int
	if err := s.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unembedded posts: %w", err)
	}
	return count, nil
}

// Embedded returns all posts carrying an embedding, each with its raw vector
// blob. Pass an empty subreddit for the whole store.
func (s *Store) Embedded(ctx context.Context, subreddit string) ([]EmbeddedPost, error) {
	query := "SELECT " + postColumns + ", embedding FROM posts WHERE embedding IS NOT NULL"
	var args []any
	if subreddit != "" {
		query += " AND subreddit = ?"
		args = append(args, subreddit)
	}
	query += " ORDER BY id ASC"

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying embedded posts: %w", err)
	}
	defer rows.Close()

	var posts []EmbeddedPost
	for rows.Next() {
		var blob []byte
		p, err := scanPostInto(rows, &blob)
		if err != nil {
			return nil, fmt.Errorf("scanning embedded post: %w", err)
		}
		posts = append(posts, EmbeddedPost{Post: *p, Embedding: blob})
	}
	return posts, rows.Err()
}

// SetEmbedding stores the vector for the given post and stamps embedded_at.
// The write is a single UPDATE: it either fully applies or leaves the row
// untouched. Returns ErrNotFound when no post has that id.
func (s *Store) SetEmbedding(ctx context.Context, id string, vec []float32) error {
	res, err := s.ExecContext(ctx,
		"UPDATE posts SET embedding = ?, embedded_at = datetime('now') WHERE id = ?",
		vector.Encode(vec), id,
	)
	if err != nil {
		return fmt.Errorf("updating embedding for post %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking embedding update for post %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(sc scanner) (*Post, error) {
	return scanPostInto(sc, nil)
}

// scanPostInto scans a post row; when embedding is non-nil the row is
// expected to carry the embedding blob as a trailing column.
func scanPostInto(sc scanner, embedding *[]byte) (*Post, error) {
	var (
		p          Post
		createdUTC int64
		embeddedAt sql.NullString
		fetchedAt  string
	)

	dest := []any{
		&p.ID, &p.Subreddit, &p.Title, &p.Selftext, &p.Author,
		&p.Score, &p.NumComments, &createdUTC, &p.URL, &p.Permalink,
		&p.IsSelf, &p.UpvoteRatio, &p.SearchQuery, &embeddedAt, &fetchedAt,
	}
	if embedding != nil {
		dest = append(dest, embedding)
	}

	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}

	if createdUTC > 0 {
		p.CreatedUTC = time.Unix(createdUTC, 0).UTC()
	}
	if embeddedAt.Valid {
		if t, ok := parseStamp(embeddedAt.String); ok {
			p.EmbeddedAt = &t
		}
	}
	if t, ok := parseStamp(fetchedAt); ok {
		p.FetchedAt = t
	}

	return &p, nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func parseStamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
