package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arisylafeta/reddit-analyzer/internal/embeddings"
	"github.com/arisylafeta/reddit-analyzer/internal/search"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// handleSearchPosts performs semantic search over the collected posts.
func (s *Server) handleSearchPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	topK := request.GetInt("top_k", 10)
	if topK <= 0 {
		topK = 10
	}
	subreddit := request.GetString("subreddit", "")

	if s.engine == nil {
		return mcp.NewToolResultError("Search is not configured. Set up an embedding provider with `reddit-analyzer init` first."), nil
	}

	hits, err := s.engine.Search(ctx, query, search.Options{Subreddit: subreddit, TopK: topK})
	if err != nil {
		var unavailable *embeddings.UnavailableError
		if errors.As(err, &unavailable) {
			return mcp.NewToolResultError(fmt.Sprintf("embedding provider unavailable: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(hits) == 0 {
		return mcp.NewToolResultText("No matching posts. The store may be empty; run `reddit-analyzer fetch` and `reddit-analyzer embed` to collect and index posts."), nil
	}

	return mcp.NewToolResultText(formatHits(hits)), nil
}

// handleGetPost returns a stored post, optionally with its comments.
func (s *Server) handleGetPost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	includeComments := request.GetBool("include_comments", true)

	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("No post with id %q in the store.", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("loading post: %v", err)), nil
	}

	var comments []store.Comment
	if includeComments {
		comments, err = s.store.CommentsForPost(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading comments: %v", err)), nil
		}
	}

	return mcp.NewToolResultText(formatPost(post, comments)), nil
}

// handleStatus returns store contents and embedding coverage as JSON.
func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading stats: %v", err)), nil
	}
	runs, err := s.store.RecentRuns(ctx, 10)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading runs: %v", err)), nil
	}

	payload := struct {
		Posts      int                    `json:"posts"`
		Embedded   int                    `json:"embedded"`
		Pending    int                    `json:"pending"`
		Comments   int                    `json:"comments"`
		Subreddits []store.SubredditStats `json:"subreddits"`
		Runs       []store.Run            `json:"runs"`
	}{
		Posts:      stats.Posts,
		Embedded:   stats.Embedded,
		Pending:    stats.Posts - stats.Embedded,
		Comments:   stats.Comments,
		Subreddits: stats.Subreddits,
		Runs:       runs,
	}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshaling status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// formatHits converts search hits into a rich text format optimized for
// AI agent consumption.
func formatHits(hits []search.Hit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d post(s):\n", len(hits)))

	for i, h := range hits {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Title: %s\n", h.Post.Title))
		sb.WriteString(fmt.Sprintf("Subreddit: r/%s\n", h.Post.Subreddit))
		sb.WriteString(fmt.Sprintf("Score: %d | Comments: %d\n", h.Post.Score, h.Post.NumComments))
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", h.Score*100))
		sb.WriteString(fmt.Sprintf("ID: %s\n", h.Post.ID))
		sb.WriteString(fmt.Sprintf("Link: %s\n", h.Post.Permalink))

		if h.Post.Selftext != "" {
			sb.WriteString("\n")
			sb.WriteString(excerpt(h.Post.Selftext, 500))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// formatPost lays a post and its comments out as markdown text.
func formatPost(post *store.Post, comments []store.Comment) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", post.Title))
	sb.WriteString(fmt.Sprintf("**r/%s** | u/%s | score %d | %s\n\n",
		post.Subreddit, post.Author, post.Score, post.CreatedUTC.Format("2006-01-02")))

	if post.Selftext != "" {
		sb.WriteString(post.Selftext)
		sb.WriteString("\n\n")
	} else if !post.IsSelf && post.URL != "" {
		sb.WriteString(fmt.Sprintf("Link: %s\n\n", post.URL))
	}
	sb.WriteString(fmt.Sprintf("Permalink: %s\n", post.Permalink))

	if len(comments) > 0 {
		sb.WriteString(fmt.Sprintf("\n## Comments (%d)\n", len(comments)))
		for _, c := range comments {
			sb.WriteString(fmt.Sprintf("\n**u/%s** (score %d):\n\n%s\n", c.Author, c.Score, c.Body))
		}
	}

	return sb.String()
}

// excerpt truncates text to at most n runes, appending an ellipsis when
// content was cut.
func excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
