package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arisylafeta/reddit-analyzer/internal/embeddings"
	"github.com/arisylafeta/reddit-analyzer/internal/search"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

type searchResponse struct {
	Query     string       `json:"query"`
	Subreddit string       `json:"subreddit,omitempty"`
	Hits      []search.Hit `json:"hits"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}

	q := r.URL.Query()
	query := q.Get("q")
	subreddit := q.Get("subreddit")

	topK := 10
	if v := q.Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		topK = n
	}

	hits, err := s.engine.Search(r.Context(), query, search.Options{Subreddit: subreddit, TopK: topK})
	if err != nil {
		var unavailable *embeddings.UnavailableError
		switch {
		case errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrInvalidTopK):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &unavailable):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: query, Subreddit: subreddit, Hits: hits})
}

type statusResponse struct {
	Posts      int                    `json:"posts"`
	Embedded   int                    `json:"embedded"`
	Pending    int                    `json:"pending"`
	Comments   int                    `json:"comments"`
	Subreddits []store.SubredditStats `json:"subreddits"`
	Runs       []store.Run            `json:"runs"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	runs, err := s.store.RecentRuns(r.Context(), 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Posts:      stats.Posts,
		Embedded:   stats.Embedded,
		Pending:    stats.Posts - stats.Embedded,
		Comments:   stats.Comments,
		Subreddits: stats.Subreddits,
		Runs:       runs,
	})
}

type postResponse struct {
	Post     *store.Post     `json:"post"`
	Comments []store.Comment `json:"comments"`
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	comments, err := s.store.CommentsForPost(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "html" {
		page, err := renderPage(post.Title, []byte(postMarkdown(post, comments)))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
		return
	}

	if comments == nil {
		comments = []store.Comment{}
	}
	writeJSON(w, http.StatusOK, postResponse{Post: post, Comments: comments})
}

type reportInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports := []reportInfo{}

	entries, err := os.ReadDir(s.cfg.ReportsDir)
	if err != nil && !os.IsNotExist(err) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, reportInfo{
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Modified.After(reports[j].Modified)
	})

	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// Report names never contain path separators; reject anything that
	// would escape the reports directory.
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".md") {
		writeError(w, http.StatusBadRequest, "invalid report name")
		return
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.ReportsDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "raw" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write(data)
		return
	}

	page, err := renderPage(strings.TrimSuffix(name, ".md"), data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
