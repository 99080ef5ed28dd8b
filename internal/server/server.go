package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arisylafeta/reddit-analyzer/internal/search"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	Origins    []string // allowed CORS origins
	ReportsDir string   // directory containing research reports
}

// Server exposes the collected corpus over HTTP: semantic search, post
// lookup, store status and rendered research reports.
type Server struct {
	cfg        Config
	store      *store.Store
	engine     *search.Engine
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. The engine may be nil when no embedding provider is
// configured; search requests then return 503.
func New(cfg Config, st *store.Store, engine *search.Engine) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		engine: engine,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(s.cfg.Origins) > 0 {
		corsOpts.AllowedOrigins = s.cfg.Origins
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
		r.Get("/posts/{id}", s.handleGetPost)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{name}", s.handleGetReport)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured host and port.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("reddit-analyzer server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
