package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/arisylafeta/reddit-analyzer/internal/search"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the collected Reddit corpus to
// AI agents: semantic search, post lookup and store status.
type Server struct {
	store  *store.Store
	engine *search.Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies. The
// engine may be nil when no embedding provider is configured; the search
// tool then reports that instead of failing the whole server.
func NewServer(st *store.Store, engine *search.Engine) *Server {
	s := &Server{
		store:  st,
		engine: engine,
	}

	s.mcp = server.NewMCPServer(
		"reddit-analyzer",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchPostsTool, s.handleSearchPosts)
	s.mcp.AddTool(getPostTool, s.handleGetPost)
	s.mcp.AddTool(statusTool, s.handleStatus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
