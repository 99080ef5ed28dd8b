package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchPostsTool defines the search_posts MCP tool.
var searchPostsTool = mcp.NewTool("search_posts",
	mcp.WithDescription("Search collected Reddit posts semantically. Returns the posts closest in meaning to the query, with similarity scores."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("top_k",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
	mcp.WithString("subreddit",
		mcp.Description("Restrict results to a single subreddit"),
	),
)

// getPostTool defines the get_post MCP tool.
var getPostTool = mcp.NewTool("get_post",
	mcp.WithDescription("Get a collected Reddit post by id, including its stored comments."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Reddit post id"),
	),
	mcp.WithBoolean("include_comments",
		mcp.Description("Include stored comments (default true)"),
	),
)

// statusTool defines the status MCP tool.
var statusTool = mcp.NewTool("status",
	mcp.WithDescription("Get store contents and embedding coverage: post and comment counts, per-subreddit breakdown and recent runs."),
)
