package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/arisylafeta/reddit-analyzer/internal/mcp"
	"github.com/arisylafeta/reddit-analyzer/internal/search"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the collected Reddit corpus to AI agents like Claude Code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		// Stdout carries MCP protocol messages; everything else goes to
		// stderr.
		var engine *search.Engine
		embedder, err := newEmbedder(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			fmt.Fprintf(os.Stderr, "The search_posts tool will report that search is not configured.\n")
		} else {
			engine = search.New(st, embedder)
		}

		mcpserver.Version = Version

		stats, err := st.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading stats: %w", err)
		}
		fmt.Fprintf(os.Stderr, "reddit-analyzer MCP server started on stdio (posts=%d, embedded=%d)\n",
			stats.Posts, stats.Embedded)

		srv := mcpserver.NewServer(st, engine)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
