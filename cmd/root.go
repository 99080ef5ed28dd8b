package cmd

import (
	"github.com/spf13/cobra"

	"github.com/arisylafeta/reddit-analyzer/internal/config"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "reddit-analyzer",
	Short: "Collect Reddit posts and search them by meaning",
	Long: `Reddit Analyzer collects posts and comments from subreddits into a local
SQLite store, embeds them with a local or hosted embedding model, and
lets you search the corpus semantically from the CLI, an HTTP API, or
an MCP server for AI agents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
}
