package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arisylafeta/reddit-analyzer/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search collected posts by meaning",
	Long:  `Embeds the query and ranks stored posts by cosine similarity. Only posts that have been through the embed pipeline are searchable.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("top-k", 0, "maximum number of results (0 = config default)")
	searchCmd.Flags().String("subreddit", "", "restrict results to a single subreddit")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	topK, _ := cmd.Flags().GetInt("top-k")
	subreddit, _ := cmd.Flags().GetString("subreddit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if topK <= 0 {
		topK = cfg.Search.TopK
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	engine := search.New(st, embedder)
	hits, err := engine.Search(ctx, query, search.Options{Subreddit: subreddit, TopK: topK})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(hits) == 0 {
		stats, statsErr := st.GetStats(ctx)
		if statsErr == nil && stats.Embedded == 0 {
			fmt.Println("No posts are embedded yet. Run `reddit-analyzer fetch` and `reddit-analyzer embed` first.")
			return nil
		}
		fmt.Println("No matching posts found.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	printHitsTable(hits)
	return nil
}

func printHitsTable(hits []search.Hit) {
	fmt.Printf("Found %d results:\n\n", len(hits))
	for i, h := range hits {
		fmt.Printf("  %d. [%.1f%%] %s\n", i+1, h.Score*100, h.Post.Title)
		fmt.Printf("     r/%s | u/%s | score %d | %d comments\n",
			h.Post.Subreddit, h.Post.Author, h.Post.Score, h.Post.NumComments)
		fmt.Printf("     %s\n", h.Post.Permalink)
		if h.Post.Selftext != "" {
			fmt.Printf("     %s\n", truncate(oneLine(h.Post.Selftext), 120))
		}
		fmt.Println()
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
