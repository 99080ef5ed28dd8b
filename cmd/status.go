package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents and embedding coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("loading stats: %w", err)
		}

		fmt.Printf("Store: %s\n", st.Path())
		fmt.Printf("  Posts:     %d\n", stats.Posts)
		if stats.Posts > 0 {
			coverage := float64(stats.Embedded) / float64(stats.Posts) * 100
			fmt.Printf("  Embedded:  %d (%.1f%%)\n", stats.Embedded, coverage)
		} else {
			fmt.Printf("  Embedded:  %d\n", stats.Embedded)
		}
		fmt.Printf("  Pending:   %d\n", stats.Posts-stats.Embedded)
		fmt.Printf("  Comments:  %d\n", stats.Comments)

		if len(stats.Subreddits) > 0 {
			fmt.Println("\nBy subreddit:")
			for _, s := range stats.Subreddits {
				fmt.Printf("  r/%-22s %4d posts, %4d embedded\n", s.Subreddit, s.Posts, s.Embedded)
			}
		}

		runs, err := st.RecentRuns(ctx, 5)
		if err != nil {
			return fmt.Errorf("loading runs: %w", err)
		}
		if len(runs) > 0 {
			fmt.Println("\nRecent runs:")
			for _, r := range runs {
				fmt.Printf("  %s  %-8s  %d new, %d seen, %d comments, %d failures\n",
					r.StartedAt.Format("2006-01-02 15:04"), r.Kind,
					r.PostsNew, r.PostsSeen, r.CommentsNew, r.Failures)
			}
		}

		if stats.Posts == 0 {
			fmt.Println("\nThe store is empty. Run `reddit-analyzer fetch <subreddit>` to collect posts.")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
