package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arisylafeta/reddit-analyzer/internal/reddit"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <subreddit>...",
	Short: "Collect posts from one or more subreddits",
	Long: `Fetches posts from the given subreddits and saves them to the local store.
With --query the subreddit is searched instead of listed. Posts already in
the store are left untouched, so fetch is safe to re-run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("limit", 0, "maximum posts per subreddit (0 = config default)")
	fetchCmd.Flags().String("sort", "hot", "listing sort: hot, new, top, rising")
	fetchCmd.Flags().String("time", "", "time range for top/search: hour, day, week, month, year, all")
	fetchCmd.Flags().String("query", "", "search the subreddit instead of listing it")
	fetchCmd.Flags().Bool("comments", false, "also fetch comments for new posts")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	limit, _ := cmd.Flags().GetInt("limit")
	sort, _ := cmd.Flags().GetString("sort")
	timeRange, _ := cmd.Flags().GetString("time")
	query, _ := cmd.Flags().GetString("query")
	withComments, _ := cmd.Flags().GetBool("comments")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.Fetch.Limit
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := newRedditClient(cfg)
	if err != nil {
		return err
	}

	started := time.Now().UTC()
	var totalFetched, totalNew, totalComments int

	for _, subreddit := range args {
		var posts []store.Post
		if query != "" {
			searchSort := "relevance"
			if cmd.Flags().Changed("sort") {
				searchSort = sort
			}
			posts, err = client.SearchPosts(ctx, subreddit, query, reddit.SearchOptions{
				Sort:      searchSort,
				TimeRange: timeRange,
				Limit:     limit,
			})
		} else {
			posts, err = client.Posts(ctx, subreddit, reddit.ListOptions{
				Sort:      sort,
				TimeRange: timeRange,
				Limit:     limit,
			})
		}
		if err != nil {
			return fmt.Errorf("fetching r/%s: %w", subreddit, err)
		}

		// Posts already stored keep their embedding; only genuinely new
		// ones get comment fetches.
		var newPosts []store.Post
		for _, p := range posts {
			_, lookupErr := st.GetPost(ctx, p.ID)
			if errors.Is(lookupErr, store.ErrNotFound) {
				newPosts = append(newPosts, p)
			} else if lookupErr != nil {
				return fmt.Errorf("checking post %s: %w", p.ID, lookupErr)
			}
		}

		inserted, err := st.SavePosts(ctx, posts)
		if err != nil {
			return fmt.Errorf("saving posts for r/%s: %w", subreddit, err)
		}
		totalFetched += len(posts)
		totalNew += inserted
		fmt.Printf("r/%s: %d posts (%d new)\n", subreddit, len(posts), inserted)

		if !withComments || len(newPosts) == 0 {
			continue
		}
		reporter := newReporter()
		reporter.Start(len(newPosts), fmt.Sprintf("Comments r/%s", subreddit))
		for _, p := range newPosts {
			comments, err := client.Comments(ctx, subreddit, p.ID, cfg.Fetch.CommentLimit)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: comments for %s: %v\n", p.ID, err)
				reporter.Increment()
				continue
			}
			saved, err := st.SaveComments(ctx, comments)
			if err != nil {
				return fmt.Errorf("saving comments for %s: %w", p.ID, err)
			}
			totalComments += saved
			reporter.Increment()
		}
		reporter.Finish()
	}

	err = st.RecordRun(ctx, store.Run{
		Kind:        "fetch",
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Subreddits:  args,
		PostsNew:    totalNew,
		PostsSeen:   totalFetched - totalNew,
		CommentsNew: totalComments,
	})
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	fmt.Println()
	fmt.Println("Fetch complete!")
	fmt.Printf("  Posts fetched:   %d\n", totalFetched)
	fmt.Printf("  New posts:       %d\n", totalNew)
	fmt.Printf("  Already known:   %d\n", totalFetched-totalNew)
	if withComments {
		fmt.Printf("  Comments saved:  %d\n", totalComments)
	}

	return nil
}
