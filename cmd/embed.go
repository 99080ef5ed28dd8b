package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arisylafeta/reddit-analyzer/internal/pipeline"
	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed collected posts that have no vector yet",
	Long: `Runs the embedding pipeline over the backlog of unembedded posts in
batches. Posts the provider rejects are skipped and reported; re-running
embed retries them. Interrupting with Ctrl-C keeps completed work.`,
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().String("subreddit", "", "only embed posts from this subreddit")
	embedCmd.Flags().Int("batch-size", 0, "posts per batch (0 = config default)")
	embedCmd.Flags().Int("workers", 0, "concurrent embedding requests (0 = config default)")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	subreddit, _ := cmd.Flags().GetString("subreddit")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	workers, _ := cmd.Flags().GetInt("workers")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchSize <= 0 {
		batchSize = cfg.Pipeline.BatchSize
	}
	if workers <= 0 {
		workers = cfg.Pipeline.Workers
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now().UTC()
	p := pipeline.New(st, embedder, newReporter())
	result, runErr := p.Run(ctx, pipeline.RunOptions{
		Subreddit: subreddit,
		BatchSize: batchSize,
		Workers:   workers,
	})
	if result == nil {
		return runErr
	}

	if result.Attempted == 0 && runErr == nil {
		fmt.Println("Nothing to embed. All posts already have vectors.")
		return nil
	}

	recordErr := st.RecordRun(context.Background(), store.Run{
		Kind:       "embed",
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		PostsNew:   0,
		Failures:   result.Failed,
		Note:       fmt.Sprintf("embedded %d of %d posts with %s", result.Succeeded, result.Attempted, embedder.Name()),
	})
	if recordErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: recording run: %v\n", recordErr)
	}

	fmt.Println()
	if errors.Is(runErr, context.Canceled) {
		fmt.Println("Interrupted. Completed work is saved; re-run embed to continue.")
	} else {
		fmt.Println("Embedding complete!")
	}
	fmt.Printf("  Attempted: %d\n", result.Attempted)
	fmt.Printf("  Embedded:  %d\n", result.Succeeded)
	fmt.Printf("  Failed:    %d\n", result.Failed)

	if len(result.Failures) > 0 {
		fmt.Println("\nFailed posts (will be retried on the next run):")
		shown := result.Failures
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, f := range shown {
			fmt.Printf("  %s: %v\n", f.ID, f.Err)
		}
		if extra := len(result.Failures) - len(shown); extra > 0 {
			fmt.Printf("  ... and %d more\n", extra)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
