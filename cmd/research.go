package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arisylafeta/reddit-analyzer/internal/research"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run the configured research plan across subreddits and topics",
	Long: `Searches every configured subreddit for every topic query, stores new
posts and their comments, and writes a markdown collection report. The
plan comes from the config file unless --plan points at a YAML file.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("plan", "", "YAML plan file overriding the config plan")
	researchCmd.Flags().Bool("dry-run", false, "print the plan without collecting anything")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	planPath, _ := cmd.Flags().GetString("plan")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	plan := research.PlanFromConfig(cfg.Research)
	if planPath != "" {
		plan, err = research.LoadPlan(planPath)
		if err != nil {
			return err
		}
	}
	plan.Normalize()
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	if dryRun {
		printPlan(plan)
		return nil
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Running research plan: %d subreddits, %d queries\n", len(plan.Subreddits), plan.QueryCount())

	runner := research.NewRunner(st, client, cfg.Research.ReportsDir)
	sum, err := runner.Run(ctx, plan)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Research complete!")
	fmt.Printf("  New posts:      %d\n", sum.PostsNew)
	fmt.Printf("  Already known:  %d\n", sum.PostsSeen)
	fmt.Printf("  Comments:       %d\n", sum.Comments)
	fmt.Printf("  Failed queries: %d\n", len(sum.Errors))
	for _, e := range sum.Errors {
		fmt.Fprintf(os.Stderr, "  Warning: %v\n", e)
	}
	if sum.ReportPath != "" {
		fmt.Printf("  Report:         %s\n", sum.ReportPath)
	}

	return nil
}

func printPlan(plan research.Plan) {
	fmt.Println("Research plan:")
	fmt.Printf("  Subreddits:  %s\n", strings.Join(plan.Subreddits, ", "))
	fmt.Printf("  Post limit:  %d per query (sort %s, time range %s)\n", plan.PostLimit, plan.Sort, plan.TimeRange)
	if plan.CollectComments {
		fmt.Printf("  Comments:    up to %d per new post\n", plan.CommentLimit)
	} else {
		fmt.Println("  Comments:    off")
	}
	fmt.Println("  Topics:")
	for _, t := range plan.Topics {
		quoted := make([]string, 0, len(t.Queries))
		for _, q := range t.Queries {
			quoted = append(quoted, fmt.Sprintf("%q", q))
		}
		fmt.Printf("    %s: %s\n", t.Name, strings.Join(quoted, ", "))
	}
}
