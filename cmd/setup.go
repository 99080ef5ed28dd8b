package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Verify the database, embedding provider and Reddit credentials",
	Long: `Opens the database (creating the schema on first use), checks that the
embedding provider answers with vectors of the configured dimensionality,
and verifies Reddit API credentials when they are set.`,
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
		fmt.Printf("Database:  %s\n", st.Path())

		embedder, err := newEmbedder(cfg)
		if err != nil {
			return err
		}
		if p, ok := embedder.(interface{ Ping(context.Context) error }); ok {
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("embedding provider %s is not reachable: %w", embedder.Name(), err)
			}
		}
		vec, err := embedder.Embed(ctx, "connectivity probe")
		if err != nil {
			return fmt.Errorf("probe embedding failed: %w", err)
		}
		fmt.Printf("Embedder:  %s (%d dimensions)\n", embedder.Name(), len(vec))
		if len(vec) != cfg.Embedding.Dimensions {
			fmt.Printf("Warning: provider returned %d dimensions but config says %d; update embedding.dimensions\n",
				len(vec), cfg.Embedding.Dimensions)
		}

		if cfg.Reddit.ClientID == "" {
			fmt.Println("Reddit:    no credentials configured (fetch and research will not work)")
			return nil
		}
		client, err := newRedditClient(cfg)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("reddit API check failed: %w", err)
		}
		fmt.Println("Reddit:    credentials ok")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
