package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arisylafeta/reddit-analyzer/internal/search"
	"github.com/arisylafeta/reddit-analyzer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the collected corpus over HTTP: semantic search, post lookup,
store status and rendered research reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if host == "" {
			host = cfg.Server.Host
		}
		if port <= 0 {
			port = cfg.Server.Port
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		// Search stays optional; the store endpoints work without an
		// embedding provider.
		var engine *search.Engine
		embedder, err := newEmbedder(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			fmt.Fprintf(os.Stderr, "Search endpoints will return 503.\n")
		} else {
			engine = search.New(st, embedder)
		}

		srv := server.New(server.Config{
			Host:       host,
			Port:       port,
			Origins:    cfg.Server.CORSOrigins,
			ReportsDir: cfg.Research.ReportsDir,
		}, st, engine)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "reddit-analyzer server v%s starting on %s:%d\n", Version, host, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", st.Path())
		fmt.Fprintf(os.Stderr, "  Reports:  %s\n", cfg.Research.ReportsDir)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("host", "", "host to bind (default from config)")
	serveCmd.Flags().Int("port", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}
