package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidex/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/evidex/internal/core/services"
	"github.com/custodia-labs/evidex/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API",
	Long: `Starts the HTTP API. The embedding provider and the vector store are
checked at startup; the server refuses to start if either is unreachable.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedder, err := newEmbedder(cfg, true)
	if err != nil {
		return err
	}
	defer embedder.Close()
	logger.Info("Embedding model: %s (%d dimensions)", embedder.ModelName(), embedder.Dimensions())

	store, err := newStore(ctx, cfg, embedder.Dimensions())
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("vector store unreachable: %w", err)
	}

	server := httpapi.NewServer(
		services.NewSearchService(store, embedder),
		services.NewStatusService(store, embedder),
		cfg.Port,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	cmd.Printf("Evidex listening on port %d\n", cfg.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		cmd.Println("Shutting down...")
		return server.Shutdown(context.Background())
	}
}
