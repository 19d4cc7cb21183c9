package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidex/internal/core/services"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// Dimensions come from the configured model; no provider call is
	// needed to read stats.
	embedder, err := newEmbedder(cfg, false)
	if err != nil {
		return err
	}
	defer embedder.Close()

	store, err := newStore(ctx, cfg, embedder.Dimensions())
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := services.NewStatusService(store, embedder).Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	cmd.Printf("Total chunks:     %d\n", stats.TotalChunks)
	cmd.Printf("Unique papers:    %d\n", stats.UniquePapers)
	cmd.Printf("Avg chunk length: %.1f chars\n", stats.AvgChunkLength)
	if stats.FirstIngestion != nil {
		cmd.Printf("First ingestion:  %s\n", stats.FirstIngestion.Format(time.RFC3339))
	}
	if stats.LastIngestion != nil {
		cmd.Printf("Last ingestion:   %s\n", stats.LastIngestion.Format(time.RFC3339))
	}
	return nil
}
