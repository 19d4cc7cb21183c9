package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidex/internal/adapters/driven/source/jsonl"
	"github.com/custodia-labs/evidex/internal/core/services"
)

var flagFailuresLog string

var ingestCmd = &cobra.Command{
	Use:   "ingest <corpus.jsonl>",
	Short: "Ingest a JSONL corpus into the vector store",
	Long: `Runs the ingestion pipeline over a JSON Lines corpus: one document
object per line, with "title" (required), "abstract", "full_text" and
"source" fields. Documents whose title is already stored are skipped,
so re-running over a grown corpus only processes new documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&flagFailuresLog, "failures-log", "", "append failure details to this file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	embedder, err := newEmbedder(cfg, true)
	if err != nil {
		return err
	}
	defer embedder.Close()

	store, err := newStore(ctx, cfg, embedder.Dimensions())
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := services.NewIngestionPipeline(
		jsonl.NewSource(args[0]),
		store,
		embedder,
		newSegmenter(cfg),
	)

	if flagFailuresLog != "" {
		f, err := os.OpenFile(flagFailuresLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("opening failures log: %w", err)
		}
		defer f.Close()
		pipeline.SetFailureLog(f)
	}

	report, err := pipeline.Run(ctx)
	if err != nil {
		// Failures recorded before the run aborted still matter.
		for _, f := range report.Failures {
			cmd.Printf("  %s\n", f)
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}

	cmd.Println("Ingestion complete:")
	cmd.Printf("  Loaded:    %d documents\n", report.Loaded)
	cmd.Printf("  Processed: %d documents (%d chunks)\n", report.Processed, report.TotalChunks)
	cmd.Printf("  Skipped:   %d already ingested\n", report.Skipped)
	cmd.Printf("  Failed:    %d\n", report.Failed())
	cmd.Printf("  Duration:  %s\n", report.Duration.Round(time.Millisecond))

	if report.Failed() > 0 {
		cmd.Println("\nFailures:")
		for _, f := range report.Failures {
			cmd.Printf("  %s\n", f)
		}
	}
	return nil
}
