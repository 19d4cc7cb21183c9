package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/services"
)

var (
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search ingested documents",
	Long: `Embeds the query and returns the most similar stored chunks, ranked
by cosine similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of results")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", domain.DefaultSimilarityFloor, "minimum similarity score")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	svc := services.NewSearchService(store, embedder)
	results, err := svc.Search(ctx, domain.SearchQuery{
		Text:            args[0],
		MaxResults:      searchLimit,
		SimilarityFloor: searchThreshold,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchPlain(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchPlain(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, r.Title, r.Score)
		cmd.Printf("      chunk %d/%d from %s\n",
			r.Metadata.ChunkIndex+1, r.Metadata.TotalChunks, r.Metadata.SourceFile)

		excerpt := r.TextChunk
		if len(excerpt) > 200 {
			excerpt = excerpt[:200] + "..."
		}
		cmd.Printf("      %s\n", excerpt)
		cmd.Println()
	}
	return nil
}
