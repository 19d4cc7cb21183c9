// Package cli implements the evidex command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidex/internal/adapters/driven/embedding"
	"github.com/custodia-labs/evidex/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/evidex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/evidex/internal/config"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
	"github.com/custodia-labs/evidex/internal/logger"
	"github.com/custodia-labs/evidex/internal/segmenter"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig  string
	flagVerbose bool
	flagStore   string
)

var rootCmd = &cobra.Command{
	Use:   "evidex",
	Short: "Semantic excerpt retrieval over a research corpus",
	Long: `Evidex ingests research documents from a JSONL corpus, segments them
into overlapping sentence-aligned chunks, embeds the chunks and answers
ranked similarity queries over HTTP or from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.toml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "vector store backend (sqlite or postgres)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads and validates configuration, applying the --store
// override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagStore != "" {
		cfg.Store = flagStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newEmbedder builds the configured embedding service. When validated
// is set, provider connectivity is checked and a dead provider is a
// startup error.
func newEmbedder(cfg *config.Config, validated bool) (driven.EmbeddingService, error) {
	settings := embedding.Settings{
		Provider:       cfg.Embedding.Provider,
		Model:          cfg.Embedding.Model,
		BaseURL:        cfg.Embedding.BaseURL,
		APIKey:         cfg.Embedding.APIKey,
		Dimensions:     cfg.Embedding.Dimensions,
		RequestsPerSec: cfg.Embedding.RequestsPerSec,
	}
	if validated {
		return embedding.NewValidatedService(settings)
	}
	return embedding.NewService(settings)
}

// newStore builds the configured vector store for the given embedding
// dimension.
func newStore(ctx context.Context, cfg *config.Config, dims int) (driven.VectorStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return postgres.NewStore(ctx, cfg.DB.DSN(), dims)
	case config.StoreSQLite:
		return sqlite.NewStore(cfg.DataDir, dims)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// newSegmenter builds the segmenter from chunking configuration.
func newSegmenter(cfg *config.Config) *segmenter.Segmenter {
	return segmenter.New(
		segmenter.WithWindowSize(cfg.Chunking.WindowSize),
		segmenter.WithOverlapSentences(cfg.Chunking.OverlapSentences),
	)
}
