package services

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
	"github.com/custodia-labs/evidex/internal/core/ports/driving"
	"github.com/custodia-labs/evidex/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers similarity queries against the vector store.
type SearchService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
}

// NewSearchService creates a new search service.
func NewSearchService(store driven.VectorStore, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
	}
}

// Search embeds the query text and returns ranked results.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query.Text)

	if s.embedder == nil {
		return nil, fmt.Errorf("%w: embedding model not initialized", domain.ErrEmbeddingUnavailable)
	}

	if err := query.Validate(); err != nil {
		logger.Debug("Query rejected: %v", err)
		return nil, err
	}

	logger.Debug("Limit: %d, Threshold: %g", query.MaxResults, query.SimilarityFloor)

	embeddings, err := s.embedder.EmbedBatch(ctx, []string{query.Text})
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 embedding, got %d", len(embeddings))
	}
	logger.Debug("Query embedding: %d dimensions", len(embeddings[0]))

	results, err := s.store.RankBySimilarity(ctx, embeddings[0], query.MaxResults, query.SimilarityFloor)
	if err != nil {
		return nil, fmt.Errorf("rank chunks: %w", err)
	}

	for i := range results {
		results[i].Score = roundScore(results[i].Score)
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// roundScore rounds a similarity score to four decimal digits.
func roundScore(score float64) float64 {
	return math.Round(score*10000) / 10000
}
