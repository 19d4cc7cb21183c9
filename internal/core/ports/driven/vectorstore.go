package driven

import (
	"context"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

// VectorStore persists embedded chunks and answers similarity queries.
//
// Implementations must be safe for concurrent use by in-flight queries;
// connections are scoped per operation and never leaked across calls.
// Storage is append-only: there is no update or delete path.
type VectorStore interface {
	// ExistingTitles returns the set of document titles already stored.
	// The ingestion pipeline uses it to filter re-runs before any
	// embedding work.
	ExistingTitles(ctx context.Context) (map[string]struct{}, error)

	// InsertDocumentChunks inserts one row per chunk for a single
	// document, transactionally: on any failure mid-batch the entire
	// document's insert is rolled back, so partial documents are never
	// visible to search.
	InsertDocumentChunks(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error

	// RankBySimilarity scores stored chunks as 1 - cosineDistance against
	// the query vector, keeps scores >= floor, orders descending and
	// truncates to maxResults. Equal scores break by insertion order.
	// maxResults outside [domain.MinResults, domain.MaxResults] is
	// rejected with domain.ErrInvalidInput.
	RankBySimilarity(ctx context.Context, query []float32, maxResults int, floor float64) ([]domain.SearchResult, error)

	// Stats returns the aggregate view over everything stored.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Ping checks connectivity to the underlying engine.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}
