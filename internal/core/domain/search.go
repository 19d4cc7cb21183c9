package domain

import "fmt"

// Bounds and defaults for search parameters.
const (
	// MinResults is the smallest accepted max_results value.
	MinResults = 1

	// MaxResults is the largest accepted max_results value.
	MaxResults = 20

	// DefaultMaxResults is used when the caller does not specify a limit.
	DefaultMaxResults = 5

	// DefaultSimilarityFloor is used when the caller does not specify a
	// similarity threshold.
	DefaultSimilarityFloor = 0.5
)

// SearchQuery is a validated similarity query.
type SearchQuery struct {
	// Text is the query string to embed and match against stored chunks.
	Text string

	// MaxResults bounds the number of returned results.
	MaxResults int

	// SimilarityFloor is the minimum acceptable similarity score.
	SimilarityFloor float64
}

// Validate checks the query against the accepted parameter ranges.
// Out-of-range values are rejected, not clamped, so callers get an
// explicit description of the violated constraint.
func (q SearchQuery) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}
	if q.MaxResults < MinResults || q.MaxResults > MaxResults {
		return fmt.Errorf("%w: max_results must be between %d and %d, got %d",
			ErrInvalidInput, MinResults, MaxResults, q.MaxResults)
	}
	if q.SimilarityFloor < 0 || q.SimilarityFloor > 1 {
		return fmt.Errorf("%w: similarity_threshold must be between 0 and 1, got %g",
			ErrInvalidInput, q.SimilarityFloor)
	}
	return nil
}

// SearchResult is a single ranked hit. It is transient and never persisted.
type SearchResult struct {
	// RowID is the storage row identifier of the matched chunk.
	RowID int64

	// Title and Abstract come from the chunk's parent document.
	Title    string
	Abstract string

	// TextChunk is the matched excerpt.
	TextChunk string

	// Score is the similarity in [0,1], 1 - cosine distance.
	Score float64

	// Metadata is the stored chunk metadata.
	Metadata ChunkMetadata

	// PaperID identifies the parent document.
	PaperID string

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int
}
