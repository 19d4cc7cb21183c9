package driving

import (
	"context"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

// SearchService answers similarity queries over the ingested corpus.
type SearchService interface {
	// Search validates the query, embeds it and returns ranked results
	// with scores rounded to four decimal digits. Returns
	// domain.ErrInvalidInput for out-of-range parameters and
	// domain.ErrEmbeddingUnavailable when the provider is not initialized.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}
