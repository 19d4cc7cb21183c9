package driven

import (
	"context"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

// DocumentSource yields the documents of one ingestion corpus.
//
// Loading is tolerant: a malformed entry is recorded as a parse failure
// and loading continues. The returned error is reserved for failures of
// the source itself (missing file, unreadable stream).
type DocumentSource interface {
	// Load reads the whole corpus, returning the decodable documents and
	// a failure record for every entry that could not be decoded.
	Load(ctx context.Context) ([]domain.Document, []domain.Failure, error)
}
