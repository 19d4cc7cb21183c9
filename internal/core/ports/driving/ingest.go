package driving

import (
	"context"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

// IngestService runs the ingestion pipeline over a document source.
type IngestService interface {
	// Run executes one complete pass: load, dedup-filter, then per
	// document segment, embed and store, accumulating failures. The
	// returned error is reserved for run-level faults (source unreadable,
	// store or embedding provider unreachable); per-document failures are
	// recorded in the report and never abort the run.
	Run(ctx context.Context) (domain.IngestReport, error)
}
