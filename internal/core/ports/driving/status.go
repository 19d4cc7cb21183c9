package driving

import (
	"context"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

// StatusService reports service health and store aggregates.
type StatusService interface {
	// Health snapshots dependency connectivity. It never fails; a broken
	// dependency is reported in the snapshot itself.
	Health(ctx context.Context) domain.Health

	// Stats returns the aggregate view of the store.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
