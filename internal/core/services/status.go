package services

import (
	"context"
	"time"

	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
	"github.com/custodia-labs/evidex/internal/core/ports/driving"
	"github.com/custodia-labs/evidex/internal/logger"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService reports dependency health and store aggregates.
type StatusService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
}

// NewStatusService creates a new status service.
// The embedder is optional (can be nil).
func NewStatusService(store driven.VectorStore, embedder driven.EmbeddingService) *StatusService {
	return &StatusService{
		store:    store,
		embedder: embedder,
	}
}

// Health snapshots dependency connectivity. A broken dependency is
// reported in the snapshot, never as an error.
func (s *StatusService) Health(ctx context.Context) domain.Health {
	h := domain.Health{
		ModelLoaded: s.embedder != nil && s.embedder.Dimensions() > 0,
		Timestamp:   time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			logger.Warn("Store ping failed: %v", err)
		} else {
			h.DatabaseConnected = true
		}
	}

	h.Status = domain.StatusDegraded
	if h.DatabaseConnected && h.ModelLoaded {
		h.Status = domain.StatusHealthy
	}
	return h
}

// Stats returns the aggregate view of the store.
func (s *StatusService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.store.Stats(ctx)
}
