// Package memory provides an in-memory VectorStore implementation.
// It mirrors the SQL stores' ranking contract and exists for tests and
// throwaway experiments; nothing persists across process restarts.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/core/ports/driven"
	"github.com/custodia-labs/evidex/internal/vectormath"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// row is one stored chunk.
type row struct {
	id         int64
	title      string
	abstract   string
	text       string
	embedding  []float32
	metadata   domain.ChunkMetadata
	paperID    string
	chunkIndex int
	ingestedAt time.Time
}

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu     sync.RWMutex
	dims   int
	nextID int64
	rows   []row
}

// NewVectorStore creates an in-memory store for vectors of the given
// dimension.
func NewVectorStore(dims int) *VectorStore {
	return &VectorStore{dims: dims, nextID: 1}
}

// ExistingTitles returns the set of document titles already stored.
func (s *VectorStore) ExistingTitles(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	titles := make(map[string]struct{})
	for _, r := range s.rows {
		titles[r.title] = struct{}{}
	}
	return titles, nil
}

// InsertDocumentChunks appends one row per chunk. The whole document is
// validated before anything is appended, so a bad batch leaves the store
// untouched.
func (s *VectorStore) InsertDocumentChunks(_ context.Context, doc domain.Document, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) != s.dims {
			return fmt.Errorf("chunk %d of %q has %d dimensions, store has %d: %w",
				c.Index, doc.Title, len(c.Embedding), s.dims, domain.ErrDimensionMismatch)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, c := range chunks {
		s.rows = append(s.rows, row{
			id:         s.nextID,
			title:      doc.Title,
			abstract:   doc.Abstract,
			text:       c.Text,
			embedding:  c.Embedding,
			metadata:   c.Metadata,
			paperID:    doc.ID,
			chunkIndex: c.Index,
			ingestedAt: now,
		})
		s.nextID++
	}
	return nil
}

// RankBySimilarity scores every stored chunk against the query vector.
func (s *VectorStore) RankBySimilarity(_ context.Context, query []float32, maxResults int, floor float64) ([]domain.SearchResult, error) {
	if maxResults < domain.MinResults || maxResults > domain.MaxResults {
		return nil, fmt.Errorf("%w: max_results must be between %d and %d, got %d",
			domain.ErrInvalidInput, domain.MinResults, domain.MaxResults, maxResults)
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w",
			len(query), s.dims, domain.ErrDimensionMismatch)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.SearchResult, 0, maxResults)
	for _, r := range s.rows {
		score := vectormath.CosineSimilarity(query, r.embedding)
		if score < floor {
			continue
		}
		results = append(results, domain.SearchResult{
			RowID:      r.id,
			Title:      r.title,
			Abstract:   r.abstract,
			TextChunk:  r.text,
			Score:      score,
			Metadata:   r.metadata,
			PaperID:    r.paperID,
			ChunkIndex: r.chunkIndex,
		})
	}

	// Stable keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// Stats aggregates over the stored rows.
func (s *VectorStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.StoreStats{TotalChunks: int64(len(s.rows))}
	if len(s.rows) == 0 {
		return stats, nil
	}

	titles := make(map[string]struct{})
	totalLength := 0
	first, last := s.rows[0].ingestedAt, s.rows[0].ingestedAt
	for _, r := range s.rows {
		titles[r.title] = struct{}{}
		totalLength += len(r.text)
		if r.ingestedAt.Before(first) {
			first = r.ingestedAt
		}
		if r.ingestedAt.After(last) {
			last = r.ingestedAt
		}
	}

	stats.UniquePapers = int64(len(titles))
	stats.AvgChunkLength = float64(totalLength) / float64(len(s.rows))
	stats.FirstIngestion = &first
	stats.LastIngestion = &last
	return stats, nil
}

// Ping always succeeds.
func (s *VectorStore) Ping(_ context.Context) error {
	return nil
}

// Close releases nothing.
func (s *VectorStore) Close() error {
	return nil
}
