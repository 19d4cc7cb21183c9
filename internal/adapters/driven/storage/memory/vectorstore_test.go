package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

func doc(title string) domain.Document {
	return domain.Document{ID: "paper-" + title, Title: title, Abstract: "about " + title}
}

func chunk(index int, text string, vec []float32) domain.Chunk {
	return domain.Chunk{
		Index:     index,
		Text:      text,
		Embedding: vec,
		Metadata:  domain.ChunkMetadata{ChunkIndex: index},
	}
}

func TestInsertAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore(3)

	err := store.InsertDocumentChunks(ctx, doc("A"), []domain.Chunk{
		chunk(0, "aaaa", []float32{1, 0, 0}),
		chunk(1, "bb", []float32{0, 1, 0}),
	})
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalChunks)
	assert.Equal(t, int64(1), stats.UniquePapers)
	assert.InDelta(t, 3.0, stats.AvgChunkLength, 0.001)
	require.NotNil(t, stats.FirstIngestion)
	require.NotNil(t, stats.LastIngestion)

	// A second document bumps unique papers by exactly one.
	err = store.InsertDocumentChunks(ctx, doc("B"), []domain.Chunk{
		chunk(0, "cc", []float32{0, 0, 1}),
	})
	require.NoError(t, err)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalChunks)
	assert.Equal(t, int64(2), stats.UniquePapers)
}

func TestStatsEmpty(t *testing.T) {
	store := NewVectorStore(3)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
	assert.Zero(t, stats.UniquePapers)
	assert.Nil(t, stats.FirstIngestion)
	assert.Nil(t, stats.LastIngestion)
}

func TestExistingTitles(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore(3)

	titles, err := store.ExistingTitles(ctx)
	require.NoError(t, err)
	assert.Empty(t, titles)

	require.NoError(t, store.InsertDocumentChunks(ctx, doc("A"), []domain.Chunk{
		chunk(0, "x", []float32{1, 0, 0}),
	}))

	titles, err = store.ExistingTitles(ctx)
	require.NoError(t, err)
	assert.Contains(t, titles, "A")
	assert.Len(t, titles, 1)
}

func TestInsertDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore(3)

	err := store.InsertDocumentChunks(ctx, doc("A"), []domain.Chunk{
		chunk(0, "ok", []float32{1, 0, 0}),
		chunk(1, "bad", []float32{1, 0}),
	})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// The whole document is rejected, nothing partial is visible.
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
}

func TestRankBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore(3)

	require.NoError(t, store.InsertDocumentChunks(ctx, doc("A"), []domain.Chunk{
		chunk(0, "exact match", []float32{1, 0, 0}),
		chunk(1, "orthogonal", []float32{0, 1, 0}),
		chunk(2, "close", []float32{1, 0.2, 0}),
	}))

	results, err := store.RankBySimilarity(ctx, []float32{1, 0, 0}, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Descending by score, floor filters the orthogonal chunk.
	assert.Equal(t, "exact match", results[0].TextChunk)
	assert.Equal(t, "close", results[1].TextChunk)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.5)
	}
}

func TestRankTruncatesToMaxResults(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore(3)

	require.NoError(t, store.InsertDocumentChunks(ctx, doc("A"), []domain.Chunk{
		chunk(0, "one", []float32{1, 0, 0}),
		chunk(1, "two", []float32{1, 0, 0}),
		chunk(2, "three", []float32{1, 0, 0}),
	}))

	results, err := store.RankBySimilarity(ctx, []float32{1, 0, 0}, 2, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRankTiesBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore(3)

	require.NoError(t, store.InsertDocumentChunks(ctx, doc("A"), []domain.Chunk{
		chunk(0, "first inserted", []float32{1, 0, 0}),
		chunk(1, "second inserted", []float32{1, 0, 0}),
	}))

	results, err := store.RankBySimilarity(ctx, []float32{1, 0, 0}, 5, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first inserted", results[0].TextChunk)
	assert.Equal(t, "second inserted", results[1].TextChunk)
}

func TestRankValidation(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore(3)

	_, err := store.RankBySimilarity(ctx, []float32{1, 0, 0}, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.RankBySimilarity(ctx, []float32{1, 0, 0}, 21, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.RankBySimilarity(ctx, []float32{1, 0}, 5, 0)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
