package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

// mockEmbedder is a hand-written EmbeddingService test double. It
// returns a deterministic unit vector derived from the text length so
// different chunks stay distinguishable.
type mockEmbedder struct {
	dims     int
	pingErr  error
	embedErr error

	// pingErrOnRetry is returned by every Ping call after the first,
	// simulating a provider that dies mid-run.
	pingErrOnRetry error

	pingCalls  int
	batchCalls int
	embedded   []string
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) vector(text string) []float32 {
	vec := make([]float32, m.dims)
	vec[len(text)%m.dims] = 1
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.embedded = append(m.embedded, text)
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Close() error      { return nil }

func (m *mockEmbedder) Ping(_ context.Context) error {
	m.pingCalls++
	if m.pingCalls > 1 && m.pingErrOnRetry != nil {
		return m.pingErrOnRetry
	}
	return m.pingErr
}

// mockSource is a hand-written DocumentSource test double.
type mockSource struct {
	docs     []domain.Document
	failures []domain.Failure
	err      error
}

func (m *mockSource) Load(_ context.Context) ([]domain.Document, []domain.Failure, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.docs, m.failures, nil
}

var errMockEmbed = errors.New("model overloaded")
