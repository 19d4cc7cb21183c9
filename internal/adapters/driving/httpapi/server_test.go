package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidex/internal/core/domain"
)

// stubSearch records the query it was called with.
type stubSearch struct {
	results []domain.SearchResult
	err     error
	got     domain.SearchQuery
}

func (s *stubSearch) Search(_ context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	s.got = q
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type stubStatus struct {
	health   domain.Health
	stats    domain.StoreStats
	statsErr error
}

func (s *stubStatus) Health(_ context.Context) domain.Health {
	return s.health
}

func (s *stubStatus) Stats(_ context.Context) (domain.StoreStats, error) {
	if s.statsErr != nil {
		return domain.StoreStats{}, s.statsErr
	}
	return s.stats, nil
}

func newTestServer(search *stubSearch, status *stubStatus) *Server {
	return NewServer(search, status, 0)
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSearchAppliesDefaults(t *testing.T) {
	search := &stubSearch{}
	srv := newTestServer(search, &stubStatus{})

	rec := doRequest(t, srv, http.MethodPost, "/search", `{"query": "creatine"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "creatine", search.got.Text)
	assert.Equal(t, domain.DefaultMaxResults, search.got.MaxResults)
	assert.Equal(t, domain.DefaultSimilarityFloor, search.got.SimilarityFloor)
}

func TestSearchPassesExplicitParameters(t *testing.T) {
	search := &stubSearch{}
	srv := newTestServer(search, &stubStatus{})

	rec := doRequest(t, srv, http.MethodPost, "/search",
		`{"query": "creatine", "max_results": 3, "similarity_threshold": 0.8}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 3, search.got.MaxResults)
	assert.Equal(t, 0.8, search.got.SimilarityFloor)
}

func TestSearchResponseShape(t *testing.T) {
	ingested := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	search := &stubSearch{results: []domain.SearchResult{{
		RowID:     7,
		Title:     "Creatine and muscle growth",
		Abstract:  "An abstract.",
		TextChunk: "Creatine increases strength.",
		Score:     0.9132,
		Metadata: domain.ChunkMetadata{
			ChunkIndex: 0, TotalChunks: 2, WordCount: 3,
			SourceFile: "papers.jsonl", IngestedAt: ingested,
		},
		PaperID:    "paper-1",
		ChunkIndex: 0,
	}}}
	srv := newTestServer(search, &stubStatus{})

	rec := doRequest(t, srv, http.MethodPost, "/search", `{"query": "creatine"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "creatine", resp.Query)
	assert.Equal(t, 1, resp.TotalResults)
	assert.GreaterOrEqual(t, resp.SearchTimeMs, 0.0)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, int64(7), r.ID)
	assert.Equal(t, "Creatine and muscle growth", r.Title)
	assert.Equal(t, 0.9132, r.SimilarityScore)
	assert.Equal(t, "paper-1", r.PaperID)
	assert.Equal(t, 2, r.Metadata.TotalChunks)
}

func TestSearchEmptyResultsIsArray(t *testing.T) {
	srv := newTestServer(&stubSearch{}, &stubStatus{})

	rec := doRequest(t, srv, http.MethodPost, "/search", `{"query": "nothing matches"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
}

func TestSearchInvalidBody(t *testing.T) {
	srv := newTestServer(&stubSearch{}, &stubStatus{})

	rec := doRequest(t, srv, http.MethodPost, "/search", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "invalid request body")
}

func TestSearchErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", domain.ErrInvalidInput, http.StatusBadRequest},
		{"embedder down", domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable},
		{"store down", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubSearch{err: tt.err}, &stubStatus{})
			rec := doRequest(t, srv, http.MethodPost, "/search", `{"query": "q"}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), "detail")
		})
	}
}

func TestHealth(t *testing.T) {
	now := time.Now().UTC()
	status := &stubStatus{health: domain.Health{
		Status: domain.StatusHealthy, DatabaseConnected: true, ModelLoaded: true, Timestamp: now,
	}}
	srv := newTestServer(&stubSearch{}, status)

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.DatabaseConnected)
	assert.True(t, resp.ModelLoaded)
}

func TestStatsOmitsTimestampsWhenEmpty(t *testing.T) {
	srv := newTestServer(&stubSearch{}, &stubStatus{})

	rec := doRequest(t, srv, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "first_ingestion")
	assert.NotContains(t, rec.Body.String(), "last_ingestion")
}

func TestStatsWithData(t *testing.T) {
	first := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	status := &stubStatus{stats: domain.StoreStats{
		TotalChunks: 42, UniquePapers: 7, AvgChunkLength: 1234.5,
		FirstIngestion: &first, LastIngestion: &last,
	}}
	srv := newTestServer(&stubSearch{}, status)

	rec := doRequest(t, srv, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.TotalChunks)
	assert.Equal(t, int64(7), resp.UniquePapers)
	require.NotNil(t, resp.FirstIngestion)
	assert.True(t, first.Equal(*resp.FirstIngestion))
}

func TestStatsStoreError(t *testing.T) {
	srv := newTestServer(&stubSearch{}, &stubStatus{statsErr: domain.ErrStoreUnavailable})

	rec := doRequest(t, srv, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&stubSearch{}, &stubStatus{})

	rec := doRequest(t, srv, http.MethodOptions, "/search", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSearchRejectsGet(t *testing.T) {
	srv := newTestServer(&stubSearch{}, &stubStatus{})

	rec := doRequest(t, srv, http.MethodGet, "/search", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
