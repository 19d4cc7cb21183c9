package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/custodia-labs/evidex/internal/core/domain"
	"github.com/custodia-labs/evidex/internal/logger"
)

// searchRequest is the POST /search body. Optional fields are pointers
// so absent values take the documented defaults.
type searchRequest struct {
	Query               string   `json:"query"`
	MaxResults          *int     `json:"max_results"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
}

// searchResult is one ranked hit on the wire.
type searchResult struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Abstract        string        `json:"abstract"`
	TextChunk       string        `json:"text_chunk"`
	SimilarityScore float64       `json:"similarity_score"`
	Metadata        chunkMetadata `json:"metadata"`
	PaperID         string        `json:"paper_id"`
	ChunkIndex      int           `json:"chunk_index"`
}

type chunkMetadata struct {
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	WordCount   int       `json:"word_count"`
	SourceFile  string    `json:"source_file"`
	IngestedAt  time.Time `json:"ingested_at"`
}

type searchResponse struct {
	Query        string         `json:"query"`
	Results      []searchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	SearchTimeMs float64        `json:"search_time_ms"`
}

type healthResponse struct {
	Status            string    `json:"status"`
	DatabaseConnected bool      `json:"database_connected"`
	ModelLoaded       bool      `json:"model_loaded"`
	Timestamp         time.Time `json:"timestamp"`
}

// statsResponse omits the ingestion timestamps while the store is empty.
type statsResponse struct {
	TotalChunks    int64      `json:"total_chunks"`
	UniquePapers   int64      `json:"unique_papers"`
	AvgChunkLength float64    `json:"avg_chunk_length"`
	FirstIngestion *time.Time `json:"first_ingestion,omitempty"`
	LastIngestion  *time.Time `json:"last_ingestion,omitempty"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	query := domain.SearchQuery{
		Text:            req.Query,
		MaxResults:      domain.DefaultMaxResults,
		SimilarityFloor: domain.DefaultSimilarityFloor,
	}
	if req.MaxResults != nil {
		query.MaxResults = *req.MaxResults
	}
	if req.SimilarityThreshold != nil {
		query.SimilarityFloor = *req.SimilarityThreshold
	}

	start := time.Now()
	results, err := s.search.Search(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	elapsed := time.Since(start)

	resp := searchResponse{
		Query:        query.Text,
		Results:      make([]searchResult, 0, len(results)),
		TotalResults: len(results),
		SearchTimeMs: math.Round(float64(elapsed.Microseconds())/100) / 10,
	}
	for _, res := range results {
		resp.Results = append(resp.Results, searchResult{
			ID:              res.RowID,
			Title:           res.Title,
			Abstract:        res.Abstract,
			TextChunk:       res.TextChunk,
			SimilarityScore: res.Score,
			Metadata: chunkMetadata{
				ChunkIndex:  res.Metadata.ChunkIndex,
				TotalChunks: res.Metadata.TotalChunks,
				WordCount:   res.Metadata.WordCount,
				SourceFile:  res.Metadata.SourceFile,
				IngestedAt:  res.Metadata.IngestedAt,
			},
			PaperID:    res.PaperID,
			ChunkIndex: res.ChunkIndex,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.status.Health(r.Context())
	writeJSON(w, http.StatusOK, healthResponse{
		Status:            h.Status,
		DatabaseConnected: h.DatabaseConnected,
		ModelLoaded:       h.ModelLoaded,
		Timestamp:         h.Timestamp,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.status.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalChunks:    stats.TotalChunks,
		UniquePapers:   stats.UniquePapers,
		AvgChunkLength: stats.AvgChunkLength,
		FirstIngestion: stats.FirstIngestion,
		LastIngestion:  stats.LastIngestion,
	})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Encoding response: %v", err)
	}
}
