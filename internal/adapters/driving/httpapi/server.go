// Package httpapi exposes the search, health and stats operations over
// HTTP with JSON bodies.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/evidex/internal/core/ports/driving"
	"github.com/custodia-labs/evidex/internal/logger"
)

// Server timeouts.
const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	search driving.SearchService
	status driving.StatusService
	srv    *http.Server
}

// NewServer creates a server listening on the given port.
func NewServer(search driving.SearchService, status driving.StatusService, port int) *Server {
	s := &Server{
		search: search,
		status: status,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      withCORS(mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe blocks serving requests until the server is shut down.
func (s *Server) ListenAndServe() error {
	logger.Info("HTTP API listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// withCORS allows any origin, matching the service's open read-only
// deployment model.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
