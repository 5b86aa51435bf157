// Package httpapi exposes the indexing and retrieval pipeline over HTTP.
// The API layer is a thin consumer of the driving ports: request parsing
// and status mapping live here, pipeline semantics live in the services.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
	"github.com/aula-labs/aularag/internal/core/ports/driving"
	"github.com/aula-labs/aularag/internal/logger"
)

// Server serves the REST API.
type Server struct {
	indexer   driving.IndexerService
	retriever driving.RetrieverService
	registry  driven.DocumentRegistry

	documentsPath  string
	collectionName string

	httpServer *http.Server
}

// Config holds the HTTP server configuration.
type Config struct {
	Host string
	Port int

	// DocumentsPath is the directory listed by the files endpoint.
	DocumentsPath string

	// CollectionName is echoed in index responses.
	CollectionName string
}

// NewServer creates the API server. The registry is optional; without it
// the subjects endpoint reports an empty list.
func NewServer(
	cfg Config,
	indexer driving.IndexerService,
	retriever driving.RetrieverService,
	registry driven.DocumentRegistry,
) *Server {
	s := &Server{
		indexer:        indexer,
		retriever:      retriever,
		registry:       registry,
		documentsPath:  cfg.DocumentsPath,
		collectionName: cfg.CollectionName,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /index", s.handleIndex)
	mux.HandleFunc("GET /collection/info", s.handleCollectionInfo)
	mux.HandleFunc("GET /files", s.handleListFiles)
	mux.HandleFunc("POST /load-file", s.handleLoadFile)
	mux.HandleFunc("GET /subjects", s.handleSubjects)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the underlying HTTP handler. Useful for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	logger.Info("HTTP API listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// writeJSON encodes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Encoding response: %v", err)
	}
}

// writeError maps domain errors to HTTP statuses. Input errors are 400,
// missing entities 404, upstream unavailability 503, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyDocument),
		errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrInvalidChunkConfig):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrVectorStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, errorResponse{Detail: err.Error()})
}
