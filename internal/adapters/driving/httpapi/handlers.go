package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/logger"
)

// handleHealth reports service status and vector store reachability. The
// endpoint itself always answers 200; a broken store is reported in the
// body, degraded rather than down.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy", QdrantConnected: true}

	info, err := s.retriever.CollectionInfo(r.Context())
	if err != nil {
		resp.Status = "degraded"
		resp.QdrantConnected = false
		resp.Message = err.Error()
	} else {
		resp.Collection = &info
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSearch runs a semantic search over the indexed corpus.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	opts := domain.SearchOptions{TopK: req.TopK}
	if req.SimilarityThreshold != nil {
		opts.SimilarityThreshold = *req.SimilarityThreshold
	}

	filter := domain.Filter{}
	if req.Asignatura != "" {
		filter[domain.KeyAsignatura] = req.Asignatura
	}
	if req.TipoDocumento != "" {
		filter[domain.KeyTipoDocumento] = req.TipoDocumento
	}
	if len(filter) > 0 {
		opts.Filter = filter
	}

	results, err := s.retriever.Search(r.Context(), req.Query, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:      results,
		TotalResults: len(results),
		Query:        req.Query,
	})
}

// handleIndex ingests a batch of documents submitted in the request body.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var docs []documentRequest
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	if len(docs) == 0 {
		writeError(w, fmt.Errorf("%w: empty document batch", domain.ErrInvalidInput))
		return
	}

	documents := make([]domain.Document, len(docs))
	for i, d := range docs {
		documents[i] = domain.Document{
			ID:       d.DocID,
			Content:  d.Content,
			Metadata: d.Metadata.Metadata,
		}
	}

	report, err := s.indexer.Index(r.Context(), documents)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, indexResponse{
		IndexReport:    report,
		CollectionName: s.collectionName,
		Timestamp:      time.Now().UTC(),
	})
}

// handleCollectionInfo returns vector store collection statistics.
func (s *Server) handleCollectionInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.retriever.CollectionInfo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleListFiles walks the documents directory and lists files relative
// to it. The layout <asignatura>/<tipo_documento>/<file> makes the query
// filters a path-prefix match. A missing directory is an empty listing,
// not an error.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	asignatura := r.URL.Query().Get("asignatura")
	tipo := r.URL.Query().Get("tipo_documento")

	files := []string{}

	err := filepath.WalkDir(s.documentsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.documentsPath, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !matchesPathLayout(name, asignatura, tipo) {
			return nil
		}
		files = append(files, name)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		writeError(w, fmt.Errorf("list files: %w", err))
		return
	}

	sort.Strings(files)
	writeJSON(w, http.StatusOK, fileListResponse{
		Files:      files,
		TotalFiles: len(files),
	})
}

// matchesPathLayout checks a relative file path against the directory
// layout filters. Files outside the two-level layout only match when no
// filter is set.
func matchesPathLayout(name, asignatura, tipo string) bool {
	if asignatura == "" && tipo == "" {
		return true
	}
	parts := strings.Split(name, "/")
	if len(parts) < 3 {
		return false
	}
	if asignatura != "" && parts[0] != asignatura {
		return false
	}
	if tipo != "" && parts[1] != tipo {
		return false
	}
	return true
}

// handleLoadFile extracts and indexes a file from the documents directory.
func (s *Server) handleLoadFile(w http.ResponseWriter, r *http.Request) {
	var req loadFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	if req.Filename == "" {
		writeError(w, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput))
		return
	}

	docID, report, err := s.indexer.LoadFile(r.Context(), req.Filename, req.Metadata.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(report.Errors) > 0 {
		// Single-document load: a report error means the load failed. The
		// typed error keeps the status mapping (503 for unreachable
		// backends) intact.
		loadErr := report.Errors[0].Err
		if loadErr == nil {
			loadErr = errors.New(report.Errors[0].Reason)
		}
		writeError(w, loadErr)
		return
	}

	writeJSON(w, http.StatusOK, loadFileResponse{
		Filename:     req.Filename,
		DocID:        docID,
		IndexedCount: report.IndexedCount,
		Timestamp:    time.Now().UTC(),
	})
}

// handleSubjects lists the distinct subjects recorded in the registry.
func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := []string{}

	if s.registry != nil {
		list, err := s.registry.Subjects(r.Context())
		if err != nil {
			logger.Warn("Listing subjects: %v", err)
			writeError(w, fmt.Errorf("list subjects: %w", err))
			return
		}
		if list != nil {
			subjects = list
		}
	}

	writeJSON(w, http.StatusOK, subjectListResponse{
		Subjects:      subjects,
		TotalSubjects: len(subjects),
	})
}
