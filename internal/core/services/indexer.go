package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aula-labs/aularag/internal/chunker"
	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
	"github.com/aula-labs/aularag/internal/core/ports/driving"
	"github.com/aula-labs/aularag/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexerService = (*Indexer)(nil)

// Indexer orchestrates chunk -> metadata merge -> embed -> upsert for
// batches of documents.
type Indexer struct {
	chunker    *chunker.Chunker
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	registry   driven.DocumentRegistry
	extractors driven.ExtractorRegistry

	documentsPath string
}

// NewIndexer creates an indexer. The registry is optional (can be nil);
// without it, file listings and subject queries are unavailable but
// indexing itself is unaffected.
func NewIndexer(
	ck *chunker.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	registry driven.DocumentRegistry,
	extractors driven.ExtractorRegistry,
	documentsPath string,
) *Indexer {
	return &Indexer{
		chunker:       ck,
		embedder:      embedder,
		store:         store,
		registry:      registry,
		extractors:    extractors,
		documentsPath: documentsPath,
	}
}

// Index processes each document independently: empty documents are counted
// as skips, per-document embedding or upsert failures are recorded in the
// report, and the batch always runs to completion. IndexedCount is the
// number of chunks successfully upserted across all documents.
func (s *Indexer) Index(ctx context.Context, documents []domain.Document) (domain.IndexReport, error) {
	logger.Section("Indexing")
	logger.Debug("Batch of %d documents", len(documents))

	report := domain.IndexReport{Errors: []domain.IndexError{}}

	for i := range documents {
		doc := documents[i]

		if strings.TrimSpace(doc.Content) == "" {
			logger.Debug("Document %d has no content, skipping", i)
			report.SkippedCount++
			continue
		}

		if doc.ID == "" {
			doc.ID = deriveDocumentID(doc)
		}

		count, err := s.indexDocument(ctx, doc)
		if err != nil {
			logger.Warn("Document %q failed: %v", doc.ID, err)
			report.Errors = append(report.Errors, domain.IndexError{
				DocumentID: doc.ID,
				Reason:     err.Error(),
				Err:        err,
			})
			continue
		}

		report.IndexedCount += count
	}

	logger.Info("Indexed %d chunks, skipped %d documents, %d errors",
		report.IndexedCount, report.SkippedCount, len(report.Errors))
	return report, nil
}

// indexDocument chunks, embeds and upserts a single document, then records
// it in the registry. Chunks are embedded in one batched call and upserted
// in one batched call; there are no per-chunk round-trips.
func (s *Indexer) indexDocument(ctx context.Context, doc domain.Document) (int, error) {
	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return 0, fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("Document %q: %d chunks", doc.ID, len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	points := make([]domain.Point, len(chunks))
	for i := range chunks {
		payload := chunks[i].Metadata.Merge(chunks[i].Index, chunks[i].Total, doc.ID)
		payload[domain.KeyContent] = chunks[i].Content

		points[i] = domain.Point{
			ID:      chunks[i].PointID(),
			Vector:  vectors[i],
			Payload: payload,
		}
	}

	if err := s.store.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert points: %w", err)
	}

	if s.registry != nil {
		entry := driven.RegistryEntry{
			DocumentID:    doc.ID,
			Filename:      doc.Metadata.Filename,
			Asignatura:    doc.Metadata.Asignatura,
			TipoDocumento: doc.Metadata.TipoDocumento,
			ChunkCount:    len(chunks),
			IndexedAt:     time.Now().UTC(),
		}
		if err := s.registry.Record(ctx, entry); err != nil {
			// Registry is bookkeeping; the chunks are already stored.
			logger.Warn("Registry record for %q failed: %v", doc.ID, err)
		}
	}

	return len(points), nil
}

// LoadFile reads a file from the documents directory, extracts its plain
// text and indexes it. The document ID is derived from the filename so
// re-loading the same file overwrites its prior chunks.
func (s *Indexer) LoadFile(ctx context.Context, filename string, meta domain.Metadata) (string, domain.IndexReport, error) {
	if s.extractors == nil {
		return "", domain.IndexReport{}, domain.ErrUnsupportedType
	}

	// Filenames may be relative paths inside the documents directory
	// (documents/<asignatura>/<tipo_documento>/<file>); anything escaping it
	// is rejected.
	clean := filepath.Clean(filename)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", domain.IndexReport{}, fmt.Errorf("%w: invalid filename %q", domain.ErrInvalidInput, filename)
	}

	extractor, err := s.extractors.ForFilename(clean)
	if err != nil {
		return "", domain.IndexReport{}, err
	}

	path := filepath.Join(s.documentsPath, clean)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.IndexReport{}, fmt.Errorf("%w: %s", domain.ErrNotFound, clean)
		}
		return "", domain.IndexReport{}, fmt.Errorf("read file: %w", err)
	}

	text, err := extractor.Extract(ctx, content)
	if err != nil {
		return "", domain.IndexReport{}, fmt.Errorf("extract %s: %w", clean, err)
	}

	meta.Filename = clean
	doc := domain.Document{
		ID:       domain.DocumentIDFromFilename(clean),
		Content:  text,
		Metadata: meta,
	}

	logger.Info("Loading file %q as document %q", clean, doc.ID)
	report, err := s.Index(ctx, []domain.Document{doc})
	return doc.ID, report, err
}

// deriveDocumentID picks a deterministic ID for a document submitted without
// one: the filename when present, otherwise a content hash.
func deriveDocumentID(doc domain.Document) string {
	if doc.Metadata.Filename != "" {
		return domain.DocumentIDFromFilename(doc.Metadata.Filename)
	}
	return domain.DocumentIDFromContent(doc.Content)
}
