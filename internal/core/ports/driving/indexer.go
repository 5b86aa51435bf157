package driving

import (
	"context"

	"github.com/aula-labs/aularag/internal/core/domain"
)

// IndexerService ingests documents into the vector store.
type IndexerService interface {
	// Index chunks, embeds and upserts a batch of documents. Documents with
	// empty content are skipped; per-document failures are recorded in the
	// report rather than aborting the batch.
	Index(ctx context.Context, documents []domain.Document) (domain.IndexReport, error)

	// LoadFile reads a file from the documents directory, extracts its text
	// and indexes it under a filename-derived document ID.
	LoadFile(ctx context.Context, filename string, meta domain.Metadata) (string, domain.IndexReport, error)
}
