package driving

import (
	"context"

	"github.com/aula-labs/aularag/internal/core/domain"
)

// RetrieverService answers semantic queries against the indexed corpus.
type RetrieverService interface {
	// Search embeds the query and returns up to TopK chunks at or above the
	// similarity threshold, highest similarity first. An empty result is a
	// valid outcome, not an error; infrastructure failures propagate.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// CollectionInfo is an informational passthrough to the vector store.
	CollectionInfo(ctx context.Context) (domain.CollectionInfo, error)
}
