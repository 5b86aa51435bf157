package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
	"github.com/aula-labs/aularag/internal/core/ports/driving"
	"github.com/aula-labs/aularag/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrieverService = (*Retriever)(nil)

// Retriever turns a query into a ranked, filtered result set.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore

	defaultTopK      int
	defaultThreshold float64
}

// NewRetriever creates a retriever with the configured retrieval defaults.
// Non-positive defaults fall back to the domain constants.
func NewRetriever(embedder driven.EmbeddingService, store driven.VectorStore, topK int, threshold float64) *Retriever {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if threshold <= 0 {
		threshold = domain.DefaultSimilarityThreshold
	}
	return &Retriever{
		embedder:         embedder,
		store:            store,
		defaultTopK:      topK,
		defaultThreshold: threshold,
	}
}

// Search embeds the query, runs a filtered similarity search and assembles
// the ranked result set. Candidates below the similarity threshold are
// excluded; the store is asked for more than TopK candidates to compensate.
// No results above the threshold is a valid empty outcome; infrastructure
// failures propagate as errors so outages are never masked as "no matches".
func (s *Retriever) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	logger.Section("Search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}
	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}
	logger.Debug("Query: %q, topK=%d, threshold=%.2f, filter=%v", query, topK, threshold, opts.Filter)

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch so threshold filtering still leaves topK candidates; a
	// metadata filter thins candidates further, so fetch more again.
	limit := topK * 2
	if len(opts.Filter) > 0 {
		limit = topK * 3
	}

	candidates, err := s.store.Search(ctx, vector, driven.SearchParams{
		Limit:  limit,
		Filter: opts.Filter,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Store returned %d candidates", len(candidates))

	results := make([]domain.SearchResult, 0, topK)
	for _, c := range candidates {
		if c.Score < threshold {
			continue
		}
		content, _ := c.Point.Payload[domain.KeyContent].(string)
		metadata := make(map[string]any, len(c.Point.Payload))
		for k, v := range c.Point.Payload {
			if k == domain.KeyContent {
				continue
			}
			metadata[k] = v
		}
		results = append(results, domain.SearchResult{
			Content:  content,
			Metadata: metadata,
			Score:    c.Score,
		})
	}

	// Stores return candidates ranked already; the stable sort keeps
	// insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	logger.Info("Returning %d results above threshold %.2f", len(results), threshold)
	return results, nil
}

// CollectionInfo passes through to the vector store.
func (s *Retriever) CollectionInfo(ctx context.Context) (domain.CollectionInfo, error) {
	info, err := s.store.CollectionInfo(ctx)
	if err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("collection info: %w", err)
	}
	return info, nil
}
