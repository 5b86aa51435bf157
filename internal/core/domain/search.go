package domain

// Default retrieval parameters, overridable through configuration.
const (
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.7
)

// SearchOptions controls retrieval behaviour.
type SearchOptions struct {
	// TopK is the maximum number of results to return. Zero means the
	// configured default.
	TopK int

	// SimilarityThreshold is the minimum similarity score, in [0,1], a
	// candidate must meet to be included. Zero means the configured default.
	SimilarityThreshold float64

	// Filter narrows results to payloads matching every condition.
	Filter Filter
}

// SearchResult is one ranked retrieval hit: the chunk text, its stored
// payload and the similarity score.
type SearchResult struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// IndexError records a single document's failure during batch indexing.
// Err keeps the underlying error so callers can match it against the
// sentinel errors; only the reason string is serialised.
type IndexError struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
	Err        error  `json:"-"`
}

// IndexReport summarises a batch indexing run. It is returned even under
// partial failure; a single document's failure never aborts the batch.
type IndexReport struct {
	// IndexedCount is the number of chunks successfully upserted.
	IndexedCount int `json:"indexed_count"`

	// SkippedCount is the number of documents skipped for empty content.
	SkippedCount int `json:"skipped_count"`

	// Errors lists per-document failures.
	Errors []IndexError `json:"errors"`
}

// CollectionInfo describes the backing vector store collection.
type CollectionInfo struct {
	Name            string `json:"name"`
	PointsCount     uint64 `json:"points_count"`
	VectorDimension int    `json:"vector_dimension"`
	Status          string `json:"status"`
}
