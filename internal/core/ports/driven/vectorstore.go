package driven

import (
	"context"

	"github.com/aula-labs/aularag/internal/core/domain"
)

// ScoredPoint is a vector store search hit before threshold filtering.
type ScoredPoint struct {
	// Point is the stored point, payload included.
	Point domain.Point

	// Score is the cosine similarity (0-1).
	Score float64
}

// SearchParams controls a vector store similarity search.
type SearchParams struct {
	// Limit is the maximum number of candidates to return. Callers may
	// over-fetch to compensate for threshold-based exclusion downstream.
	Limit int

	// Filter restricts candidates to payloads matching every condition
	// (conjunctive semantics).
	Filter domain.Filter
}

// VectorStore persists points and supports filtered similarity search.
// Upserts are idempotent given deterministic point IDs; the store's
// last-write-wins semantics per point ID are relied upon as-is.
type VectorStore interface {
	// EnsureCollection creates the backing collection with the given vector
	// dimension if it does not already exist.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert inserts or overwrites the given points in one batched call.
	Upsert(ctx context.Context, points []domain.Point) error

	// Search returns up to params.Limit candidates most similar to the
	// vector, highest similarity first.
	Search(ctx context.Context, vector []float32, params SearchParams) ([]ScoredPoint, error)

	// CollectionInfo returns point count, dimension and status.
	CollectionInfo(ctx context.Context) (domain.CollectionInfo, error)

	// Close releases resources.
	Close() error
}
