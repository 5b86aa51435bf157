// Package memory provides an in-memory vector store for tests and local
// runs without a Qdrant instance.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps points in memory and ranks by exact cosine similarity.
type Store struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]int // point ID -> slot in order
	order     []domain.Point // insertion order, stable tie-breaking
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{
		points: make(map[string]int),
	}
}

// EnsureCollection records the vector dimension.
func (s *Store) EnsureCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

// Upsert inserts or overwrites points. An overwritten point keeps its
// original insertion slot.
func (s *Store) Upsert(_ context.Context, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if s.dimension > 0 && len(p.Vector) != s.dimension {
			return domain.ErrDimensionMismatch
		}
		if slot, ok := s.points[p.ID]; ok {
			s.order[slot] = p
			continue
		}
		s.points[p.ID] = len(s.order)
		s.order = append(s.order, p)
	}
	return nil
}

// Search ranks all matching points by cosine similarity, ties broken by
// insertion order.
func (s *Store) Search(_ context.Context, vector []float32, params driven.SearchParams) ([]driven.ScoredPoint, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.ScoredPoint, 0, len(s.order))
	for _, p := range s.order {
		if !params.Filter.Matches(p.Payload) {
			continue
		}
		hits = append(hits, driven.ScoredPoint{
			Point: p,
			Score: cosine(vector, p.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// CollectionInfo reports the in-memory collection state.
func (s *Store) CollectionInfo(_ context.Context) (domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.CollectionInfo{
		Name:            "memory",
		PointsCount:     uint64(len(s.order)),
		VectorDimension: s.dimension,
		Status:          "green",
	}, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// cosine computes cosine similarity between two vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
