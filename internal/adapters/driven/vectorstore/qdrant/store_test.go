package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
)

// fakeQdrant records requests and serves canned responses.
type fakeQdrant struct {
	mu       sync.Mutex
	requests []recordedRequest

	collectionExists bool
	searchResult     []map[string]any
	pointsCount      uint64
	dimension        int
}

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
	apiKey string
}

func (f *fakeQdrant) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			apiKey: r.Header.Get("api-key"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/test":
			if !f.collectionExists {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"status":       "green",
					"points_count": f.pointsCount,
					"config": map[string]any{
						"params": map[string]any{
							"vectors": map[string]any{"size": f.dimension},
						},
					},
				},
			})

		case r.Method == http.MethodPut && r.URL.Path == "/collections/test":
			f.collectionExists = true
			_ = json.NewEncoder(w).Encode(map[string]any{"result": true})

		case r.Method == http.MethodPut && r.URL.Path == "/collections/test/points":
			_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"status": "completed"}})

		case r.Method == http.MethodPost && r.URL.Path == "/collections/test/points/search":
			_ = json.NewEncoder(w).Encode(map[string]any{"result": f.searchResult})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeQdrant) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStore(t *testing.T, fake *fakeQdrant) *Store {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return NewStore(Config{URL: srv.URL, Collection: "test", APIKey: "secret"})
}

func TestEnsureCollection_CreatesWhenMissing(t *testing.T) {
	fake := &fakeQdrant{}
	store := newTestStore(t, fake)

	err := store.EnsureCollection(context.Background(), 768)

	require.NoError(t, err)
	last := fake.lastRequest()
	assert.Equal(t, http.MethodPut, last.method)
	vectors, ok := last.body["vectors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(768), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestEnsureCollection_NoopWhenPresent(t *testing.T) {
	fake := &fakeQdrant{collectionExists: true}
	store := newTestStore(t, fake)

	err := store.EnsureCollection(context.Background(), 768)

	require.NoError(t, err)
	last := fake.lastRequest()
	assert.Equal(t, http.MethodGet, last.method)
}

func TestEnsureCollection_InvalidDimension(t *testing.T) {
	store := newTestStore(t, &fakeQdrant{})

	err := store.EnsureCollection(context.Background(), 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpsert_BatchedWithWait(t *testing.T) {
	fake := &fakeQdrant{collectionExists: true}
	store := newTestStore(t, fake)

	points := []domain.Point{
		{ID: "id-1", Vector: []float32{0.1, 0.2}, Payload: map[string]any{"document_id": "doc"}},
		{ID: "id-2", Vector: []float32{0.3, 0.4}, Payload: map[string]any{"document_id": "doc"}},
	}

	err := store.Upsert(context.Background(), points)

	require.NoError(t, err)
	last := fake.lastRequest()
	assert.Equal(t, "/collections/test/points", last.path)
	assert.Equal(t, "wait=true", last.query)
	assert.Equal(t, "secret", last.apiKey)

	sent, ok := last.body["points"].([]any)
	require.True(t, ok)
	assert.Len(t, sent, 2)
}

func TestUpsert_EmptyIsNoop(t *testing.T) {
	fake := &fakeQdrant{}
	store := newTestStore(t, fake)

	err := store.Upsert(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, fake.requests)
}

func TestSearch_BuildsConjunctiveFilter(t *testing.T) {
	fake := &fakeQdrant{collectionExists: true}
	store := newTestStore(t, fake)

	_, err := store.Search(context.Background(), []float32{0.1, 0.2}, driven.SearchParams{
		Limit: 10,
		Filter: domain.Filter{
			"asignatura": "Lógica Difusa",
		},
	})

	require.NoError(t, err)
	last := fake.lastRequest()
	assert.Equal(t, float64(10), last.body["limit"])
	assert.Equal(t, true, last.body["with_payload"])

	filter, ok := last.body["filter"].(map[string]any)
	require.True(t, ok)
	must, ok := filter["must"].([]any)
	require.True(t, ok)
	require.Len(t, must, 1)
	clause := must[0].(map[string]any)
	assert.Equal(t, "asignatura", clause["key"])
	assert.Equal(t, map[string]any{"value": "Lógica Difusa"}, clause["match"])
}

func TestSearch_NoFilterOmitsClause(t *testing.T) {
	fake := &fakeQdrant{collectionExists: true}
	store := newTestStore(t, fake)

	_, err := store.Search(context.Background(), []float32{0.1}, driven.SearchParams{Limit: 5})

	require.NoError(t, err)
	assert.NotContains(t, fake.lastRequest().body, "filter")
}

func TestSearch_ParsesHits(t *testing.T) {
	fake := &fakeQdrant{
		collectionExists: true,
		searchResult: []map[string]any{
			{
				"id":      "point-1",
				"score":   0.91,
				"payload": map[string]any{"content": "texto", "asignatura": "Física"},
			},
			{
				"id":      "point-2",
				"score":   0.75,
				"payload": map[string]any{"content": "otro"},
			},
		},
	}
	store := newTestStore(t, fake)

	hits, err := store.Search(context.Background(), []float32{0.1}, driven.SearchParams{Limit: 5})

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "point-1", hits[0].Point.ID)
	assert.InDelta(t, 0.91, hits[0].Score, 1e-9)
	assert.Equal(t, "texto", hits[0].Point.Payload["content"])
}

func TestCollectionInfo(t *testing.T) {
	fake := &fakeQdrant{collectionExists: true, pointsCount: 42, dimension: 768}
	store := newTestStore(t, fake)

	info, err := store.CollectionInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "test", info.Name)
	assert.Equal(t, uint64(42), info.PointsCount)
	assert.Equal(t, 768, info.VectorDimension)
	assert.Equal(t, "green", info.Status)
}

func TestUnreachableStore(t *testing.T) {
	// Point at a closed server so the connection is refused.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := NewStore(Config{URL: url, Collection: "test"})

	_, err := store.Search(context.Background(), []float32{0.1}, driven.SearchParams{Limit: 5})
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)

	err = store.Upsert(context.Background(), []domain.Point{{ID: "p", Vector: []float32{0.1}}})
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}
