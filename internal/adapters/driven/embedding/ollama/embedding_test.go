package ollama

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
)

// fakeOllama serves canned embeddings and records inputs.
type fakeOllama struct {
	mu        sync.Mutex
	inputs    []string
	requests  int
	dimension int

	// failWithStatus makes every /api/embed request fail with this status.
	failWithStatus int
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.inputs = append(f.inputs, req.Input...)
		f.requests++
		f.mu.Unlock()

		if f.failWithStatus != 0 {
			w.WriteHeader(f.failWithStatus)
			return
		}

		embeddings := make([][]float64, len(req.Input))
		for i := range embeddings {
			embeddings[i] = make([]float64, f.dimension)
			embeddings[i][0] = 1
		}
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: embeddings})
	})
	return mux
}

func newTestService(t *testing.T, fake *fakeOllama, symmetric bool) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return NewEmbeddingService(Config{
		BaseURL:           srv.URL,
		Dimensions:        fake.dimension,
		RequestsPerSecond: 1000,
		Symmetric:         symmetric,
	})
}

func TestEmbedDocuments_AppliesDocumentPrefix(t *testing.T) {
	fake := &fakeOllama{dimension: 4}
	svc := newTestService(t, fake, false)

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"uno", "dos"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []string{"search_document: uno", "search_document: dos"}, fake.inputs)
}

func TestEmbedDocuments_SingleBatchedRequest(t *testing.T) {
	fake := &fakeOllama{dimension: 4}
	svc := newTestService(t, fake, true)

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"uno", "dos", "tres"})

	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, 1, fake.requests)
}

func TestEmbedQuery_AppliesQueryPrefix(t *testing.T) {
	fake := &fakeOllama{dimension: 4}
	svc := newTestService(t, fake, false)

	_, err := svc.EmbedQuery(context.Background(), "consulta")

	require.NoError(t, err)
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "search_query: consulta", fake.inputs[0])
}

func TestSymmetric_NoPrefixes(t *testing.T) {
	fake := &fakeOllama{dimension: 4}
	svc := newTestService(t, fake, true)

	_, err := svc.EmbedQuery(context.Background(), "consulta")
	require.NoError(t, err)
	_, err = svc.EmbedDocuments(context.Background(), []string{"texto"})
	require.NoError(t, err)

	assert.Equal(t, []string{"consulta", "texto"}, fake.inputs)
}

func TestEmbed_ServerErrorFailsWithoutRetry(t *testing.T) {
	fake := &fakeOllama{dimension: 4, failWithStatus: http.StatusInternalServerError}
	svc := newTestService(t, fake, true)

	_, err := svc.EmbedQuery(context.Background(), "consulta")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 1, fake.requests)
}

func TestEmbed_ClientErrorNotTransient(t *testing.T) {
	fake := &fakeOllama{dimension: 4, failWithStatus: http.StatusNotFound}
	svc := newTestService(t, fake, true)

	_, err := svc.EmbedQuery(context.Background(), "consulta")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	fake := &fakeOllama{dimension: 4}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	// Service expects 8 dimensions but the server returns 4.
	svc := NewEmbeddingService(Config{
		BaseURL:           srv.URL,
		Dimensions:        8,
		RequestsPerSecond: 1000,
		Symmetric:         true,
	})

	_, err := svc.EmbedQuery(context.Background(), "consulta")

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestPing(t *testing.T) {
	fake := &fakeOllama{dimension: 4}
	svc := newTestService(t, fake, true)

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestDefaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())
}
