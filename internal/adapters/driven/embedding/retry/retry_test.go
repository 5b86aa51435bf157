package retry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aula-labs/aularag/internal/core/domain"
)

// flakyEmbedder fails the first failuresBefore calls with the given error.
type flakyEmbedder struct {
	failuresBefore int
	failWith       error
	calls          int
}

func (f *flakyEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failuresBefore {
		return nil, f.failWith
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func (f *flakyEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failuresBefore {
		return nil, f.failWith
	}
	return []float32{1, 0}, nil
}

func (f *flakyEmbedder) Dimensions() int { return 2 }

func (f *flakyEmbedder) ModelName() string { return "flaky" }

func (f *flakyEmbedder) Ping(context.Context) error { return nil }

func (f *flakyEmbedder) Close() error { return nil }

func transientErr() error {
	return fmt.Errorf("%w: connection refused", domain.ErrEmbeddingUnavailable)
}

func TestEmbedDocuments_RetriesTransientFailures(t *testing.T) {
	inner := &flakyEmbedder{failuresBefore: 2, failWith: transientErr()}
	svc := Wrap(inner)

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"texto"})

	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestEmbedQuery_ExhaustedRetries(t *testing.T) {
	inner := &flakyEmbedder{failuresBefore: 100, failWith: transientErr()}
	svc := WrapWithRetries(inner, 2)

	_, err := svc.EmbedQuery(context.Background(), "consulta")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 3, inner.calls)
}

func TestEmbedQuery_NonTransientFailsImmediately(t *testing.T) {
	inner := &flakyEmbedder{
		failuresBefore: 100,
		failWith:       fmt.Errorf("%w: got 4, want 8", domain.ErrDimensionMismatch),
	}
	svc := Wrap(inner)

	_, err := svc.EmbedQuery(context.Background(), "consulta")

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 1, inner.calls)
}

func TestEmbedDocuments_CancelledContext(t *testing.T) {
	inner := &flakyEmbedder{failuresBefore: 100, failWith: transientErr()}
	svc := Wrap(inner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EmbedDocuments(ctx, []string{"texto"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestDelegation(t *testing.T) {
	svc := Wrap(&flakyEmbedder{})

	assert.Equal(t, 2, svc.Dimensions())
	assert.Equal(t, "flaky", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
