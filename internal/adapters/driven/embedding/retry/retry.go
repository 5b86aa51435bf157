// Package retry wraps an embedding service with a retry policy for
// transient failures. The underlying adapters never retry themselves;
// callers that want backoff opt in by wrapping.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
	"github.com/aula-labs/aularag/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Default retry policy.
const (
	DefaultMaxRetries = 3
	baseDelay         = 200 * time.Millisecond
	maxDelay          = 5 * time.Second
)

// Service retries embedding calls that fail with ErrEmbeddingUnavailable,
// backing off exponentially between attempts. All other errors (invalid
// input, dimension mismatch) fail immediately.
type Service struct {
	inner      driven.EmbeddingService
	maxRetries int
}

// Wrap decorates an embedding service with the default retry policy.
func Wrap(inner driven.EmbeddingService) *Service {
	return &Service{inner: inner, maxRetries: DefaultMaxRetries}
}

// WrapWithRetries decorates an embedding service, retrying transient
// failures up to maxRetries times.
func WrapWithRetries(inner driven.EmbeddingService, maxRetries int) *Service {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Service{inner: inner, maxRetries: maxRetries}
}

// EmbedDocuments delegates to the wrapped service, retrying transient
// failures.
func (s *Service) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := s.do(ctx, func() error {
		var callErr error
		vectors, callErr = s.inner.EmbedDocuments(ctx, texts)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// EmbedQuery delegates to the wrapped service, retrying transient failures.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := s.do(ctx, func() error {
		var callErr error
		vector, callErr = s.inner.EmbedQuery(ctx, text)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// do runs call, retrying while it fails with ErrEmbeddingUnavailable.
func (s *Service) do(ctx context.Context, call func() error) error {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Embedding attempt %d/%d after: %v", attempt+1, s.maxRetries+1, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay(attempt)):
			}
		}

		err := call()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// Dimensions returns the wrapped service's vector size.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates to the wrapped service without retrying.
func (s *Service) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the wrapped service's resources.
func (s *Service) Close() error {
	return s.inner.Close()
}

// retryDelay returns the backoff for the given attempt, capped at 5s.
func retryDelay(attempt int) time.Duration {
	d := baseDelay << attempt
	if d > maxDelay {
		d = maxDelay
	}
	return d
}
