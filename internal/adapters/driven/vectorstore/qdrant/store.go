// Package qdrant provides a vector store adapter backed by the Qdrant REST
// API. Collections use cosine distance; scores returned by Qdrant are cosine
// similarities in [0,1] for normalised embeddings.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "academic_documents"
	DefaultTimeout    = 15 * time.Second
)

// Config holds connection details for a Qdrant instance.
type Config struct {
	// URL is the Qdrant base URL (default: http://localhost:6333).
	URL string

	// APIKey authenticates requests when the instance requires it.
	APIKey string

	// Collection is the collection name (default: academic_documents).
	Collection string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Store is a minimal REST client to Qdrant.
type Store struct {
	client     *http.Client
	url        string
	apiKey     string
	collection string
}

// NewStore creates a Qdrant vector store client.
func NewStore(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

// EnsureCollection creates the collection with cosine distance if missing.
// An existing collection with a different dimension surfaces as an error on
// first upsert rather than being silently recreated.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension %d", domain.ErrInvalidInput, dimension)
	}

	var status int
	err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil, &status)
	if err == nil && status == http.StatusOK {
		return nil
	}
	if err != nil && status == 0 {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil, &status); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Upsert writes all points in a single batched call and waits for
// persistence. Existing point IDs are overwritten (last write wins).
func (s *Store) Upsert(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]map[string]any, len(points))
	for i, p := range points {
		qdrantPoints[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}

	body := map[string]any{"points": qdrantPoints}
	var status int
	if err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil, &status); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// searchResponse is the Qdrant search response format.
type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search runs a filtered similarity search. The filter translates to a
// conjunctive Qdrant match clause over payload keys.
func (s *Store) Search(ctx context.Context, vector []float32, params driven.SearchParams) ([]driven.ScoredPoint, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if len(params.Filter) > 0 {
		must := make([]map[string]any, 0, len(params.Filter))
		for key, value := range params.Filter {
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"value": value},
			})
		}
		body["filter"] = map[string]any{"must": must}
	}

	var resp searchResponse
	var status int
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), body, &resp, &status); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]driven.ScoredPoint, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.ScoredPoint{
			Point: domain.Point{
				ID:      fmt.Sprintf("%v", r.ID),
				Payload: r.Payload,
			},
			Score: r.Score,
		})
	}
	return hits, nil
}

// infoResponse is the Qdrant collection info response format.
type infoResponse struct {
	Result struct {
		Status      string `json:"status"`
		PointsCount uint64 `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// CollectionInfo returns point count, vector dimension and status.
func (s *Store) CollectionInfo(ctx context.Context) (domain.CollectionInfo, error) {
	var resp infoResponse
	var status int
	if err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, &resp, &status); err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("collection info: %w", err)
	}

	return domain.CollectionInfo{
		Name:            s.collection,
		PointsCount:     resp.Result.PointsCount,
		VectorDimension: resp.Result.Config.Params.Vectors.Size,
		Status:          resp.Result.Status,
	}, nil
}

// DeleteCollection drops the collection and all its points. Irreversible.
func (s *Store) DeleteCollection(ctx context.Context) error {
	var status int
	return s.do(ctx, http.MethodDelete, s.collectionURL(""), nil, nil, &status)
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

// do issues a JSON request. Network-level failures map to
// domain.ErrVectorStoreUnavailable; HTTP error statuses are reported with
// the status code. statusOut receives the HTTP status when a response was
// obtained.
func (s *Store) do(ctx context.Context, method, url string, body, out any, statusOut *int) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	defer resp.Body.Close()
	*statusOut = resp.StatusCode

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s: status %s", method, url, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
