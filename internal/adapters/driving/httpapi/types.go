package httpapi

import (
	"encoding/json"
	"time"

	"github.com/aula-labs/aularag/internal/core/domain"
)

// metadataJSON decodes a metadata record from JSON, keeping unrecognized
// keys in the passthrough bag.
type metadataJSON struct {
	domain.Metadata
}

// UnmarshalJSON decodes recognized keys into typed fields and everything
// else into Extra.
func (m *metadataJSON) UnmarshalJSON(data []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	m.Metadata = domain.MetadataFromPayload(payload)
	return nil
}

// documentRequest is one document in an index request.
type documentRequest struct {
	Content  string       `json:"content"`
	Metadata metadataJSON `json:"metadata"`
	DocID    string       `json:"doc_id,omitempty"`
}

// indexResponse is returned by the index endpoint.
type indexResponse struct {
	domain.IndexReport
	CollectionName string    `json:"collection_name"`
	Timestamp      time.Time `json:"timestamp"`
}

// searchRequest is the semantic search request body.
type searchRequest struct {
	Query               string   `json:"query"`
	Asignatura          string   `json:"asignatura,omitempty"`
	TipoDocumento       string   `json:"tipo_documento,omitempty"`
	TopK                int      `json:"top_k,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
}

// searchResponse is returned by the search endpoint.
type searchResponse struct {
	Results      []domain.SearchResult `json:"results"`
	TotalResults int                   `json:"total_results"`
	Query        string                `json:"query"`
}

// loadFileRequest asks the service to index a file from the documents dir.
type loadFileRequest struct {
	Filename string       `json:"filename"`
	Metadata metadataJSON `json:"metadata"`
}

// loadFileResponse is returned after loading a file.
type loadFileResponse struct {
	Filename     string    `json:"filename"`
	DocID        string    `json:"doc_id"`
	IndexedCount int       `json:"indexed_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// fileListResponse lists available files.
type fileListResponse struct {
	Files      []string `json:"files"`
	TotalFiles int      `json:"total_files"`
}

// subjectListResponse lists indexed subjects.
type subjectListResponse struct {
	Subjects      []string `json:"subjects"`
	TotalSubjects int      `json:"total_subjects"`
}

// healthResponse reports service and vector store health.
type healthResponse struct {
	Status          string                 `json:"status"`
	QdrantConnected bool                   `json:"qdrant_connected"`
	Collection      *domain.CollectionInfo `json:"collection,omitempty"`
	Message         string                 `json:"message,omitempty"`
}

// errorResponse carries an error detail, mirroring the API's error shape.
type errorResponse struct {
	Detail string `json:"detail"`
}
