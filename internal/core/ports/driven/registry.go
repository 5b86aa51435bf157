package driven

import (
	"context"
	"time"
)

// RegistryEntry records one indexed document.
type RegistryEntry struct {
	DocumentID    string    `json:"document_id"`
	Filename      string    `json:"filename,omitempty"`
	Asignatura    string    `json:"asignatura,omitempty"`
	TipoDocumento string    `json:"tipo_documento,omitempty"`
	ChunkCount    int       `json:"chunk_count"`
	IndexedAt     time.Time `json:"indexed_at"`
}

// RegistryFilter narrows registry listings. Empty fields impose no constraint.
type RegistryFilter struct {
	Asignatura    string
	TipoDocumento string
}

// DocumentRegistry tracks which documents have been indexed. It is bookkeeping
// only: the vector store remains the source of truth for chunk data.
type DocumentRegistry interface {
	// Record inserts or replaces the entry for a document.
	Record(ctx context.Context, entry RegistryEntry) error

	// List returns entries matching the filter, most recently indexed first.
	List(ctx context.Context, filter RegistryFilter) ([]RegistryEntry, error)

	// Subjects returns the distinct asignatura values across all entries.
	Subjects(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
