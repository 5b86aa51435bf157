package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidChunkConfig indicates an unusable chunk size/overlap pair.
	// This is a configuration error and is fatal at construction time.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrEmptyDocument indicates a document with no indexable content.
	ErrEmptyDocument = errors.New("empty document")

	// ErrInvalidQuery indicates an empty or otherwise unusable search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedType indicates a file type with no registered extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service cannot be
	// reached or timed out. Retry policy belongs to the caller.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates an embedding vector whose size does not
	// match the collection's configured dimension. This is a configuration
	// error, not a per-request one.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrVectorStoreUnavailable indicates the vector store cannot be reached.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
)
