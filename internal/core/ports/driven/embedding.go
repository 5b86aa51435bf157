package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//
// Models with asymmetric encoding distinguish the document and query
// intents; symmetric models treat both identically. Neither method retries
// internally: retry policy is a caller concern.
type EmbeddingService interface {
	// EmbedDocuments generates embeddings for chunk texts at index time.
	// The result has the same length and order as the input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a query at retrieval time.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768, 1536).
	// This is determined by the model and must match the vector store's
	// collection dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
