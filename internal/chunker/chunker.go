// Package chunker provides fixed-size text chunking with overlap.
package chunker

import (
	"strings"

	"github.com/aula-labs/aularag/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Chunker splits document content into fixed-size character windows.
// Windows advance by chunkSize-overlap each step, so adjacent chunks share
// exactly overlap characters except possibly at the final window.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. It fails with domain.ErrInvalidChunkConfig when the
// chunk size is not positive, the overlap is negative, or the overlap is not
// strictly smaller than the chunk size.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 || c.overlap < 0 || c.overlap >= c.chunkSize {
		return nil, domain.ErrInvalidChunkConfig
	}

	return c, nil
}

// ChunkSize returns the configured window size in characters.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap in characters.
func (c *Chunker) Overlap() int { return c.overlap }

// Split slices text into overlapping windows. Offsets are counted in
// characters (runes), not bytes, so multi-byte text never splits mid-rune.
// Text no longer than one window is returned as a single chunk, untouched.
// It fails with domain.ErrEmptyDocument when the text is empty or
// whitespace-only.
func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []string{text}, nil
	}

	step := c.chunkSize - c.overlap
	chunks := make([]string, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, string(runes[start:end]))

		// The remainder past this window is entirely overlap; a further step
		// would emit a degenerate chunk of already-seen text.
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// Chunk splits a document into chunks carrying positional and inherited
// metadata. Every chunk copies the parent document's metadata record; Index
// and Total satisfy 0 <= Index < Total.
func (c *Chunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	texts, err := c.Split(doc.Content)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			Total:      len(texts),
			Content:    text,
			Metadata:   doc.Metadata,
		}
	}

	return chunks, nil
}
