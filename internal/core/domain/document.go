package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Document represents a unit of ingestion: raw text content plus a metadata
// record. Documents are not retained beyond chunk derivation; only their
// chunks are persisted in the vector store.
type Document struct {
	// ID identifies the logical document. When empty, the indexer derives a
	// deterministic ID from the filename or the content hash so re-indexing
	// the same document overwrites its prior chunks.
	ID string

	// Content is the full plain text of the document.
	Content string

	// Metadata is the document-level metadata record inherited by chunks.
	Metadata Metadata
}

// Chunk is a contiguous slice of a document's text plus derived metadata.
// It is the unit of embedding and storage.
type Chunk struct {
	// DocumentID links back to the logical document.
	DocumentID string

	// Index is the ordinal position within the document, starting at 0.
	Index int

	// Total is the number of chunks derived from the document.
	Total int

	// Content is the text of this chunk. Never empty.
	Content string

	// Metadata is the document metadata copied from the parent.
	Metadata Metadata
}

// PointID returns the deterministic vector store identifier for this chunk.
func (c Chunk) PointID() string {
	return PointID(c.DocumentID, c.Index)
}

// Point is the persisted unit in the vector store.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// pointNamespace is the UUID namespace for name-based point identifiers.
// Changing it invalidates every previously indexed point.
var pointNamespace = uuid.MustParse("8c9e3dd2-55a1-4f5e-9b7e-2d1a6f0c4b38")

// PointID derives a stable, collision-resistant point identifier from a
// document ID and chunk index. Re-indexing the same (document, index) pair
// yields the same ID, so upserts overwrite instead of duplicating.
func PointID(documentID string, chunkIndex int) string {
	name := documentID + ":" + strconv.Itoa(chunkIndex)
	return uuid.NewSHA1(pointNamespace, []byte(name)).String()
}

// DocumentIDFromFilename derives a document ID from a file name or a
// relative path within the documents directory. The extension is dropped so
// re-uploading a converted copy of the same document replaces the original
// chunks.
func DocumentIDFromFilename(filename string) string {
	name := filename
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	for _, sep := range []string{"\\", "/", " "} {
		name = strings.ReplaceAll(name, sep, "_")
	}
	return strings.ToLower(name)
}

// DocumentIDFromContent derives a content-addressed document ID for
// documents submitted without a filename or explicit ID.
func DocumentIDFromContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return "doc-" + hex.EncodeToString(sum[:8])
}
