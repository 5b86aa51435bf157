package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/aula-labs/aularag/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, c.ChunkSize())
		}
		if c.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, c.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		c, err := New(WithChunkSize(500), WithOverlap(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ChunkSize() != 500 || c.Overlap() != 100 {
			t.Errorf("expected 500/100, got %d/%d", c.ChunkSize(), c.Overlap())
		}
	})

	t.Run("overlap equals chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidChunkConfig) {
			t.Errorf("expected ErrInvalidChunkConfig, got %v", err)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(150))
		if !errors.Is(err, domain.ErrInvalidChunkConfig) {
			t.Errorf("expected ErrInvalidChunkConfig, got %v", err)
		}
	})

	t.Run("non-positive chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(0))
		if !errors.Is(err, domain.ErrInvalidChunkConfig) {
			t.Errorf("expected ErrInvalidChunkConfig, got %v", err)
		}
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := New(WithOverlap(-1))
		if !errors.Is(err, domain.ErrInvalidChunkConfig) {
			t.Errorf("expected ErrInvalidChunkConfig, got %v", err)
		}
	})
}

func TestSplit_EmptyText(t *testing.T) {
	c, _ := New()

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		_, err := c.Split(text)
		if !errors.Is(err, domain.ErrEmptyDocument) {
			t.Errorf("Split(%q): expected ErrEmptyDocument, got %v", text, err)
		}
	}
}

func TestSplit_SmallText(t *testing.T) {
	c, _ := New(WithChunkSize(1000), WithOverlap(200))

	chunks, err := c.Split("short text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "short text" {
		t.Errorf("expected chunk to equal input, got %q", chunks[0])
	}
}

func TestSplit_ExactWindow(t *testing.T) {
	c, _ := New(WithChunkSize(100), WithOverlap(20))
	text := strings.Repeat("x", 100)

	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for exact window, got %d", len(chunks))
	}
}

func TestSplit_WindowSpans(t *testing.T) {
	// 2400 characters at size 1000 / overlap 200 must produce three windows
	// spanning [0,1000), [800,1800), [1600,2400).
	c, _ := New(WithChunkSize(1000), WithOverlap(200))

	var b strings.Builder
	for i := 0; i < 2400; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	text := b.String()

	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	if chunks[0] != text[0:1000] {
		t.Error("chunk 0 does not span [0,1000)")
	}
	if chunks[1] != text[800:1800] {
		t.Error("chunk 1 does not span [800,1800)")
	}
	if chunks[2] != text[1600:2400] {
		t.Error("chunk 2 does not span [1600,2400)")
	}
}

func TestSplit_OverlapBound(t *testing.T) {
	c, _ := New(WithChunkSize(100), WithOverlap(30))
	text := strings.Repeat("abcdefghij", 50) // 500 chars

	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])

		overlap := c.Overlap()
		if len(cur) < overlap {
			// Final chunk shorter than a full overlap window.
			overlap = len(cur)
		}
		suffix := string(prev[len(prev)-overlap:])
		prefix := string(cur[:overlap])
		if suffix != prefix {
			t.Errorf("chunks %d/%d: overlap mismatch: %q vs %q", i-1, i, suffix, prefix)
		}
	}
}

func TestSplit_Coverage(t *testing.T) {
	// Concatenating chunks with their overlaps removed reconstructs the text.
	c, _ := New(WithChunkSize(120), WithOverlap(40))
	text := strings.Repeat("lorem ipsum dolor sit amet ", 30)

	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var b strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk)
		if i == 0 {
			b.WriteString(chunk)
			continue
		}
		b.WriteString(string(runes[c.Overlap():]))
	}
	if b.String() != text {
		t.Error("deduplicated chunks do not reconstruct the original text")
	}
}

func TestSplit_NoEmptyChunks(t *testing.T) {
	for _, n := range []int{1, 99, 100, 101, 170, 171, 240, 1000} {
		c, _ := New(WithChunkSize(100), WithOverlap(30))
		chunks, err := c.Split(strings.Repeat("z", n))
		if err != nil {
			t.Fatalf("len=%d: unexpected error: %v", n, err)
		}
		for i, chunk := range chunks {
			if chunk == "" {
				t.Errorf("len=%d: chunk %d is empty", n, i)
			}
		}
	}
}

func TestSplit_MultibyteText(t *testing.T) {
	c, _ := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("lógica difusa y conjuntos ñoños ", 10)

	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, chunk := range chunks {
		if len([]rune(chunk)) > 50 {
			t.Errorf("chunk %d exceeds window size in runes", i)
		}
	}
	if !strings.HasPrefix(text, chunks[0]) {
		t.Error("chunk 0 does not start at text start")
	}
}

func TestChunk_Metadata(t *testing.T) {
	c, _ := New(WithChunkSize(100), WithOverlap(20))
	doc := domain.Document{
		ID:      "apuntes-fuzzy",
		Content: strings.Repeat("conjunto difuso ", 20), // 320 chars
		Metadata: domain.Metadata{
			Asignatura:    "Lógica Difusa",
			TipoDocumento: "apuntes",
		},
	}

	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d: Index = %d", i, chunk.Index)
		}
		if chunk.Total != len(chunks) {
			t.Errorf("chunk %d: Total = %d, want %d", i, chunk.Total, len(chunks))
		}
		if chunk.DocumentID != doc.ID {
			t.Errorf("chunk %d: DocumentID = %q", i, chunk.DocumentID)
		}
		if chunk.Metadata.Asignatura != "Lógica Difusa" {
			t.Errorf("chunk %d: metadata not inherited", i)
		}
	}
}

func TestChunk_EmptyDocument(t *testing.T) {
	c, _ := New()
	_, err := c.Chunk(domain.Document{ID: "empty", Content: "  "})
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}
