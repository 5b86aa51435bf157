// Package plaintext extracts text from plain text files.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{"txt", "text"}
}

// Extract returns the file content as-is, with line endings normalised.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", domain.ErrInvalidInput
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return strings.TrimSpace(text), nil
}
