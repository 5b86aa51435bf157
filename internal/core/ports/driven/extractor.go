package driven

import "context"

// Extractor converts a file's raw bytes into plain text.
type Extractor interface {
	// Extensions returns the lowercase file extensions this extractor
	// handles, without the leading dot.
	Extensions() []string

	// Extract returns the plain text content of the file.
	Extract(ctx context.Context, content []byte) (string, error)
}

// ExtractorRegistry resolves extractors by file name.
type ExtractorRegistry interface {
	// ForFilename returns the extractor for the file's extension.
	// It fails with domain.ErrUnsupportedType for unknown extensions.
	ForFilename(filename string) (Extractor, error)

	// Supported returns all registered extensions, without the leading dot.
	Supported() []string
}

// CommandRunner executes an external command and returns its stdout.
// Extractors that shell out to a conversion tool take one so tests can
// substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
