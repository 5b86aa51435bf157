// Package extractors converts supported file formats to plain text.
// Each format lives in its own subpackage; the registry resolves the
// extractor for a file by its extension.
package extractors
