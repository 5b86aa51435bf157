// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the embedding model, the vector store,
// text extraction and the document registry.
package driven
