// Package domain contains the core types of the retrieval pipeline:
// documents, chunks, metadata records, vector store points and search
// results. It has no dependencies on adapters or external services.
package domain
