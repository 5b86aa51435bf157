// Package services implements the core retrieval pipeline behind the driving
// ports: indexing (chunk, merge metadata, embed, upsert), retrieval (embed,
// filtered search, threshold, rank) and the documents-directory watcher.
package services
