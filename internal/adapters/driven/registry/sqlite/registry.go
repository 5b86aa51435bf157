// Package sqlite provides a SQLite-backed document registry.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aula-labs/aularag/internal/adapters/driven/registry/sqlite/migrations"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.DocumentRegistry = (*Registry)(nil)

// Registry tracks indexed documents in a SQLite database.
type Registry struct {
	db   *sql.DB
	path string
}

// NewRegistry opens (or creates) the registry database at the given path.
func NewRegistry(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for better concurrency under the HTTP server.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	r := &Registry{db: db, path: path}
	if err := r.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return r, nil
}

// Record inserts or replaces the entry for a document.
func (r *Registry) Record(ctx context.Context, entry driven.RegistryEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (document_id, filename, asignatura, tipo_documento, chunk_count, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			filename = excluded.filename,
			asignatura = excluded.asignatura,
			tipo_documento = excluded.tipo_documento,
			chunk_count = excluded.chunk_count,
			indexed_at = excluded.indexed_at
	`, entry.DocumentID, entry.Filename, entry.Asignatura, entry.TipoDocumento,
		entry.ChunkCount, entry.IndexedAt)

	if err != nil {
		return fmt.Errorf("recording document: %w", err)
	}
	return nil
}

// List returns entries matching the filter, most recently indexed first.
func (r *Registry) List(ctx context.Context, filter driven.RegistryFilter) ([]driven.RegistryEntry, error) {
	query := `
		SELECT document_id, filename, asignatura, tipo_documento, chunk_count, indexed_at
		FROM documents`
	var conditions []string
	var args []any

	if filter.Asignatura != "" {
		conditions = append(conditions, "asignatura = ?")
		args = append(args, filter.Asignatura)
	}
	if filter.TipoDocumento != "" {
		conditions = append(conditions, "tipo_documento = ?")
		args = append(args, filter.TipoDocumento)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY indexed_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var entries []driven.RegistryEntry
	for rows.Next() {
		var e driven.RegistryEntry
		if err := rows.Scan(&e.DocumentID, &e.Filename, &e.Asignatura,
			&e.TipoDocumento, &e.ChunkCount, &e.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Subjects returns the distinct asignatura values across all entries.
func (r *Registry) Subjects(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT asignatura FROM documents
		WHERE asignatura != '' ORDER BY asignatura
	`)
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Close closes the database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Registry) Path() string {
	return r.path
}

// migrate runs all pending migrations.
func (r *Registry) migrate(fsys embed.FS) error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := r.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := r.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
