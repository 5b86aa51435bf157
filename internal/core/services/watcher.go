package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/aula-labs/aularag/internal/core/domain"
	"github.com/aula-labs/aularag/internal/core/ports/driving"
	"github.com/aula-labs/aularag/internal/logger"
)

// Watcher auto-indexes files dropped into the documents directory. The
// directory layout documents/<asignatura>/<tipo_documento>/<file> supplies
// the subject and document-type metadata; files outside that layout are
// indexed without them.
type Watcher struct {
	indexer       driving.IndexerService
	documentsPath string
	watcher       *fsnotify.Watcher
}

// NewWatcher creates a watcher over the documents directory.
func NewWatcher(indexer driving.IndexerService, documentsPath string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		indexer:       indexer,
		documentsPath: documentsPath,
		watcher:       fw,
	}

	if err := w.addRecursive(documentsPath); err != nil {
		fw.Close()
		return nil, err
	}

	return w, nil
}

// Run processes filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("Watching %s for new documents", w.documentsPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			w.handleCreate(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleCreate(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if info.IsDir() {
		if err := w.addRecursive(path); err != nil {
			logger.Warn("Watch %s: %v", path, err)
		}
		return
	}

	rel, err := filepath.Rel(w.documentsPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}

	meta := metadataFromPath(rel)
	logger.Info("New file detected: %s", rel)

	docID, report, err := w.indexer.LoadFile(ctx, rel, meta)
	if err != nil {
		logger.Warn("Auto-index %s: %v", rel, err)
		return
	}
	logger.Info("Auto-indexed %s as %q: %d chunks", rel, docID, report.IndexedCount)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// metadataFromPath derives subject and document type from the relative path
// documents/<asignatura>/<tipo_documento>/<file>.
func metadataFromPath(rel string) domain.Metadata {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	meta := domain.Metadata{Filename: rel}
	if len(parts) >= 3 {
		meta.Asignatura = parts[0]
		meta.TipoDocumento = parts[1]
	}
	return meta
}
