package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aula-labs/aularag/internal/core/domain"
)

var (
	indexAsignatura string
	indexTipo       string
)

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Index files from the documents directory",
	Long: `Extracts, chunks, embeds and indexes the given files. Paths are
relative to the configured documents directory; subject and document type
metadata can be supplied with flags or derived from the path layout
<asignatura>/<tipo_documento>/<file>.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexAsignatura, "asignatura", "", "subject metadata for the files")
	indexCmd.Flags().StringVar(&indexTipo, "tipo", "", "document type metadata for the files")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	ctx := context.Background()

	if err := ensureCollection(ctx); err != nil {
		return err
	}

	meta := domain.Metadata{
		Asignatura:    indexAsignatura,
		TipoDocumento: indexTipo,
	}

	var failed int
	for _, filename := range args {
		docID, report, err := indexerService.LoadFile(ctx, filename, meta)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", filename, err)
			failed++
			continue
		}
		if len(report.Errors) > 0 {
			cmd.PrintErrf("  %s: %s\n", filename, report.Errors[0].Reason)
			failed++
			continue
		}
		cmd.Printf("  %s -> %s (%d chunks)\n", filename, docID, report.IndexedCount)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to index", failed, len(args))
	}
	return nil
}

// ensureCollection creates the vector store collection when missing.
func ensureCollection(ctx context.Context) error {
	if vectorStore == nil || embeddingService == nil {
		return nil
	}
	if err := vectorStore.EnsureCollection(ctx, embeddingService.Dimensions()); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	return nil
}
