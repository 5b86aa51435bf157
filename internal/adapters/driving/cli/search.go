package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aula-labs/aularag/internal/core/domain"
)

var (
	searchTopK       int
	searchThreshold  float64
	searchAsignatura string
	searchTipo       string
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs semantic search across the indexed corpus. Results are ranked
by similarity and can be narrowed by subject and document type.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity score")
	searchCmd.Flags().StringVar(&searchAsignatura, "asignatura", "", "filter by subject")
	searchCmd.Flags().StringVar(&searchTipo, "tipo", "", "filter by document type")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	opts := domain.SearchOptions{
		TopK:                searchTopK,
		SimilarityThreshold: searchThreshold,
	}
	filter := domain.Filter{}
	if searchAsignatura != "" {
		filter[domain.KeyAsignatura] = searchAsignatura
	}
	if searchTipo != "" {
		filter[domain.KeyTipoDocumento] = searchTipo
	}
	if len(filter) > 0 {
		opts.Filter = filter
	}

	results, err := retrieverService.Search(context.Background(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		docID, _ := results[i].Metadata[domain.KeyDocumentID].(string)

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, docID, results[i].Score)
		if asignatura, ok := results[i].Metadata[domain.KeyAsignatura].(string); ok && asignatura != "" {
			cmd.Printf("      Asignatura: %s\n", asignatura)
		}
		cmd.Printf("      %s\n", snippet(results[i].Content, 160))
		cmd.Println()
	}

	return nil
}

// snippet truncates content to at most n runes for display.
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
