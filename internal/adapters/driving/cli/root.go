// Package cli implements the aularag command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aula-labs/aularag/internal/adapters/driven/embedding/ollama"
	"github.com/aula-labs/aularag/internal/adapters/driven/embedding/openai"
	"github.com/aula-labs/aularag/internal/adapters/driven/embedding/retry"
	sqliteregistry "github.com/aula-labs/aularag/internal/adapters/driven/registry/sqlite"
	"github.com/aula-labs/aularag/internal/adapters/driven/vectorstore/qdrant"
	"github.com/aula-labs/aularag/internal/chunker"
	"github.com/aula-labs/aularag/internal/config"
	"github.com/aula-labs/aularag/internal/core/ports/driven"
	"github.com/aula-labs/aularag/internal/core/ports/driving"
	"github.com/aula-labs/aularag/internal/core/services"
	"github.com/aula-labs/aularag/internal/extractors"
	"github.com/aula-labs/aularag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgPath string
	verbose bool
)

// Services wired by initServices and consumed by the subcommands. Tests
// swap these for mocks.
var (
	appConfig        *config.Config
	indexerService   driving.IndexerService
	retrieverService driving.RetrieverService
	documentRegistry driven.DocumentRegistry
	vectorStore      driven.VectorStore
	embeddingService driven.EmbeddingService
)

var rootCmd = &cobra.Command{
	Use:   "aularag",
	Short: "Semantic search over academic documents",
	Long: `aularag chunks academic documents, embeds them and indexes them in a
vector store for semantic retrieval with metadata filtering.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "aularag.toml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initServices builds the pipeline from configuration. Subcommands that
// talk to the backends call this in their RunE; commands like version
// stay dependency-free.
func initServices() error {
	if indexerService != nil && retrieverService != nil {
		return nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	embeddingService = embedder

	store := qdrant.NewStore(qdrant.Config{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
		Timeout:    cfg.QdrantTimeout(),
	})
	vectorStore = store

	registry, err := sqliteregistry.NewRegistry(cfg.Registry.Path)
	if err != nil {
		// The registry is bookkeeping; indexing and search work without it.
		logger.Warn("Document registry unavailable: %v", err)
	} else {
		documentRegistry = registry
	}

	ck, err := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.ChunkSize),
		chunker.WithOverlap(cfg.Chunking.ChunkOverlap),
	)
	if err != nil {
		return err
	}

	indexerService = services.NewIndexer(
		ck, embedder, store, documentRegistry, extractors.Default(), cfg.Documents.Path,
	)
	retrieverService = services.NewRetriever(
		embedder, store, cfg.Search.TopK, cfg.Search.SimilarityThreshold,
	)

	return nil
}

// buildEmbedder constructs the configured provider wrapped in the retry
// decorator; the adapters themselves never retry.
func buildEmbedder(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "", "ollama":
		svc := ollama.NewEmbeddingService(ollama.Config{
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			Timeout:           cfg.EmbeddingTimeout(),
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
		return retry.Wrap(svc), nil
	case "openai":
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     os.Getenv(cfg.Embedding.APIKeyEnv),
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.EmbeddingTimeout(),
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return retry.Wrap(svc), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

// closeServices releases backend connections.
func closeServices() {
	if embeddingService != nil {
		_ = embeddingService.Close()
	}
	if vectorStore != nil {
		_ = vectorStore.Close()
	}
	if documentRegistry != nil {
		_ = documentRegistry.Close()
	}
}
