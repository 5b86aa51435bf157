package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aula-labs/aularag/internal/adapters/driven/vectorstore/qdrant"
	"github.com/aula-labs/aularag/internal/adapters/driving/httpapi"
	"github.com/aula-labs/aularag/internal/core/services"
	"github.com/aula-labs/aularag/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the REST API, ensures the vector store collection exists and,
when enabled, watches the documents directory for new files to index.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureCollection(ctx); err != nil {
		// The server still starts; health reports the store as degraded.
		logger.Warn("Vector store not ready: %v", err)
	}

	if appConfig.Documents.Watch {
		watcher, err := services.NewWatcher(indexerService, appConfig.Documents.Path)
		if err != nil {
			logger.Warn("Document watcher unavailable: %v", err)
		} else {
			go func() {
				defer watcher.Close()
				if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("Document watcher stopped: %v", err)
				}
			}()
		}
	}

	collection := appConfig.Qdrant.Collection
	if collection == "" {
		collection = qdrant.DefaultCollection
	}

	server := httpapi.NewServer(httpapi.Config{
		Host:           appConfig.Server.Host,
		Port:           appConfig.Server.Port,
		DocumentsPath:  appConfig.Documents.Path,
		CollectionName: collection,
	}, indexerService, retrieverService, documentRegistry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
