package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show vector store collection statistics",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	info, err := retrieverService.CollectionInfo(context.Background())
	if err != nil {
		return fmt.Errorf("collection info: %w", err)
	}

	cmd.Printf("Collection: %s\n", info.Name)
	cmd.Printf("  Status:    %s\n", info.Status)
	cmd.Printf("  Points:    %d\n", info.PointsCount)
	cmd.Printf("  Dimension: %d\n", info.VectorDimension)
	return nil
}
