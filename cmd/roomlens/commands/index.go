package commands

import (
	"fmt"

	"github.com/roomlens/backend/config"
	"github.com/roomlens/backend/internal/app"
	"github.com/roomlens/backend/internal/infrastructure/catalog"
	"github.com/roomlens/backend/internal/infrastructure/vectorindex"
	"github.com/spf13/cobra"
)

var indexBatchSize int

// NewIndexCmd creates the index command group
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the vector index",
	}
	cmd.AddCommand(newIndexBuildCmd())
	return cmd
}

func newIndexBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Embed the catalog and write the vector index",
		Long: `Embed every catalog product in file order and write the index so
that index row i corresponds to catalog position i. Rebuild the index
whenever the catalog changes.

Examples:
  roomlens index build
  roomlens index build --catalog furniture_db.json --index furniture_vectors.index
  roomlens index build --batch-size 50`,
		Args: cobra.NoArgs,
		RunE: runIndexBuild,
	}

	cmd.Flags().IntVar(&indexBatchSize, "batch-size", vectorindex.DefaultBatchSize, "Products embedded per request")

	return cmd
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	if indexBatchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive, got %d", indexBatchSize)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyOverrides(cfg)
	logger := config.NewLogger(cfg.Log, cmd.ErrOrStderr())

	products, err := catalog.NewJSONStore(cfg.Catalog.Path).Load(cmd.Context())
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("catalog %s is empty or missing", cfg.Catalog.Path)
	}

	client, err := app.NewOpenAIClient(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Int("products", len(products)).Int("batch_size", indexBatchSize).Msg("embedding catalog")
	index, err := vectorindex.Build(cmd.Context(), products, client, indexBatchSize)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	if err := vectorindex.NewFileStore(cfg.Index.Path).Save(index); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved index with %d vectors (dimension=%d) to %s\n",
		index.Len(), index.Dimension(), cfg.Index.Path)
	return nil
}
