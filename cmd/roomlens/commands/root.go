package commands

import (
	"context"
	"fmt"

	"github.com/roomlens/backend/config"
	"github.com/spf13/cobra"
)

var (
	catalogPath  string
	indexPath    string
	outputFormat string
	verbose      bool
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roomlens",
		Short: "Recommend catalog items for a room photo",
		Long: `RoomLens suggests furniture and decor for a room photo.

A vision model proposes search keywords for the image; the keywords are
matched against the product catalog with category rules or vector search.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("--format must be 'text' or 'json', got %q", outputFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Catalog JSON path (overrides config)")
	cmd.PersistentFlags().StringVar(&indexPath, "index", "", "Vector index path (overrides config)")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewRecommendCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// applyOverrides applies persistent flag overrides to a loaded config
func applyOverrides(cfg *config.Config) {
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if indexPath != "" {
		cfg.Index.Path = indexPath
	}
	if verbose {
		cfg.Log.Level = "debug"
	} else {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "json" {
		cfg.Log.Format = "console"
	}
}
