package commands

import (
	"fmt"

	"github.com/roomlens/backend/config"
	"github.com/roomlens/backend/internal/app"
	"github.com/roomlens/backend/internal/domain"
	"github.com/roomlens/backend/internal/infrastructure/catalog"
	"github.com/roomlens/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var searchStrategy string

// NewSearchCmd creates the keyword search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <keyword>...",
		Short: "Match keywords against the catalog",
		Long: `Match one or more keywords against the catalog and print the
deduplicated recommendations in first-seen order.

The lexical strategy works offline; the vector strategy needs the
OpenAI key and a built index.

Examples:
  roomlens search "modern rug"
  roomlens search --strategy vector "floor lamp" "accent chair"
  roomlens search --format json chair lamp`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&searchStrategy, "strategy", "lexical", "Matching strategy: lexical or vector")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	strategy := domain.Strategy(searchStrategy)
	if !strategy.Valid() {
		return fmt.Errorf("--strategy must be 'lexical' or 'vector', got %q", searchStrategy)
	}

	var service *usecase.RecommendationService
	if strategy == domain.StrategyLexical {
		cfg, err := config.LoadOffline()
		if err != nil {
			return err
		}
		applyOverrides(cfg)
		logger := config.NewLogger(cfg.Log, cmd.ErrOrStderr())

		service = usecase.NewRecommendationService(
			catalog.NewJSONStore(cfg.Catalog.Path), nil, nil, nil, logger,
			usecase.RecommendationServiceConfig{DefaultStrategy: domain.StrategyLexical},
		)
		if err := service.Reload(cmd.Context()); err != nil {
			return err
		}
	} else {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyOverrides(cfg)
		logger := config.NewLogger(cfg.Log, cmd.ErrOrStderr())

		components, err := app.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer components.Close()
		service = components.Service
	}

	result, err := service.Search(cmd.Context(), args, strategy)
	if err != nil {
		return fmt.Errorf("searching catalog: %w", err)
	}

	return printResult(cmd.OutOrStdout(), result)
}
