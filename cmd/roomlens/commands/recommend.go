package commands

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/roomlens/backend/config"
	"github.com/roomlens/backend/internal/app"
	"github.com/spf13/cobra"
)

// NewRecommendCmd creates the single-keyword image recommendation command
func NewRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <image>",
		Short: "Recommend items for a room photo",
		Long: `Ask the vision model for one item keyword for the room photo and
match it against the catalog with category and text rules.

Examples:
  roomlens recommend bedroom.jpg
  roomlens recommend --format json living-room.png`,
		Args: cobra.ExactArgs(1),
		RunE: runRecommend,
	}
}

func runRecommend(cmd *cobra.Command, args []string) error {
	imagePath := strings.Trim(strings.TrimSpace(args[0]), `'"`)

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image %s: %w", imagePath, err)
	}

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

	if outputFormat == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "Analyzing image: %s ...\n", imagePath)
	}

	result, err := components.Service.RecommendSingle(cmd.Context(), image, http.DetectContentType(image))
	if err != nil {
		return fmt.Errorf("getting recommendation keyword: %w", err)
	}

	if outputFormat == "text" && len(result.Keywords) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Suggested keyword: [%s]\n\n", result.Keywords[0])
	}
	return printResult(cmd.OutOrStdout(), result)
}
