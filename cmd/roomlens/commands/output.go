package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roomlens/backend/internal/domain"
)

// printResult writes recommendations in the selected output format
func printResult(w io.Writer, result *domain.RecommendationResult) error {
	if outputFormat == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(w, "%s\n", data)
		return nil
	}

	if len(result.Recommendations) == 0 {
		fmt.Fprintf(w, "No matching items found for %s.\n", quoteKeywords(result.Keywords))
		return nil
	}

	fmt.Fprintf(w, "Recommendations (found %d):\n", len(result.Recommendations))
	for _, item := range result.Recommendations {
		fmt.Fprintf(w, "- %s (%s) - $%.2f\n", item.Name, item.Category, item.Price)
		fmt.Fprintf(w, "  Description: %s\n", item.Description)
	}
	return nil
}

func quoteKeywords(keywords []string) string {
	if len(keywords) == 1 {
		return fmt.Sprintf("'%s'", keywords[0])
	}
	return fmt.Sprintf("%q", keywords)
}
