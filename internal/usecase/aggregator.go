package usecase

import (
	"context"

	"github.com/roomlens/backend/internal/domain"
)

// Aggregate runs matcher over keywords in order and merges the match sets.
// A product keeps the position of the first keyword that matched it. Keywords
// with no matches do not stop the remaining ones. The first matcher error is
// returned as-is.
func Aggregate(ctx context.Context, keywords []string, matcher Matcher) (*domain.RecommendationResult, error) {
	result := &domain.RecommendationResult{
		Keywords:        append([]string(nil), keywords...),
		Recommendations: make([]domain.Product, 0),
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}

	seen := make(map[int]struct{})
	for _, keyword := range keywords {
		matches, err := matcher.Match(ctx, keyword)
		if err != nil {
			return nil, err
		}

		for _, product := range matches {
			if _, dup := seen[product.ID]; dup {
				continue
			}
			seen[product.ID] = struct{}{}
			result.Recommendations = append(result.Recommendations, product)
		}
	}

	return result, nil
}
