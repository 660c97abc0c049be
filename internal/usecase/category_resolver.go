package usecase

import "strings"

// Canonical catalog categories
const (
	CategoryWallArt = "Wall Art"
	CategoryRugs    = "Rugs"
	CategoryLamps   = "Lamps"
	CategoryChairs  = "Chairs"
	CategoryPillows = "Pillows"
)

// categoryMap maps lowercase synonym tokens to canonical categories. Never mutated.
var categoryMap = map[string]string{
	"art":      CategoryWallArt,
	"artwork":  CategoryWallArt,
	"painting": CategoryWallArt,
	"print":    CategoryWallArt,
	"picture":  CategoryWallArt,
	"rug":      CategoryRugs,
	"carpet":   CategoryRugs,
	"lamp":     CategoryLamps,
	"light":    CategoryLamps,
	"lighting": CategoryLamps,
	"chair":    CategoryChairs,
	"seating":  CategoryChairs,
	"pillow":   CategoryPillows,
	"cushion":  CategoryPillows,
}

// ResolveCategory returns the category of the first keyword token found in the
// synonym table. The second return value is false when no token matches.
func ResolveCategory(keyword string) (string, bool) {
	for _, term := range keywordTerms(keyword) {
		if category, ok := categoryMap[term]; ok {
			return category, true
		}
	}
	return "", false
}

// keywordTerms splits a keyword on whitespace and normalizes each token:
// trailing '.' and ',' are stripped and the token is lowercased.
func keywordTerms(keyword string) []string {
	fields := strings.Fields(keyword)
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		terms = append(terms, cleanTerm(field))
	}
	return terms
}

func cleanTerm(token string) string {
	return strings.ToLower(strings.TrimRight(token, ".,"))
}
