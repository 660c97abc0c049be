package domain

// Strategy selects how a keyword is resolved against the catalog
type Strategy string

const (
	// StrategyLexical uses category synonyms plus phrase/token heuristics
	StrategyLexical Strategy = "lexical"
	// StrategyVector uses nearest-neighbor lookup in the vector index
	StrategyVector Strategy = "vector"
)

// Valid reports whether s names a known strategy
func (s Strategy) Valid() bool {
	return s == StrategyLexical || s == StrategyVector
}

// Analysis is the parsed output of the vision model
type Analysis struct {
	Reasoning      string   `json:"reasoning"`
	SearchKeywords []string `json:"search_keywords"`
}

// RecommendationResult is the deduplicated product list produced for a keyword set
type RecommendationResult struct {
	Keywords        []string  `json:"search_keywords"`
	Recommendations []Product `json:"recommendations"`
}

// AnalyzeResponse is returned by the image analysis flow
type AnalyzeResponse struct {
	Analysis        string    `json:"analysis"`
	SearchKeywords  []string  `json:"search_keywords"`
	Recommendations []Product `json:"recommendations"`
}

// SearchRequest represents a keyword search request
type SearchRequest struct {
	Keywords []string `json:"keywords" binding:"required"`
	Strategy Strategy `json:"strategy,omitempty"`
}
