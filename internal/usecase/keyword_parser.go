package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roomlens/backend/internal/domain"
)

// Prompts sent to the vision model
const (
	AnalysisPrompt = "You are an interior design expert. Analyze the room style and missing elements in this image. " +
		"Then suggest specific furniture items to improve the room. " +
		"Output STRICT JSON format correctly. Do NOT use markdown code blocks. " +
		`Format: {"reasoning": "Short reason for recommendation", "search_keywords": ["keyword1", "keyword2"]}`

	SingleKeywordPrompt = "You are an interior design expert. Analyze the room style and missing elements in this image. " +
		"Then suggest a specific furniture item to improve the room. " +
		"Finally, output ONLY the English keyword for that item (e.g., geometric rug), do not output other text."
)

const defaultReasoning = "No reasoning provided."

// ModelOutputError carries the raw model text that could not be parsed
type ModelOutputError struct {
	Raw    string
	Reason string
}

func (e *ModelOutputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", domain.ErrInvalidModelOutput, e.Reason)
	}
	return domain.ErrInvalidModelOutput.Error()
}

func (e *ModelOutputError) Unwrap() error {
	return domain.ErrInvalidModelOutput
}

// ParseAnalysis decodes the vision model's JSON answer.
// Markdown fences are stripped, a top-level list is reduced to its first
// element, and missing fields fall back to defaults.
func ParseAnalysis(text string) (*domain.Analysis, error) {
	cleaned := stripCodeFence(text)

	var raw interface{}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &ModelOutputError{Raw: cleaned}
	}

	if list, ok := raw.([]interface{}); ok {
		if len(list) == 0 {
			return nil, &ModelOutputError{Raw: cleaned, Reason: "model returned an empty list"}
		}
		raw = list[0]
	}

	fields, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &ModelOutputError{Raw: cleaned, Reason: "expected a JSON object"}
	}

	analysis := &domain.Analysis{
		Reasoning:      defaultReasoning,
		SearchKeywords: []string{},
	}
	if reasoning, ok := fields["reasoning"].(string); ok {
		analysis.Reasoning = reasoning
	}
	if keywords, ok := fields["search_keywords"].([]interface{}); ok {
		for _, k := range keywords {
			if s, ok := k.(string); ok {
				analysis.SearchKeywords = append(analysis.SearchKeywords, s)
			}
		}
	}

	return analysis, nil
}

// NormalizeSingleKeyword cleans a one-keyword model answer:
// whitespace is trimmed, the text is lowercased and one trailing period removed.
func NormalizeSingleKeyword(text string) string {
	keyword := strings.ToLower(strings.TrimSpace(text))
	return strings.TrimSuffix(keyword, ".")
}

// CleanKeywords trims keywords and drops blank entries, preserving order
func CleanKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return cleaned
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
