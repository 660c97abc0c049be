package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/roomlens/backend/internal/domain"
)

// minTokenRunes is the exclusive lower bound on token length for the name-token rule
const minTokenRunes = 3

// Matcher resolves a single keyword to an ordered, duplicate-free product list
type Matcher interface {
	Match(ctx context.Context, keyword string) ([]domain.Product, error)
}

// LexicalMatcher matches keywords with category synonyms and substring heuristics.
// It performs no I/O and is safe for concurrent use.
type LexicalMatcher struct {
	catalog *domain.Catalog
}

// NewLexicalMatcher creates a lexical matcher over a loaded catalog
func NewLexicalMatcher(catalog *domain.Catalog) *LexicalMatcher {
	return &LexicalMatcher{catalog: catalog}
}

// Match implements Matcher. It never returns an error.
func (m *LexicalMatcher) Match(_ context.Context, keyword string) ([]domain.Product, error) {
	return LexicalMatch(keyword, m.catalog), nil
}

// LexicalMatch returns the products matching keyword in catalog order.
//
// A product is included when any of these hold:
//   - the keyword resolves to a category equal to the product's category
//   - the lowercased keyword is a substring of the lowercased "name description"
//   - a keyword token longer than 3 characters is a substring of the lowercased name
func LexicalMatch(keyword string, catalog *domain.Catalog) []domain.Product {
	matches := make([]domain.Product, 0)
	if catalog.Len() == 0 {
		return matches
	}

	targetCategory, hasCategory := ResolveCategory(keyword)
	phrase := strings.ToLower(keyword)
	terms := keywordTerms(keyword)
	seen := make(map[int]struct{})

	for _, item := range catalog.Products() {
		if !lexicalMatches(item, targetCategory, hasCategory, phrase, terms) {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		matches = append(matches, item)
	}

	return matches
}

func lexicalMatches(item domain.Product, category string, hasCategory bool, phrase string, terms []string) bool {
	if hasCategory && item.Category == category {
		return true
	}

	itemText := strings.ToLower(item.Name + " " + item.Description)
	if strings.Contains(itemText, phrase) {
		return true
	}

	nameLower := strings.ToLower(item.Name)
	for _, term := range terms {
		if utf8.RuneCountInString(term) > minTokenRunes && strings.Contains(nameLower, term) {
			return true
		}
	}

	return false
}
