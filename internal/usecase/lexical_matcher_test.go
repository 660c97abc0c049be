package usecase

import (
	"context"
	"testing"

	"github.com/roomlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalMatch(t *testing.T) {
	catalog := sampleCatalog()

	tests := []struct {
		name    string
		keyword string
		wantIDs []int
	}{
		{"category rule", "rug", []int{1, 2}},
		{"category rule with modifier", "geometric rug", []int{1, 2}},
		{"phrase rule on description", "brass finish", []int{3}},
		{"phrase rule is case insensitive", "VELVET ACCENT", []int{4}},
		{"token rule on name", "velvet sofa", []int{4}},
		{"phrase rule on description word", "tassels", []int{6}},
		{"token rule checks names only", "bold tassels", []int{}},
		{"category and phrase overlap counted once", "modern rug", []int{1, 2}},
		{"first category token wins", "lamp and chair", []int{3, 4}},
		{"wall art via synonym", "canvas print", []int{5}},
		{"no match", "bookshelf", []int{}},
		{"empty keyword matches every phrase", "", []int{1, 2, 3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LexicalMatch(tt.keyword, catalog)
			assert.Equal(t, tt.wantIDs, productIDs(got))
		})
	}
}

func TestLexicalMatch_ModernRugAppearsOnce(t *testing.T) {
	catalog := domain.NewCatalog([]domain.Product{
		{ID: 10, Name: "Modern Rustic Rug", Category: "Rugs", Description: "a modern rug"},
	})

	got := LexicalMatch("modern rug", catalog)

	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].ID)
}

func TestLexicalMatch_ShortTokenExclusion(t *testing.T) {
	// Category is not Rugs and the phrase "big rug" is absent, so only the
	// token rule could match; "rug" has 3 characters and must not.
	catalog := domain.NewCatalog([]domain.Product{
		{ID: 1, Name: "Rug Pad", Category: "Accessories", Description: "non-slip pad"},
		{ID: 2, Name: "Bigger Mirror", Category: "Decor", Description: "round mirror"},
	})

	got := LexicalMatch("big rug", catalog)
	assert.Empty(t, got)

	got = LexicalMatch("bigg rug", catalog)
	assert.Equal(t, []int{2}, productIDs(got))
}

func TestLexicalMatch_TokenPunctuationStripped(t *testing.T) {
	catalog := domain.NewCatalog([]domain.Product{
		{ID: 1, Name: "Oak Bookshelf", Category: "Storage", Description: "five shelves"},
	})

	got := LexicalMatch("tall bookshelf.", catalog)
	assert.Equal(t, []int{1}, productIDs(got))
}

func TestLexicalMatch_DuplicateIDsInCatalog(t *testing.T) {
	catalog := domain.NewCatalog([]domain.Product{
		{ID: 7, Name: "Jute Rug", Category: "Rugs"},
		{ID: 7, Name: "Jute Rug Copy", Category: "Rugs"},
	})

	got := LexicalMatch("rug", catalog)
	require.Len(t, got, 1)
	assert.Equal(t, "Jute Rug", got[0].Name)
}

func TestLexicalMatch_EmptyCatalog(t *testing.T) {
	got := LexicalMatch("rug", domain.NewCatalog(nil))
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = LexicalMatch("rug", nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLexicalMatcher_Match(t *testing.T) {
	matcher := NewLexicalMatcher(sampleCatalog())

	got, err := matcher.Match(context.Background(), "pillow")

	require.NoError(t, err)
	assert.Equal(t, []int{6}, productIDs(got))
}
