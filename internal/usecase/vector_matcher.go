package usecase

import (
	"context"

	"github.com/roomlens/backend/internal/domain"
)

// DefaultTopK is the number of nearest neighbors fetched per keyword
const DefaultTopK = 3

// SkipFunc is called for each neighbor position that has no catalog entry
type SkipFunc func(keyword string, position int)

// VectorMatcher matches keywords by nearest-neighbor lookup in a vector index.
// Index rows are resolved by catalog position.
type VectorMatcher struct {
	catalog  *domain.Catalog
	index    domain.VectorIndex
	embedder domain.Embedder
	k        int
	onSkip   SkipFunc
}

// NewVectorMatcher creates a vector matcher. A non-positive k falls back to DefaultTopK.
func NewVectorMatcher(catalog *domain.Catalog, index domain.VectorIndex, embedder domain.Embedder, k int) *VectorMatcher {
	if k <= 0 {
		k = DefaultTopK
	}
	return &VectorMatcher{
		catalog:  catalog,
		index:    index,
		embedder: embedder,
		k:        k,
	}
}

// OnSkip registers a callback for out-of-range neighbor positions
func (m *VectorMatcher) OnSkip(fn SkipFunc) *VectorMatcher {
	m.onSkip = fn
	return m
}

// Match implements Matcher. Embedding and index errors are returned unchanged.
func (m *VectorMatcher) Match(ctx context.Context, keyword string) ([]domain.Product, error) {
	products, skipped, err := vectorMatch(ctx, keyword, m.catalog, m.index, m.embedder, m.k)
	if err != nil {
		return nil, err
	}
	if m.onSkip != nil {
		for _, pos := range skipped {
			m.onSkip(keyword, pos)
		}
	}
	return products, nil
}

// VectorMatch embeds keyword, fetches its k nearest index rows and maps them
// back to catalog products in ascending-distance order.
func VectorMatch(
	ctx context.Context,
	keyword string,
	catalog *domain.Catalog,
	index domain.VectorIndex,
	embedder domain.Embedder,
	k int,
) ([]domain.Product, error) {
	products, _, err := vectorMatch(ctx, keyword, catalog, index, embedder, k)
	return products, err
}

func vectorMatch(
	ctx context.Context,
	keyword string,
	catalog *domain.Catalog,
	index domain.VectorIndex,
	embedder domain.Embedder,
	k int,
) ([]domain.Product, []int, error) {
	if catalog.Len() == 0 {
		return []domain.Product{}, nil, nil
	}
	if index == nil {
		return nil, nil, domain.ErrIndexUnavailable
	}

	query, err := embedder.Embed(ctx, keyword)
	if err != nil {
		return nil, nil, err
	}

	_, positions, err := index.Search(ctx, query, k)
	if err != nil {
		return nil, nil, err
	}

	matches := make([]domain.Product, 0, len(positions))
	seen := make(map[int]struct{}, len(positions))
	var skipped []int

	for _, pos := range positions {
		product, ok := catalog.At(pos)
		if !ok {
			skipped = append(skipped, pos)
			continue
		}
		if _, dup := seen[product.ID]; dup {
			continue
		}
		seen[product.ID] = struct{}{}
		matches = append(matches, product)
	}

	return matches, skipped, nil
}
