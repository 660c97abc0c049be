package vectorindex

import (
	"context"
	"fmt"

	"github.com/roomlens/backend/internal/domain"
)

// DefaultBatchSize is the number of product texts embedded per request
const DefaultBatchSize = 100

// Build embeds every product's EmbeddingText in catalog order and returns an
// index whose row i corresponds to products[i].
func Build(ctx context.Context, products []domain.Product, embedder domain.Embedder, batchSize int) (*FlatIndex, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var index *FlatIndex
	for start := 0; start < len(products); start += batchSize {
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}

		texts := make([]string, 0, end-start)
		for _, p := range products[start:end] {
			texts = append(texts, p.EmbeddingText())
		}

		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding products %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embedding products %d-%d: got %d vectors for %d texts",
				start, end-1, len(vectors), len(texts))
		}

		if index == nil {
			if len(vectors) == 0 || len(vectors[0]) == 0 {
				return nil, fmt.Errorf("embedding provider returned an empty vector")
			}
			index = NewFlatIndex(len(vectors[0]))
		}
		if err := index.Add(vectors...); err != nil {
			return nil, err
		}
	}

	if index == nil {
		return nil, fmt.Errorf("cannot build an index from an empty catalog")
	}
	return index, nil
}
