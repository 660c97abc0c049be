package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogStore loads the ordered product sequence.
// A missing source yields an empty slice and no error.
type CatalogStore interface {
	Load(ctx context.Context) ([]Product, error)
}

// Embedder maps text to a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex returns the k nearest rows to a query vector by L2 distance.
// Distances and positions are ordered ascending by distance; positions index
// into the catalog's load-time ordering.
type VectorIndex interface {
	Search(ctx context.Context, query []float32, k int) ([]float32, []int, error)
	Len() int
	Dimension() int
}

// VisionClient sends an image and an instruction to a hosted vision-language model
type VisionClient interface {
	Analyze(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// IndexStore loads a persisted vector index.
// A missing index file yields a nil index and no error.
type IndexStore interface {
	Load(ctx context.Context) (VectorIndex, error)
}
