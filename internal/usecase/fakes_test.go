package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roomlens/backend/internal/domain"
)

// sampleProducts is a small catalog shaped like the production furniture file
func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Geometric Wool Rug", Category: "Rugs", Style: "Modern", Description: "Hand-tufted wool rug with bold lines", Price: 249.99},
		{ID: 2, Name: "Modern Rustic Rug", Category: "Rugs", Style: "Rustic", Description: "Distressed modern rug in warm tones", Price: 189.00},
		{ID: 3, Name: "Brass Floor Lamp", Category: "Lamps", Style: "Industrial", Description: "Arc floor lamp with brass finish", Price: 129.50},
		{ID: 4, Name: "Velvet Accent Chair", Category: "Chairs", Style: "Mid-Century", Description: "Plush velvet accent chair", Price: 399.00},
		{ID: 5, Name: "Abstract Canvas Print", Category: "Wall Art", Style: "Contemporary", Description: "Large abstract canvas", Price: 89.99},
		{ID: 6, Name: "Linen Throw Pillow", Category: "Pillows", Style: "Boho", Description: "Soft linen pillow with tassels", Price: 29.99},
	}
}

func sampleCatalog() *domain.Catalog {
	return domain.NewCatalog(sampleProducts())
}

func productIDs(products []domain.Product) []int {
	ids := make([]int, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// MockEmbedder returns canned vectors per text
type MockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   []string
}

func NewMockEmbedder(vectors map[string][]float32) *MockEmbedder {
	return &MockEmbedder{vectors: vectors}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.err != nil {
		return nil, m.err
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockIndex returns fixed neighbor positions per query, keyed by the first component
type MockIndex struct {
	positions map[float32][]int
	size      int
	err       error
	lastK     int
}

func (m *MockIndex) Search(ctx context.Context, query []float32, k int) ([]float32, []int, error) {
	m.lastK = k
	if m.err != nil {
		return nil, nil, m.err
	}
	positions := m.positions[query[0]]
	if len(positions) > k {
		positions = positions[:k]
	}
	distances := make([]float32, len(positions))
	for i := range distances {
		distances[i] = float32(i)
	}
	return distances, positions, nil
}

func (m *MockIndex) Len() int       { return m.size }
func (m *MockIndex) Dimension() int { return 2 }

// MockMatcher returns canned matches per keyword
type MockMatcher struct {
	matches map[string][]domain.Product
	errOn   string
	err     error
	seen    []string
}

func (m *MockMatcher) Match(ctx context.Context, keyword string) ([]domain.Product, error) {
	m.seen = append(m.seen, keyword)
	if m.err != nil && keyword == m.errOn {
		return nil, m.err
	}
	return m.matches[keyword], nil
}

// MockVisionClient returns a canned model answer
type MockVisionClient struct {
	response   string
	err        error
	lastPrompt string
	lastMime   string
}

func (m *MockVisionClient) Analyze(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	m.lastPrompt = prompt
	m.lastMime = mimeType
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// MockCatalogStore returns a fixed product list
type MockCatalogStore struct {
	products []domain.Product
	err      error
}

func (m *MockCatalogStore) Load(ctx context.Context) ([]domain.Product, error) {
	return m.products, m.err
}

// MockIndexStore returns a fixed index
type MockIndexStore struct {
	index domain.VectorIndex
	err   error
}

func (m *MockIndexStore) Load(ctx context.Context) (domain.VectorIndex, error) {
	return m.index, m.err
}

// MockCacheRepository is an in-memory cache for testing
type MockCacheRepository struct {
	mu     sync.Mutex
	data   map[string]interface{}
	setErr error
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string]interface{})}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

var errBoom = errors.New("boom")
