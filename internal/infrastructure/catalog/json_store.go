package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roomlens/backend/internal/domain"
)

// JSONStore loads the product catalog from a JSON array on disk
type JSONStore struct {
	path string
}

// NewJSONStore creates a catalog store reading from path
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the catalog file location
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the catalog in file order. A missing file yields an empty catalog.
func (s *JSONStore) Load(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.path, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", s.path, err)
	}

	if err := validateProducts(products); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", s.path, err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// validateProducts enforces unique positive ids and non-negative prices
func validateProducts(products []domain.Product) error {
	seen := make(map[int]struct{}, len(products))
	for i, p := range products {
		if p.ID <= 0 {
			return fmt.Errorf("product at position %d has non-positive id %d", i, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %d at position %d", p.ID, i)
		}
		if p.Price < 0 {
			return fmt.Errorf("product %d has negative price", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
