// Package vectorindex provides an exact nearest-neighbor index over L2 distance.
// Rows are addressed by insertion position, which must match catalog order.
package vectorindex

import (
	"context"
	"fmt"
	"sort"

	"github.com/roomlens/backend/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// FlatIndex is a brute-force L2 index. It is safe for concurrent Search
// once building has finished.
type FlatIndex struct {
	dimension int
	rows      [][]float64
}

// NewFlatIndex creates an empty index for vectors of the given dimension
func NewFlatIndex(dimension int) *FlatIndex {
	return &FlatIndex{dimension: dimension}
}

// Add appends vectors as new rows in order
func (x *FlatIndex) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != x.dimension {
			return fmt.Errorf("%w: expected %d, got %d for row %d",
				domain.ErrDimensionMismatch, x.dimension, len(v), len(x.rows)+i)
		}
	}
	for _, v := range vectors {
		x.rows = append(x.rows, toFloat64s(v))
	}
	return nil
}

// Len returns the number of rows
func (x *FlatIndex) Len() int {
	return len(x.rows)
}

// Dimension returns the vector length accepted by the index
func (x *FlatIndex) Dimension() int {
	return x.dimension
}

type neighbor struct {
	position int
	distance float64
}

// Search returns the k nearest rows by Euclidean distance, closest first.
// Ties keep insertion order. At most min(k, Len()) results are returned.
func (x *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]float32, []int, error) {
	if len(query) != x.dimension {
		return nil, nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, x.dimension, len(query))
	}
	if k <= 0 || len(x.rows) == 0 {
		return []float32{}, []int{}, nil
	}

	q := toFloat64s(query)
	candidates := make([]neighbor, len(x.rows))
	for i, row := range x.rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		candidates[i] = neighbor{position: i, distance: floats.Distance(q, row, 2)}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	distances := make([]float32, k)
	positions := make([]int, k)
	for i := 0; i < k; i++ {
		distances[i] = float32(candidates[i].distance)
		positions[i] = candidates[i].position
	}

	return distances, positions, nil
}

func toFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
