package kcluster

import (
	"fmt"

	"github.com/hupe1980/kcluster/internal/kmeans"
)

// Model assigns new points to a fixed set of centroids.
// A Model is immutable and safe for concurrent use.
type Model struct {
	centroids [][]float64
	dim       int
}

// NewModel creates a Model from centroids, e.g. ones restored from a snapshot.
func NewModel(centroids [][]float64) (*Model, error) {
	if len(centroids) == 0 {
		return nil, fmt.Errorf("%w: no centroids", ErrInvalidArgument)
	}
	dim := len(centroids[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: centroids must have at least one dimension", ErrInvalidArgument)
	}
	for i, c := range centroids {
		if len(c) != dim {
			return nil, &ErrDimensionMismatch{Index: i, Expected: dim, Actual: len(c)}
		}
	}
	return &Model{centroids: cloneMatrix(centroids), dim: dim}, nil
}

// K returns the number of centroids.
func (m *Model) K() int { return len(m.centroids) }

// Dim returns the centroid dimension.
func (m *Model) Dim() int { return m.dim }

// Centroids returns a copy of the centroids.
func (m *Model) Centroids() [][]float64 { return cloneMatrix(m.centroids) }

// Predict returns the index of the nearest centroid.
// Ties go to the lowest index, matching assignment during clustering.
func (m *Model) Predict(point []float64) (int, error) {
	if len(point) != m.dim {
		return -1, &ErrDimensionMismatch{Index: -1, Expected: m.dim, Actual: len(point)}
	}
	idx, _ := kmeans.Nearest(point, m.centroids)
	return idx, nil
}

// Nearest returns the indices of the n closest centroids, nearest first.
// n is clamped to K.
func (m *Model) Nearest(point []float64, n int) ([]int, error) {
	if len(point) != m.dim {
		return nil, &ErrDimensionMismatch{Index: -1, Expected: m.dim, Actual: len(point)}
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: n must be positive", ErrInvalidArgument)
	}
	return kmeans.ClosestCentroids(point, m.centroids, n), nil
}
