package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is outside [1, n].
	ErrInvalidK = errors.New("k must be in [1, n]")
	// ErrNoPoints is returned for an empty dataset.
	ErrNoPoints = errors.New("dataset is empty")
	// ErrZeroDimension is returned when points have no coordinates.
	ErrZeroDimension = errors.New("points must have at least one dimension")
	// ErrSeedCount is returned when explicit seeds do not match k.
	ErrSeedCount = errors.New("number of seed centroids must equal k")
	// ErrMaxIterations is returned when the iteration cap is reached before convergence.
	ErrMaxIterations = errors.New("max iterations reached")
)

// ErrDimensionMismatch is returned when a point's length differs from the first point's.
type ErrDimensionMismatch struct {
	Index    int
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("point %d: dimension mismatch: expected %d, got %d", e.Index, e.Expected, e.Actual)
}
