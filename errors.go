package kcluster

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kcluster/internal/kmeans"
)

var (
	// ErrInvalidArgument is returned for an out-of-range k, an empty
	// dataset, or malformed points.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotConverged is returned together with a partial Result when the
	// iteration cap is reached.
	ErrNotConverged = errors.New("clustering did not converge")
)

// ErrDimensionMismatch indicates a point whose length differs from the
// dataset dimension. It matches ErrInvalidArgument under errors.Is.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Index    int
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch at %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// Is reports ErrDimensionMismatch as an ErrInvalidArgument.
func (e *ErrDimensionMismatch) Is(target error) bool { return target == ErrInvalidArgument }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *kmeans.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Index: dm.Index, Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	switch {
	case errors.Is(err, kmeans.ErrInvalidK),
		errors.Is(err, kmeans.ErrNoPoints),
		errors.Is(err, kmeans.ErrZeroDimension),
		errors.Is(err, kmeans.ErrSeedCount):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, kmeans.ErrMaxIterations):
		return fmt.Errorf("%w: %w", ErrNotConverged, err)
	}

	return err
}
