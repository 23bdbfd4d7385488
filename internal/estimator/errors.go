package estimator

import (
	"errors"
	"fmt"
)

// ErrPathFailed indicates a path simulation that could not complete. It is
// never produced by numeric overflow, which propagates as Inf/NaN instead.
var ErrPathFailed = errors.New("path simulation failed")

// PointError fails a whole estimation with the grid point it came from.
type PointError struct {
	Index int
	X     float64
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("grid point %d (x=%.4f): %v", e.Index, e.X, e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}
