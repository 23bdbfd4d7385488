package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Slope fits v̂ = a + b·x by least squares and returns b.
func Slope(grid, values []float64) (float64, error) {
	if len(grid) != len(values) {
		return 0, fmt.Errorf("grid has %d points, values has %d", len(grid), len(values))
	}
	if len(grid) < 2 {
		return 0, fmt.Errorf("need at least 2 points, got %d", len(grid))
	}
	_, b := stat.LinearRegression(grid, values, nil, false)
	return b, nil
}
