package numeric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeanStdErr returns the sample mean of xs and its standard error
// sqrt(s²/n). The standard error is zero for fewer than two values.
func MeanStdErr(xs []float64) (mean, stderr float64) {
	switch len(xs) {
	case 0:
		return math.NaN(), 0
	case 1:
		return xs[0], 0
	}

	mean, variance := stat.MeanVariance(xs, nil)
	// Identical values can leave a rounding residue just below zero.
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance / float64(len(xs)))
}
