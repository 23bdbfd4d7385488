package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pdratio/internal/model"
)

// ConvergenceRow summarizes the replicate estimates for one path count.
type ConvergenceRow struct {
	M      int     `json:"m"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	// Expected is the first row's StdDev scaled by sqrt(M0/M).
	Expected float64 `json:"expected"`
}

// Convergence estimates v(x0) replicates times for every path count in ms.
func Convergence(ctx context.Context, p model.Params, x0 float64, ms []int, replicates int) ([]ConvergenceRow, error) {
	if replicates < 2 {
		return nil, fmt.Errorf("%w: need at least 2 replicates, got %d", model.ErrInvalidConfig, replicates)
	}

	rows := make([]ConvergenceRow, 0, len(ms))
	for _, m := range ms {
		q := p
		q.M = m

		values, err := NewEnsemble(q, replicates).Run(ctx, x0)
		if err != nil {
			return nil, fmt.Errorf("convergence at m=%d: %w", m, err)
		}

		mean, std := stat.MeanStdDev(values, nil)
		row := ConvergenceRow{M: m, Mean: mean, StdDev: std, Expected: std}
		if len(rows) > 0 {
			first := rows[0]
			row.Expected = first.StdDev * math.Sqrt(float64(first.M)/float64(m))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ShrinkRatio is the observed factor by which the spread fell from a to b.
func ShrinkRatio(a, b ConvergenceRow) float64 {
	if b.StdDev == 0 {
		return math.Inf(1)
	}
	return a.StdDev / b.StdDev
}

// ExpectedRatio is the 1/sqrt(M) prediction for ShrinkRatio.
func ExpectedRatio(a, b ConvergenceRow) float64 {
	return math.Sqrt(float64(b.M) / float64(a.M))
}
