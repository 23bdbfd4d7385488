package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/pdratio/internal/model"
	"github.com/san-kum/pdratio/internal/path"
)

// TruncationRow is the deterministic skeleton of Λ at one horizon.
type TruncationRow struct {
	N     int     `json:"n"`
	Value float64 `json:"value"`
	// RelChange is |v(N_next) - v(N)| / |v(N)|; zero on the last row.
	RelChange float64 `json:"rel_change"`
}

// Truncation evaluates the zero-shock sum at each horizon. A vanishing
// RelChange means the finite-horizon cut is no longer moving the estimate.
func Truncation(p model.Params, x0 float64, horizons []int) ([]TruncationRow, error) {
	rows := make([]TruncationRow, len(horizons))
	for i, n := range horizons {
		q := p
		q.N = n
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("horizon %d: %w", n, err)
		}
		rows[i] = TruncationRow{N: n, Value: path.Deterministic(x0, q)}
	}

	for i := 0; i+1 < len(rows); i++ {
		if rows[i].Value != 0 {
			rows[i].RelChange = math.Abs(rows[i+1].Value-rows[i].Value) / math.Abs(rows[i].Value)
		}
	}
	return rows, nil
}
