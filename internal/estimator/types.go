package estimator

import (
	"math"
	"time"
)

// Point is the estimate at one grid state.
type Point struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Value  float64 `json:"value"`
	StdErr float64 `json:"stderr"`
}

type Observer interface {
	OnPoint(pt Point)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(pt Point)

func (f ObserverFunc) OnPoint(pt Point) { f(pt) }

// Result holds one estimate per grid point, aligned with Grid.
type Result struct {
	Grid    []float64
	Values  []float64
	StdErrs []float64
	// Paths and Steps are M and N of the run.
	Paths   int
	Steps   int
	Workers int
	Elapsed time.Duration
}

func (r *Result) Len() int { return len(r.Grid) }

func (r *Result) Points() []Point {
	pts := make([]Point, len(r.Grid))
	for i := range r.Grid {
		pts[i] = Point{Index: i, X: r.Grid[i], Value: r.Values[i], StdErr: r.StdErrs[i]}
	}
	return pts
}

// AllFinite reports whether no estimate overflowed.
func (r *Result) AllFinite() bool {
	for _, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Simulations is the number of path simulations the run performed.
func (r *Result) Simulations() int {
	return len(r.Grid) * r.Paths
}
