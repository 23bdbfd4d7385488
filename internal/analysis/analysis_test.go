package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pdratio/internal/model"
	"github.com/san-kum/pdratio/internal/path"
)

func fastParams() model.Params {
	p := model.DefaultParams()
	p.N = 50
	p.M = 100
	return p
}

func TestEnsembleReplicatesDiffer(t *testing.T) {
	values, err := NewEnsemble(fastParams(), 4).Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(values) != 4 {
		t.Fatalf("expected 4 replicates, got %d", len(values))
	}
	for i := 1; i < len(values); i++ {
		if values[i] == values[0] {
			t.Errorf("replicate %d repeats replicate 0", i)
		}
	}
}

func TestEnsembleDeterministic(t *testing.T) {
	a, err := NewEnsemble(fastParams(), 3).Run(context.Background(), 0.1)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	e := NewEnsemble(fastParams(), 3)
	e.SetWorkers(1)
	b, err := e.Run(context.Background(), 0.1)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("replicate %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEnsembleInvalidConfig(t *testing.T) {
	p := fastParams()
	p.N = 0
	if _, err := NewEnsemble(p, 2).Run(context.Background(), 0); !errors.Is(err, model.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConvergenceShrinks(t *testing.T) {
	rows, err := Convergence(context.Background(), fastParams(), 0, []int{40, 640}, 30)
	if err != nil {
		t.Fatalf("convergence failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Expected != rows[0].StdDev {
		t.Error("first row should be its own reference")
	}
	if math.Abs(rows[1].Expected-rows[0].StdDev/4) > 1e-12 {
		t.Errorf("expected reference %v, got %v", rows[0].StdDev/4, rows[1].Expected)
	}

	ratio := ShrinkRatio(rows[0], rows[1])
	if ExpectedRatio(rows[0], rows[1]) != 4 {
		t.Errorf("expected ratio 4, got %v", ExpectedRatio(rows[0], rows[1]))
	}
	if ratio < 2 || ratio > 8 {
		t.Errorf("spread shrank by %v, expected about 4", ratio)
	}
}

func TestConvergenceNeedsReplicates(t *testing.T) {
	_, err := Convergence(context.Background(), fastParams(), 0, []int{10}, 1)
	if !errors.Is(err, model.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestShrinkRatioZeroSpread(t *testing.T) {
	r := ShrinkRatio(ConvergenceRow{M: 1, StdDev: 1}, ConvergenceRow{M: 4})
	if !math.IsInf(r, 1) {
		t.Errorf("expected +Inf, got %v", r)
	}
}

func TestTruncation(t *testing.T) {
	p := fastParams()
	rows, err := Truncation(p, 0, []int{10, 100, 1000, 2000})
	if err != nil {
		t.Fatalf("truncation failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	for i, row := range rows {
		q := p
		q.N = row.N
		if row.Value != path.Deterministic(0, q) {
			t.Errorf("row %d: value mismatch", i)
		}
	}
	if rows[0].RelChange <= rows[2].RelChange {
		t.Errorf("expected truncation effect to fade: %v then %v", rows[0].RelChange, rows[2].RelChange)
	}
	if rows[2].RelChange > 1e-12 {
		t.Errorf("expected N=1000 to be converged for the baseline, got %v", rows[2].RelChange)
	}
	if rows[3].RelChange != 0 {
		t.Error("last row should have zero change")
	}
}

func TestTruncationInvalidHorizon(t *testing.T) {
	if _, err := Truncation(fastParams(), 0, []int{10, 0}); !errors.Is(err, model.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSlope(t *testing.T) {
	b, err := Slope([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})
	if err != nil {
		t.Fatalf("slope failed: %v", err)
	}
	if math.Abs(b-2) > 1e-12 {
		t.Errorf("expected slope 2, got %v", b)
	}

	if _, err := Slope([]float64{0}, []float64{1}); err == nil {
		t.Error("expected error for a single point")
	}
	if _, err := Slope([]float64{0, 1}, []float64{1}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}
