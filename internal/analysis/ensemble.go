package analysis

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pdratio/internal/estimator"
	"github.com/san-kum/pdratio/internal/model"
)

// Ensemble repeats a single-point estimate with disjoint seed batches.
// Replicate r uses seeds r·M .. r·M+M-1.
type Ensemble struct {
	params  model.Params
	runs    int
	workers int
}

func NewEnsemble(p model.Params, runs int) *Ensemble {
	return &Ensemble{params: p, runs: runs, workers: runtime.GOMAXPROCS(0)}
}

func (e *Ensemble) SetWorkers(n int) {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	e.workers = n
}

// Run returns one estimate of v(x0) per replicate, in replicate order.
func (e *Ensemble) Run(ctx context.Context, x0 float64) ([]float64, error) {
	if err := e.params.Validate(); err != nil {
		return nil, err
	}

	values := make([]float64, e.runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for r := 0; r < e.runs; r++ {
		g.Go(func() error {
			est := estimator.New(e.params)
			est.SetWorkers(1)
			est.SetSeedOffset(uint64(r) * uint64(e.params.M))

			res, err := est.Run(gctx, []float64{x0})
			if err != nil {
				return err
			}
			values[r] = res.Values[0]
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
