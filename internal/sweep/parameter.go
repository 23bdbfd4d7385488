package sweep

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pdratio/internal/estimator"
	"github.com/san-kum/pdratio/internal/model"
	"github.com/san-kum/pdratio/internal/numeric"
)

// ParameterSweep estimates v(X0) across a range of one model parameter.
// Parameter values run concurrently, at most Workers at a time (GOMAXPROCS
// when zero).
type ParameterSweep struct {
	Base      model.Params
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	X0        float64
	Workers   int
}

type SweepResult struct {
	ParamValue float64
	Value      float64
	StdErr     float64
}

func (ps *ParameterSweep) Run(ctx context.Context) ([]SweepResult, error) {
	values := numeric.Grid(ps.ParamMin, ps.ParamMax, ps.NumSteps)

	params := make([]model.Params, len(values))
	for i, v := range values {
		p, err := ps.Base.WithValue(ps.ParamName, v)
		if err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%v: %w", ps.ParamName, v, err)
		}
		params[i] = p
	}

	workers := ps.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]SweepResult, len(params))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range params {
		g.Go(func() error {
			est := estimator.New(p)
			est.SetWorkers(1)

			res, err := est.Run(gctx, []float64{ps.X0})
			if err != nil {
				return fmt.Errorf("%s=%v: %w", ps.ParamName, values[i], err)
			}
			results[i] = SweepResult{
				ParamValue: values[i],
				Value:      res.Values[0],
				StdErr:     res.StdErrs[0],
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
