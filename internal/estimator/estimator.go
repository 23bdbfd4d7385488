package estimator

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pdratio/internal/logger"
	"github.com/san-kum/pdratio/internal/model"
	"github.com/san-kum/pdratio/internal/numeric"
	"github.com/san-kum/pdratio/internal/path"
)

// cancelEvery is how many paths run between context checks inside a point.
const cancelEvery = 1024

// statisticFunc simulates one path from x0 with the given seed.
type statisticFunc func(x0 float64, seed uint64) float64

type Estimator struct {
	params     model.Params
	workers    int
	seedOffset uint64
	log        *zap.SugaredLogger
	observers  []Observer
	obsMu      sync.Mutex

	// newStatistic builds the per-run path function; tests replace it.
	newStatistic func(p model.Params) statisticFunc
}

func New(p model.Params) *Estimator {
	return &Estimator{
		params:    p,
		workers:   runtime.GOMAXPROCS(0),
		log:       logger.Nop(),
		observers: make([]Observer, 0),
		newStatistic: func(p model.Params) statisticFunc {
			return path.New(p).Statistic
		},
	}
}

func (e *Estimator) Params() model.Params { return e.params }
func (e *Estimator) Workers() int         { return e.workers }

// SetWorkers bounds the number of grid points processed concurrently.
// Values below one select GOMAXPROCS.
func (e *Estimator) SetWorkers(n int) {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	e.workers = n
}

// SetSeedOffset shifts the seeds of every batch to offset..offset+M-1.
func (e *Estimator) SetSeedOffset(offset uint64) { e.seedOffset = offset }

func (e *Estimator) SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = logger.Nop()
	}
	e.log = l
}

func (e *Estimator) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Run estimates v at every grid state. The parameters are validated before
// any path is simulated. An empty grid yields an empty result.
func (e *Estimator) Run(ctx context.Context, grid []float64) (*Result, error) {
	if err := e.params.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Grid:    append([]float64(nil), grid...),
		Values:  make([]float64, len(grid)),
		StdErrs: make([]float64, len(grid)),
		Paths:   e.params.M,
		Steps:   e.params.N,
		Workers: e.workers,
	}
	if len(grid) == 0 {
		return result, nil
	}

	e.log.Infow("estimation started",
		"points", len(grid), "paths", e.params.M, "steps", e.params.N,
		"workers", e.workers, "seed_offset", e.seedOffset)
	start := time.Now()

	statistic := e.newStatistic(e.params)
	samples := newSamplePool(e.params.M)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range result.Grid {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			buf := samples.get()
			defer samples.put(buf)

			pt, err := e.estimatePoint(gctx, statistic, buf, i, result.Grid[i])
			if err != nil {
				return err
			}

			result.Values[i] = pt.Value
			result.StdErrs[i] = pt.StdErr
			e.notify(pt)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.log.Warnw("estimation failed", "error", err)
		return nil, fmt.Errorf("estimator: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}

	result.Elapsed = time.Since(start)
	e.log.Infow("estimation finished", "elapsed", result.Elapsed, "finite", result.AllFinite())
	return result, nil
}

// estimatePoint fills buf with the M path statistics in seed order and
// averages them, so the estimate is independent of scheduling.
func (e *Estimator) estimatePoint(ctx context.Context, statistic statisticFunc, buf []float64, idx int, x0 float64) (pt Point, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PointError{Index: idx, X: x0, Err: fmt.Errorf("%w: %v", ErrPathFailed, r)}
		}
	}()

	for j := range buf {
		if j > 0 && j%cancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Point{}, err
			}
		}
		buf[j] = statistic(x0, numeric.PathSeed(e.seedOffset, j))
	}

	mean, stderr := numeric.MeanStdErr(buf)
	pt = Point{Index: idx, X: x0, Value: mean, StdErr: stderr}
	e.log.Debugw("grid point done", "index", idx, "x", x0, "value", pt.Value, "stderr", pt.StdErr)
	return pt, nil
}

func (e *Estimator) notify(pt Point) {
	if len(e.observers) == 0 {
		return
	}
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	for _, o := range e.observers {
		o.OnPoint(pt)
	}
}

// EstimateValueFunction runs a default Estimator over grid and returns the
// estimates in grid order.
func EstimateValueFunction(grid []float64, p model.Params) ([]float64, error) {
	res, err := New(p).Run(context.Background(), grid)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}
