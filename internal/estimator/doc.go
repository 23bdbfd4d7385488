// Package estimator maps a grid of latent states to Monte Carlo estimates
// of the price-dividend ratio v(x).
//
// For each grid point the [Estimator] runs M independent paths through the
// path simulator, seeded offset+0 .. offset+M-1, and averages their
// statistics. Grid points are processed by a bounded worker pool; every
// worker writes only the output slot of its own grid index, so the result
// is in grid order no matter which point finishes first.
//
// # Example
//
//	est := estimator.New(model.DefaultParams())
//	res, err := est.Run(ctx, numeric.Grid(-0.3, 0.3, 20))
//	if err != nil {
//	    return err
//	}
//	for _, pt := range res.Points() {
//	    fmt.Println(pt.X, pt.Value)
//	}
//
// # Thread Safety
//
// An Estimator may be reused but not reconfigured while Run is in flight.
// Observers are called from worker goroutines one at a time.
package estimator
