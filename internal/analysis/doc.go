// Package analysis provides diagnostics around the value-function
// estimator:
//
//   - [Ensemble]: independent replicate estimates at one state
//   - [Convergence]: spread of replicate estimates as M grows
//   - [Truncation]: sensitivity of the deterministic skeleton to the horizon N
//   - [Slope]: least-squares slope of the estimated value function
//
// # Sampling Error
//
// Plain Monte Carlo error shrinks like 1/sqrt(M). Quadrupling M should
// roughly halve the replicate standard deviation:
//
//	rows, _ := analysis.Convergence(ctx, p, 0, []int{2000, 8000}, 20)
//	ratio := analysis.ShrinkRatio(rows[0], rows[1]) // ≈ 2
package analysis
