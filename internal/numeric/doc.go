// Package numeric holds the small numeric kernels shared by the path
// simulator and the grid estimator: per-path random streams, the one-step
// state and growth-factor updates, state grids and sample moments.
//
// Every function here is allocation-free on the hot path. A [Stream] is
// owned by exactly one simulated path and must never be shared across
// goroutines.
package numeric
