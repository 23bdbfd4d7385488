// Package model defines the parameters of the consumption-based asset
// pricing model whose price-dividend ratio is estimated by simulation.
//
// The model has a latent AR(1) state x and two log-normal growth processes:
//
//   - consumption growth with drift [Params.MuC] and volatility [Params.SigmaC]
//   - dividend growth with drift [Params.MuD] and volatility [Params.SigmaD]
//
// The stochastic discount factor is β·exp(-γ·Δc), and the state enters the
// one-period growth factor through the (1-γ)·x term.
//
// # Validation
//
// [Params.Validate] rejects configurations that cannot produce a meaningful
// estimate. Returned errors wrap [ErrInvalidConfig]:
//
//	if err := p.Validate(); errors.Is(err, model.ErrInvalidConfig) {
//	    // reject the request before any simulation runs
//	}
//
// Params values are immutable once built; mutators return modified copies.
package model
