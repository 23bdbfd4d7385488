package numeric

import "math"

// Factor is the pricing-kernel-times-dividend-growth factor
// β·exp(logDrift + κx − γσ_c·η_c + σ_d·η_d) with κ = 1−γ, evaluated at the
// state carried over from the previous period.
func Factor(beta, logDrift, kappa, x, etaC, etaD, gammaSigmaC, sigmaD float64) float64 {
	return beta * math.Exp(logDrift+kappa*x-gammaSigmaC*etaC+sigmaD*etaD)
}

// AR1 advances the latent state one period.
func AR1(rho, sigma, x, xi float64) float64 {
	return rho*x + sigma*xi
}
