// Package path simulates single trajectories of the latent state and
// returns their forward-sum statistic Λ = Σ_{n=1}^N ∏_{i=1}^n A_i.
package path

import (
	"github.com/san-kum/pdratio/internal/model"
	"github.com/san-kum/pdratio/internal/numeric"
)

// Simulator holds the coefficients of one parameter bundle. It carries no
// mutable state, so a single Simulator may serve any number of goroutines.
type Simulator struct {
	beta        float64
	logDrift    float64
	kappa       float64
	gammaSigmaC float64
	sigmaD      float64
	rho         float64
	sigma       float64
	steps       int
}

func New(p model.Params) *Simulator {
	return &Simulator{
		beta:        p.Beta,
		logDrift:    p.LogDrift(),
		kappa:       1 - p.Gamma,
		gammaSigmaC: p.Gamma * p.SigmaC,
		sigmaD:      p.SigmaD,
		rho:         p.Rho,
		sigma:       p.Sigma,
		steps:       p.N,
	}
}

func (s *Simulator) Steps() int { return s.steps }

// Statistic draws one path of length N from x0 using a fresh stream seeded
// with seed and returns Λ. Overflow in the factor propagates as Inf or NaN.
func (s *Simulator) Statistic(x0 float64, seed uint64) float64 {
	rng := numeric.NewStream(seed)

	x := x0
	prod, lambda := 1.0, 0.0
	for t := 0; t < s.steps; t++ {
		etaC := rng.Normal()
		etaD := rng.Normal()
		a := numeric.Factor(s.beta, s.logDrift, s.kappa, x, etaC, etaD, s.gammaSigmaC, s.sigmaD)

		x = numeric.AR1(s.rho, s.sigma, x, rng.Normal())

		prod *= a
		lambda += prod
	}
	return lambda
}

// SimulateStatistic is Statistic for a one-off parameter bundle.
func SimulateStatistic(x0 float64, p model.Params, seed uint64) float64 {
	return New(p).Statistic(x0, seed)
}

// Deterministic evaluates Λ with every shock set to zero, which is the exact
// value of every path when σ, σ_c and σ_d are all zero.
func Deterministic(x0 float64, p model.Params) float64 {
	s := New(p)

	x := x0
	prod, lambda := 1.0, 0.0
	for t := 0; t < s.steps; t++ {
		a := numeric.Factor(s.beta, s.logDrift, s.kappa, x, 0, 0, s.gammaSigmaC, s.sigmaD)
		x = numeric.AR1(s.rho, s.sigma, x, 0)

		prod *= a
		lambda += prod
	}
	return lambda
}
