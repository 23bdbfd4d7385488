package model

import (
	"fmt"
	"math"
	"sort"
)

const (
	DefaultBeta   = 0.96
	DefaultGamma  = 2.0
	DefaultRho    = 0.9
	DefaultSigma  = 0.05
	DefaultMuD    = 0.01
	DefaultSigmaD = 0.01
	DefaultMuC    = 0.05
	DefaultSigmaC = 0.01
	DefaultN      = 1000
	DefaultM      = 20000
)

// Params is the full coefficient bundle of one estimation request.
type Params struct {
	Beta   float64 `yaml:"beta" json:"beta"`
	Gamma  float64 `yaml:"gamma" json:"gamma"`
	Rho    float64 `yaml:"rho" json:"rho"`
	Sigma  float64 `yaml:"sigma" json:"sigma"`
	MuD    float64 `yaml:"mu_d" json:"mu_d"`
	SigmaD float64 `yaml:"sigma_d" json:"sigma_d"`
	MuC    float64 `yaml:"mu_c" json:"mu_c"`
	SigmaC float64 `yaml:"sigma_c" json:"sigma_c"`
	// N is the path length, M the number of paths per grid point.
	N int `yaml:"n" json:"n"`
	M int `yaml:"m" json:"m"`
}

func DefaultParams() Params {
	return Params{
		Beta:   DefaultBeta,
		Gamma:  DefaultGamma,
		Rho:    DefaultRho,
		Sigma:  DefaultSigma,
		MuD:    DefaultMuD,
		SigmaD: DefaultSigmaD,
		MuC:    DefaultMuC,
		SigmaC: DefaultSigmaC,
		N:      DefaultN,
		M:      DefaultM,
	}
}

// Validate reports the first field that makes p unusable. β outside (0,1)
// is accepted.
func (p Params) Validate() error {
	if p.N < 1 {
		return &ConfigError{Field: "n", Value: float64(p.N), Reason: "must be at least 1"}
	}
	if p.M < 1 {
		return &ConfigError{Field: "m", Value: float64(p.M), Reason: "must be at least 1"}
	}

	for _, name := range coefficientNames {
		v := p.coefficient(name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Field: name, Value: v, Reason: "must be finite"}
		}
	}

	for _, name := range []string{"sigma", "sigma_c", "sigma_d"} {
		if v := p.coefficient(name); v < 0 {
			return &ConfigError{Field: name, Value: v, Reason: "must be non-negative"}
		}
	}
	return nil
}

// LogDrift is the state-independent part of the log growth factor, -γμ_c + μ_d.
func (p Params) LogDrift() float64 {
	return -p.Gamma*p.MuC + p.MuD
}

// Deterministic reports whether every shock loading is zero.
func (p Params) Deterministic() bool {
	return p.Sigma == 0 && p.SigmaC == 0 && p.SigmaD == 0
}

var coefficientNames = []string{"beta", "gamma", "rho", "sigma", "mu_d", "sigma_d", "mu_c", "sigma_c"}

func (p Params) coefficient(name string) float64 {
	switch name {
	case "beta":
		return p.Beta
	case "gamma":
		return p.Gamma
	case "rho":
		return p.Rho
	case "sigma":
		return p.Sigma
	case "mu_d":
		return p.MuD
	case "sigma_d":
		return p.SigmaD
	case "mu_c":
		return p.MuC
	case "sigma_c":
		return p.SigmaC
	}
	return math.NaN()
}

// Map returns every parameter keyed by its yaml name.
func (p Params) Map() map[string]float64 {
	m := make(map[string]float64, len(coefficientNames)+2)
	for _, name := range coefficientNames {
		m[name] = p.coefficient(name)
	}
	m["n"] = float64(p.N)
	m["m"] = float64(p.M)
	return m
}

// Names returns the parameter names in display order.
func Names() []string {
	names := make([]string, 0, len(coefficientNames)+2)
	names = append(names, coefficientNames...)
	return append(names, "n", "m")
}

// WithValue returns a copy of p with one parameter replaced.
func (p Params) WithValue(name string, v float64) (Params, error) {
	switch name {
	case "beta":
		p.Beta = v
	case "gamma":
		p.Gamma = v
	case "rho":
		p.Rho = v
	case "sigma":
		p.Sigma = v
	case "mu_d":
		p.MuD = v
	case "sigma_d":
		p.SigmaD = v
	case "mu_c":
		p.MuC = v
	case "sigma_c":
		p.SigmaC = v
	case "n", "m":
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return p, &ConfigError{Field: name, Value: v, Reason: "must be an integer"}
		}
		if name == "n" {
			p.N = int(v)
		} else {
			p.M = int(v)
		}
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return p, nil
}

// WithValues applies overrides in name order so the result does not depend
// on map iteration.
func (p Params) WithValues(overrides map[string]float64) (Params, error) {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	var err error
	for _, name := range names {
		if p, err = p.WithValue(name, overrides[name]); err != nil {
			return p, err
		}
	}
	return p, nil
}
