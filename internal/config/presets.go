package config

import (
	"sort"

	"github.com/san-kum/pdratio/internal/model"
)

func preset(mod func(p *model.Params)) *Config {
	cfg := DefaultConfig()
	mod(&cfg.Model)
	return cfg
}

var Presets = map[string]*Config{
	"baseline": DefaultConfig(),
	"quick": preset(func(p *model.Params) {
		p.N = 200
		p.M = 2000
	}),
	"deterministic": preset(func(p *model.Params) {
		p.Sigma = 0
		p.SigmaC = 0
		p.SigmaD = 0
		p.M = 1
	}),
	"risk-neutral": preset(func(p *model.Params) {
		p.Gamma = 0
	}),
	"persistent": preset(func(p *model.Params) {
		p.Rho = 0.98
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
