package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pdratio/internal/model"
	"github.com/san-kum/pdratio/internal/numeric"
)

const (
	DefaultGridMin    = -0.3
	DefaultGridMax    = 0.3
	DefaultGridPoints = 20
)

// Config is one estimation request as read from a yaml file.
type Config struct {
	Model      model.Params `yaml:"model"`
	Grid       GridConfig   `yaml:"grid"`
	Workers    int          `yaml:"workers"`
	SeedOffset uint64       `yaml:"seed_offset"`
}

type GridConfig struct {
	Min    float64 `yaml:"min" json:"min"`
	Max    float64 `yaml:"max" json:"max"`
	Points int     `yaml:"points" json:"points"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: model.DefaultParams(),
		Grid: GridConfig{
			Min:    DefaultGridMin,
			Max:    DefaultGridMax,
			Points: DefaultGridPoints,
		},
	}
}

// Load overlays the file at path on DefaultConfig. Keys missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	return Overlay(path, DefaultConfig())
}

// Overlay reads the file at path over a copy of base.
func Overlay(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GridPoints expands the grid section into state values.
func (c *Config) GridPoints() []float64 {
	return numeric.Grid(c.Grid.Min, c.Grid.Max, c.Grid.Points)
}

// Validate checks the model and the grid before anything is simulated.
func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if c.Grid.Points < 0 {
		return &model.ConfigError{Field: "grid.points", Value: float64(c.Grid.Points), Reason: "must be non-negative"}
	}
	if c.Grid.Points > 1 && c.Grid.Max < c.Grid.Min {
		return &model.ConfigError{Field: "grid.max", Value: c.Grid.Max, Reason: "must not be below grid.min"}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
