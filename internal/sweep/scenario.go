package sweep

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pdratio/internal/config"
	"github.com/san-kum/pdratio/internal/estimator"
	"github.com/san-kum/pdratio/internal/logger"
)

// Scenario is a scripted sequence of estimations sharing a base preset.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Base        string `yaml:"base"`
	Workers     int    `yaml:"workers"`
	Steps       []Step `yaml:"steps"`
}

// Step overrides named model parameters of the base configuration.
type Step struct {
	Name      string             `yaml:"name"`
	Overrides map[string]float64 `yaml:"overrides"`
	Grid      *config.GridConfig `yaml:"grid"`
}

// Saver persists a finished run. *storage.Store satisfies it.
type Saver interface {
	Save(label string, cfg *config.Config, result *estimator.Result) (string, error)
}

type StepResult struct {
	Name   string
	RunID  string
	Config *config.Config
	Result *estimator.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &scenario, nil
}

// Configs resolves every step against the base preset without running
// anything, so a bad override fails before any compute is spent.
func (s *Scenario) Configs() ([]*config.Config, error) {
	base := config.DefaultConfig()
	if s.Base != "" {
		if base = config.GetPreset(s.Base); base == nil {
			return nil, fmt.Errorf("unknown base preset: %s (available: %v)", s.Base, config.ListPresets())
		}
	}
	if s.Workers > 0 {
		base.Workers = s.Workers
	}

	cfgs := make([]*config.Config, len(s.Steps))
	for i, step := range s.Steps {
		cfg := base.Clone()
		params, err := cfg.Model.WithValues(step.Overrides)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		cfg.Model = params
		if step.Grid != nil {
			cfg.Grid = *step.Grid
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		cfgs[i] = cfg
	}
	return cfgs, nil
}

// Run executes the steps in order. A nil saver keeps results in memory
// only. The first failing step aborts the scenario.
func (s *Scenario) Run(ctx context.Context, saver Saver, log *zap.SugaredLogger) ([]StepResult, error) {
	if log == nil {
		log = logger.Nop()
	}

	cfgs, err := s.Configs()
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(cfgs))
	for i, cfg := range cfgs {
		step := s.Steps[i]
		log.Infow("running step", "scenario", s.Name, "step", i+1, "of", len(cfgs), "name", step.Name)

		est := estimator.New(cfg.Model)
		est.SetWorkers(cfg.Workers)
		est.SetSeedOffset(cfg.SeedOffset)
		est.SetLogger(log)

		res, err := est.Run(ctx, cfg.GridPoints())
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		sr := StepResult{Name: step.Name, Config: cfg, Result: res}
		if saver != nil {
			label := s.Name + "/" + step.Name
			if sr.RunID, err = saver.Save(label, cfg, res); err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, step.Name, err)
			}
		}
		results = append(results, sr)
	}
	return results, nil
}
