package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/experiment"
	"github.com/san-kum/galaxysim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or a config file and overrides the
// fields that are set. Zero values keep the base value.
type ScenarioStep struct {
	Preset     string  `yaml:"preset"`
	Config     string  `yaml:"config"`
	Name       string  `yaml:"name"`
	Seed       uint64  `yaml:"seed"`
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`
	Evaluator  string  `yaml:"evaluator"`
	Integrator string  `yaml:"integrator"`
	Softening  float64 `yaml:"softening"`
	Theta      float64 `yaml:"theta"`
}

// StepResult is one finished step. RunID is empty when nothing was
// stored.
type StepResult struct {
	RunID  string
	Result *experiment.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrInvalidConfiguration, scenario.Name)
	}

	return &scenario, nil
}

// Resolve builds the run config of one step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case s.Preset != "":
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset: %s", dynamo.ErrInvalidConfiguration, s.Preset)
		}
	default:
		return nil, fmt.Errorf("%w: step needs a preset or a config", dynamo.ErrInvalidConfiguration)
	}

	if s.Name != "" {
		cfg.Name = s.Name
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Steps != 0 {
		cfg.Steps = s.Steps
	}
	if s.Evaluator != "" {
		cfg.Evaluator = s.Evaluator
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Softening != 0 {
		cfg.Softening = s.Softening
	}
	if s.Theta != 0 {
		cfg.Theta = s.Theta
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order and stops at the first
// failure. Each finished run is saved to store when store is not nil;
// progress lines go to log.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, store *storage.Store, log io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(log, "running step %d/%d: %s (%d stars, %d steps)\n", i+1, len(scenario.Steps), cfg.Name, cfg.TotalStars(), cfg.Steps)

		exp := experiment.New(cfg, reg)
		exp.DiscardPositions = store == nil
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Result: result}
		if store != nil {
			if sr.RunID, err = store.Save(cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
