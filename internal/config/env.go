package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the process environment.
type Env struct {
	DataDir   string  `env:"GALAXYSIM_DATA_DIR" envDefault:"runs"`
	Workers   int     `env:"GALAXYSIM_WORKERS"`
	Evaluator string  `env:"GALAXYSIM_EVALUATOR"`
	Seed      *uint64 `env:"GALAXYSIM_SEED"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overrides the run config with any values set in the environment.
func (e Env) Apply(cfg *Config) {
	if e.Workers > 0 {
		cfg.Workers = e.Workers
	}
	if e.Evaluator != "" {
		cfg.Evaluator = e.Evaluator
	}
	if e.Seed != nil {
		cfg.Seed = *e.Seed
	}
}
