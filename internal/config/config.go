package config

import (
	"fmt"
	"os"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/galaxy"
	"github.com/san-kum/galaxysim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps      = 1000
	DefaultFrameEvery = 10
	DefaultEvaluator  = "parallel"
	DefaultIntegrator = "symplectic"
)

// Config describes one run: physics parameters, stepping and the galaxies
// to generate.
type Config struct {
	Name        string         `yaml:"name"`
	Seed        uint64         `yaml:"seed"`
	Dt          float64        `yaml:"dt"`
	Steps       int            `yaml:"steps"`
	FrameEvery  int            `yaml:"frame_every"`
	Evaluator   string         `yaml:"evaluator"`
	Integrator  string         `yaml:"integrator"`
	G           float64        `yaml:"g"`
	Softening   float64        `yaml:"softening"`
	Theta       float64        `yaml:"theta"`
	Workers     int            `yaml:"workers"`
	// BoundRadius enables tracking of how often every star stays within
	// this distance of the center of mass. Zero disables it.
	BoundRadius float64        `yaml:"bound_radius,omitempty"`
	Galaxies    []GalaxyConfig `yaml:"galaxies"`
}

type GalaxyConfig struct {
	Stars       int        `yaml:"stars"`
	Center      [3]float64 `yaml:"center,flow"`
	Velocity    [3]float64 `yaml:"velocity,flow"`
	Inclination float64    `yaml:"inclination"`
	Mass        float64    `yaml:"mass"`
	Radius      float64    `yaml:"radius,omitempty"`
	Thickness   float64    `yaml:"thickness,omitempty"`
	Profile     string     `yaml:"profile,omitempty"`
	ScaleLength float64    `yaml:"scale_length,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "single",
		Seed:       1,
		Dt:         sim.DefaultTimestep,
		Steps:      DefaultSteps,
		FrameEvery: DefaultFrameEvery,
		Evaluator:  DefaultEvaluator,
		Integrator: DefaultIntegrator,
		G:          compute.DefaultG,
		Softening:  compute.DefaultSoftening,
		Theta:      compute.DefaultTheta,
	}
}

// Load reads a YAML config. Fields missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
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

func (c *Config) Params() compute.Params {
	return compute.Params{
		G:         c.G,
		Softening: c.Softening,
		Theta:     c.Theta,
		Workers:   c.Workers,
	}
}

func (c *Config) GalaxyConfigs() []galaxy.Config {
	out := make([]galaxy.Config, len(c.Galaxies))
	for i, g := range c.Galaxies {
		out[i] = g.Galaxy()
	}
	return out
}

func (g GalaxyConfig) Galaxy() galaxy.Config {
	return galaxy.Config{
		Stars:          g.Stars,
		Center:         r3.Vec{X: g.Center[0], Y: g.Center[1], Z: g.Center[2]},
		Velocity:       r3.Vec{X: g.Velocity[0], Y: g.Velocity[1], Z: g.Velocity[2]},
		InclinationDeg: g.Inclination,
		Mass:           g.Mass,
		Radius:         g.Radius,
		Thickness:      g.Thickness,
		Profile:        galaxy.Profile(g.Profile),
		ScaleLength:    g.ScaleLength,
	}
}

// TotalStars is the particle count the config generates.
func (c *Config) TotalStars() int {
	n := 0
	for _, g := range c.Galaxies {
		n += g.Stars
	}
	return n
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfiguration, c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidConfiguration, c.Steps)
	}
	if c.BoundRadius < 0 {
		return fmt.Errorf("%w: bound_radius must be non-negative, got %g", dynamo.ErrInvalidConfiguration, c.BoundRadius)
	}
	if c.FrameEvery < 0 {
		return fmt.Errorf("%w: frame_every must be non-negative, got %d", dynamo.ErrInvalidConfiguration, c.FrameEvery)
	}
	if len(c.Galaxies) == 0 {
		return fmt.Errorf("%w: no galaxies", dynamo.ErrInvalidConfiguration)
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	for i, g := range c.GalaxyConfigs() {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("galaxy %d: %w", i, err)
		}
	}
	return nil
}
