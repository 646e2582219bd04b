package config

import (
	"sort"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/sim"
)

func preset(name string, steps int, galaxies ...GalaxyConfig) *Config {
	return &Config{
		Name:       name,
		Seed:       1,
		Dt:         sim.DefaultTimestep,
		Steps:      steps,
		FrameEvery: DefaultFrameEvery,
		Evaluator:  DefaultEvaluator,
		Integrator: DefaultIntegrator,
		G:          compute.DefaultG,
		Softening:  compute.DefaultSoftening,
		Theta:      compute.DefaultTheta,
		Galaxies:   galaxies,
	}
}

var Presets = map[string]*Config{
	// A Milky Way analogue and a heavier, tilted Andromeda analogue on a
	// slow approach.
	"collision": preset("collision", 3000,
		GalaxyConfig{
			Stars:    2000,
			Center:   [3]float64{-1200, 0, 0},
			Velocity: [3]float64{0.004, 0.001, 0},
			Mass:     1e10,
		},
		GalaxyConfig{
			Stars:       2000,
			Center:      [3]float64{1200, 300, 0},
			Velocity:    [3]float64{-0.004, -0.001, 0},
			Inclination: 60,
			Mass:        1.5e10,
			Radius:      600,
			Thickness:   8,
			Profile:     "exponential",
		},
	),
	"single": preset("single", 1000,
		GalaxyConfig{
			Stars:       1000,
			Inclination: 30,
			Mass:        1e10,
		},
	),
	"pair": preset("pair", 2000,
		GalaxyConfig{
			Stars:  800,
			Center: [3]float64{-800, 0, 0},
			Mass:   1e10,
		},
		GalaxyConfig{
			Stars:       800,
			Center:      [3]float64{800, 0, 0},
			Inclination: 45,
			Mass:        1e10,
		},
	),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	c.Galaxies = append([]GalaxyConfig(nil), p.Galaxies...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
