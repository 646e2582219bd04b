package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/integrators"
)

type Registry struct {
	evaluators  map[string]func(compute.Params) compute.Evaluator
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		evaluators:  make(map[string]func(compute.Params) compute.Evaluator),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	// Built-ins are resolved through the package tables; GetEvaluator has
	// validated the params before a factory runs.
	for _, name := range compute.Names() {
		r.evaluators[name] = func(p compute.Params) compute.Evaluator {
			e, _ := compute.New(name, p)
			return e
		}
	}
	for _, name := range integrators.Names() {
		r.integrators[name] = func() dynamo.Integrator {
			integ, _ := integrators.New(name)
			return integ
		}
	}

	return r
}

func (r *Registry) RegisterEvaluator(name string, fn func(compute.Params) compute.Evaluator) {
	r.evaluators[name] = fn
}

func (r *Registry) RegisterIntegrator(name string, fn func() dynamo.Integrator) {
	r.integrators[name] = fn
}

func (r *Registry) GetEvaluator(name string, p compute.Params) (compute.Evaluator, error) {
	fn, ok := r.evaluators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown evaluator: %s", dynamo.ErrInvalidConfiguration, name)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return fn(p), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator: %s", dynamo.ErrInvalidConfiguration, name)
	}
	return fn(), nil
}

func (r *Registry) ListEvaluators() []string  { return sortedKeys(r.evaluators) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
