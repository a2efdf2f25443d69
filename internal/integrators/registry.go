package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

var registry = map[string]func(g *physics.Gravity, dt float64) dynamo.Stepper{
	"rk4":      func(g *physics.Gravity, dt float64) dynamo.Stepper { return NewRK4(g, dt) },
	"leapfrog": func(g *physics.Gravity, dt float64) dynamo.Stepper { return NewLeapfrog(g, dt) },
}

// New builds the named stepper.
func New(name string, g *physics.Gravity, dt float64) (dynamo.Stepper, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownIntegrator, name)
	}
	return fn(g, dt), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
