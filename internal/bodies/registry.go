// Package bodies holds the ordered, validated set of bodies a simulation
// integrates. A body's index is its identity for the duration of a tick.
package bodies

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type Registry struct {
	bodies []dynamo.Body
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add validates b and appends it. The registry is unchanged on error.
func (r *Registry) Add(b dynamo.Body) (int, error) {
	idx := len(r.bodies)
	if err := dynamo.ValidateBody(idx, b); err != nil {
		return -1, err
	}
	r.bodies = append(r.bodies, b)
	return idx, nil
}

// Replace swaps the whole registry for a copy of bs. Every body is validated
// before anything is written, so a bad entry leaves the old contents intact.
func (r *Registry) Replace(bs []dynamo.Body) error {
	for i, b := range bs {
		if err := dynamo.ValidateBody(i, b); err != nil {
			return fmt.Errorf("replace: %w", err)
		}
	}
	if cap(r.bodies) >= len(bs) {
		r.bodies = r.bodies[:len(bs)]
	} else {
		r.bodies = make([]dynamo.Body, len(bs))
	}
	copy(r.bodies, bs)
	return nil
}

func (r *Registry) Len() int { return len(r.bodies) }

// Bodies returns the live slice. Callers on the simulation goroutine may
// mutate positions and velocities through it; they must not append.
func (r *Registry) Bodies() []dynamo.Body { return r.bodies }

// At returns a copy of the body at index i.
func (r *Registry) At(i int) dynamo.Body { return r.bodies[i] }

// Snapshot returns an independent copy of every body.
func (r *Registry) Snapshot() []dynamo.Body {
	out := make([]dynamo.Body, len(r.bodies))
	copy(out, r.bodies)
	return out
}

// TotalMass sums the mass of every body.
func (r *Registry) TotalMass() float64 {
	m := 0.0
	for i := range r.bodies {
		m += r.bodies[i].Mass
	}
	return m
}
