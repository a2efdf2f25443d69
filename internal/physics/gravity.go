package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Gravity evaluates the pairwise Newtonian field over a body set. It holds
// no buffers; all output goes to caller-owned slices.
type Gravity struct {
	G float64
}

func NewGravity(g float64) *Gravity {
	if g == 0 {
		g = dynamo.G
	}
	return &Gravity{G: g}
}

// Evaluate writes the time derivative of state into out and returns the
// potential energy of the configuration when withEnergy is set.
//
// bodies supplies mass and radius; positions and velocities are read from
// state, which must be index-aligned with bodies, as must out. When rec is
// non-nil it is reset and filled with every touching pair. Gravity is
// applied to touching pairs as usual.
//
// A pair with coincident or non-finite positions has no defined force.
// Evaluation stops at that pair with a *dynamo.CollisionError wrapping
// dynamo.ErrDegenerateVector; out and rec are then incomplete.
func (g *Gravity) Evaluate(bodies []dynamo.Body, state []dynamo.Kinematics, out []dynamo.Derivative, withEnergy bool, rec *CollisionRecord) (float64, error) {
	n := len(bodies)
	state = state[:n]
	out = out[:n]

	for i := range out {
		out[i].Position = state[i].Velocity
		out[i].Velocity.SetZero()
	}
	if rec != nil {
		rec.Reset()
	}

	energy := 0.0
	for i := 0; i < n; i++ {
		pi := state[i].Position
		mi := bodies[i].Mass

		for j := i + 1; j < n; j++ {
			dx := pi.X - state[j].Position.X
			dy := pi.Y - state[j].Position.Y
			r := math.Sqrt(dx*dx + dy*dy)
			if !(r > 0) || math.IsInf(r, 1) {
				return energy, degenerate(bodies, i, j)
			}
			f := g.G / (r * r * r)

			mj := bodies[j].Mass
			out[i].Velocity.X -= f * mj * dx
			out[i].Velocity.Y -= f * mj * dy
			out[j].Velocity.X += f * mi * dx
			out[j].Velocity.Y += f * mi * dy

			if withEnergy {
				energy -= g.G * mi * mj / r
			}
			if rec != nil && r <= bodies[i].Radius+bodies[j].Radius {
				rec.register(bodies, i, j)
			}
		}
	}

	return energy, nil
}

// degenerate builds the error for pair (i, j), keyed the way contacts are.
func degenerate(bodies []dynamo.Body, i, j int) error {
	massive, small := i, j
	if bodies[j].Mass > bodies[i].Mass {
		massive, small = j, i
	}
	return &dynamo.CollisionError{Massive: massive, Small: small, Wrapped: dynamo.ErrDegenerateVector}
}
