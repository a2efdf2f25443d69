package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func KineticEnergy(bodies []dynamo.Body) float64 {
	ke := 0.0
	for i := range bodies {
		ke += 0.5 * bodies[i].Mass * bodies[i].Velocity.Len2()
	}
	return ke
}

// PotentialEnergy sums -G·mi·mj/r over every unordered pair.
func PotentialEnergy(bodies []dynamo.Body, g float64) float64 {
	pe := 0.0
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[i].Position.Dist(bodies[j].Position)
			pe -= g * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return pe
}

func TotalEnergy(bodies []dynamo.Body, g float64) float64 {
	return KineticEnergy(bodies) + PotentialEnergy(bodies, g)
}

func Momentum(bodies []dynamo.Body) dynamo.Vec2 {
	var p dynamo.Vec2
	for i := range bodies {
		p.AddScaledInPlace(bodies[i].Velocity, bodies[i].Mass)
	}
	return p
}

// AngularMomentum returns the z component of Σ m·(r × v) about the origin.
func AngularMomentum(bodies []dynamo.Body) float64 {
	l := 0.0
	for i := range bodies {
		b := &bodies[i]
		l += b.Mass * (b.Position.X*b.Velocity.Y - b.Position.Y*b.Velocity.X)
	}
	return l
}

// CenterOfMass returns the mass-weighted mean position and velocity. An
// empty set has its centre at the origin.
func CenterOfMass(bodies []dynamo.Body) (pos, vel dynamo.Vec2) {
	m := 0.0
	for i := range bodies {
		pos.AddScaledInPlace(bodies[i].Position, bodies[i].Mass)
		vel.AddScaledInPlace(bodies[i].Velocity, bodies[i].Mass)
		m += bodies[i].Mass
	}
	if m == 0 {
		return dynamo.Vec2{}, dynamo.Vec2{}
	}
	return pos.Scale(1 / m), vel.Scale(1 / m)
}

// CircularSpeed is the speed of a circular orbit of radius r around mass m.
func CircularSpeed(g, m, r float64) float64 {
	return math.Sqrt(g * m / r)
}
