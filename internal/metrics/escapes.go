package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Escapes counts bodies farther than a fixed distance from the centre of
// mass. The value is the count at the latest step.
type Escapes struct {
	name    string
	radius2 float64
	count   int
}

func NewEscapes(radius float64) *Escapes {
	return &Escapes{
		name:    "escapes",
		radius2: radius * radius,
	}
}

func (e *Escapes) Name() string {
	return e.name
}

func (e *Escapes) Observe(bodies []dynamo.Body, res dynamo.StepResult, t float64) {
	com, _ := physics.CenterOfMass(bodies)
	e.count = 0
	for i := range bodies {
		if bodies[i].Position.Sub(com).Len2() > e.radius2 {
			e.count++
		}
	}
}

func (e *Escapes) Value() float64 {
	return float64(e.count)
}

func (e *Escapes) Reset() {
	e.count = 0
}

// Default returns the metric set recorded for every stored run.
func Default(escapeRadius float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewCollisionCount(),
		NewEscapes(escapeRadius),
	}
}
