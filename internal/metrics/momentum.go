package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// MomentumDrift is the largest |P - P0| seen, relative to |P0|. When the
// initial momentum is zero the absolute change is reported instead.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []dynamo.Body, res dynamo.StepResult, t float64) {
	p := physics.Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	drift := p.Sub(m.initial).Len()
	if n := m.initial.Len(); n != 0 {
		drift /= n
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

// Baseline takes the reference momentum from bodies before the first tick.
func (m *MomentumDrift) Baseline(bodies []dynamo.Body, energy float64) {
	m.initial = physics.Momentum(bodies)
	m.samples = 1
}

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec2{}
	m.maxDrift = 0
	m.samples = 0
}
