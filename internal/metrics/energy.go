package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Energy is the mean of the per-step energy reported by the stepper.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(bodies []dynamo.Body, res dynamo.StepResult, t float64) {
	e.totalEnergy += res.Energy
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation of step energy from
// the baseline, or from the first observed value when none was set.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []dynamo.Body, res dynamo.StepResult, t float64) {
	energy := res.Energy
	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

// Baseline sets the reference energy to that of the state before the
// first tick.
func (e *EnergyDrift) Baseline(bodies []dynamo.Body, energy float64) {
	e.initialEnergy = energy
	e.currentEnergy = energy
	e.samples = 1
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current returns the most recent energy sample.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
