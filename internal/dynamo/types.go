package dynamo

const (
	// G is the gravitational constant in the simulation's unit system.
	G = 8.14496e-18

	// DefaultDt is one internal second per tick.
	DefaultDt = 1.0

	// Density converts mass to radius for bodies added without an explicit
	// radius: r = sqrt(m / Density).
	Density = 2.50596227828973444312e19
)

// Body is a simulated sphere. Tag is owned by the render side and is
// carried through the core untouched.
type Body struct {
	Mass     float64
	Radius   float64
	Position Vec2
	Velocity Vec2
	Tag      string
}

// Kinematics is the integrated part of a body's state.
type Kinematics struct {
	Position Vec2
	Velocity Vec2
}

// Derivative is the time derivative of Kinematics: the rate of change of
// position (a velocity) and of velocity (an acceleration).
type Derivative struct {
	Position Vec2
	Velocity Vec2
}

func (d *Derivative) Reset() {
	d.Position.SetZero()
	d.Velocity.SetZero()
}

// Contact is one colliding pair for a tick, identified by registry index.
// Massive is the heavier body (the lower index on equal masses).
type Contact struct {
	Massive int
	Small   int
}

// StepResult is what a single fixed step produces. Collisions aliases the
// stepper's scratch record and is only valid until the next step.
type StepResult struct {
	Energy     float64
	Collisions []Contact
}

// Stepper advances a body slice by one fixed timestep in place. When
// detect is set the first derivative sample also gathers contacts. On
// error the bodies are left exactly as they were.
type Stepper interface {
	Step(bodies []Body, detect bool) (StepResult, error)
	Dt() float64
	Name() string
}

// Metric accumulates a scalar over the ticks of a run.
type Metric interface {
	Name() string
	Observe(bodies []Body, res StepResult, t float64)
	Value() float64
	Reset()
}

// Baseliner is implemented by metrics that measure change from the state
// before the first tick. Runs call Baseline after Reset.
type Baseliner interface {
	Baseline(bodies []Body, energy float64)
}

// Observer is notified after every tick with the updated bodies.
type Observer interface {
	OnStep(bodies []Body, res StepResult, t float64)
}
