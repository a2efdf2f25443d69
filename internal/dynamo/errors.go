package dynamo

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidBody indicates a body with non-positive mass or negative radius.
	ErrInvalidBody = errors.New("dynamo: invalid body")

	// ErrDegenerateVector indicates normalization of a zero-length vector,
	// typically two bodies sharing the exact same position.
	ErrDegenerateVector = errors.New("dynamo: degenerate vector (zero length)")

	// ErrUnknownScenario indicates a scenario name missing from the table.
	ErrUnknownScenario = errors.New("dynamo: unknown scenario")

	// ErrUnknownIntegrator indicates an integrator name that is not registered.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrInvalidConfig indicates a run configuration outside valid bounds.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")
)

// BodyError reports which body failed validation and why.
type BodyError struct {
	Index  int
	Mass   float64
	Radius float64
	Reason string
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("%v: body %d (mass=%g, radius=%g): %s", ErrInvalidBody, e.Index, e.Mass, e.Radius, e.Reason)
}

func (e *BodyError) Unwrap() error {
	return ErrInvalidBody
}

// CollisionError reports the contact pair whose resolution could not be
// computed. Resolution for the tick stops at this pair.
type CollisionError struct {
	Massive int
	Small   int
	Wrapped error
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("collision %d<-%d: %v", e.Massive, e.Small, e.Wrapped)
}

func (e *CollisionError) Unwrap() error {
	return e.Wrapped
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ValidateBody checks the physical invariants every registered body must
// hold. idx is only used for error reporting.
func ValidateBody(idx int, b Body) error {
	switch {
	case !(b.Mass > 0) || math.IsInf(b.Mass, 1):
		return &BodyError{Index: idx, Mass: b.Mass, Radius: b.Radius, Reason: "mass must be finite and > 0"}
	case !(b.Radius >= 0) || math.IsInf(b.Radius, 1):
		return &BodyError{Index: idx, Mass: b.Mass, Radius: b.Radius, Reason: "radius must be finite and >= 0"}
	case !b.Position.IsFinite() || !b.Velocity.IsFinite():
		return &BodyError{Index: idx, Mass: b.Mass, Radius: b.Radius, Reason: "position and velocity must be finite"}
	case !utf8.ValidString(b.Tag):
		return &BodyError{Index: idx, Mass: b.Mass, Radius: b.Radius, Reason: "tag must be valid UTF-8"}
	}
	return nil
}
