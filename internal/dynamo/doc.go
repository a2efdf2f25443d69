// Package dynamo provides the core primitives shared by the gravity
// simulation packages.
//
// The package defines the value types and interfaces the physics engine is
// built from:
//
//   - [Vec2]: 2D vector with pure and in-place operations
//   - [Body]: a massive sphere with position, velocity and an opaque tag
//   - [Kinematics], [Derivative]: integrated state and its time derivative
//   - [Stepper]: fixed-step integrator interface
//   - [Metric], [Observer]: hooks called once per tick
//
// # Example
//
//	s, _ := sim.New(sim.DefaultOptions())
//	_ = s.LoadScenario(scenario.Bodies)
//	res, err := s.Step()
//
// # Thread Safety
//
// Nothing in this package synchronizes. A simulation and its buffers are
// owned by one goroutine; run independent simulations in parallel with
// sim.Ensemble.
package dynamo
