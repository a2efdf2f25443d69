// Package physics implements the gravity field, contact handling and
// conserved-quantity diagnostics for a set of [dynamo.Body] values.
//
//   - [Gravity]: O(n²) pairwise derivative evaluator with optional
//     potential energy and contact detection
//   - [CollisionRecord]: touching pairs found during one evaluation
//   - [Resolve]: positional separation plus elastic impulse
//
// # Conservation
//
// Every pair contributes equal and opposite accelerations scaled by the
// partner's mass, so total momentum is preserved by the evaluator. Resolve
// exchanges equal and opposite impulses and also preserves it:
//
//	before := physics.Momentum(bodies)
//	_ = physics.Resolve(bodies, rec.Contacts())
//	after := physics.Momentum(bodies)
package physics
