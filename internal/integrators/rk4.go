package integrators

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// RK4 is the classic fixed-step fourth-order Runge-Kutta stepper.
//
// All working state lives in buffers owned by the stepper. They grow when
// the body count exceeds their capacity and are resliced otherwise, so a
// tick with an unchanged body count does not allocate.
type RK4 struct {
	gravity *physics.Gravity
	dt      float64
	half    float64
	sixth   float64

	y0, yt         []dynamo.Kinematics
	k1, k2, k3, k4 []dynamo.Derivative
	contacts       *physics.CollisionRecord

	grows int
}

func NewRK4(g *physics.Gravity, dt float64) *RK4 {
	if dt <= 0 {
		dt = dynamo.DefaultDt
	}
	return &RK4{
		gravity:  g,
		dt:       dt,
		half:     dt * 0.5,
		sixth:    dt / 6.0,
		contacts: physics.NewCollisionRecord(16),
	}
}

func (r *RK4) Name() string { return "rk4" }
func (r *RK4) Dt() float64  { return r.dt }
func (r *RK4) Cap() int     { return cap(r.y0) }
func (r *RK4) Grows() int   { return r.grows }

func (r *RK4) ensureScratch(n int) {
	if cap(r.y0) < n {
		c := growCap(cap(r.y0), n)
		r.y0 = make([]dynamo.Kinematics, c)
		r.yt = make([]dynamo.Kinematics, c)
		r.k1 = make([]dynamo.Derivative, c)
		r.k2 = make([]dynamo.Derivative, c)
		r.k3 = make([]dynamo.Derivative, c)
		r.k4 = make([]dynamo.Derivative, c)
		r.grows++
	}
	r.y0 = r.y0[:n]
	r.yt = r.yt[:n]
	r.k1 = r.k1[:n]
	r.k2 = r.k2[:n]
	r.k3 = r.k3[:n]
	r.k4 = r.k4[:n]
	for i := 0; i < n; i++ {
		r.k1[i].Reset()
		r.k2[i].Reset()
		r.k3[i].Reset()
		r.k4[i].Reset()
	}
}

// Step advances bodies by one dt and writes the result back in place.
// Energy is the potential at the start of the step plus the kinetic energy
// after it. When detect is set the contacts found on the first sample are
// returned; the slice is reused by the next call.
//
// If any derivative sample hits a degenerate pair the step is abandoned
// before bodies are written.
func (r *RK4) Step(bodies []dynamo.Body, detect bool) (dynamo.StepResult, error) {
	n := len(bodies)
	r.ensureScratch(n)

	for i := range bodies {
		r.y0[i] = dynamo.Kinematics{Position: bodies[i].Position, Velocity: bodies[i].Velocity}
	}

	var rec *physics.CollisionRecord
	if detect {
		rec = r.contacts
	}
	pe, err := r.gravity.Evaluate(bodies, r.y0, r.k1, true, rec)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	advance(r.yt, r.y0, r.k1, r.half)
	if _, err := r.gravity.Evaluate(bodies, r.yt, r.k2, false, nil); err != nil {
		return dynamo.StepResult{}, err
	}

	advance(r.yt, r.y0, r.k2, r.half)
	if _, err := r.gravity.Evaluate(bodies, r.yt, r.k3, false, nil); err != nil {
		return dynamo.StepResult{}, err
	}

	advance(r.yt, r.y0, r.k3, r.dt)
	if _, err := r.gravity.Evaluate(bodies, r.yt, r.k4, false, nil); err != nil {
		return dynamo.StepResult{}, err
	}

	ke := 0.0
	for i := range bodies {
		b := &bodies[i]
		y := &r.y0[i]
		b.Position.X = y.Position.X + r.sixth*(r.k1[i].Position.X+2*r.k2[i].Position.X+2*r.k3[i].Position.X+r.k4[i].Position.X)
		b.Position.Y = y.Position.Y + r.sixth*(r.k1[i].Position.Y+2*r.k2[i].Position.Y+2*r.k3[i].Position.Y+r.k4[i].Position.Y)
		b.Velocity.X = y.Velocity.X + r.sixth*(r.k1[i].Velocity.X+2*r.k2[i].Velocity.X+2*r.k3[i].Velocity.X+r.k4[i].Velocity.X)
		b.Velocity.Y = y.Velocity.Y + r.sixth*(r.k1[i].Velocity.Y+2*r.k2[i].Velocity.Y+2*r.k3[i].Velocity.Y+r.k4[i].Velocity.Y)
		ke += 0.5 * b.Mass * b.Velocity.Len2()
	}

	res := dynamo.StepResult{Energy: pe + ke}
	if detect {
		res.Collisions = r.contacts.Contacts()
	}
	return res, nil
}

// growCap doubles the old capacity, so bodies added one at a time
// reallocate only O(log n) times.
func growCap(old, n int) int {
	return max(n, 2*old)
}

// advance sets dst = y + h·k.
func advance(dst, y []dynamo.Kinematics, k []dynamo.Derivative, h float64) {
	for i := range dst {
		dst[i].Position = y[i].Position
		dst[i].Position.AddScaledInPlace(k[i].Position, h)
		dst[i].Velocity = y[i].Velocity
		dst[i].Velocity.AddScaledInPlace(k[i].Velocity, h)
	}
}
