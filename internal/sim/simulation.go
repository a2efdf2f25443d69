package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/gravsim/internal/bodies"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/logging"
	"github.com/san-kum/gravsim/internal/physics"
)

// Simulation owns a body registry, the stepper and its scratch buffers.
// It is not safe for concurrent use; AddBody, LoadScenario and Step must
// all be called from the goroutine that drives the simulation.
type Simulation struct {
	opts     Options
	registry *bodies.Registry
	gravity  *physics.Gravity
	stepper  dynamo.Stepper
	rng      *rand.Rand
	log      *logging.Logger

	metrics   []dynamo.Metric
	observers []dynamo.Observer

	bounce bool
	time   float64
	steps  int
}

func New(opts Options) (*Simulation, error) {
	if opts.G == 0 {
		opts.G = dynamo.G
	}
	if opts.Dt == 0 {
		opts.Dt = dynamo.DefaultDt
	}
	if opts.Dt < 0 || math.IsNaN(opts.Dt) {
		return nil, fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidConfig, opts.Dt)
	}
	if opts.Integrator == "" {
		opts.Integrator = "rk4"
	}

	g := physics.NewGravity(opts.G)
	stepper, err := integrators.New(opts.Integrator, g, opts.Dt)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Simulation{
		opts:     opts,
		registry: bodies.NewRegistry(),
		gravity:  g,
		stepper:  stepper,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		log:      log,
		bounce:   opts.Bounce,
	}, nil
}

func (s *Simulation) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Len() int                { return s.registry.Len() }
func (s *Simulation) Time() float64           { return s.time }
func (s *Simulation) Steps() int              { return s.steps }
func (s *Simulation) G() float64              { return s.gravity.G }
func (s *Simulation) Stepper() dynamo.Stepper { return s.stepper }
func (s *Simulation) Bounce() bool            { return s.bounce }
func (s *Simulation) SetBounce(on bool)       { s.bounce = on }

// Bodies returns the live body slice. It is valid until the next
// AddBody or LoadScenario.
func (s *Simulation) Bodies() []dynamo.Body { return s.registry.Bodies() }

func (s *Simulation) Snapshot() []dynamo.Body { return s.registry.Snapshot() }

// Energy is the total mechanical energy of the current state.
func (s *Simulation) Energy() float64 {
	return physics.TotalEnergy(s.registry.Bodies(), s.gravity.G)
}

// LoadScenario replaces every body and rewinds the clock. On a validation
// error nothing changes.
func (s *Simulation) LoadScenario(bs []dynamo.Body) error {
	if err := s.registry.Replace(bs); err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	s.time = 0
	s.steps = 0
	return nil
}

// AddBody drops a new body at pos with a radius derived from its mass.
//
// When other bodies exist, the new one is put on a circular orbit around
// the dominant body, the one with the largest mass/distance², inheriting
// its velocity. The orbit is counter-clockwise. randomOrientation only
// applies to a body added to an empty simulation, which starts at rest
// either way.
func (s *Simulation) AddBody(pos dynamo.Vec2, mass float64, randomOrientation bool) (int, error) {
	n := s.registry.Len()
	b := dynamo.Body{Mass: mass, Position: pos}
	if err := dynamo.ValidateBody(n, b); err != nil {
		return -1, err
	}
	b.Radius = math.Sqrt(mass / dynamo.Density)
	if s.opts.Tag != nil {
		b.Tag = s.opts.Tag()
	}

	if n > 0 {
		all := s.registry.Bodies()
		dom := s.dominant(pos)
		d := all[dom].Position.Sub(pos)

		dir, err := d.Unit()
		if err != nil {
			return -1, fmt.Errorf("add body at %v: %w", pos, err)
		}
		speed := physics.CircularSpeed(s.gravity.G, all[dom].Mass, d.Len())
		b.Velocity = dir.Rotate(math.Pi / 2).Scale(speed).Add(all[dom].Velocity)
		randomOrientation = false
	}
	if randomOrientation {
		b.Velocity.RotateInPlace(s.rng.Float64() * 2 * math.Pi)
	}

	return s.registry.Add(b)
}

// dominant returns the index of the body exerting the strongest pull on a
// point at pos. Ties go to the later body.
func (s *Simulation) dominant(pos dynamo.Vec2) int {
	all := s.registry.Bodies()
	best := len(all) - 1
	bestPull := all[best].Mass / all[best].Position.Sub(pos).Len2()
	for i := len(all) - 2; i >= 0; i-- {
		if pull := all[i].Mass / all[i].Position.Sub(pos).Len2(); pull > bestPull {
			best, bestPull = i, pull
		}
	}
	return best
}

// Step advances the simulation by one tick. Contacts found at the start
// of the tick are resolved after integration when bounce is on.
//
// Errors are returned as a *dynamo.SimulationError whether or not bounce
// is on. If integration fails, for instance on two coincident bodies, the
// tick is not taken: bodies, time and the step count stay as they were and
// metrics and observers are not notified. A resolution failure happens
// after integration, so that tick still counts. Either way the simulation
// stays usable.
func (s *Simulation) Step() (dynamo.StepResult, error) {
	all := s.registry.Bodies()
	res, serr := s.stepper.Step(all, s.bounce)
	if serr != nil {
		err := &dynamo.SimulationError{Step: s.steps + 1, Time: s.time, Wrapped: serr}
		s.log.Warn(context.Background(), "integration failed", "step", s.steps+1, "error", serr.Error())
		return dynamo.StepResult{}, err
	}
	s.time += s.stepper.Dt()
	s.steps++

	var err error
	if s.bounce && len(res.Collisions) > 0 {
		s.log.Debug(context.Background(), "contacts", "step", s.steps, "pairs", len(res.Collisions))
		if rerr := physics.Resolve(all, res.Collisions); rerr != nil {
			err = &dynamo.SimulationError{Step: s.steps, Time: s.time, Wrapped: rerr}
			s.log.Warn(context.Background(), "collision resolution aborted", "step", s.steps, "error", rerr.Error())
		}
	}

	for _, m := range s.metrics {
		m.Observe(all, res, s.time)
	}
	for _, o := range s.observers {
		o.OnStep(all, res, s.time)
	}
	return res, err
}

// Run steps the simulation steps times, recording a frame every
// sampleEvery ticks plus the initial and final states. Tick errors are
// collected in the result and do not stop the run; a tick that fails
// integration is not counted in StepsTaken. Cancellation of ctx
// does, returning the partial result.
func (s *Simulation) Run(ctx context.Context, steps, sampleEvery int) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidConfig, steps)
	}
	if sampleEvery <= 0 {
		sampleEvery = 1
	}

	result := &Result{
		Frames:  make([]Frame, 0, steps/sampleEvery+2),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	e0 := s.Energy()
	last := e0
	for _, m := range s.metrics {
		if b, ok := m.(dynamo.Baseliner); ok {
			b.Baseline(s.registry.Bodies(), e0)
		}
	}
	result.Frames = append(result.Frames, s.frame(e0))
	s.log.Info(ctx, "run started", "bodies", s.Len(), "steps", steps, "integrator", s.stepper.Name(), "dt", s.stepper.Dt())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		before := s.steps
		res, err := s.Step()
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
		if s.steps == before {
			continue
		}
		result.StepsTaken++
		result.Collisions += len(res.Collisions)
		last = res.Energy

		if result.StepsTaken%sampleEvery == 0 {
			result.Frames = append(result.Frames, s.frame(res.Energy))
		}
	}
	if f := result.Frames[len(result.Frames)-1]; f.Time != s.time {
		result.Frames = append(result.Frames, s.frame(last))
	}

	if e1 := s.Energy(); e0 != 0 {
		result.EnergyDrift = math.Abs(e1-e0) / math.Abs(e0)
	}
	s.collect(result)

	s.log.Info(ctx, "run finished", "steps", result.StepsTaken, "collisions", result.Collisions,
		"errors", len(result.Errors), "energy_drift", result.EnergyDrift)
	return result, nil
}

func (s *Simulation) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulation) frame(energy float64) Frame {
	all := s.registry.Bodies()
	ks := make([]dynamo.Kinematics, len(all))
	for i := range all {
		ks[i] = dynamo.Kinematics{Position: all[i].Position, Velocity: all[i].Velocity}
	}
	return Frame{Time: s.time, Energy: energy, Bodies: ks}
}
