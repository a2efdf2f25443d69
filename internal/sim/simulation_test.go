package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

const binarySpeed = 1009.01932588033218502780

func binary() []dynamo.Body {
	return []dynamo.Body{
		{Mass: 1e29, Radius: 10000, Position: dynamo.V2(500000, 300000), Velocity: dynamo.V2(0, binarySpeed), Tag: "#ff0"},
		{Mass: 1e29, Radius: 10000, Position: dynamo.V2(900000, 300000), Velocity: dynamo.V2(0, -binarySpeed), Tag: "#ff0"},
	}
}

func collisionLine() []dynamo.Body {
	bs := []dynamo.Body{{Mass: 1e28, Radius: 80000, Position: dynamo.V2(0, 300000), Tag: "#f0f"}}
	for i, x := range []float64{800000, 890000, 960000, 1010000, 1040000} {
		r := float64(5-i) * 10000
		bs = append(bs, dynamo.Body{
			Mass:     float64(5-i) * 1e20,
			Radius:   r,
			Position: dynamo.V2(x, 300000),
			Velocity: dynamo.V2(-10000, 0),
			Tag:      "#ff0",
		})
	}
	return bs
}

func newSim(mut func(*sim.Options)) *sim.Simulation {
	opts := sim.DefaultOptions()
	if mut != nil {
		mut(&opts)
	}
	s, err := sim.New(opts)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Simulation", func() {
	Describe("New", func() {
		It("rejects a negative dt", func() {
			opts := sim.DefaultOptions()
			opts.Dt = -1
			_, err := sim.New(opts)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("rejects an unknown integrator", func() {
			opts := sim.DefaultOptions()
			opts.Integrator = "euler"
			_, err := sim.New(opts)
			Expect(errors.Is(err, dynamo.ErrUnknownIntegrator)).To(BeTrue())
		})

		It("fills in defaults", func() {
			s, err := sim.New(sim.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.G()).To(Equal(dynamo.G))
			Expect(s.Stepper().Dt()).To(Equal(dynamo.DefaultDt))
			Expect(s.Stepper().Name()).To(Equal("rk4"))
		})
	})

	Describe("LoadScenario", func() {
		It("replaces the bodies and rewinds the clock", func() {
			s := newSim(nil)
			Expect(s.LoadScenario(binary())).To(Succeed())
			_, _ = s.Step()
			Expect(s.Time()).To(Equal(1.0))

			Expect(s.LoadScenario(collisionLine())).To(Succeed())
			Expect(s.Len()).To(Equal(6))
			Expect(s.Time()).To(BeZero())
			Expect(s.Steps()).To(BeZero())
		})

		It("leaves the registry untouched on an invalid body", func() {
			s := newSim(nil)
			Expect(s.LoadScenario(binary())).To(Succeed())

			bad := collisionLine()
			bad[3].Radius = -1
			err := s.LoadScenario(bad)
			Expect(errors.Is(err, dynamo.ErrInvalidBody)).To(BeTrue())
			Expect(s.Snapshot()).To(Equal(binary()))
		})

		It("accepts an empty scenario", func() {
			s := newSim(nil)
			Expect(s.LoadScenario(nil)).To(Succeed())
			res, err := s.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Energy).To(BeZero())
		})
	})

	Describe("AddBody", func() {
		sun := dynamo.Body{Mass: 1.9889e30, Radius: 6960}

		It("starts the first body at rest", func() {
			s := newSim(nil)
			for _, random := range []bool{false, true} {
				Expect(s.LoadScenario(nil)).To(Succeed())
				idx, err := s.AddBody(dynamo.V2(10, 20), 1e24, random)
				Expect(err).NotTo(HaveOccurred())
				Expect(idx).To(Equal(0))
				Expect(s.Bodies()[0].Velocity.IsZero()).To(BeTrue())
			}
		})

		It("derives the radius from the mass", func() {
			s := newSim(nil)
			_, err := s.AddBody(dynamo.V2(0, 0), 2.50596227828973444312e19*25, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Bodies()[0].Radius).To(BeNumerically("~", 5, 1e-12))
		})

		It("places the new body on a circular orbit around the dominant body", func() {
			s := newSim(nil)
			Expect(s.LoadScenario([]dynamo.Body{sun})).To(Succeed())

			idx, err := s.AddBody(dynamo.V2(1e6, 0), 5.9736e24, false)
			Expect(err).NotTo(HaveOccurred())
			b := s.Bodies()[idx]

			want := math.Sqrt(dynamo.G * sun.Mass / 1e6)
			Expect(want).To(BeNumerically("~", 4024.8, 0.1))
			Expect(b.Velocity.Len()).To(BeNumerically("~", want, want*1e-12))
			Expect(b.Velocity.Dot(b.Position.Sub(sun.Position)) / (b.Velocity.Len() * 1e6)).
				To(BeNumerically("~", 0, 1e-12))
			Expect(b.Velocity.Y).To(BeNumerically("<", 0))
		})

		It("inherits the dominant body's velocity and ignores random orientation", func() {
			moving := sun
			moving.Velocity = dynamo.V2(100, 50)
			s := newSim(nil)
			Expect(s.LoadScenario([]dynamo.Body{moving})).To(Succeed())

			idx, err := s.AddBody(dynamo.V2(1e6, 0), 1e20, true)
			Expect(err).NotTo(HaveOccurred())
			v := s.Bodies()[idx].Velocity
			Expect(v.X).To(BeNumerically("~", 100, 1e-9))
			Expect(v.Y).To(BeNumerically("~", 50-math.Sqrt(dynamo.G*sun.Mass/1e6), 1e-9))
		})

		It("picks the body with the strongest pull, not the nearest", func() {
			planet := dynamo.Body{Mass: 1e24, Radius: 100, Position: dynamo.V2(2e6, 0), Velocity: dynamo.V2(0, 999)}
			s := newSim(nil)
			Expect(s.LoadScenario([]dynamo.Body{sun, planet})).To(Succeed())

			// Closer to the planet, but the sun's m/d² is far larger.
			idx, err := s.AddBody(dynamo.V2(1.5e6, 0), 1e10, false)
			Expect(err).NotTo(HaveOccurred())
			v := s.Bodies()[idx].Velocity
			Expect(v.Len()).To(BeNumerically("~", math.Sqrt(dynamo.G*sun.Mass/1.5e6), 1e-6))

			// Close enough to the planet that it wins.
			idx, err = s.AddBody(dynamo.V2(2e6+1000, 0), 1e10, false)
			Expect(err).NotTo(HaveOccurred())
			v = s.Bodies()[idx].Velocity
			speed := math.Sqrt(dynamo.G * planet.Mass / 1000)
			Expect(v.X).To(BeNumerically("~", 0, 1e-9))
			Expect(v.Y).To(BeNumerically("~", 999-speed, 1e-6))
		})

		It("labels new bodies with the configured tag", func() {
			s := newSim(func(o *sim.Options) { o.Tag = func() string { return "#abc" } })
			_, err := s.AddBody(dynamo.V2(0, 0), 1, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Bodies()[0].Tag).To(Equal("#abc"))
		})

		It("rejects a non-positive mass without touching the registry", func() {
			s := newSim(nil)
			Expect(s.LoadScenario([]dynamo.Body{sun})).To(Succeed())
			for _, m := range []float64{0, -1} {
				idx, err := s.AddBody(dynamo.V2(1, 1), m, false)
				Expect(errors.Is(err, dynamo.ErrInvalidBody)).To(BeTrue())
				Expect(idx).To(Equal(-1))
			}
			Expect(s.Len()).To(Equal(1))
		})

		It("reports a degenerate direction when dropped on top of a body", func() {
			s := newSim(nil)
			Expect(s.LoadScenario([]dynamo.Body{sun})).To(Succeed())
			_, err := s.AddBody(sun.Position, 1e20, false)
			Expect(errors.Is(err, dynamo.ErrDegenerateVector)).To(BeTrue())
			Expect(s.Len()).To(Equal(1))
		})
	})

	Describe("Step", func() {
		It("advances time by dt", func() {
			s := newSim(func(o *sim.Options) { o.Dt = 0.5 })
			Expect(s.LoadScenario(binary())).To(Succeed())
			for i := 0; i < 4; i++ {
				_, err := s.Step()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.Time()).To(Equal(2.0))
			Expect(s.Steps()).To(Equal(4))
		})

		It("resolves contacts and conserves momentum", func() {
			s := newSim(nil)
			Expect(s.LoadScenario(collisionLine())).To(Succeed())
			p0 := physics.Momentum(s.Bodies())

			contacts := 0
			for i := 0; i < 120; i++ {
				res, err := s.Step()
				Expect(err).NotTo(HaveOccurred())
				contacts += len(res.Collisions)
			}
			Expect(contacts).To(BeNumerically(">", 0))

			p1 := physics.Momentum(s.Bodies())
			Expect(p1.Sub(p0).Len() / p0.Len()).To(BeNumerically("<", 1e-9))
		})

		It("skips detection with bounce off", func() {
			s := newSim(func(o *sim.Options) { o.Bounce = false })
			Expect(s.LoadScenario(collisionLine())).To(Succeed())
			for i := 0; i < 120; i++ {
				res, err := s.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Collisions).To(BeEmpty())
			}
		})

		It("can toggle bounce at runtime", func() {
			s := newSim(nil)
			Expect(s.Bounce()).To(BeTrue())
			s.SetBounce(false)
			Expect(s.Bounce()).To(BeFalse())
		})

		DescribeTable("reports a coincident pair without corrupting the other bodies",
			func(bounce bool) {
				s := newSim(func(o *sim.Options) { o.Bounce = bounce })
				obs := &countingObserver{}
				s.AddObserver(obs)
				Expect(s.LoadScenario([]dynamo.Body{
					{Mass: 1e20, Radius: 10, Position: dynamo.V2(5, 5)},
					{Mass: 1e20, Radius: 10, Position: dynamo.V2(5, 5)},
					{Mass: 1e20, Radius: 10, Position: dynamo.V2(1e5, 0), Velocity: dynamo.V2(0, 3)},
				})).To(Succeed())
				before := append([]dynamo.Body(nil), s.Bodies()...)

				for tick := 0; tick < 2; tick++ {
					_, err := s.Step()
					Expect(err).To(MatchError(dynamo.ErrDegenerateVector))
					var se *dynamo.SimulationError
					Expect(errors.As(err, &se)).To(BeTrue())
					Expect(se.Step).To(Equal(1))
					var ce *dynamo.CollisionError
					Expect(errors.As(err, &ce)).To(BeTrue())
					Expect([]int{ce.Massive, ce.Small}).To(Equal([]int{0, 1}))
				}

				for i, b := range s.Bodies() {
					for _, v := range []float64{b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y} {
						Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse(), "body %d", i)
					}
				}
				Expect(s.Bodies()[2]).To(Equal(before[2]))
				Expect(s.Steps()).To(BeZero())
				Expect(s.Time()).To(BeZero())
				Expect(obs.calls).To(BeZero())

				// The simulation stays usable once the pair is separated.
				s.Bodies()[1].Position = dynamo.V2(5, 5000)
				_, err := s.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Steps()).To(Equal(1))
			},
			Entry("with bounce", true),
			Entry("without bounce", false),
		)

		It("notifies observers and metrics every tick", func() {
			s := newSim(nil)
			obs := &countingObserver{}
			cc := metrics.NewCollisionCount()
			s.AddObserver(obs)
			s.AddMetric(cc)
			Expect(s.LoadScenario(collisionLine())).To(Succeed())

			total := 0
			for i := 0; i < 50; i++ {
				res, _ := s.Step()
				total += len(res.Collisions)
			}
			Expect(obs.calls).To(Equal(50))
			Expect(obs.lastTime).To(Equal(50.0))
			Expect(cc.Value()).To(Equal(float64(total)))
		})
	})

	Describe("Run", func() {
		It("measures drift from the state before the first tick", func() {
			s := newSim(nil)
			drift := metrics.NewEnergyDrift()
			s.AddMetric(drift)
			// At rest the pair gains kinetic energy on the first tick.
			pair := binary()
			pair[0].Velocity, pair[1].Velocity = dynamo.Vec2{}, dynamo.Vec2{}
			Expect(s.LoadScenario(pair)).To(Succeed())

			res, err := s.Run(context.Background(), 1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(HaveLen(2))

			e0, e1 := res.Frames[0].Energy, res.Frames[1].Energy
			Expect(e0).NotTo(Equal(e1))
			Expect(drift.Value()).To(BeNumerically("~", math.Abs(e1-e0)/math.Abs(e0), 1e-15))
		})

		It("does not count ticks that fail integration", func() {
			s := newSim(nil)
			Expect(s.LoadScenario([]dynamo.Body{
				{Mass: 1e20, Radius: 10, Position: dynamo.V2(5, 5)},
				{Mass: 1e20, Radius: 10, Position: dynamo.V2(5, 5)},
			})).To(Succeed())

			res, err := s.Run(context.Background(), 3, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(BeZero())
			Expect(res.Errors).To(HaveLen(3))
			Expect(res.Frames).To(HaveLen(1))
		})

		It("samples frames and keeps the binary's energy", func() {
			s := newSim(nil)
			s.AddMetric(metrics.NewEnergyDrift())
			Expect(s.LoadScenario(binary())).To(Succeed())

			res, err := s.Run(context.Background(), 10, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(10))

			times := []float64{}
			for _, f := range res.Frames {
				times = append(times, f.Time)
				Expect(f.Bodies).To(HaveLen(2))
			}
			Expect(times).To(Equal([]float64{0, 3, 6, 9, 10}))
			Expect(res.FinalFrame().Time).To(Equal(10.0))
			Expect(res.Metrics).To(HaveKey("energy_drift"))
		})

		It("records energy drift over a full orbit", func() {
			s := newSim(nil)
			Expect(s.LoadScenario(binary())).To(Succeed())
			res, err := s.Run(context.Background(), 1245, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.EnergyDrift).To(BeNumerically("<", 1e-3))
			Expect(res.Errors).To(BeEmpty())
		})

		It("does not alias frame data with live bodies", func() {
			s := newSim(nil)
			Expect(s.LoadScenario(binary())).To(Succeed())
			res, err := s.Run(context.Background(), 2, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames[0].Bodies[0].Position).To(Equal(binary()[0].Position))
		})

		It("rejects a non-positive step count", func() {
			s := newSim(nil)
			_, err := s.Run(context.Background(), 0, 1)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("stops on cancellation with a partial result", func() {
			s := newSim(nil)
			Expect(s.LoadScenario(binary())).To(Succeed())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := s.Run(ctx, 100, 1)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(res).NotTo(BeNil())
			Expect(res.StepsTaken).To(BeZero())
		})
	})
})

type countingObserver struct {
	calls    int
	lastTime float64
}

func (c *countingObserver) OnStep(bodies []dynamo.Body, res dynamo.StepResult, t float64) {
	c.calls++
	c.lastTime = t
}
