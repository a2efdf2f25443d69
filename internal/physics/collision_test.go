package physics_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

var _ = Describe("Resolve", func() {
	var bodies []dynamo.Body

	BeforeEach(func() {
		bodies = []dynamo.Body{
			{Mass: 4, Radius: 10, Position: dynamo.V2(0, 0), Velocity: dynamo.V2(3, 1)},
			{Mass: 1, Radius: 10, Position: dynamo.V2(16, 0), Velocity: dynamo.V2(-5, 2)},
		}
	})

	contacts := []dynamo.Contact{{Massive: 0, Small: 1}}

	It("conserves momentum", func() {
		before := physics.Momentum(bodies)
		Expect(physics.Resolve(bodies, contacts)).To(Succeed())
		after := physics.Momentum(bodies)

		Expect(after.X).To(BeNumerically("~", before.X, 1e-12))
		Expect(after.Y).To(BeNumerically("~", before.Y, 1e-12))
	})

	It("conserves kinetic energy for an elastic bounce", func() {
		before := physics.KineticEnergy(bodies)
		Expect(physics.Resolve(bodies, contacts)).To(Succeed())
		Expect(physics.KineticEnergy(bodies)).To(BeNumerically("~", before, 1e-9))
	})

	It("separates overlapping bodies in inverse proportion to mass", func() {
		Expect(physics.Resolve(bodies, contacts)).To(Succeed())

		Expect(bodies[0].Position.Dist(bodies[1].Position)).To(BeNumerically("~", 20, 1e-12))
		// 4 px of overlap: the heavy body takes 1/5, the light one 4/5.
		Expect(bodies[0].Position.X).To(BeNumerically("~", -0.8, 1e-12))
		Expect(bodies[1].Position.X).To(BeNumerically("~", 19.2, 1e-12))
		com, _ := physics.CenterOfMass(bodies)
		Expect(com.X).To(BeNumerically("~", 16.0/5.0, 1e-12))
	})

	It("reverses the normal relative velocity", func() {
		Expect(physics.Resolve(bodies, contacts)).To(Succeed())
		vn := bodies[0].Velocity.Sub(bodies[1].Velocity).X
		Expect(vn).To(BeNumerically("~", -8, 1e-12))
		// Tangential components are untouched.
		Expect(bodies[0].Velocity.Y).To(Equal(1.0))
		Expect(bodies[1].Velocity.Y).To(Equal(2.0))
	})

	It("does not apply a second impulse once the pair is separating", func() {
		Expect(physics.Resolve(bodies, contacts)).To(Succeed())
		v0, v1 := bodies[0].Velocity, bodies[1].Velocity

		Expect(physics.Resolve(bodies, contacts)).To(Succeed())
		Expect(bodies[0].Velocity).To(Equal(v0))
		Expect(bodies[1].Velocity).To(Equal(v1))
	})

	It("leaves separating pairs' velocities alone", func() {
		bodies[0].Velocity = dynamo.V2(-1, 0)
		bodies[1].Velocity = dynamo.V2(1, 0)
		Expect(physics.Resolve(bodies, contacts)).To(Succeed())
		Expect(bodies[0].Velocity).To(Equal(dynamo.V2(-1, 0)))
		Expect(bodies[1].Velocity).To(Equal(dynamo.V2(1, 0)))
	})

	It("applies no positional correction to pairs that no longer overlap", func() {
		bodies[1].Position = dynamo.V2(25, 0)
		Expect(physics.Resolve(bodies, contacts)).To(Succeed())
		Expect(bodies[0].Position).To(Equal(dynamo.V2(0, 0)))
		Expect(bodies[1].Position).To(Equal(dynamo.V2(25, 0)))
	})

	It("reports coincident centres and stops", func() {
		bodies = append(bodies,
			dynamo.Body{Mass: 2, Radius: 5, Position: dynamo.V2(500, 500), Velocity: dynamo.V2(1, 0)},
			dynamo.Body{Mass: 1, Radius: 5, Position: dynamo.V2(500, 500), Velocity: dynamo.V2(-1, 0)},
		)
		cs := []dynamo.Contact{{Massive: 0, Small: 1}, {Massive: 2, Small: 3}}

		err := physics.Resolve(bodies, cs)
		Expect(errors.Is(err, dynamo.ErrDegenerateVector)).To(BeTrue())

		var ce *dynamo.CollisionError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Massive).To(Equal(2))
		Expect(ce.Small).To(Equal(3))

		// The first pair was applied before the failure.
		Expect(bodies[1].Position.X).To(BeNumerically("~", 19.2, 1e-12))
		Expect(bodies[2].Velocity).To(Equal(dynamo.V2(1, 0)))
		Expect(bodies[3].Velocity).To(Equal(dynamo.V2(-1, 0)))
		for _, b := range bodies {
			Expect(math.IsNaN(b.Position.X) || math.IsNaN(b.Velocity.X)).To(BeFalse())
		}
	})

	It("accepts an empty contact list", func() {
		Expect(physics.Resolve(bodies, nil)).To(Succeed())
	})
})
