package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

var _ = Describe("Diagnostics", func() {
	binary := func() []dynamo.Body {
		v := 1009.01932588033218502780
		return []dynamo.Body{
			{Mass: 1e29, Radius: 10000, Position: dynamo.V2(500000, 300000), Velocity: dynamo.V2(0, v)},
			{Mass: 1e29, Radius: 10000, Position: dynamo.V2(900000, 300000), Velocity: dynamo.V2(0, -v)},
		}
	}

	It("has zero net momentum for a symmetric binary", func() {
		p := physics.Momentum(binary())
		Expect(p.Len()).To(BeNumerically("<", 1e18))
	})

	It("places the centre of mass between the pair", func() {
		pos, vel := physics.CenterOfMass(binary())
		Expect(pos.X).To(BeNumerically("~", 700000, 1e-6))
		Expect(pos.Y).To(BeNumerically("~", 300000, 1e-6))
		Expect(vel.Len()).To(BeNumerically("<", 1e-9))
	})

	It("returns the origin for an empty set", func() {
		pos, vel := physics.CenterOfMass(nil)
		Expect(pos.IsZero() && vel.IsZero()).To(BeTrue())
	})

	It("splits total energy into kinetic and potential parts", func() {
		bs := binary()
		ke := physics.KineticEnergy(bs)
		pe := physics.PotentialEnergy(bs, dynamo.G)

		wantKE := 1e29 * 1009.01932588033218502780 * 1009.01932588033218502780
		wantPE := -dynamo.G * 1e58 / 400000
		Expect(ke).To(BeNumerically("~", wantKE, wantKE*1e-12))
		Expect(pe).To(BeNumerically("~", wantPE, -wantPE*1e-12))
		Expect(physics.TotalEnergy(bs, dynamo.G)).To(Equal(ke + pe))
		// A bound circular pair has E = PE/2.
		Expect(math.Abs((ke+pe)/(pe/2) - 1)).To(BeNumerically("<", 1e-9))
	})

	It("computes angular momentum about the origin", func() {
		bs := []dynamo.Body{{Mass: 2, Position: dynamo.V2(3, 0), Velocity: dynamo.V2(0, 4)}}
		Expect(physics.AngularMomentum(bs)).To(Equal(24.0))
	})

	It("returns the circular orbit speed", func() {
		Expect(physics.CircularSpeed(dynamo.G, 1e29, 800000)).
			To(BeNumerically("~", 1009.01932588033218502780, 1e-6))
	})
})
