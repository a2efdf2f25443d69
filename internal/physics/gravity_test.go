package physics_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

func kinematicsOf(bodies []dynamo.Body) []dynamo.Kinematics {
	ks := make([]dynamo.Kinematics, len(bodies))
	for i, b := range bodies {
		ks[i] = dynamo.Kinematics{Position: b.Position, Velocity: b.Velocity}
	}
	return ks
}

func relClose(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b)/scale < 1e-12
}

var _ = Describe("Gravity", func() {
	var (
		g      *physics.Gravity
		bodies []dynamo.Body
		out    []dynamo.Derivative
	)

	BeforeEach(func() {
		g = physics.NewGravity(dynamo.G)
		bodies = []dynamo.Body{
			{Mass: 1.9889e30, Radius: 6960, Position: dynamo.V2(500000, 300000), Velocity: dynamo.V2(0, 0)},
			{Mass: 5.9736e24, Radius: 3000, Position: dynamo.V2(1996000, 300000), Velocity: dynamo.V2(0, 3290.6762)},
			{Mass: 7.3477e22, Radius: 3000, Position: dynamo.V2(1999844, 300000), Velocity: dynamo.V2(0, 3178.17145)},
			{Mass: 1e29, Radius: 10000, Position: dynamo.V2(-250000, 820000), Velocity: dynamo.V2(12, -40)},
		}
		out = make([]dynamo.Derivative, len(bodies))
	})

	It("copies velocity into the position derivative", func() {
		g.Evaluate(bodies, kinematicsOf(bodies), out, false, nil)
		for i := range bodies {
			Expect(out[i].Position).To(Equal(bodies[i].Velocity))
		}
	})

	It("obeys Newton's third law for every pair", func() {
		pair := bodies[:2]
		g.Evaluate(pair, kinematicsOf(pair), out, false, nil)

		f0 := out[0].Velocity.Scale(pair[0].Mass)
		f1 := out[1].Velocity.Scale(pair[1].Mass)
		Expect(relClose(f0.X, -f1.X)).To(BeTrue(), "fx %g vs %g", f0.X, f1.X)
		Expect(relClose(f0.Y, -f1.Y)).To(BeTrue(), "fy %g vs %g", f0.Y, f1.Y)
	})

	It("conserves total force across many bodies", func() {
		g.Evaluate(bodies, kinematicsOf(bodies), out, false, nil)

		var sum dynamo.Vec2
		maxF := 0.0
		for i := range bodies {
			f := out[i].Velocity.Scale(bodies[i].Mass)
			sum.AddInPlace(f)
			maxF = math.Max(maxF, f.Len())
		}
		Expect(sum.Len() / maxF).To(BeNumerically("<", 1e-12))
	})

	It("pulls bodies toward each other", func() {
		pair := bodies[:2]
		g.Evaluate(pair, kinematicsOf(pair), out, false, nil)
		Expect(out[0].Velocity.X).To(BeNumerically(">", 0))
		Expect(out[1].Velocity.X).To(BeNumerically("<", 0))
	})

	It("matches the analytic acceleration G·m/r²", func() {
		pair := bodies[:2]
		g.Evaluate(pair, kinematicsOf(pair), out, false, nil)
		r := pair[0].Position.Dist(pair[1].Position)
		want := dynamo.G * pair[0].Mass / (r * r)
		Expect(out[1].Velocity.Len()).To(BeNumerically("~", want, want*1e-12))
	})

	It("returns the pairwise potential energy only when asked", func() {
		ks := kinematicsOf(bodies)
		Expect(g.Evaluate(bodies, ks, out, false, nil)).To(Equal(0.0))

		pe, err := g.Evaluate(bodies, ks, out, true, nil)
		Expect(err).NotTo(HaveOccurred())
		want := physics.PotentialEnergy(bodies, dynamo.G)
		Expect(pe).To(BeNumerically("~", want, math.Abs(want)*1e-12))
	})

	It("overwrites stale derivative data", func() {
		for i := range out {
			out[i] = dynamo.Derivative{Position: dynamo.V2(1e9, 1e9), Velocity: dynamo.V2(1e9, 1e9)}
		}
		g.Evaluate(bodies[:1], kinematicsOf(bodies[:1]), out, true, nil)
		Expect(out[0].Velocity).To(Equal(dynamo.Vec2{}))
	})

	It("does not allocate", func() {
		ks := kinematicsOf(bodies)
		rec := physics.NewCollisionRecord(8)
		allocs := testingAllocs(func() {
			g.Evaluate(bodies, ks, out, true, rec)
		})
		Expect(allocs).To(BeZero())
	})

	Describe("degenerate pairs", func() {
		It("reports coincident bodies instead of producing NaN", func() {
			bs := []dynamo.Body{
				{Mass: 1, Radius: 10, Position: dynamo.V2(1e5, 0)},
				{Mass: 1, Radius: 10, Position: dynamo.V2(5, 5)},
				{Mass: 4, Radius: 10, Position: dynamo.V2(5, 5)},
			}
			d := make([]dynamo.Derivative, len(bs))
			_, err := g.Evaluate(bs, kinematicsOf(bs), d, true, nil)

			Expect(err).To(MatchError(dynamo.ErrDegenerateVector))
			var ce *dynamo.CollisionError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Massive).To(Equal(2))
			Expect(ce.Small).To(Equal(1))
		})

		It("reports non-finite positions", func() {
			bs := []dynamo.Body{
				{Mass: 1, Radius: 10, Position: dynamo.V2(0, 0)},
				{Mass: 1, Radius: 10, Position: dynamo.V2(math.Inf(1), 0)},
			}
			d := make([]dynamo.Derivative, len(bs))
			_, err := g.Evaluate(bs, kinematicsOf(bs), d, false, nil)
			Expect(err).To(MatchError(dynamo.ErrDegenerateVector))
		})
	})

	Describe("contact detection", func() {
		It("registers touching pairs under the heavier body", func() {
			bs := []dynamo.Body{
				{Mass: 1, Radius: 10, Position: dynamo.V2(0, 0)},
				{Mass: 5, Radius: 10, Position: dynamo.V2(15, 0)},
				{Mass: 2, Radius: 1, Position: dynamo.V2(500, 0)},
			}
			rec := physics.NewCollisionRecord(4)
			d := make([]dynamo.Derivative, len(bs))
			g.Evaluate(bs, kinematicsOf(bs), d, false, rec)

			Expect(rec.Contacts()).To(Equal([]dynamo.Contact{{Massive: 1, Small: 0}}))
			Expect(rec.Contains(0, 1)).To(BeTrue())
			Expect(rec.Massive(1, nil)).To(Equal([]int{0}))
		})

		It("keys equal masses under the lower scan index", func() {
			bs := []dynamo.Body{
				{Mass: 3, Radius: 10, Position: dynamo.V2(0, 0)},
				{Mass: 3, Radius: 10, Position: dynamo.V2(20, 0)},
			}
			rec := physics.NewCollisionRecord(1)
			d := make([]dynamo.Derivative, len(bs))
			g.Evaluate(bs, kinematicsOf(bs), d, false, rec)

			Expect(rec.Contacts()).To(Equal([]dynamo.Contact{{Massive: 0, Small: 1}}))
		})

		It("still applies gravity to touching pairs", func() {
			bs := []dynamo.Body{
				{Mass: 1e20, Radius: 10, Position: dynamo.V2(0, 0)},
				{Mass: 1e20, Radius: 10, Position: dynamo.V2(5, 0)},
			}
			rec := physics.NewCollisionRecord(1)
			d := make([]dynamo.Derivative, len(bs))
			g.Evaluate(bs, kinematicsOf(bs), d, false, rec)

			Expect(rec.Len()).To(Equal(1))
			Expect(d[0].Velocity.X).To(BeNumerically(">", 0))
		})

		It("is rebuilt on every evaluation", func() {
			bs := []dynamo.Body{
				{Mass: 1, Radius: 10, Position: dynamo.V2(0, 0)},
				{Mass: 1, Radius: 10, Position: dynamo.V2(5, 0)},
			}
			rec := physics.NewCollisionRecord(1)
			d := make([]dynamo.Derivative, len(bs))
			g.Evaluate(bs, kinematicsOf(bs), d, false, rec)
			Expect(rec.Len()).To(Equal(1))

			bs[1].Position = dynamo.V2(1000, 0)
			g.Evaluate(bs, kinematicsOf(bs), d, false, rec)
			Expect(rec.Len()).To(BeZero())
		})
	})
})
