package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

var _ = Describe("Ensemble", func() {
	job := func(name, integrator string, bodies []dynamo.Body) sim.Job {
		opts := sim.DefaultOptions()
		opts.Integrator = integrator
		return sim.Job{
			Name:        name,
			Options:     opts,
			Bodies:      bodies,
			Steps:       200,
			SampleEvery: 50,
			Metrics: func() []dynamo.Metric {
				return []dynamo.Metric{metrics.NewEnergyDrift()}
			},
		}
	}

	It("runs independent jobs and keeps their order", func() {
		e := sim.NewEnsemble(2)
		shared := binary()
		e.Add(job("rk4", "rk4", shared))
		e.Add(job("leapfrog", "leapfrog", shared))
		e.Add(job("rk4-again", "rk4", shared))
		Expect(e.Len()).To(Equal(3))

		out, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(3))
		Expect(out[0].Name).To(Equal("rk4"))
		Expect(out[1].Name).To(Equal("leapfrog"))

		for _, o := range out {
			Expect(o.Result.StepsTaken).To(Equal(200))
			Expect(o.Result.Metrics["energy_drift"]).To(BeNumerically("<", 1e-3))
		}
		// Same inputs, same integrator: identical trajectories.
		Expect(out[0].Result.FinalFrame()).To(Equal(out[2].Result.FinalFrame()))
		// The input slice is never integrated in place.
		Expect(shared).To(Equal(binary()))
	})

	It("fails when a job cannot be built", func() {
		e := sim.NewEnsemble(0)
		bad := binary()
		bad[0].Mass = 0
		e.Add(job("good", "rk4", binary()))
		e.Add(job("bad", "rk4", bad))

		_, err := e.Run(context.Background())
		Expect(errors.Is(err, dynamo.ErrInvalidBody)).To(BeTrue())
	})
})
