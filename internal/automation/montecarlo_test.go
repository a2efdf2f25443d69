package automation_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

var _ = Describe("MonteCarlo", func() {
	base := func() automation.MonteCarloConfig {
		sc, err := config.GetScenario("binary")
		Expect(err).NotTo(HaveOccurred())
		return automation.MonteCarloConfig{
			Bodies:       sc.Bodies,
			Options:      sim.DefaultOptions(),
			Jitter:       0.01,
			Trials:       6,
			Steps:        300,
			EscapeRadius: 1e7,
			Seed:         7,
			Workers:      3,
		}
	}

	It("keeps a lightly perturbed binary bound", func() {
		results, err := automation.RunMonteCarlo(context.Background(), base())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(6))
		for i, r := range results {
			Expect(r.Trial).To(Equal(i))
			Expect(r.Stable).To(BeTrue())
		}

		stable, unstable := automation.MonteCarloStats(results)
		Expect(stable).To(Equal(6))
		Expect(unstable).To(BeZero())
	})

	It("is reproducible for a fixed seed", func() {
		a, err := automation.RunMonteCarlo(context.Background(), base())
		Expect(err).NotTo(HaveOccurred())
		b, err := automation.RunMonteCarlo(context.Background(), base())
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("flags trials that leave the escape radius", func() {
		cfg := base()
		cfg.EscapeRadius = 1000
		results, err := automation.RunMonteCarlo(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		stable, unstable := automation.MonteCarloStats(results)
		Expect(stable).To(BeZero())
		Expect(unstable).To(Equal(6))
		Expect(results[0].Escapes).To(Equal(2))
	})

	It("validates its configuration", func() {
		for _, mutate := range []func(*automation.MonteCarloConfig){
			func(c *automation.MonteCarloConfig) { c.Trials = 0 },
			func(c *automation.MonteCarloConfig) { c.Steps = 0 },
			func(c *automation.MonteCarloConfig) { c.Jitter = -1 },
			func(c *automation.MonteCarloConfig) { c.EscapeRadius = 0 },
		} {
			cfg := base()
			mutate(&cfg)
			_, err := automation.RunMonteCarlo(context.Background(), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		}
	})
})
