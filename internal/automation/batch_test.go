package automation_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/storage"
)

const drift = `
name: drift-study
description: rk4 against leapfrog on a binary
runs:
  - name: rk4
    scenario: binary
    steps: 200
    sample_every: 50
  - scenario: binary
    integrator: leapfrog
    dt: 2
    steps: 100
    bounce: false
`

var _ = Describe("Batch", func() {
	It("parses runs and resolves them against presets", func() {
		b, err := automation.ParseBatch([]byte(drift))
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Name).To(Equal("drift-study"))
		Expect(b.Runs).To(HaveLen(2))

		cfg, err := b.Runs[0].Config()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Integrator).To(Equal("rk4"))
		Expect(cfg.Steps).To(Equal(200))
		Expect(cfg.Bounce).To(BeTrue())

		cfg, err = b.Runs[1].Config()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Integrator).To(Equal("leapfrog"))
		Expect(cfg.Dt).To(Equal(2.0))
		Expect(cfg.Bounce).To(BeFalse())
	})

	It("rejects empty and malformed batches", func() {
		_, err := automation.ParseBatch([]byte("name: nothing\n"))
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

		_, err = automation.ParseBatch([]byte("runs: [\n"))
		Expect(err).To(HaveOccurred())
	})

	It("loads a batch from disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "batch.yaml")
		Expect(os.WriteFile(path, []byte(drift), 0644)).To(Succeed())
		b, err := automation.LoadBatch(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Runs).To(HaveLen(2))

		_, err = automation.LoadBatch(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})

	It("runs every entry and saves each to the store", func() {
		b, err := automation.ParseBatch([]byte(drift))
		Expect(err).NotTo(HaveOccurred())

		st := storage.New(GinkgoT().TempDir())
		Expect(st.Init()).To(Succeed())

		results, err := automation.RunBatch(context.Background(), b, automation.BatchOptions{
			Workers:      2,
			EscapeRadius: 1e8,
			Store:        st,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Name).To(Equal("rk4"))
		Expect(results[1].Name).To(Equal("binary-2"))
		Expect(results[0].Result.StepsTaken).To(Equal(200))
		Expect(results[1].Result.StepsTaken).To(Equal(100))
		Expect(results[0].Result.Metrics).To(HaveKey("escapes"))

		runs, err := st.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(2))
		Expect(results[0].RunID).NotTo(Equal(results[1].RunID))

		meta, err := st.Load(results[1].RunID)
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.Integrator).To(Equal("leapfrog"))
		Expect(meta.Bounce).To(BeFalse())
	})

	It("fails before running when an entry is invalid", func() {
		b := &automation.Batch{Runs: []automation.BatchRun{
			{Scenario: "binary", Steps: 10},
			{Scenario: "nowhere"},
		}}
		_, err := automation.RunBatch(context.Background(), b, automation.BatchOptions{EscapeRadius: 1e8})
		Expect(err).To(MatchError(dynamo.ErrUnknownScenario))
		Expect(err.Error()).To(ContainSubstring("batch run 2"))

		b.Runs[1] = automation.BatchRun{Scenario: "binary", Integrator: "euler"}
		_, err = automation.RunBatch(context.Background(), b, automation.BatchOptions{EscapeRadius: 1e8})
		Expect(err).To(MatchError(dynamo.ErrUnknownIntegrator))
	})
})
