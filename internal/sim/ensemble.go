package sim

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Job describes one independent run inside an Ensemble.
type Job struct {
	Name        string
	Options     Options
	Bodies      []dynamo.Body
	Steps       int
	SampleEvery int

	// Metrics builds fresh metric instances for the job. Metrics keep
	// state, so they cannot be shared between concurrent runs.
	Metrics func() []dynamo.Metric
}

type Outcome struct {
	Name    string
	Result  *Result
	Elapsed time.Duration
}

// Ensemble runs Jobs in parallel, each on its own Simulation. Nothing is
// shared between jobs; Bodies is copied into each simulation's registry.
type Ensemble struct {
	jobs    []Job
	workers int
}

func NewEnsemble(workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{workers: workers}
}

func (e *Ensemble) Add(j Job) { e.jobs = append(e.jobs, j) }

func (e *Ensemble) Len() int { return len(e.jobs) }

// Run executes every job and returns outcomes in the order jobs were
// added. The first failing job cancels the others.
func (e *Ensemble) Run(ctx context.Context) ([]Outcome, error) {
	outcomes := make([]Outcome, len(e.jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, job := range e.jobs {
		g.Go(func() error {
			s, err := New(job.Options)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			if err := s.LoadScenario(job.Bodies); err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			if job.Metrics != nil {
				for _, m := range job.Metrics() {
					s.AddMetric(m)
				}
			}

			start := time.Now()
			res, err := s.Run(ctx, job.Steps, job.SampleEvery)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			outcomes[i] = Outcome{Name: job.Name, Result: res, Elapsed: time.Since(start)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
