package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/logging"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// Batch is a scripted set of runs read from YAML.
type Batch struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Runs        []BatchRun `yaml:"runs"`
}

// BatchRun is one entry of a batch. Zero fields take the scenario preset
// and then the config defaults; Bounce is a pointer so an explicit false
// survives.
type BatchRun struct {
	Name        string  `yaml:"name"`
	Scenario    string  `yaml:"scenario"`
	Integrator  string  `yaml:"integrator"`
	Dt          float64 `yaml:"dt"`
	Steps       int     `yaml:"steps"`
	SampleEvery int     `yaml:"sample_every"`
	Bounce      *bool   `yaml:"bounce"`
	Seed        int64   `yaml:"seed"`
}

// BatchResult pairs a run's resolved config with its outcome. RunID is set
// when the batch was saved to a store.
type BatchResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// LoadBatch reads a batch file.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBatch(data)
}

func ParseBatch(data []byte) (*Batch, error) {
	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}
	if len(b.Runs) == 0 {
		return nil, fmt.Errorf("%w: batch %q has no runs", dynamo.ErrInvalidConfig, b.Name)
	}
	return &b, nil
}

// Config resolves a batch entry against its scenario preset.
func (r BatchRun) Config() (*config.Config, error) {
	name := r.Scenario
	if name == "" {
		name = config.DefaultScenario
	}
	cfg, err := config.Preset(name)
	if err != nil {
		return nil, err
	}
	if r.Integrator != "" {
		cfg.Integrator = r.Integrator
	}
	if r.Dt != 0 {
		cfg.Dt = r.Dt
	}
	if r.Steps != 0 {
		cfg.Steps = r.Steps
	}
	if r.SampleEvery != 0 {
		cfg.SampleEvery = r.SampleEvery
	}
	if r.Bounce != nil {
		cfg.Bounce = *r.Bounce
	}
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BatchOptions controls how a batch executes.
type BatchOptions struct {
	Workers      int
	EscapeRadius float64
	Store        *storage.Store
	Logger       *logging.Logger
}

// RunBatch runs every entry of b in parallel. Entries are validated before
// anything runs, so a bad entry fails the whole batch up front. Results
// come back in file order.
func RunBatch(ctx context.Context, b *Batch, opts BatchOptions) ([]BatchResult, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	results := make([]BatchResult, len(b.Runs))
	initial := make([][]dynamo.Body, len(b.Runs))
	ens := sim.NewEnsemble(opts.Workers)

	for i, run := range b.Runs {
		cfg, err := run.Config()
		if err != nil {
			return nil, fmt.Errorf("batch run %d: %w", i+1, err)
		}
		bodies, err := cfg.InitialBodies()
		if err != nil {
			return nil, fmt.Errorf("batch run %d: %w", i+1, err)
		}
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", cfg.Scenario, i+1)
		}
		results[i] = BatchResult{Name: name, Config: cfg}
		initial[i] = bodies

		ens.Add(sim.Job{
			Name:        name,
			Options:     cfg.Options(),
			Bodies:      bodies,
			Steps:       cfg.Steps,
			SampleEvery: cfg.SampleEvery,
			Metrics: func() []dynamo.Metric {
				return metrics.Default(opts.EscapeRadius)
			},
		})
	}

	log.Info(ctx, "batch started", "batch", b.Name, "runs", len(b.Runs))
	outcomes, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}

	for i, o := range outcomes {
		results[i].Result = o.Result
		log.Debug(ctx, "batch run finished", "run", o.Name, "elapsed", o.Elapsed, "drift", o.Result.EnergyDrift)

		if opts.Store == nil {
			continue
		}
		cfg := results[i].Config
		id, err := opts.Store.Save(storage.RunInfo{
			Scenario:    cfg.Scenario,
			Integrator:  cfg.Integrator,
			Dt:          cfg.Dt,
			Steps:       cfg.Steps,
			SampleEvery: cfg.SampleEvery,
			Seed:        cfg.Seed,
			Bounce:      cfg.Bounce,
		}, initial[i], o.Result)
		if err != nil {
			return results, logging.WrapError(err, "save batch run %s", o.Name)
		}
		results[i].RunID = id
	}
	return results, nil
}
