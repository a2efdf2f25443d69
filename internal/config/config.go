package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

const (
	DefaultScenario    = "solar"
	DefaultSteps       = 5000
	DefaultSampleEvery = 10
	DefaultSeed        = 1
)

type Config struct {
	Scenario    string               `yaml:"scenario"`
	Integrator  string               `yaml:"integrator"`
	Dt          float64              `yaml:"dt"`
	Steps       int                  `yaml:"steps"`
	SampleEvery int                  `yaml:"sample_every"`
	Bounce      bool                 `yaml:"bounce"`
	Seed        int64                `yaml:"seed"`
	Gravity     float64              `yaml:"gravity"`
	Bodies      []storage.BodyRecord `yaml:"bodies,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:    DefaultScenario,
		Integrator:  "rk4",
		Dt:          dynamo.DefaultDt,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Bounce:      true,
		Seed:        DefaultSeed,
		Gravity:     dynamo.G,
	}
}

// Load reads a YAML config. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case !(c.Dt > 0):
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, c.Dt)
	case c.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidConfig, c.Steps)
	case c.SampleEvery < 0:
		return fmt.Errorf("%w: sample_every must not be negative", dynamo.ErrInvalidConfig)
	case !(c.Gravity > 0):
		return fmt.Errorf("%w: gravity must be positive, got %g", dynamo.ErrInvalidConfig, c.Gravity)
	case !slices.Contains(integrators.Names(), c.Integrator):
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownIntegrator, c.Integrator)
	}
	if len(c.Bodies) == 0 {
		if _, ok := Scenarios[c.Scenario]; !ok {
			return fmt.Errorf("%w: %s", dynamo.ErrUnknownScenario, c.Scenario)
		}
	}
	return nil
}

// Options converts the config into simulation options.
func (c *Config) Options() sim.Options {
	opts := sim.DefaultOptions()
	opts.G = c.Gravity
	opts.Dt = c.Dt
	opts.Integrator = c.Integrator
	opts.Bounce = c.Bounce
	opts.Seed = c.Seed
	return opts
}

// InitialBodies returns the inline bodies when present, else the bodies of
// the named scenario.
func (c *Config) InitialBodies() ([]dynamo.Body, error) {
	if len(c.Bodies) > 0 {
		return storage.FromRecords(c.Bodies)
	}
	sc, err := GetScenario(c.Scenario)
	if err != nil {
		return nil, err
	}
	return sc.Bodies, nil
}
