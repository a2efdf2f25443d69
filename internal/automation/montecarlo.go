package automation

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

// MonteCarloConfig defines Monte Carlo simulation parameters. Each trial
// perturbs every body's velocity by up to Jitter (a fraction of its speed,
// uniform per component).
type MonteCarloConfig struct {
	Bodies       []dynamo.Body
	Options      sim.Options
	Jitter       float64
	Trials       int
	Steps        int
	EscapeRadius float64
	Seed         int64
	Workers      int
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	Trial       int
	Escapes     int
	Collisions  int
	EnergyDrift float64
	Stable      bool // no escapes and no resolution errors
}

// RunMonteCarlo executes cfg.Trials perturbed copies of a system in
// parallel. Perturbations are drawn up front from cfg.Seed, so results do
// not depend on scheduling.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig) ([]MonteCarloResult, error) {
	switch {
	case cfg.Trials <= 0:
		return nil, fmt.Errorf("%w: trials must be positive", dynamo.ErrInvalidConfig)
	case cfg.Steps <= 0:
		return nil, fmt.Errorf("%w: steps must be positive", dynamo.ErrInvalidConfig)
	case cfg.Jitter < 0:
		return nil, fmt.Errorf("%w: jitter must not be negative", dynamo.ErrInvalidConfig)
	case !(cfg.EscapeRadius > 0):
		return nil, fmt.Errorf("%w: escape radius must be positive", dynamo.ErrInvalidConfig)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ens := sim.NewEnsemble(cfg.Workers)

	for trial := 0; trial < cfg.Trials; trial++ {
		bodies := make([]dynamo.Body, len(cfg.Bodies))
		copy(bodies, cfg.Bodies)
		for i := range bodies {
			speed := bodies[i].Velocity.Len()
			bodies[i].Velocity.X += (rng.Float64()*2 - 1) * cfg.Jitter * speed
			bodies[i].Velocity.Y += (rng.Float64()*2 - 1) * cfg.Jitter * speed
		}

		ens.Add(sim.Job{
			Name:    fmt.Sprintf("trial-%d", trial),
			Options: cfg.Options,
			Bodies:  bodies,
			Steps:   cfg.Steps,
			Metrics: func() []dynamo.Metric {
				return []dynamo.Metric{metrics.NewEscapes(cfg.EscapeRadius)}
			},
		})
	}

	outcomes, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(outcomes))
	for i, o := range outcomes {
		esc := int(o.Result.Metrics["escapes"])
		results[i] = MonteCarloResult{
			Trial:       i,
			Escapes:     esc,
			Collisions:  o.Result.Collisions,
			EnergyDrift: o.Result.EnergyDrift,
			Stable:      esc == 0 && len(o.Result.Errors) == 0,
		}
	}
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
