package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

// Point is one evaluated (integrator, dt) pair.
type Point struct {
	Integrator string
	Dt         float64
	Steps      int
	Drift      float64
}

// GridSearch sweeps integrators and timesteps over a fixed span of
// simulated time and reports the relative energy drift of each pair.
type GridSearch struct {
	integrators []string
	dts         []float64
	workers     int
}

func NewGridSearch(integrators []string, dts []float64, workers int) *GridSearch {
	return &GridSearch{integrators: integrators, dts: dts, workers: workers}
}

// Evaluate runs every pair for duration seconds of simulated time. Points
// come back ordered by integrator, then by ascending dt.
func (g *GridSearch) Evaluate(ctx context.Context, bodies []dynamo.Body, base sim.Options, duration float64) ([]Point, error) {
	if len(g.integrators) == 0 || len(g.dts) == 0 {
		return nil, fmt.Errorf("%w: grid search needs integrators and dts", dynamo.ErrInvalidConfig)
	}
	if !(duration > 0) {
		return nil, fmt.Errorf("%w: duration must be positive", dynamo.ErrInvalidConfig)
	}

	dts := append([]float64(nil), g.dts...)
	sort.Float64s(dts)

	points := make([]Point, 0, len(g.integrators)*len(dts))
	ens := sim.NewEnsemble(g.workers)
	for _, name := range g.integrators {
		for _, dt := range dts {
			if !(dt > 0) {
				return nil, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, dt)
			}
			steps := max(int(math.Ceil(duration/dt)), 1)
			opts := base
			opts.Integrator = name
			opts.Dt = dt
			ens.Add(sim.Job{
				Name:    fmt.Sprintf("%s/%g", name, dt),
				Options: opts,
				Bodies:  bodies,
				Steps:   steps,
			})
			points = append(points, Point{Integrator: name, Dt: dt, Steps: steps})
		}
	}

	outcomes, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}
	for i, o := range outcomes {
		points[i].Drift = o.Result.EnergyDrift
	}
	return points, nil
}

// Search returns, per integrator, the largest dt whose drift stays within
// tol. Integrators that never meet tol are left out. The full grid is
// returned alongside.
func (g *GridSearch) Search(ctx context.Context, bodies []dynamo.Body, base sim.Options, duration, tol float64) (best []Point, grid []Point, err error) {
	grid, err = g.Evaluate(ctx, bodies, base, duration)
	if err != nil {
		return nil, nil, err
	}

	byName := make(map[string]Point)
	for _, p := range grid {
		if math.IsNaN(p.Drift) || p.Drift > tol {
			continue
		}
		if cur, ok := byName[p.Integrator]; !ok || p.Dt > cur.Dt {
			byName[p.Integrator] = p
		}
	}
	for _, name := range g.integrators {
		if p, ok := byName[name]; ok {
			best = append(best, p)
			delete(byName, name)
		}
	}
	return best, grid, nil
}
