package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

// Lyapunov estimates the largest Lyapunov exponent of a system of bodies
// by following a shadow copy whose first body starts eps further along x.
// Every renorm ticks the shadow's offset from the reference, in positions
// and velocities alike, is scaled back so the position separation is eps
// again. A positive result per internal second indicates chaos. A tick
// error on either copy ends the estimate.
//
// Algorithm:
// 1. Run the reference and the shadow side by side
// 2. Measure position separation d every renorm ticks
// 3. λ ≈ Σ ln(d/eps) / elapsed time
func Lyapunov(ctx context.Context, opts sim.Options, bodies []dynamo.Body, eps float64, steps, renorm int) (float64, error) {
	if !(eps > 0) || steps <= 0 || renorm <= 0 {
		return 0, fmt.Errorf("%w: lyapunov needs eps, steps and renorm > 0", dynamo.ErrInvalidConfig)
	}
	if len(bodies) == 0 {
		return 0, nil
	}

	ref, err := sim.New(opts)
	if err != nil {
		return 0, err
	}
	shadow, err := sim.New(opts)
	if err != nil {
		return 0, err
	}
	if err := ref.LoadScenario(bodies); err != nil {
		return 0, err
	}
	if err := shadow.LoadScenario(bodies); err != nil {
		return 0, err
	}
	shadow.Bodies()[0].Position.X += eps

	sumLog, elapsed := 0.0, 0.0
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		_, rerr := ref.Step()
		_, serr := shadow.Step()
		if err := errors.Join(rerr, serr); err != nil {
			return 0, fmt.Errorf("lyapunov tick %d: %w", i, err)
		}

		if i%renorm != 0 {
			continue
		}
		a, b := ref.Bodies(), shadow.Bodies()
		sep := 0.0
		for j := range a {
			sep += b[j].Position.Sub(a[j].Position).Len2()
		}
		sep = math.Sqrt(sep)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}

		sumLog += math.Log(sep / eps)
		elapsed += float64(renorm) * ref.Stepper().Dt()

		scale := eps / sep
		for j := range a {
			b[j].Position = a[j].Position.Add(b[j].Position.Sub(a[j].Position).Scale(scale))
			b[j].Velocity = a[j].Velocity.Add(b[j].Velocity.Sub(a[j].Velocity).Scale(scale))
		}
	}

	if elapsed == 0 {
		return 0, nil
	}
	return sumLog / elapsed, nil
}
