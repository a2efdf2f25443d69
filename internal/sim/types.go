package sim

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/logging"
)

type Options struct {
	G          float64
	Dt         float64
	Integrator string
	Bounce     bool
	Seed       int64

	// Tag labels bodies created by AddBody. Nil leaves the tag empty.
	Tag func() string

	Logger *logging.Logger
}

func DefaultOptions() Options {
	return Options{
		G:          dynamo.G,
		Dt:         dynamo.DefaultDt,
		Integrator: "rk4",
		Bounce:     true,
		Seed:       1,
	}
}

// Frame is a sampled snapshot of a run.
type Frame struct {
	Time   float64
	Energy float64
	Bodies []dynamo.Kinematics
}

type Result struct {
	Frames      []Frame
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Collisions  int
	Errors      []error
}

// FinalFrame returns the last recorded frame, or the zero Frame.
func (r *Result) FinalFrame() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}
