package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of
// data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	bins := fft.FFTReal(data)
	ps := make([]float64, len(bins)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(bins[i])
	}
	return ps
}

// DominantPeriod returns the period of the strongest non-constant
// component of series sampled every sampleDt. ok is false when the series
// is too short or flat.
func DominantPeriod(series []float64, sampleDt float64) (period float64, ok bool) {
	n := len(series)
	if n < 4 || !(sampleDt > 0) {
		return 0, false
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if best >= len(ps) || ps[best] <= 1e-12*math.Sqrt(float64(n)) {
		return 0, false
	}
	return float64(n) * sampleDt / float64(best), true
}

// uniform returns the leading frames that share the spacing of the first
// two. A run's final frame is often off the sampling grid.
func uniform(frames []sim.Frame) ([]sim.Frame, float64) {
	if len(frames) < 2 {
		return frames, 0
	}
	step := frames[1].Time - frames[0].Time
	n := 2
	for ; n < len(frames); n++ {
		if math.Abs(frames[n].Time-frames[n-1].Time-step) > 1e-9*math.Abs(step) {
			break
		}
	}
	return frames[:n], step
}

// OrbitalPeriods estimates each body's period from the x coordinate of
// its position relative to the centre of mass. masses gives the weight of
// each body; a body without a detectable period gets 0.
func OrbitalPeriods(frames []sim.Frame, masses []float64) []float64 {
	frames, step := uniform(frames)
	if len(frames) == 0 {
		return nil
	}
	n := len(frames[0].Bodies)
	periods := make([]float64, n)

	total := 0.0
	for i := 0; i < n && i < len(masses); i++ {
		total += masses[i]
	}

	series := make([][]float64, n)
	for i := range series {
		series[i] = make([]float64, len(frames))
	}
	for t, f := range frames {
		com := 0.0
		if total > 0 {
			for i := 0; i < n && i < len(masses) && i < len(f.Bodies); i++ {
				com += masses[i] * f.Bodies[i].Position.X
			}
			com /= total
		}
		for i := 0; i < n && i < len(f.Bodies); i++ {
			series[i][t] = f.Bodies[i].Position.X - com
		}
	}

	for i := range periods {
		if p, ok := DominantPeriod(series[i], step); ok {
			periods[i] = p
		}
	}
	return periods
}

// Masses pulls the mass column out of a body slice.
func Masses(bodies []dynamo.Body) []float64 {
	m := make([]float64, len(bodies))
	for i, b := range bodies {
		m[i] = b.Mass
	}
	return m
}
