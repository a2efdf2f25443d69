// Package analysis characterises stored and live n-body runs.
//
//   - [PowerSpectrum], [DominantPeriod]: spectral period estimation
//   - [OrbitalPeriods]: per-body periods from sampled frames
//   - [Lyapunov]: largest Lyapunov exponent via shadow-trajectory separation
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.Lyapunov(ctx, opts, bodies, 1, 20000, 10)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
