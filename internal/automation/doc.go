// Package automation runs many simulations at once: scripted batches read
// from YAML and Monte Carlo stability studies. Both fan out over
// sim.Ensemble.
//
// A batch file:
//
//	name: drift-study
//	runs:
//	  - scenario: binary
//	    integrator: rk4
//	  - scenario: binary
//	    integrator: leapfrog
//	    dt: 2
//	    bounce: false
package automation
