// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the plain, already-populated configuration structs
// the core consumes (spec.md §1's "external collaborators" — command-line
// parsing and file loading — are out of scope here), in the style of
// inp/sim.go: documented fields, explicit defaults, no struct tags.
package config

// GridConfig describes the tissue grid to build.
type GridConfig struct {
	Model       string  // "R3" or "R6"
	Nx, Ny, Nz  int     // logical (unpadded) extents; unused axes are 1
	Noise       float64 // initial-state multiplicative noise amplitude η
	Borders     [6]bool // -x,+x,-y,+y,-z,+z
	Cylindrical bool    // forces the Y borders off
}

// StimulusConfig is one stimulus rectangle in global grid coordinates. An
// Active == false rectangle is inherited/ignored by the integrator.
type StimulusConfig struct {
	Active                 bool
	X0, X1, Y0, Y1, Z0, Z1 int
}

// RunConfig is the parameter set shared by the serial and parallel
// integrators (spec.md §4.4).
type RunConfig struct {
	// N is the worker count for the parallel integrator. Zero means
	// "number of available CPUs" (spec.md §4.4's Configuration).
	N int

	// Dt is the fixed Euler step. The working value is 0.05; spec.md §9
	// explicitly forbids reintroducing adaptive timestep code.
	Dt float64

	// Decim is the record decimation: one sample is kept every Decim
	// steps, and it coincides with the barrier cadence in the parallel
	// path.
	Decim int

	// Iamp is the stimulus current amplitude.
	Iamp float64

	// Tmax is the simulation horizon in ms.
	Tmax float64

	// StimPeriod is the period of the rectified-sine stimulus waveform.
	// The source hard-codes this to Tmax (spec.md §9's Open Questions);
	// it is exposed here as a configuration surface rather than baked
	// into the waveform formula. Zero means "use Tmax", matching the
	// source's behaviour.
	StimPeriod float64
}

// DefaultRunConfig returns the source's working values (spec.md §4.4).
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Dt:    0.05,
		Decim: 20,
		Iamp:  0.2,
		Tmax:  500,
	}
}

// Period returns the configured stimulus period, defaulting to Tmax.
func (c RunConfig) Period() float64 {
	if c.StimPeriod != 0 {
		return c.StimPeriod
	}
	return c.Tmax
}
