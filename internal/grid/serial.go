// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"math"

	"github.com/jere19/uterotissue/config"
	"github.com/jere19/uterotissue/internal/diffuse"
)

// Series is the (Nx,Ny,Nz,T) membrane-potential tensor returned by
// SerialCompute and ParallelCompute, stored cell-major with the time axis
// contiguous per cell.
type Series struct {
	Data       []float64
	Nx, Ny, Nz int
	T          int
}

// At returns the recorded Vm of cell (ix,iy,iz) at sample it.
func (s Series) At(ix, iy, iz, it int) float64 {
	cell := (ix*s.Ny+iy)*s.Nz + iz
	return s.Data[cell*s.T+it]
}

// NewSeries allocates an empty (nx,ny,nz,t) Vm series.
func NewSeries(nx, ny, nz, t int) Series {
	return Series{Data: make([]float64, nx*ny*nz*t), Nx: nx, Ny: ny, Nz: nz, T: t}
}

// TrimLeading drops the first time sample, matching the parallel
// integrator's Vm[...,1:] trim policy (spec.md §9's Open Questions; this
// implementation converges serial and parallel on the same end).
func TrimLeading(s Series) Series {
	out := NewSeries(s.Nx, s.Ny, s.Nz, s.T-1)
	n := s.Nx * s.Ny * s.Nz
	for cell := 0; cell < n; cell++ {
		copy(out.Data[cell*out.T:(cell+1)*out.T], s.Data[cell*s.T+1:(cell+1)*s.T])
	}
	return out
}

// SerialCompute integrates the grid forward from its current state to
// cfg.Tmax on a single goroutine using the plain forward-Euler tissue step
// (spec.md §6's serialCompute). A zero-value stim/stim2 leaves the grid's
// currently configured stimulus rectangles unchanged ("inherit" in
// spec.md §6's contract); an Active one overrides it. Vm is recorded every
// cfg.Decim steps, matching the parallel integrator's sampling cadence
// (spec.md §8 scenario 5 compares the two elementwise) and
// original_source/cell_mdl.py's IntSerial.compute, which also decimates
// its own recording.
func SerialCompute(g *Grid, cfg config.RunConfig, stim, stim2 diffuse.Rect) ([]float64, Series) {
	if stim.Active {
		g.StimCoord = stim
	}
	if stim2.Active {
		g.StimCoord2 = stim2
	}

	dt := cfg.Dt
	if dt == 0 {
		dt = 0.05
	}
	decim := cfg.Decim
	if decim == 0 {
		decim = 20
	}
	period := cfg.Period()
	nSteps := int(math.Ceil(cfg.Tmax / dt))
	nSamples := int(math.Ceil(cfg.Tmax/(dt*float64(decim)))) + 1

	n := g.Nx * g.Ny * g.Nz
	tAll := make([]float64, nSamples)
	vmAll := NewSeries(g.Nx, g.Ny, g.Nz, nSamples)

	snapshot := func(idx int) {
		if idx >= nSamples {
			return
		}
		tAll[idx] = g.Time
		for cell := 0; cell < n; cell++ {
			vmAll.Data[cell*vmAll.T+idx] = g.Y[cell*g.Dim]
		}
	}
	snapshot(0)

	for step := 1; step <= nSteps; step++ {
		i := StimulusScalar(g.Time, cfg.Iamp, period)
		if g.Time > 0 && i == 0 {
			g.StimActive = false
		}
		g.SetStimulus(i)
		g.Step(dt, true)
		g.Time += dt
		if step%decim == 0 {
			snapshot(step / decim)
		}
	}

	return tAll[1:], TrimLeading(vmAll)
}
