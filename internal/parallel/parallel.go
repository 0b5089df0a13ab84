// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parallel implements the domain-decomposed parallel integrator of
// spec.md §4.4/§5: each worker owns a private view over a contiguous
// x-slice of the shared grid, advances it independently between barriers,
// and commits its owned interior back into the shared state every step.
package parallel

import (
	"math"
	"runtime"
	"sync"

	"github.com/cpmech/gosl/io"

	"github.com/jere19/uterotissue/config"
	"github.com/jere19/uterotissue/internal/barrier"
	"github.com/jere19/uterotissue/internal/diffuse"
	"github.com/jere19/uterotissue/internal/grid"
	"github.com/jere19/uterotissue/internal/partition"
)

// resolveWorkers implements spec.md §4.4's Configuration: N defaults to
// the available CPU count, and a request above that count is capped with
// a warning (spec.md §6's error-signaling surface).
func resolveWorkers(requested int) int {
	avail := runtime.NumCPU()
	if requested <= 0 {
		return avail
	}
	if requested > avail {
		io.Pfyel("parallel: requested %d workers, only %d CPUs available; capping\n", requested, avail)
		return avail
	}
	return requested
}

// buildLocalViews partitions g.Nx across n workers and builds each
// worker's private grid.Grid view, remapping the global stimulus
// rectangles to local coordinates (spec.md §4.4's Stimulus remap) and
// applying the mask/masktempo ghost adjustments of the Per-worker loop:
// rank 0 and rank N-1 zero the one mask row whose wrap-boundary second
// difference would otherwise couple to the far end of their own local
// tile instead of a true neighbour or domain edge; every worker with a
// ghost row on a given side zeros MaskTempo there, which zeroes the
// reaction part of that row's dY (the diffusion part is still added), and
// commitInterior never writes ghost rows back in any case.
func buildLocalViews(g *grid.Grid, n int) ([]*grid.Grid, []partition.Range, error) {
	ranges := partition.Ranges(g.Nx, n)
	locals := make([]*grid.Grid, n)
	for r, xr := range ranges {
		lv, err := g.LocalView(xr)
		if err != nil {
			return nil, nil, err
		}
		lv.StimCoord = partition.RemapRect(g.StimCoord, xr)
		lv.StimCoord2 = partition.RemapRect(g.StimCoord2, xr)

		if n > 1 {
			if r == 0 {
				zeroMaskRow(lv.Mask, 0)
			}
			if r == n-1 {
				zeroMaskRow(lv.Mask, lv.Nx-1)
			}
			if r > 0 {
				zeroMaskRow(lv.MaskTempo, 0)
			}
			if r < n-1 {
				zeroMaskRow(lv.MaskTempo, lv.Nx-1)
			}
		}
		locals[r] = lv
	}
	return locals, ranges, nil
}

func zeroMaskRow(f diffuse.Field, ix int) {
	for iy := 0; iy < f.Ny; iy++ {
		for iz := 0; iz < f.Nz; iz++ {
			f.Set(ix, iy, iz, 0)
		}
	}
}

// ParallelCompute runs the parallel integrator (spec.md §6's parallelCompute):
// n workers (cfg.N, resolved per resolveWorkers) each drive the tissue
// step over their own x-slice of g, rendezvousing every cfg.Decim steps,
// and rank 0 snapshots the shared Vm field at the same cadence. A
// zero-value stim/stim2 inherits g's currently configured rectangles.
func ParallelCompute(g *grid.Grid, cfg config.RunConfig, stim, stim2 diffuse.Rect) ([]float64, grid.Series, error) {
	if stim.Active {
		g.StimCoord = stim
	}
	if stim2.Active {
		g.StimCoord2 = stim2
	}

	n := resolveWorkers(cfg.N)
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

	locals, _, err := buildLocalViews(g, n)
	if err != nil {
		return nil, grid.Series{}, err
	}

	tShared := make([]float64, nSamples)
	vmShared := grid.NewSeries(g.Nx, g.Ny, g.Nz, nSamples)
	nCells := g.Nx * g.Ny * g.Nz

	snapshot := func(idx int, t float64) {
		if idx >= nSamples {
			return
		}
		tShared[idx] = t
		for cell := 0; cell < nCells; cell++ {
			vmShared.Data[cell*vmShared.T+idx] = g.Y[cell*g.Dim]
		}
	}
	snapshot(0, 0)

	bar := barrier.New(n)
	var wg sync.WaitGroup
	wg.Add(n)
	for r := 0; r < n; r++ {
		go func(rank int, lv *grid.Grid) {
			defer wg.Done()
			runWorker(rank, n, lv, nSteps, decim, dt, cfg.Iamp, period, bar, func(idx int) {
				if rank == 0 {
					snapshot(idx, lv.Time)
				}
			})
		}(r, locals[r])
	}
	wg.Wait()

	return tShared[1:], grid.TrimLeading(vmShared), nil
}

// runWorker is one worker's loop (spec.md §4.4's Per-worker loop). lv.Y
// aliases the shared grid's underlying tensor, so the commit step writes
// directly into the shared state; no separate copy-back is needed. lv.dY
// is the worker's own buffer.
func runWorker(rank, n int, lv *grid.Grid, nSteps, decim int, dt, iamp, period float64, bar *barrier.Barrier, onSample func(idx int)) {
	for step := 1; step <= nSteps; step++ {
		i := grid.StimulusScalar(lv.Time, iamp, period)
		if lv.Time > 0 && i == 0 {
			lv.StimActive = false
		}
		lv.SetStimulus(i)
		lv.Step(dt, false) // MP=true: fill dY, do not advance Y internally

		if step%decim == 0 {
			bar.Wait(rank)
		}

		commitInterior(lv, rank, n, dt)
		lv.Time += dt

		if step%decim == 0 {
			onSample(step / decim)
		}
	}
}

// commitInterior adds dY*dt into the owned interior rows [x0+(r>0) :
// lx-(r<N-1)) of lv.Y (spec.md §4.4 step 6); ghost rows are left for the
// owning neighbour's own commit.
func commitInterior(lv *grid.Grid, rank, n int, dt float64) {
	lo := 0
	if rank > 0 {
		lo = 1
	}
	hi := lv.Nx
	if rank < n-1 {
		hi = lv.Nx - 1
	}
	for ix := lo; ix < hi; ix++ {
		for iy := 0; iy < lv.Ny; iy++ {
			for iz := 0; iz < lv.Nz; iz++ {
				cell := (ix*lv.Ny+iy)*lv.Nz + iz
				for k := 0; k < lv.Dim; k++ {
					lv.Y[cell*lv.Dim+k] += lv.dY[cell*lv.Dim+k] * dt
				}
			}
		}
	}
}
