// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"math"
	"runtime"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/jere19/uterotissue/config"
	"github.com/jere19/uterotissue/internal/diffuse"
	"github.com/jere19/uterotissue/internal/grid"
)

func runN(tst *testing.T, n int) grid.Series {
	g, err := grid.New("R3", 40, 0, 0, 0, [6]bool{}, false)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	cfg := config.DefaultRunConfig()
	cfg.Tmax = 50
	cfg.Iamp = 0.2
	cfg.N = n
	stim := diffuse.Rect{Active: true, X0: 6, X1: 10, Y1: 1, Z1: 1}

	_, vm, err := ParallelCompute(g, cfg, stim, diffuse.Rect{})
	if err != nil {
		tst.Fatalf("ParallelCompute(N=%d) failed: %v", n, err)
	}
	return vm
}

func Test_parallel_agreement_across_worker_counts(tst *testing.T) {
	chk.PrintTitle("parallel Vm output agrees across N=1,2,4")

	vm1 := runN(tst, 1)
	vm2 := runN(tst, 2)
	vm4 := runN(tst, 4)

	chk.IntAssert(vm1.T, vm2.T)
	chk.IntAssert(vm1.T, vm4.T)

	// N=2 and N=4 both zero the same two global edge columns (x=0,
	// x=Nx-1; see buildLocalViews), so they agree everywhere. N=1 never
	// zeroes them (a single worker's wrap is the true periodic neighbour),
	// so it is only compared against them on the interior columns — see
	// Test_scenario_serial_vs_n2_parallel_agreement for the same caveat.
	var maxDiff12, maxDiff14, maxDiff24 float64
	for ix := 0; ix < vm1.Nx; ix++ {
		for it := 0; it < vm1.T; it++ {
			d24 := math.Abs(vm2.At(ix, 0, 0, it) - vm4.At(ix, 0, 0, it))
			if d24 > maxDiff24 {
				maxDiff24 = d24
			}
			if ix == 0 || ix == vm1.Nx-1 {
				continue
			}
			d12 := math.Abs(vm1.At(ix, 0, 0, it) - vm2.At(ix, 0, 0, it))
			if d12 > maxDiff12 {
				maxDiff12 = d12
			}
			d14 := math.Abs(vm1.At(ix, 0, 0, it) - vm4.At(ix, 0, 0, it))
			if d14 > maxDiff14 {
				maxDiff14 = d14
			}
		}
	}
	if maxDiff12 > 1e-6 {
		tst.Fatalf("N=1 vs N=2 interior max abs diff too large: %v", maxDiff12)
	}
	if maxDiff14 > 1e-6 {
		tst.Fatalf("N=1 vs N=4 interior max abs diff too large: %v", maxDiff14)
	}
	if maxDiff24 > 1e-6 {
		tst.Fatalf("N=2 vs N=4 max abs diff too large: %v", maxDiff24)
	}
}

func Test_scenario_serial_vs_n2_parallel_agreement(tst *testing.T) {
	chk.PrintTitle("serial and N=2 parallel integrators agree on the interior")

	build := func() *grid.Grid {
		g, err := grid.New("R3", 40, 0, 0, 0, [6]bool{}, false)
		if err != nil {
			tst.Fatalf("New failed: %v", err)
		}
		return g
	}
	cfg := config.DefaultRunConfig()
	cfg.Tmax = 50
	cfg.Iamp = 0.2
	stim := diffuse.Rect{Active: true, X0: 6, X1: 10, Y1: 1, Z1: 1}

	_, vmSerial := grid.SerialCompute(build(), cfg, stim, diffuse.Rect{})

	cfg.N = 2
	_, vmParallel, err := ParallelCompute(build(), cfg, stim, diffuse.Rect{})
	if err != nil {
		tst.Fatalf("ParallelCompute(N=2) failed: %v", err)
	}

	chk.IntAssert(vmSerial.T, vmParallel.T)

	// The two global edge columns (x=0, x=Nx-1) are not compared: with no
	// border on x the domain is periodic, and a rank-0/rank-(N-1) worker's
	// local wrap at its own edge would reach into its own ghost row rather
	// than the true periodic neighbour, so buildLocalViews masks that one
	// diffusion contribution to zero instead of computing it wrong (see
	// DESIGN.md's ghost-row mask note). That is a documented, inherent
	// difference from the serial integrator's true periodic wrap at those
	// two columns; every other column has no such discrepancy.
	var maxDiff float64
	for ix := 1; ix < vmSerial.Nx-1; ix++ {
		for it := 0; it < vmSerial.T; it++ {
			d := math.Abs(vmSerial.At(ix, 0, 0, it) - vmParallel.At(ix, 0, 0, it))
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	if maxDiff > 1e-6 {
		tst.Fatalf("serial vs N=2 parallel interior max abs diff too large: %v", maxDiff)
	}
}

func Test_resolve_workers_caps_at_numcpu(tst *testing.T) {
	chk.PrintTitle("requesting more workers than available CPUs is capped")

	n := resolveWorkers(1 << 20)
	if n <= 0 || n > 1<<20 {
		tst.Fatalf("unexpected resolved worker count: %d", n)
	}
	if n != runtime.NumCPU() {
		tst.Fatalf("expected the request to be capped at %d CPUs, got %d", runtime.NumCPU(), n)
	}
	if n == 0 {
		tst.Fatalf("resolveWorkers must never return 0")
	}
}

func Test_resolve_workers_zero_means_all_cpus(tst *testing.T) {
	chk.PrintTitle("N=0 resolves to the available CPU count")

	n := resolveWorkers(0)
	if n <= 0 {
		tst.Fatalf("expected a positive default worker count, got %d", n)
	}
	if n != runtime.NumCPU() {
		tst.Fatalf("expected N=0 to resolve to %d CPUs, got %d", runtime.NumCPU(), n)
	}
}
