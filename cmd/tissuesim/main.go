// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// tissuesim drives the uterine tissue reaction-diffusion engine: it builds
// a grid from flag-parsed configuration, runs either the serial or the
// parallel integrator, and prints a short summary of the resulting Vm
// series. Command-line parsing, result archiving, and visualization are
// external-collaborator concerns (spec.md §1); this driver only wires an
// already-built config.* struct into the core, mirroring main.go.
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/jere19/uterotissue/config"
	"github.com/jere19/uterotissue/internal/diffuse"
	"github.com/jere19/uterotissue/internal/grid"
	"github.com/jere19/uterotissue/internal/parallel"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			io.Pfred("ERROR: %v\n", err)
		}
	}()

	model := flag.String("model", "R3", "reaction model: R3 or R6")
	nx := flag.Int("nx", 40, "grid extent along x")
	ny := flag.Int("ny", 1, "grid extent along y")
	nz := flag.Int("nz", 1, "grid extent along z")
	noise := flag.Float64("noise", 0, "initial-state noise amplitude")
	cyl := flag.Bool("cyl", false, "cylindrical grid (forces Y borders off)")
	tmax := flag.Float64("tmax", 500, "simulation horizon in ms")
	iamp := flag.Float64("iamp", 0.2, "stimulus current amplitude")
	decim := flag.Int("decim", 20, "record decimation (one sample every decim steps)")
	workers := flag.Int("workers", 0, "worker count for parallel mode (0 = all CPUs)")
	parallelMode := flag.Bool("parallel", false, "use the parallel integrator")
	stimX0 := flag.Int("stim-x0", 6, "stimulus rectangle start along x (-1 disables)")
	stimX1 := flag.Int("stim-x1", 10, "stimulus rectangle end along x")
	flag.Parse()

	io.PfWhite("\nuterotissue -- reaction-diffusion tissue simulator\n\n")

	borders := [6]bool{}
	g, err := grid.New(*model, *nx, *ny, *nz, *noise, borders, *cyl)
	if err != nil {
		chk.Panic("failed to build grid: %v", err)
	}

	stim := diffuse.Rect{}
	if *stimX0 >= 0 {
		stim = diffuse.Rect{Active: true, X0: *stimX0, X1: *stimX1, Y1: g.Ny, Z1: g.Nz}
	}

	cfg := config.DefaultRunConfig()
	cfg.Tmax = *tmax
	cfg.Iamp = *iamp
	cfg.Decim = *decim
	cfg.N = *workers

	var t []float64
	var vm grid.Series
	if *parallelMode {
		io.Pf("running parallel integrator (N=%d, decim=%d)\n", *workers, *decim)
		t, vm, err = parallel.ParallelCompute(g, cfg, stim, diffuse.Rect{})
		if err != nil {
			chk.Panic("parallel compute failed: %v", err)
		}
	} else {
		io.Pf("running serial integrator\n")
		t, vm = grid.SerialCompute(g, cfg, stim, diffuse.Rect{})
	}

	io.Pf("\nrecorded %d samples over [%.2f, %.2f] ms\n", len(t), t[0], t[len(t)-1])
	mid := g.Nx / 2
	io.Pf("Vm[%d,0,0] at final sample: %.4f mV\n", mid, vm.At(mid, 0, 0, vm.T-1))
}
