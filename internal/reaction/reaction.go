// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reaction implements the per-cell ionic reaction models (R3, R6)
// that drive the membrane-potential ODE of each tissue grid cell.
package reaction

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// thermodynamic constants, shared by every reaction model (spec.md §4.1/4.2)
const (
	gasConstantR = 8.314
	temperatureT = 295
	faradayF     = 96.487
)

// Model defines a per-cell reaction (ionic) model: a pure function of the
// cell's state vector and local stimulus current returning its time
// derivative, plus the parameter-exchange surface of spec.md §6.
type Model interface {
	Name() string
	Dim() int // length of the state vector: 3 for R3, 6 for R6
	InitialState() []float64
	Params() []string // the parlist: names considered "parameters" for cloning into workers
	GetPrms() fun.Prms
	SetPrms(prms fun.Prms) error

	// Deriv computes dy from the cell's current state y, the local
	// stimulus current istim, the resting extracellular calcium ca0, and
	// the membrane capacitance cm. y and dy both have length Dim().
	Deriv(y, dy []float64, istim, ca0, cm float64)
}

// allocators holds all available reaction models, keyed by name.
var allocators = map[string]func() Model{}

// New returns a new reaction model of the given kind ("R3" or "R6").
func New(name string) (Model, error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("reaction model %q is not available in 'reaction' database", name)
	}
	return allocator(), nil
}
