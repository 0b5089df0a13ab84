// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reaction

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// R6 is the 6-variable uterine cell model (S. Rihana) with explicit
// calcium-channel gating, state (Vm, mCa, h1Ca, h2Ca, nK, Ca). See
// spec.md §4.2.
type R6 struct {
	Gca, Gk, Gkca, Gl, Kd, fc, alpha, Kca, El, Ek float64
}

func init() {
	allocators["R6"] = func() Model {
		o := new(R6)
		o.setDefaults()
		return o
	}
}

func (o *R6) setDefaults() {
	o.Gca = 0.09
	o.Gk = 0.064
	o.Gkca = 0.08
	o.Gl = 0.0055
	o.Kd = 0.01
	o.fc = 0.4
	o.alpha = 4e-5
	o.Kca = 0.01
	o.El = -20
	o.Ek = -83
}

// Name implements Model.
func (o *R6) Name() string { return "R6" }

// Dim implements Model.
func (o *R6) Dim() int { return 6 }

// InitialState implements Model.
func (o *R6) InitialState() []float64 {
	return []float64{-50, 0.0015709, 0.8, 0.8, 0.079257, 0.001}
}

// Params implements Model.
func (o *R6) Params() []string {
	return []string{"Gca", "Gk", "Gkca", "Gl", "Kd", "fc", "alpha", "Kca", "El", "Ek"}
}

// GetPrms implements Model.
func (o *R6) GetPrms() fun.Prms {
	return fun.Prms{
		&fun.P{N: "Gca", V: o.Gca},
		&fun.P{N: "Gk", V: o.Gk},
		&fun.P{N: "Gkca", V: o.Gkca},
		&fun.P{N: "Gl", V: o.Gl},
		&fun.P{N: "Kd", V: o.Kd},
		&fun.P{N: "fc", V: o.fc},
		&fun.P{N: "alpha", V: o.alpha},
		&fun.P{N: "Kca", V: o.Kca},
		&fun.P{N: "El", V: o.El},
		&fun.P{N: "Ek", V: o.Ek},
	}
}

// SetPrms implements Model.
func (o *R6) SetPrms(prms fun.Prms) error {
	for _, p := range prms {
		switch p.N {
		case "Gca":
			o.Gca = p.V
		case "Gk":
			o.Gk = p.V
		case "Gkca":
			o.Gkca = p.V
		case "Gl":
			o.Gl = p.V
		case "Kd":
			o.Kd = p.V
		case "fc":
			o.fc = p.V
		case "alpha":
			o.alpha = p.V
		case "Kca":
			o.Kca = p.V
		case "El":
			o.El = p.V
		case "Ek":
			o.Ek = p.V
		default:
			return chk.Err("R6: unknown parameter %q", p.N)
		}
	}
	return nil
}

// Deriv implements Model. See spec.md §4.2.
func (o *R6) Deriv(y, dy []float64, istim, ca0, cm float64) {
	vm, mca, h1ca, h2ca, nk, ca := y[0], y[1], y[2], y[3], y[4], y[5]

	eca := (gasConstantR * temperatureT) / (2 * faradayF) * math.Log(ca0/ca)

	mcai := 1 / (1 + math.Exp((-27-vm)/6.6))
	hcai := 1 / (1 + math.Exp((vm+34)/5.4))
	hki := 1 / (1 + math.Exp((4.2-vm)/21.1))

	tmca := 0.64*math.Exp(-0.04*vm) + 1.188
	th1ca := 160.0
	if vm < -10 || vm > 45 {
		th1ca = 24.65*math.Exp(-0.07281*vm) + 17.64*math.Exp(0.029*vm)
	}
	th2ca := 160.0
	tnk := 23.75 * math.Exp(-vm/72.15)

	fca := 1 / (1 + ca)
	hca := 0.38*h1ca + 0.22*h2ca + 0.06

	ica := o.Gca * mca * mca * hca * fca * (vm - eca)
	ik := o.Gk * nk * (vm - o.Ek)
	ikca := o.Gkca * ca * ca / (ca*ca + o.Kd*o.Kd) * (vm - o.Ek)
	il := o.Gl * (vm - o.El)

	dy[0] = (istim - ica - ik - ikca - il) / cm
	dy[1] = (mcai - mca) / tmca
	dy[2] = (hcai - h1ca) / th1ca
	dy[3] = (hcai - h2ca) / th2ca
	dy[4] = (hki - nk) / tnk
	dy[5] = o.fc * (-o.alpha*ica - o.Kca*ca)
}
