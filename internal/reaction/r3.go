// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reaction

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// R3 is the reduced 3-variable uterine cell model (J. Laforet), state
// (Vm, nK, Ca). See spec.md §4.1.
type R3 struct {
	Gk, Gkca, Gl, Kd, fc, alpha, Kca, El, Ek float64
	Gca2, vca2, Rca, Jbase                    float64
}

func init() {
	allocators["R3"] = func() Model {
		o := new(R3)
		o.setDefaults()
		return o
	}
}

func (o *R3) setDefaults() {
	o.Gk = 0.064
	o.Gkca = 0.08
	o.Gl = 0.0055
	o.Kd = 0.01
	o.fc = 0.4
	o.alpha = 4e-5
	o.Kca = 0.01
	o.El = -20
	o.Ek = -83
	o.Gca2 = -0.02694061
	o.vca2 = -20.07451779
	o.Rca = 5.97139101
	o.Jbase = 0.02397327
}

// Name implements Model.
func (o *R3) Name() string { return "R3" }

// Dim implements Model.
func (o *R3) Dim() int { return 3 }

// InitialState implements Model.
func (o *R3) InitialState() []float64 { return []float64{-50, 0.079257, 0.001} }

// Params implements Model.
func (o *R3) Params() []string {
	return []string{"Gk", "Gkca", "Gl", "Kd", "fc", "alpha", "Kca", "El", "Ek", "Gca2", "vca2", "Rca", "Jbase"}
}

// GetPrms implements Model.
func (o *R3) GetPrms() fun.Prms {
	return fun.Prms{
		&fun.P{N: "Gk", V: o.Gk},
		&fun.P{N: "Gkca", V: o.Gkca},
		&fun.P{N: "Gl", V: o.Gl},
		&fun.P{N: "Kd", V: o.Kd},
		&fun.P{N: "fc", V: o.fc},
		&fun.P{N: "alpha", V: o.alpha},
		&fun.P{N: "Kca", V: o.Kca},
		&fun.P{N: "El", V: o.El},
		&fun.P{N: "Ek", V: o.Ek},
		&fun.P{N: "Gca2", V: o.Gca2},
		&fun.P{N: "vca2", V: o.vca2},
		&fun.P{N: "Rca", V: o.Rca},
		&fun.P{N: "Jbase", V: o.Jbase},
	}
}

// SetPrms implements Model.
func (o *R3) SetPrms(prms fun.Prms) error {
	for _, p := range prms {
		switch p.N {
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
		case "Gca2":
			o.Gca2 = p.V
		case "vca2":
			o.vca2 = p.V
		case "Rca":
			o.Rca = p.V
		case "Jbase":
			o.Jbase = p.V
		default:
			return chk.Err("R3: unknown parameter %q", p.N)
		}
	}
	return nil
}

// Deriv implements Model. See spec.md §4.1.
func (o *R3) Deriv(y, dy []float64, istim, ca0, cm float64) {
	vm, nk, ca := y[0], y[1], y[2]

	eca := (gasConstantR * temperatureT) / (2 * faradayF) * math.Log(ca0/ca)
	hki := 1 / (1 + math.Exp((4.2-vm)/21.1))
	tnk := 23.75 * math.Exp(-vm/72.15)

	ica2 := o.Jbase - o.Gca2*(vm-eca)/(1+math.Exp(-(vm-o.vca2)/o.Rca))
	ik := o.Gk * nk * (vm - o.Ek)
	ikca := o.Gkca * ca * ca / (ca*ca + o.Kd*o.Kd) * (vm - o.Ek)
	il := o.Gl * (vm - o.El)

	dy[0] = (istim - ica2 - ik - ikca - il) / cm
	dy[1] = (hki - nk) / tnk
	dy[2] = o.fc * (-o.alpha*ica2 - o.Kca*ca)
}
