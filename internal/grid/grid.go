// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid ties the reaction and diffusion components together into
// the tissue grid descriptor of spec.md §3: the state field Y, its
// derivative dY, the border mask, the stimulus descriptor, and the
// forward-Euler tissue step that advances them.
package grid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/rnd"
	"github.com/cpmech/gosl/utl"

	"github.com/jere19/uterotissue/internal/diffuse"
	"github.com/jere19/uterotissue/internal/partition"
	"github.com/jere19/uterotissue/internal/reaction"
)

// padWidth is the number of ghost/padding cells added on each present
// border face (spec.md §3).
const padWidth = 2

// Grid is the tissue grid descriptor: dimensionality, extents, the state
// tensor Y and its derivative dY, the border mask, and the stimulus
// descriptor. See spec.md §3 for the full data model.
type Grid struct {
	Dim         int  // 3 (R3) or 6 (R6); never changes after construction
	Nx, Ny, Nz  int  // padded extents, as stored in Y
	Borders     [6]bool // -x,+x,-y,+y,-z,+z
	Cylindrical bool

	Model reaction.Model

	Y, dY     []float64   // flat (Nx,Ny,Nz,Dim) tensors
	Mask      diffuse.Field // (Nx,Ny,Nz)
	MaskTempo diffuse.Field // (Nx,Ny,Nz), pins ghost rows to zero in the parallel driver
	Istim     diffuse.Field // (Nx,Ny,Nz), local stimulus current

	StimCoord, StimCoord2 diffuse.Rect
	StimActive            bool

	Ca0  float64
	Time float64

	y0 []float64 // noiseless tiled initial state, restored by Reset

	hx, hy, hz    float64
	rax, ray, raz float64
	cm            float64
	dx, dy, dz    float64 // dependent cache: Dα = 1/(Raα·Cm·hα²)
}

// New builds a tissue grid of the given reaction-model kind ("R3" or "R6")
// with logical (unpadded) extents nx,ny,nz, initial-state noise amplitude
// noise, the six border flags, and the cylindrical flag (which forces the
// Y borders off). See spec.md §3's Lifecycle and §12's dimensionality
// dispatch.
func New(kind string, nx, ny, nz int, noise float64, borders [6]bool, cylindrical bool) (*Grid, error) {
	model, err := reaction.New(kind)
	if err != nil {
		return nil, err
	}
	if cylindrical {
		borders[2], borders[3] = false, false
	}
	// an axis given as 0 is the caller's "unused" shorthand (matching the
	// original Python's Nx*Ny*Nz-based dispatch); spec.md §3 stores unused
	// axes as 1.
	nx, ny, nz = atLeastOne(nx), atLeastOne(ny), atLeastOne(nz)

	g := &Grid{
		Dim:         model.Dim(),
		Borders:     borders,
		Cylindrical: cylindrical,
		Model:       model,
		Ca0:         3,
		hx: 1, hy: 1, hz: 1,
		rax: 1, ray: 1, raz: 1,
		cm: 1,
	}

	g.Nx = nx + padFor(borders[0], nx) + padFor(borders[1], nx)
	g.Ny = ny + padFor(borders[2], ny) + padFor(borders[3], ny)
	g.Nz = nz + padFor(borders[4], nz) + padFor(borders[5], nz)

	n := g.Nx * g.Ny * g.Nz
	g.Y = make([]float64, n*g.Dim)
	g.dY = make([]float64, n*g.Dim)
	g.Mask = diffuse.NewField(make([]float64, n), g.Nx, g.Ny, g.Nz)
	g.MaskTempo = diffuse.NewField(onesOf(n), g.Nx, g.Ny, g.Nz)
	g.Istim = diffuse.NewField(make([]float64, n), g.Nx, g.Ny, g.Nz)

	padLo := func(on bool) int {
		if on {
			return padWidth
		}
		return 0
	}
	diffuse.BuildMask(g.Mask, padLo(borders[0]), padLo(borders[1]), padLo(borders[2]), padLo(borders[3]), padLo(borders[4]), padLo(borders[5]))

	if utl.BoolAllTrue(borders[:]) && g.Dimensionality() < 3 {
		io.Pf("grid: all six borders requested on a %d-D grid; the unused axes are never padded\n", g.Dimensionality())
	}

	g.tileInitialState(noise)
	g.recomputeDx()
	g.recomputeDy()
	g.recomputeDz()
	g.StimActive = true

	return g, nil
}

// padFor returns the padding width contributed by one border face: a face
// on an axis with extent <= 1 (that axis unused, spec.md §3) is never
// padded even if requested.
func padFor(on bool, extent int) int {
	if on && extent > 1 {
		return padWidth
	}
	return 0
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func onesOf(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// Dimensionality reports d ∈ {0,1,2,3}: the count of axes with extent > 1,
// starting from x, matching the original TissueModel's branch on
// Nx*Ny*Nz / Nx*Ny / Nx>1 / else 0-D (spec.md §12).
func (g *Grid) Dimensionality() int {
	d := 0
	if g.Nx > 1 {
		d++
	}
	if g.Ny > 1 {
		d++
	}
	if g.Nz > 1 {
		d++
	}
	return d
}

// tileInitialState fills Y with the model's initial state, perturbed by
// uniform multiplicative noise 1 + (u-0.5)·noise (spec.md §3), and stashes
// the noiseless tiled state in y0 for Reset.
func (g *Grid) tileInitialState(noise float64) {
	init := g.Model.InitialState()
	if len(init) != g.Dim {
		init = make([]float64, g.Dim)
	}
	n := g.Nx * g.Ny * g.Nz
	g.y0 = make([]float64, n*g.Dim)
	for cell := 0; cell < n; cell++ {
		copy(g.y0[cell*g.Dim:(cell+1)*g.Dim], init)
	}
	copy(g.Y, g.y0)
	if noise == 0 {
		return
	}
	for i := range g.Y {
		u := rnd.Float64(0, 1)
		g.Y[i] *= 1 + (u-0.5)*noise
	}
}

// Reset restores Y to its noiseless tiled initial state and Time to 0,
// without reallocating (spec.md §3's Lifecycle, §8's reset-idempotence
// property). Noise, applied once at construction, is not reapplied.
func (g *Grid) Reset() {
	copy(g.Y, g.y0)
	for i := range g.dY {
		g.dY[i] = 0
	}
	g.Time = 0
	g.StimActive = true
}

// GetPrms returns the grid-level parameter block (spec.md §12's Ca0,
// gettable/settable like any other parameter) together with the reaction
// model's own parlist, as a single fun.Prms exchange surface.
func (g *Grid) GetPrms() fun.Prms {
	prms := g.Model.GetPrms()
	prms = append(prms, &fun.P{N: "Ca0", V: g.Ca0})
	return prms
}

// SetPrms applies a fun.Prms block built by GetPrms: the "Ca0" entry sets
// the grid-level resting extracellular calcium, and every other entry is
// forwarded to the reaction model's own SetPrms.
func (g *Grid) SetPrms(prms fun.Prms) error {
	modelPrms := make(fun.Prms, 0, len(prms))
	for _, p := range prms {
		if p.N == "Ca0" {
			g.Ca0 = p.V
			continue
		}
		modelPrms = append(modelPrms, p)
	}
	return g.Model.SetPrms(modelPrms)
}

// Hx, Hy, Hz, Rax, Ray, Raz, Cm report the current dependent-cache inputs.
func (g *Grid) Hx() float64  { return g.hx }
func (g *Grid) Hy() float64  { return g.hy }
func (g *Grid) Hz() float64  { return g.hz }
func (g *Grid) Rax() float64 { return g.rax }
func (g *Grid) Ray() float64 { return g.ray }
func (g *Grid) Raz() float64 { return g.raz }
func (g *Grid) Cm() float64  { return g.cm }

// Dx, Dy, Dz report the cached diffusion coefficients Dα = 1/(Raα·Cm·hα²).
func (g *Grid) Dx() float64 { return g.dx }
func (g *Grid) Dy() float64 { return g.dy }
func (g *Grid) Dz() float64 { return g.dz }

// SetHx, SetHy, SetHz, SetRax, SetRay, SetRaz, SetCm update one dependency
// of the Dα cache and recompute it. A non-finite result is a recoverable
// fault (spec.md §7): the warning is logged and the previous Dα is kept.
func (g *Grid) SetHx(v float64) { g.hx = v; g.recomputeDx() }
func (g *Grid) SetHy(v float64) { g.hy = v; g.recomputeDy() }
func (g *Grid) SetHz(v float64) { g.hz = v; g.recomputeDz() }
func (g *Grid) SetRax(v float64) { g.rax = v; g.recomputeDx() }
func (g *Grid) SetRay(v float64) { g.ray = v; g.recomputeDy() }
func (g *Grid) SetRaz(v float64) { g.raz = v; g.recomputeDz() }
func (g *Grid) SetCm(v float64) {
	g.cm = v
	g.recomputeDx()
	g.recomputeDy()
	g.recomputeDz()
}

func (g *Grid) recomputeDx() { g.dx = recompute(g.dx, g.rax, g.cm, g.hx, "Dx") }
func (g *Grid) recomputeDy() { g.dy = recompute(g.dy, g.ray, g.cm, g.hy, "Dy") }
func (g *Grid) recomputeDz() { g.dz = recompute(g.dz, g.raz, g.cm, g.hz, "Dz") }

func recompute(prev, ra, cm, h float64, name string) float64 {
	v := 1 / (ra * cm * h * h)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		io.Pfyel("grid: %s recompute fault (Ra=%v, Cm=%v, h=%v), keeping previous value %v\n", name, ra, cm, h, prev)
		return prev
	}
	return v
}

// coeffs builds the diffusion coefficients for the active axes of this
// grid (spec.md §4.3): an axis is active when its extent is > 1.
func (g *Grid) coeffs() diffuse.Coeffs {
	return diffuse.Coeffs{
		Dx: g.dx, ActiveX: g.Nx > 1,
		Dy: g.dy, ActiveY: g.Ny > 1,
		Dz: g.dz, ActiveZ: g.Nz > 1,
	}
}

// vmField returns a diffuse.Field view of channel 0 (Vm) of the given
// (Nx,Ny,Nz,Dim) tensor: channel 0 of Y and of dY are the only views this
// package ever hands to the diffusion operator (spec.md §3 invariant: "the
// first channel of Y is always Vm and is the only channel subject to
// diffusion").
func (g *Grid) vmField(tensor []float64) diffuse.Field {
	return diffuse.Field{
		Data: tensor, Nx: g.Nx, Ny: g.Ny, Nz: g.Nz,
		StrideX: g.Ny * g.Nz * g.Dim, StrideY: g.Nz * g.Dim, StrideZ: g.Dim,
	}
}

// Step advances dY from the current Y and Istim by one tissue step
// (spec.md §2's Tissue step, §4.4 step 4): for every cell, the reaction
// derivative is computed, scaled by MaskTempo, then the diffusion
// contribution is added into dY[...,0]. When updateY is true (the serial
// path) Y is advanced in place by dY*dt; when false (the MP=true parallel
// path) dY is left for the caller to commit.
func (g *Grid) Step(dt float64, updateY bool) {
	n := g.Nx * g.Ny * g.Nz
	cellDy := make([]float64, g.Dim)
	for cell := 0; cell < n; cell++ {
		y := g.Y[cell*g.Dim : (cell+1)*g.Dim]
		istim := g.Istim.Data[cell]
		g.Model.Deriv(y, cellDy, istim, g.Ca0, g.cm)
		copy(g.dY[cell*g.Dim:(cell+1)*g.Dim], cellDy)
	}

	mt := g.MaskTempo.Data
	for cell := 0; cell < n; cell++ {
		scale := mt[cell]
		for k := 0; k < g.Dim; k++ {
			g.dY[cell*g.Dim+k] *= scale
		}
	}

	g.diffuse(dt)

	if updateY {
		for i := range g.Y {
			g.Y[i] += g.dY[i] * dt
		}
	}
}

// diffuse adds the diffusion contribution of Vm into dY[...,0]
// (spec.md §4.3). dt is unused here; it is named for symmetry with Step
// and kept so the signature reads naturally at call sites.
func (g *Grid) diffuse(dt float64) {
	vm := g.vmField(g.Y)
	out := g.vmField(g.dY)
	diffuse.Apply(vm, out, g.Mask, g.coeffs(), g.StimCoord, g.StimCoord2, g.StimActive)
}

// SetStimulus writes scalar current v into every active local stimulus
// rectangle of Istim (spec.md §4.4 step 3).
func (g *Grid) SetStimulus(v float64) {
	for ix := 0; ix < g.Nx; ix++ {
		for iy := 0; iy < g.Ny; iy++ {
			for iz := 0; iz < g.Nz; iz++ {
				if g.StimCoord.Contains(ix, iy, iz) || g.StimCoord2.Contains(ix, iy, iz) {
					g.Istim.Set(ix, iy, iz, v)
				}
			}
		}
	}
}

// StimulusScalar computes the half-wave rectified sine I(t) of spec.md
// §4.4 step 1.
func StimulusScalar(t, iamp, tmax float64) float64 {
	s := math.Sin(math.Pi * t / tmax)
	return (iamp / 2) * (sign(s) + 1) * s
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// LocalView builds one worker's private tissue grid over xr (spec.md
// §4.4's Per-worker loop): Y is an aliased slice of the shared tensor (the
// commit step in internal/parallel writes the advance back through this
// same memory), Mask is an aliased view of the shared border mask, and the
// reaction model, dY, MaskTempo, Istim, stimulus rectangles and StimActive
// flag are private per worker (spec.md §5's Resource policy).
// The worker's model and Ca0 are both seeded from g's GetPrms/SetPrms
// surface (spec.md §12), not copied field-by-field.
func (g *Grid) LocalView(xr partition.Range) (*Grid, error) {
	model, err := reaction.New(g.Model.Name())
	if err != nil {
		return nil, err
	}
	lx := xr.Len()
	strideX := g.Ny * g.Nz * g.Dim
	lo, hi := xr.X0*strideX, xr.X1*strideX
	maskStride := g.Ny * g.Nz
	maskLo, maskHi := xr.X0*maskStride, xr.X1*maskStride

	lv := &Grid{
		Dim: g.Dim, Nx: lx, Ny: g.Ny, Nz: g.Nz,
		Borders:     g.Borders,
		Cylindrical: g.Cylindrical,
		Model:       model,
		Y:           g.Y[lo:hi],
		dY:          make([]float64, hi-lo),
		Mask: diffuse.Field{
			Data: g.Mask.Data[maskLo:maskHi], Nx: lx, Ny: g.Ny, Nz: g.Nz,
			StrideX: maskStride, StrideY: g.Nz, StrideZ: 1,
		},
		MaskTempo:  diffuse.NewField(onesOf(lx*g.Ny*g.Nz), lx, g.Ny, g.Nz),
		Istim:      diffuse.NewField(make([]float64, lx*g.Ny*g.Nz), lx, g.Ny, g.Nz),
		StimActive: true,
		hx: g.hx, hy: g.hy, hz: g.hz,
		rax: g.rax, ray: g.ray, raz: g.raz,
		cm: g.cm,
		dx: g.dx, dy: g.dy, dz: g.dz,
	}
	if err := lv.SetPrms(g.GetPrms()); err != nil {
		return nil, err
	}
	return lv, nil
}

// VmPlane returns a dense (Nx,Ny) snapshot of the current membrane
// potential at depth iz, for callers (e.g. a plotting or archiving
// collaborator, spec.md §1) that want a conventional row-major matrix
// instead of walking the flat tensor directly.
func (g *Grid) VmPlane(iz int) [][]float64 {
	m := la.MatAlloc(g.Nx, g.Ny)
	vm := g.vmField(g.Y)
	for ix := 0; ix < g.Nx; ix++ {
		for iy := 0; iy < g.Ny; iy++ {
			m[ix][iy] = vm.Get(ix, iy, iz)
		}
	}
	return m
}

// CheckStimCoord validates that a global stimulus rectangle vector has the
// 2·d entries its dimensionality requires (spec.md §6's error-signaling
// surface: "dimension mismatch ... is a caller error").
func CheckStimCoord(coords []int, d int) error {
	if len(coords) == 0 {
		return nil
	}
	if len(coords) != 2*d {
		return chk.Err("stimCoord must have %d entries for a %d-D grid; got %d", 2*d, d, len(coords))
	}
	return nil
}
