// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diffuse implements the second-difference diffusion stencil that
// couples adjacent cells of a tissue grid, together with the border mask
// and stimulus-rectangle masking applied to its output.
package diffuse

// Rect is a stimulus rectangle in either global or local grid coordinates.
// X1/Y1/Z1 are exclusive, following Go slicing convention. A rectangle
// with Active == false takes no effect on the field it is applied to.
type Rect struct {
	Active             bool
	X0, X1, Y0, Y1, Z0, Z1 int
}

// Contains reports whether (ix,iy,iz) lies inside an active rectangle.
func (r Rect) Contains(ix, iy, iz int) bool {
	if !r.Active {
		return false
	}
	if ix < r.X0 || ix >= r.X1 {
		return false
	}
	if r.Y1 > r.Y0 && (iy < r.Y0 || iy >= r.Y1) {
		return false
	}
	if r.Z1 > r.Z0 && (iz < r.Z0 || iz >= r.Z1) {
		return false
	}
	return true
}

// Field is a strided view of a scalar grid quantity (Vm, mask, ...) stored
// inside a larger (Nx,Ny,Nz,dim) tensor. It does not own Data.
type Field struct {
	Data                   []float64
	Nx, Ny, Nz             int
	StrideX, StrideY, StrideZ int
	Offset                 int
}

// NewField builds a Field over a flat (Nx,Ny,Nz) buffer with unit dim
// (stride 1 along Z, Nz along Y, Ny*Nz along X).
func NewField(data []float64, nx, ny, nz int) Field {
	return Field{
		Data: data, Nx: nx, Ny: ny, Nz: nz,
		StrideX: ny * nz, StrideY: nz, StrideZ: 1,
	}
}

func (f Field) index(ix, iy, iz int) int {
	return f.Offset + ix*f.StrideX + iy*f.StrideY + iz*f.StrideZ
}

// At returns the value at (ix,iy,iz), wrapping each index modulo its axis
// extent (used by the stencil to implement periodic/wrap boundaries).
func (f Field) At(ix, iy, iz int) float64 {
	ix = wrap(ix, f.Nx)
	iy = wrap(iy, f.Ny)
	iz = wrap(iz, f.Nz)
	return f.Data[f.index(ix, iy, iz)]
}

// Get returns the value at (ix,iy,iz) without wrapping.
func (f Field) Get(ix, iy, iz int) float64 {
	return f.Data[f.index(ix, iy, iz)]
}

// Set stores v at (ix,iy,iz) without wrapping.
func (f Field) Set(ix, iy, iz int, v float64) {
	f.Data[f.index(ix, iy, iz)] = v
}

// Add adds v into (ix,iy,iz) without wrapping.
func (f Field) Add(ix, iy, iz int, v float64) {
	f.Data[f.index(ix, iy, iz)] += v
}

func wrap(i, n int) int {
	if n <= 1 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Coeffs are the per-axis diffusion coefficients Dx, Dy, Dz.
type Coeffs struct {
	Dx, Dy, Dz          float64
	ActiveX, ActiveY, ActiveZ bool
}

// second computes the 3-point wrap-boundary second difference
// V[i-1] - 2*V[i] + V[i+1] along one axis at (ix,iy,iz).
func second(v Field, ix, iy, iz, dix, diy, diz int) float64 {
	return v.At(ix-dix, iy-diy, iz-diz) - 2*v.At(ix, iy, iz) + v.At(ix+dix, iy+diy, iz+diz)
}

// Apply computes the diffusion contribution of Vm and adds it into out
// (spec.md §4.3): the weighted sum of second differences along every
// active axis, zeroed inside stim/stim2 while stimActive holds, then
// scaled by mask.
func Apply(vm, out, mask Field, c Coeffs, stim, stim2 Rect, stimActive bool) {
	for ix := 0; ix < vm.Nx; ix++ {
		for iy := 0; iy < vm.Ny; iy++ {
			for iz := 0; iz < vm.Nz; iz++ {
				var lap float64
				if c.ActiveX {
					lap += c.Dx * second(vm, ix, iy, iz, 1, 0, 0)
				}
				if c.ActiveY {
					lap += c.Dy * second(vm, ix, iy, iz, 0, 1, 0)
				}
				if c.ActiveZ {
					lap += c.Dz * second(vm, ix, iy, iz, 0, 0, 1)
				}
				if stimActive && (stim.Contains(ix, iy, iz) || stim2.Contains(ix, iy, iz)) {
					lap = 0
				}
				lap *= mask.Get(ix, iy, iz)
				out.Add(ix, iy, iz, lap)
			}
		}
	}
}

// BuildMask fills mask with 1 inside the non-padded interior
// [padLo, n-padHi) on each active axis and 1e-4 inside the padding slabs
// (spec.md §3). Inactive axes (extent 1) are never padded.
const PadValue = 1e-4

func BuildMask(mask Field, padXLo, padXHi, padYLo, padYHi, padZLo, padZHi int) {
	inside := func(i, n, lo, hi int) bool {
		if n <= 1 {
			return true
		}
		return i >= lo && i < n-hi
	}
	for ix := 0; ix < mask.Nx; ix++ {
		for iy := 0; iy < mask.Ny; iy++ {
			for iz := 0; iz < mask.Nz; iz++ {
				v := PadValue
				if inside(ix, mask.Nx, padXLo, padXHi) &&
					inside(iy, mask.Ny, padYLo, padYHi) &&
					inside(iz, mask.Nz, padZLo, padZHi) {
					v = 1
				}
				mask.Set(ix, iy, iz, v)
			}
		}
	}
}
