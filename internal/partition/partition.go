// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package partition computes the x-axis decomposition of spec.md §4.4:
// contiguous worker ranges with a two-cell ghost overlap between
// neighbours, covering the full (padded) x extent.
package partition

import "github.com/jere19/uterotissue/internal/diffuse"

// Range is a worker's local x-range [X0, X1) in global coordinates.
type Range struct {
	X0, X1 int
}

// Len returns the local extent X1-X0.
func (r Range) Len() int { return r.X1 - r.X0 }

// Ranges splits the global extent nx into n contiguous worker ranges with
// a two-cell ghost overlap between adjacent ranges (spec.md §4.4's
// Partitioning along x): enumerate 0..nx+2(n-1)-1, split into n
// near-equal contiguous chunks, then shift chunk r left by 2r.
func Ranges(nx, n int) []Range {
	if n <= 1 {
		return []Range{{0, nx}}
	}
	total := nx + 2*(n-1)
	base := total / n
	extra := total % n

	ranges := make([]Range, n)
	start := 0
	for r := 0; r < n; r++ {
		length := base
		if r < extra {
			length++
		}
		chunkStart := start
		chunkEnd := start + length
		ranges[r] = Range{chunkStart - 2*r, chunkEnd - 2*r}
		start = chunkEnd
	}
	return ranges
}

// RemapRect intersects a global stimulus rectangle with a worker's local
// x-range and shifts it to local coordinates; an empty intersection
// returns an inactive rectangle (spec.md §4.4's Stimulus remap). Y and Z
// coordinates are untouched.
func RemapRect(rect diffuse.Rect, xr Range) diffuse.Rect {
	if !rect.Active {
		return diffuse.Rect{}
	}
	x0 := rect.X0
	if x0 < xr.X0 {
		x0 = xr.X0
	}
	x1 := rect.X1
	if x1 > xr.X1 {
		x1 = xr.X1
	}
	if x1 <= x0 {
		return diffuse.Rect{}
	}
	return diffuse.Rect{
		Active: true,
		X0:     x0 - xr.X0, X1: x1 - xr.X0,
		Y0: rect.Y0, Y1: rect.Y1,
		Z0: rect.Z0, Z1: rect.Z1,
	}
}
