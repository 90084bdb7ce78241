// geo/bounds.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"

	"github.com/mmp/wxroute/math"
)

// Rect is a region given by two opposite corners, as supplied by callers.
// For geodetic rects, the corners' longitudes are taken as given; see
// densitygrid.Build for how a span across the antimeridian is handled.
type Rect struct {
	Min Position `json:"min"`
	Max Position `json:"max"`
}

// BoundingRect accumulates the bounds of a set of positions. For geodetic
// positions, longitudes are denormalized against the longitude of the
// first position added (the reference meridian) so that a set of points
// straddling the antimeridian has a contiguous extent.
type BoundingRect struct {
	ext    math.Extent2D
	latlon bool
	ref    float64
	empty  bool
}

func EmptyBoundingRect(latlon bool) BoundingRect {
	return BoundingRect{ext: math.EmptyExtent2D(), latlon: latlon, empty: true}
}

func MakeBoundingRect(pts ...Position) BoundingRect {
	latlon := len(pts) > 0 && pts[0].LatLon
	b := EmptyBoundingRect(latlon)
	for _, p := range pts {
		b.Add(p)
	}
	return b
}

func (b *BoundingRect) Add(p Position) {
	if b.empty {
		b.ref = p.X
		b.empty = false
	}
	b.ext = math.Union(b.ext, b.Denormalize(p).XY())
}

// Denormalize shifts a geodetic position's longitude by a multiple of 2pi
// so that it lies within pi of the reference meridian.
func (b BoundingRect) Denormalize(p Position) Position {
	if !b.latlon || b.empty {
		return p
	}
	for p.X-b.ref > gomath.Pi {
		p.X -= 2 * gomath.Pi
	}
	for p.X-b.ref <= -gomath.Pi {
		p.X += 2 * gomath.Pi
	}
	return p
}

// Contains reports whether p lies inside the rect, boundary included.
func (b BoundingRect) Contains(p Position) bool {
	return !b.empty && b.ext.Inside(b.Denormalize(p).XY())
}

// Translate returns the rect shifted by the native offset d.
func (b BoundingRect) Translate(d [2]float64) BoundingRect {
	b.ext = b.ext.Offset(d)
	b.ref += d[0]
	return b
}

func (b BoundingRect) IsEmpty() bool { return b.empty }
func (b BoundingRect) MinX() float64 { return b.ext.P0[0] }
func (b BoundingRect) MinY() float64 { return b.ext.P0[1] }
func (b BoundingRect) MaxX() float64 { return b.ext.P1[0] }
func (b BoundingRect) MaxY() float64 { return b.ext.P1[1] }

// Extent returns the denormalized native extent.
func (b BoundingRect) Extent() math.Extent2D { return b.ext }

// Rect returns the corners of the bounding rect as positions.
func (b BoundingRect) Rect() Rect {
	return Rect{
		Min: Position{X: b.ext.P0[0], Y: b.ext.P0[1], LatLon: b.latlon}.Normalize(),
		Max: Position{X: b.ext.P1[0], Y: b.ext.P1[1], LatLon: b.latlon}.Normalize(),
	}
}
