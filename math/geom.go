// math/geom.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"slices"
)

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float64
}

// EmptyExtent2D returns an Extent2D representing an empty bounding box.
func EmptyExtent2D() Extent2D {
	return Extent2D{
		P0: [2]float64{gomath.Inf(1), gomath.Inf(1)},
		P1: [2]float64{gomath.Inf(-1), gomath.Inf(-1)},
	}
}

// Extent2DFromPoints returns an Extent2D that bounds all of the provided
// points.
func Extent2DFromPoints(pts [][2]float64) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		e = Union(e, p)
	}
	return e
}

func (e Extent2D) IsEmpty() bool {
	return e.P0[0] > e.P1[0] || e.P0[1] > e.P1[1]
}

func (e Extent2D) Width() float64 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float64 {
	return e.P1[1] - e.P0[1]
}

func (e Extent2D) Center() [2]float64 {
	return [2]float64{(e.P0[0] + e.P1[0]) / 2, (e.P0[1] + e.P1[1]) / 2}
}

// Expand expands the extent by the given distance in all directions.
func (e Extent2D) Expand(d float64) Extent2D {
	return Extent2D{
		P0: [2]float64{e.P0[0] - d, e.P0[1] - d},
		P1: [2]float64{e.P1[0] + d, e.P1[1] + d}}
}

// Inside reports whether p is inside the extent, boundary included.
func (e Extent2D) Inside(p [2]float64) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

// Offset returns the extent translated by p.
func (e Extent2D) Offset(p [2]float64) Extent2D {
	return Extent2D{P0: Add2f(e.P0, p), P1: Add2f(e.P1, p)}
}

// Union returns an Extent2D that bounds both the provided extent and the
// provided point.
func Union(e Extent2D, p [2]float64) Extent2D {
	e.P0[0] = Min(e.P0[0], p[0])
	e.P0[1] = Min(e.P0[1], p[1])
	e.P1[0] = Max(e.P1[0], p[0])
	e.P1[1] = Max(e.P1[1], p[1])
	return e
}

///////////////////////////////////////////////////////////////////////////

// ClosestPointOnSegment returns the point on the segment vw closest to p
// along with its parametric position in [0,1]. Degenerate segments return
// v with t=0.
func ClosestPointOnSegment(p, v, w [2]float64) ([2]float64, float64) {
	d := Sub2f(w, v)
	l2 := Dot(d, d)
	if l2 == 0 {
		return v, 0
	}
	t := Clamp(Dot(Sub2f(p, v), d)/l2, 0, 1)
	return Add2f(v, Scale2f(d, t)), t
}

// Return minimum distance between line segment vw and point p
// https://stackoverflow.com/a/1501725
func PointSegmentDistance(p, v, w [2]float64) float64 {
	c, _ := ClosestPointOnSegment(p, v, w)
	return Distance2f(p, c)
}

// PointInPolygon checks whether the given point is inside the given polygon;
// it assumes that the last vertex does not repeat the first one, and so includes
// the edge from pts[len(pts)-1] to pts[0] in its test.
func PointInPolygon(p [2]float64, pts [][2]float64) bool {
	inside := false
	for i := 0; i < len(pts); i++ {
		p0, p1 := pts[i], pts[(i+1)%len(pts)]
		if (p0[1] <= p[1] && p[1] < p1[1]) || (p1[1] <= p[1] && p[1] < p0[1]) {
			x := p0[0] + (p[1]-p0[1])*(p1[0]-p0[0])/(p1[1]-p0[1])
			if x > p[0] {
				inside = !inside
			}
		}
	}
	return inside
}

// ConvexHull returns the convex hull of the points in counter-clockwise
// order. The provided slice is not modified.
// https://en.wikibooks.org/wiki/Algorithm_Implementation/Geometry/Convex_hull/Monotone_chain
func ConvexHull(pts [][2]float64) [][2]float64 {
	n := len(pts)
	if n <= 1 {
		return append([][2]float64{}, pts...)
	}

	points := slices.Clone(pts)
	slices.SortFunc(points, func(a, b [2]float64) int {
		if a[0] == b[0] {
			return cmpFloat(a[1], b[1])
		}
		return cmpFloat(a[0], b[0])
	})

	cross := func(o, a, b [2]float64) float64 {
		return Cross(Sub2f(a, o), Sub2f(b, o))
	}

	lower := make([][2]float64, 0, n)
	for _, p := range points {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([][2]float64, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := points[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func cmpFloat(a, b float64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
