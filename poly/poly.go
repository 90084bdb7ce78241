// poly/poly.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package poly provides the polygon primitives used to describe static
// keep-in/keep-out areas and moving hazards such as weather cells.
package poly

import (
	gomath "math"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// SimplePoly is a simple (non self-intersecting) polygon. The last vertex
// does not repeat the first one. All vertices share a coordinate mode.
type SimplePoly struct {
	Name     string         `json:"name,omitempty"`
	Vertices []geo.Position `json:"vertices"`
}

func MakeSimplePoly(name string, verts ...geo.Position) SimplePoly {
	return SimplePoly{Name: name, Vertices: verts}
}

func (sp SimplePoly) LatLon() bool {
	return len(sp.Vertices) > 0 && sp.Vertices[0].LatLon
}

// IsValid reports whether the polygon has at least three vertices.
func (sp SimplePoly) IsValid() bool {
	return len(sp.Vertices) >= 3
}

// Ring returns the polygon as a closed orb.Ring. Geodetic polygons are
// returned in degrees with longitudes made continuous with the first
// vertex.
func (sp SimplePoly) Ring() orb.Ring {
	if len(sp.Vertices) == 0 {
		return nil
	}
	r := make(orb.Ring, 0, len(sp.Vertices)+1)
	for _, v := range sp.Vertices {
		r = append(r, sp.continuous(v.Point()))
	}
	return append(r, r[0])
}

// continuous shifts a geodetic point's longitude to be within 180 degrees
// of the polygon's first vertex.
func (sp SimplePoly) continuous(p orb.Point) orb.Point {
	if !sp.LatLon() {
		return p
	}
	ref := math.Degrees(sp.Vertices[0].X)
	for p[0]-ref > 180 {
		p[0] -= 360
	}
	for p[0]-ref <= -180 {
		p[0] += 360
	}
	return p
}

// Contains reports whether the horizontal position p is inside the
// polygon; points on the boundary are inside.
func (sp SimplePoly) Contains(p geo.Position) bool {
	if !sp.IsValid() {
		return false
	}
	return planar.RingContains(sp.Ring(), sp.continuous(p.Point()))
}

// Centroid returns the area centroid of the polygon. The altitude of the
// result is the average vertex altitude.
func (sp SimplePoly) Centroid() geo.Position {
	if len(sp.Vertices) == 0 {
		return geo.Position{}
	}

	var alt float64
	for _, v := range sp.Vertices {
		alt += v.Alt
	}
	alt /= float64(len(sp.Vertices))

	c, area := planar.CentroidArea(sp.Ring())
	if area == 0 {
		// Degenerate polygon; fall back to the vertex average.
		var sum [2]float64
		for _, v := range sp.Vertices {
			pt := sp.continuous(v.Point())
			sum = math.Add2f(sum, [2]float64{pt[0], pt[1]})
		}
		c = orb.Point(math.Scale2f(sum, 1/float64(len(sp.Vertices))))
	}
	return geo.FromPoint(c, alt, sp.LatLon()).Normalize()
}

// BoundingCircle returns a circle that encloses the polygon: its center
// is the centroid and its radius (meters) is the distance to the farthest
// vertex.
func (sp SimplePoly) BoundingCircle() (geo.Position, float64) {
	c := sp.Centroid()
	var r float64
	for _, v := range sp.Vertices {
		r = math.Max(r, c.DistanceH(v))
	}
	return c, r
}

// projected returns the vertices in a local metric frame about the
// polygon's first vertex, along with the projection used.
func (sp SimplePoly) projected() ([][2]float64, geo.Projection) {
	proj := geo.NewMercatorProjection(sp.Vertices[0])
	pts := make([][2]float64, len(sp.Vertices))
	for i, v := range sp.Vertices {
		pts[i] = proj.Project(v)
	}
	return pts, proj
}

func (sp SimplePoly) fromProjected(pts [][2]float64, proj geo.Projection) SimplePoly {
	alt := sp.Centroid().Alt
	r := SimplePoly{Name: sp.Name, Vertices: make([]geo.Position, len(pts))}
	for i, p := range pts {
		r.Vertices[i] = proj.Inverse(p, alt)
	}
	return r
}

// ConvexHull returns the convex hull of the polygon's vertices.
func (sp SimplePoly) ConvexHull() SimplePoly {
	if len(sp.Vertices) < 3 {
		return sp
	}
	pts, proj := sp.projected()
	return sp.fromProjected(math.ConvexHull(pts), proj)
}

// Buffered returns a convex polygon that contains every point within d
// meters of the polygon.
func (sp SimplePoly) Buffered(d float64) SimplePoly {
	if len(sp.Vertices) == 0 || d <= 0 {
		return sp.ConvexHull()
	}

	const nsegs = 8
	// Circumscribe the circle about each vertex rather than inscribing it.
	r := d / gomath.Cos(gomath.Pi/nsegs)

	pts, proj := sp.projected()
	var ring [][2]float64
	for _, p := range pts {
		for i := range nsegs {
			s, c := gomath.Sincos(2 * gomath.Pi * float64(i) / nsegs)
			ring = append(ring, math.Add2f(p, [2]float64{r * s, r * c}))
		}
	}
	return sp.fromProjected(math.ConvexHull(ring), proj)
}

// Simplify removes vertices using the Douglas-Peucker algorithm with the
// given tolerance in meters. The result always has at least three
// vertices if the original did.
func (sp SimplePoly) Simplify(tol float64) SimplePoly {
	if len(sp.Vertices) <= 3 {
		return sp
	}

	pts, proj := sp.projected()
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		ring = append(ring, orb.Point(p))
	}
	ring = append(ring, ring[0])

	s := simplify.DouglasPeucker(tol).Ring(ring)
	if len(s) < 4 {
		return sp
	}

	out := make([][2]float64, len(s)-1)
	for i := range out {
		out[i] = [2]float64(s[i])
	}
	return sp.fromProjected(out, proj)
}

// Translate returns the polygon moved dist meters along the given track.
func (sp SimplePoly) Translate(dist, track float64) SimplePoly {
	r := SimplePoly{Name: sp.Name, Vertices: make([]geo.Position, len(sp.Vertices))}
	for i, v := range sp.Vertices {
		r.Vertices[i] = v.Offset(dist, track)
	}
	return r
}
