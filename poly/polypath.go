// poly/polypath.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package poly

import (
	"fmt"
	"slices"

	"github.com/mmp/wxroute/geo"
)

// PolyPath is a polygon that moves and deforms over time: Polys[i] is its
// shape at Times[i] and shapes between are interpolated vertex by vertex.
// All polygons must have the same number of vertices. A PolyPath is only
// active between its first and last times.
type PolyPath struct {
	Name  string       `json:"name,omitempty"`
	Polys []SimplePoly `json:"polys"`
	Times []float64    `json:"times"`
}

// MakeStaticPolyPath returns a PolyPath for a polygon that does not move
// and is active over [t0, t1].
func MakeStaticPolyPath(name string, p SimplePoly, t0, t1 float64) PolyPath {
	return PolyPath{Name: name, Polys: []SimplePoly{p, p}, Times: []float64{t0, t1}}
}

// MakeMovingPolyPath returns a PolyPath for a polygon that is at p at time
// t0 and then translates along the given track (radians) at speed (m/s)
// until t1.
func MakeMovingPolyPath(name string, p SimplePoly, track, speed, t0, t1 float64) PolyPath {
	return PolyPath{
		Name:  name,
		Polys: []SimplePoly{p, p.Translate(speed*(t1-t0), track)},
		Times: []float64{t0, t1},
	}
}

// Validate checks the structural invariants of the path.
func (pp PolyPath) Validate() error {
	if len(pp.Polys) == 0 {
		return fmt.Errorf("%s: no polygons", pp.Name)
	}
	if len(pp.Polys) != len(pp.Times) {
		return fmt.Errorf("%s: %d polygons but %d times", pp.Name, len(pp.Polys), len(pp.Times))
	}
	if !slices.IsSorted(pp.Times) {
		return fmt.Errorf("%s: times must be non-decreasing", pp.Name)
	}
	for i, p := range pp.Polys {
		if !p.IsValid() {
			return fmt.Errorf("%s: polygon %d has fewer than 3 vertices", pp.Name, i)
		}
		if len(p.Vertices) != len(pp.Polys[0].Vertices) {
			return fmt.Errorf("%s: polygon %d has %d vertices, expected %d", pp.Name, i,
				len(p.Vertices), len(pp.Polys[0].Vertices))
		}
	}
	return nil
}

func (pp PolyPath) FirstTime() float64 { return pp.Times[0] }
func (pp PolyPath) LastTime() float64  { return pp.Times[len(pp.Times)-1] }

func (pp PolyPath) ActiveAt(t float64) bool {
	return len(pp.Times) > 0 && t >= pp.FirstTime() && t <= pp.LastTime()
}

// PositionAt returns the polygon's shape at time t; it returns false if
// the path is not active at t.
func (pp PolyPath) PositionAt(t float64) (SimplePoly, bool) {
	if !pp.ActiveAt(t) {
		return SimplePoly{}, false
	}

	// Index of the first time > t; the polygon is between i-1 and i.
	i, _ := slices.BinarySearchFunc(pp.Times, t, func(a, b float64) int {
		if a <= b {
			return -1
		}
		return 1
	})
	if i == 0 {
		return pp.Polys[0], true
	}
	if i == len(pp.Times) {
		return pp.Polys[len(pp.Polys)-1], true
	}

	t0, t1 := pp.Times[i-1], pp.Times[i]
	p0, p1 := pp.Polys[i-1], pp.Polys[i]
	if t1 == t0 {
		return p1, true
	}
	f := (t - t0) / (t1 - t0)
	r := SimplePoly{Name: pp.Name, Vertices: make([]geo.Position, len(p0.Vertices))}
	for j := range p0.Vertices {
		r.Vertices[j] = p0.Vertices[j].Interpolate(p1.Vertices[j], f)
	}
	return r, true
}

// Contains reports whether the horizontal position p is inside the
// polygon at time t.
func (pp PolyPath) Contains(p geo.Position, t float64) bool {
	sp, ok := pp.PositionAt(t)
	return ok && sp.Contains(p)
}

// StretchOverTime returns a copy of the path that holds its initial shape
// for before seconds ahead of its first time and its final shape for
// after seconds past its last time.
func (pp PolyPath) StretchOverTime(before, after float64) PolyPath {
	r := PolyPath{Name: pp.Name}
	if before > 0 {
		r.Polys = append(r.Polys, pp.Polys[0])
		r.Times = append(r.Times, pp.FirstTime()-before)
	}
	r.Polys = append(r.Polys, pp.Polys...)
	r.Times = append(r.Times, pp.Times...)
	if after > 0 {
		r.Polys = append(r.Polys, pp.Polys[len(pp.Polys)-1])
		r.Times = append(r.Times, pp.LastTime()+after)
	}
	return r
}

// Buffered returns a view of the path whose shape at each time is the
// buffered convex hull of the interpolated polygon. Hulls may have
// differing vertex counts, so they are computed at query time.
func (pp PolyPath) Buffered(d float64) BufferedPolyPath {
	return BufferedPolyPath{Path: pp, Distance: d}
}

// BufferedPolyPath is a PolyPath whose shape at each time is expanded by
// a fixed distance.
type BufferedPolyPath struct {
	Path     PolyPath
	Distance float64
}

func (bp BufferedPolyPath) ActiveAt(t float64) bool { return bp.Path.ActiveAt(t) }

func (bp BufferedPolyPath) PositionAt(t float64) (SimplePoly, bool) {
	sp, ok := bp.Path.PositionAt(t)
	if !ok {
		return sp, false
	}
	return sp.Buffered(bp.Distance), true
}

func (bp BufferedPolyPath) Contains(p geo.Position, t float64) bool {
	sp, ok := bp.PositionAt(t)
	return ok && sp.Contains(p)
}
