// densitygrid/obstacle.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	"fmt"
	gomath "math"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/math"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/poly"
)

// Obstacle is a region of space that may move over time. It has no effect
// at times when it is not active. poly.PolyPath and poly.BufferedPolyPath
// are Obstacles that test containment against the full moving polygon.
type Obstacle interface {
	ActiveAt(t float64) bool
	Contains(p geo.Position, t float64) bool
}

var (
	_ Obstacle = Region{}
	_ Obstacle = PolyEstimate{}
	_ Obstacle = poly.PolyPath{}
	_ Obstacle = poly.BufferedPolyPath{}
)

// Region is a named moving area centered on a timed trajectory. It is
// either a circle of the given radius or, if Radius is zero, an
// axis-aligned box of Width by Height meters. Distances are in meters.
type Region struct {
	Name   string    `json:"name,omitempty"`
	Path   plan.Plan `json:"path"`
	Radius float64   `json:"radius,omitempty"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
}

// MakeStaticRegion returns a circular region that stays at p over [t0, t1].
func MakeStaticRegion(name string, p geo.Position, radius, t0, t1 float64) Region {
	return Region{
		Name:   name,
		Path:   plan.MakePlan(name, plan.Waypoint{Position: p, Time: t0}, plan.Waypoint{Position: p, Time: t1}),
		Radius: radius,
	}
}

func (r Region) Validate() error {
	if r.Path.IsEmpty() {
		return fmt.Errorf("%s: region has no trajectory", r.Name)
	}
	if r.Radius < 0 || r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("%s: region dimensions must be non-negative", r.Name)
	}
	if r.Radius == 0 && (r.Width == 0 || r.Height == 0) {
		return fmt.Errorf("%s: region must have a radius or a width and height", r.Name)
	}
	return nil
}

func (r Region) ActiveAt(t float64) bool {
	return r.Path.TimeInPlan(t)
}

func (r Region) Contains(p geo.Position, t float64) bool {
	center, ok := r.Path.PositionAt(t)
	if !ok || center.LatLon != p.LatLon {
		return false
	}
	if r.Radius > 0 {
		return center.DistanceH(p) <= r.Radius
	}
	d := geo.NewLocalProjection(center).Project(p)
	return math.Abs(d[0]) <= r.Width/2 && math.Abs(d[1]) <= r.Height/2
}

// StretchOverTime returns a copy of the region that is also active for
// before seconds ahead of its trajectory, at its initial position, and for
// after seconds past it, at its final position.
func (r Region) StretchOverTime(before, after float64) Region {
	if r.Path.IsEmpty() {
		return r
	}
	r.Path = r.Path.Clone()
	first, last := r.Path.First(), r.Path.Last()
	if before > 0 {
		r.Path.Add(plan.Waypoint{Position: first.Position, Time: first.Time - before})
	}
	if after > 0 {
		r.Path.Add(plan.Waypoint{Position: last.Position, Time: last.Time + after})
	}
	return r
}

// Expand returns the region grown by d meters on every side.
func (r Region) Expand(d float64) Region {
	if r.Radius > 0 {
		r.Radius += d
	} else {
		r.Width += 2 * d
		r.Height += 2 * d
	}
	return r
}

// ExpandFactor is the multiple of the cell size by which regions are grown
// so that a cell whose center is just outside a region is still avoided
// when any part of it overlaps the region.
const ExpandFactor = 0.71

// PolyEstimate approximates a moving polygon by its bounding circle,
// grown by Margin meters. It is much cheaper to evaluate than the polygon
// itself and errs on the side of avoiding too much.
type PolyEstimate struct {
	Path   poly.PolyPath
	Margin float64
}

// MakePolyEstimate returns an estimate of pp whose margin is half the
// diagonal of one of g's cells.
func MakePolyEstimate(pp poly.PolyPath, g *Grid) PolyEstimate {
	return PolyEstimate{Path: pp, Margin: g.CellSize() * gomath.Sqrt2 / 2}
}

func (pe PolyEstimate) ActiveAt(t float64) bool {
	return pe.Path.ActiveAt(t)
}

func (pe PolyEstimate) Contains(p geo.Position, t float64) bool {
	sp, ok := pe.Path.PositionAt(t)
	if !ok {
		return false
	}
	c, r := sp.BoundingCircle()
	return c.DistanceH(p) <= r+pe.Margin
}
