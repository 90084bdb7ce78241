// densitygrid/grid.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package densitygrid implements route planning over a discretized cost
// grid: base costs are shaped from polygons and a reference route, an A*
// search runs against a time-dependent cost model that accounts for moving
// hazards and containment regions, and the resulting cell path is
// simplified and converted back to a timed trajectory.
package densitygrid

import (
	"fmt"
	"iter"
	gomath "math"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/math"
	"github.com/mmp/wxroute/plan"
)

// CellIndex identifies a grid cell; X grows east (or in +x) and Y grows
// north (or in +y).
type CellIndex struct {
	X, Y int
}

func (c CellIndex) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func (c CellIndex) Add(dx, dy int) CellIndex {
	return CellIndex{X: c.X + dx, Y: c.Y + dy}
}

// Chebyshev returns the number of 8-connected steps between c and d.
func (c CellIndex) Chebyshev(d CellIndex) int {
	return max(math.Abs(c.X-d.X), math.Abs(c.Y-d.Y))
}

// Distance returns the Euclidean distance between c and d in cells.
func (c CellIndex) Distance(d CellIndex) float64 {
	return gomath.Hypot(float64(c.X-d.X), float64(c.Y-d.Y))
}

// Grid is a rectangular discretization of a region. Corner (x, y) is the
// south-west corner of cell (x, y); corners exist for 0 <= x <= sizeX and
// 0 <= y <= sizeY so that every cell with x < sizeX and y < sizeY has both
// its SW and NE corners.
//
// Grid is not safe for concurrent use.
type Grid struct {
	geodetic bool
	cellSize float64 // native units: meters, or radians when geodetic
	cellDist float64 // meters
	sizeX    int
	sizeY    int

	origin [2]float64 // native coordinates of corner (0,0) before snapping
	offset [2]float64 // applied by SnapToStart

	corners  [][2]float64
	weights  []float64
	searched []float64
	marked   []bool
	bounds   geo.BoundingRect

	minSearched, maxSearched float64

	start     geo.Position
	startTime float64
	end       geo.Position
}

// Build returns a grid covering bounds plus bufferCells cells on each side
// with cells of cellSize meters. In geodetic mode the native cell size is
// cellSize/EarthRadius radians in both latitude and longitude. cellSize
// must be positive; callers are expected to have checked.
func Build(bounds geo.Rect, start plan.Waypoint, end geo.Position, bufferCells int, cellSize float64, geodetic bool) *Grid {
	native := cellSize
	if geodetic {
		native = cellSize / geo.EarthRadius
	}

	minX, maxX := min(bounds.Min.X, bounds.Max.X), max(bounds.Min.X, bounds.Max.X)
	minY, maxY := min(bounds.Min.Y, bounds.Max.Y), max(bounds.Min.Y, bounds.Max.Y)

	spanX := maxX - minX
	if geodetic && math.Sign(minX) != math.Sign(maxX) && spanX > gomath.Pi {
		// The region straddles the antimeridian; it runs east from maxX
		// across the seam to minX.
		spanX = 2*gomath.Pi - spanX
		minX = maxX
	}

	sizeX := int(gomath.Ceil(spanX/native)) + 2*bufferCells + 1
	sizeY := int(gomath.Ceil((maxY-minY)/native)) + 2*bufferCells + 1

	g := newGrid([2]float64{minX - float64(bufferCells)*native, minY - float64(bufferCells)*native},
		sizeX, sizeY, native, cellSize, geodetic)
	g.start, g.startTime, g.end = start.Position, start.Time, end
	return g
}

func newGrid(origin [2]float64, sizeX, sizeY int, native, cellDist float64, geodetic bool) *Grid {
	n := (sizeX + 1) * (sizeY + 1)
	g := &Grid{
		geodetic: geodetic,
		cellSize: native,
		cellDist: cellDist,
		sizeX:    sizeX,
		sizeY:    sizeY,
		origin:   origin,
		corners:  make([][2]float64, n),
		weights:  make([]float64, n),
		searched: make([]float64, n),
		marked:   make([]bool, n),
	}
	g.layoutCorners()
	g.ClearWeights()
	g.ClearSearchedWeights()
	return g
}

func (g *Grid) layoutCorners() {
	g.bounds = geo.EmptyBoundingRect(g.geodetic)
	x0, y0 := g.origin[0]+g.offset[0], g.origin[1]+g.offset[1]
	for x := 0; x <= g.sizeX; x++ {
		for y := 0; y <= g.sizeY; y++ {
			p := geo.Position{
				X:      x0 + float64(x)*g.cellSize,
				Y:      y0 + float64(y)*g.cellSize,
				LatLon: g.geodetic,
			}.Normalize()
			g.corners[g.index(CellIndex{x, y})] = p.XY()
			g.bounds.Add(p)
		}
	}
}

func (g *Grid) index(c CellIndex) int {
	return c.X*(g.sizeY+1) + c.Y
}

func (g *Grid) cellAt(i int) CellIndex {
	return CellIndex{X: i / (g.sizeY + 1), Y: i % (g.sizeY + 1)}
}

// Retarget sets new planning endpoints, undoes any snapping and clears
// all weights, searched weights and marks, leaving the grid as if it had
// just been built for the new endpoints.
func (g *Grid) Retarget(start plan.Waypoint, end geo.Position) {
	g.start, g.startTime, g.end = start.Position, start.Time, end
	if g.offset != [2]float64{} {
		g.offset = [2]float64{}
		g.layoutCorners()
	}
	g.ClearWeights()
	g.ClearSearchedWeights()
	g.ClearMarks()
}

// Contains reports whether c has a corner.
func (g *Grid) Contains(c CellIndex) bool {
	return c.X >= 0 && c.X <= g.sizeX && c.Y >= 0 && c.Y <= g.sizeY
}

// InRange reports whether c is a full cell, i.e. it has a center.
func (g *Grid) InRange(c CellIndex) bool {
	return c.X >= 0 && c.X < g.sizeX && c.Y >= 0 && c.Y < g.sizeY
}

// Cells returns an iterator over all full cells in the grid.
func (g *Grid) Cells() iter.Seq[CellIndex] {
	return func(yield func(CellIndex) bool) {
		for x := 0; x < g.sizeX; x++ {
			for y := 0; y < g.sizeY; y++ {
				if !yield(CellIndex{x, y}) {
					return
				}
			}
		}
	}
}

func (g *Grid) Size() (int, int)         { return g.sizeX, g.sizeY }
func (g *Grid) Geodetic() bool           { return g.geodetic }
func (g *Grid) CellSize() float64        { return g.cellDist }
func (g *Grid) NativeCellSize() float64  { return g.cellSize }
func (g *Grid) Start() geo.Position      { return g.start }
func (g *Grid) StartTime() float64       { return g.startTime }
func (g *Grid) End() geo.Position        { return g.end }
func (g *Grid) Bounds() geo.BoundingRect { return g.bounds }

// CellOf returns the cell containing p; it returns false if p is outside
// the grid's bounds. Positions on the grid's north or east edge map to
// an index with no center.
func (g *Grid) CellOf(p geo.Position) (CellIndex, bool) {
	if p.LatLon != g.geodetic || !g.bounds.Contains(p) {
		return CellIndex{}, false
	}
	p = g.bounds.Denormalize(p)
	return CellIndex{
		X: int(gomath.Floor((p.X - g.bounds.MinX()) / g.cellSize)),
		Y: int(gomath.Floor((p.Y - g.bounds.MinY()) / g.cellSize)),
	}, true
}

// Corner returns the south-west corner of c.
func (g *Grid) Corner(c CellIndex) (geo.Position, bool) {
	if !g.Contains(c) {
		return geo.Position{}, false
	}
	xy := g.corners[g.index(c)]
	return geo.Position{X: xy[0], Y: xy[1], LatLon: g.geodetic}, true
}

// Center returns the midpoint of c's south-west and north-east corners.
func (g *Grid) Center(c CellIndex) (geo.Position, bool) {
	if !g.InRange(c) {
		return geo.Position{}, false
	}
	sw, ne := g.corners[g.index(c)], g.corners[g.index(c.Add(1, 1))]
	d := math.Sub2f(ne, sw)
	if g.geodetic {
		d[0] = math.NormalizeAngle(d[0])
	}
	p := geo.Position{LatLon: g.geodetic}
	return p.WithXY(math.Add2f(sw, math.Scale2f(d, 0.5))), true
}

// SnapToStart shifts all corners so that the start position lies at the
// center of its cell. It does nothing if the start is outside the grid.
func (g *Grid) SnapToStart() {
	c, ok := g.CellOf(g.start)
	if !ok {
		return
	}
	center, ok := g.Center(c)
	if !ok {
		return
	}

	d := math.Sub2f(g.start.XY(), center.XY())
	if g.geodetic {
		d[0] = math.NormalizeAngle(d[0])
	}
	g.offset = math.Add2f(g.offset, d)
	g.layoutCorners()
}

///////////////////////////////////////////////////////////////////////////
// Per-cell state

// Weight returns the base weight of c, or +Inf if it has none.
func (g *Grid) Weight(c CellIndex) float64 {
	if !g.Contains(c) {
		return gomath.Inf(1)
	}
	return g.weights[g.index(c)]
}

// SetWeight sets the base weight of c. Negative weights and cells outside
// the grid are ignored.
func (g *Grid) SetWeight(c CellIndex, w float64) {
	if g.Contains(c) && w >= 0 {
		g.weights[g.index(c)] = w
	}
}

func (g *Grid) ClearWeight(c CellIndex) {
	if g.Contains(c) {
		g.weights[g.index(c)] = gomath.Inf(1)
	}
}

func (g *Grid) ClearWeights() {
	for i := range g.weights {
		g.weights[i] = gomath.Inf(1)
	}
}

// MinWeight returns the smallest finite base weight in the grid, or 0 if
// there are none.
func (g *Grid) MinWeight() float64 {
	m := gomath.Inf(1)
	for c := range g.Cells() {
		m = min(m, g.weights[g.index(c)])
	}
	if gomath.IsInf(m, 1) {
		return 0
	}
	return m
}

// SearchedWeight returns the cost recorded for c by the last search, or
// -Inf if it was not reached.
func (g *Grid) SearchedWeight(c CellIndex) float64 {
	if !g.Contains(c) {
		return gomath.Inf(-1)
	}
	return g.searched[g.index(c)]
}

func (g *Grid) SetSearchedWeight(c CellIndex, w float64) {
	if !g.Contains(c) || w < 0 {
		return
	}
	g.searched[g.index(c)] = w
	if math.IsFinite(w) {
		g.minSearched = min(g.minSearched, w)
		g.maxSearched = max(g.maxSearched, w)
	}
}

func (g *Grid) ClearSearchedWeights() {
	for i := range g.searched {
		g.searched[i] = gomath.Inf(-1)
	}
	g.minSearched, g.maxSearched = gomath.Inf(1), gomath.Inf(-1)
}

// SearchedRange returns the range of finite searched weights; it returns
// false if there are none.
func (g *Grid) SearchedRange() (float64, float64, bool) {
	return g.minSearched, g.maxSearched, g.minSearched <= g.maxSearched
}

func (g *Grid) Marked(c CellIndex) bool {
	return g.Contains(c) && g.marked[g.index(c)]
}

func (g *Grid) SetMark(c CellIndex, m bool) {
	if g.Contains(c) {
		g.marked[g.index(c)] = m
	}
}

func (g *Grid) ClearMarks() {
	clear(g.marked)
}

// Marks returns the marked cells ordered by index.
func (g *Grid) Marks() []CellIndex {
	var m []CellIndex
	for i, mk := range g.marked {
		if mk {
			m = append(m, g.cellAt(i))
		}
	}
	return m
}

func (g *Grid) String() string {
	return fmt.Sprintf("DensityGrid[start=%s end=%s size=%dx%d cell=%.1fm geodetic=%v bounds=%v]",
		g.start, g.end, g.sizeX, g.sizeY, g.cellDist, g.geodetic, g.bounds.Rect())
}
