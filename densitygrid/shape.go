// densitygrid/shape.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	gomath "math"

	"github.com/mmp/wxroute/math"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/poly"
)

// SetUniform sets the weight of every cell in the grid to w.
func (g *Grid) SetUniform(w float64) {
	for c := range g.Cells() {
		g.SetWeight(c, w)
	}
}

// SetWeightsInRect sets the weight of the cells in the rectangle with
// corners lower and upper, inclusive.
func (g *Grid) SetWeightsInRect(lower, upper CellIndex, w float64) {
	for x := lower.X; x <= upper.X; x++ {
		for y := lower.Y; y <= upper.Y; y++ {
			g.SetWeight(CellIndex{x, y}, w)
		}
	}
}

// forCellsInside calls f for each cell whose center is inside (or, if
// inside is false, outside) the polygon.
func (g *Grid) forCellsInside(p poly.SimplePoly, inside bool, f func(CellIndex)) {
	for c := range g.Cells() {
		if center, ok := g.Center(c); ok && p.Contains(center) == inside {
			f(c)
		}
	}
}

// SetWeightsInside sets the weight of all cells whose centers are inside
// the polygon.
func (g *Grid) SetWeightsInside(p poly.SimplePoly, w float64) {
	g.forCellsInside(p, true, func(c CellIndex) { g.SetWeight(c, w) })
}

// ClearWeightsOutside removes the weight of all cells whose centers are
// outside the polygon, making them untraversable.
func (g *Grid) ClearWeightsOutside(p poly.SimplePoly) {
	g.forCellsInside(p, false, g.ClearWeight)
}

// AddWeightsInside adds w to the weight of every cell inside the polygon
// that has one.
func (g *Grid) AddWeightsInside(p poly.SimplePoly, w float64) {
	g.forCellsInside(p, true, func(c CellIndex) {
		if wc := g.Weight(c); !gomath.IsInf(wc, 1) {
			g.SetWeight(c, wc+w)
		}
	})
}

// ClearWeightsInside removes the weight of all cells whose centers are
// inside the polygon.
func (g *Grid) ClearWeightsInside(p poly.SimplePoly) {
	g.forCellsInside(p, true, g.ClearWeight)
}

// ProximityWeights weights each cell by factor times its distance (in
// cells) to the nearest cell of ref; cells on ref get weight zero. Unless
// applyToUndefined is set, only cells that already have a weight are
// updated.
func (g *Grid) ProximityWeights(ref []CellIndex, factor float64, applyToUndefined bool) {
	pts := make([][2]float64, 0, len(ref))
	for _, c := range ref {
		pts = append(pts, [2]float64{float64(c.X), float64(c.Y)})
	}
	tree := math.BuildKDTree(pts)
	if tree == nil {
		return
	}

	for c := range g.Cells() {
		if !applyToUndefined && gomath.IsInf(g.Weight(c), 1) {
			continue
		}
		_, d, _ := tree.Nearest([2]float64{float64(c.X), float64(c.Y)})
		g.SetWeight(c, d*factor)
	}
}

// PlanProximityWeights weights cells against the vertices of p: for each
// vertex i after the first, a cell's candidate weight is its distance in
// cells to the vertex's cell plus the number of vertices remaining after
// i, times factor. Each cell gets the smallest candidate. Cells near the
// early part of the route are thus more expensive than ones near its end,
// which discourages paths that skip intended waypoints.
func (g *Grid) PlanProximityWeights(p plan.Plan, factor float64, applyToUndefined bool) {
	var vertices []CellIndex
	var remaining []int
	for i := 1; i < p.Len(); i++ {
		if c, ok := g.CellOf(p.Point(i).Position); ok {
			vertices = append(vertices, c)
			remaining = append(remaining, p.Len()-1-i)
		}
	}
	if len(vertices) == 0 {
		return
	}

	for c := range g.Cells() {
		if !applyToUndefined && gomath.IsInf(g.Weight(c), 1) {
			continue
		}
		w := gomath.Inf(1)
		for i, v := range vertices {
			w = min(w, (c.Distance(v)+float64(remaining[i]))*factor)
		}
		g.SetWeight(c, w)
	}
}

// GridPath returns the cells that p passes through in order, found by
// sampling p at 2*(sizeX+sizeY) evenly spaced times. Samples outside the
// grid are skipped and consecutive repeats are dropped.
func (g *Grid) GridPath(p plan.Plan) []CellIndex {
	if p.Len() < 2 {
		return nil
	}

	t0, t1 := p.FirstTime(), p.LastTime()
	n := 2 * (g.sizeX + g.sizeY)
	var path []CellIndex
	for i := 0; i <= n; i++ {
		pos, ok := p.PositionAt(math.Lerp(float64(i)/float64(n), t0, t1))
		if !ok {
			continue
		}
		if c, ok := g.CellOf(pos); ok && (len(path) == 0 || path[len(path)-1] != c) {
			path = append(path, c)
		}
	}
	return path
}

// MarkPath marks each of the given cells.
func (g *Grid) MarkPath(cells []CellIndex) {
	for _, c := range cells {
		g.SetMark(c, true)
	}
}
