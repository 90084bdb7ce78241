// densitygrid/cost.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	gomath "math"
	"slices"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/math"
)

// CostModel gives the cost of occupying a cell at a time. An infinite
// cost means the cell may not be occupied then. Implementations must not
// cache results across calls with different times.
type CostModel interface {
	CostAt(c CellIndex, t float64) float64
}

// lowerBounder is implemented by cost models that can bound their
// smallest possible cost; the search uses it to scale its heuristic.
type lowerBounder interface {
	LowerBound() float64
}

// StaticCost is the grid's base weights, independent of time.
type StaticCost struct {
	Grid *Grid
}

func (sc StaticCost) CostAt(c CellIndex, t float64) float64 {
	return sc.Grid.Weight(c)
}

func (sc StaticCost) LowerBound() float64 {
	return sc.Grid.MinWeight()
}

// ObstacleCost adds moving hazards and containment regions to the grid's
// base weights. A cell whose center is inside any active hazard costs
// +Inf. If Containment is non-empty, a cell must also be inside at least
// one active containment region; when none are active, any cell is
// acceptable. Past LookaheadEnd, if set, all cells are free.
type ObstacleCost struct {
	Grid         *Grid
	Hazards      []Obstacle
	Containment  []Obstacle
	LookaheadEnd *float64
}

func (oc ObstacleCost) CostAt(c CellIndex, t float64) float64 {
	if oc.LookaheadEnd != nil && t > *oc.LookaheadEnd {
		return 0
	}

	w := oc.Grid.Weight(c)
	if gomath.IsInf(w, 1) {
		return w
	}
	center, ok := oc.Grid.Center(c)
	if !ok {
		return gomath.Inf(1)
	}

	var cost float64
	for _, h := range oc.Hazards {
		if h.ActiveAt(t) && h.Contains(center, t) {
			cost = gomath.Inf(1)
			break
		}
	}

	// Containment is evaluated after hazards and overrides their result.
	if len(oc.Containment) > 0 && !oc.within(center, t) {
		cost = gomath.Inf(1)
	}

	return w + cost
}

func (oc ObstacleCost) within(p geo.Position, t float64) bool {
	active := false
	for _, r := range oc.Containment {
		if !r.ActiveAt(t) {
			continue
		}
		active = true
		if r.Contains(p, t) {
			return true
		}
	}
	return !active
}

func (oc ObstacleCost) LowerBound() float64 {
	if oc.LookaheadEnd != nil {
		return 0
	}
	return oc.Grid.MinWeight()
}

// SweptCost evaluates Model over the window [t-Before, t+After] and
// returns the largest cost found, so that a cell is avoided if it is
// blocked at any time near the estimated arrival time.
type SweptCost struct {
	Model   CostModel
	Before  float64
	After   float64
	Samples int // per window; defaults to 5
}

func (sc SweptCost) CostAt(c CellIndex, t float64) float64 {
	if sc.Before <= 0 && sc.After <= 0 {
		return sc.Model.CostAt(c, t)
	}

	n := sc.Samples
	if n < 2 {
		n = 5
	}
	times := make([]float64, 0, n+1)
	for i := range n {
		times = append(times, math.Lerp(float64(i)/float64(n-1), t-sc.Before, t+sc.After))
	}
	if !slices.Contains(times, t) {
		times = append(times, t)
	}

	cost := 0.0
	for _, ts := range times {
		cost = max(cost, sc.Model.CostAt(c, ts))
		if gomath.IsInf(cost, 1) {
			break
		}
	}
	return cost
}

func (sc SweptCost) LowerBound() float64 {
	// The maximum over the window is at least the model's bound.
	if lb, ok := sc.Model.(lowerBounder); ok {
		return lb.LowerBound()
	}
	return 0
}
