// densitygrid/cost_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	gomath "math"
	"testing"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/poly"
)

func TestObstacleCost(t *testing.T) {
	g := planarGrid(10, 10, [2]float64{0.5, 0.5}, [2]float64{9.5, 9.5})
	g.SetUniform(2)
	g.ClearWeight(CellIndex{9, 0})

	hazard := MakeStaticRegion("hz", geo.MakeXYZ(5.5, 5.5, 0), 1.5, 10, 20)
	model := ObstacleCost{Grid: g, Hazards: []Obstacle{hazard}}

	// Inside the hazard only while it is active.
	if c := model.CostAt(CellIndex{5, 5}, 15); !gomath.IsInf(c, 1) {
		t.Errorf("hazard cell cost %f, expected +Inf", c)
	}
	if c := model.CostAt(CellIndex{6, 6}, 15); !gomath.IsInf(c, 1) {
		t.Errorf("hazard cell cost %f, expected +Inf", c)
	}
	if c := model.CostAt(CellIndex{5, 5}, 25); c != 2 {
		t.Errorf("inactive hazard cost %f, expected 2", c)
	}
	if c := model.CostAt(CellIndex{0, 0}, 15); c != 2 {
		t.Errorf("clear cell cost %f, expected 2", c)
	}
	if c := model.CostAt(CellIndex{9, 0}, 15); !gomath.IsInf(c, 1) {
		t.Errorf("cell without weight cost %f, expected +Inf", c)
	}
	if c := model.CostAt(CellIndex{10, 10}, 15); !gomath.IsInf(c, 1) {
		t.Errorf("cell without a center cost %f, expected +Inf", c)
	}

	// With no containment, containment never makes a cell untraversable.
	for c := range g.Cells() {
		if c == (CellIndex{9, 0}) {
			continue
		}
		if cost := model.CostAt(c, 5); cost != 2 {
			t.Errorf("%v: cost %f with no active hazard and no containment", c, cost)
		}
	}

	// Past the lookahead, everything is free, even cells with no weight.
	end := 12.0
	model.LookaheadEnd = &end
	if c := model.CostAt(CellIndex{5, 5}, 15); c != 0 {
		t.Errorf("cost past lookahead %f, expected 0", c)
	}
	if c := model.CostAt(CellIndex{9, 0}, 15); c != 0 {
		t.Errorf("cost past lookahead %f, expected 0", c)
	}
	if model.LowerBound() != 0 {
		t.Errorf("lower bound with a lookahead should be 0")
	}
}

func TestContainmentCost(t *testing.T) {
	g := planarGrid(10, 10, [2]float64{0.5, 0.5}, [2]float64{9.5, 9.5})
	g.SetUniform(1)

	west := boxRegion("west", 2.5, 5, 5, 10, 0, 100)
	east := boxRegion("east", 7.5, 5, 5, 10, 50, 100)
	model := ObstacleCost{Grid: g, Containment: []Obstacle{west, east}}

	for _, test := range []struct {
		c    CellIndex
		t    float64
		cost float64
	}{
		{CellIndex{1, 1}, 10, 1},
		{CellIndex{8, 1}, 10, gomath.Inf(1)}, // east is not active yet
		{CellIndex{8, 1}, 60, 1},
		{CellIndex{8, 1}, 200, 1}, // no containment active
	} {
		if c := model.CostAt(test.c, test.t); c != test.cost {
			t.Errorf("%v at %f: cost %f, expected %f", test.c, test.t, c, test.cost)
		}
	}

	// A hazard-free cell outside containment is still untraversable and a
	// hazard inside containment still blocks.
	model.Hazards = []Obstacle{MakeStaticRegion("hz", geo.MakeXYZ(1.5, 1.5, 0), 0.5, 0, 100)}
	if c := model.CostAt(CellIndex{8, 1}, 10); !gomath.IsInf(c, 1) {
		t.Errorf("outside containment cost %f", c)
	}
	if c := model.CostAt(CellIndex{1, 1}, 10); !gomath.IsInf(c, 1) {
		t.Errorf("hazard inside containment cost %f", c)
	}
}

func TestRegion(t *testing.T) {
	r := Region{
		Name: "moving",
		Path: plan.MakePlan("moving",
			plan.Waypoint{Position: geo.MakeXYZ(0, 0, 0), Time: 0},
			plan.Waypoint{Position: geo.MakeXYZ(100, 0, 0), Time: 10}),
		Width:  20,
		Height: 10,
	}
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	if !r.Contains(geo.MakeXYZ(55, 4, 0), 5) || r.Contains(geo.MakeXYZ(55, 6, 0), 5) || r.Contains(geo.MakeXYZ(50, 0, 0), 11) {
		t.Errorf("box containment is wrong")
	}

	s := r.StretchOverTime(5, 7)
	if !s.ActiveAt(-5) || !s.ActiveAt(17) || s.ActiveAt(17.5) {
		t.Errorf("stretched region active over [%f, %f]", s.Path.FirstTime(), s.Path.LastTime())
	}
	if !s.Contains(geo.MakeXYZ(100, 0, 0), 15) || r.Path.Len() != 2 {
		t.Errorf("stretched region should hold its final position without changing the original")
	}

	e := r.Expand(2)
	if e.Width != 24 || e.Height != 14 {
		t.Errorf("expanded box is %fx%f", e.Width, e.Height)
	}
	if c := MakeStaticRegion("c", geo.MakeXYZ(0, 0, 0), 3, 0, 1).Expand(1); c.Radius != 4 {
		t.Errorf("expanded radius %f", c.Radius)
	}

	for _, bad := range []Region{
		{Name: "empty", Radius: 1},
		{Name: "no size", Path: r.Path},
		{Name: "negative", Path: r.Path, Radius: -1},
	} {
		if bad.Validate() == nil {
			t.Errorf("%s: expected a validation error", bad.Name)
		}
	}
}

func TestPolyObstacles(t *testing.T) {
	g := planarGrid(20, 20, [2]float64{0.5, 0.5}, [2]float64{19.5, 19.5})
	sq := poly.MakeSimplePoly("sq", geo.MakeXYZ(4, 4, 0), geo.MakeXYZ(8, 4, 0),
		geo.MakeXYZ(8, 8, 0), geo.MakeXYZ(4, 8, 0))
	pp := poly.MakeMovingPolyPath("sq", sq, gomath.Pi/2, 1, 0, 10) // east at 1 m/s

	if !pp.Contains(geo.MakeXYZ(13, 6, 0), 6) || pp.Contains(geo.MakeXYZ(5, 6, 0), 6) {
		t.Errorf("moving polygon containment is wrong")
	}

	est := MakePolyEstimate(pp, g)
	// The bounding circle at t=0 has radius 2*sqrt(2) about (6,6); the
	// corner region just outside the square is covered by the estimate.
	if !est.Contains(geo.MakeXYZ(8.3, 8.3, 0), 0) || pp.Contains(geo.MakeXYZ(8.3, 8.3, 0), 0) {
		t.Errorf("estimate should cover more than the polygon")
	}
	if est.Contains(geo.MakeXYZ(15, 15, 0), 0) || est.ActiveAt(11) {
		t.Errorf("estimate covers too much")
	}

	g.SetUniform(1)
	model := ObstacleCost{Grid: g, Hazards: []Obstacle{pp}}
	if c := model.CostAt(CellIndex{5, 5}, 0); !gomath.IsInf(c, 1) {
		t.Errorf("polygon hazard cost %f", c)
	}
	if c := model.CostAt(CellIndex{5, 5}, 9); c != 1 {
		t.Errorf("polygon has moved on, cost %f", c)
	}
}

func TestSweptCost(t *testing.T) {
	g := planarGrid(10, 10, [2]float64{0.5, 0.5}, [2]float64{9.5, 9.5})
	g.SetUniform(1)
	hz := MakeStaticRegion("hz", geo.MakeXYZ(5.5, 5.5, 0), 1, 10, 20)
	base := ObstacleCost{Grid: g, Hazards: []Obstacle{hz}}

	if c := base.CostAt(CellIndex{5, 5}, 8); c != 1 {
		t.Errorf("unswept cost %f", c)
	}
	swept := SweptCost{Model: base, After: 5}
	if c := swept.CostAt(CellIndex{5, 5}, 8); !gomath.IsInf(c, 1) {
		t.Errorf("swept cost %f, expected +Inf", c)
	}
	swept = SweptCost{Model: base, Before: 5}
	if c := swept.CostAt(CellIndex{5, 5}, 22); !gomath.IsInf(c, 1) {
		t.Errorf("swept cost %f, expected +Inf", c)
	}
	if c := swept.CostAt(CellIndex{0, 0}, 22); c != 1 {
		t.Errorf("swept cost away from the hazard %f", c)
	}
	if swept.LowerBound() != 1 {
		t.Errorf("swept lower bound %f", swept.LowerBound())
	}
}
