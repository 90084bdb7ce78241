// densitygrid/simplify_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	gomath "math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/plan"
)

func cells(xy ...int) []CellIndex {
	var c []CellIndex
	for i := 0; i+1 < len(xy); i += 2 {
		c = append(c, CellIndex{xy[i], xy[i+1]})
	}
	return c
}

func TestThin(t *testing.T) {
	for _, test := range []struct {
		name     string
		path     []CellIndex
		expected []CellIndex
	}{
		{"Empty", nil, nil},
		{"Single", cells(3, 3), cells(3, 3)},
		{"Straight", cells(0, 0, 1, 0, 2, 0, 3, 0), cells(0, 0, 3, 0)},
		{"Turns", cells(0, 0, 1, 0, 2, 0, 3, 1, 4, 2, 4, 3), cells(0, 0, 2, 0, 4, 2, 4, 3)},
		{"Staircase", cells(0, 0, 1, 0, 1, 1, 2, 1), cells(0, 0, 1, 0, 1, 1, 2, 1)},
		{"Repeats", cells(1, 1, 1, 1, 1, 1), cells(1, 1, 1, 1)},
	} {
		t.Run(test.name, func(t *testing.T) {
			if th := Thin(test.path); !slices.Equal(th, test.expected) {
				t.Errorf("Thin(%v) = %v, expected %v", test.path, th, test.expected)
			}
		})
	}
}

func TestThinIdempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(17, 42))
	for range 200 {
		path := cells(0, 0)
		n := 2 + r.IntN(60)
		for range n {
			last := path[len(path)-1]
			if r.IntN(10) == 0 {
				path = append(path, last) // occasional repeat
			} else if r.IntN(3) == 0 && len(path) > 1 {
				// continue in the same direction
				prev := path[len(path)-2]
				path = append(path, last.Add(last.X-prev.X, last.Y-prev.Y))
			} else {
				path = append(path, last.Add(r.IntN(3)-1, r.IntN(3)-1))
			}
		}

		th := Thin(path)
		if th2 := Thin(th); !slices.Equal(th, th2) {
			t.Fatalf("Thin is not idempotent for %v:\n%v\n%v", path, th, th2)
		}
		if th[0] != path[0] || th[len(th)-1] != path[len(path)-1] {
			t.Fatalf("Thin changed the endpoints of %v: %v", path, th)
		}
	}
}

func TestReduce(t *testing.T) {
	mkpath := func(c []CellIndex) Path {
		return Path{Cells: c, Times: make([]float64, len(c))}
	}

	stairs := mkpath(cells(0, 0, 1, 0, 1, 1, 2, 1, 2, 2, 3, 2, 3, 3))
	if r := Reduce(stairs, Corridor(stairs, nil)); !slices.Equal(r, cells(0, 0, 3, 3)) {
		t.Errorf("staircase reduced to %v", r)
	}

	ell := mkpath(cells(0, 0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 5, 1, 5, 2, 5, 3, 5, 4, 5, 5))
	if r := Reduce(ell, Corridor(ell, nil)); !slices.Equal(r, cells(0, 0, 5, 0, 5, 5)) {
		t.Errorf("L reduced to %v", r)
	}

	short := mkpath(cells(0, 0, 1, 1))
	if r := Reduce(short, Corridor(short, nil)); !slices.Equal(r, cells(0, 0, 1, 1)) {
		t.Errorf("two-cell path reduced to %v", r)
	}

	// A corridor cell that is blocked at the time the shortcut would pass
	// through it keeps the intermediate point.
	g := planarGrid(5, 5, [2]float64{0.5, 0.5}, [2]float64{3.5, 3.5})
	g.SetUniform(1)
	timed := Path{Cells: stairs.Cells, Times: []float64{0, 1, 2, 3, 4, 5, 6}}
	blocked := ObstacleCost{Grid: g, Hazards: []Obstacle{MakeStaticRegion("hz", geo.MakeXYZ(2.5, 2.5, 0), 0.1, 0, 3.5)}}
	if r := Reduce(timed, Corridor(timed, blocked)); len(r) <= 2 {
		t.Errorf("expected the blocked corridor to prevent the shortcut, got %v", r)
	}
}

func TestToTrajectory(t *testing.T) {
	mkgrid := func(start geo.Position, t0 float64, end geo.Position) *Grid {
		bounds := geo.Rect{Min: geo.MakeXYZ(0, 0, 0), Max: geo.MakeXYZ(9, 9, 0)}
		return Build(bounds, plan.Waypoint{Position: start, Time: t0}, end, 0, 1, false)
	}

	t.Run("Straight", func(t *testing.T) {
		g := mkgrid(geo.MakeXYZ(0.5, 0.5, 100), 10, geo.MakeXYZ(9.5, 0.5, 50))
		traj := ToTrajectory(g, cells(0, 0, 5, 0, 9, 0), nil, 2, 2)

		if traj.Len() != 3 {
			t.Fatalf("expected 3 waypoints, got %s", traj)
		}
		mid := traj.Point(1)
		if mid.Time != 12.5 || mid.Position.Alt != 105 || mid.Position.X != 5.5 || mid.Position.Y != 0.5 {
			t.Errorf("unexpected interior waypoint %s", mid)
		}
		if traj.First() != (plan.Waypoint{Position: g.Start(), Time: 10}) {
			t.Errorf("first waypoint %s is not the start", traj.First())
		}
		if traj.Last().Position != g.End() || traj.Last().Time != 14.5 {
			t.Errorf("last waypoint %s is not the end at 14.5", traj.Last())
		}
	})

	t.Run("KinkRemoved", func(t *testing.T) {
		g := mkgrid(geo.MakeXYZ(0.5, 0.5, 0), 0, geo.MakeXYZ(3.5, 4.5, 0))
		reduced := cells(0, 0, 1, 1, 9, 9, 3, 4)
		pre := cells(0, 0, 1, 1, 3, 3, 9, 9, 3, 4)
		traj := ToTrajectory(g, reduced, pre, 1, 0)

		if traj.Len() != 3 {
			t.Fatalf("expected the overshoot to be removed: %s", traj)
		}
		if p := traj.Point(1).Position; p.X != 1.5 || p.Y != 1.5 {
			t.Errorf("unexpected interior point %s", p)
		}
		if expected := gomath.Sqrt2 + gomath.Sqrt(13); gomath.Abs(traj.LastTime()-expected) > 1e-9 {
			t.Errorf("end time %f, expected %f", traj.LastTime(), expected)
		}
	})

	t.Run("KinkKept", func(t *testing.T) {
		g := mkgrid(geo.MakeXYZ(0.5, 0.5, 0), 0, geo.MakeXYZ(9.5, 0.5, 0))
		reduced := cells(0, 0, 4, 4, 8, 4, 9, 0)
		pre := cells(0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 4, 6, 4, 7, 4, 8, 4, 9, 3, 9, 2, 9, 1, 9, 0)
		traj := ToTrajectory(g, reduced, pre, 1, 0)

		// The nearest point to the pivot is the corner itself, which is
		// too far from the direct leg to the end to drop.
		if traj.Len() != 4 {
			t.Fatalf("expected 4 waypoints: %s", traj)
		}
		if p := traj.Point(2).Position; p.X != 8.5 || p.Y != 4.5 {
			t.Errorf("corner point is %s", p)
		}
		if traj.Last().Position != g.End() {
			t.Errorf("last point %s is not the end", traj.Last())
		}
	})
}

func TestSearchToTrajectory(t *testing.T) {
	g := planarGrid(20, 20, [2]float64{2.5, 10.5}, [2]float64{18.5, 10.5})
	g.SetUniform(1)
	model := ObstacleCost{Grid: g, Hazards: []Obstacle{MakeStaticRegion("cell", geo.MakeXYZ(10.5, 10.5, 0), 3, 0, 1000)}}

	p, ok := Search(g, model, SearchOptions{GroundSpeed: 1})
	if !ok {
		t.Fatalf("no path")
	}
	for _, reduced := range [][]CellIndex{Thin(p.Cells), Reduce(p, Corridor(p, model))} {
		if len(reduced) > len(p.Cells) {
			t.Errorf("simplified path is longer than the original")
		}
		traj := ToTrajectory(g, reduced, p.Cells, 1, 0)
		if traj.First().Position != g.Start() || traj.First().Time != g.StartTime() {
			t.Errorf("trajectory starts at %s", traj.First())
		}
		if traj.Last().Position != g.End() {
			t.Errorf("trajectory ends at %s", traj.Last())
		}
		for i := 1; i < traj.Len(); i++ {
			if traj.Point(i).Time < traj.Point(i-1).Time {
				t.Errorf("times decrease in %s", traj)
			}
		}
	}
}
