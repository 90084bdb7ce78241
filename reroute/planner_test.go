// reroute/planner_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package reroute

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/log"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/poly"

	"golang.org/x/sync/errgroup"
)

func newTestPlanner() *Planner {
	return NewPlanner(log.Discard(), 4, time.Minute)
}

// checkResult checks the properties that every successful result has.
func checkResult(t *testing.T, req *Request, r *Result) {
	t.Helper()

	if !r.Found {
		t.Fatalf("no path found")
	}
	for i := 1; i < len(r.Raw); i++ {
		if r.Raw[i-1].Chebyshev(r.Raw[i]) != 1 {
			t.Errorf("cells %v and %v are not adjacent", r.Raw[i-1], r.Raw[i])
		}
	}
	if r.Raw[0] != r.Simplified[0] || r.Raw[len(r.Raw)-1] != r.Simplified[len(r.Simplified)-1] {
		t.Errorf("simplified path %v has different endpoints than %v", r.Simplified, r.Raw)
	}

	traj := r.Trajectory
	if traj.First() != req.Start {
		t.Errorf("trajectory starts at %s, expected %s", traj.First(), req.Start)
	}
	if traj.Last().Position != req.End {
		t.Errorf("trajectory ends at %s, expected %s", traj.Last().Position, req.End)
	}
	for i := 1; i < traj.Len(); i++ {
		if traj.Point(i).Time < traj.Point(i-1).Time {
			t.Errorf("trajectory times decrease: %s", traj)
			break
		}
	}
	for _, c := range r.Raw {
		if !r.Grid.Marked(c) {
			t.Errorf("path cell %v is not marked", c)
		}
	}
}

// straight reports whether every cell of the path is on the row y.
func straight(cells []densitygrid.CellIndex, y int) bool {
	return !slices.ContainsFunc(cells, func(c densitygrid.CellIndex) bool { return c.Y != y })
}

func TestPlanInvalid(t *testing.T) {
	// A zero cell size must be rejected before a grid is built.
	p := newTestPlanner()
	req := baseRequest()
	req.CellSize = 0

	r, err := p.Plan(req)
	if err == nil || !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if r != nil {
		t.Errorf("got a result for an invalid request")
	}
	if s := p.Stats(); s.Invalid != 1 || s.PoolMisses != 0 || s.PoolHits != 0 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestPlanDirect(t *testing.T) {
	p := newTestPlanner()
	req := baseRequest()

	r, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	checkResult(t, req, r)

	if len(r.Raw) != 19 || !straight(r.Raw, 10) {
		t.Errorf("expected a straight 19-cell path, got %v", r.Raw)
	}
	if r.Cost != 19 {
		t.Errorf("cost %f, expected 19", r.Cost)
	}
	if r.Trajectory.Len() != 2 {
		t.Errorf("expected the start and end only: %s", r.Trajectory)
	}
	if r.Trajectory.LastTime() != 18 {
		t.Errorf("arrival at %f, expected 18", r.Trajectory.LastTime())
	}
	if r.ID == "" || r.Trajectory.Name != r.ID {
		t.Errorf("result id %q, trajectory %q", r.ID, r.Trajectory.Name)
	}
}

func TestPlanAvoidsHazard(t *testing.T) {
	hazard := densitygrid.MakeStaticRegion("cb", geo.MakeXYZ(9.5, 10.5, 0), 3, 0, 1000)

	for _, reduce := range []bool{false, true} {
		p := newTestPlanner()
		req := baseRequest()
		req.Hazards = []densitygrid.Region{hazard}
		req.Reduce = reduce

		r, err := p.Plan(req)
		if err != nil {
			t.Fatalf("%v", err)
		}
		checkResult(t, req, r)

		for _, c := range r.Raw {
			if center, _ := r.Grid.Center(c); center.DistanceH(hazard.Path.First().Position) <= 3 {
				t.Errorf("reduce=%v: path cell %v is inside the hazard", reduce, c)
			}
		}
		if len(r.Simplified) < 3 {
			t.Errorf("reduce=%v: simplified path %v cannot avoid the hazard", reduce, r.Simplified)
		}
	}
}

func TestPlanNoPath(t *testing.T) {
	p := newTestPlanner()
	req := baseRequest()
	req.Hazards = []densitygrid.Region{densitygrid.MakeStaticRegion("goal", req.End, 2, 0, 1000)}

	r, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if r.Found || !r.Trajectory.IsEmpty() || r.Raw != nil {
		t.Errorf("expected an empty result: %+v", r)
	}
	if r.Grid == nil {
		t.Errorf("no grid returned")
	}
	if s := p.Stats(); s.NotFound != 1 || s.Found != 0 || s.Requests != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestPlanStaticPolygons(t *testing.T) {
	block := poly.MakeSimplePoly("block", geo.MakeXYZ(8, 5, 0), geo.MakeXYZ(11, 5, 0),
		geo.MakeXYZ(11, 15, 0), geo.MakeXYZ(8, 15, 0))

	for _, weight := range []float64{0, 100} {
		p := newTestPlanner()
		req := baseRequest()
		req.KeepOut = []poly.SimplePoly{block}
		req.KeepOutWeight = weight

		r, err := p.Plan(req)
		if err != nil {
			t.Fatalf("%v", err)
		}
		checkResult(t, req, r)
		for _, c := range r.Raw {
			if center, _ := r.Grid.Center(c); block.Contains(center) {
				t.Errorf("keep-out weight %f: cell %v is inside the keep-out area", weight, c)
			}
		}
	}

	// Only the northern half of the area may be used.
	north := poly.MakeSimplePoly("north", geo.MakeXYZ(0, 8, 0), geo.MakeXYZ(19, 8, 0),
		geo.MakeXYZ(19, 19, 0), geo.MakeXYZ(0, 19, 0))
	p := newTestPlanner()
	req := baseRequest()
	req.KeepIn = []poly.SimplePoly{north}
	req.Hazards = []densitygrid.Region{densitygrid.MakeStaticRegion("cb", geo.MakeXYZ(9.5, 10.5, 0), 2, 0, 1000)}

	r, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	checkResult(t, req, r)
	for _, c := range r.Raw {
		if c.Y < 8 {
			t.Errorf("cell %v is outside the keep-in area", c)
		}
	}
}

func TestPlanProximity(t *testing.T) {
	p := newTestPlanner()
	req := baseRequest()
	// The reference dips south; the planned path should follow it.
	ref := plan.MakePlan("ref",
		plan.Waypoint{Position: req.Start.Position, Time: 0},
		plan.Waypoint{Position: geo.MakeXYZ(9.5, 4.5, 100), Time: 10},
		plan.Waypoint{Position: req.End, Time: 20})
	req.Reference = &ref
	req.ProximityFactor = 100

	r, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	checkResult(t, req, r)
	if !slices.Contains(r.Raw, densitygrid.CellIndex{X: 9, Y: 4}) {
		t.Errorf("path %v does not follow the reference through (9,4)", r.Raw)
	}
	if r.Cost != 0 {
		t.Errorf("path along the reference has cost %f", r.Cost)
	}

	req.ProximityMode = ProximityPlan
	r, err = p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	checkResult(t, req, r)
}

func TestPlanTimeBuffers(t *testing.T) {
	// The hazard appears after the aircraft has passed; it is only
	// avoided when it is considered present earlier.
	hazard := densitygrid.MakeStaticRegion("late", geo.MakeXYZ(9.5, 10.5, 0), 3, 20, 1000)

	for _, test := range []struct {
		name    string
		before  float64
		sweep   bool
		detours bool
	}{
		{"None", 0, false, false},
		{"Stretch", 15, false, true},
		{"Sweep", 15, true, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			p := newTestPlanner()
			req := baseRequest()
			req.Hazards = []densitygrid.Region{hazard}
			req.TimeBefore = test.before
			req.Sweep = test.sweep

			r, err := p.Plan(req)
			if err != nil {
				t.Fatalf("%v", err)
			}
			checkResult(t, req, r)
			if detoured := !straight(r.Raw, 10); detoured != test.detours {
				t.Errorf("detoured = %v, expected %v: %v", detoured, test.detours, r.Raw)
			}
		})
	}
}

func TestPlanLookahead(t *testing.T) {
	p := newTestPlanner()
	req := baseRequest()
	hazard := densitygrid.MakeStaticRegion("cb", geo.MakeXYZ(9.5, 10.5, 0), 3, 0, 1000)
	req.Hazards = []densitygrid.Region{hazard}
	end := 2.0
	req.LookaheadEnd = &end

	// Hazards past the lookahead are ignored, so the path goes right
	// through it.
	r, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	checkResult(t, req, r)
	if !slices.ContainsFunc(r.Raw, func(c densitygrid.CellIndex) bool {
		center, _ := r.Grid.Center(c)
		return hazard.Contains(center, 10)
	}) {
		t.Errorf("expected the path to cross the hazard past the lookahead: %v", r.Raw)
	}
}

func TestPlanLimits(t *testing.T) {
	p := newTestPlanner()
	req := baseRequest()
	req.MaxExpansions = 3

	r, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if r.Found {
		t.Errorf("expected the expansion limit to stop the search")
	}
}

func TestPlanPool(t *testing.T) {
	p := newTestPlanner()
	req := baseRequest()
	req.Hazards = []densitygrid.Region{densitygrid.MakeStaticRegion("cb", geo.MakeXYZ(9.5, 10.5, 0), 3, 0, 1000)}

	r1, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	g := r1.Grid
	raw := slices.Clone(r1.Raw)
	p.Release(r1)
	if r1.Grid != nil {
		t.Errorf("grid still set after release")
	}

	// Same geometry, different endpoints and no hazards.
	req2 := baseRequest()
	req2.Start.Position = geo.MakeXYZ(2.5, 10.5, 100)
	r2, err := p.Plan(req2)
	if err != nil {
		t.Fatalf("%v", err)
	}
	checkResult(t, req2, r2)
	if r2.Grid != g {
		t.Errorf("pooled grid was not reused")
	}
	if !straight(r2.Raw, 10) || len(r2.Raw) != 17 {
		t.Errorf("stale state in pooled grid: %v", r2.Raw)
	}
	if r2.Grid.Marked(densitygrid.CellIndex{X: 9, Y: 14}) && !slices.Contains(r2.Raw, densitygrid.CellIndex{X: 9, Y: 14}) {
		t.Errorf("marks from the previous request survived")
	}
	p.Release(r2)

	// The original request gives the original result.
	r3, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !slices.Equal(r3.Raw, raw) {
		t.Errorf("pooled result %v differs from %v", r3.Raw, raw)
	}

	if s := p.Stats(); s.PoolHits != 2 || s.PoolMisses != 1 || s.Requests != 3 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestPlanConcurrent(t *testing.T) {
	n := concurrentRequests
	p := newTestPlanner()
	req := baseRequest()
	req.Hazards = []densitygrid.Region{densitygrid.MakeStaticRegion("cb", geo.MakeXYZ(9.5, 10.5, 0), 3, 0, 1000)}
	ref, err := p.Plan(req)
	if err != nil {
		t.Fatalf("%v", err)
	}
	p.Release(ref)

	var eg errgroup.Group
	for range n {
		eg.Go(func() error {
			r, err := p.Plan(req)
			if err != nil {
				return err
			}
			defer p.Release(r)
			if !slices.Equal(r.Raw, ref.Raw) {
				return errors.New("concurrent plan gave a different path")
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Error(err)
	}
	if s := p.Stats(); s.Found != int64(n+1) {
		t.Errorf("found %d, expected %d", s.Found, n+1)
	}
}
