// cmd/wxroute/commands_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"testing"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/reroute"
)

func TestKeepOriginal(t *testing.T) {
	own := plan.MakePlan("own",
		plan.Waypoint{Position: geo.MakeXYZ(0, 0, 100), Time: 0},
		plan.Waypoint{Position: geo.MakeXYZ(10, 0, 100), Time: 10},
		plan.Waypoint{Position: geo.MakeXYZ(20, 0, 100), Time: 20})

	t.Run("NotFound", func(t *testing.T) {
		res := &reroute.Result{ID: "r1"}
		out := keepOriginal(res, own)
		if out.Trajectory.Len() != own.Len() {
			t.Fatalf("got %d waypoints, expected the original %d", out.Trajectory.Len(), own.Len())
		}
		for i := range own.Len() {
			if out.Trajectory.Point(i) != own.Point(i) {
				t.Errorf("waypoint %d: %v, expected %v", i, out.Trajectory.Point(i), own.Point(i))
			}
		}
		if out.ID != "r1" || out.Found {
			t.Errorf("unexpected result %+v", out)
		}
		if res.Trajectory.Len() != 0 {
			t.Errorf("input result was modified")
		}
	})

	t.Run("Found", func(t *testing.T) {
		traj := plan.MakePlan("new",
			plan.Waypoint{Position: geo.MakeXYZ(0, 0, 100), Time: 0},
			plan.Waypoint{Position: geo.MakeXYZ(20, 5, 100), Time: 21})
		res := &reroute.Result{Found: true, Trajectory: traj, Raw: []densitygrid.CellIndex{{X: 0, Y: 0}}}
		if out := keepOriginal(res, own); out != res {
			t.Errorf("a found route should be returned unchanged")
		}
	})
}
