// densitygrid/trajectory.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	gomath "math"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/math"
	"github.com/mmp/wxroute/plan"
)

// Turns sharper than this just before the end of a trajectory are
// repaired.
const maxFinalTurn = gomath.Pi / 4

// ToTrajectory converts a simplified cell path to a timed trajectory that
// starts at the grid's start waypoint and ends at its end position. Each
// interior cell contributes its center; times follow from the ground speed
// gs and altitudes change at vs meters per second. prereduction is the
// path before simplification; it is used to repair a sharp turn onto the
// final leg. The point of the trajectory nearest to the third-from-last
// pre-reduction cell is reinserted when its distance from the straight
// final leg exceeds one cell size.
func ToTrajectory(g *Grid, reduced, prereduction []CellIndex, gs, vs float64) plan.Plan {
	start := plan.Waypoint{Position: g.Start(), Time: g.StartTime()}
	traj := plan.MakePlan("", start)

	last := start
	for i := 1; i < len(reduced)-1; i++ {
		center, ok := g.Center(reduced[i])
		if !ok {
			continue
		}
		dt := center.DistanceH(last.Position) / gs
		wp := plan.Waypoint{
			Position: center.WithAlt(last.Position.Alt + vs*dt),
			Time:     last.Time + dt,
		}
		traj.Add(wp)
		last = wp
	}

	if len(reduced) > 3 && len(prereduction) >= 3 && traj.Len() >= 2 && finalTurn(traj, g.End()) > maxFinalTurn {
		pivot, ok := g.Center(prereduction[len(prereduction)-3])
		if ok {
			nearest := traj.ClosestPoint(pivot)
			traj.Remove(traj.Len() - 1)
			if deviation(traj.Last().Position, g.End(), nearest.Position) > g.CellSize() {
				traj.Add(nearest)
			}
			last = traj.Last()
		}
	}

	dt := last.Position.DistanceH(g.End()) / gs
	traj.Add(plan.Waypoint{Position: g.End(), Time: last.Time + dt})
	return traj
}

// finalTurn returns the turn at the trajectory's last point between the
// track into it and the track to end. Zero-length legs have no turn.
func finalTurn(traj plan.Plan, end geo.Position) float64 {
	n := traj.Len()
	prev, last := traj.Point(n-2).Position, traj.Point(n-1).Position
	if prev.DistanceH(last) == 0 || last.DistanceH(end) == 0 {
		return 0
	}
	return math.TurnDelta(prev.Bearing(last), last.Bearing(end))
}

// deviation returns the horizontal distance in meters from p to the
// segment ab.
func deviation(a, b, p geo.Position) float64 {
	proj := geo.NewLocalProjection(p)
	return math.PointSegmentDistance([2]float64{}, proj.Project(a), proj.Project(b))
}
