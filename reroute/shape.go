// reroute/shape.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package reroute

import (
	"github.com/mmp/wxroute/densitygrid"
)

// shapeWeights sets the grid's base weights for the request: the base
// weight inside the keep-in polygons (or everywhere, if there are none),
// then proximity to the reference route, then the keep-out polygons.
func shapeWeights(g *densitygrid.Grid, req *Request) {
	if len(req.KeepIn) > 0 {
		for _, p := range req.KeepIn {
			g.SetWeightsInside(p, req.BaseWeight)
		}
	} else {
		g.SetUniform(req.BaseWeight)
	}

	if req.ProximityFactor > 0 && req.Reference != nil {
		if req.ProximityMode == ProximityPlan {
			g.PlanProximityWeights(*req.Reference, req.ProximityFactor, false)
		} else {
			g.ProximityWeights(g.GridPath(*req.Reference), req.ProximityFactor, false)
		}
	}

	for _, p := range req.KeepOut {
		if req.KeepOutWeight > 0 {
			g.AddWeightsInside(p, req.KeepOutWeight)
		} else {
			g.ClearWeightsInside(p)
		}
	}
}

// obstacles returns the request's hazards and containment areas as
// obstacles, with time buffers and expansion applied.
func obstacles(g *densitygrid.Grid, req *Request) (hazards, containment []densitygrid.Obstacle) {
	stretch := !req.Sweep && (req.TimeBefore > 0 || req.TimeAfter > 0)
	expand := densitygrid.ExpandFactor * g.CellSize()

	for _, r := range req.Hazards {
		if stretch {
			r = r.StretchOverTime(req.TimeBefore, req.TimeAfter)
		}
		if req.ExpandHazards {
			r = r.Expand(expand)
		}
		hazards = append(hazards, r)
	}
	for _, pp := range req.HazardPolygons {
		if stretch {
			pp = pp.StretchOverTime(req.TimeBefore, req.TimeAfter)
		}
		switch {
		case req.EstimatePolygons:
			est := densitygrid.MakePolyEstimate(pp, g)
			if req.ExpandHazards {
				est.Margin += expand
			}
			hazards = append(hazards, est)
		case req.ExpandHazards:
			hazards = append(hazards, pp.Buffered(expand))
		default:
			hazards = append(hazards, pp)
		}
	}

	for _, r := range req.Containment {
		containment = append(containment, r)
	}
	for _, pp := range req.ContainmentPolygons {
		if req.EstimatePolygons {
			containment = append(containment, densitygrid.MakePolyEstimate(pp, g))
		} else {
			containment = append(containment, pp)
		}
	}
	return
}

// costModel returns the cost model used to search the grid.
func costModel(g *densitygrid.Grid, req *Request) densitygrid.CostModel {
	hazards, containment := obstacles(g, req)
	var model densitygrid.CostModel = densitygrid.ObstacleCost{
		Grid:         g,
		Hazards:      hazards,
		Containment:  containment,
		LookaheadEnd: req.LookaheadEnd,
	}
	if req.Sweep && (req.TimeBefore > 0 || req.TimeAfter > 0) {
		// A hazard present TimeBefore seconds early blocks a cell entered
		// up to TimeBefore seconds before the hazard arrives, so the
		// window is mirrored.
		model = densitygrid.SweptCost{Model: model, Before: req.TimeAfter, After: req.TimeBefore}
	}
	return model
}
