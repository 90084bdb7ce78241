// reroute/reroute.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package reroute

import (
	"fmt"
	gomath "math"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/poly"
)

// ReRouteOptions controls ReRoute. Fields shared with Request have the
// same meaning.
type ReRouteOptions struct {
	// CurrentTime is the time of the aircraft's current position along
	// the plan; if negative, the plan's first time is used.
	CurrentTime float64 `json:"current_time"`
	// LeadIn is the time in seconds that the aircraft keeps flying the
	// original plan before the new route begins; the new route also
	// rejoins the plan LeadIn seconds before its end.
	LeadIn float64 `json:"lead_in"`
	// Lookahead, if positive, limits hazard avoidance to that many
	// seconds past CurrentTime.
	Lookahead float64 `json:"lookahead,omitempty"`
	// Buffer is the distance in meters by which the grid extends past
	// the plan's bounds.
	Buffer   float64 `json:"buffer"`
	CellSize float64 `json:"cell_size"`

	Hazards             []densitygrid.Region `json:"hazards,omitempty"`
	Containment         []densitygrid.Region `json:"containment,omitempty"`
	HazardPolygons      []poly.PolyPath      `json:"hazard_polygons,omitempty"`
	ContainmentPolygons []poly.PolyPath      `json:"containment_polygons,omitempty"`
	KeepIn              []poly.SimplePoly    `json:"keep_in,omitempty"`
	KeepOut             []poly.SimplePoly    `json:"keep_out,omitempty"`
	EstimatePolygons    bool                 `json:"estimate_polygons,omitempty"`
	ExpandHazards       bool                 `json:"expand_hazards,omitempty"`

	ProximityFactor float64 `json:"proximity_factor,omitempty"`
	Reduce          bool    `json:"reduce,omitempty"`
	TimeBefore      float64 `json:"time_before,omitempty"`
	TimeAfter       float64 `json:"time_after,omitempty"`
	MaxExpansions   int     `json:"max_expansions,omitempty"`
}

// ReRouteRequest is the JSON form of a ReRoute call.
type ReRouteRequest struct {
	Plan    plan.Plan      `json:"plan"`
	Options ReRouteOptions `json:"options"`
}

func (o ReRouteOptions) haveHazards() bool {
	return len(o.Hazards) > 0 || len(o.HazardPolygons) > 0
}

// ReRoute plans a new route for the flight plan own around the given
// hazards. The aircraft follows own from CurrentTime for LeadIn seconds;
// the new route is planned from there to the point LeadIn seconds before
// the end of own, staying close to own in between, and then proceeds to
// own's final waypoint. The returned result's trajectory is the complete
// spliced plan starting at the current position. If there are no hazards,
// own is returned from the current time onward.
func (p *Planner) ReRoute(own plan.Plan, opts ReRouteOptions) (*Result, error) {
	if own.Len() < 2 {
		return nil, fmt.Errorf("%w: plan must have at least 2 waypoints", ErrInvalidRequest)
	}

	tc := opts.CurrentTime
	if tc < 0 {
		tc = own.FirstTime()
	}
	if !own.TimeInPlan(tc) {
		return nil, fmt.Errorf("%w: current time %.1f is not within the plan [%.1f, %.1f]", ErrInvalidRequest,
			tc, own.FirstTime(), own.LastTime())
	}

	if !opts.haveHazards() {
		return &Result{Found: true, Trajectory: own.After(tc)}, nil
	}

	startTime, endTime := tc+opts.LeadIn, own.LastTime()-opts.LeadIn
	if startTime >= endTime || !own.TimeInPlan(startTime) || !own.TimeInPlan(endTime) {
		return nil, fmt.Errorf("%w: plan is too short for a lead-in of %.1fs", ErrInvalidRequest, opts.LeadIn)
	}

	leg := own.After(startTime).Before(endTime)
	vel := own.VelocityAt(own.Segment(tc))
	gs := leg.InitialVelocity().GS

	req := &Request{
		Bounds:              leg.Bound().Rect(),
		Start:               leg.First(),
		End:                 leg.Last().Position,
		CellSize:            opts.CellSize,
		Geodetic:            leg.First().Position.LatLon,
		Hazards:             opts.Hazards,
		Containment:         opts.Containment,
		HazardPolygons:      opts.HazardPolygons,
		ContainmentPolygons: opts.ContainmentPolygons,
		EstimatePolygons:    opts.EstimatePolygons,
		ExpandHazards:       opts.ExpandHazards,
		KeepIn:              opts.KeepIn,
		KeepOut:             opts.KeepOut,
		ProximityFactor:     opts.ProximityFactor,
		Reference:           &leg,
		GroundSpeed:         gs,
		VerticalSpeed:       vel.VS,
		Reduce:              opts.Reduce,
		TimeBefore:          opts.TimeBefore,
		TimeAfter:           opts.TimeAfter,
		MaxExpansions:       opts.MaxExpansions,
	}
	if opts.CellSize > 0 {
		req.BufferCells = int(gomath.Ceil(opts.Buffer / opts.CellSize))
	}
	if opts.CurrentTime > 0 && opts.Lookahead > 0 {
		end := opts.CurrentTime + opts.Lookahead
		req.LookaheadEnd = &end
	}

	r, err := p.Plan(req)
	if err != nil || !r.Found {
		return r, err
	}

	r.Trajectory = splice(own, tc, r.Trajectory, vel.VS, gs)
	return r, nil
}

// splice joins the portion of own between tc and the start of the new
// route traj with traj and a final leg to own's last waypoint, flown at
// ground speed gs. Altitudes along traj are set by setAltitudes.
func splice(own plan.Plan, tc float64, traj plan.Plan, vs, gs float64) plan.Plan {
	traj = setAltitudes(traj, vs)

	wps := own.After(tc).Before(traj.FirstTime()).Waypoints()
	wps = append(wps[:len(wps)-1], traj.Waypoints()...)

	last, final := wps[len(wps)-1], own.Last()
	if d := last.Position.DistanceH(final.Position); d > 0 && gs > 0 {
		wps = append(wps, plan.Waypoint{Position: final.Position, Time: last.Time + d/gs})
	}
	return plan.MakePlan(own.Name, wps...)
}

// setAltitudes flies the first leg of p at vertical speed vs and then
// changes altitude at a constant rate from the end of that leg to the
// last waypoint.
func setAltitudes(p plan.Plan, vs float64) plan.Plan {
	wps := p.Waypoints()
	if len(wps) < 2 {
		return p
	}

	wps[1].Position.Alt = wps[0].Position.Alt + vs*(wps[1].Time-wps[0].Time)
	if n := len(wps); n > 2 {
		w1, wn := wps[1], wps[n-1]
		if dt := wn.Time - w1.Time; dt > 0 {
			rate := (wn.Position.Alt - w1.Position.Alt) / dt
			for i := 2; i < n-1; i++ {
				wps[i].Position.Alt = w1.Position.Alt + rate*(wps[i].Time-w1.Time)
			}
		}
	}
	return plan.MakePlan(p.Name, wps...)
}
