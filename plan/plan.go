// plan/plan.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package plan provides Plan, an ordered sequence of timed waypoints used
// both for flight plans and for the trajectories of moving regions.
package plan

import (
	"encoding/json"
	"fmt"
	gomath "math"
	"slices"
	"strings"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/math"
)

// Waypoint is a position and the time (seconds) at which it is reached.
type Waypoint struct {
	Position geo.Position `json:"position"`
	Time     float64      `json:"time"`
}

func (wp Waypoint) String() string {
	return fmt.Sprintf("%s@%.1fs", wp.Position, wp.Time)
}

// Velocity describes motion along a plan segment: Track is in radians
// clockwise from north, GS and VS are in meters per second.
type Velocity struct {
	Track float64
	GS    float64
	VS    float64
}

// Plan is a sequence of waypoints ordered by time. The zero value is an
// empty plan.
type Plan struct {
	Name      string
	waypoints []Waypoint
}

func MakePlan(name string, wps ...Waypoint) Plan {
	p := Plan{Name: name}
	for _, wp := range wps {
		p.Add(wp)
	}
	return p
}

// Add inserts the waypoint in time order, after any existing waypoints
// with the same time, and returns its index.
func (p *Plan) Add(wp Waypoint) int {
	i, _ := slices.BinarySearchFunc(p.waypoints, wp.Time, func(w Waypoint, t float64) int {
		if w.Time <= t {
			return -1
		}
		return 1
	})
	p.waypoints = slices.Insert(p.waypoints, i, wp)
	return i
}

// Remove deletes the i'th waypoint; out of range indices are ignored.
func (p *Plan) Remove(i int) {
	if i >= 0 && i < len(p.waypoints) {
		p.waypoints = slices.Delete(p.waypoints, i, i+1)
	}
}

func (p Plan) Len() int              { return len(p.waypoints) }
func (p Plan) IsEmpty() bool         { return len(p.waypoints) == 0 }
func (p Plan) Point(i int) Waypoint  { return p.waypoints[i] }
func (p Plan) First() Waypoint       { return p.waypoints[0] }
func (p Plan) Last() Waypoint        { return p.waypoints[len(p.waypoints)-1] }
func (p Plan) FirstTime() float64    { return p.First().Time }
func (p Plan) LastTime() float64     { return p.Last().Time }
func (p Plan) Waypoints() []Waypoint { return slices.Clone(p.waypoints) }
func (p Plan) Clone() Plan           { return Plan{Name: p.Name, waypoints: slices.Clone(p.waypoints)} }
func (p Plan) TimeInPlan(t float64) bool {
	return !p.IsEmpty() && t >= p.FirstTime() && t <= p.LastTime()
}

// Segment returns the index i of the segment [i, i+1] containing time t,
// or -1 if t is outside the plan. A time equal to the last waypoint's is
// in the final segment.
func (p Plan) Segment(t float64) int {
	if !p.TimeInPlan(t) {
		return -1
	}
	if len(p.waypoints) == 1 {
		return 0
	}
	i, _ := slices.BinarySearchFunc(p.waypoints, t, func(w Waypoint, t float64) int {
		if w.Time <= t {
			return -1
		}
		return 1
	})
	return math.Clamp(i-1, 0, len(p.waypoints)-2)
}

// PositionAt returns the position at time t, interpolating linearly
// between waypoints. It returns false if t is outside the plan.
func (p Plan) PositionAt(t float64) (geo.Position, bool) {
	i := p.Segment(t)
	if i == -1 {
		return geo.Position{}, false
	}
	if len(p.waypoints) == 1 {
		return p.waypoints[0].Position, true
	}

	w0, w1 := p.waypoints[i], p.waypoints[i+1]
	if w1.Time == w0.Time {
		return w1.Position, true
	}
	return w0.Position.Interpolate(w1.Position, (t-w0.Time)/(w1.Time-w0.Time)), true
}

// VelocityAt returns the velocity along the segment leaving waypoint i;
// for the last waypoint it returns the velocity of the final segment.
// Zero-duration segments have zero speed.
func (p Plan) VelocityAt(i int) Velocity {
	if len(p.waypoints) < 2 || i < 0 {
		return Velocity{}
	}
	i = math.Min(i, len(p.waypoints)-2)

	w0, w1 := p.waypoints[i], p.waypoints[i+1]
	v := Velocity{Track: w0.Position.Bearing(w1.Position)}
	if dt := w1.Time - w0.Time; dt > 0 {
		v.GS = w0.Position.DistanceH(w1.Position) / dt
		v.VS = (w1.Position.Alt - w0.Position.Alt) / dt
	}
	return v
}

// InitialVelocity returns the velocity along the first segment.
func (p Plan) InitialVelocity() Velocity {
	return p.VelocityAt(0)
}

// PathDistance returns the total horizontal length of the plan in meters.
func (p Plan) PathDistance() float64 {
	var d float64
	for i := 1; i < len(p.waypoints); i++ {
		d += p.waypoints[i-1].Position.DistanceH(p.waypoints[i].Position)
	}
	return d
}

// ClosestPoint returns the point on the plan horizontally closest to pos,
// with time and altitude interpolated along its segment.
func (p Plan) ClosestPoint(pos geo.Position) Waypoint {
	if len(p.waypoints) == 1 {
		return p.waypoints[0]
	}

	proj := geo.NewLocalProjection(pos)
	best, bestDist := Waypoint{}, gomath.Inf(1)
	for i := 0; i+1 < len(p.waypoints); i++ {
		w0, w1 := p.waypoints[i], p.waypoints[i+1]
		_, f := math.ClosestPointOnSegment([2]float64{}, proj.Project(w0.Position), proj.Project(w1.Position))
		c := Waypoint{
			Position: w0.Position.Interpolate(w1.Position, f),
			Time:     math.Lerp(f, w0.Time, w1.Time),
		}
		if d := c.Position.DistanceH(pos); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Bound returns the bounding rectangle of the plan's waypoints.
func (p Plan) Bound() geo.BoundingRect {
	latlon := len(p.waypoints) > 0 && p.waypoints[0].Position.LatLon
	b := geo.EmptyBoundingRect(latlon)
	for _, wp := range p.waypoints {
		b.Add(wp.Position)
	}
	return b
}

// WithAltitude returns a copy of the plan with every waypoint at the
// given altitude.
func (p Plan) WithAltitude(alt float64) Plan {
	r := p.Clone()
	for i := range r.waypoints {
		r.waypoints[i].Position.Alt = alt
	}
	return r
}

// After returns the portion of the plan from time t onward, starting with
// the interpolated position at t. If t precedes the plan, the whole plan
// is returned; if it follows it, the result is empty.
func (p Plan) After(t float64) Plan {
	if p.IsEmpty() || t <= p.FirstTime() {
		return p.Clone()
	}
	r := Plan{Name: p.Name}
	pos, ok := p.PositionAt(t)
	if !ok {
		return r
	}
	r.waypoints = append(r.waypoints, Waypoint{Position: pos, Time: t})
	for _, wp := range p.waypoints {
		if wp.Time > t {
			r.waypoints = append(r.waypoints, wp)
		}
	}
	return r
}

// Before returns the portion of the plan up to and including time t,
// ending with the interpolated position at t.
func (p Plan) Before(t float64) Plan {
	r := Plan{Name: p.Name}
	if p.IsEmpty() || t < p.FirstTime() {
		return r
	}
	for _, wp := range p.waypoints {
		if wp.Time < t {
			r.waypoints = append(r.waypoints, wp)
		}
	}
	if pos, ok := p.PositionAt(math.Min(t, p.LastTime())); ok {
		r.waypoints = append(r.waypoints, Waypoint{Position: pos, Time: math.Min(t, p.LastTime())})
	}
	return r
}

func (p Plan) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan %q:", p.Name)
	for i, wp := range p.waypoints {
		fmt.Fprintf(&sb, "\n  %2d %s", i, wp)
	}
	return sb.String()
}

///////////////////////////////////////////////////////////////////////////
// JSON

type jsonPlan struct {
	Name      string     `json:"name,omitempty"`
	Waypoints []Waypoint `json:"waypoints"`
}

func (p Plan) MarshalJSON() ([]byte, error) {
	wps := p.waypoints
	if wps == nil {
		wps = []Waypoint{}
	}
	return json.Marshal(jsonPlan{Name: p.Name, Waypoints: wps})
}

// UnmarshalJSON decodes a plan; waypoints need not be given in time order.
func (p *Plan) UnmarshalJSON(b []byte) error {
	var jp jsonPlan
	if err := json.Unmarshal(b, &jp); err != nil {
		return err
	}
	*p = MakePlan(jp.Name, jp.Waypoints...)
	return nil
}
