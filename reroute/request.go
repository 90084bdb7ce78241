// reroute/request.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package reroute

import (
	"errors"
	"io"
	"time"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/poly"
	"github.com/mmp/wxroute/util"

	"github.com/brunoga/deep"
	"github.com/google/uuid"
)

// ErrInvalidRequest is wrapped by all errors returned for requests that
// fail validation.
var ErrInvalidRequest = errors.New("invalid planning request")

const (
	ProximityPath = "path" // distance to the rasterized reference path
	ProximityPlan = "plan" // distance to reference vertices plus remaining vertices
)

// Request describes a single planning problem. Positions are meters when
// Geodetic is false and radians when it is true; times are in seconds.
type Request struct {
	ID string `json:"id,omitempty"`

	Bounds      geo.Rect      `json:"bounds"`
	Start       plan.Waypoint `json:"start"`
	End         geo.Position  `json:"end"`
	BufferCells int           `json:"buffer_cells"`
	CellSize    float64       `json:"cell_size"` // meters
	Geodetic    bool          `json:"geodetic"`

	Hazards     []densitygrid.Region `json:"hazards,omitempty"`
	Containment []densitygrid.Region `json:"containment,omitempty"`

	// Moving polygons. When EstimatePolygons is set they are tested
	// against their bounding circles rather than the polygons themselves.
	HazardPolygons      []poly.PolyPath `json:"hazard_polygons,omitempty"`
	ContainmentPolygons []poly.PolyPath `json:"containment_polygons,omitempty"`
	EstimatePolygons    bool            `json:"estimate_polygons,omitempty"`
	// ExpandHazards grows hazards by ExpandFactor cells so that cells
	// that only partially overlap them are avoided too.
	ExpandHazards bool `json:"expand_hazards,omitempty"`

	// Static polygons. If any KeepIn polygons are given, only cells inside
	// them get a base weight. Cells in KeepOut polygons are removed from
	// the grid unless KeepOutWeight is positive, in which case it is added
	// to their weight.
	KeepIn        []poly.SimplePoly `json:"keep_in,omitempty"`
	KeepOut       []poly.SimplePoly `json:"keep_out,omitempty"`
	KeepOutWeight float64           `json:"keep_out_weight,omitempty"`

	BaseWeight      float64    `json:"base_weight,omitempty"` // default 1
	ProximityFactor float64    `json:"proximity_factor,omitempty"`
	ProximityMode   string     `json:"proximity_mode,omitempty"` // default ProximityPath
	Reference       *plan.Plan `json:"reference,omitempty"`      // default: straight from start to end

	// Hazard costs are ignored after LookaheadEnd, if set.
	LookaheadEnd *float64 `json:"lookahead_end,omitempty"`

	GroundSpeed   float64 `json:"ground_speed"`   // m/s
	VerticalSpeed float64 `json:"vertical_speed"` // m/s
	Reduce        bool    `json:"reduce,omitempty"`

	// Hazards are treated as present for TimeBefore seconds before and
	// TimeAfter seconds after their trajectories. By default the obstacles
	// are stretched in time; with Sweep the cost of each cell is instead
	// sampled over the window.
	TimeBefore float64 `json:"time_before,omitempty"`
	TimeAfter  float64 `json:"time_after,omitempty"`
	Sweep      bool    `json:"sweep,omitempty"`

	MaxExpansions int     `json:"max_expansions,omitempty"`
	Timeout       float64 `json:"timeout,omitempty"` // seconds of wall-clock search time
}

// DecodeRequest reads a JSON request from r.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	err := util.UnmarshalJSON(r, &req)
	return req, err
}

// withDefaults returns a copy of the request with defaults filled in; the
// caller's request is not modified.
func (r *Request) withDefaults() *Request {
	c := deep.MustCopy(r)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.BaseWeight == 0 {
		c.BaseWeight = 1
	}
	if c.ProximityMode == "" {
		c.ProximityMode = ProximityPath
	}
	if c.Reference == nil && c.GroundSpeed > 0 {
		ref := c.straightReference()
		c.Reference = &ref
	}
	return c
}

// straightReference returns a plan that flies directly from the start to
// the end at the request's ground speed.
func (r *Request) straightReference() plan.Plan {
	t := r.Start.Position.DistanceH(r.End) / r.GroundSpeed
	return plan.MakePlan("reference", r.Start, plan.Waypoint{Position: r.End, Time: r.Start.Time + t})
}

func (r *Request) deadline() time.Time {
	if r.Timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(r.Timeout * float64(time.Second)))
}

// Validate checks the request for configuration errors, reporting all of
// them at once. The returned error wraps ErrInvalidRequest.
func (r *Request) Validate() error {
	var e util.ErrorLogger

	if r.CellSize <= 0 {
		e.ErrorString("cell_size must be positive (got %g)", r.CellSize)
	}
	if r.GroundSpeed <= 0 {
		e.ErrorString("ground_speed must be positive (got %g)", r.GroundSpeed)
	}
	if r.BufferCells < 0 {
		e.ErrorString("buffer_cells cannot be negative (got %d)", r.BufferCells)
	}
	if r.ProximityFactor < 0 {
		e.ErrorString("proximity_factor cannot be negative (got %g)", r.ProximityFactor)
	}
	if r.ProximityMode != "" && r.ProximityMode != ProximityPath && r.ProximityMode != ProximityPlan {
		e.ErrorString("%q: unknown proximity_mode; expected %q or %q", r.ProximityMode, ProximityPath, ProximityPlan)
	}
	if r.BaseWeight < 0 {
		e.ErrorString("base_weight cannot be negative (got %g)", r.BaseWeight)
	}
	if r.KeepOutWeight < 0 {
		e.ErrorString("keep_out_weight cannot be negative (got %g)", r.KeepOutWeight)
	}
	if r.TimeBefore < 0 || r.TimeAfter < 0 {
		e.ErrorString("time_before and time_after cannot be negative")
	}
	if r.MaxExpansions < 0 {
		e.ErrorString("max_expansions cannot be negative (got %d)", r.MaxExpansions)
	}
	if r.Timeout < 0 {
		e.ErrorString("timeout cannot be negative (got %g)", r.Timeout)
	}

	r.validateGeometry(&e)

	e.Push("hazards")
	for _, h := range r.Hazards {
		r.validateRegion(&e, h)
	}
	e.Pop()
	e.Push("containment")
	for _, c := range r.Containment {
		r.validateRegion(&e, c)
	}
	e.Pop()

	e.Push("hazard_polygons")
	for _, pp := range r.HazardPolygons {
		if err := pp.Validate(); err != nil {
			e.Error(err)
		}
	}
	e.Pop()
	e.Push("containment_polygons")
	for _, pp := range r.ContainmentPolygons {
		if err := pp.Validate(); err != nil {
			e.Error(err)
		}
	}
	e.Pop()

	for _, s := range []struct {
		name  string
		polys []poly.SimplePoly
	}{{"keep_in", r.KeepIn}, {"keep_out", r.KeepOut}} {
		e.Push(s.name)
		for i, p := range s.polys {
			if !p.IsValid() {
				e.ErrorString("polygon %d (%s) has fewer than 3 vertices", i, p.Name)
			}
		}
		e.Pop()
	}

	if r.Reference != nil && r.Reference.Len() < 2 {
		e.ErrorString("reference plan must have at least 2 waypoints")
	}

	return e.Err(ErrInvalidRequest)
}

func (r *Request) validateGeometry(e *util.ErrorLogger) {
	if r.Bounds.Min == r.Bounds.Max {
		e.ErrorString("bounds are empty")
		return
	}

	mismatch := func(what string, p geo.Position) bool {
		if p.LatLon != r.Geodetic {
			e.ErrorString("%s: coordinate mode does not match geodetic=%v", what, r.Geodetic)
			return true
		}
		return false
	}
	if mismatch("bounds", r.Bounds.Min) || mismatch("bounds", r.Bounds.Max) {
		return
	}

	b := geo.MakeBoundingRect(r.Bounds.Min, r.Bounds.Max)
	if !mismatch("start", r.Start.Position) && !b.Contains(r.Start.Position) {
		e.ErrorString("start %s is outside the bounds", r.Start.Position)
	}
	if !mismatch("end", r.End) && !b.Contains(r.End) {
		e.ErrorString("end %s is outside the bounds", r.End)
	}
}

func (r *Request) validateRegion(e *util.ErrorLogger, reg densitygrid.Region) {
	if err := reg.Validate(); err != nil {
		e.Error(err)
		return
	}
	if reg.Path.First().Position.LatLon != r.Geodetic {
		e.ErrorString("%s: coordinate mode does not match geodetic=%v", reg.Name, r.Geodetic)
	}
}
