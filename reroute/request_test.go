// reroute/request_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package reroute

import (
	"errors"
	"strings"
	"testing"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/poly"
)

// baseRequest returns a valid planar request over a 20x20 meter area with
// 1 meter cells, flying east along y=10.5.
func baseRequest() *Request {
	return &Request{
		Bounds:      geo.Rect{Min: geo.MakeXYZ(0, 0, 0), Max: geo.MakeXYZ(19, 19, 0)},
		Start:       plan.Waypoint{Position: geo.MakeXYZ(0.5, 10.5, 100), Time: 0},
		End:         geo.MakeXYZ(18.5, 10.5, 100),
		CellSize:    1,
		GroundSpeed: 1,
	}
}

func TestValidate(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(r *Request)
		errs   []string
	}{
		{"Valid", func(r *Request) {}, nil},
		{"ZeroCellSize", func(r *Request) { r.CellSize = 0 }, []string{"cell_size"}},
		{"NegativeGroundSpeed", func(r *Request) { r.GroundSpeed = -5 }, []string{"ground_speed"}},
		{"NegativeBuffer", func(r *Request) { r.BufferCells = -1 }, []string{"buffer_cells"}},
		{"NegativeFactor", func(r *Request) { r.ProximityFactor = -1 }, []string{"proximity_factor"}},
		{"ProximityMode", func(r *Request) { r.ProximityMode = "nearby" }, []string{"proximity_mode"}},
		{"EmptyBounds", func(r *Request) { r.Bounds = geo.Rect{} }, []string{"bounds are empty"}},
		{"StartOutside", func(r *Request) { r.Start.Position = geo.MakeXYZ(-3, 2, 0) }, []string{"start"}},
		{"EndOutside", func(r *Request) { r.End = geo.MakeXYZ(30, 2, 0) }, []string{"end"}},
		{"CoordinateMode", func(r *Request) { r.Geodetic = true }, []string{"coordinate mode"}},
		{"BadHazard", func(r *Request) {
			r.Hazards = []densitygrid.Region{{Name: "empty"}}
		}, []string{"hazards: empty: region has no trajectory"}},
		{"BadKeepOut", func(r *Request) {
			r.KeepOut = []poly.SimplePoly{poly.MakeSimplePoly("line", geo.MakeXYZ(0, 0, 0), geo.MakeXYZ(1, 1, 0))}
		}, []string{"keep_out: polygon 0 (line)"}},
		{"ShortReference", func(r *Request) {
			ref := plan.MakePlan("ref", r.Start)
			r.Reference = &ref
		}, []string{"reference plan"}},
		{"Multiple", func(r *Request) {
			r.CellSize = 0
			r.GroundSpeed = 0
			r.TimeBefore = -1
		}, []string{"cell_size", "ground_speed", "time_before"}},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := baseRequest()
			test.modify(r)
			err := r.Validate()

			if len(test.errs) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("%v does not wrap ErrInvalidRequest", err)
			}
			for _, s := range test.errs {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q does not mention %q", err, s)
				}
			}
		})
	}
}

func TestValidateGeodetic(t *testing.T) {
	// Bounds that straddle the antimeridian.
	r := &Request{
		Bounds:      geo.Rect{Min: geo.MakeLatLonAlt(10, 179, 0), Max: geo.MakeLatLonAlt(11, -179, 0)},
		Start:       plan.Waypoint{Position: geo.MakeLatLonAlt(10.5, 179.5, 0)},
		End:         geo.MakeLatLonAlt(10.5, -179.5, 0),
		CellSize:    1000,
		GroundSpeed: 100,
		Geodetic:    true,
	}
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	r.End = geo.MakeLatLonAlt(10.5, 0, 0)
	if err := r.Validate(); err == nil {
		t.Errorf("expected an error for an end point on the far side of the earth")
	}
}

func TestWithDefaults(t *testing.T) {
	r := baseRequest()
	r.GroundSpeed = 2
	r.Hazards = []densitygrid.Region{densitygrid.MakeStaticRegion("h", geo.MakeXYZ(5, 5, 0), 1, 0, 10)}

	d := r.withDefaults()
	if r.ID != "" || r.Reference != nil || r.BaseWeight != 0 || r.ProximityMode != "" {
		t.Errorf("withDefaults modified its receiver: %+v", r)
	}
	if d.ID == "" {
		t.Errorf("no request ID assigned")
	}
	if d.BaseWeight != 1 || d.ProximityMode != ProximityPath {
		t.Errorf("defaults not applied: base weight %f, mode %q", d.BaseWeight, d.ProximityMode)
	}
	if d.Reference == nil || d.Reference.Len() != 2 {
		t.Fatalf("expected a straight reference plan, got %v", d.Reference)
	}
	if last := d.Reference.Last(); last.Position != r.End || last.Time != 9 {
		t.Errorf("reference ends at %s, expected %s at 9s", last, r.End)
	}

	d.Hazards[0].Radius = 100
	if r.Hazards[0].Radius != 1 {
		t.Errorf("hazards share storage with the copy")
	}

	r.ID = "given"
	if d := r.withDefaults(); d.ID != "given" {
		t.Errorf("ID %q replaced", d.ID)
	}
}

func TestDecodeRequest(t *testing.T) {
	js := `{
  "bounds": {"min": {"x": 0, "y": 0, "alt": 0}, "max": {"x": 19, "y": 19, "alt": 0}},
  "start": {"position": {"x": 0.5, "y": 10.5, "alt": 100}, "time": 30},
  "end": {"x": 18.5, "y": 10.5, "alt": 100},
  "cell_size": 1,
  "ground_speed": 5,
  "hazards": [{"name": "cb", "radius": 3,
               "path": {"waypoints": [{"position": {"x": 9.5, "y": 10.5, "alt": 0}, "time": 0},
                                      {"position": {"x": 9.5, "y": 12.5, "alt": 0}, "time": 100}]}}],
  "lookahead_end": 90,
  "reduce": true
}`
	r, err := DecodeRequest(strings.NewReader(js))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if r.Start.Time != 30 || r.CellSize != 1 || r.GroundSpeed != 5 || !r.Reduce {
		t.Errorf("decoded %+v", r)
	}
	if r.LookaheadEnd == nil || *r.LookaheadEnd != 90 {
		t.Errorf("lookahead_end not decoded")
	}
	if len(r.Hazards) != 1 || r.Hazards[0].Path.Len() != 2 || r.Hazards[0].Radius != 3 {
		t.Errorf("hazards decoded as %+v", r.Hazards)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("decoded request is invalid: %v", err)
	}

	if _, err := DecodeRequest(strings.NewReader(`{"cell_sise": 1}`)); err == nil {
		t.Errorf("expected an error for an unknown field")
	}
	if _, err := DecodeRequest(strings.NewReader("{\n\"cell_size\": \"big\"}")); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected an error on line 2, got %v", err)
	}
}
