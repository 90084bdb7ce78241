// geo/position.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	gomath "math"

	"github.com/mmp/wxroute/math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// EarthRadius is the spherical earth radius in meters used for all
// geodetic distances and for converting linear cell sizes to angles.
const EarthRadius = orb.EarthRadius

// Position is a point in either a planar frame (X, Y in meters) or in
// geodetic coordinates (X longitude, Y latitude, both in radians). Alt is
// always in meters.
type Position struct {
	X, Y   float64
	Alt    float64
	LatLon bool
}

func MakeXYZ(x, y, alt float64) Position {
	return Position{X: x, Y: y, Alt: alt}
}

// MakeLatLonAlt returns a geodetic position given latitude and longitude
// in degrees.
func MakeLatLonAlt(lat, lon, alt float64) Position {
	return Position{X: math.Radians(lon), Y: math.Radians(lat), Alt: alt, LatLon: true}
}

// FromPoint converts an orb.Point (degrees when latlon is set) back to a
// Position.
func FromPoint(p orb.Point, alt float64, latlon bool) Position {
	if latlon {
		return MakeLatLonAlt(p[1], p[0], alt)
	}
	return MakeXYZ(p[0], p[1], alt)
}

func (p Position) Lat() float64 { return p.Y }
func (p Position) Lon() float64 { return p.X }

func (p Position) XY() [2]float64 { return [2]float64{p.X, p.Y} }

// Point returns the position as an orb.Point; geodetic positions are
// returned in degrees (lon, lat) as orb expects.
func (p Position) Point() orb.Point {
	if p.LatLon {
		return orb.Point{math.Degrees(p.X), math.Degrees(p.Y)}
	}
	return orb.Point{p.X, p.Y}
}

func (p Position) WithAlt(alt float64) Position {
	p.Alt = alt
	return p
}

// WithXY returns the position with its horizontal coordinates replaced by
// the given native coordinates.
func (p Position) WithXY(xy [2]float64) Position {
	p.X, p.Y = xy[0], xy[1]
	return p.Normalize()
}

// Normalize maps a geodetic position's longitude into (-pi, pi] and
// clamps its latitude. Planar positions are returned unchanged.
func (p Position) Normalize() Position {
	if p.LatLon {
		p.X = math.NormalizeAngle(p.X)
		p.Y = math.Clamp(p.Y, -gomath.Pi/2, gomath.Pi/2)
	}
	return p
}

// DistanceH returns the horizontal distance in meters between p and q.
func (p Position) DistanceH(q Position) float64 {
	if p.LatLon {
		return orbgeo.DistanceHaversine(p.Point(), q.Point())
	}
	return math.Distance2f(p.XY(), q.XY())
}

// Bearing returns the initial track from p to q in radians, clockwise
// from north, in [0, 2pi).
func (p Position) Bearing(q Position) float64 {
	if p.LatLon {
		b := math.Radians(orbgeo.Bearing(p.Point(), q.Point()))
		if b < 0 {
			b += 2 * gomath.Pi
		}
		return b
	}
	return math.Track(math.Sub2f(q.XY(), p.XY()))
}

// Offset returns the position reached by moving dist meters from p along
// the given track (radians).
func (p Position) Offset(dist, track float64) Position {
	if p.LatLon {
		return FromPoint(orbgeo.PointAtBearingAndDistance(p.Point(), math.Degrees(track), dist), p.Alt, true).Normalize()
	}
	s, c := gomath.Sincos(track)
	return MakeXYZ(p.X+dist*s, p.Y+dist*c, p.Alt)
}

// Interpolate returns the position a fraction f of the way from p to q;
// geodetic positions follow the great circle.
func (p Position) Interpolate(q Position, f float64) Position {
	alt := math.Lerp(f, p.Alt, q.Alt)
	if p.LatLon {
		d := p.DistanceH(q)
		if d == 0 {
			return p.WithAlt(alt)
		}
		return p.Offset(f*d, p.Bearing(q)).WithAlt(alt)
	}
	return MakeXYZ(math.Lerp(f, p.X, q.X), math.Lerp(f, p.Y, q.Y), alt)
}

// AlmostEqual reports whether p and q are within tol meters both
// horizontally and vertically.
func (p Position) AlmostEqual(q Position, tol float64) bool {
	return p.LatLon == q.LatLon && p.DistanceH(q) <= tol && math.Abs(p.Alt-q.Alt) <= tol
}

func (p Position) String() string {
	if p.LatLon {
		return fmt.Sprintf("(%.6f, %.6f, %.1fm)", math.Degrees(p.Y), math.Degrees(p.X), p.Alt)
	}
	return fmt.Sprintf("(%.2f, %.2f, %.1fm)", p.X, p.Y, p.Alt)
}

///////////////////////////////////////////////////////////////////////////
// JSON

type jsonPosition struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
	X   *float64 `json:"x,omitempty"`
	Y   *float64 `json:"y,omitempty"`
	Alt float64  `json:"alt"`
}

// MarshalJSON encodes geodetic positions as {lat, lon, alt} in degrees and
// planar positions as {x, y, alt}.
func (p Position) MarshalJSON() ([]byte, error) {
	if p.LatLon {
		lat, lon := math.Degrees(p.Y), math.Degrees(p.X)
		return json.Marshal(jsonPosition{Lat: &lat, Lon: &lon, Alt: p.Alt})
	}
	x, y := p.X, p.Y
	return json.Marshal(jsonPosition{X: &x, Y: &y, Alt: p.Alt})
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var jp jsonPosition
	if err := json.Unmarshal(b, &jp); err != nil {
		return err
	}

	switch {
	case jp.Lat != nil && jp.Lon != nil:
		*p = MakeLatLonAlt(*jp.Lat, *jp.Lon, jp.Alt)
	case jp.X != nil && jp.Y != nil:
		*p = MakeXYZ(*jp.X, *jp.Y, jp.Alt)
	default:
		return errors.New("position must have either lat/lon or x/y")
	}
	return nil
}
