// geo/projection.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"

	"github.com/mmp/wxroute/math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection converts positions to and from a local planar frame measured
// in meters. Planar positions pass through unchanged.
type Projection interface {
	Project(p Position) [2]float64
	Inverse(xy [2]float64, alt float64) Position
}

// LocalProjection is an equirectangular projection about a reference
// point; it is accurate for distances that are small compared to the
// earth's radius.
type LocalProjection struct {
	ref    Position
	cosLat float64
}

func NewLocalProjection(ref Position) LocalProjection {
	return LocalProjection{ref: ref, cosLat: gomath.Cos(ref.Y)}
}

func (lp LocalProjection) Project(p Position) [2]float64 {
	if !p.LatLon {
		return math.Sub2f(p.XY(), lp.ref.XY())
	}
	dlon := math.NormalizeAngle(p.X - lp.ref.X)
	return [2]float64{dlon * lp.cosLat * EarthRadius, (p.Y - lp.ref.Y) * EarthRadius}
}

func (lp LocalProjection) Inverse(xy [2]float64, alt float64) Position {
	if !lp.ref.LatLon {
		return MakeXYZ(lp.ref.X+xy[0], lp.ref.Y+xy[1], alt)
	}
	p := Position{
		X:      lp.ref.X + xy[0]/(EarthRadius*lp.cosLat),
		Y:      lp.ref.Y + xy[1]/EarthRadius,
		Alt:    alt,
		LatLon: true,
	}
	return p.Normalize()
}

// MercatorProjection is the spherical pseudo-Mercator projection. Its
// coordinates are scaled by the cosine of the reference latitude so that
// distances near the reference are approximately in meters.
type MercatorProjection struct {
	origin orb.Point
	scale  float64
	ref    Position
}

func NewMercatorProjection(ref Position) MercatorProjection {
	mp := MercatorProjection{ref: ref, scale: 1}
	if ref.LatLon {
		mp.origin = project.WGS84.ToMercator(ref.Point())
		mp.scale = 1 / project.MercatorScaleFactor(ref.Point())
	}
	return mp
}

func (mp MercatorProjection) Project(p Position) [2]float64 {
	if !p.LatLon {
		return math.Sub2f(p.XY(), mp.ref.XY())
	}
	pt := p.Point()
	// Keep the projected longitude continuous with the origin.
	if d := pt[0] - math.Degrees(mp.ref.X); d > 180 {
		pt[0] -= 360
	} else if d < -180 {
		pt[0] += 360
	}
	m := project.WGS84.ToMercator(pt)
	return [2]float64{(m[0] - mp.origin[0]) * mp.scale, (m[1] - mp.origin[1]) * mp.scale}
}

func (mp MercatorProjection) Inverse(xy [2]float64, alt float64) Position {
	if !mp.ref.LatLon {
		return MakeXYZ(mp.ref.X+xy[0], mp.ref.Y+xy[1], alt)
	}
	m := orb.Point{mp.origin[0] + xy[0]/mp.scale, mp.origin[1] + xy[1]/mp.scale}
	return FromPoint(project.Mercator.ToWGS84(m), alt, true).Normalize()
}
