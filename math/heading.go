// math/heading.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// headings and directions

type CardinalOrdinalDirection int

const (
	North CardinalOrdinalDirection = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
	// UndefinedDirection is the direction between two coincident points.
	UndefinedDirection
)

func (co CardinalOrdinalDirection) ShortString() string {
	switch co {
	case North:
		return "N"
	case NorthEast:
		return "NE"
	case East:
		return "E"
	case SouthEast:
		return "SE"
	case South:
		return "S"
	case SouthWest:
		return "SW"
	case West:
		return "W"
	case NorthWest:
		return "NW"
	case UndefinedDirection:
		return "undef"
	default:
		return "ERROR"
	}
}

func (co CardinalOrdinalDirection) String() string {
	return co.ShortString()
}

// DirectionOf returns the compass direction of the step (dx, dy), with +x
// east and +y north. Only the signs of the components are considered.
func DirectionOf(dx, dy int) CardinalOrdinalDirection {
	switch {
	case dx == 0 && dy > 0:
		return North
	case dx > 0 && dy > 0:
		return NorthEast
	case dx > 0 && dy == 0:
		return East
	case dx > 0 && dy < 0:
		return SouthEast
	case dx == 0 && dy < 0:
		return South
	case dx < 0 && dy < 0:
		return SouthWest
	case dx < 0 && dy == 0:
		return West
	case dx < 0 && dy > 0:
		return NorthWest
	default:
		return UndefinedDirection
	}
}

// Track returns the direction of the vector v as an angle in radians
// measured clockwise from +y, in [0, 2pi).
func Track(v [2]float64) float64 {
	// atan2 normally measures w.r.t. the +x axis counter-clockwise;
	// passing (x,y) measures from +y clockwise.
	a := gomath.Atan2(v[0], v[1])
	if a < 0 {
		a += 2 * gomath.Pi
	}
	return a
}

// TurnDelta returns the magnitude of the turn from track a to track b in
// radians, in [0, pi].
func TurnDelta(a, b float64) float64 {
	return Abs(NormalizeAngle(b - a))
}
