// math/core.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// Lerp linearly interpolates between a and b; x=0 gives a and x=1 gives b.
func Lerp(x, a, b float64) float64 {
	return (1-x)*a + x*b
}

func Sign[V constraints.Signed | constraints.Float](v V) V {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

// IsFinite reports whether v is neither infinite nor NaN.
func IsFinite(v float64) bool {
	return !gomath.IsInf(v, 0) && !gomath.IsNaN(v)
}

// NormalizeAngle returns the angle a (radians) mapped into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = gomath.Mod(a, 2*gomath.Pi)
	if a <= -gomath.Pi {
		a += 2 * gomath.Pi
	} else if a > gomath.Pi {
		a -= 2 * gomath.Pi
	}
	return a
}
