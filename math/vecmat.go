// math/vecmat.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// 2D vectors

func Add2f(a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{a[0] + b[0], a[1] + b[1]}
}

func Sub2f(a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{a[0] - b[0], a[1] - b[1]}
}

func Scale2f(a [2]float64, s float64) [2]float64 {
	return [2]float64{s * a[0], s * a[1]}
}

func Dot(a, b [2]float64) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

// Cross returns the z component of the cross product of a and b.
func Cross(a, b [2]float64) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// Equivalent to acos(Dot(a, b)), but more numerically stable.
// via http://www.plunk.org/~hatch/rightway.html
func AngleBetween(v1, v2 [2]float64) float64 {
	asin := func(a float64) float64 {
		return gomath.Asin(Clamp(a, -1, 1))
	}

	if Dot(v1, v2) < 0 {
		return gomath.Pi - 2*asin(Length2f(Add2f(v1, v2))/2)
	} else {
		return 2 * asin(Distance2f(v2, v1)/2)
	}
}

// Lerp2f returns the linear interpolation of a and b at parameter x.
func Lerp2f(x float64, a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{(1-x)*a[0] + x*b[0], (1-x)*a[1] + x*b[1]}
}

// Length2f returns the length of the given 2D vector.
func Length2f(v [2]float64) float64 {
	return gomath.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Distance2f returns the distance between two points in 2D.
func Distance2f(a [2]float64, b [2]float64) float64 {
	return Length2f(Sub2f(a, b))
}

// Normalize2f normalizes the given vector; the zero vector is returned
// unchanged.
func Normalize2f(a [2]float64) [2]float64 {
	l := Length2f(a)
	if l == 0 {
		return [2]float64{0, 0}
	}
	return Scale2f(a, 1/l)
}

// Mid2f returns the midpoint of a and b.
func Mid2f(a [2]float64, b [2]float64) [2]float64 {
	return Lerp2f(0.5, a, b)
}
