// math/kdtree_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"math/rand/v2"
	"testing"
)

func TestBuildKDTree(t *testing.T) {
	// Test empty input
	tree := BuildKDTree(nil)
	if tree != nil {
		t.Error("expected nil tree for nil input")
	}
	if _, _, ok := tree.Nearest([2]float64{1, 1}); ok {
		t.Error("expected no nearest point for empty tree")
	}

	// Test single point
	points := [][2]float64{{3, 4}}
	tree = BuildKDTree(points)
	if tree == nil {
		t.Fatal("expected non-nil tree for single point")
	}
	if tree.Location != points[0] {
		t.Errorf("expected location %v, got %v", points[0], tree.Location)
	}
	if tree.Left != nil || tree.Right != nil {
		t.Error("expected nil children for single-point tree")
	}
	if _, d, ok := tree.Nearest([2]float64{0, 0}); !ok || d != 5 {
		t.Errorf("expected distance 5 from the origin, got %f (ok %v)", d, ok)
	}
}

func TestKDTreeNearestMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	var points [][2]float64
	for range 200 {
		points = append(points, [2]float64{float64(r.IntN(50)), float64(r.IntN(50))})
	}
	tree := BuildKDTree(points)

	for range 500 {
		q := [2]float64{r.Float64()*60 - 5, r.Float64()*60 - 5}

		want := gomath.Inf(1)
		for _, p := range points {
			want = Min(want, Distance2f(p, q))
		}

		_, got, ok := tree.Nearest(q)
		if !ok {
			t.Fatalf("%v: no nearest point found", q)
		}
		if gomath.Abs(got-want) > 1e-9 {
			t.Errorf("%v: nearest distance %f, brute force %f", q, got, want)
		}
	}
}
