// math/kdtree.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"slices"
)

// KDNode is a node in a 2D KD-tree.
type KDNode struct {
	Location [2]float64
	Left     *KDNode
	Right    *KDNode
}

// BuildKDTree constructs a balanced KD-tree from a slice of points.
// The tree alternates splitting by X and Y at each level. The provided
// slice is not modified.
func BuildKDTree(points [][2]float64) *KDNode {
	if len(points) == 0 {
		return nil
	}
	return buildKDTreeRecursive(slices.Clone(points), 0)
}

func buildKDTreeRecursive(points [][2]float64, depth int) *KDNode {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return &KDNode{Location: points[0]}
	}

	// Alternate between X (depth even) and Y (depth odd)
	axis := depth % 2

	// Sort by the splitting axis and find median
	slices.SortFunc(points, func(a, b [2]float64) int {
		return cmpFloat(a[axis], b[axis])
	})

	median := len(points) / 2

	return &KDNode{
		Location: points[median],
		Left:     buildKDTreeRecursive(points[:median], depth+1),
		Right:    buildKDTreeRecursive(points[median+1:], depth+1),
	}
}

// Nearest returns the point stored in the tree that is closest to p along
// with its Euclidean distance. For an empty tree, it returns false.
func (tree *KDNode) Nearest(p [2]float64) ([2]float64, float64, bool) {
	if tree == nil {
		return [2]float64{}, gomath.Inf(1), false
	}

	best, bestD2 := tree.Location, gomath.Inf(1)
	var search func(n *KDNode, depth int)
	search = func(n *KDNode, depth int) {
		if n == nil {
			return
		}
		if d2 := Sqr(n.Location[0]-p[0]) + Sqr(n.Location[1]-p[1]); d2 < bestD2 {
			best, bestD2 = n.Location, d2
		}

		axis := depth % 2
		delta := p[axis] - n.Location[axis]
		near, far := n.Left, n.Right
		if delta >= 0 {
			near, far = n.Right, n.Left
		}
		search(near, depth+1)
		// Only descend into the far side if the splitting plane is closer
		// than the best match so far.
		if Sqr(delta) < bestD2 {
			search(far, depth+1)
		}
	}
	search(tree, 0)

	return best, gomath.Sqrt(bestD2), true
}
