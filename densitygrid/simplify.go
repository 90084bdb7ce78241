// densitygrid/simplify.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	gomath "math"

	"github.com/mmp/wxroute/math"
)

// Number of samples per cell of length taken along a segment when
// checking it against the corridor.
const corridorSamplesPerCell = 4

func direction(a, b CellIndex) math.CardinalOrdinalDirection {
	return math.DirectionOf(b.X-a.X, b.Y-a.Y)
}

// Thin removes the interior cells of each run of steps that share the same
// compass direction, leaving only the cells where the direction changes.
func Thin(cells []CellIndex) []CellIndex {
	idx := thinIndices(cells)
	r := make([]CellIndex, len(idx))
	for i, j := range idx {
		r[i] = cells[j]
	}
	return r
}

// thinIndices returns the indices into cells of the points that Thin keeps.
func thinIndices(cells []CellIndex) []int {
	if len(cells) == 0 {
		return nil
	}

	idx := []int{0}
	var lastDir math.CardinalOrdinalDirection
	for i := 1; i < len(cells); i++ {
		dir := direction(cells[i-1], cells[i])
		if i > 1 && dir == lastDir {
			// Continuing in the same direction: the previous point
			// becomes an interior point of the run.
			idx[len(idx)-1] = i
		} else {
			idx = append(idx, i)
		}
		lastDir = dir
	}
	return idx
}

// Reduce thins the path and then removes any further points that can be
// skipped while staying within the corridor: starting from the last kept
// point j, point i is dropped if the straight segment from j to the point
// after i stays in the corridor at all of the times sampled along it. The
// first and last points are always kept.
func Reduce(path Path, onCorridor func(c CellIndex, t float64) bool) []CellIndex {
	idx := thinIndices(path.Cells)
	if len(idx) <= 2 {
		return Thin(path.Cells)
	}

	r := []CellIndex{path.Cells[0]}
	j := 0
	for k := 1; k < len(idx)-1; k++ {
		next := idx[k+1]
		if !segmentOnCorridor(path.Cells[j], path.Times[j], path.Cells[next], path.Times[next], onCorridor) {
			j = idx[k]
			r = append(r, path.Cells[j])
		}
	}
	return append(r, path.Cells[idx[len(idx)-1]])
}

// segmentOnCorridor samples the segment between the centers of cells a
// and b, interpolating times between ta and tb.
func segmentOnCorridor(a CellIndex, ta float64, b CellIndex, tb float64, onCorridor func(CellIndex, float64) bool) bool {
	pa := [2]float64{float64(a.X) + 0.5, float64(a.Y) + 0.5}
	pb := [2]float64{float64(b.X) + 0.5, float64(b.Y) + 0.5}
	n := max(1, int(gomath.Ceil(math.Distance2f(pa, pb)*corridorSamplesPerCell)))

	for s := 0; s <= n; s++ {
		f := float64(s) / float64(n)
		p := math.Lerp2f(f, pa, pb)
		c := CellIndex{X: int(gomath.Floor(p[0])), Y: int(gomath.Floor(p[1]))}
		if !onCorridor(c, math.Lerp(f, ta, tb)) {
			return false
		}
	}
	return true
}

// Corridor returns a predicate for Reduce that accepts a cell at a time if
// the cell is on the given path and the model's cost for it at that time
// is finite. model may be nil, in which case only membership is checked.
func Corridor(path Path, model CostModel) func(CellIndex, float64) bool {
	cells := make(map[CellIndex]struct{}, len(path.Cells))
	for _, c := range path.Cells {
		cells[c] = struct{}{}
	}

	return func(c CellIndex, t float64) bool {
		if _, ok := cells[c]; !ok {
			return false
		}
		return model == nil || math.IsFinite(model.CostAt(c, t))
	}
}
