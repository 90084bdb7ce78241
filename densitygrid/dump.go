// densitygrid/dump.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/math"
	"github.com/mmp/wxroute/util"
)

// WeightsString returns the base weights as text, north at the top, with
// "---" for cells that have no weight.
func (g *Grid) WeightsString() string {
	return g.dumpValues(g.Weight)
}

// SearchedWeightsString is like WeightsString but prints the searched
// weights; cells the last search did not reach print as "---".
func (g *Grid) SearchedWeightsString() string {
	return g.dumpValues(g.SearchedWeight)
}

func (g *Grid) dumpValues(value func(CellIndex) float64) string {
	var sb strings.Builder
	for y := g.sizeY - 1; y >= 0; y-- {
		for x := 0; x < g.sizeX; x++ {
			if v := value(CellIndex{x, y}); math.IsFinite(v) {
				fmt.Fprintf(&sb, " %3d", int(v))
			} else {
				sb.WriteString(" ---")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// MarksString draws the grid with one character per cell: S and E for the
// start and end cells, * for marked cells, . for traversable cells and #
// for cells with no weight.
func (g *Grid) MarksString() string {
	start, _ := g.CellOf(g.start)
	end, _ := g.CellOf(g.end)

	var sb strings.Builder
	for y := g.sizeY - 1; y >= 0; y-- {
		for x := 0; x < g.sizeX; x++ {
			c := CellIndex{x, y}
			switch {
			case c == start:
				sb.WriteByte('S')
			case c == end:
				sb.WriteByte('E')
			case g.Marked(c):
				sb.WriteByte('*')
			case math.IsFinite(g.Weight(c)):
				sb.WriteByte('.')
			default:
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Layers names the grid layers that LayerString renders.
var Layers = []string{"weights", "searched", "marks"}

// LayerString returns the text rendering of the named layer. It returns
// false if the layer is not one of Layers.
func (g *Grid) LayerString(layer string) (string, bool) {
	switch layer {
	case "weights":
		return g.WeightsString(), true
	case "searched":
		return g.SearchedWeightsString(), true
	case "marks":
		return g.MarksString(), true
	default:
		return "", false
	}
}

///////////////////////////////////////////////////////////////////////////
// Snapshot

// Snapshot is the serialized state of a Grid, used for offline inspection
// of a planning run. Per-cell values are stored in the grid's index order.
type Snapshot struct {
	Geodetic  bool
	CellSize  float64 // meters
	SizeX     int
	SizeY     int
	Origin    [2]float64 // native coordinates of corner (0,0), after snapping
	Start     geo.Position
	StartTime float64
	End       geo.Position
	Weights   []float64
	Searched  []float64
	// Marked holds the delta-encoded indices of the marked cells.
	Marked []int
}

func (g *Grid) Snapshot() Snapshot {
	var marked []int
	for i, m := range g.marked {
		if m {
			marked = append(marked, i)
		}
	}
	return Snapshot{
		Geodetic:  g.geodetic,
		CellSize:  g.cellDist,
		SizeX:     g.sizeX,
		SizeY:     g.sizeY,
		Origin:    math.Add2f(g.origin, g.offset),
		Start:     g.start,
		StartTime: g.startTime,
		End:       g.end,
		Weights:   slices.Clone(g.weights),
		Searched:  slices.Clone(g.searched),
		Marked:    util.DeltaEncode(marked),
	}
}

// Grid reconstructs the grid recorded in the snapshot.
func (s Snapshot) Grid() (*Grid, error) {
	n := (s.SizeX + 1) * (s.SizeY + 1)
	if s.SizeX <= 0 || s.SizeY <= 0 || s.CellSize <= 0 {
		return nil, fmt.Errorf("invalid snapshot dimensions %dx%d, cell size %f", s.SizeX, s.SizeY, s.CellSize)
	}
	if len(s.Weights) != n || len(s.Searched) != n {
		return nil, fmt.Errorf("snapshot has %d weights and %d searched weights; expected %d",
			len(s.Weights), len(s.Searched), n)
	}

	native := s.CellSize
	if s.Geodetic {
		native = s.CellSize / geo.EarthRadius
	}
	g := newGrid(s.Origin, s.SizeX, s.SizeY, native, s.CellSize, s.Geodetic)
	g.start, g.startTime, g.end = s.Start, s.StartTime, s.End

	copy(g.weights, s.Weights)
	for i, w := range s.Searched {
		g.SetSearchedWeight(g.cellAt(i), w)
	}
	for _, i := range util.DeltaDecode(s.Marked) {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%d: marked cell index out of range", i)
		}
		g.marked[i] = true
	}
	return g, nil
}

// SaveSnapshot writes the grid's snapshot to path as zstd-compressed
// msgpack.
func (g *Grid) SaveSnapshot(path string) error {
	return util.StoreObject(path, g.Snapshot())
}

// LoadSnapshot reads a grid saved with SaveSnapshot.
func LoadSnapshot(path string) (*Grid, error) {
	var s Snapshot
	if _, err := util.RetrieveObject(path, &s); err != nil {
		return nil, err
	}
	return s.Grid()
}
