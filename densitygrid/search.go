// densitygrid/search.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package densitygrid

import (
	"container/heap"
	"slices"
	"time"

	"github.com/mmp/wxroute/math"
)

// Expansions between deadline checks.
const deadlineStride = 256

// SearchOptions controls Search.
type SearchOptions struct {
	// GroundSpeed in m/s is used to estimate the arrival time at each
	// cell. It must be positive.
	GroundSpeed float64
	// MaxExpansions, if positive, bounds the number of cells expanded;
	// exceeding it is reported as no path.
	MaxExpansions int
	// Deadline, if non-zero, bounds the wall-clock time of the search;
	// passing it is reported as no path. It is checked on the first
	// expansion and every deadlineStride expansions after that.
	Deadline time.Time
}

// Path is the result of a successful search: the cells from start to goal
// inclusive, the estimated time at each, and the total cost.
type Path struct {
	Cells []CellIndex
	Times []float64
	Cost  float64
}

func (p Path) Len() int { return len(p.Cells) }

type searchNode struct {
	cell    CellIndex
	parent  *searchNode
	t       float64
	g, h, f float64
	dist    float64 // Euclidean distance to the goal, in cells
	closed  bool
	index   int // for heap.Interface
}

type nodeHeap []*searchNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	return h[i].dist < h[j].dist
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*h = old[:len(old)-1]
	return n
}

// Search finds the lowest-cost 8-connected path of cells from the cell
// containing the grid's start position to the cell containing its end
// position. The cost of a path is the sum of model's cost for each cell
// on it at the estimated time of arrival there, starting with the start
// cell at the grid's start time; cells with infinite cost are not
// traversable. The best cost found for each expanded cell is recorded as
// its searched weight. Search returns false if there is no path or if
// the search exceeds the limits given in opts.
func Search(g *Grid, model CostModel, opts SearchOptions) (Path, bool) {
	start, ok := g.CellOf(g.Start())
	if !ok || !g.InRange(start) {
		return Path{}, false
	}
	goal, ok := g.CellOf(g.End())
	if !ok || !g.InRange(goal) || opts.GroundSpeed <= 0 {
		return Path{}, false
	}

	var scale float64
	if lb, ok := model.(lowerBounder); ok {
		scale = lb.LowerBound()
	}
	heuristic := func(c CellIndex) float64 {
		return float64(c.Chebyshev(goal)) * scale
	}

	g0 := model.CostAt(start, g.StartTime())
	g.SetSearchedWeight(start, g0)
	if !math.IsFinite(g0) {
		return Path{}, false
	}

	nodes := make(map[CellIndex]*searchNode)
	open := &nodeHeap{}
	sn := &searchNode{
		cell: start,
		t:    g.StartTime(),
		g:    g0,
		h:    heuristic(start),
		dist: start.Distance(goal),
	}
	sn.f = sn.g + sn.h
	nodes[start] = sn
	heap.Push(open, sn)

	expansions := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*searchNode)
		cur.closed = true
		g.SetSearchedWeight(cur.cell, cur.g)

		if cur.cell == goal {
			return cur.path(), true
		}

		if !opts.Deadline.IsZero() && expansions%deadlineStride == 0 && time.Now().After(opts.Deadline) {
			return Path{}, false
		}
		expansions++
		if opts.MaxExpansions > 0 && expansions > opts.MaxExpansions {
			return Path{}, false
		}

		curCenter, _ := g.Center(cur.cell)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				nc := cur.cell.Add(dx, dy)
				if (dx == 0 && dy == 0) || !g.InRange(nc) {
					continue
				}
				if n, ok := nodes[nc]; ok && n.closed {
					continue
				}

				center, _ := g.Center(nc)
				t := cur.t + curCenter.DistanceH(center)/opts.GroundSpeed
				cost := model.CostAt(nc, t)
				if !math.IsFinite(cost) {
					continue
				}

				gn := cur.g + cost
				if n, ok := nodes[nc]; !ok {
					n = &searchNode{
						cell:   nc,
						parent: cur,
						t:      t,
						g:      gn,
						h:      heuristic(nc),
						dist:   nc.Distance(goal),
					}
					n.f = n.g + n.h
					nodes[nc] = n
					heap.Push(open, n)
				} else if gn < n.g {
					n.parent, n.t, n.g = cur, t, gn
					n.f = n.g + n.h
					heap.Fix(open, n.index)
				}
			}
		}
	}

	return Path{}, false
}

func (n *searchNode) path() Path {
	p := Path{Cost: n.g}
	for ; n != nil; n = n.parent {
		p.Cells = append(p.Cells, n.cell)
		p.Times = append(p.Times, n.t)
	}
	slices.Reverse(p.Cells)
	slices.Reverse(p.Times)
	return p
}

// IsConnected reports whether each pair of consecutive cells in the path
// are 8-adjacent.
func (p Path) IsConnected() bool {
	for i := 1; i < len(p.Cells); i++ {
		if p.Cells[i].Chebyshev(p.Cells[i-1]) != 1 {
			return false
		}
	}
	return true
}
