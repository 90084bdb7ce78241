// reroute/planner.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package reroute plans trajectories around hazards: it validates planning
// requests and runs the density grid pipeline (build, shape, search,
// simplify, reconstruct) for them.
package reroute

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/geo"
	"github.com/mmp/wxroute/log"
	"github.com/mmp/wxroute/plan"

	"github.com/goforj/godump"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Result is the outcome of a planning request. When no path was found,
// Found is false and Trajectory is empty; Grid is always set so that the
// search can be inspected.
type Result struct {
	ID         string                  `json:"id"`
	Found      bool                    `json:"found"`
	Trajectory plan.Plan               `json:"trajectory"`
	Raw        []densitygrid.CellIndex `json:"raw,omitempty"`
	Simplified []densitygrid.CellIndex `json:"simplified,omitempty"`
	Cost       float64                 `json:"cost,omitempty"`
	Elapsed    time.Duration           `json:"elapsed"`

	Grid *densitygrid.Grid `json:"-"`

	key gridKey
}

// gridKey identifies grids with identical corners, which can be reused
// across requests.
type gridKey struct {
	Bounds      geo.Rect
	BufferCells int
	CellSize    float64
	Geodetic    bool
}

// Stats are running totals for a Planner.
type Stats struct {
	Requests   int64 `json:"requests"`
	Invalid    int64 `json:"invalid"`
	Found      int64 `json:"found"`
	NotFound   int64 `json:"not_found"`
	PoolHits   int64 `json:"pool_hits"`
	PoolMisses int64 `json:"pool_misses"`
	PoolSize   int   `json:"pool_size"`
}

// Planner runs planning requests. Grids are kept in an LRU pool after
// they are released so that repeated requests over the same region do not
// rebuild them; a grid is removed from the pool while it is in use, so a
// Planner may be used from multiple goroutines.
type Planner struct {
	lg *log.Logger

	mu   sync.Mutex
	pool *expirable.LRU[gridKey, *densitygrid.Grid]

	requests, invalid, found, notFound atomic.Int64
	hits, misses                       atomic.Int64
}

// NewPlanner returns a Planner that keeps up to poolSize idle grids for
// at most ttl. A poolSize of zero disables pooling.
func NewPlanner(lg *log.Logger, poolSize int, ttl time.Duration) *Planner {
	p := &Planner{lg: lg}
	if poolSize > 0 {
		p.pool = expirable.NewLRU[gridKey, *densitygrid.Grid](poolSize, nil, ttl)
	}
	return p
}

func (p *Planner) Stats() Stats {
	s := Stats{
		Requests:   p.requests.Load(),
		Invalid:    p.invalid.Load(),
		Found:      p.found.Load(),
		NotFound:   p.notFound.Load(),
		PoolHits:   p.hits.Load(),
		PoolMisses: p.misses.Load(),
	}
	if p.pool != nil {
		s.PoolSize = p.pool.Len()
	}
	return s
}

// checkout returns a grid for the request, reusing a pooled one if
// possible. The grid is set up for the request's endpoints.
func (p *Planner) checkout(req *Request) (*densitygrid.Grid, gridKey) {
	key := gridKey{
		Bounds:      req.Bounds,
		BufferCells: req.BufferCells,
		CellSize:    req.CellSize,
		Geodetic:    req.Geodetic,
	}

	if p.pool != nil {
		p.mu.Lock()
		g, ok := p.pool.Peek(key)
		if ok {
			p.pool.Remove(key)
		}
		p.mu.Unlock()

		if ok {
			p.hits.Add(1)
			g.Retarget(req.Start, req.End)
			return g, key
		}
	}

	p.misses.Add(1)
	return densitygrid.Build(req.Bounds, req.Start, req.End, req.BufferCells, req.CellSize, req.Geodetic), key
}

// Release returns the result's grid to the pool. The grid must not be
// used after it has been released.
func (p *Planner) Release(r *Result) {
	if r == nil || r.Grid == nil || p.pool == nil {
		return
	}
	p.mu.Lock()
	p.pool.Add(r.key, r.Grid)
	p.mu.Unlock()
	r.Grid = nil
}

// Plan validates the request and plans a trajectory for it. Configuration
// errors are returned before any grid is built and wrap
// ErrInvalidRequest; failing to find a path is not an error.
func (p *Planner) Plan(req *Request) (*Result, error) {
	p.requests.Add(1)
	if err := req.Validate(); err != nil {
		p.invalid.Add(1)
		return nil, err
	}

	req = req.withDefaults()
	lg := p.lg.With(slog.String("request", req.ID))
	if lg.DebugEnabled() {
		lg.Debugf("request: %s", godump.DumpStr(req))
	}

	start := time.Now()
	g, key := p.checkout(req)
	g.SnapToStart()
	lg.Debug("grid ready", slog.Duration("elapsed", time.Since(start)), slog.String("grid", g.String()))

	shapeWeights(g, req)
	model := costModel(g, req)
	lg.Debug("weights set", slog.Duration("elapsed", time.Since(start)))

	r := &Result{ID: req.ID, Grid: g, key: key}
	path, ok := densitygrid.Search(g, model, densitygrid.SearchOptions{
		GroundSpeed:   req.GroundSpeed,
		MaxExpansions: req.MaxExpansions,
		Deadline:      req.deadline(),
	})
	lg.Debug("search done", slog.Duration("elapsed", time.Since(start)), slog.Bool("found", ok))

	if !ok {
		p.notFound.Add(1)
		r.Elapsed = time.Since(start)
		lg.Info("no path found", slog.Duration("elapsed", r.Elapsed))
		return r, nil
	}

	g.MarkPath(path.Cells)
	var simplified []densitygrid.CellIndex
	if req.Reduce {
		simplified = densitygrid.Reduce(path, densitygrid.Corridor(path, model))
	} else {
		simplified = densitygrid.Thin(path.Cells)
	}

	r.Found = true
	r.Raw = path.Cells
	r.Simplified = simplified
	r.Cost = path.Cost
	r.Trajectory = densitygrid.ToTrajectory(g, simplified, path.Cells, req.GroundSpeed, req.VerticalSpeed)
	r.Trajectory.Name = req.ID
	r.Elapsed = time.Since(start)
	p.found.Add(1)

	lg.Debug("planned", slog.Duration("elapsed", r.Elapsed), slog.Int("cells", len(path.Cells)),
		slog.Int("waypoints", r.Trajectory.Len()), slog.Float64("cost", path.Cost))
	return r, nil
}
