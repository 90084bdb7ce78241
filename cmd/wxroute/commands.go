// cmd/wxroute/commands.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/log"
	"github.com/mmp/wxroute/plan"
	"github.com/mmp/wxroute/poly"
	"github.com/mmp/wxroute/reroute"
	"github.com/mmp/wxroute/server"
	"github.com/mmp/wxroute/util"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func writeResult(w io.Writer, res *reroute.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func (c *planCmd) run(lg *log.Logger) error {
	req, err := util.LoadJSONFile[reroute.Request](c.Request)
	if err != nil {
		return err
	}

	if c.KeepOutOSM != "" {
		var filter func(osm.Tags) bool
		if c.OSMTag != "" {
			key, value, _ := strings.Cut(c.OSMTag, "=")
			filter = poly.TagFilter(key, value)
		}
		polys, err := poly.ReadOSMFile(context.Background(), c.KeepOutOSM, req.Start.Position.Alt, filter)
		if err != nil {
			return err
		}
		lg.Infof("%s: read %d keep-out polygons", c.KeepOutOSM, len(polys))
		req.KeepOut = append(req.KeepOut, polys...)
	}
	for _, layer := range c.Show {
		if !slices.Contains(densitygrid.Layers, layer) {
			return errors.Errorf("%s: unknown grid layer; expected one of %s", layer,
				strings.Join(densitygrid.Layers, ", "))
		}
	}

	planner := reroute.NewPlanner(lg, 0, 0)
	res, err := planner.Plan(&req)
	if err != nil {
		return err
	}
	defer planner.Release(res)

	if c.Snapshot != "" {
		if err := res.Grid.SaveSnapshot(c.Snapshot); err != nil {
			return errors.Wrapf(err, "%s: unable to save grid snapshot", c.Snapshot)
		}
	}
	for _, layer := range c.Show {
		d, _ := res.Grid.LayerString(layer)
		fmt.Fprintf(os.Stderr, "%s:\n%s\n", layer, d)
	}
	if !res.Found {
		fmt.Fprintf(os.Stderr, "%s: no path found\n", c.Request)
	}

	return writeResult(os.Stdout, res)
}

func (c *batchCmd) run(lg *log.Logger) error {
	if c.Output != "" {
		if err := os.MkdirAll(c.Output, 0o755); err != nil {
			return errors.Wrapf(err, "%s: unable to create output directory", c.Output)
		}
	}

	jobs := c.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	planner := reroute.NewPlanner(lg, jobs, 0)

	var eg errgroup.Group
	eg.SetLimit(jobs)

	// Results go to stdout one per line when there's no output directory.
	var stdout chan *reroute.Result
	done := make(chan error, 1)
	if c.Output == "" {
		stdout = make(chan *reroute.Result, jobs)
		go func() {
			enc := json.NewEncoder(os.Stdout)
			var err error
			for res := range stdout {
				if err == nil {
					err = enc.Encode(res)
				}
			}
			done <- err
		}()
	}

	var failed atomic.Int64
	for _, fn := range c.Requests {
		eg.Go(func() error {
			req, err := util.LoadJSONFile[reroute.Request](fn)
			if err != nil {
				return err
			}
			if req.ID == "" {
				req.ID = strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
			}

			res, err := planner.Plan(&req)
			if err != nil {
				// Invalid requests are reported but don't stop the batch.
				lg.Warn("planning failed", "file", fn, "error", err)
				fmt.Fprintf(os.Stderr, "%s: %v\n", fn, err)
				failed.Add(1)
				return nil
			}
			planner.Release(res)

			if stdout != nil {
				stdout <- res
				return nil
			}
			path := filepath.Join(c.Output, req.ID+".json")
			f, err := os.Create(path)
			if err != nil {
				return errors.Wrapf(err, "%s: unable to create result file", path)
			}
			if err := writeResult(f, res); err != nil {
				f.Close()
				return errors.Wrapf(err, "%s", path)
			}
			return errors.Wrapf(f.Close(), "%s", path)
		})
	}

	err := eg.Wait()
	if stdout != nil {
		close(stdout)
		if werr := <-done; err == nil {
			err = werr
		}
	}

	st := planner.Stats()
	lg.Info("batch finished", "requests", st.Requests, "found", st.Found, "not_found", st.NotFound,
		"invalid", st.Invalid, "pool_hits", st.PoolHits)
	if err == nil && failed.Load() > 0 {
		err = errors.Errorf("%d of %d requests failed", failed.Load(), len(c.Requests))
	}
	return err
}

func (c *rerouteCmd) run(lg *log.Logger) error {
	rr, err := util.LoadJSONFile[reroute.ReRouteRequest](c.Request)
	if err != nil {
		return err
	}

	planner := reroute.NewPlanner(lg, 0, 0)
	res, err := planner.ReRoute(rr.Plan, rr.Options)
	if err != nil {
		return err
	}
	planner.Release(res)

	if !res.Found {
		fmt.Fprintf(os.Stderr, "%s: no path found; keeping the original plan\n", c.Request)
	}
	return writeResult(os.Stdout, keepOriginal(res, rr.Plan))
}

// keepOriginal returns res with its trajectory replaced by own if no
// path was found.
func keepOriginal(res *reroute.Result, own plan.Plan) *reroute.Result {
	if res.Found {
		return res
	}
	r := *res
	r.Trajectory = own.Clone()
	return &r
}

func (c *serveCmd) run(ctx context.Context, lg *log.Logger) error {
	srv := server.New(reroute.NewPlanner(lg, c.PoolSize, c.PoolTTL), lg)

	l, port, err := srv.Listen(c.Port)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wxroute listening on port %d; logging to %s\n", port, lg.LogFile)

	return srv.Serve(ctx, l)
}

func (c *dumpCmd) run() error {
	g, err := densitygrid.LoadSnapshot(c.Snapshot)
	if err != nil {
		return errors.Wrapf(err, "%s", c.Snapshot)
	}

	sx, sy := g.Size()
	fmt.Printf("%dx%d cells of %.0fm, start %s at t=%.1f, end %s\n", sx, sy, g.CellSize(),
		g.Start(), g.StartTime(), g.End())
	if lo, hi, ok := g.SearchedRange(); ok {
		fmt.Printf("searched weights %.1f - %.1f\n", lo, hi)
	}

	d, _ := g.LayerString(c.Layer)
	fmt.Print(d)
	return nil
}
