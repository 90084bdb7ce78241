// server/http.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	gomath "math"
	"net/http"
	"net/http/pprof"
	"runtime"
	"strings"
	"time"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/reroute"
	"github.com/mmp/wxroute/util"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func (s *Server) makeRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.withRequestID)

	r.HandleFunc("/plan", s.planHandler).Methods(http.MethodPost)
	r.HandleFunc("/reroute", s.rerouteHandler).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.statsHandler).Methods(http.MethodGet)

	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)

	return r
}

// withRequestID makes sure that every request has an id, taken from the
// X-Request-ID header if the client supplied one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		s.lg.Debug("served", "method", r.Method, "path", r.URL.Path, "request", id,
			"elapsed", time.Since(start))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

type errorResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.lg.Errorf("error writing response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, reroute.ErrInvalidRequest) {
		status = http.StatusBadRequest
	}
	s.lg.Warnf("%s %s: %v", r.Method, r.URL.Path, err)
	s.writeJSON(w, status, errorResponse{ID: requestID(r), Error: err.Error()})
}

type planResponse struct {
	*reroute.Result
	Dump string `json:"dump,omitempty"`
}

// dumpGrid returns an ASCII rendering of one of the grid's layers.
func dumpGrid(g *densitygrid.Grid, layer string) (string, error) {
	if layer == "" {
		return "", nil
	}
	if d, ok := g.LayerString(layer); ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q: unknown grid dump; expected one of %s",
		reroute.ErrInvalidRequest, layer, strings.Join(densitygrid.Layers, ", "))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, res *reroute.Result) {
	defer s.planner.Release(res)

	resp := planResponse{Result: res}
	if res.Grid != nil {
		var err error
		if resp.Dump, err = dumpGrid(res.Grid, r.URL.Query().Get("dump")); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) planHandler(w http.ResponseWriter, r *http.Request) {
	req, err := reroute.DecodeRequest(r.Body)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", reroute.ErrInvalidRequest, err))
		return
	}
	if req.ID == "" {
		req.ID = requestID(r)
	}

	res, err := s.planner.Plan(&req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, res)
}

func (s *Server) rerouteHandler(w http.ResponseWriter, r *http.Request) {
	var req reroute.ReRouteRequest
	if err := util.UnmarshalJSON(r.Body, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", reroute.ErrInvalidRequest, err))
		return
	}

	res, err := s.planner.ReRoute(req.Plan, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.ID == "" {
		res.ID = requestID(r)
	}
	s.respond(w, r, res)
}

///////////////////////////////////////////////////////////////////////////
// Status / statistics

type serverStats struct {
	Uptime           time.Duration `json:"uptime"`
	AllocMemory      uint64        `json:"alloc_memory_mb"`
	TotalAllocMemory uint64        `json:"total_alloc_memory_mb"`
	SysMemory        uint64        `json:"sys_memory_mb"`
	MemoryUsage      int           `json:"memory_usage_percent"`
	NumGC            uint32        `json:"num_gc"`
	NumGoRoutines    int           `json:"num_goroutines"`
	CPUUsage         int           `json:"cpu_usage_percent"`

	Planner reroute.Stats `json:"planner"`
}

func (s *Server) stats() serverStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := serverStats{
		Uptime:           time.Since(s.startTime).Round(time.Second),
		AllocMemory:      m.Alloc / (1024 * 1024),
		TotalAllocMemory: m.TotalAlloc / (1024 * 1024),
		SysMemory:        m.Sys / (1024 * 1024),
		NumGC:            m.NumGC,
		NumGoRoutines:    runtime.NumGoroutine(),
		Planner:          s.planner.Stats(),
	}

	// Usage since the previous call; the first call reports 0.
	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		stats.CPUUsage = int(gomath.Round(usage[0]))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsage = int(gomath.Round(vm.UsedPercent))
	}
	return stats
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.stats()
	if r.URL.Query().Get("format") != "html" {
		s.writeJSON(w, http.StatusOK, stats)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := statsTemplate.Execute(w, stats); err != nil {
		s.lg.Errorf("stats template: %v", err)
	}
}

var statsTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
<title>wxroute status</title>
</head>
<style>
table {
  border-collapse: collapse;
}

th, td {
  border: 1px solid #dddddd;
  padding: 8px;
  text-align: left;
}

tr:nth-child(even) {
  background-color: #f2f2f2;
}
</style>
<body>
<h1>Server Status</h1>
<ul>
  <li>Uptime: {{.Uptime}}</li>
  <li>CPU usage: {{.CPUUsage}}%</li>
  <li>System memory usage: {{.MemoryUsage}}%</li>
  <li>Allocated memory: {{.AllocMemory}} MB</li>
  <li>Total allocated memory: {{.TotalAllocMemory}} MB</li>
  <li>System memory: {{.SysMemory}} MB</li>
  <li>Garbage collection passes: {{.NumGC}}</li>
  <li>Running goroutines: {{.NumGoRoutines}}</li>
</ul>

<h1>Planner</h1>
<table>
  <tr><th>Requests</th><td>{{.Planner.Requests}}</td></tr>
  <tr><th>Invalid</th><td>{{.Planner.Invalid}}</td></tr>
  <tr><th>Found</th><td>{{.Planner.Found}}</td></tr>
  <tr><th>Not found</th><td>{{.Planner.NotFound}}</td></tr>
  <tr><th>Pool hits</th><td>{{.Planner.PoolHits}}</td></tr>
  <tr><th>Pool misses</th><td>{{.Planner.PoolMisses}}</td></tr>
  <tr><th>Pooled grids</th><td>{{.Planner.PoolSize}}</td></tr>
</table>

</body>
</html>
`))
