// server/server.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package server exposes a reroute.Planner over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mmp/wxroute/log"
	"github.com/mmp/wxroute/reroute"

	"github.com/gorilla/mux"
)

const DefaultPort = 6502

// Number of successive ports tried if the requested one is in use.
const portAttempts = 10

type Server struct {
	planner   *reroute.Planner
	lg        *log.Logger
	startTime time.Time
	router    *mux.Router
}

func New(planner *reroute.Planner, lg *log.Logger) *Server {
	s := &Server{
		planner:   planner,
		lg:        lg,
		startTime: time.Now(),
	}
	s.router = s.makeRouter()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen opens a listener on port, or on one of the following few ports
// if it is in use. It returns the listener and the port it is on.
func (s *Server) Listen(port int) (net.Listener, int, error) {
	var err error
	for i := range portAttempts {
		var l net.Listener
		if l, err = net.Listen("tcp", ":"+strconv.Itoa(port+i)); err == nil {
			return l, port + i, nil
		}
		s.lg.Debugf("port %d: %v", port+i, err)
	}
	return nil, 0, err
}

// Serve serves requests on l until ctx is canceled, at which point it
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	hs := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(l) }()
	s.lg.Infof("serving on %s", l.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
