// cmd/wxroute/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// wxroute plans routes that avoid moving hazards.
//
// Usage:
//
//	wxroute plan request.json
//	wxroute batch -o results/ requests/*.json
//	wxroute reroute reroute.json
//	wxroute serve -p 6502
//	wxroute dump --layer marks grid.msgpack.zst
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mmp/wxroute/log"
	"github.com/mmp/wxroute/server"

	"github.com/alecthomas/kong"
)

const version = "v0.3.0"

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

var cli struct {
	LogLevel string      `help:"Logging verbosity." enum:"debug,info,warn,error" short:"l" default:"info"`
	LogDir   string      `help:"Directory for log files." type:"path"`
	Version  VersionFlag `help:"Print version information and quit." short:"v"`

	Plan    planCmd    `cmd:"" help:"Plans a route for a JSON request and prints the result."`
	Batch   batchCmd   `cmd:"" help:"Plans routes for many requests concurrently."`
	Reroute rerouteCmd `cmd:"" help:"Reroutes a flight plan around hazards."`
	Serve   serveCmd   `cmd:"" help:"Runs the HTTP planning service."`
	Dump    dumpCmd    `cmd:"" help:"Prints a layer of a saved grid snapshot."`
}

type planCmd struct {
	Request    string   `help:"The planning request." placeholder:"<request.json>" arg:"" type:"existingfile"`
	Snapshot   string   `help:"Save a snapshot of the searched grid to this file." type:"path"`
	Show       []string `help:"Print these grid layers (weights, searched, marks) to stderr."`
	KeepOutOSM string   `help:"Add the closed ways in this .osm or .pbf file as keep-out polygons." type:"existingfile" name:"keep-out-osm"`
	OSMTag     string   `help:"Only use OSM ways with this tag, as key or key=value." name:"osm-tag"`
}

type batchCmd struct {
	Requests []string `help:"The planning requests." placeholder:"<request.json>" arg:"" type:"existingfile"`
	Output   string   `help:"Directory for results; results are printed to stdout if not given." short:"o" type:"path"`
	Jobs     int      `help:"Maximum number of requests planned at once; zero uses all CPUs." short:"j" default:"0"`
}

type rerouteCmd struct {
	Request string `help:"A JSON object holding the flight plan and the reroute options." placeholder:"<reroute.json>" arg:"" type:"existingfile"`
}

type serveCmd struct {
	Port     int           `help:"Port to listen on; the following ports are tried if it is busy." short:"p" default:"${port}"`
	PoolSize int           `help:"Maximum number of idle grids kept for reuse." default:"32"`
	PoolTTL  time.Duration `help:"How long idle grids are kept." default:"10m" name:"pool-ttl"`
}

type dumpCmd struct {
	Snapshot string `help:"The grid snapshot." placeholder:"<snapshot>" arg:"" type:"existingfile"`
	Layer    string `help:"Layer to print." enum:"weights,searched,marks" default:"marks"`
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("wxroute"),
		kong.Description("Plans routes around moving hazards on a density grid."),
		kong.Vars{
			"version": version,
			"port":    strconv.Itoa(server.DefaultPort),
		},
	)

	if _, err := log.ParseLevel(cli.LogLevel); err != nil {
		ctx.Fatalf("%v", err)
	}

	var err error
	switch ctx.Command() {
	case "plan <request>":
		lg := log.New(false, cli.LogLevel, cli.LogDir)
		err = cli.Plan.run(lg)
	case "batch <requests>":
		lg := log.New(false, cli.LogLevel, cli.LogDir)
		err = cli.Batch.run(lg)
	case "reroute <request>":
		lg := log.New(false, cli.LogLevel, cli.LogDir)
		err = cli.Reroute.run(lg)
	case "serve":
		lg := log.New(true, cli.LogLevel, cli.LogDir)
		sctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = cli.Serve.run(sctx, lg)
		cancel()
	case "dump <snapshot>":
		err = cli.Dump.run()
	default:
		ctx.Fatalf("unknown command %q", ctx.Command())
	}
	ctx.FatalIfErrorf(err)
}
