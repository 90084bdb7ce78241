// poly/osm.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package poly

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mmp/wxroute/geo"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// ReadOSM returns a polygon for each closed way in the OSM data read from
// r. If filter is non-nil, only ways whose tags it accepts are returned.
// Polygons are named from the way's "name" tag if present and otherwise
// from the way id. The altitude of every vertex is alt.
func ReadOSM(ctx context.Context, r io.Reader, pbf bool, alt float64, filter func(osm.Tags) bool) ([]SimplePoly, error) {
	var scanner osm.Scanner
	if pbf {
		scanner = osmpbf.New(ctx, r, 1)
	} else {
		scanner = osmxml.New(ctx, r)
	}
	defer scanner.Close()

	nodes := make(map[osm.NodeID]geo.Position)
	var polys []SimplePoly
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			nodes[obj.ID] = geo.MakeLatLonAlt(obj.Lat, obj.Lon, alt)

		case *osm.Way:
			if len(obj.Nodes) < 4 || obj.Nodes[0].ID != obj.Nodes[len(obj.Nodes)-1].ID {
				continue
			}
			if filter != nil && !filter(obj.Tags) {
				continue
			}

			name := obj.Tags.Find("name")
			if name == "" {
				name = fmt.Sprintf("way/%d", obj.ID)
			}

			sp := SimplePoly{Name: name}
			for _, wn := range obj.Nodes[:len(obj.Nodes)-1] {
				p, ok := nodes[wn.ID]
				if !ok {
					return nil, errors.Errorf("%s: node %d referenced before it was defined", name, wn.ID)
				}
				sp.Vertices = append(sp.Vertices, p)
			}
			polys = append(polys, sp)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning OSM data")
	}
	return polys, nil
}

// ReadOSMFile reads polygons from an .osm (XML) or .pbf file.
func ReadOSMFile(ctx context.Context, filename string, alt float64, filter func(osm.Tags) bool) ([]SimplePoly, error) {
	if !strings.HasSuffix(filename, ".osm") && !strings.HasSuffix(filename, ".pbf") {
		return nil, errors.Errorf("%s: must be an .osm or .pbf file", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open OSM file %s", filename)
	}
	defer f.Close()

	polys, err := ReadOSM(ctx, f, strings.HasSuffix(filename, ".pbf"), alt, filter)
	return polys, errors.Wrapf(err, "%s", filename)
}

// TagFilter returns a filter that accepts ways having the given tag key,
// and if value is non-empty, that value.
func TagFilter(key, value string) func(osm.Tags) bool {
	return func(tags osm.Tags) bool {
		for _, tag := range tags {
			if tag.Key == key && (value == "" || tag.Value == value) {
				return true
			}
		}
		return false
	}
}
