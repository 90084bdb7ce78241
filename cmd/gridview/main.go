// cmd/gridview/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// gridview is an interactive terminal viewer for grid snapshots saved by
// "wxroute plan --snapshot".
// Usage: gridview <snapshot>
package main

import (
	"flag"
	"fmt"
	gomath "math"
	"os"

	"github.com/mmp/wxroute/densitygrid"
	"github.com/mmp/wxroute/math"

	"github.com/gdamore/tcell/v2"
)

type layer int

const (
	layerWeights layer = iota
	layerSearched
	layerMarks
	numLayers
)

func (l layer) String() string {
	return densitygrid.Layers[l]
}

type viewState struct {
	grid   *densitygrid.Grid
	layer  layer
	cursor densitygrid.CellIndex
	// Lower-left cell shown on the screen.
	origin densitygrid.CellIndex

	// Finite value ranges for coloring.
	weightRange   [2]float64
	searchedRange [2]float64
}

func newViewState(g *densitygrid.Grid) *viewState {
	vs := &viewState{grid: g, layer: layerSearched}
	vs.weightRange = [2]float64{gomath.Inf(1), gomath.Inf(-1)}
	for c := range g.Cells() {
		if w := g.Weight(c); math.IsFinite(w) {
			vs.weightRange[0] = min(vs.weightRange[0], w)
			vs.weightRange[1] = max(vs.weightRange[1], w)
		}
	}
	if lo, hi, ok := g.SearchedRange(); ok {
		vs.searchedRange = [2]float64{lo, hi}
	} else {
		vs.layer = layerWeights
	}
	vs.cursor, _ = g.CellOf(g.Start())
	return vs
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridview <snapshot>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	g, err := densitygrid.LoadSnapshot(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))

	state := newViewState(g)
	for {
		render(screen, state)
		screen.Show()

		if quit := handleEvent(screen.PollEvent(), state, screen); quit {
			return
		}
	}
}

// cellStyle returns the character and style used to draw c.
func (vs *viewState) cellStyle(c densitygrid.CellIndex) (rune, tcell.Style) {
	g := vs.grid
	style := tcell.StyleDefault
	if c == vs.cursor {
		style = style.Reverse(true)
	}

	if s, _ := g.CellOf(g.Start()); c == s {
		return 'S', style.Foreground(tcell.ColorWhite).Bold(true)
	}
	if e, _ := g.CellOf(g.End()); c == e {
		return 'E', style.Foreground(tcell.ColorWhite).Bold(true)
	}

	var v float64
	var r [2]float64
	switch vs.layer {
	case layerWeights:
		v, r = g.Weight(c), vs.weightRange
	case layerSearched:
		v, r = g.SearchedWeight(c), vs.searchedRange
	case layerMarks:
		v, r = g.Weight(c), vs.weightRange
		if g.Marked(c) {
			return '*', style.Foreground(tcell.ColorYellow).Bold(true)
		}
	}
	if !math.IsFinite(v) {
		return '#', style.Foreground(tcell.ColorDarkGray)
	}
	if vs.layer == layerMarks {
		return '.', style.Foreground(tcell.ColorGray)
	}

	// Green for the lowest values through red for the highest.
	t := 0.
	if r[1] > r[0] {
		t = math.Clamp((v-r[0])/(r[1]-r[0]), 0, 1)
	}
	color := tcell.NewRGBColor(int32(255*t), int32(255*(1-t)), 64)
	return ' ', style.Background(color)
}

func render(screen tcell.Screen, vs *viewState) {
	screen.Clear()
	width, height := screen.Size()
	g := vs.grid
	sx, sy := g.Size()

	styleHeader := tcell.StyleDefault.Bold(true).Reverse(true)
	styleHelp := tcell.StyleDefault.Foreground(tcell.ColorGray)

	// Two columns per cell so that cells are roughly square.
	cols, rows := max(1, width/2), max(1, height-3)
	vs.scrollTo(cols, rows)

	title := fmt.Sprintf(" gridview %dx%d %.0fm [%s] ", sx, sy, g.CellSize(), vs.layer)
	drawText(screen, 0, 0, width, styleHeader, title)

	for row := range rows {
		y := vs.origin.Y + rows - 1 - row
		if y < 0 || y >= sy {
			continue
		}
		for col := range cols {
			x := vs.origin.X + col
			if x >= sx {
				break
			}
			ch, style := vs.cellStyle(densitygrid.CellIndex{X: x, Y: y})
			screen.SetContent(2*col, 1+row, ch, nil, style)
			screen.SetContent(2*col+1, 1+row, ' ', nil, style)
		}
	}

	c := vs.cursor
	status := fmt.Sprintf(" %s weight %s searched %s", c, valueString(g.Weight(c)),
		valueString(g.SearchedWeight(c)))
	if g.Marked(c) {
		status += " marked"
	}
	if p, ok := g.Center(c); ok {
		status += " center " + p.String()
	}
	drawText(screen, 0, height-2, width, tcell.StyleDefault, status)
	drawText(screen, 0, height-1, width, styleHelp,
		" [arrows]=Move [PgUp/PgDn]=Page [Tab]=Layer [s]=Start [e]=End [q]=Quit ")
}

// scrollTo adjusts the view origin so that the cursor is visible.
func (vs *viewState) scrollTo(cols, rows int) {
	c := vs.cursor
	if c.X < vs.origin.X {
		vs.origin.X = c.X
	} else if c.X >= vs.origin.X+cols {
		vs.origin.X = c.X - cols + 1
	}
	if c.Y < vs.origin.Y {
		vs.origin.Y = c.Y
	} else if c.Y >= vs.origin.Y+rows {
		vs.origin.Y = c.Y - rows + 1
	}
}

func valueString(v float64) string {
	if !math.IsFinite(v) {
		return "---"
	}
	return fmt.Sprintf("%.2f", v)
}

// drawText draws a string at the given position.
func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
	for col < maxWidth {
		screen.SetContent(x+col, y, ' ', nil, style)
		col++
	}
}

func (vs *viewState) move(dx, dy int) {
	sx, sy := vs.grid.Size()
	vs.cursor.X = math.Clamp(vs.cursor.X+dx, 0, sx-1)
	vs.cursor.Y = math.Clamp(vs.cursor.Y+dy, 0, sy-1)
}

// handleEvent processes a tcell event and returns true if the viewer
// should exit.
func handleEvent(ev tcell.Event, vs *viewState, screen tcell.Screen) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()

	case *tcell.EventKey:
		_, height := screen.Size()
		page := max(1, height-4)

		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyLeft:
			vs.move(-1, 0)
		case tcell.KeyRight:
			vs.move(1, 0)
		case tcell.KeyUp:
			vs.move(0, 1)
		case tcell.KeyDown:
			vs.move(0, -1)
		case tcell.KeyPgUp:
			vs.move(0, page)
		case tcell.KeyPgDn:
			vs.move(0, -page)
		case tcell.KeyTab:
			vs.layer = (vs.layer + 1) % numLayers
		case tcell.KeyBacktab:
			vs.layer = (vs.layer + numLayers - 1) % numLayers
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'w':
				vs.layer = layerWeights
			case 'r':
				vs.layer = layerSearched
			case 'm':
				vs.layer = layerMarks
			case 's':
				vs.cursor, _ = vs.grid.CellOf(vs.grid.Start())
			case 'e':
				vs.cursor, _ = vs.grid.CellOf(vs.grid.End())
			}
		}
	}
	return false
}
