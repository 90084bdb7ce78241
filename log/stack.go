// log/stack.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

const maxStackDepth = 16

// Frames from these packages are where requests enter our code; everything
// above them is the same for every request and is not recorded.
var stackRoots = []string{
	"net/http.",
	"golang.org/x/sync/errgroup.",
	"testing.",
}

// Callstack returns the stack of the function that called the logging
// method, up to main.main or the HTTP handler or errgroup goroutine that
// it is running under. fr's storage is reused if it is large enough.
func Callstack(fr []StackFrame) []StackFrame {
	var callers [maxStackDepth]uintptr
	n := runtime.Callers(3, callers[:]) // skip Callers, Callstack and the logging method
	frames := runtime.CallersFrames(callers[:n])

	fr = fr[:0]
	for {
		frame, more := frames.Next()
		if isStackRoot(frame.Function) {
			break
		}

		fn := strings.TrimPrefix(frame.Function, "github.com/mmp/wxroute/")
		fr = append(fr, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: strings.TrimPrefix(fn, "main."),
		})

		if !more || frame.Function == "main.main" {
			break
		}
	}
	return fr
}

func isStackRoot(fn string) bool {
	for _, root := range stackRoots {
		if strings.HasPrefix(fn, root) {
			return true
		}
	}
	return false
}

func (f StackFrame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}
