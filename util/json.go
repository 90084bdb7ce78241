// util/json.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// UnmarshalJSON decodes JSON from r into out. Unknown object keys are
// errors so that misspelled request fields are not silently ignored.
func UnmarshalJSON[T any](r io.Reader, out *T) error {
	// We need the contents as an array of bytes so that we can issue
	// reasonable errors.
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return UnmarshalJSONBytes(b, out)
}

// UnmarshalJSONBytes is UnmarshalJSON for a byte slice. Syntax and type
// errors are reported with the line and character where they occurred.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	err := dec.Decode(out)
	if err == nil {
		if dec.More() {
			line, char := lineAndChar(b, dec.InputOffset())
			return fmt.Errorf("Error at line %d, character %d: unexpected data after JSON value", line, char)
		}
		return nil
	}

	switch jerr := err.(type) {
	case *json.SyntaxError:
		line, char := lineAndChar(b, jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %v", line, char, jerr)

	case *json.UnmarshalTypeError:
		line, char := lineAndChar(b, jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s",
			line, char, jerr.Value, jerr.Struct, jerr.Field, jerr.Type.String())

	default:
		return err
	}
}

func lineAndChar(b []byte, offset int64) (line, char int) {
	line, char = 1, 1
	for i := 0; i < int(offset) && i < len(b); i++ {
		if b[i] == '\n' {
			line++
			char = 1
		} else {
			char++
		}
	}
	return
}

// LoadJSONFile decodes the JSON file at path into a new T.
func LoadJSONFile[T any](path string) (T, error) {
	var out T
	f, err := os.Open(path)
	if err != nil {
		return out, errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()

	if err := UnmarshalJSON(f, &out); err != nil {
		return out, errors.Wrapf(err, "%s", path)
	}
	return out, nil
}
