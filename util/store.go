// util/store.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeObject writes obj to w as zstd-compressed msgpack.
func EncodeObject(w io.Writer, obj any) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return err
	}

	if err := msgpack.NewEncoder(zw).Encode(obj); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// DecodeObject reads zstd-compressed msgpack written by EncodeObject.
func DecodeObject(r io.Reader, obj any) error {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return err
	}
	defer zr.Close()

	return msgpack.NewDecoder(zr).Decode(obj)
}

// StoreObject encodes obj to the file at path, creating its directory if
// needed.
func StoreObject(path string, obj any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "unable to create directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer f.Close()

	if err := EncodeObject(f, obj); err != nil {
		return errors.Wrapf(err, "unable to encode %s", path)
	}
	return errors.Wrapf(f.Close(), "unable to close %s", path)
}

// RetrieveObject decodes the file at path into obj and returns the file's
// modification time.
func RetrieveObject(path string, obj any) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unable to stat %s", path)
	}

	return fi.ModTime(), errors.Wrapf(DecodeObject(f, obj), "unable to decode %s", path)
}
