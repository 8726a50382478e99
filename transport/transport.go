// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport renders JSON-compatible trees as text and back.
//
// A tree is recursively either nil, a bool, a string, a number,
// a []any of trees, or a map[string]any of trees.
// Both formats preserve the distinction between integers and
// floating-point numbers, so that an integral float64 such as 3.0
// is parsed back as a float64 rather than an int.
// Integers are parsed as int if they fit, otherwise as int64 or uint64.
package transport

import (
	"errors"
	"math"
)

// Format renders trees as transport text.
type Format interface {
	// Name is the name of the format (e.g., "json").
	Name() string
	// Marshal renders the tree.
	Marshal(tree any) ([]byte, error)
	// Unmarshal parses text produced by Marshal.
	Unmarshal(b []byte) (any, error)
}

// ByName returns the format with the given name.
func ByName(name string) (Format, error) {
	switch name {
	case "", "json":
		return JSON(), nil
	case "cbor":
		return CBOR(), nil
	}
	return nil, errors.New(errorPrefix + "unknown format " + `"` + name + `"`)
}

const errorPrefix = "transport: "

// normalizeInt returns n as an int if it fits.
func normalizeInt(n int64) any {
	if n >= math.MinInt && n <= math.MaxInt {
		return int(n)
	}
	return n
}

// normalizeUint returns n as an int if it fits.
func normalizeUint(n uint64) any {
	if n <= math.MaxInt {
		return int(n)
	}
	return n
}
