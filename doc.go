// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package typedjson implements type-preserving serialization of Go values
// into JSON-compatible trees and back.
//
// A plain JSON encoder loses the concrete type of many values:
// a fixed-arity [Tuple] becomes an array, a [time.Time] becomes a string,
// a decimal becomes a float, and a set becomes an array or an object.
// This package encodes each such value as an envelope, which is
// a JSON object carrying a type marker that the decoder uses
// to reconstruct the original value with its original type.
//
// # Terminology
//
// This package uses the terms "serialize" and "deserialize" for converting
// between Go values and JSON-compatible trees, and
// uses the terms "marshal" and "unmarshal" for the additional step
// of rendering a tree as transport text (see package transport).
//
//   - A "tree" is recursively either nil, a bool, a string, a number,
//     a []any of trees, or a map[string]any of trees.
//   - An "envelope" is a map[string]any holding the [TypeKey] marker and
//     the [DataKey] payload, and for some kinds also [ClassKey] or [SubtypeKey].
//   - A "handler" is a [Handler] that owns exactly one envelope kind.
//   - A "foreign" value is a value matched by a [Guard].
//     It is passed through serialization untouched.
//
// # Wire format
//
// Every non-native value becomes an envelope:
//
//	Tuple{1, 2, 3}     => {"__type__": "tuple", "__data__": [1, 2, 3]}
//	civil.DateTime     => {"__type__": "datetime", "__subtype__": "datetime", "__data__": "2025-01-19T12:00:00"}
//	registered enum    => {"__type__": "enum", "__class__": "mypkg.Status", "__data__": "active"}
//	complex(3, 4)      => {"__type__": "complex", "__data__": {"real": 3.0, "imag": 4.0}}
//
// Plain maps and slices are passed through structurally
// and never carry a [TypeKey] member, so that the presence of [TypeKey]
// is always and only the signal of an encoded non-native value.
//
// # Handler order
//
// A [Registry] is consulted in order and the first matching handler wins.
// Handlers registered with [High] priority are tried before the built-in ones,
// which allows a caller to override how an already supported type is encoded.
//
// # Failures
//
// Serialization never fails for acyclic input: a handler that fails
// to encode a value is treated as not matching, and values that no handler
// or container rule recognizes are rendered as text.
// Deserialization degrades gracefully: a malformed envelope or
// one whose class cannot be resolved decodes as a plain map.
// Only payloads with no safe fallback report an error
// matching [ErrInvalidPayload].
package typedjson

// requireKeyedLiterals can be embedded in a struct to require keyed literals.
type requireKeyedLiterals struct{}
