// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import "fmt"

// Tuple is a fixed-arity ordered sequence.
// Unlike a slice, it is encoded as an envelope so that it
// is reconstructed as a Tuple rather than a []any.
type Tuple []any

// TupleHandler encodes a Tuple as:
//
//	{"__type__": "tuple", "__data__": [...]}
type TupleHandler struct{}

func (TupleHandler) Kind() string { return "tuple" }

func (TupleHandler) CanEncode(v any) bool {
	_, ok := v.(Tuple)
	return ok
}

func (h TupleHandler) Encode(v any) (any, error) {
	return NewEnvelope(h.Kind(), []any(v.(Tuple))), nil
}

func (h TupleHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind())
}

func (h TupleHandler) Decode(m map[string]any, decode DecodeFunc) (any, error) {
	data, ok := m[DataKey].([]any)
	if !ok {
		return nil, unresolved(h.Kind(), "", fmt.Errorf("payload is %T, want array", m[DataKey]))
	}
	t := make(Tuple, len(data))
	for i, x := range data {
		v, err := decode(x)
		if err != nil {
			return nil, err
		}
		t[i] = v
	}
	return t[:len(t):len(t)], nil
}
