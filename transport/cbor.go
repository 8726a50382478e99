// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error

	// Core deterministic encoding sorts map keys and uses the
	// shortest float encoding that preserves the value.
	encOptions := cbor.CoreDetEncOptions()
	// Foreign values implementing encoding.TextMarshaler
	// are encoded as text strings.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	cborEncMode, err = encOptions.EncMode()
	if err != nil {
		panic("transport: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		// Trees only have string keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("transport: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR returns a format rendering trees as deterministic CBOR (RFC 8949).
func CBOR() Format { return cborFormat{} }

type cborFormat struct{}

func (cborFormat) Name() string { return "cbor" }

func (cborFormat) Marshal(tree any) ([]byte, error) {
	return cborEncMode.Marshal(tree)
}

func (cborFormat) Unmarshal(b []byte) (any, error) {
	var v any
	if err := cborDecMode.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return normalizeCBOR(v)
}

// normalizeCBOR converts decoded CBOR integers to the tree
// representation and rejects values that trees cannot hold.
func normalizeCBOR(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string, float64:
		return v, nil
	case uint64:
		return normalizeUint(v), nil
	case int64:
		return normalizeInt(v), nil
	case []byte:
		// Byte strings only arise from foreign values.
		return v, nil
	case []any:
		for i, x := range v {
			x, err := normalizeCBOR(x)
			if err != nil {
				return nil, err
			}
			v[i] = x
		}
		return v, nil
	case map[string]any:
		for k, x := range v {
			x, err := normalizeCBOR(x)
			if err != nil {
				return nil, err
			}
			v[k] = x
		}
		return v, nil
	default:
		return nil, fmt.Errorf(errorPrefix+"unsupported CBOR value of type %T", v)
	}
}

// Diagnose returns the extended diagnostic notation of CBOR data,
// which is useful for inspecting stored trees.
func Diagnose(b []byte) (string, error) {
	return cbor.Diagnose(b)
}
