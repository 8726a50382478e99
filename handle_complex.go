// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"fmt"
	"reflect"
)

// ComplexHandler encodes a complex number as its two components:
//
//	{"__type__": "complex", "__data__": {"real": 3.0, "imag": 4.0}}
//
// Values of any complex kind are encoded, but always decode as complex128.
// A payload without two numeric components is reported as ErrInvalidPayload.
type ComplexHandler struct{}

func (ComplexHandler) Kind() string { return "complex" }

func (ComplexHandler) CanEncode(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func (h ComplexHandler) Encode(v any) (any, error) {
	c := reflect.ValueOf(v).Complex()
	return NewEnvelope(h.Kind(), map[string]any{"real": real(c), "imag": imag(c)}), nil
}

func (h ComplexHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind())
}

func (h ComplexHandler) Decode(m map[string]any, _ DecodeFunc) (any, error) {
	data, ok := m[DataKey].(map[string]any)
	if !ok {
		return nil, invalidPayload(h.Kind(), fmt.Errorf("payload is %T, want object", m[DataKey]))
	}
	re, ok := asFloat64(data["real"])
	if !ok {
		return nil, invalidPayload(h.Kind(), fmt.Errorf("real component is %T, want number", data["real"]))
	}
	im, ok := asFloat64(data["imag"])
	if !ok {
		return nil, invalidPayload(h.Kind(), fmt.Errorf("imaginary component is %T, want number", data["imag"]))
	}
	return complex(re, im), nil
}
