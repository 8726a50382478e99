// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import "github.com/cockroachdb/apd/v3"

// DecimalHandler encodes an apd.Decimal as its exact decimal text,
// preserving trailing zeros and special values:
//
//	{"__type__": "decimal", "__data__": "1.50"}
//
// Malformed text is reported as ErrInvalidPayload.
type DecimalHandler struct{}

func (DecimalHandler) Kind() string { return "decimal" }

func (DecimalHandler) CanEncode(v any) bool {
	_, ok := v.(apd.Decimal)
	return ok
}

func (h DecimalHandler) Encode(v any) (any, error) {
	d := v.(apd.Decimal)
	return NewEnvelope(h.Kind(), d.String()), nil
}

func (h DecimalHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind())
}

func (h DecimalHandler) Decode(m map[string]any, _ DecodeFunc) (any, error) {
	s, ok := m[DataKey].(string)
	if !ok {
		return nil, invalidPayload(h.Kind(), errNotString)
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, invalidPayload(h.Kind(), err)
	}
	return *d, nil
}
