// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"encoding/base64"
	"reflect"
)

// BytesHandler encodes a byte slice as standard base64 text:
//
//	{"__type__": "bytes", "__data__": "aGVsbG8="}
//
// Any slice with byte-sized unsigned elements is encoded,
// but always decodes as []byte.
// Malformed base64 is reported as ErrInvalidPayload.
type BytesHandler struct{}

func (BytesHandler) Kind() string { return "bytes" }

func (BytesHandler) CanEncode(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func (h BytesHandler) Encode(v any) (any, error) {
	b := reflect.ValueOf(v).Bytes()
	return NewEnvelope(h.Kind(), base64.StdEncoding.EncodeToString(b)), nil
}

func (h BytesHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind())
}

func (h BytesHandler) Decode(m map[string]any, _ DecodeFunc) (any, error) {
	s, ok := m[DataKey].(string)
	if !ok {
		return nil, invalidPayload(h.Kind(), errNotString)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, invalidPayload(h.Kind(), err)
	}
	return b, nil
}
