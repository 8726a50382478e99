// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import "github.com/google/uuid"

// UUIDHandler encodes a uuid.UUID in its canonical hyphenated form:
//
//	{"__type__": "uuid", "__data__": "f47ac10b-58cc-4372-a567-0e02b2c3d479"}
type UUIDHandler struct{}

func (UUIDHandler) Kind() string { return "uuid" }

func (UUIDHandler) CanEncode(v any) bool {
	_, ok := v.(uuid.UUID)
	return ok
}

func (h UUIDHandler) Encode(v any) (any, error) {
	return NewEnvelope(h.Kind(), v.(uuid.UUID).String()), nil
}

func (h UUIDHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind())
}

func (h UUIDHandler) Decode(m map[string]any, _ DecodeFunc) (any, error) {
	s, ok := m[DataKey].(string)
	if !ok {
		return nil, invalidPayload(h.Kind(), errNotString)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, invalidPayload(h.Kind(), err)
	}
	return u, nil
}
