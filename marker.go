// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

// Reserved member names of an envelope.
const (
	// TypeKey names the envelope kind (e.g., "tuple").
	TypeKey = "__type__"
	// DataKey holds the encoded payload.
	DataKey = "__data__"
	// ClassKey names the registered origin type of enum and record kinds.
	ClassKey = "__class__"
	// SubtypeKey names the concrete type within an ambiguous kind.
	SubtypeKey = "__subtype__"
)

// NewEnvelope returns an envelope of the given kind carrying data.
func NewEnvelope(kind string, data any) map[string]any {
	return map[string]any{TypeKey: kind, DataKey: data}
}

// IsEnvelope reports whether m is an envelope of the given kind.
// The [TypeKey] member must equal kind exactly, and both [DataKey]
// and every one of the extra keys must be present.
// A partial match is not an envelope.
func IsEnvelope(m map[string]any, kind string, keys ...string) bool {
	if s, ok := m[TypeKey].(string); !ok || s != kind {
		return false
	}
	if _, ok := m[DataKey]; !ok {
		return false
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

