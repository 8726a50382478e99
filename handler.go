// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import "fmt"

// Handler encodes and decodes exactly one non-native kind of value.
//
// A handler is constructed once, registered once, and must not hold
// per-call state since it may be used concurrently.
type Handler interface {
	// Kind is the value of the TypeKey member of the envelopes it produces.
	Kind() string

	// CanEncode reports whether the handler recognizes v.
	// Pointers are dereferenced before v is presented to a handler.
	CanEncode(v any) bool
	// Encode converts v into a tree, usually an envelope.
	// The result is serialized again, so it may hold values
	// that need further encoding (e.g., the fields of a record).
	// A failure causes the next matching handler to be used.
	Encode(v any) (any, error)

	// CanDecode reports whether m is an envelope owned by the handler.
	// It must only report true if all of its reserved members are present.
	CanDecode(m map[string]any) bool
	// Decode reconstructs a value from an envelope.
	// Nested trees in the payload are decoded by calling decode.
	// Errors matching ErrInvalidPayload are reported to the caller,
	// while all others cause m to be decoded as a plain map.
	Decode(m map[string]any, decode DecodeFunc) (any, error)
}

// DecodeFunc recursively deserializes a nested tree.
type DecodeFunc func(tree any) (any, error)

// NewHandler constructs a handler of the given kind for values of type T.
// The handler recognizes envelopes of that kind which carry
// every one of the extra keys.
//
// The encode function returns the payload stored under DataKey
// and may return SkipHandler to decline a value.
func NewHandler[T any](kind string, encode func(T) (any, error), decode func(data any, decode DecodeFunc) (T, error), keys ...string) Handler {
	if kind == "" {
		panic("typedjson: empty handler kind")
	}
	return &funcHandler[T]{kind: kind, keys: keys, encode: encode, decode: decode}
}

type funcHandler[T any] struct {
	kind   string
	keys   []string
	encode func(T) (any, error)
	decode func(any, DecodeFunc) (T, error)
}

func (h *funcHandler[T]) Kind() string { return h.kind }

func (h *funcHandler[T]) CanEncode(v any) bool {
	_, ok := v.(T)
	return ok && h.encode != nil
}

func (h *funcHandler[T]) Encode(v any) (any, error) {
	data, err := h.encode(v.(T))
	if err != nil {
		return nil, err
	}
	return NewEnvelope(h.kind, data), nil
}

func (h *funcHandler[T]) CanDecode(m map[string]any) bool {
	return h.decode != nil && IsEnvelope(m, h.kind, h.keys...)
}

func (h *funcHandler[T]) Decode(m map[string]any, decode DecodeFunc) (any, error) {
	v, err := h.decode(m[DataKey], decode)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h *funcHandler[T]) String() string {
	return fmt.Sprintf("%s handler for %T", h.kind, *new(T))
}
