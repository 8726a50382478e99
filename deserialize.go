// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"errors"
	"fmt"
	"reflect"
)

// Deserialize reconstructs a value from a JSON-compatible tree.
//
// Trees are processed in the following order:
//
//   - Booleans, strings, numbers, and nil are returned unmodified.
//   - A map[string]any recognized by a handler is decoded by that handler.
//   - Any other map[string]any is copied with each member deserialized.
//   - A []any is copied with each element deserialized.
//   - Any other value is returned unmodified.
//
// If a handler fails to decode an envelope, the envelope is
// treated as a plain map and the failure is logged.
// The exception are failures matching ErrInvalidPayload,
// which are reported since there is no safe fallback.
func (c *Codec) Deserialize(tree any) (any, error) {
	d := decodeState{Codec: c, handlers: c.registry.snapshot()}
	return d.deserialize(tree)
}

func (d *decodeState) deserialize(tree any) (any, error) {
	switch t := tree.(type) {
	case map[string]any:
		if err := d.enter(); err != nil {
			return nil, err
		}
		defer d.exit()
		if h := findDecoder(d.handlers, t); h != nil {
			v, err := decodeWith(h, t, d.deserialize)
			if err == nil {
				return v, nil
			}
			if errors.Is(err, ErrInvalidPayload) || isSemantic(err) {
				return nil, err
			}
			d.warn(h, t, err)
		}
		out := make(map[string]any, len(t))
		for k, x := range t {
			v, err := d.deserialize(x)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case []any:
		if err := d.enter(); err != nil {
			return nil, err
		}
		defer d.exit()
		out := make([]any, len(t))
		for i, x := range t {
			v, err := d.deserialize(x)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return tree, nil
	}
}

// DeserializeInto deserializes tree and stores the result in the value
// pointed to by dst, which must be a non-nil pointer.
//
// Unlike Deserialize, the class of a record need not be registered:
// a plain map, or a record envelope of any class, is filled
// into a struct destination field by field.
// Fields absent from the map keep their current value,
// unless StrictRecordFields is set, in which case they are an error.
// Other results are assigned to dst with the conversions
// described for RecordHandler fields.
func (c *Codec) DeserializeInto(tree, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &SemanticError{action: "deserialize", GoType: reflect.TypeOf(dst), Err: errors.New("destination must be a non-nil pointer")}
	}
	v, err := c.Deserialize(tree)
	if err != nil {
		return err
	}
	h := RecordHandler{Types: c.types, Strict: c.strict, Logger: c.logger}
	dv := rv.Elem()
	if m, ok := v.(map[string]any); ok {
		if IsEnvelope(m, h.Kind(), ClassKey) {
			if data, ok := m[DataKey].(map[string]any); ok {
				m = data
			}
		}
		if dv.Kind() == reflect.Struct {
			err = h.fill(dv, m)
		} else {
			err = h.assign(dv, m)
		}
	} else {
		err = h.assign(dv, v)
	}
	if err != nil {
		return &SemanticError{action: "deserialize", GoType: dv.Type(), Err: err}
	}
	return nil
}

// UnmarshalInto parses transport text and deserializes
// the tree into dst as described for DeserializeInto.
func (c *Codec) UnmarshalInto(b []byte, dst any) error {
	tree, err := c.format.Unmarshal(b)
	if err != nil {
		return err
	}
	return c.DeserializeInto(tree, dst)
}

// decodeWith calls h.Decode, converting a panic into a recoverable error.
func decodeWith(h Handler, m map[string]any, decode DecodeFunc) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, unresolved(h.Kind(), "", fmt.Errorf("panic: %v", r))
		}
	}()
	return h.Decode(m, decode)
}

func isSemantic(err error) bool {
	var se *SemanticError
	return errors.As(err, &se)
}
