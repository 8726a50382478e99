// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"

	"go.uber.org/zap"
)

// Serialize converts v into a JSON-compatible tree.
//
// Values are processed in the following order:
//
//   - A foreign value matched by the guard is returned unmodified.
//   - Booleans, strings, numbers, and nil are returned unmodified.
//   - Pointers are dereferenced, where a nil pointer becomes nil.
//   - The first handler that recognizes the value and
//     succeeds in encoding it determines its tree,
//     which is then serialized again.
//   - Maps become a map[string]any with their keys converted to strings.
//   - Slices and arrays become a []any.
//   - Other values of boolean, string, or numeric kind become
//     the equivalent unnamed value.
//   - Any other value is rendered as text, or as a placeholder
//     naming its type if it cannot be rendered.
//
// Serialize never modifies v. It only reports an error
// for cyclic values and values nested deeper than the maximum depth.
func (c *Codec) Serialize(v any) (any, error) {
	e := encodeState{Codec: c, handlers: c.registry.snapshot()}
	return e.serialize(v)
}

func (e *encodeState) serialize(v any) (any, error) {
	if e.guard.Match(v) {
		return v, nil
	}
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return v, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		if err := e.enter(rv); err != nil {
			return nil, err
		}
		defer e.exit(rv)
		return e.serialize(rv.Elem().Interface())
	}

	if out, ok, err := e.serializeHandled(v); ok || err != nil {
		return out, err
	}

	switch rv.Kind() {
	case reflect.Map:
		if err := e.enter(rv); err != nil {
			return nil, err
		}
		defer e.exit(rv)
		out := make(map[string]any, rv.Len())
		for iter := rv.MapRange(); iter.Next(); {
			val, err := e.serialize(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[mapKeyString(iter.Key())] = val
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if err := e.enter(rv); err != nil {
			return nil, err
		}
		defer e.exit(rv)
		out := make([]any, rv.Len())
		for i := range out {
			val, err := e.serialize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return renderText(v), nil
}

// serializeHandled serializes v with the first handler that
// recognizes it and succeeds in encoding it.
// It reports false if no handler did.
func (e *encodeState) serializeHandled(v any) (any, bool, error) {
	for _, h := range e.handlers {
		if !canEncode(h, v) {
			continue
		}
		tree, err := encodeWith(h, v)
		if err != nil {
			if err != SkipHandler {
				e.logger.Debug("skipping handler",
					zap.String("kind", h.Kind()),
					zap.String("type", fmt.Sprintf("%T", v)),
					zap.Error(err))
			}
			continue
		}
		rv := reflect.ValueOf(v)
		if err := e.enter(rv); err != nil {
			return nil, true, err
		}
		out, err := e.serialize(tree)
		e.exit(rv)
		return out, true, err
	}
	return nil, false, nil
}

// encodeWith calls h.Encode, converting a panic into an error.
func encodeWith(h Handler, v any) (tree any, err error) {
	defer func() {
		if r := recover(); r != nil {
			tree, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Encode(v)
}

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// mapKeyString converts a map key to a string.
func mapKeyString(k reflect.Value) string {
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "null"
		}
		k = k.Elem()
	}
	if k.Type().Implements(textMarshalerType) && k.Kind() != reflect.String {
		if b, err := k.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(b)
		}
	}
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Bool:
		return strconv.FormatBool(k.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, k.Type().Bits())
	}
	return fmt.Sprint(k.Interface())
}

// renderText renders v as text, preferring encoding.TextMarshaler,
// then fmt.Stringer and error, then the default fmt formatting.
// Values with no meaningful text (e.g., functions)
// are rendered as a placeholder naming their type.
func renderText(v any) (s string) {
	placeholder := fmt.Sprintf("<unserializable: %T>", v)
	defer func() {
		if recover() != nil {
			s = placeholder
		}
	}()
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return placeholder
	}
	for _, x := range []any{v, addressable(v)} {
		switch x := x.(type) {
		case encoding.TextMarshaler:
			if b, err := x.MarshalText(); err == nil {
				return string(b)
			}
		case fmt.Stringer:
			return x.String()
		case error:
			return x.Error()
		}
	}
	return fmt.Sprint(v)
}

// addressable returns a pointer to a copy of v,
// which has the methods declared on the pointer receiver.
func addressable(v any) any {
	rv := reflect.ValueOf(v)
	pv := reflect.New(rv.Type())
	pv.Elem().Set(rv)
	return pv.Interface()
}

// IsTree reports whether v is already a JSON-compatible tree,
// in which case Serialize would return a deep-equal value.
func IsTree(v any) bool {
	switch v := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return true
	case []any:
		for _, x := range v {
			if !IsTree(x) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, x := range v {
			if !IsTree(x) {
				return false
			}
		}
		return true
	}
	return false
}
