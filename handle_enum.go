// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"errors"
	"fmt"
	"reflect"
)

// EnumHandler encodes a member of a registered enum type as
// its class name and underlying value:
//
//	{"__type__": "enum", "__class__": "mypkg.Status", "__data__": "active"}
//
// A value of an enum type that is not one of its registered members
// is not encoded as an enum.
// An unresolvable class or an unknown member decodes as a plain map.
type EnumHandler struct {
	Types *Types
}

func (EnumHandler) Kind() string { return "enum" }

func (h EnumHandler) CanEncode(v any) bool {
	_, ok := h.Types.enumMembers(reflect.TypeOf(v))
	return ok
}

func (h EnumHandler) Encode(v any) (any, error) {
	rv := reflect.ValueOf(v)
	members, _ := h.Types.enumMembers(rv.Type())
	for _, m := range members {
		if m.Equal(rv) {
			name, _ := h.Types.NameOf(rv.Type())
			data, _ := scalarOf(rv)
			env := NewEnvelope(h.Kind(), data)
			env[ClassKey] = name
			return env, nil
		}
	}
	return nil, fmt.Errorf("%v is not a member of %v", v, rv.Type())
}

func (h EnumHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind(), ClassKey)
}

func (h EnumHandler) Decode(m map[string]any, _ DecodeFunc) (any, error) {
	class, _ := m[ClassKey].(string)
	t, ok := h.Types.Lookup(class)
	if !ok {
		return nil, unresolved(h.Kind(), class, errors.New("unknown class"))
	}
	members, ok := h.Types.enumMembers(t)
	if !ok {
		return nil, unresolved(h.Kind(), class, errors.New("class is not an enum"))
	}
	data := m[DataKey]
	for _, mv := range members {
		if x, _ := scalarOf(mv); equalScalar(x, data) {
			return mv.Interface(), nil
		}
	}
	return nil, unresolved(h.Kind(), class, fmt.Errorf("no member with value %v", data))
}
