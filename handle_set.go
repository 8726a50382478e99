// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"fmt"
	"reflect"
	"sort"
)

// Set is an unordered collection of distinct comparable values.
type Set map[any]struct{}

// NewSet returns a set holding the given members.
func NewSet(members ...any) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Has reports whether m is a member of s.
func (s Set) Has(m any) bool {
	_, ok := s[m]
	return ok
}

// Members returns the members of s ordered by their formatted text,
// which is a stable order for members of the same type.
func (s Set) Members() []any {
	ms := make([]any, 0, len(s))
	for m := range s {
		ms = append(ms, m)
	}
	sort.SliceStable(ms, func(i, j int) bool {
		return setOrderKey(ms[i]) < setOrderKey(ms[j])
	})
	return ms
}

func setOrderKey(m any) string { return fmt.Sprintf("%T\x00%v", m, m) }

var emptyStructType = reflect.TypeOf(struct{}{})

// SetHandler encodes a Set as the sequence of its members:
//
//	{"__type__": "set", "__data__": [1, 2, 3]}
//
// A map whose element type is struct{} is also encoded as a set,
// but always decodes as a Set.
// A member that is not comparable after decoding (e.g., a []any)
// causes the envelope to decode as a plain map.
type SetHandler struct{}

func (SetHandler) Kind() string { return "set" }

func (SetHandler) CanEncode(v any) bool {
	if _, ok := v.(Set); ok {
		return true
	}
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Map && t.Elem() == emptyStructType
}

func (h SetHandler) Encode(v any) (any, error) {
	s, ok := v.(Set)
	if !ok {
		rv := reflect.ValueOf(v)
		s = make(Set, rv.Len())
		for _, k := range rv.MapKeys() {
			s[k.Interface()] = struct{}{}
		}
	}
	return NewEnvelope(h.Kind(), s.Members()), nil
}

func (h SetHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind())
}

func (h SetHandler) Decode(m map[string]any, decode DecodeFunc) (any, error) {
	data, ok := m[DataKey].([]any)
	if !ok {
		return nil, unresolved(h.Kind(), "", fmt.Errorf("payload is %T, want array", m[DataKey]))
	}
	s := make(Set, len(data))
	for _, x := range data {
		v, err := decode(x)
		if err != nil {
			return nil, err
		}
		if v != nil && !reflect.ValueOf(v).Comparable() {
			return nil, unresolved(h.Kind(), "", fmt.Errorf("member of type %T is not comparable", v))
		}
		s[v] = struct{}{}
	}
	return s, nil
}
