// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Types resolves the class names stored in enum and record envelopes.
// Only types registered by the application can be reconstructed,
// which keeps name resolution explicit and narrow.
//
// The zero value is ready for use.
type Types struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	names  map[reflect.Type]string
	enums  map[reflect.Type][]reflect.Value
}

// NewTypes returns an empty name table.
func NewTypes() *Types { return new(Types) }

// QualifiedName returns the default class name of t,
// which is its package path and name joined by a dot.
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// RegisterRecord registers the struct type t as a record class.
// If name is empty, the QualifiedName of t is used.
func (ts *Types) RegisterRecord(name string, t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Struct {
		return &SemanticError{action: "register", GoType: t, Err: errors.New("record type must be a struct")}
	}
	return ts.register(name, t, nil)
}

// RegisterEnum registers the type of members as an enum class.
// Every member must have the same type, whose kind must be
// a boolean, string, integer, or floating-point number.
// If name is empty, the QualifiedName of the type is used.
func (ts *Types) RegisterEnum(name string, members ...any) error {
	if len(members) == 0 {
		return &SemanticError{action: "register", Err: errors.New("enum has no members")}
	}
	t := reflect.TypeOf(members[0])
	if t == nil {
		return &SemanticError{action: "register", Err: errors.New("enum member is nil")}
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return &SemanticError{action: "register", GoType: t, Err: fmt.Errorf("enum of kind %v is not supported", t.Kind())}
	}
	vs := make([]reflect.Value, len(members))
	for i, m := range members {
		if reflect.TypeOf(m) != t {
			return &SemanticError{action: "register", GoType: t, Err: fmt.Errorf("member %d has type %T", i, m)}
		}
		vs[i] = reflect.ValueOf(m)
	}
	return ts.register(name, t, vs)
}

// RegisterRecordOf registers T as a record class.
func RegisterRecordOf[T any](ts *Types, name string) error {
	return ts.RegisterRecord(name, reflect.TypeOf((*T)(nil)).Elem())
}

// RegisterEnumOf registers T as an enum class with the given members.
func RegisterEnumOf[T comparable](ts *Types, name string, members ...T) error {
	ms := make([]any, len(members))
	for i, m := range members {
		ms[i] = m
	}
	return ts.RegisterEnum(name, ms...)
}

func (ts *Types) register(name string, t reflect.Type, members []reflect.Value) error {
	if name == "" {
		name = QualifiedName(t)
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if prev, ok := ts.byName[name]; ok && prev != t {
		return &SemanticError{action: "register", GoType: t, Err: fmt.Errorf("class %q already names %v", name, prev)}
	}
	if prev, ok := ts.names[t]; ok && prev != name {
		return &SemanticError{action: "register", GoType: t, Err: fmt.Errorf("type already registered as %q", prev)}
	}
	if ts.byName == nil {
		ts.byName = make(map[string]reflect.Type)
		ts.names = make(map[reflect.Type]string)
		ts.enums = make(map[reflect.Type][]reflect.Value)
	}
	ts.byName[name] = t
	ts.names[t] = name
	if members != nil {
		ts.enums[t] = members
	}
	return nil
}

// Lookup returns the type registered under name.
func (ts *Types) Lookup(name string) (reflect.Type, bool) {
	if ts == nil {
		return nil, false
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	t, ok := ts.byName[name]
	return t, ok
}

// NameOf returns the class name under which t is registered.
func (ts *Types) NameOf(t reflect.Type) (string, bool) {
	if ts == nil {
		return "", false
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	name, ok := ts.names[t]
	return name, ok
}

// Names returns the registered class names in sorted order.
func (ts *Types) Names() []string {
	if ts == nil {
		return nil
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	names := make([]string, 0, len(ts.byName))
	for name := range ts.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// enumMembers returns the members of t if it is a registered enum.
func (ts *Types) enumMembers(t reflect.Type) ([]reflect.Value, bool) {
	if ts == nil {
		return nil, false
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	vs, ok := ts.enums[t]
	return vs, ok
}
