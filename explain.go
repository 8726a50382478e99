// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"fmt"
	"reflect"
)

// Step identifies the rule Serialize applies to a value.
type Step string

const (
	StepForeign   Step = "foreign"
	StepPrimitive Step = "primitive"
	StepHandler   Step = "handler"
	StepMap       Step = "map"
	StepSequence  Step = "sequence"
	StepScalar    Step = "scalar"
	StepText      Step = "text"
)

// Trace describes how Serialize processes the top level of a value.
type Trace struct {
	requireKeyedLiterals

	// Type is the Go type of the value after dereferencing pointers.
	Type reflect.Type
	// Step is the rule that applies.
	Step Step
	// Kind is the kind of the handler if Step is StepHandler.
	Kind string
	// Index is the position of the handler in the registry.
	Index int
	// Skipped lists the kinds of handlers that recognized
	// the value but failed to encode it.
	Skipped []string
	// Tree is the serialized value, or nil if serialization failed.
	Tree any
	// Err is the serialization error, if any.
	Err error
}

func (t Trace) String() string {
	s := fmt.Sprintf("%v: %s", t.Type, t.Step)
	if t.Step == StepHandler {
		s += fmt.Sprintf(" %q (#%d)", t.Kind, t.Index)
	}
	if len(t.Skipped) > 0 {
		s += fmt.Sprintf(", skipped %q", t.Skipped)
	}
	if t.Err != nil {
		s += ": " + t.Err.Error()
	}
	return s
}

// Explain reports which rule Serialize applies to v and its result.
func (c *Codec) Explain(v any) Trace {
	tr := Trace{Index: -1}
	tr.Tree, tr.Err = c.Serialize(v)
	if c.guard.Match(v) {
		tr.Type, tr.Step = reflect.TypeOf(v), StepForeign
		return tr
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() == reflect.Pointer {
		tr.Step = StepPrimitive
		return tr
	}
	v = rv.Interface()
	tr.Type = rv.Type()
	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		tr.Step = StepPrimitive
		return tr
	}
	for i, h := range c.registry.snapshot() {
		if !canEncode(h, v) {
			continue
		}
		if _, err := encodeWith(h, v); err != nil {
			tr.Skipped = append(tr.Skipped, h.Kind())
			continue
		}
		tr.Step, tr.Kind, tr.Index = StepHandler, h.Kind(), i
		return tr
	}
	switch rv.Kind() {
	case reflect.Map:
		tr.Step = StepMap
	case reflect.Slice, reflect.Array:
		tr.Step = StepSequence
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		tr.Step = StepScalar
	default:
		tr.Step = StepText
	}
	return tr
}

// subtyper is implemented by handlers whose kind has several subtypes.
type subtyper interface {
	Subtypes() []string
}

// SupportedKinds returns the kinds handled by r in lookup order,
// where a kind with subtypes is listed once per subtype as "kind.subtype".
func (r *Registry) SupportedKinds() []string {
	var kinds []string
	seen := make(map[string]bool)
	for _, h := range r.snapshot() {
		names := []string{h.Kind()}
		if st, ok := h.(subtyper); ok {
			names = names[:0]
			for _, sub := range st.Subtypes() {
				names = append(names, h.Kind()+"."+sub)
			}
		}
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				kinds = append(kinds, name)
			}
		}
	}
	return kinds
}

// SupportedKinds returns the kinds of the built-in handlers.
func SupportedKinds() []string {
	return NewRegistry(BuiltinHandlers(nil)...).SupportedKinds()
}
