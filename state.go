// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"reflect"

	"go.uber.org/zap"
)

// startDetectingCyclesAfter is the nesting depth after which
// the serializer starts tracking the references it has entered.
const startDetectingCyclesAfter = 1000

type seenPointers map[typedPointer]struct{}

type typedPointer struct {
	typ reflect.Type
	// TODO: This breaks if Go ever switches to a moving garbage collector.
	// This should use unsafe.Pointer, but that requires importing unsafe.
	// We only use pointers for comparisons, and never for unsafe type casts.
	ptr uintptr
	len int // remains zero for pointers and maps
}

// visit visits the reference v, reporting an error if seen before.
// If successfully visited, then the caller must eventually call leave.
func (m *seenPointers) visit(v reflect.Value) error {
	p := makeTypedPointer(v)
	if _, ok := (*m)[p]; ok {
		return &SemanticError{action: "serialize", GoType: p.typ, Err: errCycle}
	}
	if *m == nil {
		*m = make(seenPointers)
	}
	(*m)[p] = struct{}{}
	return nil
}
func (m *seenPointers) leave(v reflect.Value) {
	delete(*m, makeTypedPointer(v))
}

func makeTypedPointer(v reflect.Value) typedPointer {
	p := typedPointer{typ: v.Type(), ptr: v.Pointer()}
	if v.Kind() == reflect.Slice {
		p.len = v.Len()
	}
	return p
}

// encodeState is the state of a single call to Serialize.
type encodeState struct {
	*Codec
	handlers []Handler
	depth    int
	seen     seenPointers
}

// enter records entering the reference or container v.
// If it succeeds, the caller must call exit.
func (e *encodeState) enter(v reflect.Value) error {
	e.depth++
	if e.depth > e.maxDepth {
		e.depth--
		return &SemanticError{action: "serialize", GoType: v.Type(), Err: errTooDeep}
	}
	if e.depth > startDetectingCyclesAfter {
		switch v.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice:
			if err := e.seen.visit(v); err != nil {
				e.depth--
				return err
			}
		}
	}
	return nil
}

func (e *encodeState) exit(v reflect.Value) {
	if e.depth > startDetectingCyclesAfter {
		switch v.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice:
			e.seen.leave(v)
		}
	}
	e.depth--
}

// decodeState is the state of a single call to Deserialize.
type decodeState struct {
	*Codec
	handlers []Handler
	depth    int
}

func (d *decodeState) enter() error {
	d.depth++
	if d.depth > d.maxDepth {
		d.depth--
		return &SemanticError{action: "deserialize", Err: errTooDeep}
	}
	return nil
}

func (d *decodeState) exit() { d.depth-- }

// warn logs a decode failure that was recovered
// by decoding the envelope as a plain map.
func (d *decodeState) warn(h Handler, m map[string]any, err error) {
	cls, _ := m[ClassKey].(string)
	d.logger.Warn("decoding envelope as plain map",
		zap.String("kind", h.Kind()),
		zap.String("class", cls),
		zap.Error(err))
}
