// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import "sync"

// Priority controls where Register places a handler.
type Priority int

const (
	// Normal appends the handler after all existing handlers.
	Normal Priority = iota
	// High inserts the handler before all existing handlers,
	// so that it shadows any handler recognizing the same values.
	High
)

// Registry is an ordered list of handlers.
// Lookups scan the list from the front and the first match wins.
//
// Registration and lookup may be called concurrently,
// but handlers are expected to be registered once at startup.
type Registry struct {
	mu sync.RWMutex
	// handlers is never mutated in place so that a snapshot
	// remains valid after a later registration.
	handlers []Handler
}

// NewRegistry returns a registry holding the given handlers in order.
func NewRegistry(handlers ...Handler) *Registry {
	return &Registry{handlers: append([]Handler(nil), handlers...)}
}

// DefaultRegistry returns a registry holding [BuiltinHandlers].
func DefaultRegistry(types *Types) *Registry {
	return NewRegistry(BuiltinHandlers(types)...)
}

// BuiltinHandlers returns the built-in handlers in their registration order.
// Enum and record classes are resolved through types, which may be nil
// if neither kind is needed.
//
// The decimal handler precedes the record handler since
// a decimal is a struct with exported fields.
func BuiltinHandlers(types *Types) []Handler {
	return []Handler{
		TupleHandler{},
		TimeHandler{},
		EnumHandler{Types: types},
		UUIDHandler{},
		ComplexHandler{},
		BytesHandler{},
		DecimalHandler{},
		RecordHandler{Types: types},
		SetHandler{},
	}
}

// Register adds h to the registry.
// With Normal priority, h is tried after every existing handler.
// With High priority, h is tried before every existing handler.
func (r *Registry) Register(h Handler, p Priority) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hs := make([]Handler, 0, len(r.handlers)+1)
	switch p {
	case High:
		hs = append(append(hs, h), r.handlers...)
	default:
		hs = append(append(hs, r.handlers...), h)
	}
	r.handlers = hs
}

// Handlers returns a copy of the handlers in lookup order.
func (r *Registry) Handlers() []Handler {
	return append([]Handler(nil), r.snapshot()...)
}

// Kinds returns the kind of each handler in lookup order.
// A kind may appear more than once if it has been overridden.
func (r *Registry) Kinds() []string {
	hs := r.snapshot()
	kinds := make([]string, len(hs))
	for i, h := range hs {
		kinds[i] = h.Kind()
	}
	return kinds
}

// Encoder returns the first handler that recognizes v, or nil if none does.
func (r *Registry) Encoder(v any) Handler {
	for _, h := range r.snapshot() {
		if canEncode(h, v) {
			return h
		}
	}
	return nil
}

// Decoder returns the first handler that recognizes m, or nil if none does.
func (r *Registry) Decoder(m map[string]any) Handler {
	return findDecoder(r.snapshot(), m)
}

func (r *Registry) snapshot() []Handler {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers
}

func findDecoder(hs []Handler, m map[string]any) Handler {
	for _, h := range hs {
		if canDecode(h, m) {
			return h
		}
	}
	return nil
}

// canEncode and canDecode treat a panicking predicate as not matching.
func canEncode(h Handler, v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return h.CanEncode(v)
}

func canDecode(h Handler, m map[string]any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return h.CanDecode(m)
}
