// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"go.uber.org/zap"

	"github.com/go-json-experiment/typedjson/transport"
)

// DefaultMaxDepth is the default nesting limit of Serialize and Deserialize.
const DefaultMaxDepth = 10000

// Codec serializes values into trees and deserializes them back,
// using a registry of handlers and a guard for foreign values.
// It is safe for concurrent use.
type Codec struct {
	types    *Types
	registry *Registry
	guard    *Guard
	logger   *zap.Logger
	format   transport.Format
	strict   bool
	maxDepth int
}

// Option configures a Codec.
type Option func(*Codec)

// WithTypes sets the table used to resolve enum and record classes.
func WithTypes(types *Types) Option {
	return func(c *Codec) { c.types = types }
}

// WithRegistry sets the handler registry.
// If unset, New builds one holding BuiltinHandlers.
func WithRegistry(r *Registry) Option {
	return func(c *Codec) { c.registry = r }
}

// WithGuard sets the guard for foreign values.
// A nil guard treats no value as foreign.
// If unset, DefaultGuard is used.
func WithGuard(g *Guard) Option {
	return func(c *Codec) { c.guard = g }
}

// WithLogger sets the logger that reports recovered failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Codec) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	}
}

// WithFormat sets the transport used by Marshal, Unmarshal, and Verify.
// If unset, transport.JSON is used.
func WithFormat(f transport.Format) Option {
	return func(c *Codec) { c.format = f }
}

// StrictRecordFields specifies that a record envelope whose fields
// do not exactly match the fields of its resolved type is decoded
// as a plain map. By default, unknown fields are dropped and
// missing fields are left as the zero value.
//
// It only affects the registry that New builds when
// WithRegistry is not provided.
func StrictRecordFields(v bool) Option {
	return func(c *Codec) { c.strict = v }
}

// MaxDepth sets the nesting limit of Serialize and Deserialize.
// A non-positive value selects DefaultMaxDepth.
func MaxDepth(n int) Option {
	return func(c *Codec) {
		if n <= 0 {
			n = DefaultMaxDepth
		}
		c.maxDepth = n
	}
}

// New returns a Codec configured by opts.
func New(opts ...Option) *Codec {
	c := &Codec{
		guard:    DefaultGuard(),
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.types == nil {
		c.types = NewTypes()
	}
	if c.format == nil {
		c.format = transport.JSON()
	}
	if c.registry == nil {
		hs := BuiltinHandlers(c.types)
		for i, h := range hs {
			if rh, ok := h.(RecordHandler); ok {
				rh.Strict = c.strict
				rh.Logger = c.logger
				hs[i] = rh
			}
		}
		c.registry = NewRegistry(hs...)
	}
	return c
}

// Types returns the class name table.
func (c *Codec) Types() *Types { return c.types }

// Registry returns the handler registry.
func (c *Codec) Registry() *Registry { return c.registry }

// Guard returns the guard for foreign values.
func (c *Codec) Guard() *Guard { return c.guard }

// Format returns the transport format.
func (c *Codec) Format() transport.Format { return c.format }

// Marshal serializes v and renders the tree as transport text.
func (c *Codec) Marshal(v any) ([]byte, error) {
	tree, err := c.Serialize(v)
	if err != nil {
		return nil, err
	}
	return c.format.Marshal(tree)
}

// Unmarshal parses transport text and deserializes the tree.
func (c *Codec) Unmarshal(b []byte) (any, error) {
	tree, err := c.format.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return c.Deserialize(tree)
}
