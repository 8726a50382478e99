// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"reflect"
	"strings"
)

// Identity is the runtime identity of a named Go type.
type Identity struct {
	// Package is the import path of the package declaring the type.
	Package string `json:"package" koanf:"package"`
	// Name is the name of the type within its package.
	Name string `json:"name" koanf:"name"`
}

// IdentityOf returns the identity of t.
// Pointer types have the identity of their element type.
// Unnamed types have the zero identity.
func IdentityOf(t reflect.Type) Identity {
	for t != nil && t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if t == nil {
		return Identity{}
	}
	return Identity{Package: t.PkgPath(), Name: t.Name()}
}

func (id Identity) String() string { return id.Package + "." + id.Name }

// PrefixRule matches a family of types declared in every package
// whose import path starts with Package.
// If Names is non-empty, only types with one of those names match.
type PrefixRule struct {
	Package string   `json:"package" koanf:"package"`
	Names   []string `json:"names" koanf:"names"`
}

func (r PrefixRule) match(id Identity) bool {
	if !strings.HasPrefix(id.Package, r.Package) {
		return false
	}
	if len(r.Names) == 0 {
		return true
	}
	for _, name := range r.Names {
		if name == id.Name {
			return true
		}
	}
	return false
}

// Guard identifies foreign values, which belong to the machinery
// of the embedding application and are serialized unmodified.
// Types are matched by exact identity, so that an application type
// that merely shares a name with a foreign type is never excluded.
//
// A Guard is immutable once constructed. A nil *Guard matches nothing.
type Guard struct {
	identities map[Identity]struct{}
	prefixes   []PrefixRule
}

// NewGuard returns a guard matching the given identities
// and every type matched by one of the prefix rules.
func NewGuard(identities []Identity, prefixes ...PrefixRule) *Guard {
	g := &Guard{
		identities: make(map[Identity]struct{}, len(identities)),
		prefixes:   append([]PrefixRule(nil), prefixes...),
	}
	for _, id := range identities {
		g.identities[id] = struct{}{}
	}
	return g
}

// DefaultGuard matches the raw JSON value types,
// whose content is already encoded and must not be traversed.
func DefaultGuard() *Guard {
	return NewGuard([]Identity{
		{Package: "encoding/json", Name: "RawMessage"},
		{Package: "github.com/go-json-experiment/json", Name: "RawValue"},
		{Package: "github.com/go-json-experiment/json/jsontext", Name: "Value"},
	})
}

// Match reports whether v is a foreign value.
func (g *Guard) Match(v any) bool {
	if g == nil || v == nil {
		return false
	}
	return g.MatchType(reflect.TypeOf(v))
}

// MatchType reports whether values of type t are foreign.
func (g *Guard) MatchType(t reflect.Type) bool {
	if g == nil || t == nil {
		return false
	}
	id := IdentityOf(t)
	if id.Name == "" {
		return false
	}
	if _, ok := g.identities[id]; ok {
		return true
	}
	for _, r := range g.prefixes {
		if r.match(id) {
			return true
		}
	}
	return false
}

// Identities returns the exact identities matched by g.
func (g *Guard) Identities() []Identity {
	if g == nil {
		return nil
	}
	ids := make([]Identity, 0, len(g.identities))
	for id := range g.identities {
		ids = append(ids, id)
	}
	return ids
}
