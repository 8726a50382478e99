// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import "hash/maphash"

// envelopeNames are the member names and kinds that occur in
// nearly every envelope. They are returned without allocation.
var envelopeNames = func() map[string]string {
	m := make(map[string]string)
	for _, s := range []string{
		"__type__", "__data__", "__class__", "__subtype__",
		"tuple", "datetime", "date", "time", "enum", "uuid",
		"dataclass", "complex", "real", "imag", "bytes", "decimal", "set",
	} {
		m[s] = s
	}
	return m
}()

// stringCache is a cache for strings converted from a []byte.
// Besides envelopeNames, it retains recently seen short strings
// such as record field names and class names.
// The zero value is ready for use.
type stringCache struct {
	seed    maphash.Seed
	entries [256]string
}

// make returns the string form of b, reusing a previous
// allocation of the same string if one is cached.
func (c *stringCache) make(b []byte) string {
	const (
		minCachedLen = 2  // single byte strings are already interned by the runtime
		maxCachedLen = 64 // large enough for class names and UUIDs
	)
	if s, ok := envelopeNames[string(b)]; ok {
		return s
	}
	if c == nil || len(b) < minCachedLen || len(b) > maxCachedLen {
		return string(b)
	}
	if c.seed == (maphash.Seed{}) {
		c.seed = maphash.MakeSeed()
	}
	e := &c.entries[maphash.Bytes(c.seed, b)%uint64(len(c.entries))]
	if *e == string(b) {
		return *e
	}
	*e = string(b)
	return *e
}
