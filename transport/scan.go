// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"

	"github.com/tidwall/gjson"
)

// Census counts the envelopes found in JSON text.
type Census struct {
	// Kinds counts envelopes by the value of their "__type__" member.
	Kinds map[string]int
	// Classes counts enum and record envelopes by
	// the value of their "__class__" member.
	Classes map[string]int
}

// Total returns the number of envelopes.
func (c Census) Total() int {
	n := 0
	for _, k := range c.Kinds {
		n += k
	}
	return n
}

// ScanKinds counts the envelopes in JSON text without decoding it.
// An object is counted if it has a string "__type__" member
// and a "__data__" member.
func ScanKinds(text []byte) (Census, error) {
	if !gjson.ValidBytes(text) {
		return Census{}, errors.New(errorPrefix + "invalid JSON text")
	}
	c := Census{Kinds: make(map[string]int), Classes: make(map[string]int)}
	var walk func(r gjson.Result) bool
	walk = func(r gjson.Result) bool {
		switch {
		case r.IsObject():
			kind := r.Get("__type__")
			if kind.Type == gjson.String && r.Get("__data__").Exists() {
				c.Kinds[kind.String()]++
				if cls := r.Get("__class__"); cls.Type == gjson.String {
					c.Classes[cls.String()]++
				}
			}
			r.ForEach(func(_, v gjson.Result) bool { return walk(v) })
		case r.IsArray():
			r.ForEach(func(_, v gjson.Result) bool { return walk(v) })
		}
		return true
	}
	walk(gjson.ParseBytes(text))
	return c, nil
}
