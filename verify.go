// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Result is the outcome of a round trip of a single value.
type Result struct {
	// Name identifies the value in a report.
	Name string
	// Tree is the serialized value.
	Tree any
	// Text is the transport text of the tree.
	Text []byte
	// Value is the reconstructed value.
	Value any
	// TypeMatch reports whether Value has the type of the original value.
	TypeMatch bool
	// ValueMatch reports whether Value equals the original value.
	ValueMatch bool
	// Diff is a human-readable difference between the original
	// and reconstructed values if they are not equal.
	Diff string
	// Err is the first error encountered during the round trip.
	Err error
}

// OK reports whether the round trip reproduced the value and its type.
func (r Result) OK() bool { return r.Err == nil && r.TypeMatch && r.ValueMatch }

func (r Result) String() string {
	var status string
	switch {
	case r.Err != nil:
		status = "error: " + r.Err.Error()
	case !r.TypeMatch:
		status = fmt.Sprintf("type mismatch: got %T", r.Value)
	case !r.ValueMatch:
		status = "value mismatch"
	default:
		status = "ok"
	}
	if r.Name == "" {
		return status
	}
	return r.Name + ": " + status
}

// equateOptions compare values the way a round trip is expected
// to preserve them. Unexported fields are compared, a nil slice
// or map equals an empty one, and decimals must be textually equal.
var equateOptions = []cmp.Option{
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(x, y apd.Decimal) bool { return x.String() == y.String() }),
}

// Equal reports whether a reconstructed value equals the original.
// Values of type time.Time are compared as instants.
func Equal(want, got any) bool {
	return cmp.Equal(want, got, equateOptions...)
}

// Verify serializes v, renders the tree as transport text and parses it,
// deserializes the result, and compares it with v.
func (c *Codec) Verify(v any) Result {
	var r Result
	if r.Tree, r.Err = c.Serialize(v); r.Err != nil {
		return r
	}
	if r.Text, r.Err = c.format.Marshal(r.Tree); r.Err != nil {
		return r
	}
	tree, err := c.format.Unmarshal(r.Text)
	if err != nil {
		r.Err = err
		return r
	}
	if r.Value, r.Err = c.Deserialize(tree); r.Err != nil {
		return r
	}
	r.TypeMatch = reflect.TypeOf(v) == reflect.TypeOf(r.Value)
	r.ValueMatch = Equal(v, r.Value)
	if !r.ValueMatch {
		r.Diff = cmp.Diff(v, r.Value, equateOptions...)
	}
	return r
}

// Report is the outcome of CompatibilityReport.
type Report struct {
	Format  string
	Results []Result
}

// Passed returns the number of successful round trips.
func (rp Report) Passed() int {
	n := 0
	for _, r := range rp.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// OK reports whether every round trip succeeded.
func (rp Report) OK() bool { return rp.Passed() == len(rp.Results) }

func (rp Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s round trip: %d/%d passed\n", rp.Format, rp.Passed(), len(rp.Results))
	for _, r := range rp.Results {
		mark := "PASS"
		if !r.OK() {
			mark = "FAIL"
		}
		fmt.Fprintf(&sb, "  %s %s\n", mark, r)
		if r.Diff != "" {
			for _, line := range strings.Split(strings.TrimRight(r.Diff, "\n"), "\n") {
				sb.WriteString("      " + line + "\n")
			}
		}
	}
	return sb.String()
}

// CompatibilityReport verifies a sample value of every built-in kind
// using a codec with the given options.
// Sample enum and record classes are registered in a fresh name table,
// which replaces any table provided by opts.
func CompatibilityReport(opts ...Option) (Report, error) {
	types := NewTypes()
	if err := RegisterEnumOf(types, "typedjson.sampleColor", sampleRed, sampleGreen); err != nil {
		return Report{}, err
	}
	if err := RegisterRecordOf[sampleRecord](types, "typedjson.sampleRecord"); err != nil {
		return Report{}, err
	}
	c := New(append(append([]Option(nil), opts...), WithTypes(types))...)
	rp := Report{Format: c.format.Name()}
	for _, s := range compatibilitySamples() {
		r := c.Verify(s.value)
		r.Name = s.name
		rp.Results = append(rp.Results, r)
	}
	return rp, nil
}
