// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/netip"
	"reflect"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

type testStatus string

const (
	statusActive   testStatus = "active"
	statusInactive testStatus = "inactive"
)

type testLevel int

const (
	levelLow  testLevel = 1
	levelHigh testLevel = 3
)

type testRelease struct {
	Name    string `json:"name"`
	Version Tuple  `json:"version"`
}

type testProject struct {
	Title    string
	Status   testStatus
	Releases []testRelease
	Owner    *testPerson
	Tags     map[string]int
	Secret   string `json:"-"`
	internal int
}

type testPerson struct {
	Name string `json:"name,omitempty"`
	Age  int    `json:"age"`
}

type hostMetadata struct {
	Shape []int
}

func newTestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	types := NewTypes()
	if err := RegisterEnumOf(types, "mypkg.Status", statusActive, statusInactive); err != nil {
		t.Fatalf("RegisterEnumOf error: %v", err)
	}
	if err := RegisterEnumOf(types, "mypkg.Level", levelLow, levelHigh); err != nil {
		t.Fatalf("RegisterEnumOf error: %v", err)
	}
	if err := RegisterRecordOf[testRelease](types, "mypkg.Release"); err != nil {
		t.Fatalf("RegisterRecordOf error: %v", err)
	}
	if err := RegisterRecordOf[testProject](types, ""); err != nil {
		t.Fatalf("RegisterRecordOf error: %v", err)
	}
	if err := RegisterRecordOf[testPerson](types, "mypkg.Person"); err != nil {
		t.Fatalf("RegisterRecordOf error: %v", err)
	}
	return New(append([]Option{WithTypes(types)}, opts...)...)
}

func TestSerialize(t *testing.T) {
	c := newTestCodec(t)
	ts := time.Date(2025, 1, 19, 12, 0, 0, 0, time.FixedZone("", 3600))
	tests := []struct {
		name string
		in   any
		want any
	}{{
		name: "Nil",
		in:   nil,
		want: nil,
	}, {
		name: "Primitives",
		in:   []any{true, "s", 1, int8(-2), uint16(3), 1.5, float32(2.5)},
		want: []any{true, "s", 1, int8(-2), uint16(3), 1.5, float32(2.5)},
	}, {
		name: "Tuple",
		in:   Tuple{1, 2, 3},
		want: map[string]any{"__type__": "tuple", "__data__": []any{1, 2, 3}},
	}, {
		name: "EmptyTuple",
		in:   Tuple{},
		want: map[string]any{"__type__": "tuple", "__data__": []any{}},
	}, {
		name: "UnaryTuple",
		in:   Tuple{42},
		want: map[string]any{"__type__": "tuple", "__data__": []any{42}},
	}, {
		name: "NestedTuple",
		in:   map[string]any{"version": Tuple{3, 0, 0}, "items": []int{1, 2}},
		want: map[string]any{
			"version": map[string]any{"__type__": "tuple", "__data__": []any{3, 0, 0}},
			"items":   []any{1, 2},
		},
	}, {
		name: "Time",
		in:   ts,
		want: map[string]any{"__type__": "datetime", "__subtype__": "datetime", "__data__": "2025-01-19T12:00:00+01:00"},
	}, {
		name: "CivilDateTime",
		in:   civil.DateTimeOf(time.Date(2025, 1, 19, 12, 0, 0, 0, time.UTC)),
		want: map[string]any{"__type__": "datetime", "__subtype__": "datetime", "__data__": "2025-01-19T12:00:00"},
	}, {
		name: "CivilDate",
		in:   civil.Date{Year: 2025, Month: time.January, Day: 19},
		want: map[string]any{"__type__": "datetime", "__subtype__": "date", "__data__": "2025-01-19"},
	}, {
		name: "CivilTime",
		in:   civil.Time{Hour: 8, Minute: 5},
		want: map[string]any{"__type__": "datetime", "__subtype__": "time", "__data__": "08:05:00"},
	}, {
		name: "Enum",
		in:   statusActive,
		want: map[string]any{"__type__": "enum", "__class__": "mypkg.Status", "__data__": "active"},
	}, {
		name: "IntEnum",
		in:   levelHigh,
		want: map[string]any{"__type__": "enum", "__class__": "mypkg.Level", "__data__": int64(3)},
	}, {
		name: "EnumNonMember",
		in:   testStatus("unknown"),
		want: "unknown",
	}, {
		name: "UUID",
		in:   uuid.MustParse("F47AC10B-58CC-4372-A567-0E02B2C3D479"),
		want: map[string]any{"__type__": "uuid", "__data__": "f47ac10b-58cc-4372-a567-0e02b2c3d479"},
	}, {
		name: "Record",
		in:   testRelease{Name: "demo", Version: Tuple{1, 0}},
		want: map[string]any{
			"__type__":  "dataclass",
			"__class__": "mypkg.Release",
			"__data__": map[string]any{
				"name":    "demo",
				"version": map[string]any{"__type__": "tuple", "__data__": []any{1, 0}},
			},
		},
	}, {
		name: "RecordPointer",
		in:   &testPerson{Name: "ada", Age: 36},
		want: map[string]any{
			"__type__":  "dataclass",
			"__class__": "mypkg.Person",
			"__data__":  map[string]any{"name": "ada", "age": 36},
		},
	}, {
		name: "UnregisteredRecord",
		in:   hostMetadata{Shape: []int{2, 3}},
		want: map[string]any{
			"__type__":  "dataclass",
			"__class__": "github.com/go-json-experiment/typedjson.hostMetadata",
			"__data__":  map[string]any{"Shape": []any{2, 3}},
		},
	}, {
		name: "Complex",
		in:   complex(3, 4),
		want: map[string]any{"__type__": "complex", "__data__": map[string]any{"real": 3.0, "imag": 4.0}},
	}, {
		name: "Complex64",
		in:   complex64(complex(1, -1)),
		want: map[string]any{"__type__": "complex", "__data__": map[string]any{"real": 1.0, "imag": -1.0}},
	}, {
		name: "Bytes",
		in:   []byte("hello"),
		want: map[string]any{"__type__": "bytes", "__data__": "aGVsbG8="},
	}, {
		name: "Decimal",
		in:   *apd.New(150, -2),
		want: map[string]any{"__type__": "decimal", "__data__": "1.50"},
	}, {
		name: "DecimalPointer",
		in:   apd.New(-5, 3),
		want: map[string]any{"__type__": "decimal", "__data__": "-5E+3"},
	}, {
		name: "Set",
		in:   NewSet(3, 1, 2),
		want: map[string]any{"__type__": "set", "__data__": []any{1, 2, 3}},
	}, {
		name: "EmptyStructMapAsSet",
		in:   map[string]struct{}{"b": {}, "a": {}},
		want: map[string]any{"__type__": "set", "__data__": []any{"a", "b"}},
	}, {
		name: "MapKeys",
		in:   map[int]string{1: "one", -2: "minus two"},
		want: map[string]any{"1": "one", "-2": "minus two"},
	}, {
		name: "TextMarshalerMapKeys",
		in:   map[netip.Addr]bool{netip.MustParseAddr("10.0.0.1"): true},
		want: map[string]any{"10.0.0.1": true},
	}, {
		name: "Array",
		in:   [2]string{"a", "b"},
		want: []any{"a", "b"},
	}, {
		name: "NamedScalars",
		in:   []any{time.Duration(5), time.March},
		want: []any{int64(5), int64(3)},
	}, {
		name: "NilPointer",
		in:   (*testPerson)(nil),
		want: nil,
	}, {
		name: "TextMarshalerFallback",
		in:   netip.MustParseAddr("::1"),
		want: "::1",
	}, {
		name: "StringerFallback",
		in:   big.NewInt(12345),
		want: "12345",
	}, {
		name: "ErrorFallback",
		in:   errors.New("boom"),
		want: "boom",
	}, {
		name: "FuncPlaceholder",
		in:   func() {},
		want: "<unserializable: func()>",
	}, {
		name: "ChanPlaceholder",
		in:   make(chan int),
		want: "<unserializable: chan int>",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Serialize(tt.in)
			if err != nil {
				t.Fatalf("Serialize error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Serialize:\n\tgot:  %#v\n\twant: %#v", got, tt.want)
			}
		})
	}
}

func TestSerializeDoesNotMutate(t *testing.T) {
	c := newTestCodec(t)
	in := map[string]any{"t": Tuple{1, Tuple{2}}, "s": NewSet("x"), "l": []any{Tuple{}}}
	want := map[string]any{"t": Tuple{1, Tuple{2}}, "s": NewSet("x"), "l": []any{Tuple{}}}
	if _, err := c.Serialize(in); err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if !reflect.DeepEqual(in, want) {
		t.Errorf("Serialize mutated its input:\n\tgot:  %#v\n\twant: %#v", in, want)
	}
}

func TestSerializePlainTreeIdempotent(t *testing.T) {
	c := New()
	trees := []any{
		map[string]any{"a": []any{1, 2.5, "x", nil, true}, "b": map[string]any{}},
		[]any{map[string]any{"k": "v"}, []any{}},
		"plain",
	}
	for _, tree := range trees {
		if !IsTree(tree) {
			t.Errorf("IsTree(%v) = false, want true", tree)
		}
		got, err := c.Serialize(tree)
		if err != nil {
			t.Fatalf("Serialize error: %v", err)
		}
		if !reflect.DeepEqual(got, tree) {
			t.Errorf("Serialize(%v) = %v, want deep-equal input", tree, got)
		}
	}
	if IsTree(Tuple{1}) {
		t.Errorf("IsTree(Tuple{1}) = true, want false")
	}
}

func TestSerializeRecordFieldOrder(t *testing.T) {
	c := newTestCodec(t)
	got, err := c.Serialize(testProject{Title: "t", Secret: "hidden", internal: 7})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	data := got.(map[string]any)[DataKey].(map[string]any)
	if _, ok := data["Secret"]; ok {
		t.Errorf("field tagged with \"-\" was serialized")
	}
	if _, ok := data["internal"]; ok {
		t.Errorf("unexported field was serialized")
	}
	if got := got.(map[string]any)[ClassKey]; got != "github.com/go-json-experiment/typedjson.testProject" {
		t.Errorf("class = %v, want qualified name", got)
	}
}

func TestGuardPrecedence(t *testing.T) {
	meta := &hostMetadata{Shape: []int{4}}
	raw := json.RawMessage(`{"__type__":"tuple"}`)
	g := NewGuard([]Identity{IdentityOf(reflect.TypeOf(hostMetadata{}))})
	c := New(WithGuard(g))

	got, err := c.Serialize(meta)
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if got, ok := got.(*hostMetadata); !ok || got != meta {
		t.Errorf("Serialize(foreign) = %v, want the identical pointer", got)
	}

	got, err = c.Serialize(map[string]any{"meta": *meta, "raw": raw})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	m := got.(map[string]any)
	if _, ok := m["meta"].(hostMetadata); !ok {
		t.Errorf("nested foreign value = %T, want hostMetadata", m["meta"])
	}
	if _, ok := m["raw"].(map[string]any); !ok {
		t.Errorf("raw message without default guard = %T, want envelope", m["raw"])
	}

	got, err = New().Serialize(raw)
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if got, ok := got.(json.RawMessage); !ok || string(got) != string(raw) {
		t.Errorf("Serialize(json.RawMessage) = %#v, want it unmodified", got)
	}
}

func TestGuardExactIdentity(t *testing.T) {
	g := NewGuard([]Identity{{Package: "example.com/host", Name: "hostMetadata"}})
	if g.Match(hostMetadata{}) {
		t.Errorf("guard matched a type sharing only the name of a foreign type")
	}

	g = NewGuard(nil, PrefixRule{Package: "github.com/go-json-experiment/", Names: []string{"hostMetadata"}})
	if !g.Match(&hostMetadata{}) {
		t.Errorf("prefix rule did not match")
	}
	if g.Match(testPerson{}) {
		t.Errorf("prefix rule matched a type not in its names")
	}
	if g.Match([]int{1}) || g.Match(nil) || (*Guard)(nil).Match(1) {
		t.Errorf("guard matched an unnamed type")
	}
}

// upperTuple encodes tuples with a marker distinguishing it from the built-in.
var upperTuple = NewHandler("tuple",
	func(t Tuple) (any, error) { return append([]any{"custom"}, t...), nil },
	func(data any, decode DecodeFunc) (Tuple, error) {
		xs, ok := data.([]any)
		if !ok || len(xs) == 0 || xs[0] != "custom" {
			return nil, errors.New("not a custom tuple")
		}
		v, err := decode(xs[1:])
		if err != nil {
			return nil, err
		}
		return Tuple(v.([]any)), nil
	})

func TestRegisterPriority(t *testing.T) {
	c := New()
	c.Registry().Register(upperTuple, High)
	got, err := c.Serialize(Tuple{1, 2})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	want := map[string]any{"__type__": "tuple", "__data__": []any{"custom", 1, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Serialize:\n\tgot:  %v\n\twant: %v", got, want)
	}
	if kinds := c.Registry().Kinds(); kinds[0] != "tuple" || len(kinds) != 10 {
		t.Errorf("Kinds = %v, want custom tuple first", kinds)
	}

	c = New()
	c.Registry().Register(upperTuple, Normal)
	got, err = c.Serialize(Tuple{1, 2})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	want = map[string]any{"__type__": "tuple", "__data__": []any{1, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Serialize with normal priority:\n\tgot:  %v\n\twant: %v", got, want)
	}
}

type failingHandler struct{ panics bool }

func (failingHandler) Kind() string { return "failing" }

func (failingHandler) CanEncode(v any) bool {
	_, ok := v.(Tuple)
	return ok
}

func (h failingHandler) Encode(any) (any, error) {
	if h.panics {
		panic("broken handler")
	}
	return nil, errors.New("broken handler")
}

func (failingHandler) CanDecode(map[string]any) bool                    { return false }
func (failingHandler) Decode(map[string]any, DecodeFunc) (any, error) { return nil, nil }

func TestSerializeFailingHandler(t *testing.T) {
	for _, h := range []Handler{failingHandler{}, failingHandler{panics: true}} {
		c := New()
		c.Registry().Register(h, High)
		got, err := c.Serialize(Tuple{7})
		if err != nil {
			t.Fatalf("Serialize error: %v", err)
		}
		want := map[string]any{"__type__": "tuple", "__data__": []any{7}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Serialize:\n\tgot:  %v\n\twant: %v", got, want)
		}
	}

	// With no other handler, the failing one falls back to sequence handling.
	c := New(WithRegistry(NewRegistry(failingHandler{})))
	got, err := c.Serialize(Tuple{7})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if want := []any{7}; !reflect.DeepEqual(got, want) {
		t.Errorf("Serialize:\n\tgot:  %v\n\twant: %v", got, want)
	}
}

func TestSerializeCycle(t *testing.T) {
	type node struct {
		Next *node
	}
	n := &node{}
	n.Next = n
	m := map[string]any{}
	m["self"] = m
	s := []any{nil}
	s[0] = s

	for _, v := range []any{n, m, s} {
		_, err := New().Serialize(v)
		var se *SemanticError
		if !errors.As(err, &se) || !errors.Is(err, errCycle) {
			t.Errorf("Serialize(%T) error = %v, want cycle error", v, err)
		}
		if !errors.Is(err, Error) {
			t.Errorf("cycle error does not match Error")
		}
	}
}

func TestSerializeMaxDepth(t *testing.T) {
	var v any = "leaf"
	for i := 0; i < 20; i++ {
		v = []any{v}
	}
	if _, err := New(MaxDepth(10)).Serialize(v); !errors.Is(err, errTooDeep) {
		t.Errorf("Serialize error = %v, want depth error", err)
	}
	if _, err := New(MaxDepth(30)).Serialize(v); err != nil {
		t.Errorf("Serialize error = %v, want nil", err)
	}
}

func TestExplain(t *testing.T) {
	c := newTestCodec(t)
	tests := []struct {
		in   any
		step Step
		kind string
	}{
		{nil, StepPrimitive, ""},
		{42, StepPrimitive, ""},
		{Tuple{1}, StepHandler, "tuple"},
		{&testPerson{}, StepHandler, "dataclass"},
		{statusInactive, StepHandler, "enum"},
		{map[string]int{}, StepMap, ""},
		{[]string{}, StepSequence, ""},
		{time.Second, StepScalar, ""},
		{json.RawMessage(`1`), StepForeign, ""},
		{func() {}, StepText, ""},
	}
	for _, tt := range tests {
		tr := c.Explain(tt.in)
		if tr.Step != tt.step || tr.Kind != tt.kind {
			t.Errorf("Explain(%T) = %v, want step %v kind %q", tt.in, tr, tt.step, tt.kind)
		}
		if tr.Err != nil {
			t.Errorf("Explain(%T) error: %v", tt.in, tr.Err)
		}
	}

	c.Registry().Register(failingHandler{}, High)
	tr := c.Explain(Tuple{})
	if tr.Index != 1 || !reflect.DeepEqual(tr.Skipped, []string{"failing"}) {
		t.Errorf("Explain = %v, want tuple at index 1 after skipping failing", tr)
	}
	if !strings.Contains(tr.String(), `skipped ["failing"]`) {
		t.Errorf("Trace.String() = %q, want skipped handlers", tr.String())
	}
}

func TestSupportedKinds(t *testing.T) {
	got := SupportedKinds()
	want := []string{
		"tuple", "datetime.datetime", "datetime.date", "datetime.time",
		"enum", "uuid", "complex", "bytes", "decimal", "dataclass", "set",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedKinds:\n\tgot:  %v\n\twant: %v", got, want)
	}
}

func TestRenderTextPanics(t *testing.T) {
	got := renderText(panicStringer{})
	if want := "<unserializable: typedjson.panicStringer>"; got != want {
		t.Errorf("renderText = %q, want %q", got, want)
	}
	if got := fmt.Sprint(renderText(struct{ x int }{1})); got != "{1}" {
		t.Errorf("renderText = %q, want {1}", got)
	}
}

type panicStringer struct{}

func (panicStringer) String() string { panic("no text") }
