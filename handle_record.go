// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
)

// RecordHandler encodes a struct value as its class name and fields:
//
//	{"__type__": "dataclass", "__class__": "mypkg.Release", "__data__": {"name": "demo", ...}}
//
// A struct is recognized if its type is registered as a record class
// or if it has at least one exported field. Fields are named by
// their json tag if present, otherwise by their Go name,
// and a field tagged with "-" is omitted.
// An embedded field of an unexported struct type must be tagged "-",
// otherwise the handler declines the value.
// The class of an unregistered type is its QualifiedName.
//
// Decoding requires the class to be registered.
// Each field value is assigned directly if its type permits,
// converted if it is a number, or otherwise decoded weakly
// (e.g., a []any into a []string, or a map with string keys
// into a map[int]string). A nested record envelope whose
// class is not registered is decoded into the declared field type.
// An unresolvable class or an unassignable field decodes as a plain map.
type RecordHandler struct {
	Types *Types

	// Strict specifies that the stored fields must exactly match
	// the fields of the resolved type.
	// Otherwise, unknown fields are dropped and missing fields are zero.
	Strict bool

	// Logger, if non-nil, reports dropped fields.
	Logger *zap.Logger
}

func (RecordHandler) Kind() string { return "dataclass" }

func (h RecordHandler) CanEncode(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Struct {
		return false
	}
	if _, ok := h.Types.NameOf(t); ok {
		return true
	}
	l := layoutOf(t)
	return len(l.fields) > 0 || l.err != nil
}

func (h RecordHandler) Encode(v any) (any, error) {
	rv := reflect.ValueOf(v)
	l := layoutOf(rv.Type())
	if l.err != nil {
		return nil, l.err
	}
	fields := l.fields
	data := make(map[string]any, len(fields))
	for _, f := range fields {
		data[f.name] = rv.Field(f.index).Interface()
	}
	class, ok := h.Types.NameOf(rv.Type())
	if !ok {
		class = QualifiedName(rv.Type())
	}
	env := NewEnvelope(h.Kind(), data)
	env[ClassKey] = class
	return env, nil
}

func (h RecordHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind(), ClassKey)
}

func (h RecordHandler) Decode(m map[string]any, decode DecodeFunc) (any, error) {
	class, _ := m[ClassKey].(string)
	t, ok := h.Types.Lookup(class)
	if !ok || t.Kind() != reflect.Struct {
		return nil, unresolved(h.Kind(), class, errors.New("unknown record class"))
	}
	data, ok := m[DataKey].(map[string]any)
	if !ok {
		return nil, unresolved(h.Kind(), class, fmt.Errorf("payload is %T, want object", m[DataKey]))
	}
	values := make(map[string]any, len(data))
	for k, x := range data {
		v, err := decode(x)
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	rv := reflect.New(t).Elem()
	if err := h.fill(rv, values); err != nil {
		return nil, unresolved(h.Kind(), class, err)
	}
	return rv.Interface(), nil
}

// fill assigns decoded field values to the struct dst.
func (h RecordHandler) fill(dst reflect.Value, values map[string]any) error {
	l := layoutOf(dst.Type())
	if l.err != nil {
		return l.err
	}
	fields := l.fields
	if h.Strict {
		for _, f := range fields {
			if _, ok := values[f.name]; !ok {
				return fmt.Errorf("missing field %q", f.name)
			}
		}
	}
	for k, v := range values {
		f, ok := fieldByName(fields, k)
		if !ok {
			if h.Strict {
				return fmt.Errorf("unknown field %q", k)
			}
			if h.Logger != nil {
				h.Logger.Debug("dropping unknown record field",
					zap.String("type", dst.Type().String()),
					zap.String("field", k))
			}
			continue
		}
		if err := h.assign(dst.Field(f.index), v); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	return nil
}

// assign stores the decoded value v into dst.
func (h RecordHandler) assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	sv := reflect.ValueOf(v)
	switch {
	case sv.Type().AssignableTo(dst.Type()):
		dst.Set(sv)
		return nil
	case dst.Kind() == reflect.Pointer && sv.Type().AssignableTo(dst.Type().Elem()):
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(sv)
		dst.Set(p)
		return nil
	}
	if m, ok := v.(map[string]any); ok && IsEnvelope(m, h.Kind(), ClassKey) {
		if data, ok := m[DataKey].(map[string]any); ok {
			switch {
			case dst.Kind() == reflect.Struct:
				return h.fill(dst, data)
			case dst.Kind() == reflect.Pointer && dst.Type().Elem().Kind() == reflect.Struct:
				p := reflect.New(dst.Type().Elem())
				if err := h.fill(p.Elem(), data); err != nil {
					return err
				}
				dst.Set(p)
				return nil
			}
		}
	}
	if ok, err := setScalar(dst, v); ok || err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     dst.Addr().Interface(),
		TagName:    "json",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			parseStringHook,
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(v)
}

// setScalar stores the number, string, or boolean v into a dst
// of the same category. It reports false if either is not a scalar.
func setScalar(dst reflect.Value, v any) (bool, error) {
	sk := reflect.ValueOf(v).Kind()
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !isNumberKind(sk) {
			return false, nil
		}
		n, ok := asInt64(v)
		if !ok || dst.OverflowInt(n) {
			return true, fmt.Errorf("cannot represent %v as %v", v, dst.Type())
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if !isNumberKind(sk) {
			return false, nil
		}
		var u uint64
		if n, ok := asInt64(v); ok && n >= 0 {
			u = uint64(n)
		} else if n, ok := v.(uint64); ok {
			u = n
		} else {
			return true, fmt.Errorf("cannot represent %v as %v", v, dst.Type())
		}
		if dst.OverflowUint(u) {
			return true, fmt.Errorf("cannot represent %v as %v", v, dst.Type())
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		if !isNumberKind(sk) {
			return false, nil
		}
		f, _ := asFloat64(v)
		dst.SetFloat(f)
	case reflect.String:
		if sk != reflect.String {
			return false, nil
		}
		dst.SetString(reflect.ValueOf(v).String())
	case reflect.Bool:
		if sk != reflect.Bool {
			return false, nil
		}
		dst.SetBool(reflect.ValueOf(v).Bool())
	default:
		return false, nil
	}
	return true, nil
}

// parseStringHook parses a string into a boolean or numeric type,
// which restores map keys that Serialize converted to strings.
// Text that does not parse is passed through unmodified.
func parseStringHook(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || from.Kind() != reflect.String {
		return data, nil
	}
	var v any
	var err error
	switch to.Kind() {
	case reflect.Bool:
		v, err = strconv.ParseBool(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err = strconv.ParseInt(s, 10, to.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v, err = strconv.ParseUint(s, 10, to.Bits())
	case reflect.Float32, reflect.Float64:
		v, err = strconv.ParseFloat(s, to.Bits())
	default:
		return data, nil
	}
	if err != nil {
		return data, nil
	}
	return v, nil
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

type recordField struct {
	name  string
	index int
}

type recordLayout struct {
	fields []recordField
	err    error
}

var recordLayoutCache sync.Map // map[reflect.Type]*recordLayout

// layoutOf returns the fields of the struct type t and reports an error
// if t cannot be encoded without losing fields.
func layoutOf(t reflect.Type) *recordLayout {
	if l, ok := recordLayoutCache.Load(t); ok {
		return l.(*recordLayout)
	}
	l := new(recordLayout)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, hasTag := sf.Tag.Lookup("json")
		if tag == "-" {
			continue
		}
		if !sf.IsExported() {
			// Promoted fields of an embedded struct of unexported type
			// are not reachable by name and would be dropped.
			if sf.Anonymous && l.err == nil && indirectKind(sf.Type) == reflect.Struct {
				l.err = fmt.Errorf("embedded field %s of an unexported type must be explicitly ignored", sf.Name)
			}
			continue
		}
		name := sf.Name
		if hasTag {
			if s, _, _ := strings.Cut(tag, ","); s != "" {
				name = s
			}
		}
		l.fields = append(l.fields, recordField{name: name, index: i})
	}
	l2, _ := recordLayoutCache.LoadOrStore(t, l)
	return l2.(*recordLayout)
}

func indirectKind(t reflect.Type) reflect.Kind {
	if t.Kind() == reflect.Pointer {
		return t.Elem().Kind()
	}
	return t.Kind()
}

func fieldByName(fs []recordField, name string) (recordField, bool) {
	for _, f := range fs {
		if f.name == name {
			return f, true
		}
	}
	return recordField{}, false
}
