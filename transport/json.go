// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// JSON returns a format rendering trees as JSON text.
// Object members are written in sorted order.
// Values in the tree that are not tree values
// are marshaled with the v2 "json" package.
func JSON(opts ...jsontext.Options) Format {
	return &jsonFormat{opts: opts}
}

type jsonFormat struct {
	opts []jsontext.Options
}

func (*jsonFormat) Name() string { return "json" }

func (f *jsonFormat) Marshal(tree any) ([]byte, error) {
	b := getBuffer()
	defer putBuffer(b)
	enc := jsontext.NewEncoder(b, f.opts...)
	if err := writeTree(enc, tree); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimSuffix(b.buf, []byte("\n"))), nil
}

func writeTree(enc *jsontext.Encoder, v any) error {
	switch v := v.(type) {
	case nil:
		return enc.WriteToken(jsontext.Null)
	case bool:
		return enc.WriteToken(jsontext.Bool(v))
	case string:
		return enc.WriteToken(jsontext.String(v))
	case int:
		return enc.WriteToken(jsontext.Int(int64(v)))
	case int8:
		return enc.WriteToken(jsontext.Int(int64(v)))
	case int16:
		return enc.WriteToken(jsontext.Int(int64(v)))
	case int32:
		return enc.WriteToken(jsontext.Int(int64(v)))
	case int64:
		return enc.WriteToken(jsontext.Int(v))
	case uint:
		return enc.WriteToken(jsontext.Uint(uint64(v)))
	case uint8:
		return enc.WriteToken(jsontext.Uint(uint64(v)))
	case uint16:
		return enc.WriteToken(jsontext.Uint(uint64(v)))
	case uint32:
		return enc.WriteToken(jsontext.Uint(uint64(v)))
	case uint64:
		return enc.WriteToken(jsontext.Uint(v))
	case uintptr:
		return enc.WriteToken(jsontext.Uint(uint64(v)))
	case float32:
		return writeFloat(enc, float64(v), 32)
	case float64:
		return writeFloat(enc, v, 64)
	case map[string]any:
		if err := enc.WriteToken(jsontext.ObjectStart); err != nil {
			return err
		}
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := enc.WriteToken(jsontext.String(name)); err != nil {
				return err
			}
			if err := writeTree(enc, v[name]); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.ObjectEnd)
	case []any:
		if err := enc.WriteToken(jsontext.ArrayStart); err != nil {
			return err
		}
		for _, x := range v {
			if err := writeTree(enc, x); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.ArrayEnd)
	default:
		return json.MarshalEncode(enc, v)
	}
}

// writeFloat writes f such that it is parsed back as a float,
// appending a fractional part to integral values.
func writeFloat(enc *jsontext.Encoder, f float64, bits int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf(errorPrefix+"cannot encode %v as a JSON number", f)
	}
	b := strconv.AppendFloat(make([]byte, 0, 32), f, 'g', -1, bits)
	if bytes.IndexAny(b, ".eE") < 0 {
		b = append(b, ".0"...)
	}
	return enc.WriteValue(jsontext.Value(b))
}

func (f *jsonFormat) Unmarshal(b []byte) (any, error) {
	r := getReader(b, f.opts...)
	defer putReader(r)
	v, err := r.readTree()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := r.dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errors.New(errorPrefix + "unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}

// reader parses a single tree from JSON text.
type reader struct {
	dec     *jsontext.Decoder
	names   stringCache
	scratch []byte
}

func (r *reader) readTree() (any, error) {
	switch k := r.dec.PeekKind(); k {
	case '{':
		if _, err := r.dec.ReadToken(); err != nil {
			return nil, err
		}
		obj := make(map[string]any)
		for r.dec.PeekKind() != '}' {
			name, err := r.readString()
			if err != nil {
				return nil, err
			}
			v, err := r.readTree()
			if err != nil {
				return nil, err
			}
			obj[name] = v
		}
		if _, err := r.dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		if _, err := r.dec.ReadToken(); err != nil {
			return nil, err
		}
		arr := []any{}
		for r.dec.PeekKind() != ']' {
			v, err := r.readTree()
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := r.dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	case '"':
		return r.readString()
	case '0':
		val, err := r.dec.ReadValue()
		if err != nil {
			return nil, err
		}
		return parseNumber(val)
	case 'n', 't', 'f':
		tok, err := r.dec.ReadToken()
		if err != nil {
			return nil, err
		}
		if k == 'n' {
			return nil, nil
		}
		return tok.Bool(), nil
	default:
		// Report the underlying syntax error or EOF.
		if _, err := r.dec.ReadToken(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf(errorPrefix+"unexpected JSON kind %v", k)
	}
}

// readString reads a JSON string, interning short strings
// since names and envelope kinds repeat throughout a tree.
func (r *reader) readString() (string, error) {
	val, err := r.dec.ReadValue()
	if err != nil {
		return "", err
	}
	if len(val) == 0 || val[0] != '"' {
		return "", fmt.Errorf(errorPrefix+"unexpected JSON value %s, want string", val)
	}
	r.scratch, err = jsontext.AppendUnquote(r.scratch[:0], val)
	if err != nil {
		return "", err
	}
	return r.names.make(r.scratch), nil
}

// parseNumber parses a JSON number as an integer if it has
// neither a fraction nor an exponent, otherwise as a float64.
func parseNumber(b []byte) (any, error) {
	s := string(b)
	if bytes.IndexAny(b, ".eE") < 0 {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return normalizeInt(n), nil
		}
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return normalizeUint(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf(errorPrefix+"invalid number %s: %w", b, err)
	}
	return f, nil
}
