// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"errors"
	"reflect"
	"strconv"
)

const errorPrefix = "typedjson: "

// Error matches errors returned by this package according to errors.Is.
const Error = typedError("typedjson error")

type typedError string

func (e typedError) Error() string        { return string(e) }
func (e typedError) Is(target error) bool { return e == target || target == Error }

// SkipHandler may be returned by [Handler.Encode] to signal that
// the handler declines the value and that the next handler be used.
// Any other encode error has the same effect, but is also logged.
const SkipHandler = typedError("skip handler")

// ErrInvalidPayload is matched by decode errors for which there is
// no safe fallback, such as an unknown calendar subtype or a
// non-numeric complex component. Such errors are reported to the caller
// of [Codec.Deserialize]. All other decode errors are recovered
// by decoding the envelope as a plain map.
const ErrInvalidPayload = typedError(errorPrefix + "invalid envelope payload")

// DecodeError describes a failure to reconstruct a value from an envelope.
//
// The contents of this error as produced by this package may change over time.
type DecodeError struct {
	// Kind is the envelope kind (e.g., "enum").
	Kind string
	// Class is the value of the class member, if any.
	Class string
	// Err is the underlying error.
	Err error
}

func (e *DecodeError) Error() string {
	s := errorPrefix + "cannot decode " + e.Kind + " envelope"
	if e.Class != "" {
		s += " of class " + strconv.Quote(e.Class)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return e == target || target == Error }

// Fatal reports whether the error has no safe fallback.
func (e *DecodeError) Fatal() bool { return errors.Is(e.Err, ErrInvalidPayload) }

// invalidPayload reports a fatal decode error.
func invalidPayload(kind string, err error) error {
	return &DecodeError{Kind: kind, Err: &wrapError{str: ErrInvalidPayload.Error()[len(errorPrefix):], err: err, is: ErrInvalidPayload}}
}

// unresolved reports a recoverable decode error.
func unresolved(kind, class string, err error) error {
	return &DecodeError{Kind: kind, Class: class, Err: err}
}

type wrapError struct {
	str string
	err error
	is  error
}

func (e *wrapError) Error() string { return e.str + ": " + e.err.Error() }
func (e *wrapError) Unwrap() error { return e.err }
func (e *wrapError) Is(target error) bool {
	return e == target || target == Error || (e.is != nil && target == e.is)
}

// SemanticError describes a Go value that cannot be serialized
// or a tree that cannot be deserialized as a whole, such as
// a cyclic value or one nested beyond the configured depth.
//
// The contents of this error as produced by this package may change over time.
type SemanticError struct {
	action string // either "serialize" or "deserialize"

	// GoType is the Go type that could not be handled.
	GoType reflect.Type // may be nil if unknown
	// Err is the underlying error.
	Err error // may be nil
}

func (e *SemanticError) Error() string {
	s := errorPrefix + "cannot"
	if e.action != "" {
		s += " " + e.action
	} else {
		s += " handle"
	}
	if e.GoType != nil {
		s += " Go value of type " + e.GoType.String()
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *SemanticError) Unwrap() error        { return e.Err }
func (e *SemanticError) Is(target error) bool { return e == target || target == Error }

var (
	errCycle     = errors.New("encountered a cycle")
	errTooDeep   = errors.New("exceeded max depth")
	errNotString = errors.New("payload is not a string")
)
