// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Subtypes of the "datetime" kind.
const (
	SubtypeDateTime = "datetime"
	SubtypeDate     = "date"
	SubtypeTime     = "time"
)

// TimeHandler encodes calendar and clock values as ISO 8601 text:
//
//	time.Time      => {"__type__": "datetime", "__subtype__": "datetime", "__data__": "2025-01-19T12:00:00Z"}
//	civil.DateTime => {"__type__": "datetime", "__subtype__": "datetime", "__data__": "2025-01-19T12:00:00"}
//	civil.Date     => {"__type__": "datetime", "__subtype__": "date", "__data__": "2025-01-19"}
//	civil.Time     => {"__type__": "datetime", "__subtype__": "time", "__data__": "12:00:00"}
//
// A date-time with a UTC offset decodes as a time.Time,
// while one without decodes as a civil.DateTime.
// An unknown subtype or malformed text is reported as ErrInvalidPayload.
type TimeHandler struct{}

func (TimeHandler) Kind() string { return "datetime" }

// Subtypes returns the concrete subtypes of the kind.
func (TimeHandler) Subtypes() []string {
	return []string{SubtypeDateTime, SubtypeDate, SubtypeTime}
}

func (TimeHandler) CanEncode(v any) bool {
	switch v.(type) {
	case time.Time, civil.DateTime, civil.Date, civil.Time:
		return true
	}
	return false
}

func (h TimeHandler) Encode(v any) (any, error) {
	var sub, text string
	switch v := v.(type) {
	case time.Time:
		sub, text = SubtypeDateTime, v.Format(time.RFC3339Nano)
	case civil.DateTime:
		sub, text = SubtypeDateTime, v.String()
	case civil.Date:
		sub, text = SubtypeDate, v.String()
	case civil.Time:
		sub, text = SubtypeTime, v.String()
	default:
		return nil, SkipHandler
	}
	m := NewEnvelope(h.Kind(), text)
	m[SubtypeKey] = sub
	return m, nil
}

func (h TimeHandler) CanDecode(m map[string]any) bool {
	return IsEnvelope(m, h.Kind(), SubtypeKey)
}

func (h TimeHandler) Decode(m map[string]any, _ DecodeFunc) (any, error) {
	text, ok := m[DataKey].(string)
	if !ok {
		return nil, invalidPayload(h.Kind(), errNotString)
	}
	switch sub, _ := m[SubtypeKey].(string); sub {
	case SubtypeDateTime:
		if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
			return t, nil
		}
		dt, err := civil.ParseDateTime(text)
		if err != nil {
			return nil, invalidPayload(h.Kind(), err)
		}
		return dt, nil
	case SubtypeDate:
		d, err := civil.ParseDate(text)
		if err != nil {
			return nil, invalidPayload(h.Kind(), err)
		}
		return d, nil
	case SubtypeTime:
		t, err := civil.ParseTime(text)
		if err != nil {
			return nil, invalidPayload(h.Kind(), err)
		}
		return t, nil
	default:
		return nil, invalidPayload(h.Kind(), fmt.Errorf("unknown subtype %q", sub))
	}
}
