// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package typedjson

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

type sampleColor string

const (
	sampleRed   sampleColor = "red"
	sampleGreen sampleColor = "green"
)

type sampleRecord struct {
	Name    string `json:"name"`
	Version Tuple  `json:"version"`
	Color   sampleColor
}

type sample struct {
	name  string
	value any
}

func compatibilitySamples() []sample {
	return []sample{
		{"tuple", Tuple{1, 2, 3}},
		{"nested_tuple", Tuple{1, Tuple{2, 3}, Tuple{}}},
		{"datetime", time.Date(2025, 1, 19, 12, 0, 0, 500, time.UTC)},
		{"naive_datetime", civil.DateTime{Date: civil.Date{Year: 2025, Month: time.January, Day: 19}, Time: civil.Time{Hour: 12}}},
		{"date", civil.Date{Year: 2025, Month: time.January, Day: 19}},
		{"time", civil.Time{Hour: 12, Minute: 30, Second: 15, Nanosecond: 250000000}},
		{"enum", sampleGreen},
		{"uuid", uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")},
		{"dataclass", sampleRecord{Name: "demo", Version: Tuple{1, 0}, Color: sampleRed}},
		{"complex", complex(3, 4)},
		{"bytes", []byte("hello world")},
		{"decimal", *apd.New(150, -2)},
		{"set", NewSet(1, 2, 3)},
		{"nested_dict", map[string]any{"outer": map[string]any{"inner": Tuple{1, "two"}}}},
		{"list_with_tuples", []any{Tuple{1, 2}, Tuple{3, 4}}},
	}
}
