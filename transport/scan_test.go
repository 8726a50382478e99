// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanKinds(t *testing.T) {
	text := `{
		"version": {"__type__": "tuple", "__data__": [3, 0, 0]},
		"status": {"__type__": "enum", "__class__": "mypkg.Status", "__data__": "active"},
		"items": [
			{"__type__": "tuple", "__data__": [{"__type__": "uuid", "__data__": "f47ac10b-58cc-4372-a567-0e02b2c3d479"}]},
			{"__type__": "tuple"},
			{"__type__": 5, "__data__": 1}
		]
	}`
	c, err := ScanKinds([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"tuple": 2, "enum": 1, "uuid": 1}, c.Kinds)
	assert.Equal(t, map[string]int{"mypkg.Status": 1}, c.Classes)
	assert.Equal(t, 4, c.Total())
}

func TestScanKindsInvalid(t *testing.T) {
	_, err := ScanKinds([]byte(`{"__type__":`))
	assert.Error(t, err)
}
