// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-json-experiment/typedjson"
)

const yamlConfig = `
transport: cbor
strict_record_fields: true
max_depth: 50
log_level: debug
guard:
  defaults: false
  identities:
    - package: example.com/host/metadata
      name: ArrayMetadata
  prefixes:
    - package: example.com/host/internal/
      names: [Buffer]
`

const jsoncConfig = `{
	// Indented JSON output.
	"indent": "  ",
	"guard": {
		"identities": [
			{"package": "example.com/host/metadata", "name": "ArrayMetadata"},
		],
	},
}`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "codec.yaml", yamlConfig))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Transport:          "cbor",
		StrictRecordFields: true,
		MaxDepth:           50,
		LogLevel:           "debug",
		Guard: Guard{
			Identities: []typedjson.Identity{{Package: "example.com/host/metadata", Name: "ArrayMetadata"}},
			Prefixes:   []typedjson.PrefixRule{{Package: "example.com/host/internal/", Names: []string{"Buffer"}}},
		},
	}, cfg)

	f, err := cfg.Format()
	require.NoError(t, err)
	assert.Equal(t, "cbor", f.Name())
}

func TestLoadJSONC(t *testing.T) {
	cfg, err := Load(writeFile(t, "codec.jsonc", jsoncConfig))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Transport)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "  ", cfg.Indent)
	assert.True(t, cfg.Guard.Defaults)
	require.Len(t, cfg.Guard.Identities, 1)

	g := cfg.BuildGuard()
	assert.True(t, g.Match(json.RawMessage(`{}`)), "default identities are kept")
	assert.False(t, g.Match("plain string"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestParseInvalid(t *testing.T) {
	data := []byte(`
transport: xml
max_depth: -1
log_level: loud
guard:
  identities:
    - package: ""
      name: Thing
  prefixes:
    - names: [Buffer]
`)
	_, err := Parse(data, "yaml")
	require.Error(t, err)
	for _, want := range []string{
		`unknown format "xml"`,
		"max_depth must not be negative",
		"loud",
		"guard identity 0",
		"guard prefix 0",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNewCodec(t *testing.T) {
	cfg, err := Parse([]byte(`{"indent": "\t", /* tabs */ "log_level": "warn"}`), "jsonc")
	require.NoError(t, err)
	c, err := cfg.NewCodec()
	require.NoError(t, err)

	b, err := c.Marshal(map[string]any{"version": typedjson.Tuple{3, 0, 0}})
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n\t\"version\"")

	v, err := c.Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"version": typedjson.Tuple{3, 0, 0}}, v)
}
