// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the configuration of a typedjson.Codec
// from a YAML or JSONC file.
//
// Example YAML configuration:
//
//	transport: json
//	indent: "  "
//	strict_record_fields: false
//	max_depth: 10000
//	log_level: info
//	guard:
//	  defaults: true
//	  identities:
//	    - package: example.com/host/metadata
//	      name: ArrayMetadata
//	  prefixes:
//	    - package: example.com/host/internal/
//	      names: [Buffer, DType]
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-json-experiment/typedjson"
	"github.com/go-json-experiment/typedjson/transport"
)

// Config is the configuration of a codec.
type Config struct {
	// Transport is the name of the transport format, either "json" or "cbor".
	Transport string `koanf:"transport"`
	// Indent is the indentation of JSON text. Empty means compact.
	Indent string `koanf:"indent"`
	// StrictRecordFields requires stored record fields to exactly
	// match the fields of their type.
	StrictRecordFields bool `koanf:"strict_record_fields"`
	// MaxDepth is the nesting limit. Zero selects the default.
	MaxDepth int `koanf:"max_depth"`
	// LogLevel is the minimum level of logged messages.
	LogLevel string `koanf:"log_level"`
	// Guard lists the foreign types.
	Guard Guard `koanf:"guard"`
}

// Guard lists the foreign types.
type Guard struct {
	// Defaults includes the identities of typedjson.DefaultGuard.
	Defaults   bool                   `koanf:"defaults"`
	Identities []typedjson.Identity   `koanf:"identities"`
	Prefixes   []typedjson.PrefixRule `koanf:"prefixes"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Transport: "json",
		LogLevel:  "info",
		Guard:     Guard{Defaults: true},
	}
}

// Load reads the configuration file at path.
// Files ending in ".json" or ".jsonc" are parsed as JSON with comments,
// and all others as YAML. Unset keys keep their default value.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return unmarshal(k)
}

// Parse parses configuration data in the given format,
// which is either "yaml" or "jsonc".
func Parse(data []byte, format string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parserFor("."+format)); err != nil {
		return Config{}, fmt.Errorf("failed to load config data: %w", err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (Config, error) {
	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return jsoncParser{}
	default:
		return yaml.Parser()
	}
}

// jsoncParser parses JSON with comments and trailing commas.
type jsoncParser struct{}

func (jsoncParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(b), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (jsoncParser) Marshal(m map[string]any) ([]byte, error) {
	return json.Marshal(m)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs *multierror.Error
	if _, err := transport.ByName(c.Transport); err != nil {
		errs = multierror.Append(errs, err)
	}
	if c.Indent != "" && strings.Trim(c.Indent, " \t") != "" {
		errs = multierror.Append(errs, fmt.Errorf("indent %q must only contain spaces and tabs", c.Indent))
	}
	if c.MaxDepth < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = multierror.Append(errs, err)
	}
	for i, id := range c.Guard.Identities {
		if id.Package == "" || id.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("guard identity %d must have both a package and a name", i))
		}
	}
	for i, p := range c.Guard.Prefixes {
		if p.Package == "" {
			errs = multierror.Append(errs, fmt.Errorf("guard prefix %d must have a package", i))
		}
	}
	return errs.ErrorOrNil()
}

// BuildGuard returns the configured guard.
func (c Config) BuildGuard() *typedjson.Guard {
	ids := append([]typedjson.Identity(nil), c.Guard.Identities...)
	if c.Guard.Defaults {
		ids = append(ids, typedjson.DefaultGuard().Identities()...)
	}
	return typedjson.NewGuard(ids, c.Guard.Prefixes...)
}

// Format returns the configured transport format.
func (c Config) Format() (transport.Format, error) {
	if c.Transport == "json" || c.Transport == "" {
		var opts []jsontext.Options
		if c.Indent != "" {
			opts = append(opts, jsontext.WithIndent(c.Indent))
		}
		return transport.JSON(opts...), nil
	}
	return transport.ByName(c.Transport)
}

// Logger returns a production logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// Options returns the codec options of the configuration.
// The logger is not included; see Logger.
func (c Config) Options() ([]typedjson.Option, error) {
	f, err := c.Format()
	if err != nil {
		return nil, err
	}
	return []typedjson.Option{
		typedjson.WithFormat(f),
		typedjson.WithGuard(c.BuildGuard()),
		typedjson.StrictRecordFields(c.StrictRecordFields),
		typedjson.MaxDepth(c.MaxDepth),
	}, nil
}

// NewCodec returns a codec built from the configuration,
// followed by any additional options (e.g., typedjson.WithTypes).
func (c Config) NewCodec(opts ...typedjson.Option) (*typedjson.Codec, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	base, err := c.Options()
	if err != nil {
		return nil, err
	}
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}
	base = append(base, typedjson.WithLogger(logger))
	return typedjson.New(append(base, opts...)...), nil
}
