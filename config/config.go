/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package config builds apis.Config values from defaults, functional
// options and configuration files.
package config

import (
	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/typeinfo"
)

const (
	// DefaultMaxTypes is the default capacity of the handle table.
	DefaultMaxTypes = 4096
	// DefaultMaxAnnotations is the default number of annotation slots per type.
	DefaultMaxAnnotations = 4
	// DefaultStrict keeps programming errors recoverable.
	DefaultStrict = false
	// DefaultAutoRegisterComponents registers component types automatically.
	DefaultAutoRegisterComponents = true
	// DefaultPairVectorTypes registers []T alongside T.
	DefaultPairVectorTypes = true
	// DefaultLogLevel is the default diagnostics level.
	DefaultLogLevel = "warn"
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Normalize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		MaxTypes:               DefaultMaxTypes,
		MaxAnnotations:         DefaultMaxAnnotations,
		Strict:                 DefaultStrict,
		AutoRegisterComponents: DefaultAutoRegisterComponents,
		PairVectorTypes:        DefaultPairVectorTypes,
		LogLevel:               DefaultLogLevel,
	}
}

// Normalize replaces out-of-range values: a non-positive MaxTypes becomes
// the default and anything above typeinfo.MaxHandles is clamped; a negative
// MaxAnnotations becomes the default.
func Normalize(cfg apis.Config) apis.Config {
	switch {
	case cfg.MaxTypes <= 0:
		cfg.MaxTypes = DefaultMaxTypes
	case cfg.MaxTypes > typeinfo.MaxHandles:
		cfg.MaxTypes = typeinfo.MaxHandles
	}
	if cfg.MaxAnnotations < 0 {
		cfg.MaxAnnotations = DefaultMaxAnnotations
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithMaxTypes sets the capacity of the handle table.
func WithMaxTypes(n int) Option {
	return func(c *apis.Config) {
		c.MaxTypes = n
	}
}

// WithMaxAnnotations sets the number of annotation slots per type.
func WithMaxAnnotations(n int) Option {
	return func(c *apis.Config) {
		c.MaxAnnotations = n
	}
}

// WithStrict turns programming errors into panics.
func WithStrict(strict bool) Option {
	return func(c *apis.Config) {
		c.Strict = strict
	}
}

// WithAutoRegisterComponents sets the AutoRegisterComponents option.
func WithAutoRegisterComponents(on bool) Option {
	return func(c *apis.Config) {
		c.AutoRegisterComponents = on
	}
}

// WithPairVectorTypes sets the PairVectorTypes option.
func WithPairVectorTypes(on bool) Option {
	return func(c *apis.Config) {
		c.PairVectorTypes = on
	}
}

// WithLogLevel sets the diagnostics level.
func WithLogLevel(level string) Option {
	return func(c *apis.Config) {
		c.LogLevel = level
	}
}

// WithRename adds a rename table entry. The map is copied on first use so
// configs built from the same options never share it.
func WithRename(from, to string) Option {
	return func(c *apis.Config) {
		m := make(map[string]string, len(c.Renames)+1)
		for k, v := range c.Renames {
			m[k] = v
		}
		m[from] = to
		c.Renames = m
	}
}
