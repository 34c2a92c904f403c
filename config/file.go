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

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"dirpx.dev/rtti/apis"
)

// Format names a configuration file syntax.
type Format string

const (
	// TOML selects github.com/BurntSushi/toml.
	TOML Format = "toml"
	// YAML selects gopkg.in/yaml.v3.
	YAML Format = "yaml"
)

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("rtti(config): unknown config format %q", filepath.Ext(path))
	}
}

// fileConfig mirrors apis.Config for decoding. Keys absent from the file
// keep their defaults.
type fileConfig struct {
	MaxTypes               int               `toml:"max_types" yaml:"max_types"`
	MaxAnnotations         int               `toml:"max_annotations" yaml:"max_annotations"`
	Strict                 bool              `toml:"strict" yaml:"strict"`
	AutoRegisterComponents bool              `toml:"auto_register_components" yaml:"auto_register_components"`
	PairVectorTypes        bool              `toml:"pair_vector_types" yaml:"pair_vector_types"`
	LogLevel               string            `toml:"log_level" yaml:"log_level"`
	Renames                map[string]string `toml:"renames" yaml:"renames"`
}

// LoadFile reads a configuration file and overlays it on DefaultConfig.
func LoadFile(path string) (apis.Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return apis.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return apis.Config{}, fmt.Errorf("rtti(config): load %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data), format)
}

// Decode reads a configuration in the given format and overlays it on
// DefaultConfig.
func Decode(r io.Reader, format Format) (apis.Config, error) {
	switch format {
	case TOML:
		return decodeTOML(r)
	case YAML:
		return decodeYAML(r)
	default:
		return apis.Config{}, fmt.Errorf("rtti(config): unknown config format %q", format)
	}
}

func decodeTOML(r io.Reader) (apis.Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return apis.Config{}, fmt.Errorf("rtti(config): decode toml: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return apis.Config{}, fmt.Errorf("rtti(config): unknown keys %v", undecoded)
	}

	if meta.IsDefined("max_types") {
		cfg.MaxTypes = raw.MaxTypes
	}
	if meta.IsDefined("max_annotations") {
		cfg.MaxAnnotations = raw.MaxAnnotations
	}
	if meta.IsDefined("strict") {
		cfg.Strict = raw.Strict
	}
	if meta.IsDefined("auto_register_components") {
		cfg.AutoRegisterComponents = raw.AutoRegisterComponents
	}
	if meta.IsDefined("pair_vector_types") {
		cfg.PairVectorTypes = raw.PairVectorTypes
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("renames") {
		cfg.Renames = raw.Renames
	}
	return Normalize(cfg), nil
}

func decodeYAML(r io.Reader) (apis.Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return apis.Config{}, fmt.Errorf("rtti(config): decode yaml: %w", err)
	}
	cfg.LogLevel = strings.TrimSpace(cfg.LogLevel)
	return Normalize(cfg), nil
}
