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

package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/typeinfo"
)

func TestDefaultConfigValues(t *testing.T) {
	got := config.DefaultConfig()

	if got.MaxTypes != config.DefaultMaxTypes {
		t.Fatalf("MaxTypes = %d, want %d", got.MaxTypes, config.DefaultMaxTypes)
	}
	if got.MaxAnnotations != config.DefaultMaxAnnotations {
		t.Fatalf("MaxAnnotations = %d, want %d", got.MaxAnnotations, config.DefaultMaxAnnotations)
	}
	if !got.AutoRegisterComponents || !got.PairVectorTypes || got.Strict {
		t.Fatalf("unexpected flags: %+v", got)
	}
	if got.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q", got.LogLevel)
	}
}

func TestNewConfig_NoOptions_EqualsDefault(t *testing.T) {
	def := config.DefaultConfig()
	got := config.NewConfig()
	if !reflect.DeepEqual(got, def) {
		t.Fatalf("NewConfig() = %+v, want default %+v", got, def)
	}
}

func TestOptionsOrder_LastWins(t *testing.T) {
	c := config.NewConfig(
		config.WithStrict(false),
		config.WithStrict(true),
		config.WithMaxTypes(10),
		config.WithMaxTypes(100),
		config.WithPairVectorTypes(true),
		config.WithPairVectorTypes(false),
		config.WithAutoRegisterComponents(false),
		config.WithLogLevel("debug"),
		config.WithMaxAnnotations(1),
	)
	if !c.Strict || c.MaxTypes != 100 || c.PairVectorTypes || c.AutoRegisterComponents {
		t.Fatalf("last option must win: %+v", c)
	}
	if c.LogLevel != "debug" || c.MaxAnnotations != 1 {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestNormalize_Guardrails(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, config.DefaultMaxTypes},
		{-5, config.DefaultMaxTypes},
		{typeinfo.MaxHandles + 1, typeinfo.MaxHandles},
		{64, 64},
	}
	for _, tc := range cases {
		if got := config.NewConfig(config.WithMaxTypes(tc.in)).MaxTypes; got != tc.want {
			t.Fatalf("MaxTypes(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := config.NewConfig(config.WithMaxAnnotations(-1)).MaxAnnotations; got != config.DefaultMaxAnnotations {
		t.Fatalf("MaxAnnotations(-1) = %d", got)
	}
	if got := config.NewConfig(config.WithMaxAnnotations(0)).MaxAnnotations; got != 0 {
		t.Fatalf("MaxAnnotations(0) = %d, zero is allowed", got)
	}
}

func TestWithRename_DoesNotShareMaps(t *testing.T) {
	opt := config.WithRename("a.B", "B")
	c1 := config.NewConfig(opt)
	c2 := config.NewConfig(opt, config.WithRename("a.C", "C"))
	if len(c1.Renames) != 1 || len(c2.Renames) != 2 {
		t.Fatalf("renames leaked between configs: %v %v", c1.Renames, c2.Renames)
	}
}

func TestDecode_TOMLOverlay(t *testing.T) {
	src := `
max_types = 128
strict = true
log_level = " debug "

[renames]
"example.com/shop/model.Item" = "Item"
`
	c, err := config.Decode(strings.NewReader(src), config.TOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.MaxTypes != 128 || !c.Strict || c.LogLevel != "debug" {
		t.Fatalf("overlay not applied: %+v", c)
	}
	if !c.PairVectorTypes || !c.AutoRegisterComponents || c.MaxAnnotations != config.DefaultMaxAnnotations {
		t.Fatalf("absent keys must keep defaults: %+v", c)
	}
	if c.Renames["example.com/shop/model.Item"] != "Item" {
		t.Fatalf("renames = %v", c.Renames)
	}
}

func TestDecode_TOMLUnknownKey(t *testing.T) {
	if _, err := config.Decode(strings.NewReader("max_typez = 1\n"), config.TOML); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestDecode_YAMLOverlay(t *testing.T) {
	src := "pair_vector_types: false\nmax_annotations: 2\n"
	c, err := config.Decode(strings.NewReader(src), config.YAML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.PairVectorTypes || c.MaxAnnotations != 2 {
		t.Fatalf("overlay not applied: %+v", c)
	}
	if c.MaxTypes != config.DefaultMaxTypes || !c.AutoRegisterComponents {
		t.Fatalf("absent keys must keep defaults: %+v", c)
	}

	empty, err := config.Decode(strings.NewReader(""), config.YAML)
	if err != nil {
		t.Fatalf("empty yaml: %v", err)
	}
	if !reflect.DeepEqual(empty, config.DefaultConfig()) {
		t.Fatalf("empty yaml = %+v", empty)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rtti.yml")
	if err := os.WriteFile(path, []byte("strict: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !c.Strict {
		t.Fatalf("strict not loaded: %+v", c)
	}

	if _, err := config.LoadFile(filepath.Join(dir, "rtti.ini")); err == nil {
		t.Fatal("expected an error for an unknown extension")
	}
	if _, err := config.LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
