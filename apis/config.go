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

package apis

// Config carries the knobs of a type registry.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// MaxTypes is the capacity of the handle table. Registering more types
	// than this is fatal. It is clamped to typeinfo.MaxHandles.
	MaxTypes int `toml:"max_types" yaml:"max_types"`

	// MaxAnnotations is the number of annotation slots each type carries.
	MaxAnnotations int `toml:"max_annotations" yaml:"max_annotations"`

	// Strict turns programming errors (name conflicts, double annotations,
	// renaming a type twice) into panics. When false they are logged and
	// returned as errors.
	Strict bool `toml:"strict" yaml:"strict"`

	// AutoRegisterComponents registers field, element, key and underlying
	// types of every registered type, leaves first.
	AutoRegisterComponents bool `toml:"auto_register_components" yaml:"auto_register_components"`

	// PairVectorTypes registers []T alongside every non-vector type T.
	PairVectorTypes bool `toml:"pair_vector_types" yaml:"pair_vector_types"`

	// LogLevel is the diagnostics level: trace, debug, info, warn, error or disabled.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Renames pre-seeds the rename table: demangled Go type text mapped to
	// the name that replaces it inside composite names.
	Renames map[string]string `toml:"renames" yaml:"renames"`
}
