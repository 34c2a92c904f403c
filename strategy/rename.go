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

package strategy

import (
	"reflect"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/utils/names"
	uref "dirpx.dev/rtti/utils/reflect"
)

// TableFunc returns the current rename table. Registries publish a new
// table on every rename, so strategies always ask for the latest one.
type TableFunc func() *names.Table

// NewRenameStrategy creates an apis.Strategy that consults the rename table
// for an exact entry of the demangled type text.
func NewRenameStrategy(table TableFunc) apis.Strategy {
	return &renameStrategy{table: table}
}

// renameStrategy answers for types renamed explicitly or seeded through
// Config.Renames.
type renameStrategy struct {
	table TableFunc
}

// Ensure renameStrategy implements apis.Strategy.
var _ apis.Strategy = (*renameStrategy)(nil)

// TryResolveType looks up the demangled text of t in the rename table.
func (s *renameStrategy) TryResolveType(t reflect.Type, _ apis.Config) (string, bool) {
	if t == nil || s.table == nil {
		return "", false
	}
	return s.table().Lookup(uref.Demangle(t))
}
