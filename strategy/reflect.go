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

// NewReflectStrategy creates an apis.Strategy that derives the canonical
// name from the demangled Go type text, applying the current rename table.
func NewReflectStrategy(table TableFunc) apis.Strategy {
	return reflectStrategy{table: table}
}

// reflectStrategy is the universal fallback. It always handles non-nil
// types: "[]example.com/shop.Item" becomes "List<shop.Item>", or
// "List<Item>" once shop.Item is renamed to Item.
type reflectStrategy struct {
	table TableFunc
}

// Ensure reflectStrategy implements apis.Strategy.
var _ apis.Strategy = (*reflectStrategy)(nil)

// untabled caches names computed without a rename table. Names computed
// with a table are cached on the table itself and dropped with it.
var untabled names.Table

// TryResolveType computes the canonical name of t.
func (s reflectStrategy) TryResolveType(t reflect.Type, _ apis.Config) (string, bool) {
	if t == nil {
		return "", false
	}
	var tbl *names.Table
	if s.table != nil {
		tbl = s.table()
	}
	return byType(t, tbl), true
}

// byType resolves the canonical name for t with memoization.
func byType(t reflect.Type, tbl *names.Table) string {
	memo := tbl
	if memo == nil {
		memo = &untabled
	}
	return memo.Memoize(t, func() string {
		return names.Canonicalize(uref.Demangle(t), tbl)
	})
}
