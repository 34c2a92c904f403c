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

package strategy_test

import (
	"reflect"
	"testing"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/strategy"
	"dirpx.dev/rtti/utils/names"
	uref "dirpx.dev/rtti/utils/reflect"
)

type renamed struct{}

func TestRenameStrategy_TryResolveType(t *testing.T) {
	tt := reflect.TypeOf(renamed{})
	tbl := names.NewTable(map[string]string{uref.Demangle(tt): "Renamed"})
	s := strategy.NewRenameStrategy(func() *names.Table { return tbl })

	got, ok := s.TryResolveType(tt, apis.Config{})
	if !ok || got != "Renamed" {
		t.Fatalf("TryResolveType: got (%q,%v), want (Renamed,true)", got, ok)
	}

	// Only exact entries answer; composites are left to the reflect strategy.
	if got, ok = s.TryResolveType(reflect.TypeOf([]renamed{}), apis.Config{}); ok {
		t.Fatalf("TryResolveType([]renamed): got (%q,%v), want unhandled", got, ok)
	}

	if _, ok = strategy.NewRenameStrategy(nil).TryResolveType(tt, apis.Config{}); ok {
		t.Fatal("a strategy without a table must not handle anything")
	}
}
