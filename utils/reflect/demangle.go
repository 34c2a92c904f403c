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

package reflect

import (
	"reflect"
	"strconv"
)

var basicTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:       reflect.TypeOf(false),
	reflect.Int:        reflect.TypeOf(int(0)),
	reflect.Int8:       reflect.TypeOf(int8(0)),
	reflect.Int16:      reflect.TypeOf(int16(0)),
	reflect.Int32:      reflect.TypeOf(int32(0)),
	reflect.Int64:      reflect.TypeOf(int64(0)),
	reflect.Uint:       reflect.TypeOf(uint(0)),
	reflect.Uint8:      reflect.TypeOf(uint8(0)),
	reflect.Uint16:     reflect.TypeOf(uint16(0)),
	reflect.Uint32:     reflect.TypeOf(uint32(0)),
	reflect.Uint64:     reflect.TypeOf(uint64(0)),
	reflect.Uintptr:    reflect.TypeOf(uintptr(0)),
	reflect.Float32:    reflect.TypeOf(float32(0)),
	reflect.Float64:    reflect.TypeOf(float64(0)),
	reflect.Complex64:  reflect.TypeOf(complex64(0)),
	reflect.Complex128: reflect.TypeOf(complex128(0)),
	reflect.String:     reflect.TypeOf(""),
}

// TypeFromKind returns the predeclared type of a basic kind, or nil.
func TypeFromKind(k reflect.Kind) reflect.Type {
	return basicTypes[k]
}

// BasicUnderlying returns the predeclared type underneath a named basic
// type (type Meters float64 -> float64). It returns nil for predeclared
// types themselves and for non-basic kinds.
func BasicUnderlying(t reflect.Type) reflect.Type {
	if t == nil || t.PkgPath() == "" {
		return nil
	}
	b := basicTypes[t.Kind()]
	if b == nil || b == t {
		return nil
	}
	return b
}

// Demangle renders t as fully path-qualified Go type text, e.g.
// "[]example.com/shop/model.Item" or "map[string]*example.com/x.T".
// Anonymous structs, functions and interfaces fall back to t.String().
func Demangle(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if v, ok := demangleMemo.Load(t); ok {
		return v.(string)
	}
	s := demangle(t)
	demangleMemo.Store(t, s)
	return s
}

func demangle(t reflect.Type) string {
	if name := t.Name(); name != "" {
		if p := t.PkgPath(); p != "" {
			return p + "." + name
		}
		return name
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + Demangle(t.Elem())
	case reflect.Slice:
		return "[]" + Demangle(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + Demangle(t.Elem())
	case reflect.Map:
		return "map[" + Demangle(t.Key()) + "]" + Demangle(t.Elem())
	}
	return t.String()
}
