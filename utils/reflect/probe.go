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

// Package reflect answers capability questions about Go types: whether a
// type can be byte-copied, compared with ==, serialized through each channel,
// used as a vector, and so on.
//
// Every probe is total (it never panics, whatever the type) and memoized.
// Recursive types are answered optimistically for serializability and
// pessimistically for copy safety.
package reflect

import (
	"encoding"
	"reflect"
	"sync"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/typeinfo"
)

var (
	binarySerializerType   = reflect.TypeOf((*apis.BinarySerializer)(nil)).Elem()
	binaryDeserializerType = reflect.TypeOf((*apis.BinaryDeserializer)(nil)).Elem()
	stringSerializerType   = reflect.TypeOf((*apis.StringSerializer)(nil)).Elem()
	stringDeserializerType = reflect.TypeOf((*apis.StringDeserializer)(nil)).Elem()
	xmlSerializerType      = reflect.TypeOf((*apis.XMLSerializer)(nil)).Elem()
	xmlDeserializerType    = reflect.TypeOf((*apis.XMLDeserializer)(nil)).Elem()
	binaryMarshalerType    = reflect.TypeOf((*encoding.BinaryMarshaler)(nil)).Elem()
	binaryUnmarshalerType  = reflect.TypeOf((*encoding.BinaryUnmarshaler)(nil)).Elem()
	textMarshalerType      = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType    = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	initializerType        = reflect.TypeOf((*apis.DefaultInitializer)(nil)).Elem()
	destructorType         = reflect.TypeOf((*apis.Destructor)(nil)).Elem()
	enumStringerType       = reflect.TypeOf((*apis.EnumStringer)(nil)).Elem()
	namerType              = reflect.TypeOf((*apis.Namer)(nil)).Elem()
	intType                = reflect.TypeOf(0)
	errorType              = reflect.TypeOf((*error)(nil)).Elem()
)

// memo caches one probe's answers by type.
type memo struct{ m sync.Map }

func (c *memo) get(t reflect.Type, f func(reflect.Type) bool) bool {
	if v, ok := c.m.Load(t); ok {
		return v.(bool)
	}
	v := f(t)
	c.m.Store(t, v)
	return v
}

var (
	comparableMemo  memo
	bitwiseMemo     memo
	valueCopyMemo   memo
	byteCompareMemo memo
	zeroInitMemo    memo
	binaryMemo      memo
	stringMemo      memo
	xmlMemo         memo
	equalMethodMemo memo
	copyFromMemo    memo
	destroyMemo     memo
	vectorMemo      sync.Map // reflect.Type -> vectorResult
	demangleMemo    sync.Map // reflect.Type -> string
)

// Implements reports whether t or *t implements iface.
func Implements(t, iface reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
}

func implementsBoth(t, a, b reflect.Type) bool {
	return Implements(t, a) && Implements(t, b)
}

// HasBinaryMethods reports whether t has its own binary serializer pair.
func HasBinaryMethods(t reflect.Type) bool {
	return implementsBoth(t, binarySerializerType, binaryDeserializerType)
}

// HasBinaryMarshaler reports whether t has the encoding.BinaryMarshaler pair.
func HasBinaryMarshaler(t reflect.Type) bool {
	return implementsBoth(t, binaryMarshalerType, binaryUnmarshalerType)
}

// HasStringMethods reports whether t has its own string serializer pair.
func HasStringMethods(t reflect.Type) bool {
	return implementsBoth(t, stringSerializerType, stringDeserializerType)
}

// HasTextMarshaler reports whether t has the encoding.TextMarshaler pair.
func HasTextMarshaler(t reflect.Type) bool {
	return implementsBoth(t, textMarshalerType, textUnmarshalerType)
}

// HasXMLMethods reports whether t has its own XML serializer pair.
func HasXMLMethods(t reflect.Type) bool {
	return implementsBoth(t, xmlSerializerType, xmlDeserializerType)
}

// HasInitializer reports whether t implements apis.DefaultInitializer.
func HasInitializer(t reflect.Type) bool { return Implements(t, initializerType) }

// HasDestructor reports whether t implements apis.Destructor.
func HasDestructor(t reflect.Type) bool { return Implements(t, destructorType) }

// HasNamer reports whether t implements apis.Namer.
func HasNamer(t reflect.Type) bool { return Implements(t, namerType) }

// EnumStrings returns the table of an apis.EnumStringer type.
func EnumStrings(t reflect.Type) ([]string, bool) {
	if t == nil || !Implements(t, enumStringerType) {
		return nil, false
	}
	v := reflect.New(t)
	if s, ok := v.Interface().(apis.EnumStringer); ok {
		return s.EnumStrings(), true
	}
	if s, ok := v.Elem().Interface().(apis.EnumStringer); ok {
		return s.EnumStrings(), true
	}
	return nil, false
}

// TypeName calls TypeName on a zero value of an apis.Namer type.
func TypeName(t reflect.Type) (string, bool) {
	if !HasNamer(t) {
		return "", false
	}
	v := reflect.New(t)
	if n, ok := v.Interface().(apis.Namer); ok {
		return n.TypeName(), true
	}
	return "", false
}

// method returns the method named name in the method set of *t.
func method(t reflect.Type, name string) (reflect.Method, bool) {
	if t == nil || t.Kind() == reflect.Interface {
		return reflect.Method{}, false
	}
	return reflect.PointerTo(t).MethodByName(name)
}

// HasEqualMethod reports whether t has Equal(T) bool or Equal(*T) bool.
func HasEqualMethod(t reflect.Type) bool {
	return equalMethodMemo.get(t, func(t reflect.Type) bool {
		m, ok := method(t, "Equal")
		if !ok {
			return false
		}
		mt := m.Type
		return mt.NumIn() == 2 && mt.NumOut() == 1 &&
			mt.Out(0).Kind() == reflect.Bool &&
			(mt.In(1) == t || mt.In(1) == reflect.PointerTo(t))
	})
}

// HasCopyFromMethod reports whether *t has CopyFrom(*T) or CopyFrom(T),
// optionally returning an error.
func HasCopyFromMethod(t reflect.Type) bool {
	return copyFromMemo.get(t, func(t reflect.Type) bool {
		m, ok := method(t, "CopyFrom")
		if !ok {
			return false
		}
		mt := m.Type
		if mt.NumIn() != 2 || (mt.In(1) != t && mt.In(1) != reflect.PointerTo(t)) {
			return false
		}
		return mt.NumOut() == 0 || (mt.NumOut() == 1 && mt.Out(0) == errorType)
	})
}

func isBasicScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// IsInteger reports whether k is a signed or unsigned integer kind.
func IsInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// IsBasic reports whether t's kind is a scalar or string.
func IsBasic(t reflect.Type) bool {
	return t != nil && (isBasicScalar(t.Kind()) || t.Kind() == reflect.String)
}

// IsBitwiseCopyable reports whether t holds no references, so a byte copy
// is a complete copy.
func IsBitwiseCopyable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return bitwiseMemo.get(t, func(t reflect.Type) bool {
		switch t.Kind() {
		case reflect.Array:
			return IsBitwiseCopyable(t.Elem())
		case reflect.Struct:
			for i := 0; i < t.NumField(); i++ {
				if !IsBitwiseCopyable(t.Field(i).Type) {
					return false
				}
			}
			return true
		default:
			return isBasicScalar(t.Kind())
		}
	})
}

// IsValueCopyable reports whether plain assignment deep-copies t: bitwise
// types plus immutable strings.
func IsValueCopyable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return valueCopyMemo.get(t, func(t reflect.Type) bool {
		switch t.Kind() {
		case reflect.String:
			return true
		case reflect.Array:
			return IsValueCopyable(t.Elem())
		case reflect.Struct:
			for i := 0; i < t.NumField(); i++ {
				if !IsValueCopyable(t.Field(i).Type) {
					return false
				}
			}
			return true
		default:
			return isBasicScalar(t.Kind())
		}
	})
}

func containsInterface(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Array:
		return containsInterface(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsInterface(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// IsEqualityComparable reports whether == is defined for t and can never
// panic at run time.
func IsEqualityComparable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return comparableMemo.get(t, func(t reflect.Type) bool {
		return t.Comparable() && !containsInterface(t)
	})
}

// IsByteComparable reports whether == on t is exactly byte equality:
// integers and booleans only, without padding.
func IsByteComparable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return byteCompareMemo.get(t, func(t reflect.Type) bool {
		switch t.Kind() {
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return true
		case reflect.Array:
			return IsByteComparable(t.Elem())
		case reflect.Struct:
			var sum uintptr
			for i := 0; i < t.NumField(); i++ {
				f := t.Field(i)
				if !IsByteComparable(f.Type) {
					return false
				}
				sum += f.Type.Size()
			}
			return sum == t.Size()
		}
		return false
	})
}

// IsZeroInit reports whether default construction of t yields all-zero
// memory under the given registration options.
func IsZeroInit(t reflect.Type, spec typeinfo.Spec) bool {
	if t == nil {
		return false
	}
	if spec.Factory != nil {
		return false
	}
	if len(spec.EnumValues) > 0 && spec.EnumValues[0] != 0 {
		return false
	}
	return zeroInitMemo.get(t, func(t reflect.Type) bool {
		if HasInitializer(t) {
			return false
		}
		switch t.Kind() {
		case reflect.Array:
			return IsZeroInit(t.Elem(), typeinfo.Spec{})
		case reflect.Struct:
			for i := 0; i < t.NumField(); i++ {
				if !IsZeroInit(t.Field(i).Type, typeinfo.Spec{}) {
					return false
				}
			}
		}
		return true
	})
}

// VectorInfo describes a vector-like type.
type VectorInfo struct {
	// Elem is the element type.
	Elem reflect.Type
	// Native is true for slices.
	Native bool
	// Proxy is true when elements are reached through Get/Set and have no
	// address of their own.
	Proxy bool
}

type vectorResult struct {
	info VectorInfo
	ok   bool
}

// VectorOf reports whether t is vector-like. Slices are native vectors.
// Other types qualify through methods on *T: Len() int and Resize(int)
// together with either At(int) *E, or Get(int) E and Set(int, E).
func VectorOf(t reflect.Type) (VectorInfo, bool) {
	if t == nil {
		return VectorInfo{}, false
	}
	if v, ok := vectorMemo.Load(t); ok {
		r := v.(vectorResult)
		return r.info, r.ok
	}
	info, ok := probeVector(t)
	vectorMemo.Store(t, vectorResult{info, ok})
	return info, ok
}

func probeVector(t reflect.Type) (VectorInfo, bool) {
	if t.Kind() == reflect.Slice {
		return VectorInfo{Elem: t.Elem(), Native: true}, true
	}
	ln, ok := method(t, "Len")
	if !ok || ln.Type.NumIn() != 1 || ln.Type.NumOut() != 1 || ln.Type.Out(0) != intType {
		return VectorInfo{}, false
	}
	rs, ok := method(t, "Resize")
	if !ok || rs.Type.NumIn() != 2 || rs.Type.In(1) != intType {
		return VectorInfo{}, false
	}
	if rs.Type.NumOut() > 1 || (rs.Type.NumOut() == 1 && rs.Type.Out(0) != errorType) {
		return VectorInfo{}, false
	}
	if at, ok := method(t, "At"); ok {
		mt := at.Type
		if mt.NumIn() == 2 && mt.In(1) == intType && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Pointer {
			return VectorInfo{Elem: mt.Out(0).Elem()}, true
		}
	}
	get, okGet := method(t, "Get")
	set, okSet := method(t, "Set")
	if !okGet || !okSet {
		return VectorInfo{}, false
	}
	gt, st := get.Type, set.Type
	if gt.NumIn() != 2 || gt.In(1) != intType || gt.NumOut() != 1 {
		return VectorInfo{}, false
	}
	if st.NumIn() != 3 || st.In(1) != intType || st.In(2) != gt.Out(0) || st.NumOut() != 0 {
		return VectorInfo{}, false
	}
	return VectorInfo{Elem: gt.Out(0), Proxy: true}, true
}

// IsContainer reports whether t is a slice, array, map or method-vector.
func IsContainer(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	_, ok := VectorOf(t)
	return ok
}

// ElementType returns the element type of a container, or nil.
func ElementType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return t.Elem()
	}
	if v, ok := VectorOf(t); ok {
		return v.Elem
	}
	return nil
}

// channelProbe evaluates a recursive serializability rule with a visiting
// set. A type already being visited is assumed serializable.
type channelProbe struct {
	visiting map[reflect.Type]bool
	cache    *memo
	rule     func(p *channelProbe, t reflect.Type) bool
}

func (p *channelProbe) check(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if v, ok := p.cache.m.Load(t); ok {
		return v.(bool)
	}
	if p.visiting[t] {
		return true
	}
	p.visiting[t] = true
	defer delete(p.visiting, t)
	return p.rule(p, t)
}

func runChannelProbe(t reflect.Type, cache *memo, rule func(p *channelProbe, t reflect.Type) bool) bool {
	if t == nil {
		return false
	}
	if v, ok := cache.m.Load(t); ok {
		return v.(bool)
	}
	p := &channelProbe{visiting: map[reflect.Type]bool{}, cache: cache, rule: rule}
	v := p.check(t)
	cache.m.Store(t, v)
	return v
}

// IsBinarySerializable reports whether t has a binary channel: its own
// serializer pair, the encoding.BinaryMarshaler pair, or a structure made of
// binary-serializable parts. Interfaces, channels and functions have none.
func IsBinarySerializable(t reflect.Type) bool {
	return runChannelProbe(t, &binaryMemo, binaryRule)
}

func binaryRule(p *channelProbe, t reflect.Type) bool {
	if HasBinaryMethods(t) || HasBinaryMarshaler(t) {
		return true
	}
	if IsBasic(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return p.check(t.Elem())
	case reflect.Map:
		return p.check(t.Key()) && p.check(t.Elem())
	case reflect.Struct:
		if v, ok := VectorOf(t); ok {
			return p.check(v.Elem)
		}
		for i := 0; i < t.NumField(); i++ {
			if !p.check(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return false
}

// IsStringSerializable reports whether t has a string channel: its own
// serializer pair, the encoding.TextMarshaler pair, an enum table, or a
// basic kind.
func IsStringSerializable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return stringMemo.get(t, func(t reflect.Type) bool {
		if HasStringMethods(t) || HasTextMarshaler(t) {
			return true
		}
		if _, ok := EnumStrings(t); ok && IsInteger(t.Kind()) {
			return true
		}
		return IsBasic(t)
	})
}

// IsXMLSerializable reports whether t has an XML channel: its own
// serializer pair, a string channel rendered as element text, or a sequence
// of XML-serializable elements.
func IsXMLSerializable(t reflect.Type) bool {
	return runChannelProbe(t, &xmlMemo, xmlRule)
}

func xmlRule(p *channelProbe, t reflect.Type) bool {
	if HasXMLMethods(t) || IsStringSerializable(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return p.check(t.Elem())
	}
	if v, ok := VectorOf(t); ok {
		return p.check(v.Elem)
	}
	return false
}

// IsEnum reports whether t is an integer type with a string-constant table,
// either from apis.EnumStringer or from the registration options.
func IsEnum(t reflect.Type, spec typeinfo.Spec) bool {
	if t == nil || !IsInteger(t.Kind()) {
		return false
	}
	if len(spec.EnumNames) > 0 {
		return true
	}
	_, ok := EnumStrings(t)
	return ok
}

// IsSupportedKind reports whether values of t can be registered at all.
func IsSupportedKind(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Invalid, reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	}
	return true
}

// HasNestedDestructor reports whether t or a value it contains (struct
// fields, array, slice and method-vector elements) implements
// apis.Destructor. Pointees are not owned and are not inspected.
func HasNestedDestructor(t reflect.Type) bool {
	return runChannelProbe(t, &destroyMemo, destroyRule)
}

func destroyRule(p *channelProbe, t reflect.Type) bool {
	if HasDestructor(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Array, reflect.Slice:
		return !p.visiting[t.Elem()] && p.check(t.Elem())
	case reflect.Struct:
		if v, ok := VectorOf(t); ok {
			return !p.visiting[v.Elem] && p.check(v.Elem)
		}
		for i := 0; i < t.NumField(); i++ {
			ft := t.Field(i).Type
			if !p.visiting[ft] && p.check(ft) {
				return true
			}
		}
	}
	return false
}
