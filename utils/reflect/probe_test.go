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

package reflect_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"
	"unsafe"

	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

// Local test types.
type plain struct {
	A int32
	B uint32
}
type padded struct {
	A int8
	B int64
}
type withString struct {
	S string
	N int
}
type withSlice struct{ X []int }
type withIface struct{ V any }
type node struct {
	Next *node
	V    int
}
type fnHolder struct{ F func() }
type meters float64

type eqT struct{ v []int }

func (e eqT) Equal(o eqT) bool { return len(e.v) == len(o.v) }

type cp struct{ v []int }

func (c *cp) CopyFrom(o *cp) { c.v = append([]int(nil), o.v...) }

type color int

func (color) EnumStrings() []string { return []string{"RED", "GREEN"} }

type initT struct{ N int }

func (i *initT) InitDefault() { i.N = 1 }

type ints struct{ v []int }

func (s *ints) Len() int      { return len(s.v) }
func (s *ints) Resize(n int)  { s.v = make([]int, n) }
func (s *ints) At(i int) *int { return &s.v[i] }

type bits struct{ w []uint64 }

func (b *bits) Len() int       { return len(b.w) }
func (b *bits) Resize(n int)   { b.w = make([]uint64, n) }
func (b *bits) Get(i int) bool { return b.w[i] != 0 }

func (b *bits) Set(i int, v bool) {
	b.w[i] = 0
	if v {
		b.w[i] = 1
	}
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func TestCopyAndCompareProbes(t *testing.T) {
	cases := []struct {
		name       string
		typ        reflect.Type
		bitwise    bool
		valueCopy  bool
		comparable bool
		byteEq     bool
	}{
		{"int", typeOf[int](), true, true, true, true},
		{"float64", typeOf[float64](), true, true, true, false},
		{"string", typeOf[string](), false, true, true, false},
		{"plain", typeOf[plain](), true, true, true, true},
		{"padded", typeOf[padded](), true, true, true, false},
		{"array", typeOf[[4]uint16](), true, true, true, true},
		{"withString", typeOf[withString](), false, true, true, false},
		{"withSlice", typeOf[withSlice](), false, false, false, false},
		{"withIface", typeOf[withIface](), false, false, false, false},
		{"pointer", typeOf[*node](), false, false, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := uref.IsBitwiseCopyable(tc.typ); got != tc.bitwise {
				t.Fatalf("IsBitwiseCopyable(%v) = %v, want %v", tc.typ, got, tc.bitwise)
			}
			if got := uref.IsValueCopyable(tc.typ); got != tc.valueCopy {
				t.Fatalf("IsValueCopyable(%v) = %v, want %v", tc.typ, got, tc.valueCopy)
			}
			if got := uref.IsEqualityComparable(tc.typ); got != tc.comparable {
				t.Fatalf("IsEqualityComparable(%v) = %v, want %v", tc.typ, got, tc.comparable)
			}
			if got := uref.IsByteComparable(tc.typ); got != tc.byteEq {
				t.Fatalf("IsByteComparable(%v) = %v, want %v", tc.typ, got, tc.byteEq)
			}
		})
	}
}

func TestMethodProbes(t *testing.T) {
	if !uref.HasEqualMethod(typeOf[eqT]()) {
		t.Fatal("eqT: Equal method not detected")
	}
	if uref.HasEqualMethod(typeOf[plain]()) {
		t.Fatal("plain: unexpected Equal method")
	}
	if !uref.HasCopyFromMethod(typeOf[cp]()) {
		t.Fatal("cp: CopyFrom method not detected")
	}
	if !uref.HasInitializer(typeOf[initT]()) {
		t.Fatal("initT: InitDefault not detected")
	}
}

func TestZeroInit(t *testing.T) {
	if !uref.IsZeroInit(typeOf[plain](), typeinfo.Spec{}) {
		t.Fatal("plain should be zero-init")
	}
	if uref.IsZeroInit(typeOf[initT](), typeinfo.Spec{}) {
		t.Fatal("initT has an initializer")
	}
	if uref.IsZeroInit(typeOf[struct{ X initT }](), typeinfo.Spec{}) {
		t.Fatal("struct embedding initT has an initializer")
	}
	if uref.IsZeroInit(typeOf[int](), typeinfo.Spec{Factory: func(unsafe.Pointer) {}}) {
		t.Fatal("factory disables zero-init")
	}
	if uref.IsZeroInit(typeOf[int](), typeinfo.Spec{EnumNames: []string{"A"}, EnumValues: []int64{2}}) {
		t.Fatal("non-zero first enum value disables zero-init")
	}
}

func TestVectorOf(t *testing.T) {
	v, ok := uref.VectorOf(typeOf[[]string]())
	if !ok || !v.Native || v.Elem != typeOf[string]() {
		t.Fatalf("[]string: got %+v, %v", v, ok)
	}
	v, ok = uref.VectorOf(typeOf[ints]())
	if !ok || v.Native || v.Proxy || v.Elem != typeOf[int]() {
		t.Fatalf("ints: got %+v, %v", v, ok)
	}
	v, ok = uref.VectorOf(typeOf[bits]())
	if !ok || !v.Proxy || v.Elem != typeOf[bool]() {
		t.Fatalf("bits: got %+v, %v", v, ok)
	}
	if _, ok = uref.VectorOf(typeOf[plain]()); ok {
		t.Fatal("plain is not a vector")
	}
	if _, ok = uref.VectorOf(typeOf[[3]int]()); ok {
		t.Fatal("arrays have a fixed size")
	}
	if !uref.IsContainer(typeOf[map[string]int]()) || uref.IsContainer(typeOf[plain]()) {
		t.Fatal("IsContainer mismatch")
	}
}

func TestChannelProbes(t *testing.T) {
	cases := []struct {
		name   string
		typ    reflect.Type
		binary bool
		str    bool
		xml    bool
	}{
		{"int", typeOf[int](), true, true, true},
		{"recursive", typeOf[node](), true, false, false},
		{"func field", typeOf[fnHolder](), false, false, false},
		{"interface field", typeOf[withIface](), false, false, false},
		{"nested map", typeOf[map[string][]int](), true, false, false},
		{"enum", typeOf[color](), true, true, true},
		{"text marshaler", typeOf[time.Time](), true, true, true},
		{"nested slices", typeOf[[][]string](), true, false, true},
		{"method vector", typeOf[ints](), true, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := uref.IsBinarySerializable(tc.typ); got != tc.binary {
				t.Fatalf("IsBinarySerializable(%v) = %v, want %v", tc.typ, got, tc.binary)
			}
			if got := uref.IsStringSerializable(tc.typ); got != tc.str {
				t.Fatalf("IsStringSerializable(%v) = %v, want %v", tc.typ, got, tc.str)
			}
			if got := uref.IsXMLSerializable(tc.typ); got != tc.xml {
				t.Fatalf("IsXMLSerializable(%v) = %v, want %v", tc.typ, got, tc.xml)
			}
		})
	}
}

func TestEnumAndUnderlying(t *testing.T) {
	if !uref.IsEnum(typeOf[color](), typeinfo.Spec{}) {
		t.Fatal("color is an enum")
	}
	if !uref.IsEnum(typeOf[int16](), typeinfo.Spec{EnumNames: []string{"X"}}) {
		t.Fatal("enum option not honoured")
	}
	if uref.IsEnum(typeOf[string](), typeinfo.Spec{EnumNames: []string{"X"}}) {
		t.Fatal("strings cannot be enums")
	}
	if got := uref.BasicUnderlying(typeOf[meters]()); got != typeOf[float64]() {
		t.Fatalf("BasicUnderlying(meters) = %v", got)
	}
	if got := uref.BasicUnderlying(typeOf[float64]()); got != nil {
		t.Fatalf("BasicUnderlying(float64) = %v, want nil", got)
	}
	if uref.TypeFromKind(reflect.Uint16) != typeOf[uint16]() {
		t.Fatal("TypeFromKind(Uint16) mismatch")
	}
}

func TestDemangle(t *testing.T) {
	pkg := typeOf[plain]().PkgPath()
	cases := []struct {
		typ  reflect.Type
		want string
	}{
		{typeOf[int](), "int"},
		{typeOf[plain](), pkg + ".plain"},
		{typeOf[[]plain](), "[]" + pkg + ".plain"},
		{typeOf[[2]*plain](), "[2]*" + pkg + ".plain"},
		{typeOf[map[string]plain](), "map[string]" + pkg + ".plain"},
	}
	for _, tc := range cases {
		if got := uref.Demangle(tc.typ); got != tc.want {
			t.Fatalf("Demangle(%v) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

// TestProbes_Concurrent hammers the memoized probes from many goroutines.
func TestProbes_Concurrent(t *testing.T) {
	types := []reflect.Type{
		typeOf[plain](), typeOf[node](), typeOf[withIface](), typeOf[[]plain](),
		typeOf[map[string][]int](), typeOf[color](), typeOf[bits](),
	}
	want := make([]bool, len(types))
	for i, tt := range types {
		want[i] = uref.IsBinarySerializable(tt)
	}

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan reflect.Type, workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				idx := (i + id) % len(types)
				uref.IsXMLSerializable(types[idx])
				uref.Demangle(types[idx])
				if uref.IsBinarySerializable(types[idx]) != want[idx] {
					errCh <- types[idx]
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errCh)
	for tt := range errCh {
		t.Fatalf("concurrent probe mismatch for %v", tt)
	}
}
