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

package builder_test

import (
	"errors"
	"reflect"
	"testing"

	"dirpx.dev/rtti/builder"
	"dirpx.dev/rtti/typeinfo"
)

// userType is a plain struct with no special behavior.
type userType struct {
	A int32
	B string
}

// level is an enum through its string table.
type level uint8

func (level) EnumStrings() []string { return []string{"LOW", "MID", "HIGH"} }

type celsius float32

type fnHolder struct{ F func() }

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// mapSource resolves components from a fixed set of installed descriptors.
type mapSource map[reflect.Type]*typeinfo.Descriptor

func (m mapSource) Resolve(t reflect.Type) (*typeinfo.Descriptor, error) {
	if d, ok := m[t]; ok {
		return d, nil
	}
	return nil, errors.New("unknown component " + t.String())
}

func shared(t reflect.Type) *typeinfo.SharedInfo {
	return typeinfo.NewSharedInfo(t.String(), t.String(), 2)
}

// complete describes and installs t, resolving components from src first.
func complete(t *testing.T, src mapSource, rt reflect.Type, spec typeinfo.Spec) *typeinfo.Descriptor {
	t.Helper()
	b := builder.New()
	for _, c := range b.Components(rt, spec) {
		if _, ok := src[c]; !ok {
			src[c] = complete(t, src, c, typeinfo.Spec{})
		}
	}
	d, err := b.Describe(rt, spec, shared(rt))
	if err != nil {
		t.Fatalf("Describe(%v): %v", rt, err)
	}
	if err := b.Complete(d, spec, src); err != nil {
		t.Fatalf("Complete(%v): %v", rt, err)
	}
	return d
}

func TestProbe(t *testing.T) {
	cases := []struct {
		typ  reflect.Type
		spec typeinfo.Spec
		has  typeinfo.Traits
		not  typeinfo.Traits
	}{
		{typeOf[int](), typeinfo.Spec{}, typeinfo.TraitBitwiseCopy | typeinfo.TraitZeroInit | typeinfo.TraitByteComparable, typeinfo.TraitVector},
		{typeOf[userType](), typeinfo.Spec{}, typeinfo.TraitValueCopy | typeinfo.TraitComparable, typeinfo.TraitBitwiseCopy},
		{typeOf[[]string](), typeinfo.Spec{}, typeinfo.TraitVector | typeinfo.TraitBinarySerializable, typeinfo.TraitComparable},
		{typeOf[level](), typeinfo.Spec{}, typeinfo.TraitEnum | typeinfo.TraitStringSerializable | typeinfo.TraitHasUnderlying, 0},
		{typeOf[int16](), typeinfo.Spec{EnumNames: []string{"A"}}, typeinfo.TraitEnum, typeinfo.TraitHasUnderlying},
		{typeOf[fnHolder](), typeinfo.Spec{}, 0, typeinfo.TraitBinarySerializable | typeinfo.TraitStringSerializable},
	}
	for _, tc := range cases {
		got := builder.Probe(tc.typ, tc.spec)
		if !got.Has(tc.has) {
			t.Fatalf("Probe(%v) = %s, missing %s", tc.typ, got, tc.has)
		}
		if tc.not != 0 && got&tc.not != 0 {
			t.Fatalf("Probe(%v) = %s, unexpected %s", tc.typ, got, got&tc.not)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		typ  reflect.Type
		want typeinfo.Classification
	}{
		{typeOf[int](), typeinfo.ClassPlain},
		{typeOf[userType](), typeinfo.ClassTuple},
		{typeOf[[]int](), typeinfo.ClassList},
		{typeOf[[]*userType](), typeinfo.ClassPointerList},
		{typeOf[[2]int](), typeinfo.ClassArray},
		{typeOf[map[string]int](), typeinfo.ClassMap},
		{typeOf[level](), typeinfo.ClassEnum},
		{typeOf[fnHolder](), typeinfo.ClassRPCOnly},
	}
	for _, tc := range cases {
		if got := builder.Classify(tc.typ, builder.Probe(tc.typ, typeinfo.Spec{})); got != tc.want {
			t.Fatalf("Classify(%v) = %s, want %s", tc.typ, got, tc.want)
		}
	}
}

func TestDescribe_Errors(t *testing.T) {
	b := builder.New()
	if _, err := b.Describe(nil, typeinfo.Spec{}, nil); !errors.Is(err, builder.ErrNilType) {
		t.Fatalf("nil type: got %v", err)
	}
	spec := typeinfo.Spec{Underlying: typeOf[int64]()}
	if _, err := b.Describe(typeOf[int32](), spec, shared(typeOf[int32]())); !errors.Is(err, builder.ErrInvalidUnderlying) {
		t.Fatalf("size mismatch: got %v", err)
	}
	bad := typeinfo.Spec{EnumNames: []string{"A", "A"}}
	if _, err := b.Describe(typeOf[int8](), bad, shared(typeOf[int8]())); !errors.Is(err, typeinfo.ErrInvalidEnum) {
		t.Fatalf("duplicate enum names: got %v", err)
	}
}

func TestDescribe_Enum(t *testing.T) {
	d := complete(t, mapSource{}, typeOf[level](), typeinfo.Spec{})
	e := d.Enum()
	if e == nil || e.Len() != 3 {
		t.Fatalf("enum table missing: %+v", e)
	}
	if name, _ := e.NameOf(2); name != "HIGH" {
		t.Fatalf("NameOf(2) = %q", name)
	}
	if !d.Shape().Has(typeinfo.GroupEnum) {
		t.Fatalf("shape %s lacks the enum group", d.Shape())
	}
	if d.Underlying() == nil || d.Underlying().Type() != typeOf[uint8]() {
		t.Fatalf("underlying not linked: %v", d.Underlying())
	}
}

func TestComplete_Underlying(t *testing.T) {
	d := complete(t, mapSource{}, typeOf[celsius](), typeinfo.Spec{})
	if got := d.Strategy(typeinfo.OpBinary); got != "underlying:basic" {
		t.Fatalf("binary strategy = %q", got)
	}
	u := d.Underlying()
	if u.Table().BinarySerialization != d.Table().BinarySerialization {
		t.Fatal("binary group is not shared with the underlying type")
	}
	if err := d.Install(d.Table()); !errors.Is(err, typeinfo.ErrAlreadyInstalled) {
		t.Fatalf("second Install: got %v", err)
	}
}

func TestDescribePaired(t *testing.T) {
	src := mapSource{}
	elem := complete(t, src, typeOf[userType](), typeinfo.Spec{})
	src[typeOf[userType]()] = elem

	b := builder.New()
	p := b.DescribePaired(elem)
	if !p.Paired() || p.Type() != typeOf[[]userType]() {
		t.Fatalf("paired descriptor: %v paired=%v", p.Type(), p.Paired())
	}
	if p.Shared() != elem.Shared() {
		t.Fatal("paired descriptor must share the element's identity")
	}
	if got := p.Name(); got != "List<"+elem.Name()+">" {
		t.Fatalf("paired name = %q", got)
	}
	if err := b.Complete(p, typeinfo.Spec{}, src); err != nil {
		t.Fatalf("Complete(paired): %v", err)
	}
	if p.Element() != elem || !p.IsVector() {
		t.Fatal("paired vector must link its element descriptor")
	}
}

func TestComponents(t *testing.T) {
	b := builder.New()
	got := b.Components(typeOf[map[string][]int](), typeinfo.Spec{})
	if len(got) != 2 || got[0] != typeOf[string]() || got[1] != typeOf[[]int]() {
		t.Fatalf("map components = %v", got)
	}
	got = b.Components(typeOf[userType](), typeinfo.Spec{})
	if len(got) != 2 || got[0] != typeOf[int32]() || got[1] != typeOf[string]() {
		t.Fatalf("struct components = %v", got)
	}
	got = b.Components(typeOf[celsius](), typeinfo.Spec{})
	if len(got) != 1 || got[0] != typeOf[float32]() {
		t.Fatalf("named basic components = %v", got)
	}
}
