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

package registry_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/registry"
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

type point struct {
	X, Y int32
	Tags []string
}

type node struct {
	Next  *node
	Value int
}

type myType struct{ A uint8 }

type dupA struct{ A int }

type dupB struct{ B int }

type tag struct{ Label string }

type other struct{ Label string }

type shopItem struct{ SKU string }

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func newRegistry(opts ...config.Option) apis.Registry {
	return registry.New(config.NewConfig(opts...))
}

// fatalError runs f and returns the error it panicked with.
func fatalError(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		e, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		err = e
	}()
	f()
	return nil
}

func TestBuiltinsComeFirst(t *testing.T) {
	reg := newRegistry(config.WithPairVectorTypes(false))
	require.Equal(t, len(registry.Builtins()), reg.Count())
	for i, bt := range registry.Builtins() {
		d, ok := reg.Lookup(bt)
		require.True(t, ok, "%v not registered", bt)
		assert.Equal(t, typeinfo.Handle(i), d.Handle(), "%v", bt)
		assert.Equal(t, bt.String(), d.Name())
	}

	paired := newRegistry()
	require.Equal(t, 2*len(registry.Builtins()), paired.Count())
	d, _ := paired.Lookup(typeOf[int]())
	v := d.Shared().Vector()
	require.NotNil(t, v)
	assert.Equal(t, "List<int>", v.Name())
	assert.Equal(t, d.Handle()+1, v.Handle())
}

func TestRegister_ComponentsAndPairing(t *testing.T) {
	reg := newRegistry()
	d, err := reg.Register(typeOf[point](), typeinfo.Spec{})
	require.NoError(t, err)
	assert.Equal(t, "registry_test.point", d.Name())
	assert.True(t, d.Installed())

	for _, c := range []reflect.Type{typeOf[int32](), typeOf[[]string]()} {
		_, ok := reg.Lookup(c)
		assert.True(t, ok, "component %v not registered", c)
	}

	v, ok := reg.Lookup(typeOf[[]point]())
	require.True(t, ok)
	assert.True(t, v.Paired())
	assert.Same(t, d.Shared(), v.Shared())
	assert.Same(t, v, d.Shared().Vector())
	assert.Equal(t, "List<registry_test.point>", v.Name())
	assert.Equal(t, d.Shared().VectorHandle(), v.Handle())
	assert.Same(t, d, v.Element())

	again, err := reg.Register(typeOf[point](), typeinfo.Spec{})
	require.NoError(t, err)
	assert.Same(t, d, again)
}

func TestRegister_NoVector(t *testing.T) {
	reg := newRegistry()
	d, err := reg.Register(typeOf[myType](), typeinfo.Spec{NoVector: true})
	require.NoError(t, err)
	assert.Nil(t, d.Shared().Vector())
	_, ok := reg.Lookup(typeOf[[]myType]())
	assert.False(t, ok)
}

func TestRegister_RecursiveType(t *testing.T) {
	reg := newRegistry()
	d, err := reg.Register(typeOf[node](), typeinfo.Spec{Name: "Node"})
	require.NoError(t, err)
	assert.Equal(t, "Node", d.Name())

	p, ok := reg.Lookup(typeOf[*node]())
	require.True(t, ok)
	assert.True(t, p.Installed())
	assert.Equal(t, "*Node", p.Name())
	got, ok := reg.ByHandle(p.Handle())
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestRegister_Errors(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Register(nil, typeinfo.Spec{})
	assert.ErrorIs(t, err, registry.ErrNilType)
	_, err = reg.Register(typeOf[func()](), typeinfo.Spec{})
	assert.ErrorIs(t, err, registry.ErrUnsupportedType)

	before := reg.Count()
	_, err = reg.Register(typeOf[int8](), typeinfo.Spec{Name: "int"})
	assert.ErrorIs(t, err, registry.ErrNameConflict)
	_, err = reg.Register(typeOf[tag](), typeinfo.Spec{Name: "int"})
	assert.ErrorIs(t, err, registry.ErrNameConflict)
	assert.Equal(t, before, reg.Count(), "a failed registration publishes nothing")
	_, ok := reg.Lookup(typeOf[tag]())
	assert.False(t, ok)
}

func TestRegister_StrictPanics(t *testing.T) {
	reg := newRegistry(config.WithStrict(true))
	_, err := reg.Register(typeOf[tag](), typeinfo.Spec{Name: "Tag"})
	require.NoError(t, err)
	err = fatalError(t, func() { _, _ = reg.Register(typeOf[other](), typeinfo.Spec{Name: "Tag"}) })
	assert.ErrorIs(t, err, registry.ErrNameConflict)
}

func TestCustomNameFeedsCompositeNames(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Register(typeOf[myType](), typeinfo.Spec{Name: "Foo"})
	require.NoError(t, err)

	m, err := reg.Register(typeOf[map[string]myType](), typeinfo.Spec{})
	require.NoError(t, err)
	assert.Equal(t, "Map<string, Foo>", m.Name())

	d, ok := reg.Find("Foo")
	require.True(t, ok)
	assert.Equal(t, typeOf[myType](), d.Type())
	d, ok = reg.Find("List<Foo>")
	require.True(t, ok)
	assert.Equal(t, typeOf[[]myType](), d.Type())
}

func TestConfigRenames(t *testing.T) {
	reg := newRegistry(config.WithRename(uref.Demangle(typeOf[shopItem]()), "shop.Item"))
	d, err := reg.Register(typeOf[shopItem](), typeinfo.Spec{})
	require.NoError(t, err)
	assert.Equal(t, "shop.Item", d.Name())
}

func TestFind(t *testing.T) {
	reg := newRegistry()
	mine, err := reg.Register(typeOf[myType](), typeinfo.Spec{AdditionalNames: []string{"legacy.Mine"}})
	require.NoError(t, err)
	a, err := reg.Register(typeOf[dupA](), typeinfo.Spec{Name: "x.Dup"})
	require.NoError(t, err)
	_, err = reg.Register(typeOf[dupB](), typeinfo.Spec{Name: "y.Dup"})
	require.NoError(t, err)

	cases := []struct {
		name string
		want *typeinfo.Descriptor
	}{
		{"registry_test.myType", mine},
		{"  registry_test.myType ", mine},
		{"legacy.Mine", mine},
		{"myType", mine},
		{"a.b.myType", mine},
		{"Dup", a},
		{"z.Dup", a},
	}
	for _, tc := range cases {
		got, ok := reg.Find(tc.name)
		require.True(t, ok, "Find(%q)", tc.name)
		assert.Same(t, tc.want, got, "Find(%q)", tc.name)
	}

	ints, ok := reg.Find("[]int")
	require.True(t, ok)
	assert.Equal(t, typeOf[[]int](), ints.Type())

	for _, miss := range []string{"", "Nope", "a.b.Nope"} {
		_, ok := reg.Find(miss)
		assert.False(t, ok, "Find(%q)", miss)
	}
}

func TestRename(t *testing.T) {
	reg := newRegistry()
	d, err := reg.Register(typeOf[tag](), typeinfo.Spec{})
	require.NoError(t, err)

	require.NoError(t, reg.Rename(d, "Label"))
	assert.Equal(t, "Label", d.Name())
	got, ok := reg.Find("Label")
	require.True(t, ok)
	assert.Same(t, d, got)
	_, ok = reg.Find("registry_test.tag")
	assert.False(t, ok)
	v, ok := reg.Find("List<Label>")
	require.True(t, ok)
	assert.Same(t, d.Shared().Vector(), v)

	assert.ErrorIs(t, reg.Rename(d, "Again"), typeinfo.ErrNameAlreadySet)
	o, err := reg.Register(typeOf[other](), typeinfo.Spec{})
	require.NoError(t, err)
	assert.ErrorIs(t, reg.Rename(o, "Label"), registry.ErrNameConflict)
	assert.ErrorIs(t, reg.Rename(o, ""), typeinfo.ErrEmptyName)

	foreign, err := newRegistry().Register(typeOf[note](), typeinfo.Spec{})
	require.NoError(t, err)
	assert.ErrorIs(t, reg.Rename(foreign, "Note"), registry.ErrNotRegistered)
}

func TestPromoteComponent(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Register(typeOf[[]tag](), typeinfo.Spec{})
	require.NoError(t, err)
	var entry apis.Entry
	for _, e := range reg.Entries() {
		if e.Descriptor.Type() == typeOf[tag]() {
			entry = e
		}
	}
	require.NotNil(t, entry.Descriptor)
	assert.False(t, entry.Explicit)

	d, err := reg.Register(typeOf[tag](), typeinfo.Spec{Name: "Tag"})
	require.NoError(t, err)
	assert.Same(t, entry.Descriptor, d)
	assert.Equal(t, "Tag", d.Name())
	e := reg.Entries()[d.Handle()]
	assert.True(t, e.Explicit)
	assert.Equal(t, "Tag", e.Spec.Name)
}

type note struct{ Text string }

type author struct{ Name string }

func TestAnnotate(t *testing.T) {
	reg := newRegistry(config.WithMaxAnnotations(1))
	d, err := reg.Register(typeOf[tag](), typeinfo.Spec{Annotations: []any{note{"hi"}}})
	require.NoError(t, err)

	a, ok := d.Shared().Annotation(typeOf[note]())
	require.True(t, ok)
	assert.Equal(t, note{"hi"}, a)

	assert.ErrorIs(t, reg.Annotate(d, note{"again"}), typeinfo.ErrAnnotationExists)
	err = fatalError(t, func() { _ = reg.Annotate(d, author{"me"}) })
	assert.ErrorIs(t, err, typeinfo.ErrAnnotationCapacity)
}

func TestCapacityIsFatal(t *testing.T) {
	reg := newRegistry(
		config.WithPairVectorTypes(false),
		config.WithMaxTypes(len(registry.Builtins())),
	)
	err := fatalError(t, func() { _, _ = reg.Register(typeOf[tag](), typeinfo.Spec{}) })
	assert.True(t, errors.Is(err, registry.ErrCapacity), "got %v", err)
	assert.Equal(t, len(registry.Builtins()), reg.Count())
}

func TestIndependentRegistriesAgree(t *testing.T) {
	types := []reflect.Type{typeOf[point](), typeOf[node](), typeOf[map[string][]tag]()}
	a, b := newRegistry(), newRegistry()
	for _, rt := range types {
		_, err := a.Register(rt, typeinfo.Spec{})
		require.NoError(t, err)
		_, err = b.Register(rt, typeinfo.Spec{})
		require.NoError(t, err)
	}
	require.Equal(t, a.Count(), b.Count())
	for h := 0; h < a.Count(); h++ {
		da, _ := a.ByHandle(typeinfo.Handle(h))
		db, _ := b.ByHandle(typeinfo.Handle(h))
		assert.True(t, da.StructurallyEqual(db), "handle %d: %v vs %v", h, da, db)
		assert.Equal(t, da.Name(), db.Name())
	}
	_, ok := a.ByHandle(typeinfo.Handle(a.Count()))
	assert.False(t, ok)
}
