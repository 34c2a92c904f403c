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

package rtti_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtti"
	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/registry"
)

type point struct {
	X, Y float64
}

type MyType struct {
	ID   uint32
	Tags []string
}

type note struct{ Text string }

// reset installs a fresh default registry.
func reset(t *testing.T, opts ...config.Option) {
	t.Helper()
	cfg := config.NewConfig(opts...)
	rtti.SetAll(&cfg, nil)
	t.Cleanup(func() {
		def := config.DefaultConfig()
		rtti.SetAll(&def, nil)
	})
}

func TestRegister_LinksVectorAndElement(t *testing.T) {
	reset(t)
	pt, err := rtti.Register[point]()
	require.NoError(t, err)
	assert.Equal(t, "rtti_test.point", pt.Name())

	vt := pt.Vector()
	require.False(t, vt.IsNull())
	assert.Equal(t, "List<rtti_test.point>", vt.Name())
	assert.Equal(t, pt, vt.Element())
	assert.Equal(t, pt.Handle()+1, vt.Handle())
	assert.Equal(t, vt, rtti.TypeOf[[]point]())

	again, err := rtti.Register[point]()
	require.NoError(t, err)
	assert.Equal(t, pt, again)
}

func TestCustomName(t *testing.T) {
	reset(t)
	ft, err := rtti.Register[MyType](rtti.WithName("Foo"))
	require.NoError(t, err)
	assert.Equal(t, "Foo", ft.Name())

	got, ok := rtti.FindType("Foo")
	require.True(t, ok)
	assert.Equal(t, ft, got)
	assert.Equal(t, "List<Foo>", rtti.TypeOf[[]MyType]().Name())
	assert.Equal(t, "Map<string, Foo>", rtti.TypeOf[map[string]MyType]().Name())
}

func TestFindType_NamespaceFallback(t *testing.T) {
	reset(t)
	mt := rtti.TypeOf[MyType]()
	assert.Equal(t, "rtti_test.MyType", mt.Name())

	for _, name := range []string{"rtti_test.MyType", "MyType", "a.b.MyType"} {
		got, ok := rtti.FindType(name)
		require.True(t, ok, "FindType(%q)", name)
		assert.Equal(t, mt, got, "FindType(%q)", name)
	}
	_, ok := rtti.FindType("a.b.Missing")
	assert.False(t, ok)
}

func TestTypesAndHandles(t *testing.T) {
	reset(t)
	types := rtti.Types()
	require.Len(t, types, 2*len(registry.Builtins()))
	for i, ty := range types {
		got, ok := rtti.TypeByHandle(ty.Handle())
		require.True(t, ok)
		assert.Equal(t, ty, got)
		assert.EqualValues(t, i, ty.Handle())
	}
	_, ok := rtti.TypeByHandle(0xFFFE)
	assert.False(t, ok)

	var null rtti.Type
	assert.True(t, null.IsNull())
	assert.Equal(t, "", null.Name())
	assert.Equal(t, "<null>", null.String())
	assert.True(t, rtti.TypeFor(nil).IsNull())
}

func TestAnnotations(t *testing.T) {
	reset(t)
	pt, err := rtti.Register[point](rtti.WithAnnotation(note{"origin"}))
	require.NoError(t, err)
	n, ok := rtti.AnnotationOf[note](pt)
	require.True(t, ok)
	assert.Equal(t, "origin", n.Text)

	_, ok = rtti.AnnotationOf[int](pt)
	assert.False(t, ok)
	assert.Error(t, rtti.Annotate(pt, note{"again"}))
}

func TestSetConfig_RebuildsUnpinnedRegistry(t *testing.T) {
	reset(t)
	ft, err := rtti.Register[MyType](rtti.WithName("Foo"), rtti.WithAnnotation(note{"kept"}))
	require.NoError(t, err)
	pt := rtti.TypeOf[point]()
	require.NoError(t, rtti.Rename(pt, "geo.Point"))
	before := rtti.Registry()

	cfg := config.NewConfig(config.WithLogLevel("error"))
	rtti.SetConfig(cfg)
	require.NotSame(t, before, rtti.Registry())
	assert.Equal(t, "error", rtti.Config().LogLevel)

	nt, ok := rtti.FindType("Foo")
	require.True(t, ok)
	assert.NotEqual(t, ft, nt, "the rebuilt registry holds new descriptors")
	assert.True(t, ft.StructurallyEqual(nt))
	n, ok := rtti.AnnotationOf[note](nt)
	require.True(t, ok)
	assert.Equal(t, "kept", n.Text)

	_, ok = rtti.FindType("geo.Point")
	assert.True(t, ok)

	old := before.Entries()
	for i := range registry.Builtins() {
		got, ok := rtti.TypeByHandle(old[i].Descriptor.Handle())
		require.True(t, ok)
		assert.True(t, got.Descriptor().StructurallyEqual(old[i].Descriptor))
	}
	rtti.SetConfig(config.DefaultConfig())
}

func TestSetRegistry_Pins(t *testing.T) {
	reset(t)
	reg := registry.New(config.DefaultConfig())
	rtti.SetRegistry(reg)
	assert.True(t, rtti.IsRegistryPinned())

	rtti.SetConfig(config.NewConfig(config.WithStrict(true)))
	assert.Same(t, reg, rtti.Registry())
	assert.True(t, rtti.Config().Strict)

	rtti.UnpinRegistry()
	assert.False(t, rtti.IsRegistryPinned())
	rtti.SetConfig(config.DefaultConfig())
	assert.NotSame(t, reg, rtti.Registry())

	rtti.SetRegistry(nil)
	assert.False(t, rtti.IsRegistryPinned())
}

func TestEncodingNames(t *testing.T) {
	for _, enc := range []apis.Encoding{apis.Binary, apis.String, apis.XML} {
		got, err := apis.ParseEncoding(enc.String())
		require.NoError(t, err)
		assert.Equal(t, enc, got)
	}
}
