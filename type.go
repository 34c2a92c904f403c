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

package rtti

import (
	"fmt"
	"reflect"

	"dirpx.dev/rtti/internal/diag"
	"dirpx.dev/rtti/typeinfo"
)

// Type identifies a registered type. The zero Type is the null type: it
// has no descriptor, reports InvalidHandle and supports no operation.
// Types compare with ==.
type Type struct {
	d *typeinfo.Descriptor
}

// Register registers T in the global registry and returns its Type.
// Registering a type twice returns the same Type.
func Register[T any](opts ...Option) (Type, error) {
	return RegisterType(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// RegisterType is Register for a reflect.Type.
func RegisterType(t reflect.Type, opts ...Option) (Type, error) {
	d, err := Registry().Register(t, specOf(opts))
	if err != nil {
		return Type{}, err
	}
	return Type{d: d}, nil
}

// MustRegister is Register that panics on error.
func MustRegister[T any](opts ...Option) Type {
	t, err := Register[T](opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// TypeOf returns the Type of T, registering T without options if needed.
func TypeOf[T any]() Type {
	return TypeFor(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeFor returns the Type of t, registering t without options if needed.
// It returns the null type for types that cannot be registered.
func TypeFor(t reflect.Type) Type {
	reg := Registry()
	if d, ok := reg.Lookup(t); ok {
		return Type{d: d}
	}
	d, err := reg.Register(t, typeinfo.Spec{})
	if err != nil {
		diag.Logger().Debug().Err(err).Msg("type not registered")
		return Type{}
	}
	return Type{d: d}
}

// FindType resolves a name: canonical and additional names first, then a
// unique namespace suffix, then the name with leading namespaces removed,
// then Go type text such as "[]int".
func FindType(name string) (Type, bool) {
	d, ok := Registry().Find(name)
	return Type{d: d}, ok
}

// TypeByHandle returns the Type with handle h.
func TypeByHandle(h typeinfo.Handle) (Type, bool) {
	d, ok := Registry().ByHandle(h)
	return Type{d: d}, ok
}

// Types lists the registered types in handle order.
func Types() []Type {
	entries := Registry().Entries()
	out := make([]Type, len(entries))
	for i, e := range entries {
		out[i] = Type{d: e.Descriptor}
	}
	return out
}

// Rename changes the canonical name of t once.
func Rename(t Type, name string) error {
	if t.d == nil {
		return typeinfo.ErrNullPointer
	}
	return Registry().Rename(t.d, name)
}

// Annotate attaches a to t. At most one annotation per dynamic type.
func Annotate(t Type, a any) error {
	if t.d == nil {
		return typeinfo.ErrNullPointer
	}
	return Registry().Annotate(t.d, a)
}

// AnnotationOf returns the annotation of type A attached to t.
func AnnotationOf[A any](t Type) (A, bool) {
	var zero A
	if t.d == nil {
		return zero, false
	}
	a, ok := t.d.Shared().Annotation(reflect.TypeOf((*A)(nil)).Elem())
	if !ok {
		return zero, false
	}
	return a.(A), true
}

// IsNull reports whether t is the null type.
func (t Type) IsNull() bool { return t.d == nil }

// Descriptor returns the underlying descriptor, nil for the null type.
func (t Type) Descriptor() *typeinfo.Descriptor { return t.d }

// Handle returns the registry handle.
func (t Type) Handle() typeinfo.Handle {
	if t.d == nil {
		return typeinfo.InvalidHandle
	}
	return t.d.Handle()
}

// Name returns the canonical name, "" for the null type.
func (t Type) Name() string {
	if t.d == nil {
		return ""
	}
	return t.d.Name()
}

// GoType returns the reflect.Type, nil for the null type.
func (t Type) GoType() reflect.Type {
	if t.d == nil {
		return nil
	}
	return t.d.Type()
}

// Size returns the size of a value in bytes.
func (t Type) Size() uintptr {
	if t.d == nil {
		return 0
	}
	return t.d.Size()
}

// Traits returns the capability bitmask.
func (t Type) Traits() typeinfo.Traits {
	if t.d == nil {
		return 0
	}
	return t.d.Traits()
}

// Shape returns the operation group mask.
func (t Type) Shape() typeinfo.Shape {
	if t.d == nil {
		return 0
	}
	return t.d.Shape()
}

// IsVector reports whether t has vector operations.
func (t Type) IsVector() bool { return t.d != nil && t.d.IsVector() }

// Element returns the element type of a vector.
func (t Type) Element() Type {
	if t.d == nil {
		return Type{}
	}
	return Type{d: t.d.Element()}
}

// Vector returns the paired []T type, if registered.
func (t Type) Vector() Type {
	if t.d == nil || t.d.Paired() {
		return Type{}
	}
	return Type{d: t.d.Shared().Vector()}
}

// Underlying returns the type t delegates to, if any.
func (t Type) Underlying() Type {
	if t.d == nil {
		return Type{}
	}
	return Type{d: t.d.Underlying()}
}

// Enum returns the enum table, if any.
func (t Type) Enum() *typeinfo.EnumInfo {
	if t.d == nil {
		return nil
	}
	return t.d.Enum()
}

// StructurallyEqual reports whether t and o describe the same Go type the
// same way, even when they come from different registries.
func (t Type) StructurallyEqual(o Type) bool {
	return t.d.StructurallyEqual(o.d)
}

// String implements fmt.Stringer.
func (t Type) String() string {
	if t.d == nil {
		return "<null>"
	}
	return fmt.Sprintf("%s#%d", t.d.Name(), t.d.Handle())
}

// base follows the underlying chain to the type that owns the storage
// layout.
func (t Type) base() *typeinfo.Descriptor {
	d := t.d
	for d != nil && d.Underlying() != nil {
		d = d.Underlying()
	}
	return d
}
