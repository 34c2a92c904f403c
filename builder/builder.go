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

// Package builder turns a Go type into a descriptor: it probes the traits,
// classifies the type and, once the component types are available,
// synthesizes and installs the operation table.
package builder

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/synth"
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

var (
	// ErrNilType is returned when describing a nil reflect.Type.
	ErrNilType = errors.New("rtti(builder): nil type")
	// ErrInvalidUnderlying is returned when the underlying type option does
	// not share the memory layout of the type.
	ErrInvalidUnderlying = errors.New("rtti(builder): underlying type is not layout compatible")
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is stateless; all caching happens in the probe layer.
type builder struct{}

// Probe computes the trait bitmask of t under the given options.
func Probe(t reflect.Type, spec typeinfo.Spec) typeinfo.Traits {
	var tr typeinfo.Traits
	set := func(flag typeinfo.Traits, on bool) {
		if on {
			tr |= flag
		}
	}
	enum := uref.IsEnum(t, spec)
	set(typeinfo.TraitBinarySerializable, uref.IsBinarySerializable(t))
	set(typeinfo.TraitStringSerializable, uref.IsStringSerializable(t) || enum)
	set(typeinfo.TraitXMLSerializable, uref.IsXMLSerializable(t) || enum)
	set(typeinfo.TraitZeroInit, uref.IsZeroInit(t, spec))
	set(typeinfo.TraitBitwiseCopy, uref.IsBitwiseCopyable(t))
	set(typeinfo.TraitValueCopy, uref.IsValueCopyable(t))
	set(typeinfo.TraitComparable, uref.IsEqualityComparable(t))
	set(typeinfo.TraitByteComparable, uref.IsByteComparable(t))
	set(typeinfo.TraitEnum, enum)
	set(typeinfo.TraitHasUnderlying, underlyingType(t, spec) != nil)
	if v, ok := uref.VectorOf(t); ok {
		tr |= typeinfo.TraitVector
		set(typeinfo.TraitElementProxy, v.Proxy)
	}
	return tr
}

// Classify returns the coarse kind of t.
func Classify(t reflect.Type, traits typeinfo.Traits) typeinfo.Classification {
	switch {
	case traits.Has(typeinfo.TraitEnum):
		return typeinfo.ClassEnum
	case traits.Has(typeinfo.TraitVector):
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Pointer {
			return typeinfo.ClassPointerList
		}
		return typeinfo.ClassList
	case t.Kind() == reflect.Array:
		return typeinfo.ClassArray
	case t.Kind() == reflect.Map:
		return typeinfo.ClassMap
	}
	channels := typeinfo.TraitBinarySerializable | typeinfo.TraitStringSerializable | typeinfo.TraitXMLSerializable
	if traits&channels == 0 {
		return typeinfo.ClassRPCOnly
	}
	if t.Kind() == reflect.Struct {
		return typeinfo.ClassTuple
	}
	return typeinfo.ClassPlain
}

func underlyingType(t reflect.Type, spec typeinfo.Spec) reflect.Type {
	if spec.Underlying != nil {
		return spec.Underlying
	}
	return uref.BasicUnderlying(t)
}

// Describe probes t and returns an uninstalled descriptor.
func (b *builder) Describe(t reflect.Type, spec typeinfo.Spec, shared *typeinfo.SharedInfo) (*typeinfo.Descriptor, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if u := spec.Underlying; u != nil && (u.Size() != t.Size() || !t.ConvertibleTo(u)) {
		return nil, fmt.Errorf("%w: %v as %v", ErrInvalidUnderlying, t, u)
	}
	traits := Probe(t, spec)
	if traits.Has(typeinfo.TraitEnum) && shared.Enum() == nil {
		names := spec.EnumNames
		if len(names) == 0 {
			names, _ = uref.EnumStrings(t)
		}
		e, err := typeinfo.NewEnumInfo(names, spec.EnumValues)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", t, err)
		}
		shared.SetEnum(e)
	}
	return typeinfo.New(t, traits, Classify(t, traits), shared), nil
}

// DescribePaired returns the uninstalled descriptor of []T sharing T's
// identity.
func (b *builder) DescribePaired(elem *typeinfo.Descriptor) *typeinfo.Descriptor {
	t := reflect.SliceOf(elem.Type())
	traits := Probe(t, typeinfo.Spec{})
	return typeinfo.NewPaired(t, traits, Classify(t, traits), elem.Shared())
}

// Complete links the underlying descriptor, synthesizes the table and
// installs it.
func (b *builder) Complete(d *typeinfo.Descriptor, spec typeinfo.Spec, src typeinfo.Source) error {
	if !d.Paired() {
		if ut := underlyingType(d.Type(), spec); ut != nil && d.Shared().Underlying() == nil {
			u, err := src.Resolve(ut)
			if err != nil {
				return fmt.Errorf("rtti(builder): underlying of %v: %w", d.Type(), err)
			}
			d.Shared().LinkUnderlying(u)
		}
	}
	table, err := synth.Synthesize(d, spec, src)
	if err != nil {
		return err
	}
	return d.Install(table)
}

// Components lists the types whose descriptors d's operations use.
func (b *builder) Components(t reflect.Type, spec typeinfo.Spec) []reflect.Type {
	var out []reflect.Type
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		out = append(out, t.Elem())
	case reflect.Map:
		out = append(out, t.Key(), t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			out = append(out, t.Field(i).Type)
		}
		if v, ok := uref.VectorOf(t); ok {
			out = append(out, v.Elem)
		}
	}
	if ut := underlyingType(t, spec); ut != nil {
		out = append(out, ut)
	}
	return out
}
