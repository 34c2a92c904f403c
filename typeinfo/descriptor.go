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

// Package typeinfo holds the data model of registered types: traits,
// operation groups, descriptors and the identity shared between a type and
// its paired vector type.
//
// A Descriptor is built in two steps. New creates it with its traits and
// shared info; Install attaches the synthesized operation table exactly once.
// Registries publish descriptors only after Install, so readers never
// observe a half-built table.
package typeinfo

import (
	"bytes"
	"fmt"
	"reflect"
	"unsafe"

	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/xmlnode"
)

// Descriptor is the runtime record of one registered type.
type Descriptor struct {
	rtype  reflect.Type
	traits Traits
	class  Classification
	shared *SharedInfo
	paired bool
	elem   *Descriptor

	installed bool
	shape     Shape
	table     Table
}

// New creates an uninstalled descriptor.
func New(t reflect.Type, traits Traits, class Classification, shared *SharedInfo) *Descriptor {
	return &Descriptor{rtype: t, traits: traits, class: class, shared: shared}
}

// NewPaired creates the descriptor of []T sharing T's identity.
func NewPaired(t reflect.Type, traits Traits, class Classification, shared *SharedInfo) *Descriptor {
	return &Descriptor{rtype: t, traits: traits, class: class, shared: shared, paired: true}
}

// SetElement links the element descriptor of a vector type. It must be
// called before Install.
func (d *Descriptor) SetElement(e *Descriptor) { d.elem = e }

// Install attaches the operation table. It succeeds once.
func (d *Descriptor) Install(t Table) error {
	if d.installed {
		return fmt.Errorf("%w: %s", ErrAlreadyInstalled, d.Name())
	}
	t.normalize()
	d.table = t
	d.shape = t.shape()
	if !d.paired && d.shared.enum != nil {
		d.shape |= GroupEnum
	}
	d.installed = true
	return nil
}

// Installed reports whether Install has run.
func (d *Descriptor) Installed() bool { return d.installed }

// Type returns the Go type.
func (d *Descriptor) Type() reflect.Type { return d.rtype }

// Traits returns the capability bitmask.
func (d *Descriptor) Traits() Traits { return d.traits }

// Class returns the classification.
func (d *Descriptor) Class() Classification { return d.class }

// Size returns the size of a value in bytes.
func (d *Descriptor) Size() uintptr { return d.rtype.Size() }

// Shared returns the identity shared with the paired type.
func (d *Descriptor) Shared() *SharedInfo { return d.shared }

// Paired reports whether d is the []T paired with a plain type.
func (d *Descriptor) Paired() bool { return d.paired }

// Element returns the element descriptor of a vector, or nil.
func (d *Descriptor) Element() *Descriptor { return d.elem }

// Shape returns the group bitmask.
func (d *Descriptor) Shape() Shape { return d.shape }

// Table returns a copy of the operation table.
func (d *Descriptor) Table() Table { return d.table }

// Strategy returns the label of the strategy selected for op.
func (d *Descriptor) Strategy(op Op) string {
	if op >= NumOps {
		return ""
	}
	return d.table.Labels[op]
}

// Name returns the canonical name. Paired vectors are named List<T>.
func (d *Descriptor) Name() string {
	if d.paired {
		return "List<" + d.shared.Name() + ">"
	}
	return d.shared.Name()
}

// LookupName returns the demangled Go type text.
func (d *Descriptor) LookupName() string {
	if d.paired {
		return "[]" + d.shared.LookupName()
	}
	return d.shared.LookupName()
}

// Handle returns the registry handle, or InvalidHandle when unregistered.
func (d *Descriptor) Handle() Handle {
	if d.paired {
		return d.shared.vectorHandle
	}
	return d.shared.handle
}

// Underlying returns the descriptor this type delegates to, if any.
func (d *Descriptor) Underlying() *Descriptor {
	if d.paired {
		return nil
	}
	return d.shared.underlying
}

// Enum returns the enum table, if any.
func (d *Descriptor) Enum() *EnumInfo {
	if d.paired {
		return nil
	}
	return d.shared.enum
}

// IsVector reports whether d has a vector group.
func (d *Descriptor) IsVector() bool { return d.table.Vector != nil }

// StructurallyEqual reports whether two descriptors, possibly from
// different registries, describe the same type the same way.
func (d *Descriptor) StructurallyEqual(o *Descriptor) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	return d.rtype == o.rtype &&
		d.traits == o.traits &&
		d.class == o.class &&
		d.shape == o.shape &&
		d.Size() == o.Size()
}

// String implements fmt.Stringer.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s#%d(%s)", d.Name(), d.Handle(), d.shape)
}

func (d *Descriptor) value(p unsafe.Pointer) reflect.Value {
	return reflect.NewAt(d.rtype, p).Elem()
}

func (d *Descriptor) bytes(p unsafe.Pointer) []byte {
	return unsafe.Slice((*byte)(p), d.rtype.Size())
}

// Zero clears the storage at p.
func (d *Descriptor) Zero(p unsafe.Pointer) {
	if d.traits.Has(TraitBitwiseCopy) {
		clear(d.bytes(p))
		return
	}
	d.value(p).SetZero()
}

// Construct default-constructs a value in zeroed or dirty storage at p.
func (d *Descriptor) Construct(p unsafe.Pointer) {
	if b := d.table.Binary; b != nil && b.Construct != nil {
		b.Construct(p)
		return
	}
	d.Zero(p)
}

// Destruct releases the value at p.
func (d *Descriptor) Destruct(p unsafe.Pointer) {
	if b := d.table.Binary; b != nil && b.Destruct != nil {
		b.Destruct(p)
	}
}

// DeepCopy copies the value at src into dst.
func (d *Descriptor) DeepCopy(dst, src unsafe.Pointer) error {
	if dst == src {
		return nil
	}
	if b := d.table.Binary; b != nil && b.DeepCopy != nil {
		return b.DeepCopy(dst, src)
	}
	if d.traits.Has(TraitBitwiseCopy) {
		copy(d.bytes(dst), d.bytes(src))
		return nil
	}
	d.value(dst).Set(d.value(src))
	return nil
}

// Equals compares the values at a and b.
func (d *Descriptor) Equals(a, b unsafe.Pointer) bool {
	if a == b {
		return true
	}
	if o := d.table.Binary; o != nil && o.Equals != nil {
		return o.Equals(a, b)
	}
	if d.traits.Has(TraitByteComparable) {
		return bytes.Equal(d.bytes(a), d.bytes(b))
	}
	if d.traits.Has(TraitComparable) {
		return d.value(a).Equal(d.value(b))
	}
	return false
}

func (d *Descriptor) unsupported(enc string) error {
	return fmt.Errorf("%w: %s has no %s channel", ErrUnsupportedEncoding, d.Name(), enc)
}

// SerializeBinary writes the value at p to w.
func (d *Descriptor) SerializeBinary(w *stream.OutputStream, p unsafe.Pointer) error {
	if s := d.table.BinarySerialization; s != nil {
		return s.Serialize(w, p)
	}
	return d.unsupported("binary")
}

// DeserializeBinary reads a value from r into p.
func (d *Descriptor) DeserializeBinary(r *stream.InputStream, p unsafe.Pointer) error {
	if s := d.table.BinarySerialization; s != nil {
		return s.Deserialize(r, p)
	}
	return d.unsupported("binary")
}

// SerializeString writes the value at p to w.
func (d *Descriptor) SerializeString(w *stream.StringOutputStream, p unsafe.Pointer) error {
	if s := d.table.OtherSerialization; s != nil && s.SerializeString != nil {
		return s.SerializeString(w, p)
	}
	return d.unsupported("string")
}

// DeserializeString reads a value from r into p.
func (d *Descriptor) DeserializeString(r *stream.StringInputStream, p unsafe.Pointer) error {
	if s := d.table.OtherSerialization; s != nil && s.DeserializeString != nil {
		return s.DeserializeString(r, p)
	}
	return d.unsupported("string")
}

// SerializeXML writes the value at p into n.
func (d *Descriptor) SerializeXML(n *xmlnode.Node, p unsafe.Pointer) error {
	if s := d.table.OtherSerialization; s != nil && s.SerializeXML != nil {
		return s.SerializeXML(n, p)
	}
	return d.unsupported("xml")
}

// DeserializeXML reads a value from n into p.
func (d *Descriptor) DeserializeXML(n *xmlnode.Node, p unsafe.Pointer) error {
	if s := d.table.OtherSerialization; s != nil && s.DeserializeXML != nil {
		return s.DeserializeXML(n, p)
	}
	return d.unsupported("xml")
}

// VectorElement returns the address of element i, or nil.
func (d *Descriptor) VectorElement(p unsafe.Pointer, i int) unsafe.Pointer {
	if v := d.table.Vector; v != nil && v.Element != nil {
		return v.Element(p, i)
	}
	return nil
}

// VectorSize returns the number of elements. Non-vectors report zero.
func (d *Descriptor) VectorSize(p unsafe.Pointer) int {
	if v := d.table.Vector; v != nil {
		return v.Size(p)
	}
	return 0
}

// ResizeVector changes the number of elements.
func (d *Descriptor) ResizeVector(p unsafe.Pointer, n int) error {
	v := d.table.Vector
	if v == nil || v.Resize == nil {
		return fmt.Errorf("%w: %s", ErrNotVector, d.Name())
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	return v.Resize(p, n)
}
