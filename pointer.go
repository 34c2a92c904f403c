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
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/typeinfo"
	"dirpx.dev/rtti/xmlnode"
)

var (
	// ErrIndexOutOfRange is returned for vector indices past the end.
	ErrIndexOutOfRange = errors.New("rtti: vector index out of range")
	// ErrElementProxy is returned when taking the address of an element of
	// a vector whose elements are not addressable (BitVector and other
	// Get/Set vectors). Use the vector's own accessors instead.
	ErrElementProxy = errors.New("rtti: vector elements are not addressable")
)

// XMLRoot names the root element written by Serialize for the XML
// encoding.
const XMLRoot = "value"

// ConstPointer is a read-only type-erased pointer: an address and the type
// of the value stored there.
type ConstPointer struct {
	t    Type
	addr unsafe.Pointer
}

// Pointer is a mutable type-erased pointer.
type Pointer struct {
	ConstPointer
}

// Erased is satisfied by both pointer kinds.
type Erased interface {
	ConstPointer | Pointer
	Type() Type
	Addr() unsafe.Pointer
}

// NewPointer wraps addr, which must point to a value of type t.
func NewPointer(t Type, addr unsafe.Pointer) Pointer {
	return Pointer{ConstPointer{t: t, addr: addr}}
}

// PointerTo wraps v, registering T if needed.
func PointerTo[T any](v *T) Pointer {
	return NewPointer(TypeOf[T](), unsafe.Pointer(v))
}

// ConstPointerTo wraps v read-only, registering T if needed.
func ConstPointerTo[T any](v *T) ConstPointer {
	return ConstPointer{t: TypeOf[T](), addr: unsafe.Pointer(v)}
}

// Get returns p as *T after checking that p holds a T. A null pointer
// yields (nil, nil).
func Get[T any, P Erased](p P) (*T, error) {
	t, addr := p.Type(), p.Addr()
	if addr == nil {
		return nil, nil
	}
	if t.GoType() != reflect.TypeOf((*T)(nil)).Elem() {
		return nil, fmt.Errorf("%w: pointer holds %s, not %v", typeinfo.ErrTypeMismatch, t, reflect.TypeOf((*T)(nil)).Elem())
	}
	return (*T)(addr), nil
}

// GetUnchecked reinterprets p as *T without checking its type.
func GetUnchecked[T any, P Erased](p P) *T {
	return (*T)(p.Addr())
}

// Type returns the type of the pointee.
func (p ConstPointer) Type() Type { return p.t }

// Addr returns the raw address.
func (p ConstPointer) Addr() unsafe.Pointer { return p.addr }

// IsNull reports whether p has no address or no type.
func (p ConstPointer) IsNull() bool { return p.addr == nil || p.t.d == nil }

// Const returns p as a read-only pointer.
func (p Pointer) Const() ConstPointer { return p.ConstPointer }

func (p ConstPointer) check() error {
	if p.IsNull() {
		return typeinfo.ErrNullPointer
	}
	return nil
}

// Equals reports whether both pointers hold the same type and equal
// values. Two null pointers are equal.
func (p ConstPointer) Equals(o ConstPointer) bool {
	if p.IsNull() || o.IsNull() {
		return p.IsNull() && o.IsNull()
	}
	if p.t != o.t {
		return false
	}
	return p.t.d.Equals(p.addr, o.addr)
}

// EqualsUnderlying compares values whose types share the same underlying
// type, using that type's equality.
func (p ConstPointer) EqualsUnderlying(o ConstPointer) bool {
	if p.IsNull() || o.IsNull() {
		return p.IsNull() && o.IsNull()
	}
	if p.t == o.t {
		return p.t.d.Equals(p.addr, o.addr)
	}
	b := p.t.base()
	if b == nil || b != o.t.base() {
		return false
	}
	return b.Equals(p.addr, o.addr)
}

// DeepCopyFrom replaces the pointee with a deep copy of src. Both pointers
// must be non-null and share the same underlying type.
func (p Pointer) DeepCopyFrom(src ConstPointer) error {
	if err := p.check(); err != nil {
		return err
	}
	if err := src.check(); err != nil {
		return err
	}
	if p.t == src.t {
		return p.t.d.DeepCopy(p.addr, src.addr)
	}
	b := p.t.base()
	if b == nil || b != src.t.base() {
		return fmt.Errorf("%w: cannot copy %s into %s", typeinfo.ErrTypeMismatch, src.t, p.t)
	}
	return b.DeepCopy(p.addr, src.addr)
}

// SerializeBinary writes the pointee to w.
func (p ConstPointer) SerializeBinary(w *stream.OutputStream) error {
	if err := p.check(); err != nil {
		return err
	}
	return p.t.d.SerializeBinary(w, p.addr)
}

// SerializeString writes the pointee to w.
func (p ConstPointer) SerializeString(w *stream.StringOutputStream) error {
	if err := p.check(); err != nil {
		return err
	}
	return p.t.d.SerializeString(w, p.addr)
}

// SerializeXML writes the pointee into n.
func (p ConstPointer) SerializeXML(n *xmlnode.Node) error {
	if err := p.check(); err != nil {
		return err
	}
	return p.t.d.SerializeXML(n, p.addr)
}

// Serialize writes the pointee to a binary stream in the given encoding.
// String output is written as a length-prefixed string. XML output is
// rendered as its own document with an XMLRoot element and written as
// length-prefixed bytes.
func (p ConstPointer) Serialize(w *stream.OutputStream, enc apis.Encoding) error {
	switch enc {
	case apis.Binary:
		return p.SerializeBinary(w)
	case apis.String:
		s := stream.NewStringOutputStream()
		if err := p.SerializeString(s); err != nil {
			return err
		}
		w.WriteString(s.String())
		return nil
	case apis.XML:
		doc := xmlnode.NewDocument(XMLRoot)
		if err := p.SerializeXML(doc.Root()); err != nil {
			return err
		}
		var buf bytes.Buffer
		if _, err := doc.WriteTo(&buf); err != nil {
			return err
		}
		w.WriteBytes(buf.Bytes())
		return nil
	default:
		return fmt.Errorf("%w: %s", typeinfo.ErrUnsupportedEncoding, enc)
	}
}

// DeserializeBinary reads the pointee from r.
func (p Pointer) DeserializeBinary(r *stream.InputStream) error {
	if err := p.check(); err != nil {
		return err
	}
	return p.t.d.DeserializeBinary(r, p.addr)
}

// DeserializeString reads the pointee from r.
func (p Pointer) DeserializeString(r *stream.StringInputStream) error {
	if err := p.check(); err != nil {
		return err
	}
	return p.t.d.DeserializeString(r, p.addr)
}

// DeserializeXML reads the pointee from n.
func (p Pointer) DeserializeXML(n *xmlnode.Node) error {
	if err := p.check(); err != nil {
		return err
	}
	return p.t.d.DeserializeXML(n, p.addr)
}

// Deserialize reads what Serialize wrote in the same encoding.
func (p Pointer) Deserialize(r *stream.InputStream, enc apis.Encoding) error {
	switch enc {
	case apis.Binary:
		return p.DeserializeBinary(r)
	case apis.String:
		s, err := r.ReadString()
		if err != nil {
			return err
		}
		return p.DeserializeString(stream.NewStringInputStream(s))
	case apis.XML:
		b, err := r.ReadBytes()
		if err != nil {
			return err
		}
		doc, err := xmlnode.Parse(bytes.NewReader(b))
		if err != nil {
			return err
		}
		return p.DeserializeXML(doc.Root())
	default:
		return fmt.Errorf("%w: %s", typeinfo.ErrUnsupportedEncoding, enc)
	}
}

// VectorSize returns the number of elements. A non-vector value counts as
// a single element; a null pointer has none.
func (p ConstPointer) VectorSize() int {
	if p.IsNull() {
		return 0
	}
	if !p.t.d.IsVector() {
		return 1
	}
	return p.t.d.VectorSize(p.addr)
}

// VectorElement returns a pointer to element i. A non-vector value is its
// own element 0.
func (p ConstPointer) VectorElement(i int) (ConstPointer, error) {
	if err := p.check(); err != nil {
		return ConstPointer{}, err
	}
	d := p.t.d
	if !d.IsVector() {
		if i != 0 {
			return ConstPointer{}, fmt.Errorf("%w: %d of 1", ErrIndexOutOfRange, i)
		}
		return p, nil
	}
	if d.Traits().Has(typeinfo.TraitElementProxy) {
		return ConstPointer{}, fmt.Errorf("%w: %s", ErrElementProxy, p.t)
	}
	e := d.VectorElement(p.addr, i)
	if e == nil {
		return ConstPointer{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, d.VectorSize(p.addr))
	}
	return ConstPointer{t: Type{d: d.Element()}, addr: e}, nil
}

// VectorElement returns a mutable pointer to element i.
func (p Pointer) VectorElement(i int) (Pointer, error) {
	e, err := p.ConstPointer.VectorElement(i)
	return Pointer{e}, err
}

// ResizeVector changes the number of elements. A non-vector value accepts
// a size of 1 and rejects anything else with typeinfo.ErrInvalidSize.
func (p Pointer) ResizeVector(n int) error {
	if err := p.check(); err != nil {
		return err
	}
	if !p.t.d.IsVector() {
		if n != 1 {
			return fmt.Errorf("%w: %s is not a vector, size %d", typeinfo.ErrInvalidSize, p.t, n)
		}
		return nil
	}
	return p.t.d.ResizeVector(p.addr, n)
}

// String implements fmt.Stringer.
func (p ConstPointer) String() string {
	return fmt.Sprintf("%s@%p", p.t, p.addr)
}
