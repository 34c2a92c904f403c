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

package synth

import (
	"bytes"
	"reflect"
	"unsafe"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

type (
	constructFn = func(p unsafe.Pointer)
	destructFn  = func(p unsafe.Pointer)
	copyFn      = func(dst, src unsafe.Pointer) error
	equalsFn    = func(a, b unsafe.Pointer) bool
)

var constructChain = []candidate[constructFn]{
	{"factory", (*plan).constructFactory},
	{"initializer", (*plan).constructInitializer},
	{"enum-first", (*plan).constructEnumFirst},
	{"members", (*plan).constructMembers},
	{"zero-fill", func(*plan) (constructFn, bool, error) { return nil, true, nil }},
}

func (p *plan) constructFactory() (constructFn, bool, error) {
	return p.spec.Factory, p.spec.Factory != nil, nil
}

func (p *plan) constructInitializer() (constructFn, bool, error) {
	if !uref.HasInitializer(p.t) {
		return nil, false, nil
	}
	d, t := p.d, p.t
	return func(ptr unsafe.Pointer) {
		d.Zero(ptr)
		reflect.NewAt(t, ptr).Interface().(apis.DefaultInitializer).InitDefault()
	}, true, nil
}

func (p *plan) constructEnumFirst() (constructFn, bool, error) {
	e := p.d.Enum()
	if e == nil || e.First() == 0 {
		return nil, false, nil
	}
	t, first := p.t, e.First()
	return func(ptr unsafe.Pointer) { setInteger(value(t, ptr), first) }, true, nil
}

// constructMembers constructs the fields or array elements that are not
// zero-initialized.
func (p *plan) constructMembers() (constructFn, bool, error) {
	var members []field
	switch p.t.Kind() {
	case reflect.Struct:
		fields, err := p.fields()
		if err != nil {
			return nil, false, err
		}
		for _, f := range fields {
			if !f.d.Traits().Has(typeinfo.TraitZeroInit) {
				members = append(members, f)
			}
		}
	case reflect.Array:
		if !p.seq.elem.Traits().Has(typeinfo.TraitZeroInit) {
			size := p.t.Elem().Size()
			for i := 0; i < p.t.Len(); i++ {
				members = append(members, field{off: uintptr(i) * size, d: p.seq.elem})
			}
		}
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	d := p.d
	return func(ptr unsafe.Pointer) {
		d.Zero(ptr)
		for _, m := range members {
			m.d.Construct(unsafe.Add(ptr, m.off))
		}
	}, true, nil
}

var destructChain = []candidate[destructFn]{
	{"destructor", (*plan).destructMethod},
	{"members", (*plan).destructMembers},
	{"trivial", (*plan).destructTrivial},
	{"clear", (*plan).destructClear},
}

func (p *plan) destructMethod() (destructFn, bool, error) {
	if !uref.HasDestructor(p.t) {
		return nil, false, nil
	}
	d, t := p.d, p.t
	return func(ptr unsafe.Pointer) {
		reflect.NewAt(t, ptr).Interface().(apis.Destructor).Destroy()
		d.Zero(ptr)
	}, true, nil
}

// destructMembers runs the destructors of owned fields and elements.
func (p *plan) destructMembers() (destructFn, bool, error) {
	if !uref.HasNestedDestructor(p.t) {
		return nil, false, nil
	}
	d := p.d
	if s := p.seq; s != nil {
		return func(ptr unsafe.Pointer) {
			for i, n := 0, s.size(ptr); i < n; i++ {
				if e := s.at(ptr, i); e != nil {
					s.elem.Destruct(e)
				}
			}
			d.Zero(ptr)
		}, true, nil
	}
	fields, err := p.fields()
	if err != nil {
		return nil, false, err
	}
	var owned []field
	for _, f := range fields {
		if uref.HasNestedDestructor(f.d.Type()) {
			owned = append(owned, f)
		}
	}
	return func(ptr unsafe.Pointer) {
		for _, f := range owned {
			f.d.Destruct(unsafe.Add(ptr, f.off))
		}
		d.Zero(ptr)
	}, true, nil
}

func (p *plan) destructTrivial() (destructFn, bool, error) {
	return nil, uref.IsValueCopyable(p.t), nil
}

func (p *plan) destructClear() (destructFn, bool, error) {
	return p.d.Zero, true, nil
}

var deepCopyChain = []candidate[copyFn]{
	{"container", (*plan).copyContainer},
	{"copy-from", (*plan).copyFromMethod},
	{"assign", (*plan).copyAssign},
	{"bitwise", (*plan).copyBitwise},
	{"serialize", (*plan).copySerialized},
	{"fields", (*plan).copyFields},
	{"shallow", func(*plan) (copyFn, bool, error) { return nil, true, nil }},
}

// copyContainer copies containers element by element into fresh storage, so
// the copy never aliases the source.
func (p *plan) copyContainer() (copyFn, bool, error) {
	if p.t.Kind() == reflect.Map {
		return p.copyMap()
	}
	s := p.seq
	if s == nil {
		return nil, false, nil
	}
	t, elem := p.t, s.elem
	bulk := elem.Traits().Has(typeinfo.TraitBitwiseCopy)
	switch s.kind {
	case seqSlice:
		return func(dst, src unsafe.Pointer) error {
			sv, dv := value(t, src), value(t, dst)
			if sv.IsNil() {
				dv.SetZero()
				return nil
			}
			n := sv.Len()
			fresh := reflect.MakeSlice(t, n, n)
			if bulk {
				reflect.Copy(fresh, sv)
				dv.Set(fresh)
				return nil
			}
			for i := 0; i < n; i++ {
				if err := elem.DeepCopy(fresh.Index(i).Addr().UnsafePointer(), sv.Index(i).Addr().UnsafePointer()); err != nil {
					return err
				}
			}
			dv.Set(fresh)
			return nil
		}, true, nil
	case seqArray:
		if bulk {
			size := t.Size()
			return func(dst, src unsafe.Pointer) error {
				copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
				return nil
			}, true, nil
		}
		n, size := t.Len(), t.Elem().Size()
		return func(dst, src unsafe.Pointer) error {
			for i := 0; i < n; i++ {
				off := uintptr(i) * size
				if err := elem.DeepCopy(unsafe.Add(dst, off), unsafe.Add(src, off)); err != nil {
					return err
				}
			}
			return nil
		}, true, nil
	}
	return func(dst, src unsafe.Pointer) error {
		n := s.size(src)
		if err := s.resize(dst, n); err != nil {
			return err
		}
		tmp := s.temp()
		for i := 0; i < n; i++ {
			if err := s.load(src, i, tmp); err != nil {
				return err
			}
			if err := s.store(dst, i, tmp); err != nil {
				return err
			}
		}
		return nil
	}, true, nil
}

func (p *plan) copyMap() (copyFn, bool, error) {
	kd, err := p.resolve(p.t.Key())
	if err != nil {
		return nil, false, err
	}
	vd, err := p.resolve(p.t.Elem())
	if err != nil {
		return nil, false, err
	}
	t := p.t
	// clone returns a deep copy of v through d.
	clone := func(d *typeinfo.Descriptor, v reflect.Value) (reflect.Value, error) {
		if d.Traits().Has(typeinfo.TraitValueCopy) {
			return v, nil
		}
		src := reflect.New(v.Type())
		src.Elem().Set(v)
		dst := reflect.New(v.Type())
		if err := d.DeepCopy(dst.UnsafePointer(), src.UnsafePointer()); err != nil {
			return reflect.Value{}, err
		}
		return dst.Elem(), nil
	}
	return func(dst, src unsafe.Pointer) error {
		sv, dv := value(t, src), value(t, dst)
		if sv.IsNil() {
			dv.SetZero()
			return nil
		}
		fresh := reflect.MakeMapWithSize(t, sv.Len())
		it := sv.MapRange()
		for it.Next() {
			k, err := clone(kd, it.Key())
			if err != nil {
				return err
			}
			v, err := clone(vd, it.Value())
			if err != nil {
				return err
			}
			fresh.SetMapIndex(k, v)
		}
		dv.Set(fresh)
		return nil
	}, true, nil
}

// methodArg builds the argument of a method taking T or *T.
func methodArg(t, in reflect.Type, ptr unsafe.Pointer) reflect.Value {
	if in == t {
		return value(t, ptr)
	}
	return reflect.NewAt(t, ptr)
}

func (p *plan) copyFromMethod() (copyFn, bool, error) {
	if !uref.HasCopyFromMethod(p.t) {
		return nil, false, nil
	}
	t := p.t
	m, _ := reflect.PointerTo(t).MethodByName("CopyFrom")
	idx, in, withErr := m.Index, m.Type.In(1), m.Type.NumOut() == 1
	return func(dst, src unsafe.Pointer) error {
		out := reflect.NewAt(t, dst).Method(idx).Call([]reflect.Value{methodArg(t, in, src)})
		if withErr && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}, true, nil
}

func (p *plan) copyAssign() (copyFn, bool, error) {
	return nil, p.traits.Has(typeinfo.TraitValueCopy) && !p.traits.Has(typeinfo.TraitBitwiseCopy), nil
}

func (p *plan) copyBitwise() (copyFn, bool, error) {
	return nil, p.traits.Has(typeinfo.TraitBitwiseCopy), nil
}

// copyFields deep-copies a struct field by field through each field's own
// descriptor. Value-copyable fields are assigned in place.
func (p *plan) copyFields() (copyFn, bool, error) {
	if p.t.Kind() != reflect.Struct {
		return nil, false, nil
	}
	fields, err := p.fields()
	if err != nil {
		return nil, false, err
	}
	return func(dst, src unsafe.Pointer) error {
		for _, f := range fields {
			if err := f.d.DeepCopy(unsafe.Add(dst, f.off), unsafe.Add(src, f.off)); err != nil {
				return err
			}
		}
		return nil
	}, true, nil
}

// copySerialized copies through a binary round trip.
func (p *plan) copySerialized() (copyFn, bool, error) {
	if !p.traits.Has(typeinfo.TraitBinarySerializable) {
		return nil, false, nil
	}
	d := p.d
	return func(dst, src unsafe.Pointer) error {
		w := stream.NewOutputStream(nil)
		if err := d.SerializeBinary(w, src); err != nil {
			return err
		}
		d.Destruct(dst)
		d.Construct(dst)
		return d.DeserializeBinary(stream.NewInputStream(w.Buffer()), dst)
	}, true, nil
}

var equalsChain = []candidate[equalsFn]{
	{"container", (*plan).equalsContainer},
	{"equal-method", (*plan).equalsMethod},
	{"bitwise", (*plan).equalsBitwise},
	{"==", (*plan).equalsOperator},
	{"serialized", (*plan).equalsSerialized},
	{"identity", func(*plan) (equalsFn, bool, error) {
		return func(a, b unsafe.Pointer) bool { return a == b }, true, nil
	}},
}

func (p *plan) equalsContainer() (equalsFn, bool, error) {
	if p.t.Kind() == reflect.Map {
		return p.equalsMap()
	}
	s := p.seq
	if s == nil {
		return nil, false, nil
	}
	t, elem := p.t, s.elem
	bulk := elem.Traits().Has(typeinfo.TraitByteComparable)
	switch {
	case s.kind == seqArray && bulk:
		size := t.Size()
		return func(a, b unsafe.Pointer) bool {
			return bytes.Equal(unsafe.Slice((*byte)(a), size), unsafe.Slice((*byte)(b), size))
		}, true, nil
	case s.kind == seqSlice && bulk:
		esize := t.Elem().Size()
		return func(a, b unsafe.Pointer) bool {
			av, bv := value(t, a), value(t, b)
			n := av.Len()
			if n != bv.Len() {
				return false
			}
			if n == 0 {
				return true
			}
			size := uintptr(n) * esize
			return bytes.Equal(unsafe.Slice((*byte)(av.UnsafePointer()), size), unsafe.Slice((*byte)(bv.UnsafePointer()), size))
		}, true, nil
	}
	return func(a, b unsafe.Pointer) bool {
		n := s.size(a)
		if n != s.size(b) {
			return false
		}
		if s.proxy {
			ta, tb := s.temp(), s.temp()
			for i := 0; i < n; i++ {
				if s.load(a, i, ta) != nil || s.load(b, i, tb) != nil || !elem.Equals(ta, tb) {
					return false
				}
			}
			return true
		}
		for i := 0; i < n; i++ {
			if !elem.Equals(s.at(a, i), s.at(b, i)) {
				return false
			}
		}
		return true
	}, true, nil
}

func (p *plan) equalsMap() (equalsFn, bool, error) {
	vd, err := p.resolve(p.t.Elem())
	if err != nil {
		return nil, false, err
	}
	t := p.t
	return func(a, b unsafe.Pointer) bool {
		av, bv := value(t, a), value(t, b)
		if av.Len() != bv.Len() {
			return false
		}
		ta, tb := reflect.New(t.Elem()), reflect.New(t.Elem())
		it := av.MapRange()
		for it.Next() {
			other := bv.MapIndex(it.Key())
			if !other.IsValid() {
				return false
			}
			ta.Elem().Set(it.Value())
			tb.Elem().Set(other)
			if !vd.Equals(ta.UnsafePointer(), tb.UnsafePointer()) {
				return false
			}
		}
		return true
	}, true, nil
}

func (p *plan) equalsMethod() (equalsFn, bool, error) {
	if !uref.HasEqualMethod(p.t) {
		return nil, false, nil
	}
	t := p.t
	m, _ := reflect.PointerTo(t).MethodByName("Equal")
	idx, in := m.Index, m.Type.In(1)
	return func(a, b unsafe.Pointer) bool {
		out := reflect.NewAt(t, a).Method(idx).Call([]reflect.Value{methodArg(t, in, b)})
		return out[0].Bool()
	}, true, nil
}

func (p *plan) equalsOperator() (equalsFn, bool, error) {
	return nil, p.traits.Has(typeinfo.TraitComparable), nil
}

// equalsBitwise compares raw bytes. It is opt-in since padding and float
// encodings make it differ from ==.
func (p *plan) equalsBitwise() (equalsFn, bool, error) {
	if !p.spec.BitwiseEquals || !p.traits.Has(typeinfo.TraitBitwiseCopy) {
		return nil, false, nil
	}
	size := p.t.Size()
	return func(a, b unsafe.Pointer) bool {
		return bytes.Equal(unsafe.Slice((*byte)(a), size), unsafe.Slice((*byte)(b), size))
	}, true, nil
}

func (p *plan) equalsSerialized() (equalsFn, bool, error) {
	if !p.traits.Has(typeinfo.TraitBinarySerializable) {
		return nil, false, nil
	}
	d := p.d
	return func(a, b unsafe.Pointer) bool {
		wa, wb := stream.NewOutputStream(nil), stream.NewOutputStream(nil)
		if d.SerializeBinary(wa, a) != nil || d.SerializeBinary(wb, b) != nil {
			return false
		}
		return bytes.Equal(wa.Bytes(), wb.Bytes())
	}, true, nil
}
