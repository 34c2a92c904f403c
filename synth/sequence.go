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
	"fmt"
	"reflect"
	"unsafe"

	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

type seqKind uint8

const (
	seqSlice seqKind = iota
	seqArray
	seqMethods
)

// sequence gives uniform indexed access to slices, arrays and
// method-vectors.
type sequence struct {
	kind  seqKind
	t     reflect.Type
	elemT reflect.Type
	elem  *typeinfo.Descriptor
	proxy bool

	// method indices in the method set of *t
	lenM, resizeM, atM, getM, setM int
	resizeErr                      bool
}

func (p *plan) prepareSequence() error {
	var s *sequence
	switch p.t.Kind() {
	case reflect.Slice:
		s = &sequence{kind: seqSlice, t: p.t, elemT: p.t.Elem()}
	case reflect.Array:
		s = &sequence{kind: seqArray, t: p.t, elemT: p.t.Elem()}
	default:
		info, ok := uref.VectorOf(p.t)
		if !ok {
			return nil
		}
		s = &sequence{kind: seqMethods, t: p.t, elemT: info.Elem, proxy: info.Proxy}
		pt := reflect.PointerTo(p.t)
		ln, _ := pt.MethodByName("Len")
		rs, _ := pt.MethodByName("Resize")
		s.lenM, s.resizeM = ln.Index, rs.Index
		s.resizeErr = rs.Type.NumOut() == 1
		if s.proxy {
			get, _ := pt.MethodByName("Get")
			set, _ := pt.MethodByName("Set")
			s.getM, s.setM = get.Index, set.Index
		} else {
			at, _ := pt.MethodByName("At")
			s.atM = at.Index
		}
	}
	elem, err := p.resolve(s.elemT)
	if err != nil {
		return err
	}
	s.elem = elem
	p.seq = s
	if s.kind != seqArray {
		p.d.SetElement(elem)
	}
	return nil
}

func (s *sequence) methods(ptr unsafe.Pointer) reflect.Value {
	return reflect.NewAt(s.t, ptr)
}

func (s *sequence) size(ptr unsafe.Pointer) int {
	switch s.kind {
	case seqSlice:
		return value(s.t, ptr).Len()
	case seqArray:
		return s.t.Len()
	}
	return int(s.methods(ptr).Method(s.lenM).Call(nil)[0].Int())
}

// at returns the address of element i, or nil when i is out of range or the
// elements are proxies.
func (s *sequence) at(ptr unsafe.Pointer, i int) unsafe.Pointer {
	if i < 0 || s.proxy {
		return nil
	}
	switch s.kind {
	case seqSlice:
		v := value(s.t, ptr)
		if i >= v.Len() {
			return nil
		}
		return v.Index(i).Addr().UnsafePointer()
	case seqArray:
		if i >= s.t.Len() {
			return nil
		}
		return unsafe.Add(ptr, uintptr(i)*s.elemT.Size())
	}
	if i >= s.size(ptr) {
		return nil
	}
	out := s.methods(ptr).Method(s.atM).Call([]reflect.Value{reflect.ValueOf(i)})
	return out[0].UnsafePointer()
}

// load copies element i into the storage at dst.
func (s *sequence) load(ptr unsafe.Pointer, i int, dst unsafe.Pointer) error {
	if !s.proxy {
		return s.elem.DeepCopy(dst, s.at(ptr, i))
	}
	out := s.methods(ptr).Method(s.getM).Call([]reflect.Value{reflect.ValueOf(i)})
	value(s.elemT, dst).Set(out[0])
	return nil
}

// store copies the value at src into element i.
func (s *sequence) store(ptr unsafe.Pointer, i int, src unsafe.Pointer) error {
	if !s.proxy {
		return s.elem.DeepCopy(s.at(ptr, i), src)
	}
	s.methods(ptr).Method(s.setM).Call([]reflect.Value{reflect.ValueOf(i), value(s.elemT, src)})
	return nil
}

// resize changes the element count. Removed elements are destructed and
// added ones constructed.
func (s *sequence) resize(ptr unsafe.Pointer, n int) error {
	switch s.kind {
	case seqArray:
		if n != s.t.Len() {
			return fmt.Errorf("%w: %v holds exactly %d elements, not %d", typeinfo.ErrInvalidSize, s.t, s.t.Len(), n)
		}
		return nil
	case seqSlice:
		v := value(s.t, ptr)
		old := v.Len()
		if n <= old {
			for i := n; i < old; i++ {
				e := v.Index(i).Addr().UnsafePointer()
				s.elem.Destruct(e)
				s.elem.Zero(e)
			}
			v.SetLen(n)
			return nil
		}
		if n > v.Cap() {
			grown := reflect.MakeSlice(s.t, n, n)
			reflect.Copy(grown, v)
			v.Set(grown)
		} else {
			v.SetLen(n)
		}
		for i := old; i < n; i++ {
			s.elem.Construct(v.Index(i).Addr().UnsafePointer())
		}
		return nil
	}

	old := s.size(ptr)
	if !s.proxy {
		for i := n; i < old; i++ {
			s.elem.Destruct(s.at(ptr, i))
		}
	}
	out := s.methods(ptr).Method(s.resizeM).Call([]reflect.Value{reflect.ValueOf(n)})
	if s.resizeErr && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	if !s.proxy {
		for i := old; i < n; i++ {
			s.elem.Construct(s.at(ptr, i))
		}
	}
	return nil
}

// temp allocates zeroed storage for one element.
func (s *sequence) temp() unsafe.Pointer {
	return reflect.New(s.elemT).UnsafePointer()
}

// target prepares ptr to receive n decoded elements and returns the storage
// to decode into. Slices decode into a fresh backing array, published by
// commit once every element is in place, so other slices sharing the old
// array never observe the decode. Arrays and method-vectors are resized in
// place and commit does nothing.
func (s *sequence) target(ptr unsafe.Pointer, n int) (dst unsafe.Pointer, commit func(), err error) {
	if s.kind != seqSlice {
		if err := s.resize(ptr, n); err != nil {
			return nil, nil, err
		}
		return ptr, func() {}, nil
	}
	staged := reflect.New(s.t)
	fresh := reflect.MakeSlice(s.t, n, n)
	for i := 0; i < n; i++ {
		s.elem.Construct(fresh.Index(i).Addr().UnsafePointer())
	}
	staged.Elem().Set(fresh)
	return staged.UnsafePointer(), func() { value(s.t, ptr).Set(fresh) }, nil
}
