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
	"encoding"
	"fmt"
	"reflect"
	"unsafe"

	"golang.org/x/exp/slices"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

type binaryOps = *typeinfo.BinarySerializationOps

const maxZeroSizeElements = 1 << 24

var binaryChain = []candidate[binaryOps]{
	{"methods", (*plan).binaryMethods},
	{"marshaler", (*plan).binaryMarshaler},
	{"basic", (*plan).binaryBasic},
	{"pointer", (*plan).binaryPointer},
	{"sequence", (*plan).binarySequence},
	{"map", (*plan).binaryMap},
	{"fields", (*plan).binaryFields},
}

func (p *plan) binaryMethods() (binaryOps, bool, error) {
	if !uref.HasBinaryMethods(p.t) {
		return nil, false, nil
	}
	t := p.t
	return &typeinfo.BinarySerializationOps{
		Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
			return reflect.NewAt(t, ptr).Interface().(apis.BinarySerializer).SerializeBinary(w)
		},
		Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
			return reflect.NewAt(t, ptr).Interface().(apis.BinaryDeserializer).DeserializeBinary(r)
		},
	}, true, nil
}

func (p *plan) binaryMarshaler() (binaryOps, bool, error) {
	if !uref.HasBinaryMarshaler(p.t) {
		return nil, false, nil
	}
	t := p.t
	return &typeinfo.BinarySerializationOps{
		Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
			b, err := reflect.NewAt(t, ptr).Interface().(encoding.BinaryMarshaler).MarshalBinary()
			if err != nil {
				return err
			}
			w.WriteBytes(b)
			return nil
		},
		Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}
			return reflect.NewAt(t, ptr).Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(b)
		},
	}, true, nil
}

func (p *plan) binaryBasic() (binaryOps, bool, error) {
	if !uref.IsBasic(p.t) {
		return nil, false, nil
	}
	t := p.t
	return &typeinfo.BinarySerializationOps{
		Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
			return stream.WriteValue(w, value(t, ptr))
		},
		Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
			return stream.ReadValue(r, value(t, ptr))
		},
	}, true, nil
}

// binaryPointer writes a presence flag followed by the pointee.
func (p *plan) binaryPointer() (binaryOps, bool, error) {
	if p.t.Kind() != reflect.Pointer {
		return nil, false, nil
	}
	ed, err := p.resolve(p.t.Elem())
	if err != nil {
		return nil, false, err
	}
	t := p.t
	return &typeinfo.BinarySerializationOps{
		Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
			v := value(t, ptr)
			w.WriteBool(!v.IsNil())
			if v.IsNil() {
				return nil
			}
			return ed.SerializeBinary(w, v.UnsafePointer())
		},
		Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
			present, err := r.ReadBool()
			if err != nil {
				return err
			}
			v := value(t, ptr)
			if !present {
				v.SetZero()
				return nil
			}
			if v.IsNil() {
				fresh := reflect.New(t.Elem())
				ed.Construct(fresh.UnsafePointer())
				v.Set(fresh)
			}
			return ed.DeserializeBinary(r, v.UnsafePointer())
		},
	}, true, nil
}

// binarySequence writes slices and method-vectors as a varint count followed
// by the elements. Arrays omit the count.
func (p *plan) binarySequence() (binaryOps, bool, error) {
	s := p.seq
	if s == nil {
		return nil, false, nil
	}
	t, elem := p.t, s.elem
	switch s.kind {
	case seqArray:
		n, size := t.Len(), s.elemT.Size()
		return &typeinfo.BinarySerializationOps{
			Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
				for i := 0; i < n; i++ {
					if err := elem.SerializeBinary(w, unsafe.Add(ptr, uintptr(i)*size)); err != nil {
						return err
					}
				}
				return nil
			},
			Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
				for i := 0; i < n; i++ {
					if err := elem.DeserializeBinary(r, unsafe.Add(ptr, uintptr(i)*size)); err != nil {
						return err
					}
				}
				return nil
			},
		}, true, nil
	case seqSlice:
		if s.elemT.Kind() == reflect.Uint8 && !uref.HasBinaryMethods(s.elemT) && !uref.HasBinaryMarshaler(s.elemT) {
			return p.binaryBytes()
		}
	}
	return &typeinfo.BinarySerializationOps{
		Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
			n := s.size(ptr)
			w.WriteVarUint(uint64(n))
			if n == 0 {
				return nil
			}
			if s.proxy {
				tmp := s.temp()
				for i := 0; i < n; i++ {
					if err := s.load(ptr, i, tmp); err != nil {
						return err
					}
					if err := elem.SerializeBinary(w, tmp); err != nil {
						return err
					}
				}
				return nil
			}
			for i := 0; i < n; i++ {
				if err := elem.SerializeBinary(w, s.at(ptr, i)); err != nil {
					return err
				}
			}
			return nil
		},
		Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
			n, err := readCount(r, s.elemT)
			if err != nil {
				return err
			}
			if s.kind == seqSlice && n == 0 {
				value(t, ptr).SetZero()
				return nil
			}
			dst, commit, err := s.target(ptr, n)
			if err != nil {
				return err
			}
			if s.proxy {
				tmp := s.temp()
				for i := 0; i < n; i++ {
					if err := elem.DeserializeBinary(r, tmp); err != nil {
						return err
					}
					if err := s.store(dst, i, tmp); err != nil {
						return err
					}
				}
				commit()
				return nil
			}
			for i := 0; i < n; i++ {
				if err := elem.DeserializeBinary(r, s.at(dst, i)); err != nil {
					return err
				}
			}
			commit()
			return nil
		},
	}, true, nil
}

// readCount reads an element count. Elements of non-zero size occupy at
// least one byte each, which bounds the count by the remaining input.
func readCount(r *stream.InputStream, elem reflect.Type) (int, error) {
	if elem.Size() > 0 {
		return r.ReadLength()
	}
	n, err := r.ReadVarUint()
	if err != nil {
		return 0, err
	}
	if n > maxZeroSizeElements {
		return 0, fmt.Errorf("%w: %d zero-size elements", typeinfo.ErrInvalidSize, n)
	}
	return int(n), nil
}

func (p *plan) binaryBytes() (binaryOps, bool, error) {
	t := p.t
	return &typeinfo.BinarySerializationOps{
		Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
			w.WriteBytes(value(t, ptr).Bytes())
			return nil
		},
		Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}
			v := value(t, ptr)
			if len(b) == 0 {
				v.SetZero()
				return nil
			}
			fresh := reflect.MakeSlice(t, len(b), len(b))
			copy(fresh.Bytes(), b)
			v.Set(fresh)
			return nil
		},
	}, true, nil
}

// binaryMap writes the entry count followed by key/value pairs ordered by
// the encoded key bytes, so equal maps encode identically.
func (p *plan) binaryMap() (binaryOps, bool, error) {
	if p.t.Kind() != reflect.Map {
		return nil, false, nil
	}
	kd, err := p.resolve(p.t.Key())
	if err != nil {
		return nil, false, err
	}
	vd, err := p.resolve(p.t.Elem())
	if err != nil {
		return nil, false, err
	}
	t := p.t
	type entry struct {
		key []byte
		val reflect.Value
	}
	return &typeinfo.BinarySerializationOps{
		Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
			v := value(t, ptr)
			entries := make([]entry, 0, v.Len())
			tk := reflect.New(t.Key())
			it := v.MapRange()
			for it.Next() {
				tk.Elem().Set(it.Key())
				kw := stream.NewOutputStream(nil)
				if err := kd.SerializeBinary(kw, tk.UnsafePointer()); err != nil {
					return err
				}
				tv := reflect.New(t.Elem())
				tv.Elem().Set(it.Value())
				entries = append(entries, entry{kw.Bytes(), tv})
			}
			slices.SortFunc(entries, func(a, b entry) int { return bytes.Compare(a.key, b.key) })
			w.WriteVarUint(uint64(len(entries)))
			for _, e := range entries {
				w.WriteRaw(e.key)
				if err := vd.SerializeBinary(w, e.val.UnsafePointer()); err != nil {
					return err
				}
			}
			return nil
		},
		Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
			n, err := readCount(r, t.Key())
			if err != nil {
				return err
			}
			v := value(t, ptr)
			if n == 0 {
				v.SetZero()
				return nil
			}
			fresh := reflect.MakeMapWithSize(t, n)
			for i := 0; i < n; i++ {
				k, e := reflect.New(t.Key()), reflect.New(t.Elem())
				kd.Construct(k.UnsafePointer())
				vd.Construct(e.UnsafePointer())
				if err := kd.DeserializeBinary(r, k.UnsafePointer()); err != nil {
					return err
				}
				if err := vd.DeserializeBinary(r, e.UnsafePointer()); err != nil {
					return err
				}
				fresh.SetMapIndex(k.Elem(), e.Elem())
			}
			v.Set(fresh)
			return nil
		},
	}, true, nil
}

// binaryFields writes struct fields in declaration order.
func (p *plan) binaryFields() (binaryOps, bool, error) {
	if p.t.Kind() != reflect.Struct {
		return nil, false, nil
	}
	fields, err := p.fields()
	if err != nil {
		return nil, false, err
	}
	return &typeinfo.BinarySerializationOps{
		Serialize: func(w *stream.OutputStream, ptr unsafe.Pointer) error {
			for _, f := range fields {
				if err := f.d.SerializeBinary(w, unsafe.Add(ptr, f.off)); err != nil {
					return err
				}
			}
			return nil
		},
		Deserialize: func(r *stream.InputStream, ptr unsafe.Pointer) error {
			for _, f := range fields {
				if err := f.d.DeserializeBinary(r, unsafe.Add(ptr, f.off)); err != nil {
					return err
				}
			}
			return nil
		},
	}, true, nil
}
