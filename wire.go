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
	"errors"
	"fmt"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/typeinfo"
)

// ErrUnknownType is returned when a type identifier read from a stream does
// not resolve in the global registry.
var ErrUnknownType = errors.New("rtti: unknown type identifier")

// WriteType writes the identifier of t. ByHandle writes the 16-bit handle,
// which is only meaningful to a reader with the same registration order;
// ByName writes the canonical name. The null type is written as
// InvalidHandle or as the empty name.
func WriteType(w *stream.OutputStream, t Type, enc apis.TypeEncoding) error {
	switch enc {
	case apis.ByHandle:
		stream.Write(w, uint16(t.Handle()))
	case apis.ByName:
		w.WriteString(t.Name())
	default:
		return fmt.Errorf("%w: type encoding %s", typeinfo.ErrUnsupportedEncoding, enc)
	}
	return nil
}

// ReadType reads an identifier written by WriteType and resolves it.
func ReadType(r *stream.InputStream, enc apis.TypeEncoding) (Type, error) {
	switch enc {
	case apis.ByHandle:
		h, err := stream.Read[uint16](r)
		if err != nil {
			return Type{}, err
		}
		if typeinfo.Handle(h) == typeinfo.InvalidHandle {
			return Type{}, nil
		}
		t, ok := TypeByHandle(typeinfo.Handle(h))
		if !ok {
			return Type{}, fmt.Errorf("%w: handle %d", ErrUnknownType, h)
		}
		return t, nil
	case apis.ByName:
		name, err := r.ReadString()
		if err != nil {
			return Type{}, err
		}
		if name == "" {
			return Type{}, nil
		}
		t, ok := FindType(name)
		if !ok {
			return Type{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
		}
		return t, nil
	default:
		return Type{}, fmt.Errorf("%w: type encoding %s", typeinfo.ErrUnsupportedEncoding, enc)
	}
}

// SerializeGeneric writes the type identifier of p followed by its binary
// payload. A null pointer writes only the null type identifier.
func SerializeGeneric(w *stream.OutputStream, p ConstPointer, enc apis.TypeEncoding) error {
	if p.IsNull() {
		return WriteType(w, Type{}, enc)
	}
	if err := WriteType(w, p.t, enc); err != nil {
		return err
	}
	return p.SerializeBinary(w)
}

// DeserializeGeneric reads what SerializeGeneric wrote into a new object.
// A null type identifier yields a nil object.
func DeserializeGeneric(r *stream.InputStream, enc apis.TypeEncoding) (*GenericObject, error) {
	t, err := ReadType(r, enc)
	if err != nil || t.IsNull() {
		return nil, err
	}
	o, err := CreateInstance(t)
	if err != nil {
		return nil, err
	}
	if err := o.DeserializeBinary(r); err != nil {
		o.Release()
		return nil, fmt.Errorf("rtti: payload of %s: %w", t, err)
	}
	return o, nil
}
