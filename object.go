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
	"reflect"

	"dirpx.dev/rtti/typeinfo"
)

// GenericObject owns a heap value of a registered type and exposes it
// through a type-erased Pointer.
type GenericObject struct {
	Pointer
	// v keeps the allocation reachable and typed for the garbage collector.
	v reflect.Value
}

// CreateInstance allocates and default-constructs a value of t.
func CreateInstance(t Type) (*GenericObject, error) {
	if t.d == nil {
		return nil, typeinfo.ErrNullPointer
	}
	v := reflect.New(t.d.Type())
	addr := v.UnsafePointer()
	t.d.Construct(addr)
	return &GenericObject{Pointer: NewPointer(t, addr), v: v}, nil
}

// NewObject copies v into a new GenericObject.
func NewObject[T any](v T) (*GenericObject, error) {
	o, err := CreateInstance(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	if err := o.DeepCopyFrom(ConstPointerTo(&v)); err != nil {
		return nil, err
	}
	return o, nil
}

// Interface returns the value as an interface, nil once released.
func (o *GenericObject) Interface() any {
	if o.IsNull() {
		return nil
	}
	return o.v.Elem().Interface()
}

// Clone returns an independent deep copy.
func (o *GenericObject) Clone() (*GenericObject, error) {
	c, err := CreateInstance(o.t)
	if err != nil {
		return nil, err
	}
	if err := c.DeepCopyFrom(o.Const()); err != nil {
		return nil, err
	}
	return c, nil
}

// Release destructs the value and detaches the object from it. Releasing
// twice is a no-op.
func (o *GenericObject) Release() {
	if o.IsNull() {
		return
	}
	o.t.d.Destruct(o.addr)
	o.Pointer = Pointer{}
	o.v = reflect.Value{}
}
