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

package typeinfo

import "errors"

var (
	// ErrUnsupportedEncoding is returned when a value is serialized through a
	// channel its type does not support.
	ErrUnsupportedEncoding = errors.New("rtti: type does not support this encoding")
	// ErrInvalidSize is returned when a vector cannot take the requested size.
	ErrInvalidSize = errors.New("rtti: invalid size")
	// ErrNotVector is returned when a vector operation is invoked on a non-vector type.
	ErrNotVector = errors.New("rtti: not a vector type")
	// ErrTypeMismatch is returned when two erased pointers do not share a type.
	ErrTypeMismatch = errors.New("rtti: type mismatch")
	// ErrNullPointer is returned when dispatching through a null pointer or null type.
	ErrNullPointer = errors.New("rtti: null pointer")
	// ErrAlreadyInstalled is returned when a descriptor's table is installed twice.
	ErrAlreadyInstalled = errors.New("rtti: operation table already installed")
	// ErrNameAlreadySet is returned when a type is renamed a second time.
	ErrNameAlreadySet = errors.New("rtti: type name can only be changed once")
	// ErrEmptyName is returned when an empty type name is supplied.
	ErrEmptyName = errors.New("rtti: empty type name")
	// ErrAnnotationExists is returned when an annotation type is added twice to one type.
	ErrAnnotationExists = errors.New("rtti: annotation of this type already present")
	// ErrAnnotationCapacity is returned when a type has no free annotation slot.
	ErrAnnotationCapacity = errors.New("rtti: annotation slots exhausted")
)
