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

import (
	"reflect"
	"unsafe"
)

// Spec collects the capabilities a type author declares at registration.
// The zero value asks for everything to be probed.
type Spec struct {
	// Name is used verbatim as the canonical name.
	Name string
	// AdditionalNames are legacy names that resolve to the same type.
	AdditionalNames []string
	// Underlying is the type whose operations this type reuses where it
	// adds nothing of its own.
	Underlying reflect.Type
	// Factory default-constructs a value in place.
	Factory func(p unsafe.Pointer)
	// EnumNames and EnumValues declare an enum table. EnumValues may be nil.
	EnumNames  []string
	EnumValues []int64
	// BitwiseEquals allows equality by byte comparison.
	BitwiseEquals bool
	// NoVector suppresses the paired []T registration.
	NoVector bool
	// Annotations are attached after registration.
	Annotations []any
}

// Source resolves descriptors of component types during synthesis. The
// returned descriptor may still be under construction; its operations may
// only be invoked once the outermost registration has completed.
type Source interface {
	Resolve(t reflect.Type) (*Descriptor, error)
}
