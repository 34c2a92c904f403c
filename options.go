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
	"unsafe"

	"dirpx.dev/rtti/typeinfo"
)

// Option declares a capability or identity detail at registration.
type Option func(*typeinfo.Spec)

// WithName sets the canonical name. It is used verbatim and also replaces
// the type inside composite names registered later.
func WithName(name string) Option {
	return func(s *typeinfo.Spec) {
		s.Name = name
	}
}

// WithAdditionalNames adds legacy names that FindType also accepts.
func WithAdditionalNames(names ...string) Option {
	return func(s *typeinfo.Spec) {
		s.AdditionalNames = append(s.AdditionalNames, names...)
	}
}

// WithUnderlying declares U as the type whose operations T reuses where T
// adds nothing of its own. U must have the same memory layout as T.
func WithUnderlying[U any]() Option {
	return func(s *typeinfo.Spec) {
		s.Underlying = reflect.TypeOf((*U)(nil)).Elem()
	}
}

// WithFactory sets the default constructor. It receives zeroed storage.
func WithFactory[T any](f func(*T)) Option {
	return func(s *typeinfo.Spec) {
		s.Factory = func(p unsafe.Pointer) { f((*T)(p)) }
	}
}

// WithEnum declares an enum table. values may be omitted, in which case the
// i-th name stands for i.
func WithEnum(names []string, values ...int64) Option {
	return func(s *typeinfo.Spec) {
		s.EnumNames = names
		s.EnumValues = values
	}
}

// WithBitwiseEquals allows equality by comparing the value's bytes.
func WithBitwiseEquals() Option {
	return func(s *typeinfo.Spec) {
		s.BitwiseEquals = true
	}
}

// WithoutVector suppresses the paired []T registration.
func WithoutVector() Option {
	return func(s *typeinfo.Spec) {
		s.NoVector = true
	}
}

// WithAnnotation attaches a to the type once it is registered.
func WithAnnotation(a any) Option {
	return func(s *typeinfo.Spec) {
		s.Annotations = append(s.Annotations, a)
	}
}

func specOf(opts []Option) typeinfo.Spec {
	var s typeinfo.Spec
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
