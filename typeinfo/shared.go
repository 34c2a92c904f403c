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
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ErrInvalidEnum is returned for malformed enum tables.
var ErrInvalidEnum = errors.New("rtti: invalid enum table")

// SharedInfo is the part of a type's identity shared between a type T and
// its paired vector type []T.
//
// Handles, links and the enum table are written by the registry before the
// descriptors are published and are read-only afterwards. The name may change
// once after publication (Rename); annotations may be added at any time.
type SharedInfo struct {
	name    atomic.Pointer[string]
	renamed atomic.Bool
	lookup  string

	handle       Handle
	vectorHandle Handle
	vector       *Descriptor
	underlying   *Descriptor
	enum         *EnumInfo

	mu          sync.Mutex
	annotations []any
	capacity    int
}

// NewSharedInfo creates shared info with the given canonical name, the
// demangled Go type text used for lookups, and annotation capacity.
func NewSharedInfo(name, lookup string, maxAnnotations int) *SharedInfo {
	s := &SharedInfo{
		lookup:       lookup,
		handle:       InvalidHandle,
		vectorHandle: InvalidHandle,
		capacity:     maxAnnotations,
	}
	s.name.Store(&name)
	return s
}

// Name returns the canonical name.
func (s *SharedInfo) Name() string { return *s.name.Load() }

// LookupName returns the demangled Go type text.
func (s *SharedInfo) LookupName() string { return s.lookup }

// Rename replaces the canonical name. It succeeds once.
func (s *SharedInfo) Rename(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if !s.renamed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %q", ErrNameAlreadySet, s.Name())
	}
	s.name.Store(&name)
	return nil
}

// Renamed reports whether Rename has succeeded.
func (s *SharedInfo) Renamed() bool { return s.renamed.Load() }

// Handle returns the handle of the plain type.
func (s *SharedInfo) Handle() Handle { return s.handle }

// VectorHandle returns the handle of the paired vector type.
func (s *SharedInfo) VectorHandle() Handle { return s.vectorHandle }

// Vector returns the descriptor of []T, if any.
func (s *SharedInfo) Vector() *Descriptor { return s.vector }

// Underlying returns the descriptor this type delegates to, if any.
func (s *SharedInfo) Underlying() *Descriptor { return s.underlying }

// Enum returns the enum table, if any.
func (s *SharedInfo) Enum() *EnumInfo { return s.enum }

// AssignHandle sets the plain type's handle. Registry use only.
func (s *SharedInfo) AssignHandle(h Handle) { s.handle = h }

// AssignVectorHandle sets the paired vector's handle. Registry use only.
func (s *SharedInfo) AssignVectorHandle(h Handle) { s.vectorHandle = h }

// LinkVector links the paired vector descriptor. Registry use only.
func (s *SharedInfo) LinkVector(d *Descriptor) { s.vector = d }

// LinkUnderlying links the underlying descriptor. Registry use only.
func (s *SharedInfo) LinkUnderlying(d *Descriptor) { s.underlying = d }

// SetEnum attaches the enum table. Registry use only.
func (s *SharedInfo) SetEnum(e *EnumInfo) { s.enum = e }

// AddAnnotation stores a in the first free slot. At most one annotation per
// dynamic type is allowed.
func (s *SharedInfo) AddAnnotation(a any) error {
	if a == nil {
		return ErrNullPointer
	}
	at := reflect.TypeOf(a)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.annotations {
		if reflect.TypeOf(x) == at {
			return fmt.Errorf("%w: %v on %q", ErrAnnotationExists, at, s.Name())
		}
	}
	if len(s.annotations) >= s.capacity {
		return fmt.Errorf("%w: %q holds %d", ErrAnnotationCapacity, s.Name(), s.capacity)
	}
	s.annotations = append(s.annotations, a)
	return nil
}

// Annotation returns the annotation whose dynamic type is t.
func (s *SharedInfo) Annotation(t reflect.Type) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.annotations {
		if reflect.TypeOf(x) == t {
			return x, true
		}
	}
	return nil, false
}

// Annotations returns a snapshot of all annotations in insertion order.
func (s *SharedInfo) Annotations() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.annotations...)
}

// EnumInfo is the string-constant table of an enum type.
type EnumInfo struct {
	names  []string
	values []int64
}

// NewEnumInfo builds an enum table. When values is nil the i-th name
// denotes i.
func NewEnumInfo(names []string, values []int64) (*EnumInfo, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no constants", ErrInvalidEnum)
	}
	if values == nil {
		values = make([]int64, len(names))
		for i := range values {
			values[i] = int64(i)
		}
	}
	if len(values) != len(names) {
		return nil, fmt.Errorf("%w: %d names, %d values", ErrInvalidEnum, len(names), len(values))
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: empty constant name", ErrInvalidEnum)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: duplicate constant %q", ErrInvalidEnum, n)
		}
		seen[n] = struct{}{}
	}
	return &EnumInfo{
		names:  append([]string(nil), names...),
		values: append([]int64(nil), values...),
	}, nil
}

// Len returns the number of constants.
func (e *EnumInfo) Len() int { return len(e.names) }

// Names returns the constant names in declaration order.
func (e *EnumInfo) Names() []string { return append([]string(nil), e.names...) }

// First returns the value of the first constant, the default of the enum.
func (e *EnumInfo) First() int64 { return e.values[0] }

// NameOf returns the name of value v.
func (e *EnumInfo) NameOf(v int64) (string, bool) {
	for i, x := range e.values {
		if x == v {
			return e.names[i], true
		}
	}
	return "", false
}

// ValueOf returns the value named n.
func (e *EnumInfo) ValueOf(n string) (int64, bool) {
	for i, x := range e.names {
		if x == n {
			return e.values[i], true
		}
	}
	return 0, false
}
