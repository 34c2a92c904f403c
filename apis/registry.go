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

package apis

import (
	"reflect"

	"dirpx.dev/rtti/typeinfo"
)

// Registry is the process-wide table of registered types.
//
// Lookups by handle and by reflect.Type are lock-free. Registration is
// serialized; a descriptor becomes visible only once it is fully built.
type Registry interface {
	// Register registers t (and, as configured, its components and paired
	// vector type). Registering an already registered type returns the
	// existing descriptor.
	Register(t reflect.Type, spec typeinfo.Spec) (*typeinfo.Descriptor, error)
	// Lookup returns the descriptor of t if registered.
	Lookup(t reflect.Type) (*typeinfo.Descriptor, bool)
	// ByHandle returns the descriptor with handle h.
	ByHandle(h typeinfo.Handle) (*typeinfo.Descriptor, bool)
	// Find resolves a name: exact and legacy names, then namespace
	// fallbacks, then Go type text.
	Find(name string) (*typeinfo.Descriptor, bool)
	// Rename changes the canonical name of a registered type once.
	Rename(d *typeinfo.Descriptor, name string) error
	// Annotate attaches a to the type.
	Annotate(d *typeinfo.Descriptor, a any) error
	// Entries returns a snapshot in handle order.
	Entries() []Entry
	// Count returns the number of handles in use.
	Count() int
	// Config returns the configuration the registry was built with.
	Config() Config
}

// Entry is a single registered type in a Registry snapshot.
type Entry struct {
	// Descriptor is the registered descriptor.
	Descriptor *typeinfo.Descriptor
	// Spec holds the options the type was registered with. Types registered
	// implicitly carry a zero Spec.
	Spec typeinfo.Spec
	// Explicit is true for types registered by a caller rather than as a
	// component or paired vector.
	Explicit bool
}

// Builder probes types and synthesizes their operation tables.
type Builder interface {
	// Describe probes t and returns an uninstalled descriptor carrying traits,
	// classification and the given shared info.
	Describe(t reflect.Type, spec typeinfo.Spec, shared *typeinfo.SharedInfo) (*typeinfo.Descriptor, error)
	// DescribePaired returns the uninstalled descriptor of []T sharing T's identity.
	DescribePaired(elem *typeinfo.Descriptor) *typeinfo.Descriptor
	// Complete synthesizes the operation table of d and installs it.
	// Component descriptors are obtained from src.
	Complete(d *typeinfo.Descriptor, spec typeinfo.Spec, src typeinfo.Source) error
	// Components lists the types d's operations will need from src:
	// fields, elements, keys and the underlying type.
	Components(t reflect.Type, spec typeinfo.Spec) []reflect.Type
}
