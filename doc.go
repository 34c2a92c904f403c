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

// Package rtti is a runtime type-information layer: register a Go type
// once and afterwards construct, destroy, copy, compare, serialize and
// index values of it through a type-erased pointer, without naming the type
// again.
//
// # Registration
//
// Register probes a type, picks one strategy per operation from ranked
// fallback chains, assigns a handle and a canonical name, and publishes
// the resulting descriptor in the global registry:
//
//	pt, err := rtti.Register[geo.Point](rtti.WithName("geo.Point"))
//	bits := rtti.TypeOf[rtti.BitVector]()
//
// Field, element, key and underlying types are registered along with it,
// leaves first, and every plain type T gets a paired vector type []T named
// "List<T>". Capabilities the probes cannot see are declared with options
// (WithFactory, WithEnum, WithUnderlying, WithBitwiseEquals).
//
// Types implement the interfaces in package apis to take over an
// operation: Namer, the three serializer pairs, DefaultInitializer,
// Destructor and EnumStringer. CopyFrom, Equal and the vector methods
// (Len, Resize with At or Get/Set) are found by method shape.
//
// # Names
//
// Canonical names are derived from the Go type text with import paths
// shortened and containers spelled List<T>, Array<T, N> and Map<K, V>.
// FindType accepts canonical and legacy names, a unique namespace suffix,
// names with leading namespaces removed, and Go type text:
//
//	t, ok := rtti.FindType("a.b.Point") // strips a.b., then finds geo.Point by suffix
//
// # Dispatch
//
// A Pointer is an address and a Type. Its methods dispatch to the
// descriptor's operation table:
//
//	p := rtti.PointerTo(&pt)
//	w := stream.NewOutputStream(nil)
//	err := p.Serialize(w, apis.XML)
//
// Non-vector values behave as one-element vectors for VectorSize,
// VectorElement and ResizeVector.
//
// # Global state
//
// The registry and its configuration live in an immutable snapshot that is
// swapped atomically. SetConfig rebuilds an unpinned registry and replays
// the explicitly registered types; SetRegistry installs and pins a
// registry; SetAll resets both and is what tests use.
//
// Reads are lock-free. Registration is serialized by the registry and a
// descriptor becomes visible only after its operation table is installed.
package rtti
