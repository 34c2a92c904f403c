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
	"fmt"
	"strings"
)

// Traits is the capability bitmask computed for a type at registration.
type Traits uint32

const (
	// TraitBinarySerializable marks types with a binary channel.
	TraitBinarySerializable Traits = 1 << iota
	// TraitStringSerializable marks types with a string channel.
	TraitStringSerializable
	// TraitXMLSerializable marks types with an XML channel.
	TraitXMLSerializable
	// TraitZeroInit marks types whose default construction is all-zero memory.
	TraitZeroInit
	// TraitBitwiseCopy marks types that hold no references and may be byte-copied.
	TraitBitwiseCopy
	// TraitValueCopy marks types for which plain assignment is a deep copy.
	TraitValueCopy
	// TraitComparable marks types usable with == without runtime panics.
	TraitComparable
	// TraitByteComparable marks types whose equality is exactly byte equality.
	TraitByteComparable
	// TraitVector marks vector types (native slices and method-vectors).
	TraitVector
	// TraitElementProxy marks vectors whose elements are not addressable.
	TraitElementProxy
	// TraitEnum marks enum types.
	TraitEnum
	// TraitHasUnderlying marks wrappers that delegate to an underlying type.
	TraitHasUnderlying
)

var traitNames = []string{
	"binary", "string", "xml", "zero-init", "bitwise-copy", "value-copy",
	"comparable", "byte-comparable", "vector", "element-proxy", "enum", "underlying",
}

// Has reports whether all bits of f are set.
func (t Traits) Has(f Traits) bool { return t&f == f }

// String lists the set flags, e.g. "binary|string|zero-init".
func (t Traits) String() string {
	var parts []string
	for i, name := range traitNames {
		if t&(1<<uint(i)) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Classification is the coarse kind of a registered type.
type Classification uint8

const (
	// ClassPlain is any type that is none of the others.
	ClassPlain Classification = iota
	// ClassList is a vector type.
	ClassList
	// ClassPointerList is a vector type whose elements are pointers.
	ClassPointerList
	// ClassArray is a fixed-size array.
	ClassArray
	// ClassMap is a key/value map.
	ClassMap
	// ClassTuple is a struct; its fields are its elements.
	ClassTuple
	// ClassEnum is an integer type with a string-constant table.
	ClassEnum
	// ClassRPCOnly is a type that supports none of the serialization channels.
	ClassRPCOnly
)

// String implements fmt.Stringer.
func (c Classification) String() string {
	switch c {
	case ClassPlain:
		return "plain"
	case ClassList:
		return "list"
	case ClassPointerList:
		return "pointer-list"
	case ClassArray:
		return "array"
	case ClassMap:
		return "map"
	case ClassTuple:
		return "tuple"
	case ClassEnum:
		return "enum"
	case ClassRPCOnly:
		return "rpc-only"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// Handle is the process-wide index of a registered descriptor.
type Handle uint16

// InvalidHandle is the handle of unregistered descriptors.
const InvalidHandle Handle = 0xFFFF

// MaxHandles is the largest registry capacity a Handle can address.
const MaxHandles = int(InvalidHandle)
