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
	"unsafe"

	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/xmlnode"
)

// BinaryOps is the lifecycle and comparison group.
//
// A nil member means the trivial behaviour: zero-fill for Construct, nothing
// for Destruct, assignment (or byte copy for bitwise types) for DeepCopy and
// == for Equals. The synthesizer only leaves Equals nil for comparable types.
type BinaryOps struct {
	Construct func(p unsafe.Pointer)
	Destruct  func(p unsafe.Pointer)
	DeepCopy  func(dst, src unsafe.Pointer) error
	Equals    func(a, b unsafe.Pointer) bool
}

func (b *BinaryOps) empty() bool {
	return b == nil || (b.Construct == nil && b.Destruct == nil && b.DeepCopy == nil && b.Equals == nil)
}

// BinarySerializationOps is the binary channel.
type BinarySerializationOps struct {
	Serialize   func(w *stream.OutputStream, p unsafe.Pointer) error
	Deserialize func(r *stream.InputStream, p unsafe.Pointer) error
}

// OtherSerializationOps holds the string and XML channels. Either pair may
// be nil independently.
type OtherSerializationOps struct {
	SerializeString   func(w *stream.StringOutputStream, p unsafe.Pointer) error
	DeserializeString func(r *stream.StringInputStream, p unsafe.Pointer) error
	SerializeXML      func(n *xmlnode.Node, p unsafe.Pointer) error
	DeserializeXML    func(n *xmlnode.Node, p unsafe.Pointer) error
}

func (o *OtherSerializationOps) empty() bool {
	return o == nil || (o.SerializeString == nil && o.SerializeXML == nil)
}

// VectorOps is the vector group. Element returns nil when i is out of range
// and always nil for vectors with proxy elements.
type VectorOps struct {
	Element func(p unsafe.Pointer, i int) unsafe.Pointer
	Size    func(p unsafe.Pointer) int
	Resize  func(p unsafe.Pointer, n int) error
}

// Op names a canonical operation for strategy labels.
type Op uint8

const (
	OpConstruct Op = iota
	OpDestruct
	OpDeepCopy
	OpEquals
	OpBinary
	OpString
	OpXML
	OpVector
	// NumOps is the number of canonical operations.
	NumOps
)

var opNames = [NumOps]string{"construct", "destruct", "deep-copy", "equals", "binary", "string", "xml", "vector"}

// String implements fmt.Stringer.
func (o Op) String() string {
	if o < NumOps {
		return opNames[o]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(o))
}

// Labels records which strategy was selected for each operation.
type Labels [NumOps]string

// Shape is the group bitmask of a descriptor: which optional groups it
// carries. There are NumShapes distinct shapes.
type Shape uint8

const (
	GroupBinaryOps Shape = 1 << iota
	GroupBinarySerialization
	GroupOtherSerialization
	GroupVector
	GroupEnum

	// NumShapes is the number of distinct shapes.
	NumShapes = 1 << 5
)

var groupNames = []string{"binary-ops", "binary-serialization", "other-serialization", "vector", "enum"}

// Has reports whether all groups of g are present.
func (s Shape) Has(g Shape) bool { return s&g == g }

// String renders the shape as "binary-ops+vector" or "empty".
func (s Shape) String() string {
	var parts []string
	for i, name := range groupNames {
		if s&(1<<uint(i)) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, "+")
}

// Shapes enumerates every possible shape in ascending order.
func Shapes() []Shape {
	out := make([]Shape, NumShapes)
	for i := range out {
		out[i] = Shape(i)
	}
	return out
}

// Table is the synthesized operation table of a descriptor. Group pointers
// are nil for absent groups; the shape is derived from them at Install.
type Table struct {
	Binary              *BinaryOps
	BinarySerialization *BinarySerializationOps
	OtherSerialization  *OtherSerializationOps
	Vector              *VectorOps
	Labels              Labels
}

// normalize drops empty groups so the shape reflects what is really there.
func (t *Table) normalize() {
	if t.Binary.empty() {
		t.Binary = nil
	}
	if t.BinarySerialization != nil && t.BinarySerialization.Serialize == nil {
		t.BinarySerialization = nil
	}
	if t.OtherSerialization.empty() {
		t.OtherSerialization = nil
	}
	if t.Vector != nil && t.Vector.Size == nil {
		t.Vector = nil
	}
}

func (t *Table) shape() Shape {
	var s Shape
	if t.Binary != nil {
		s |= GroupBinaryOps
	}
	if t.BinarySerialization != nil {
		s |= GroupBinarySerialization
	}
	if t.OtherSerialization != nil {
		s |= GroupOtherSerialization
	}
	if t.Vector != nil {
		s |= GroupVector
	}
	return s
}
