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
	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/xmlnode"
)

// Namer lets a type supply its own canonical name.
//
// # Contract
//
//   - TypeName describes the type, not an instance. It is called on the zero
//     value (or a pointer to it) and MUST NOT depend on field values.
//   - The returned name MUST be non-empty and stable across processes.
//   - A name given through the registration options takes precedence.
type Namer interface {
	TypeName() string
}

// BinarySerializer writes a value to the binary channel.
//
// Types implementing both BinarySerializer and BinaryDeserializer (on T or
// *T) use this pair instead of the synthesized field-by-field codec.
type BinarySerializer interface {
	SerializeBinary(w *stream.OutputStream) error
}

// BinaryDeserializer reads a value from the binary channel.
type BinaryDeserializer interface {
	DeserializeBinary(r *stream.InputStream) error
}

// StringSerializer writes a value to the string channel.
type StringSerializer interface {
	SerializeString(w *stream.StringOutputStream) error
}

// StringDeserializer reads a value from the string channel.
type StringDeserializer interface {
	DeserializeString(r *stream.StringInputStream) error
}

// XMLSerializer writes a value into an XML node.
type XMLSerializer interface {
	SerializeXML(n *xmlnode.Node) error
}

// XMLDeserializer reads a value from an XML node.
type XMLDeserializer interface {
	DeserializeXML(n *xmlnode.Node) error
}

// DefaultInitializer is the designated default-instantiation hook. It is
// called on zeroed storage by Construct, so types implementing it are never
// treated as zero-initializable.
type DefaultInitializer interface {
	InitDefault()
}

// Destructor releases resources held by a value. It is called by Destruct
// before the storage is cleared.
type Destructor interface {
	Destroy()
}

// EnumStringer marks an integer type as an enum. The i-th string names the
// value i unless explicit values are given at registration.
type EnumStringer interface {
	EnumStrings() []string
}
