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
	"fmt"
	"strings"
)

// Encoding selects one of the three serialization channels of a type.
//
// # Values
//
//   - Binary: compact little-endian stream.
//   - String: human-readable text.
//   - XML   : an element tree.
//
// # Contract
//
//   - The textual forms returned by String are stable and are what Parse
//     and UnmarshalText accept (case-insensitive).
//   - Unknown values never panic in String; they render as "Unknown(<n>)".
type Encoding uint8

const (
	// Binary selects the binary stream channel.
	Binary Encoding = iota
	// String selects the string channel.
	String
	// XML selects the XML channel.
	XML
)

// String implements fmt.Stringer.
func (e Encoding) String() string {
	switch e {
	case Binary:
		return "Binary"
	case String:
		return "String"
	case XML:
		return "XML"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(e))
	}
}

// ParseEncoding parses the textual form of an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Binary, fmt.Errorf("rtti: empty encoding")
	}
	switch strings.ToUpper(trimmed) {
	case "BINARY":
		return Binary, nil
	case "STRING":
		return String, nil
	case "XML":
		return XML, nil
	default:
		return Binary, fmt.Errorf("rtti: unknown encoding %q", s)
	}
}

// MustParseEncoding is ParseEncoding that panics on error.
func MustParseEncoding(s string) Encoding {
	e, err := ParseEncoding(s)
	if err != nil {
		panic(err)
	}
	return e
}

// MarshalText implements encoding.TextMarshaler.
func (e Encoding) MarshalText() ([]byte, error) {
	switch e {
	case Binary, String, XML:
		return []byte(e.String()), nil
	default:
		return nil, fmt.Errorf("rtti: cannot marshal unknown encoding %d", uint8(e))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(text []byte) error {
	v, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// TypeEncoding selects how a type identifier is written to a binary stream.
type TypeEncoding uint8

const (
	// ByHandle writes the 16-bit handle. Only valid between processes that
	// registered the same types in the same order.
	ByHandle TypeEncoding = iota
	// ByName writes the canonical name.
	ByName
)

// String implements fmt.Stringer.
func (e TypeEncoding) String() string {
	switch e {
	case ByHandle:
		return "Handle"
	case ByName:
		return "Name"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(e))
	}
}
