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

// Package stream is the byte and text codec used by rtti to serialize values.
//
// The binary format is little-endian with fixed-width primitives and varint
// encoded lengths. Strings and byte slices are length prefixed. The format is
// owned by this package; rtti only decides which primitives are written and
// in which order.
package stream

import (
	"errors"
)

var (
	// ErrShortRead is returned when a read runs past the end of the buffer.
	ErrShortRead = errors.New("stream: unexpected end of stream")
	// ErrVarintOverflow is returned when a varint does not fit in 64 bits.
	ErrVarintOverflow = errors.New("stream: varint overflows 64 bits")
	// ErrInvalidBool is returned when a bool byte is neither 0 nor 1.
	ErrInvalidBool = errors.New("stream: invalid bool encoding")
	// ErrUnsupportedKind is returned by WriteValue and ReadValue for non-basic kinds.
	ErrUnsupportedKind = errors.New("stream: unsupported kind")
)

// MemoryBuffer is a growable in-memory byte buffer shared by an OutputStream
// writing to it and InputStreams reading from it.
type MemoryBuffer struct {
	data []byte
}

// NewMemoryBuffer returns an empty buffer with the given initial capacity.
func NewMemoryBuffer(capacity int) *MemoryBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryBuffer{data: make([]byte, 0, capacity)}
}

// MemoryBufferFrom wraps b without copying.
func MemoryBufferFrom(b []byte) *MemoryBuffer {
	return &MemoryBuffer{data: b}
}

// Bytes returns the buffer contents. The slice aliases the buffer.
func (b *MemoryBuffer) Bytes() []byte { return b.data }

// Len returns the number of bytes in the buffer.
func (b *MemoryBuffer) Len() int { return len(b.data) }

// Reset empties the buffer, keeping its capacity.
func (b *MemoryBuffer) Reset() { b.data = b.data[:0] }
