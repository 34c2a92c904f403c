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

package stream

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// Number is the set of fixed-width primitives the generic helpers accept.
type Number interface {
	constraints.Integer | constraints.Float
}

// OutputStream appends binary encoded values to a MemoryBuffer.
type OutputStream struct {
	buf     *MemoryBuffer
	scratch [8]byte
}

// NewOutputStream returns a stream appending to buf. A nil buf gets a fresh buffer.
func NewOutputStream(buf *MemoryBuffer) *OutputStream {
	if buf == nil {
		buf = NewMemoryBuffer(64)
	}
	return &OutputStream{buf: buf}
}

// Buffer returns the underlying buffer.
func (w *OutputStream) Buffer() *MemoryBuffer { return w.buf }

// Bytes is a shortcut for Buffer().Bytes().
func (w *OutputStream) Bytes() []byte { return w.buf.data }

// WriteRaw appends p unmodified.
func (w *OutputStream) WriteRaw(p []byte) {
	w.buf.data = append(w.buf.data, p...)
}

// WriteBool writes a single 0/1 byte.
func (w *OutputStream) WriteBool(v bool) {
	if v {
		w.buf.data = append(w.buf.data, 1)
		return
	}
	w.buf.data = append(w.buf.data, 0)
}

// WriteUint8 writes one byte.
func (w *OutputStream) WriteUint8(v uint8) { w.buf.data = append(w.buf.data, v) }

// WriteUint16 writes v little-endian.
func (w *OutputStream) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.scratch[:2], v)
	w.buf.data = append(w.buf.data, w.scratch[:2]...)
}

// WriteUint32 writes v little-endian.
func (w *OutputStream) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	w.buf.data = append(w.buf.data, w.scratch[:4]...)
}

// WriteUint64 writes v little-endian.
func (w *OutputStream) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(w.scratch[:8], v)
	w.buf.data = append(w.buf.data, w.scratch[:8]...)
}

// WriteInt8 writes one byte.
func (w *OutputStream) WriteInt8(v int8) { w.WriteUint8(uint8(v)) }

// WriteInt16 writes v little-endian.
func (w *OutputStream) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

// WriteInt32 writes v little-endian.
func (w *OutputStream) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

// WriteInt64 writes v little-endian.
func (w *OutputStream) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteFloat32 writes the IEEE-754 bits of v.
func (w *OutputStream) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

// WriteFloat64 writes the IEEE-754 bits of v.
func (w *OutputStream) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteVarUint writes x as an unsigned LEB128 varint.
func (w *OutputStream) WriteVarUint(x uint64) {
	for x >= 0x80 {
		w.buf.data = append(w.buf.data, byte(x)|0x80)
		x >>= 7
	}
	w.buf.data = append(w.buf.data, byte(x))
}

// WriteString writes a length-prefixed string.
func (w *OutputStream) WriteString(s string) {
	w.WriteVarUint(uint64(len(s)))
	w.buf.data = append(w.buf.data, s...)
}

// WriteBytes writes a length-prefixed byte slice.
func (w *OutputStream) WriteBytes(p []byte) {
	w.WriteVarUint(uint64(len(p)))
	w.buf.data = append(w.buf.data, p...)
}

// Write writes any fixed-width number with its natural width.
// int and uint are always written as 64-bit values.
func Write[T Number](w *OutputStream, v T) {
	switch x := any(v).(type) {
	case int8:
		w.WriteInt8(x)
	case uint8:
		w.WriteUint8(x)
	case int16:
		w.WriteInt16(x)
	case uint16:
		w.WriteUint16(x)
	case int32:
		w.WriteInt32(x)
	case uint32:
		w.WriteUint32(x)
	case int64:
		w.WriteInt64(x)
	case uint64:
		w.WriteUint64(x)
	case int:
		w.WriteInt64(int64(x))
	case uint:
		w.WriteUint64(uint64(x))
	case uintptr:
		w.WriteUint64(uint64(x))
	case float32:
		w.WriteFloat32(x)
	case float64:
		w.WriteFloat64(x)
	default:
		// Named numeric types land here; dispatch on the kind.
		_ = WriteValue(w, reflect.ValueOf(v))
	}
}

// WriteValue writes a value of any basic kind: booleans, numbers, complex
// numbers and strings. Other kinds yield ErrUnsupportedKind.
func WriteValue(w *OutputStream, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		w.WriteBool(v.Bool())
	case reflect.Int8:
		w.WriteInt8(int8(v.Int()))
	case reflect.Int16:
		w.WriteInt16(int16(v.Int()))
	case reflect.Int32:
		w.WriteInt32(int32(v.Int()))
	case reflect.Int, reflect.Int64:
		w.WriteInt64(v.Int())
	case reflect.Uint8:
		w.WriteUint8(uint8(v.Uint()))
	case reflect.Uint16:
		w.WriteUint16(uint16(v.Uint()))
	case reflect.Uint32:
		w.WriteUint32(uint32(v.Uint()))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		w.WriteUint64(v.Uint())
	case reflect.Float32:
		w.WriteFloat32(float32(v.Float()))
	case reflect.Float64:
		w.WriteFloat64(v.Float())
	case reflect.Complex64:
		c := v.Complex()
		w.WriteFloat32(float32(real(c)))
		w.WriteFloat32(float32(imag(c)))
	case reflect.Complex128:
		c := v.Complex()
		w.WriteFloat64(real(c))
		w.WriteFloat64(imag(c))
	case reflect.String:
		w.WriteString(v.String())
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, v.Kind())
	}
	return nil
}
