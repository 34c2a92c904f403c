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
)

// InputStream reads values written by an OutputStream.
type InputStream struct {
	data []byte
	pos  int
}

// NewInputStream returns a stream reading the current contents of buf.
func NewInputStream(buf *MemoryBuffer) *InputStream {
	if buf == nil {
		return &InputStream{}
	}
	return &InputStream{data: buf.data}
}

// InputStreamFrom reads directly from b.
func InputStreamFrom(b []byte) *InputStream {
	return &InputStream{data: b}
}

// Remaining returns the number of unread bytes.
func (r *InputStream) Remaining() int { return len(r.data) - r.pos }

// MoreDataAvailable reports whether unread bytes remain.
func (r *InputStream) MoreDataAvailable() bool { return r.pos < len(r.data) }

func (r *InputStream) next(n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.pos < n {
		return nil, ErrShortRead
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadRaw reads exactly n bytes. The result aliases the stream data.
func (r *InputStream) ReadRaw(n int) ([]byte, error) { return r.next(n) }

// ReadBool reads a 0/1 byte.
func (r *InputStream) ReadBool() (bool, error) {
	b, err := r.next(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

// ReadUint8 reads one byte.
func (r *InputStream) ReadUint8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian uint16.
func (r *InputStream) ReadUint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian uint32.
func (r *InputStream) ReadUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian uint64.
func (r *InputStream) ReadUint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt8 reads one byte.
func (r *InputStream) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadInt16 reads a little-endian int16.
func (r *InputStream) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a little-endian int32.
func (r *InputStream) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads a little-endian int64.
func (r *InputStream) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads IEEE-754 bits.
func (r *InputStream) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads IEEE-754 bits.
func (r *InputStream) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadVarUint reads an unsigned LEB128 varint.
func (r *InputStream) ReadVarUint() (uint64, error) {
	var x uint64
	var s uint
	for i := 0; ; i++ {
		if r.pos >= len(r.data) {
			return 0, ErrShortRead
		}
		b := r.data[r.pos]
		r.pos++
		if i == 9 && b > 1 {
			return 0, ErrVarintOverflow
		}
		if b < 0x80 {
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
}

// ReadLength reads a varint length and checks it against the remaining data.
func (r *InputStream) ReadLength() (int, error) {
	n, err := r.ReadVarUint()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Remaining()) {
		return 0, ErrShortRead
	}
	return int(n), nil
}

// ReadString reads a length-prefixed string.
func (r *InputStream) ReadString() (string, error) {
	n, err := r.ReadLength()
	if err != nil {
		return "", err
	}
	b, err := r.next(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadBytes reads a length-prefixed byte slice into a fresh slice.
func (r *InputStream) ReadBytes() ([]byte, error) {
	n, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	b, err := r.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Read reads a number written by Write.
func Read[T Number](r *InputStream) (T, error) {
	var zero T
	v := reflect.ValueOf(&zero).Elem()
	if err := ReadValue(r, v); err != nil {
		return zero, err
	}
	return zero, nil
}

// ReadValue reads a value written by WriteValue into the settable v.
func ReadValue(r *InputStream, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		x, err := r.ReadBool()
		v.SetBool(x)
		return err
	case reflect.Int8:
		x, err := r.ReadInt8()
		v.SetInt(int64(x))
		return err
	case reflect.Int16:
		x, err := r.ReadInt16()
		v.SetInt(int64(x))
		return err
	case reflect.Int32:
		x, err := r.ReadInt32()
		v.SetInt(int64(x))
		return err
	case reflect.Int, reflect.Int64:
		x, err := r.ReadInt64()
		v.SetInt(x)
		return err
	case reflect.Uint8:
		x, err := r.ReadUint8()
		v.SetUint(uint64(x))
		return err
	case reflect.Uint16:
		x, err := r.ReadUint16()
		v.SetUint(uint64(x))
		return err
	case reflect.Uint32:
		x, err := r.ReadUint32()
		v.SetUint(uint64(x))
		return err
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		x, err := r.ReadUint64()
		v.SetUint(x)
		return err
	case reflect.Float32:
		x, err := r.ReadFloat32()
		v.SetFloat(float64(x))
		return err
	case reflect.Float64:
		x, err := r.ReadFloat64()
		v.SetFloat(x)
		return err
	case reflect.Complex64:
		re, err := r.ReadFloat32()
		if err != nil {
			return err
		}
		im, err := r.ReadFloat32()
		v.SetComplex(complex(float64(re), float64(im)))
		return err
	case reflect.Complex128:
		re, err := r.ReadFloat64()
		if err != nil {
			return err
		}
		im, err := r.ReadFloat64()
		v.SetComplex(complex(re, im))
		return err
	case reflect.String:
		x, err := r.ReadString()
		v.SetString(x)
		return err
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedKind, v.Kind())
}
