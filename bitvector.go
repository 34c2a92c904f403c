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

package rtti

import (
	"strings"
)

// BitVector is a packed vector of booleans. Its elements are not
// addressable, so it registers as a proxy-element vector: generic code
// reads and writes elements by value and VectorElement reports
// ErrElementProxy.
type BitVector struct {
	words []uint64
	n     int
}

// NewBitVector returns a vector holding bits.
func NewBitVector(bits ...bool) *BitVector {
	v := &BitVector{}
	v.Resize(len(bits))
	for i, b := range bits {
		v.Set(i, b)
	}
	return v
}

// TypeName implements apis.Namer.
func (BitVector) TypeName() string { return "BitVector" }

// Len returns the number of bits.
func (v *BitVector) Len() int { return v.n }

// Resize sets the number of bits. New bits are false.
func (v *BitVector) Resize(n int) {
	if n < 0 {
		n = 0
	}
	words := (n + 63) / 64
	switch {
	case words > len(v.words):
		v.words = append(v.words, make([]uint64, words-len(v.words))...)
	case words < len(v.words):
		clear(v.words[words:])
		v.words = v.words[:words]
	}
	if r := n % 64; r != 0 {
		v.words[words-1] &= 1<<r - 1
	}
	v.n = n
}

// Get returns bit i. Out-of-range bits read as false.
func (v *BitVector) Get(i int) bool {
	if i < 0 || i >= v.n {
		return false
	}
	return v.words[i/64]&(1<<(i%64)) != 0
}

// Set sets bit i. Out-of-range writes are ignored.
func (v *BitVector) Set(i int, b bool) {
	if i < 0 || i >= v.n {
		return
	}
	if b {
		v.words[i/64] |= 1 << (i % 64)
	} else {
		v.words[i/64] &^= 1 << (i % 64)
	}
}

// Bools returns the bits as a slice.
func (v *BitVector) Bools() []bool {
	out := make([]bool, v.n)
	for i := range out {
		out[i] = v.Get(i)
	}
	return out
}

// String renders the bits as 0s and 1s, lowest index first.
func (v *BitVector) String() string {
	var b strings.Builder
	b.Grow(v.n)
	for i := 0; i < v.n; i++ {
		if v.Get(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
