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
	"strings"
)

// StringOutputStream collects the string encoding of a value.
type StringOutputStream struct {
	sb strings.Builder
}

// NewStringOutputStream returns an empty string stream.
func NewStringOutputStream() *StringOutputStream {
	return &StringOutputStream{}
}

// WriteString appends s.
func (w *StringOutputStream) WriteString(s string) {
	w.sb.WriteString(s)
}

// String returns everything written so far.
func (w *StringOutputStream) String() string { return w.sb.String() }

// Reset discards the collected text.
func (w *StringOutputStream) Reset() { w.sb.Reset() }

// StringInputStream reads the string encoding of a value.
type StringInputStream struct {
	s   string
	pos int
}

// NewStringInputStream returns a stream reading s.
func NewStringInputStream(s string) *StringInputStream {
	return &StringInputStream{s: s}
}

// ReadAll returns the unread remainder and consumes it.
func (r *StringInputStream) ReadAll() string {
	out := r.s[r.pos:]
	r.pos = len(r.s)
	return out
}

// ReadWhile consumes the longest prefix whose bytes satisfy keep.
func (r *StringInputStream) ReadWhile(keep func(byte) bool) string {
	start := r.pos
	for r.pos < len(r.s) && keep(r.s[r.pos]) {
		r.pos++
	}
	return r.s[start:r.pos]
}

// SkipWhitespace consumes ASCII white space.
func (r *StringInputStream) SkipWhitespace() {
	r.ReadWhile(func(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' })
}

// Peek returns the next byte without consuming it, or 0 at the end.
func (r *StringInputStream) Peek() byte {
	if r.pos >= len(r.s) {
		return 0
	}
	return r.s[r.pos]
}

// Remaining returns the unread remainder without consuming it.
func (r *StringInputStream) Remaining() string { return r.s[r.pos:] }

// MoreDataAvailable reports whether unread text remains.
func (r *StringInputStream) MoreDataAvailable() bool { return r.pos < len(r.s) }
