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

// Package names turns Go type text into canonical type names and provides
// the namespace helpers used by name lookups.
//
// Canonical names use a language-neutral container syntax:
//
//	[]T         -> List<T>
//	[N]T        -> Array<T, N>
//	map[K]V     -> Map<K, V>
//	pkg.Box[A]  -> pkg.Box<A>
//
// Import paths are shortened to their last element
// ("example.com/shop/model.Item" -> "model.Item").
package names

import (
	"strings"
)

// Canonicalize applies the rename table to demangled Go type text and then
// rewrites it into canonical syntax.
func Canonicalize(demangled string, t *Table) string {
	s := t.Apply(demangled)
	p := &parser{s: s}
	out := p.parseType()
	if p.pos < len(s) {
		out += s[p.pos:]
	}
	return out
}

type parser struct {
	s   string
	pos int
}

func (p *parser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

var rawPrefixes = []string{"struct {", "struct{", "interface {", "interface{", "func(", "chan ", "<-chan "}

func (p *parser) parseType() string {
	rest := p.s[p.pos:]
	switch {
	case strings.HasPrefix(rest, "[]"):
		p.pos += 2
		return "List<" + p.parseType() + ">"
	case strings.HasPrefix(rest, "map["):
		p.pos += 4
		k := p.parseType()
		if p.peek() == ']' {
			p.pos++
		}
		return "Map<" + k + ", " + p.parseType() + ">"
	case strings.HasPrefix(rest, "*"):
		p.pos++
		return "*" + p.parseType()
	case strings.HasPrefix(rest, "["):
		if j := strings.IndexByte(rest, ']'); j > 1 && allDigits(rest[1:j]) {
			p.pos += j + 1
			return "Array<" + p.parseType() + ", " + rest[1:j] + ">"
		}
		return p.raw()
	}
	for _, prefix := range rawPrefixes {
		if strings.HasPrefix(rest, prefix) {
			return p.raw()
		}
	}
	return p.ident()
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.s) && isPathByte(p.s[p.pos]) {
		p.pos++
	}
	name := shortenPath(p.s[start:p.pos])
	if name == "" || p.peek() != '[' {
		return name
	}
	p.pos++
	var args []string
	for {
		args = append(args, p.parseType())
		p.skipSpaces()
		if p.peek() != ',' {
			break
		}
		p.pos++
		p.skipSpaces()
	}
	if p.peek() == ']' {
		p.pos++
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

// raw consumes balanced text up to a top-level ',' or an unmatched ']'.
func (p *parser) raw() string {
	start := p.pos
	depth := 0
loop:
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '(', '[', '{':
			depth++
		case ')', '}':
			depth--
		case ']':
			if depth == 0 {
				break loop
			}
			depth--
		case ',':
			if depth == 0 {
				break loop
			}
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func shortenPath(q string) string {
	if i := strings.LastIndexByte(q, '/'); i >= 0 {
		return q[i+1:]
	}
	return q
}

// topLevelDots returns the byte offsets of '.' separators outside <...>.
func topLevelDots(name string) []int {
	var dots []int
	depth := 0
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '<':
			depth++
		case '>':
			depth--
		case '.':
			if depth == 0 {
				dots = append(dots, i)
			}
		}
	}
	return dots
}

// Namespace returns everything before the last namespace separator, or "".
func Namespace(name string) string {
	dots := topLevelDots(name)
	if len(dots) == 0 {
		return ""
	}
	return name[:dots[len(dots)-1]]
}

// Local returns the name without its namespace.
func Local(name string) string {
	dots := topLevelDots(name)
	if len(dots) == 0 {
		return name
	}
	return name[dots[len(dots)-1]+1:]
}

// StripNamespace drops the outermost namespace level: "a.b.C" -> "b.C".
// It reports false when name has no namespace.
func StripNamespace(name string) (string, bool) {
	dots := topLevelDots(name)
	if len(dots) == 0 {
		return name, false
	}
	return name[dots[0]+1:], true
}

// MatchesSuffix reports whether full equals short or ends with "."+short
// on a namespace boundary.
func MatchesSuffix(full, short string) bool {
	if full == short {
		return true
	}
	if !strings.HasSuffix(full, short) {
		return false
	}
	cut := len(full) - len(short) - 1
	if cut < 0 || full[cut] != '.' {
		return false
	}
	for _, d := range topLevelDots(full) {
		if d == cut {
			return true
		}
	}
	return false
}
