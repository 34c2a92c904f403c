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

package names

import (
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// Table maps demangled Go type text to replacement names. Entries are kept
// longest-first so that a longer match always wins over its prefixes.
//
// A Table is not safe for concurrent mutation. Registries treat published
// tables as immutable and mutate a Clone. Values memoized on a table are
// dropped with it; a Clone starts with an empty memo.
type Table struct {
	entries []rename
	memo    sync.Map // key -> string
}

type rename struct {
	from string
	to   string
}

// NewTable builds a table from a map of renames.
func NewTable(m map[string]string) *Table {
	t := &Table{entries: make([]rename, 0, len(m))}
	for from, to := range m {
		if from != "" && to != "" {
			t.entries = append(t.entries, rename{from, to})
		}
	}
	slices.SortFunc(t.entries, compareRenames)
	return t
}

func compareRenames(a, b rename) int {
	if len(a.from) != len(b.from) {
		return len(b.from) - len(a.from)
	}
	return strings.Compare(a.from, b.from)
}

// Clone returns an independent copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return &Table{}
	}
	return &Table{entries: slices.Clone(t.entries)}
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Set adds or replaces the entry for from.
func (t *Table) Set(from, to string) {
	if from == "" || to == "" {
		return
	}
	r := rename{from, to}
	i, found := slices.BinarySearchFunc(t.entries, r, compareRenames)
	if found {
		t.entries[i].to = to
		return
	}
	t.entries = slices.Insert(t.entries, i, r)
}

// Lookup returns the replacement for exactly from.
func (t *Table) Lookup(from string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, found := slices.BinarySearchFunc(t.entries, rename{from: from}, compareRenames)
	if !found {
		return "", false
	}
	return t.entries[i].to, true
}

// Memoize returns the string cached under key, computing and storing it on
// the first call. The cache lives as long as the table. Safe for concurrent
// use on a published table.
func (t *Table) Memoize(key any, compute func() string) string {
	if v, ok := t.memo.Load(key); ok {
		return v.(string)
	}
	v, _ := t.memo.LoadOrStore(key, compute())
	return v.(string)
}

// Map returns the entries as a map.
func (t *Table) Map() map[string]string {
	m := make(map[string]string, t.Len())
	if t != nil {
		for _, e := range t.entries {
			m[e.from] = e.to
		}
	}
	return m
}

// Apply replaces every occurrence of an entry in s that stands on
// identifier boundaries. Longer entries are tried first at each position.
func (t *Table) Apply(s string) string {
	if t.Len() == 0 || s == "" {
		return s
	}
	var b strings.Builder
	i := 0
	copied := 0
	for i < len(s) {
		if i > 0 && isPathByte(s[i-1]) {
			i++
			continue
		}
		matched := false
		for _, e := range t.entries {
			if !strings.HasPrefix(s[i:], e.from) {
				continue
			}
			end := i + len(e.from)
			if end < len(s) && isIdentByte(s[end]) {
				continue
			}
			b.WriteString(s[copied:i])
			b.WriteString(e.to)
			i, copied = end, end
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	if copied == 0 {
		return s
	}
	b.WriteString(s[copied:])
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// isPathByte reports bytes that may continue a qualified identifier.
func isPathByte(c byte) bool {
	return isIdentByte(c) || c == '.' || c == '/' || c == '-' || c == '~'
}
