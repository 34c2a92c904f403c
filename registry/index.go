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

package registry

import (
	"sync"

	"dirpx.dev/rtti/internal/diag"
	"dirpx.dev/rtti/typeinfo"
	"dirpx.dev/rtti/utils/names"
)

// nameIndex maps names to published descriptors. It is written at commit
// and rename time and read without the registration lock.
type nameIndex struct {
	mu    sync.RWMutex
	exact map[string]*typeinfo.Descriptor
	// ordered lists every indexed name in handle order; suffix lookups scan
	// it so the lowest handle wins.
	ordered []named
}

type named struct {
	name string
	d    *typeinfo.Descriptor
}

func (x *nameIndex) get(name string) (*typeinfo.Descriptor, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	d, ok := x.exact[name]
	return d, ok
}

// add indexes the canonical name of d and its aliases. A default name
// already taken stays with the first type; d remains reachable by type and
// handle.
func (x *nameIndex) add(d *typeinfo.Descriptor, aliases []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.insertLocked(d, d.Name())
	for _, a := range aliases {
		x.insertLocked(d, a)
	}
}

func (x *nameIndex) addAliases(d *typeinfo.Descriptor, aliases []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, a := range aliases {
		x.insertLocked(d, a)
	}
}

func (x *nameIndex) insertLocked(d *typeinfo.Descriptor, name string) {
	if name == "" {
		return
	}
	if prev, ok := x.exact[name]; ok {
		if prev != d {
			diag.Logger().Warn().Str("name", name).Stringer("kept", prev.Type()).Stringer("dropped", d.Type()).Msg("duplicate type name")
		}
		return
	}
	x.exact[name] = d
	x.ordered = append(x.ordered, named{name: name, d: d})
}

// renameLocked moves d from old to its current name. x.mu must be held.
func (x *nameIndex) renameLocked(d *typeinfo.Descriptor, old string) {
	if x.exact[old] == d {
		delete(x.exact, old)
	}
	name := d.Name()
	x.exact[name] = d
	for i := range x.ordered {
		if x.ordered[i].d == d && x.ordered[i].name == old {
			x.ordered[i].name = name
			return
		}
	}
	x.ordered = append(x.ordered, named{name: name, d: d})
}

// suffix returns the descriptor with the lowest handle whose name ends in
// "."+short, and the number of distinct matches.
func (x *nameIndex) suffix(short string) (*typeinfo.Descriptor, int) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var (
		best *typeinfo.Descriptor
		seen = map[*typeinfo.Descriptor]struct{}{}
	)
	for _, n := range x.ordered {
		if !names.MatchesSuffix(n.name, short) {
			continue
		}
		seen[n.d] = struct{}{}
		if best == nil || n.d.Handle() < best.Handle() {
			best = n.d
		}
	}
	return best, len(seen)
}
