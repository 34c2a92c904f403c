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

package registry_test

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/registry"
	"dirpx.dev/rtti/typeinfo"
)

// A few named types to avoid anonymous/unnamed pitfalls.
type T0 struct{ A int }
type T1 struct{ A []T0 }
type T2 struct{ A map[string]T1 }
type T3 struct{ A *T3 }
type T4 struct{ A [4]T0 }
type T5 struct{}
type T6 struct{ A, B T5 }
type T7 struct{ A []*T7 }
type T8 struct{ A T9 }
type T9 struct{ B *T8 }

// TestConcurrentRegisterAndLookup verifies that Register, Lookup, ByHandle,
// Find and Entries are race-free and that readers only ever observe fully
// installed descriptors.
func TestConcurrentRegisterAndLookup(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	types := []reflect.Type{
		reflect.TypeOf(T0{}), reflect.TypeOf(T1{}), reflect.TypeOf(T2{}),
		reflect.TypeOf(T3{}), reflect.TypeOf(T4{}), reflect.TypeOf(T5{}),
		reflect.TypeOf(T6{}), reflect.TypeOf(T7{}), reflect.TypeOf(T8{}),
		reflect.TypeOf(T9{}),
	}
	names := make([]string, len(types))
	for i := range types {
		names[i] = fmt.Sprintf("T%d", i)
	}

	wg := sync.WaitGroup{}
	workers := runtime.GOMAXPROCS(0) * 4

	// Writers race to register the same types with the same names.
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				j := (i + id) % len(types)
				if _, err := reg.Register(types[j], typeinfo.Spec{Name: names[j]}); err != nil {
					t.Errorf("register %v: %v", types[j], err)
					return
				}
			}
		}(w)
	}

	// Readers
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				tt := types[i%len(types)]
				if d, ok := reg.Lookup(tt); ok && !d.Installed() {
					t.Errorf("published descriptor of %v is not installed", tt)
					return
				}
				if d, ok := reg.Find(names[i%len(names)]); ok && d.Type() != tt {
					t.Errorf("Find(%q) = %v", names[i%len(names)], d.Type())
					return
				}
				n := reg.Count()
				if d, ok := reg.ByHandle(typeinfo.Handle(n - 1)); !ok || !d.Installed() {
					t.Errorf("handle %d below count %d not published", n-1, n)
					return
				}
				_ = reg.Entries()
			}
		}()
	}

	wg.Wait()

	// Final consistency checks.
	entries := reg.Entries()
	if len(entries) != reg.Count() {
		t.Fatalf("entries/count mismatch: %d vs %d", len(entries), reg.Count())
	}
	for i, e := range entries {
		if int(e.Descriptor.Handle()) != i {
			t.Fatalf("entry %d carries handle %d", i, e.Descriptor.Handle())
		}
	}
	for i, tt := range types {
		d, ok := reg.Lookup(tt)
		if !ok {
			t.Fatalf("%v not registered", tt)
		}
		if d.Name() != names[i] {
			t.Fatalf("name mismatch for %v: got %q want %q", tt, d.Name(), names[i])
		}
		if !entries[d.Handle()].Explicit {
			t.Fatalf("%v registered explicitly but entry is implicit", tt)
		}
	}
}

// TestEntriesSnapshot ensures Entries returns a copy that later
// registrations do not mutate.
func TestEntriesSnapshot(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	snap := reg.Entries()
	if _, err := reg.Register(reflect.TypeOf(T5{}), typeinfo.Spec{}); err != nil {
		t.Fatal(err)
	}
	if len(snap) == reg.Count() {
		t.Fatalf("snapshot grew with the registry: %d", len(snap))
	}
	if len(reg.Entries()) != reg.Count() {
		t.Fatalf("entries length %d, count %d", len(reg.Entries()), reg.Count())
	}
}

// TestPairedHandlesVisibleWithElement checks that a reader that finds T
// also sees the handle of its paired []T.
func TestPairedHandlesVisibleWithElement(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	const n = 300
	types := make([]reflect.Type, n)
	for i := range types {
		types[i] = reflect.ArrayOf(i+1, reflect.TypeOf(int16(0)))
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			for _, rt := range types {
				d, ok := reg.Lookup(rt)
				if !ok {
					continue
				}
				v := d.Shared().Vector()
				if v == nil {
					t.Errorf("%v: paired vector not linked", rt)
					return
				}
				if got, want := d.Shared().VectorHandle(), d.Handle()+1; got != want {
					t.Errorf("%v: vector handle %d, want %d", rt, got, want)
					return
				}
			}
		}
	}()

	for _, rt := range types {
		if _, err := reg.Register(rt, typeinfo.Spec{}); err != nil {
			t.Errorf("Register(%v): %v", rt, err)
		}
	}
	close(done)
	wg.Wait()
}
