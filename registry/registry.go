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

// Package registry implements apis.Registry: the handle table, the name
// index and the registration protocol that builds, links and publishes
// descriptors.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/builder"
	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/internal/diag"
	"dirpx.dev/rtti/resolver"
	"dirpx.dev/rtti/typeinfo"
	"dirpx.dev/rtti/utils/names"
	uref "dirpx.dev/rtti/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("rtti(registry): nil reflect.Type provided")
	// ErrUnsupportedType is returned when registering a kind that has no
	// value semantics (interfaces, funcs, channels, unsafe pointers).
	ErrUnsupportedType = errors.New("rtti(registry): unsupported type")
	// ErrNameConflict indicates that a name is already taken by another type.
	ErrNameConflict = errors.New("rtti(registry): name already registered to another type")
	// ErrNotRegistered is returned for descriptors that do not belong to the registry.
	ErrNotRegistered = errors.New("rtti(registry): type is not registered")
	// ErrCapacity is raised when the handle table is full.
	ErrCapacity = errors.New("rtti(registry): type capacity exhausted")
)

// builtins are registered first and in this order, so registries created
// independently agree on their handles.
var builtins = []reflect.Type{
	reflect.TypeOf((*bool)(nil)).Elem(),
	reflect.TypeOf((*int)(nil)).Elem(),
	reflect.TypeOf((*int8)(nil)).Elem(),
	reflect.TypeOf((*int16)(nil)).Elem(),
	reflect.TypeOf((*int32)(nil)).Elem(),
	reflect.TypeOf((*int64)(nil)).Elem(),
	reflect.TypeOf((*uint)(nil)).Elem(),
	reflect.TypeOf((*uint8)(nil)).Elem(),
	reflect.TypeOf((*uint16)(nil)).Elem(),
	reflect.TypeOf((*uint32)(nil)).Elem(),
	reflect.TypeOf((*uint64)(nil)).Elem(),
	reflect.TypeOf((*uintptr)(nil)).Elem(),
	reflect.TypeOf((*float32)(nil)).Elem(),
	reflect.TypeOf((*float64)(nil)).Elem(),
	reflect.TypeOf((*complex64)(nil)).Elem(),
	reflect.TypeOf((*complex128)(nil)).Elem(),
	reflect.TypeOf((*string)(nil)).Elem(),
}

// Builtins returns the types every registry starts with, in handle order.
func Builtins() []reflect.Type {
	return append([]reflect.Type(nil), builtins...)
}

// New constructs a Registry configured by cfg and pre-registers the builtin
// types.
func New(cfg apis.Config) apis.Registry {
	cfg = config.Normalize(cfg)
	r := &registry{
		cfg:      cfg,
		builder:  builder.New(),
		handles:  make([]atomic.Pointer[typeinfo.Descriptor], cfg.MaxTypes),
		building: make(map[reflect.Type]*typeinfo.Descriptor),
		idx:      nameIndex{exact: make(map[string]*typeinfo.Descriptor)},
	}
	r.table.Store(names.NewTable(cfg.Renames))
	r.resolver = resolver.Default(r.table.Load)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range builtins {
		if _, err := r.registerLocked(t, typeinfo.Spec{}, false); err != nil {
			panic(fmt.Errorf("rtti(registry): builtin %v: %w", t, err))
		}
	}
	r.commitLocked()
	return r
}

// registry is the default apis.Registry.
//
// Readers (ByHandle, Lookup, Find) never take mu. Everything a registration
// creates is collected in a batch and published when the outermost call
// returns, so readers never see a descriptor whose components are still
// under construction.
type registry struct {
	cfg      apis.Config
	builder  apis.Builder
	resolver apis.Resolver
	table    atomic.Pointer[names.Table]

	// handles is pre-sized; slots below count are published and immutable.
	handles []atomic.Pointer[typeinfo.Descriptor]
	count   atomic.Int32
	byType  sync.Map // map[reflect.Type]*typeinfo.Descriptor
	idx     nameIndex

	// mu serializes registration and guards the fields below.
	mu       sync.Mutex
	entries  []apis.Entry
	building map[reflect.Type]*typeinfo.Descriptor
	batch    []pending
	root     reflect.Type
	rootSpec typeinfo.Spec
}

type pending struct {
	d        *typeinfo.Descriptor
	spec     typeinfo.Spec
	explicit bool
}

// Ensure registry implements apis.Registry.
var _ apis.Registry = (*registry)(nil)

// Register registers t and, as configured, its components and paired
// vector type.
func (r *registry) Register(t reflect.Type, spec typeinfo.Spec) (*typeinfo.Descriptor, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if !uref.IsSupportedKind(t) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.published(t); ok {
		if err := r.promoteLocked(d, spec); err != nil {
			return nil, err
		}
		return d, r.annotateAll(d, spec.Annotations)
	}

	saved := r.table.Load()
	if spec.Name != "" {
		// Components named before t must already see its custom name.
		if err := r.claim(t, spec.Name, spec.AdditionalNames); err != nil {
			return nil, err
		}
		r.setRename(uref.Demangle(t), spec.Name)
	}
	r.root, r.rootSpec = t, spec
	defer func() { r.root, r.rootSpec = nil, typeinfo.Spec{} }()

	if r.cfg.AutoRegisterComponents {
		for _, c := range r.componentOrder(t, spec) {
			if _, err := r.registerLocked(c, typeinfo.Spec{}, false); err != nil {
				r.abortLocked(saved)
				return nil, err
			}
		}
	}
	d, err := r.registerLocked(t, spec, true)
	if err != nil {
		r.abortLocked(saved)
		return nil, err
	}
	for i := range r.batch {
		if r.batch[i].d == d {
			r.batch[i].explicit = true
			r.batch[i].spec = spec
		}
	}
	r.commitLocked()
	return d, r.annotateAll(d, spec.Annotations)
}

// source resolves components while mu is held by the registration in
// progress. A component that cycles back to the type being registered is
// built with that type's options.
type source struct{ r *registry }

func (s source) Resolve(t reflect.Type) (*typeinfo.Descriptor, error) {
	if t == s.r.root {
		return s.r.registerLocked(t, s.r.rootSpec, true)
	}
	return s.r.registerLocked(t, typeinfo.Spec{}, false)
}

func (r *registry) known(t reflect.Type) (*typeinfo.Descriptor, bool) {
	if d, ok := r.published(t); ok {
		return d, true
	}
	d, ok := r.building[t]
	return d, ok
}

func (r *registry) published(t reflect.Type) (*typeinfo.Descriptor, bool) {
	v, ok := r.byType.Load(t)
	if !ok {
		return nil, false
	}
	return v.(*typeinfo.Descriptor), true
}

// registerLocked builds t and whatever it needs. A type that is already
// being built is returned as is; this is how recursive types terminate.
func (r *registry) registerLocked(t reflect.Type, spec typeinfo.Spec, explicit bool) (*typeinfo.Descriptor, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if d, ok := r.known(t); ok {
		return d, nil
	}

	lookup := uref.Demangle(t)
	if err := r.claim(t, spec.Name, spec.AdditionalNames); err != nil {
		return nil, err
	}
	name := spec.Name
	if name != "" {
		r.setRename(lookup, name)
	} else {
		name = r.resolver.ResolveType(t, r.cfg)
	}

	shared := typeinfo.NewSharedInfo(name, lookup, r.cfg.MaxAnnotations)
	d, err := r.builder.Describe(t, spec, shared)
	if err != nil {
		return nil, err
	}
	r.building[t] = d
	if err := r.builder.Complete(d, spec, source{r}); err != nil {
		return nil, err
	}
	r.batch = append(r.batch, pending{d: d, spec: spec, explicit: explicit})

	if r.pairable(t, d, spec) {
		p := r.builder.DescribePaired(d)
		r.building[p.Type()] = p
		if err := r.builder.Complete(p, typeinfo.Spec{}, source{r}); err != nil {
			return nil, err
		}
		shared.LinkVector(p)
		r.batch = append(r.batch, pending{d: p})
	}
	return d, nil
}

func (r *registry) pairable(t reflect.Type, d *typeinfo.Descriptor, spec typeinfo.Spec) bool {
	if !r.cfg.PairVectorTypes || spec.NoVector || d.IsVector() || !uref.IsSupportedKind(t) {
		return false
	}
	vt := reflect.SliceOf(t)
	if vt == r.root {
		return false
	}
	_, taken := r.known(vt)
	return !taken
}

// claim checks that name and aliases are free for t.
func (r *registry) claim(t reflect.Type, name string, aliases []string) error {
	check := func(n string) error {
		if n == "" {
			return nil
		}
		if d, ok := r.idx.get(n); ok && d.Type() != t {
			return diag.Programming(r.cfg.Strict, fmt.Errorf("%w: %q is %v", ErrNameConflict, n, d.Type()))
		}
		for _, p := range r.batch {
			if p.d.Type() != t && p.d.Name() == n {
				return diag.Programming(r.cfg.Strict, fmt.Errorf("%w: %q is %v", ErrNameConflict, n, p.d.Type()))
			}
		}
		return nil
	}
	if err := check(name); err != nil {
		return err
	}
	for _, a := range aliases {
		if err := check(a); err != nil {
			return err
		}
	}
	return nil
}

// setRename publishes a copy of the rename table with one more entry.
func (r *registry) setRename(from, to string) {
	next := r.table.Load().Clone()
	next.Set(from, to)
	r.table.Store(next)
}

func (r *registry) abortLocked(saved *names.Table) {
	clear(r.building)
	r.batch = nil
	r.table.Store(saved)
}

// commitLocked assigns handles to the batch and publishes it.
func (r *registry) commitLocked() {
	batch := r.batch
	r.batch = nil
	clear(r.building)

	base := int(r.count.Load())
	if base+len(batch) > len(r.handles) {
		diag.Fatal(fmt.Errorf("%w: capacity %d, need %d", ErrCapacity, len(r.handles), base+len(batch)))
	}
	// T and []T share SharedInfo, so both handles are set before either is
	// visible to readers.
	for i, p := range batch {
		h := typeinfo.Handle(base + i)
		if p.d.Paired() {
			p.d.Shared().AssignVectorHandle(h)
		} else {
			p.d.Shared().AssignHandle(h)
		}
	}
	for i, p := range batch {
		h := typeinfo.Handle(base + i)
		r.handles[h].Store(p.d)
		r.byType.Store(p.d.Type(), p.d)
		r.entries = append(r.entries, apis.Entry{Descriptor: p.d, Spec: p.spec, Explicit: p.explicit})
		r.idx.add(p.d, p.spec.AdditionalNames)
		r.count.Add(1)

		diag.Logger().Debug().
			Uint16("handle", uint16(h)).
			Str("name", p.d.Name()).
			Stringer("shape", p.d.Shape()).
			Bool("explicit", p.explicit).
			Msg("registered type")
	}
}

// promoteLocked applies an explicit registration to a type that is already
// published, typically because it was registered as a component first.
func (r *registry) promoteLocked(d *typeinfo.Descriptor, spec typeinfo.Spec) error {
	e := &r.entries[d.Handle()]
	if spec.Name != "" && spec.Name != d.Name() {
		if err := r.renameLocked(d, spec.Name); err != nil {
			return err
		}
	}
	if len(spec.AdditionalNames) > 0 {
		if err := r.claim(d.Type(), "", spec.AdditionalNames); err != nil {
			return err
		}
		r.idx.addAliases(d, spec.AdditionalNames)
	}
	if spec.Underlying != nil || spec.Factory != nil || len(spec.EnumNames) > 0 || spec.BitwiseEquals {
		diag.Logger().Warn().Str("name", d.Name()).Msg("type already registered; operation options ignored")
	}
	if !e.Explicit {
		e.Explicit = true
		e.Spec = spec
	}
	return nil
}

// Lookup returns the descriptor of t if registered.
func (r *registry) Lookup(t reflect.Type) (*typeinfo.Descriptor, bool) {
	if t == nil {
		return nil, false
	}
	return r.published(t)
}

// ByHandle returns the descriptor with handle h.
func (r *registry) ByHandle(h typeinfo.Handle) (*typeinfo.Descriptor, bool) {
	if int(h) >= int(r.count.Load()) {
		return nil, false
	}
	d := r.handles[h].Load()
	return d, d != nil
}

// Find resolves a name. It tries, in order: exact and additional names, a
// unique namespace suffix, the name with its outermost namespace removed,
// and finally the name read as Go type text.
func (r *registry) Find(name string) (*typeinfo.Descriptor, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if d, ok := r.find(name); ok {
		return d, true
	}
	if c := names.Canonicalize(name, r.table.Load()); c != name {
		return r.find(c)
	}
	return nil, false
}

func (r *registry) find(name string) (*typeinfo.Descriptor, bool) {
	for {
		if d, ok := r.idx.get(name); ok {
			return d, true
		}
		if d, n := r.idx.suffix(name); d != nil {
			if n > 1 {
				diag.Logger().Warn().Str("name", name).Int("matches", n).Str("picked", d.Name()).Msg("ambiguous type name")
			}
			return d, true
		}
		rest, ok := names.StripNamespace(name)
		if !ok {
			return nil, false
		}
		name = rest
	}
}

// Rename changes the canonical name of d once. Later composite names use
// the new name.
func (r *registry) Rename(d *typeinfo.Descriptor, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renameLocked(d, name)
}

func (r *registry) renameLocked(d *typeinfo.Descriptor, name string) error {
	if d == nil {
		return ErrNilType
	}
	if got, ok := r.ByHandle(d.Handle()); !ok || got != d {
		return fmt.Errorf("%w: %v", ErrNotRegistered, d.Type())
	}
	if name == "" {
		return diag.Programming(r.cfg.Strict, typeinfo.ErrEmptyName)
	}
	plain := d
	if d.Paired() {
		plain, _ = r.ByHandle(d.Shared().Handle())
	}
	if err := r.claim(plain.Type(), name, nil); err != nil {
		return err
	}

	r.idx.mu.Lock()
	defer r.idx.mu.Unlock()
	oldPlain := plain.Name()
	var oldVector string
	if v := plain.Shared().Vector(); v != nil {
		oldVector = v.Name()
	}
	if err := plain.Shared().Rename(name); err != nil {
		return diag.Programming(r.cfg.Strict, err)
	}
	r.idx.renameLocked(plain, oldPlain)
	if v := plain.Shared().Vector(); v != nil && v.Handle() != typeinfo.InvalidHandle {
		r.idx.renameLocked(v, oldVector)
	}
	r.setRename(plain.LookupName(), name)

	diag.Logger().Debug().Str("from", oldPlain).Str("to", name).Msg("renamed type")
	return nil
}

// Annotate attaches a to the type.
func (r *registry) Annotate(d *typeinfo.Descriptor, a any) error {
	if d == nil {
		return ErrNilType
	}
	err := d.Shared().AddAnnotation(a)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, typeinfo.ErrAnnotationCapacity):
		diag.Fatal(err)
	case errors.Is(err, typeinfo.ErrAnnotationExists):
		return diag.Programming(r.cfg.Strict, err)
	}
	return err
}

func (r *registry) annotateAll(d *typeinfo.Descriptor, as []any) error {
	for _, a := range as {
		if err := r.Annotate(d, a); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns a snapshot in handle order.
func (r *registry) Entries() []apis.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]apis.Entry(nil), r.entries...)
}

// Count returns the number of handles in use.
func (r *registry) Count() int {
	return int(r.count.Load())
}

// Config returns the configuration the registry was built with.
func (r *registry) Config() apis.Config {
	return r.cfg
}
