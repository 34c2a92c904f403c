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
	"sync"
	"sync/atomic"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/internal/diag"
	"dirpx.dev/rtti/registry"
)

// init publishes the default snapshot.
func init() {
	cfg := config.DefaultConfig()
	st.Store(&state{cfg: cfg, reg: registry.New(cfg)})
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg.
//
// An unpinned registry is rebuilt: the builtins come back in their fixed
// order and every explicitly registered or renamed type is registered again,
// in handle order, with its options, name and annotations. Handles of
// implicitly registered types may change. A pinned registry is kept.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	cfg = config.Normalize(cfg)
	applyLogLevel(cfg)

	old := st.Load()
	nreg := old.reg
	if !old.preg {
		nreg = rebuild(cfg, old.reg)
	}
	st.Store(&state{cfg: cfg, reg: nreg, preg: old.preg})
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry replaces the global registry and pins it: SetConfig no
// longer rebuilds it until UnpinRegistry is called. A nil reg is ignored.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	st.Store(&state{cfg: old.cfg, reg: reg, preg: true})
}

// IsRegistryPinned reports whether the global registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// UnpinRegistry lets SetConfig rebuild the global registry again.
func UnpinRegistry() {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	st.Store(&state{cfg: old.cfg, reg: old.reg})
}

// SetAll replaces the whole snapshot. A nil cfg keeps the current
// configuration; a nil reg builds a fresh registry from the configuration
// (nothing is carried over) and leaves it unpinned. Tests use it to start
// from a clean state.
func SetAll(cfg *apis.Config, reg apis.Registry) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	ncfg := old.cfg
	if cfg != nil {
		ncfg = config.Normalize(*cfg)
		applyLogLevel(ncfg)
	}
	nreg, pinned := reg, true
	if nreg == nil {
		nreg, pinned = registry.New(ncfg), false
	}
	st.Store(&state{cfg: ncfg, reg: nreg, preg: pinned})
}

func applyLogLevel(cfg apis.Config) {
	if cfg.LogLevel == "" {
		return
	}
	if !diag.SetLevel(cfg.LogLevel) {
		diag.Logger().Warn().Str("level", cfg.LogLevel).Msg("unknown log level ignored")
	}
}

// rebuild creates a registry for cfg and replays the explicit and renamed
// types of old.
func rebuild(cfg apis.Config, old apis.Registry) apis.Registry {
	next := registry.New(cfg)
	if old == nil {
		return next
	}
	for _, e := range old.Entries() {
		d := e.Descriptor
		if d.Paired() || (!e.Explicit && !d.Shared().Renamed()) {
			continue
		}
		spec := e.Spec
		if d.Shared().Renamed() {
			spec.Name = d.Name()
		}
		spec.Annotations = d.Shared().Annotations()
		if len(spec.Annotations) > cfg.MaxAnnotations {
			spec.Annotations = spec.Annotations[:cfg.MaxAnnotations]
		}
		if _, err := next.Register(d.Type(), spec); err != nil {
			diag.Logger().Warn().Err(err).Str("name", d.Name()).Msg("type dropped while rebuilding the registry")
		}
	}
	return next
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global snapshot.
var st atomic.Pointer[state]

// state is an immutable snapshot published atomically via st.Store; never
// mutate fields of a published state.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// reg is the global registry.
	reg apis.Registry
	// preg indicates whether reg is pinned.
	preg bool
}

