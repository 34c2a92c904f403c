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

package synth

import (
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

// UnderlyingPrefix marks labels of groups taken over from the underlying
// type.
const UnderlyingPrefix = "underlying:"

// underlying returns the installed descriptor whose groups d may reuse.
// Both types must share their memory layout.
func (p *plan) underlying() *typeinfo.Descriptor {
	u := p.d.Underlying()
	if u == nil || !u.Installed() || u.Size() != p.t.Size() || !p.t.ConvertibleTo(u.Type()) {
		return nil
	}
	return u
}

func (p *plan) inherit(u *typeinfo.Descriptor, ops ...typeinfo.Op) {
	for _, op := range ops {
		if l := u.Strategy(op); l != "" {
			p.table.Labels[op] = UnderlyingPrefix + l
		}
	}
}

// inheritBinaryOps reuses the lifecycle group when T adds no lifecycle or
// comparison behaviour of its own.
func (p *plan) inheritBinaryOps(u *typeinfo.Descriptor) bool {
	t := p.t
	if uref.HasEqualMethod(t) || uref.HasCopyFromMethod(t) || uref.HasDestructor(t) || uref.HasInitializer(t) {
		return false
	}
	if p.spec.Factory != nil || p.spec.BitwiseEquals {
		return false
	}
	if e := p.d.Enum(); e != nil && e.First() != 0 {
		return false
	}
	p.table.Binary = u.Table().Binary
	p.inherit(u, typeinfo.OpConstruct, typeinfo.OpDestruct, typeinfo.OpDeepCopy, typeinfo.OpEquals)
	return true
}

func (p *plan) inheritBinarySerialization(u *typeinfo.Descriptor) bool {
	if uref.HasBinaryMethods(p.t) || uref.HasBinaryMarshaler(p.t) {
		return false
	}
	p.table.BinarySerialization = u.Table().BinarySerialization
	p.inherit(u, typeinfo.OpBinary)
	return true
}

func (p *plan) inheritOtherSerialization(u *typeinfo.Descriptor) bool {
	t := p.t
	if uref.HasStringMethods(t) || uref.HasTextMarshaler(t) || uref.HasXMLMethods(t) || p.d.Enum() != nil {
		return false
	}
	p.table.OtherSerialization = u.Table().OtherSerialization
	p.inherit(u, typeinfo.OpString, typeinfo.OpXML)
	return true
}

func (p *plan) inheritVector(u *typeinfo.Descriptor) bool {
	if !u.IsVector() || u.Type().Kind() != p.t.Kind() {
		return false
	}
	p.table.Vector = u.Table().Vector
	p.inherit(u, typeinfo.OpVector)
	return true
}
