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

// Package synth builds the operation table of a type.
//
// Every canonical operation has a ranked list of candidate strategies. The
// first candidate that applies to the type wins and its label is recorded in
// the table, so a descriptor can always tell how, say, its deep copy works
// ("copy-from", "bitwise", "serialize", ...).
//
// Component types (fields, elements, keys, pointees) are resolved through a
// typeinfo.Source. Their descriptors may still be under construction when
// the table is synthesized; the synthesized functions only dispatch through
// them when invoked, after registration has completed.
package synth

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"dirpx.dev/rtti/typeinfo"
)

var (
	// ErrUnknownEnumConstant is returned when enum text is neither a known
	// constant nor a number.
	ErrUnknownEnumConstant = errors.New("rtti(synth): unknown enum constant")
	// ErrParse wraps strconv failures of the string channel.
	ErrParse = errors.New("rtti(synth): cannot parse value")
)

// candidate is one ranked strategy for an operation. build reports false
// when the strategy does not apply to the type.
type candidate[F any] struct {
	label string
	build func(p *plan) (F, bool, error)
}

// pick returns the first applicable candidate and its label.
func pick[F any](p *plan, chain []candidate[F]) (F, string, error) {
	var zero F
	for _, c := range chain {
		f, ok, err := c.build(p)
		if err != nil {
			return zero, c.label, fmt.Errorf("%s: %w", c.label, err)
		}
		if ok {
			return f, c.label, nil
		}
	}
	return zero, "", nil
}

// plan is the synthesis state of one descriptor.
type plan struct {
	d      *typeinfo.Descriptor
	t      reflect.Type
	spec   typeinfo.Spec
	src    typeinfo.Source
	traits typeinfo.Traits
	seq    *sequence
	table  typeinfo.Table
}

func (p *plan) resolve(t reflect.Type) (*typeinfo.Descriptor, error) {
	d, err := p.src.Resolve(t)
	if err != nil {
		return nil, fmt.Errorf("component %v of %v: %w", t, p.t, err)
	}
	return d, nil
}

// Synthesize selects a strategy for every operation of d and returns the
// resulting table. For vector types the element descriptor is linked into d.
func Synthesize(d *typeinfo.Descriptor, spec typeinfo.Spec, src typeinfo.Source) (typeinfo.Table, error) {
	p := &plan{d: d, t: d.Type(), spec: spec, src: src, traits: d.Traits()}
	if err := p.prepareSequence(); err != nil {
		return typeinfo.Table{}, err
	}

	u := p.underlying()
	steps := []struct {
		inherit func(u *typeinfo.Descriptor) bool
		build   func() error
	}{
		{p.inheritBinaryOps, p.buildBinaryOps},
		{p.inheritBinarySerialization, p.buildBinarySerialization},
		{p.inheritOtherSerialization, p.buildOtherSerialization},
		{p.inheritVector, p.buildVector},
	}
	for _, s := range steps {
		if u != nil && s.inherit(u) {
			continue
		}
		if err := s.build(); err != nil {
			return typeinfo.Table{}, fmt.Errorf("rtti(synth): %v: %w", p.t, err)
		}
	}
	return p.table, nil
}

func (p *plan) buildBinaryOps() error {
	ops := &typeinfo.BinaryOps{}
	var err error
	var labels [4]string
	if ops.Construct, labels[0], err = pick(p, constructChain); err != nil {
		return err
	}
	if ops.Destruct, labels[1], err = pick(p, destructChain); err != nil {
		return err
	}
	if ops.DeepCopy, labels[2], err = pick(p, deepCopyChain); err != nil {
		return err
	}
	if ops.Equals, labels[3], err = pick(p, equalsChain); err != nil {
		return err
	}
	p.table.Binary = ops
	p.table.Labels[typeinfo.OpConstruct] = labels[0]
	p.table.Labels[typeinfo.OpDestruct] = labels[1]
	p.table.Labels[typeinfo.OpDeepCopy] = labels[2]
	p.table.Labels[typeinfo.OpEquals] = labels[3]
	return nil
}

func (p *plan) buildBinarySerialization() error {
	if !p.traits.Has(typeinfo.TraitBinarySerializable) {
		return nil
	}
	ops, label, err := pick(p, binaryChain)
	if err != nil {
		return err
	}
	p.table.BinarySerialization = ops
	p.table.Labels[typeinfo.OpBinary] = label
	return nil
}

func (p *plan) buildOtherSerialization() error {
	ops := &typeinfo.OtherSerializationOps{}
	if p.traits.Has(typeinfo.TraitStringSerializable) {
		pair, label, err := pick(p, stringChain)
		if err != nil {
			return err
		}
		ops.SerializeString, ops.DeserializeString = pair.ser, pair.de
		p.table.Labels[typeinfo.OpString] = label
	}
	if p.traits.Has(typeinfo.TraitXMLSerializable) {
		pair, label, err := pick(p, xmlChain)
		if err != nil {
			return err
		}
		ops.SerializeXML, ops.DeserializeXML = pair.ser, pair.de
		p.table.Labels[typeinfo.OpXML] = label
	}
	p.table.OtherSerialization = ops
	return nil
}

func (p *plan) buildVector() error {
	if !p.traits.Has(typeinfo.TraitVector) || p.seq == nil {
		return nil
	}
	ops, label, err := pick(p, vectorChain)
	if err != nil {
		return err
	}
	p.table.Vector = ops
	p.table.Labels[typeinfo.OpVector] = label
	return nil
}

// value returns the settable value of type t stored at ptr.
func value(t reflect.Type, ptr unsafe.Pointer) reflect.Value {
	return reflect.NewAt(t, ptr).Elem()
}

// field is a struct member addressed by offset.
type field struct {
	off uintptr
	d   *typeinfo.Descriptor
}

func (p *plan) fields() ([]field, error) {
	if p.t.Kind() != reflect.Struct {
		return nil, nil
	}
	out := make([]field, 0, p.t.NumField())
	for i := 0; i < p.t.NumField(); i++ {
		f := p.t.Field(i)
		d, err := p.resolve(f.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, field{off: f.Offset, d: d})
	}
	return out, nil
}

func setInteger(v reflect.Value, x int64) {
	if v.CanInt() {
		v.SetInt(x)
		return
	}
	v.SetUint(uint64(x))
}

func integer(v reflect.Value) int64 {
	if v.CanInt() {
		return v.Int()
	}
	return int64(v.Uint())
}
