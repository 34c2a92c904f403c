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
	"reflect"
	"unsafe"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
	"dirpx.dev/rtti/xmlnode"
)

// ElementTag names the child nodes holding sequence elements.
const ElementTag = "element"

type xmlPair struct {
	ser func(n *xmlnode.Node, p unsafe.Pointer) error
	de  func(n *xmlnode.Node, p unsafe.Pointer) error
}

var xmlChain = []candidate[xmlPair]{
	{"methods", (*plan).xmlMethods},
	{"text", (*plan).xmlText},
	{"elements", (*plan).xmlElements},
}

func (p *plan) xmlMethods() (xmlPair, bool, error) {
	if !uref.HasXMLMethods(p.t) {
		return xmlPair{}, false, nil
	}
	t := p.t
	return xmlPair{
		ser: func(n *xmlnode.Node, ptr unsafe.Pointer) error {
			return reflect.NewAt(t, ptr).Interface().(apis.XMLSerializer).SerializeXML(n)
		},
		de: func(n *xmlnode.Node, ptr unsafe.Pointer) error {
			return reflect.NewAt(t, ptr).Interface().(apis.XMLDeserializer).DeserializeXML(n)
		},
	}, true, nil
}

// xmlText stores the string form as the node text.
func (p *plan) xmlText() (xmlPair, bool, error) {
	if !p.traits.Has(typeinfo.TraitStringSerializable) {
		return xmlPair{}, false, nil
	}
	d := p.d
	return xmlPair{
		ser: func(n *xmlnode.Node, ptr unsafe.Pointer) error {
			w := stream.NewStringOutputStream()
			if err := d.SerializeString(w, ptr); err != nil {
				return err
			}
			n.SetText(w.String())
			return nil
		},
		de: func(n *xmlnode.Node, ptr unsafe.Pointer) error {
			return d.DeserializeString(stream.NewStringInputStream(n.Text()), ptr)
		},
	}, true, nil
}

// xmlElements writes one ElementTag child per element.
func (p *plan) xmlElements() (xmlPair, bool, error) {
	s := p.seq
	if s == nil {
		return xmlPair{}, false, nil
	}
	elem := s.elem
	return xmlPair{
		ser: func(n *xmlnode.Node, ptr unsafe.Pointer) error {
			tmp := s.temp()
			for i, size := 0, s.size(ptr); i < size; i++ {
				e := s.at(ptr, i)
				if e == nil {
					if err := s.load(ptr, i, tmp); err != nil {
						return err
					}
					e = tmp
				}
				if err := elem.SerializeXML(n.AddChild(ElementTag), e); err != nil {
					return err
				}
			}
			return nil
		},
		de: func(n *xmlnode.Node, ptr unsafe.Pointer) error {
			kids := n.ChildrenNamed(ElementTag)
			dst, commit, err := s.target(ptr, len(kids))
			if err != nil {
				return err
			}
			tmp := s.temp()
			for i, kid := range kids {
				if !s.proxy {
					if err := elem.DeserializeXML(kid, s.at(dst, i)); err != nil {
						return err
					}
					continue
				}
				if err := elem.DeserializeXML(kid, tmp); err != nil {
					return err
				}
				if err := s.store(dst, i, tmp); err != nil {
					return err
				}
			}
			commit()
			return nil
		},
	}, true, nil
}
