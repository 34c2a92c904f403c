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

// Package xmlnode is a minimal mutable XML document tree: elements with
// attributes, child elements and text content. It is what the XML
// serialization channel writes to and reads from.
package xmlnode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var (
	// ErrNoRoot is returned when the input holds no root element.
	ErrNoRoot = errors.New("xmlnode: document has no root element")
	// ErrChildNotFound is returned by RequireChild.
	ErrChildNotFound = errors.New("xmlnode: child element not found")
)

// Document owns a tree of nodes below a single root element.
type Document struct {
	root *Node
}

// NewDocument creates a document with an empty root element.
func NewDocument(rootName string) *Document {
	return &Document{root: &Node{name: rootName}}
}

// Root returns the root element.
func (d *Document) Root() *Node { return d.root }

// Node is one XML element.
type Node struct {
	name     string
	attrs    []xml.Attr
	children []*Node
	parent   *Node
	text     string
}

// Name returns the element's local name.
func (n *Node) Name() string { return n.name }

// Parent returns the enclosing element or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Text returns the element's character data.
func (n *Node) Text() string { return n.text }

// SetText replaces the element's character data.
func (n *Node) SetText(s string) { n.text = s }

// Children returns the child elements in document order.
func (n *Node) Children() []*Node { return n.children }

// Child returns the first child element with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// RequireChild is Child with an error instead of nil.
func (n *Node) RequireChild(name string) (*Node, error) {
	if c := n.Child(name); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w: <%s> in <%s>", ErrChildNotFound, name, n.name)
}

// ChildrenNamed returns all child elements with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// AddChild appends a new empty child element and returns it.
func (n *Node) AddChild(name string) *Node {
	c := &Node{name: name, parent: n}
	n.children = append(n.children, c)
	return c
}

// RemoveChildren drops all child elements.
func (n *Node) RemoveChildren() { n.children = nil }

// Attr returns the value of an attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr adds or replaces an attribute.
func (n *Node) SetAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].Name.Local == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// Parse builds a document from XML input.
func Parse(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var stack []*Node
	var root *Node
	rootClosed := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("xmlnode: unexpected element %s after document end", t.Name.Local)
			}
			elem := &Node{name: t.Name.Local}
			for _, a := range t.Attr {
				elem.attrs = append(elem.attrs, xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, elem)
				elem.parent = parent
			} else {
				root = elem
			}
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 && root != nil {
					rootClosed = true
				}
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isIgnorable(string(t)) {
					return nil, fmt.Errorf("xmlnode: unexpected character data outside root element")
				}
				continue
			}
			stack[len(stack)-1].text += string(t)
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}
	trimLayout(root)
	return &Document{root: root}, nil
}

// ParseString parses s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// trimLayout drops indentation-only text of elements that have children.
func trimLayout(n *Node) {
	if len(n.children) > 0 && isIgnorable(n.text) {
		n.text = ""
	}
	for _, c := range n.children {
		trimLayout(c)
	}
}

func isIgnorable(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// WriteTo writes the document as XML without a declaration.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	enc := xml.NewEncoder(cw)
	if err := encodeNode(enc, d.root); err != nil {
		return cw.n, err
	}
	if err := enc.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// String renders the document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.name}, Attr: n.attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.text != "" {
		if err := enc.EncodeToken(xml.CharData(n.text)); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
