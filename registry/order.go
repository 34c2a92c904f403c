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
	"errors"
	"reflect"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"dirpx.dev/rtti/typeinfo"
)

// typeNode is a component type in the registration graph.
type typeNode struct {
	id int64
	t  reflect.Type
}

// ID implements graph.Node.
func (n typeNode) ID() int64 { return n.id }

func byDiscovery(a, b graph.Node) int {
	switch {
	case a.ID() < b.ID():
		return -1
	case a.ID() > b.ID():
		return 1
	}
	return 0
}

// componentOrder returns the unregistered transitive components of root,
// leaves first. Edges run from a component to the type that uses it; types
// in a cycle are grouped and ordered by discovery. root itself is not
// included.
func (r *registry) componentOrder(root reflect.Type, spec typeinfo.Spec) []reflect.Type {
	g := simple.NewDirectedGraph()
	ids := make(map[reflect.Type]int64)

	node := func(t reflect.Type) (typeNode, bool) {
		if id, ok := ids[t]; ok {
			return g.Node(id).(typeNode), false
		}
		n := typeNode{id: int64(len(ids)), t: t}
		ids[t] = n.id
		g.AddNode(n)
		return n, true
	}

	rootNode, _ := node(root)
	queue := []typeNode{rootNode}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		s := typeinfo.Spec{}
		if n.t == root {
			s = spec
		}
		for _, c := range r.builder.Components(n.t, s) {
			if _, ok := r.known(c); ok {
				continue
			}
			cn, fresh := node(c)
			if cn.id != n.id {
				g.SetEdge(g.NewEdge(cn, n))
			}
			if fresh {
				queue = append(queue, cn)
			}
		}
	}

	sorted, err := topo.SortStabilized(g, func(ns []graph.Node) { slices.SortFunc(ns, byDiscovery) })
	var cycles topo.Unorderable
	if err != nil && !errors.As(err, &cycles) {
		return nil
	}
	out := make([]reflect.Type, 0, len(ids))
	emit := func(n graph.Node) {
		if t := n.(typeNode).t; t != root {
			out = append(out, t)
		}
	}
	for _, n := range sorted {
		if n != nil {
			emit(n)
			continue
		}
		if len(cycles) == 0 {
			continue
		}
		scc := cycles[0]
		cycles = cycles[1:]
		for _, m := range scc {
			emit(m)
		}
	}
	return out
}
