// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import "sort"

// sccs returns the strongly connected components of the import graph
// by Tarjan's algorithm. Vertices are visited in discovery order and
// successors in import order, so components are emitted dependencies
// first, in an order that depends only on the graph. Members of a
// component are sorted by discovery index.
//
// Dynamic import edges are followed only if includeDynamic is set.
func (g *Graph) sccs(includeDynamic bool) [][]int {
	t := &tarjan{
		g:       g,
		dynamic: includeDynamic,
		index:   make([]int, len(g.Modules)),
		low:     make([]int, len(g.Modules)),
		onStack: make([]bool, len(g.Modules)),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	for i := range g.Modules {
		if t.index[i] < 0 {
			t.visit(i)
		}
	}
	return t.out
}

type tarjan struct {
	g       *Graph
	dynamic bool

	next    int
	index   []int
	low     []int
	onStack []bool
	stack   []int
	out     [][]int
}

func (t *tarjan) visit(v int) {
	t.index[v] = t.next
	t.low[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	m := t.g.Modules[v]
	for i, rec := range m.Imports {
		w := m.targets[i]
		if w < 0 || !(rec.Static || t.dynamic) {
			continue
		}
		if t.index[w] < 0 {
			t.visit(w)
			t.low[v] = min(t.low[v], t.low[w])
		} else if t.onStack[w] {
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] == t.index[v] {
		var scc []int
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		sort.Ints(scc)
		t.out = append(t.out, scc)
	}
}
