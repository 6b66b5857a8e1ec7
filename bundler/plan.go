// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// An entryPoint is a module from which an output unit is loaded:
// a user entry or the target of a dynamic import.
type entryPoint struct {
	name    string // the entry name; "" for a dynamic import target
	mod     int
	dynamic bool
}

// A unit is a planned output bundle.
type unit struct {
	index   int
	name    string
	kind    BundleKind
	ep      int   // entry point of an entry or dynamic unit; -1 for a shared one
	eps     []int // entry points reaching the members of a shared unit
	members []int // module indices, in global order
	member  map[int]bool
}

func (u *unit) has(mod int) bool { return u.member[mod] }

// A plan assigns the modules of a graph to output units.
type plan struct {
	graph *Graph
	cfg   *Config

	eps     []entryPoint
	units   []*unit // in output order
	order   []int   // every module, dependencies first
	rank    []int   // module index -> position in order
	home    []*unit // module index -> its unit; CodeSplit only
	dynUnit map[int]*unit
}

// homeOf returns the unit that provides module mod to unit u.
func (p *plan) homeOf(u *unit, mod int) *unit {
	if u.has(mod) {
		return u
	}
	if p.home != nil {
		return p.home[mod]
	}
	return nil
}

// makePlan partitions the graph into units.
func makePlan(g *Graph, cfg *Config, entries []Entry) (*plan, error) {
	inline := cfg.inlineDynamic()
	p := &plan{
		graph:   g,
		cfg:     cfg,
		rank:    make([]int, len(g.Modules)),
		dynUnit: make(map[int]*unit),
	}

	sccs := g.sccs(inline)
	for _, scc := range sccs {
		p.order = append(p.order, scc...)
	}
	for i, mod := range p.order {
		p.rank[mod] = i
	}

	// Entry points: user entries, then dynamic import targets.
	for i, e := range entries {
		p.eps = append(p.eps, entryPoint{name: e.Name, mod: g.Entries[i].Index})
	}
	if !inline {
		seen := make(map[int]bool)
		var targets []int
		for _, m := range g.Modules {
			for i, rec := range m.Imports {
				if t := m.targets[i]; rec.Dynamic && t >= 0 && !seen[t] {
					seen[t] = true
					targets = append(targets, t)
				}
			}
		}
		sort.Ints(targets)
		for _, t := range targets {
			p.eps = append(p.eps, entryPoint{mod: t, dynamic: true})
		}
	}

	// reach[m] lists the entry points reaching m, in increasing order.
	reach := make([][]int, len(g.Modules))
	for e, ep := range p.eps {
		seen := make([]bool, len(g.Modules))
		queue := []int{ep.mod}
		seen[ep.mod] = true
		for len(queue) > 0 {
			m := g.Modules[queue[0]]
			queue = queue[1:]
			reach[m.Index] = append(reach[m.Index], e)
			for i, rec := range m.Imports {
				if t := m.targets[i]; t >= 0 && !seen[t] && (rec.Static || inline) {
					seen[t] = true
					queue = append(queue, t)
				}
			}
		}
	}

	// Components are never split.
	for _, scc := range sccs {
		want := reachKey(reach[scc[0]])
		for _, mod := range scc[1:] {
			if reachKey(reach[mod]) != want {
				return nil, &MergeConflict{
					Members: moduleIDs(g, scc),
					Msg:     "import cycle spans several entry point sets",
				}
			}
		}
	}

	epUnits := make([]*unit, len(p.eps))
	for e, ep := range p.eps {
		kind := EntryBundle
		if ep.dynamic {
			kind = DynamicBundle
		}
		u := &unit{kind: kind, ep: e, member: make(map[int]bool)}
		epUnits[e] = u
		if ep.dynamic {
			p.dynUnit[ep.mod] = u
		}
	}

	var shared []*unit
	if cfg.MergeMode == OneBundle {
		for _, mod := range p.order {
			for _, e := range reach[mod] {
				epUnits[e].add(mod)
			}
		}
	} else {
		p.home = make([]*unit, len(g.Modules))
		byKey := make(map[string]*unit)
		for _, mod := range p.order {
			var u *unit
			switch eps := reach[mod]; len(eps) {
			case 0:
				return nil, &MergeConflict{
					Members: moduleIDs(g, []int{mod}),
					Msg:     "module is not reachable from any entry point",
				}
			case 1:
				u = epUnits[eps[0]]
			default:
				key := reachKey(eps)
				u = byKey[key]
				if u == nil {
					u = &unit{kind: SharedBundle, ep: -1, eps: eps, member: make(map[int]bool)}
					byKey[key] = u
					shared = append(shared, u)
				}
			}
			u.add(mod)
			p.home[mod] = u
		}
	}

	// Order: entries, then dynamic and shared units by their
	// earliest discovered module.
	var rest []*unit
	for e, u := range epUnits {
		if p.eps[e].dynamic {
			rest = append(rest, u)
		} else {
			p.units = append(p.units, u)
		}
	}
	rest = append(rest, shared...)
	first := func(u *unit) int {
		if len(u.members) == 0 {
			return p.eps[u.ep].mod
		}
		least := u.members[0]
		for _, mod := range u.members {
			least = min(least, mod)
		}
		return least
	}
	sort.SliceStable(rest, func(i, j int) bool {
		x, y := first(rest[i]), first(rest[j])
		if x != y {
			return x < y
		}
		return rest[i].kind == DynamicBundle && rest[j].kind == SharedBundle
	})
	p.units = append(p.units, rest...)

	p.nameUnits()
	for i, u := range p.units {
		u.index = i
	}
	return p, nil
}

func (u *unit) add(mod int) {
	u.members = append(u.members, mod)
	u.member[mod] = true
}

// nameUnits assigns unique names: entry names first, then content
// derived names for the other units in output order.
func (p *plan) nameUnits() {
	taken := make(map[string]bool)
	for _, u := range p.units {
		if u.kind == EntryBundle {
			u.name = p.eps[u.ep].name
			taken[u.name] = true
		}
	}
	for _, u := range p.units {
		var base string
		switch u.kind {
		case EntryBundle:
			continue
		case DynamicBundle:
			target := p.graph.Modules[p.eps[u.ep].mod]
			mods := p.modules(u)
			if len(mods) == 0 {
				mods = []*Module{target}
			}
			base = fileStem(string(target.ID)) + "-" + hashMembers(mods).Short()
		case SharedBundle:
			base = "chunk-" + hashMembers(p.modules(u)).Short()
		}
		name := base
		for n := 2; taken[name]; n++ {
			name = base + "-" + strconv.Itoa(n)
		}
		u.name = name
		taken[name] = true
	}
}

func (p *plan) modules(u *unit) []*Module {
	mods := make([]*Module, len(u.members))
	for i, mod := range u.members {
		mods[i] = p.graph.Modules[mod]
	}
	return mods
}

// entryModules returns the ids of the modules for which u is loaded.
func (p *plan) entryModules(u *unit) []ModuleId {
	if u.kind != SharedBundle {
		return []ModuleId{p.graph.Modules[p.eps[u.ep].mod].ID}
	}
	var ids []ModuleId
	seen := make(map[int]bool)
	for _, e := range u.eps {
		if mod := p.eps[e].mod; !seen[mod] {
			seen[mod] = true
			ids = append(ids, p.graph.Modules[mod].ID)
		}
	}
	return ids
}

// String returns a summary of the plan, one unit per line.
func (p *plan) String() string {
	var buf strings.Builder
	for _, u := range p.units {
		fmt.Fprintf(&buf, "%s %s:", u.kind, u.name)
		for _, mod := range u.members {
			fmt.Fprintf(&buf, " %s", p.graph.Modules[mod].ID)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

func reachKey(eps []int) string {
	var buf strings.Builder
	for i, e := range eps {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(e))
	}
	return buf.String()
}

func moduleIDs(g *Graph, mods []int) []ModuleId {
	ids := make([]ModuleId, len(mods))
	for i, mod := range mods {
		ids[i] = g.Modules[mod].ID
	}
	return ids
}
