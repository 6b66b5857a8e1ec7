// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"fmt"
	"strconv"

	"go.jsbundle.dev/syntax"
)

// Merging turns each planned unit into a single syntax tree.
//
// It proceeds in phases over all units:
//
//  1. analyze: find the symbols each unit uses that live in another
//     unit (its needs), and record them as provided by their home
//     unit. Namespace objects pull in every export of their module.
//  2. linkGroups: group the needs of a unit by providing unit or
//     external module, in the order the unit's members import them.
//  3. register: give every top-level binding of the unit a final
//     name in its BindingTable.
//  4. exportNames: choose the names under which a unit exports the
//     symbols that others import.
//  5. emit: print linkage, namespace objects, the renamed member
//     bodies, and the unit's exports.

// A unitState accumulates what a unit needs from and provides to the
// other units.
type unitState struct {
	*unit

	needs    []symbol // foreign symbols, in order of first use
	needSet  map[symbol]bool
	provides []symbol // own symbols imported by other units
	provSet  map[symbol]bool
	ns       []int // member modules whose namespace object is built
	nsSet    map[int]bool

	exports  []exportItem // of an entry or dynamic unit
	extStars []string     // external modules re-exported by 'export *'

	table      *BindingTable
	groups     []*linkGroup
	exportName map[symbol]string

	err error // first conflict found while naming or emitting
}

// fail records a conflict of unit s unless one is already recorded.
func (mg *merger) fail(s *unitState, msg string, names ...string) {
	if s.err == nil {
		s.err = mg.conflict(s, msg, names...)
	}
}

type exportItem struct {
	name string
	sym  symbol
}

// A linkGroup is the linkage of a unit to one other unit or to an
// external module.
type linkGroup struct {
	from *unitState // nil for an external module
	spec string     // external module specifier
	syms []symbol
	req  string // CommonJS variable holding the required module
}

func (g *linkGroup) path() string {
	if g.from != nil {
		return "./" + g.from.FileName()
	}
	return g.spec
}

func (u *unit) FileName() string { return u.name + ".js" }

type merger struct {
	p      *plan
	l      *linker
	cfg    *Config
	states []*unitState
}

var helperKey = BindingKey{Name: "__export"}

// merge produces the bundles of a plan, in plan order.
func merge(p *plan) ([]*Bundle, error) {
	mg := &merger{p: p, l: p.graph.link, cfg: p.cfg}
	for _, u := range p.units {
		mg.states = append(mg.states, &unitState{
			unit:       u,
			needSet:    make(map[symbol]bool),
			provSet:    make(map[symbol]bool),
			nsSet:      make(map[int]bool),
			exportName: make(map[symbol]string),
		})
	}
	for _, s := range mg.states {
		if err := mg.analyze(s); err != nil {
			return nil, err
		}
	}
	for _, s := range mg.states {
		mg.linkGroups(s)
	}
	for _, s := range mg.states {
		if err := mg.register(s); err != nil {
			return nil, err
		}
	}
	for _, s := range mg.states {
		mg.exportNames(s)
		if s.err != nil {
			return nil, s.err
		}
	}
	bundles := make([]*Bundle, len(mg.states))
	for i, s := range mg.states {
		b, err := mg.emit(s)
		if err != nil {
			return nil, err
		}
		bundles[i] = b
	}
	return bundles, nil
}

func (mg *merger) conflict(s *unitState, msg string, names ...string) *MergeConflict {
	return &MergeConflict{
		Unit:    s.name,
		Members: moduleIDs(mg.p.graph, s.members),
		Names:   names,
		Msg:     msg,
	}
}

// inlined reports whether import() of module t from unit s is
// satisfied by t's namespace object rather than by loading a unit.
func (mg *merger) inlined(s *unitState, t int) bool {
	return mg.p.dynUnit[t] == nil || s.has(t)
}

func (mg *merger) analyze(s *unitState) error {
	g := mg.p.graph
	for _, mod := range s.members {
		m := g.Modules[mod]
		for _, b := range m.File.Bindings {
			if b.Scope != syntax.ImportScope {
				continue
			}
			sym, err := mg.l.importSymbol(m, b)
			if err != nil {
				return err
			}
			if err := mg.need(s, sym); err != nil {
				return err
			}
		}
		for i, rec := range m.Imports {
			if t := m.targets[i]; rec.Dynamic && t >= 0 && mg.inlined(s, t) {
				if err := mg.need(s, symbol{kind: namespaceSym, mod: t}); err != nil {
					return err
				}
			}
		}
	}

	switch s.kind {
	case EntryBundle:
		if !mg.cfg.StripEntryExports {
			return mg.addExports(s, mg.p.eps[s.ep].mod)
		}
	case DynamicBundle:
		return mg.addExports(s, mg.p.eps[s.ep].mod)
	}
	return nil
}

// addExports makes unit s export every name exported by module mod.
func (mg *merger) addExports(s *unitState, mod int) error {
	names := mg.l.exportNamesOf(mod)
	for _, name := range names.names {
		sym, err := mg.l.mustExport(mod, name)
		if err != nil {
			return err
		}
		s.exports = append(s.exports, exportItem{name, sym})
		if err := mg.need(s, sym); err != nil {
			return err
		}
	}
	if mg.cfg.ModuleFormat == ES {
		s.extStars = names.externals
	}
	return nil
}

// need records that unit s uses sym.
func (mg *merger) need(s *unitState, sym symbol) error {
	if sym.kind == externalSym {
		s.addNeed(sym)
		return nil
	}
	home := mg.p.homeOf(s.unit, sym.mod)
	if home == nil {
		return mg.conflict(s, fmt.Sprintf("no unit provides module %s", mg.p.graph.Modules[sym.mod].ID))
	}
	hs := mg.states[home.index]
	if sym.kind == namespaceSym {
		if err := mg.markNamespace(hs, sym.mod); err != nil {
			return err
		}
	}
	if hs != s {
		s.addNeed(sym)
		hs.addProvide(sym)
	}
	return nil
}

// markNamespace makes unit s build the namespace object of member mod.
func (mg *merger) markNamespace(s *unitState, mod int) error {
	if s.nsSet[mod] {
		return nil
	}
	s.nsSet[mod] = true
	s.ns = append(s.ns, mod)
	for _, name := range mg.l.exportNamesOf(mod).names {
		sym, err := mg.l.mustExport(mod, name)
		if err != nil {
			return err
		}
		if err := mg.need(s, sym); err != nil {
			return err
		}
	}
	return nil
}

func (s *unitState) addNeed(sym symbol) {
	if !s.needSet[sym] {
		s.needSet[sym] = true
		s.needs = append(s.needs, sym)
	}
}

func (s *unitState) addProvide(sym symbol) {
	if !s.provSet[sym] {
		s.provSet[sym] = true
		s.provides = append(s.provides, sym)
	}
}

func (s *unitState) hasExports() bool { return len(s.exports) > 0 || len(s.provides) > 0 }

// linkGroups orders the linkage of unit s: the unit holding its entry
// module, then the units and external modules its members import, in
// member and import order. Groups without symbols are kept for the
// side effects of loading them.
func (mg *merger) linkGroups(s *unitState) {
	g := mg.p.graph
	units := make(map[*unitState]*linkGroup)
	specs := make(map[string]*linkGroup)
	group := func(from *unitState, spec string) *linkGroup {
		var gr *linkGroup
		if from != nil {
			gr = units[from]
		} else {
			gr = specs[spec]
		}
		if gr == nil {
			gr = &linkGroup{from: from, spec: spec}
			if from != nil {
				units[from] = gr
			} else {
				specs[spec] = gr
			}
			s.groups = append(s.groups, gr)
		}
		return gr
	}
	foreign := func(mod int) *unitState {
		if home := mg.p.homeOf(s.unit, mod); home != nil && home != s.unit {
			return mg.states[home.index]
		}
		return nil
	}

	if s.kind != SharedBundle {
		if from := foreign(mg.p.eps[s.ep].mod); from != nil {
			group(from, "")
		}
	}
	for _, mod := range s.members {
		m := g.Modules[mod]
		for i, rec := range m.Imports {
			if !rec.Static {
				continue
			}
			if t := m.targets[i]; t < 0 {
				group(nil, rec.Specifier)
			} else if from := foreign(t); from != nil {
				group(from, "")
			}
		}
	}
	for _, sym := range s.needs {
		var gr *linkGroup
		if sym.kind == externalSym {
			gr = group(nil, sym.spec)
		} else {
			gr = group(foreign(sym.mod), "")
		}
		gr.syms = append(gr.syms, sym)
	}
}

// symKey returns the key of a symbol in the table of any unit that
// holds or imports it.
func (mg *merger) symKey(sym symbol) BindingKey {
	switch sym.kind {
	case localSym:
		return BindingKey{mg.p.graph.Modules[sym.mod].ID, sym.bind.Name}
	case namespaceSym:
		return BindingKey{mg.p.graph.Modules[sym.mod].ID, "*"}
	}
	return BindingKey{Name: "import:" + sym.spec + ":" + sym.name}
}

// preferredName returns the name a unit importing sym gives it when
// no import binding suggests one, and the stem used on collision.
func (mg *merger) preferredName(sym symbol) (name, stemName string) {
	switch sym.kind {
	case localSym:
		m := mg.p.graph.Modules[sym.mod]
		if sym.bind.Kind == syntax.DefaultKind {
			return m.Stem() + "_default", m.Stem()
		}
		return sym.bind.Name, m.Stem()
	case namespaceSym:
		m := mg.p.graph.Modules[sym.mod]
		return m.Stem() + "_ns", m.Stem()
	}
	st := stem(sym.spec)
	switch sym.name {
	case "*":
		return st + "_ns", st
	case "default":
		return st + "_default", st
	}
	return identifier(sym.name), st
}

func (mg *merger) isForeign(s *unitState, sym symbol) bool {
	return sym.kind == externalSym || mg.p.homeOf(s.unit, sym.mod) != s.unit
}

// register builds the binding table of unit s: unit synthetics first,
// then each member's module-scope bindings in declaration order
// followed by its namespace object, then the remaining linkage.
func (mg *merger) register(s *unitState) error {
	g := mg.p.graph
	var reserved []string
	for _, mod := range s.members {
		for _, b := range g.Modules[mod].File.Globals {
			reserved = append(reserved, b.Name)
		}
	}
	reserved = append(reserved, "Object", "Promise")
	if mg.cfg.ModuleFormat == CommonJS {
		reserved = append(reserved, "require", "module", "exports")
	}
	t := newBindingTable(reserved)
	s.table = t

	if len(s.ns) > 0 || (mg.cfg.ModuleFormat != ES && s.hasExports()) {
		t.register(helperKey, "__export", "")
	}
	if mg.cfg.ModuleFormat == CommonJS {
		for _, gr := range s.groups {
			if len(gr.syms) == 0 {
				continue
			}
			preferred := stem(gr.spec)
			if gr.from != nil {
				preferred = identifier(gr.from.name)
			}
			gr.req = t.register(BindingKey{Name: "require:" + gr.path()}, preferred, "")
		}
	}

	for _, mod := range s.members {
		m := g.Modules[mod]
		st := m.Stem()
		for _, b := range m.File.Bindings {
			switch b.Scope {
			case syntax.ModuleScope:
				preferred := b.Name
				if b.Kind == syntax.DefaultKind {
					preferred = st + "_default"
				}
				t.register(BindingKey{m.ID, b.Name}, preferred, st)
			case syntax.ImportScope:
				sym, err := mg.l.importSymbol(m, b)
				if err != nil {
					return err
				}
				if mg.isForeign(s, sym) {
					t.register(mg.symKey(sym), b.Name, st)
				}
			}
		}
		if s.nsSet[mod] {
			t.register(BindingKey{m.ID, "*"}, st+"_ns", st)
		}
	}
	for _, sym := range s.needs {
		name, st := mg.preferredName(sym)
		t.register(mg.symKey(sym), name, st)
	}

	if err := t.check(); err != nil {
		return mg.conflict(s, err.Error())
	}
	return nil
}

// final returns the final name of a symbol in unit s.
// A symbol missing from the table is recorded as a conflict of s,
// and its original name is returned.
func (mg *merger) final(s *unitState, sym symbol) string {
	key := mg.symKey(sym)
	name, ok := s.table.Lookup(key)
	if !ok {
		mg.fail(s, fmt.Sprintf("no binding for %s", key), key.Name)
		return key.Name
	}
	return name
}

// exportNames names the exports of unit s: its entry or dynamic
// exports keep their names; other provided symbols are exported
// under their final names.
func (mg *merger) exportNames(s *unitState) {
	used := make(map[string]bool)
	for _, e := range s.exports {
		if _, ok := s.exportName[e.sym]; !ok {
			s.exportName[e.sym] = e.name
		}
		used[e.name] = true
	}
	for _, sym := range s.provides {
		if _, ok := s.exportName[sym]; ok {
			continue
		}
		final := mg.final(s, sym)
		name := final
		for n := 2; used[name]; n++ {
			name = final + "$" + strconv.Itoa(n)
		}
		used[name] = true
		s.exportName[sym] = name
	}
}

// exportList returns the (exported name, final name) pairs of unit s.
func (mg *merger) exportList(s *unitState) [][2]string {
	var list [][2]string
	done := make(map[string]bool)
	for _, e := range s.exports {
		list = append(list, [2]string{e.name, mg.final(s, e.sym)})
		done[e.name] = true
	}
	for _, sym := range s.provides {
		if name := s.exportName[sym]; !done[name] {
			list = append(list, [2]string{name, mg.final(s, sym)})
			done[name] = true
		}
	}
	return list
}
