// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"fmt"

	"go.jsbundle.dev/syntax"
)

// A symbol is the ultimate target of an import or export: a
// module-scope binding, the namespace object of a module, or a name
// of an external module. Symbols are comparable.
type symbol struct {
	kind symbolKind
	mod  int             // localSym, namespaceSym
	bind *syntax.Binding // localSym
	spec string          // externalSym
	name string          // externalSym: imported name, or "*"
}

type symbolKind uint8

const (
	localSym symbolKind = iota
	namespaceSym
	externalSym
)

type exportKey struct {
	mod  int
	name string
}

// A linker follows imports and re-exports to their symbols.
// Results are memoized; it is used only after the graph is complete,
// by a single goroutine.
type linker struct {
	graph *Graph
	cfg   *Config

	imports map[*syntax.Binding]symbol
	exports map[exportKey]symbol
	names   map[int]*exportNames
}

// exportNames lists the names a module exports, including those
// re-exported by 'export *', and the external modules whose names
// are re-exported by 'export *'.
type exportNames struct {
	names     []string
	externals []string
}

func newLinker(g *Graph, cfg *Config) *linker {
	return &linker{
		graph:   g,
		cfg:     cfg,
		imports: make(map[*syntax.Binding]symbol),
		exports: make(map[exportKey]symbol),
		names:   make(map[int]*exportNames),
	}
}

// check resolves every import binding and named re-export of every
// module, returning the first failure as a *LinkError.
func (l *linker) check() error {
	for _, m := range l.graph.Modules {
		for _, b := range m.File.Bindings {
			if b.Scope == syntax.ImportScope {
				if _, err := l.importSymbol(m, b); err != nil {
					return err
				}
			}
		}
		for _, e := range m.File.Exports {
			if e.Module == "" || e.Imported == "*" || m.isExternal(e.Module) {
				continue
			}
			if _, err := l.exportSymbol(l.graph.Modules[m.target(e.Module)], e.Imported, m, e.Module); err != nil {
				return err
			}
		}
		if l.cfg.ModuleFormat != ES {
			for _, spec := range m.File.StarExports {
				if m.isExternal(spec) {
					return &LinkError{
						Module:    m.ID,
						Specifier: spec,
						Name:      "*",
						Msg:       fmt.Sprintf("export * from an external module requires %s output", ES),
					}
				}
			}
		}
	}
	return nil
}

// importSymbol returns the symbol denoted by an import binding of m.
func (l *linker) importSymbol(m *Module, b *syntax.Binding) (symbol, error) {
	if sym, ok := l.imports[b]; ok {
		return sym, nil
	}
	var sym symbol
	switch t := m.target(b.Module); {
	case t < 0:
		sym = symbol{kind: externalSym, spec: b.Module, name: b.Imported}
	case b.Imported == "*":
		sym = symbol{kind: namespaceSym, mod: t}
	default:
		var err error
		sym, err = l.exportSymbol(l.graph.Modules[t], b.Imported, m, b.Module)
		if err != nil {
			return symbol{}, err
		}
	}
	l.imports[b] = sym
	return sym, nil
}

// exportSymbol returns the symbol exported by m under name.
// The importer and specifier identify the import, for errors.
func (l *linker) exportSymbol(m *Module, name string, importer *Module, specifier string) (symbol, error) {
	sym, found, err := l.findExport(m, name, make(map[exportKey]bool))
	if err != nil {
		if lerr, ok := err.(*LinkError); ok && lerr.Module == "" {
			lerr.Module, lerr.Specifier = importer.ID, specifier
		}
		return symbol{}, err
	}
	if !found {
		return symbol{}, &LinkError{
			Module:    importer.ID,
			Specifier: specifier,
			Name:      name,
			Msg:       fmt.Sprintf("%s has no export named %s", m.ID, name),
		}
	}
	return sym, nil
}

// findExport searches m and the modules it re-exports for name.
// Names re-exported by 'export *' from several modules resolve to
// the first in source order. 'export *' never re-exports "default".
// A module already being searched is skipped by 'export *'; only a
// cycle of explicit re-exports is an error.
func (l *linker) findExport(m *Module, name string, visiting map[exportKey]bool) (symbol, bool, error) {
	key := exportKey{m.Index, name}
	if sym, ok := l.exports[key]; ok {
		return sym, true, nil
	}
	if visiting[key] {
		return symbol{}, false, &LinkError{Name: name, Msg: fmt.Sprintf("circular re-export of %s by %s", name, m.ID)}
	}
	visiting[key] = true

	for _, e := range m.File.Exports {
		if e.Name != name {
			continue
		}
		var sym symbol
		switch {
		case e.Binding != nil && e.Binding.Scope == syntax.ImportScope:
			t := m.target(e.Binding.Module)
			switch {
			case t < 0:
				sym = symbol{kind: externalSym, spec: e.Binding.Module, name: e.Binding.Imported}
			case e.Binding.Imported == "*":
				sym = symbol{kind: namespaceSym, mod: t}
			default:
				s, found, err := l.findExport(l.graph.Modules[t], e.Binding.Imported, visiting)
				if err != nil {
					return symbol{}, false, err
				}
				if !found {
					return symbol{}, false, &LinkError{
						Module:    m.ID,
						Specifier: e.Binding.Module,
						Name:      e.Binding.Imported,
						Msg:       fmt.Sprintf("%s has no export named %s", l.graph.Modules[t].ID, e.Binding.Imported),
					}
				}
				sym = s
			}
		case e.Binding != nil:
			sym = symbol{kind: localSym, mod: m.Index, bind: e.Binding}
		default:
			t := m.target(e.Module)
			switch {
			case t < 0:
				sym = symbol{kind: externalSym, spec: e.Module, name: e.Imported}
			case e.Imported == "*":
				sym = symbol{kind: namespaceSym, mod: t}
			default:
				s, found, err := l.findExport(l.graph.Modules[t], e.Imported, visiting)
				if err != nil {
					return symbol{}, false, err
				}
				if !found {
					return symbol{}, false, &LinkError{
						Module:    m.ID,
						Specifier: e.Module,
						Name:      e.Imported,
						Msg:       fmt.Sprintf("%s has no export named %s", l.graph.Modules[t].ID, e.Imported),
					}
				}
				sym = s
			}
		}
		l.exports[key] = sym
		return sym, true, nil
	}

	if name != "default" {
		for _, spec := range m.File.StarExports {
			t := m.target(spec)
			if t < 0 || visiting[exportKey{t, name}] {
				continue
			}
			sym, found, err := l.findExport(l.graph.Modules[t], name, visiting)
			if err != nil {
				return symbol{}, false, err
			}
			if found {
				l.exports[key] = sym
				return sym, true, nil
			}
		}
	}
	return symbol{}, false, nil
}

// exportNamesOf returns the names exported by module i, its own
// exports first and then those of 'export *' targets in source order.
func (l *linker) exportNamesOf(i int) *exportNames {
	if names, ok := l.names[i]; ok {
		return names
	}
	names := new(exportNames)
	seen := make(map[string]bool)
	seenExt := make(map[string]bool)
	visited := make(map[int]bool)
	var visit func(m *Module, star bool)
	visit = func(m *Module, star bool) {
		if visited[m.Index] {
			return
		}
		visited[m.Index] = true
		for _, e := range m.File.Exports {
			if star && e.Name == "default" {
				continue
			}
			if !seen[e.Name] {
				seen[e.Name] = true
				names.names = append(names.names, e.Name)
			}
		}
		for _, spec := range m.File.StarExports {
			if t := m.target(spec); t >= 0 {
				visit(l.graph.Modules[t], true)
			} else if !seenExt[spec] {
				seenExt[spec] = true
				names.externals = append(names.externals, spec)
			}
		}
	}
	visit(l.graph.Modules[i], false)
	l.names[i] = names
	return names
}

// mustExport is exportSymbol for names known to be exported.
func (l *linker) mustExport(i int, name string) (symbol, error) {
	m := l.graph.Modules[i]
	return l.exportSymbol(m, name, m, string(m.ID))
}
