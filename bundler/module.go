// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"context"

	"go.jsbundle.dev/syntax"
)

// A ModuleId identifies a resolved module. It is produced only by a
// Resolver and is otherwise opaque to the bundler. Module ids are
// ordered by string comparison.
//
// The empty ModuleId is reserved: it is the importer passed to
// Resolve for entry specifiers.
type ModuleId string

// A Resolver maps an import specifier, as written in the importing
// module, to a ModuleId.
//
// Resolve must be deterministic for the duration of a bundling run:
// the bundler calls it at most once per (importer, specifier) pair,
// but the output is only correct if equal inputs would always give
// equal results.
type Resolver interface {
	Resolve(ctx context.Context, importer ModuleId, specifier string) (ModuleId, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, importer ModuleId, specifier string) (ModuleId, error)

func (f ResolverFunc) Resolve(ctx context.Context, importer ModuleId, specifier string) (ModuleId, error) {
	return f(ctx, importer, specifier)
}

// A Loader returns the parsed syntax tree of a module.
//
// The bundler calls Load at most once per ModuleId in a run, and never
// modifies the returned tree.
type Loader interface {
	Load(ctx context.Context, id ModuleId) (*LoadedModule, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, id ModuleId) (*LoadedModule, error)

func (f LoaderFunc) Load(ctx context.Context, id ModuleId) (*LoadedModule, error) {
	return f(ctx, id)
}

// A LoadedModule is the result of a Load.
//
// Imports and Exports describe the module as the loader understood
// it. If non-nil, they are checked against the syntax tree; use
// Describe to compute them. A nil list is derived from the tree.
type LoadedModule struct {
	File    *syntax.File
	Imports []ImportRecord
	Exports []string
}

// An ImportRecord describes one distinct specifier imported by a module.
type ImportRecord struct {
	Specifier string
	Static    bool     // appears in an import or export ... from declaration
	Dynamic   bool     // appears as the argument of import()
	Names     []string // names consumed: "default", "*" for a namespace, or an export name
}

func (r *ImportRecord) addName(name string) {
	for _, n := range r.Names {
		if n == name {
			return
		}
	}
	r.Names = append(r.Names, name)
}

// Describe returns the import records and the exported names of a
// module, both in source order. Only literal import() specifiers
// are recorded. Names exported through 'export * from' are not
// included, as they depend on other modules.
func Describe(f *syntax.File) (imports []ImportRecord, exports []string) {
	index := make(map[string]int)
	record := func(spec string) *ImportRecord {
		i, ok := index[spec]
		if !ok {
			i = len(imports)
			index[spec] = i
			imports = append(imports, ImportRecord{Specifier: spec})
		}
		return &imports[i]
	}

	for _, stmt := range f.Stmts {
		switch stmt := stmt.(type) {
		case *syntax.ImportDecl:
			r := record(stmt.Module.Value.(string))
			r.Static = true
			if stmt.Default != nil {
				r.addName("default")
			}
			if stmt.Namespace != nil {
				r.addName("*")
			}
			for _, spec := range stmt.Specs {
				r.addName(spec.Imported.Name)
			}

		case *syntax.ExportDecl:
			switch decl := stmt.Decl.(type) {
			case *syntax.VarDecl:
				for _, spec := range decl.List {
					exports = append(exports, spec.Name.Name)
				}
			case *syntax.FuncDecl:
				exports = append(exports, decl.Name.Name)
			case *syntax.ClassDecl:
				exports = append(exports, decl.Name.Name)
			}

		case *syntax.ExportDefault:
			exports = append(exports, "default")

		case *syntax.ExportNamed:
			var r *ImportRecord
			if stmt.Module != nil {
				r = record(stmt.Module.Value.(string))
				r.Static = true
			}
			for _, spec := range stmt.Specs {
				if r != nil {
					r.addName(spec.Local.Name)
				}
				exports = append(exports, spec.Exported.Name)
			}

		case *syntax.ExportAll:
			r := record(stmt.Module.Value.(string))
			r.Static = true
			r.addName("*")
			if stmt.Alias != nil {
				exports = append(exports, stmt.Alias.Name)
			}
		}

		// Dynamic imports may appear anywhere.
		syntax.Walk(stmt, func(n syntax.Node) bool {
			if call, ok := n.(*syntax.ImportCall); ok {
				if spec, ok := call.Specifier(); ok {
					record(spec).Dynamic = true
				}
			}
			return true
		})
	}
	return imports, exports
}

// A Module is a module of the dependency graph.
type Module struct {
	ID    ModuleId
	Index int          // discovery order
	File  *syntax.File // resolved syntax tree; must not be modified
	Hash  ContentHash  // hash of the module's canonical text

	Imports []ImportRecord
	Exports []string // declared export names, excluding 'export *'

	targetIDs []ModuleId // resolved ids, parallel to Imports; "" if external
	targets   []int      // module indices, parallel to Imports; -1 if external
	specs     map[string]int
}

// target returns the index of the module denoted by specifier,
// or -1 if it is external.
func (m *Module) target(specifier string) int {
	i, ok := m.specs[specifier]
	if !ok {
		return -1
	}
	return m.targets[i]
}

// isExternal reports whether specifier was left unresolved.
func (m *Module) isExternal(specifier string) bool {
	i, ok := m.specs[specifier]
	return ok && m.targets[i] < 0
}

// Stem returns a short identifier-safe name for the module, derived
// from the last path segment of its id without extensions.
func (m *Module) Stem() string { return stem(string(m.ID)) }
