// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"fmt"
	"strconv"
	"strings"

	"go.jsbundle.dev/syntax"
)

// exportHelper defines the function that installs getters for the
// exports of a namespace object or of a CommonJS module.
const exportHelper = `function %s(target, all) {
	Object.keys(all).forEach(function (name) {
		Object.defineProperty(target, name, { get: all[name], enumerable: true })
	})
	return target
}`

// emit prints the syntax tree of unit s.
func (mg *merger) emit(s *unitState) (*Bundle, error) {
	g := mg.p.graph
	format := mg.cfg.ModuleFormat
	exports := mg.exportList(s)

	var src strings.Builder
	helper, hasHelper := s.table.Lookup(helperKey)
	if hasHelper {
		fmt.Fprintf(&src, exportHelper+"\n", helper)
	}
	if format == CommonJS && len(exports) > 0 {
		fmt.Fprintf(&src, "%s(exports, %s);\n", helper, getters(exports))
	}
	for _, gr := range s.groups {
		mg.linkage(&src, s, gr)
	}
	for _, mod := range s.ns {
		m := g.Modules[mod]
		var list [][2]string
		for _, name := range mg.l.exportNamesOf(mod).names {
			sym, err := mg.l.mustExport(mod, name)
			if err != nil {
				return nil, err
			}
			list = append(list, [2]string{name, mg.final(s, sym)})
		}
		ns, _ := s.table.Lookup(BindingKey{m.ID, "*"})
		fmt.Fprintf(&src, "var %s = %s({}, %s);\n", ns, helper, getters(list))
	}
	if s.err != nil {
		return nil, s.err
	}
	head, err := mg.parse(s, src.String())
	if err != nil {
		return nil, err
	}

	body := head
	for _, mod := range s.members {
		stmts, err := mg.moduleBody(s, g.Modules[mod])
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}

	switch format {
	case ES:
		var tail strings.Builder
		if len(exports) > 0 {
			tail.WriteString("export { ")
			for i, e := range exports {
				if i > 0 {
					tail.WriteString(", ")
				}
				tail.WriteString(alias(e[1], e[0]))
			}
			tail.WriteString(" };\n")
		}
		for _, spec := range s.extStars {
			fmt.Fprintf(&tail, "export * from %s;\n", syntax.Quote(spec))
		}
		stmts, err := mg.parse(s, tail.String())
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)

	case IIFE:
		fn := &syntax.FuncExpr{Function: syntax.Function{Body: &syntax.BlockStmt{Stmts: body}}}
		call := &syntax.CallExpr{Fn: &syntax.ParenExpr{X: fn}}
		if len(exports) == 0 {
			body = []syntax.Stmt{&syntax.ExprStmt{X: call}}
			break
		}
		result, err := syntax.ParseExpr(s.FileName(), fmt.Sprintf("%s({}, %s)", helper, getters(exports)))
		if err != nil {
			return nil, mg.conflict(s, err.Error())
		}
		fn.Body.Stmts = append(fn.Body.Stmts, &syntax.ReturnStmt{Result: result})
		global := mg.cfg.GlobalName
		if global == "" {
			global = identifier(mg.p.eps[s.ep].name)
		}
		body = []syntax.Stmt{&syntax.VarDecl{
			Tok:  syntax.VAR,
			List: []*syntax.VarSpec{{Name: &syntax.Ident{Name: global}, Init: call}},
		}}
	}

	f := &syntax.File{Path: s.FileName(), Stmts: body}
	return &Bundle{
		Name:     s.name,
		Kind:     s.kind,
		File:     f,
		Hash:     HashFile(f),
		Entries:  mg.p.entryModules(s.unit),
		Modules:  moduleIDs(g, s.members),
		Bindings: s.table,
	}, nil
}

// parse parses generated source text.
func (mg *merger) parse(s *unitState, src string) ([]syntax.Stmt, error) {
	if src == "" {
		return nil, nil
	}
	f, err := syntax.Parse(s.FileName(), src)
	if err != nil {
		return nil, mg.conflict(s, fmt.Sprintf("generated code: %v", err))
	}
	return f.Stmts, nil
}

// linkage writes the imports of unit s from one other unit or
// external module.
func (mg *merger) linkage(w *strings.Builder, s *unitState, gr *linkGroup) {
	path := syntax.Quote(gr.path())
	imported := func(sym symbol) string {
		if gr.from != nil {
			return gr.from.exportName[sym]
		}
		return sym.name
	}

	if mg.cfg.ModuleFormat == CommonJS {
		if len(gr.syms) == 0 {
			fmt.Fprintf(w, "require(%s);\n", path)
			return
		}
		fmt.Fprintf(w, "var %s = require(%s);\n", gr.req, path)
		for _, sym := range gr.syms {
			if name := imported(sym); name == "*" {
				fmt.Fprintf(w, "var %s = %s;\n", mg.final(s, sym), gr.req)
			} else {
				fmt.Fprintf(w, "var %s = %s.%s;\n", mg.final(s, sym), gr.req, name)
			}
		}
		return
	}

	var def, ns string
	var named []string
	for _, sym := range gr.syms {
		switch name := imported(sym); {
		case gr.from == nil && name == "*":
			ns = mg.final(s, sym)
		case gr.from == nil && name == "default":
			def = mg.final(s, sym)
		default:
			named = append(named, alias(name, mg.final(s, sym)))
		}
	}
	var clauses []string
	if def != "" {
		clauses = append(clauses, def)
	}
	if len(named) > 0 {
		clauses = append(clauses, "{ "+strings.Join(named, ", ")+" }")
	}
	if len(clauses) > 0 {
		fmt.Fprintf(w, "import %s from %s;\n", strings.Join(clauses, ", "), path)
	}
	if ns != "" {
		fmt.Fprintf(w, "import * as %s from %s;\n", ns, path)
	}
	if len(clauses) == 0 && ns == "" {
		fmt.Fprintf(w, "import %s;\n", path)
	}
}

func alias(name, local string) string {
	if name == local {
		return name
	}
	return name + " as " + local
}

// getters returns an object literal of getter functions.
func getters(list [][2]string) string {
	if len(list) == 0 {
		return "{}"
	}
	var buf strings.Builder
	buf.WriteString("{ ")
	for i, e := range list {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: () => %s", e[0], e[1])
	}
	buf.WriteString(" }")
	return buf.String()
}

// moduleBody returns the statements of member m, with import and
// export declarations removed and every identifier renamed to its
// final name.
func (mg *merger) moduleBody(s *unitState, m *Module) ([]syntax.Stmt, error) {
	f := syntax.Clone(m.File)
	var out []syntax.Stmt
	for _, stmt := range f.Stmts {
		switch stmt := stmt.(type) {
		case *syntax.ImportDecl, *syntax.ExportNamed, *syntax.ExportAll:
			// replaced by linkage
		case *syntax.ExportDecl:
			out = append(out, stmt.Decl)
		case *syntax.ExportDefault:
			name := &syntax.Ident{NamePos: stmt.Export, Name: "default", Binding: stmt.Binding}
			switch decl := stmt.Decl.(type) {
			case *syntax.FuncDecl:
				if decl.Name == nil {
					decl.Name = name
				}
				out = append(out, decl)
			case *syntax.ClassDecl:
				if decl.Name == nil {
					decl.Name = name
				}
				out = append(out, decl)
			default:
				out = append(out, &syntax.VarDecl{
					TokPos: stmt.Export,
					Tok:    syntax.VAR,
					List:   []*syntax.VarSpec{{Name: name, Init: stmt.X}},
				})
			}
		default:
			out = append(out, stmt)
		}
	}

	names, err := mg.renamer(s, m)
	if err != nil {
		return nil, err
	}
	for _, stmt := range out {
		syntax.Walk(stmt, func(n syntax.Node) bool {
			if id, ok := n.(*syntax.Ident); ok && id.Binding != nil {
				id.Name = names(id.Binding)
			}
			return true
		})
		syntax.Rewrite(stmt, func(x syntax.Expr) syntax.Expr {
			if call, ok := x.(*syntax.ImportCall); ok {
				return mg.dynamicImport(s, m, call)
			}
			return x
		})
	}
	if s.err != nil {
		return nil, s.err
	}
	return out, nil
}

// dynamicImport returns the replacement of an import() call in m.
func (mg *merger) dynamicImport(s *unitState, m *Module, call *syntax.ImportCall) syntax.Expr {
	spec, ok := call.Specifier()
	if !ok {
		return call
	}
	var src string
	switch t := m.target(spec); {
	case t < 0:
		if mg.cfg.ModuleFormat != CommonJS {
			return call
		}
		src = fmt.Sprintf("Promise.resolve().then(() => require(%s))", syntax.Quote(spec))
	case mg.inlined(s, t):
		ns := mg.final(s, symbol{kind: namespaceSym, mod: t})
		src = fmt.Sprintf("Promise.resolve().then(() => %s)", ns)
	default:
		path := "./" + mg.p.dynUnit[t].FileName()
		if mg.cfg.ModuleFormat != CommonJS {
			call.Arg = &syntax.Literal{Token: syntax.STRING, Raw: syntax.Quote(path), Value: path}
			return call
		}
		src = fmt.Sprintf("Promise.resolve().then(() => require(%s))", syntax.Quote(path))
	}
	x, err := syntax.ParseExpr(m.File.Path, src)
	if err != nil {
		mg.fail(s, fmt.Sprintf("generated code: %v", err))
		return call
	}
	return x
}

// renamer returns the final name of each binding referenced in m.
//
// A local binding whose name is the final name of a renamed
// module-level binding of m would capture references to it, so such
// locals are renamed too.
func (mg *merger) renamer(s *unitState, m *Module) (func(*syntax.Binding) string, error) {
	moduleName := func(b *syntax.Binding) (string, error) {
		if b.Scope == syntax.ImportScope {
			sym, err := mg.l.importSymbol(m, b)
			if err != nil {
				return "", err
			}
			return mg.final(s, sym), nil
		}
		name, _ := s.table.Lookup(BindingKey{m.ID, b.Name})
		return name, nil
	}
	final := make(map[*syntax.Binding]string)
	captured := make(map[string]bool)
	for _, b := range m.File.Bindings {
		name, err := moduleName(b)
		if err != nil {
			return nil, err
		}
		final[b] = name
		if name != b.Name {
			captured[name] = true
		}
	}
	for i, rec := range m.Imports {
		if !rec.Dynamic {
			continue
		}
		captured["Promise"] = true
		captured["require"] = true
		if t := m.targets[i]; t >= 0 && mg.inlined(s, t) {
			captured[mg.final(s, symbol{kind: namespaceSym, mod: t})] = true
		}
	}

	var locals []*syntax.Binding
	used := make(map[string]bool)
	seen := make(map[*syntax.Binding]bool)
	syntax.Walk(m.File, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok && id.Binding != nil {
			used[id.Name] = true
			if b := id.Binding; b.Scope == syntax.LocalScope && !seen[b] {
				seen[b] = true
				locals = append(locals, b)
			}
		}
		return true
	})
	for _, b := range locals {
		if !captured[b.Name] {
			continue
		}
		for n := 1; ; n++ {
			name := b.Name + "$" + strconv.Itoa(n)
			if !used[name] && !captured[name] && s.table.available(name) {
				final[b] = name
				used[name] = true
				break
			}
		}
	}

	return func(b *syntax.Binding) string {
		if name, ok := final[b]; ok {
			return name
		}
		return b.Name
	}, nil
}
