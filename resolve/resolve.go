// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve defines a name-resolution pass for modules parsed
// by package syntax.
//
// The resolver sets the Binding field of every Ident that is a
// reference to or declaration of a variable, and records the module's
// top-level bindings, exports and undeclared globals in the File.
//
// Scoping follows the module language: var declarations and function
// parameters belong to the enclosing function (or the module), while
// let, const, class and nested function declarations belong to the
// innermost block. Import bindings and all top-level declarations
// belong to the module scope.
//
// Names that are not declared anywhere in the module are globals.
// All references to the same global within a file share one Binding
// whose Scope is UndefinedScope.
package resolve // import "go.jsbundle.dev/resolve"

import (
	"fmt"
	"sort"

	"go.jsbundle.dev/syntax"
)

const debug = false

// File resolves the specified file and records information about the
// module in file.Bindings, file.Exports, file.StarExports and
// file.Globals.
//
// The file must not have been resolved before.
//
// If the returned error is non-nil, it is a non-empty ErrorList.
func File(file *syntax.File) error {
	r := newResolver(file)
	r.resolveFile()
	if len(r.errors) > 0 {
		sort.Stable(r.errors)
		return r.errors
	}
	return nil
}

// An ErrorList is a non-empty list of resolver error messages.
type ErrorList []Error // len > 0

func (e ErrorList) Len() int      { return len(e) }
func (e ErrorList) Swap(i, j int) { e[i], e[j] = e[j], e[i] }
func (e ErrorList) Less(i, j int) bool {
	if e[i].Pos.Line != e[j].Pos.Line {
		return e[i].Pos.Line < e[j].Pos.Line
	}
	return e[i].Pos.Col < e[j].Pos.Col
}

func (e ErrorList) Error() string { return e[0].Error() }

// An Error describes the nature and position of a resolver error.
type Error struct {
	Pos syntax.Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// A block is a lexical scope.
type block struct {
	parent   *block
	fn       bool // function (or module) scope: the target of var hoisting
	bindings map[string]*syntax.Binding
}

type resolver struct {
	file   *syntax.File
	env    *block // innermost scope
	module *block

	globals map[string]*syntax.Binding
	exports map[string]bool

	errors ErrorList
}

func newResolver(file *syntax.File) *resolver {
	return &resolver{
		file:    file,
		globals: make(map[string]*syntax.Binding),
		exports: make(map[string]bool),
	}
}

func (r *resolver) errorf(posn syntax.Position, format string, args ...interface{}) {
	r.errors = append(r.errors, Error{posn, fmt.Sprintf(format, args...)})
}

func (r *resolver) push(fn bool) *block {
	b := &block{parent: r.env, fn: fn, bindings: make(map[string]*syntax.Binding)}
	r.env = b
	return b
}

func (r *resolver) pop() { r.env = r.env.parent }

// fnScope returns the innermost function-level scope.
func (r *resolver) fnScope() *block {
	b := r.env
	for !b.fn {
		b = b.parent
	}
	return b
}

func (r *resolver) resolveFile() {
	r.module = r.push(true)
	r.declareStmts(r.file.Stmts, true)
	r.stmts(r.file.Stmts)
	r.pop()

	for _, stmt := range r.file.Stmts {
		r.export(stmt)
	}
}

// declare binds id in block b, which must be r.env or an enclosing
// function scope.
func (r *resolver) declare(b *block, id *syntax.Ident, kind syntax.Kind) *syntax.Binding {
	if prev, ok := b.bindings[id.Name]; ok {
		if kind == syntax.VarKind && (prev.Kind == syntax.VarKind || prev.Kind == syntax.ParamKind) {
			id.Binding = prev
			return prev
		}
		r.errorf(id.NamePos, "identifier %s has already been declared", id.Name)
		id.Binding = prev
		return prev
	}
	scope := syntax.LocalScope
	if b == r.module {
		scope = syntax.ModuleScope
	}
	bind := &syntax.Binding{Scope: scope, Kind: kind, Name: id.Name, First: id}
	b.bindings[id.Name] = bind
	id.Binding = bind
	if b == r.module {
		r.file.Bindings = append(r.file.Bindings, bind)
	}
	return bind
}

// declareStmts binds the names declared by a list of statements in
// the current block. If hoist is set, the current block is a function
// scope and var declarations nested within the statements are bound
// here too.
func (r *resolver) declareStmts(stmts []syntax.Stmt, hoist bool) {
	for _, stmt := range stmts {
		r.declareStmt(stmt, hoist)
	}
}

func (r *resolver) declareStmt(stmt syntax.Stmt, hoist bool) {
	switch stmt := stmt.(type) {
	case *syntax.ImportDecl:
		module := stmt.Module.Value.(string)
		importBinding := func(local *syntax.Ident, imported string) {
			bind := r.declare(r.env, local, syntax.ImportKind)
			if bind.Kind == syntax.ImportKind && bind.First == local {
				bind.Scope = syntax.ImportScope
				bind.Module = module
				bind.Imported = imported
			}
		}
		if stmt.Default != nil {
			importBinding(stmt.Default, "default")
		}
		if stmt.Namespace != nil {
			importBinding(stmt.Namespace, "*")
		}
		for _, spec := range stmt.Specs {
			importBinding(spec.Local, spec.Imported.Name)
		}

	case *syntax.ExportDecl:
		r.declareStmt(stmt.Decl, hoist)

	case *syntax.ExportDefault:
		switch decl := stmt.Decl.(type) {
		case *syntax.FuncDecl:
			if decl.Name != nil {
				stmt.Binding = r.declare(r.env, decl.Name, syntax.FunctionKind)
				return
			}
		case *syntax.ClassDecl:
			if decl.Name != nil {
				stmt.Binding = r.declare(r.env, decl.Name, syntax.ClassKind)
				return
			}
		}
		stmt.Binding = &syntax.Binding{Scope: syntax.ModuleScope, Kind: syntax.DefaultKind, Name: "default"}
		r.file.Bindings = append(r.file.Bindings, stmt.Binding)

	case *syntax.VarDecl:
		switch stmt.Tok {
		case syntax.VAR:
			if hoist {
				r.hoistVars(stmt)
			}
		case syntax.LET:
			for _, spec := range stmt.List {
				r.declare(r.env, spec.Name, syntax.LetKind)
			}
		case syntax.CONST:
			for _, spec := range stmt.List {
				r.declare(r.env, spec.Name, syntax.ConstKind)
			}
		}

	case *syntax.FuncDecl:
		r.declare(r.env, stmt.Name, syntax.FunctionKind)

	case *syntax.ClassDecl:
		r.declare(r.env, stmt.Name, syntax.ClassKind)

	default:
		if hoist {
			r.hoistVars(stmt)
		}
	}
}

// hoistVars binds, in the current function scope, every var
// declaration within stmt that is not inside a nested function.
func (r *resolver) hoistVars(stmt syntax.Stmt) {
	switch stmt := stmt.(type) {
	case *syntax.VarDecl:
		if stmt.Tok == syntax.VAR {
			fn := r.fnScope()
			for _, spec := range stmt.List {
				r.declare(fn, spec.Name, syntax.VarKind)
			}
		}
	case *syntax.BlockStmt:
		for _, stmt := range stmt.Stmts {
			r.hoistVars(stmt)
		}
	case *syntax.IfStmt:
		r.hoistVars(stmt.Then)
		if stmt.Else != nil {
			r.hoistVars(stmt.Else)
		}
	case *syntax.ForStmt:
		if stmt.Init != nil {
			r.hoistVars(stmt.Init)
		}
		r.hoistVars(stmt.Body)
	case *syntax.ForInStmt:
		if stmt.Tok == syntax.VAR {
			r.declare(r.fnScope(), stmt.Name, syntax.VarKind)
		}
		r.hoistVars(stmt.Body)
	case *syntax.WhileStmt:
		r.hoistVars(stmt.Body)
	case *syntax.TryStmt:
		r.hoistVars(stmt.Body)
		if stmt.Catch != nil {
			r.hoistVars(stmt.Catch)
		}
		if stmt.Finally != nil {
			r.hoistVars(stmt.Finally)
		}
	}
}

func (r *resolver) stmts(stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		r.stmt(stmt)
	}
}

func (r *resolver) stmt(stmt syntax.Stmt) {
	switch stmt := stmt.(type) {
	case *syntax.ImportDecl, *syntax.ExportAll, *syntax.BranchStmt:
		// no-op

	case *syntax.ExportDecl:
		r.stmt(stmt.Decl)

	case *syntax.ExportDefault:
		if stmt.Decl != nil {
			r.stmt(stmt.Decl)
		} else {
			r.expr(stmt.X)
		}

	case *syntax.ExportNamed:
		if stmt.Module != nil {
			break // labels only
		}
		for _, spec := range stmt.Specs {
			if bind, ok := r.module.bindings[spec.Local.Name]; ok {
				spec.Local.Binding = bind
			} else {
				r.errorf(spec.Local.NamePos, "export of undefined name %s", spec.Local.Name)
			}
		}

	case *syntax.VarDecl:
		for _, spec := range stmt.List {
			if spec.Init != nil {
				r.expr(spec.Init)
			}
		}

	case *syntax.FuncDecl:
		r.function(&stmt.Function)

	case *syntax.ClassDecl:
		r.class(&stmt.Class)

	case *syntax.BlockStmt:
		r.block(stmt)

	case *syntax.ExprStmt:
		r.expr(stmt.X)

	case *syntax.IfStmt:
		r.expr(stmt.Cond)
		r.block(stmt.Then)
		if stmt.Else != nil {
			r.stmt(stmt.Else)
		}

	case *syntax.ForStmt:
		r.push(false)
		if stmt.Init != nil {
			r.declareStmt(stmt.Init, false)
			r.stmt(stmt.Init)
		}
		if stmt.Cond != nil {
			r.expr(stmt.Cond)
		}
		if stmt.Post != nil {
			r.expr(stmt.Post)
		}
		r.block(stmt.Body)
		r.pop()

	case *syntax.ForInStmt:
		r.expr(stmt.X)
		r.push(false)
		switch stmt.Tok {
		case syntax.LET:
			r.declare(r.env, stmt.Name, syntax.LetKind)
		case syntax.CONST:
			r.declare(r.env, stmt.Name, syntax.ConstKind)
		case syntax.ILLEGAL:
			r.use(stmt.Name)
		}
		r.block(stmt.Body)
		r.pop()

	case *syntax.WhileStmt:
		r.expr(stmt.Cond)
		r.block(stmt.Body)

	case *syntax.ReturnStmt:
		if stmt.Result != nil {
			r.expr(stmt.Result)
		}

	case *syntax.ThrowStmt:
		r.expr(stmt.X)

	case *syntax.TryStmt:
		r.block(stmt.Body)
		if stmt.Catch != nil {
			r.push(false)
			if stmt.Param != nil {
				r.declare(r.env, stmt.Param, syntax.CatchKind)
			}
			r.block(stmt.Catch)
			r.pop()
		}
		if stmt.Finally != nil {
			r.block(stmt.Finally)
		}

	default:
		panic(fmt.Sprintf("unexpected stmt %T", stmt))
	}
}

func (r *resolver) block(b *syntax.BlockStmt) {
	r.push(false)
	r.declareStmts(b.Stmts, false)
	r.stmts(b.Stmts)
	r.pop()
}

func (r *resolver) function(fn *syntax.Function) {
	r.push(true)
	for _, param := range fn.Params {
		r.declare(r.env, param.Name, syntax.ParamKind)
	}
	for _, param := range fn.Params {
		if param.Default != nil {
			r.expr(param.Default)
		}
	}
	if fn.Body != nil {
		r.declareStmts(fn.Body.Stmts, true)
		r.stmts(fn.Body.Stmts)
	} else {
		r.expr(fn.Expr)
	}
	r.pop()
}

func (r *resolver) class(class *syntax.Class) {
	if class.Extends != nil {
		r.expr(class.Extends)
	}
	for _, m := range class.Methods {
		r.function(m.Func)
	}
}

// use resolves a reference to a name.
func (r *resolver) use(id *syntax.Ident) {
	for b := r.env; b != nil; b = b.parent {
		if bind, ok := b.bindings[id.Name]; ok {
			id.Binding = bind
			return
		}
	}
	bind, ok := r.globals[id.Name]
	if !ok {
		bind = &syntax.Binding{Scope: syntax.UndefinedScope, Kind: syntax.GlobalKind, Name: id.Name}
		r.globals[id.Name] = bind
		r.file.Globals = append(r.file.Globals, bind)
	}
	id.Binding = bind
}

func (r *resolver) exprs(list []syntax.Expr) {
	for _, x := range list {
		r.expr(x)
	}
}

func (r *resolver) expr(e syntax.Expr) {
	switch e := e.(type) {
	case *syntax.Ident:
		r.use(e)

	case *syntax.Literal, *syntax.ThisExpr:
		// no-op

	case *syntax.ParenExpr:
		r.expr(e.X)

	case *syntax.ArrayExpr:
		r.exprs(e.List)

	case *syntax.ObjectExpr:
		for _, prop := range e.Props {
			r.expr(prop.Value) // keys are labels
		}

	case *syntax.SpreadExpr:
		r.expr(e.X)

	case *syntax.FuncExpr:
		if e.Name != nil {
			// A named function expression binds its own name
			// in a scope visible only to its body.
			r.push(false)
			r.declare(r.env, e.Name, syntax.FunctionKind)
			r.function(&e.Function)
			r.pop()
		} else {
			r.function(&e.Function)
		}

	case *syntax.ArrowFunc:
		r.function(&e.Function)

	case *syntax.ClassExpr:
		if e.Name != nil {
			r.push(false)
			r.declare(r.env, e.Name, syntax.ClassKind)
			r.class(&e.Class)
			r.pop()
		} else {
			r.class(&e.Class)
		}

	case *syntax.CallExpr:
		r.expr(e.Fn)
		r.exprs(e.Args)

	case *syntax.NewExpr:
		r.expr(e.Fn)
		r.exprs(e.Args)

	case *syntax.ImportCall:
		r.expr(e.Arg)

	case *syntax.DotExpr:
		r.expr(e.X)

	case *syntax.IndexExpr:
		r.expr(e.X)
		r.expr(e.Y)

	case *syntax.UnaryExpr:
		r.expr(e.X)

	case *syntax.BinaryExpr:
		r.expr(e.X)
		r.expr(e.Y)

	case *syntax.AssignExpr:
		r.expr(e.LHS)
		r.expr(e.RHS)

	case *syntax.CondExpr:
		r.expr(e.Cond)
		r.expr(e.True)
		r.expr(e.False)

	default:
		panic(fmt.Sprintf("unexpected expr %T", e))
	}
}

// export records the exports of a top-level statement.
func (r *resolver) export(stmt syntax.Stmt) {
	switch stmt := stmt.(type) {
	case *syntax.ExportDecl:
		switch decl := stmt.Decl.(type) {
		case *syntax.VarDecl:
			for _, spec := range decl.List {
				r.addExport(spec.Name, &syntax.Export{Name: spec.Name.Name, Binding: spec.Name.Binding})
			}
		case *syntax.FuncDecl:
			r.addExport(decl.Name, &syntax.Export{Name: decl.Name.Name, Binding: decl.Name.Binding})
		case *syntax.ClassDecl:
			r.addExport(decl.Name, &syntax.Export{Name: decl.Name.Name, Binding: decl.Name.Binding})
		}

	case *syntax.ExportDefault:
		r.addExportAt(stmt.Export, &syntax.Export{Name: "default", Binding: stmt.Binding})

	case *syntax.ExportNamed:
		for _, spec := range stmt.Specs {
			if stmt.Module != nil {
				r.addExport(spec.Exported, &syntax.Export{
					Name:     spec.Exported.Name,
					Module:   stmt.Module.Value.(string),
					Imported: spec.Local.Name,
				})
			} else if spec.Local.Binding != nil {
				r.addExport(spec.Exported, &syntax.Export{Name: spec.Exported.Name, Binding: spec.Local.Binding})
			}
		}

	case *syntax.ExportAll:
		module := stmt.Module.Value.(string)
		if stmt.Alias != nil {
			r.addExport(stmt.Alias, &syntax.Export{Name: stmt.Alias.Name, Module: module, Imported: "*"})
		} else {
			r.file.StarExports = append(r.file.StarExports, module)
		}
	}
}

func (r *resolver) addExport(id *syntax.Ident, export *syntax.Export) {
	r.addExportAt(id.NamePos, export)
}

func (r *resolver) addExportAt(pos syntax.Position, export *syntax.Export) {
	if r.exports[export.Name] {
		r.errorf(pos, "duplicate export %s", export.Name)
		return
	}
	r.exports[export.Name] = true
	r.file.Exports = append(r.file.Exports, export)
}
