// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Walk traverses a syntax tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	if !f(n) {
		return
	}

	switch n := n.(type) {
	case *File:
		walkStmts(n.Stmts, f)

	case *ImportDecl:
		if n.Default != nil {
			Walk(n.Default, f)
		}
		if n.Namespace != nil {
			Walk(n.Namespace, f)
		}
		for _, spec := range n.Specs {
			Walk(spec, f)
		}
		Walk(n.Module, f)

	case *ImportSpec:
		Walk(n.Imported, f)
		Walk(n.Local, f)

	case *ExportDecl:
		Walk(n.Decl, f)

	case *ExportDefault:
		if n.Decl != nil {
			Walk(n.Decl, f)
		} else {
			Walk(n.X, f)
		}

	case *ExportNamed:
		for _, spec := range n.Specs {
			Walk(spec, f)
		}
		if n.Module != nil {
			Walk(n.Module, f)
		}

	case *ExportSpec:
		Walk(n.Local, f)
		Walk(n.Exported, f)

	case *ExportAll:
		if n.Alias != nil {
			Walk(n.Alias, f)
		}
		Walk(n.Module, f)

	case *VarDecl:
		for _, spec := range n.List {
			Walk(spec, f)
		}

	case *VarSpec:
		Walk(n.Name, f)
		if n.Init != nil {
			Walk(n.Init, f)
		}

	case *FuncDecl:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		walkFunction(&n.Function, f)

	case *ClassDecl:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		walkClass(&n.Class, f)

	case *Param:
		Walk(n.Name, f)
		if n.Default != nil {
			Walk(n.Default, f)
		}

	case *Method:
		Walk(n.Name, f)
		walkFunction(n.Func, f)

	case *BlockStmt:
		walkStmts(n.Stmts, f)

	case *ExprStmt:
		Walk(n.X, f)

	case *IfStmt:
		Walk(n.Cond, f)
		Walk(n.Then, f)
		if n.Else != nil {
			Walk(n.Else, f)
		}

	case *ForStmt:
		if n.Init != nil {
			Walk(n.Init, f)
		}
		if n.Cond != nil {
			Walk(n.Cond, f)
		}
		if n.Post != nil {
			Walk(n.Post, f)
		}
		Walk(n.Body, f)

	case *ForInStmt:
		Walk(n.Name, f)
		Walk(n.X, f)
		Walk(n.Body, f)

	case *WhileStmt:
		Walk(n.Cond, f)
		Walk(n.Body, f)

	case *BranchStmt:
		// no-op

	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, f)
		}

	case *ThrowStmt:
		Walk(n.X, f)

	case *TryStmt:
		Walk(n.Body, f)
		if n.Param != nil {
			Walk(n.Param, f)
		}
		if n.Catch != nil {
			Walk(n.Catch, f)
		}
		if n.Finally != nil {
			Walk(n.Finally, f)
		}

	case *Ident, *Literal, *ThisExpr:
		// no-op

	case *ParenExpr:
		Walk(n.X, f)

	case *ArrayExpr:
		walkExprs(n.List, f)

	case *ObjectExpr:
		for _, prop := range n.Props {
			Walk(prop, f)
		}

	case *Property:
		if n.Key != nil {
			Walk(n.Key, f)
		}
		Walk(n.Value, f)

	case *SpreadExpr:
		Walk(n.X, f)

	case *FuncExpr:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		walkFunction(&n.Function, f)

	case *ArrowFunc:
		walkFunction(&n.Function, f)

	case *ClassExpr:
		if n.Name != nil {
			Walk(n.Name, f)
		}
		walkClass(&n.Class, f)

	case *CallExpr:
		Walk(n.Fn, f)
		walkExprs(n.Args, f)

	case *NewExpr:
		Walk(n.Fn, f)
		walkExprs(n.Args, f)

	case *ImportCall:
		Walk(n.Arg, f)

	case *DotExpr:
		Walk(n.X, f)
		Walk(n.Name, f)

	case *IndexExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *UnaryExpr:
		Walk(n.X, f)

	case *BinaryExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *AssignExpr:
		Walk(n.LHS, f)
		Walk(n.RHS, f)

	case *CondExpr:
		Walk(n.Cond, f)
		Walk(n.True, f)
		Walk(n.False, f)

	default:
		panic(n)
	}

	f(nil)
}

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, f)
	}
}

func walkExprs(exprs []Expr, f func(Node) bool) {
	for _, x := range exprs {
		Walk(x, f)
	}
}

func walkFunction(fn *Function, f func(Node) bool) {
	for _, param := range fn.Params {
		Walk(param, f)
	}
	if fn.Body != nil {
		Walk(fn.Body, f)
	} else {
		Walk(fn.Expr, f)
	}
}

func walkClass(class *Class, f func(Node) bool) {
	if class.Extends != nil {
		Walk(class.Extends, f)
	}
	for _, m := range class.Methods {
		Walk(m, f)
	}
}

// Rewrite replaces, bottom up, every expression x reachable from n
// by f(x). Declaring identifiers and labels are not expressions for
// this purpose and are never replaced.
func Rewrite(n Node, f func(Expr) Expr) {
	r := rewriter(f)
	switch n := n.(type) {
	case *File:
		r.stmts(n.Stmts)
	case Stmt:
		r.stmt(n)
	case Expr:
		r.expr(n)
	}
}

type rewriter func(Expr) Expr

func (r rewriter) stmts(stmts []Stmt) {
	for _, stmt := range stmts {
		r.stmt(stmt)
	}
}

func (r rewriter) stmt(stmt Stmt) {
	switch stmt := stmt.(type) {
	case *ExportDecl:
		r.stmt(stmt.Decl)
	case *ExportDefault:
		if stmt.Decl != nil {
			r.stmt(stmt.Decl)
		} else {
			stmt.X = r.expr(stmt.X)
		}
	case *ExportNamed:
		if stmt.Module == nil {
			for _, spec := range stmt.Specs {
				spec.Local = r.ident(spec.Local)
			}
		}
	case *VarDecl:
		for _, spec := range stmt.List {
			if spec.Init != nil {
				spec.Init = r.expr(spec.Init)
			}
		}
	case *FuncDecl:
		r.function(&stmt.Function)
	case *ClassDecl:
		r.class(&stmt.Class)
	case *BlockStmt:
		r.stmts(stmt.Stmts)
	case *ExprStmt:
		stmt.X = r.expr(stmt.X)
	case *IfStmt:
		stmt.Cond = r.expr(stmt.Cond)
		r.stmt(stmt.Then)
		if stmt.Else != nil {
			r.stmt(stmt.Else)
		}
	case *ForStmt:
		if stmt.Init != nil {
			r.stmt(stmt.Init)
		}
		if stmt.Cond != nil {
			stmt.Cond = r.expr(stmt.Cond)
		}
		if stmt.Post != nil {
			stmt.Post = r.expr(stmt.Post)
		}
		r.stmt(stmt.Body)
	case *ForInStmt:
		if stmt.Tok == ILLEGAL {
			stmt.Name = r.ident(stmt.Name)
		}
		stmt.X = r.expr(stmt.X)
		r.stmt(stmt.Body)
	case *WhileStmt:
		stmt.Cond = r.expr(stmt.Cond)
		r.stmt(stmt.Body)
	case *ReturnStmt:
		if stmt.Result != nil {
			stmt.Result = r.expr(stmt.Result)
		}
	case *ThrowStmt:
		stmt.X = r.expr(stmt.X)
	case *TryStmt:
		r.stmt(stmt.Body)
		if stmt.Catch != nil {
			r.stmt(stmt.Catch)
		}
		if stmt.Finally != nil {
			r.stmt(stmt.Finally)
		}
	}
}

// ident rewrites an identifier that must remain an identifier.
func (r rewriter) ident(id *Ident) *Ident {
	if x, ok := r(id).(*Ident); ok {
		return x
	}
	return id
}

func (r rewriter) exprs(list []Expr) {
	for i, x := range list {
		list[i] = r.expr(x)
	}
}

func (r rewriter) function(fn *Function) {
	for _, param := range fn.Params {
		if param.Default != nil {
			param.Default = r.expr(param.Default)
		}
	}
	if fn.Body != nil {
		r.stmt(fn.Body)
	} else {
		fn.Expr = r.expr(fn.Expr)
	}
}

func (r rewriter) class(class *Class) {
	if class.Extends != nil {
		class.Extends = r.expr(class.Extends)
	}
	for _, m := range class.Methods {
		r.function(m.Func)
	}
}

func (r rewriter) expr(x Expr) Expr {
	switch x := x.(type) {
	case *ParenExpr:
		x.X = r.expr(x.X)
	case *ArrayExpr:
		r.exprs(x.List)
	case *ObjectExpr:
		for _, prop := range x.Props {
			if prop.Shorthand {
				if id := r.ident(prop.Value.(*Ident)); id != prop.Value {
					prop.Value = id
				}
				continue
			}
			prop.Value = r.expr(prop.Value)
		}
	case *SpreadExpr:
		x.X = r.expr(x.X)
	case *FuncExpr:
		r.function(&x.Function)
	case *ArrowFunc:
		r.function(&x.Function)
	case *ClassExpr:
		r.class(&x.Class)
	case *CallExpr:
		x.Fn = r.expr(x.Fn)
		r.exprs(x.Args)
	case *NewExpr:
		x.Fn = r.expr(x.Fn)
		r.exprs(x.Args)
	case *ImportCall:
		x.Arg = r.expr(x.Arg)
	case *DotExpr:
		x.X = r.expr(x.X)
	case *IndexExpr:
		x.X = r.expr(x.X)
		x.Y = r.expr(x.Y)
	case *UnaryExpr:
		x.X = r.expr(x.X)
	case *BinaryExpr:
		x.X = r.expr(x.X)
		x.Y = r.expr(x.Y)
	case *AssignExpr:
		x.LHS = r.expr(x.LHS)
		x.RHS = r.expr(x.RHS)
	case *CondExpr:
		x.Cond = r.expr(x.Cond)
		x.True = r.expr(x.True)
		x.False = r.expr(x.False)
	}
	return r(x)
}
