// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Print writes the canonical text of a file, statement or expression
// to w. The output depends only on the structure of the tree, never
// on positions, so equal trees print identically.
func Print(w io.Writer, n Node) error {
	_, err := io.WriteString(w, Format(n))
	return err
}

// Format returns the canonical text of a file, statement or expression.
func Format(n Node) string {
	p := &printer{}
	switch n := n.(type) {
	case *File:
		for _, stmt := range n.Stmts {
			p.stmt(stmt)
		}
	case Stmt:
		p.stmt(n)
	case Expr:
		p.expr(n)
	default:
		panic(fmt.Sprintf("syntax.Format: unexpected %T", n))
	}
	return p.buf.String()
}

type printer struct {
	buf    strings.Builder
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(&p.buf, format, args...)
}

func (p *printer) str(s string) { p.buf.WriteString(s) }

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
}

// stmt prints an indented statement and a final newline.
func (p *printer) stmt(stmt Stmt) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
	p.stmtText(stmt)
	p.buf.WriteByte('\n')
}

func (p *printer) stmtText(stmt Stmt) {
	switch stmt := stmt.(type) {
	case *ExprStmt:
		p.expr(stmt.X)
		p.str(";")

	case *VarDecl:
		p.varDecl(stmt)
		p.str(";")

	case *FuncDecl:
		p.str("function ")
		if stmt.Name != nil {
			p.str(stmt.Name.Name)
		}
		p.function(&stmt.Function)

	case *ClassDecl:
		p.class(stmt.Name, &stmt.Class)

	case *BlockStmt:
		p.block(stmt)

	case *IfStmt:
		p.str("if (")
		p.expr(stmt.Cond)
		p.str(") ")
		p.block(stmt.Then)
		if stmt.Else != nil {
			p.str(" else ")
			if elif, ok := stmt.Else.(*IfStmt); ok {
				p.stmtText(elif)
			} else {
				p.block(stmt.Else.(*BlockStmt))
			}
		}

	case *ForStmt:
		p.str("for (")
		switch init := stmt.Init.(type) {
		case *VarDecl:
			p.varDecl(init)
		case *ExprStmt:
			p.expr(init.X)
		}
		p.str(";")
		if stmt.Cond != nil {
			p.str(" ")
			p.expr(stmt.Cond)
		}
		p.str(";")
		if stmt.Post != nil {
			p.str(" ")
			p.expr(stmt.Post)
		}
		p.str(") ")
		p.block(stmt.Body)

	case *ForInStmt:
		p.str("for (")
		if stmt.Tok != ILLEGAL {
			p.str(stmt.Tok.String())
			p.str(" ")
		}
		p.str(stmt.Name.Name)
		if stmt.Of {
			p.str(" of ")
		} else {
			p.str(" in ")
		}
		p.expr(stmt.X)
		p.str(") ")
		p.block(stmt.Body)

	case *WhileStmt:
		p.str("while (")
		p.expr(stmt.Cond)
		p.str(") ")
		p.block(stmt.Body)

	case *ReturnStmt:
		p.str("return")
		if stmt.Result != nil {
			p.str(" ")
			p.expr(stmt.Result)
		}
		p.str(";")

	case *ThrowStmt:
		p.str("throw ")
		p.expr(stmt.X)
		p.str(";")

	case *BranchStmt:
		p.str(stmt.Token.String())
		p.str(";")

	case *TryStmt:
		p.str("try ")
		p.block(stmt.Body)
		if stmt.Catch != nil {
			p.str(" catch ")
			if stmt.Param != nil {
				p.printf("(%s) ", stmt.Param.Name)
			}
			p.block(stmt.Catch)
		}
		if stmt.Finally != nil {
			p.str(" finally ")
			p.block(stmt.Finally)
		}

	case *ImportDecl:
		p.str("import ")
		var clauses []string
		if stmt.Default != nil {
			clauses = append(clauses, stmt.Default.Name)
		}
		if stmt.Namespace != nil {
			clauses = append(clauses, "* as "+stmt.Namespace.Name)
		}
		if len(stmt.Specs) > 0 {
			specs := make([]string, len(stmt.Specs))
			for i, spec := range stmt.Specs {
				specs[i] = alias(spec.Imported.Name, spec.Local.Name)
			}
			clauses = append(clauses, "{ "+strings.Join(specs, ", ")+" }")
		}
		if len(clauses) > 0 {
			p.str(strings.Join(clauses, ", "))
			p.str(" from ")
		}
		p.str(Quote(stmt.Module.Value.(string)))
		p.str(";")

	case *ExportDecl:
		p.str("export ")
		p.stmtText(stmt.Decl)

	case *ExportDefault:
		p.str("export default ")
		if stmt.Decl != nil {
			p.stmtText(stmt.Decl)
		} else {
			p.expr(stmt.X)
			p.str(";")
		}

	case *ExportNamed:
		p.str("export {")
		if len(stmt.Specs) > 0 {
			specs := make([]string, len(stmt.Specs))
			for i, spec := range stmt.Specs {
				specs[i] = alias(spec.Local.Name, spec.Exported.Name)
			}
			p.str(" " + strings.Join(specs, ", ") + " ")
		}
		p.str("}")
		if stmt.Module != nil {
			p.str(" from ")
			p.str(Quote(stmt.Module.Value.(string)))
		}
		p.str(";")

	case *ExportAll:
		p.str("export * ")
		if stmt.Alias != nil {
			p.printf("as %s ", stmt.Alias.Name)
		}
		p.str("from ")
		p.str(Quote(stmt.Module.Value.(string)))
		p.str(";")

	default:
		panic(fmt.Sprintf("syntax.Format: unexpected %T", stmt))
	}
}

// alias formats "x" or "x as y".
func alias(x, y string) string {
	if x == y {
		return x
	}
	return x + " as " + y
}

func (p *printer) varDecl(decl *VarDecl) {
	p.str(decl.Tok.String())
	for i, spec := range decl.List {
		if i > 0 {
			p.str(",")
		}
		p.str(" ")
		p.str(spec.Name.Name)
		if spec.Init != nil {
			p.str(" = ")
			p.expr(spec.Init)
		}
	}
}

func (p *printer) block(block *BlockStmt) {
	if len(block.Stmts) == 0 {
		p.str("{}")
		return
	}
	p.str("{\n")
	p.indent++
	for _, stmt := range block.Stmts {
		p.stmt(stmt)
	}
	p.indent--
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
	p.str("}")
}

// function prints the parameter list and body of fn.
func (p *printer) function(fn *Function) {
	p.params(fn)
	p.str(" ")
	p.block(fn.Body)
}

func (p *printer) params(fn *Function) {
	p.str("(")
	for i, param := range fn.Params {
		if i > 0 {
			p.str(", ")
		}
		if param.Rest {
			p.str("...")
		}
		p.str(param.Name.Name)
		if param.Default != nil {
			p.str(" = ")
			p.expr(param.Default)
		}
	}
	p.str(")")
}

func (p *printer) class(name *Ident, class *Class) {
	p.str("class ")
	if name != nil {
		p.str(name.Name)
		p.str(" ")
	}
	if class.Extends != nil {
		p.str("extends ")
		p.expr(class.Extends)
		p.str(" ")
	}
	if len(class.Methods) == 0 {
		p.str("{}")
		return
	}
	p.str("{")
	p.indent++
	for _, m := range class.Methods {
		p.newline()
		if m.Static {
			p.str("static ")
		}
		p.str(m.Name.Name)
		p.function(m.Func)
	}
	p.indent--
	p.newline()
	p.str("}")
}

func (p *printer) exprList(list []Expr) {
	for i, x := range list {
		if i > 0 {
			p.str(", ")
		}
		p.expr(x)
	}
}

func (p *printer) expr(x Expr) {
	switch x := x.(type) {
	case *Ident:
		p.str(x.Name)

	case *Literal:
		p.str(literalText(x))

	case *ThisExpr:
		p.str("this")

	case *ParenExpr:
		p.str("(")
		p.expr(x.X)
		p.str(")")

	case *ArrayExpr:
		p.str("[")
		p.exprList(x.List)
		p.str("]")

	case *ObjectExpr:
		if len(x.Props) == 0 {
			p.str("{}")
			break
		}
		p.str("{")
		p.indent++
		for i, prop := range x.Props {
			p.newline()
			p.property(prop)
			if i < len(x.Props)-1 {
				p.str(",")
			}
		}
		p.indent--
		p.newline()
		p.str("}")

	case *SpreadExpr:
		p.str("...")
		p.expr(x.X)

	case *FuncExpr:
		p.str("function ")
		if x.Name != nil {
			p.str(x.Name.Name)
		}
		p.function(&x.Function)

	case *ArrowFunc:
		p.arrowParams(&x.Function)
		if x.Body != nil {
			p.block(x.Body)
			break
		}
		if _, ok := x.Expr.(*ObjectExpr); ok {
			p.str("(")
			p.expr(x.Expr)
			p.str(")")
		} else {
			p.expr(x.Expr)
		}

	case *ClassExpr:
		p.class(x.Name, &x.Class)

	case *CallExpr:
		p.expr(x.Fn)
		p.str("(")
		p.exprList(x.Args)
		p.str(")")

	case *NewExpr:
		p.str("new ")
		p.expr(x.Fn)
		p.str("(")
		p.exprList(x.Args)
		p.str(")")

	case *ImportCall:
		p.str("import(")
		p.expr(x.Arg)
		p.str(")")

	case *DotExpr:
		p.expr(x.X)
		p.str(".")
		p.str(x.Name.Name)

	case *IndexExpr:
		p.expr(x.X)
		p.str("[")
		p.expr(x.Y)
		p.str("]")

	case *UnaryExpr:
		if x.Postfix {
			p.expr(x.X)
			p.str(x.Op.String())
			break
		}
		p.str(x.Op.String())
		switch x.Op {
		case TYPEOF, VOID, DELETE:
			p.str(" ")
		default:
			if y, ok := x.X.(*UnaryExpr); ok && !y.Postfix && y.Op.String()[0] == x.Op.String()[0] {
				p.str(" ") // - -x, + ++x
			}
		}
		p.expr(x.X)

	case *BinaryExpr:
		p.expr(x.X)
		p.printf(" %s ", x.Op)
		p.expr(x.Y)

	case *AssignExpr:
		p.expr(x.LHS)
		p.printf(" %s ", x.Op)
		p.expr(x.RHS)

	case *CondExpr:
		p.expr(x.Cond)
		p.str(" ? ")
		p.expr(x.True)
		p.str(" : ")
		p.expr(x.False)

	default:
		panic(fmt.Sprintf("syntax.Format: unexpected %T", x))
	}
}

// arrowParams prints "(params) => ".
func (p *printer) arrowParams(fn *Function) {
	p.params(fn)
	p.str(" => ")
}

func (p *printer) property(prop *Property) {
	if prop.Key == nil {
		p.expr(prop.Value)
		return
	}
	var key string
	switch k := prop.Key.(type) {
	case *Ident:
		key = k.Name
	case *Literal:
		key = literalText(k)
	}
	switch {
	case prop.Method:
		p.str(key)
		p.function(&prop.Value.(*FuncExpr).Function)
	case prop.Shorthand && isIdentNamed(prop.Value, key):
		p.str(key)
	default:
		p.str(key)
		p.str(": ")
		p.expr(prop.Value)
	}
}

func isIdentNamed(x Expr, name string) bool {
	id, ok := x.(*Ident)
	return ok && id.Name == name
}

func literalText(lit *Literal) string {
	switch lit.Token {
	case STRING:
		return Quote(lit.Value.(string))
	case NUMBER:
		if lit.Raw != "" {
			return lit.Raw
		}
		f := lit.Value.(float64)
		if f == math.Trunc(f) && math.Abs(f) < 1e21 {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case TRUE:
		return "true"
	case FALSE:
		return "false"
	case NULL:
		return "null"
	}
	panic(fmt.Sprintf("syntax.Format: unexpected literal %s", lit.Token))
}
