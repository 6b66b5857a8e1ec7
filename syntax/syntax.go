// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides a parser, printer and abstract syntax tree
// for the ECMAScript module language accepted by the bundler.
//
// The accepted language is a subset: it covers every form of import
// and export declaration, variable, function and class declarations,
// structured control flow, and the common expression forms, but not
// destructuring, generators, async functions, template or regular
// expression literals.
package syntax

// A Node is a node in a syntax tree.
type Node interface {
	// Span returns the start and end position of the node.
	Span() (start, end Position)
}

// Start returns the start position of the node.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the node.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents a module.
type File struct {
	Path  string
	Stmts []Stmt

	// set by resolver:
	Bindings    []*Binding // module-scope bindings, including imports, in declaration order
	Exports     []*Export  // named exports in source order
	StarExports []string   // module specifiers of 'export * from' declarations
	Globals     []*Binding // undeclared names, in order of first reference
}

func (x *File) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return start, end
}

// A Stmt is a statement.
type Stmt interface {
	Node
	stmt()
}

func (*BlockStmt) stmt()     {}
func (*BranchStmt) stmt()    {}
func (*ClassDecl) stmt()     {}
func (*ExportAll) stmt()     {}
func (*ExportDecl) stmt()    {}
func (*ExportDefault) stmt() {}
func (*ExportNamed) stmt()   {}
func (*ExprStmt) stmt()      {}
func (*ForInStmt) stmt()     {}
func (*ForStmt) stmt()       {}
func (*FuncDecl) stmt()      {}
func (*IfStmt) stmt()        {}
func (*ImportDecl) stmt()    {}
func (*ReturnStmt) stmt()    {}
func (*ThrowStmt) stmt()     {}
func (*TryStmt) stmt()       {}
func (*VarDecl) stmt()       {}
func (*WhileStmt) stmt()     {}

// An ImportDecl represents an import declaration:
//
//	import "m"
//	import d from "m"
//	import * as ns from "m"
//	import d, { a, b as c } from "m"
type ImportDecl struct {
	Import    Position
	Default   *Ident        // may be nil
	Namespace *Ident        // may be nil
	Specs     []*ImportSpec // named imports
	Module    *Literal      // a string
}

func (x *ImportDecl) Span() (start, end Position) {
	return x.Import, End(x.Module)
}

// An ImportSpec is one element of the braced list of an import:
// Imported as Local. Imported is a label, not a reference.
type ImportSpec struct {
	Imported *Ident
	Local    *Ident
}

func (x *ImportSpec) Span() (start, end Position) {
	return Start(x.Imported), End(x.Local)
}

// An ExportDecl exports a declaration: export var x = 1, export function f() {}.
type ExportDecl struct {
	Export Position
	Decl   Stmt // = *VarDecl | *FuncDecl | *ClassDecl
}

func (x *ExportDecl) Span() (start, end Position) {
	return x.Export, End(x.Decl)
}

// An ExportDefault represents 'export default' followed by either a
// function or class declaration (whose name may be omitted) or an
// expression.
type ExportDefault struct {
	Export Position
	Decl   Stmt // = *FuncDecl | *ClassDecl, or nil
	X      Expr // non-nil iff Decl is nil

	// set by resolver:
	Binding *Binding // the binding holding the default value
}

func (x *ExportDefault) Span() (start, end Position) {
	if x.Decl != nil {
		return x.Export, End(x.Decl)
	}
	return x.Export, End(x.X)
}

// An ExportNamed represents a braced export list, optionally
// re-exported from another module:
//
//	export { a, b as c }
//	export { default as d } from "m"
type ExportNamed struct {
	Export Position
	Specs  []*ExportSpec
	Rbrace Position
	Module *Literal // may be nil
}

func (x *ExportNamed) Span() (start, end Position) {
	if x.Module != nil {
		return x.Export, End(x.Module)
	}
	return x.Export, x.Rbrace.add("}")
}

// An ExportSpec is one element of an export list: Local as Exported.
// Local is a reference unless the list has a Module.
type ExportSpec struct {
	Local    *Ident
	Exported *Ident // label
}

func (x *ExportSpec) Span() (start, end Position) {
	return Start(x.Local), End(x.Exported)
}

// An ExportAll represents 'export * from "m"' or 'export * as ns from "m"'.
type ExportAll struct {
	Export Position
	Alias  *Ident // label; may be nil
	Module *Literal
}

func (x *ExportAll) Span() (start, end Position) {
	return x.Export, End(x.Module)
}

// A VarDecl represents a variable declaration: var x = 1, y.
type VarDecl struct {
	TokPos Position
	Tok    Token // = VAR | LET | CONST
	List   []*VarSpec
}

func (x *VarDecl) Span() (start, end Position) {
	return x.TokPos, End(x.List[len(x.List)-1])
}

// A VarSpec is a single declarator of a VarDecl.
type VarSpec struct {
	Name *Ident
	Init Expr // may be nil
}

func (x *VarSpec) Span() (start, end Position) {
	if x.Init != nil {
		return Start(x.Name), End(x.Init)
	}
	return x.Name.Span()
}

// A Function represents the common parts of FuncDecl, FuncExpr,
// ArrowFunc and methods.
type Function struct {
	StartPos Position // position of FUNCTION keyword, method name, or first parameter
	Params   []*Param
	Body     *BlockStmt // nil for an arrow function with an expression body
	Expr     Expr       // arrow function expression body
}

func (x *Function) Span() (start, end Position) {
	if x.Body != nil {
		return x.StartPos, End(x.Body)
	}
	return x.StartPos, End(x.Expr)
}

// A Param is a function parameter: name, name = default, or ...name.
type Param struct {
	Rest    bool
	Name    *Ident
	Default Expr // may be nil
}

func (x *Param) Span() (start, end Position) {
	if x.Default != nil {
		return Start(x.Name), End(x.Default)
	}
	return x.Name.Span()
}

// A FuncDecl represents a function declaration.
// Name is nil only within 'export default function () {}'.
type FuncDecl struct {
	Name *Ident
	Function
}

// A Class represents the common parts of ClassDecl and ClassExpr.
type Class struct {
	ClassPos Position
	Extends  Expr // may be nil
	Methods  []*Method
	Rbrace   Position
}

func (x *Class) Span() (start, end Position) {
	return x.ClassPos, x.Rbrace.add("}")
}

// A Method is a class method: [static] Name(Params) { Body }.
type Method struct {
	Static bool
	Name   *Ident // label
	Func   *Function
}

func (x *Method) Span() (start, end Position) {
	_, end = x.Func.Span()
	return Start(x.Name), end
}

// A ClassDecl represents a class declaration.
// Name is nil only within 'export default class {}'.
type ClassDecl struct {
	Name *Ident
	Class
}

// A BlockStmt is a braced list of statements.
type BlockStmt struct {
	Lbrace Position
	Stmts  []Stmt
	Rbrace Position
}

func (x *BlockStmt) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// An ExprStmt is an expression evaluated for side effects.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) Span() (start, end Position) {
	return x.X.Span()
}

// An IfStmt is a conditional: if (Cond) Then else Else.
// 'else if' is represented by an IfStmt in Else.
type IfStmt struct {
	If   Position
	Cond Expr
	Then *BlockStmt
	Else Stmt // = *BlockStmt | *IfStmt; may be nil
}

func (x *IfStmt) Span() (start, end Position) {
	if x.Else != nil {
		return x.If, End(x.Else)
	}
	return x.If, End(x.Then)
}

// A ForStmt represents a three-clause loop: for (Init; Cond; Post) Body.
type ForStmt struct {
	For  Position
	Init Stmt // = *VarDecl | *ExprStmt; may be nil
	Cond Expr // may be nil
	Post Expr // may be nil
	Body *BlockStmt
}

func (x *ForStmt) Span() (start, end Position) {
	return x.For, End(x.Body)
}

// A ForInStmt represents 'for (Tok Name in X)' or 'for (Tok Name of X)'.
type ForInStmt struct {
	For  Position
	Tok  Token // = VAR | LET | CONST, or ILLEGAL if Name is an existing variable
	Name *Ident
	Of   bool
	X    Expr
	Body *BlockStmt
}

func (x *ForInStmt) Span() (start, end Position) {
	return x.For, End(x.Body)
}

// A WhileStmt represents a loop: while (Cond) Body.
type WhileStmt struct {
	While Position
	Cond  Expr
	Body  *BlockStmt
}

func (x *WhileStmt) Span() (start, end Position) {
	return x.While, End(x.Body)
}

// A BranchStmt changes the flow of control: break, continue.
type BranchStmt struct {
	Token    Token // = BREAK | CONTINUE
	TokenPos Position
}

func (x *BranchStmt) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Token.String())
}

// A ReturnStmt returns from a function.
type ReturnStmt struct {
	Return Position
	Result Expr // may be nil
}

func (x *ReturnStmt) Span() (start, end Position) {
	if x.Result == nil {
		return x.Return, x.Return.add("return")
	}
	return x.Return, End(x.Result)
}

// A ThrowStmt raises an exception.
type ThrowStmt struct {
	Throw Position
	X     Expr
}

func (x *ThrowStmt) Span() (start, end Position) {
	return x.Throw, End(x.X)
}

// A TryStmt represents try { Body } catch (Param) { Catch } finally { Finally }.
type TryStmt struct {
	Try     Position
	Body    *BlockStmt
	Param   *Ident     // may be nil
	Catch   *BlockStmt // may be nil
	Finally *BlockStmt // may be nil
}

func (x *TryStmt) Span() (start, end Position) {
	if x.Finally != nil {
		return x.Try, End(x.Finally)
	}
	return x.Try, End(x.Catch)
}

// An Expr is an expression.
type Expr interface {
	Node
	expr()
}

func (*ArrayExpr) expr()  {}
func (*ArrowFunc) expr()  {}
func (*AssignExpr) expr() {}
func (*BinaryExpr) expr() {}
func (*CallExpr) expr()   {}
func (*ClassExpr) expr()  {}
func (*CondExpr) expr()   {}
func (*DotExpr) expr()    {}
func (*FuncExpr) expr()   {}
func (*Ident) expr()      {}
func (*ImportCall) expr() {}
func (*IndexExpr) expr()  {}
func (*Literal) expr()    {}
func (*NewExpr) expr()    {}
func (*ObjectExpr) expr() {}
func (*ParenExpr) expr()  {}
func (*SpreadExpr) expr() {}
func (*ThisExpr) expr()   {}
func (*UnaryExpr) expr()  {}

// An Ident represents an identifier.
type Ident struct {
	NamePos Position
	Name    string

	Binding *Binding // set by resolver; nil for labels
}

func (x *Ident) Span() (start, end Position) {
	return x.NamePos, x.NamePos.add(x.Name)
}

// A Literal represents a string, number, boolean or null literal.
type Literal struct {
	Token    Token // = STRING | NUMBER | TRUE | FALSE | NULL
	TokenPos Position
	Raw      string      // uninterpreted text
	Value    interface{} // = string | float64 | bool | nil
}

func (x *Literal) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Raw)
}

// A ThisExpr represents the 'this' keyword.
type ThisExpr struct {
	This Position
}

func (x *ThisExpr) Span() (start, end Position) {
	return x.This, x.This.add("this")
}

// A ParenExpr represents a parenthesized expression: (X).
type ParenExpr struct {
	Lparen Position
	X      Expr
	Rparen Position
}

func (x *ParenExpr) Span() (start, end Position) {
	return x.Lparen, x.Rparen.add(")")
}

// An ArrayExpr represents an array literal: [ List ].
type ArrayExpr struct {
	Lbrack Position
	List   []Expr
	Rbrack Position
}

func (x *ArrayExpr) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// An ObjectExpr represents an object literal: { Props }.
type ObjectExpr struct {
	Lbrace Position
	Props  []*Property
	Rbrace Position
}

func (x *ObjectExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A Property is an entry of an object literal:
//
//	key: value
//	"key": value
//	key             (Shorthand; Value is an *Ident reference)
//	key() { ... }   (Method; Value is a *FuncExpr)
//	...value        (Key is nil; Value is a *SpreadExpr)
type Property struct {
	Key       Expr // = *Ident (label) | *Literal; nil for spread
	Value     Expr
	Shorthand bool
	Method    bool
}

func (x *Property) Span() (start, end Position) {
	if x.Key == nil {
		return x.Value.Span()
	}
	return Start(x.Key), End(x.Value)
}

// A SpreadExpr represents ...X in an array, object or argument list.
type SpreadExpr struct {
	Ellipsis Position
	X        Expr
}

func (x *SpreadExpr) Span() (start, end Position) {
	return x.Ellipsis, End(x.X)
}

// A FuncExpr represents a function expression.
type FuncExpr struct {
	Name *Ident // may be nil
	Function
}

// An ArrowFunc represents an arrow function: (Params) => Body.
type ArrowFunc struct {
	Function
}

// A ClassExpr represents a class expression.
type ClassExpr struct {
	Name *Ident // may be nil
	Class
}

// A CallExpr represents a function call expression: Fn(Args).
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr
	Rparen Position
}

func (x *CallExpr) Span() (start, end Position) {
	return Start(x.Fn), x.Rparen.add(")")
}

// A NewExpr represents a constructor call: new Fn(Args).
type NewExpr struct {
	New    Position
	Fn     Expr
	Args   []Expr
	Rparen Position // invalid if the argument list was omitted
}

func (x *NewExpr) Span() (start, end Position) {
	if !x.Rparen.IsValid() {
		return x.New, End(x.Fn)
	}
	return x.New, x.Rparen.add(")")
}

// An ImportCall represents a dynamic import: import(Arg).
type ImportCall struct {
	Import Position
	Arg    Expr
	Rparen Position
}

func (x *ImportCall) Span() (start, end Position) {
	return x.Import, x.Rparen.add(")")
}

// Specifier returns the module specifier of a dynamic import whose
// argument is a string literal.
func (x *ImportCall) Specifier() (string, bool) {
	if lit, ok := x.Arg.(*Literal); ok && lit.Token == STRING {
		return lit.Value.(string), true
	}
	return "", false
}

// A DotExpr represents a property selector: X.Name.
type DotExpr struct {
	X    Expr
	Dot  Position
	Name *Ident // label
}

func (x *DotExpr) Span() (start, end Position) {
	return Start(x.X), End(x.Name)
}

// An IndexExpr represents a computed property access: X[Y].
type IndexExpr struct {
	X      Expr
	Lbrack Position
	Y      Expr
	Rbrack Position
}

func (x *IndexExpr) Span() (start, end Position) {
	return Start(x.X), x.Rbrack.add("]")
}

// A UnaryExpr represents a prefix or postfix unary expression: Op X or X Op.
type UnaryExpr struct {
	OpPos   Position
	Op      Token
	X       Expr
	Postfix bool // X++ or X--
}

func (x *UnaryExpr) Span() (start, end Position) {
	if x.Postfix {
		return Start(x.X), x.OpPos.add(x.Op.String())
	}
	return x.OpPos, End(x.X)
}

// A BinaryExpr represents a binary expression: X Op Y.
type BinaryExpr struct {
	X     Expr
	OpPos Position
	Op    Token
	Y     Expr
}

func (x *BinaryExpr) Span() (start, end Position) {
	return Start(x.X), End(x.Y)
}

// An AssignExpr represents an assignment: LHS Op RHS.
type AssignExpr struct {
	LHS   Expr
	OpPos Position
	Op    Token // = EQ | {PLUS,MINUS,STAR,SLASH,PERCENT}_EQ
	RHS   Expr
}

func (x *AssignExpr) Span() (start, end Position) {
	return Start(x.LHS), End(x.RHS)
}

// A CondExpr represents the conditional: Cond ? True : False.
type CondExpr struct {
	Cond  Expr
	True  Expr
	False Expr
}

func (x *CondExpr) Span() (start, end Position) {
	return Start(x.Cond), End(x.False)
}
