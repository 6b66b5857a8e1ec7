// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines a recursive-descent parser for the module language.
// The scanner produces the whole token sequence up front so that the
// parser can look ahead arbitrarily far, which it needs to tell an
// arrow function's parameter list from a parenthesized expression.

// Parse parses the input data and returns the corresponding parse tree.
//
// If src != nil, Parse parses the source from src and the filename
// is only used when recording position information.
// The type of the argument for the src parameter must be string,
// []byte, or io.Reader.
// If src == nil, Parse parses the file specified by filename.
func Parse(filename string, src interface{}) (f *File, err error) {
	p, err := newParser(filename, src)
	if err != nil {
		return nil, err
	}
	defer p.sc.recover(&err)
	p.scan()
	f = p.parseFile()
	f.Path = filename
	return f, nil
}

// ParseExpr parses a single expression.
func ParseExpr(filename string, src interface{}) (expr Expr, err error) {
	p, err := newParser(filename, src)
	if err != nil {
		return nil, err
	}
	defer p.sc.recover(&err)
	p.scan()
	expr = p.parseExpr()
	if p.tok == SEMI {
		p.nextToken()
	}
	if p.tok != EOF {
		p.errorf(p.val.pos, "got %#v after expression, want EOF", p.tok)
	}
	return expr, nil
}

type item struct {
	tok Token
	val tokenValue
}

type parser struct {
	sc    *scanner
	items []item
	i     int

	tok Token
	val *tokenValue
}

func newParser(filename string, src interface{}) (*parser, error) {
	sc, err := newScanner(filename, src)
	if err != nil {
		return nil, err
	}
	return &parser{sc: sc}, nil
}

// scan reads the whole token sequence.
func (p *parser) scan() {
	for {
		var it item
		it.tok = p.sc.nextToken(&it.val)
		p.items = append(p.items, it)
		if it.tok == EOF {
			break
		}
	}
	p.i = -1
	p.nextToken()
}

// nextToken advances the scanner and returns the position of the
// previous token.
func (p *parser) nextToken() Position {
	var oldpos Position
	if p.i >= 0 {
		oldpos = p.val.pos
	}
	if p.i < len(p.items)-1 {
		p.i++
	}
	p.tok = p.items[p.i].tok
	p.val = &p.items[p.i].val
	return oldpos
}

// peek returns the kind of the token n positions ahead.
func (p *parser) peek(n int) Token {
	if j := p.i + n; j < len(p.items) {
		return p.items[j].tok
	}
	return EOF
}

func (p *parser) peekRaw(n int) string {
	if j := p.i + n; j < len(p.items) {
		return p.items[j].val.raw
	}
	return ""
}

func (p *parser) errorf(pos Position, format string, args ...interface{}) {
	p.sc.errorf(pos, format, args...)
}

// consume consumes a token of the specified kind and returns its position.
func (p *parser) consume(t Token) Position {
	if p.tok != t {
		p.errorf(p.val.pos, "got %#v, want %#v", p.tok, t)
	}
	return p.nextToken()
}

// isContextual reports whether the current token is the
// contextual keyword name, such as "from" or "as".
func (p *parser) isContextual(name string) bool {
	return p.tok == IDENT && p.val.raw == name
}

func (p *parser) consumeContextual(name string) {
	if !p.isContextual(name) {
		p.errorf(p.val.pos, "got %#v, want %s", p.tok, name)
	}
	p.nextToken()
}

// consumeSemi consumes the semicolon ending a statement, or accepts
// its automatic insertion before a line break, a '}', or end of file.
func (p *parser) consumeSemi() {
	switch {
	case p.tok == SEMI:
		p.nextToken()
	case p.tok == RBRACE, p.tok == EOF, p.val.newline:
		// inserted
	default:
		p.errorf(p.val.pos, "got %#v, want ';' or newline", p.tok)
	}
}

// file = {stmt} EOF
func (p *parser) parseFile() *File {
	var stmts []Stmt
	for p.tok != EOF {
		if p.tok == SEMI {
			p.nextToken()
			continue
		}
		stmts = append(stmts, p.parseStmt(true))
	}
	return &File{Stmts: stmts}
}

func (p *parser) parseStmt(toplevel bool) Stmt {
	switch p.tok {
	case IMPORT:
		if t := p.peek(1); t == LPAREN || t == DOT {
			break // import(...) expression
		}
		if !toplevel {
			p.errorf(p.val.pos, "import declaration not at top level")
		}
		return p.parseImportDecl()
	case EXPORT:
		if !toplevel {
			p.errorf(p.val.pos, "export declaration not at top level")
		}
		return p.parseExportDecl()
	case VAR, LET, CONST:
		decl := p.parseVarDecl(true)
		p.consumeSemi()
		return decl
	case FUNCTION:
		return p.parseFuncDecl(false)
	case CLASS:
		return p.parseClassDecl(false)
	case LBRACE:
		return p.parseBlock()
	case IF:
		return p.parseIfStmt()
	case FOR:
		return p.parseForStmt()
	case WHILE:
		pos := p.nextToken()
		p.consume(LPAREN)
		cond := p.parseExpr()
		p.consume(RPAREN)
		return &WhileStmt{While: pos, Cond: cond, Body: p.parseBody()}
	case RETURN:
		pos := p.nextToken()
		var result Expr
		if p.tok != SEMI && p.tok != RBRACE && p.tok != EOF && !p.val.newline {
			result = p.parseExpr()
		}
		p.consumeSemi()
		return &ReturnStmt{Return: pos, Result: result}
	case THROW:
		pos := p.nextToken()
		if p.val.newline {
			p.errorf(p.val.pos, "illegal newline after throw")
		}
		x := p.parseExpr()
		p.consumeSemi()
		return &ThrowStmt{Throw: pos, X: x}
	case BREAK, CONTINUE:
		tok := p.tok
		pos := p.nextToken()
		p.consumeSemi()
		return &BranchStmt{Token: tok, TokenPos: pos}
	case TRY:
		return p.parseTryStmt()
	}
	x := p.parseExpr()
	p.consumeSemi()
	return &ExprStmt{X: x}
}

// import_decl = 'import' STRING
//             | 'import' [IDENT ','] ('*' 'as' IDENT | '{' specs '}') 'from' STRING
//             | 'import' IDENT 'from' STRING
func (p *parser) parseImportDecl() *ImportDecl {
	decl := &ImportDecl{Import: p.nextToken()}
	if p.tok == STRING {
		decl.Module = p.parseString()
		p.consumeSemi()
		return decl
	}
	if p.tok == IDENT && !p.isContextual("from") || p.isContextual("from") && p.peek(1) != STRING {
		decl.Default = p.parseIdent()
		if p.tok == COMMA {
			p.nextToken()
			if p.tok != STAR && p.tok != LBRACE {
				p.errorf(p.val.pos, "got %#v, want '*' or '{'", p.tok)
			}
		}
	}
	switch p.tok {
	case STAR:
		p.nextToken()
		p.consumeContextual("as")
		decl.Namespace = p.parseIdent()
	case LBRACE:
		p.nextToken()
		for p.tok != RBRACE {
			imported := p.parseIdentName()
			var local *Ident
			if p.isContextual("as") {
				p.nextToken()
				local = p.parseIdent()
			} else {
				if IsKeyword(imported.Name) {
					p.errorf(imported.NamePos, "keyword %s must be renamed in import", imported.Name)
				}
				local = &Ident{NamePos: imported.NamePos, Name: imported.Name}
			}
			decl.Specs = append(decl.Specs, &ImportSpec{Imported: imported, Local: local})
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		p.consume(RBRACE)
	}
	p.consumeContextual("from")
	decl.Module = p.parseString()
	p.consumeSemi()
	return decl
}

func (p *parser) parseExportDecl() Stmt {
	pos := p.nextToken()
	switch p.tok {
	case DEFAULT:
		p.nextToken()
		switch p.tok {
		case FUNCTION:
			return &ExportDefault{Export: pos, Decl: p.parseFuncDecl(true)}
		case CLASS:
			return &ExportDefault{Export: pos, Decl: p.parseClassDecl(true)}
		}
		x := p.parseAssignExpr()
		p.consumeSemi()
		return &ExportDefault{Export: pos, X: x}

	case STAR:
		p.nextToken()
		decl := &ExportAll{Export: pos}
		if p.isContextual("as") {
			p.nextToken()
			decl.Alias = p.parseIdentName()
		}
		p.consumeContextual("from")
		decl.Module = p.parseString()
		p.consumeSemi()
		return decl

	case LBRACE:
		p.nextToken()
		decl := &ExportNamed{Export: pos}
		for p.tok != RBRACE {
			local := p.parseIdentName()
			exported := &Ident{NamePos: local.NamePos, Name: local.Name}
			if p.isContextual("as") {
				p.nextToken()
				exported = p.parseIdentName()
			}
			decl.Specs = append(decl.Specs, &ExportSpec{Local: local, Exported: exported})
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		decl.Rbrace = p.consume(RBRACE)
		if p.isContextual("from") {
			p.nextToken()
			decl.Module = p.parseString()
		} else {
			for _, spec := range decl.Specs {
				if IsKeyword(spec.Local.Name) {
					p.errorf(spec.Local.NamePos, "cannot export keyword %s", spec.Local.Name)
				}
			}
		}
		p.consumeSemi()
		return decl

	case VAR, LET, CONST:
		decl := p.parseVarDecl(true)
		p.consumeSemi()
		return &ExportDecl{Export: pos, Decl: decl}
	case FUNCTION:
		return &ExportDecl{Export: pos, Decl: p.parseFuncDecl(false)}
	case CLASS:
		return &ExportDecl{Export: pos, Decl: p.parseClassDecl(false)}
	}
	p.errorf(p.val.pos, "got %#v after export, want declaration", p.tok)
	panic("unreachable")
}

// parseVarDecl parses a var, let or const declaration
// not including the final semicolon.
func (p *parser) parseVarDecl(needInit bool) *VarDecl {
	decl := &VarDecl{TokPos: p.val.pos, Tok: p.tok}
	p.nextToken()
	for {
		spec := &VarSpec{Name: p.parseIdent()}
		if p.tok == EQ {
			p.nextToken()
			spec.Init = p.parseAssignExpr()
		} else if needInit && decl.Tok == CONST {
			p.errorf(spec.Name.NamePos, "missing initializer in const declaration")
		}
		decl.List = append(decl.List, spec)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	return decl
}

// parseFuncDecl parses a function declaration.
// The name may be omitted if anonOK.
func (p *parser) parseFuncDecl(anonOK bool) *FuncDecl {
	pos := p.nextToken()
	decl := &FuncDecl{}
	if p.tok == IDENT || !anonOK {
		decl.Name = p.parseIdent()
	}
	decl.Function = *p.parseFunction(pos)
	return decl
}

// parseFunction parses a parameter list and body.
func (p *parser) parseFunction(pos Position) *Function {
	fn := &Function{StartPos: pos}
	fn.Params = p.parseParams()
	fn.Body = p.parseBlock()
	return fn
}

// params = '(' [param {',' param} [',']] ')'
// param  = IDENT ['=' expr] | '...' IDENT
func (p *parser) parseParams() []*Param {
	p.consume(LPAREN)
	var params []*Param
	for p.tok != RPAREN {
		param := new(Param)
		if p.tok == ELLIPSIS {
			p.nextToken()
			param.Rest = true
		}
		param.Name = p.parseIdent()
		if !param.Rest && p.tok == EQ {
			p.nextToken()
			param.Default = p.parseAssignExpr()
		}
		params = append(params, param)
		if param.Rest || p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	p.consume(RPAREN)
	return params
}

func (p *parser) parseClassDecl(anonOK bool) *ClassDecl {
	pos := p.val.pos
	p.nextToken()
	decl := &ClassDecl{}
	if p.tok == IDENT || !anonOK {
		decl.Name = p.parseIdent()
	}
	decl.Class = *p.parseClass(pos)
	return decl
}

// parseClass parses the optional heritage and body of a class.
func (p *parser) parseClass(pos Position) *Class {
	class := &Class{ClassPos: pos}
	if p.tok == EXTENDS {
		p.nextToken()
		class.Extends = p.parseCallExpr()
	}
	p.consume(LBRACE)
	for p.tok != RBRACE {
		if p.tok == SEMI {
			p.nextToken()
			continue
		}
		m := new(Method)
		if p.isContextual("static") && p.peek(1) != LPAREN {
			p.nextToken()
			m.Static = true
		}
		m.Name = p.parseIdentName()
		m.Func = p.parseFunction(m.Name.NamePos)
		class.Methods = append(class.Methods, m)
	}
	class.Rbrace = p.consume(RBRACE)
	return class
}

func (p *parser) parseBlock() *BlockStmt {
	block := &BlockStmt{Lbrace: p.consume(LBRACE)}
	for p.tok != RBRACE {
		if p.tok == EOF {
			p.errorf(p.val.pos, "unexpected end of file, want '}'")
		}
		if p.tok == SEMI {
			p.nextToken()
			continue
		}
		block.Stmts = append(block.Stmts, p.parseStmt(false))
	}
	block.Rbrace = p.nextToken()
	return block
}

// parseBody parses the body of a compound statement.
// A body that is a single statement is wrapped in a block.
func (p *parser) parseBody() *BlockStmt {
	if p.tok == LBRACE {
		return p.parseBlock()
	}
	stmt := p.parseStmt(false)
	start, end := stmt.Span()
	return &BlockStmt{Lbrace: start, Stmts: []Stmt{stmt}, Rbrace: end}
}

func (p *parser) parseIfStmt() *IfStmt {
	stmt := &IfStmt{If: p.nextToken()}
	p.consume(LPAREN)
	stmt.Cond = p.parseExpr()
	p.consume(RPAREN)
	stmt.Then = p.parseBody()
	if p.tok == ELSE {
		p.nextToken()
		if p.tok == IF {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBody()
		}
	}
	return stmt
}

func (p *parser) parseForStmt() Stmt {
	pos := p.nextToken()
	p.consume(LPAREN)

	// for (Tok Name in/of X) or for (Name in/of X)
	isInOf := func(n int) bool {
		return p.peek(n) == IN || p.peek(n) == IDENT && p.peekRaw(n) == "of"
	}
	switch {
	case (p.tok == VAR || p.tok == LET || p.tok == CONST) && p.peek(1) == IDENT && isInOf(2):
		tok := p.tok
		p.nextToken()
		return p.parseForInRest(pos, tok)
	case p.tok == IDENT && isInOf(1):
		return p.parseForInRest(pos, ILLEGAL)
	}

	stmt := &ForStmt{For: pos}
	switch p.tok {
	case SEMI:
	case VAR, LET, CONST:
		stmt.Init = p.parseVarDecl(true)
	default:
		stmt.Init = &ExprStmt{X: p.parseExpr()}
	}
	p.consume(SEMI)
	if p.tok != SEMI {
		stmt.Cond = p.parseExpr()
	}
	p.consume(SEMI)
	if p.tok != RPAREN {
		stmt.Post = p.parseExpr()
	}
	p.consume(RPAREN)
	stmt.Body = p.parseBody()
	return stmt
}

func (p *parser) parseForInRest(pos Position, tok Token) *ForInStmt {
	stmt := &ForInStmt{For: pos, Tok: tok, Name: p.parseIdent()}
	stmt.Of = p.tok == IDENT
	p.nextToken()
	stmt.X = p.parseAssignExpr()
	p.consume(RPAREN)
	stmt.Body = p.parseBody()
	return stmt
}

func (p *parser) parseTryStmt() *TryStmt {
	stmt := &TryStmt{Try: p.nextToken()}
	stmt.Body = p.parseBlock()
	if p.tok == CATCH {
		p.nextToken()
		if p.tok == LPAREN {
			p.nextToken()
			stmt.Param = p.parseIdent()
			p.consume(RPAREN)
		}
		stmt.Catch = p.parseBlock()
	}
	if p.tok == FINALLY {
		p.nextToken()
		stmt.Finally = p.parseBlock()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.errorf(stmt.Try, "missing catch or finally after try")
	}
	return stmt
}

// parseIdent parses an identifier that is a binding or reference.
func (p *parser) parseIdent() *Ident {
	if p.tok != IDENT {
		p.errorf(p.val.pos, "got %#v, want identifier", p.tok)
	}
	id := &Ident{NamePos: p.val.pos, Name: p.val.raw}
	p.nextToken()
	return id
}

// parseIdentName parses an identifier used as a label,
// for which keywords are permitted.
func (p *parser) parseIdentName() *Ident {
	if p.tok != IDENT && p.tok < BREAK {
		p.errorf(p.val.pos, "got %#v, want name", p.tok)
	}
	id := &Ident{NamePos: p.val.pos, Name: p.val.raw}
	p.nextToken()
	return id
}

func (p *parser) parseString() *Literal {
	if p.tok != STRING {
		p.errorf(p.val.pos, "got %#v, want string literal", p.tok)
	}
	lit := &Literal{Token: STRING, TokenPos: p.val.pos, Raw: p.val.raw, Value: p.val.string}
	p.nextToken()
	return lit
}

func (p *parser) parseExpr() Expr {
	return p.parseAssignExpr()
}

var assignOps = map[Token]bool{
	EQ:         true,
	PLUS_EQ:    true,
	MINUS_EQ:   true,
	STAR_EQ:    true,
	SLASH_EQ:   true,
	PERCENT_EQ: true,
}

func (p *parser) parseAssignExpr() Expr {
	if p.tok == IDENT && p.peek(1) == ARROW || p.tok == LPAREN && p.isArrowParams() {
		return p.parseArrowFunc()
	}
	x := p.parseCondExpr()
	if assignOps[p.tok] {
		switch unparen(x).(type) {
		case *Ident, *DotExpr, *IndexExpr:
		default:
			p.errorf(Start(x), "invalid assignment target")
		}
		op := p.tok
		pos := p.nextToken()
		y := p.parseAssignExpr()
		return &AssignExpr{LHS: x, OpPos: pos, Op: op, RHS: y}
	}
	return x
}

func unparen(x Expr) Expr {
	for {
		paren, ok := x.(*ParenExpr)
		if !ok {
			return x
		}
		x = paren.X
	}
}

// isArrowParams reports whether the parenthesized list at the current
// token is followed by '=>'.
func (p *parser) isArrowParams() bool {
	depth := 0
	for j := p.i; j < len(p.items); j++ {
		switch p.items[j].tok {
		case LPAREN, LBRACK, LBRACE:
			depth++
		case RPAREN, RBRACK, RBRACE:
			depth--
			if depth == 0 {
				return j+1 < len(p.items) && p.items[j+1].tok == ARROW
			}
		case EOF:
			return false
		}
	}
	return false
}

func (p *parser) parseArrowFunc() *ArrowFunc {
	fn := &ArrowFunc{}
	fn.StartPos = p.val.pos
	if p.tok == IDENT {
		fn.Params = []*Param{{Name: p.parseIdent()}}
	} else {
		fn.Params = p.parseParams()
	}
	if p.val.newline {
		p.errorf(p.val.pos, "illegal newline before '=>'")
	}
	p.consume(ARROW)
	if p.tok == LBRACE {
		fn.Body = p.parseBlock()
	} else {
		fn.Expr = p.parseAssignExpr()
	}
	return fn
}

func (p *parser) parseCondExpr() Expr {
	cond := p.parseBinaryExpr(1)
	if p.tok != QUESTION {
		return cond
	}
	p.nextToken()
	t := p.parseAssignExpr()
	p.consume(COLON)
	f := p.parseAssignExpr()
	return &CondExpr{Cond: cond, True: t, False: f}
}

// binary operator precedence; larger binds tighter.
var precedence [maxToken]int8

func init() {
	for i, tokens := range [...][]Token{
		{OROR, NULLISH},
		{ANDAND},
		{EQL, NEQ, STRICT_EQL, STRICT_NEQ},
		{LT, GT, LE, GE, INSTANCEOF, IN},
		{PLUS, MINUS},
		{STAR, SLASH, PERCENT},
	} {
		for _, tok := range tokens {
			precedence[tok] = int8(i + 1)
		}
	}
}

// parseBinaryExpr parses a left-associative sequence of binary
// operators whose precedence is at least prec.
func (p *parser) parseBinaryExpr(prec int8) Expr {
	x := p.parseUnaryExpr()
	for {
		opprec := precedence[p.tok]
		if opprec < prec || opprec == 0 {
			return x
		}
		op := p.tok
		pos := p.nextToken()
		y := p.parseBinaryExpr(opprec + 1)
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
}

func (p *parser) parseUnaryExpr() Expr {
	switch p.tok {
	case NOT, MINUS, PLUS, TYPEOF, VOID, DELETE, INC, DEC:
		op := p.tok
		pos := p.nextToken()
		x := p.parseUnaryExpr()
		return &UnaryExpr{OpPos: pos, Op: op, X: x}
	}
	x := p.parseCallExpr()
	if (p.tok == INC || p.tok == DEC) && !p.val.newline {
		op := p.tok
		pos := p.nextToken()
		return &UnaryExpr{OpPos: pos, Op: op, X: x, Postfix: true}
	}
	return x
}

// parseCallExpr parses a primary expression followed by any number
// of selectors, index operations and calls.
func (p *parser) parseCallExpr() Expr {
	var x Expr
	if p.tok == NEW {
		x = p.parseNewExpr()
	} else {
		x = p.parsePrimary()
	}
	for {
		switch p.tok {
		case DOT:
			dot := p.nextToken()
			x = &DotExpr{X: x, Dot: dot, Name: p.parseIdentName()}
		case LBRACK:
			lbrack := p.nextToken()
			y := p.parseExpr()
			rbrack := p.consume(RBRACK)
			x = &IndexExpr{X: x, Lbrack: lbrack, Y: y, Rbrack: rbrack}
		case LPAREN:
			lparen := p.val.pos
			args, rparen := p.parseArgs()
			x = &CallExpr{Fn: x, Lparen: lparen, Args: args, Rparen: rparen}
		default:
			return x
		}
	}
}

// new_expr = 'new' (new_expr | primary {selector}) [args]
func (p *parser) parseNewExpr() Expr {
	x := &NewExpr{New: p.nextToken()}
	if p.tok == NEW {
		x.Fn = p.parseNewExpr()
	} else {
		x.Fn = p.parsePrimary()
	}
	for {
		switch p.tok {
		case DOT:
			dot := p.nextToken()
			x.Fn = &DotExpr{X: x.Fn, Dot: dot, Name: p.parseIdentName()}
			continue
		case LBRACK:
			lbrack := p.nextToken()
			y := p.parseExpr()
			rbrack := p.consume(RBRACK)
			x.Fn = &IndexExpr{X: x.Fn, Lbrack: lbrack, Y: y, Rbrack: rbrack}
			continue
		case LPAREN:
			x.Args, x.Rparen = p.parseArgs()
		}
		return x
	}
}

// args = '(' [arg {',' arg} [',']] ')'
func (p *parser) parseArgs() (args []Expr, rparen Position) {
	p.consume(LPAREN)
	for p.tok != RPAREN {
		args = append(args, p.parseElement())
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	rparen = p.consume(RPAREN)
	return args, rparen
}

// parseElement parses an expression that may be spread.
func (p *parser) parseElement() Expr {
	if p.tok == ELLIPSIS {
		pos := p.nextToken()
		return &SpreadExpr{Ellipsis: pos, X: p.parseAssignExpr()}
	}
	return p.parseAssignExpr()
}

func (p *parser) parsePrimary() Expr {
	switch p.tok {
	case IDENT:
		return p.parseIdent()

	case NUMBER:
		lit := &Literal{Token: NUMBER, TokenPos: p.val.pos, Raw: p.val.raw, Value: p.val.number}
		p.nextToken()
		return lit

	case STRING:
		return p.parseString()

	case TRUE, FALSE:
		lit := &Literal{Token: p.tok, TokenPos: p.val.pos, Raw: p.val.raw, Value: p.tok == TRUE}
		p.nextToken()
		return lit

	case NULL:
		lit := &Literal{Token: NULL, TokenPos: p.val.pos, Raw: p.val.raw}
		p.nextToken()
		return lit

	case THIS:
		return &ThisExpr{This: p.nextToken()}

	case LPAREN:
		lparen := p.nextToken()
		x := p.parseExpr()
		rparen := p.consume(RPAREN)
		return &ParenExpr{Lparen: lparen, X: x, Rparen: rparen}

	case LBRACK:
		x := &ArrayExpr{Lbrack: p.nextToken()}
		for p.tok != RBRACK {
			x.List = append(x.List, p.parseElement())
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		x.Rbrack = p.consume(RBRACK)
		return x

	case LBRACE:
		return p.parseObject()

	case FUNCTION:
		pos := p.nextToken()
		x := &FuncExpr{}
		if p.tok == IDENT {
			x.Name = p.parseIdent()
		}
		x.Function = *p.parseFunction(pos)
		return x

	case CLASS:
		pos := p.nextToken()
		x := &ClassExpr{}
		if p.tok == IDENT {
			x.Name = p.parseIdent()
		}
		x.Class = *p.parseClass(pos)
		return x

	case IMPORT:
		x := &ImportCall{Import: p.nextToken()}
		p.consume(LPAREN)
		x.Arg = p.parseAssignExpr()
		x.Rparen = p.consume(RPAREN)
		return x
	}
	p.errorf(p.val.pos, "got %#v, want primary expression", p.tok)
	panic("unreachable")
}

func (p *parser) parseObject() *ObjectExpr {
	x := &ObjectExpr{Lbrace: p.nextToken()}
	for p.tok != RBRACE {
		prop := new(Property)
		switch p.tok {
		case ELLIPSIS:
			pos := p.nextToken()
			prop.Value = &SpreadExpr{Ellipsis: pos, X: p.parseAssignExpr()}
		case STRING:
			prop.Key = p.parseString()
		case NUMBER:
			prop.Key = &Literal{Token: NUMBER, TokenPos: p.val.pos, Raw: p.val.raw, Value: p.val.number}
			p.nextToken()
		default:
			prop.Key = p.parseIdentName()
		}
		if prop.Key != nil {
			switch p.tok {
			case COLON:
				p.nextToken()
				prop.Value = p.parseAssignExpr()
			case LPAREN:
				prop.Method = true
				prop.Value = &FuncExpr{Function: *p.parseFunction(Start(prop.Key))}
			default:
				key, ok := prop.Key.(*Ident)
				if !ok || IsKeyword(key.Name) {
					p.errorf(p.val.pos, "got %#v, want ':'", p.tok)
				}
				prop.Shorthand = true
				prop.Value = &Ident{NamePos: key.NamePos, Name: key.Name}
			}
		}
		x.Props = append(x.Props, prop)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	x.Rbrace = p.consume(RBRACE)
	return x
}
