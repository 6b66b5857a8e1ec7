package syntax

// Clone returns a deep copy of the syntax tree of f.
// Binding pointers are shared between the original and the copy,
// so a copy of a resolved file is itself resolved.
func Clone(f *File) *File {
	return &File{
		Path:        f.Path,
		Stmts:       cloneStmts(f.Stmts),
		Bindings:    f.Bindings,
		Exports:     f.Exports,
		StarExports: f.StarExports,
		Globals:     f.Globals,
	}
}

// CloneStmt returns a deep copy of a statement.
func CloneStmt(stmt Stmt) Stmt { return cloneStmt(stmt) }

// CloneExpr returns a deep copy of an expression.
func CloneExpr(x Expr) Expr { return cloneExpr(x) }

func cloneStmts(stmts []Stmt) []Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]Stmt, len(stmts))
	for i, stmt := range stmts {
		out[i] = cloneStmt(stmt)
	}
	return out
}

func cloneExprs(list []Expr) []Expr {
	if list == nil {
		return nil
	}
	out := make([]Expr, len(list))
	for i, x := range list {
		out[i] = cloneExpr(x)
	}
	return out
}

func cloneIdent(id *Ident) *Ident {
	if id == nil {
		return nil
	}
	copy := *id
	return &copy
}

func cloneLiteral(lit *Literal) *Literal {
	if lit == nil {
		return nil
	}
	copy := *lit
	return &copy
}

func cloneBlock(block *BlockStmt) *BlockStmt {
	if block == nil {
		return nil
	}
	return &BlockStmt{Lbrace: block.Lbrace, Stmts: cloneStmts(block.Stmts), Rbrace: block.Rbrace}
}

func cloneFunction(fn *Function) Function {
	params := make([]*Param, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = &Param{Rest: param.Rest, Name: cloneIdent(param.Name), Default: cloneExpr(param.Default)}
	}
	return Function{
		StartPos: fn.StartPos,
		Params:   params,
		Body:     cloneBlock(fn.Body),
		Expr:     cloneExpr(fn.Expr),
	}
}

func cloneClass(class *Class) Class {
	methods := make([]*Method, len(class.Methods))
	for i, m := range class.Methods {
		fn := cloneFunction(m.Func)
		methods[i] = &Method{Static: m.Static, Name: cloneIdent(m.Name), Func: &fn}
	}
	return Class{
		ClassPos: class.ClassPos,
		Extends:  cloneExpr(class.Extends),
		Methods:  methods,
		Rbrace:   class.Rbrace,
	}
}

func cloneStmt(stmt Stmt) Stmt {
	switch stmt := stmt.(type) {
	case nil:
		return nil
	case *ImportDecl:
		specs := make([]*ImportSpec, len(stmt.Specs))
		for i, spec := range stmt.Specs {
			specs[i] = &ImportSpec{Imported: cloneIdent(spec.Imported), Local: cloneIdent(spec.Local)}
		}
		return &ImportDecl{
			Import:    stmt.Import,
			Default:   cloneIdent(stmt.Default),
			Namespace: cloneIdent(stmt.Namespace),
			Specs:     specs,
			Module:    cloneLiteral(stmt.Module),
		}
	case *ExportDecl:
		return &ExportDecl{Export: stmt.Export, Decl: cloneStmt(stmt.Decl)}
	case *ExportDefault:
		return &ExportDefault{Export: stmt.Export, Decl: cloneStmt(stmt.Decl), X: cloneExpr(stmt.X), Binding: stmt.Binding}
	case *ExportNamed:
		specs := make([]*ExportSpec, len(stmt.Specs))
		for i, spec := range stmt.Specs {
			specs[i] = &ExportSpec{Local: cloneIdent(spec.Local), Exported: cloneIdent(spec.Exported)}
		}
		return &ExportNamed{Export: stmt.Export, Specs: specs, Rbrace: stmt.Rbrace, Module: cloneLiteral(stmt.Module)}
	case *ExportAll:
		return &ExportAll{Export: stmt.Export, Alias: cloneIdent(stmt.Alias), Module: cloneLiteral(stmt.Module)}
	case *VarDecl:
		list := make([]*VarSpec, len(stmt.List))
		for i, spec := range stmt.List {
			list[i] = &VarSpec{Name: cloneIdent(spec.Name), Init: cloneExpr(spec.Init)}
		}
		return &VarDecl{TokPos: stmt.TokPos, Tok: stmt.Tok, List: list}
	case *FuncDecl:
		return &FuncDecl{Name: cloneIdent(stmt.Name), Function: cloneFunction(&stmt.Function)}
	case *ClassDecl:
		return &ClassDecl{Name: cloneIdent(stmt.Name), Class: cloneClass(&stmt.Class)}
	case *BlockStmt:
		return cloneBlock(stmt)
	case *ExprStmt:
		return &ExprStmt{X: cloneExpr(stmt.X)}
	case *IfStmt:
		return &IfStmt{If: stmt.If, Cond: cloneExpr(stmt.Cond), Then: cloneBlock(stmt.Then), Else: cloneStmt(stmt.Else)}
	case *ForStmt:
		return &ForStmt{
			For:  stmt.For,
			Init: cloneStmt(stmt.Init),
			Cond: cloneExpr(stmt.Cond),
			Post: cloneExpr(stmt.Post),
			Body: cloneBlock(stmt.Body),
		}
	case *ForInStmt:
		return &ForInStmt{
			For:  stmt.For,
			Tok:  stmt.Tok,
			Name: cloneIdent(stmt.Name),
			Of:   stmt.Of,
			X:    cloneExpr(stmt.X),
			Body: cloneBlock(stmt.Body),
		}
	case *WhileStmt:
		return &WhileStmt{While: stmt.While, Cond: cloneExpr(stmt.Cond), Body: cloneBlock(stmt.Body)}
	case *BranchStmt:
		copy := *stmt
		return &copy
	case *ReturnStmt:
		return &ReturnStmt{Return: stmt.Return, Result: cloneExpr(stmt.Result)}
	case *ThrowStmt:
		return &ThrowStmt{Throw: stmt.Throw, X: cloneExpr(stmt.X)}
	case *TryStmt:
		return &TryStmt{
			Try:     stmt.Try,
			Body:    cloneBlock(stmt.Body),
			Param:   cloneIdent(stmt.Param),
			Catch:   cloneBlock(stmt.Catch),
			Finally: cloneBlock(stmt.Finally),
		}
	}
	panic(stmt)
}

func cloneExpr(x Expr) Expr {
	switch x := x.(type) {
	case nil:
		return nil
	case *Ident:
		return cloneIdent(x)
	case *Literal:
		return cloneLiteral(x)
	case *ThisExpr:
		copy := *x
		return &copy
	case *ParenExpr:
		return &ParenExpr{Lparen: x.Lparen, X: cloneExpr(x.X), Rparen: x.Rparen}
	case *ArrayExpr:
		return &ArrayExpr{Lbrack: x.Lbrack, List: cloneExprs(x.List), Rbrack: x.Rbrack}
	case *ObjectExpr:
		props := make([]*Property, len(x.Props))
		for i, prop := range x.Props {
			props[i] = &Property{
				Key:       cloneExpr(prop.Key),
				Value:     cloneExpr(prop.Value),
				Shorthand: prop.Shorthand,
				Method:    prop.Method,
			}
		}
		return &ObjectExpr{Lbrace: x.Lbrace, Props: props, Rbrace: x.Rbrace}
	case *SpreadExpr:
		return &SpreadExpr{Ellipsis: x.Ellipsis, X: cloneExpr(x.X)}
	case *FuncExpr:
		return &FuncExpr{Name: cloneIdent(x.Name), Function: cloneFunction(&x.Function)}
	case *ArrowFunc:
		return &ArrowFunc{Function: cloneFunction(&x.Function)}
	case *ClassExpr:
		return &ClassExpr{Name: cloneIdent(x.Name), Class: cloneClass(&x.Class)}
	case *CallExpr:
		return &CallExpr{Fn: cloneExpr(x.Fn), Lparen: x.Lparen, Args: cloneExprs(x.Args), Rparen: x.Rparen}
	case *NewExpr:
		return &NewExpr{New: x.New, Fn: cloneExpr(x.Fn), Args: cloneExprs(x.Args), Rparen: x.Rparen}
	case *ImportCall:
		return &ImportCall{Import: x.Import, Arg: cloneExpr(x.Arg), Rparen: x.Rparen}
	case *DotExpr:
		return &DotExpr{X: cloneExpr(x.X), Dot: x.Dot, Name: cloneIdent(x.Name)}
	case *IndexExpr:
		return &IndexExpr{X: cloneExpr(x.X), Lbrack: x.Lbrack, Y: cloneExpr(x.Y), Rbrack: x.Rbrack}
	case *UnaryExpr:
		return &UnaryExpr{OpPos: x.OpPos, Op: x.Op, X: cloneExpr(x.X), Postfix: x.Postfix}
	case *BinaryExpr:
		return &BinaryExpr{X: cloneExpr(x.X), OpPos: x.OpPos, Op: x.Op, Y: cloneExpr(x.Y)}
	case *AssignExpr:
		return &AssignExpr{LHS: cloneExpr(x.LHS), OpPos: x.OpPos, Op: x.Op, RHS: cloneExpr(x.RHS)}
	case *CondExpr:
		return &CondExpr{Cond: cloneExpr(x.Cond), True: cloneExpr(x.True), False: cloneExpr(x.False)}
	}
	panic(x)
}
