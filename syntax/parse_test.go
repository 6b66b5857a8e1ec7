// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"go.jsbundle.dev/bundletest"
	"go.jsbundle.dev/internal/chunkedfile"
	"go.jsbundle.dev/syntax"
)

func TestExprParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`f(1)`,
			`(CallExpr Fn=f Args=(1))`},
		{`f(1);`,
			`(CallExpr Fn=f Args=(1))`},
		{`x + 1`,
			`(BinaryExpr X=x Op=+ Y=1)`},
		{`x+y*z`,
			`(BinaryExpr X=x Op=+ Y=(BinaryExpr X=y Op=* Y=z))`},
		{`a - b - c`,
			`(BinaryExpr X=(BinaryExpr X=a Op=- Y=b) Op=- Y=c)`},
		{`a || b && c`,
			`(BinaryExpr X=a Op=|| Y=(BinaryExpr X=b Op=&& Y=c))`},
		{`a ?? b`,
			`(BinaryExpr X=a Op=?? Y=b)`},
		{`a < b === c`,
			`(BinaryExpr X=(BinaryExpr X=a Op=< Y=b) Op==== Y=c)`},
		{`x instanceof Y`,
			`(BinaryExpr X=x Op=instanceof Y=Y)`},
		{`x.f(42)`,
			`(CallExpr Fn=(DotExpr X=x Name=f) Args=(42))`},
		{`x.default`,
			`(DotExpr X=x Name=default)`},
		{`this.x`,
			`(DotExpr X=(ThisExpr) Name=x)`},
		{`a[i]`,
			`(IndexExpr X=a Y=i)`},
		{`-x`,
			`(UnaryExpr Op=- X=x)`},
		{`x++`,
			`(UnaryExpr Op=++ X=x Postfix)`},
		{`typeof x === "y"`,
			`(BinaryExpr X=(UnaryExpr Op=typeof X=x) Op==== Y="y")`},
		{`a ? b : c`,
			`(CondExpr Cond=a True=b False=c)`},
		{`x = y = 1`,
			`(AssignExpr LHS=x Op== RHS=(AssignExpr LHS=y Op== RHS=1))`},
		{`o.n += 2`,
			`(AssignExpr LHS=(DotExpr X=o Name=n) Op=+= RHS=2)`},
		{`[1, ...xs]`,
			`(ArrayExpr List=(1 (SpreadExpr X=xs)))`},
		{`[]`,
			`(ArrayExpr)`},
		{`{a, b: 2, "c": 3}`,
			`(ObjectExpr Props=((Property Key=a Value=a Shorthand) (Property Key=b Value=2) (Property Key="c" Value=3)))`},
		{`{default: 1, ...rest}`,
			`(ObjectExpr Props=((Property Key=default Value=1) (Property Value=(SpreadExpr X=rest))))`},
		{`{f() {}}`,
			`(ObjectExpr Props=((Property Key=f Value=(FuncExpr Body=(BlockStmt)) Method)))`},
		{`(a) => a * 2`,
			`(ArrowFunc Params=((Param Name=a)) Expr=(BinaryExpr X=a Op=* Y=2))`},
		{`x => { return x }`,
			`(ArrowFunc Params=((Param Name=x)) Body=(BlockStmt Stmts=((ReturnStmt Result=x))))`},
		{`() => ({})`,
			`(ArrowFunc Expr=(ParenExpr X=(ObjectExpr)))`},
		{`new Foo(1)`,
			`(NewExpr Fn=Foo Args=(1))`},
		{`new a.B`,
			`(NewExpr Fn=(DotExpr X=a Name=B))`},
		{`new Foo().bar`,
			`(DotExpr X=(NewExpr Fn=Foo) Name=bar)`},
		{`import("./m.js")`,
			`(ImportCall Arg="./m.js")`},
		{`import("./m.js").then(f)`,
			`(CallExpr Fn=(DotExpr X=(ImportCall Arg="./m.js") Name=then) Args=(f))`},
		{`function (a, b = 1, ...c) {}`,
			`(FuncExpr Params=((Param Name=a) (Param Name=b Default=1) (Param Rest Name=c)) Body=(BlockStmt))`},
		{`function fact(n) { return n }`,
			`(FuncExpr Name=fact Params=((Param Name=n)) Body=(BlockStmt Stmts=((ReturnStmt Result=n))))`},
		{`class extends Base {}`,
			`(ClassExpr Extends=Base)`},
		{`(a)`,
			`(ParenExpr X=a)`},
		{`f(...args)`,
			`(CallExpr Fn=f Args=((SpreadExpr X=args)))`},
		{`true && null`,
			`(BinaryExpr X=true Op=&& Y=null)`},
	} {
		e, err := syntax.ParseExpr("foo.js", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		if got := treeString(e); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

func TestStmtParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`import "m"`,
			`(ImportDecl Module="m")`},
		{`import d, { a, b as c } from "m"`,
			`(ImportDecl Default=d Specs=((ImportSpec Imported=a Local=a) (ImportSpec Imported=b Local=c)) Module="m")`},
		{`import * as ns from "m"`,
			`(ImportDecl Namespace=ns Module="m")`},
		{`import { default as d } from "m"`,
			`(ImportDecl Specs=((ImportSpec Imported=default Local=d)) Module="m")`},
		{`export const x = 1`,
			`(ExportDecl Decl=(VarDecl Tok=const List=((VarSpec Name=x Init=1))))`},
		{`export default 42`,
			`(ExportDefault X=42)`},
		{`export default function () {}`,
			`(ExportDefault Decl=(FuncDecl Body=(BlockStmt)))`},
		{`export default class C {}`,
			`(ExportDefault Decl=(ClassDecl Name=C))`},
		{`export { a, b as default }`,
			`(ExportNamed Specs=((ExportSpec Local=a Exported=a) (ExportSpec Local=b Exported=default)))`},
		{`export { x } from "m"`,
			`(ExportNamed Specs=((ExportSpec Local=x Exported=x)) Module="m")`},
		{`export * from "m"`,
			`(ExportAll Module="m")`},
		{`export * as ns from "m"`,
			`(ExportAll Alias=ns Module="m")`},
		{`var a, b = 2`,
			`(VarDecl Tok=var List=((VarSpec Name=a) (VarSpec Name=b Init=2)))`},
		{`if (a) b(); else if (c) d()`,
			`(IfStmt Cond=a Then=(BlockStmt Stmts=((ExprStmt X=(CallExpr Fn=b)))) Else=(IfStmt Cond=c Then=(BlockStmt Stmts=((ExprStmt X=(CallExpr Fn=d))))))`},
		{`for (let i = 0; i < n; i++) {}`,
			`(ForStmt Init=(VarDecl Tok=let List=((VarSpec Name=i Init=0))) Cond=(BinaryExpr X=i Op=< Y=n) Post=(UnaryExpr Op=++ X=i Postfix) Body=(BlockStmt))`},
		{`for (;;) break`,
			`(ForStmt Body=(BlockStmt Stmts=((BranchStmt Token=break))))`},
		{`for (const k of xs) f(k)`,
			`(ForInStmt Tok=const Name=k Of X=xs Body=(BlockStmt Stmts=((ExprStmt X=(CallExpr Fn=f Args=(k))))))`},
		{`for (k in o) {}`,
			`(ForInStmt Name=k X=o Body=(BlockStmt))`},
		{`while (x) x--`,
			`(WhileStmt Cond=x Body=(BlockStmt Stmts=((ExprStmt X=(UnaryExpr Op=-- X=x Postfix)))))`},
		{`try { a() } catch (e) { b(e) } finally {}`,
			`(TryStmt Body=(BlockStmt Stmts=((ExprStmt X=(CallExpr Fn=a)))) Param=e Catch=(BlockStmt Stmts=((ExprStmt X=(CallExpr Fn=b Args=(e))))) Finally=(BlockStmt))`},
		{`class A extends B { static m() {} n(x) { return x } }`,
			`(ClassDecl Name=A Extends=B Methods=((Method Static Name=m Func=(Function Body=(BlockStmt))) (Method Name=n Func=(Function Params=((Param Name=x)) Body=(BlockStmt Stmts=((ReturnStmt Result=x)))))))`},
		{`function f() { return
x }`,
			`(FuncDecl Name=f Body=(BlockStmt Stmts=((ReturnStmt) (ExprStmt X=x))))`},
		{`throw new Error("x")`,
			`(ThrowStmt X=(NewExpr Fn=Error Args=("x")))`},
	} {
		f, err := syntax.Parse("foo.js", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		if len(f.Stmts) != 1 {
			t.Errorf("parse `%s`: got %d statements, want 1", test.input, len(f.Stmts))
			continue
		}
		if got := treeString(f.Stmts[0]); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

// TestFileParseTrees checks automatic semicolon insertion.
func TestFileParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{"a\n++b",
			`(ExprStmt X=a)
(ExprStmt X=(UnaryExpr Op=++ X=b))`},
		{"x = 1\ny = 2;;\n",
			`(ExprStmt X=(AssignExpr LHS=x Op== RHS=1))
(ExprStmt X=(AssignExpr LHS=y Op== RHS=2))`},
		{"let a = f\n(b)",
			`(VarDecl Tok=let List=((VarSpec Name=a Init=(CallExpr Fn=f Args=(b)))))`},
		{"if (x) { y } z",
			`(IfStmt Cond=x Then=(BlockStmt Stmts=((ExprStmt X=y))))
(ExprStmt X=z)`},
	} {
		f, err := syntax.Parse("foo.js", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		var buf bytes.Buffer
		for i, stmt := range f.Stmts {
			if i > 0 {
				buf.WriteByte('\n')
			}
			writeTree(&buf, reflect.ValueOf(stmt))
		}
		if got := buf.String(); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

func stripPos(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		s = s[i+len(": "):] // strip file:line:col
	}
	return s
}

// treeString prints a syntax node as a parenthesized tree.
// Idents are printed as foo and Literals as "foo" or 42.
// Structs are printed as (type name=value ...).
// Only non-empty fields are shown; embedded structs are flattened.
func treeString(n syntax.Node) string {
	var buf bytes.Buffer
	writeTree(&buf, reflect.ValueOf(n))
	return buf.String()
}

func writeTree(out *bytes.Buffer, x reflect.Value) {
	switch x.Kind() {
	case reflect.String, reflect.Int, reflect.Bool:
		fmt.Fprintf(out, "%v", x.Interface())
	case reflect.Ptr, reflect.Interface:
		if elem := x.Elem(); elem.Kind() == 0 {
			out.WriteString("nil")
		} else {
			writeTree(out, elem)
		}
	case reflect.Struct:
		switch v := x.Interface().(type) {
		case syntax.Literal:
			switch v.Token {
			case syntax.STRING:
				fmt.Fprintf(out, "%q", v.Value)
			case syntax.NUMBER:
				fmt.Fprintf(out, "%g", v.Value)
			default:
				out.WriteString(v.Token.String())
			}
			return
		case syntax.Ident:
			out.WriteString(v.Name)
			return
		}
		fmt.Fprintf(out, "(%s", strings.TrimPrefix(x.Type().String(), "syntax."))
		writeFields(out, x)
		fmt.Fprintf(out, ")")
	default:
		fmt.Fprintf(out, "%T", x.Interface())
	}
}

func writeFields(out *bytes.Buffer, x reflect.Value) {
	for i, n := 0, x.NumField(); i < n; i++ {
		f := x.Field(i)
		field := x.Type().Field(i)
		if f.Type() == reflect.TypeOf(syntax.Position{}) {
			continue // skip positions
		}
		if field.Anonymous {
			writeFields(out, f) // flatten Function, Class
			continue
		}
		name := field.Name
		if name == "Binding" || !field.IsExported() {
			continue // skip resolver fields
		}
		if f.Type() == reflect.TypeOf(syntax.Token(0)) {
			if tok := f.Interface().(syntax.Token); tok != syntax.ILLEGAL {
				fmt.Fprintf(out, " %s=%s", name, tok)
			}
			continue
		}

		switch f.Kind() {
		case reflect.Slice:
			if n := f.Len(); n > 0 {
				fmt.Fprintf(out, " %s=(", name)
				for i := 0; i < n; i++ {
					if i > 0 {
						out.WriteByte(' ')
					}
					writeTree(out, f.Index(i))
				}
				out.WriteByte(')')
			}
			continue
		case reflect.Ptr, reflect.Interface:
			if f.IsNil() {
				continue
			}
		case reflect.Int:
			if f.Int() != 0 {
				fmt.Fprintf(out, " %s=%d", name, f.Int())
			}
			continue
		case reflect.Bool:
			if f.Bool() {
				fmt.Fprintf(out, " %s", name)
			}
			continue
		}
		fmt.Fprintf(out, " %s=", name)
		writeTree(out, f)
	}
}

func TestParseErrors(t *testing.T) {
	filename := bundletest.DataFile("syntax", "testdata/errors.js")
	for _, chunk := range chunkedfile.Read(filename, t) {
		_, err := syntax.Parse(filename, chunk.Source)
		switch err := err.(type) {
		case nil:
			// ok
		case syntax.Error:
			chunk.GotError(int(err.Pos.Line), err.Msg)
		default:
			t.Error(err)
		}
		chunk.Done()
	}
}

func TestSpan(t *testing.T) {
	f, err := syntax.Parse("foo.js", "let x = 1\nexport function f(a) {\n  return a\n}\n")
	if err != nil {
		t.Fatal(err)
	}
	var spans []string
	for _, stmt := range f.Stmts {
		start, end := stmt.Span()
		spans = append(spans, fmt.Sprint(start, " ", end))
	}
	got := strings.Join(spans, "; ")
	want := "foo.js:1:1 foo.js:1:10; foo.js:2:1 foo.js:4:2"
	if got != want {
		t.Errorf("wrong spans: got %q, want %q", got, want)
	}
}

func BenchmarkParse(b *testing.B) {
	src := []byte(strings.Repeat(`
import { a as b } from "./a.js"
export function f(x, y = 1) {
  for (let i = 0; i < x; i++) {
    y = y * b(i) + { k: i }.k
  }
  return y
}
`, 50))
	for i := 0; i < b.N; i++ {
		if _, err := syntax.Parse("bench.js", src); err != nil {
			b.Fatal(err)
		}
	}
}
