package syntax_test

import (
	"bytes"
	"fmt"
	"log"
	"reflect"
	"strings"
	"testing"

	"go.jsbundle.dev/syntax"
)

func TestWalk(t *testing.T) {
	const src = `
for (const x of y) {
  if (x) {
  } else {
    f([2 * x])
  }
}
`
	f, err := syntax.Parse("hello.js", src)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	var depth int
	syntax.Walk(f, func(n syntax.Node) bool {
		if n == nil {
			depth--
			return true
		}
		fmt.Fprintf(&buf, "%s%s\n",
			strings.Repeat("  ", depth),
			strings.TrimPrefix(reflect.TypeOf(n).String(), "*syntax."))
		depth++
		return true
	})
	got := buf.String()
	want := `
File
  ForInStmt
    Ident
    Ident
    BlockStmt
      IfStmt
        Ident
        BlockStmt
        BlockStmt
          ExprStmt
            CallExpr
              Ident
              ArrayExpr
                BinaryExpr
                  Literal
                  Ident`
	got = strings.TrimSpace(got)
	want = strings.TrimSpace(want)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestWalkPrune(t *testing.T) {
	f, err := syntax.Parse("hello.js", "function f(a) { return b }\nc(function () { d })")
	if err != nil {
		t.Fatal(err)
	}
	var idents []string
	syntax.Walk(f, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Ident:
			idents = append(idents, n.Name)
		case *syntax.Function, *syntax.FuncDecl, *syntax.FuncExpr:
			return false
		}
		return true
	})
	if got, want := strings.Join(idents, " "), "c"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewrite(t *testing.T) {
	f, err := syntax.Parse("hello.js", `
const x = 1
export { x }
f(x, { x }, o.x, { x: x })
function g(y = x) { return () => x }
`)
	if err != nil {
		t.Fatal(err)
	}
	syntax.Rewrite(f, func(e syntax.Expr) syntax.Expr {
		if id, ok := e.(*syntax.Ident); ok && id.Name == "x" {
			return &syntax.Ident{NamePos: id.NamePos, Name: "x$1"}
		}
		return e
	})
	got := syntax.Format(f)
	want := `const x = 1;
export { x$1 as x };
f(x$1, {
  x: x$1
}, o.x, {
  x: x$1
});
function g(y = x$1) {
  return () => x$1;
}
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

// ExampleWalk demonstrates the use of Walk to
// enumerate the identifiers in a source file
// containing a nonsense program with varied grammar.
func ExampleWalk() {
	const src = `
import a from "library"

function b(c, d = e) {
  f += { g: h }
  const i = -(j)
  return k.l[m + n]
}

for (const o of [p, q]) r(() => s, t ? u : v)
export { w as x }
export default y
z
`
	f, err := syntax.Parse("hello.js", src)
	if err != nil {
		log.Fatal(err)
	}

	var idents []string
	syntax.Walk(f, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})
	fmt.Println(strings.Join(idents, " "))

	// Output:
	// a b c d e f g h i j k l m n o p q r s t u v w x y z
}
