// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.jsbundle.dev/bundletest"
	"go.jsbundle.dev/internal/chunkedfile"
	"go.jsbundle.dev/resolve"
	"go.jsbundle.dev/syntax"
)

func TestResolve(t *testing.T) {
	filename := bundletest.DataFile("resolve", "testdata/resolve.js")
	for _, chunk := range chunkedfile.Read(filename, t) {
		f, err := syntax.Parse(filename, chunk.Source)
		if err != nil {
			t.Error(err)
			continue
		}
		if err := resolve.File(f); err != nil {
			for _, err := range err.(resolve.ErrorList) {
				chunk.GotError(int(err.Pos.Line), err.Msg)
			}
		}
		chunk.Done()
	}
}

func parseAndResolve(t *testing.T, src string) *syntax.File {
	t.Helper()
	f, err := syntax.Parse("a.js", src)
	if err != nil {
		t.Fatal(err)
	}
	if err := resolve.File(f); err != nil {
		t.Fatal(err)
	}
	return f
}

func describe(b *syntax.Binding) string {
	s := fmt.Sprintf("%s %s %s", b.Scope, b.Kind, b.Name)
	if b.Scope == syntax.ImportScope {
		s += fmt.Sprintf(" <- %q.%s", b.Module, b.Imported)
	}
	return s
}

func TestModuleBindings(t *testing.T) {
	f := parseAndResolve(t, `
import def, { a, b as c } from "./ab.js"
import * as ns from "./ns.js"
export const x = a + c
if (x) { var hoisted = 1 }
function helper(p) { var inner = p; return inner }
export default helper(x)
export class K {}
export { hoisted as h, def }
export { z as zz } from "./z.js"
export * from "./star.js"
export * as all from "./all.js"
console.log(ns, undefinedName, console)
`)
	var bindings []string
	for _, b := range f.Bindings {
		bindings = append(bindings, describe(b))
	}
	want := []string{
		`import import def <- "./ab.js".default`,
		`import import a <- "./ab.js".a`,
		`import import c <- "./ab.js".b`,
		`import import ns <- "./ns.js".*`,
		`module const x`,
		`module var hoisted`,
		`module function helper`,
		`module default default`,
		`module class K`,
	}
	if diff := cmp.Diff(want, bindings); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}

	var exports []string
	for _, e := range f.Exports {
		if e.Binding != nil {
			exports = append(exports, e.Name+"="+e.Binding.Name)
		} else {
			exports = append(exports, fmt.Sprintf("%s=%q.%s", e.Name, e.Module, e.Imported))
		}
	}
	wantExports := []string{
		`x=x`,
		`default=default`,
		`K=K`,
		`h=hoisted`,
		`def=def`,
		`zz="./z.js".z`,
		`all="./all.js".*`,
	}
	if diff := cmp.Diff(wantExports, exports); diff != "" {
		t.Errorf("exports mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"./star.js"}, f.StarExports); diff != "" {
		t.Errorf("star exports mismatch (-want +got):\n%s", diff)
	}

	var globals []string
	for _, b := range f.Globals {
		globals = append(globals, describe(b))
	}
	wantGlobals := []string{"undefined global console", "undefined global undefinedName"}
	if diff := cmp.Diff(wantGlobals, globals); diff != "" {
		t.Errorf("globals mismatch (-want +got):\n%s", diff)
	}
}

// TestReferences checks which declaration each reference denotes.
func TestReferences(t *testing.T) {
	f := parseAndResolve(t, `let x = 1
function f(x) {
  { let x = 2; g(x) }
  return x
}
const g = function x() { return x }
try { f(x) } catch (x) { g(x) }
for (let i = 0; i < x; i++) { var total = i }
print(total)
`)
	var refs []string
	syntax.Walk(f, func(n syntax.Node) bool {
		id, ok := n.(*syntax.Ident)
		if !ok || id.Binding == nil || id.Binding.First == id {
			return true
		}
		decl := "global"
		if id.Binding.First != nil {
			decl = fmt.Sprintf("%s@%d:%d", id.Binding.Kind, id.Binding.First.NamePos.Line, id.Binding.First.NamePos.Col)
		}
		refs = append(refs, fmt.Sprintf("%s@%d:%d -> %s", id.Name, id.NamePos.Line, id.NamePos.Col, decl))
		return true
	})
	got := strings.Join(refs, "\n")
	want := strings.Join([]string{
		"g@3:16 -> const@6:7",
		"x@3:18 -> let@3:9",
		"x@4:10 -> param@2:12",
		"x@6:33 -> function@6:20",
		"f@7:7 -> function@2:10",
		"x@7:9 -> let@1:5",
		"g@7:26 -> const@6:7",
		"x@7:28 -> catch@7:21",
		"i@8:17 -> let@8:10",
		"x@8:21 -> let@1:5",
		"i@8:24 -> let@8:10",
		"i@8:43 -> let@8:10",
		"print@9:1 -> global",
		"total@9:7 -> var@8:35",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestScopes(t *testing.T) {
	f := parseAndResolve(t, "export function f(a) { let b = a; return () => b }\n")
	fn := f.Stmts[0].(*syntax.ExportDecl).Decl.(*syntax.FuncDecl)
	if got := fn.Name.Binding.Scope; got != syntax.ModuleScope {
		t.Errorf("f: got scope %s, want module", got)
	}
	if got := fn.Params[0].Name.Binding.Scope; got != syntax.LocalScope {
		t.Errorf("a: got scope %s, want local", got)
	}
	if len(f.Bindings) != 1 {
		t.Errorf("got %d module bindings, want 1", len(f.Bindings))
	}
}
