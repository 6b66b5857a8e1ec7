// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.jsbundle.dev/syntax"
)

func TestPrint(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`import d, {a, b as c} from 'm'`,
			"import d, { a, b as c } from \"m\";\n"},
		{`import * as ns from "m"; import "side"`,
			"import * as ns from \"m\";\nimport \"side\";\n"},
		{`export default function () { return 1 }`,
			"export default function () {\n  return 1;\n}\n"},
		{`export default 1 + 2`,
			"export default 1 + 2;\n"},
		{`const o = {a, b: 2, f() { return this }}`,
			"const o = {\n  a,\n  b: 2,\n  f() {\n    return this;\n  }\n};\n"},
		{`if (a) b(); else { c() }`,
			"if (a) {\n  b();\n} else {\n  c();\n}\n"},
		{`if (a) {} else if (b) {}`,
			"if (a) {} else if (b) {}\n"},
		{`for (;;) {}`,
			"for (;;) {}\n"},
		{`for (let i = 0; i < n; i++) sum += i`,
			"for (let i = 0; i < n; i++) {\n  sum += i;\n}\n"},
		{`for (const k in o) log(k)`,
			"for (const k in o) {\n  log(k);\n}\n"},
		{`x = - -y`,
			"x = - -y;\n"},
		{`x = -(-y)`,
			"x = -(-y);\n"},
		{`x = typeof y`,
			"x = typeof y;\n"},
		{`let f = (a, ...b) => ({a})`,
			"let f = (a, ...b) => ({\n  a\n});\n"},
		{`let g = x => { return x }`,
			"let g = (x) => {\n  return x;\n};\n"},
		{`class A extends B { static m() {} }`,
			"class A extends B {\n  static m() {}\n}\n"},
		{`export { x as default, y }`,
			"export { x as default, y };\n"},
		{`export * as ns from "m"`,
			"export * as ns from \"m\";\n"},
		{`try { a() } catch { b() }`,
			"try {\n  a();\n} catch {\n  b();\n}\n"},
		{`try { a() } catch (e) {} finally { c() }`,
			"try {\n  a();\n} catch (e) {} finally {\n  c();\n}\n"},
		{`s = 'it\'s'`,
			"s = \"it's\";\n"},
		{`n = 0x1F + 1.50`,
			"n = 0x1F + 1.50;\n"},
		{`import("./lazy.js").then(m => m.run())`,
			"import(\"./lazy.js\").then((m) => m.run());\n"},
		{`new Foo(1, 2)`,
			"new Foo(1, 2);\n"},
		{`while (x) { break }`,
			"while (x) {\n  break;\n}\n"},
	} {
		f, err := syntax.Parse("foo.js", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, err)
			continue
		}
		got := syntax.Format(f)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Format(`%s`) mismatch (-want +got):\n%s", test.input, diff)
			continue
		}

		// Printing is idempotent.
		f2, err := syntax.Parse("foo.js", got)
		if err != nil {
			t.Errorf("reparse of `%s` failed: %v", got, err)
			continue
		}
		if again := syntax.Format(f2); again != got {
			t.Errorf("Format is not idempotent for `%s`:\n%s", test.input, again)
		}
	}
}

func TestClone(t *testing.T) {
	const src = `import { a } from "./a.js"
export function f(x) {
  return [a, x, { x }];
}
`
	f, err := syntax.Parse("foo.js", src)
	if err != nil {
		t.Fatal(err)
	}
	want := syntax.Format(f)
	clone := syntax.Clone(f)
	if got := syntax.Format(clone); got != want {
		t.Errorf("Format(Clone) = %s, want %s", got, want)
	}

	// Mutating the clone leaves the original intact.
	syntax.Walk(clone, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok && id.Name == "x" {
			id.Name = "y"
		}
		return true
	})
	if got := syntax.Format(f); got != want {
		t.Errorf("original changed after mutating clone: %s", got)
	}
	if got := syntax.Format(clone); !strings.Contains(got, "function f(y)") {
		t.Errorf("clone not renamed: %s", got)
	}
}
