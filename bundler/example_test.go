// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler_test

import (
	"context"
	"fmt"
	"log"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/bundletest"
)

// ExampleBundler merges two modules whose top-level names collide.
func ExampleBundler() {
	prog := bundletest.NewProgram(map[string]string{
		"main.js": `
import { count } from "./counter.js"
const count2 = 0
export const total = count + count2
`,
		"counter.js": `
const count2 = 1
export const count = count2 + 1
`,
	})

	b, err := bundler.New(bundler.Config{MergeMode: bundler.OneBundle}, prog, prog)
	if err != nil {
		log.Fatal(err)
	}
	bundles, err := b.Bundle(context.Background(), []bundler.Entry{{Name: "app", Specifier: "./main.js"}})
	if err != nil {
		log.Fatal(err)
	}
	for _, bundle := range bundles {
		fmt.Printf("// %s (%s)\n%s", bundle.FileName(), bundle.Kind, bundle.Text())
	}

	// Output:
	// // app.js (entry)
	// const count2 = 1;
	// const count = count2 + 1;
	// const count2$main = 0;
	// const total = count + count2$main;
	// export { total };
}
