// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsload_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/internal/fsload"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func file(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src), ModTime: epoch}
}

func tree() fstest.MapFS {
	return fstest.MapFS{
		"src/main.js":                         file(`import { util } from "./lib/util"; import "left-pad"; export const main = util`),
		"src/lib/util.ts":                     file(`export const util = 1`),
		"src/lib/index.js":                    file(`export * from "./util.ts"`),
		"src/app/node_modules/left-pad/a.js":  file(`export const pad = 1`),
		"node_modules/left-pad/package.json":  file(`{"name": "left-pad", "main": "./dist/pad.js"}`),
		"node_modules/left-pad/dist/pad.js":   file(`export const pad = 2`),
		"node_modules/react/index.mjs":        file(`export default 1`),
		"node_modules/broken/package.json":    file(`{"main": "missing.js"}`),
		"node_modules/badjson/package.json":   file(`{`),
		"node_modules/sub/package.json":       file(`{"main": "lib"}`),
		"node_modules/sub/lib/index.js":       file(`export const sub = 1`),
		"node_modules/@scope/pkg/index.js":    file(`export const scoped = 1`),
		"node_modules/@scope/pkg/extra.js":    file(`export const extra = 1`),
		"node_modules/@scope/pkg/README":      file(`not a module`),
		"node_modules/left-pad/dist/README":   file(`docs`),
		"node_modules/react/package.json":     file(`{}`),
		"node_modules/react/README.md":        file(`docs`),
		"src/app/node_modules/left-pad/x.txt": file(`x`),
	}
}

func TestResolve(t *testing.T) {
	l, err := fsload.New(tree())
	require.NoError(t, err)
	ctx := context.Background()
	for _, test := range []struct {
		importer  bundler.ModuleId
		specifier string
		want      bundler.ModuleId
	}{
		{"", "./src/main.js", "/src/main.js"},
		{"", "./src/main", "/src/main.js"},
		{"", "/src/lib/util", "/src/lib/util.ts"},
		{"/src/main.js", "./lib/util", "/src/lib/util.ts"},
		{"/src/main.js", "./lib", "/src/lib/index.js"},
		{"/src/lib/util.ts", ".", "/src/lib/index.js"},
		{"/src/lib/util.ts", "../main", "/src/main.js"},
		{"/src/main.js", "left-pad", "/node_modules/left-pad/dist/pad.js"},
		{"/src/main.js", "react", "/node_modules/react/index.mjs"},
		{"/src/main.js", "sub", "/node_modules/sub/lib/index.js"},
		{"/src/main.js", "@scope/pkg", "/node_modules/@scope/pkg/index.js"},
		{"/src/main.js", "@scope/pkg/extra", "/node_modules/@scope/pkg/extra.js"},
		// The nearest node_modules directory without the package is skipped.
		{"/src/app/x.js", "react", "/node_modules/react/index.mjs"},
		{"/src/app/x.js", "left-pad/a", "/src/app/node_modules/left-pad/a.js"},
	} {
		got, err := l.Resolve(ctx, test.importer, test.specifier)
		if err != nil {
			t.Errorf("Resolve(%q, %q): %v", test.importer, test.specifier, err)
		} else if got != test.want {
			t.Errorf("Resolve(%q, %q) = %s, want %s", test.importer, test.specifier, got, test.want)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	l, err := fsload.New(tree())
	require.NoError(t, err)
	ctx := context.Background()

	for _, spec := range []string{"./nope.js", "/src/lib/util.js", "nope", "@scope/pkg/README.js"} {
		_, err := l.Resolve(ctx, "/src/main.js", spec)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Resolve(%q) = %v, want ErrNotExist", spec, err)
		}
	}

	_, err = l.Resolve(ctx, "/src/main.js", "broken")
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.ErrorContains(t, err, `main "missing.js"`)

	_, err = l.Resolve(ctx, "/src/main.js", "badjson")
	require.ErrorContains(t, err, "/node_modules/badjson/package.json")

	_, err = l.Resolve(ctx, "/src/main.js", "")
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.Resolve(cancelled, "", "./src/main.js")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadCache(t *testing.T) {
	fsys := tree()
	l, err := fsload.New(fsys, fsload.WithCacheSize(8))
	require.NoError(t, err)
	ctx := context.Background()

	lm, err := l.Load(ctx, "/src/main.js")
	require.NoError(t, err)
	require.Equal(t, []string{"main"}, lm.Exports)
	require.Len(t, lm.Imports, 2)
	require.Equal(t, "./lib/util", lm.Imports[0].Specifier)

	again, err := l.Load(ctx, "/src/main.js")
	require.NoError(t, err)
	require.Same(t, lm, again)
	hits, misses := l.CacheStats()
	require.EqualValues(t, 1, hits)
	require.EqualValues(t, 1, misses)

	// A modified file is parsed again.
	fsys["src/main.js"] = &fstest.MapFile{Data: []byte(`export const main = 2`), ModTime: epoch.Add(time.Second)}
	changed, err := l.Load(ctx, "/src/main.js")
	require.NoError(t, err)
	require.NotSame(t, lm, changed)
	require.Empty(t, changed.Imports)
	_, misses = l.CacheStats()
	require.EqualValues(t, 2, misses)

	l.Purge()
	_, err = l.Load(ctx, "/src/main.js")
	require.NoError(t, err)
	_, misses = l.CacheStats()
	require.EqualValues(t, 3, misses)
}

func TestLoadErrors(t *testing.T) {
	fsys := tree()
	fsys["src/bad.js"] = file(`export const = 1`)
	l, err := fsload.New(fsys)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = l.Load(ctx, "/src/missing.js")
	require.ErrorIs(t, err, fs.ErrNotExist)
	_, err = l.Load(ctx, "/src/bad.js")
	require.ErrorContains(t, err, "/src/bad.js:1:")
	_, err = l.Load(ctx, "src/main.js")
	require.ErrorContains(t, err, "not absolute")

	_, err = fsload.New(fsys, fsload.WithCacheSize(0))
	require.Error(t, err)
}

func TestBundle(t *testing.T) {
	l, err := fsload.New(tree())
	require.NoError(t, err)
	b, err := bundler.New(bundler.Config{MergeMode: bundler.OneBundle}, l, l)
	require.NoError(t, err)
	bundles, err := b.Bundle(context.Background(), []bundler.Entry{{Name: "main", Specifier: "./src/main.js"}})
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	require.Equal(t, []bundler.ModuleId{"/src/lib/util.ts", "/node_modules/left-pad/dist/pad.js", "/src/main.js"}, bundles[0].Modules)
	require.Equal(t, `const util = 1;
const pad = 2;
const main = util;
export { main };
`, bundles[0].Text())
}
