// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/internal/manifest"
)

// writeTree writes files under a new temporary directory.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		filename := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0o755))
		require.NoError(t, os.WriteFile(filename, []byte(src), 0o644))
	}
	return dir
}

var program = map[string]string{
	"src/a.js":    `import { d } from "./d"; export const a = d`,
	"src/e.js":    `import { d } from "./d"; export const e = d; export const f = () => import("./lazy")`,
	"src/d.js":    `export const d = 1`,
	"src/lazy.js": `export default 2`,
}

func run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = doMain(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestBuild(t *testing.T) {
	root := writeTree(t, program)
	outdir := filepath.Join(t.TempDir(), "out")
	manifestFile := filepath.Join(outdir, "manifest.yaml")
	metricsFile := filepath.Join(t.TempDir(), "jsbundle.prom")

	stdout, stderr, code := run(t, "build", "--root", root, "--outdir", outdir,
		"--manifest", manifestFile, "--manifest-format", "yaml", "--metrics", metricsFile,
		"src/a.js", "other=./src/e.js")
	require.Equal(t, 0, code, stderr)

	entries, err := os.ReadDir(outdir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Len(t, names, 5, names) // a, other, lazy, chunk, manifest
	require.Contains(t, names, "a.js")
	require.Contains(t, names, "other.js")

	a, err := os.ReadFile(filepath.Join(outdir, "a.js"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(a), `import { d } from "./chunk-`), string(a))

	require.Contains(t, stdout, "BUNDLE")
	require.Contains(t, stdout, "other.js")
	require.Contains(t, stdout, "shared")

	data, err := os.ReadFile(manifestFile)
	require.NoError(t, err)
	s, err := manifest.Unmarshal(data, manifest.YAML)
	require.NoError(t, err)
	require.Len(t, s.AsMap()["bundles"], 4)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(prom), `jsbundle_runs_total{state="done"} 1`)
}

func TestBuildErrors(t *testing.T) {
	root := writeTree(t, program)
	for _, test := range []struct {
		args []string
		want string
	}{
		{[]string{"build", "--root", root}, "requires at least 1 arg"},
		{[]string{"build", "--root", root, "--mode", "both", "src/a.js"}, `unknown merge mode "both"`},
		{[]string{"build", "--root", root, "--format", "iife", "src/a.js"}, "iife output requires the one-bundle merge mode"},
		{[]string{"build", "--root", root, "--outdir", t.TempDir(), "src/missing.js"}, `cannot resolve entry "./src/missing.js"`},
		{[]string{"build", "--root", root, "--log-level", "loud", "src/a.js"}, "Unknown Level"},
		{[]string{"build", "--config", filepath.Join(root, "nope.yaml"), "src/a.js"}, "reading config"},
	} {
		_, stderr, code := run(t, test.args...)
		if code != 1 || !strings.Contains(stderr, test.want) {
			t.Errorf("%v: exit %d, stderr %q, want %q", test.args, code, stderr, test.want)
		}
	}
}

func TestGraph(t *testing.T) {
	root := writeTree(t, program)
	stdout, stderr, code := run(t, "graph", "--root", root, "src/e.js")
	require.Equal(t, 0, code, stderr)
	lines := strings.Split(stdout, "\n")
	want := []string{
		"modules:",
		"components:",
		"  /src/d.js",
		"  /src/e.js",
		"  /src/lazy.js",
		"edges:",
		"  /src/e.js -> /src/d.js (static d)",
		"  /src/e.js -> /src/lazy.js (dynamic)",
	}
	var got []string
	for _, line := range lines {
		if line != "" && !strings.HasPrefix(line, "  0 ") && !strings.HasPrefix(line, "  1 ") && !strings.HasPrefix(line, "  2 ") {
			got = append(got, line)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("graph output (-want +got):\n%s", diff)
	}

	broken := writeTree(t, map[string]string{
		"main.js": `import { nope } from "./d.js"`,
		"d.js":    `export const d = 1`,
	})
	stdout, stderr, code = run(t, "graph", "--root", broken, "main.js")
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "/d.js has no export named nope")
}

func TestConfig(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"jsbundle.yaml": `
mode: one-bundle
format: cjs
external:
  - react
  - node/*
strip-exports: true
concurrency: 3
`,
	})
	// The environment overrides the file, and flags override both.
	t.Setenv("JSBUNDLE_CONCURRENCY", "5")

	a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
	root := a.rootCmd()
	build, _, err := root.Find([]string{"build"})
	require.NoError(t, err)
	var got bundler.Config
	build.RunE = func(cmd *cobra.Command, args []string) error {
		got, err = a.config()
		return err
	}
	root.SetArgs([]string{"build", "--config", filepath.Join(dir, "jsbundle.yaml"), "--format", "es", "main.js"})
	require.NoError(t, root.Execute())
	require.NoError(t, err)

	want := bundler.Config{
		MergeMode:         bundler.OneBundle,
		ModuleFormat:      bundler.ES,
		External:          []string{"react", "node/*"},
		StripEntryExports: true,
		Concurrency:       5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestParseEntries(t *testing.T) {
	got, err := parseEntries([]string{"src/app.main.js", "x=lib/x.js", "./y.js", "../z/index.ts", "w=/abs/w.js"})
	require.NoError(t, err)
	want := []bundler.Entry{
		{Name: "app", Specifier: "./src/app.main.js"},
		{Name: "x", Specifier: "./lib/x.js"},
		{Name: "y", Specifier: "./y.js"},
		{Name: "index", Specifier: "../z/index.ts"},
		{Name: "w", Specifier: "/abs/w.js"},
	}
	require.Equal(t, want, got)

	_, err = parseEntries(nil)
	require.Error(t, err)
}
