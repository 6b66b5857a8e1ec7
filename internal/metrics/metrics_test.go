// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/bundletest"
)

var program = map[string]string{
	"a.js":    `import { d } from "./d.js"; export const a = d; export const load = () => import("./lazy.js")`,
	"e.js":    `import { d } from "./d.js"; export const e = d`,
	"d.js":    `export const d = 1`,
	"lazy.js": `export const lazy = 2`,
}

func run(t *testing.T, m *Metrics, entries ...bundler.Entry) ([]*bundler.Bundle, error) {
	t.Helper()
	prog := bundletest.NewProgram(program)
	r, l := m.Instrument(prog, prog)
	b, err := bundler.New(bundler.Config{}, r, l)
	require.NoError(t, err)
	bundles, err := b.Bundle(context.Background(), entries)
	m.Record(b, bundles, err)
	return bundles, err
}

func TestRecord(t *testing.T) {
	m := New()
	bundles, err := run(t, m,
		bundler.Entry{Name: "a", Specifier: "./a.js"},
		bundler.Entry{Name: "e", Specifier: "./e.js"})
	require.NoError(t, err)
	require.Len(t, bundles, 4)

	require.Equal(t, 5.0, testutil.ToFloat64(m.resolves.WithLabelValues("ok")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.resolves.WithLabelValues("error")))
	require.Equal(t, 4.0, testutil.ToFloat64(m.loads.WithLabelValues("ok")))
	require.Equal(t, 1, testutil.CollectAndCount(m.loadDuration))
	require.Equal(t, 4.0, testutil.ToFloat64(m.modules))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("done")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.bundles.WithLabelValues("entry")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.bundles.WithLabelValues("shared")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.bundles.WithLabelValues("dynamic")))

	var size int
	for _, b := range bundles {
		if b.Kind == bundler.SharedBundle {
			size += len(b.Text())
		}
	}
	require.Equal(t, float64(size), testutil.ToFloat64(m.outputBytes.WithLabelValues("shared")))

	_, err = run(t, m, bundler.Entry{Name: "x", Specifier: "./missing.js"})
	require.Error(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.resolves.WithLabelValues("error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("failed")))
	// The gauges describe the last successful run.
	require.Equal(t, 2.0, testutil.ToFloat64(m.bundles.WithLabelValues("entry")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	_, err := run(t, m, bundler.Entry{Name: "a", Specifier: "./a.js"})
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "jsbundle.prom")
	require.NoError(t, m.WriteTextfile(filename))
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	text := string(data)
	for _, want := range []string{
		`jsbundle_resolve_total{result="ok"} 3`,
		`jsbundle_load_total{result="ok"} 3`,
		`jsbundle_bundles{kind="dynamic"} 1`,
		`jsbundle_bundles{kind="shared"} 0`,
		`jsbundle_runs_total{state="done"} 1`,
		"# TYPE jsbundle_load_duration_seconds histogram",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile lacks %q:\n%s", want, text)
		}
	}
}
