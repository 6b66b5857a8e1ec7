// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifest_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/bundletest"
	"go.jsbundle.dev/internal/manifest"
)

func build(t *testing.T) (*bundler.Graph, []*bundler.Bundle) {
	t.Helper()
	prog := bundletest.NewProgram(map[string]string{
		"main.js": `import { value as v } from "./x.js"; export const value = v + 1`,
		"x.js":    `export const value = 1`,
	})
	b, err := bundler.New(bundler.Config{MergeMode: bundler.OneBundle}, prog, prog)
	require.NoError(t, err)
	bundles, err := b.Bundle(context.Background(), []bundler.Entry{{Name: "app", Specifier: "./main.js"}})
	require.NoError(t, err)
	return b.Graph(), bundles
}

func TestBuild(t *testing.T) {
	g, bundles := build(t)
	s, err := manifest.Build(g, bundles)
	require.NoError(t, err)

	want := map[string]interface{}{
		"modules": []interface{}{
			map[string]interface{}{"id": "/main.js", "index": 0.0, "hash": g.Modules[0].Hash.String()},
			map[string]interface{}{"id": "/x.js", "index": 1.0, "hash": g.Modules[1].Hash.String()},
		},
		"bundles": []interface{}{
			map[string]interface{}{
				"name":    "app",
				"kind":    "entry",
				"file":    "app.js",
				"hash":    bundles[0].Hash.String(),
				"entries": []interface{}{"/main.js"},
				"modules": []interface{}{"/x.js", "/main.js"},
				"renamed": map[string]interface{}{"/main.js:value": "value$main"},
			},
		},
	}
	if diff := cmp.Diff(want, s.AsMap()); diff != "" {
		t.Errorf("manifest (-want +got):\n%s", diff)
	}

	empty, err := manifest.Build(nil, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"modules": []interface{}{}, "bundles": []interface{}{}}, empty.AsMap())
}

func TestRoundTrip(t *testing.T) {
	g, bundles := build(t)
	s, err := manifest.Build(g, bundles)
	require.NoError(t, err)

	for _, name := range []string{"text", "JSON", "wire", "yaml"} {
		format, err := manifest.ParseFormat(name)
		require.NoError(t, err)
		data, err := manifest.Marshal(s, format)
		require.NoError(t, err, name)
		got, err := manifest.Unmarshal(data, format)
		require.NoError(t, err, name)
		if diff := cmp.Diff(s, got, protocmp.Transform()); diff != "" {
			t.Errorf("%s round trip (-want +got):\n%s", name, diff)
		}
	}

	// The wire encoding is deterministic.
	a, err := manifest.Marshal(s, manifest.Wire)
	require.NoError(t, err)
	b, err := manifest.Marshal(proto.Clone(s).(*structpb.Struct), manifest.Wire)
	require.NoError(t, err)
	require.Equal(t, a, b)

	_, err = manifest.ParseFormat("xml")
	require.Error(t, err)
	_, err = manifest.Marshal(s, "xml")
	require.Error(t, err)
	_, err = manifest.Unmarshal([]byte("{"), manifest.JSON)
	require.Error(t, err)
}
