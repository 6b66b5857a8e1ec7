// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/internal/fsload"
	"go.jsbundle.dev/internal/metrics"
)

// config returns the bundler configuration of the settings.
func (a *app) config() (bundler.Config, error) {
	var cfg bundler.Config
	var err error
	if cfg.MergeMode, err = bundler.ParseMergeMode(a.v.GetString("mode")); err != nil {
		return cfg, err
	}
	if cfg.ModuleFormat, err = bundler.ParseModuleFormat(a.v.GetString("format")); err != nil {
		return cfg, err
	}
	cfg.InlineDynamicImports = a.v.GetBool("inline-dynamic")
	cfg.External = a.v.GetStringSlice("external")
	cfg.StripEntryExports = a.v.GetBool("strip-exports")
	cfg.GlobalName = a.v.GetString("global-name")
	cfg.Concurrency = a.v.GetInt("concurrency")
	return cfg, cfg.Validate()
}

// parseEntries parses arguments of the form [name=]specifier.
// Without a name, the entry is named after the specifier's file.
// A specifier without a leading "./", "../" or "/" is taken to be
// relative to the root.
func parseEntries(args []string) ([]bundler.Entry, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no entries")
	}
	var entries []bundler.Entry
	for _, arg := range args {
		name, spec, ok := strings.Cut(arg, "=")
		if !ok {
			spec = arg
			name = path.Base(spec)
			if i := strings.IndexByte(name, '.'); i > 0 {
				name = name[:i]
			}
		}
		if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") && !strings.HasPrefix(spec, "/") {
			spec = "./" + spec
		}
		entries = append(entries, bundler.Entry{Name: name, Specifier: spec})
	}
	return entries, nil
}

// A runner performs bundling runs over the root directory, sharing
// one parse cache.
type runner struct {
	cfg     bundler.Config
	entries []bundler.Entry
	loader  *fsload.Loader
	metrics *metrics.Metrics
	app     *app
}

func (a *app) newRunner(args []string) (*runner, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	entries, err := parseEntries(args)
	if err != nil {
		return nil, err
	}
	loader, err := fsload.New(os.DirFS(a.v.GetString("root")), fsload.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	return &runner{cfg: cfg, entries: entries, loader: loader, metrics: metrics.New(), app: a}, nil
}

// run performs one bundling run.
func (r *runner) run(ctx context.Context) (*bundler.Bundler, []*bundler.Bundle, error) {
	res, ld := r.metrics.Instrument(r.loader, r.loader)
	b, err := bundler.New(r.cfg, res, ld, bundler.WithLogger(r.app.log))
	if err != nil {
		return nil, nil, err
	}
	bundles, err := b.Bundle(ctx, r.entries)
	r.metrics.Record(b, bundles, err)
	hits, misses := r.loader.CacheStats()
	r.app.log.Debug().Int64("hits", hits).Int64("misses", misses).Msg("parse cache")
	return b, bundles, err
}
