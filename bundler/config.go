// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"fmt"
	"runtime"
	"strings"

	"go.jsbundle.dev/syntax"
)

// A MergeMode selects how modules are partitioned into output units.
type MergeMode uint8

const (
	// CodeSplit gives each entry its own bundle and moves modules
	// reachable from several entry points into shared chunks.
	// Dynamically imported modules become lazily loaded chunks.
	CodeSplit MergeMode = iota

	// OneBundle gives each entry a single self-contained bundle holding
	// its whole dependency closure, dynamic imports included.
	OneBundle
)

var mergeModeNames = [...]string{
	CodeSplit: "code-split",
	OneBundle: "one-bundle",
}

func (m MergeMode) String() string {
	if int(m) < len(mergeModeNames) {
		return mergeModeNames[m]
	}
	return fmt.Sprintf("MergeMode(%d)", m)
}

// ParseMergeMode returns the MergeMode named by s.
func ParseMergeMode(s string) (MergeMode, error) {
	switch strings.ToLower(s) {
	case "code-split", "codesplit", "split":
		return CodeSplit, nil
	case "one-bundle", "onebundle", "single":
		return OneBundle, nil
	}
	return 0, &ConfigError{Field: "MergeMode", Msg: fmt.Sprintf("unknown merge mode %q", s)}
}

// A ModuleFormat is the module convention of the emitted bundles.
type ModuleFormat uint8

const (
	ES       ModuleFormat = iota // import/export declarations
	CommonJS                     // require() and exports
	IIFE                         // a script that assigns its exports to a global
)

var moduleFormatNames = [...]string{
	ES:       "es",
	CommonJS: "cjs",
	IIFE:     "iife",
}

func (f ModuleFormat) String() string {
	if int(f) < len(moduleFormatNames) {
		return moduleFormatNames[f]
	}
	return fmt.Sprintf("ModuleFormat(%d)", f)
}

// ParseModuleFormat returns the ModuleFormat named by s.
func ParseModuleFormat(s string) (ModuleFormat, error) {
	switch strings.ToLower(s) {
	case "es", "esm", "module":
		return ES, nil
	case "cjs", "commonjs":
		return CommonJS, nil
	case "iife":
		return IIFE, nil
	}
	return 0, &ConfigError{Field: "ModuleFormat", Msg: fmt.Sprintf("unknown module format %q", s)}
}

// Config holds the settings of a bundling run.
// The zero value is a valid configuration.
type Config struct {
	MergeMode MergeMode

	// InlineDynamicImports merges dynamically imported modules into
	// the units that import them instead of emitting lazy chunks.
	// It is implied by OneBundle.
	InlineDynamicImports bool

	ModuleFormat ModuleFormat

	// External lists specifiers that are left as imports of the
	// output. An entry is either an exact specifier or a prefix
	// pattern "prefix/*".
	External []string

	// StripEntryExports drops the exports of entry bundles.
	StripEntryExports bool

	// GlobalName is the variable assigned by an IIFE bundle.
	// It defaults to the entry name, made into an identifier.
	GlobalName string

	// Concurrency bounds the number of Resolve and Load calls in
	// flight. Zero means runtime.GOMAXPROCS(0).
	Concurrency int
}

// Validate reports the first invalid setting of c as a *ConfigError.
func (c *Config) Validate() error {
	if int(c.MergeMode) >= len(mergeModeNames) {
		return &ConfigError{Field: "MergeMode", Msg: fmt.Sprintf("unknown merge mode %d", c.MergeMode)}
	}
	if int(c.ModuleFormat) >= len(moduleFormatNames) {
		return &ConfigError{Field: "ModuleFormat", Msg: fmt.Sprintf("unknown module format %d", c.ModuleFormat)}
	}
	if c.Concurrency < 0 {
		return &ConfigError{Field: "Concurrency", Msg: fmt.Sprintf("negative value %d", c.Concurrency)}
	}
	if c.ModuleFormat == IIFE {
		if c.MergeMode != OneBundle {
			return &ConfigError{Field: "ModuleFormat", Msg: "iife output requires the one-bundle merge mode"}
		}
		if len(c.External) > 0 {
			return &ConfigError{Field: "External", Msg: "iife output cannot import external modules"}
		}
	}
	if c.GlobalName != "" {
		if c.ModuleFormat != IIFE {
			return &ConfigError{Field: "GlobalName", Msg: "a global name applies only to iife output"}
		}
		if !syntax.IsIdentifier(c.GlobalName) {
			return &ConfigError{Field: "GlobalName", Msg: fmt.Sprintf("%q is not an identifier", c.GlobalName)}
		}
	}
	for _, pattern := range c.External {
		prefix := strings.TrimSuffix(pattern, "/*")
		if prefix == "" || strings.Contains(prefix, "*") {
			return &ConfigError{Field: "External", Msg: fmt.Sprintf("invalid pattern %q", pattern)}
		}
	}
	return nil
}

func (c *Config) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// inlineDynamic reports whether dynamic imports are merged into
// their importers' units.
func (c *Config) inlineDynamic() bool {
	return c.InlineDynamicImports || c.MergeMode == OneBundle
}

// isExternal reports whether specifier matches an External entry.
func (c *Config) isExternal(specifier string) bool {
	for _, pattern := range c.External {
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(specifier, prefix+"/") {
				return true
			}
		} else if specifier == pattern {
			return true
		}
	}
	return false
}
