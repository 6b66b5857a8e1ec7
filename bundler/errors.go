// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReused is returned by a second call to Bundle on the same Bundler.
var ErrReused = errors.New("bundler: a Bundler can be used for only one run")

// A ResolveError reports that a specifier could not be resolved.
type ResolveError struct {
	Importer  ModuleId // "" for an entry specifier
	Specifier string
	Err       error
}

func (e *ResolveError) Error() string {
	if e.Importer == "" {
		return fmt.Sprintf("cannot resolve entry %q: %v", e.Specifier, e.Err)
	}
	return fmt.Sprintf("%s: cannot resolve %q: %v", e.Importer, e.Specifier, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// A LoadError reports that a resolved module could not be loaded,
// parsed or resolved, or that the loader's description of it was
// inconsistent with its syntax tree.
type LoadError struct {
	Module ModuleId
	Err    error
}

func (e *LoadError) Error() string { return fmt.Sprintf("cannot load %s: %v", e.Module, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// A LinkError reports an import or re-export of a name that no
// module provides.
type LinkError struct {
	Module    ModuleId // the importing module
	Specifier string
	Name      string
	Msg       string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s: import of %s from %q: %s", e.Module, e.Name, e.Specifier, e.Msg)
}

// A MergeConflict reports a violated invariant of planning or merging.
// It indicates a bug in the bundler, not a problem with its input.
type MergeConflict struct {
	Unit    string     // output unit name
	Members []ModuleId // modules of the unit
	Names   []string   // names involved, if any
	Msg     string
}

func (e *MergeConflict) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "internal error: merging unit %q: %s", e.Unit, e.Msg)
	if len(e.Names) > 0 {
		fmt.Fprintf(&buf, " (names: %s)", strings.Join(e.Names, ", "))
	}
	if len(e.Members) > 0 {
		ids := make([]string, len(e.Members))
		for i, id := range e.Members {
			ids[i] = string(id)
		}
		fmt.Fprintf(&buf, " (members: %s)", strings.Join(ids, ", "))
	}
	return buf.String()
}

// A ConfigError reports an invalid or contradictory setting.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Msg) }
