// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"fmt"

	"go.jsbundle.dev/syntax"
)

// A BundleKind classifies an output bundle.
type BundleKind uint8

const (
	EntryBundle   BundleKind = iota // loaded for a user entry
	SharedBundle                    // modules common to several entry points
	DynamicBundle                   // loaded by import() of its target module
)

var bundleKindNames = [...]string{
	EntryBundle:   "entry",
	SharedBundle:  "shared",
	DynamicBundle: "dynamic",
}

func (k BundleKind) String() string {
	if int(k) < len(bundleKindNames) {
		return bundleKindNames[k]
	}
	return fmt.Sprintf("BundleKind(%d)", k)
}

// A Bundle is an output unit: a merged syntax tree and its provenance.
type Bundle struct {
	Name string
	Kind BundleKind
	File *syntax.File
	Hash ContentHash // hash of the printed File

	// Entries holds the modules for which the bundle is loaded: the
	// entry module, the dynamically imported module, or for a shared
	// chunk the entry points that share it.
	Entries []ModuleId

	// Modules lists the merged modules in output order.
	Modules []ModuleId

	Bindings *BindingTable
}

// FileName returns the name of the bundle's output file, by which
// other bundles import it.
func (b *Bundle) FileName() string { return b.Name + ".js" }

// Text returns the canonical text of the bundle.
func (b *Bundle) Text() string { return syntax.Format(b.File) }

func (b *Bundle) String() string { return fmt.Sprintf("%s %s (%s)", b.Kind, b.Name, b.Hash.Short()) }
