// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bundler merges the modules of an ECMAScript-like program
// into bundles.
//
// A Bundler is given entry specifiers, a Resolver that maps import
// specifiers to module ids, and a Loader that supplies the syntax
// tree of each module. It builds the dependency graph, loading
// modules concurrently, and then plans and merges output units:
//
//	entry bundles, one per entry;
//	shared chunks, holding modules used by several entry points
//	(MergeMode CodeSplit only);
//	dynamic chunks, loaded by import() (unless dynamic imports are
//	inlined).
//
// Top-level bindings of the modules merged into one unit are renamed
// apart, and imports between units become linkage declarations in
// the configured ModuleFormat. Equal inputs give byte-identical
// bundles.
package bundler // import "go.jsbundle.dev/bundler"

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// State is the phase of a bundling run.
type State int32

const (
	Idle State = iota
	GraphBuilding
	Planning
	Merging
	Done
	Failed
)

var stateNames = [...]string{
	Idle:          "idle",
	GraphBuilding: "graph-building",
	Planning:      "planning",
	Merging:       "merging",
	Done:          "done",
	Failed:        "failed",
}

func (s State) String() string {
	if 0 <= s && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// An Entry names an entry module of a run. The entry bundle takes
// the entry's Name.
type Entry struct {
	Name      string
	Specifier string
}

// A Bundler performs a single bundling run.
type Bundler struct {
	cfg      Config
	resolver Resolver
	loader   Loader
	log      zerolog.Logger

	state atomic.Int32
	used  atomic.Bool

	mu    sync.Mutex
	graph *Graph
}

// An Option customizes a Bundler.
type Option func(*Bundler)

// WithLogger sets the logger of state transitions and progress.
// The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bundler) { b.log = log }
}

// New returns a Bundler for the given configuration.
func New(cfg Config, r Resolver, l Loader, opts ...Option) (*Bundler, error) {
	if r == nil {
		return nil, &ConfigError{Field: "Resolver", Msg: "nil resolver"}
	}
	if l == nil {
		return nil, &ConfigError{Field: "Loader", Msg: "nil loader"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.External = append([]string(nil), cfg.External...)
	b := &Bundler{cfg: cfg, resolver: r, loader: l, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// State returns the current phase of the run.
func (b *Bundler) State() State { return State(b.state.Load()) }

// Graph returns the dependency graph once it has been built, or nil.
func (b *Bundler) Graph() *Graph {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.graph
}

func (b *Bundler) enter(s State) {
	from := State(b.state.Swap(int32(s)))
	b.log.Debug().Stringer("from", from).Stringer("to", s).Msg("state")
}

// Bundle runs the bundler on the given entries and returns the output
// bundles: entry bundles in entry order, then dynamic and shared
// chunks. A Bundler can be used only once; later calls return
// ErrReused.
func (b *Bundler) Bundle(ctx context.Context, entries []Entry) ([]*Bundle, error) {
	if !b.used.CompareAndSwap(false, true) {
		return nil, ErrReused
	}
	bundles, err := b.run(ctx, entries)
	if err != nil {
		b.enter(Failed)
		b.log.Debug().Err(err).Msg("bundling failed")
		return nil, err
	}
	b.enter(Done)
	return bundles, nil
}

func (b *Bundler) run(ctx context.Context, entries []Entry) ([]*Bundle, error) {
	if err := b.checkEntries(entries); err != nil {
		return nil, err
	}

	b.enter(GraphBuilding)
	g, err := buildGraph(ctx, &b.cfg, b.resolver, b.loader, b.log, entries)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.graph = g
	b.mu.Unlock()
	b.log.Debug().Int("modules", len(g.Modules)).Msg("graph built")

	b.enter(Planning)
	p, err := makePlan(g, &b.cfg, entries)
	if err != nil {
		return nil, err
	}
	b.log.Debug().Int("entry_points", len(p.eps)).Int("units", len(p.units)).Msg("planned")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.enter(Merging)
	bundles, err := merge(p)
	if err != nil {
		return nil, err
	}
	for _, bundle := range bundles {
		b.log.Info().
			Str("bundle", bundle.Name).
			Stringer("kind", bundle.Kind).
			Int("modules", len(bundle.Modules)).
			Str("hash", bundle.Hash.Short()).
			Msg("bundled")
	}
	return bundles, nil
}

// checkEntries validates the entry list.
func (b *Bundler) checkEntries(entries []Entry) error {
	if len(entries) == 0 {
		return &ConfigError{Field: "Entries", Msg: "no entries"}
	}
	if b.cfg.GlobalName != "" && len(entries) > 1 {
		return &ConfigError{Field: "GlobalName", Msg: "a global name requires a single entry"}
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		if !validEntryName(e.Name) {
			return &ConfigError{Field: "Entries", Msg: fmt.Sprintf("invalid entry name %q", e.Name)}
		}
		if seen[e.Name] {
			return &ConfigError{Field: "Entries", Msg: fmt.Sprintf("duplicate entry name %q", e.Name)}
		}
		seen[e.Name] = true
		if e.Specifier == "" {
			return &ConfigError{Field: "Entries", Msg: fmt.Sprintf("entry %q has an empty specifier", e.Name)}
		}
	}
	return nil
}

// validEntryName reports whether name may name an output file.
func validEntryName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for _, r := range name {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
