// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"go.jsbundle.dev/resolve"
	"go.jsbundle.dev/syntax"
)

// A Graph is the dependency graph of a bundling run.
// It is immutable once built.
type Graph struct {
	Modules []*Module // in discovery order
	Entries []*Module // the module of each entry, in entry order

	byID map[ModuleId]*Module
	link *linker
}

// Module returns the module with the given id, or nil.
func (g *Graph) Module(id ModuleId) *Module { return g.byID[id] }

// An Edge is an import relation between two modules of the graph.
type Edge struct {
	From, To  *Module
	Specifier string
	Dynamic   bool // imported only by import()
	Names     []string
}

// Edges returns the edges of the graph, ordered by importer
// discovery order and then by import source order. Imports of
// external modules have no edge.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, m := range g.Modules {
		for i, rec := range m.Imports {
			if m.targets[i] < 0 {
				continue
			}
			edges = append(edges, Edge{
				From:      m,
				To:        g.Modules[m.targets[i]],
				Specifier: rec.Specifier,
				Dynamic:   !rec.Static,
				Names:     rec.Names,
			})
		}
	}
	return edges
}

// SCCs returns the strongly connected components of the graph of
// static imports, dependencies first.
func (g *Graph) SCCs() [][]*Module {
	var out [][]*Module
	for _, scc := range g.sccs(false) {
		mods := make([]*Module, len(scc))
		for i, j := range scc {
			mods[i] = g.Modules[j]
		}
		out = append(out, mods)
	}
	return out
}

// A loadEntry is the claim of the first goroutine to discover a module.
type loadEntry struct {
	mod *Module
}

type resolveKey struct {
	importer  ModuleId
	specifier string
}

// A resolveEntry memoizes one call to Resolve; done is closed once
// id or err is set.
type resolveEntry struct {
	done chan struct{}
	id   ModuleId
	err  error
}

// A builder constructs the graph. Sibling imports are resolved and
// loaded concurrently; the number of calls in flight is bounded by a
// semaphore.
type builder struct {
	cfg      *Config
	resolver Resolver
	loader   Loader
	log      zerolog.Logger

	g   *errgroup.Group
	ctx context.Context
	sem chan struct{}

	mu       sync.Mutex
	loads    map[ModuleId]*loadEntry
	resolved map[resolveKey]*resolveEntry
}

// buildGraph resolves the entry specifiers and loads their transitive
// imports. It returns the first error encountered.
func buildGraph(ctx context.Context, cfg *Config, r Resolver, l Loader, log zerolog.Logger, entries []Entry) (*Graph, error) {
	g, ctx := errgroup.WithContext(ctx)
	b := &builder{
		cfg:      cfg,
		resolver: r,
		loader:   l,
		log:      log,
		g:        g,
		ctx:      ctx,
		sem:      make(chan struct{}, cfg.concurrency()),
		loads:    make(map[ModuleId]*loadEntry),
		resolved: make(map[resolveKey]*resolveEntry),
	}

	entryIDs := make([]ModuleId, len(entries))
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			id, err := b.resolve("", e.Specifier)
			if err != nil {
				return err
			}
			entryIDs[i] = id
			b.visit(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph := b.finish(entryIDs)
	graph.link = newLinker(graph, cfg)
	if err := graph.link.check(); err != nil {
		return nil, err
	}
	return graph, nil
}

// acquire waits for a free slot of the semaphore.
func (b *builder) acquire() error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-b.ctx.Done():
		return b.ctx.Err()
	}
}

func (b *builder) release() { <-b.sem }

// resolve calls the resolver at most once per (importer, specifier).
// A second caller for the same pair waits for the first one's result.
func (b *builder) resolve(importer ModuleId, specifier string) (ModuleId, error) {
	key := resolveKey{importer, specifier}
	b.mu.Lock()
	e, ok := b.resolved[key]
	if !ok {
		e = &resolveEntry{done: make(chan struct{})}
		b.resolved[key] = e
	}
	b.mu.Unlock()
	if ok {
		select {
		case <-e.done:
			return e.id, e.err
		case <-b.ctx.Done():
			return "", &ResolveError{Importer: importer, Specifier: specifier, Err: b.ctx.Err()}
		}
	}
	defer close(e.done)

	if err := b.acquire(); err != nil {
		e.err = &ResolveError{Importer: importer, Specifier: specifier, Err: err}
		return "", e.err
	}
	id, err := b.resolver.Resolve(b.ctx, importer, specifier)
	b.release()
	if err == nil && id == "" {
		err = errors.New("resolver returned an empty module id")
	}
	if err != nil {
		e.err = &ResolveError{Importer: importer, Specifier: specifier, Err: err}
		return "", e.err
	}
	e.id = id
	return id, nil
}

// visit claims id for loading unless another goroutine already has.
func (b *builder) visit(id ModuleId) {
	b.mu.Lock()
	_, ok := b.loads[id]
	if ok {
		b.mu.Unlock()
		return // joined: the claimant loads it
	}
	e := new(loadEntry)
	b.loads[id] = e
	b.mu.Unlock()

	b.g.Go(func() error { return b.load(id, e) })
}

func (b *builder) load(id ModuleId, e *loadEntry) error {
	if err := b.acquire(); err != nil {
		return &LoadError{Module: id, Err: err}
	}
	lm, err := b.loader.Load(b.ctx, id)
	b.release()
	if err != nil {
		return &LoadError{Module: id, Err: err}
	}
	mod, err := newModule(id, lm)
	if err != nil {
		return &LoadError{Module: id, Err: err}
	}
	b.log.Debug().Str("module", string(id)).Int("imports", len(mod.Imports)).Msg("loaded")

	// Results are published by the errgroup's Wait.
	e.mod = mod

	for i, rec := range mod.Imports {
		if b.cfg.isExternal(rec.Specifier) {
			continue
		}
		i, spec := i, rec.Specifier
		b.g.Go(func() error {
			target, err := b.resolve(id, spec)
			if err != nil {
				return err
			}
			mod.targetIDs[i] = target
			b.visit(target)
			return nil
		})
	}
	return nil
}

// newModule checks and resolves a loaded syntax tree.
func newModule(id ModuleId, lm *LoadedModule) (*Module, error) {
	if lm == nil || lm.File == nil {
		return nil, errors.New("loader returned no syntax tree")
	}

	// The loader's tree is shared; resolve a private copy.
	f := syntax.Clone(lm.File)
	f.Bindings, f.Exports, f.StarExports, f.Globals = nil, nil, nil, nil
	if err := resolve.File(f); err != nil {
		return nil, err
	}

	imports, exports := Describe(f)
	if lm.Imports != nil {
		declared := make(map[string]bool)
		for _, rec := range lm.Imports {
			declared[rec.Specifier] = true
		}
		for _, rec := range imports {
			if !declared[rec.Specifier] {
				return nil, fmt.Errorf("loader omitted import %q", rec.Specifier)
			}
		}
	}
	if lm.Exports != nil && !sameSet(lm.Exports, exports) {
		return nil, fmt.Errorf("loader reported exports %q, module declares %q", lm.Exports, exports)
	}

	mod := &Module{
		ID:        id,
		File:      f,
		Hash:      HashFile(f),
		Imports:   imports,
		Exports:   exports,
		targetIDs: make([]ModuleId, len(imports)),
		targets:   make([]int, len(imports)),
		specs:     make(map[string]int, len(imports)),
	}
	for i, rec := range imports {
		mod.specs[rec.Specifier] = i
	}
	return mod, nil
}

func sameSet(x, y []string) bool {
	if len(x) != len(y) {
		return false
	}
	x = append([]string(nil), x...)
	y = append([]string(nil), y...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// finish assigns discovery indices by a breadth-first traversal from
// the entries, in entry order and then import order, so that the
// order never depends on goroutine scheduling.
func (b *builder) finish(entryIDs []ModuleId) *Graph {
	graph := &Graph{byID: make(map[ModuleId]*Module)}
	var queue []*Module
	add := func(id ModuleId) *Module {
		if m, ok := graph.byID[id]; ok {
			return m
		}
		m := b.loads[id].mod
		m.Index = len(graph.Modules)
		graph.Modules = append(graph.Modules, m)
		graph.byID[id] = m
		queue = append(queue, m)
		return m
	}
	for _, id := range entryIDs {
		graph.Entries = append(graph.Entries, add(id))
	}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		for _, id := range m.targetIDs {
			if id != "" {
				add(id)
			}
		}
	}
	for _, m := range graph.Modules {
		for i, id := range m.targetIDs {
			if id == "" {
				m.targets[i] = -1
			} else {
				m.targets[i] = graph.byID[id].Index
			}
		}
	}
	return graph
}
