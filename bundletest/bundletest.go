// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bundletest defines utilities for testing the bundler and
// its collaborators.
//
// A Program is an in-memory set of modules that implements both
// bundler.Resolver and bundler.Loader and counts the calls made to
// them. CheckText compares printed output with a golden text and
// reports a context diff.
package bundletest // import "go.jsbundle.dev/bundletest"

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/internal/chunkedfile"
	"go.jsbundle.dev/syntax"
)

// A Reporter is a value to which errors may be reported.
// It is satisfied by *testing.T.
type Reporter interface {
	Helper()
	Errorf(format string, args ...interface{})
}

// DataFile returns the effective filename of the specified
// test data resource. Tests run in their package directory.
var DataFile = func(pkgdir, filename string) string {
	return filepath.Join("..", pkgdir, filename)
}

// A Program is an in-memory set of modules, keyed by absolute
// slash-separated module ids such as "/src/a.js".
//
// Specifiers are resolved like file paths: "./x" and "../x" relative
// to the importer's directory, "/x" from the root, and a bare "x"
// as "/node_modules/x". Each candidate is tried as is, then with a
// ".js" extension, then as a directory holding "index.js".
//
// A Program is safe for concurrent use.
type Program struct {
	// Delay is added to every Resolve and Load call.
	Delay time.Duration

	// Describe makes Load report the imports and exports of each
	// module, as a loader that understands the language would.
	Describe bool

	files map[string]string

	mu       sync.Mutex
	resolves map[string]int // importer + "\x00" + specifier
	loads    map[bundler.ModuleId]int
	inFlight int
	maxIn    int
}

// NewProgram returns a program of the given files.
func NewProgram(files map[string]string) *Program {
	p := &Program{
		files:    make(map[string]string, len(files)),
		resolves: make(map[string]int),
		loads:    make(map[bundler.ModuleId]int),
	}
	for name, src := range files {
		p.files[path.Clean("/"+name)] = src
	}
	return p
}

// FromChunk returns a program of the files of a fixture chunk.
func FromChunk(chunk chunkedfile.Chunk) *Program {
	files := make(map[string]string)
	for _, f := range chunk.Files {
		files[f.Name] = f.Source
	}
	return NewProgram(files)
}

func (p *Program) enter(ctx context.Context) error {
	p.mu.Lock()
	p.inFlight++
	p.maxIn = max(p.maxIn, p.inFlight)
	p.mu.Unlock()
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
		}
	}
	return ctx.Err()
}

func (p *Program) exit() {
	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()
}

// Resolve implements bundler.Resolver.
func (p *Program) Resolve(ctx context.Context, importer bundler.ModuleId, specifier string) (bundler.ModuleId, error) {
	p.mu.Lock()
	p.resolves[string(importer)+"\x00"+specifier]++
	p.mu.Unlock()
	if err := p.enter(ctx); err != nil {
		return "", err
	}
	defer p.exit()

	var name string
	switch {
	case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"):
		dir := "/"
		if importer != "" {
			dir = path.Dir(string(importer))
		}
		name = path.Join(dir, specifier)
	case strings.HasPrefix(specifier, "/"):
		name = path.Clean(specifier)
	default:
		name = path.Join("/node_modules", specifier)
	}
	for _, candidate := range []string{name, name + ".js", name + "/index.js"} {
		if _, ok := p.files[candidate]; ok {
			return bundler.ModuleId(candidate), nil
		}
	}
	return "", fmt.Errorf("module %s: %w", name, fs.ErrNotExist)
}

// Load implements bundler.Loader.
func (p *Program) Load(ctx context.Context, id bundler.ModuleId) (*bundler.LoadedModule, error) {
	p.mu.Lock()
	p.loads[id]++
	p.mu.Unlock()
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	defer p.exit()

	src, ok := p.files[string(id)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, fs.ErrNotExist)
	}
	f, err := syntax.Parse(string(id), src)
	if err != nil {
		return nil, err
	}
	lm := &bundler.LoadedModule{File: f}
	if p.Describe {
		lm.Imports, lm.Exports = bundler.Describe(f)
	}
	return lm, nil
}

// ResolveCalls returns the number of Resolve calls for a pair.
func (p *Program) ResolveCalls(importer bundler.ModuleId, specifier string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolves[string(importer)+"\x00"+specifier]
}

// LoadCalls returns the number of Load calls for a module.
func (p *Program) LoadCalls(id bundler.ModuleId) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loads[id]
}

// Repeated returns a description of every Resolve pair and module
// that was requested more than once, in sorted order.
func (p *Program) Repeated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for key, n := range p.resolves {
		if n > 1 {
			importer, spec, _ := strings.Cut(key, "\x00")
			out = append(out, fmt.Sprintf("resolve %q from %q: %d calls", spec, importer, n))
		}
	}
	for id, n := range p.loads {
		if n > 1 {
			out = append(out, fmt.Sprintf("load %s: %d calls", id, n))
		}
	}
	sort.Strings(out)
	return out
}

// MaxInFlight returns the largest number of calls that were in
// progress at once.
func (p *Program) MaxInFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxIn
}

// CheckText reports a context diff to r if got differs from want.
func CheckText(r Reporter, name, want, got string) {
	r.Helper()
	if got == want {
		return
	}
	diff, err := difflib.GetContextDiffString(difflib.ContextDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
		Eol:      "\n",
	})
	if err != nil {
		r.Errorf("%s: %v", name, err)
		return
	}
	r.Errorf("%s: output differs:\n%s", name, diff)
}
