// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fsload provides a bundler.Resolver and bundler.Loader for
// module trees in a file system.
//
// Module ids are slash-separated paths from the root of the file
// system, with a leading slash: "/src/main.js".
package fsload // import "go.jsbundle.dev/internal/fsload"

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/syntax"
)

// DefaultExtensions are the file extensions tried, in order, for a
// specifier that does not name a file.
var DefaultExtensions = []string{".js", ".mjs", ".jsx", ".ts", ".tsx"}

// DefaultCacheSize is the number of parsed modules kept by default.
const DefaultCacheSize = 1024

// A Loader resolves and loads the modules of a file system.
// Parsed modules are cached across bundling runs, keyed by path,
// size and modification time, so that a rebuild parses only the
// files that changed. A Loader is safe for concurrent use.
type Loader struct {
	fsys  fs.FS
	exts  []string
	log   zerolog.Logger
	cache *lru.Cache[cacheKey, *bundler.LoadedModule]

	hits, misses atomic.Int64
}

type cacheKey struct {
	path  string
	size  int64
	mtime int64
}

// An Option configures a Loader.
type Option func(*options)

type options struct {
	exts      []string
	cacheSize int
	log       zerolog.Logger
}

// WithExtensions sets the extensions probed by Resolve.
func WithExtensions(exts ...string) Option {
	return func(o *options) { o.exts = exts }
}

// WithCacheSize sets the number of parsed modules kept.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLogger sets the logger of cache activity.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// New returns a Loader for fsys.
func New(fsys fs.FS, opts ...Option) (*Loader, error) {
	o := options{exts: DefaultExtensions, cacheSize: DefaultCacheSize, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	cache, err := lru.New[cacheKey, *bundler.LoadedModule](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("fsload: %w", err)
	}
	return &Loader{fsys: fsys, exts: o.exts, log: o.log, cache: cache}, nil
}

// CacheStats returns the number of Load calls served from the cache
// and the number that parsed a file.
func (l *Loader) CacheStats() (hits, misses int64) {
	return l.hits.Load(), l.misses.Load()
}

// Purge empties the cache.
func (l *Loader) Purge() { l.cache.Purge() }

// Resolve implements bundler.Resolver.
//
// A specifier beginning with "./" or "../" is relative to the
// directory of the importer (the root, for an entry); one beginning
// with "/" is relative to the root. Any other specifier names a
// package in the nearest enclosing node_modules directory.
func (l *Loader) Resolve(ctx context.Context, importer bundler.ModuleId, specifier string) (bundler.ModuleId, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := "/"
	if importer != "" {
		dir = path.Dir(string(importer))
	}
	switch {
	case specifier == "":
		return "", errors.New("empty specifier")
	case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"), specifier == ".", specifier == "..":
		return l.resolvePath(path.Join(dir, specifier))
	case strings.HasPrefix(specifier, "/"):
		return l.resolvePath(path.Clean(specifier))
	}

	for {
		if p, ok, err := l.lookup(path.Join(dir, "node_modules", specifier)); err != nil || ok {
			return p, err
		}
		if dir == "/" {
			break
		}
		dir = path.Dir(dir)
	}
	return "", fmt.Errorf("package %s: %w", specifier, fs.ErrNotExist)
}

func (l *Loader) resolvePath(p string) (bundler.ModuleId, error) {
	id, ok, err := l.lookup(p)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%s: %w", p, fs.ErrNotExist)
	}
	return id, nil
}

// lookup finds the module denoted by the absolute path p: a file,
// the file with one of the extensions added, or a directory's
// package.json main or index file.
func (l *Loader) lookup(p string) (bundler.ModuleId, bool, error) {
	if id, ok := l.file(p); ok {
		return id, true, nil
	}
	if !l.isDir(p) {
		return "", false, nil
	}
	if main, err := l.packageMain(p); err != nil {
		return "", false, err
	} else if main != "" {
		mp := path.Join(p, main)
		if id, ok := l.file(mp); ok {
			return id, true, nil
		}
		if l.isDir(mp) {
			if id, ok := l.file(path.Join(mp, "index")); ok {
				return id, true, nil
			}
		}
		return "", false, fmt.Errorf("%s: main %q: %w", path.Join(p, "package.json"), main, fs.ErrNotExist)
	}
	if id, ok := l.file(path.Join(p, "index")); ok {
		return id, true, nil
	}
	return "", false, nil
}

// file returns p, or p with the first extension that names a
// regular file.
func (l *Loader) file(p string) (bundler.ModuleId, bool) {
	if l.isFile(p) {
		return bundler.ModuleId(p), true
	}
	for _, ext := range l.exts {
		if l.isFile(p + ext) {
			return bundler.ModuleId(p + ext), true
		}
	}
	return "", false
}

func (l *Loader) stat(p string) (fs.FileInfo, error) {
	name, err := fsPath(p)
	if err != nil {
		return nil, err
	}
	return fs.Stat(l.fsys, name)
}

func (l *Loader) isFile(p string) bool {
	info, err := l.stat(p)
	return err == nil && info.Mode().IsRegular()
}

func (l *Loader) isDir(p string) bool {
	info, err := l.stat(p)
	return err == nil && info.IsDir()
}

// packageMain returns the "main" field of the package.json file of
// directory dir, or "" if there is none.
func (l *Loader) packageMain(dir string) (string, error) {
	name, err := fsPath(path.Join(dir, "package.json"))
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	var pkg struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("%s: %w", path.Join(dir, "package.json"), err)
	}
	return pkg.Main, nil
}

// Load implements bundler.Loader.
func (l *Loader) Load(ctx context.Context, id bundler.ModuleId) (*bundler.LoadedModule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := fsPath(string(id))
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		return nil, err
	}
	key := cacheKey{string(id), info.Size(), info.ModTime().UnixNano()}
	if lm, ok := l.cache.Get(key); ok {
		l.hits.Add(1)
		l.log.Debug().Str("module", string(id)).Msg("parse cache hit")
		return lm, nil
	}
	l.misses.Add(1)

	src, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, err
	}
	f, err := syntax.Parse(string(id), src)
	if err != nil {
		return nil, err
	}
	lm := &bundler.LoadedModule{File: f}
	lm.Imports, lm.Exports = bundler.Describe(f)
	if lm.Imports == nil {
		lm.Imports = []bundler.ImportRecord{}
	}
	if lm.Exports == nil {
		lm.Exports = []string{}
	}
	l.cache.Add(key, lm)
	return lm, nil
}

// fsPath converts a module path to an fs.FS name.
func fsPath(p string) (string, error) {
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("module path %q is not absolute", p)
	}
	name := strings.TrimPrefix(path.Clean(p), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid module path %q", p)
	}
	return name, nil
}
