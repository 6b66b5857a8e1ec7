// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"go.jsbundle.dev/syntax"
)

// A ContentHash is a digest of the canonical text of a syntax tree.
// Trees that print identically have equal hashes.
type ContentHash uint64

// String returns the hash as 16 lowercase hexadecimal digits.
func (h ContentHash) String() string { return fmt.Sprintf("%016x", uint64(h)) }

// Short returns the first 8 digits of the hash.
func (h ContentHash) Short() string { return h.String()[:8] }

// HashFile returns the content hash of a syntax tree.
func HashFile(f *syntax.File) ContentHash {
	return ContentHash(xxhash.Sum64String(syntax.Format(f)))
}

// hashMembers returns the identity of a set of modules: a hash over
// their ids and content hashes, in id order.
func hashMembers(mods []*Module) ContentHash {
	sorted := append([]*Module(nil), mods...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	d := xxhash.New()
	var buf [8]byte
	for _, m := range sorted {
		d.WriteString(string(m.ID))
		d.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], uint64(m.Hash))
		d.Write(buf[:])
	}
	return ContentHash(d.Sum64())
}

// stem returns the last path segment of a module id, without
// extensions, as an identifier.
func stem(id string) string {
	if i := strings.LastIndexAny(id, `/\:`); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.IndexByte(id, '.'); i > 0 {
		id = id[:i]
	}
	return identifier(id)
}

// identifier replaces the characters of s that may not appear in an
// identifier by underscores.
func identifier(s string) string {
	var buf strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			buf.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				buf.WriteByte('_')
			}
			buf.WriteRune(r)
		default:
			buf.WriteByte('_')
		}
	}
	if buf.Len() == 0 || syntax.IsKeyword(buf.String()) {
		return "_" + buf.String()
	}
	return buf.String()
}

// fileStem is like stem but yields a name suitable for an output file.
func fileStem(id string) string {
	s := stem(id)
	s = strings.Trim(strings.ReplaceAll(s, "$", "_"), "_")
	if s == "" {
		return "module"
	}
	return s
}
