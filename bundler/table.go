// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bundler

import (
	"fmt"
	"strconv"
)

// A BindingKey identifies a top-level binding of an output unit: a
// module-scope name of a member module, or a synthetic binding of
// the unit itself, whose Module is empty.
//
// The namespace object of a module has Name "*"; the anonymous value
// of 'export default' has Name "default".
type BindingKey struct {
	Module ModuleId
	Name   string
}

func (k BindingKey) String() string {
	if k.Module == "" {
		return k.Name
	}
	return fmt.Sprintf("%s:%s", k.Module, k.Name)
}

// A BindingTable maps the top-level bindings of an output unit to
// their final names. No two keys have the same final name.
type BindingTable struct {
	names    map[BindingKey]string
	keys     []BindingKey // in registration order
	taken    map[string]BindingKey
	reserved map[string]bool
}

func newBindingTable(reserved []string) *BindingTable {
	t := &BindingTable{
		names:    make(map[BindingKey]string),
		taken:    make(map[string]BindingKey),
		reserved: make(map[string]bool),
	}
	for _, name := range reserved {
		t.reserved[name] = true
	}
	return t
}

// Lookup returns the final name of a binding.
func (t *BindingTable) Lookup(key BindingKey) (string, bool) {
	name, ok := t.names[key]
	return name, ok
}

// Keys returns the bindings of the table in registration order.
func (t *BindingTable) Keys() []BindingKey { return t.keys }

// Len returns the number of bindings.
func (t *BindingTable) Len() int { return len(t.keys) }

// available reports whether name may be given to a new binding.
func (t *BindingTable) available(name string) bool {
	_, ok := t.taken[name]
	return !ok && !t.reserved[name]
}

// register assigns key a final name and returns it. The first
// registrant of a name keeps it; later ones become preferred$stem,
// then preferred$stem$2, and so on. With an empty stem the
// candidates are preferred$2, preferred$3, ...
func (t *BindingTable) register(key BindingKey, preferred, stem string) string {
	if name, ok := t.names[key]; ok {
		return name
	}
	name := preferred
	if !t.available(name) {
		base := preferred
		if stem != "" {
			base += "$" + stem
			name = base
		}
		for n := 2; !t.available(name); n++ {
			name = base + "$" + strconv.Itoa(n)
		}
	}
	t.names[key] = name
	t.keys = append(t.keys, key)
	t.taken[name] = key
	return name
}

// check verifies that final names are distinct and not reserved.
func (t *BindingTable) check() error {
	seen := make(map[string]BindingKey, len(t.keys))
	for _, key := range t.keys {
		name := t.names[key]
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s are both named %s", prev, key, name)
		}
		if t.reserved[name] {
			return fmt.Errorf("%s is named %s, which is reserved", key, name)
		}
		seen[name] = key
	}
	return nil
}
