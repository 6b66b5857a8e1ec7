// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package manifest describes the result of a bundling run as a
// protocol buffer Struct, for consumption by other tools.
//
// A manifest has the form:
//
//	modules:  [{id, index, hash}]   graph modules, in discovery order
//	bundles:  [{name, kind, file, hash, entries, modules, renamed}]
//
// where renamed maps "module:name" binding keys to their final names,
// for the bindings whose final name differs from their own.
package manifest // import "go.jsbundle.dev/internal/manifest"

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"go.jsbundle.dev/bundler"
)

// A Format is an encoding of a manifest.
type Format string

const (
	Text Format = "text" // protobuf text format
	JSON Format = "json" // protobuf JSON mapping
	Wire Format = "wire" // protobuf binary encoding
	YAML Format = "yaml"
)

// ParseFormat returns the format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON, Wire, YAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown manifest format %q", s)
}

// Build returns the manifest of a run. The graph may be nil.
func Build(g *bundler.Graph, bundles []*bundler.Bundle) (*structpb.Struct, error) {
	var modules []interface{}
	if g != nil {
		for _, m := range g.Modules {
			modules = append(modules, map[string]interface{}{
				"id":    string(m.ID),
				"index": m.Index,
				"hash":  m.Hash.String(),
			})
		}
	}

	var list []interface{}
	for _, b := range bundles {
		renamed := make(map[string]interface{})
		if b.Bindings != nil {
			for _, key := range b.Bindings.Keys() {
				if name, _ := b.Bindings.Lookup(key); key.Module != "" && name != key.Name {
					renamed[key.String()] = name
				}
			}
		}
		list = append(list, map[string]interface{}{
			"name":    b.Name,
			"kind":    b.Kind.String(),
			"file":    b.FileName(),
			"hash":    b.Hash.String(),
			"entries": ids(b.Entries),
			"modules": ids(b.Modules),
			"renamed": renamed,
		})
	}

	s, err := structpb.NewStruct(map[string]interface{}{
		"modules": orEmpty(modules),
		"bundles": orEmpty(list),
	})
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return s, nil
}

func ids(mods []bundler.ModuleId) []interface{} {
	out := make([]interface{}, len(mods))
	for i, id := range mods {
		out[i] = string(id)
	}
	return out
}

func orEmpty(list []interface{}) []interface{} {
	if list == nil {
		return []interface{}{}
	}
	return list
}

// Marshal encodes a manifest.
func Marshal(s *structpb.Struct, format Format) ([]byte, error) {
	switch format {
	case Text:
		return prototext.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	case JSON:
		return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	case Wire:
		return proto.MarshalOptions{Deterministic: true}.Marshal(s)
	case YAML:
		return yaml.Marshal(s.AsMap())
	}
	return nil, fmt.Errorf("unknown manifest format %q", format)
}

// Unmarshal decodes a manifest.
func Unmarshal(data []byte, format Format) (*structpb.Struct, error) {
	s := new(structpb.Struct)
	var err error
	switch format {
	case Text:
		err = prototext.Unmarshal(data, s)
	case JSON:
		err = protojson.Unmarshal(data, s)
	case Wire:
		err = proto.Unmarshal(data, s)
	case YAML:
		var m map[string]interface{}
		if err = yaml.Unmarshal(data, &m); err == nil {
			s, err = structpb.NewStruct(m)
		}
	default:
		err = fmt.Errorf("unknown manifest format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
