// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/internal/manifest"
	"go.jsbundle.dev/repl"
)

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [name=]entry...",
		Short: "Write the bundles of the entries to the output directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.newRunner(args)
			if err != nil {
				return err
			}
			b, bundles, err := r.run(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.writeBundles(bundles); err != nil {
				return err
			}
			if file := a.v.GetString("manifest"); file != "" {
				if err := a.writeManifest(file, b.Graph(), bundles); err != nil {
					return err
				}
			}
			if file := a.v.GetString("metrics"); file != "" {
				if err := r.metrics.WriteTextfile(file); err != nil {
					return err
				}
			}
			a.summary(bundles)
			return nil
		},
	}
	cmd.Flags().String("outdir", "dist", "output directory")
	cmd.Flags().String("manifest", "", "write a manifest of the run to this file")
	cmd.Flags().String("manifest-format", "json", "manifest encoding: text, json, wire or yaml")
	cmd.Flags().String("metrics", "", "write metrics in Prometheus text format to this file")
	return cmd
}

func (a *app) writeBundles(bundles []*bundler.Bundle) error {
	outdir := a.v.GetString("outdir")
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return err
	}
	for _, b := range bundles {
		filename := filepath.Join(outdir, b.FileName())
		if err := os.WriteFile(filename, []byte(b.Text()), 0o644); err != nil {
			return err
		}
		a.log.Info().Str("file", filename).Stringer("hash", b.Hash).Msg("wrote bundle")
	}
	return nil
}

func (a *app) writeManifest(filename string, g *bundler.Graph, bundles []*bundler.Bundle) error {
	format, err := manifest.ParseFormat(a.v.GetString("manifest-format"))
	if err != nil {
		return err
	}
	s, err := manifest.Build(g, bundles)
	if err != nil {
		return err
	}
	data, err := manifest.Marshal(s, format)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// summary prints a table of the bundles.
func (a *app) summary(bundles []*bundler.Bundle) {
	table := tablewriter.NewWriter(a.stdout)
	table.SetHeader([]string{"Bundle", "Kind", "Modules", "Bytes", "Hash"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	for _, b := range bundles {
		table.Append([]string{
			b.FileName(),
			b.Kind.String(),
			strconv.Itoa(len(b.Modules)),
			strconv.Itoa(len(b.Text())),
			b.Hash.Short(),
		})
	}
	table.Render()
}

func (a *app) graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph entry...",
		Short: "Print the dependency graph of the entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.newRunner(args)
			if err != nil {
				return err
			}
			b, _, err := r.run(cmd.Context())
			if b == nil || b.Graph() == nil {
				return err
			}
			g := b.Graph()
			w := a.stdout
			fmt.Fprintln(w, "modules:")
			for _, m := range g.Modules {
				fmt.Fprintf(w, "  %d %s %s\n", m.Index, m.Hash.Short(), m.ID)
			}
			fmt.Fprintln(w, "components:")
			for _, scc := range g.SCCs() {
				ids := make([]string, len(scc))
				for i, m := range scc {
					ids[i] = string(m.ID)
				}
				fmt.Fprintf(w, "  %s\n", strings.Join(ids, " "))
			}
			fmt.Fprintln(w, "edges:")
			for _, e := range g.Edges() {
				kind := "static"
				if e.Dynamic {
					kind = "dynamic"
				}
				if len(e.Names) > 0 {
					kind += " " + strings.Join(e.Names, ", ")
				}
				fmt.Fprintf(w, "  %s -> %s (%s)\n", e.From.ID, e.To.ID, kind)
			}
			// Import errors leave no graph; planning and merging errors
			// are reported after it.
			return err
		},
	}
}

func (a *app) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl entry...",
		Short: "Explore the bundles of the entries interactively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(a.stdout) {
				return errors.New("repl requires a terminal")
			}
			r, err := a.newRunner(args)
			if err != nil {
				return err
			}
			s := repl.NewSession(r.run, a.stdout)
			if err := s.Rebuild(cmd.Context()); err != nil {
				repl.PrintError(err)
			}
			repl.REPL(s)
			return nil
		},
	}
}
