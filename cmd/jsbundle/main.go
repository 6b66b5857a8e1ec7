// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The jsbundle command merges the modules of a program into bundles.
//
//	jsbundle build [name=]entry...   write bundles to the output directory
//	jsbundle graph entry...          print the dependency graph
//	jsbundle repl entry...           explore the result interactively
//
// Settings come from flags, JSBUNDLE_* environment variables and an
// optional configuration file (jsbundle.yaml, .toml or .json in the
// current directory, or --config), in that order of precedence.
package main // import "go.jsbundle.dev/cmd/jsbundle"

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdout, os.Stderr))
}

func doMain(args []string, stdout, stderr io.Writer) int {
	cmd := newApp(stdout, stderr).rootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "jsbundle: %v\n", err)
		return 1
	}
	return 0
}

// app holds the state shared by the subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	stdout  io.Writer
	stderr  io.Writer
	log     zerolog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{v: viper.New(), stdout: stdout, stderr: stderr, log: zerolog.Nop()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jsbundle",
		Short:         "Merge the modules of a program into bundles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./jsbundle.{yaml,toml,json} if present)")
	flags.String("root", ".", "directory whose files are the modules")
	flags.String("mode", "code-split", "merge mode: code-split or one-bundle")
	flags.String("format", "es", "module format: es, cjs or iife")
	flags.Bool("inline-dynamic", false, "merge dynamically imported modules into their importers")
	flags.StringSlice("external", nil, "specifiers to leave as imports (exact or prefix/*)")
	flags.Bool("strip-exports", false, "drop the exports of entry bundles")
	flags.String("global-name", "", "variable assigned by an iife bundle")
	flags.Int("concurrency", 0, "maximum resolve and load calls in flight (0 means GOMAXPROCS)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(a.buildCmd(), a.graphCmd(), a.replCmd())
	return root
}

// init reads the configuration file and environment and sets up
// logging.
func (a *app) init(cmd *cobra.Command) error {
	// The parsed flags of cmd include those inherited from the root.
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	a.v.SetEnvPrefix("JSBUNDLE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	} else {
		a.v.SetConfigName("jsbundle")
		a.v.AddConfigPath(".")
		if err := a.v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}

	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: !isTerminal(a.stderr)}).
		Level(level).With().Timestamp().Logger()
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug().Str("file", used).Msg("config")
	}
	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
