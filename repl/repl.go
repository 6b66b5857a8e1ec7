// Package repl provides an interactive explorer of a bundling run.
//
// It supports readline-style command editing and completion,
// and interrupts through Control-C.
//
// Each input line is a command:
//
//	bundles           list the output bundles
//	show BUNDLE       print the text of a bundle
//	modules           list the graph modules in discovery order
//	where MODULE      list the bundles that contain a module
//	hash BUNDLE       print the content hash of a bundle
//	rebuild           run the bundler again
//	help              list the commands
//	quit              leave the REPL
package repl // import "go.jsbundle.dev/repl"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"go.jsbundle.dev/bundler"
)

var interrupted = make(chan os.Signal, 1)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// A BuildFunc performs a bundling run with a fresh Bundler.
type BuildFunc func(ctx context.Context) (*bundler.Bundler, []*bundler.Bundle, error)

// A Session holds the result of the most recent run.
type Session struct {
	build   BuildFunc
	out     io.Writer
	b       *bundler.Bundler
	bundles []*bundler.Bundle
}

// NewSession returns a session whose commands print to out.
// It has no result until the first Rebuild.
func NewSession(build BuildFunc, out io.Writer) *Session {
	return &Session{build: build, out: out}
}

// Rebuild runs the bundler and, on success, replaces the result of
// the session.
func (s *Session) Rebuild(ctx context.Context) error {
	b, bundles, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.b, s.bundles = b, bundles
	return nil
}

type command struct {
	name, arg, help string
	run             func(s *Session, ctx context.Context, arg string) error
}

var commands []command

func init() {
	commands = []command{
		{"bundles", "", "list the output bundles", (*Session).listBundles},
		{"show", "BUNDLE", "print the text of a bundle", (*Session).show},
		{"modules", "", "list the graph modules in discovery order", (*Session).listModules},
		{"where", "MODULE", "list the bundles that contain a module", (*Session).where},
		{"hash", "BUNDLE", "print the content hash of a bundle", (*Session).hash},
		{"rebuild", "", "run the bundler again", (*Session).rebuild},
		{"help", "", "list the commands", (*Session).help},
		{"quit", "", "leave the REPL", func(*Session, context.Context, string) error { return ErrQuit }},
	}
}

// Exec executes one command line.
func (s *Session) Exec(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	if name == "" {
		return nil
	}
	if name == "exit" {
		name = "quit"
	}
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if (cmd.arg == "") != (arg == "") {
			if cmd.arg == "" {
				return fmt.Errorf("%s takes no argument", name)
			}
			return fmt.Errorf("usage: %s %s", name, cmd.arg)
		}
		if s.b == nil && name != "rebuild" && name != "help" && name != "quit" {
			return errors.New("no result; use rebuild")
		}
		return cmd.run(s, ctx, arg)
	}
	return fmt.Errorf("unknown command %q; try help", name)
}

func (s *Session) listBundles(ctx context.Context, _ string) error {
	for _, b := range s.bundles {
		fmt.Fprintf(s.out, "%-24s %-8s %s %d modules\n", b.FileName(), b.Kind, b.Hash.Short(), len(b.Modules))
	}
	return nil
}

func (s *Session) bundle(name string) (*bundler.Bundle, error) {
	for _, b := range s.bundles {
		if b.Name == name || b.FileName() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no bundle %q", name)
}

func (s *Session) show(ctx context.Context, name string) error {
	b, err := s.bundle(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(s.out, b.Text())
	return err
}

func (s *Session) hash(ctx context.Context, name string) error {
	b, err := s.bundle(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, b.Hash)
	return nil
}

func (s *Session) listModules(ctx context.Context, _ string) error {
	for _, m := range s.b.Graph().Modules {
		fmt.Fprintf(s.out, "%3d %s %s\n", m.Index, m.Hash.Short(), m.ID)
	}
	return nil
}

func (s *Session) where(ctx context.Context, id string) error {
	found := false
	for _, b := range s.bundles {
		for _, m := range b.Modules {
			if string(m) == id {
				fmt.Fprintln(s.out, b.FileName())
				found = true
			}
		}
	}
	if !found {
		return fmt.Errorf("module %s is in no bundle", id)
	}
	return nil
}

func (s *Session) rebuild(ctx context.Context, _ string) error {
	if err := s.Rebuild(ctx); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%d bundles\n", len(s.bundles))
	return nil
}

func (s *Session) help(ctx context.Context, _ string) error {
	for _, cmd := range commands {
		fmt.Fprintf(s.out, "  %-16s %s\n", strings.TrimSpace(cmd.name+" "+cmd.arg), cmd.help)
	}
	return nil
}

// completer offers command names, and bundle names or module ids
// as arguments.
func (s *Session) completer() readline.AutoCompleter {
	bundleNames := func(string) []string {
		var names []string
		for _, b := range s.bundles {
			names = append(names, b.Name)
		}
		return names
	}
	moduleIDs := func(string) []string {
		if s.b == nil {
			return nil
		}
		var ids []string
		for _, m := range s.b.Graph().Modules {
			ids = append(ids, string(m.ID))
		}
		sort.Strings(ids)
		return ids
	}
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		switch cmd.arg {
		case "BUNDLE":
			items = append(items, readline.PcItem(cmd.name, readline.PcItemDynamic(bundleNames)))
		case "MODULE":
			items = append(items, readline.PcItem(cmd.name, readline.PcItemDynamic(moduleIDs)))
		default:
			items = append(items, readline.PcItem(cmd.name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// REPL executes a read, exec, print loop over the session.
//
// Each command gets a context that is cancelled by a SIGINT
// (Control-C), which interrupts a rebuild.
func REPL(s *Session) {
	signal.Notify(interrupted, os.Interrupt)
	defer signal.Stop(interrupted)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "jsbundle> ",
		AutoComplete: s.completer(),
	})
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println(err)
			continue
		} else if err != nil {
			break
		}
		if err := rep(s, line); err == ErrQuit {
			return
		} else if err != nil {
			PrintError(err)
		}
	}
	fmt.Println()
}

// rep executes one line.
func rep(s *Session, line string) error {
	// Note: during Readline calls, Control-C causes Readline to return
	// ErrInterrupt but does not generate a SIGINT.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-interrupted:
			cancel()
		case <-ctx.Done():
		}
	}()
	return s.Exec(ctx, line)
}

// PrintError prints the error to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
