package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.jsbundle.dev/bundler"
	"go.jsbundle.dev/bundletest"
)

func newSession(t *testing.T) (*Session, *bytes.Buffer, *int) {
	prog := bundletest.NewProgram(map[string]string{
		"a.js": `import { d } from "./d.js"; export const a = d`,
		"e.js": `import { d } from "./d.js"; export const e = d`,
		"d.js": `export const d = 1`,
	})
	runs := new(int)
	build := func(ctx context.Context) (*bundler.Bundler, []*bundler.Bundle, error) {
		*runs++
		b, err := bundler.New(bundler.Config{}, prog, prog)
		if err != nil {
			return nil, nil, err
		}
		bundles, err := b.Bundle(ctx, []bundler.Entry{{Name: "a", Specifier: "./a.js"}, {Name: "e", Specifier: "./e.js"}})
		return b, bundles, err
	}
	var out bytes.Buffer
	return NewSession(build, &out), &out, runs
}

func TestExec(t *testing.T) {
	s, out, runs := newSession(t)
	ctx := context.Background()

	require.EqualError(t, s.Exec(ctx, "bundles"), "no result; use rebuild")
	require.NoError(t, s.Exec(ctx, "rebuild"))
	require.Equal(t, "3 bundles\n", out.String())
	require.Equal(t, 1, *runs)

	out.Reset()
	require.NoError(t, s.Exec(ctx, "bundles"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "a.js "), lines[0])
	require.Contains(t, lines[2], "shared")

	out.Reset()
	require.NoError(t, s.Exec(ctx, "  show   a  "))
	require.Equal(t, s.bundles[0].Text(), out.String())

	out.Reset()
	require.NoError(t, s.Exec(ctx, "hash e.js"))
	require.Equal(t, s.bundles[1].Hash.String()+"\n", out.String())

	out.Reset()
	require.NoError(t, s.Exec(ctx, "where /d.js"))
	require.Equal(t, s.bundles[2].FileName()+"\n", out.String())

	out.Reset()
	require.NoError(t, s.Exec(ctx, "modules"))
	require.Contains(t, out.String(), "  0 ")
	require.Contains(t, out.String(), " /d.js\n")

	out.Reset()
	require.NoError(t, s.Exec(ctx, "help"))
	require.Contains(t, out.String(), "show BUNDLE")

	require.NoError(t, s.Exec(ctx, ""))
	require.ErrorIs(t, s.Exec(ctx, "quit"), ErrQuit)
	require.ErrorIs(t, s.Exec(ctx, "exit"), ErrQuit)

	for line, want := range map[string]string{
		"show":           "usage: show BUNDLE",
		"bundles x":      "bundles takes no argument",
		"show nope":      `no bundle "nope"`,
		"where /nope.js": "module /nope.js is in no bundle",
		"frobnicate":     `unknown command "frobnicate"; try help`,
	} {
		require.EqualError(t, s.Exec(ctx, line), want, line)
	}
}

func TestRebuildKeepsResultOnError(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.Rebuild(context.Background()))
	prev := s.bundles

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Exec(ctx, "rebuild"), context.Canceled)
	require.Equal(t, prev, s.bundles)
}

func TestCompleter(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.Rebuild(context.Background()))
	c := s.completer()

	line := []rune("show ")
	candidates, _ := c.Do(line, len(line))
	var got []string
	for _, c := range candidates {
		got = append(got, strings.TrimSpace(string(c)))
	}
	require.Contains(t, got, "a")
	require.Contains(t, got, "e")
}
