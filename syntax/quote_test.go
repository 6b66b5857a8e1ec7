// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"strings"
	"testing"
)

var quoteTests = []struct {
	q   string // quoted
	s   string // unquoted (actual string)
	std bool   // q is standard form for s
}{
	{`""`, "", true},
	{`''`, "", false},
	{`"hello"`, `hello`, true},
	{`'hello'`, `hello`, false},
	{`"quote\"here"`, `quote"here`, true},
	{`'quote"here'`, `quote"here`, false},
	{`"quote'here"`, `quote'here`, true},
	{`'quote\'here'`, `quote'here`, false},
	{`"\b\f\n\r\t\v"`, "\b\f\n\r\t\v", true},
	{`"\x00\x1b\x7f"`, "\x00\x1b\x7f", true},
	{`"\0"`, "\x00", false},
	{`"\x41B\u{43}"`, "ABC", false},
	{`"\xe9"`, "é", false},
	{`"é"`, "é", true},
	{`"\u{1F600}"`, "\U0001F600", false},
	{`"\u2028"`, "\u2028", true},
	{"\"\u2029\"", "\u2029", false},
	{`"back\\slash"`, `back\slash`, true},
	{`"\q\."`, "q.", false},
	{"\"line\\\ncontinued\"", "linecontinued", false},
	{`"./dir/file.js"`, "./dir/file.js", true},
}

func TestQuote(t *testing.T) {
	for _, tt := range quoteTests {
		if !tt.std {
			continue
		}
		if q := Quote(tt.s); q != tt.q {
			t.Errorf("Quote(%#q) = %s, want %s", tt.s, q, tt.q)
		}
	}
}

func TestUnquote(t *testing.T) {
	for _, tt := range quoteTests {
		s, err := unquote(tt.q)
		if err != nil {
			t.Errorf("unquote(%s): %v", tt.q, err)
			continue
		}
		if s != tt.s {
			t.Errorf("unquote(%s) = %#q, want %#q", tt.q, s, tt.s)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	for _, test := range []struct {
		q, want string
	}{
		{`"`, "string literal too short"},
		{`"abc'`, "string literal has invalid quotes"},
		{`"\x4"`, `truncated escape sequence \x4`},
		{`"\xzz"`, `invalid escape sequence \xzz`},
		{`"\u12"`, `truncated escape sequence \u12`},
		{`"\u{12"`, `truncated escape sequence \u{12`},
		{`"\u{zz}"`, `invalid escape sequence \u{zz}`},
		{`"\u{110000}"`, `code point out of range: \u{110000}`},
	} {
		_, err := unquote(test.q)
		if err == nil {
			t.Errorf("unquote(%s) succeeded, want error %q", test.q, test.want)
		} else if !strings.HasPrefix(err.Error(), test.want) {
			t.Errorf("unquote(%s) = %v, want %q", test.q, err, test.want)
		}
	}
}
