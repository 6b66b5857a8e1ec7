// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// String interpretation and quoting.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// unescaper maps the single-character escapes to the runes they denote.
var unescaper = map[byte]byte{
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'0':  0,
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

// unquote unquotes the quoted string, returning the actual
// string value. The quote may be ' or ".
func unquote(quoted string) (s string, err error) {
	if len(quoted) < 2 {
		return "", errors.New("string literal too short")
	}
	quote := quoted[0]
	if quote != '"' && quote != '\'' || quoted[len(quoted)-1] != quote {
		return "", errors.New("string literal has invalid quotes")
	}
	quoted = quoted[1 : len(quoted)-1]

	if !strings.Contains(quoted, `\`) {
		return quoted, nil
	}

	var buf strings.Builder
	for len(quoted) > 0 {
		i := strings.IndexByte(quoted, '\\')
		if i < 0 {
			buf.WriteString(quoted)
			break
		}
		buf.WriteString(quoted[:i])
		quoted = quoted[i:]

		if len(quoted) == 1 {
			return "", errors.New(`truncated escape sequence \`)
		}

		switch c := quoted[1]; c {
		case '\n':
			// line continuation
			quoted = quoted[2:]

		case 'x':
			if len(quoted) < 4 {
				return "", fmt.Errorf(`truncated escape sequence %s`, quoted)
			}
			n, err := strconv.ParseUint(quoted[2:4], 16, 8)
			if err != nil {
				return "", fmt.Errorf(`invalid escape sequence %s`, quoted[:4])
			}
			buf.WriteRune(rune(n))
			quoted = quoted[4:]

		case 'u':
			var (
				hex  string
				skip int
			)
			if strings.HasPrefix(quoted, `\u{`) {
				end := strings.IndexByte(quoted, '}')
				if end < 0 {
					return "", fmt.Errorf(`truncated escape sequence %s`, quoted)
				}
				hex, skip = quoted[3:end], end+1
			} else {
				if len(quoted) < 6 {
					return "", fmt.Errorf(`truncated escape sequence %s`, quoted)
				}
				hex, skip = quoted[2:6], 6
			}
			n, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				return "", fmt.Errorf(`invalid escape sequence %s`, quoted[:skip])
			}
			if n > utf8.MaxRune {
				return "", fmt.Errorf(`code point out of range: %s`, quoted[:skip])
			}
			buf.WriteRune(rune(n))
			quoted = quoted[skip:]

		default:
			if r, ok := unescaper[c]; ok {
				buf.WriteByte(r)
			} else {
				// Any other escaped character denotes itself.
				buf.WriteByte(c)
			}
			quoted = quoted[2:]
		}
	}
	return buf.String(), nil
}

// Quote returns a double-quoted string literal denoting s.
func Quote(s string) string {
	var buf strings.Builder
	buf.Grow(len(s) + 2)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\v':
			buf.WriteString(`\v`)
		case utf8.RuneError:
			buf.WriteString(`\ufffd`)
		default:
			switch {
			case r < 0x20 || r == 0x7f:
				fmt.Fprintf(&buf, `\x%02x`, r)
			case r == 0x2028 || r == 0x2029:
				fmt.Fprintf(&buf, `\u%04x`, r)
			default:
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
