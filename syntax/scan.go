// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// A lexical scanner for the module language.

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A Token represents a lexical token.
type Token int8

const (
	ILLEGAL Token = iota
	EOF

	IDENT  // x
	NUMBER // 123, 1.5, 0xff
	STRING // "foo" or 'foo'

	// Punctuation
	LPAREN   // (
	RPAREN   // )
	LBRACK   // [
	RBRACK   // ]
	LBRACE   // {
	RBRACE   // }
	COMMA    // ,
	SEMI     // ;
	DOT      // .
	ELLIPSIS // ...
	COLON    // :
	QUESTION // ?
	ARROW    // =>

	// Assignment operators
	EQ         // =
	PLUS_EQ    // +=
	MINUS_EQ   // -=
	STAR_EQ    // *=
	SLASH_EQ   // /=
	PERCENT_EQ // %=

	// Arithmetic and logical operators
	PLUS       // +
	MINUS      // -
	STAR       // *
	SLASH      // /
	PERCENT    // %
	INC        // ++
	DEC        // --
	EQL        // ==
	NEQ        // !=
	STRICT_EQL // ===
	STRICT_NEQ // !==
	LT         // <
	GT         // >
	LE         // <=
	GE         // >=
	ANDAND     // &&
	OROR       // ||
	NULLISH    // ??
	NOT        // !

	// Keywords
	BREAK
	CATCH
	CLASS
	CONST
	CONTINUE
	DEFAULT
	DELETE
	ELSE
	EXPORT
	EXTENDS
	FALSE
	FINALLY
	FOR
	FUNCTION
	IF
	IMPORT
	IN
	INSTANCEOF
	LET
	NEW
	NULL
	RETURN
	THIS
	THROW
	TRUE
	TRY
	TYPEOF
	VAR
	VOID
	WHILE

	maxToken
)

func (tok Token) String() string { return tokenNames[tok] }

// GoString is like String but quotes punctuation tokens.
// Use Sprintf("%#v", tok) when constructing error messages.
func (tok Token) GoString() string {
	if tok >= LPAREN && tok <= NOT {
		return "'" + tokenNames[tok] + "'"
	}
	return tokenNames[tok]
}

var tokenNames = [...]string{
	ILLEGAL:    "illegal token",
	EOF:        "end of file",
	IDENT:      "identifier",
	NUMBER:     "number literal",
	STRING:     "string literal",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACK:     "[",
	RBRACK:     "]",
	LBRACE:     "{",
	RBRACE:     "}",
	COMMA:      ",",
	SEMI:       ";",
	DOT:        ".",
	ELLIPSIS:   "...",
	COLON:      ":",
	QUESTION:   "?",
	ARROW:      "=>",
	EQ:         "=",
	PLUS_EQ:    "+=",
	MINUS_EQ:   "-=",
	STAR_EQ:    "*=",
	SLASH_EQ:   "/=",
	PERCENT_EQ: "%=",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	PERCENT:    "%",
	INC:        "++",
	DEC:        "--",
	EQL:        "==",
	NEQ:        "!=",
	STRICT_EQL: "===",
	STRICT_NEQ: "!==",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	ANDAND:     "&&",
	OROR:       "||",
	NULLISH:    "??",
	NOT:        "!",
	BREAK:      "break",
	CATCH:      "catch",
	CLASS:      "class",
	CONST:      "const",
	CONTINUE:   "continue",
	DEFAULT:    "default",
	DELETE:     "delete",
	ELSE:       "else",
	EXPORT:     "export",
	EXTENDS:    "extends",
	FALSE:      "false",
	FINALLY:    "finally",
	FOR:        "for",
	FUNCTION:   "function",
	IF:         "if",
	IMPORT:     "import",
	IN:         "in",
	INSTANCEOF: "instanceof",
	LET:        "let",
	NEW:        "new",
	NULL:       "null",
	RETURN:     "return",
	THIS:       "this",
	THROW:      "throw",
	TRUE:       "true",
	TRY:        "try",
	TYPEOF:     "typeof",
	VAR:        "var",
	VOID:       "void",
	WHILE:      "while",
}

// keywordToken records the special tokens for
// strings that should not be treated as ordinary identifiers.
var keywordToken = make(map[string]Token)

func init() {
	for tok := BREAK; tok < maxToken; tok++ {
		keywordToken[tokenNames[tok]] = tok
	}
}

// IsKeyword reports whether name is a reserved word of the language.
func IsKeyword(name string) bool {
	_, ok := keywordToken[name]
	return ok
}

// IsIdentifier reports whether s is a valid identifier that is not a keyword.
func IsIdentifier(s string) bool {
	if s == "" || IsKeyword(s) {
		return false
	}
	for i, r := range s {
		if !isIdentStart(r) && (i == 0 || !isIdentPart(r)) {
			return false
		}
	}
	return true
}

// A Position describes the location of a rune of input.
type Position struct {
	file *string // filename (indirect for compactness)
	Line int32   // 1-based line number; 0 if line unknown
	Col  int32   // 1-based column (rune) number; 0 if column unknown
}

// IsValid reports whether the position is valid.
func (p Position) IsValid() bool { return p.file != nil }

// Filename returns the name of the file containing this position.
func (p Position) Filename() string {
	if p.file != nil {
		return *p.file
	}
	return "<invalid>"
}

// MakePosition returns position with the specified components.
func MakePosition(file *string, line, col int32) Position { return Position{file, line, col} }

// add returns the position at the end of s, assuming it starts at p.
func (p Position) add(s string) Position {
	if n := strings.Count(s, "\n"); n > 0 {
		p.Line += int32(n)
		s = s[strings.LastIndex(s, "\n")+1:]
		p.Col = 1
	}
	p.Col += int32(utf8.RuneCountInString(s))
	return p
}

func (p Position) String() string {
	file := p.Filename()
	if p.Line > 0 {
		if p.Col > 0 {
			return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
		}
		return fmt.Sprintf("%s:%d", file, p.Line)
	}
	return file
}

func (p Position) isBefore(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// An Error describes the nature and position of a scanner or parser error.
type Error struct {
	Pos Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// A tokenValue holds the details of a single token.
type tokenValue struct {
	raw     string   // raw text of token
	number  float64  // decoded number
	string  string   // decoded string
	pos     Position // start position of token
	newline bool     // a line terminator precedes the token
}

// A scanner turns a source file into a sequence of tokens.
type scanner struct {
	rest     []byte // rest of input
	token    []byte // token being scanned
	pos      Position
	newline  bool // a line terminator was skipped since the last token
	filename *string
}

func newScanner(filename string, src interface{}) (*scanner, error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	return &scanner{
		rest:     data,
		pos:      MakePosition(&filename, 1, 1),
		filename: &filename,
	}, nil
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case io.Reader:
		data, err := io.ReadAll(src)
		if err != nil {
			err = &os.PathError{Op: "read", Path: filename, Err: err}
			return nil, err
		}
		return data, nil
	case nil:
		return os.ReadFile(filename)
	default:
		return nil, fmt.Errorf("invalid source: %T", src)
	}
}

// An error reports an error at position pos and stops scanning.
func (sc *scanner) error(pos Position, s string) {
	panic(Error{pos, s})
}

func (sc *scanner) errorf(pos Position, format string, args ...interface{}) {
	sc.error(pos, fmt.Sprintf(format, args...))
}

func (sc *scanner) recover(err *error) {
	// The scanner and parser panic both for routine errors like
	// syntax errors and for programmer bugs like array index
	// errors.  Turn both into error returns.  Catching bug panics
	// is especially important when processing many files.
	switch e := recover().(type) {
	case nil:
		// no panic
	case Error:
		*err = e
	default:
		*err = Error{sc.pos, fmt.Sprintf("internal error: %v", e)}
	}
}

// eof reports whether the input has reached end of file.
func (sc *scanner) eof() bool {
	return len(sc.rest) == 0
}

// peekRune returns the next rune in the input without consuming it.
func (sc *scanner) peekRune() rune {
	if len(sc.rest) == 0 {
		return 0
	}
	if b := sc.rest[0]; b < utf8.RuneSelf {
		if b == '\r' {
			return '\n'
		}
		return rune(b)
	}
	r, _ := utf8.DecodeRune(sc.rest)
	return r
}

// readRune consumes and returns the next rune in the input.
// Newlines in Unix, DOS, or Mac format are treated as one rune, '\n'.
func (sc *scanner) readRune() rune {
	if len(sc.rest) == 0 {
		sc.error(sc.pos, "internal scanner error: readRune at EOF")
	}
	if b := sc.rest[0]; b < utf8.RuneSelf {
		r := rune(b)
		sc.rest = sc.rest[1:]
		if r == '\r' {
			if len(sc.rest) > 0 && sc.rest[0] == '\n' {
				sc.rest = sc.rest[1:]
			}
			r = '\n'
		}
		if r == '\n' {
			sc.pos.Line++
			sc.pos.Col = 1
		} else {
			sc.pos.Col++
		}
		return r
	}
	r, size := utf8.DecodeRune(sc.rest)
	sc.rest = sc.rest[size:]
	sc.pos.Col++
	return r
}

// startToken marks the beginning of the next input token.
// It must be followed by a call to endToken once the token has
// been consumed using readRune.
func (sc *scanner) startToken(val *tokenValue) {
	sc.token = sc.rest
	val.raw = ""
	val.pos = sc.pos
	val.newline = sc.newline
	sc.newline = false
}

// endToken marks the end of an input token.
// It records the actual token string in val.raw if the caller
// has not done that already.
func (sc *scanner) endToken(val *tokenValue) {
	if val.raw == "" {
		val.raw = string(sc.token[:len(sc.token)-len(sc.rest)])
	}
}

// nextToken is called by the parser to obtain the next input token.
// It returns the token value and sets val to the data associated with
// the token.
func (sc *scanner) nextToken(val *tokenValue) Token {
	return sc.scanToken(val)
}

func (sc *scanner) scanToken(val *tokenValue) Token {
	// Skip spaces and comments.
	for {
		if sc.eof() {
			sc.startToken(val)
			sc.endToken(val)
			return EOF
		}
		c := sc.peekRune()
		switch {
		case c == '\n':
			sc.newline = true
			sc.readRune()
			continue
		case c == ' ' || c == '\t' || c == '\f' || c == '\v' || c == '\uFEFF':
			sc.readRune()
			continue
		case c == '/' && len(sc.rest) > 1 && sc.rest[1] == '/':
			for !sc.eof() && sc.peekRune() != '\n' {
				sc.readRune()
			}
			continue
		case c == '/' && len(sc.rest) > 1 && sc.rest[1] == '*':
			pos := sc.pos
			sc.readRune()
			sc.readRune()
			for {
				if sc.eof() {
					sc.error(pos, "unterminated comment")
				}
				if r := sc.readRune(); r == '\n' {
					sc.newline = true
				} else if r == '*' && sc.peekRune() == '/' {
					sc.readRune()
					break
				}
			}
			continue
		}
		break
	}

	sc.startToken(val)
	c := sc.peekRune()

	// identifier or keyword
	if isIdentStart(c) {
		for isIdentPart(sc.peekRune()) {
			sc.readRune()
		}
		sc.endToken(val)
		if tok, ok := keywordToken[val.raw]; ok {
			return tok
		}
		return IDENT
	}

	// number
	if isDigit(c) || c == '.' && len(sc.rest) > 1 && isDigit(rune(sc.rest[1])) {
		return sc.scanNumber(val)
	}

	// string literal
	if c == '"' || c == '\'' {
		return sc.scanString(val, c)
	}

	// punctuation
	sc.readRune()
	switch c {
	case '(':
		return sc.punct(val, LPAREN)
	case ')':
		return sc.punct(val, RPAREN)
	case '[':
		return sc.punct(val, LBRACK)
	case ']':
		return sc.punct(val, RBRACK)
	case '{':
		return sc.punct(val, LBRACE)
	case '}':
		return sc.punct(val, RBRACE)
	case ',':
		return sc.punct(val, COMMA)
	case ';':
		return sc.punct(val, SEMI)
	case ':':
		return sc.punct(val, COLON)
	case '.':
		if len(sc.rest) >= 2 && sc.rest[0] == '.' && sc.rest[1] == '.' {
			sc.readRune()
			sc.readRune()
			return sc.punct(val, ELLIPSIS)
		}
		return sc.punct(val, DOT)
	case '?':
		if sc.peekRune() == '?' {
			sc.readRune()
			return sc.punct(val, NULLISH)
		}
		return sc.punct(val, QUESTION)
	case '=':
		switch sc.peekRune() {
		case '>':
			sc.readRune()
			return sc.punct(val, ARROW)
		case '=':
			sc.readRune()
			if sc.peekRune() == '=' {
				sc.readRune()
				return sc.punct(val, STRICT_EQL)
			}
			return sc.punct(val, EQL)
		}
		return sc.punct(val, EQ)
	case '!':
		if sc.peekRune() == '=' {
			sc.readRune()
			if sc.peekRune() == '=' {
				sc.readRune()
				return sc.punct(val, STRICT_NEQ)
			}
			return sc.punct(val, NEQ)
		}
		return sc.punct(val, NOT)
	case '<':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, LE)
		}
		return sc.punct(val, LT)
	case '>':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, GE)
		}
		return sc.punct(val, GT)
	case '&':
		if sc.peekRune() == '&' {
			sc.readRune()
			return sc.punct(val, ANDAND)
		}
	case '|':
		if sc.peekRune() == '|' {
			sc.readRune()
			return sc.punct(val, OROR)
		}
	case '+':
		switch sc.peekRune() {
		case '+':
			sc.readRune()
			return sc.punct(val, INC)
		case '=':
			sc.readRune()
			return sc.punct(val, PLUS_EQ)
		}
		return sc.punct(val, PLUS)
	case '-':
		switch sc.peekRune() {
		case '-':
			sc.readRune()
			return sc.punct(val, DEC)
		case '=':
			sc.readRune()
			return sc.punct(val, MINUS_EQ)
		}
		return sc.punct(val, MINUS)
	case '*':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, STAR_EQ)
		}
		return sc.punct(val, STAR)
	case '/':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, SLASH_EQ)
		}
		return sc.punct(val, SLASH)
	case '%':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, PERCENT_EQ)
		}
		return sc.punct(val, PERCENT)
	}
	sc.errorf(val.pos, "unexpected input character %#q", c)
	panic("unreachable")
}

func (sc *scanner) punct(val *tokenValue, tok Token) Token {
	sc.endToken(val)
	return tok
}

func (sc *scanner) scanNumber(val *tokenValue) Token {
	start := val.pos
	c := sc.readRune()
	if c == '0' && (sc.peekRune() == 'x' || sc.peekRune() == 'X') {
		sc.readRune()
		if !isHex(sc.peekRune()) {
			sc.error(start, "invalid hex literal")
		}
		for isHex(sc.peekRune()) {
			sc.readRune()
		}
		sc.endToken(val)
		n, err := strconv.ParseUint(val.raw[2:], 16, 64)
		if err != nil {
			sc.error(start, "hex literal out of range")
		}
		val.number = float64(n)
		return NUMBER
	}
	for isDigit(sc.peekRune()) {
		sc.readRune()
	}
	if c != '.' && sc.peekRune() == '.' {
		sc.readRune()
		for isDigit(sc.peekRune()) {
			sc.readRune()
		}
	}
	if r := sc.peekRune(); r == 'e' || r == 'E' {
		sc.readRune()
		if r := sc.peekRune(); r == '+' || r == '-' {
			sc.readRune()
		}
		if !isDigit(sc.peekRune()) {
			sc.error(start, "invalid float literal")
		}
		for isDigit(sc.peekRune()) {
			sc.readRune()
		}
	}
	if isIdentStart(sc.peekRune()) {
		sc.error(start, "identifier starts immediately after numeric literal")
	}
	sc.endToken(val)
	f, err := strconv.ParseFloat(val.raw, 64)
	if err != nil {
		sc.errorf(start, "invalid number literal %s", val.raw)
	}
	val.number = f
	return NUMBER
}

func (sc *scanner) scanString(val *tokenValue, quote rune) Token {
	start := val.pos
	sc.readRune()
	for {
		if sc.eof() {
			sc.error(start, "unexpected EOF in string")
		}
		c := sc.readRune()
		if c == quote {
			break
		}
		if c == '\n' {
			sc.error(start, "unexpected newline in string")
		}
		if c == '\\' {
			if sc.eof() {
				sc.error(start, "unexpected EOF in string")
			}
			sc.readRune()
		}
	}
	sc.endToken(val)
	s, err := unquote(val.raw)
	if err != nil {
		sc.error(start, err.Error())
	}
	val.string = s
	return STRING
}

func isIdentStart(c rune) bool {
	return 'a' <= c && c <= 'z' ||
		'A' <= c && c <= 'Z' ||
		c == '_' || c == '$' ||
		c >= 0x80 && unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || isDigit(c) || c >= 0x80 && unicode.IsDigit(c)
}

func isDigit(c rune) bool { return '0' <= c && c <= '9' }

func isHex(c rune) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
