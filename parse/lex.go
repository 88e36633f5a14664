package parse

import (
	"unicode"

	"github.com/Comcast/koala/ast"
)

type tokenType int

const (
	tEOF tokenType = iota
	tIdent
	tNumber
	tWildcard
	tTrue
	tFalse
	tPunct // ( ) [ ] , . | :
	tOp    // relational and arithmetic operators, and ":-"
)

type token struct {
	typ  tokenType
	text string
	pos  ast.Pos
}

func (t token) is(text string) bool {
	return (t.typ == tPunct || t.typ == tOp) && t.text == text
}

func (t token) String() string {
	if t.typ == tEOF {
		return "end of input"
	}
	return "'" + t.text + "'"
}

// operators, longest first.
var operators = []string{"=//=", ":-", "<>", "<=", ">=", "=", "<", ">", "+", "-", "*", "/", "%"}

type lexer struct {
	src  []rune
	i    int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{
		src:  []rune(src),
		line: 1,
		col:  1,
	}
}

func (l *lexer) peekRune(off int) rune {
	if l.i+off < len(l.src) {
		return l.src[l.i+off]
	}
	return 0
}

func (l *lexer) advance(n int) {
	for ; 0 < n && l.i < len(l.src); n-- {
		if l.src[l.i] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.i++
	}
}

func (l *lexer) skipSpace() {
	for l.i < len(l.src) {
		r := l.src[l.i]
		switch {
		case unicode.IsSpace(r):
			l.advance(1)
		case r == '#':
			for l.i < len(l.src) && l.src[l.i] != '\n' {
				l.advance(1)
			}
		default:
			return
		}
	}
}

func (l *lexer) hasPrefix(s string) bool {
	rs := []rune(s)
	if len(l.src)-l.i < len(rs) {
		return false
	}
	for j, r := range rs {
		if l.src[l.i+j] != r {
			return false
		}
	}
	return true
}

// next returns the next token.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	pos := ast.Pos{Line: l.line, Col: l.col}
	if len(l.src) <= l.i {
		return token{typ: tEOF, pos: pos}, nil
	}

	r := l.src[l.i]

	switch {
	case unicode.IsDigit(r):
		start := l.i
		for unicode.IsDigit(l.peekRune(0)) {
			l.advance(1)
		}
		return token{typ: tNumber, text: string(l.src[start:l.i]), pos: pos}, nil

	case r == '_' && !isIdentRune(l.peekRune(1)):
		l.advance(1)
		return token{typ: tWildcard, text: "_", pos: pos}, nil

	case unicode.IsLetter(r) || r == '_':
		start := l.i
		for isIdentRune(l.peekRune(0)) {
			l.advance(1)
		}
		text := string(l.src[start:l.i])
		typ := tIdent
		switch text {
		case "true":
			typ = tTrue
		case "false":
			typ = tFalse
		}
		return token{typ: typ, text: text, pos: pos}, nil
	}

	for _, op := range operators {
		if l.hasPrefix(op) {
			l.advance(len([]rune(op)))
			if op == "=//=" {
				op = string(ast.Neq)
			}
			return token{typ: tOp, text: op, pos: pos}, nil
		}
	}

	switch r {
	case '(', ')', '[', ']', ',', '.', '|', ':':
		l.advance(1)
		return token{typ: tPunct, text: string(r), pos: pos}, nil
	}

	return token{}, &SyntaxError{Pos: pos, Msg: "unexpected character '" + string(r) + "'"}
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// tokenize scans the whole source.
func tokenize(src string) ([]token, error) {
	l := newLexer(src)
	acc := make([]token, 0, len(src)/2)
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		acc = append(acc, t)
		if t.typ == tEOF {
			return acc, nil
		}
	}
}
