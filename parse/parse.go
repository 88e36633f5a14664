// Package parse turns Eucalyptus source text into an ast.Program.
//
// Syntax:
//
//	Rule    = Head (":" | ":-") Section ":" Section "|" Section "."
//	Head    = Ident [ "(" Ident { "," Ident } ")" ]
//	Section = Item { "," Item }
//	Item    = "true" | "false" | Ident RelOp RValue | Call
//	RValue  = "_" | List | Arith
//	List    = "[" [ Elem { "," Elem } [ "|" Elem ] ] "]"
//
// "<>" and "=//=" both denote inequality. A "#" starts a comment
// that runs to the end of the line.
package parse

import (
	"io/ioutil"
	"strconv"

	"github.com/Comcast/koala/ast"

	"github.com/pkg/errors"
)

// SyntaxError reports the first problem found in the source.
type SyntaxError struct {
	Pos ast.Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return "Syntax error at [" + e.Pos.String() + "]: " + e.Msg
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.typ != tEOF {
		p.i++
	}
	return t
}

func (p *parser) fail(t token, msg string) error {
	return &SyntaxError{Pos: t.pos, Msg: msg + ", found " + t.String()}
}

func (p *parser) expect(text string) (token, error) {
	t := p.next()
	if !t.is(text) {
		return t, p.fail(t, "expected '"+text+"'")
	}
	return t, nil
}

func newParser(src string) (*parser, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

// Program parses a complete source text.
func Program(src string) (*ast.Program, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	prog := &ast.Program{
		Rules: make([]*ast.Rule, 0, 8),
	}
	for p.peek().typ != tEOF {
		r, err := p.rule()
		if err != nil {
			return nil, err
		}
		prog.Rules = append(prog.Rules, r)
	}
	return prog, nil
}

// File reads and parses the named file.
func File(filename string) (*ast.Program, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	prog, err := Program(string(bs))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	prog.Name = filename
	return prog, nil
}

// Goal parses a comma-separated list of calls, optionally terminated
// by a period.  The result is suitable as a rule body.
func Goal(src string) ([]*ast.Expr, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	body, err := p.section(p.bodyItem)
	if err != nil {
		return nil, err
	}
	if p.peek().is(".") {
		p.next()
	}
	if t := p.peek(); t.typ != tEOF {
		return nil, p.fail(t, "expected end of goal")
	}
	return body, nil
}

func (p *parser) rule() (*ast.Rule, error) {
	t := p.next()
	if t.typ != tIdent {
		return nil, p.fail(t, "expected a rule name")
	}
	r := &ast.Rule{
		Name: t.text,
		Pos:  t.pos,
	}
	if p.peek().is("(") {
		p.next()
		for {
			v := p.next()
			if v.typ != tIdent {
				return nil, p.fail(v, "expected a parameter name")
			}
			r.Params = append(r.Params, ast.Param{Name: v.text, Pos: v.pos})
			if p.peek().is(",") {
				p.next()
				continue
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			break
		}
	}

	if sep := p.next(); !sep.is(":") && !sep.is(":-") {
		return nil, p.fail(sep, "expected ':' after rule head")
	}

	var err error
	if r.Ask, err = p.section(p.constraintItem); err != nil {
		return nil, err
	}
	if _, err = p.expect(":"); err != nil {
		return nil, err
	}
	if r.Tell, err = p.section(p.constraintItem); err != nil {
		return nil, err
	}
	if _, err = p.expect("|"); err != nil {
		return nil, err
	}
	if r.Body, err = p.section(p.bodyItem); err != nil {
		return nil, err
	}
	if _, err = p.expect("."); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *parser) section(item func() (*ast.Expr, error)) ([]*ast.Expr, error) {
	acc := make([]*ast.Expr, 0, 2)
	for {
		x, err := item()
		if err != nil {
			return nil, err
		}
		acc = append(acc, x)
		if !p.peek().is(",") {
			return acc, nil
		}
		p.next()
	}
}

func (p *parser) constraintItem() (*ast.Expr, error) {
	t := p.next()
	switch t.typ {
	case tTrue:
		return &ast.Expr{Kind: ast.TrueExpr, Pos: t.pos}, nil
	case tFalse:
		return &ast.Expr{Kind: ast.FalseExpr, Pos: t.pos}, nil
	case tIdent:
	default:
		return nil, p.fail(t, "expected a constraint")
	}
	op := p.next()
	if op.typ != tOp || !ast.Op(op.text).IsRelational() {
		return nil, p.fail(op, "expected a relational operator")
	}
	right, err := p.rvalue()
	if err != nil {
		return nil, err
	}
	return &ast.Expr{
		Kind:  ast.RelExpr,
		Pos:   t.pos,
		Op:    ast.Op(op.text),
		Left:  &ast.Expr{Kind: ast.VarExpr, Name: t.text, Pos: t.pos},
		Right: right,
	}, nil
}

func (p *parser) bodyItem() (*ast.Expr, error) {
	t := p.next()
	switch t.typ {
	case tTrue:
		return &ast.Expr{Kind: ast.TrueExpr, Pos: t.pos}, nil
	case tIdent:
	default:
		return nil, p.fail(t, "expected a predicate call")
	}
	call := &ast.Expr{Kind: ast.CallExpr, Name: t.text, Pos: t.pos}
	if !p.peek().is("(") {
		return call, nil
	}
	p.next()
	for {
		arg, err := p.rvalue()
		if err != nil {
			return nil, err
		}
		call.Elems = append(call.Elems, arg)
		if p.peek().is(",") {
			p.next()
			continue
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return call, nil
	}
}

func (p *parser) rvalue() (*ast.Expr, error) {
	t := p.peek()
	switch {
	case t.typ == tWildcard:
		p.next()
		return &ast.Expr{Kind: ast.WildcardExpr, Pos: t.pos}, nil
	case t.is("["):
		return p.list()
	}
	return p.sum()
}

func (p *parser) sum() (*ast.Expr, error) {
	x, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !t.is("+") && !t.is("-") {
			return x, nil
		}
		p.next()
		y, err := p.product()
		if err != nil {
			return nil, err
		}
		x = &ast.Expr{Kind: ast.ArithExpr, Pos: x.Pos, Op: ast.Op(t.text), Left: x, Right: y}
	}
}

func (p *parser) product() (*ast.Expr, error) {
	x, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !t.is("*") && !t.is("/") && !t.is("%") {
			return x, nil
		}
		p.next()
		y, err := p.factor()
		if err != nil {
			return nil, err
		}
		x = &ast.Expr{Kind: ast.ArithExpr, Pos: x.Pos, Op: ast.Op(t.text), Left: x, Right: y}
	}
}

func (p *parser) factor() (*ast.Expr, error) {
	t := p.next()
	switch {
	case t.typ == tIdent:
		return &ast.Expr{Kind: ast.VarExpr, Name: t.text, Pos: t.pos}, nil
	case t.typ == tNumber:
		return p.number(t, false)
	case t.is("-"):
		n := p.next()
		if n.typ != tNumber {
			return nil, p.fail(n, "expected a number after '-'")
		}
		return p.number(n, true)
	case t.is("("):
		x, err := p.sum()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(")"); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, p.fail(t, "expected a number, a variable or '('")
}

func (p *parser) number(t token, negative bool) (*ast.Expr, error) {
	text := t.text
	if negative {
		text = "-" + text
	}
	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return nil, &SyntaxError{Pos: t.pos, Msg: "number " + text + " out of range"}
	}
	return &ast.Expr{Kind: ast.NumExpr, Num: n, Pos: t.pos}, nil
}

// elem parses a list element or tail: a number, a variable, a
// wildcard or a nested list.
func (p *parser) elem() (*ast.Expr, error) {
	t := p.peek()
	switch {
	case t.typ == tWildcard:
		p.next()
		return &ast.Expr{Kind: ast.WildcardExpr, Pos: t.pos}, nil
	case t.is("["):
		return p.list()
	case t.typ == tIdent:
		p.next()
		return &ast.Expr{Kind: ast.VarExpr, Name: t.text, Pos: t.pos}, nil
	case t.typ == tNumber:
		p.next()
		return p.number(t, false)
	case t.is("-"):
		p.next()
		n := p.next()
		if n.typ != tNumber {
			return nil, p.fail(n, "expected a number after '-'")
		}
		return p.number(n, true)
	}
	return nil, p.fail(t, "expected a list element")
}

func (p *parser) list() (*ast.Expr, error) {
	open, err := p.expect("[")
	if err != nil {
		return nil, err
	}
	x := &ast.Expr{Kind: ast.ListExpr, Pos: open.pos}
	if p.peek().is("]") {
		p.next()
		return x, nil
	}
	for {
		e, err := p.elem()
		if err != nil {
			return nil, err
		}
		x.Elems = append(x.Elems, e)
		if p.peek().is(",") {
			p.next()
			continue
		}
		break
	}
	if p.peek().is("|") {
		p.next()
		tail, err := p.elem()
		if err != nil {
			return nil, err
		}
		x.Kind = ast.ConsExpr
		x.Tail = tail
	}
	if _, err = p.expect("]"); err != nil {
		return nil, err
	}
	return x, nil
}
