package ast

import (
	"strconv"
	"strings"
)

// String renders the expression in source syntax.
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	if e == nil {
		b.WriteString("nil")
		return
	}
	switch e.Kind {
	case VarExpr:
		b.WriteString(e.Name)
	case NumExpr:
		b.WriteString(strconv.FormatInt(e.Num, 10))
	case WildcardExpr:
		b.WriteString("_")
	case TrueExpr:
		b.WriteString("true")
	case FalseExpr:
		b.WriteString("false")
	case RelExpr, ArithExpr:
		e.Left.writeOperand(b, e.Op, false)
		b.WriteString(" ")
		b.WriteString(string(e.Op))
		b.WriteString(" ")
		e.Right.writeOperand(b, e.Op, true)
	case ListExpr:
		b.WriteString("[")
		writeList(b, e.Elems)
		b.WriteString("]")
	case ConsExpr:
		b.WriteString("[")
		writeList(b, e.Elems)
		if e.Tail != nil {
			b.WriteString(" | ")
			e.Tail.write(b)
		}
		b.WriteString("]")
	case CallExpr:
		b.WriteString(e.Name)
		if 0 < len(e.Elems) {
			b.WriteString("(")
			writeList(b, e.Elems)
			b.WriteString(")")
		}
	default:
		b.WriteString("<" + e.Kind.String() + ">")
	}
}

// writeOperand parenthesizes an arithmetic operand that binds more
// loosely than its parent.  Operators are left-associative, so a right
// operand at the same level needs parentheses too.
func (e *Expr) writeOperand(b *strings.Builder, parent Op, right bool) {
	if e == nil || e.Kind != ArithExpr {
		e.write(b)
		return
	}
	p, q := precedence(e.Op), precedence(parent)
	if p < q || (right && p == q) {
		b.WriteString("(")
		e.write(b)
		b.WriteString(")")
		return
	}
	e.write(b)
}

func precedence(op Op) int {
	switch op {
	case Mul, Div, Mod:
		return 3
	case Add, Sub:
		return 2
	}
	return 1
}

func writeList(b *strings.Builder, es []*Expr) {
	for i, x := range es {
		if 0 < i {
			b.WriteString(", ")
		}
		x.write(b)
	}
}

// Head renders "Name(P1, P2)", or just "Name" without parameters.
func (r *Rule) Head() string {
	if len(r.Params) == 0 {
		return r.Name
	}
	ps := make([]string, len(r.Params))
	for i, p := range r.Params {
		ps[i] = p.Name
	}
	return r.Name + "(" + strings.Join(ps, ", ") + ")"
}

// String renders the rule in source syntax.
func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Head())
	b.WriteString(" : ")
	writeSection(&b, r.Ask)
	b.WriteString(" : ")
	writeSection(&b, r.Tell)
	b.WriteString(" | ")
	writeSection(&b, r.Body)
	b.WriteString(".")
	return b.String()
}

func writeSection(b *strings.Builder, es []*Expr) {
	if len(es) == 0 {
		b.WriteString("true")
		return
	}
	writeList(b, es)
}

func (p *Program) String() string {
	rs := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		rs[i] = r.String()
	}
	return strings.Join(rs, "\n")
}
