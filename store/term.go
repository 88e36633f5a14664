package store

import (
	"strconv"
	"strings"
)

// Var is an integer domain variable.  Vars are created by
// Store.NewVar and become part of the store when a constraint that
// mentions them is told.
type Var struct {
	Name string
	id   int
}

func (v *Var) String() string {
	if v.Name == "" {
		return "_G" + strconv.Itoa(v.id)
	}
	return v.Name
}

// Id is the store-unique number of the variable.
func (v *Var) Id() int {
	return v.id
}

// Term is an integer expression: a Const, a *Var, or a *Bin.
type Term interface {
	String() string
	term()
}

// Const is an integer constant.
type Const int64

func (c Const) String() string {
	return strconv.FormatInt(int64(c), 10)
}

func (Const) term() {}
func (*Var) term()  {}

// ArithOp is an arithmetic operator.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div // Truncates toward zero.
	Mod // Takes the sign of the dividend.
)

var arithOpNames = []string{"+", "-", "*", "/", "%"}

func (o ArithOp) String() string {
	return arithOpNames[o]
}

// Bin is a binary arithmetic term.
type Bin struct {
	Op   ArithOp
	L, R Term
}

func (b *Bin) String() string {
	return "(" + b.L.String() + " " + b.Op.String() + " " + b.R.String() + ")"
}

func (*Bin) term() {}

// RelOp is a relational operator.
type RelOp int

const (
	Eq RelOp = iota
	Neq
	Lt
	Leq
	Gt
	Geq
)

var relOpNames = []string{"=", "<>", "<", "<=", ">", ">="}

func (o RelOp) String() string {
	return relOpNames[o]
}

// Constraint is a *Rel or an And.
type Constraint interface {
	String() string
	constraint()
}

// Rel relates two terms.
type Rel struct {
	Op   RelOp
	L, R Term
}

func (r *Rel) String() string {
	return r.L.String() + " " + r.Op.String() + " " + r.R.String()
}

func (*Rel) constraint() {}

// And is a conjunction of constraints.  An empty And is true.
type And []Constraint

func (a And) String() string {
	if len(a) == 0 {
		return "true"
	}
	ss := make([]string, len(a))
	for i, c := range a {
		ss[i] = c.String()
	}
	return strings.Join(ss, ", ")
}

func (And) constraint() {}

// vars calls f for each variable in the constraint.
func vars(c Constraint, f func(*Var)) {
	switch vv := c.(type) {
	case *Rel:
		termVars(vv.L, f)
		termVars(vv.R, f)
	case And:
		for _, x := range vv {
			vars(x, f)
		}
	}
}

func termVars(t Term, f func(*Var)) {
	switch vv := t.(type) {
	case *Var:
		f(vv)
	case *Bin:
		termVars(vv.L, f)
		termVars(vv.R, f)
	}
}
