/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ast defines the syntax tree of Eucalyptus programs.
//
// A Program is a list of guarded Rules:
//
//	Name(P1, ..., Pn) : ask, ... : tell, ... | Call(...), ... .
//
// Every expression is an *Expr whose Kind says which fields are
// meaningful.  The struct carries JSON tags (which github.com/jsccast/yaml
// also honors), so a Program can be written as a YAML or JSON document
// as well as in source form.
package ast

import (
	"fmt"
	"strconv"
)

// Pos is a source position.  Lines and columns start at 1.
type Pos struct {
	Line int `json:"line,omitempty" yaml:",omitempty" hash:"ignore"`
	Col  int `json:"col,omitempty" yaml:",omitempty" hash:"ignore"`
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Kind says what sort of thing an Expr is.
type Kind int

const (
	VarExpr Kind = iota
	NumExpr
	WildcardExpr
	TrueExpr
	FalseExpr
	RelExpr   // Left Op Right, where Left is a VarExpr.
	ArithExpr // Left Op Right.
	ListExpr  // [Elems...]
	ConsExpr  // [Elems... | Tail]
	CallExpr  // Name(Elems...)
)

var kindNames = []string{"var", "num", "wildcard", "true", "false", "rel", "arith", "list", "cons", "call"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(bs []byte) error {
	s := string(bs)
	for i, name := range kindNames {
		if name == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown expression kind %q", s)
}

// Op is a relational or arithmetic operator.
type Op string

const (
	Eq  Op = "="
	Neq Op = "<>"
	Lt  Op = "<"
	Leq Op = "<="
	Gt  Op = ">"
	Geq Op = ">="

	Add Op = "+"
	Sub Op = "-"
	Mul Op = "*"
	Div Op = "/"
	Mod Op = "%"
)

// IsRelational reports whether the operator compares two values.
func (o Op) IsRelational() bool {
	switch o {
	case Eq, Neq, Lt, Leq, Gt, Geq:
		return true
	}
	return false
}

// IsOrdering reports whether the operator is one of <, <=, >, >=.
func (o Op) IsOrdering() bool {
	switch o {
	case Lt, Leq, Gt, Geq:
		return true
	}
	return false
}

// Expr is an expression node.
type Expr struct {
	Kind Kind `json:"kind"`
	Pos  Pos  `json:"pos,omitempty" yaml:",omitempty"`

	// Name is the variable name of a VarExpr or the predicate
	// name of a CallExpr.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Num is the value of a NumExpr.
	Num int64 `json:"num,omitempty" yaml:",omitempty"`

	// Op is the operator of a RelExpr or ArithExpr.
	Op Op `json:"op,omitempty" yaml:",omitempty"`

	Left  *Expr `json:"left,omitempty" yaml:",omitempty"`
	Right *Expr `json:"right,omitempty" yaml:",omitempty"`

	// Elems holds list elements, the head elements of a
	// constructor, or the arguments of a call.
	Elems []*Expr `json:"elems,omitempty" yaml:",omitempty"`

	// Tail is the tail of a ConsExpr.
	Tail *Expr `json:"tail,omitempty" yaml:",omitempty"`
}

// IsConst reports whether the expression can be passed as a
// predicate argument: a variable, a number, or a list.
func (e *Expr) IsConst() bool {
	switch e.Kind {
	case VarExpr, NumExpr, ListExpr, ConsExpr:
		return true
	}
	return false
}

// IsList reports whether the expression is a list literal or a list
// constructor.
func (e *Expr) IsList() bool {
	return e.Kind == ListExpr || e.Kind == ConsExpr
}

// Param is a rule head parameter.
type Param struct {
	Name string `json:"name"`
	Pos  Pos    `json:"pos,omitempty" yaml:",omitempty"`
}

// Rule is one guarded clause.
type Rule struct {
	Name   string  `json:"name"`
	Pos    Pos     `json:"pos,omitempty" yaml:",omitempty"`
	Params []Param `json:"params,omitempty" yaml:",omitempty"`
	Ask    []*Expr `json:"ask,omitempty" yaml:",omitempty"`
	Tell   []*Expr `json:"tell,omitempty" yaml:",omitempty"`
	Body   []*Expr `json:"body,omitempty" yaml:",omitempty"`
}

// Key returns the rule table key "name/arity".
func (r *Rule) Key() string {
	return Key(r.Name, len(r.Params))
}

// Key forms the rule table key for a predicate name and arity.
func Key(name string, arity int) string {
	return name + "/" + strconv.Itoa(arity)
}

// Program is a list of rules in source order.
type Program struct {
	Name  string  `json:"name,omitempty" yaml:",omitempty" hash:"ignore"`
	Rules []*Rule `json:"rules"`
}
