// Package check is the static semantic checker.
//
// Checking a program infers a type for every rule-local variable,
// reports misuse as Diagnostics, and builds the rule table of
// Closures that the engine runs.  Every pass always runs to
// completion so that one check reports every problem it can find.
package check

import (
	"fmt"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/data"
)

// Type is the inferred type of a rule-local variable.  Unknown can
// be raised to Integer or List, which never change again.
type Type int

const (
	Unknown Type = iota
	Integer
	List
)

var typeNames = []string{"unknown", "integer", "list"}

func (t Type) String() string {
	return typeNames[t]
}

// scope is the local symbol table of one rule.
type scope struct {
	names []string
	types map[string]Type
}

func newScope() *scope {
	return &scope{
		types: make(map[string]Type),
	}
}

func (s *scope) lookup(name string) (Type, bool) {
	t, have := s.types[name]
	return t, have
}

func (s *scope) declare(name string, t Type) {
	if _, have := s.types[name]; !have {
		s.names = append(s.names, name)
	}
	s.types[name] = t
}

type checker struct {
	global map[string]bool
	local  *scope
	diags  Diagnostics
	rule   *ast.Rule

	// tell is set during the tell pass, where undefined variables
	// are introduced rather than reported.
	tell bool
}

func (c *checker) errorf(pos ast.Pos, format string, args ...interface{}) {
	c.diags = append(c.diags, Diagnostic{
		Severity: Error,
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
	})
}

func (c *checker) warnf(pos ast.Pos, format string, args ...interface{}) {
	c.diags = append(c.diags, Diagnostic{
		Severity: Warning,
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
	})
}

// Check checks prog against a table that may already hold closures
// (a goal is checked against the program's table).  The result is a
// copy of table extended with a closure for every rule in prog.
//
// The caller must not run the table when the Diagnostics have errors.
func Check(prog *ast.Program, table *data.Table) (*data.Table, Diagnostics) {
	if table == nil {
		table = data.NewTable()
	}
	out := table.Copy()

	c := &checker{
		global: make(map[string]bool),
	}
	for _, k := range table.Keys() {
		c.global[k] = true
	}
	for _, r := range prog.Rules {
		c.global[r.Key()] = true
	}

	for _, r := range prog.Rules {
		env := c.checkRule(r)
		out.Add(&data.Closure{
			Rule: r,
			Env:  env,
		})
	}

	return out, c.diags
}

func (c *checker) checkRule(r *ast.Rule) *data.Environment {
	c.rule = r
	c.local = newScope()

	for _, p := range r.Params {
		if _, have := c.local.lookup(p.Name); have {
			c.errorf(p.Pos, "Conflicting declaration of variable '%s'", p.Name)
			continue
		}
		c.local.declare(p.Name, Unknown)
	}

	c.tell = false
	for _, x := range r.Ask {
		c.constraint(x, nil)
	}

	c.tell = true
	told := make(map[string]bool)
	for _, x := range r.Tell {
		c.constraint(x, told)
	}

	for _, x := range r.Body {
		c.call(x)
	}

	return data.NewEnvironment(c.local.names...)
}

func (c *checker) undefined(e *ast.Expr) {
	c.errorf(e.Pos, "Variable '%s' is undefined in this scope", e.Name)
}

func (c *checker) conflict(e *ast.Expr, have, want Type) {
	c.errorf(e.Pos, "Variable '%s' is used as %s but has type %s", e.Name, want, have)
}

// constraint checks one ask or tell item.  told collects tell
// lvalues and is nil in the ask pass.
func (c *checker) constraint(x *ast.Expr, told map[string]bool) {
	switch x.Kind {
	case ast.TrueExpr:
		return
	case ast.FalseExpr:
		if c.tell {
			c.warnf(x.Pos, "Constraint 'false' can never be told, the rule can never fire")
		} else {
			c.warnf(x.Pos, "Constraint 'false' is never entailed, the rule can never fire")
		}
		return
	case ast.RelExpr:
	default:
		c.errorf(x.Pos, "Expression '%s' is not a constraint", x)
		return
	}

	l := x.Left
	if l == nil || l.Kind != ast.VarExpr || x.Right == nil {
		c.errorf(x.Pos, "Expression '%s' is not a constraint", x)
		return
	}

	lt, have := c.local.lookup(l.Name)
	if !have {
		if !c.tell {
			c.undefined(l)
			return
		}
		c.local.declare(l.Name, Unknown)
	}

	if told != nil {
		if told[l.Name] {
			c.warnf(x.Pos, "Ambiguous constraint definition for variable '%s', the rule may deadlock", l.Name)
		}
		told[l.Name] = true
	}

	r := x.Right
	if r.Kind == ast.WildcardExpr {
		return
	}

	if r.Kind == ast.VarExpr && r.Name == l.Name {
		switch x.Op {
		case ast.Eq, ast.Leq, ast.Geq:
			c.warnf(x.Pos, "Tautology in constraint '%s'", x)
		default:
			c.warnf(x.Pos, "Negative tautology in constraint '%s', the constraint is unsatisfiable", x)
		}
		return
	}

	rt := c.rvalue(r)
	lt, _ = c.local.lookup(l.Name)

	switch {
	case lt == Unknown && rt == Unknown:
		if x.Op.IsOrdering() {
			c.local.declare(l.Name, Integer)
			lt = Integer
			if r.Kind == ast.VarExpr {
				c.local.declare(r.Name, Integer)
				rt = Integer
			}
		}
	case lt == rt:
	case lt == Unknown:
		c.local.declare(l.Name, rt)
		lt = rt
	case rt == Unknown && r.Kind == ast.VarExpr:
		c.local.declare(r.Name, lt)
		rt = lt
	default:
		c.errorf(x.Pos, "Incompatible types in constraint '%s'", x)
		return
	}

	if lt == List && rt == List {
		switch {
		case x.Op != ast.Eq && x.Op != ast.Neq:
			c.errorf(x.Pos, "Invalid relation operator applied to list constraint '%s'", x)
		case x.Op == ast.Neq && c.tell:
			c.errorf(x.Pos, "List inequality cannot be told in constraint '%s'", x)
		}
	}
}

// rvalue checks the right side of a constraint and returns its type.
func (c *checker) rvalue(e *ast.Expr) Type {
	switch e.Kind {
	case ast.VarExpr:
		t, have := c.local.lookup(e.Name)
		if !have {
			if !c.tell {
				c.undefined(e)
				return Unknown
			}
			c.local.declare(e.Name, Unknown)
		}
		return t
	case ast.NumExpr, ast.ArithExpr:
		c.arith(e)
		return Integer
	case ast.ListExpr, ast.ConsExpr:
		c.list(e)
		return List
	}
	c.errorf(e.Pos, "Expression '%s' is not a valid operand", e)
	return Unknown
}

// arith checks an expression in arithmetic context.
func (c *checker) arith(e *ast.Expr) {
	switch e.Kind {
	case ast.NumExpr:
	case ast.VarExpr:
		t, have := c.local.lookup(e.Name)
		switch {
		case !have && !c.tell:
			c.undefined(e)
		case t == List:
			c.conflict(e, List, Integer)
		default:
			c.local.declare(e.Name, Integer)
		}
	case ast.ArithExpr:
		if e.Left == nil || e.Right == nil {
			c.errorf(e.Pos, "Incomplete arithmetic expression")
			return
		}
		c.arith(e.Left)
		c.arith(e.Right)
	default:
		c.errorf(e.Pos, "Expression '%s' is not an arithmetic operand", e)
	}
}

// list checks a list literal or constructor.
func (c *checker) list(e *ast.Expr) {
	for _, x := range e.Elems {
		c.elem(x)
	}
	if e.Kind == ast.ConsExpr {
		c.tail(e.Tail)
	}
}

func (c *checker) elem(e *ast.Expr) {
	switch e.Kind {
	case ast.NumExpr, ast.WildcardExpr:
	case ast.VarExpr:
		if _, have := c.local.lookup(e.Name); !have {
			c.local.declare(e.Name, Unknown)
		}
	case ast.ListExpr, ast.ConsExpr:
		c.list(e)
	default:
		c.errorf(e.Pos, "Expression '%s' is not a valid list element", e)
	}
}

func (c *checker) tail(e *ast.Expr) {
	if e == nil {
		c.errorf(c.rule.Pos, "Missing list tail")
		return
	}
	switch e.Kind {
	case ast.WildcardExpr:
	case ast.VarExpr:
		t, _ := c.local.lookup(e.Name)
		if t == Integer {
			c.conflict(e, Integer, List)
			return
		}
		c.local.declare(e.Name, List)
	case ast.ListExpr, ast.ConsExpr:
		c.list(e)
	default:
		c.errorf(e.Pos, "Invalid list tail '%s'", e)
	}
}

// call checks one body item.
func (c *checker) call(x *ast.Expr) {
	switch x.Kind {
	case ast.TrueExpr:
		return
	case ast.CallExpr:
	default:
		c.errorf(x.Pos, "Expression '%s' is not a predicate call", x)
		return
	}

	if !c.global[ast.Key(x.Name, len(x.Elems))] {
		c.errorf(x.Pos, "Predicate '%s' is undefined for arity %d", x.Name, len(x.Elems))
	}

	for _, arg := range x.Elems {
		if !arg.IsConst() {
			c.errorf(arg.Pos, "Expression '%s' is not a constant", arg)
			continue
		}
		c.argument(arg)
	}
}

func (c *checker) argument(e *ast.Expr) {
	switch e.Kind {
	case ast.VarExpr:
		if _, have := c.local.lookup(e.Name); !have {
			c.local.declare(e.Name, Unknown)
		}
	case ast.ListExpr, ast.ConsExpr:
		for _, x := range e.Elems {
			c.argument(x)
		}
		if e.Kind == ast.ConsExpr {
			switch {
			case e.Tail == nil:
				c.errorf(e.Pos, "Missing list tail")
			case e.Tail.Kind == ast.NumExpr:
				c.errorf(e.Tail.Pos, "Invalid list tail '%s'", e.Tail)
			default:
				c.argument(e.Tail)
			}
		}
	case ast.NumExpr, ast.WildcardExpr:
	default:
		c.errorf(e.Pos, "Expression '%s' is not a constant", e)
	}
}
