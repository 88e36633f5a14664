// Package eval runs the three parts of a rule against an
// Environment: the ask guard, the tell effects (checked, then
// committed) and the body.
//
// None of these report errors.  A guard or tell that cannot be
// satisfied returns false.  An expression shape that a checked
// program cannot contain panics.
package eval

import (
	"fmt"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/data"
	"github.com/Comcast/koala/match"
	"github.com/Comcast/koala/store"
)

// Ask reports whether the rule's guard is entailed.
//
// Ask never binds a Value, but a list pattern variable that is
// unbound in env adopts the Value at its position.
func Ask(s *store.Store, r *ast.Rule, env *data.Environment) bool {
	for _, x := range r.Ask {
		if !ask(s, x, env) {
			return false
		}
	}
	return true
}

func ask(s *store.Store, x *ast.Expr, env *data.Environment) bool {
	switch x.Kind {
	case ast.TrueExpr:
		return true
	case ast.FalseExpr:
		return false
	case ast.RelExpr:
	default:
		panic(fmt.Sprintf("eval: %s in ask", x.Kind))
	}

	l := env.Get(x.Left.Name)
	r := x.Right

	switch r.Kind {
	case ast.WildcardExpr:
		return true
	case ast.ListExpr, ast.ConsExpr:
		if l.Kind() != data.List {
			return false
		}
		return decide(x.Op, match.Pattern(l, r, env, s))
	case ast.VarExpr:
		rv := env.Get(r.Name)
		if l.Kind() == data.List && rv.Kind() == data.List {
			return decide(x.Op, match.Lists(l.List(), rv.List(), s))
		}
		if !l.IsNumeric() || !rv.IsNumeric() {
			return false
		}
	}

	c, ok := Constraint(x, env, nil)
	if !ok {
		return false
	}
	return s.Ask(c)
}

// decide turns a list comparison into a guard outcome.
func decide(op ast.Op, t match.Tri) bool {
	switch op {
	case ast.Eq:
		return t == match.True
	case ast.Neq:
		return t == match.False
	}
	return false
}
