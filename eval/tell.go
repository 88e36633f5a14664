package eval

import (
	"fmt"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/data"
	"github.com/Comcast/koala/match"
	"github.com/Comcast/koala/store"
	"github.com/Comcast/koala/util"
)

// TellCheck reports whether the rule's tell constraints can all be
// committed together.  The store is not changed.  Uninitialized
// Values in env may be bound to variables that are never told, so
// env should be reset before the rule is committed.
func TellCheck(s *store.Store, r *ast.Rule, env *data.Environment) bool {
	var (
		told = make(map[string]bool)
		acc  = make(store.And, 0, len(r.Tell))
	)
	for _, x := range r.Tell {
		switch x.Kind {
		case ast.TrueExpr:
			continue
		case ast.FalseExpr:
			return false
		case ast.RelExpr:
		default:
			panic(fmt.Sprintf("eval: %s in tell", x.Kind))
		}

		name := x.Left.Name
		if told[name] {
			return false
		}
		told[name] = true

		l := env.Get(name)
		rhs := x.Right
		switch rhs.Kind {
		case ast.WildcardExpr:
			continue
		case ast.ListExpr, ast.ConsExpr:
			if !canBuild(l) {
				return false
			}
			continue
		case ast.VarExpr:
			rv := env.Get(rhs.Name)
			if l.Kind() == data.List || rv.Kind() == data.List {
				if !canAlias(l, rv, s) {
					return false
				}
				continue
			}
		}

		c, ok := Constraint(x, env, s)
		if !ok {
			return false
		}
		acc = append(acc, c)
	}
	return len(acc) == 0 || s.IsTellOk(acc)
}

// canBuild says whether a list can be told into v.
func canBuild(v *data.Value) bool {
	switch v.Kind() {
	case data.Uninitialized:
		return true
	case data.List:
		return !v.List().IsBound()
	}
	return false
}

// canAlias says whether "l = r" can be told when one side is a list.
func canAlias(l, r *data.Value, s *store.Store) bool {
	switch {
	case !l.IsInitialized():
		return r.Kind() == data.List
	case !r.IsInitialized():
		return l.Kind() == data.List
	case l.Kind() != data.List || r.Kind() != data.List:
		return false
	case !l.List().IsBound() || !r.List().IsBound():
		return true
	}
	return match.Lists(l.List(), r.List(), s) == match.True
}

// TellCommit tells the rule's constraints.  TellCheck must have
// passed for the same bindings.
func TellCommit(s *store.Store, r *ast.Rule, env *data.Environment) {
	for _, x := range r.Tell {
		if x.Kind != ast.RelExpr {
			continue
		}
		l := env.Get(x.Left.Name)
		rhs := x.Right
		switch rhs.Kind {
		case ast.WildcardExpr:
			continue
		case ast.ListExpr, ast.ConsExpr:
			if !l.IsInitialized() {
				l.BindList(data.NewCell())
			}
			build(l.List(), rhs, env)
			continue
		case ast.VarExpr:
			rv := env.Get(rhs.Name)
			if l.Kind() == data.List || rv.Kind() == data.List {
				alias(l, rv)
				continue
			}
		}

		c, ok := Constraint(x, env, s)
		if !ok || !s.Tell(c) {
			util.Logger().WithField("constraint", x.String()).Warn("tell failed after a successful check")
		}
	}
}

// alias makes two list Values share structure.
func alias(l, r *data.Value) {
	switch {
	case !l.IsInitialized():
		l.BindList(r.List())
	case !r.IsInitialized():
		r.BindList(l.List())
	case !l.List().IsBound():
		l.List().Link(r.List())
	case !r.List().IsBound():
		r.List().Link(l.List())
	}
}

// build binds the unbound cell c to the list described by e.  List
// variables alias env, numbers become fresh constants, and each
// wildcard is a fresh Value.
func build(c *data.ListCell, e *ast.Expr, env *data.Environment) {
	var tail *data.Value
	switch e.Kind {
	case ast.ListExpr:
		if len(e.Elems) == 0 {
			c.SetEmpty()
			return
		}
		tail = data.NewList("")
		tail.List().SetEmpty()
	case ast.ConsExpr:
		tail = tailValue(e.Tail, env)
	default:
		panic(fmt.Sprintf("eval: %s is not a list", e.Kind))
	}

	for i, x := range e.Elems {
		if i == len(e.Elems)-1 {
			c.SetCons(element(x, env), tail)
			return
		}
		next := data.NewList("")
		c.SetCons(element(x, env), next)
		c = next.List()
	}
}

func element(e *ast.Expr, env *data.Environment) *data.Value {
	switch e.Kind {
	case ast.NumExpr:
		return data.NewInt(e.Num)
	case ast.VarExpr:
		return env.Get(e.Name)
	case ast.WildcardExpr:
		return data.NewValue("_")
	case ast.ListExpr, ast.ConsExpr:
		v := data.NewList("")
		build(v.List(), e, env)
		return v
	}
	panic(fmt.Sprintf("eval: %s in a list", e.Kind))
}

func tailValue(e *ast.Expr, env *data.Environment) *data.Value {
	switch e.Kind {
	case ast.VarExpr:
		v := env.Get(e.Name)
		if !v.IsInitialized() {
			v.BindList(data.NewCell())
		}
		return v
	case ast.WildcardExpr:
		return data.NewList("_")
	case ast.ListExpr, ast.ConsExpr:
		v := data.NewList("")
		build(v.List(), e, env)
		return v
	}
	panic(fmt.Sprintf("eval: %s as a list tail", e.Kind))
}
