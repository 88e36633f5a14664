package eval

import (
	"fmt"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/data"
	"github.com/Comcast/koala/store"
)

var arithOps = map[ast.Op]store.ArithOp{
	ast.Add: store.Add,
	ast.Sub: store.Sub,
	ast.Mul: store.Mul,
	ast.Div: store.Div,
	ast.Mod: store.Mod,
}

var relOps = map[ast.Op]store.RelOp{
	ast.Eq:  store.Eq,
	ast.Neq: store.Neq,
	ast.Lt:  store.Lt,
	ast.Leq: store.Leq,
	ast.Gt:  store.Gt,
	ast.Geq: store.Geq,
}

// valueTerm gives the store term for a numeric Value.  An
// uninitialized Value becomes a fresh store variable when fresh is
// not nil; otherwise it has no term.
func valueTerm(v *data.Value, fresh *store.Store) (store.Term, bool) {
	switch v.Kind() {
	case data.Int:
		return store.Const(v.Int()), true
	case data.IntVar:
		return v.Var(), true
	case data.Uninitialized:
		if fresh == nil {
			return nil, false
		}
		v.BindVar(fresh.NewVar(v.Name))
		return v.Var(), true
	}
	return nil, false
}

// term translates an arithmetic expression.
func term(e *ast.Expr, env *data.Environment, fresh *store.Store) (store.Term, bool) {
	switch e.Kind {
	case ast.NumExpr:
		return store.Const(e.Num), true
	case ast.VarExpr:
		return valueTerm(env.Get(e.Name), fresh)
	case ast.ArithExpr:
		op, have := arithOps[e.Op]
		if !have {
			panic(fmt.Sprintf("eval: arithmetic operator %q", e.Op))
		}
		l, ok := term(e.Left, env, fresh)
		if !ok {
			return nil, false
		}
		r, ok := term(e.Right, env, fresh)
		if !ok {
			return nil, false
		}
		return &store.Bin{Op: op, L: l, R: r}, true
	}
	return nil, false
}

func relation(op ast.Op, l, r store.Term) *store.Rel {
	o, have := relOps[op]
	if !have {
		panic(fmt.Sprintf("eval: relational operator %q", op))
	}
	return &store.Rel{Op: o, L: l, R: r}
}

// Constraint translates "lvalue op rvalue" for a numeric rvalue.
// Without a store to make fresh variables, an uninitialized operand
// means there is no constraint.
func Constraint(x *ast.Expr, env *data.Environment, fresh *store.Store) (*store.Rel, bool) {
	l, ok := valueTerm(env.Get(x.Left.Name), fresh)
	if !ok {
		return nil, false
	}
	r, ok := term(x.Right, env, fresh)
	if !ok {
		return nil, false
	}
	return relation(x.Op, l, r), true
}
