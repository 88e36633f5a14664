package ast

// Constructors for building trees by hand, mostly in tests and in
// the goal wrapper.

func Var(name string) *Expr {
	return &Expr{Kind: VarExpr, Name: name}
}

func Num(n int64) *Expr {
	return &Expr{Kind: NumExpr, Num: n}
}

func Wildcard() *Expr {
	return &Expr{Kind: WildcardExpr}
}

func True() *Expr {
	return &Expr{Kind: TrueExpr}
}

func False() *Expr {
	return &Expr{Kind: FalseExpr}
}

// Rel builds "name op right".
func Rel(name string, op Op, right *Expr) *Expr {
	return &Expr{Kind: RelExpr, Op: op, Left: Var(name), Right: right}
}

func Arith(left *Expr, op Op, right *Expr) *Expr {
	return &Expr{Kind: ArithExpr, Op: op, Left: left, Right: right}
}

func List(elems ...*Expr) *Expr {
	return &Expr{Kind: ListExpr, Elems: elems}
}

// Cons builds "[elems... | tail]".
func Cons(tail *Expr, elems ...*Expr) *Expr {
	return &Expr{Kind: ConsExpr, Elems: elems, Tail: tail}
}

func Call(name string, args ...*Expr) *Expr {
	return &Expr{Kind: CallExpr, Name: name, Elems: args}
}

// NewRule makes a rule with the given parameter names.
func NewRule(name string, params ...string) *Rule {
	r := &Rule{
		Name:   name,
		Params: make([]Param, len(params)),
	}
	for i, p := range params {
		r.Params[i] = Param{Name: p}
	}
	return r
}
