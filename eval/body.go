package eval

import (
	"fmt"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/data"
)

// Body turns the rule's calls into literals and splices them into
// the goal in place of the literal at index, or appends them when
// index is -1.
func Body(r *ast.Rule, env *data.Environment, goal *data.Goal, index int) {
	lits := make([]*data.Literal, 0, len(r.Body))
	for _, x := range r.Body {
		switch x.Kind {
		case ast.TrueExpr:
			continue
		case ast.CallExpr:
		default:
			panic(fmt.Sprintf("eval: %s in body", x.Kind))
		}
		lit := &data.Literal{
			Name: x.Name,
			Args: make([]*data.Value, len(x.Elems)),
		}
		for i, arg := range x.Elems {
			lit.Args[i] = element(arg, env)
		}
		lits = append(lits, lit)
	}
	goal.Splice(index, lits)
}
