package check

import (
	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/data"
	"github.com/Comcast/koala/eval"
)

// GoalName names the rule that wraps a goal.
const GoalName = "GOAL"

// LoadProgram checks prog.  The table is nil when there are errors.
func LoadProgram(prog *ast.Program) (*data.Table, Diagnostics) {
	table, diags := Check(prog, nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return table, diags
}

// GoalRule wraps a goal as the body of "GOAL : true : true | goal."
func GoalRule(goal []*ast.Expr) *ast.Rule {
	r := &ast.Rule{
		Name: GoalName,
		Body: goal,
	}
	if 0 < len(goal) {
		r.Pos = goal[0].Pos
	}
	return r
}

// LoadGoal checks a goal against the table the way a rule body is
// checked and expands it into literals.  The table is not modified.
func LoadGoal(table *data.Table, goal []*ast.Expr) (data.Goal, Diagnostics) {
	r := GoalRule(goal)
	t, diags := Check(&ast.Program{Rules: []*ast.Rule{r}}, table)
	if diags.HasErrors() {
		return nil, diags
	}
	cs := t.Get(r.Key())
	env := cs[len(cs)-1].Env

	var g data.Goal
	eval.Body(r, env, &g, -1)
	return g, diags
}
