package check

import (
	"strings"
	"testing"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/parse"
	"github.com/Comcast/koala/util/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name     string
		src      []string
		severity Severity
		want     string
	}{
		{
			name:     "duplicate parameter",
			src:      []string{"P(X, X) : true : true | true."},
			severity: Error,
			want:     "Conflicting declaration of variable 'X'",
		},
		{
			name:     "undefined in ask",
			src:      []string{"P(X) : Y > 0 : true | true."},
			severity: Error,
			want:     "Variable 'Y' is undefined in this scope",
		},
		{
			name:     "type mismatch",
			src:      []string{"P(X) : X = [] : X = 1 | true."},
			severity: Error,
			want:     "Incompatible types in constraint",
		},
		{
			name:     "ordering makes both sides integers",
			src:      []string{"R(X, Y) : X < Y, Y = [] : true | true."},
			severity: Error,
			want:     "Incompatible types in constraint",
		},
		{
			name:     "list ordering",
			src:      []string{"P(X, Y) : X = [] : Y < [1] | true."},
			severity: Error,
			want:     "Invalid relation operator applied to list constraint",
		},
		{
			name:     "list inequality told",
			src:      []string{"P(X) : true : X <> [] | true."},
			severity: Error,
			want:     "List inequality cannot be told",
		},
		{
			name:     "numeric tail",
			src:      []string{"P(X) : true : X = [1|2] | true."},
			severity: Error,
			want:     "Invalid list tail '2'",
		},
		{
			name:     "undefined predicate",
			src:      []string{"P : true : true | Q(1)."},
			severity: Error,
			want:     "Predicate 'Q' is undefined for arity 1",
		},
		{
			name:     "wrong arity",
			src:      []string{"P(X) : true : true | P(X, X)."},
			severity: Error,
			want:     "Predicate 'P' is undefined for arity 2",
		},
		{
			name:     "arithmetic argument",
			src:      []string{"P(X) : X > 0 : true | P(X - 1)."},
			severity: Error,
			want:     "is not a constant",
		},
		{
			name:     "tautology",
			src:      []string{"P(X) : X = X : true | true."},
			severity: Warning,
			want:     "Tautology in constraint",
		},
		{
			name:     "negative tautology",
			src:      []string{"P(X) : X < X : true | true."},
			severity: Warning,
			want:     "Negative tautology in constraint",
		},
		{
			name:     "false guard",
			src:      []string{"P : false : true | true."},
			severity: Warning,
			want:     "is never entailed",
		},
		{
			name:     "duplicate tell",
			src:      []string{"P(X) : true : X = 1, X = 2 | true."},
			severity: Warning,
			want:     "Ambiguous constraint definition for variable 'X'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := testutil.MustParse(t, tt.src...)
			table, diags := LoadProgram(prog)

			found := false
			for _, d := range diags {
				if d.Severity == tt.severity && strings.Contains(d.Msg, tt.want) {
					found = true
				}
			}
			require.True(t, found, "wanted %s %q in %v", tt.severity, tt.want, diags)

			if tt.severity == Error {
				assert.True(t, diags.HasErrors())
				assert.Nil(t, table)
			} else {
				assert.False(t, diags.HasErrors(), diags.Error())
				assert.NotNil(t, table)
				assert.NotEmpty(t, diags.Warnings())
			}
		})
	}
}

func TestDiagnosticText(t *testing.T) {
	_, diags := LoadProgram(testutil.MustParse(t, "P(X) : Y > 0 : true | true."))
	require.Len(t, diags, 1)
	assert.True(t, strings.HasPrefix(diags[0].String(), "Semantic error at [1:"), diags[0].String())

	_, diags = LoadProgram(testutil.MustParse(t, "P(X) : X = X : true | true."))
	require.Len(t, diags, 1)
	assert.True(t, strings.HasPrefix(diags[0].String(), "Warning at [1:"), diags[0].String())
}

func TestCheckCollectsEverything(t *testing.T) {
	_, diags := LoadProgram(testutil.MustParse(t,
		"P(X, X) : true : true | true.",
		"Q : true : true | R.",
		"S(X) : X = X : true | true."))
	assert.Len(t, diags.Errors(), 2)
	assert.Len(t, diags.Warnings(), 1)
}

func TestTable(t *testing.T) {
	table, diags := LoadProgram(testutil.MustParse(t,
		"MAX(X, Y, Z) : X >= Y : Z = X | true.",
		"MAX(X, Y, Z) : X < Y  : Z = Y | true.",
		"LEN(L, N) : L = []    : N = 0     | true.",
		"LEN(L, N) : L = [_|T] : N = M + 1 | LEN(T, M)."))
	require.Empty(t, diags)

	assert.ElementsMatch(t, []string{"MAX/3", "LEN/2"}, table.Keys())
	assert.Len(t, table.Get("MAX/3"), 2)
	assert.Len(t, table.Get("LEN/2"), 2)
}

func TestLoadGoal(t *testing.T) {
	table, diags := LoadProgram(testutil.MustParse(t,
		"MAX(X, Y, Z) : X >= Y : Z = X | true.",
		"MAX(X, Y, Z) : X < Y  : Z = Y | true."))
	require.Empty(t, diags)

	goal, err := parse.Goal("MAX(3, 5, Z), MAX(Z, 1, W)")
	require.NoError(t, err)
	g, diags := LoadGoal(table, goal)
	require.False(t, diags.HasErrors(), diags.Error())
	require.Len(t, g, 2)
	assert.Equal(t, "MAX/3", g[0].Key())

	// Checking a goal doesn't add GOAL to the program's table.
	assert.False(t, table.Has(GoalName+"/0"))

	goal, err = parse.Goal("MAX(3)")
	require.NoError(t, err)
	g, diags = LoadGoal(table, goal)
	assert.True(t, diags.HasErrors())
	assert.Nil(t, g)
}

func TestLoadGoalListElements(t *testing.T) {
	table, diags := LoadProgram(testutil.MustParse(t, "P(L) : true : true | true."))
	require.Empty(t, diags)

	for _, arg := range []*ast.Expr{
		ast.List(ast.Arith(ast.Num(1), ast.Add, ast.Num(2))),
		ast.Cons(ast.Arith(ast.Var("T"), ast.Sub, ast.Num(1)), ast.Num(1)),
		ast.List(ast.List(ast.True())),
	} {
		g, diags := LoadGoal(table, []*ast.Expr{ast.Call("P", arg)})
		require.True(t, diags.HasErrors(), "%s", arg)
		assert.Contains(t, diags.Error(), "is not a constant")
		assert.Nil(t, g)
	}

	g, diags := LoadGoal(table, []*ast.Expr{ast.Call("P", ast.Cons(ast.Var("T"), ast.Num(1), ast.Wildcard()))})
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Len(t, g, 1)
}
