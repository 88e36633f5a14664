package eval_test

import (
	"testing"

	"github.com/Comcast/koala/check"
	"github.com/Comcast/koala/data"
	"github.com/Comcast/koala/eval"
	"github.com/Comcast/koala/store"
	"github.com/Comcast/koala/util/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, lines ...string) *data.Table {
	t.Helper()
	table, diags := check.LoadProgram(testutil.MustParse(t, lines...))
	require.False(t, diags.HasErrors(), diags.Error())
	return table
}

func closure(t *testing.T, table *data.Table, key string, i int) *data.Closure {
	t.Helper()
	cs := table.Get(key)
	require.True(t, i < len(cs), key)
	c := cs[i]
	c.Env.Reset()
	return c
}

func TestAskIntegers(t *testing.T) {
	table := load(t,
		"MAX(X,Y,Z) : X >= Y : Z = X | true.",
		"MAX(X,Y,Z) : X < Y  : Z = Y | true.")
	s := store.New(nil)

	for i, want := range []bool{false, true} {
		c := closure(t, table, "MAX/3", i)
		c.Env.Set("X", data.NewInt(3))
		c.Env.Set("Y", data.NewInt(5))
		assert.Equal(t, want, eval.Ask(s, c.Rule, c.Env), "rule %d", i)
	}

	// An unbound operand fails the guard.
	c := closure(t, table, "MAX/3", 1)
	c.Env.Set("X", data.NewInt(3))
	assert.False(t, eval.Ask(s, c.Rule, c.Env))
}

func TestTellAtomicity(t *testing.T) {
	table := load(t,
		"INIT(X) : true : X = 5 | true.",
		"TWICE(X) : true : X = 5, X = 6 | true.",
		"BOTH(X, Y) : true : X = Y + 1, Y = X | true.")
	s := store.New(nil)

	x := data.NewValue("X")
	c := closure(t, table, "INIT/1", 0)
	c.Env.Set("X", x)
	require.True(t, eval.TellCheck(s, c.Rule, c.Env))
	eval.TellCommit(s, c.Rule, c.Env)
	n, ok := s.ValueOf(x.Var())
	require.True(t, ok)
	assert.Equal(t, int64(5), n)

	c = closure(t, table, "TWICE/1", 0)
	c.Env.Set("X", x)
	assert.False(t, eval.TellCheck(s, c.Rule, c.Env))

	c = closure(t, table, "BOTH/2", 0)
	assert.False(t, eval.TellCheck(s, c.Rule, c.Env))

	assert.Len(t, s.Constraints(), 1)
	n, _ = s.ValueOf(x.Var())
	assert.Equal(t, int64(5), n)
}

func TestTellConstant(t *testing.T) {
	table := load(t, "SET(X) : true : X = 3 | true.")
	s := store.New(nil)

	c := closure(t, table, "SET/1", 0)
	c.Env.Set("X", data.NewInt(3))
	assert.True(t, eval.TellCheck(s, c.Rule, c.Env))

	c = closure(t, table, "SET/1", 0)
	c.Env.Set("X", data.NewInt(4))
	assert.False(t, eval.TellCheck(s, c.Rule, c.Env))
}

func TestTellList(t *testing.T) {
	table := load(t,
		"MK(L) : true : L = [1, X, [2] | T] | true.",
		"COPY(L, M) : true : M = L | true.")
	s := store.New(nil)

	l := data.NewValue("L")
	c := closure(t, table, "MK/1", 0)
	c.Env.Set("L", l)
	require.True(t, eval.TellCheck(s, c.Rule, c.Env))
	eval.TellCommit(s, c.Rule, c.Env)
	assert.Equal(t, "1 : X : (2 : []) : ?", data.String(l, s))

	// Telling into a bound list fails.
	c = closure(t, table, "MK/1", 0)
	c.Env.Set("L", l)
	assert.False(t, eval.TellCheck(s, c.Rule, c.Env))

	// Aliasing.
	m := data.NewValue("M")
	c = closure(t, table, "COPY/2", 0)
	c.Env.Set("L", l)
	c.Env.Set("M", m)
	require.True(t, eval.TellCheck(s, c.Rule, c.Env))
	eval.TellCommit(s, c.Rule, c.Env)
	assert.Same(t, l.List(), m.List())
}

func TestAskAdoption(t *testing.T) {
	table := load(t, "FIRST(L, H) : L = [A | _] : H = A | true.")
	s := store.New(nil)

	l := data.NewList("L")
	l.List().SetCons(data.NewInt(7), nil)
	l.List().Tail().SetEmpty()
	h := data.NewValue("H")

	c := closure(t, table, "FIRST/2", 0)
	c.Env.Set("L", l)
	c.Env.Set("H", h)
	require.True(t, eval.Ask(s, c.Rule, c.Env))
	require.True(t, eval.TellCheck(s, c.Rule, c.Env))
	eval.TellCommit(s, c.Rule, c.Env)
	assert.Equal(t, "7", data.String(h, s))

	// An unbound list leaves the guard undecided.
	c = closure(t, table, "FIRST/2", 0)
	c.Env.Set("L", data.NewList("L"))
	assert.False(t, eval.Ask(s, c.Rule, c.Env))
}

func TestBody(t *testing.T) {
	table := load(t,
		"P(X) : true : true | Q(X, 1), true, R([X | _]).",
		"Q(A, B) : true : true | true.",
		"R(L) : true : true | true.")
	s := store.New(nil)

	x := data.NewInt(9)
	goal := data.Goal{
		{Name: "A"},
		{Name: "P", Args: []*data.Value{x}},
		{Name: "B"},
	}
	c := closure(t, table, "P/1", 0)
	c.Env.Set("X", x)
	eval.Body(c.Rule, c.Env, &goal, 1)

	assert.Equal(t, []string{"A", "Q(9, 1)", "R(9 : ?)", "B"}, goal.Render(s))
	assert.Same(t, x, goal[1].Args[0])
}
