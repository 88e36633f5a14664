package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rel(l Term, op RelOp, r Term) *Rel {
	return &Rel{Op: op, L: l, R: r}
}

func bin(l Term, op ArithOp, r Term) *Bin {
	return &Bin{Op: op, L: l, R: r}
}

func TestAsk(t *testing.T) {
	s := New(nil)
	x := s.NewVar("X")
	require.True(t, s.Tell(rel(x, Geq, Const(3))))

	assert.True(t, s.Ask(rel(x, Geq, Const(2))))
	assert.True(t, s.Ask(rel(x, Neq, Const(1))))
	assert.False(t, s.Ask(rel(x, Geq, Const(4))))
	assert.False(t, s.Ask(rel(x, Lt, Const(3))))
	assert.True(t, s.Ask(And{}))
}

func TestMax(t *testing.T) {
	// The two guards of MAX(3, 5, Z).
	s := New(nil)
	x, y := s.NewVar("X"), s.NewVar("Y")
	require.True(t, s.Tell(And{rel(x, Eq, Const(3)), rel(y, Eq, Const(5))}))
	assert.False(t, s.Ask(rel(x, Geq, y)))
	assert.True(t, s.Ask(rel(x, Lt, y)))
}

func TestTellAtomicity(t *testing.T) {
	s := New(nil)
	x := s.NewVar("X")
	require.True(t, s.Tell(rel(x, Eq, Const(5))))
	assert.False(t, s.Tell(rel(x, Eq, Const(6))))
	assert.Len(t, s.Constraints(), 1)

	n, ok := s.ValueOf(x)
	require.True(t, ok)
	assert.Equal(t, int64(5), n)
}

func TestValueOf(t *testing.T) {
	s := New(nil)
	x := s.NewVar("X")
	_, ok := s.ValueOf(x)
	assert.False(t, ok)

	require.True(t, s.Tell(And{rel(x, Gt, Const(0)), rel(x, Lt, Const(3))}))
	_, ok = s.ValueOf(x)
	assert.False(t, ok)

	require.True(t, s.Tell(rel(x, Neq, Const(1))))
	n, ok := s.ValueOf(x)
	require.True(t, ok)
	assert.Equal(t, int64(2), n)
}

func TestArithmetic(t *testing.T) {
	s := New(nil)
	y := s.NewVar("Y")
	require.True(t, s.Tell(rel(y, Eq, Const(4))))

	for _, tc := range []struct {
		t    Term
		want int64
	}{
		{bin(y, Add, Const(3)), 7},
		{bin(y, Sub, Const(10)), -6},
		{bin(y, Mul, Const(-3)), -12},
		{bin(Const(7), Div, Const(-2)), -3},
		{bin(Const(7), Mod, Const(-2)), 1},
		{bin(Const(-7), Div, Const(2)), -3},
		{bin(Const(-7), Mod, Const(2)), -1},
		{bin(bin(y, Mul, y), Div, Const(3)), 5},
	} {
		v := s.NewVar("")
		require.True(t, s.Tell(rel(v, Eq, tc.t)), tc.t.String())
		n, ok := s.ValueOf(v)
		require.True(t, ok, tc.t.String())
		assert.Equal(t, tc.want, n, tc.t.String())
	}
}

func TestZeroDivisor(t *testing.T) {
	s := New(nil)
	x, y := s.NewVar("X"), s.NewVar("Y")
	assert.False(t, s.IsTellOk(rel(x, Eq, bin(Const(5), Div, Const(0)))))
	assert.False(t, s.IsTellOk(rel(x, Eq, bin(Const(5), Mod, Const(0)))))

	require.True(t, s.Tell(rel(x, Eq, bin(Const(5), Div, y))))
	assert.True(t, s.Ask(rel(y, Neq, Const(0))))
	assert.False(t, s.Tell(rel(y, Eq, Const(0))))
}

func TestOverflow(t *testing.T) {
	s := New(nil)
	x := s.NewVar("X")
	assert.False(t, s.IsTellOk(rel(x, Eq, bin(Const(21474836), Mul, Const(1000)))))
	assert.False(t, s.IsTellOk(rel(x, Eq, Const(21474837))))
	assert.True(t, s.IsTellOk(rel(x, Eq, Const(-21474836))))
}

func TestStatus(t *testing.T) {
	s := New(nil)
	x, y := s.NewVar("X"), s.NewVar("")
	require.True(t, s.Tell(And{rel(x, Geq, Const(3)), rel(x, Leq, Const(7))}))
	require.True(t, s.Tell(rel(y, Eq, bin(x, Add, Const(1)))))

	st := s.Status()
	require.Len(t, st, 2)
	assert.Equal(t, "X in [3..7]", st[0].String())
	assert.Equal(t, int64(4), st[1].Min)
	assert.Equal(t, int64(8), st[1].Max)
	assert.Equal(t, []*Var{x, y}, s.Vars())
}

func TestOptions(t *testing.T) {
	assert.NoError(t, DefaultOptions.Validate())
	assert.Error(t, (&Options{Width: 8, Min: -1000, Max: 1000}).Validate())
	assert.Error(t, (&Options{Width: 32, Min: 1, Max: 0}).Validate())

	s := New(&Options{Width: 8, Min: -100, Max: 100})
	x := s.NewVar("X")
	assert.False(t, s.IsTellOk(rel(x, Eq, bin(Const(100), Add, Const(100)))))
	assert.True(t, s.IsTellOk(rel(x, Eq, bin(Const(100), Sub, Const(100)))))
}
