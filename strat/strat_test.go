package strat

import (
	"context"
	"testing"

	"github.com/Comcast/koala/check"
	"github.com/Comcast/koala/core"
	"github.com/Comcast/koala/parse"
	"github.com/Comcast/koala/util/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirst(t *testing.T) {
	i, err := First{}.Select(context.Background(), []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = First{}.Select(context.Background(), nil)
	assert.Equal(t, NoOptions, err)
}

func TestFixed(t *testing.T) {
	ctx := context.Background()
	opts := []string{"A", "B", "C"}

	i, err := (&Fixed{Index: 1}).Select(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	i, err = (&Fixed{Index: 2}).Select(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = (&Fixed{Index: 3}).Select(ctx, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = (&Fixed{Index: -1}).Select(ctx, opts)
	assert.Error(t, err)
}

func TestUniformSeeded(t *testing.T) {
	ctx := context.Background()
	opts := []string{"A", "B", "C", "D", "E"}

	a, b := NewUniform(42), NewUniform(42)
	seen := make(map[int]bool)
	for n := 0; n < 200; n++ {
		i, err := a.Select(ctx, opts)
		require.NoError(t, err)
		j, err := b.Select(ctx, opts)
		require.NoError(t, err)
		assert.Equal(t, i, j)
		require.True(t, 0 <= i && i < len(opts))
		seen[i] = true
	}
	assert.Len(t, seen, len(opts))
}

func TestNew(t *testing.T) {
	for _, policy := range []string{"", "first", "fixed", "uniform"} {
		sel, err := New(Spec{Policy: policy})
		require.NoError(t, err, policy)
		assert.NotNil(t, sel)
	}
	_, err := New(Spec{Policy: "tacos"})
	assert.Error(t, err)
}

// Whatever the policy, MAX(3, 5, Z) has one answer.
func TestPoliciesInSession(t *testing.T) {
	table, diags := check.LoadProgram(testutil.MustParse(t,
		"MAX(X,Y,Z) : X >= Y : Z = X | true.",
		"MAX(X,Y,Z) : X <= Y : Z = Y | true."))
	require.False(t, diags.HasErrors())

	goal, err := parse.Goal("MAX(3, 5, Z), MAX(4, 4, W)")
	require.NoError(t, err)

	for _, sel := range []core.Selector{First{}, &Fixed{Index: 0}, NewUniform(7)} {
		s := core.NewSession(table, nil)
		s.LiteralPolicy = sel
		s.RulePolicy = sel
		_, err := s.LoadGoal(goal)
		require.NoError(t, err)

		w, err := s.Walk(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, core.Done, w.StoppedBecause)
		assert.Equal(t, []string{"MAX(3, 5, 5)", "MAX(4, 4, 4)"}, w.Results)
	}
}
