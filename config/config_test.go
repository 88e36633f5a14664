package config

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/Comcast/koala/strat"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c := Default()
	err := c.Parse([]byte(`
limit: 7
literalPolicy: fixed
literalIndex: 2
rulePolicy: first
seed: 42
breakpoints:
  deep: "step > 3"
  stuck: 'state == "locked"'
intWidth: 16
domainMin: -1000
domainMax: 1000
trace: traces.db
color: NEVER
`))
	require.NoError(t, err)

	assert.Equal(t, 7, c.Limit)
	assert.Equal(t, "fixed", c.LiteralPolicy)
	assert.Equal(t, 2, c.LiteralIndex)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, map[string]string{"deep": "step > 3", "stuck": `state == "locked"`}, c.Breakpoints)
	assert.Equal(t, 16, c.StoreOptions().Width)
	assert.Equal(t, int64(-1000), c.DomainMin)
	assert.Equal(t, "traces.db", c.Trace)
	assert.Equal(t, ColorNever, c.Color)
	assert.False(t, c.Colorize(os.Stdout))

	lit, rule, err := c.Selectors()
	require.NoError(t, err)
	assert.Equal(t, &strat.Fixed{Index: 2}, lit)
	assert.Equal(t, strat.First{}, rule)

	ctl, err := c.Control()
	require.NoError(t, err)
	assert.Equal(t, 7, ctl.Limit)
	assert.Len(t, ctl.Breakpoints, 2)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"limit: -1",
		"tacos: 3",
		"color: sometimes",
		"intWidth: 99",
		"domainMin: 10\ndomainMax: 1",
		"limit: [",
	} {
		assert.Error(t, Default().Parse([]byte(src)), src)
	}
}

func TestBadBreakpoint(t *testing.T) {
	c := Default()
	c.Breakpoints["bad"] = "step +"
	_, err := c.Control()
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "koala-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, DefaultFilename)

	c, err := Load(filename, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(filename, false)
	assert.Error(t, err)

	require.NoError(t, ioutil.WriteFile(filename, []byte("limit: 3\n"), 0644))
	c, err = Load(filename, false)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Limit)
}

func TestFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	fs.Bool("debug", false, "not a config flag")
	require.NoError(t, fs.Parse([]string{
		"--limit=9",
		"--rule-policy=fixed",
		"--rule-index=1",
		"--seed=5",
		"--break", "a=step > 1",
		"--color=always",
		"--debug",
	}))

	c := Default()
	c.Limit = 4
	c.LiteralPolicy = "first"
	require.NoError(t, c.ApplyFlags(fs))

	assert.Equal(t, 9, c.Limit)
	assert.Equal(t, "first", c.LiteralPolicy)
	assert.Equal(t, "fixed", c.RulePolicy)
	assert.Equal(t, 1, c.RuleIndex)
	assert.Equal(t, int64(5), c.Seed)
	assert.Equal(t, "step > 1", c.Breakpoints["a"])
	assert.True(t, c.Colorize(os.Stdout))

	_, rule, err := c.Selectors()
	require.NoError(t, err)
	i, err := rule.Select(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestCamel(t *testing.T) {
	assert.Equal(t, "literalPolicy", camel("literal-policy"))
	assert.Equal(t, "limit", camel("limit"))
}
