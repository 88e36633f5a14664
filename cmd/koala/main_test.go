package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func koala(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(ioutil.Discard)
	cmd.SetArgs(append([]string{"--color=never"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckCmd(t *testing.T) {
	out, err := koala(t, "check", "../../programs/lists.koala", "../../programs/max.koala")
	require.NoError(t, err, out)
	assert.Contains(t, out, "lists.koala: ok (8 rules)")
	assert.Contains(t, out, "max.koala: ok (2 rules)")

	dir, err := ioutil.TempDir("", "koala-cmd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	bad := filepath.Join(dir, "bad.koala")
	require.NoError(t, ioutil.WriteFile(bad, []byte("P(X) : true : true | Q(X).\n"), 0644))

	out, err = koala(t, "check", bad)
	assert.Error(t, err)
	assert.Contains(t, out, "Semantic error at [")
}

func TestRunCmd(t *testing.T) {
	out, err := koala(t, "run", "--rule-policy=first", "../../programs/max.koala", "MAX(3, 5, Z)")
	require.NoError(t, err, out)
	assert.Contains(t, out, "done after 1 steps")
	assert.True(t, strings.HasSuffix(out, "MAX(3, 5, 5)\n"), out)

	out, err = koala(t, "run", "-q", "--metrics", "../../programs/max.koala", "MAX(3, Y, Z)")
	require.NoError(t, err, out)
	assert.Contains(t, out, "deadlocked after 0 steps")
	assert.Contains(t, out, "koala_steps_total")

	_, err = koala(t, "run", "../../programs/max.koala", "MAX(3)")
	assert.Error(t, err)
}

func TestRunTrace(t *testing.T) {
	dir, err := ioutil.TempDir("", "koala-cmd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	db := filepath.Join(dir, "traces.db")

	_, err = koala(t, "run", "--trace", db, "../../programs/max.koala", "MAX(4, 2, Z)")
	require.NoError(t, err)

	out, err := koala(t, "trace", db)
	require.NoError(t, err)
	pids := strings.Fields(out)
	require.Len(t, pids, 1)

	out, err = koala(t, "trace", "--program", "../../programs/max.koala", db)
	require.NoError(t, err)
	assert.Contains(t, out, "MAX(4, 2, 4)")

	out, err = koala(t, "trace", "--format", "json", db, pids[0])
	require.NoError(t, err)
	assert.Contains(t, out, `"stoppedBecause": "done"`)

	_, err = koala(t, "trace", "--rm", db, pids[0])
	require.NoError(t, err)
	out, err = koala(t, "trace", db)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestExpectCmd(t *testing.T) {
	out, err := koala(t, "expect", "../../programs/tests/lists.test.yaml")
	require.NoError(t, err, out)
	assert.Equal(t, 4, strings.Count(out, "pass"))
}

func TestGraphCmd(t *testing.T) {
	out, err := koala(t, "graph", "-f", "mermaid", "../../programs/lists.koala")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TB\n"), out)

	_, err = koala(t, "graph", "-f", "tacos", "../../programs/lists.koala")
	assert.Error(t, err)
}

func TestColorDiff(t *testing.T) {
	p := newPalette(false)
	for _, s := range []string{
		"P(1), {+Q(2), +}R",
		"[-A-], {+B+}",
		"no change",
		"{+unterminated",
	} {
		assert.Equal(t, s, colorDiff(p, s))
	}
}

func TestDebugCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(ioutil.Discard)
	cmd.SetIn(strings.NewReader(`
# Comments are ignored.
alts
commit 0 0
commit 0 1
print
step
tacos
goal MAX(5, 2, Z)
break one step == 0
run
unbreak one
unbreak one
run 10
print
quit
print
`))
	cmd.SetArgs([]string{"--color=never", "debug", "../../programs/max.koala", "MAX(3, 5, Z)"})
	require.NoError(t, cmd.Execute())

	s := out.String()
	for _, want := range []string{
		"# goal loaded: ready",
		"# 0. MAX(3, 5, ",
		"# error: ",
		"#       MAX(3, 5, 5)",
		"# nothing to do: finished",
		"# error: what's 'tacos'?",
		"# stopped: breakpoint at one",
		"# error: no breakpoint 'one'",
		"# stopped: done",
		"#       MAX(5, 2, 5)",
	} {
		assert.Contains(t, s, want)
	}
	assert.Equal(t, 3, strings.Count(s, "# state finished"))
}

func TestConvertCmd(t *testing.T) {
	dir, err := ioutil.TempDir("", "koala-cmd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	doc, err := koala(t, "convert", "../../programs/lists.koala")
	require.NoError(t, err)
	filename := filepath.Join(dir, "lists.yaml")
	require.NoError(t, ioutil.WriteFile(filename, []byte(doc), 0644))

	src, err := koala(t, "convert", "--to", "koala", "../../programs/lists.koala")
	require.NoError(t, err)
	again, err := koala(t, "convert", "--to", "koala", filename)
	require.NoError(t, err)
	assert.Equal(t, src, again)

	js, err := koala(t, "convert", "-t", "json", "../../programs/max.koala")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(js, "{"), js)
}
