package strat

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScriptSimple(t *testing.T) {
	s, err := NewScript("last", `function select(options) { return options.length - 1; }`)
	if err != nil {
		t.Fatal(err)
	}

	i, err := s.Select(context.Background(), []string{"A", "B", "C"})
	if err != nil {
		t.Fatal(err)
	}
	if i != 2 {
		t.Fatalf("wanted 2, not %d", i)
	}
}

func TestScriptState(t *testing.T) {
	code := `
function select(options) {
  var n = _.state.n || 0;
  _.state.n = n + 1;
  _.log(options);
  return n % options.length;
}`
	s, err := NewScript("round robin", code)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for want := range []int{0, 1, 0, 1} {
		got, err := s.Select(ctx, []string{"X", "Y"})
		if err != nil {
			t.Fatal(err)
		}
		if got != want%2 {
			t.Fatalf("call %d: wanted %d, not %d", want, want%2, got)
		}
	}
}

func TestScriptByName(t *testing.T) {
	code := `
function select(options) {
  for (var i = 0; i < options.length; i++) {
    if (options[i].indexOf("MAX") == 0) return i;
  }
  return 0;
}`
	s, err := NewScript("max", code)
	if err != nil {
		t.Fatal(err)
	}
	i, err := s.Select(context.Background(), []string{"P(1)", "MAX(1, 2, Z)"})
	if err != nil {
		t.Fatal(err)
	}
	if i != 1 {
		t.Fatalf("wanted 1, not %d", i)
	}
}

func TestScriptBad(t *testing.T) {
	if _, err := NewScript("syntax", `function select(options) {`); err == nil {
		t.Fatal("should have complained about syntax")
	}
	if _, err := NewScript("missing", `var x = 1;`); err == nil {
		t.Fatal("should have complained about select")
	}

	s, err := NewScript("range", `function select(options) { return 7; }`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.Select(context.Background(), []string{"A"}); err == nil {
		t.Fatal("should have complained about range")
	}

	s, err = NewScript("string", `function select(options) { return "0"; }`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.Select(context.Background(), []string{"A"}); err == nil {
		t.Fatal("should have complained about type")
	}

	if _, err = s.Select(context.Background(), nil); err != NoOptions {
		t.Fatal(err)
	}
}

func TestScriptTimeout(t *testing.T) {
	s, err := NewScript("forever", `function select(options) { for (;;) {} }`)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err = s.Select(ctx, []string{"A"}); err != Interrupted {
		t.Fatalf("wanted Interrupted, not %v", err)
	}
}

func TestLoadScript(t *testing.T) {
	dir, err := ioutil.TempDir("", "strat")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "first.js")
	if err = ioutil.WriteFile(filename, []byte(`function select(o) { return 0; }`), 0644); err != nil {
		t.Fatal(err)
	}

	sel, err := New(Spec{Policy: "script", Script: filename})
	if err != nil {
		t.Fatal(err)
	}
	if i, err := sel.Select(context.Background(), []string{"A", "B"}); err != nil || i != 0 {
		t.Fatalf("got %d, %v", i, err)
	}

	if _, err = LoadScript(filepath.Join(dir, "nope.js")); err == nil {
		t.Fatal("should have failed to read")
	}
}
