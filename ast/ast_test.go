package ast

import (
	"testing"
)

func maxRule() *Rule {
	r := NewRule("MAX", "X", "Y", "Z")
	r.Ask = []*Expr{Rel("X", Geq, Var("Y"))}
	r.Tell = []*Expr{Rel("Z", Eq, Var("X"))}
	r.Body = []*Expr{True()}
	return r
}

func TestRuleString(t *testing.T) {
	r := maxRule()
	if got, want := r.String(), "MAX(X, Y, Z) : X >= Y : Z = X | true."; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if r.Key() != "MAX/3" {
		t.Fatal(r.Key())
	}
}

func TestExprString(t *testing.T) {
	tests := []struct {
		e    *Expr
		want string
	}{
		{Cons(Var("T"), Num(1), Num(2)), "[1, 2 | T]"},
		{List(), "[]"},
		{List(Wildcard(), List(Num(3))), "[_, [3]]"},
		{Arith(Arith(Var("A"), Add, Var("B")), Mul, Num(2)), "(A + B) * 2"},
		{Arith(Var("A"), Sub, Arith(Var("B"), Sub, Var("C"))), "A - (B - C)"},
		{Arith(Arith(Var("A"), Sub, Var("B")), Sub, Var("C")), "A - B - C"},
		{Rel("X", Neq, Arith(Var("Y"), Mod, Num(-3))), "X <> Y % -3"},
		{Call("P", Var("X"), Num(1)), "P(X, 1)"},
		{Call("Q"), "Q"},
	}
	for _, tc := range tests {
		if got := tc.e.String(); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	p := &Program{Rules: []*Rule{maxRule()}}
	bs, err := p.Document()
	if err != nil {
		t.Fatal(err)
	}
	q, err := ParseDocument(bs)
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != q.String() {
		t.Fatalf("%s\n!=\n%s", p, q)
	}
}

func TestFingerprintIgnoresPositions(t *testing.T) {
	p := &Program{Rules: []*Rule{maxRule()}}
	q := &Program{Rules: []*Rule{maxRule()}}
	q.Rules[0].Pos = Pos{Line: 7, Col: 3}
	q.Rules[0].Ask[0].Pos = Pos{Line: 7, Col: 20}

	h1, err := p.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	h2, err := q.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("%d != %d", h1, h2)
	}

	q.Rules[0].Ask[0].Op = Gt
	if h3, _ := q.Fingerprint(); h3 == h1 {
		t.Fatal("fingerprint ignored an operator change")
	}
}

func TestKindText(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("cons")); err != nil {
		t.Fatal(err)
	}
	if k != ConsExpr {
		t.Fatal(k)
	}
	if err := k.UnmarshalText([]byte("lambda")); err == nil {
		t.Fatal("expected an error")
	}
}
