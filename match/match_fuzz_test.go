package match

// Fuzz lists.  Compare them with each other and with patterns made
// from them, and verify properties of the results.

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/data"
)

// Fuzz has parameters used to generate random lists.
type Fuzz struct {
	ListWidth int
	MaxNumber int

	Numbers float64
	Lists   float64
	Unbound float64

	// generated counts the number of atomic values generated.
	generated int64
}

// Ground sets Unbound to zero so that every generated list is fully
// bound.
func (f *Fuzz) Ground() {
	f.Unbound = 0
}

// NewFuzz returns a reasonable, general-purpose Fuzz.
func NewFuzz() *Fuzz {
	return &Fuzz{
		ListWidth: 4,
		MaxNumber: 3,

		Numbers: 4,
		Lists:   1,
		Unbound: 0.5,
	}
}

// Gen generates a random element.
func (f *Fuzz) Gen(r *rand.Rand, d int) *data.Value {
	f.generated++

	m := f.Numbers + f.Unbound
	if 0 < d {
		m += f.Lists
	}

	t := r.Float64() * m
	if t < f.Numbers {
		return data.NewInt(int64(r.Intn(f.MaxNumber)))
	} else if t < f.Numbers+f.Unbound {
		return data.NewValue("")
	}
	return f.GenList(r, d-1)
}

// GenList generates a list Value.
func (f *Fuzz) GenList(r *rand.Rand, d int) *data.Value {
	v := data.NewList("")
	c := v.List()
	for i := r.Intn(f.ListWidth); 0 < i; i-- {
		c.SetCons(f.Gen(r, d), nil)
		c = c.Tail()
	}
	if r.Float64()*(f.Numbers+f.Lists) < f.Unbound {
		return v
	}
	c.SetEmpty()
	return v
}

// toPattern renders a ground list as a list literal.
func toPattern(v *data.Value) *ast.Expr {
	elems, _ := v.List().Elems()
	acc := make([]*ast.Expr, len(elems))
	for i, x := range elems {
		if x.Kind() == data.List {
			acc[i] = toPattern(x)
		} else {
			acc[i] = ast.Num(x.Int())
		}
	}
	return ast.List(acc...)
}

// TestMatchFuzz compares a bunch of lists with each other.
//
// Verifies some of the results.
func TestMatchFuzz(t *testing.T) {
	var (
		lists = 300
		d     = 3
		r     = rand.New(rand.NewSource(42))
		f     = NewFuzz()
		g     = NewFuzz()

		vs      = make([]*data.Value, lists)
		ground  = make([]*data.Value, lists)
		counts  = make(map[Tri]int)
		env     = data.NewEnvironment()
		matched = 0
	)
	g.Ground()

	then := time.Now()
	for i := range vs {
		vs[i] = f.GenList(r, d)
		ground[i] = g.GenList(r, d)
	}

	for i, a := range vs {
		if got := Lists(a.List(), a.List(), nil); got != True {
			t.Fatalf("%s not equal to itself: %s", data.String(a, nil), got)
		}
		for _, b := range vs[i:] {
			x := Lists(a.List(), b.List(), nil)
			if y := Lists(b.List(), a.List(), nil); x != y {
				t.Fatalf("asymmetric comparison of %s and %s: %s, %s",
					data.String(a, nil), data.String(b, nil), x, y)
			}
			counts[x]++
		}
	}

	for _, a := range ground {
		pat := toPattern(a)
		if got := Pattern(a, pat, env, nil); got != True {
			t.Fatalf("%s does not match %s: %s", data.String(a, nil), pat, got)
		}
		for _, b := range ground {
			want := Lists(a.List(), b.List(), nil)
			if want == Unknown {
				t.Fatalf("ground comparison of %s and %s is unknown",
					data.String(a, nil), data.String(b, nil))
			}
			if got := Pattern(b, pat, env, nil); got != want {
				t.Fatalf("%s against %s: %s, compared %s",
					data.String(b, nil), pat, got, want)
			}
			if want == True {
				matched++
			}
		}
	}
	elapsed := time.Now().Sub(then)

	fmt.Printf(`true      %d
false     %d
unknown   %d
matched   %d
elapsed   %fms
generated %d
`,
		counts[True], counts[False], counts[Unknown],
		matched,
		elapsed.Seconds()*1000,
		f.generated+g.generated)
}
