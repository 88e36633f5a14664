// Package store is a constraint store over bounded integer
// variables.
//
// The store holds the conjunction of every constraint told so far and
// answers entailment (Ask), consistency (IsTellOk) and determinacy
// (ValueOf) queries.  Queries are decided by a SAT solver over a
// bit-blasted encoding of the told constraints.
//
// Arithmetic is exact two's complement arithmetic at the configured
// width.  A constraint whose evaluation would overflow, or divide by
// zero, does not hold.  Division truncates toward zero and the
// remainder takes the sign of the dividend.
package store

import (
	"fmt"

	"github.com/Comcast/koala/util"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// Options configures a Store.
type Options struct {
	// Width is the number of bits in the two's complement
	// representation of every intermediate value.
	Width int

	// Min and Max bound every variable.
	Min, Max int64
}

// DefaultOptions gives 32-bit arithmetic over variables in
// [-21474836, 21474836].
var DefaultOptions = &Options{
	Width: 32,
	Min:   -21474836,
	Max:   21474836,
}

// Validate checks that the options describe a usable store.
func (o *Options) Validate() error {
	if o.Width < 2 || 62 < o.Width {
		return fmt.Errorf("integer width %d not in [2,62]", o.Width)
	}
	if o.Max < o.Min {
		return fmt.Errorf("empty domain [%d,%d]", o.Min, o.Max)
	}
	if !fits(o.Min, o.Width) || !fits(o.Max, o.Width) {
		return fmt.Errorf("domain [%d,%d] not representable in %d bits", o.Min, o.Max, o.Width)
	}
	return nil
}

// Store is a monotonic conjunction of integer constraints.
//
// A Store is not safe for concurrent use.
type Store struct {
	opts        Options
	constraints []Constraint
	vars        []*Var
	known       map[*Var]bool
	values      map[*Var]int64
	nextId      int
	solves      int
}

// New makes an empty store.  A nil Options means DefaultOptions.
func New(o *Options) *Store {
	if o == nil {
		o = DefaultOptions
	}
	return &Store{
		opts:   *o,
		known:  make(map[*Var]bool),
		values: make(map[*Var]int64),
	}
}

// Options returns the store's configuration.
func (s *Store) Options() Options {
	return s.opts
}

// NewVar makes a fresh variable.  The name is only used for display.
func (s *Store) NewVar(name string) *Var {
	s.nextId++
	return &Var{
		Name: name,
		id:   s.nextId,
	}
}

// query encodes the store, adds the literal returned by goal as an
// assumption, and solves.
func (s *Store) query(goal func(k *circuit) z.Lit) (int, *gini.Gini, *circuit) {
	k := newCircuit(&s.opts)
	for _, c := range s.constraints {
		k.facts = append(k.facts, k.constraint(c))
	}
	m := k.c.T
	if goal != nil {
		m = goal(k)
	}
	g := gini.New()
	k.addTo(g)
	g.Assume(m)
	s.solves++
	return g.Solve(), g, k
}

// Ask reports whether the store entails c.
func (s *Store) Ask(c Constraint) bool {
	r, _, _ := s.query(func(k *circuit) z.Lit {
		return k.constraint(c).Not()
	})
	return r == -1
}

// IsTellOk reports whether c is consistent with the store.
func (s *Store) IsTellOk(c Constraint) bool {
	r, _, _ := s.query(func(k *circuit) z.Lit {
		return k.constraint(c)
	})
	return r == 1
}

// Tell adds c to the store if it is consistent with it.  The store
// is unchanged when Tell returns false.
func (s *Store) Tell(c Constraint) bool {
	if !s.IsTellOk(c) {
		util.Logger().WithField("constraint", c.String()).Debug("tell rejected")
		return false
	}
	s.constraints = append(s.constraints, c)
	vars(c, func(v *Var) {
		if !s.known[v] {
			s.known[v] = true
			s.vars = append(s.vars, v)
		}
	})
	return true
}

// ValueOf returns the value of v if the store admits exactly one.
func (s *Store) ValueOf(v *Var) (int64, bool) {
	if n, have := s.values[v]; have {
		return n, true
	}
	r, g, k := s.query(func(k *circuit) z.Lit {
		k.variable(v)
		return k.c.T
	})
	if r != 1 {
		return 0, false
	}
	n := decode(k.vars[v], g.Value)

	r, _, _ = s.query(func(k *circuit) z.Lit {
		return k.eq(k.variable(v), k.constant(n, k.width)).Not()
	})
	if r != -1 {
		return 0, false
	}
	// The store only grows, so a determined value stays determined.
	s.values[v] = n
	return n, true
}

// Constraints returns the told constraints in order.
func (s *Store) Constraints() []Constraint {
	acc := make([]Constraint, len(s.constraints))
	copy(acc, s.constraints)
	return acc
}

// Vars returns the variables mentioned by told constraints in the
// order they first appeared.
func (s *Store) Vars() []*Var {
	acc := make([]*Var, len(s.vars))
	copy(acc, s.vars)
	return acc
}

// Solves is the number of solver calls made so far.
func (s *Store) Solves() int {
	return s.solves
}

// VarStatus gives the bounds of a variable.
type VarStatus struct {
	Var      *Var
	Min, Max int64
}

func (v VarStatus) String() string {
	if v.Min == v.Max {
		return fmt.Sprintf("%s = %d", v.Var, v.Min)
	}
	return fmt.Sprintf("%s in [%d..%d]", v.Var, v.Min, v.Max)
}

// Status computes the tightest bounds of every variable in the store.
func (s *Store) Status() []VarStatus {
	acc := make([]VarStatus, 0, len(s.vars))
	for _, v := range s.vars {
		acc = append(acc, VarStatus{
			Var: v,
			Min: s.bound(v, false),
			Max: s.bound(v, true),
		})
	}
	return acc
}

// bound finds the least (or greatest) value of v by bisection.
func (s *Store) bound(v *Var, upper bool) int64 {
	lo, hi := s.opts.Min, s.opts.Max
	for lo < hi {
		mid := lo + (hi-lo)/2
		if upper {
			mid = hi - (hi-lo)/2
		}
		r, _, _ := s.query(func(k *circuit) z.Lit {
			x, m := k.variable(v), k.constant(mid, k.width)
			if upper {
				return k.sle(m, x)
			}
			return k.sle(x, m)
		})
		switch {
		case upper && r == 1:
			lo = mid
		case upper:
			hi = mid - 1
		case r == 1:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return lo
}
