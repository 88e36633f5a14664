package store

import (
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// bits is a two's complement bit vector, least significant bit
// first.
type bits []z.Lit

// circuit encodes integer constraints as a boolean circuit.
//
// Every term evaluates to a vector of width bits plus a literal that
// is true exactly when the term is defined: no intermediate result
// overflows the width and no divisor is zero.  A constraint holds
// when it is defined and its relation is true.
//
// Facts are literals that must hold in every model: domain bounds of
// variables and the definitions of quotients and remainders.
type circuit struct {
	c        *logic.C
	width    int
	min, max int64
	vars     map[*Var]bits
	facts    []z.Lit
}

func newCircuit(o *Options) *circuit {
	return &circuit{
		c:     logic.NewC(),
		width: o.Width,
		min:   o.Min,
		max:   o.Max,
		vars:  make(map[*Var]bits),
	}
}

// addTo writes the CNF of the circuit and its facts to the solver.
func (k *circuit) addTo(dst inter.Adder) {
	k.c.ToCnf(dst)
	dst.Add(k.c.T)
	dst.Add(0)
	for _, m := range k.facts {
		dst.Add(m)
		dst.Add(0)
	}
}

func (k *circuit) or(a, b z.Lit) z.Lit {
	return k.c.And(a.Not(), b.Not()).Not()
}

func (k *circuit) xor(a, b z.Lit) z.Lit {
	return k.or(k.c.And(a, b.Not()), k.c.And(a.Not(), b))
}

func (k *circuit) ite(i, t, e z.Lit) z.Lit {
	return k.or(k.c.And(i, t), k.c.And(i.Not(), e))
}

func (k *circuit) ands(ms ...z.Lit) z.Lit {
	acc := k.c.T
	for _, m := range ms {
		acc = k.c.And(acc, m)
	}
	return acc
}

func fits(n int64, w int) bool {
	lo, hi := -(int64(1) << uint(w-1)), (int64(1)<<uint(w-1))-1
	return lo <= n && n <= hi
}

func (k *circuit) constant(n int64, w int) bits {
	x := make(bits, w)
	for i := range x {
		// Right shifts of a signed value fill with the sign
		// bit, so this is right for i >= 64 too.
		if (n>>uint(i))&1 == 1 {
			x[i] = k.c.T
		} else {
			x[i] = k.c.F
		}
	}
	return x
}

func (k *circuit) variable(v *Var) bits {
	if x, have := k.vars[v]; have {
		return x
	}
	x := make(bits, k.width)
	for i := range x {
		x[i] = k.c.Lit()
	}
	k.vars[v] = x
	k.facts = append(k.facts,
		k.sle(k.constant(k.min, k.width), x),
		k.sle(x, k.constant(k.max, k.width)))
	return x
}

// ext sign-extends (or truncates) x to w bits.
func ext(x bits, w int) bits {
	if w <= len(x) {
		return x[:w]
	}
	y := make(bits, w)
	copy(y, x)
	for i := len(x); i < w; i++ {
		y[i] = x[len(x)-1]
	}
	return y
}

func (k *circuit) add(x, y bits, carry z.Lit) bits {
	s := make(bits, len(x))
	for i := range x {
		p := k.xor(x[i], y[i])
		s[i] = k.xor(p, carry)
		carry = k.or(k.c.And(x[i], y[i]), k.c.And(carry, p))
	}
	return s
}

func not(x bits) bits {
	y := make(bits, len(x))
	for i, m := range x {
		y[i] = m.Not()
	}
	return y
}

func (k *circuit) sub(x, y bits) bits {
	return k.add(x, not(y), k.c.T)
}

func (k *circuit) neg(x bits) bits {
	return k.add(k.constant(0, len(x)), not(x), k.c.T)
}

func (k *circuit) abs(x bits) bits {
	n := k.neg(x)
	sign := x[len(x)-1]
	y := make(bits, len(x))
	for i := range x {
		y[i] = k.ite(sign, n[i], x[i])
	}
	return y
}

// mul multiplies modulo 2^len(x).
func (k *circuit) mul(x, y bits) bits {
	n := len(x)
	acc := k.constant(0, n)
	for i := 0; i < n; i++ {
		pp := make(bits, n)
		for j := range pp {
			if j < i {
				pp[j] = k.c.F
			} else {
				pp[j] = k.c.And(x[j-i], y[i])
			}
		}
		acc = k.add(acc, pp, k.c.F)
	}
	return acc
}

func (k *circuit) eq(x, y bits) z.Lit {
	acc := k.c.T
	for i := range x {
		acc = k.c.And(acc, k.xor(x[i], y[i]).Not())
	}
	return acc
}

func (k *circuit) isZero(x bits) z.Lit {
	acc := k.c.T
	for _, m := range x {
		acc = k.c.And(acc, m.Not())
	}
	return acc
}

// slt is signed less-than.
func (k *circuit) slt(x, y bits) z.Lit {
	w := len(x) + 1
	d := k.sub(ext(x, w), ext(y, w))
	return d[w-1]
}

func (k *circuit) sle(x, y bits) z.Lit {
	return k.slt(y, x).Not()
}

// representable says that the wide vector x fits in w bits.
func (k *circuit) representable(x bits, w int) z.Lit {
	acc := k.c.T
	for i := w; i < len(x); i++ {
		acc = k.c.And(acc, k.xor(x[i], x[w-1]).Not())
	}
	return acc
}

func (k *circuit) term(t Term) (bits, z.Lit) {
	w := k.width
	switch vv := t.(type) {
	case Const:
		if !fits(int64(vv), w) {
			return k.constant(0, w), k.c.F
		}
		return k.constant(int64(vv), w), k.c.T
	case *Var:
		return k.variable(vv), k.c.T
	case *Bin:
		x, dx := k.term(vv.L)
		y, dy := k.term(vv.R)
		def := k.c.And(dx, dy)
		switch vv.Op {
		case Add, Sub:
			var wide bits
			if vv.Op == Add {
				wide = k.add(ext(x, w+1), ext(y, w+1), k.c.F)
			} else {
				wide = k.sub(ext(x, w+1), ext(y, w+1))
			}
			return wide[:w], k.c.And(def, k.representable(wide, w))
		case Mul:
			wide := k.mul(ext(x, 2*w), ext(y, 2*w))
			return wide[:w], k.c.And(def, k.representable(wide, w))
		case Div, Mod:
			q, r, nz := k.divmod(x, y)
			if vv.Op == Div {
				return q[:w], k.ands(def, nz, k.representable(q, w))
			}
			return r[:w], k.ands(def, nz)
		}
	}
	panic("store: unknown term")
}

// divmod introduces a quotient and a remainder for n / d with
// truncating division.  Whenever d is not zero they are forced to
// satisfy n = q*d + r, |r| < |d|, and r is zero or has the sign of n.
// The quotient has one extra bit so that MIN / -1 is representable
// and reported as an overflow rather than excluded.
func (k *circuit) divmod(n, d bits) (q, r bits, nonZero z.Lit) {
	w := k.width
	q = make(bits, w+1)
	r = make(bits, w+1)
	for i := range q {
		q[i] = k.c.Lit()
		r[i] = k.c.Lit()
	}
	m := 2*w + 2
	prod := k.mul(ext(q, m), ext(d, m))
	sum := k.add(prod, ext(r, m), k.c.F)
	exact := k.eq(ext(n, m), sum)
	smaller := k.slt(k.abs(ext(r, w+2)), k.abs(ext(d, w+2)))
	signed := k.or(k.isZero(r), k.xor(r[w], n[w-1]).Not())

	nonZero = k.isZero(d).Not()
	k.facts = append(k.facts, k.or(nonZero.Not(), k.ands(exact, smaller, signed)))
	return q, r, nonZero
}

func (k *circuit) relation(op RelOp, x, y bits) z.Lit {
	switch op {
	case Eq:
		return k.eq(x, y)
	case Neq:
		return k.eq(x, y).Not()
	case Lt:
		return k.slt(x, y)
	case Leq:
		return k.sle(x, y)
	case Gt:
		return k.slt(y, x)
	case Geq:
		return k.sle(y, x)
	}
	panic("store: unknown relation")
}

// constraint returns a literal that is true exactly when c is
// defined and holds.
func (k *circuit) constraint(c Constraint) z.Lit {
	switch vv := c.(type) {
	case *Rel:
		x, dx := k.term(vv.L)
		y, dy := k.term(vv.R)
		return k.ands(dx, dy, k.relation(vv.Op, x, y))
	case And:
		acc := k.c.T
		for _, x := range vv {
			acc = k.c.And(acc, k.constraint(x))
		}
		return acc
	}
	panic("store: unknown constraint")
}

// decode reads a value from a model.
func decode(x bits, value func(z.Lit) bool) int64 {
	var n int64
	for i := len(x) - 1; 0 <= i; i-- {
		n <<= 1
		if value(x[i]) {
			n |= 1
		}
	}
	// Sign-extend.
	shift := uint(64 - len(x))
	return (n << shift) >> shift
}
