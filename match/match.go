/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package match implements three-valued structural matching of
// lists.
//
// A match is True when the two sides are equal now and forever, False
// when they can never be equal, and Unknown when the answer depends
// on bindings that have not been made yet.
package match

import (
	"fmt"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/data"
)

// Tri is a three-valued truth value.
type Tri int

const (
	Unknown Tri = iota
	True
	False
)

func (t Tri) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "unknown"
}

// and combines the results for two parts of a structure.  False
// dominates.
func and(a, b Tri) Tri {
	switch {
	case a == False || b == False:
		return False
	case a == True && b == True:
		return True
	}
	return Unknown
}

// Lists compares two list cells element by element.
func Lists(a, b *data.ListCell, r data.Resolver) Tri {
	acc := True
	for i := 0; ; i++ {
		if a.Same(b) {
			return acc
		}
		if !a.IsBound() || !b.IsBound() {
			return and(acc, Unknown)
		}
		if a.IsEmpty() || b.IsEmpty() {
			if a.IsEmpty() && b.IsEmpty() {
				return acc
			}
			return False
		}
		acc = and(acc, Values(a.Head(), b.Head(), r))
		if acc == False {
			return False
		}
		a, b = a.Tail(), b.Tail()
		if a == nil || b == nil {
			// A tail bound to something other than a list.
			return False
		}
		if i == maxDepth {
			return and(acc, Unknown)
		}
	}
}

// maxDepth stops comparisons of cyclic lists.
const maxDepth = 100000

// Values compares two Values.
func Values(x, y *data.Value, r data.Resolver) Tri {
	if x == y {
		return True
	}
	if x == nil || y == nil || !x.IsInitialized() || !y.IsInitialized() {
		return Unknown
	}
	switch {
	case x.IsNumeric() && y.IsNumeric():
		if x.Kind() == data.IntVar && y.Kind() == data.IntVar && x.Var() == y.Var() {
			return True
		}
		n, ok := data.Number(x, r)
		m, ok2 := data.Number(y, r)
		if !ok || !ok2 {
			return Unknown
		}
		if n == m {
			return True
		}
		return False
	case x.Kind() == data.List && y.Kind() == data.List:
		return Lists(x.List(), y.List(), r)
	}
	return False
}

// Binder gives access to the rule-local variables of a pattern.
// *data.Environment is a Binder.
type Binder interface {
	Get(name string) *data.Value
	Set(name string, v *data.Value)
}

// Pattern matches the list held by v against a list literal or
// constructor.
//
// A pattern variable that is not yet bound adopts the value at its
// position by rebinding the variable's slot in env.  When both the
// pattern variable and the value are unbound, the result is Unknown.
func Pattern(v *data.Value, pat *ast.Expr, env Binder, r data.Resolver) Tri {
	if v.Kind() != data.List {
		if v.IsInitialized() {
			return False
		}
		return Unknown
	}
	return pattern(v, pat, env, r)
}

func pattern(rest *data.Value, pat *ast.Expr, env Binder, r data.Resolver) Tri {
	acc := True
	cell := rest.List()
	for _, e := range pat.Elems {
		if !cell.IsBound() {
			return and(acc, Unknown)
		}
		if cell.IsEmpty() {
			return False
		}
		acc = and(acc, element(cell.Head(), e, env, r))
		if acc == False {
			return False
		}
		rest = cell.TailValue()
		if rest.Kind() != data.List {
			return False
		}
		cell = rest.List()
	}

	switch pat.Kind {
	case ast.ListExpr:
		switch {
		case !cell.IsBound():
			return and(acc, Unknown)
		case cell.IsEmpty():
			return acc
		}
		return False
	case ast.ConsExpr:
		return and(acc, element(rest, pat.Tail, env, r))
	}
	panic(fmt.Sprintf("match: %s pattern %s", pat.Kind, pat))
}

// element matches the value h against one pattern element.
func element(h *data.Value, e *ast.Expr, env Binder, r data.Resolver) Tri {
	switch e.Kind {
	case ast.WildcardExpr:
		return True
	case ast.NumExpr:
		if !h.IsInitialized() {
			return Unknown
		}
		if !h.IsNumeric() {
			return False
		}
		n, ok := data.Number(h, r)
		switch {
		case !ok:
			return Unknown
		case n == e.Num:
			return True
		}
		return False
	case ast.VarExpr:
		local := env.Get(e.Name)
		if local.IsInitialized() {
			return Values(local, h, r)
		}
		if !h.IsInitialized() {
			return Unknown
		}
		env.Set(e.Name, h)
		return True
	case ast.ListExpr, ast.ConsExpr:
		if !h.IsInitialized() {
			return Unknown
		}
		if h.Kind() != data.List {
			return False
		}
		return pattern(h, e, env, r)
	}
	panic(fmt.Sprintf("match: %s in list pattern", e.Kind))
}
