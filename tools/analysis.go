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

// Package tools has utilities for looking at programs: analysis,
// call graphs and reports.
package tools

import (
	"sort"

	"github.com/Comcast/koala/ast"
)

// Graph is the call graph of a program.  Predicates are identified
// by their keys ("name/arity").
type Graph struct {
	// Predicates lists each defined predicate once, in the order
	// of its first rule.
	Predicates []string

	// Rules maps a predicate to its rules in source order.
	Rules map[string][]*ast.Rule

	// Calls maps a predicate to the predicates its bodies call,
	// without duplicates, in order of first call.
	Calls map[string][]string
}

// NewGraph builds the call graph of p.  Calls to undefined predicates
// appear in Calls but not in Predicates.
func NewGraph(p *ast.Program) *Graph {
	g := &Graph{
		Rules: make(map[string][]*ast.Rule),
		Calls: make(map[string][]string),
	}
	seen := make(map[string]map[string]bool)
	for _, r := range p.Rules {
		k := r.Key()
		if _, have := g.Rules[k]; !have {
			g.Predicates = append(g.Predicates, k)
			seen[k] = make(map[string]bool)
		}
		g.Rules[k] = append(g.Rules[k], r)
		for _, x := range r.Body {
			if x.Kind != ast.CallExpr {
				continue
			}
			callee := ast.Key(x.Name, len(x.Elems))
			if !seen[k][callee] {
				seen[k][callee] = true
				g.Calls[k] = append(g.Calls[k], callee)
			}
		}
	}
	return g
}

// Defined reports whether the predicate has at least one rule.
func (g *Graph) Defined(key string) bool {
	_, have := g.Rules[key]
	return have
}

// Reachable returns the set of predicates reachable from the roots,
// including the roots.
func (g *Graph) Reachable(roots ...string) map[string]bool {
	acc := make(map[string]bool)
	pending := append([]string{}, roots...)
	for 0 < len(pending) {
		k := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if acc[k] {
			continue
		}
		acc[k] = true
		pending = append(pending, g.Calls[k]...)
	}
	return acc
}

// Recursive reports whether the predicate can call itself.
func (g *Graph) Recursive(key string) bool {
	return g.Reachable(g.Calls[key]...)[key]
}

// Analysis is a summary of a program with some possible problems.
type Analysis struct {
	Predicates int
	Rules      int

	// Guards counts rules with a non-trivial ask.
	Guards int

	// Tells counts rules with a non-trivial tell.
	Tells int

	// Facts are the predicates whose rules all have empty bodies.
	Facts []string

	// Orphans are the predicates that no rule body calls.
	Orphans []string

	// Unreachable are the predicates that can't be reached from
	// the roots given to Analyze.  Empty if there were no roots.
	Unreachable []string

	// Undefined are called predicates that have no rules.
	Undefined []string

	// Recursive are the predicates that can call themselves.
	Recursive []string
}

func trivial(xs []*ast.Expr) bool {
	for _, x := range xs {
		if x.Kind != ast.TrueExpr {
			return false
		}
	}
	return true
}

func calls(xs []*ast.Expr) bool {
	for _, x := range xs {
		if x.Kind == ast.CallExpr {
			return true
		}
	}
	return false
}

// Analyze summarizes p.  The roots, if any, are predicate keys from
// which reachability is computed.
func Analyze(p *ast.Program, roots ...string) (*Analysis, error) {
	g := NewGraph(p)

	a := Analysis{
		Predicates: len(g.Predicates),
		Rules:      len(p.Rules),
	}

	called := make(map[string]bool)
	undefined := make(map[string]bool)
	for _, k := range g.Predicates {
		fact := true
		for _, r := range g.Rules[k] {
			if !trivial(r.Ask) {
				a.Guards++
			}
			if !trivial(r.Tell) {
				a.Tells++
			}
			if calls(r.Body) {
				fact = false
			}
		}
		if fact {
			a.Facts = append(a.Facts, k)
		}
		for _, callee := range g.Calls[k] {
			if callee != k {
				called[callee] = true
			}
			if !g.Defined(callee) {
				undefined[callee] = true
			}
		}
		if g.Recursive(k) {
			a.Recursive = append(a.Recursive, k)
		}
	}

	for _, k := range g.Predicates {
		if !called[k] {
			a.Orphans = append(a.Orphans, k)
		}
	}

	if 0 < len(roots) {
		reached := g.Reachable(roots...)
		for _, k := range g.Predicates {
			if !reached[k] {
				a.Unreachable = append(a.Unreachable, k)
			}
		}
	}

	a.Undefined = keysToStringSlice(undefined)

	return &a, nil
}

// keysToStringSlice converts the keys from a map into a sorted slice
// of strings.
func keysToStringSlice(m map[string]bool) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}
