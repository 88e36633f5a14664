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

// Package data is the runtime data model: single-assignment Values,
// lazily grown list cells, rule Environments and Closures, goal
// Literals and the rule Table.
//
// Values are shared by pointer.  An Environment slot, a Literal
// argument and the head of a list cell can all hold the same *Value,
// and binding it is visible through every holder.
package data

import (
	"fmt"

	"github.com/Comcast/koala/store"
)

// Kind is the binding state of a Value.
type Kind int

const (
	Uninitialized Kind = iota
	Int
	IntVar
	List
)

var kindNames = []string{"uninitialized", "int", "intvar", "list"}

func (k Kind) String() string {
	return kindNames[k]
}

// Value is a single-assignment cell.
//
// A Value starts Uninitialized and may be bound exactly once, to an
// integer constant, to a store variable or to a list cell.  Binding
// a Value that is already bound panics.
type Value struct {
	// Name is the source variable the Value was made for, if any.
	// It is only used for display.
	Name string

	kind Kind
	n    int64
	v    *store.Var
	l    *ListCell
}

// NewValue makes an uninitialized Value.
func NewValue(name string) *Value {
	return &Value{
		Name: name,
	}
}

// NewInt makes a Value bound to an integer constant.
func NewInt(n int64) *Value {
	return &Value{
		kind: Int,
		n:    n,
	}
}

// NewList makes a Value bound to a fresh unbound list cell.
func NewList(name string) *Value {
	v := NewValue(name)
	v.BindList(NewCell())
	return v
}

func (v *Value) Kind() Kind {
	return v.kind
}

func (v *Value) IsInitialized() bool {
	return v.kind != Uninitialized
}

// IsNumeric is true for integer constants and store variables.
func (v *Value) IsNumeric() bool {
	return v.kind == Int || v.kind == IntVar
}

// Int returns the constant of an Int Value.
func (v *Value) Int() int64 {
	v.must(Int)
	return v.n
}

// Var returns the store variable of an IntVar Value.
func (v *Value) Var() *store.Var {
	v.must(IntVar)
	return v.v
}

// List returns the list cell of a List Value.
func (v *Value) List() *ListCell {
	v.must(List)
	return v.l
}

func (v *Value) must(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("data: %s is %s, not %s", v.label(), v.kind, k))
	}
}

func (v *Value) bind(k Kind) {
	if v.kind != Uninitialized {
		panic(fmt.Sprintf("data: rebinding %s (%s) as %s", v.label(), v.kind, k))
	}
	v.kind = k
}

func (v *Value) label() string {
	if v.Name == "" {
		return "value"
	}
	return "'" + v.Name + "'"
}

func (v *Value) BindInt(n int64) {
	v.bind(Int)
	v.n = n
}

func (v *Value) BindVar(x *store.Var) {
	v.bind(IntVar)
	v.v = x
}

func (v *Value) BindList(c *ListCell) {
	v.bind(List)
	v.l = c
}

// Resolver gives the determined value of a store variable.
// *store.Store is a Resolver.
type Resolver interface {
	ValueOf(*store.Var) (int64, bool)
}

// Number returns the integer a numeric Value denotes, if it is
// known.
func Number(v *Value, r Resolver) (int64, bool) {
	switch v.kind {
	case Int:
		return v.n, true
	case IntVar:
		if r == nil {
			return 0, false
		}
		return r.ValueOf(v.v)
	}
	return 0, false
}
