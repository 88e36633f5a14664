package data

import (
	"strings"

	"github.com/Comcast/koala/ast"
)

// Environment maps rule-local variable names to Values.  There is
// one Environment per rule definition.
type Environment struct {
	names []string
	slots map[string]*Value
}

// NewEnvironment makes an Environment with one uninitialized Value
// per name.
func NewEnvironment(names ...string) *Environment {
	e := &Environment{
		names: make([]string, 0, len(names)),
		slots: make(map[string]*Value, len(names)),
	}
	for _, name := range names {
		if _, have := e.slots[name]; have {
			continue
		}
		e.names = append(e.names, name)
		e.slots[name] = NewValue(name)
	}
	return e
}

// Names returns the variable names in declaration order.
func (e *Environment) Names() []string {
	return e.names
}

// Get returns the Value for the name or nil.
func (e *Environment) Get(name string) *Value {
	return e.slots[name]
}

// Set makes the slot hold v.  The name must be declared.
func (e *Environment) Set(name string, v *Value) {
	if _, have := e.slots[name]; !have {
		panic("data: undeclared variable " + name)
	}
	e.slots[name] = v
}

// Reset gives every slot a fresh uninitialized Value.
func (e *Environment) Reset() {
	for _, name := range e.names {
		e.slots[name] = NewValue(name)
	}
}

// Closure pairs a rule with its Environment.
type Closure struct {
	Rule *ast.Rule
	Env  *Environment
}

func (c *Closure) Key() string {
	return c.Rule.Key()
}

func (c *Closure) String() string {
	return c.Rule.String()
}

// Literal is a pending predicate call.  Its arguments are shared with
// whatever produced them.
type Literal struct {
	Name string
	Args []*Value
}

func (l *Literal) Key() string {
	return ast.Key(l.Name, len(l.Args))
}

// Render writes the literal with its arguments' current values.
func (l *Literal) Render(r Resolver) string {
	if len(l.Args) == 0 {
		return l.Name
	}
	ss := make([]string, len(l.Args))
	for i, v := range l.Args {
		ss[i] = String(v, r)
	}
	return l.Name + "(" + strings.Join(ss, ", ") + ")"
}

// Goal is the ordered list of pending literals.
type Goal []*Literal

// Splice replaces the literal at index i with lits.  An index of -1
// appends lits instead.
func (g *Goal) Splice(i int, lits []*Literal) {
	old := *g
	if i < 0 {
		*g = append(old, lits...)
		return
	}
	acc := make(Goal, 0, len(old)-1+len(lits))
	acc = append(acc, old[:i]...)
	acc = append(acc, lits...)
	acc = append(acc, old[i+1:]...)
	*g = acc
}

// Render shows every literal.
func (g Goal) Render(r Resolver) []string {
	acc := make([]string, len(g))
	for i, l := range g {
		acc[i] = l.Render(r)
	}
	return acc
}

// Table maps "name/arity" to closures in source order.
type Table struct {
	keys     []string
	closures map[string][]*Closure
}

func NewTable() *Table {
	return &Table{
		closures: make(map[string][]*Closure),
	}
}

// Add appends a closure under its rule's key.
func (t *Table) Add(c *Closure) {
	k := c.Key()
	if _, have := t.closures[k]; !have {
		t.keys = append(t.keys, k)
	}
	t.closures[k] = append(t.closures[k], c)
}

// Declare records a key without closures.
func (t *Table) Declare(key string) {
	if _, have := t.closures[key]; !have {
		t.keys = append(t.keys, key)
		t.closures[key] = nil
	}
}

func (t *Table) Has(key string) bool {
	_, have := t.closures[key]
	return have
}

func (t *Table) Get(key string) []*Closure {
	return t.closures[key]
}

// Keys returns the keys in the order they were first added.
func (t *Table) Keys() []string {
	return t.keys
}

// Closures returns every closure in source order.
func (t *Table) Closures() []*Closure {
	var acc []*Closure
	for _, k := range t.keys {
		acc = append(acc, t.closures[k]...)
	}
	return acc
}

// Copy returns a table that shares closures with t but can be
// extended independently.
func (t *Table) Copy() *Table {
	u := NewTable()
	u.keys = append(u.keys, t.keys...)
	for k, cs := range t.closures {
		u.closures[k] = append([]*Closure(nil), cs...)
	}
	return u
}
