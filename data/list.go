package data

type cellState int

const (
	unbound cellState = iota
	empty
	cons
)

// ListCell is one cell of a list: unbound, empty, or a cons of a
// head Value and a tail Value.
//
// An unbound cell can be linked to another cell, after which every
// operation on it acts on the other cell.  Once empty a cell stays
// empty; once cons its head and tail are fixed.
type ListCell struct {
	state cellState
	head  *Value
	tail  *Value
	link  *ListCell
}

// NewCell makes an unbound cell.
func NewCell() *ListCell {
	return &ListCell{}
}

// deref follows links.
func (c *ListCell) deref() *ListCell {
	for c.link != nil {
		c = c.link
	}
	return c
}

// Same reports whether two cells are the same after following links.
func (c *ListCell) Same(d *ListCell) bool {
	return c.deref() == d.deref()
}

func (c *ListCell) IsBound() bool {
	return c.deref().state != unbound
}

func (c *ListCell) IsEmpty() bool {
	return c.deref().state == empty
}

func (c *ListCell) IsCons() bool {
	return c.deref().state == cons
}

// Head returns the head of a cons cell or nil.
func (c *ListCell) Head() *Value {
	return c.deref().head
}

// TailValue returns the Value holding the rest of a cons cell, or
// nil if the cell is not a cons.  An uninitialized tail is bound to a
// fresh unbound cell.
func (c *ListCell) TailValue() *Value {
	c = c.deref()
	if c.state != cons {
		return nil
	}
	if c.tail == nil {
		c.tail = NewValue("")
	}
	if !c.tail.IsInitialized() {
		c.tail.BindList(NewCell())
	}
	return c.tail
}

// Tail returns the next cell of a cons, or nil.
func (c *ListCell) Tail() *ListCell {
	v := c.TailValue()
	if v == nil || v.Kind() != List {
		return nil
	}
	return v.List()
}

func (c *ListCell) bind(s cellState) *ListCell {
	c = c.deref()
	if c.state != unbound {
		panic("data: rebinding a list cell")
	}
	c.state = s
	return c
}

func (c *ListCell) SetEmpty() {
	c.bind(empty)
}

// SetCons binds the cell to head and tail.  A nil tail is created the
// first time it is observed.
func (c *ListCell) SetCons(head, tail *Value) {
	c = c.bind(cons)
	c.head = head
	c.tail = tail
}

// Link makes an unbound cell an alias of d.
func (c *ListCell) Link(d *ListCell) {
	c, d = c.deref(), d.deref()
	if c == d {
		return
	}
	if c.state != unbound {
		panic("data: linking a bound list cell")
	}
	c.link = d
}

// Elems returns the heads of the list up to the first cell that is
// not a cons, together with that cell.  At most maxCells heads are
// returned.
func (c *ListCell) Elems() ([]*Value, *ListCell) {
	var acc []*Value
	c = c.deref()
	for c.state == cons && len(acc) < maxCells {
		acc = append(acc, c.head)
		next := c.Tail()
		if next == nil {
			break
		}
		c = next.deref()
	}
	return acc, c
}
