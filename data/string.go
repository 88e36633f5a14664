package data

import (
	"strconv"
	"strings"
)

// String renders a Value for display.
//
// Constants print their value.  A store variable prints its value
// when the store determines one, otherwise its name or "?".  Lists
// print as "head : tail" ending in "[]", or in "?" when the tail is
// unbound.  Unbound values print their name or "?".
func String(v *Value, r Resolver) string {
	if v == nil {
		return "?"
	}
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.n, 10)
	case IntVar:
		if n, ok := Number(v, r); ok {
			return strconv.FormatInt(n, 10)
		}
		if v.v.Name != "" {
			return v.v.Name
		}
		return orUnknown(v.Name)
	case List:
		return cellString(v.l, v.Name, r)
	}
	return orUnknown(v.Name)
}

// maxCells bounds the rendering of cyclic lists.
const maxCells = 1000

func cellString(c *ListCell, name string, r Resolver) string {
	var b strings.Builder
	for i := 0; ; i++ {
		if i == maxCells {
			b.WriteString("...")
			return b.String()
		}
		c = c.deref()
		switch c.state {
		case empty:
			b.WriteString("[]")
			return b.String()
		case unbound:
			if 0 < i {
				name = ""
			}
			b.WriteString(orUnknown(name))
			return b.String()
		}
		h := String(c.head, r)
		if c.head != nil && c.head.kind == List && c.head.l.IsCons() {
			h = "(" + h + ")"
		}
		b.WriteString(h)
		b.WriteString(" : ")
		t := c.tail
		if t == nil || t.kind != List {
			b.WriteString(String(t, r))
			return b.String()
		}
		c, name = t.l, t.Name
	}
}

func orUnknown(name string) string {
	if name == "" || name == "_" {
		return "?"
	}
	return name
}
