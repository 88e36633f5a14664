package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/util"
)

// Dot makes a Graphviz dot file for the call graph of the given
// program.  Each predicate is a node, and each call in a rule body is
// an edge labeled with that rule's guard.
//
// The optional from and to can be predicate keys during a step.  If
// non-zero, then the to predicate will be red, as will calls from
// from to to.
func Dot(p *ast.Program, w io.Writer, from, to string) error {
	g := NewGraph(p)

	util.Logger().Debugf("dot: processing %d predicates", len(g.Predicates))

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	ids := make(map[string]string)
	node := func(k string) string {
		if id, already := ids[k]; already {
			return id
		}
		id := fmt.Sprintf("p%d", len(ids))
		ids[k] = id

		label := html(k)
		fillcolor := "#52aa5e"
		color := "black"
		style := "filled"
		rules, defined := g.Rules[k]
		switch {
		case !defined:
			fillcolor = "#f98b8b"
			style += ",dashed"
			label += `<BR/><FONT POINT-SIZE="8">undefined</FONT>`
		case !calls(bodies(rules)):
			fillcolor = "#99ddc8"
			style += ",dashed"
		}
		if defined {
			label += fmt.Sprintf(`<BR/><FONT POINT-SIZE="8">%d rules</FONT>`, len(rules))
		}
		if to == k {
			color = "red"
			fillcolor = "#f98b8b"
		}
		fmt.Fprintf(w, "  %s [shape=\"record\", style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			id, style, color, fillcolor, label)
		return id
	}

	for _, k := range g.Predicates {
		node(k)
	}

	for _, k := range g.Predicates {
		rules := g.Rules[k]
		for i, r := range rules {
			for _, x := range r.Body {
				if x.Kind != ast.CallExpr {
					continue
				}
				callee := ast.Key(x.Name, len(x.Elems))
				label := fmt.Sprintf("%d/%d", i+1, len(rules))
				if !trivial(r.Ask) {
					label += `<BR ALIGN="LEFT"/><FONT POINT-SIZE="8">` + html(section(r.Ask)) + `</FONT>`
				}
				color := "black"
				if from == k && to == callee {
					color = "red"
				}
				fmt.Fprintf(w, "  %s -> %s [ color=\"%s\" label = <%s> ]\n",
					node(k), node(callee), color, label)
			}
		}
	}

	_, err := fmt.Fprintf(w, "}\n")
	return err
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(p *ast.Program, basename string, from, to string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(p, dotfile, from, to); err != nil {
		dotfile.Close()
		return pngname, err
	}
	if err := dotfile.Close(); err != nil {
		return pngname, err
	}
	cmd := exec.Command("dot", "-Tpng", "-Gstart=1", "-o", pngname, dotname)
	if err := cmd.Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func bodies(rules []*ast.Rule) []*ast.Expr {
	var acc []*ast.Expr
	for _, r := range rules {
		acc = append(acc, r.Body...)
	}
	return acc
}

func section(xs []*ast.Expr) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = x.String()
	}
	return strings.Join(ss, ", ")
}

func html(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}
