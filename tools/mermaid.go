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

package tools

import (
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/util"
)

type MermaidOpts struct {
	// ShowGuards will result in an edge label that's the guard
	// of the calling rule (if any).
	ShowGuards bool `json:"showGuards"`

	// FactFill is the fill color of predicates that call
	// nothing.
	FactFill string `json:"factFill,omitempty"`

	// UndefinedFill is the fill color of called predicates that
	// have no rules.
	UndefinedFill string `json:"undefinedFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the call graph of the given program.
func Mermaid(p *ast.Program, w io.Writer, opts *MermaidOpts, from, to string) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowGuards:    true,
			FactFill:      "#bcf2db",
			UndefinedFill: "#f98b8b",
		}
	}

	g := NewGraph(p)

	util.Logger().Debugf("mermaid: processing %d predicates", len(g.Predicates))

	fmt.Fprintf(w, "graph TB\n")

	nids := make(map[string]string)

	node := func(k string) string {
		if nid, already := nids[k]; already {
			return nid
		}
		nid := fmt.Sprintf("n%d", len(nids)+1)
		nids[k] = nid

		rules, defined := g.Rules[k]
		switch {
		case !defined:
			fmt.Fprintf(w, "  %s>\"%s\"]\n", nid, k)
			if opts.UndefinedFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.UndefinedFill)
			}
		case !calls(bodies(rules)):
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, k)
			if opts.FactFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.FactFill)
			}
		default:
			fmt.Fprintf(w, "  %s(\"%s\")\n", nid, k)
		}
		if k == to {
			fmt.Fprintf(w, "  style %s stroke:red,stroke-width:3px\n", nid)
		}

		return nid
	}

	for _, k := range g.Predicates {
		node(k)
	}

	for _, k := range g.Predicates {
		for _, r := range g.Rules[k] {
			for _, x := range r.Body {
				if x.Kind != ast.CallExpr {
					continue
				}
				callee := ast.Key(x.Name, len(x.Elems))
				label := ""
				if opts.ShowGuards && !trivial(r.Ask) {
					guard := strings.Replace(section(r.Ask), `"`, `'`, -1)
					label = fmt.Sprintf(`-- "%s"`, guard)
				}
				arrow := "-->"
				if k == from && callee == to {
					arrow = "==>"
					if label != "" {
						label = strings.Replace(label, "--", "==", 1)
					}
				}
				fmt.Fprintf(w, "  %s %s %s %s\n", node(k), label, arrow, node(callee))
			}
		}
	}

	_, err := fmt.Fprintf(w, "\n")
	return err
}
