package tools

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Comcast/koala/ast"

	md "github.com/russross/blackfriday/v2"
)

// ReportMarkdown describes a program and its analysis in Markdown.
func ReportMarkdown(p *ast.Program, a *Analysis) []byte {
	var b bytes.Buffer
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	list := func(title string, keys []string) {
		if len(keys) == 0 {
			return
		}
		f("**%s**:", title)
		f("")
		for _, k := range keys {
			f("* [`%s`](#%s)", k, anchor(k))
		}
		f("")
	}

	f("%d predicates, %d rules (%d guarded, %d telling).", a.Predicates, a.Rules, a.Guards, a.Tells)
	f("")
	list("Facts", a.Facts)
	list("Recursive", a.Recursive)
	list("Never called", a.Orphans)
	list("Unreachable", a.Unreachable)
	list("Undefined", a.Undefined)

	return b.Bytes()
}

func anchor(key string) string {
	acc := make([]rune, 0, len(key))
	for _, r := range key {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			acc = append(acc, r)
		default:
			acc = append(acc, '_')
		}
	}
	return "pred_" + string(acc)
}

// RenderProgramHTML writes an HTML fragment with the analysis and
// every predicate's rules.
func RenderProgramHTML(p *ast.Program, a *Analysis, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="analysis doc">%s</div>`, md.Run(ReportMarkdown(p, a)))

	g := NewGraph(p)
	f(`<div class="predicates"><table>`)
	for _, k := range g.Predicates {
		f(`<tr class="predicate"><td><span id="%s" class="predicateName">%s</span></td><td>`, anchor(k), html(k))
		f(`<div class="rules">`)
		f(`<table>`)
		for i, r := range g.Rules[k] {
			f(`<tr><td><div class="ruleNum">%d</div></td><td>`, i)
			f(`<table>`)
			if !trivial(r.Ask) {
				f(`<tr><td>ask</td><td><code>%s</code></td></tr>`, html(section(r.Ask)))
			}
			if !trivial(r.Tell) {
				f(`<tr><td>tell</td><td><code>%s</code></td></tr>`, html(section(r.Tell)))
			}
			for _, x := range r.Body {
				if x.Kind != ast.CallExpr {
					continue
				}
				callee := ast.Key(x.Name, len(x.Elems))
				f(`<tr><td>call</td><td><a href="#%s"><code>%s</code></a></td></tr>`, anchor(callee), html(x.String()))
			}
			f(`</table>`)
			f(`</td></tr>`)
		}
		f(`</table>`)
		f(`</div>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderProgramPage writes a complete HTML page.  With includeGraph,
// the page also draws the call graph with Mermaid.
func RenderProgramPage(p *ast.Program, out io.Writer, cssFiles []string, includeGraph bool) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/program-html.css"}
	}

	a, err := Analyze(p)
	if err != nil {
		return err
	}

	title := p.Name
	if title == "" {
		title = "program"
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html(title))

	if includeGraph {
		fmt.Fprintf(out, `
  <script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>
  <script>mermaid.initialize({startOnLoad:true});</script>
`)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html(title))

	if includeGraph {
		fmt.Fprintf(out, `<div id="graph" class="mermaid">`+"\n")
		var g bytes.Buffer
		if err = Mermaid(p, &g, nil, "", ""); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s</div>\n", html(g.String()))
	}

	if err = RenderProgramHTML(p, a, out); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, `
  </body>
</html>
`)

	return err
}

// ReadAndRenderProgramPage loads a program file and renders it.
func ReadAndRenderProgramPage(filename string, cssFiles []string, out io.Writer, includeGraph bool) error {
	p, err := LoadFile(filename)
	if err != nil {
		return err
	}
	return RenderProgramPage(p, out, cssFiles, includeGraph)
}
