package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Comcast/koala/tools"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	var (
		format, from, to, out string
		guards                bool
	)

	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Render a program's call graph",
		Long: `Render the call graph of a program as Graphviz dot, Mermaid or
PNG (which needs the dot executable).  An edge from --from to --to, given as
name/arity, is highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := tools.LoadFile(args[0])
			if err != nil {
				return err
			}

			if format == "png" {
				basename := out
				if basename == "" {
					basename = strings.TrimSuffix(args[0], ".koala")
				}
				filename, err := tools.PNG(p, strings.TrimSuffix(basename, ".png"), from, to)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), filename)
				return nil
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "dot":
				return tools.Dot(p, w, from, to)
			case "mermaid":
				opts := &tools.MermaidOpts{
					ShowGuards:    guards,
					FactFill:      "#bcf2db",
					UndefinedFill: "#f98b8b",
				}
				return tools.Mermaid(p, w, opts, from, to)
			}
			return errors.Errorf("unknown format %q", format)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&format, "format", "f", "dot", "dot, mermaid or png")
	fs.StringVar(&from, "from", "", "caller of the highlighted edge")
	fs.StringVar(&to, "to", "", "callee of the highlighted edge")
	fs.StringVarP(&out, "out", "o", "", "output file")
	fs.BoolVar(&guards, "guards", true, "label Mermaid edges with guards")

	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		css   []string
		graph bool
		out   string
	)

	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Render an HTML report of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return tools.ReadAndRenderProgramPage(args[0], css, w, graph)
		},
	}

	fs := cmd.Flags()
	fs.StringSliceVar(&css, "css", nil, "stylesheet URLs")
	fs.BoolVar(&graph, "graph", true, "include a Mermaid call graph")
	fs.StringVarP(&out, "out", "o", "", "output file")

	return cmd
}
