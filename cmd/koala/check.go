package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/check"
	"github.com/Comcast/koala/tools"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// checked is the result of loading and checking one file.
type checked struct {
	Filename string
	Program  *ast.Program
	Diags    check.Diagnostics
	Analysis *tools.Analysis
	Err      error
}

func (c *checked) ok() bool {
	return c.Err == nil && !c.Diags.HasErrors()
}

func checkFile(filename string, roots []string) *checked {
	c := &checked{Filename: filename}
	if c.Program, c.Err = tools.LoadFile(filename); c.Err != nil {
		return c
	}
	_, c.Diags = check.LoadProgram(c.Program)
	if !c.Diags.HasErrors() {
		c.Analysis, c.Err = tools.Analyze(c.Program, roots...)
	}
	return c
}

func (c *checked) print(w io.Writer, p *palette) {
	if c.Err != nil {
		fmt.Fprintf(w, "%s: %s\n", c.Filename, p.Error("%v", c.Err))
		return
	}
	for _, d := range c.Diags {
		fmt.Fprintf(w, "%s: %s\n", c.Filename, p.diagnostic(d))
	}
	if c.Analysis != nil {
		a := c.Analysis
		for _, k := range a.Undefined {
			fmt.Fprintf(w, "%s: %s\n", c.Filename, p.Warning("undefined predicate %s", k))
		}
		for _, k := range a.Unreachable {
			fmt.Fprintf(w, "%s: %s\n", c.Filename, p.Faint("unreachable predicate %s", k))
		}
	}
	if c.ok() {
		fmt.Fprintf(w, "%s: %s\n", c.Filename, p.Ok("ok (%d rules)", len(c.Program.Rules)))
	}
}

func newCheckCmd() *cobra.Command {
	var roots []string

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Check programs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p := newPalette(cfg.Colorize(os.Stdout))

			results := make([]*checked, len(args))
			var g errgroup.Group
			for i, filename := range args {
				i, filename := i, filename
				g.Go(func() error {
					results[i] = checkFile(filename, roots)
					return nil
				})
			}
			g.Wait()

			bad := 0
			for _, c := range results {
				c.print(cmd.OutOrStdout(), p)
				if !c.ok() {
					bad++
				}
			}
			if 0 < bad {
				return errors.Errorf("%d of %d programs rejected", bad, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roots, "root", nil, "predicates (name/arity) that start reachability analysis")

	return cmd
}
