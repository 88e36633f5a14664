package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/check"
	"github.com/Comcast/koala/config"
	"github.com/Comcast/koala/core"
	"github.com/Comcast/koala/parse"
	"github.com/Comcast/koala/storage"
	"github.com/Comcast/koala/storage/bolt"
	"github.com/Comcast/koala/tools"
	"github.com/Comcast/koala/util"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type runOpts struct {
	Format  string
	Quiet   bool
	Metrics bool
	Status  bool
}

func newRunCmd() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run FILE GOAL",
		Short: "Run a goal against a program",
		Example: `  koala run programs/max.koala 'MAX(3, 5, Z)'
  koala run --rule-policy=first --break 'deep=step > 50' lists.koala 'LEN(1 : 2 : [], N)'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, &opts, args[0], args[1], cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.Format, "format", "text", "output format: text, json or yaml")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "only print the outcome")
	fs.BoolVar(&opts.Metrics, "metrics", false, "print metrics when done")
	fs.BoolVar(&opts.Status, "status", false, "print the constraint store when done")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts *runOpts, filename, goalSrc string, out io.Writer) error {
	p := newPalette(cfg.Colorize(os.Stdout))

	prog, err := tools.LoadFile(filename)
	if err != nil {
		return err
	}
	table, diags := check.LoadProgram(prog)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, p.diagnostic(d))
	}
	if diags.HasErrors() {
		return errors.Errorf("%s rejected", filename)
	}

	goal, err := parse.Goal(goalSrc)
	if err != nil {
		return errors.Wrap(err, "goal")
	}

	s := core.NewSession(table, cfg.StoreOptions())
	if s.LiteralPolicy, s.RulePolicy, err = cfg.Selectors(); err != nil {
		return err
	}
	if opts.Metrics {
		s.Metrics = core.NewMetrics()
	}

	diags, err = s.LoadGoal(goal)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, p.diagnostic(d))
	}
	if err != nil {
		return err
	}

	ctl, err := cfg.Control()
	if err != nil {
		return err
	}

	then := time.Now()
	walked, err := s.Walk(ctx, ctl)
	util.Logger().WithFields(map[string]interface{}{
		"steps":   s.Steps(),
		"elapsed": time.Since(then),
	}).Info("walked")

	t := &storage.Trace{
		Source: filename,
		Goal:   goalSrc,
		At:     then.UTC(),
		Walked: walked,
	}

	switch opts.Format {
	case "json", "yaml":
		bs, err := storage.Render([]*storage.Trace{t}, opts.Format)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", bs)
	case "text", "":
		printWalked(out, p, walked, opts.Quiet)
	default:
		return errors.Errorf("unknown format %q", opts.Format)
	}

	if opts.Status {
		for _, v := range s.Store.Status() {
			fmt.Fprintln(out, p.Faint("%s", v))
		}
	}
	if opts.Metrics {
		if err := s.Metrics.Dump(out); err != nil {
			return err
		}
	}

	if cfg.Trace != "" {
		if err := writeTrace(ctx, cfg.Trace, prog, t); err != nil {
			return err
		}
	}

	if err != nil {
		return errors.Wrap(err, "walk")
	}
	return nil
}

func printWalked(w io.Writer, p *palette, walked *core.Walked, quiet bool) {
	if !quiet {
		for _, s := range walked.Strides {
			if !s.Committed() {
				continue
			}
			fmt.Fprintf(w, "%s %s\n", p.Faint("%4d", s.Step), s.Literal)
			fmt.Fprintf(w, "     %s\n", p.Faint("%s", s.Rule))
			if s.Diff != "" {
				fmt.Fprintf(w, "     %s\n", colorDiff(p, s.Diff))
			}
		}
	}

	why := walked.StoppedBecause.String()
	if walked.BreakpointId != "" {
		why += " at " + walked.BreakpointId
	}
	switch walked.StoppedBecause {
	case core.Done:
		why = p.Ok("%s", why)
	case core.Deadlocked, core.InternalError:
		why = p.Error("%s", why)
	default:
		why = p.Warning("%s", why)
	}
	fmt.Fprintf(w, "%s after %d steps\n", why, len(walked.Strides))
	if walked.Error != nil {
		fmt.Fprintln(w, p.Error("%v", walked.Error))
	}
	if 0 < len(walked.Goal) {
		fmt.Fprintf(w, "goal: %s\n", strings.Join(walked.Goal, ", "))
	}
	for _, r := range walked.Results {
		fmt.Fprintln(w, r)
	}
}

// colorDiff colors the insertions and deletions that Stride.Diff
// marks.
func colorDiff(p *palette, diff string) string {
	var b strings.Builder
	for {
		i := strings.Index(diff, "{+")
		j := strings.Index(diff, "[-")
		if i < 0 && j < 0 {
			b.WriteString(diff)
			return b.String()
		}
		open, end, f := "{+", "+}", p.Insert
		if i < 0 || (0 <= j && j < i) {
			i, open, end, f = j, "[-", "-]", p.Delete
		}
		k := strings.Index(diff[i+2:], end)
		if k < 0 {
			b.WriteString(diff)
			return b.String()
		}
		b.WriteString(diff[:i])
		b.WriteString(f("%s%s%s", open, diff[i+2:i+2+k], end))
		diff = diff[i+2+k+2:]
	}
}

func writeTrace(ctx context.Context, filename string, prog *ast.Program, t *storage.Trace) error {
	st, err := bolt.NewStorage(filename)
	if err != nil {
		return err
	}
	if err = st.Open(ctx); err != nil {
		return err
	}
	defer st.Close(ctx)

	pid, err := storage.ProgramId(prog)
	if err != nil {
		return err
	}
	if err = st.MakeProgram(ctx, pid); err != nil {
		return err
	}
	if err = st.WriteTraces(ctx, pid, []*storage.Trace{t}); err != nil {
		return err
	}
	util.Logger().WithFields(map[string]interface{}{
		"program": pid,
		"trace":   t.Id,
	}).Info("wrote trace")
	return nil
}
