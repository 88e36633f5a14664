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

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/check"
	"github.com/Comcast/koala/config"
	"github.com/Comcast/koala/core"
	"github.com/Comcast/koala/parse"
	"github.com/Comcast/koala/tools"
	"github.com/Comcast/koala/util"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// debugger drives a session a line at a time in the spirit of gdb.
type debugger struct {
	cfg  *config.Config
	p    *palette
	prog *ast.Program
	ctl  *core.Control
	s    *core.Session
	w    io.Writer
	echo bool
}

const outputPrefix = "# "

var (
	loadGoal  = regexp.MustCompile(`^goal +(.+)$`)
	alts      = regexp.MustCompile(`^(alts|alternatives)$`)
	commit    = regexp.MustCompile(`^commit +([0-9]+) +([0-9]+)$`)
	step      = regexp.MustCompile(`^(step|s)$`)
	walk      = regexp.MustCompile(`^run( +([0-9]+))?$`)
	show      = regexp.MustCompile(`^(print|p)$`)
	status    = regexp.MustCompile(`^status$`)
	setBreak  = regexp.MustCompile(`^break +([-a-zA-Z0-9_]+) +(.+)$`)
	unbreak   = regexp.MustCompile(`^unbreak +([-a-zA-Z0-9_]+)$`)
	debugging = regexp.MustCompile(`^debug(ging)? (on|off)$`)
	help      = regexp.MustCompile(`^(help|h|\?)$`)
	quit      = regexp.MustCompile(`^(quit|q|exit)$`)
)

func debugDoc() string {
	return `
  goal GOAL          Start over with this goal
  alts               Show the alternatives for the current goal
  commit I J         Commit rule J for alternative I
  step               Select and commit with the configured policies
  run [N]            Take up to N steps (or the configured limit)
  print              Show the state, goal and results
  status             Show the bounds of every store variable
  break ID EXPR      Stop runs when EXPR is true
  unbreak ID         Remove a breakpoint
  debug on/off       Toggle debug logging
  help               Show this documentation
  quit               Leave`
}

func (d *debugger) say(format string, args ...interface{}) {
	fmt.Fprintf(d.w, outputPrefix+format+"\n", args...)
}

func (d *debugger) protest(format string, args ...interface{}) {
	d.say("%s", d.p.Error("error: "+format, args...))
}

// start makes a new session for the goal.  Each session gets its
// own table since closures hold their environments.
func (d *debugger) start(src string) error {
	goal, err := parse.Goal(src)
	if err != nil {
		return err
	}
	table, diags := check.LoadProgram(d.prog)
	if diags.HasErrors() {
		return diags.Errors()
	}
	s := core.NewSession(table, d.cfg.StoreOptions())
	if s.LiteralPolicy, s.RulePolicy, err = d.cfg.Selectors(); err != nil {
		return err
	}
	if diags, err = s.LoadGoal(goal); err != nil {
		return err
	}
	for _, diag := range diags {
		d.say("%s", d.p.diagnostic(diag))
	}
	d.s = s
	d.say("goal loaded: %s", d.s.State())
	return nil
}

func (d *debugger) alternatives() {
	det := d.s.DetectAlternatives()
	d.say("%s (version %d)", det.State, det.Version)
	for i, alt := range det.Alternatives {
		d.say("%d. %s", i, alt.Literal.Render(d.s.Store))
		for j, c := range alt.Closures {
			d.say("   %d. %s", j, d.p.Faint("%s", c))
		}
	}
}

func (d *debugger) print() {
	d.say("state %s after %d steps", d.s.State(), d.s.Steps())
	d.say("goal  %s", strings.Join(d.s.Goal.Render(d.s.Store), ", "))
	for _, r := range d.s.Results() {
		d.say("      %s", r)
	}
}

func (d *debugger) stride(st *core.Stride) {
	if !st.Committed() {
		d.say("nothing to do: %s", st.State)
		return
	}
	d.say("%d %s", st.Step, st.Literal)
	d.say("  %s", d.p.Faint("%s", st.Rule))
	if st.Diff != "" {
		d.say("  %s", colorDiff(d.p, st.Diff))
	}
}

// exec handles one line.  It returns false to quit.
func (d *debugger) exec(ctx context.Context, line string) bool {
	var ss []string

	if ss = help.FindStringSubmatch(line); 0 < len(ss) {
		for _, s := range strings.Split(debugDoc(), "\n") {
			d.say("%s", s)
		}
		return true
	}
	if ss = quit.FindStringSubmatch(line); 0 < len(ss) {
		return false
	}
	if ss = debugging.FindStringSubmatch(line); 0 < len(ss) {
		level := "warn"
		if ss[2] == "on" {
			level = "debug"
		}
		if err := util.SetLevel(level); err != nil {
			d.protest("%v", err)
		}
		return true
	}
	if ss = setBreak.FindStringSubmatch(line); 0 < len(ss) {
		b, err := core.CompileBreakpoint(ss[2])
		if err != nil {
			d.protest("%v", err)
			return true
		}
		d.ctl.Breakpoints[ss[1]] = b
		d.say("%d breakpoints", len(d.ctl.Breakpoints))
		return true
	}
	if ss = unbreak.FindStringSubmatch(line); 0 < len(ss) {
		if _, have := d.ctl.Breakpoints[ss[1]]; !have {
			d.protest("no breakpoint '%s'", ss[1])
			return true
		}
		delete(d.ctl.Breakpoints, ss[1])
		d.say("%d breakpoints", len(d.ctl.Breakpoints))
		return true
	}
	if ss = loadGoal.FindStringSubmatch(line); 0 < len(ss) {
		if err := d.start(ss[1]); err != nil {
			d.protest("%v", err)
		}
		return true
	}

	if d.s == nil {
		d.protest("no goal (try 'goal GOAL')")
		return true
	}

	switch {
	case alts.MatchString(line):
		d.alternatives()

	case commit.MatchString(line):
		ss = commit.FindStringSubmatch(line)
		li, _ := strconv.Atoi(ss[1])
		ri, _ := strconv.Atoi(ss[2])
		if err := d.s.CommitStep(d.s.DetectAlternatives(), li, ri); err != nil {
			d.protest("%v", err)
			return true
		}
		d.print()

	case step.MatchString(line):
		st, err := d.s.Step(ctx)
		if err != nil {
			d.protest("%v", err)
			return true
		}
		d.stride(st)

	case walk.MatchString(line):
		ss = walk.FindStringSubmatch(line)
		ctl := d.ctl.Copy()
		if ss[2] != "" {
			ctl.Limit, _ = strconv.Atoi(ss[2])
		}
		walked, err := d.s.Walk(ctx, ctl)
		if err != nil {
			d.protest("%v", err)
		}
		if walked == nil {
			return true
		}
		for _, st := range walked.Strides {
			d.stride(st)
		}
		why := walked.StoppedBecause.String()
		if walked.BreakpointId != "" {
			why += " at " + walked.BreakpointId
		}
		d.say("stopped: %s", why)

	case show.MatchString(line):
		d.print()

	case status.MatchString(line):
		for _, v := range d.s.Store.Status() {
			d.say("%s", v)
		}

	default:
		d.protest("what's '%s'? (try 'help')", line)
	}
	return true
}

func (d *debugger) run(ctx context.Context, in io.Reader) error {
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		eof := err == io.EOF
		line = strings.TrimSpace(line)

		if d.echo {
			fmt.Fprintln(d.w, line)
		}

		if line != "" && !strings.HasPrefix(line, "#") {
			if !d.exec(ctx, line) {
				return nil
			}
		}
		if eof {
			return nil
		}
	}
}

func newDebugCmd() *cobra.Command {
	var echo bool

	cmd := &cobra.Command{
		Use:   "debug FILE [GOAL]",
		Short: "Step through a goal interactively",
		Long:  "Read commands from standard input to step a goal by hand." + debugDoc(),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctl, err := cfg.Control()
			if err != nil {
				return err
			}
			prog, err := tools.LoadFile(args[0])
			if err != nil {
				return err
			}
			if _, diags := check.LoadProgram(prog); diags.HasErrors() {
				return errors.Wrapf(diags.Errors(), "%s rejected", args[0])
			}

			d := &debugger{
				cfg:  cfg,
				p:    newPalette(cfg.Colorize(os.Stdout)),
				prog: prog,
				ctl:  ctl,
				w:    cmd.OutOrStdout(),
				echo: echo,
			}
			if 1 < len(args) {
				if err := d.start(args[1]); err != nil {
					return err
				}
			}
			return d.run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVarP(&echo, "echo", "e", false, "echo input")

	return cmd
}
