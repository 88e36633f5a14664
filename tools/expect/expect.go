/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package expect is a tool for testing programs.
//
// You construct a Session, which has a program and a set of Cases.
// Each Case is a goal to run along with what's expected: how the run
// should stop, what the goal's literals should look like at the end,
// and, optionally, a boolean expression (see core.CompileBreakpoint)
// that must hold at the end.
//
// Cases run concurrently, each in its own core.Session.
package expect

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/check"
	"github.com/Comcast/koala/core"
	"github.com/Comcast/koala/parse"
	"github.com/Comcast/koala/store"
	"github.com/Comcast/koala/strat"
	"github.com/Comcast/koala/tools"
	"github.com/Comcast/koala/util"

	"github.com/jsccast/yaml"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Case is a goal and what's expected from running it.
type Case struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty"`

	// Goal is the goal in source syntax.
	Goal string `json:"goal"`

	// Limit is the maximum number of steps.  Session.DefaultLimit
	// is the default value.
	Limit int `json:"limit,omitempty"`

	// Timeout is the optional timeout for this case.
	// Session.DefaultTimeout is the default value.
	Timeout time.Duration `json:"timeout,omitempty"`

	// LiteralPolicy and RulePolicy name strat policies.  Index and
	// Seed parameterize them.
	LiteralPolicy string `json:"literalPolicy,omitempty"`
	RulePolicy    string `json:"rulePolicy,omitempty"`
	Index         int    `json:"index,omitempty"`
	Seed          int64  `json:"seed,omitempty"`

	// Stop, if not empty, is the required core.StopReason
	// ("done", "deadlocked", ...).
	Stop string `json:"stop,omitempty"`

	// Results, if not nil, are the required rendered literals of
	// the goal when the run stops.
	Results []string `json:"results,omitempty"`

	// Guard is an optional boolean expression over
	// core.BreakpointEnv that must be true when the run stops.
	Guard string `json:"guard,omitempty"`

	// Inverted means that the Guard must be false instead.
	Inverted bool `json:"inverted,omitempty"`
}

// Outcome is what happened when a Case ran.
type Outcome struct {
	Case     int          `json:"case"`
	Doc      string       `json:"doc,omitempty"`
	Walked   *core.Walked `json:"walked,omitempty"`
	Problems []string     `json:"problems,omitempty"`
}

// Ok reports whether the Case got what it expected.
func (o *Outcome) Ok() bool {
	return len(o.Problems) == 0
}

func (o *Outcome) problem(format string, args ...interface{}) {
	o.Problems = append(o.Problems, fmt.Sprintf(format, args...))
}

// Failed is returned by Run when at least one Case failed.
type Failed struct {
	Outcomes []*Outcome
}

func (e *Failed) Error() string {
	var acc []string
	for _, o := range e.Outcomes {
		if !o.Ok() {
			acc = append(acc, fmt.Sprintf("case %d: %s", o.Case, strings.Join(o.Problems, "; ")))
		}
	}
	return strings.Join(acc, "\n")
}

// Session is a program and a set of Cases.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty"`

	// Program is the name of a program file, relative to the
	// session file's directory.
	Program string `json:"program,omitempty"`

	// Source is program source, which is used if Program is empty.
	Source string `json:"source,omitempty"`

	Cases []Case `json:"cases"`

	// DefaultTimeout is the default timeout for each Case.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty"`

	// DefaultLimit is the default step limit for each Case.  Zero
	// means core.DefaultControl's.
	DefaultLimit int `json:"defaultLimit,omitempty"`

	// Concurrency limits the number of Cases that run at the same
	// time.  Zero means no limit.
	Concurrency int `json:"concurrency,omitempty"`

	// Store configures each Case's constraint store.
	Store *store.Options `json:"store,omitempty"`

	Verbose bool `json:"verbose,omitempty"`

	prog *ast.Program
}

// ReadSession reads a YAML (or JSON) session file and loads its
// program.
func ReadSession(filename string) (*Session, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	var s Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	if s.Program != "" {
		if s.prog, err = tools.LoadFile(filepath.Join(filepath.Dir(filename), s.Program)); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func (s *Session) program() (*ast.Program, error) {
	if s.prog != nil {
		return s.prog, nil
	}
	if s.Program != "" {
		return tools.LoadFile(s.Program)
	}
	return parse.Program(s.Source)
}

// Run runs all the Cases.  The returned Outcomes are in Case order.
// The error is a *Failed if any Case didn't get what it expected.
func (s *Session) Run(ctx context.Context) ([]*Outcome, error) {
	prog, err := s.program()
	if err != nil {
		return nil, err
	}
	if _, diags := check.LoadProgram(prog); diags.HasErrors() {
		return nil, errors.Wrap(diags.Errors(), "program rejected")
	}

	outcomes := make([]*Outcome, len(s.Cases))

	g, gctx := errgroup.WithContext(ctx)
	if 0 < s.Concurrency {
		g.SetLimit(s.Concurrency)
	}
	for i := range s.Cases {
		i := i
		g.Go(func() error {
			o, err := s.run(gctx, prog, i)
			outcomes[i] = o
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	for _, o := range outcomes {
		if !o.Ok() {
			return outcomes, &Failed{Outcomes: outcomes}
		}
	}
	return outcomes, nil
}

// run runs one Case.  Only problems with the Case itself are
// returned as errors.
func (s *Session) run(ctx context.Context, prog *ast.Program, i int) (*Outcome, error) {
	c := s.Cases[i]
	o := &Outcome{
		Case: i,
		Doc:  c.Doc,
	}
	log := util.Logger().WithField("case", i)

	// Rule tables hold per-rule environments, so each Case
	// gets its own.
	table, _ := check.LoadProgram(prog)

	goal, err := parse.Goal(c.Goal)
	if err != nil {
		return o, errors.Wrapf(err, "case %d goal", i)
	}

	session := core.NewSession(table, s.Store)
	if session.LiteralPolicy, err = strat.New(strat.Spec{Policy: c.LiteralPolicy, Index: c.Index, Seed: c.Seed}); err != nil {
		return o, errors.Wrapf(err, "case %d", i)
	}
	if session.RulePolicy, err = strat.New(strat.Spec{Policy: c.RulePolicy, Index: c.Index, Seed: c.Seed}); err != nil {
		return o, errors.Wrapf(err, "case %d", i)
	}

	var guard core.Breakpoint
	if c.Guard != "" {
		if guard, err = core.CompileBreakpoint(c.Guard); err != nil {
			return o, errors.Wrapf(err, "case %d", i)
		}
	}

	if _, err := session.LoadGoal(goal); err != nil {
		o.problem("goal rejected: %v", err)
		return o, nil
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = s.DefaultTimeout
	}
	if 0 < timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	control := core.DefaultControl.Copy()
	if 0 < s.DefaultLimit {
		control.Limit = s.DefaultLimit
	}
	if 0 < c.Limit {
		control.Limit = c.Limit
	}

	walked, err := session.Walk(ctx, control)
	o.Walked = walked
	if err != nil {
		o.problem("walk error: %v", err)
		return o, nil
	}

	if s.Verbose {
		log.WithField("stopped", walked.StoppedBecause).Info("ran")
	}

	if c.Stop != "" && c.Stop != walked.StoppedBecause.String() {
		o.problem("stopped because %s, not %s", walked.StoppedBecause, c.Stop)
	}

	if c.Results != nil {
		if len(c.Results) != len(walked.Results) {
			o.problem("got %d results, wanted %d", len(walked.Results), len(c.Results))
		} else {
			for j, want := range c.Results {
				if got := walked.Results[j]; got != want {
					o.problem("result %d is %q, not %q", j, got, want)
				}
			}
		}
	}

	if guard != nil {
		if guard(ctx, session) == c.Inverted {
			o.problem("guard %q was %v", c.Guard, c.Inverted)
		}
	}

	return o, nil
}
