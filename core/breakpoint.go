package core

import (
	"context"

	"github.com/Comcast/koala/util"

	"github.com/expr-lang/expr"
	"github.com/pkg/errors"
)

// BreakpointEnv is what a breakpoint expression can see.
//
// Example: `step >= 10 && any(goal, # startsWith "LOOP(")`.
type BreakpointEnv struct {
	Step         int      `expr:"step"`
	Goal         []string `expr:"goal"`
	Results      []string `expr:"results"`
	Alternatives int      `expr:"alternatives"`
	State        string   `expr:"state"`
	Solves       int      `expr:"solves"`
}

func breakpointEnv(s *Session) BreakpointEnv {
	d := s.DetectAlternatives()
	return BreakpointEnv{
		Step:         s.steps,
		Goal:         s.Goal.Render(s.Store),
		Results:      s.Results(),
		Alternatives: len(d.Alternatives),
		State:        d.State.String(),
		Solves:       s.Store.Solves(),
	}
}

// CompileBreakpoint makes a Breakpoint from a boolean expression
// over a BreakpointEnv.
//
// A run-time error in the expression is logged and counts as false.
func CompileBreakpoint(src string) (Breakpoint, error) {
	prog, err := expr.Compile(src, expr.Env(BreakpointEnv{}), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "breakpoint %q", src)
	}
	return func(ctx context.Context, s *Session) bool {
		x, err := expr.Run(prog, breakpointEnv(s))
		if err != nil {
			util.Logger().WithError(err).WithField("breakpoint", src).Warn("breakpoint failed")
			return false
		}
		b, _ := x.(bool)
		return b
	}, nil
}

// CompileBreakpoints compiles each expression under its id.
func CompileBreakpoints(srcs map[string]string) (map[string]Breakpoint, error) {
	bs := make(map[string]Breakpoint, len(srcs))
	for id, src := range srcs {
		b, err := CompileBreakpoint(src)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling breakpoint %s", id)
		}
		bs[id] = b
	}
	return bs, nil
}
