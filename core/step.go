package core

import (
	"context"
	"sort"
	"strings"

	"github.com/Comcast/koala/data"

	"github.com/pkg/errors"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

var (
	// DefaultControl will be used by Session.Walk if the given
	// control is nil.
	DefaultControl = &Control{
		Limit: 100,
	}
)

// StopReason represents the possible reasons for a Walk to terminate.
type StopReason int

const (
	Done              StopReason = iota // The goal is empty.
	Deadlocked                          // Nothing can fire.
	Limited                             // Too many steps.
	InternalError                       // A Selector or commit failed.
	BreakpointReached                   // During a Walk.
	Canceled                            // The context is done.
)

var stopReasonNames = []string{"done", "deadlocked", "limited", "internalError", "breakpoint", "canceled"}

func (r StopReason) String() string {
	if r < 0 || int(r) >= len(stopReasonNames) {
		return "unknown"
	}
	return stopReasonNames[r]
}

func (r StopReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *StopReason) UnmarshalText(bs []byte) error {
	for i, name := range stopReasonNames {
		if name == string(bs) {
			*r = StopReason(i)
			return nil
		}
	}
	return errors.Errorf("unknown stop reason %q", bs)
}

// Breakpoint is a *Session predicate.
//
// When a Breakpoint returns true for a *Session, then processing
// should stop at that point.
type Breakpoint func(context.Context, *Session) bool

// Control influences how Walk() operates.
type Control struct {
	// Limit is the maximum number of Steps that a Walk() can take.
	Limit       int
	Breakpoints map[string]Breakpoint
}

func (c *Control) Copy() *Control {
	bs := make(map[string]Breakpoint, len(c.Breakpoints))
	for id, b := range c.Breakpoints {
		bs[id] = b
	}
	return &Control{
		Limit:       c.Limit,
		Breakpoints: bs,
	}
}

// AlternativeText is a rendered Alternative.
type AlternativeText struct {
	Literal string   `json:"literal"`
	Rules   []string `json:"rules"`
}

// Stride represents a step that Walk has taken or attempted.
type Stride struct {
	// Step counts commits from 1.
	Step int `json:"step"`

	// From is the rendered goal before the step.
	From []string `json:"from"`

	// Alternatives are what could have been committed.
	Alternatives []AlternativeText `json:"alternatives,omitempty" yaml:",omitempty"`

	// Literal and Rule are what was committed.
	Literal string `json:"literal,omitempty" yaml:",omitempty"`
	Rule    string `json:"rule,omitempty" yaml:",omitempty"`

	// To is the rendered goal after the step.
	To []string `json:"to,omitempty" yaml:",omitempty"`

	// Diff marks the change from From to To, with deletions in
	// "[-...-]" and insertions in "{+...+}".
	Diff string `json:"diff,omitempty" yaml:",omitempty"`

	// State is the session's state after the step.
	State State `json:"state"`

	// Results are the loaded goal's literals after the step.
	Results []string `json:"results,omitempty" yaml:",omitempty"`
}

// Committed reports whether the stride changed the session.
func (s *Stride) Committed() bool {
	return s.Rule != ""
}

func renderAlternatives(d *Detection, r data.Resolver) []AlternativeText {
	acc := make([]AlternativeText, len(d.Alternatives))
	for i, alt := range d.Alternatives {
		rules := make([]string, len(alt.Closures))
		for j, c := range alt.Closures {
			rules[j] = c.String()
		}
		acc[i] = AlternativeText{
			Literal: alt.Literal.Render(r),
			Rules:   rules,
		}
	}
	return acc
}

// diffGoals marks the difference between two rendered goals.
func diffGoals(from, to []string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(strings.Join(from, ", "), strings.Join(to, ", "), false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func (s *Session) selector(p Selector) Selector {
	if p == nil {
		return firstSelector{}
	}
	return p
}

// Step is the fundamental operation: detect, select and commit.
//
// When the session is Finished or Locked, the returned Stride has no
// Rule and the session is unchanged.
func (s *Session) Step(ctx context.Context) (*Stride, error) {
	if !s.loaded {
		return nil, NoGoal
	}

	d := s.DetectAlternatives()
	stride := &Stride{
		Step:  s.steps + 1,
		From:  s.Goal.Render(s.Store),
		State: d.State,
	}
	if d.State != Ready {
		return stride, nil
	}
	stride.Alternatives = renderAlternatives(d, s.Store)

	literals := make([]string, len(stride.Alternatives))
	for i, a := range stride.Alternatives {
		literals[i] = a.Literal
	}
	li, err := s.selector(s.LiteralPolicy).Select(ctx, literals)
	if err != nil {
		return stride, errors.Wrap(err, "selecting a literal")
	}
	if li < 0 || len(literals) <= li {
		return stride, &BadSelection{What: "literal", Index: li, Count: len(literals)}
	}

	rules := stride.Alternatives[li].Rules
	ri, err := s.selector(s.RulePolicy).Select(ctx, rules)
	if err != nil {
		return stride, errors.Wrap(err, "selecting a rule")
	}
	if ri < 0 || len(rules) <= ri {
		return stride, &BadSelection{What: "rule", Index: ri, Count: len(rules)}
	}

	if err := s.CommitStep(d, li, ri); err != nil {
		return stride, err
	}

	stride.Literal = literals[li]
	stride.Rule = rules[ri]
	stride.To = s.Goal.Render(s.Store)
	stride.Diff = diffGoals(stride.From, stride.To)
	stride.State = s.state
	stride.Results = s.Results()

	return stride, nil
}

// Walked represents a sequence of strides taken by a Walk().
type Walked struct {
	// Strides contains each committed Stride.
	Strides []*Stride `json:"strides" yaml:",omitempty"`

	// StoppedBecause reports the reason why the Walk stopped.
	StoppedBecause StopReason `json:"stoppedBecause"`

	// Error stores an internal error that occured (if any).
	Error error `json:"-" yaml:"-"`

	// BreakpointId is the id of the breakpoint, if any, that
	// caused this Walk to stop.
	BreakpointId string `json:"breakpoint,omitempty" yaml:",omitempty"`

	// Goal is the rendered goal when the Walk stopped.
	Goal []string `json:"goal,omitempty" yaml:",omitempty"`

	// Results are the loaded goal's literals when the Walk stopped.
	Results []string `json:"results,omitempty" yaml:",omitempty"`
}

func newWalked(siz int) *Walked {
	max := 1024
	if max < siz {
		siz = max
	}
	if siz < 0 {
		siz = 0
	}
	return &Walked{
		Strides: make([]*Stride, 0, siz),
	}
}

func (w *Walked) add(s *Stride) {
	w.Strides = append(w.Strides, s)
}

func (w *Walked) stop(s *Session, why StopReason) *Walked {
	w.StoppedBecause = why
	w.Goal = s.Goal.Render(s.Store)
	w.Results = s.Results()
	return w
}

// Walk takes as many steps as it can.
//
// Breakpoints are checked, in order of their ids, before each step.
// The context is only checked between steps.  Any returned error is
// also stored in Walked.Error.
func (s *Session) Walk(ctx context.Context, c *Control) (*Walked, error) {
	if c == nil {
		c = DefaultControl
	}
	if !s.loaded {
		return nil, NoGoal
	}

	ids := make([]string, 0, len(c.Breakpoints))
	for id := range c.Breakpoints {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	walked := newWalked(c.Limit)

	for i := 0; i < c.Limit; i++ {
		if ctx.Err() != nil {
			return walked.stop(s, Canceled), nil
		}

		for _, id := range ids {
			if c.Breakpoints[id](ctx, s) {
				walked.BreakpointId = id
				return walked.stop(s, BreakpointReached), nil
			}
		}

		stride, err := s.Step(ctx)
		if err != nil {
			walked.Error = err
			return walked.stop(s, InternalError), err
		}
		if stride.Committed() {
			walked.add(stride)
		}

		switch stride.State {
		case Finished:
			return walked.stop(s, Done), nil
		case Locked:
			return walked.stop(s, Deadlocked), nil
		}
	}

	// We hit the c.Limit.
	switch s.DetectAlternatives().State {
	case Finished:
		return walked.stop(s, Done), nil
	case Locked:
		return walked.stop(s, Deadlocked), nil
	}
	return walked.stop(s, Limited), nil
}
